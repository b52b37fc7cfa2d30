package attacks

import (
	"context"
	"math/rand"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kmorishita/jamble/internal/ports"
)

var _ ports.Attack = (*BackTranslate)(nil)

// BackTranslate paraphrases the whole sentence by translating it to a
// pivot language and back (suffix BT). It is the only attack that
// ignores token structure entirely. Either translation leg failing
// degrades to the original sentence; back-translation noise is a bonus,
// not a requirement, and a dropped sample would bias the evaluation.
type BackTranslate struct {
	forward ports.Translator
	back    ports.Translator
}

// NewBackTranslate builds the back-translation attack from the two
// translation legs (source→pivot, pivot→source).
func NewBackTranslate(forward, back ports.Translator) (*BackTranslate, error) {
	if forward == nil || back == nil {
		return nil, ErrNilOracle
	}
	return &BackTranslate{forward: forward, back: back}, nil
}

// Name returns the registry identifier.
func (a *BackTranslate) Name() string { return "back_translation" }

// Suffix returns the perturbed-field suffix.
func (a *BackTranslate) Suffix() string { return "BT" }

// Validate checks the attack configuration.
func (a *BackTranslate) Validate() error {
	if a.forward == nil || a.back == nil {
		return ErrNilOracle
	}
	return nil
}

// Perturb round-trips the sentence through the pivot language. The rng
// is unused; back-translation has no random choices of its own.
func (a *BackTranslate) Perturb(ctx context.Context, _ *rand.Rand, text string) (string, error) {
	ctx, span := startSpan(ctx, a.Name(), a.Suffix())
	defer span.End()

	pivot, err := a.forward.Translate(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("backtranslate.degraded", true))
		return text, nil
	}
	if strings.TrimSpace(pivot) == "" {
		span.SetAttributes(attribute.Bool("backtranslate.degraded", true))
		return text, nil
	}

	round, err := a.back.Translate(ctx, pivot)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("backtranslate.degraded", true))
		return text, nil
	}
	if strings.TrimSpace(round) == "" {
		span.SetAttributes(attribute.Bool("backtranslate.degraded", true))
		return text, nil
	}
	return round, nil
}
