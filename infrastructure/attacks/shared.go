// Package attacks implements the perturbation engine: a family of
// character, word, and sentence level transformations sharing one
// select-then-transform pipeline over morphologically analyzed text.
package attacks

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common errors returned by attack constructors.
var (
	// ErrEmptyAttackName is returned when an attack is created without a
	// registry identifier.
	ErrEmptyAttackName = errors.New("attack name cannot be empty")

	// ErrNilTagger is returned when an attack is created without the
	// tokenization service it depends on.
	ErrNilTagger = errors.New("tagger cannot be nil")

	// ErrNilOracle is returned when an oracle-backed attack is created
	// without its oracle dependency.
	ErrNilOracle = errors.New("oracle dependency cannot be nil")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// tracer is the shared OpenTelemetry tracer for perturbation spans.
var tracer = otel.Tracer("perturbation-attacks")

// startSpan opens a span for one Perturb invocation.
func startSpan(ctx context.Context, attackName, suffix string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Attack.Perturb",
		trace.WithAttributes(
			attribute.String("attack.name", attackName),
			attribute.String("attack.suffix", suffix),
		),
	)
}

// ReinsertStrategy selects how a perturbed token surface is written back
// into the sentence.
type ReinsertStrategy string

const (
	// ReinsertFirstOccurrence replaces the first occurrence of the
	// original surface in the sentence text, at most once per chosen
	// token. Known hazard: when the chosen token's surface occurs
	// earlier in the sentence as a substring of a different token, the
	// earlier occurrence is altered instead. Kept as the default for
	// parity with the established behavior.
	ReinsertFirstOccurrence ReinsertStrategy = "first_occurrence"

	// ReinsertByIndex splices the new surface at the token's original
	// position in the sequence, immune to duplicate substrings.
	ReinsertByIndex ReinsertStrategy = "by_index"
)

// valid reports whether the strategy is one of the supported values.
func (s ReinsertStrategy) valid() bool {
	return s == ReinsertFirstOccurrence || s == ReinsertByIndex
}
