package attacks

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
)

var _ ports.Attack = (*Synonym)(nil)

// SynonymConfig parametrizes the masked-LM synonym substitution attack.
type SynonymConfig struct {
	Spec     domain.PerturbationSpec `yaml:",inline"`
	Reinsert ReinsertStrategy        `yaml:"reinsert"`

	// TopK is how many ranked fill candidates to request per masked
	// position.
	TopK int `yaml:"top_k" validate:"gte=1,lte=100"`
}

// DefaultSynonymTopK is the candidate depth when none is configured.
const DefaultSynonymTopK = 10

// Synonym masks one content word at a time and substitutes the masked
// language model's best distinct completion (suffix SR). Oracle failure
// on one token degrades to leaving that token unperturbed rather than
// failing the whole sentence.
type Synonym struct {
	tagger ports.Tagger
	masker ports.FillMasker
	cfg    SynonymConfig
}

// NewSynonym builds the synonym attack over the given fill-mask oracle.
func NewSynonym(tagger ports.Tagger, masker ports.FillMasker, cfg SynonymConfig) (*Synonym, error) {
	if tagger == nil {
		return nil, ErrNilTagger
	}
	if masker == nil {
		return nil, ErrNilOracle
	}
	if cfg.TopK == 0 {
		cfg.TopK = DefaultSynonymTopK
	}
	// The masked sentence is already rebuilt from the token list, so
	// the replacement goes back in by index unless configured otherwise.
	if cfg.Reinsert == "" {
		cfg.Reinsert = ReinsertByIndex
	}
	if !cfg.Reinsert.valid() {
		return nil, fmt.Errorf("invalid reinsert strategy %q", cfg.Reinsert)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Synonym{tagger: tagger, masker: masker, cfg: cfg}, nil
}

// Name returns the registry identifier.
func (a *Synonym) Name() string { return "synonym_replace" }

// Suffix returns the perturbed-field suffix.
func (a *Synonym) Suffix() string { return "SR" }

// Validate checks the attack configuration.
func (a *Synonym) Validate() error { return validate.Struct(a.cfg) }

// Perturb masks each chosen token in turn and substitutes the top
// completion that differs from the original surface.
func (a *Synonym) Perturb(ctx context.Context, rng *rand.Rand, text string) (string, error) {
	ctx, span := startSpan(ctx, a.Name(), a.Suffix())
	defer span.End()

	tokens, err := a.tagger.Tokenize(ctx, text)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	eligible := Eligible(tokens, a.cfg.Spec, SelectOptions{Mode: LengthAtLeast})
	chosen := Pick(rng, eligible, a.cfg.Spec.MaxTargets)
	span.SetAttributes(
		attribute.Int("select.eligible", len(eligible)),
		attribute.Int("select.chosen", len(chosen)),
	)
	if len(chosen) == 0 {
		return text, nil
	}

	mask := a.masker.MaskToken()
	surfaces := tokens.Surfaces()
	perturbed := text
	replaced := 0
	for _, idx := range chosen {
		original := surfaces[idx]

		// The masked sentence is built positionally so duplicate
		// surfaces elsewhere cannot steal the mask.
		masked := make([]string, len(surfaces))
		copy(masked, surfaces)
		masked[idx] = mask

		candidates, err := a.masker.FillMask(ctx, strings.Join(masked, ""), a.cfg.TopK)
		if err != nil {
			span.RecordError(err)
			continue
		}
		candidate := firstDistinct(candidates, original, mask)
		if candidate == "" {
			continue
		}
		replaced++
		switch a.cfg.Reinsert {
		case ReinsertByIndex:
			surfaces[idx] = candidate
		default:
			perturbed = strings.Replace(perturbed, original, candidate, 1)
		}
	}
	if a.cfg.Reinsert == ReinsertByIndex {
		perturbed = strings.Join(surfaces, "")
	}
	span.SetAttributes(attribute.Int("synonym.replaced", replaced))
	return perturbed, nil
}

// firstDistinct returns the highest-ranked candidate that is a real
// substitution: non-empty, not the original surface, and not the mask
// token echoed back.
func firstDistinct(candidates []ports.FillCandidate, original, mask string) string {
	for _, c := range candidates {
		s := strings.TrimSpace(c.Token)
		if s == "" || s == original || s == mask {
			continue
		}
		return s
	}
	return ""
}
