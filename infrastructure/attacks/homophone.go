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

var _ ports.Attack = (*Homophone)(nil)

// HomophoneConfig parametrizes the homophone substitution attack.
type HomophoneConfig struct {
	Spec     domain.PerturbationSpec `yaml:",inline"`
	Reinsert ReinsertStrategy        `yaml:"reinsert"`
}

// Homophone swaps a content word for a different word with the same
// reading (suffix HOM), e.g. 橋 -> 箸. Candidates come from a
// kana-reading lexicon; tokens whose analysis carries no reading, or
// whose reading has no alternative spellings, are simply not perturbed.
type Homophone struct {
	tagger  ports.Tagger
	lexicon ports.Lexicon
	cfg     HomophoneConfig
}

// NewHomophone builds the homophone attack over the given lexicon.
func NewHomophone(tagger ports.Tagger, lexicon ports.Lexicon, cfg HomophoneConfig) (*Homophone, error) {
	if tagger == nil {
		return nil, ErrNilTagger
	}
	if lexicon == nil {
		return nil, ErrNilOracle
	}
	// Word-level substitution rebuilds the sentence from the analyzed
	// token list, so by-index is the natural default here.
	if cfg.Reinsert == "" {
		cfg.Reinsert = ReinsertByIndex
	}
	if !cfg.Reinsert.valid() {
		return nil, fmt.Errorf("invalid reinsert strategy %q", cfg.Reinsert)
	}
	if err := validate.Struct(cfg.Spec); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Homophone{tagger: tagger, lexicon: lexicon, cfg: cfg}, nil
}

// Name returns the registry identifier.
func (a *Homophone) Name() string { return "homophone_error" }

// Suffix returns the perturbed-field suffix.
func (a *Homophone) Suffix() string { return "HOM" }

// Validate checks the attack configuration. An empty lexicon is valid:
// it means the dictionary source was unavailable and every target will
// be skipped, which degrades the attack instead of failing the run.
func (a *Homophone) Validate() error {
	return validate.Struct(a.cfg.Spec)
}

// Perturb replaces up to MaxTargets tokens with same-reading words.
func (a *Homophone) Perturb(ctx context.Context, rng *rand.Rand, text string) (string, error) {
	ctx, span := startSpan(ctx, a.Name(), a.Suffix())
	defer span.End()

	tokens, err := a.tagger.Tokenize(ctx, text)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	eligible := Eligible(tokens, a.cfg.Spec, SelectOptions{Mode: LengthAtLeast})
	// Readings live on the token, not the surface, so filter here.
	withReading := eligible[:0:0]
	for _, idx := range eligible {
		if tokens[idx].Reading != "" {
			withReading = append(withReading, idx)
		}
	}
	chosen := Pick(rng, withReading, a.cfg.Spec.MaxTargets)
	span.SetAttributes(
		attribute.Int("select.eligible", len(withReading)),
		attribute.Int("select.chosen", len(chosen)),
	)
	if len(chosen) == 0 {
		return text, nil
	}

	surfaces := tokens.Surfaces()
	perturbed := text
	replaced := 0
	for _, idx := range chosen {
		original := surfaces[idx]
		candidate := a.pickHomophone(rng, original, tokens[idx].Reading)
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
	span.SetAttributes(attribute.Int("homophone.replaced", replaced))
	return perturbed, nil
}

// pickHomophone draws one same-reading word distinct from the original
// surface, or "" when the token is not replaceable. Analysis readings
// are katakana while the lexicon is keyed by hiragana, so the reading
// is converted first. A reading needs at least two distinct spellings
// before it counts as genuinely ambiguous; a single-entry reading is
// just the word's dictionary form and passes through.
func (a *Homophone) pickHomophone(rng *rand.Rand, original, reading string) string {
	candidates := a.lexicon.Lookup(domain.KataToHira(reading))
	distinct := make(map[string]struct{}, len(candidates))
	pool := candidates[:0:0]
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, seen := distinct[c]; seen {
			continue
		}
		distinct[c] = struct{}{}
		if c != original {
			pool = append(pool, c)
		}
	}
	if len(distinct) < 2 || len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
