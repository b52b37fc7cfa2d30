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

// Compile-time interface check.
var _ ports.Attack = (*CharAttack)(nil)

// CharAttackConfig parametrizes a character-level attack.
type CharAttackConfig struct {
	// Spec bounds target and edit counts; see domain.PerturbationSpec.
	Spec domain.PerturbationSpec `yaml:",inline"`

	// Reinsert selects the write-back strategy. Empty selects
	// ReinsertFirstOccurrence.
	Reinsert ReinsertStrategy `yaml:"reinsert"`
}

// CharAttack is the generic character-level perturbation unit: it
// selects eligible tokens, applies a bounded rune edit to a copy of each
// chosen surface, and reinserts the result into the sentence. All the
// concrete character attacks are instances of this type differing only
// in their edit closure and selection options.
//
// CharAttack is stateless across samples; the same instance may serve
// concurrent callers as long as each caller supplies its own rand.Rand.
type CharAttack struct {
	name    string
	suffix  string
	tagger  ports.Tagger
	edit    CharEdit
	selOpts SelectOptions
	// single-shot attacks (script conversion) apply the edit once per
	// chosen token instead of MaxPerturbs times.
	singleShot bool
	cfg        CharAttackConfig
}

func newCharAttack(name, suffix string, tagger ports.Tagger, edit CharEdit, selOpts SelectOptions, singleShot bool, cfg CharAttackConfig) (*CharAttack, error) {
	if name == "" {
		return nil, ErrEmptyAttackName
	}
	if tagger == nil {
		return nil, ErrNilTagger
	}
	if cfg.Reinsert == "" {
		cfg.Reinsert = ReinsertFirstOccurrence
	}
	if !cfg.Reinsert.valid() {
		return nil, fmt.Errorf("invalid reinsert strategy %q", cfg.Reinsert)
	}
	if err := validate.Struct(cfg.Spec); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &CharAttack{
		name:       name,
		suffix:     suffix,
		tagger:     tagger,
		edit:       edit,
		selOpts:    selOpts,
		singleShot: singleShot,
		cfg:        cfg,
	}, nil
}

// Name returns the registry identifier.
func (a *CharAttack) Name() string { return a.name }

// Suffix returns the perturbed-field suffix.
func (a *CharAttack) Suffix() string { return a.suffix }

// Validate checks the attack configuration.
func (a *CharAttack) Validate() error {
	if a.edit == nil {
		return fmt.Errorf("attack %s: no edit function", a.name)
	}
	if err := validate.Struct(a.cfg.Spec); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Perturb applies the attack to one sentence. No eligible targets is not
// an error: the input is returned unchanged.
func (a *CharAttack) Perturb(ctx context.Context, rng *rand.Rand, text string) (string, error) {
	ctx, span := startSpan(ctx, a.name, a.suffix)
	defer span.End()

	tokens, err := a.tagger.Tokenize(ctx, text)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	eligible := Eligible(tokens, a.cfg.Spec, a.selOpts)
	chosen := Pick(rng, eligible, a.cfg.Spec.MaxTargets)
	span.SetAttributes(
		attribute.Int("select.eligible", len(eligible)),
		attribute.Int("select.chosen", len(chosen)),
	)
	if len(chosen) == 0 {
		return text, nil
	}

	surfaces := tokens.Surfaces()
	perturbed := text
	for _, idx := range chosen {
		original := surfaces[idx]
		edited := a.applyEdits(rng, original)
		if edited == original {
			continue
		}
		switch a.cfg.Reinsert {
		case ReinsertByIndex:
			surfaces[idx] = edited
		default:
			// First occurrence, at most once per chosen token. See the
			// strategy doc for the duplicate-substring hazard.
			perturbed = strings.Replace(perturbed, original, edited, 1)
		}
	}
	if a.cfg.Reinsert == ReinsertByIndex {
		perturbed = strings.Join(surfaces, "")
	}
	return perturbed, nil
}

// applyEdits runs the edit closure over a copy of the surface. Repeating
// attacks apply up to MaxPerturbs edits, re-checking the length
// constraint before each one; single-shot attacks apply exactly one.
func (a *CharAttack) applyEdits(rng *rand.Rand, surface string) string {
	word := []rune(surface)
	if a.singleShot {
		out, ok := a.edit(rng, word)
		if !ok {
			return surface
		}
		return string(out)
	}
	for i := 0; i < a.cfg.Spec.MaxPerturbs; i++ {
		if !a.lengthOK(len(word)) {
			break
		}
		out, ok := a.edit(rng, word)
		if !ok {
			break
		}
		word = out
	}
	return string(word)
}

func (a *CharAttack) lengthOK(n int) bool {
	switch a.selOpts.Mode {
	case LengthStrict:
		return n > a.cfg.Spec.MinTokenLen
	case LengthAtLeast:
		return n >= a.cfg.Spec.MinTokenLen
	default:
		return true
	}
}

// NewDeleteChar removes random characters from chosen tokens (suffix DCR).
func NewDeleteChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("delete_char", "DCR", tagger, editDeleteRune,
		SelectOptions{Mode: LengthStrict}, false, cfg)
}

// NewDeleteCharHiragana removes random hiragana characters only (suffix
// DCH); tokens without hiragana are never selected.
func NewDeleteCharHiragana(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("delete_char_hiragana", "DCH", tagger, editDeleteHiragana,
		SelectOptions{Mode: LengthStrict, RequireSurface: domain.ContainsHiragana}, false, cfg)
}

// NewInsertChar inserts random hiragana at random positions (suffix ICR).
func NewInsertChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("insert_char", "ICR", tagger, editInsertHiragana,
		SelectOptions{Mode: LengthAtLeast}, false, cfg)
}

// NewInsertCharAppend appends random ASCII letters at token ends (suffix
// ICA), the Latin-keyboard slip variant.
func NewInsertCharAppend(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("insert_char_append", "ICA", tagger, editAppendASCII,
		SelectOptions{Mode: LengthAtLeast}, false, cfg)
}

// NewReplaceChar overwrites random characters with random hiragana
// (suffix RCR).
func NewReplaceChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("replace_char", "RCR", tagger, editReplaceHiragana,
		SelectOptions{Mode: LengthStrict}, false, cfg)
}

// NewReplaceParticle targets particle tokens and substitutes a different
// case particle (suffix PCR), the particle-confusion attack.
func NewReplaceParticle(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	cfg.Spec.POSFilter = domain.POSParticle
	return newCharAttack("replace_particle", "PCR", tagger, editReplaceParticle,
		SelectOptions{Mode: LengthIgnore, IncludeParticles: true}, true, cfg)
}

// NewRepeatChar duplicates random hiragana characters in place (suffix
// RPT), emulating double-keystroke noise.
func NewRepeatChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("repeat_char", "RPT", tagger, editRepeatHiragana,
		SelectOptions{Mode: LengthAtLeast, RequireSurface: domain.ContainsHiragana}, false, cfg)
}

// NewSwapChar exchanges adjacent characters (suffix SCR).
func NewSwapChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("swap_char", "SCR", tagger, editSwapAdjacent,
		SelectOptions{Mode: LengthStrict}, false, cfg)
}

// NewKataToHiraChar converts one random katakana character per chosen
// token to hiragana (suffix K2H). Function words stay eligible: kana
// conversion does not break sentence structure.
func NewKataToHiraChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("kata2hira_char", "K2H", tagger, editKataToHiraOne,
		SelectOptions{Mode: LengthIgnore, RequireSurface: domain.ContainsKatakana, KeepFunctionWords: true}, true, cfg)
}

// NewHiraToKataChar converts one random hiragana character per chosen
// token to katakana (suffix H2K).
func NewHiraToKataChar(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("hira2kata_char", "H2K", tagger, editHiraToKataOne,
		SelectOptions{Mode: LengthIgnore, RequireSurface: domain.ContainsHiragana, KeepFunctionWords: true}, true, cfg)
}
