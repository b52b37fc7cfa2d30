package attacks

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.Attack = (*WordAttack)(nil)
	_ ports.Attack = (*SwapWord)(nil)
)

// WordAttackConfig parametrizes a word-level attack.
type WordAttackConfig struct {
	Spec domain.PerturbationSpec `yaml:",inline"`
}

// wordEdit rewrites the surface list given the chosen token indices.
// Implementations must not assume any ordering of chosen.
type wordEdit func(rng *rand.Rand, surfaces []string, chosen []int) []string

// WordAttack removes or duplicates whole tokens. Unlike character
// attacks it always rebuilds the sentence from the token sequence, so
// duplicate surfaces elsewhere in the sentence are never disturbed.
type WordAttack struct {
	name   string
	suffix string
	tagger ports.Tagger
	edit   wordEdit
	cfg    WordAttackConfig
}

func newWordAttack(name, suffix string, tagger ports.Tagger, edit wordEdit, cfg WordAttackConfig) (*WordAttack, error) {
	if name == "" {
		return nil, ErrEmptyAttackName
	}
	if tagger == nil {
		return nil, ErrNilTagger
	}
	if err := validate.Struct(cfg.Spec); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &WordAttack{name: name, suffix: suffix, tagger: tagger, edit: edit, cfg: cfg}, nil
}

// Name returns the registry identifier.
func (a *WordAttack) Name() string { return a.name }

// Suffix returns the perturbed-field suffix.
func (a *WordAttack) Suffix() string { return a.suffix }

// Validate checks the attack configuration.
func (a *WordAttack) Validate() error {
	if a.edit == nil {
		return fmt.Errorf("attack %s: no edit function", a.name)
	}
	return validate.Struct(a.cfg.Spec)
}

// Perturb applies the structural edit and rejoins the token surfaces.
func (a *WordAttack) Perturb(ctx context.Context, rng *rand.Rand, text string) (string, error) {
	ctx, span := startSpan(ctx, a.name, a.suffix)
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

	surfaces := a.edit(rng, tokens.Surfaces(), chosen)
	return strings.Join(surfaces, ""), nil
}

// editDeleteWords removes the chosen tokens. Indices are processed in
// descending order so earlier removals do not shift later ones.
func editDeleteWords(_ *rand.Rand, surfaces []string, chosen []int) []string {
	idxs := append([]int(nil), chosen...)
	sort.Sort(sort.Reverse(sort.IntSlice(idxs)))
	for _, idx := range idxs {
		surfaces = append(surfaces[:idx], surfaces[idx+1:]...)
	}
	return surfaces
}

// editRepeatWords duplicates the chosen tokens in place, also in
// descending index order.
func editRepeatWords(_ *rand.Rand, surfaces []string, chosen []int) []string {
	idxs := append([]int(nil), chosen...)
	sort.Sort(sort.Reverse(sort.IntSlice(idxs)))
	for _, idx := range idxs {
		surfaces = append(surfaces[:idx+1], append([]string{surfaces[idx]}, surfaces[idx+1:]...)...)
	}
	return surfaces
}

// NewDeleteWord drops whole content words from the sentence (suffix DWR).
func NewDeleteWord(tagger ports.Tagger, cfg WordAttackConfig) (*WordAttack, error) {
	return newWordAttack("delete_word", "DWR", tagger, editDeleteWords, cfg)
}

// NewRepeatWord duplicates whole content words in place (suffix RWR),
// the stutter attack.
func NewRepeatWord(tagger ports.Tagger, cfg WordAttackConfig) (*WordAttack, error) {
	return newWordAttack("repeat_word", "RWR", tagger, editRepeatWords, cfg)
}

// SwapWord exchanges the positions of disjoint token pairs (suffix SWR).
// It is its own type because pair selection does not fit the per-token
// edit shape of WordAttack.
type SwapWord struct {
	tagger ports.Tagger
	cfg    WordAttackConfig
}

// NewSwapWord builds the word-swap attack. MaxTargets counts pairs, not
// individual tokens.
func NewSwapWord(tagger ports.Tagger, cfg WordAttackConfig) (*SwapWord, error) {
	if tagger == nil {
		return nil, ErrNilTagger
	}
	if err := validate.Struct(cfg.Spec); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &SwapWord{tagger: tagger, cfg: cfg}, nil
}

// Name returns the registry identifier.
func (a *SwapWord) Name() string { return "swap_word" }

// Suffix returns the perturbed-field suffix.
func (a *SwapWord) Suffix() string { return "SWR" }

// Validate checks the attack configuration.
func (a *SwapWord) Validate() error { return validate.Struct(a.cfg.Spec) }

// Perturb swaps up to MaxTargets disjoint pairs of eligible tokens.
func (a *SwapWord) Perturb(ctx context.Context, rng *rand.Rand, text string) (string, error) {
	ctx, span := startSpan(ctx, a.Name(), a.Suffix())
	defer span.End()

	tokens, err := a.tagger.Tokenize(ctx, text)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	eligible := Eligible(tokens, a.cfg.Spec, SelectOptions{Mode: LengthAtLeast})
	pairs := PickPairs(rng, eligible, a.cfg.Spec.MaxTargets)
	span.SetAttributes(
		attribute.Int("select.eligible", len(eligible)),
		attribute.Int("select.pairs", len(pairs)),
	)
	if len(pairs) == 0 {
		return text, nil
	}

	surfaces := tokens.Surfaces()
	for _, p := range pairs {
		surfaces[p[0]], surfaces[p[1]] = surfaces[p[1]], surfaces[p[0]]
	}
	return strings.Join(surfaces, ""), nil
}

// editKataToHiraAll converts every katakana rune in the word.
func editKataToHiraAll(_ *rand.Rand, word []rune) ([]rune, bool) {
	if !domain.ContainsKatakana(string(word)) {
		return word, false
	}
	return []rune(domain.KataToHira(string(word))), true
}

// editHiraToKataAll converts every hiragana rune in the word.
func editHiraToKataAll(_ *rand.Rand, word []rune) ([]rune, bool) {
	if !domain.ContainsHiragana(string(word)) {
		return word, false
	}
	return []rune(domain.HiraToKata(string(word))), true
}

// NewKataToHiraWord converts entire token surfaces from katakana to
// hiragana (suffix K2HW). It shares the character-attack pipeline: the
// edit happens to cover the whole surface.
func NewKataToHiraWord(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("kata2hira_word", "K2HW", tagger, editKataToHiraAll,
		SelectOptions{Mode: LengthIgnore, RequireSurface: domain.ContainsKatakana, KeepFunctionWords: true}, true, cfg)
}

// NewHiraToKataWord converts entire token surfaces from hiragana to
// katakana (suffix H2KW).
func NewHiraToKataWord(tagger ports.Tagger, cfg CharAttackConfig) (*CharAttack, error) {
	return newCharAttack("hira2kata_word", "H2KW", tagger, editHiraToKataAll,
		SelectOptions{Mode: LengthIgnore, RequireSurface: domain.ContainsHiragana, KeepFunctionWords: true}, true, cfg)
}
