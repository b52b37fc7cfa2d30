// Package application wires the perturbation engine together: the
// attack registry with its per-attack presets, the batch driver that
// runs attacks over a dataset, and the evaluation runner.
package application

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kmorishita/jamble/infrastructure/attacks"
	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
)

// Dependencies bundles the external collaborators the attacks need.
// Only the tagger is mandatory; attacks whose oracle is missing are
// simply not registered, so a run without translation credentials can
// still execute every lexical attack.
type Dependencies struct {
	Tagger     ports.Tagger
	FillMasker ports.FillMasker
	Lexicon    ports.Lexicon

	// Forward and Back are the two back-translation legs
	// (source→pivot, pivot→source).
	Forward ports.Translator
	Back    ports.Translator
}

// Overrides carries per-attack parameter overrides from configuration.
// Nil fields keep the preset value.
type Overrides struct {
	MaxPerturbs *int    `yaml:"max_perturbs"`
	MaxTargets  *int    `yaml:"max_targets"`
	MinTokenLen *int    `yaml:"min_token_len"`
	Reinsert    *string `yaml:"reinsert"`
}

func (o Overrides) apply(spec *domain.PerturbationSpec) {
	if o.MaxPerturbs != nil {
		spec.MaxPerturbs = *o.MaxPerturbs
	}
	if o.MaxTargets != nil {
		spec.MaxTargets = *o.MaxTargets
	}
	if o.MinTokenLen != nil {
		spec.MinTokenLen = *o.MinTokenLen
	}
}

func (o Overrides) reinsert() attacks.ReinsertStrategy {
	if o.Reinsert == nil {
		return ""
	}
	return attacks.ReinsertStrategy(*o.Reinsert)
}

// attackFactory builds one configured attack instance.
type attackFactory func(o Overrides) (ports.Attack, error)

// Registry maps attack identifiers to factories carrying the preset
// parameters for each attack family.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]attackFactory
}

// Preset parameter bundles per attack family.
var (
	// charPreset allows a couple of edits on a couple of tokens and
	// skips single-rune tokens for destructive edits.
	charPreset = domain.PerturbationSpec{MaxPerturbs: 2, MaxTargets: 2, MinTokenLen: 1}

	// scriptPreset converts up to two tokens; script conversion has no
	// per-token edit budget.
	scriptPreset = domain.PerturbationSpec{MaxTargets: 2}

	// wordPreset targets a single word, the least destructive default
	// for structural edits.
	wordPreset = domain.PerturbationSpec{MaxTargets: 1, MinTokenLen: 1}
)

// NewRegistry builds the registry with every attack the given
// dependencies can support.
func NewRegistry(deps Dependencies) (*Registry, error) {
	if deps.Tagger == nil {
		return nil, fmt.Errorf("registry requires a tagger")
	}

	r := &Registry{factories: make(map[string]attackFactory)}
	r.registerCharAttacks(deps)
	r.registerWordAttacks(deps)
	r.registerOracleAttacks(deps)
	return r, nil
}

func (r *Registry) registerCharAttacks(deps Dependencies) {
	char := func(build func(ports.Tagger, attacks.CharAttackConfig) (*attacks.CharAttack, error), preset domain.PerturbationSpec) attackFactory {
		return func(o Overrides) (ports.Attack, error) {
			spec := preset
			o.apply(&spec)
			return build(deps.Tagger, attacks.CharAttackConfig{Spec: spec, Reinsert: o.reinsert()})
		}
	}

	r.factories["delete_char"] = char(attacks.NewDeleteChar, charPreset)
	r.factories["delete_char_hiragana"] = char(attacks.NewDeleteCharHiragana, charPreset)
	r.factories["insert_char"] = char(attacks.NewInsertChar, charPreset)
	r.factories["insert_char_append"] = char(attacks.NewInsertCharAppend, charPreset)
	r.factories["replace_char"] = char(attacks.NewReplaceChar, charPreset)
	r.factories["replace_particle"] = char(attacks.NewReplaceParticle, charPreset)
	r.factories["repeat_char"] = char(attacks.NewRepeatChar, charPreset)
	r.factories["swap_char"] = char(attacks.NewSwapChar, charPreset)
	r.factories["kata2hira_char"] = char(attacks.NewKataToHiraChar, scriptPreset)
	r.factories["hira2kata_char"] = char(attacks.NewHiraToKataChar, scriptPreset)
	r.factories["kata2hira_word"] = char(attacks.NewKataToHiraWord, scriptPreset)
	r.factories["hira2kata_word"] = char(attacks.NewHiraToKataWord, scriptPreset)
}

func (r *Registry) registerWordAttacks(deps Dependencies) {
	word := func(build func(ports.Tagger, attacks.WordAttackConfig) (*attacks.WordAttack, error)) attackFactory {
		return func(o Overrides) (ports.Attack, error) {
			spec := wordPreset
			o.apply(&spec)
			return build(deps.Tagger, attacks.WordAttackConfig{Spec: spec})
		}
	}

	r.factories["delete_word"] = word(attacks.NewDeleteWord)
	r.factories["repeat_word"] = word(attacks.NewRepeatWord)
	r.factories["swap_word"] = func(o Overrides) (ports.Attack, error) {
		spec := wordPreset
		o.apply(&spec)
		return attacks.NewSwapWord(deps.Tagger, attacks.WordAttackConfig{Spec: spec})
	}
}

func (r *Registry) registerOracleAttacks(deps Dependencies) {
	if deps.Lexicon != nil {
		r.factories["homophone_error"] = func(o Overrides) (ports.Attack, error) {
			spec := wordPreset
			o.apply(&spec)
			return attacks.NewHomophone(deps.Tagger, deps.Lexicon,
				attacks.HomophoneConfig{Spec: spec, Reinsert: o.reinsert()})
		}
	}
	if deps.FillMasker != nil {
		r.factories["synonym_replace"] = func(o Overrides) (ports.Attack, error) {
			spec := wordPreset
			o.apply(&spec)
			return attacks.NewSynonym(deps.Tagger, deps.FillMasker,
				attacks.SynonymConfig{Spec: spec, Reinsert: o.reinsert()})
		}
	}
	if deps.Forward != nil && deps.Back != nil {
		r.factories["back_translation"] = func(Overrides) (ports.Attack, error) {
			return attacks.NewBackTranslate(deps.Forward, deps.Back)
		}
	}
}

// Build constructs the named attack with preset parameters merged with
// the given overrides, and validates it.
func (r *Registry) Build(name string, overrides Overrides) (ports.Attack, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ports.ErrUnknownAttack, name, r.Names())
	}
	attack, err := factory(overrides)
	if err != nil {
		return nil, fmt.Errorf("build attack %q: %w", name, err)
	}
	if err := attack.Validate(); err != nil {
		return nil, fmt.Errorf("validate attack %q: %w", name, err)
	}
	return attack, nil
}

// Names returns the registered attack identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
