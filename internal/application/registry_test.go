package application

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
	"github.com/kmorishita/jamble/internal/testutils"
)

func registryTagger() *testutils.ScriptedTagger {
	return testutils.NewScriptedTagger(map[string]domain.TokenSequence{
		"私はりんごをたべた": {
			{Surface: "私", POS: domain.POSNoun, Reading: "ワタシ"},
			{Surface: "は", POS: domain.POSParticle, Reading: "ハ"},
			{Surface: "りんご", POS: domain.POSNoun, Reading: "リンゴ"},
			{Surface: "を", POS: domain.POSParticle, Reading: "ヲ"},
			{Surface: "たべた", POS: domain.POSVerb, Reading: "タベタ"},
		},
	})
}

func TestNewRegistry(t *testing.T) {
	t.Run("requires a tagger", func(t *testing.T) {
		_, err := NewRegistry(Dependencies{})
		assert.Error(t, err)
	})

	t.Run("lexical attacks always registered", func(t *testing.T) {
		registry, err := NewRegistry(Dependencies{Tagger: registryTagger()})
		require.NoError(t, err)

		names := registry.Names()
		for _, want := range []string{
			"delete_char", "delete_char_hiragana", "insert_char", "insert_char_append",
			"replace_char", "replace_particle", "repeat_char", "swap_char",
			"kata2hira_char", "hira2kata_char", "kata2hira_word", "hira2kata_word",
			"delete_word", "repeat_word", "swap_word",
		} {
			assert.Contains(t, names, want)
		}
		assert.NotContains(t, names, "homophone_error", "no lexicon, no homophone attack")
		assert.NotContains(t, names, "synonym_replace")
		assert.NotContains(t, names, "back_translation")
	})

	t.Run("oracle attacks follow their dependencies", func(t *testing.T) {
		translator := &testutils.MapTranslator{}
		registry, err := NewRegistry(Dependencies{
			Tagger:     registryTagger(),
			Lexicon:    testutils.MapLexicon{"はし": {"橋"}},
			FillMasker: &testutils.StaticFillMasker{},
			Forward:    translator,
			Back:       translator,
		})
		require.NoError(t, err)

		names := registry.Names()
		assert.Contains(t, names, "homophone_error")
		assert.Contains(t, names, "synonym_replace")
		assert.Contains(t, names, "back_translation")
	})
}

func TestRegistryBuild(t *testing.T) {
	registry, err := NewRegistry(Dependencies{Tagger: registryTagger()})
	require.NoError(t, err)

	t.Run("unknown attack", func(t *testing.T) {
		_, err := registry.Build("quantum_entangle", Overrides{})
		assert.ErrorIs(t, err, ports.ErrUnknownAttack)
	})

	t.Run("built attack carries its suffix", func(t *testing.T) {
		attack, err := registry.Build("delete_char", Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "delete_char", attack.Name())
		assert.Equal(t, "DCR", attack.Suffix())
	})

	t.Run("invalid override rejected at build", func(t *testing.T) {
		bad := -3
		_, err := registry.Build("delete_char", Overrides{MaxTargets: &bad})
		assert.Error(t, err)
	})

	t.Run("override changes behavior", func(t *testing.T) {
		// MaxTargets 0 selects nothing, so the text passes through.
		zero := 0
		attack, err := registry.Build("delete_word", Overrides{MaxTargets: &zero})
		require.NoError(t, err)

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), "私はりんごをたべた")
		require.NoError(t, err)
		assert.Equal(t, "私はりんごをたべた", out)
	})

	t.Run("reinsert override validated", func(t *testing.T) {
		bogus := "everywhere"
		_, err := registry.Build("delete_char", Overrides{Reinsert: &bogus})
		assert.Error(t, err)
	})
}
