package attacks

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/testutils"
)

func homophoneTagger(text string) *testutils.ScriptedTagger {
	return testutils.NewScriptedTagger(map[string]domain.TokenSequence{
		text: {
			{Surface: "はし", POS: domain.POSNoun, Reading: "ハシ"},
			{Surface: "を", POS: domain.POSParticle, Reading: "ヲ"},
			{Surface: "わたる", POS: domain.POSVerb, Reading: "ワタル"},
		},
	})
}

func homophoneCfg() HomophoneConfig {
	return HomophoneConfig{
		Spec: domain.PerturbationSpec{
			MaxTargets:  1,
			MinTokenLen: 1,
			POSFilter:   domain.POSNoun,
		},
	}
}

func TestNewHomophoneValidation(t *testing.T) {
	tagger := homophoneTagger("はしをわたる")
	lexicon := testutils.MapLexicon{"はし": {"橋", "箸"}}

	t.Run("nil tagger rejected", func(t *testing.T) {
		_, err := NewHomophone(nil, lexicon, homophoneCfg())
		assert.ErrorIs(t, err, ErrNilTagger)
	})

	t.Run("nil lexicon rejected", func(t *testing.T) {
		_, err := NewHomophone(tagger, nil, homophoneCfg())
		assert.ErrorIs(t, err, ErrNilOracle)
	})

	t.Run("empty lexicon degrades instead of failing", func(t *testing.T) {
		attack, err := NewHomophone(tagger, testutils.MapLexicon{}, homophoneCfg())
		require.NoError(t, err)
		require.NoError(t, attack.Validate())

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), "はしをわたる")
		require.NoError(t, err)
		assert.Equal(t, "はしをわたる", out)
	})
}

func TestHomophonePerturb(t *testing.T) {
	text := "はしをわたる"

	t.Run("substitutes a same-reading word", func(t *testing.T) {
		lexicon := testutils.MapLexicon{"はし": {"橋", "箸", "はし"}}
		attack, err := NewHomophone(homophoneTagger(text), lexicon, homophoneCfg())
		require.NoError(t, err)

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), text)
		require.NoError(t, err)
		// The reading ハシ is folded to hiragana for the lookup; the
		// identical spelling はし is never chosen as its own replacement.
		assert.Contains(t, []string{"橋をわたる", "箸をわたる"}, out)
	})

	t.Run("single-spelling reading passes through", func(t *testing.T) {
		// One candidate means the reading is not ambiguous at all, even
		// when that candidate differs from the analyzed surface.
		lexicon := testutils.MapLexicon{"はし": {"橋"}}
		attack, err := NewHomophone(homophoneTagger(text), lexicon, homophoneCfg())
		require.NoError(t, err)

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), text)
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})

	t.Run("duplicate candidates do not make a reading ambiguous", func(t *testing.T) {
		lexicon := testutils.MapLexicon{"はし": {"橋", "橋"}}
		attack, err := NewHomophone(homophoneTagger(text), lexicon, homophoneCfg())
		require.NoError(t, err)

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), text)
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})

	t.Run("unknown reading passes through", func(t *testing.T) {
		lexicon := testutils.MapLexicon{"かき": {"柿", "牡蠣"}}
		attack, err := NewHomophone(homophoneTagger(text), lexicon, homophoneCfg())
		require.NoError(t, err)

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), text)
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})

	t.Run("token without reading is never targeted", func(t *testing.T) {
		tagger := testutils.NewScriptedTagger(map[string]domain.TokenSequence{
			text: {
				{Surface: "はし", POS: domain.POSNoun, Reading: ""},
				{Surface: "を", POS: domain.POSParticle, Reading: "ヲ"},
				{Surface: "わたる", POS: domain.POSVerb, Reading: "ワタル"},
			},
		})
		lexicon := testutils.MapLexicon{"はし": {"橋"}}
		attack, err := NewHomophone(tagger, lexicon, homophoneCfg())
		require.NoError(t, err)

		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), text)
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})

	t.Run("default reinsertion goes by token index", func(t *testing.T) {
		dup := "はしのはし"
		tagger := testutils.NewScriptedTagger(map[string]domain.TokenSequence{
			dup: {
				{Surface: "はし", POS: domain.POSSymbol, Reading: "ハシ"},
				{Surface: "の", POS: domain.POSParticle, Reading: "ノ"},
				{Surface: "はし", POS: domain.POSNoun, Reading: "ハシ"},
			},
		})
		lexicon := testutils.MapLexicon{"はし": {"はし", "端"}}
		attack, err := NewHomophone(tagger, lexicon, homophoneCfg())
		require.NoError(t, err)

		// Only the noun is eligible; the identical leading surface must
		// not be the one rewritten.
		out, err := attack.Perturb(context.Background(), rand.New(rand.NewSource(1)), dup)
		require.NoError(t, err)
		assert.Equal(t, "はしの端", out)
	})
}
