package oracles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel records the prompt it received and answers with a fixed
// completion.
type fakeChatModel struct {
	reply  string
	err    error
	system string
	prompt string
}

func (f *fakeChatModel) Complete(_ context.Context, system, prompt string) (string, error) {
	f.system = system
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestNewChatTranslatorValidation(t *testing.T) {
	t.Run("nil model rejected", func(t *testing.T) {
		_, err := NewChatTranslator(nil, TranslatorConfig{Source: "Japanese", Target: "English"})
		assert.ErrorContains(t, err, "nil")
	})

	t.Run("missing language pair rejected", func(t *testing.T) {
		_, err := NewChatTranslator(&fakeChatModel{}, TranslatorConfig{Source: "Japanese"})
		assert.ErrorContains(t, err, "validation failed")
	})
}

func TestChatTranslatorTranslate(t *testing.T) {
	t.Run("builds a directional prompt", func(t *testing.T) {
		model := &fakeChatModel{reply: "  I ate an apple \n"}
		tr, err := NewChatTranslator(model, TranslatorConfig{Source: "Japanese", Target: "English"})
		require.NoError(t, err)

		out, err := tr.Translate(context.Background(), "私はりんごを食べた")
		require.NoError(t, err)
		assert.Equal(t, "I ate an apple", out, "completions are trimmed")
		assert.Contains(t, model.prompt, "Japanese")
		assert.Contains(t, model.prompt, "English")
		assert.Contains(t, model.prompt, "私はりんごを食べた")
		assert.NotEmpty(t, model.system)
	})

	t.Run("model errors propagate", func(t *testing.T) {
		model := &fakeChatModel{err: errors.New("quota exceeded")}
		tr, err := NewChatTranslator(model, TranslatorConfig{Source: "English", Target: "Japanese"})
		require.NoError(t, err)

		_, err = tr.Translate(context.Background(), "hello")
		assert.ErrorContains(t, err, "quota exceeded")
	})
}
