package oracles

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/kmorishita/jamble/internal/ports"
)

// Compile-time interface check.
var _ ports.Translator = (*ChatTranslator)(nil)

// translatorSystemPrompt pins the chat model to bare translation output.
const translatorSystemPrompt = "You are a professional translator. " +
	"Reply with the translation only: no quotes, no commentary, no romanization."

// TranslatorConfig configures one translation leg.
type TranslatorConfig struct {
	// Source and Target are human-readable language names used in the
	// prompt, e.g. "Japanese" and "English".
	Source string `yaml:"source" validate:"required"`
	Target string `yaml:"target" validate:"required"`

	// RequestsPerSecond throttles calls to the chat provider; zero
	// disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

// ChatTranslator adapts a chat model into a one-directional translator.
// Back-translation is built from two of these with mirrored language
// pairs, possibly on different providers.
type ChatTranslator struct {
	model   ChatModel
	cfg     TranslatorConfig
	limiter *rate.Limiter
}

// NewChatTranslator builds a translation leg on top of the given chat
// model.
func NewChatTranslator(model ChatModel, cfg TranslatorConfig) (*ChatTranslator, error) {
	if model == nil {
		return nil, fmt.Errorf("chat model cannot be nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &ChatTranslator{model: model, cfg: cfg, limiter: limiter}, nil
}

// Translate implements ports.Translator.
func (t *ChatTranslator) Translate(ctx context.Context, text string) (string, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", &ports.OracleError{Oracle: "translator", Operation: "translate", Err: err}
		}
	}

	prompt := fmt.Sprintf("Translate the following %s text into %s.\n\n%s",
		t.cfg.Source, t.cfg.Target, text)
	out, err := t.model.Complete(ctx, translatorSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
