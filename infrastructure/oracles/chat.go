// Package oracles contains the clients for every external model the
// pipeline consults: chat models used for translation, the fill-mask
// language model, the QA span model, and the homophone lexicon.
package oracles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Common errors returned by oracle constructors and clients.
var (
	// ErrEmptyAPIKey is returned when a chat provider is configured
	// without credentials.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrUnknownProvider is returned when no factory is registered for
	// the requested provider name.
	ErrUnknownProvider = errors.New("unknown chat provider")

	// ErrEmptyCompletion is returned when a chat model answers with no
	// usable text.
	ErrEmptyCompletion = errors.New("empty completion from chat model")
)

// ChatModel is the minimal chat-completion surface the translation
// attack needs: one prompt in, one completion out. Provider SDK details
// stay behind this interface.
type ChatModel interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ChatConfig configures one chat provider instance.
type ChatConfig struct {
	// Provider selects the registered backend (openai, anthropic).
	Provider string `yaml:"provider" validate:"required"`

	// APIKey authenticates against the provider.
	APIKey string `yaml:"api_key"`

	// Model overrides the provider's default model when set.
	Model string `yaml:"model"`

	// BaseURL overrides the provider endpoint, mainly for tests and
	// proxies.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single completion request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxTokens caps the completion length; zero uses the provider
	// default.
	MaxTokens int `yaml:"max_tokens"`
}

// ChatFactory builds a ChatModel from configuration.
type ChatFactory func(cfg ChatConfig) (ChatModel, error)

var (
	chatMu        sync.RWMutex
	chatFactories = make(map[string]ChatFactory)
)

// RegisterChatProvider makes a provider available to NewChatModel.
// Providers self-register from init; re-registering a name replaces the
// previous factory.
func RegisterChatProvider(name string, factory ChatFactory) {
	chatMu.Lock()
	defer chatMu.Unlock()
	chatFactories[name] = factory
}

// NewChatModel instantiates the configured provider.
func NewChatModel(cfg ChatConfig) (ChatModel, error) {
	chatMu.RLock()
	factory, ok := chatFactories[cfg.Provider]
	chatMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)",
			ErrUnknownProvider, cfg.Provider, ChatProviders())
	}
	return factory(cfg)
}

// ChatProviders returns the registered provider names, sorted.
func ChatProviders() []string {
	chatMu.RLock()
	defer chatMu.RUnlock()
	names := make([]string, 0, len(chatFactories))
	for name := range chatFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
