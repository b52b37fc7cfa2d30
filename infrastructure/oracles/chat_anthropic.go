package oracles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kmorishita/jamble/internal/ports"
)

// Anthropic provider defaults.
const (
	AnthropicDefaultModel     = "claude-3-5-sonnet-20241022"
	anthropicDefaultMaxTokens = 1024
)

func init() {
	RegisterChatProvider("anthropic", newAnthropicChat)
}

// anthropicChat implements ChatModel over the Anthropic Messages API.
type anthropicChat struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func newAnthropicChat(cfg ChatConfig) (ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = AnthropicDefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicChat{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete implements ChatModel.
func (c *anthropicChat) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", c.wrapError(err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return "", &ports.OracleError{Oracle: "anthropic", Operation: "complete", Err: ErrEmptyCompletion}
	}
	return text.String(), nil
}

func (c *anthropicChat) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			err = fmt.Errorf("%w: status %d", ports.ErrRateLimited, apiErr.StatusCode)
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			err = fmt.Errorf("%w: status %d", ports.ErrServiceUnavailable, apiErr.StatusCode)
		}
	}
	return &ports.OracleError{Oracle: "anthropic", Operation: "complete", Err: err}
}
