package oracles

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kmorishita/jamble/internal/ports"
)

// Compile-time interface check.
var _ ports.Translator = (*HTTPTranslator)(nil)

// HTTPTranslatorConfig holds the settings for one direction of an
// inference-server translation pair. Back-translation needs two of
// these, one per direction.
type HTTPTranslatorConfig struct {
	// BaseURL is the inference endpoint serving the translation
	// pipeline for this direction.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Timeout bounds each request. Zero selects DefaultOracleTimeout.
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond throttles translation calls. Zero disables
	// throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
}

// translationRequest is the inference-server request body.
type translationRequest struct {
	Inputs string `json:"inputs"`
}

// translationResult is one entry in the inference-server response.
// Field names follow the transformers translation pipeline output.
type translationResult struct {
	TranslationText string `json:"translation_text"`
}

// HTTPTranslator talks to an inference server exposing a fixed-direction
// translation pipeline over JSON. Safe for concurrent use.
type HTTPTranslator struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewHTTPTranslator validates the configuration and returns a ready
// client.
func NewHTTPTranslator(cfg HTTPTranslatorConfig) (*HTTPTranslator, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultOracleTimeout
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &HTTPTranslator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// Translate implements ports.Translator.
func (c *HTTPTranslator) Translate(ctx context.Context, text string) (string, error) {
	var results []translationResult
	err := postJSON(ctx, c.http, c.limiter, c.baseURL+"/translate",
		translationRequest{Inputs: text}, &results)
	if err != nil {
		return "", &ports.OracleError{Oracle: "translator", Operation: "translate", Err: err}
	}
	if len(results) == 0 {
		return "", &ports.OracleError{
			Oracle:    "translator",
			Operation: "translate",
			Err:       fmt.Errorf("%w: no translations returned", ports.ErrInvalidResponse),
		}
	}
	return strings.TrimSpace(results[0].TranslationText), nil
}
