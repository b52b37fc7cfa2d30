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
var _ ports.FillMasker = (*FillMaskClient)(nil)

// FillMaskConfig holds the settings for the masked-LM inference client.
type FillMaskConfig struct {
	// BaseURL is the inference endpoint serving the fill-mask pipeline.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Mask is the placeholder the served model expects. Empty selects
	// the BERT convention "[MASK]".
	Mask string `yaml:"mask"`

	// Timeout bounds each request. Zero selects DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond throttles inference calls. Zero disables
	// throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
}

// DefaultMaskToken is the placeholder used when none is configured.
const DefaultMaskToken = "[MASK]"

// fillMaskRequest is the inference-server request body.
type fillMaskRequest struct {
	Inputs string `json:"inputs"`
	TopK   int    `json:"top_k,omitempty"`
}

// fillMaskResult is one candidate in the inference-server response.
// Field names follow the transformers fill-mask pipeline output.
type fillMaskResult struct {
	TokenStr string  `json:"token_str"`
	Score    float64 `json:"score"`
}

// FillMaskClient talks to an inference server exposing a fill-mask
// pipeline over JSON. Safe for concurrent use.
type FillMaskClient struct {
	baseURL string
	mask    string
	http    *http.Client
	limiter *rate.Limiter
}

// NewFillMaskClient validates the configuration and returns a ready
// client.
func NewFillMaskClient(cfg FillMaskConfig) (*FillMaskClient, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	mask := cfg.Mask
	if mask == "" {
		mask = DefaultMaskToken
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultOracleTimeout
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &FillMaskClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		mask:    mask,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// MaskToken implements ports.FillMasker.
func (c *FillMaskClient) MaskToken() string { return c.mask }

// FillMask implements ports.FillMasker.
func (c *FillMaskClient) FillMask(ctx context.Context, text string, topK int) ([]ports.FillCandidate, error) {
	var results []fillMaskResult
	err := postJSON(ctx, c.http, c.limiter, c.baseURL+"/fill-mask",
		fillMaskRequest{Inputs: text, TopK: topK}, &results)
	if err != nil {
		return nil, &ports.OracleError{Oracle: "fillmask", Operation: "fill", Err: err}
	}

	out := make([]ports.FillCandidate, 0, len(results))
	for _, r := range results {
		out = append(out, ports.FillCandidate{
			// Subword tokenizers pad candidates with marker whitespace.
			Token: strings.TrimSpace(r.TokenStr),
			Score: r.Score,
		})
	}
	return out, nil
}
