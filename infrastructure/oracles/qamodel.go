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
var _ ports.QAModel = (*QAModelClient)(nil)

// QAModelConfig holds the settings for the span-prediction client.
type QAModelConfig struct {
	// BaseURL is the inference endpoint serving the QA model.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Timeout bounds each batched request. Zero selects
	// DefaultOracleTimeout.
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond throttles inference calls. Zero disables
	// throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
}

// qaRequest is the batched inference request body.
type qaRequest struct {
	Pairs []qaPair `json:"pairs"`
}

type qaPair struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// qaResponse mirrors the inference server's batched output: raw logit
// vectors plus the tokenizer's tokens so the caller can decode spans.
type qaResponse struct {
	Predictions []qaPrediction `json:"predictions"`
}

type qaPrediction struct {
	StartLogits []float64 `json:"start_logits"`
	EndLogits   []float64 `json:"end_logits"`
	Tokens      []string  `json:"tokens"`
	Special     []bool    `json:"special_tokens_mask"`
}

// QAModelClient talks to an inference server exposing an extractive QA
// model over JSON. Safe for concurrent use.
type QAModelClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewQAModelClient validates the configuration and returns a ready
// client.
func NewQAModelClient(cfg QAModelConfig) (*QAModelClient, error) {
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
	return &QAModelClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// PredictSpans implements ports.QAModel. The response must be
// positionally aligned with the request batch; a length mismatch is an
// invalid response, not a partial result.
func (c *QAModelClient) PredictSpans(ctx context.Context, pairs []ports.QAPair) ([]ports.SpanPrediction, error) {
	req := qaRequest{Pairs: make([]qaPair, len(pairs))}
	for i, p := range pairs {
		req.Pairs[i] = qaPair{Question: p.Question, Context: p.Context}
	}

	var resp qaResponse
	if err := postJSON(ctx, c.http, c.limiter, c.baseURL+"/predict", req, &resp); err != nil {
		return nil, &ports.OracleError{Oracle: "qamodel", Operation: "predict", Err: err}
	}
	if len(resp.Predictions) != len(pairs) {
		return nil, &ports.OracleError{
			Oracle:    "qamodel",
			Operation: "predict",
			Err: fmt.Errorf("%w: got %d predictions for %d pairs",
				ports.ErrInvalidResponse, len(resp.Predictions), len(pairs)),
		}
	}

	out := make([]ports.SpanPrediction, len(resp.Predictions))
	for i, p := range resp.Predictions {
		out[i] = ports.SpanPrediction{
			StartLogits: p.StartLogits,
			EndLogits:   p.EndLogits,
			Tokens:      p.Tokens,
			Special:     p.Special,
		}
	}
	return out, nil
}
