package tagger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kmorishita/jamble/internal/domain"
	"github.com/kmorishita/jamble/internal/ports"
)

// Compile-time interface check.
var _ ports.Tagger = (*Client)(nil)

// Config holds the settings for the tagger sidecar client.
type Config struct {
	// BaseURL is the tagger service endpoint, e.g. "http://localhost:9010".
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Timeout bounds each request. Zero selects DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond throttles calls to the sidecar. Zero disables
	// throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
}

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client talks to a tagger sidecar speaking the MeCab wire format:
// POST /parse returns lattice lines, POST /wakati returns one
// space-joined line of surface forms. The client is safe for concurrent
// use; one instance serves the whole process.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient validates the configuration and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tagger: base URL required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("tagger: invalid base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}, nil
}

// Tokenize sends text for lattice analysis and parses the result.
func (c *Client) Tokenize(ctx context.Context, text string) (domain.TokenSequence, error) {
	out, err := c.post(ctx, "/parse", text)
	if err != nil {
		return nil, &ports.OracleError{Oracle: "tagger", Operation: "parse", Err: err}
	}
	return ParseLattice(out), nil
}

// Wakati sends text for surface-only segmentation.
func (c *Client) Wakati(ctx context.Context, text string) ([]string, error) {
	out, err := c.post(ctx, "/wakati", text)
	if err != nil {
		return nil, &ports.OracleError{Oracle: "tagger", Operation: "wakati", Err: err}
	}
	return strings.Fields(out), nil
}

func (c *Client) post(ctx context.Context, path, body string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ports.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ports.ErrInvalidResponse, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrInvalidResponse, err)
	}
	return string(data), nil
}
