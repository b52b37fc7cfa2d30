package oracles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/kmorishita/jamble/internal/ports"
)

// DefaultOracleTimeout applies when an oracle client config leaves its
// timeout at zero. Model inference is slower than the tagger sidecar,
// hence the generous bound.
const DefaultOracleTimeout = 60 * time.Second

// postJSON performs one rate-limited JSON request/response round trip.
// Non-2xx statuses map onto the shared oracle error taxonomy so callers
// can branch on errors.Is.
func postJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, in, out any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ports.ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ports.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ports.ErrInvalidResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrInvalidResponse, err)
	}
	return nil
}
