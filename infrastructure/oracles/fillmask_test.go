package oracles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorishita/jamble/internal/ports"
)

func TestNewFillMaskClientValidation(t *testing.T) {
	_, err := NewFillMaskClient(FillMaskConfig{})
	assert.ErrorContains(t, err, "validation failed")

	client, err := NewFillMaskClient(FillMaskConfig{BaseURL: "http://localhost:9020"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaskToken, client.MaskToken())

	client, err = NewFillMaskClient(FillMaskConfig{BaseURL: "http://localhost:9020", Mask: "<mask>"})
	require.NoError(t, err)
	assert.Equal(t, "<mask>", client.MaskToken())
}

func TestFillMask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fill-mask", r.URL.Path)

		var req fillMaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "[MASK]はすき", req.Inputs)
		assert.Equal(t, 3, req.TopK)

		json.NewEncoder(w).Encode([]fillMaskResult{
			{TokenStr: " りんご", Score: 0.8},
			{TokenStr: "バナナ", Score: 0.1},
		})
	}))
	defer server.Close()

	client, err := NewFillMaskClient(FillMaskConfig{BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.FillMask(context.Background(), "[MASK]はすき", 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ports.FillCandidate{Token: "りんご", Score: 0.8}, got[0])
	assert.Equal(t, ports.FillCandidate{Token: "バナナ", Score: 0.1}, got[1])
}

func TestFillMaskErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ports.ErrRateLimited},
		{"server error", http.StatusInternalServerError, ports.ErrServiceUnavailable},
		{"client error", http.StatusBadRequest, ports.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client, err := NewFillMaskClient(FillMaskConfig{BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.FillMask(context.Background(), "text", 5)
			assert.ErrorIs(t, err, tt.want)

			var oerr *ports.OracleError
			require.ErrorAs(t, err, &oerr)
			assert.Equal(t, "fillmask", oerr.Oracle)
		})
	}
}
