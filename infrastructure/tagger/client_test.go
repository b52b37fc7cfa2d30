package tagger

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorishita/jamble/internal/ports"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "東京で研究", string(body))
		io.WriteString(w, "東京\t名詞,固有名詞,地域,一般,*,*,東京,トウキョウ,トーキョー\n"+
			"で\t助詞,格助詞,一般,*,*,*,で,デ,デ\n"+
			"研究\t名詞,サ変接続,*,*,*,*,研究,ケンキュウ,ケンキュー\n"+
			"EOS\n")
	})
	mux.HandleFunc("/wakati", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "東京 で 研究\n")
	})
	return httptest.NewServer(mux)
}

func TestClientTokenize(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	tokens, err := client.Tokenize(context.Background(), "東京で研究")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "名詞", tokens[0].POS)
	assert.Equal(t, "トウキョウ", tokens[0].Reading)
	assert.Equal(t, "東京で研究", tokens.Join())
}

func TestClientWakati(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	surfaces, err := client.Wakati(context.Background(), "東京で研究")
	require.NoError(t, err)
	assert.Equal(t, []string{"東京", "で", "研究"}, surfaces)
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Tokenize(context.Background(), "x")
	require.Error(t, err)

	var oerr *ports.OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "tagger", oerr.Oracle)
	assert.ErrorIs(t, err, ports.ErrInvalidResponse)
}

func TestNewClientRejectsEmptyURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
