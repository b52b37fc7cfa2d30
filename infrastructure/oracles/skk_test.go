package oracles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const skkSample = `;; -*- mode: fundamental; coding: euc-jp -*-
;; okuri-ari entries.
わたr /渡/
;; okuri-nasi entries.
はし /橋/箸;食器/端/
かき /柿/牡蠣;shellfish/
とうきょう /東京/
`

func TestParseSKK(t *testing.T) {
	entries, err := ParseSKK(strings.NewReader(skkSample))
	require.NoError(t, err)

	assert.Equal(t, []string{"橋", "箸", "端"}, entries["はし"], "annotations after ; are stripped")
	assert.Equal(t, []string{"柿", "牡蠣"}, entries["かき"])
	assert.Equal(t, []string{"東京"}, entries["とうきょう"])
	assert.NotContains(t, entries, "わたr", "okuri-ari entries are skipped")
	assert.Len(t, entries, 3)
}

func TestSKKLexiconFromCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "SKK-JISYO.L")
	writeEUCJP(t, cache, skkSample)

	lex, err := NewSKKLexicon(context.Background(), SKKConfig{CachePath: cache})
	require.NoError(t, err)

	assert.Equal(t, 3, lex.Len())
	assert.Equal(t, []string{"橋", "箸", "端"}, lex.Lookup("はし"))
	assert.Empty(t, lex.Lookup("ほげ"), "unknown reading yields empty, not error")
}

func TestSKKLexiconDownloadsOnce(t *testing.T) {
	encoded, err := japanese.EUCJP.NewEncoder().String(skkSample)
	require.NoError(t, err)

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(encoded))
	}))
	defer server.Close()

	cache := filepath.Join(t.TempDir(), "dict", "SKK-JISYO.L")
	cfg := SKKConfig{URL: server.URL, CachePath: cache}

	lex, err := NewSKKLexicon(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, lex.Len())
	assert.Equal(t, 1, hits)

	// The cache keeps the raw EUC-JP bytes.
	raw, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, encoded, string(raw))

	// Second construction reads the cache, not the network.
	lex, err = NewSKKLexicon(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, lex.Len())
	assert.Equal(t, 1, hits)
}

func TestSKKLexiconDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := filepath.Join(t.TempDir(), "SKK-JISYO.L")
	lex, err := NewSKKLexicon(context.Background(), SKKConfig{URL: server.URL, CachePath: cache})
	require.Error(t, err)
	require.NotNil(t, lex, "failure degrades to an empty lexicon")
	assert.Equal(t, 0, lex.Len())
	assert.Empty(t, lex.Lookup("はし"))

	_, statErr := os.Stat(cache)
	assert.True(t, os.IsNotExist(statErr), "failed download must not leave a cache file")
}

func writeEUCJP(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := transform.NewWriter(f, japanese.EUCJP.NewEncoder())
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
