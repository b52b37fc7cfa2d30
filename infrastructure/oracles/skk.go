package oracles

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/kmorishita/jamble/internal/ports"
)

// Compile-time interface check.
var _ ports.Lexicon = (*SKKLexicon)(nil)

// SKKDefaultURL is the canonical location of the large SKK dictionary.
const SKKDefaultURL = "https://skk-dev.github.io/dict/SKK-JISYO.L"

// SKKConfig holds the settings for the homophone lexicon source.
type SKKConfig struct {
	// URL is the dictionary download location.
	URL string `yaml:"url" validate:"omitempty,url"`

	// CachePath is where the raw dictionary is stored between runs. The
	// download happens at most once; later constructions read the cache.
	CachePath string `yaml:"cache_path" validate:"required"`

	// Timeout bounds the one-time download.
	Timeout time.Duration `yaml:"timeout"`
}

// SKKLexicon is an in-memory homophone lexicon built from an SKK
// dictionary file. SKK dictionaries are EUC-JP encoded and map a
// hiragana reading to candidate spellings:
//
//	はし /橋/箸/端;annotation/
//
// Lookups after construction are read-only and safe for concurrent use.
type SKKLexicon struct {
	entries map[string][]string
}

// NewSKKLexicon loads the dictionary from the cache path, downloading it
// first when the cache does not exist yet. On failure it returns an
// empty but usable lexicon together with the error: the homophone
// attack then skips every target instead of taking the run down, and
// the caller decides whether that is acceptable.
func NewSKKLexicon(ctx context.Context, cfg SKKConfig) (*SKKLexicon, error) {
	empty := &SKKLexicon{entries: map[string][]string{}}
	if err := validate.Struct(cfg); err != nil {
		return empty, fmt.Errorf("configuration validation failed: %w", err)
	}

	if _, err := os.Stat(cfg.CachePath); os.IsNotExist(err) {
		if err := downloadSKK(ctx, cfg); err != nil {
			return empty, &ports.OracleError{Oracle: "lexicon", Operation: "fetch", Err: err}
		}
	}

	f, err := os.Open(cfg.CachePath)
	if err != nil {
		return empty, &ports.OracleError{Oracle: "lexicon", Operation: "load", Err: err}
	}
	defer f.Close()

	// The cached file keeps the upstream EUC-JP encoding; decoding
	// happens on load so the cache stays byte-identical to the source.
	entries, err := ParseSKK(transform.NewReader(f, japanese.EUCJP.NewDecoder()))
	if err != nil {
		return empty, &ports.OracleError{Oracle: "lexicon", Operation: "load", Err: err}
	}
	return &SKKLexicon{entries: entries}, nil
}

// Lookup implements ports.Lexicon. Unknown readings yield an empty
// slice, never an error.
func (l *SKKLexicon) Lookup(reading string) []string {
	out := make([]string, len(l.entries[reading]))
	copy(out, l.entries[reading])
	return out
}

// Len implements ports.Lexicon.
func (l *SKKLexicon) Len() int { return len(l.entries) }

// ParseSKK reads SKK dictionary lines from an already-decoded (UTF-8)
// reader. Comment lines and okuri-ari entries (readings carrying a
// trailing ASCII conjugation marker) are skipped; both would produce
// candidates that are not drop-in homophones. Annotations after ';' in a
// candidate are stripped.
func ParseSKK(r io.Reader) (map[string][]string, error) {
	entries := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		reading, rest, ok := strings.Cut(line, " /")
		if !ok || hasASCIILetter(reading) {
			continue
		}
		var candidates []string
		for _, c := range strings.Split(rest, "/") {
			if c == "" {
				continue
			}
			if annotated, _, found := strings.Cut(c, ";"); found {
				c = annotated
			}
			if c != "" {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) > 0 {
			entries[reading] = append(entries[reading], candidates...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return entries, nil
}

func hasASCIILetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func downloadSKK(ctx context.Context, cfg SKKConfig) error {
	url := cfg.URL
	if url == "" {
		url = SKKDefaultURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultOracleTimeout
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ports.ErrInvalidResponse, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
		return err
	}
	// Write through a temp file so a failed download never leaves a
	// truncated cache behind.
	tmp, err := os.CreateTemp(filepath.Dir(cfg.CachePath), ".skk-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), cfg.CachePath)
}
