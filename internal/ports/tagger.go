// Package ports defines the interfaces between the domain/application
// layers and the infrastructure layer: the morphological tagger, the
// external model oracles, and the attack contract itself.
package ports

import (
	"context"

	"github.com/kmorishita/jamble/internal/domain"
)

// Tagger is the morphological analysis oracle. Implementations wrap an
// external MeCab-compatible tagger; the adapter extracts the coarse
// part-of-speech category and reading from the tagger's feature string.
//
// Tokenize is deterministic for a fixed tagger model, so callers may
// tokenize the same text repeatedly and rely on stable boundaries.
// Implementations must be safe for concurrent use: the tagger is
// instantiated once per process and shared read-only.
type Tagger interface {
	// Tokenize analyzes text into an ordered token sequence with
	// part-of-speech categories and readings where available.
	// Malformed feature strings never cause an error; affected tokens
	// carry an empty POS and are filtered as closed-class downstream.
	Tokenize(ctx context.Context, text string) (domain.TokenSequence, error)

	// Wakati is the surface-only mode used for metric tokenization:
	// it returns just the ordered surface forms, with no feature parse.
	Wakati(ctx context.Context, text string) ([]string, error)
}
