// Package domain contains pure, dependency-free domain models and types
// for the perturbation and evaluation pipeline.
package domain

import "strings"

// Part-of-speech categories as emitted by a MeCab-compatible tagger.
// The coarse category (pos1) is kept as a plain string because dictionary
// variants (IPADIC, UniDic) agree on these values but differ on finer ones.
const (
	POSNoun          = "名詞"
	POSVerb          = "動詞"
	POSAdjective     = "形容詞"
	POSAdverb        = "副詞"
	POSParticle      = "助詞"
	POSAuxiliaryVerb = "助動詞"
	POSSymbol        = "記号"
	POSBoundary      = "BOS/EOS"
	POSWhitespace    = "空白"
)

// closedClassPOS is the set of categories that are never perturbation
// targets by default: function words and non-words whose removal or
// corruption changes sentence structure rather than simulating noise.
var closedClassPOS = map[string]struct{}{
	POSParticle:      {},
	POSAuxiliaryVerb: {},
	POSSymbol:        {},
	POSBoundary:      {},
	POSWhitespace:    {},
}

// IsClosedClass reports whether pos belongs to the excluded closed-class
// set (particles, auxiliary verbs, symbols, boundary markers, whitespace).
// An empty pos is treated as closed-class: a token whose features could
// not be parsed must never be selected as a target.
func IsClosedClass(pos string) bool {
	if pos == "" {
		return true
	}
	_, ok := closedClassPOS[pos]
	return ok
}

// Token is a single morpheme produced by the tagger.
// Tokens are immutable once produced; transforms operate on copies of
// the surface-form sequence, never on the Token itself.
type Token struct {
	// Surface is the literal text of the token as it appears in the
	// sentence.
	Surface string

	// POS is the coarse part-of-speech category (pos1).
	POS string

	// Reading is the katakana phonetic transcription when the tagger
	// provides one (kana= or pron= attribute). Empty otherwise.
	Reading string
}

// TokenSequence is an ordered, index-addressable sequence of tokens.
// Concatenating all surfaces reproduces the tagged sentence text.
type TokenSequence []Token

// Surfaces returns a fresh slice of the surface forms, in order.
// Callers may mutate the returned slice freely.
func (ts TokenSequence) Surfaces() []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Surface
	}
	return out
}

// Join concatenates all surfaces with no separator, reconstructing the
// sentence the way Japanese text is written.
func (ts TokenSequence) Join() string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.Surface)
	}
	return b.String()
}
