// Package evaluation scores model predictions against gold answers
// using exact match and token-level F1 over normalized Japanese text.
package evaluation

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// isEmoji reports whether r belongs to one of the pictographic blocks.
// The ranges cover emoticons, pictographs, transport symbols, flags, and
// the modifier/selector codepoints that accompany them.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF, // misc symbols and pictographs
		r >= 0x1F600 && r <= 0x1F64F, // emoticons
		r >= 0x1F680 && r <= 0x1F6FF, // transport and map
		r >= 0x1F900 && r <= 0x1F9FF, // supplemental symbols
		r >= 0x1FA70 && r <= 0x1FAFF, // extended pictographs
		r >= 0x1F1E6 && r <= 0x1F1FF, // regional indicators
		r >= 0x2600 && r <= 0x26FF, // misc symbols
		r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	}
	return false
}

// emojiResidue catches combining artifacts the block predicate misses:
// variation selectors, skin tone modifiers, zero-width joiners, and the
// keycap combiner that survive after their base pictograph is removed.
var emojiResidue = regexp.MustCompile(`[\x{FE0E}\x{FE0F}\x{200D}\x{20E3}\x{1F3FB}-\x{1F3FF}]`)

// StripEmoji removes pictographic characters and their combining
// residue. Both passes run: the predicate handles the base blocks, the
// regexp the artifacts left behind.
func StripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isEmoji(r) {
			b.WriteRune(r)
		}
	}
	return emojiResidue.ReplaceAllString(b.String(), "")
}

// longVowelRuns matches repeated prolonged sound marks, which dialectal
// or emphatic writing stretches out (すごいーーー).
var longVowelRuns = regexp.MustCompile(`ー{2,}`)

// waveDashes are decorative and carry no phonetic content.
var waveDashes = regexp.MustCompile(`[〜～]`)

// Normalize canonicalizes text before comparison: emoji removal, width
// folding (half-width kana to full, full-width Latin to half), NFKC
// compatibility normalization, case folding, elongated-vowel run
// compression, and whitespace-run collapse.
func Normalize(s string) string {
	s = StripEmoji(s)
	s = width.Fold.String(s)
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = longVowelRuns.ReplaceAllString(s, "ー")
	s = waveDashes.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
