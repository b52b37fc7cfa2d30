// Package tagger adapts an external MeCab-compatible morphological
// analyzer into the ports.Tagger contract. The adapter owns the one
// hardened implementation of feature-string parsing; attacks never parse
// tagger features themselves.
package tagger

import (
	"strings"

	"github.com/kmorishita/jamble/internal/domain"
)

// Features is the coarse information extracted from one tagger feature
// string: the pos1 category and the katakana reading when present.
type Features struct {
	POS     string
	Reading string
}

// ParseFeatures extracts Features from a raw feature string. Two
// encodings occur depending on the dictionary build:
//
//   - an attributed form: UnidicFeatures17(pos1='名詞', ..., kana='カイギ', ...)
//   - a comma-delimited form: 名詞,固有名詞,組織,*,*,*,東京大学,トウキョウダイガク,...
//
// The structured attribute form is tried first, then the delimited
// fallback. Malformed input never causes an error: the result simply has
// empty fields, and an empty POS is treated as closed-class downstream.
func ParseFeatures(feature string) Features {
	if pos, ok := attrValue(feature, "pos1"); ok {
		f := Features{POS: pos}
		if kana, ok := attrValue(feature, "kana"); ok {
			f.Reading = kana
		} else if pron, ok := attrValue(feature, "pron"); ok {
			f.Reading = pron
		}
		return f
	}
	return parseDelimited(feature)
}

// attrValue extracts the value of key='value' from an attributed feature
// string. Missing keys and unterminated quotes report !ok rather than
// guessing.
func attrValue(feature, key string) (string, bool) {
	marker := key + "='"
	start := strings.Index(feature, marker)
	if start < 0 {
		return "", false
	}
	rest := feature[start+len(marker):]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// parseDelimited handles the classic CSV feature layout. The reading
// column sits at index 7 in IPADIC-style dictionaries; "*" means absent.
func parseDelimited(feature string) Features {
	if feature == "" {
		return Features{}
	}
	fields := strings.Split(feature, ",")
	f := Features{POS: strings.TrimSpace(fields[0])}
	if f.POS == "*" {
		f.POS = ""
	}
	if len(fields) > 7 {
		if r := strings.TrimSpace(fields[7]); r != "" && r != "*" {
			f.Reading = r
		}
	}
	return f
}

// ParseLattice parses raw MeCab lattice output ("surface\tfeatures" per
// line, terminated by EOS) into a token sequence. Unparseable lines are
// skipped; the EOS marker and blank lines are not tokens.
func ParseLattice(out string) domain.TokenSequence {
	var tokens domain.TokenSequence
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line == "EOS" {
			continue
		}
		surface, feature, found := strings.Cut(line, "\t")
		if !found || surface == "" {
			continue
		}
		f := ParseFeatures(feature)
		tokens = append(tokens, domain.Token{
			Surface: surface,
			POS:     f.POS,
			Reading: f.Reading,
		})
	}
	return tokens
}
