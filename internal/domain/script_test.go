package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKataToHira(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain katakana", "コンピュータ", "こんぴゅーた"},
		{"prolonged mark kept", "コーヒー", "こーひー"},
		{"mixed scripts untouched except kana", "東京タワー", "東京たわー"},
		{"hiragana passthrough", "ひらがな", "ひらがな"},
		{"ascii passthrough", "abc123", "abc123"},
		{"empty", "", ""},
		{"small kana", "キャット", "きゃっと"},
		{"vu", "ヴ", "ゔ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KataToHira(tt.input))
		})
	}
}

func TestHiraToKata(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain hiragana", "こんぴゅーた", "コンピュータ"},
		{"kanji untouched", "食べ物", "食ベ物"},
		{"katakana passthrough", "カタカナ", "カタカナ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HiraToKata(tt.input))
		})
	}
}

func TestRoundTripConvertibleRange(t *testing.T) {
	// Every rune in the main katakana range must survive a there-and-back
	// conversion; the mapping is a pure offset, so this guards the bounds.
	for r := rune(0x30A1); r <= 0x30F6; r++ {
		assert.Equal(t, r, HiraToKataRune(KataToHiraRune(r)), "rune %U", r)
	}
}

func TestScriptPredicates(t *testing.T) {
	assert.True(t, ContainsHiragana("食べ物"))
	assert.False(t, ContainsHiragana("東京大学"))
	assert.True(t, ContainsKatakana("文春フラッシュ"))
	assert.False(t, ContainsKatakana("しました"))

	// ー belongs to the katakana block and keeps elongated words eligible.
	assert.True(t, IsKatakana('ー'))
	assert.False(t, IsHiragana('ー'))
}

func TestIsClosedClass(t *testing.T) {
	for _, pos := range []string{POSParticle, POSAuxiliaryVerb, POSSymbol, POSBoundary, POSWhitespace, ""} {
		assert.True(t, IsClosedClass(pos), pos)
	}
	for _, pos := range []string{POSNoun, POSVerb, POSAdjective, POSAdverb, "感動詞"} {
		assert.False(t, IsClosedClass(pos), pos)
	}
}
