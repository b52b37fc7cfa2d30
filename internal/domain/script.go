package domain

import "strings"

// Kana script helpers. The conversion between katakana and hiragana is a
// fixed phonetic mapping: the two blocks are laid out in parallel, so
// convertible characters differ by a constant rune offset of 0x60
// (ア U+30A2 ↔ あ U+3042).

const kanaOffset = 0x60

// HiraganaPool is the plain hiragana syllabary used as the draw pool for
// insertion and replacement edits.
const HiraganaPool = "あいうえおかきくけこさしすせそたちつてとなにぬねのはひふへほまみむめもやゆよらりるれろわをん"

// ASCIILetterPool is the draw pool for the Latin-append insertion variant.
const ASCIILetterPool = "abcdefghijklmnopqrstuvwxyz"

// ParticlePool is the closed set of case particles used by the
// particle-confusion replacement edit.
var ParticlePool = []rune{'は', 'が', 'を', 'に', 'で', 'と', 'へ', 'も'}

// IsHiragana reports whether r lies in the hiragana block (U+3040–U+309F).
func IsHiragana(r rune) bool { return r >= 0x3040 && r <= 0x309F }

// IsKatakana reports whether r lies in the katakana block (U+30A0–U+30FF).
// The prolonged sound mark ー (U+30FC) is part of the block and therefore
// counts as katakana for target eligibility, matching tagger behavior.
func IsKatakana(r rune) bool { return r >= 0x30A0 && r <= 0x30FF }

// KataToHiraRune maps a single katakana rune to its hiragana counterpart.
// Runes outside the convertible range (ァ U+30A1 … ヶ U+30F6), such as ー
// or ・, are returned unchanged.
func KataToHiraRune(r rune) rune {
	if r >= 0x30A1 && r <= 0x30F6 {
		return r - kanaOffset
	}
	return r
}

// HiraToKataRune maps a single hiragana rune to its katakana counterpart.
// Runes outside ぁ U+3041 … ゖ U+3096 are returned unchanged.
func HiraToKataRune(r rune) rune {
	if r >= 0x3041 && r <= 0x3096 {
		return r + kanaOffset
	}
	return r
}

// KataToHira converts every convertible katakana rune in s to hiragana.
func KataToHira(s string) string {
	return strings.Map(KataToHiraRune, s)
}

// HiraToKata converts every convertible hiragana rune in s to katakana.
func HiraToKata(s string) string {
	return strings.Map(HiraToKataRune, s)
}

// ContainsHiragana reports whether s contains at least one hiragana rune.
func ContainsHiragana(s string) bool {
	return strings.ContainsFunc(s, IsHiragana)
}

// ContainsKatakana reports whether s contains at least one katakana rune.
func ContainsKatakana(s string) bool {
	return strings.ContainsFunc(s, IsKatakana)
}
