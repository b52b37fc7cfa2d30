package attacks

import (
	"math/rand"

	"github.com/kmorishita/jamble/internal/domain"
)

// CharEdit applies one bounded edit to a copy of a token's rune slice.
// It returns the edited runes and whether an edit was possible; a false
// result means the word had no eligible position for this edit.
type CharEdit func(rng *rand.Rand, word []rune) ([]rune, bool)

var hiraganaPool = []rune(domain.HiraganaPool)
var asciiPool = []rune(domain.ASCIILetterPool)

// editDeleteRune removes one rune. The draw range is [0, len-1), so the
// final rune is never the victim; words shorter than two runes are left
// alone.
func editDeleteRune(rng *rand.Rand, word []rune) ([]rune, bool) {
	if len(word) < 2 {
		return word, false
	}
	idx := rng.Intn(len(word) - 1)
	out := make([]rune, 0, len(word)-1)
	out = append(out, word[:idx]...)
	out = append(out, word[idx+1:]...)
	return out, true
}

// editDeleteHiragana removes one rune drawn only from the word's
// hiragana positions.
func editDeleteHiragana(rng *rand.Rand, word []rune) ([]rune, bool) {
	if len(word) < 2 {
		return word, false
	}
	idxs := classIndices(word, domain.IsHiragana)
	if len(idxs) == 0 {
		return word, false
	}
	idx := idxs[rng.Intn(len(idxs))]
	out := make([]rune, 0, len(word)-1)
	out = append(out, word[:idx]...)
	out = append(out, word[idx+1:]...)
	return out, true
}

// editInsertHiragana inserts one random syllabary rune at a uniformly
// random position, both ends included.
func editInsertHiragana(rng *rand.Rand, word []rune) ([]rune, bool) {
	idx := rng.Intn(len(word) + 1)
	ch := hiraganaPool[rng.Intn(len(hiraganaPool))]
	out := make([]rune, 0, len(word)+1)
	out = append(out, word[:idx]...)
	out = append(out, ch)
	out = append(out, word[idx:]...)
	return out, true
}

// editAppendASCII appends one random lowercase Latin letter, emulating a
// stray keystroke at the word boundary.
func editAppendASCII(rng *rand.Rand, word []rune) ([]rune, bool) {
	ch := asciiPool[rng.Intn(len(asciiPool))]
	out := make([]rune, 0, len(word)+1)
	out = append(out, word...)
	out = append(out, ch)
	return out, true
}

// editReplaceHiragana overwrites one rune at a random position with a
// random syllabary rune.
func editReplaceHiragana(rng *rand.Rand, word []rune) ([]rune, bool) {
	if len(word) == 0 {
		return word, false
	}
	idx := rng.Intn(len(word))
	out := make([]rune, len(word))
	copy(out, word)
	out[idx] = hiraganaPool[rng.Intn(len(hiraganaPool))]
	return out, true
}

// editReplaceParticle overwrites one rune with a case particle drawn
// from the closed confusion set, always different from the rune it
// replaces.
func editReplaceParticle(rng *rand.Rand, word []rune) ([]rune, bool) {
	if len(word) == 0 {
		return word, false
	}
	idx := rng.Intn(len(word))
	pool := make([]rune, 0, len(domain.ParticlePool))
	for _, p := range domain.ParticlePool {
		if p != word[idx] {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return word, false
	}
	out := make([]rune, len(word))
	copy(out, word)
	out[idx] = pool[rng.Intn(len(pool))]
	return out, true
}

// editRepeatHiragana duplicates one hiragana rune in place, emulating
// key chattering. Words without hiragana are left alone.
func editRepeatHiragana(rng *rand.Rand, word []rune) ([]rune, bool) {
	idxs := classIndices(word, domain.IsHiragana)
	if len(idxs) == 0 {
		return word, false
	}
	idx := idxs[rng.Intn(len(idxs))]
	out := make([]rune, 0, len(word)+1)
	out = append(out, word[:idx+1]...)
	out = append(out, word[idx])
	out = append(out, word[idx+1:]...)
	return out, true
}

// editSwapAdjacent exchanges two adjacent runes at a random interior
// boundary; requires at least two runes.
func editSwapAdjacent(rng *rand.Rand, word []rune) ([]rune, bool) {
	if len(word) < 2 {
		return word, false
	}
	idx := rng.Intn(len(word) - 1)
	out := make([]rune, len(word))
	copy(out, word)
	out[idx], out[idx+1] = out[idx+1], out[idx]
	return out, true
}

// editKataToHiraOne converts one random katakana rune to hiragana via
// the phonetic table. A word with no katakana is reported unedited.
func editKataToHiraOne(rng *rand.Rand, word []rune) ([]rune, bool) {
	return convertOne(rng, word, domain.IsKatakana, domain.KataToHiraRune)
}

// editHiraToKataOne converts one random hiragana rune to katakana.
func editHiraToKataOne(rng *rand.Rand, word []rune) ([]rune, bool) {
	return convertOne(rng, word, domain.IsHiragana, domain.HiraToKataRune)
}

func convertOne(rng *rand.Rand, word []rune, member func(rune) bool, conv func(rune) rune) ([]rune, bool) {
	// Runes the table leaves unchanged (ー, ・) are not candidates even
	// though they sit inside the kana block.
	idxs := classIndices(word, func(r rune) bool {
		return member(r) && conv(r) != r
	})
	if len(idxs) == 0 {
		return word, false
	}
	idx := idxs[rng.Intn(len(idxs))]
	out := make([]rune, len(word))
	copy(out, word)
	out[idx] = conv(out[idx])
	return out, true
}

func classIndices(word []rune, member func(rune) bool) []int {
	var idxs []int
	for i, r := range word {
		if member(r) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
