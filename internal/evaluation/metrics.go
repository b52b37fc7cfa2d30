package evaluation

import (
	"context"

	"github.com/agnivade/levenshtein"

	"github.com/kmorishita/jamble/internal/ports"
)

// punctuation is the exclusion set for scoring tokens: full-width
// Japanese punctuation plus the ASCII punctuation range. A token made
// entirely of these runes carries no answer content.
var punctuation = func() map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range "、。・「」『』（）｛｝【】〈〉《》！？：；…‥ー―　" {
		set[r] = struct{}{}
	}
	for _, r := range "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ " {
		set[r] = struct{}{}
	}
	return set
}()

func isPunctToken(tok string) bool {
	if tok == "" {
		return true
	}
	for _, r := range tok {
		if _, ok := punctuation[r]; !ok {
			return false
		}
	}
	return true
}

// TokenizeForScoring normalizes text, segments it with the tagger's
// surface-only mode, and drops pure punctuation tokens.
func TokenizeForScoring(ctx context.Context, tagger ports.Tagger, text string) ([]string, error) {
	tokens, err := tagger.Wakati(ctx, Normalize(text))
	if err != nil {
		return nil, err
	}
	out := tokens[:0:0]
	for _, tok := range tokens {
		if !isPunctToken(tok) {
			out = append(out, tok)
		}
	}
	return out, nil
}

// F1 scores the multiset overlap between prediction and gold tokens:
// shared count weighted by both lengths, harmonic mean. Zero overlap or
// an empty side scores zero.
func F1(pred, gold []string) float64 {
	if len(pred) == 0 || len(gold) == 0 {
		return 0
	}
	counts := make(map[string]int, len(gold))
	for _, tok := range gold {
		counts[tok]++
	}
	shared := 0
	for _, tok := range pred {
		if counts[tok] > 0 {
			counts[tok]--
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	precision := float64(shared) / float64(len(pred))
	recall := float64(shared) / float64(len(gold))
	return 2 * precision * recall / (precision + recall)
}

// EM scores normalized string equality, 1 or 0. No tokenization.
func EM(pred, gold string) float64 {
	if Normalize(pred) == Normalize(gold) {
		return 1
	}
	return 0
}

// BestEM takes the max exact-match score over all gold answers.
func BestEM(pred string, golds []string) float64 {
	best := 0.0
	for _, gold := range golds {
		if score := EM(pred, gold); score > best {
			best = score
		}
	}
	return best
}

// BestF1 takes the max F1 over all gold token sequences.
func BestF1(predTokens []string, goldTokens [][]string) float64 {
	best := 0.0
	for _, gold := range goldTokens {
		if score := F1(predTokens, gold); score > best {
			best = score
		}
	}
	return best
}

// Fuzzy is an auxiliary similarity in [0,1] based on normalized edit
// distance. It is recorded per sample in the detailed log but does not
// contribute to the headline metrics.
func Fuzzy(pred, gold string) float64 {
	a, b := Normalize(pred), Normalize(gold)
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	longer := len([]rune(a))
	if n := len([]rune(b)); n > longer {
		longer = n
	}
	return 1 - float64(dist)/float64(longer)
}

// BestFuzzy takes the max fuzzy similarity over all gold answers.
func BestFuzzy(pred string, golds []string) float64 {
	best := 0.0
	for _, gold := range golds {
		if score := Fuzzy(pred, gold); score > best {
			best = score
		}
	}
	return best
}
