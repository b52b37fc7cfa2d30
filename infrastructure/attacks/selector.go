package attacks

import (
	"math/rand"

	"github.com/kmorishita/jamble/internal/domain"
)

// LengthMode selects the length predicate applied during target
// selection. Deletion and replacement style edits must leave a non-empty
// remainder, so they require strictly more runes than the threshold;
// insertion and repetition style edits accept equality.
type LengthMode int

const (
	// LengthStrict requires rune count > MinTokenLen.
	LengthStrict LengthMode = iota
	// LengthAtLeast requires rune count >= MinTokenLen.
	LengthAtLeast
	// LengthIgnore skips the length predicate entirely (script
	// conversion attacks select on character class alone).
	LengthIgnore
)

// SelectOptions refine eligibility beyond the PerturbationSpec.
type SelectOptions struct {
	// Mode is the length predicate variant.
	Mode LengthMode

	// RequireSurface, when set, drops tokens whose surface fails the
	// predicate before length filtering (e.g. must contain hiragana).
	RequireSurface func(string) bool

	// IncludeParticles admits particle tokens, which are otherwise
	// excluded as closed-class. Only the particle-confusion attack
	// sets this.
	IncludeParticles bool

	// KeepFunctionWords relaxes the exclusion to symbols, boundary
	// markers, and whitespace only, admitting particles and auxiliary
	// verbs. Script conversion attacks use this: converting kana inside
	// function words is harmless noise, unlike deleting them.
	KeepFunctionWords bool
}

// Eligible returns the ordered indices of tokens that are valid targets
// under the spec and options. The result preserves sentence order; it is
// never an error for the result to be empty.
func Eligible(tokens domain.TokenSequence, spec domain.PerturbationSpec, opts SelectOptions) []int {
	var out []int
	for i, tok := range tokens {
		switch {
		case opts.IncludeParticles && tok.POS == domain.POSParticle:
			// Particle targeting bypasses the closed-class exclusion
			// for particles only; symbols and boundaries stay out.
		case opts.KeepFunctionWords:
			if tok.POS == "" || tok.POS == domain.POSSymbol ||
				tok.POS == domain.POSBoundary || tok.POS == domain.POSWhitespace {
				continue
			}
		case domain.IsClosedClass(tok.POS):
			continue
		}
		if spec.POSFilter != "" && tok.POS != spec.POSFilter {
			continue
		}
		if opts.RequireSurface != nil && !opts.RequireSurface(tok.Surface) {
			continue
		}
		n := len([]rune(tok.Surface))
		switch opts.Mode {
		case LengthStrict:
			if n <= spec.MinTokenLen {
				continue
			}
		case LengthAtLeast:
			if n < spec.MinTokenLen {
				continue
			}
		case LengthIgnore:
			// no length predicate
		}
		out = append(out, i)
	}
	return out
}

// Pick draws up to max indices from eligible, uniformly at random
// without replacement. When fewer eligible targets exist than requested,
// all of them are returned; a nil or empty input yields nil.
func Pick(rng *rand.Rand, eligible []int, max int) []int {
	if max <= 0 || len(eligible) == 0 {
		return nil
	}
	if max >= len(eligible) {
		out := make([]int, len(eligible))
		copy(out, eligible)
		return out
	}
	perm := rng.Perm(len(eligible))
	out := make([]int, max)
	for i := 0; i < max; i++ {
		out[i] = eligible[perm[i]]
	}
	return out
}

// PickPairs draws up to maxPairs disjoint index pairs. An index consumed
// by one pair is never reused within the same invocation. Fewer than two
// remaining candidates ends selection.
func PickPairs(rng *rand.Rand, eligible []int, maxPairs int) [][2]int {
	if maxPairs <= 0 || len(eligible) < 2 {
		return nil
	}
	pool := make([]int, len(eligible))
	copy(pool, eligible)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	var pairs [][2]int
	for len(pairs) < maxPairs && len(pool) >= 2 {
		pairs = append(pairs, [2]int{pool[0], pool[1]})
		pool = pool[2:]
	}
	return pairs
}
