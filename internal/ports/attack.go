package ports

import (
	"context"
	"math/rand"
)

// Attack is the uniform contract every perturbation implements:
// select linguistically valid targets inside the morphologically analyzed
// sentence, apply a bounded randomized transformation, and reinsert the
// result without corrupting sentence structure.
//
// Perturb never fails on "no eligible targets" — it returns the input
// unchanged. Errors are reserved for infrastructure failures the attack
// cannot degrade around (the tagger being unreachable, primarily).
//
// Randomness is always drawn from the supplied rand.Rand rather than
// process-global state so runs can be replayed deterministically.
// Implementations must not retain or share the rand across calls; the
// caller owns its lifecycle.
type Attack interface {
	// Name is the registry identifier, e.g. "delete_char".
	Name() string

	// Suffix is the fixed per-attack output field suffix, e.g. "DCR";
	// the perturbed text is stored at "<field>_perturbed_<Suffix>".
	Suffix() string

	// Perturb applies the attack to one sentence.
	Perturb(ctx context.Context, rng *rand.Rand, text string) (string, error)

	// Validate checks the attack is properly configured and ready to run.
	Validate() error
}

// AttackFactory builds a configured attack instance from a parameter map,
// mirroring the unit-factory pattern used for registry-driven creation.
type AttackFactory func(params map[string]any) (Attack, error)
