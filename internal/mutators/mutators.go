// Package mutators holds the concrete bug-shape mutators built on top of
// the rewrite engine. Each mutator is a pure pattern check plus a rewrite;
// the driver decides which instructions to offer and what to do with the
// result.
package mutators

import (
	"math/rand"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

// Mutator is the driver-facing contract.
//
// CanMutate must be a total, side-effect-free function of the program only.
// Mutate returns the rewritten program and true when a replacement was
// applied; on false the input program is returned unchanged. A skipped
// rewrite (scope violation, malformed block, collaborator failure) is
// indistinguishable from a pattern mismatch.
type Mutator interface {
	Name() string
	CanMutate(p *ir.Program, idx int) bool
	Mutate(p *ir.Program, idx int, rng *rand.Rand) (*ir.Program, bool)
}

type constructor func() Mutator

// All maps mutator names to their constructors. Mutators needing external
// collaborators (the whole-program pin) are registered separately by the
// driver with the collaborators wired in.
var All = map[string]constructor{
	"computed-key-fold": NewComputedKeyFold,
	"protected-call":    NewProtectedCall,
	"literal-pin":       NewLiteralPin,
}
