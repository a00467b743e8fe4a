package mutators

import (
	"math/rand"

	"github.com/fuzzlab/ilfuzz/internal/ir"
	"github.com/fuzzlab/ilfuzz/internal/rewrite"
)

// Default literal-pin target: one exact payload shape known to sidestep a
// reproduced engine defect, swapped for the variant that triggers it.
const (
	DefaultLiteralTarget      = "function f(a) { return a.length; }"
	DefaultLiteralReplacement = "function f(a) { return a.byteLength; }"
)

// LiteralPin replaces the payload of a load-literal instruction wholesale
// when its normalized payload equals the configured target. Changing even
// one non-whitespace character of the payload leaves it untouched.
type LiteralPin struct {
	rule rewrite.LiteralRewrite
}

func NewLiteralPin() Mutator {
	return NewLiteralPinWith(DefaultLiteralTarget, DefaultLiteralReplacement)
}

// NewLiteralPinWith pins a custom target/replacement pair.
func NewLiteralPinWith(target, replacement string) *LiteralPin {
	return &LiteralPin{rule: rewrite.LiteralRewrite{Target: target, Replacement: replacement}}
}

func (*LiteralPin) Name() string { return "literal-pin" }

func (m *LiteralPin) CanMutate(p *ir.Program, idx int) bool {
	return m.rule.Matches(p, idx)
}

func (m *LiteralPin) Mutate(p *ir.Program, idx int, _ *rand.Rand) (*ir.Program, bool) {
	next, ok := m.rule.Apply(p, idx)
	if !ok {
		return p, false
	}
	return next, true
}
