package mutators

import (
	"math/rand"

	"github.com/fuzzlab/ilfuzz/internal/ir"
	"github.com/fuzzlab/ilfuzz/internal/rewrite"
)

// Default program-pin pair: an empty-object round trip replaced by the
// array variant. Targets are written in the lifter's textual form.
const (
	DefaultProgramTarget = `v0 = CreateObject
Return v0`
	DefaultProgramReplacement = `v0 = CreateArray
Return v0`
)

// ProgramPin discards the entire program and substitutes a fixed
// replacement when the lifted rendering exactly equals the target after
// normalization. It needs the external lifter/parser pair; any collaborator
// failure means "not applied".
type ProgramPin struct {
	rule rewrite.ProgramRewrite
}

// NewProgramPin wires the collaborators with the default target pair.
func NewProgramPin(lifter rewrite.Lifter, parser rewrite.Parser) *ProgramPin {
	return NewProgramPinWith(lifter, parser, DefaultProgramTarget, DefaultProgramReplacement)
}

// NewProgramPinWith pins a custom target/replacement pair.
func NewProgramPinWith(lifter rewrite.Lifter, parser rewrite.Parser, target, replacement string) *ProgramPin {
	return &ProgramPin{rule: rewrite.ProgramRewrite{
		Target:      target,
		Replacement: replacement,
		Lifter:      lifter,
		Parser:      parser,
	}}
}

func (*ProgramPin) Name() string { return "program-pin" }

// CanMutate ignores the candidate index: the whole program either matches
// the pinned rendering or it does not.
func (m *ProgramPin) CanMutate(p *ir.Program, _ int) bool {
	return m.rule.Matches(p)
}

func (m *ProgramPin) Mutate(p *ir.Program, _ int, _ *rand.Rand) (*ir.Program, bool) {
	next, ok := m.rule.Apply(p)
	if !ok {
		return p, false
	}
	return next, true
}
