package mutators

import (
	"math/rand"

	"github.com/fuzzlab/ilfuzz/internal/ir"
	"github.com/fuzzlab/ilfuzz/internal/rewrite"
)

// ComputedKeyFold rewrites a computed-property block sitting at the head of
// a class body (opener preceded by BeginClassDef then LoadUndefined) whose
// interior declares both a nested class and a nested function. The body is
// folded into an immediately invoked zero-parameter function and the
// invocation result becomes the sole input of the matching
// EndComputedProperty, so the whole key computation collapses to a single
// expression.
type ComputedKeyFold struct{}

func NewComputedKeyFold() Mutator { return &ComputedKeyFold{} }

func (*ComputedKeyFold) Name() string { return "computed-key-fold" }

var computedKeyShape = rewrite.And(
	rewrite.OpIs(ir.BeginComputedProperty),
	rewrite.PrecededBy(ir.BeginClassDef, ir.LoadUndefined),
	rewrite.InteriorHasAll(ir.BeginClassDef, ir.BeginFuncDef),
)

func (m *ComputedKeyFold) CanMutate(p *ir.Program, idx int) bool {
	if idx < 0 || idx >= p.Len() || p.Instrs[idx].Op != ir.BeginComputedProperty {
		return false
	}
	_, interior, err := ir.ScanBlock(p, idx)
	if err != nil {
		return false
	}
	return computedKeyShape(&rewrite.Context{Prog: p, Index: idx, Interior: interior})
}

func (m *ComputedKeyFold) Mutate(p *ir.Program, idx int, rng *rand.Rand) (*ir.Program, bool) {
	if !m.CanMutate(p, idx) {
		return p, false
	}
	end, _, err := ir.ScanBlock(p, idx)
	if err != nil {
		return p, false
	}

	// The original key value survives as the function's tail when the old
	// closer carried one; otherwise the function returns a fresh literal.
	body := p.Instrs[idx+1 : end]
	tail := ir.NoVariable
	if ins := p.Instrs[end]; len(ins.Inputs) == 1 && definedWithin(body, ins.Inputs[0]) {
		tail = ins.Inputs[0]
	}

	b := rewrite.NewBuilder(p, idx, rng)
	if err := b.Adopt(p.Instrs[idx]); err != nil {
		return p, false
	}
	var key ir.Variable
	if tail == ir.NoVariable {
		key, err = b.WrapInFunction(body, b.LoadString("computed"))
	} else {
		key, err = b.WrapInFunction(body, tail)
	}
	if err != nil {
		return p, false
	}
	if err := b.Adopt(ir.Instruction{Op: ir.EndComputedProperty, Inputs: []ir.Variable{key}}); err != nil {
		return p, false
	}

	next, err := rewrite.Replace(p, idx, end, b.Sequence())
	if err != nil {
		return p, false
	}
	return next, true
}

func definedWithin(instrs []ir.Instruction, v ir.Variable) bool {
	for _, ins := range instrs {
		for _, out := range ins.Outputs {
			if out == v {
				return true
			}
		}
	}
	return false
}
