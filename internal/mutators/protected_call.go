package mutators

import (
	"math/rand"

	"github.com/fuzzlab/ilfuzz/internal/ir"
	"github.com/fuzzlab/ilfuzz/internal/rewrite"
)

// ProtectedCall targets reflective calls of the form m.call(lit, ..., fn,
// ...) where the receiver m traces back to a function parameter within the
// default hop bound, i.e. the receiver likely came from another execution
// context. The function argument is replaced with a callback freshly bound
// in that context and the call is wrapped in try/catch so whatever it
// raises is swallowed. The call's output variable keeps its identity, so
// downstream references stay valid.
type ProtectedCall struct{}

func NewProtectedCall() Mutator { return &ProtectedCall{} }

func (*ProtectedCall) Name() string { return "protected-call" }

func (m *ProtectedCall) CanMutate(p *ir.Program, idx int) bool {
	_, _, ok := m.capture(p, idx)
	return ok
}

// capture resolves the traced context parameter and the index of the
// function-valued argument within the call's inputs.
func (m *ProtectedCall) capture(p *ir.Program, idx int) (origin ir.Variable, fnArg int, ok bool) {
	if idx < 0 || idx >= p.Len() {
		return ir.NoVariable, 0, false
	}
	ins := p.Instrs[idx]
	if ins.Op != ir.CallMethod || ins.Payload.Kind != ir.PayloadString || ins.Payload.Str != "call" {
		return ir.NoVariable, 0, false
	}
	if len(ins.Inputs) < 2 {
		return ir.NoVariable, 0, false
	}

	defUse := ir.NewDefUse(p)
	origin, _, ok = defUse.TraceOrigin(ins.Inputs[0], ir.DefaultTraceHops)
	if !ok {
		return ir.NoVariable, 0, false
	}
	for i := 1; i < len(ins.Inputs); i++ {
		if def, _, err := defUse.DefinitionOf(ins.Inputs[i]); err == nil && def.Op == ir.BeginFuncDef {
			return origin, i, true
		}
	}
	return ir.NoVariable, 0, false
}

func (m *ProtectedCall) Mutate(p *ir.Program, idx int, rng *rand.Rand) (*ir.Program, bool) {
	origin, fnArg, ok := m.capture(p, idx)
	if !ok {
		return p, false
	}

	b := rewrite.NewBuilder(p, idx, rng)
	callback, err := b.BindContextCallback(origin, "return 0;")
	if err != nil {
		return p, false
	}

	err = b.WrapInTryCatch(func(b *rewrite.Builder) error {
		protected := p.Instrs[idx].Clone()
		protected.Inputs[fnArg] = callback
		return b.Adopt(protected)
	})
	if err != nil {
		return p, false
	}

	next, err := rewrite.Replace(p, idx, idx, b.Sequence())
	if err != nil {
		return p, false
	}
	return next, true
}
