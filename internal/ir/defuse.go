package ir

import "fmt"

// DefaultTraceHops bounds the backward provenance trace. The trace is a
// best-effort heuristic; exceeding the bound means "not found", never an
// error.
const DefaultTraceHops = 5

// DefUse resolves a variable to its defining instruction in O(1). The index
// is built once per program snapshot and becomes stale if a new program is
// produced; rebuild it on the new value.
type DefUse struct {
	prog *Program
	defs map[Variable]int
}

// NewDefUse indexes every output variable of the program.
func NewDefUse(p *Program) *DefUse {
	defs := make(map[Variable]int, len(p.Instrs))
	for i, ins := range p.Instrs {
		for _, out := range ins.Outputs {
			defs[out] = i
		}
	}
	return &DefUse{prog: p, defs: defs}
}

// DefinitionOf returns the defining instruction of v and its index.
func (d *DefUse) DefinitionOf(v Variable) (Instruction, int, error) {
	idx, ok := d.defs[v]
	if !ok {
		return Instruction{}, -1, fmt.Errorf("%w: %s", ErrUnknownVariable, v)
	}
	return d.prog.Instrs[idx], idx, nil
}

// TraceOrigin walks backward from v through chains of property and element
// accesses looking for the function parameter the value ultimately came
// from. It returns the parameter variable and the number of hops taken, or
// ok=false when the chain bottoms out in anything else or exceeds maxHops.
//
// If the base of an access is itself a parameter, that parameter is
// returned immediately rather than spending another iteration on it.
func (d *DefUse) TraceOrigin(v Variable, maxHops int) (Variable, int, bool) {
	cur := v
	for hop := 0; hop < maxHops; hop++ {
		def, _, err := d.DefinitionOf(cur)
		if err != nil {
			return NoVariable, 0, false
		}
		switch def.Op {
		case LoadParameter:
			return cur, hop, true
		case LoadProperty, LoadElement:
			if len(def.Inputs) == 0 {
				return NoVariable, 0, false
			}
			base := def.Inputs[0]
			if baseDef, _, err := d.DefinitionOf(base); err == nil && baseDef.Op == LoadParameter {
				return base, hop + 1, true
			}
			cur = base
		default:
			return NoVariable, 0, false
		}
	}

	// Out of hops. One final look at where we ended up, so a chain of
	// exactly maxHops accesses still resolves.
	if def, _, err := d.DefinitionOf(cur); err == nil && def.Op == LoadParameter {
		return cur, maxHops, true
	}
	return NoVariable, 0, false
}
