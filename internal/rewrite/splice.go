package rewrite

import (
	"fmt"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

// Replace substitutes the instruction range [start, end] (inclusive) with
// seq and returns the resulting program. The input program is never
// modified; on any validation failure it stays the caller's valid value
// and an ErrScopeViolation is returned. No partially spliced state is ever
// observable.
//
// Validation, before any construction:
//  1. every input of every instruction in seq is defined earlier in seq or
//     before start in the surrounding program;
//  2. every variable referenced after end that was defined inside
//     [start, end] has a surviving definition in seq.
func Replace(p *ir.Program, start, end int, seq []ir.Instruction) (*ir.Program, error) {
	if start < 0 || end < start || end >= len(p.Instrs) {
		return nil, fmt.Errorf("%w: invalid splice range [%d, %d]", ErrScopeViolation, start, end)
	}

	defined := make(map[ir.Variable]bool)
	for i := 0; i < start; i++ {
		for _, out := range p.Instrs[i].Outputs {
			defined[out] = true
		}
	}

	survived := make(map[ir.Variable]bool)
	for _, ins := range seq {
		for _, in := range ins.Inputs {
			if !defined[in] {
				return nil, fmt.Errorf("%w: %s used in replacement before definition", ErrScopeViolation, in)
			}
		}
		for _, out := range ins.Outputs {
			defined[out] = true
			survived[out] = true
		}
	}

	removed := make(map[ir.Variable]bool)
	for i := start; i <= end; i++ {
		for _, out := range p.Instrs[i].Outputs {
			removed[out] = true
		}
	}
	for i := end + 1; i < len(p.Instrs); i++ {
		for _, in := range p.Instrs[i].Inputs {
			if removed[in] && !survived[in] {
				return nil, fmt.Errorf("%w: %s referenced at %d loses its definition", ErrScopeViolation, in, i)
			}
		}
	}

	instrs := make([]ir.Instruction, 0, start+len(seq)+len(p.Instrs)-end-1)
	for _, ins := range p.Instrs[:start] {
		instrs = append(instrs, ins.Clone())
	}
	for _, ins := range seq {
		instrs = append(instrs, ins.Clone())
	}
	for _, ins := range p.Instrs[end+1:] {
		instrs = append(instrs, ins.Clone())
	}
	return ir.NewProgram(instrs), nil
}
