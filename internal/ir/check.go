package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariable reports a variable with no defining instruction in
	// the current program. This indicates a caller bug, not a recoverable
	// condition.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrMalformedProgram reports broken block nesting, such as a scope
	// opener with no matching closer.
	ErrMalformedProgram = errors.New("malformed program")
)

// Check validates structural well-formedness: block nesting balances like
// parentheses, every variable has exactly one defining instruction, and no
// variable is referenced before its definition in program order.
func (p *Program) Check() error {
	defined := make(map[Variable]bool)
	var stack []Op

	for i, ins := range p.Instrs {
		op := ins.Op

		if op == BeginCatch {
			if len(stack) == 0 || stack[len(stack)-1] != BeginTry {
				return fmt.Errorf("%w: BeginCatch at %d outside a try region", ErrMalformedProgram, i)
			}
			stack[len(stack)-1] = BeginCatch
		}

		if op.ClosesBlock() {
			if len(stack) == 0 {
				return fmt.Errorf("%w: %s at %d closes nothing", ErrMalformedProgram, op, i)
			}
			opener := stack[len(stack)-1]
			if end, _ := opener.MatchingEnd(); end != op {
				return fmt.Errorf("%w: %s at %d does not close %s", ErrMalformedProgram, op, i, opener)
			}
			stack = stack[:len(stack)-1]
		}

		for _, in := range ins.Inputs {
			if !defined[in] {
				return fmt.Errorf("%w: %s used at %d before definition", ErrUnknownVariable, in, i)
			}
		}
		for _, out := range ins.Outputs {
			if defined[out] {
				return fmt.Errorf("%w: %s redefined at %d", ErrMalformedProgram, out, i)
			}
			defined[out] = true
		}

		if op.OpensBlock() {
			stack = append(stack, op)
		}
	}

	if len(stack) != 0 {
		return fmt.Errorf("%w: %d unclosed scope(s) at end of program", ErrMalformedProgram, len(stack))
	}
	return nil
}
