package ir

import "fmt"

// ScanBlock finds the scope closer matching the opener at start and
// collects the indices of the instructions sitting directly inside the
// block. Instructions nested in deeper sub-blocks are skipped; the openers
// and closers of those sub-blocks themselves are part of the interior.
//
// The scan counts nesting depth: any opener increments, any closer
// decrements, catch transitions are neutral. Reaching the end of the
// program before the depth returns to zero yields ErrMalformedProgram; the
// input is assumed to be a pre-existing invalid program, not an engine
// defect, so callers log and skip.
func ScanBlock(p *Program, start int) (end int, interior []int, err error) {
	if start < 0 || start >= len(p.Instrs) {
		return 0, nil, fmt.Errorf("%w: scan start %d out of range", ErrMalformedProgram, start)
	}
	if !p.Instrs[start].Op.OpensBlock() {
		return 0, nil, fmt.Errorf("%w: %s at %d does not open a block", ErrMalformedProgram, p.Instrs[start].Op, start)
	}

	depth := 1
	for i := start + 1; i < len(p.Instrs); i++ {
		op := p.Instrs[i].Op
		if op.ClosesBlock() {
			depth--
			if depth == 0 {
				return i, interior, nil
			}
		}
		if depth == 1 {
			interior = append(interior, i)
		}
		if op.OpensBlock() {
			depth++
		}
	}
	return 0, nil, fmt.Errorf("%w: no closer for %s at %d", ErrMalformedProgram, p.Instrs[start].Op, start)
}
