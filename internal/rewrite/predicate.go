package rewrite

import "github.com/fuzzlab/ilfuzz/internal/ir"

// Context carries everything a predicate may look at: the candidate
// instruction, its preceding window, and the top-level interior of its
// block as collected by ir.ScanBlock. Predicates are pure; they never touch
// the random source and never modify the program.
type Context struct {
	Prog     *ir.Program
	Index    int
	Interior []int
}

// Predicate is a composable boolean check over an instruction's shape.
type Predicate func(*Context) bool

// And composes predicates by conjunction.
func And(preds ...Predicate) Predicate {
	return func(ctx *Context) bool {
		for _, pred := range preds {
			if !pred(ctx) {
				return false
			}
		}
		return true
	}
}

// OpIs matches the candidate instruction's operation tag.
func OpIs(op ir.Op) Predicate {
	return func(ctx *Context) bool {
		return ctx.Prog.Instrs[ctx.Index].Op == op
	}
}

// PrecededBy matches a fixed lookback window in program order: the last
// element of window is the instruction immediately before the candidate.
func PrecededBy(window ...ir.Op) Predicate {
	return func(ctx *Context) bool {
		if ctx.Index < len(window) {
			return false
		}
		for i, op := range window {
			if ctx.Prog.Instrs[ctx.Index-len(window)+i].Op != op {
				return false
			}
		}
		return true
	}
}

// InteriorHas matches when at least one top-level interior instruction
// carries the given operation tag.
func InteriorHas(op ir.Op) Predicate {
	return func(ctx *Context) bool {
		for _, i := range ctx.Interior {
			if ctx.Prog.Instrs[i].Op == op {
				return true
			}
		}
		return false
	}
}

// InteriorHasAll matches when every given tag occurs somewhere among the
// top-level interior instructions.
func InteriorHasAll(ops ...ir.Op) Predicate {
	preds := make([]Predicate, len(ops))
	for i, op := range ops {
		preds[i] = InteriorHas(op)
	}
	return And(preds...)
}

// HasStringPayload matches the candidate's literal payload exactly.
func HasStringPayload(s string) Predicate {
	return func(ctx *Context) bool {
		pl := ctx.Prog.Instrs[ctx.Index].Payload
		return pl.Kind == ir.PayloadString && pl.Str == s
	}
}
