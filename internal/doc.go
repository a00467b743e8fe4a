// Package internal provides the core of the structural mutation engine.
//
// The engine locates a sub-sequence of IL instructions matching a shape,
// excises it and substitutes a semantically related replacement, without
// ever producing a program that violates variable scoping or block
// nesting.
//
// Key components:
//
// Engine: coordinates the mutator set and drives mutation attempts. It
// tries mutators in deterministic order and validates every produced
// program before handing it back.
//
// ir: the program model (single-assignment variables, a closed operation
// set, well-nested blocks), the def-use index with its backward provenance
// tracer, and the block scanner.
//
// rewrite: pattern predicates, the adopt/wrap builder for replacement
// sequences, the atomic splicer and the fixed-string equivalence rewrites.
//
// mutators: the concrete bug-shape mutators built on the engine, each a
// pure pattern check plus a rewrite.
//
// Usage:
//
//	engine := internal.NewEngine(logger, seed)
//	if next, name, ok := engine.MutateAt(prog, idx); ok {
//	    // next is a fresh, validated program; prog is untouched
//	}
//
// Every failure mode is local and recoverable: a skipped mutation is
// indistinguishable from a pattern mismatch and callers simply retry
// elsewhere.
package internal
