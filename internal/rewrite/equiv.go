package rewrite

import (
	"regexp"
	"strings"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

// The equivalence rewrites below are deliberately fragile: they match one
// exact textual shape after normalization and substitute one fixed
// alternative, nothing fuzzier. Any change to the upstream text rendering
// invalidates the target strings.

var (
	lineCommentRegex  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRegex = regexp.MustCompile(`(?s)/\*.*?\*/`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
)

// Normalize strips line and block comments, collapses consecutive
// whitespace to a single space and trims the ends. Comparisons are exact
// on the normalized form.
func Normalize(src string) string {
	src = blockCommentRegex.ReplaceAllString(src, " ")
	src = lineCommentRegex.ReplaceAllString(src, " ")
	src = whitespaceRegex.ReplaceAllString(src, " ")
	return strings.TrimSpace(src)
}

// Lifter renders a program to canonical source text. External collaborator;
// failures are swallowed as "not applied".
type Lifter interface {
	Lift(p *ir.Program) (string, error)
}

// Parser reads canonical source text back into a program.
type Parser interface {
	Parse(src string) (*ir.Program, error)
}

// LiteralRewrite replaces the string payload of a load-literal instruction
// wholesale when its normalized payload equals Target. The instruction's
// output variable keeps its identity, so downstream references are
// untouched.
type LiteralRewrite struct {
	Target      string
	Replacement string
}

// Matches reports whether the instruction at idx carries the target
// payload.
func (r LiteralRewrite) Matches(p *ir.Program, idx int) bool {
	if idx < 0 || idx >= len(p.Instrs) {
		return false
	}
	ins := p.Instrs[idx]
	if ins.Op != ir.LoadLiteral || ins.Payload.Kind != ir.PayloadString {
		return false
	}
	return Normalize(ins.Payload.Str) == Normalize(r.Target)
}

// Apply returns a new program with the payload replaced, or (nil, false)
// when the instruction does not match.
func (r LiteralRewrite) Apply(p *ir.Program, idx int) (*ir.Program, bool) {
	if !r.Matches(p, idx) {
		return nil, false
	}
	next := p.Clone()
	next.Instrs[idx].Payload = ir.StringPayload(r.Replacement)
	return next, true
}

// ProgramRewrite discards the whole program and substitutes a fixed
// replacement when the lifted, normalized rendering equals Target. Lifter
// or parser failures mean "not applied"; they never propagate.
type ProgramRewrite struct {
	Target      string
	Replacement string
	Lifter      Lifter
	Parser      Parser
}

// Matches reports whether the lifted program equals the target text.
func (r ProgramRewrite) Matches(p *ir.Program) bool {
	if r.Lifter == nil {
		return false
	}
	src, err := r.Lifter.Lift(p)
	if err != nil {
		return false
	}
	return Normalize(src) == Normalize(r.Target)
}

// Apply returns the parsed replacement program, or (nil, false) when the
// program does not match or a collaborator fails.
func (r ProgramRewrite) Apply(p *ir.Program) (*ir.Program, bool) {
	if r.Parser == nil || !r.Matches(p) {
		return nil, false
	}
	next, err := r.Parser.Parse(r.Replacement)
	if err != nil {
		return nil, false
	}
	return next, true
}
