package internal

import (
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/fuzzlab/ilfuzz/internal/ir"
	"github.com/fuzzlab/ilfuzz/internal/mutators"
)

// Engine manages the mutator set and drives mutation attempts on single
// programs. Attempts on one program must be serialized by the caller; the
// engine assumes at most one in-flight rewrite per program instance.
//
// Every failure mode (pattern mismatch, scope violation, malformed block,
// collaborator failure) surfaces as "not applied": callers retry with a
// different instruction or mutator and must not branch on the reason.
type Engine struct {
	ignored  map[string]bool
	mutators map[string]mutators.Mutator
	logger   *zap.Logger
	rng      *rand.Rand
}

// NewEngine creates an engine with the default mutators registered. The
// random source only feeds synthesized identifiers; it never influences
// whether a mutation applies.
func NewEngine(logger *zap.Logger, seed int64) *Engine {
	e := &Engine{
		ignored:  make(map[string]bool),
		mutators: make(map[string]mutators.Mutator),
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
	}
	for _, cstr := range mutators.All {
		e.Register(cstr())
	}
	return e
}

// Register adds a mutator, replacing any previous one with the same name.
func (e *Engine) Register(m mutators.Mutator) {
	e.mutators[m.Name()] = m
}

// IgnoreMutator disables a mutator by name.
func (e *Engine) IgnoreMutator(name string) {
	e.ignored[name] = true
}

// MutatorNames lists the active mutators in deterministic order.
func (e *Engine) MutatorNames() []string {
	names := make([]string, 0, len(e.mutators))
	for name := range e.mutators {
		if !e.ignored[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (e *Engine) active() []mutators.Mutator {
	names := e.MutatorNames()
	ms := make([]mutators.Mutator, 0, len(names))
	for _, name := range names {
		ms = append(ms, e.mutators[name])
	}
	return ms
}

// CanMutateAt reports whether any active mutator matches the instruction.
func (e *Engine) CanMutateAt(p *ir.Program, idx int) bool {
	for _, m := range e.active() {
		if m.CanMutate(p, idx) {
			return true
		}
	}
	return false
}

// MutateAt tries every active mutator on the instruction in deterministic
// order and returns the first successful rewrite with the mutator's name.
// The input program is never modified.
func (e *Engine) MutateAt(p *ir.Program, idx int) (*ir.Program, string, bool) {
	for _, m := range e.active() {
		if !m.CanMutate(p, idx) {
			continue
		}
		next, ok := m.Mutate(p, idx, e.rng)
		if !ok {
			if e.logger != nil {
				e.logger.Debug("mutation skipped",
					zap.String("mutator", m.Name()), zap.Int("index", idx))
			}
			continue
		}
		if err := next.Check(); err != nil {
			// A mutator producing an ill-formed program is an engine bug;
			// keep the caller's program valid and move on.
			if e.logger != nil {
				e.logger.Warn("mutator produced invalid program",
					zap.String("mutator", m.Name()), zap.Int("index", idx), zap.Error(err))
			}
			continue
		}
		if e.logger != nil {
			e.logger.Debug("mutation applied",
				zap.String("mutator", m.Name()), zap.Int("index", idx))
		}
		return next, m.Name(), true
	}
	return p, "", false
}

// MutateAny scans the program front to back and applies the first rewrite
// any mutator accepts. It returns the new program, the mutator name and
// the instruction index.
func (e *Engine) MutateAny(p *ir.Program) (*ir.Program, string, int, bool) {
	for idx := range p.Instrs {
		if next, name, ok := e.MutateAt(p, idx); ok {
			return next, name, idx, true
		}
	}
	return p, "", -1, false
}
