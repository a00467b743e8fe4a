package rewrite

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

// ErrScopeViolation reports that an adoption or splice would reference a
// variable that is not defined at that point. The mutation is aborted
// before any structural change; the original program stays valid.
var ErrScopeViolation = errors.New("scope violation")

// Builder constructs the replacement sequence for one mutation attempt. It
// owns the in-progress output exclusively until the attempt completes;
// attempts on the same program must be serialized by the caller.
//
// Adoption relocates captured instructions without renaming: variables are
// globally unique, so an adopted instruction keeps its identity and every
// surviving downstream reference stays valid.
type Builder struct {
	prog    *ir.Program
	start   int
	out     []ir.Instruction
	defined map[ir.Variable]bool
	next    ir.Variable
	rng     *rand.Rand
}

// NewBuilder starts a replacement sequence that will be spliced in at
// start. Everything defined strictly before start is visible to the new
// sequence.
func NewBuilder(p *ir.Program, start int, rng *rand.Rand) *Builder {
	defined := make(map[ir.Variable]bool)
	for i := 0; i < start && i < len(p.Instrs); i++ {
		for _, out := range p.Instrs[i].Outputs {
			defined[out] = true
		}
	}
	return &Builder{
		prog:    p,
		start:   start,
		defined: defined,
		next:    p.NextVariable(),
		rng:     rng,
	}
}

// NewVariable allocates a variable unused anywhere in the source program.
func (b *Builder) NewVariable() ir.Variable {
	v := b.next
	b.next++
	return v
}

// Sequence returns the instructions built so far, in emission order.
func (b *Builder) Sequence() []ir.Instruction { return b.out }

// Adopt relocates a captured instruction to the current end of the
// sequence. It fails if any input is not yet defined in the new ordering.
func (b *Builder) Adopt(ins ir.Instruction) error {
	for _, in := range ins.Inputs {
		if !b.defined[in] {
			return fmt.Errorf("%w: %s not defined at adoption point", ErrScopeViolation, in)
		}
	}
	for _, out := range ins.Outputs {
		b.defined[out] = true
	}
	b.out = append(b.out, ins.Clone())
	return nil
}

// AdoptAll adopts instructions in their original relative order.
func (b *Builder) AdoptAll(instrs []ir.Instruction) error {
	for _, ins := range instrs {
		if err := b.Adopt(ins); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) emit(ins ir.Instruction) error { return b.Adopt(ins) }

// LoadString emits a string literal and returns its result variable.
func (b *Builder) LoadString(s string) ir.Variable {
	v := b.NewVariable()
	b.out = append(b.out, ir.Instruction{Op: ir.LoadLiteral, Outputs: []ir.Variable{v}, Payload: ir.StringPayload(s)})
	b.defined[v] = true
	return v
}

// LoadNumber emits a numeric literal and returns its result variable.
func (b *Builder) LoadNumber(f float64) ir.Variable {
	v := b.NewVariable()
	b.out = append(b.out, ir.Instruction{Op: ir.LoadLiteral, Outputs: []ir.Variable{v}, Payload: ir.NumberPayload(f)})
	b.defined[v] = true
	return v
}

// LoadUndefined emits an undefined load and returns its result variable.
func (b *Builder) LoadUndefined() ir.Variable {
	v := b.NewVariable()
	b.out = append(b.out, ir.Instruction{Op: ir.LoadUndefined, Outputs: []ir.Variable{v}})
	b.defined[v] = true
	return v
}

// LoadProperty emits a named property load from base.
func (b *Builder) LoadProperty(base ir.Variable, name string) (ir.Variable, error) {
	v := b.NewVariable()
	ins := ir.Instruction{
		Op:      ir.LoadProperty,
		Inputs:  []ir.Variable{base},
		Outputs: []ir.Variable{v},
		Payload: ir.StringPayload(name),
	}
	if err := b.emit(ins); err != nil {
		return ir.NoVariable, err
	}
	return v, nil
}

// CallFunction emits a plain call of fn and returns its result variable.
func (b *Builder) CallFunction(fn ir.Variable, args ...ir.Variable) (ir.Variable, error) {
	v := b.NewVariable()
	ins := ir.Instruction{
		Op:      ir.CallFunction,
		Inputs:  append([]ir.Variable{fn}, args...),
		Outputs: []ir.Variable{v},
	}
	if err := b.emit(ins); err != nil {
		return ir.NoVariable, err
	}
	return v, nil
}

// CallMethod emits a named method call on base and returns its result.
func (b *Builder) CallMethod(base ir.Variable, name string, args ...ir.Variable) (ir.Variable, error) {
	v := b.NewVariable()
	ins := ir.Instruction{
		Op:      ir.CallMethod,
		Inputs:  append([]ir.Variable{base}, args...),
		Outputs: []ir.Variable{v},
		Payload: ir.StringPayload(name),
	}
	if err := b.emit(ins); err != nil {
		return ir.NoVariable, err
	}
	return v, nil
}

// Return emits an explicit return of v.
func (b *Builder) Return(v ir.Variable) error {
	return b.emit(ir.Instruction{Op: ir.Return, Inputs: []ir.Variable{v}})
}

// Discard emits a no-op consuming the given variables. Used to deliberately
// swallow a value, e.g. a caught exception.
func (b *Builder) Discard(vars ...ir.Variable) error {
	return b.emit(ir.Instruction{Op: ir.Nop, Inputs: vars})
}

// WrapInFunction opens a fresh zero-parameter function, adopts the body in
// its original relative order, returns tail, closes the scope and
// immediately invokes the function. The result variable of the invocation
// is returned; it turns a sequence with side effects into a single
// expression usable as a replacement value.
//
// If tail is NoVariable, an undefined value is loaded inside the function
// and returned instead.
func (b *Builder) WrapInFunction(body []ir.Instruction, tail ir.Variable) (ir.Variable, error) {
	fn := b.NewVariable()
	b.out = append(b.out, ir.Instruction{Op: ir.BeginFuncDef, Outputs: []ir.Variable{fn}})
	b.defined[fn] = true

	if err := b.AdoptAll(body); err != nil {
		return ir.NoVariable, err
	}
	if tail == ir.NoVariable {
		tail = b.LoadUndefined()
	}
	if err := b.Return(tail); err != nil {
		return ir.NoVariable, err
	}
	if err := b.emit(ir.Instruction{Op: ir.EndFuncDef}); err != nil {
		return ir.NoVariable, err
	}
	return b.CallFunction(fn)
}

// WrapInTryCatch opens a try region, runs body to emit the protected
// instructions, then appends a catch region that binds the raised
// exception and discards it through a no-op consumer. Whatever the body
// may raise is caught and never propagates out of the replacement; any
// output variable the body defines keeps its identity.
func (b *Builder) WrapInTryCatch(body func(*Builder) error) error {
	if err := b.emit(ir.Instruction{Op: ir.BeginTry}); err != nil {
		return err
	}
	if err := body(b); err != nil {
		return err
	}
	exc := b.NewVariable()
	b.out = append(b.out, ir.Instruction{Op: ir.BeginCatch, Outputs: []ir.Variable{exc}})
	b.defined[exc] = true
	if err := b.Discard(exc); err != nil {
		return err
	}
	return b.emit(ir.Instruction{Op: ir.EndTryCatch})
}

// BindContextCallback installs a helper function into the given context
// object through a textual eval and loads it back by name, yielding a
// usable binding. The name carries a bounded random suffix and uniqueness
// is best effort only: no check is made against bindings already live in
// the target context.
func (b *Builder) BindContextCallback(ctxObj ir.Variable, bodySource string) (ir.Variable, error) {
	name := fmt.Sprintf("cb_%06x", b.rng.Intn(1<<24))
	src := fmt.Sprintf("function %s() { %s }", name, bodySource)
	lit := b.LoadString(src)
	if _, err := b.CallMethod(ctxObj, "eval", lit); err != nil {
		return ir.NoVariable, err
	}
	return b.LoadProperty(ctxObj, name)
}
