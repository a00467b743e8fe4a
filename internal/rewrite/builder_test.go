package rewrite

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

func testRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestAdopt(t *testing.T) {
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.LoadUndefined, Outputs: []ir.Variable{0}},
		{Op: ir.CreateObject, Outputs: []ir.Variable{1}},
	})

	t.Run("preserves identity", func(t *testing.T) {
		b := NewBuilder(p, 1, testRand())
		captured := p.Instrs[1]
		require.NoError(t, b.Adopt(captured))
		require.Len(t, b.Sequence(), 1)
		assert.Equal(t, []ir.Variable{1}, b.Sequence()[0].Outputs)
	})

	t.Run("undefined input fails", func(t *testing.T) {
		b := NewBuilder(p, 1, testRand())
		err := b.Adopt(ir.Instruction{Op: ir.Return, Inputs: []ir.Variable{1}})
		assert.ErrorIs(t, err, ErrScopeViolation)
	})

	t.Run("input defined before start succeeds", func(t *testing.T) {
		b := NewBuilder(p, 1, testRand())
		assert.NoError(t, b.Adopt(ir.Instruction{Op: ir.Return, Inputs: []ir.Variable{0}}))
	})
}

func TestWrapInFunction(t *testing.T) {
	// The body is captured from the program itself, as adoption always is.
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.LoadUndefined, Outputs: []ir.Variable{0}},
		{Op: ir.CreateObject, Outputs: []ir.Variable{1}},
		{Op: ir.CreateArray, Inputs: []ir.Variable{1}, Outputs: []ir.Variable{2}},
	})
	body := p.Instrs[1:3]

	b := NewBuilder(p, 1, testRand())
	result, err := b.WrapInFunction(body, 2)
	require.NoError(t, err)

	seq := b.Sequence()
	require.Len(t, seq, 6)
	assert.Equal(t, ir.BeginFuncDef, seq[0].Op)
	assert.Equal(t, ir.CreateObject, seq[1].Op)
	assert.Equal(t, ir.CreateArray, seq[2].Op)
	assert.Equal(t, ir.Return, seq[3].Op)
	assert.Equal(t, []ir.Variable{2}, seq[3].Inputs)
	assert.Equal(t, ir.EndFuncDef, seq[4].Op)
	assert.Equal(t, ir.CallFunction, seq[5].Op)
	assert.Equal(t, []ir.Variable{result}, seq[5].Outputs)

	// The invocation targets the function the wrap opened.
	assert.Equal(t, seq[0].Outputs, seq[5].Inputs)
}

func TestWrapInFunctionDefaultTail(t *testing.T) {
	p := ir.NewProgram(nil)
	b := NewBuilder(p, 0, testRand())
	_, err := b.WrapInFunction(nil, ir.NoVariable)
	require.NoError(t, err)

	seq := b.Sequence()
	require.Len(t, seq, 5)
	assert.Equal(t, ir.LoadUndefined, seq[1].Op)
	assert.Equal(t, ir.Return, seq[2].Op)
}

func TestWrapInTryCatch(t *testing.T) {
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.LoadUndefined, Outputs: []ir.Variable{0}},
	})

	b := NewBuilder(p, 1, testRand())
	err := b.WrapInTryCatch(func(b *Builder) error {
		return b.Adopt(ir.Instruction{Op: ir.CallBuiltin, Inputs: []ir.Variable{0}, Outputs: []ir.Variable{5}, Payload: ir.StringPayload("gc")})
	})
	require.NoError(t, err)

	seq := b.Sequence()
	require.Len(t, seq, 5)
	assert.Equal(t, ir.BeginTry, seq[0].Op)
	assert.Equal(t, ir.CallBuiltin, seq[1].Op)
	// The protected call's output keeps its identity.
	assert.Equal(t, []ir.Variable{5}, seq[1].Outputs)
	assert.Equal(t, ir.BeginCatch, seq[2].Op)
	// The caught exception is consumed by a no-op, never re-raised.
	assert.Equal(t, ir.Nop, seq[3].Op)
	assert.Equal(t, seq[2].Outputs, seq[3].Inputs)
	assert.Equal(t, ir.EndTryCatch, seq[4].Op)

	// Body failures surface before any splice can happen.
	b2 := NewBuilder(p, 1, testRand())
	err = b2.WrapInTryCatch(func(b *Builder) error {
		return b.Adopt(ir.Instruction{Op: ir.Return, Inputs: []ir.Variable{77}})
	})
	assert.ErrorIs(t, err, ErrScopeViolation)
}

func TestBindContextCallback(t *testing.T) {
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.LoadParameter, Outputs: []ir.Variable{0}, Payload: ir.StringPayload("ctx")},
	})

	b := NewBuilder(p, 1, testRand())
	cb, err := b.BindContextCallback(0, "return 0;")
	require.NoError(t, err)

	seq := b.Sequence()
	require.Len(t, seq, 3)
	assert.Equal(t, ir.LoadLiteral, seq[0].Op)
	assert.Contains(t, seq[0].Payload.Str, "function cb_")
	assert.Equal(t, ir.CallMethod, seq[1].Op)
	assert.Equal(t, "eval", seq[1].Payload.Str)
	assert.Equal(t, ir.LoadProperty, seq[2].Op)
	assert.Equal(t, []ir.Variable{cb}, seq[2].Outputs)
	// The loaded name is the one embedded in the eval payload.
	assert.Contains(t, seq[0].Payload.Str, seq[2].Payload.Str)

	_, err = b.BindContextCallback(42, "return 0;")
	assert.ErrorIs(t, err, ErrScopeViolation)
}
