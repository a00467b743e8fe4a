package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuzzlab/ilfuzz/internal/ir"
	"github.com/fuzzlab/ilfuzz/internal/mutators"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	logger, _ := zap.NewProduction()
	return NewEngine(logger, 1)
}

func TestEngineRegistersDefaults(t *testing.T) {
	e := testEngine(t)
	names := e.MutatorNames()
	assert.Contains(t, names, "computed-key-fold")
	assert.Contains(t, names, "protected-call")
	assert.Contains(t, names, "literal-pin")
}

func TestIgnoreMutator(t *testing.T) {
	e := testEngine(t)
	e.IgnoreMutator("literal-pin")
	assert.NotContains(t, e.MutatorNames(), "literal-pin")
}

func TestRegisterReplacesByName(t *testing.T) {
	e := testEngine(t)
	before := len(e.MutatorNames())
	e.Register(mutators.NewLiteralPinWith("a", "b"))
	assert.Len(t, e.MutatorNames(), before)
}

func TestMutateAtContract(t *testing.T) {
	e := testEngine(t)
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.CreateObject, Outputs: []ir.Variable{0}},
	})

	t.Run("no mutator matches", func(t *testing.T) {
		assert.False(t, e.CanMutateAt(p, 0))

		// Calling mutate anyway returns false with the program unchanged.
		next, name, ok := e.MutateAt(p, 0)
		assert.False(t, ok)
		assert.Empty(t, name)
		assert.Same(t, p, next)
	})

	t.Run("decision is deterministic", func(t *testing.T) {
		q := ir.NewProgram([]ir.Instruction{
			{Op: ir.LoadLiteral, Outputs: []ir.Variable{0}, Payload: ir.StringPayload(mutators.DefaultLiteralTarget)},
		})
		assert.True(t, e.CanMutateAt(q, 0))
		assert.True(t, e.CanMutateAt(q, 0))

		next1, name1, ok1 := e.MutateAt(q, 0)
		next2, name2, ok2 := e.MutateAt(q, 0)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, name1, name2)
		assert.Equal(t, next1.String(), next2.String())
	})
}

func TestMutateAny(t *testing.T) {
	e := testEngine(t)
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.CreateObject, Outputs: []ir.Variable{0}},
		{Op: ir.LoadLiteral, Outputs: []ir.Variable{1}, Payload: ir.StringPayload(mutators.DefaultLiteralTarget)},
	})

	next, name, idx, ok := e.MutateAny(p)
	require.True(t, ok)
	assert.Equal(t, "literal-pin", name)
	assert.Equal(t, 1, idx)
	assert.Equal(t, mutators.DefaultLiteralReplacement, next.Instrs[1].Payload.Str)
	require.NoError(t, next.Check())
}

func TestMutateAnyNoMatch(t *testing.T) {
	e := testEngine(t)
	p := ir.NewProgram([]ir.Instruction{
		{Op: ir.CreateArray, Outputs: []ir.Variable{0}},
	})

	next, _, _, ok := e.MutateAny(p)
	assert.False(t, ok)
	assert.Same(t, p, next)
}
