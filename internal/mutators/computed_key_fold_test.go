package mutators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

func testRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

// computedKeyFixture is a class whose first member is a computed property
// with a nested class and a nested function in its body:
//
//	0 v0 = BeginClassDef
//	1 v1 = LoadUndefined
//	2 BeginComputedProperty
//	3   v2 = BeginClassDef
//	4   EndClassDef
//	5   v3 = BeginFuncDef
//	6   EndFuncDef
//	7   v4 = LoadLiteral "key"
//	8 EndComputedProperty v4
//	9 EndClassDef
func computedKeyFixture() *ir.Program {
	return ir.NewProgram([]ir.Instruction{
		{Op: ir.BeginClassDef, Outputs: []ir.Variable{0}},
		{Op: ir.LoadUndefined, Outputs: []ir.Variable{1}},
		{Op: ir.BeginComputedProperty},
		{Op: ir.BeginClassDef, Outputs: []ir.Variable{2}},
		{Op: ir.EndClassDef},
		{Op: ir.BeginFuncDef, Outputs: []ir.Variable{3}},
		{Op: ir.EndFuncDef},
		{Op: ir.LoadLiteral, Outputs: []ir.Variable{4}, Payload: ir.StringPayload("key")},
		{Op: ir.EndComputedProperty, Inputs: []ir.Variable{4}},
		{Op: ir.EndClassDef},
	})
}

func TestComputedKeyFoldCanMutate(t *testing.T) {
	m := NewComputedKeyFold()
	p := computedKeyFixture()
	require.NoError(t, p.Check())

	assert.True(t, m.CanMutate(p, 2))

	t.Run("wrong op", func(t *testing.T) {
		assert.False(t, m.CanMutate(p, 0))
		assert.False(t, m.CanMutate(p, -1))
		assert.False(t, m.CanMutate(p, p.Len()))
	})

	t.Run("wrong lookback", func(t *testing.T) {
		q := computedKeyFixture()
		q.Instrs[1].Op = ir.CreateObject
		assert.False(t, m.CanMutate(q, 2))
	})

	t.Run("interior missing a nested function", func(t *testing.T) {
		q := computedKeyFixture()
		q.Instrs[5] = ir.Instruction{Op: ir.BeginClassDef, Outputs: []ir.Variable{3}}
		q.Instrs[6] = ir.Instruction{Op: ir.EndClassDef}
		assert.False(t, m.CanMutate(q, 2))
	})

	t.Run("decision is deterministic", func(t *testing.T) {
		assert.Equal(t, m.CanMutate(p, 2), m.CanMutate(p, 2))
	})
}

func TestComputedKeyFoldMutate(t *testing.T) {
	m := NewComputedKeyFold()
	p := computedKeyFixture()

	next, ok := m.Mutate(p, 2, testRand())
	require.True(t, ok)
	require.NoError(t, next.Check())

	// The original is untouched.
	assert.NoError(t, p.Check())
	assert.Equal(t, 10, p.Len())

	// Find the rewritten closer: its sole input must be the result of an
	// immediate invocation of the function that now wraps the body.
	var closer ir.Instruction
	closerIdx := -1
	for i, ins := range next.Instrs {
		if ins.Op == ir.EndComputedProperty {
			closer = ins
			closerIdx = i
		}
	}
	require.NotEqual(t, -1, closerIdx)
	require.Len(t, closer.Inputs, 1)

	defUse := ir.NewDefUse(next)
	def, defIdx, err := defUse.DefinitionOf(closer.Inputs[0])
	require.NoError(t, err)
	assert.Equal(t, ir.CallFunction, def.Op)
	assert.Less(t, defIdx, closerIdx)

	// The invoked function is the freshly opened wrapper, and the original
	// body instructions kept their variable identities inside it.
	fnDef, _, err := defUse.DefinitionOf(def.Inputs[0])
	require.NoError(t, err)
	assert.Equal(t, ir.BeginFuncDef, fnDef.Op)
	for _, v := range []ir.Variable{2, 3, 4} {
		_, _, err := defUse.DefinitionOf(v)
		assert.NoError(t, err)
	}
}

func TestComputedKeyFoldMutateRejected(t *testing.T) {
	m := NewComputedKeyFold()
	p := computedKeyFixture()

	next, ok := m.Mutate(p, 0, testRand())
	assert.False(t, ok)
	// Contract: a rejected mutate hands back the input program unchanged.
	assert.Same(t, p, next)
}
