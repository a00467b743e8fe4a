package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanBlock(t *testing.T) {
	// 0 BeginClassDef
	// 1   LoadUndefined
	// 2   BeginFuncDef
	// 3     CreateObject
	// 4   EndFuncDef
	// 5   Nop
	// 6 EndClassDef
	p := NewProgram([]Instruction{
		{Op: BeginClassDef, Outputs: []Variable{0}},
		{Op: LoadUndefined, Outputs: []Variable{1}},
		{Op: BeginFuncDef, Outputs: []Variable{2}},
		{Op: CreateObject, Outputs: []Variable{3}},
		{Op: EndFuncDef},
		{Op: Nop},
		{Op: EndClassDef},
	})

	end, interior, err := ScanBlock(p, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, end)
	// The nested function's opener and closer are part of the interior;
	// its body at index 3 is not.
	assert.Equal(t, []int{1, 2, 4, 5}, interior)

	end, interior, err = ScanBlock(p, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, end)
	assert.Equal(t, []int{3}, interior)
}

func TestScanBlockErrors(t *testing.T) {
	t.Run("not an opener", func(t *testing.T) {
		p := NewProgram([]Instruction{{Op: Nop}})
		_, _, err := ScanBlock(p, 0)
		assert.ErrorIs(t, err, ErrMalformedProgram)
	})

	t.Run("start out of range", func(t *testing.T) {
		p := NewProgram(nil)
		_, _, err := ScanBlock(p, 0)
		assert.ErrorIs(t, err, ErrMalformedProgram)
	})

	t.Run("no matching closer", func(t *testing.T) {
		p := NewProgram([]Instruction{
			{Op: BeginTry},
			{Op: CreateObject, Outputs: []Variable{0}},
		})
		_, _, err := ScanBlock(p, 0)
		assert.ErrorIs(t, err, ErrMalformedProgram)
	})
}

func TestScanBlockTryCatch(t *testing.T) {
	// The catch transition is depth-neutral: EndTryCatch closes the block
	// opened by BeginTry.
	p := NewProgram([]Instruction{
		{Op: BeginTry},
		{Op: CreateObject, Outputs: []Variable{0}},
		{Op: BeginCatch, Outputs: []Variable{1}},
		{Op: Nop, Inputs: []Variable{1}},
		{Op: EndTryCatch},
	})
	end, interior, err := ScanBlock(p, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, end)
	assert.Equal(t, []int{1, 2, 3}, interior)
}
