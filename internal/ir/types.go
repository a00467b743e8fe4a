package ir

import (
	"fmt"
	"strings"
)

// Variable identifies a single-assignment binding. Variables are numbered
// and globally unique within a program; a variable has exactly one defining
// instruction and belongs to the block that instruction resides in.
type Variable int

// NoVariable is the absence of a variable, used for optional slots such as
// a missing tail value.
const NoVariable Variable = -1

func (v Variable) String() string {
	if v == NoVariable {
		return "v?"
	}
	return fmt.Sprintf("v%d", int(v))
}

// Op is the closed set of instruction kinds. Every op is either a leaf, a
// scope opener, or a scope closer; BeginCatch is the transition between the
// try and catch regions of one try/catch block and is depth-neutral.
type Op int

const (
	Nop Op = iota
	LoadLiteral
	LoadUndefined
	LoadParameter
	LoadProperty
	LoadElement
	CreateObject
	CreateArray
	CallFunction
	CallMethod
	CallBuiltin
	Return

	BeginClassDef
	EndClassDef
	BeginComputedProperty
	EndComputedProperty
	BeginFuncDef
	EndFuncDef
	BeginTry
	BeginCatch
	EndTryCatch

	opCount
)

type opInfo struct {
	name   string
	opens  bool
	closes bool
}

var opTable = [opCount]opInfo{
	Nop:                   {name: "Nop"},
	LoadLiteral:           {name: "LoadLiteral"},
	LoadUndefined:         {name: "LoadUndefined"},
	LoadParameter:         {name: "LoadParameter"},
	LoadProperty:          {name: "LoadProperty"},
	LoadElement:           {name: "LoadElement"},
	CreateObject:          {name: "CreateObject"},
	CreateArray:           {name: "CreateArray"},
	CallFunction:          {name: "CallFunction"},
	CallMethod:            {name: "CallMethod"},
	CallBuiltin:           {name: "CallBuiltin"},
	Return:                {name: "Return"},
	BeginClassDef:         {name: "BeginClassDef", opens: true},
	EndClassDef:           {name: "EndClassDef", closes: true},
	BeginComputedProperty: {name: "BeginComputedProperty", opens: true},
	EndComputedProperty:   {name: "EndComputedProperty", closes: true},
	BeginFuncDef:          {name: "BeginFuncDef", opens: true},
	EndFuncDef:            {name: "EndFuncDef", closes: true},
	BeginTry:              {name: "BeginTry", opens: true},
	BeginCatch:            {name: "BeginCatch"},
	EndTryCatch:           {name: "EndTryCatch", closes: true},
}

// matchingEnd maps every scope opener to the closer that terminates it.
// BeginCatch does not appear here: it continues the block opened by
// BeginTry and is itself terminated by EndTryCatch.
var matchingEnd = map[Op]Op{
	BeginClassDef:         EndClassDef,
	BeginComputedProperty: EndComputedProperty,
	BeginFuncDef:          EndFuncDef,
	BeginTry:              EndTryCatch,
	BeginCatch:            EndTryCatch,
}

func (op Op) String() string {
	if op < 0 || op >= opCount {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opTable[op].name
}

// OpensBlock reports whether the op starts a nested scope.
func (op Op) OpensBlock() bool { return opTable[op].opens }

// ClosesBlock reports whether the op terminates a nested scope.
func (op Op) ClosesBlock() bool { return opTable[op].closes }

// MatchingEnd returns the closer op terminating a block opened by op.
func (op Op) MatchingEnd() (Op, bool) {
	end, ok := matchingEnd[op]
	return end, ok
}

// PayloadKind discriminates the optional literal payload of an instruction.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadString
	PayloadNumber
)

// Payload is an optional literal attached to an instruction, e.g. the
// property name of a LoadProperty or the value of a LoadLiteral.
type Payload struct {
	Kind PayloadKind
	Str  string
	Num  float64
}

func StringPayload(s string) Payload  { return Payload{Kind: PayloadString, Str: s} }
func NumberPayload(f float64) Payload { return Payload{Kind: PayloadNumber, Num: f} }

// Instruction is one operation with its ordered input and output variables
// and an optional literal payload.
type Instruction struct {
	Op      Op
	Inputs  []Variable
	Outputs []Variable
	Payload Payload
}

// NewInstruction builds an instruction without a payload.
func NewInstruction(op Op, inputs, outputs []Variable) Instruction {
	return Instruction{Op: op, Inputs: inputs, Outputs: outputs}
}

// Output returns the first output variable, or NoVariable if the
// instruction defines nothing.
func (ins Instruction) Output() Variable {
	if len(ins.Outputs) == 0 {
		return NoVariable
	}
	return ins.Outputs[0]
}

// Clone returns a deep copy; the input and output slices are never shared.
func (ins Instruction) Clone() Instruction {
	c := ins
	if len(ins.Inputs) > 0 {
		c.Inputs = append([]Variable(nil), ins.Inputs...)
	}
	if len(ins.Outputs) > 0 {
		c.Outputs = append([]Variable(nil), ins.Outputs...)
	}
	return c
}

func (ins Instruction) String() string {
	var sb strings.Builder
	if len(ins.Outputs) > 0 {
		sb.WriteString(joinVars(ins.Outputs))
		sb.WriteString(" = ")
	}
	sb.WriteString(ins.Op.String())
	if len(ins.Inputs) > 0 {
		sb.WriteString(" ")
		sb.WriteString(joinVars(ins.Inputs))
	}
	switch ins.Payload.Kind {
	case PayloadString:
		fmt.Fprintf(&sb, " %q", ins.Payload.Str)
	case PayloadNumber:
		fmt.Fprintf(&sb, " %v", ins.Payload.Num)
	}
	return sb.String()
}

func joinVars(vars []Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Program is an ordered instruction sequence forming a well-nested block
// tree. Programs are treated as immutable: every engine operation that
// changes a program returns a fresh value and leaves the input untouched.
type Program struct {
	Instrs []Instruction
}

// NewProgram wraps an instruction slice. The slice is not copied; callers
// hand over ownership.
func NewProgram(instrs []Instruction) *Program {
	return &Program{Instrs: instrs}
}

func (p *Program) Len() int { return len(p.Instrs) }

// At returns the instruction at index i.
func (p *Program) At(i int) Instruction { return p.Instrs[i] }

// Clone deep-copies the program.
func (p *Program) Clone() *Program {
	instrs := make([]Instruction, len(p.Instrs))
	for i, ins := range p.Instrs {
		instrs[i] = ins.Clone()
	}
	return &Program{Instrs: instrs}
}

// NextVariable returns the smallest variable number not yet defined
// anywhere in the program. Rewrites allocate fresh variables from here so
// adopted instructions keep their identities without collisions.
func (p *Program) NextVariable() Variable {
	next := Variable(0)
	for _, ins := range p.Instrs {
		for _, out := range ins.Outputs {
			if out >= next {
				next = out + 1
			}
		}
	}
	return next
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, ins := range p.Instrs {
		sb.WriteString(ins.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
