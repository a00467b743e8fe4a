// Package lift converts between the instruction IR and a line-oriented
// textual rendering. The engine core consumes only the rewrite.Lifter and
// rewrite.Parser interfaces; this package is the stock collaborator used by
// the CLI, the whole-program equivalence rewrite and the tests.
package lift

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/fuzzlab/ilfuzz/internal/ir"
)

// Text lifts and parses the canonical one-instruction-per-line form:
//
//	v0 = LoadLiteral "hello"
//	BeginTry
//	v1 = CallMethod v0 "slice"
//	Return v1
type Text struct{}

var opByName = func() map[string]ir.Op {
	m := make(map[string]ir.Op)
	for op := ir.Nop; ; op++ {
		name := op.String()
		if strings.HasPrefix(name, "Op(") {
			break
		}
		m[name] = op
	}
	return m
}()

// Lift renders the program. The output is stable: parsing it back yields a
// structurally identical program.
func (Text) Lift(p *ir.Program) (string, error) {
	if err := p.Check(); err != nil {
		return "", fmt.Errorf("lift: %w", err)
	}
	var sb strings.Builder
	for _, ins := range p.Instrs {
		sb.WriteString(renderInstruction(ins))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func renderInstruction(ins ir.Instruction) string {
	var sb strings.Builder
	if len(ins.Outputs) > 0 {
		sb.WriteString(renderVars(ins.Outputs))
		sb.WriteString(" = ")
	}
	sb.WriteString(ins.Op.String())
	if len(ins.Inputs) > 0 {
		sb.WriteString(" ")
		sb.WriteString(renderVars(ins.Inputs))
	}
	switch ins.Payload.Kind {
	case ir.PayloadString:
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(ins.Payload.Str))
	case ir.PayloadNumber:
		sb.WriteString(" ")
		sb.WriteString(strconv.FormatFloat(ins.Payload.Num, 'g', -1, 64))
	}
	return sb.String()
}

func renderVars(vars []ir.Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Parse reads the textual form back into a program and validates it.
// Blank lines and lines starting with '#' are skipped.
func (Text) Parse(src string) (*ir.Program, error) {
	var instrs []ir.Instruction
	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ins, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNo, err)
		}
		instrs = append(instrs, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p := ir.NewProgram(instrs)
	if err := p.Check(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return p, nil
}

func parseLine(line string) (ir.Instruction, error) {
	var ins ir.Instruction

	if idx := strings.Index(line, " = "); idx >= 0 {
		outs, err := parseVars(line[:idx])
		if err != nil {
			return ins, err
		}
		ins.Outputs = outs
		line = strings.TrimSpace(line[idx+3:])
	}

	// A quoted payload runs to the end of the line and may contain spaces.
	if q := strings.Index(line, `"`); q >= 0 {
		str, err := strconv.Unquote(strings.TrimSpace(line[q:]))
		if err != nil {
			return ins, fmt.Errorf("bad string payload: %w", err)
		}
		ins.Payload = ir.StringPayload(str)
		line = strings.TrimSpace(line[:q])
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ins, fmt.Errorf("missing operation")
	}
	op, ok := opByName[fields[0]]
	if !ok {
		return ins, fmt.Errorf("unknown operation %q", fields[0])
	}
	ins.Op = op

	for _, tok := range fields[1:] {
		tok = strings.TrimSuffix(tok, ",")
		if strings.HasPrefix(tok, "v") {
			v, err := parseVar(tok)
			if err != nil {
				return ins, err
			}
			ins.Inputs = append(ins.Inputs, v)
			continue
		}
		if ins.Payload.Kind != ir.PayloadNone {
			return ins, fmt.Errorf("unexpected token %q", tok)
		}
		num, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return ins, fmt.Errorf("unexpected token %q", tok)
		}
		ins.Payload = ir.NumberPayload(num)
	}
	return ins, nil
}

func parseVars(s string) ([]ir.Variable, error) {
	var vars []ir.Variable
	for _, tok := range strings.Split(s, ",") {
		v, err := parseVar(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

func parseVar(tok string) (ir.Variable, error) {
	if !strings.HasPrefix(tok, "v") {
		return ir.NoVariable, fmt.Errorf("bad variable %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 {
		return ir.NoVariable, fmt.Errorf("bad variable %q", tok)
	}
	return ir.Variable(n), nil
}
