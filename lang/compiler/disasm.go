package compiler

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of p's instruction stream,
// one line per instruction, in the teacher's own "pc: op operands" text
// assembler format (lang/machine/machine.go's disassembler) but scaled down
// to a plain printer since via has no interactive text-assembler REPL.
func Disassemble(w io.Writer, p *Program) {
	for pc, ins := range p.Instructions {
		fmt.Fprintf(w, "%4d: %s\n", pc, ins)
	}
	if len(p.Constants) > 0 {
		fmt.Fprintln(w, "constants:")
		for i, c := range p.Constants {
			fmt.Fprintf(w, "%4d: %s\n", i, c.text())
		}
	}
}

// text renders c for the constants listing. It is not String(): Const
// already has a field of that name.
func (c Const) text() string {
	switch c.Kind {
	case ConstNil:
		return "nil"
	case ConstInt:
		return fmt.Sprintf("int %d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("float %g", c.Float)
	case ConstBool:
		return fmt.Sprintf("bool %t", c.Bool)
	case ConstString:
		return fmt.Sprintf("string %q", c.String)
	default:
		return "<invalid const>"
	}
}
