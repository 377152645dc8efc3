package machine

import "github.com/via-lang/via/lang/compiler"

// Loaded is a compiler.Program made ready to run: its constant pool
// converted to runtime Values and its label table resolved to instruction
// indices (spec §6.3, "ready to be loaded by the machine package").
type Loaded struct {
	Program   *compiler.Program
	Constants []Value
	Labels    map[int]int // label id -> instruction index
	Toplevel  *Closure
}

// Load resolves every LBL instruction's position into the label table and
// builds the top-level closure (spec §8 "Label closure": "every LJMP*
// target label exists in the label table after load").
func Load(p *compiler.Program) *Loaded {
	labels := make(map[int]int, len(p.Labels))
	for pc, ins := range p.Instructions {
		if ins.Op == compiler.LBL {
			labels[int(ins.A)] = pc
		}
	}

	consts := make([]Value, len(p.Constants))
	for i, c := range p.Constants {
		consts[i] = constToValue(c)
	}

	top := &Function{
		Kind:  FuncVia,
		Name:  "<main>",
		Entry: 0,
		Len:   len(p.Instructions),
	}
	return &Loaded{
		Program:   p,
		Constants: consts,
		Labels:    labels,
		Toplevel:  &Closure{Fn: top},
	}
}

func constToValue(c compiler.Const) Value {
	switch c.Kind {
	case compiler.ConstNil:
		return Nil()
	case compiler.ConstInt:
		return IntVal(int32(c.Int))
	case compiler.ConstFloat:
		return FloatVal(float32(c.Float))
	case compiler.ConstBool:
		return BoolVal(c.Bool)
	case compiler.ConstString:
		return StringVal(c.String)
	default:
		return Nil()
	}
}
