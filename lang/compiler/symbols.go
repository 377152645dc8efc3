package compiler

import "github.com/via-lang/via/lang/ast"

// local is one entry of a function's local stack (spec §3.3): declarations
// in declaration order, each carrying const-ness, constexpr-ness, the
// declaring node, type, and initializer.
type local struct {
	Name        string
	IsConst     bool
	IsConstexpr bool
	Decl        *ast.Node
	Type        *ast.Node
	Init        *ast.Node
	Reg         uint16
}

// funcFrame is one entry of the function stack (spec §3.3): the enclosing-
// function chain during codegen. compileScope saves the length of the
// current frame's local stack on entry and truncates back to it on exit.
type funcFrame struct {
	name   string
	params []string // parameter names, in declaration order (GETARG index)

	// regs is this function's own register space: registers are
	// frame-relative, so each compiling closure gets a fresh allocator
	// rather than sharing one VM-wide counter across the call chain.
	regs *registerAllocator

	locals []*local

	// upvalues captured by this function, in capture order; fromUpvalue
	// distinguishes "from the immediately enclosing function's locals" (a
	// register of that function) from "from the enclosing
	// function's own upvalues" (spec §3.5 CAPTURE sentinel semantics).
	upvalues []upvalueRef
}

type upvalueRef struct {
	name         string
	fromUpvalue  bool // true: index into enclosing closure's upvalues, false: its locals
	index        int
}

// lookupLocal searches a frame's local stack from the innermost (most
// recently declared) binding backward, the declaration-order search order
// of spec §4.3.1 ("local (search current function's local stack for
// matching name)").
func (f *funcFrame) lookupLocal(name string) *local {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].Name == name {
			return f.locals[i]
		}
	}
	return nil
}

func (f *funcFrame) paramIndex(name string) (int, bool) {
	for i, p := range f.params {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// loopLabels is the break/continue label pair the visitor carries while
// compiling a loop body (spec §4.3, "a break/continue label pair (may be
// None outside loops)"). Nested loops push/pop their own pair.
type loopLabels struct {
	breakLabel    int
	continueLabel int
}
