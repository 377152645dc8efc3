package compiler

import (
	"github.com/via-lang/via/internal/diag"
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/parser"
	"github.com/via-lang/via/lang/token"
)

// visitor is the single-pass semantic-analysis-and-codegen walker (spec
// §4.3). Unlike the teacher's separate resolver and compiler stages, symbol
// resolution, type checking, constant folding, and emission all happen
// while descending the tree once.
type visitor struct {
	ctx *Context

	funcs []*funcFrame
	loops []loopLabels

	// defers mirrors scope nesting: each scope pushes an empty slice, defer
	// appends to the top, scope exit pops and emits in reverse order
	// (spec §3.3, §4.3.2).
	defers [][]*ast.Node

	labelCounter int
}

// Compile parses and compiles src in one call, returning the resulting
// Program or, on any error, a nil Program and the accumulated diagnostics
// (spec §6.1 compile(path) entry point; path resolution is the caller's
// concern here, Compile takes source bytes directly).
func Compile(src []byte) (*Program, *diag.Bag) {
	chunk, diags := parser.Parse(src)
	if diags.HasErrors() {
		return nil, diags
	}

	ctx := newContext(src, nil, chunk)
	v := &visitor{ctx: ctx}
	v.compileTopLevel(chunk)

	ctx.Diags.Sort()
	if ctx.Diags.HasErrors() {
		return nil, &ctx.Diags
	}
	return &ctx.prog, &ctx.Diags
}

func (v *visitor) curFunc() *funcFrame {
	if len(v.funcs) == 0 {
		return nil
	}
	return v.funcs[len(v.funcs)-1]
}

func (v *visitor) newLabel() int {
	v.labelCounter++
	return v.labelCounter
}

func (v *visitor) emitLabel(id int) {
	v.ctx.emit(LBL, uint16(id), NoOperand, NoOperand, "")
}

func (v *visitor) compileTopLevel(ch *ast.Chunk) {
	top := &funcFrame{name: "<main>", regs: newRegisterAllocator()}
	v.funcs = append(v.funcs, top)
	v.defers = append(v.defers, nil)

	for _, stmt := range ch.Stmts {
		v.compileStmt(stmt)
	}
	v.runDefers()
	v.ctx.emit(EXIT, NoOperand, NoOperand, NoOperand, "")

	v.funcs = v.funcs[:len(v.funcs)-1]
	v.defers = v.defers[:len(v.defers)-1]
}

// runDefers emits the current scope's deferred statements in reverse order
// of addition (spec §3.3, §4.3.2) without popping the defer stack entry.
func (v *visitor) runDefers() {
	top := v.defers[len(v.defers)-1]
	for i := len(top) - 1; i >= 0; i-- {
		v.compileStmt(top[i])
	}
}

// --- statements ---------------------------------------------------------

func (v *visitor) compileStmt(n *ast.Node) {
	switch n.Kind {
	case ast.Decl:
		v.compileDecl(n)
	case ast.FuncDecl:
		v.compileFuncDecl(n)
	case ast.Scope:
		v.compileScope(n)
	case ast.If:
		v.compileIf(n)
	case ast.While:
		v.compileWhile(n)
	case ast.Return:
		v.compileReturn(n)
	case ast.Break:
		v.compileBreak(n)
	case ast.Continue:
		v.compileContinue(n)
	case ast.Defer:
		v.defers[len(v.defers)-1] = append(v.defers[len(v.defers)-1], n.Left)
	case ast.Assign:
		v.compileAssign(n)
	case ast.ExprStmt:
		f := v.curFunc()
		reg := v.compileExpr(n.Left)
		f.regs.free(reg)
	default:
		v.ctx.Diags.Internal(n.Span, "unhandled statement kind %s", n.Kind)
	}
}

func (v *visitor) compileScope(n *ast.Node) {
	f := v.curFunc()
	saved := len(f.locals)
	v.defers = append(v.defers, nil)
	for _, s := range n.Stmts {
		v.compileStmt(s)
	}
	v.runDefers()
	v.defers = v.defers[:len(v.defers)-1]
	f.locals = f.locals[:saved]
}

// compileDecl implements decl lowering: evaluate the initializer (if any)
// into a fresh register bound as the local's home, type-check against the
// declared type, and fold-mark it constexpr when eligible.
func (v *visitor) compileDecl(n *ast.Node) {
	f := v.curFunc()

	var reg uint16
	var initType *ast.Node
	isConstexpr := false

	if n.InitExpr != nil {
		if _, ok, errMsg := v.tryFold(n.InitExpr); ok {
			if errMsg != "" {
				v.ctx.Diags.Errorf(n.InitExpr.Span, "%s", errMsg)
			} else {
				isConstexpr = true
			}
		}
		reg = v.compileExpr(n.InitExpr)
		initType = inferType(n.InitExpr, v.lookupType)
	} else {
		var ok bool
		reg, ok = f.regs.alloc()
		if !ok {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(LOADNIL, reg, NoOperand, NoOperand, "")
	}

	declType := n.CondType
	if declType == nil || declType.Kind == ast.TypeAuto {
		declType = initType
		n.CondType = declType
	} else if initType != nil && !compatible(initType, declType) {
		v.ctx.Diags.Errorf(n.Span, "cannot initialize %q: incompatible types", n.Name)
	}
	if declType == nil {
		v.ctx.Diags.Internal(n.Span, "unresolvable inferred type for %q", n.Name)
	}
	n.IsConstexpr = isConstexpr

	if n.IsGlobal {
		v.ctx.prog.Globals[n.Name] = &Global{Name: n.Name, DeclTok: token.GLOBAL, Type: declType}
		key := v.ctx.internString(n.Name)
		keyReg, ok := f.regs.alloc()
		if !ok {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(LOADK, keyReg, key, NoOperand, "key: "+n.Name)
		v.ctx.emit(SETGLOBAL, reg, keyReg, NoOperand, "global "+n.Name)
		f.regs.free(keyReg)
		f.regs.free(reg)
		return
	}

	f.locals = append(f.locals, &local{
		Name: n.Name, IsConst: n.IsConst, IsConstexpr: isConstexpr,
		Decl: n, Type: declType, Init: n.InitExpr, Reg: reg,
	})
}

func (v *visitor) lookupType(name string) *ast.Node {
	f := v.curFunc()
	if f == nil {
		return nil
	}
	if l := f.lookupLocal(name); l != nil {
		return l.Type
	}
	if _, ok := f.paramIndex(name); ok {
		return nil
	}
	if g, ok := v.ctx.prog.Globals[name]; ok {
		return g.Type
	}
	return nil
}

// compileFuncDecl emits CLOSURE dst, len, argc followed by the body and the
// CAPTURE sentinels for every outer-scope binding the body references
// (spec §4.3.1).
func (v *visitor) compileFuncDecl(n *ast.Node) {
	outer := v.curFunc()

	paramNames := make([]string, len(n.Params))
	for i, p := range n.Params {
		paramNames[i] = p.Name
	}
	frame := &funcFrame{name: n.Name, params: paramNames, regs: newRegisterAllocator()}

	dst, ok := outer.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}
	closureAt := v.ctx.emit(CLOSURE, dst, NoOperand, uint16(len(n.Params)), "fn "+n.Name)

	// a top-level function's global is declared before its body compiles, so
	// the body can call the function recursively.
	if outer.name == "<main>" {
		v.ctx.prog.Globals[n.Name] = &Global{Name: n.Name, DeclTok: token.FN, Type: n.CondType}
	}

	v.funcs = append(v.funcs, frame)
	v.defers = append(v.defers, nil)

	bodyStart := v.ctx.pc()
	for _, s := range n.Then.Stmts {
		v.compileStmt(s)
	}
	v.runDefers()
	if !lastIsReturn(n.Then.Stmts) {
		v.ctx.emit(RETNIL, NoOperand, NoOperand, NoOperand, "")
	}

	for _, uv := range frame.upvalues {
		idx := uint16(uv.index)
		isUp := uint16(0)
		if uv.fromUpvalue {
			isUp = 1
		}
		v.ctx.emit(CAPTURE, isUp, idx, NoOperand, "upvalue "+uv.name)
	}

	v.funcs = v.funcs[:len(v.funcs)-1]
	v.defers = v.defers[:len(v.defers)-1]

	bodyLen := v.ctx.pc() - bodyStart
	ins := &v.ctx.prog.Instructions[closureAt]
	ins.B = uint16(bodyLen)

	// bind the function's name like a const local/global declaration.
	if outer.name == "<main>" {
		key := v.ctx.internString(n.Name)
		keyReg, ok := outer.regs.alloc()
		if !ok {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(LOADK, keyReg, key, NoOperand, "key: "+n.Name)
		v.ctx.emit(SETGLOBAL, dst, keyReg, NoOperand, "global "+n.Name)
		outer.regs.free(keyReg)
		outer.regs.free(dst)
		return
	}
	outer.locals = append(outer.locals, &local{Name: n.Name, IsConst: true, Decl: n, Type: n.CondType, Reg: dst})
}

func lastIsReturn(stmts []*ast.Node) bool {
	if len(stmts) == 0 {
		return false
	}
	return stmts[len(stmts)-1].Kind == ast.Return
}

func (v *visitor) compileIf(n *ast.Node) {
	escape := v.newLabel()
	v.compileIfArm(n, escape)
	v.emitLabel(escape)
}

// compileIfArm lowers one if/elif arm per spec §4.3.2: condition, LJMPIF to
// the body, LJMP past it to either the next arm/else or escape.
func (v *visitor) compileIfArm(n *ast.Node, escape int) {
	f := v.curFunc()
	bodyLabel := v.newLabel()
	nextLabel := v.newLabel()

	condReg := v.compileExpr(n.Cond)
	v.ctx.emit(LJMPIF, condReg, uint16(bodyLabel), NoOperand, "")
	f.regs.free(condReg)
	v.ctx.emit(LJMP, uint16(nextLabel), NoOperand, NoOperand, "")

	v.emitLabel(bodyLabel)
	v.compileScope(n.Then)
	v.ctx.emit(LJMP, uint16(escape), NoOperand, NoOperand, "")

	v.emitLabel(nextLabel)
	if len(n.Elifs) > 0 {
		v.compileIfArm(n.Elifs[0], escape)
		return
	}
	if n.Else != nil {
		v.compileScope(n.Else)
	}
}

// compileWhile implements: LBL repeat; cond -> LJMPIFN escape; body;
// LJMP repeat; LBL escape (spec §4.3.2).
func (v *visitor) compileWhile(n *ast.Node) {
	f := v.curFunc()
	repeat := v.newLabel()
	escape := v.newLabel()

	v.emitLabel(repeat)
	condReg := v.compileExpr(n.Cond)
	v.ctx.emit(LJMPIFN, condReg, uint16(escape), NoOperand, "")
	f.regs.free(condReg)

	v.loops = append(v.loops, loopLabels{breakLabel: escape, continueLabel: repeat})
	v.compileScope(n.Then)
	v.loops = v.loops[:len(v.loops)-1]

	v.ctx.emit(LJMP, uint16(repeat), NoOperand, NoOperand, "")
	v.emitLabel(escape)
}

func (v *visitor) compileBreak(n *ast.Node) {
	if len(v.loops) == 0 {
		v.ctx.Diags.Errorf(n.Span, "break used outside a loop")
		return
	}
	top := v.loops[len(v.loops)-1]
	v.ctx.emit(LJMP, uint16(top.breakLabel), NoOperand, NoOperand, "")
}

func (v *visitor) compileContinue(n *ast.Node) {
	if len(v.loops) == 0 {
		v.ctx.Diags.Errorf(n.Span, "continue used outside a loop")
		return
	}
	top := v.loops[len(v.loops)-1]
	v.ctx.emit(LJMP, uint16(top.continueLabel), NoOperand, NoOperand, "")
}

func (v *visitor) compileReturn(n *ast.Node) {
	if n.Left == nil {
		v.ctx.emit(RETNIL, NoOperand, NoOperand, NoOperand, "")
		return
	}
	if val, ok, errMsg := v.tryFold(n.Left); ok && errMsg == "" {
		switch val.(type) {
		case bool:
			if val.(bool) {
				v.ctx.emit(RETBT, NoOperand, NoOperand, NoOperand, "")
			} else {
				v.ctx.emit(RETBF, NoOperand, NoOperand, NoOperand, "")
			}
			return
		}
	}
	f := v.curFunc()
	reg := v.compileExpr(n.Left)
	v.ctx.emit(RET, reg, NoOperand, NoOperand, "")
	f.regs.free(reg)
}

// compileAssign implements the "=" / "op=" assignment lowering of
// spec §4.3.1: local (error if const), global, or indexed (array/dict)
// lvalues.
func (v *visitor) compileAssign(n *ast.Node) {
	rhs := n.Right
	if n.Op != token.ILLEGAL {
		bin := &ast.Node{Kind: ast.Binary, Op: n.Op, Left: n.Left, Right: n.Right, Span: n.Span}
		rhs = bin
	}

	switch n.Left.Kind {
	case ast.Symbol:
		v.compileAssignSymbol(n.Left, rhs, n.Span)
	case ast.Index:
		v.compileAssignIndex(n.Left, rhs)
	default:
		v.ctx.Diags.Errorf(n.Span, "invalid assignment target")
	}
}

func (v *visitor) compileAssignSymbol(sym *ast.Node, rhs *ast.Node, span token.Span) {
	f := v.curFunc()
	if l := f.lookupLocal(sym.Name); l != nil {
		if l.IsConst {
			v.ctx.Diags.Errorf(span, "cannot assign to const %q", sym.Name)
		}
		srcReg := v.compileExpr(rhs)
		v.ctx.emit(MOV, l.Reg, srcReg, NoOperand, "")
		f.regs.free(srcReg)
		return
	}
	if _, ok := f.paramIndex(sym.Name); ok {
		v.ctx.Diags.Errorf(span, "cannot assign to parameter %q", sym.Name)
		return
	}
	if upIdx, ok := v.resolveUpvalue(sym.Name); ok {
		srcReg := v.compileExpr(rhs)
		v.ctx.emit(SETUPV, srcReg, uint16(upIdx), NoOperand, "upvalue "+sym.Name)
		f.regs.free(srcReg)
		return
	}
	if _, ok := v.ctx.prog.Globals[sym.Name]; ok {
		srcReg := v.compileExpr(rhs)
		keyReg, ok2 := f.regs.alloc()
		if !ok2 {
			v.ctx.Diags.Internal(span, "register allocator exhausted")
		}
		key := v.ctx.internString(sym.Name)
		v.ctx.emit(LOADK, keyReg, key, NoOperand, "key: "+sym.Name)
		v.ctx.emit(SETGLOBAL, srcReg, keyReg, NoOperand, "global "+sym.Name)
		f.regs.free(keyReg)
		f.regs.free(srcReg)
		return
	}
	v.ctx.Diags.Errorf(span, "assignment to unknown name %q", sym.Name)
}

func (v *visitor) compileAssignIndex(idx *ast.Node, rhs *ast.Node) {
	f := v.curFunc()
	// a local base is stored through its own register: compileExpr would MOV
	// (clone) it, and the store would land in the copy.
	var baseReg uint16
	ownBase := true
	if idx.Left.Kind == ast.Symbol {
		if l := f.lookupLocal(idx.Left.Name); l != nil {
			baseReg, ownBase = l.Reg, false
		}
	}
	if ownBase {
		baseReg = v.compileExpr(idx.Left)
	}
	valReg := v.compileExpr(rhs)

	if idx.Right == nil {
		key := v.ctx.internString(idx.Name)
		keyReg, _ := f.regs.alloc()
		v.ctx.emit(LOADK, keyReg, key, NoOperand, "key: "+idx.Name)
		v.ctx.emit(SETDICT, baseReg, keyReg, valReg, "")
		f.regs.free(keyReg)
	} else {
		keyReg := v.compileExpr(idx.Right)
		v.ctx.emit(SETARR, baseReg, keyReg, valReg, "")
		f.regs.free(keyReg)
	}
	if ownBase {
		f.regs.free(baseReg)
	}
	f.regs.free(valReg)
}
