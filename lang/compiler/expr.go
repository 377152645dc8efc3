package compiler

import (
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

// compileExpr lowers an expression node into a freshly allocated register
// holding its value, folding first where possible (spec §4.3.1, §4.3.3).
// The caller owns the returned register and must free it once done.
func (v *visitor) compileExpr(n *ast.Node) uint16 {
	if val, ok, errMsg := v.tryFold(n); ok {
		if errMsg != "" {
			v.ctx.Diags.Errorf(n.Span, "%s", errMsg)
			return v.compileExprUnfolded(n)
		}
		return v.loadConst(val, n.Span)
	}
	return v.compileExprUnfolded(n)
}

func (v *visitor) loadConst(val any, span token.Span) uint16 {
	f := v.curFunc()
	reg, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(span, "register allocator exhausted")
	}
	switch x := val.(type) {
	case nil:
		v.ctx.emit(LOADNIL, reg, NoOperand, NoOperand, "")
	case bool:
		if x {
			v.ctx.emit(LOADBT, reg, NoOperand, NoOperand, "")
		} else {
			v.ctx.emit(LOADBF, reg, NoOperand, NoOperand, "")
		}
	case int64:
		hi, lo := packInt(int32(x))
		v.ctx.emit(LOADI, reg, hi, lo, "")
	case float64:
		hi, lo := packFloat(float32(x))
		v.ctx.emit(LOADF, reg, hi, lo, "")
	case string:
		kid := v.ctx.internString(x)
		v.ctx.emit(LOADK, reg, kid, NoOperand, "")
	default:
		v.ctx.Diags.Internal(span, "unrepresentable folded constant %T", x)
	}
	return reg
}

func (v *visitor) compileExprUnfolded(n *ast.Node) uint16 {
	switch n.Kind {
	case ast.LiteralNil:
		return v.loadConst(nil, n.Span)
	case ast.LiteralInt:
		return v.loadConst(n.Value.(int64), n.Span)
	case ast.LiteralFloat:
		return v.loadConst(n.Value.(float64), n.Span)
	case ast.LiteralBool:
		return v.loadConst(n.Value.(bool), n.Span)
	case ast.LiteralString:
		return v.loadConst(n.Value.(string), n.Span)
	case ast.Group:
		return v.compileExpr(n.Left)
	case ast.Symbol:
		return v.compileSymbol(n)
	case ast.Unary:
		return v.compileUnary(n)
	case ast.Binary:
		return v.compileBinary(n)
	case ast.Call:
		return v.compileCall(n, CALL)
	case ast.Index:
		return v.compileIndex(n)
	case ast.Cast:
		return v.compileCast(n)
	case ast.Step:
		return v.compileStep(n)
	case ast.ArrayLit:
		return v.compileArrayLit(n)
	case ast.Intrinsic:
		return v.compileIntrinsic(n)
	default:
		v.ctx.Diags.Internal(n.Span, "unhandled expression kind %s", n.Kind)
		f := v.curFunc()
		reg, _ := f.regs.alloc()
		return reg
	}
}

// compileSymbol implements the use-site resolution order of spec §4.3.1:
// local -> argument -> upvalue -> global.
func (v *visitor) compileSymbol(n *ast.Node) uint16 {
	f := v.curFunc()
	if l := f.lookupLocal(n.Name); l != nil {
		reg, ok := f.regs.alloc()
		if !ok {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(MOV, reg, l.Reg, NoOperand, "")
		return reg
	}
	if idx, ok := f.paramIndex(n.Name); ok {
		reg, ok2 := f.regs.alloc()
		if !ok2 {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(GETARG, reg, uint16(idx), NoOperand, "arg "+n.Name)
		return reg
	}
	if upIdx, ok := v.resolveUpvalue(n.Name); ok {
		reg, ok2 := f.regs.alloc()
		if !ok2 {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(GETUPV, reg, uint16(upIdx), NoOperand, "upvalue "+n.Name)
		return reg
	}
	if _, ok := v.ctx.prog.Globals[n.Name]; ok {
		reg, _ := f.regs.alloc()
		keyReg, _ := f.regs.alloc()
		key := v.ctx.internString(n.Name)
		v.ctx.emit(LOADK, keyReg, key, NoOperand, "key: "+n.Name)
		v.ctx.emit(GETGLOBAL, reg, keyReg, NoOperand, "global "+n.Name)
		f.regs.free(keyReg)
		return reg
	}
	v.ctx.Diags.Errorf(n.Span, "undefined name %q", n.Name)
	reg, _ := f.regs.alloc()
	v.ctx.emit(LOADNIL, reg, NoOperand, NoOperand, "")
	return reg
}

// resolveUpvalue searches enclosing function frames for name, registering a
// CAPTURE entry on every frame between the defining scope and the current
// one (spec §3.5). It does not search the top-level frame: top-level
// bindings are globals, not upvalues.
func (v *visitor) resolveUpvalue(name string) (int, bool) {
	if len(v.funcs) < 2 {
		return 0, false
	}
	cur := v.funcs[len(v.funcs)-1]
	for i := range cur.upvalues {
		if cur.upvalues[i].name == name {
			return i, true
		}
	}

	for depth := len(v.funcs) - 2; depth >= 0; depth-- {
		enclosing := v.funcs[depth]
		if enclosing.name == "<main>" {
			return 0, false
		}
		if l := enclosing.lookupLocal(name); l != nil {
			idx := len(cur.upvalues)
			cur.upvalues = append(cur.upvalues, upvalueRef{name: name, fromUpvalue: false, index: int(l.Reg)})
			return idx, true
		}
		if _, ok := enclosing.paramIndex(name); ok {
			// parameters are not addressable as upvalues without a frame
			// slot; treat as not found, matching via's "locals only" closure
			// capture scope.
			continue
		}
	}
	return 0, false
}

func (v *visitor) compileUnary(n *ast.Node) uint16 {
	f := v.curFunc()
	operand := v.compileExpr(n.Right)
	dst, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}
	switch n.Op {
	case token.MINUS:
		v.ctx.emit(NEG, dst, operand, NoOperand, "")
	case token.NOT:
		v.ctx.emit(NOT, dst, operand, NoOperand, "")
	case token.POUND:
		v.ctx.emit(LENARR, dst, operand, NoOperand, "")
	default:
		v.ctx.Diags.Internal(n.Span, "unhandled unary operator %s", n.Op)
	}
	f.regs.free(operand)
	return dst
}

func (v *visitor) compileBinary(n *ast.Node) uint16 {
	f := v.curFunc()
	lhs := v.compileExpr(n.Left)
	rhs := v.compileExpr(n.Right)
	dst, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}

	op, known := binaryOpcode(n.Op)
	if !known {
		v.ctx.Diags.Internal(n.Span, "unhandled binary operator %s", n.Op)
	}
	v.ctx.emit(op, dst, lhs, rhs, "")

	f.regs.free(lhs)
	f.regs.free(rhs)
	return dst
}

func binaryOpcode(op token.Token) (Opcode, bool) {
	switch op {
	case token.PLUS:
		return ADD, true
	case token.MINUS:
		return SUB, true
	case token.STAR:
		return MUL, true
	case token.SLASH:
		return DIV, true
	case token.PERCENT:
		return MOD, true
	case token.CARET:
		return POW, true
	case token.EQ:
		return EQ, true
	case token.NEQ:
		return NEQ, true
	case token.LT:
		return LT, true
	case token.GT:
		return GT, true
	case token.LE:
		return LTEQ, true
	case token.GE:
		return GTEQ, true
	case token.AND:
		return AND, true
	case token.OR:
		return OR, true
	default:
		return NOP, false
	}
}

// compileCall implements: CALL callee_reg, first_arg_reg, return_reg
// (spec §4.3.1). Arguments are evaluated after the callee; when there are
// several, they are then moved into consecutive registers so
// first_arg_reg..first_arg_reg+argc-1 is contiguous.
func (v *visitor) compileCall(n *ast.Node, op Opcode) uint16 {
	f := v.curFunc()
	callee := v.compileExpr(n.Callee)

	var first uint16
	argRegs := make([]uint16, len(n.Args))
	for i, a := range n.Args {
		argRegs[i] = v.compileExpr(a)
		if i == 0 {
			first = argRegs[i]
		}
	}
	if len(n.Args) == 0 {
		first = NoOperand
	}
	if len(argRegs) > 1 {
		base := 0
		for run := 0; run < len(argRegs); run++ {
			if f.regs.used[base+run] {
				base, run = base+run+1, -1
			}
		}
		for i, r := range argRegs {
			argRegs[i] = uint16(base + i)
			f.regs.used[argRegs[i]] = true
			v.ctx.emit(MOV, argRegs[i], r, NoOperand, "")
			f.regs.free(r)
		}
		first = argRegs[0]
	}

	ret, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}
	v.ctx.emit(op, callee, first, ret, "")

	f.regs.free(callee)
	for _, r := range argRegs {
		f.regs.free(r)
	}
	return ret
}

func (v *visitor) compileIndex(n *ast.Node) uint16 {
	f := v.curFunc()
	base := v.compileExpr(n.Left)
	dst, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}
	if n.Right == nil {
		key := v.ctx.internString(n.Name)
		keyReg, _ := f.regs.alloc()
		v.ctx.emit(LOADK, keyReg, key, NoOperand, "key: "+n.Name)
		v.ctx.emit(GETDICT, dst, base, keyReg, "")
		f.regs.free(keyReg)
	} else {
		keyReg := v.compileExpr(n.Right)
		v.ctx.emit(GETARR, dst, base, keyReg, "")
		f.regs.free(keyReg)
	}
	f.regs.free(base)
	return dst
}

// compileCast implements the ICAST/FCAST/STRCAST/BCAST family (spec §4.4).
func (v *visitor) compileCast(n *ast.Node) uint16 {
	f := v.curFunc()
	src := v.compileExpr(n.Left)
	dst, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}
	target := n.CondType
	name := ""
	if target != nil {
		name = target.Name
	}
	switch name {
	case "int":
		v.ctx.emit(ICAST, dst, src, NoOperand, "")
	case "float":
		v.ctx.emit(FCAST, dst, src, NoOperand, "")
	case "string":
		v.ctx.emit(STRCAST, dst, src, NoOperand, "")
	case "bool":
		v.ctx.emit(BCAST, dst, src, NoOperand, "")
	default:
		v.ctx.Diags.Errorf(n.Span, "cannot cast to %q: not a primitive type", name)
	}
	f.regs.free(src)
	return dst
}

// compileStep implements the post ++/-- lowering: evaluate the operand,
// clone it into the destination register, then apply ADDI/SUBI 1 in place.
func (v *visitor) compileStep(n *ast.Node) uint16 {
	f := v.curFunc()
	if n.Left.Kind != ast.Symbol {
		v.ctx.Diags.Errorf(n.Span, "++/-- target must be a local variable")
		return v.compileExpr(n.Left)
	}
	name := n.Left.Name

	if l := f.lookupLocal(name); l != nil {
		if l.IsConst {
			v.ctx.Diags.Errorf(n.Span, "cannot increment const %q", name)
		}
		old, ok := f.regs.alloc()
		if !ok {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(MOV, old, l.Reg, NoOperand, "")
		hi, lo := packInt(1)
		if n.Op == token.INC {
			v.ctx.emit(ADDI, l.Reg, hi, lo, "step ++")
		} else {
			v.ctx.emit(SUBI, l.Reg, hi, lo, "step --")
		}
		return old
	}

	if upIdx, ok := v.resolveUpvalue(name); ok {
		cur, ok2 := f.regs.alloc()
		if !ok2 {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(GETUPV, cur, uint16(upIdx), NoOperand, "upvalue "+name)
		old, ok3 := f.regs.alloc()
		if !ok3 {
			v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
		}
		v.ctx.emit(MOV, old, cur, NoOperand, "")
		hi, lo := packInt(1)
		if n.Op == token.INC {
			v.ctx.emit(ADDI, cur, hi, lo, "step ++")
		} else {
			v.ctx.emit(SUBI, cur, hi, lo, "step --")
		}
		v.ctx.emit(SETUPV, cur, uint16(upIdx), NoOperand, "upvalue "+name)
		f.regs.free(cur)
		return old
	}

	v.ctx.Diags.Errorf(n.Span, "undefined name %q", name)
	return v.compileExpr(n.Left)
}

func (v *visitor) compileArrayLit(n *ast.Node) uint16 {
	f := v.curFunc()
	dst, ok := f.regs.alloc()
	if !ok {
		v.ctx.Diags.Internal(n.Span, "register allocator exhausted")
	}
	v.ctx.emit(LOADARR, dst, NoOperand, NoOperand, "")
	for i, el := range n.Args {
		valReg := v.compileExpr(el)
		idxReg := v.loadConst(int64(i), el.Span)
		v.ctx.emit(SETARR, dst, idxReg, valReg, "")
		f.regs.free(idxReg)
		f.regs.free(valReg)
	}
	return dst
}

// compileIntrinsic implements the compiler-known named forms: type, typeof,
// nameof, print, error, try, deep_eq (spec §4.2 primary grammar,
// SPEC_FULL §12 for "try"/"error" lowering).
func (v *visitor) compileIntrinsic(n *ast.Node) uint16 {
	f := v.curFunc()
	switch n.Name {
	case "print":
		arg := v.mustIntrinsicArg(n)
		argReg := v.compileExpr(arg)
		dst, _ := f.regs.alloc()
		v.ctx.emit(CALL, NoOperand, argReg, dst, "print")
		f.regs.free(argReg)
		return dst
	case "typeof", "nameof", "type":
		arg := v.mustIntrinsicArg(n)
		argReg := v.compileExpr(arg)
		dst, _ := f.regs.alloc()
		v.ctx.emit(STRCAST, dst, argReg, NoOperand, n.Name)
		f.regs.free(argReg)
		return dst
	case "error":
		arg := v.mustIntrinsicArg(n)
		argReg := v.compileExpr(arg)
		dst, _ := f.regs.alloc()
		v.ctx.emit(CALL, IntrinsicError, argReg, dst, "error raise")
		f.regs.free(argReg)
		return dst
	case "try":
		call := n.Args[0]
		if call.Kind != ast.Call {
			v.ctx.Diags.Errorf(n.Span, "try expects a call expression")
			return v.compileExpr(call)
		}
		return v.compileCall(call, PCALL)
	case "deep_eq":
		lhs := v.compileExpr(n.Args[0])
		rhs := v.compileExpr(n.Args[1])
		dst, _ := f.regs.alloc()
		v.ctx.emit(DEQ, dst, lhs, rhs, "")
		f.regs.free(lhs)
		f.regs.free(rhs)
		return dst
	default:
		v.ctx.Diags.Internal(n.Span, "unhandled intrinsic %q", n.Name)
		reg, _ := f.regs.alloc()
		return reg
	}
}

func (v *visitor) mustIntrinsicArg(n *ast.Node) *ast.Node {
	if len(n.Args) == 0 {
		v.ctx.Diags.Errorf(n.Span, "%s requires an operand", n.Name)
		return &ast.Node{Kind: ast.LiteralNil, Span: n.Span}
	}
	return n.Args[0]
}
