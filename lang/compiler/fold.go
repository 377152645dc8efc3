package compiler

import (
	"math"

	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

// maxFoldDepth bounds how many constexpr symbol hops the folder will chase
// before giving up (spec §4.3.3, "Symbol references may be folded up to a
// depth of 5").
const maxFoldDepth = 5

// tryFold attempts compile-time evaluation of n at optimization level >= 1
// (always on; the spec does not expose a level-0 mode through the visitor
// interface). ok is false if n is not fold-reducible; err is non-empty only
// for a fold-time failure that must become a diagnostic (division by zero).
func (v *visitor) tryFold(n *ast.Node) (value any, ok bool, err string) {
	return v.tryFoldDepth(n, 0)
}

func (v *visitor) tryFoldDepth(n *ast.Node, depth int) (value any, ok bool, errMsg string) {
	switch n.Kind {
	case ast.LiteralNil:
		return nil, true, ""
	case ast.LiteralInt:
		return n.Value.(int64), true, ""
	case ast.LiteralFloat:
		return n.Value.(float64), true, ""
	case ast.LiteralBool:
		return n.Value.(bool), true, ""
	case ast.LiteralString:
		return n.Value.(string), true, ""
	case ast.Group:
		return v.tryFoldDepth(n.Left, depth)
	case ast.Symbol:
		return v.tryFoldSymbol(n, depth)
	case ast.Unary:
		return v.tryFoldUnary(n, depth)
	case ast.Binary:
		return v.tryFoldBinary(n, depth)
	default:
		return nil, false, ""
	}
}

func (v *visitor) tryFoldSymbol(n *ast.Node, depth int) (any, bool, string) {
	if depth >= maxFoldDepth {
		return nil, false, ""
	}
	f := v.curFunc()
	if f == nil {
		return nil, false, ""
	}
	l := f.lookupLocal(n.Name)
	if l == nil || !l.IsConst || !l.IsConstexpr || l.Init == nil {
		return nil, false, ""
	}
	return v.tryFoldDepth(l.Init, depth+1)
}

func (v *visitor) tryFoldUnary(n *ast.Node, depth int) (any, bool, string) {
	val, ok, errMsg := v.tryFoldDepth(n.Right, depth)
	if !ok || errMsg != "" {
		return nil, ok, errMsg
	}
	switch n.Op {
	case token.MINUS:
		switch x := val.(type) {
		case int64:
			return -x, true, ""
		case float64:
			return -x, true, ""
		}
	case token.NOT:
		if b, isBool := val.(bool); isBool {
			return !b, true, ""
		}
	case token.POUND:
		if s, isStr := val.(string); isStr {
			return int64(len(s)), true, ""
		}
	}
	return nil, false, ""
}

func (v *visitor) tryFoldBinary(n *ast.Node, depth int) (any, bool, string) {
	lv, lok, lerr := v.tryFoldDepth(n.Left, depth)
	if !lok {
		return nil, false, ""
	}
	if lerr != "" {
		return nil, true, lerr
	}
	rv, rok, rerr := v.tryFoldDepth(n.Right, depth)
	if !rok {
		return nil, false, ""
	}
	if rerr != "" {
		return nil, true, rerr
	}
	return foldBinaryOp(n.Op, lv, rv)
}

// foldBinaryOp implements the evaluator table of spec §4.3.3: int x int,
// float x float, and promoted int/float combinations, plus the comparison
// operators (which always yield a bool literal).
func foldBinaryOp(op token.Token, l, r any) (any, bool, string) {
	if op.Precedence() == 1 && op != token.AND && op != token.OR {
		return foldComparison(op, l, r)
	}
	switch op {
	case token.AND:
		lb, lok := l.(bool)
		rb, rok := r.(bool)
		if lok && rok {
			return lb && rb, true, ""
		}
		return nil, false, ""
	case token.OR:
		lb, lok := l.(bool)
		rb, rok := r.(bool)
		if lok && rok {
			return lb || rb, true, ""
		}
		return nil, false, ""
	}

	li, liok := l.(int64)
	ri, riok := r.(int64)
	if liok && riok {
		return foldIntOp(op, li, ri)
	}

	lf, lfok := asFloat(l)
	rf, rfok := asFloat(r)
	if lfok && rfok {
		return foldFloatOp(op, lf, rf)
	}
	return nil, false, ""
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func foldIntOp(op token.Token, l, r int64) (any, bool, string) {
	switch op {
	case token.PLUS:
		return l + r, true, ""
	case token.MINUS:
		return l - r, true, ""
	case token.STAR:
		return l * r, true, ""
	case token.SLASH:
		if r == 0 {
			return nil, true, "division by zero"
		}
		return l / r, true, ""
	case token.PERCENT:
		if r == 0 {
			return nil, true, "division by zero"
		}
		return l % r, true, ""
	case token.CARET:
		return intPow(l, r), true, ""
	default:
		return nil, false, ""
	}
}

func foldFloatOp(op token.Token, l, r float64) (any, bool, string) {
	switch op {
	case token.PLUS:
		return l + r, true, ""
	case token.MINUS:
		return l - r, true, ""
	case token.STAR:
		return l * r, true, ""
	case token.SLASH:
		if r == 0 {
			return nil, true, "division by zero"
		}
		return l / r, true, ""
	case token.PERCENT:
		if r == 0 {
			return nil, true, "division by zero"
		}
		return math.Mod(l, r), true, ""
	case token.CARET:
		return math.Pow(l, r), true, ""
	default:
		return nil, false, ""
	}
}

func foldComparison(op token.Token, l, r any) (any, bool, string) {
	lf, lfok := asFloat(l)
	rf, rfok := asFloat(r)
	if lfok && rfok {
		switch op {
		case token.EQ:
			return lf == rf, true, ""
		case token.NEQ:
			return lf != rf, true, ""
		case token.LT:
			return lf < rf, true, ""
		case token.GT:
			return lf > rf, true, ""
		case token.LE:
			return lf <= rf, true, ""
		case token.GE:
			return lf >= rf, true, ""
		}
	}
	switch op {
	case token.EQ:
		return l == r, true, ""
	case token.NEQ:
		return l != r, true, ""
	}
	return nil, false, ""
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	return int64(math.Pow(float64(base), float64(exp)))
}
