package compiler

import (
	"testing"

	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

func intLit(v int64) *ast.Node  { return &ast.Node{Kind: ast.LiteralInt, Value: v} }
func fltLit(v float64) *ast.Node { return &ast.Node{Kind: ast.LiteralFloat, Value: v} }

func binary(op token.Token, l, r *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.Binary, Op: op, Left: l, Right: r}
}

func TestTryFoldIntArithmetic(t *testing.T) {
	v := &visitor{}
	n := binary(token.PLUS, intLit(1), binary(token.STAR, intLit(2), intLit(3)))
	val, ok, errMsg := v.tryFold(n)
	if !ok || errMsg != "" {
		t.Fatalf("tryFold = %v, %v, %q; want a folded value", val, ok, errMsg)
	}
	if val.(int64) != 7 {
		t.Fatalf("tryFold result = %v; want 7", val)
	}
}

func TestTryFoldIntDivisionByZero(t *testing.T) {
	v := &visitor{}
	n := binary(token.SLASH, intLit(1), intLit(0))
	_, ok, errMsg := v.tryFold(n)
	if !ok || errMsg == "" {
		t.Fatalf("tryFold = ok=%v errMsg=%q; want ok=true with a division-by-zero message", ok, errMsg)
	}
}

func TestTryFoldFloatPromotion(t *testing.T) {
	v := &visitor{}
	n := binary(token.PLUS, intLit(1), fltLit(2.5))
	val, ok, errMsg := v.tryFold(n)
	if !ok || errMsg != "" {
		t.Fatalf("tryFold = %v, %v, %q; want a folded value", val, ok, errMsg)
	}
	if val.(float64) != 3.5 {
		t.Fatalf("tryFold result = %v; want 3.5", val)
	}
}

func TestTryFoldUnaryNegation(t *testing.T) {
	v := &visitor{}
	n := &ast.Node{Kind: ast.Unary, Op: token.MINUS, Right: intLit(5)}
	val, ok, errMsg := v.tryFold(n)
	if !ok || errMsg != "" {
		t.Fatalf("tryFold = %v, %v, %q; want a folded value", val, ok, errMsg)
	}
	if val.(int64) != -5 {
		t.Fatalf("tryFold result = %v; want -5", val)
	}
}

func TestTryFoldNonConstexprSymbolFails(t *testing.T) {
	v := &visitor{}
	n := &ast.Node{Kind: ast.Symbol, Name: "x"}
	_, ok, _ := v.tryFold(n)
	if ok {
		t.Fatal("expected tryFold to decline an unresolved symbol with no enclosing function")
	}
}
