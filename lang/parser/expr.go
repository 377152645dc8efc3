package parser

import (
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

func (p *parser) parseExpr() *ast.Node {
	return p.parseBinary(0)
}

// parseBinary implements precedence-climbing over the table in spec §4.2:
// binary(p) := unary { op where prec(op) >= p : binary(prec(op)+1) }*
func (p *parser) parseBinary(minPrec int) *ast.Node {
	left := p.parseUnary()
	for p.tok().IsBinaryOp() && p.tok().Precedence() >= minPrec {
		op := p.tok()
		opSpan := p.cur().Span
		p.advance()
		right := p.parseBinary(op.Precedence() + 1)
		n := p.new(ast.Binary)
		n.Op = op
		n.Left = left
		n.Right = right
		n.Span = token.Merge(left.Span, token.Merge(opSpan, right.Span))
		left = n
	}
	return left
}

// parseUnary implements: unary := ("-" | "++" | "--" | "#") unary | postfix
func (p *parser) parseUnary() *ast.Node {
	if p.tok().IsUnaryOp() {
		op := p.tok()
		span := p.cur().Span
		p.advance()
		operand := p.parseUnary()
		n := p.new(ast.Unary)
		n.Op = op
		n.Right = operand
		n.Span = token.Merge(span, operand.Span)
		return n
	}
	return p.parsePostfix()
}

// parsePostfix implements:
// postfix := primary { "." IDENT | "[" expr "]" | "(" args? ")" | "++" | "--" | "as" type }*
func (p *parser) parsePostfix() *ast.Node {
	n := p.parsePrimary()
	for {
		switch {
		case p.at(token.DOT):
			span := p.cur().Span
			p.advance()
			name := p.expect(token.IDENT)
			idx := p.new(ast.Index)
			idx.Left = n
			idx.Name = name.Raw
			idx.Span = token.Merge(n.Span, token.Merge(span, name.Span))
			n = idx
		case p.at(token.LBRACK):
			p.advance()
			key := p.parseExpr()
			end := p.expect(token.RBRACK)
			idx := p.new(ast.Index)
			idx.Left = n
			idx.Right = key
			idx.Span = token.Merge(n.Span, end.Span)
			n = idx
		case p.at(token.LPAREN):
			p.advance()
			var args []*ast.Node
			for !p.at(token.RPAREN, token.EOF) {
				args = append(args, p.parseExpr())
				if p.at(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			end := p.expect(token.RPAREN)
			call := p.new(ast.Call)
			call.Callee = n
			call.Args = args
			call.Span = token.Merge(n.Span, end.Span)
			n = call
		case p.at(token.INC, token.DEC):
			op := p.tok()
			span := p.cur().Span
			p.advance()
			step := p.new(ast.Step)
			step.Op = op
			step.Left = n
			step.Span = token.Merge(n.Span, span)
			n = step
		case p.at(token.AS):
			p.advance()
			t := p.parseType()
			cast := p.new(ast.Cast)
			cast.Left = n
			cast.CondType = t
			cast.Span = token.Merge(n.Span, t.Span)
			n = cast
		default:
			return n
		}
	}
}

// parsePrimary implements:
// primary := literal | IDENT | "(" expr ")" | "[" list? "]"
//
//	| intrinsic_name expr | "deep_eq" "(" expr "," expr ")"
func (p *parser) parsePrimary() *ast.Node {
	v := p.cur()
	switch v.Kind {
	case token.NIL:
		p.advance()
		n := p.new(ast.LiteralNil)
		n.Span = v.Span
		return n
	case token.TRUE, token.FALSE:
		p.advance()
		n := p.new(ast.LiteralBool)
		n.Value = v.Kind == token.TRUE
		n.Span = v.Span
		return n
	case token.INT:
		p.advance()
		n := p.new(ast.LiteralInt)
		n.Value = v.Int
		n.Span = v.Span
		return n
	case token.FLOAT:
		p.advance()
		n := p.new(ast.LiteralFloat)
		n.Value = v.Float
		n.Span = v.Span
		return n
	case token.STRING:
		p.advance()
		n := p.new(ast.LiteralString)
		n.Value = v.String
		n.Span = v.Span
		return n
	case token.IDENT:
		p.advance()
		n := p.new(ast.Symbol)
		n.Name = v.Raw
		n.Span = v.Span
		return n
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		end := p.expect(token.RPAREN)
		n := p.new(ast.Group)
		n.Left = inner
		n.Span = token.Merge(v.Span, end.Span)
		return n
	case token.LBRACK:
		p.advance()
		var items []*ast.Node
		for !p.at(token.RBRACK, token.EOF) {
			items = append(items, p.parseExpr())
			if p.at(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		end := p.expect(token.RBRACK)
		n := p.new(ast.ArrayLit)
		n.Args = items
		n.Span = token.Merge(v.Span, end.Span)
		return n
	case token.DEEPEQ:
		p.advance()
		p.expect(token.LPAREN)
		a := p.parseExpr()
		p.expect(token.COMMA)
		b := p.parseExpr()
		end := p.expect(token.RPAREN)
		n := p.new(ast.Intrinsic)
		n.Name = "deep_eq"
		n.Args = []*ast.Node{a, b}
		n.Span = token.Merge(v.Span, end.Span)
		return n
	case token.TYPE, token.TYPEOF, token.NAMEOF, token.PRINT, token.ERROR, token.TRY:
		p.advance()
		n := p.new(ast.Intrinsic)
		n.Name = v.Kind.String()
		if !p.exprFollows() {
			n.Span = v.Span
			return n
		}
		arg := p.parseExpr()
		n.Args = []*ast.Node{arg}
		n.Span = token.Merge(v.Span, arg.Span)
		return n
	default:
		p.errorf("expected expression, found %s", v.Kind.GoString())
		panic(errPanicMode)
	}
}

// exprFollows reports whether the current token can begin an expression,
// used to decide whether a bare intrinsic_name (e.g. "try" with no operand
// is not legal, but "print" with no argument is handled the same way since
// the grammar always requires the trailing expr) has an operand.
func (p *parser) exprFollows() bool {
	switch p.tok() {
	case token.EOF, token.SEMI, token.RBRACE, token.RPAREN, token.RBRACK, token.COMMA:
		return false
	default:
		return true
	}
}
