package parser

import (
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

// parseType implements:
//
//	type := prim ("?")?
//	prim := "auto" | IDENT | IDENT "<" type {"," type} ">"
//	      | "(" param_list? ")" "->" type
//	      | "[" type "]"
func (p *parser) parseType() *ast.Node {
	t := p.parsePrimType()
	if p.at(token.QUESTION) {
		end := p.cur().Span
		p.advance()
		opt := p.new(ast.TypeOptional)
		opt.Elem = t
		opt.Span = token.Merge(t.Span, end)
		return opt
	}
	return t
}

func (p *parser) parsePrimType() *ast.Node {
	v := p.cur()
	switch {
	case p.at(token.AUTO):
		p.advance()
		n := p.new(ast.TypeAuto)
		n.Span = v.Span
		return n

	case p.at(token.LBRACK):
		p.advance()
		elem := p.parseType()
		end := p.expect(token.RBRACK)
		n := p.new(ast.TypeArray)
		n.Elem = elem
		n.Span = token.Merge(v.Span, end.Span)
		return n

	case p.at(token.LPAREN):
		p.advance()
		var params []*ast.Node
		for !p.at(token.RPAREN, token.EOF) {
			params = append(params, p.parseType())
			if p.at(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		p.expect(token.ARROW)
		ret := p.parseType()
		n := p.new(ast.TypeFunction)
		n.TypeArgs = params
		n.Elem = ret
		n.Span = token.Merge(v.Span, ret.Span)
		return n

	case p.at(token.IDENT):
		p.advance()
		if p.at(token.LT) {
			p.advance()
			var args []*ast.Node
			args = append(args, p.parseType())
			for p.at(token.COMMA) {
				p.advance()
				args = append(args, p.parseType())
			}
			end := p.expect(token.GT)
			n := p.new(ast.TypeGeneric)
			n.Name = v.Raw
			n.TypeArgs = args
			n.Span = token.Merge(v.Span, end.Span)
			return n
		}
		n := p.new(ast.TypePrimitive)
		n.Name = v.Raw
		n.Span = v.Span
		return n

	default:
		p.errorf("expected a type, found %s", v.Kind.GoString())
		panic(errPanicMode)
	}
}
