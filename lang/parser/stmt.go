package parser

import (
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

// parseStmt implements:
//
//	stmt := decl | scope | if | return | while | defer
//	      | "break" | "continue" | assign_or_expr
//
// Attribute tokens ("@" IDENT) seen before a statement are collected and
// attached to it (spec §4.2).
func (p *parser) parseStmt() *ast.Node {
	for p.at(token.AT) {
		p.advance()
		name := p.expect(token.IDENT)
		p.pendingAttrs = append(p.pendingAttrs, name.Raw)
	}

	var n *ast.Node
	switch {
	case p.at(token.LOCAL, token.GLOBAL, token.CONST):
		n = p.parseDecl()
	case p.at(token.FN):
		n = p.parseFuncDecl()
	case p.at(token.LBRACE, token.COLON):
		n = p.parseScope()
	case p.at(token.IF):
		n = p.parseIf()
	case p.at(token.RETURN):
		n = p.parseReturn()
	case p.at(token.WHILE):
		n = p.parseWhile()
	case p.at(token.DEFER):
		n = p.parseDefer()
	case p.at(token.BREAK):
		span := p.cur().Span
		p.advance()
		n = p.new(ast.Break)
		n.Span = span
	case p.at(token.CONTINUE):
		span := p.cur().Span
		p.advance()
		n = p.new(ast.Continue)
		n.Span = span
	default:
		n = p.parseAssignOrExpr()
	}

	if len(p.pendingAttrs) > 0 {
		n.Attrs = p.pendingAttrs
		p.pendingAttrs = nil
	}
	p.consumeOptionalSemi()
	return n
}

func (p *parser) consumeOptionalSemi() {
	if p.at(token.SEMI) {
		p.advance()
	}
}

// parseScope implements: scope := "{" stmt* "}" | ":" stmt
func (p *parser) parseScope() *ast.Node {
	begin := p.cur().Span
	n := p.new(ast.Scope)
	if p.at(token.COLON) {
		p.advance()
		n.Stmts = []*ast.Node{p.parseStmt()}
		n.Span = token.Merge(begin, n.Stmts[0].Span)
		return n
	}
	p.expect(token.LBRACE)
	for !p.at(token.RBRACE, token.EOF) {
		n.Stmts = append(n.Stmts, p.parseStmtRecovering())
	}
	end := p.expect(token.RBRACE)
	n.Span = token.Merge(begin, end.Span)
	return n
}

// parseDecl implements:
// decl := ("local"|"global") "const"? IDENT (":" type)? ("=" expr)?
//
//	| "const" IDENT (":" type)? "=" expr
func (p *parser) parseDecl() *ast.Node {
	begin := p.cur().Span
	n := p.new(ast.Decl)

	isGlobal := false
	if p.at(token.LOCAL, token.GLOBAL) {
		isGlobal = p.at(token.GLOBAL)
		p.advance()
	}
	isConst := false
	if p.at(token.CONST) {
		isConst = true
		p.advance()
	}

	name := p.expect(token.IDENT)
	n.Name = name.Raw
	n.IsGlobal = isGlobal
	n.IsConst = isConst

	if p.at(token.COLON) {
		p.advance()
		n.CondType = p.parseType()
	} else {
		auto := p.new(ast.TypeAuto)
		auto.Span = name.Span
		n.CondType = auto
	}

	end := n.CondType.Span
	if p.at(token.ASSIGN) {
		p.advance()
		n.InitExpr = p.parseExpr()
		end = n.InitExpr.Span
	} else if isConst {
		p.errorf("const declaration %q requires an initializer", n.Name)
	}

	n.Span = token.Merge(begin, end)
	return n
}

// parseFuncDecl implements: "fn" IDENT "(" params ")" ("->" type)? scope
func (p *parser) parseFuncDecl() *ast.Node {
	begin := p.cur().Span
	p.advance()
	n := p.new(ast.FuncDecl)
	name := p.expect(token.IDENT)
	n.Name = name.Raw

	p.expect(token.LPAREN)
	for !p.at(token.RPAREN, token.EOF) {
		pname := p.expect(token.IDENT)
		p.expect(token.COLON)
		ptype := p.parseType()
		param := p.new(ast.Decl)
		param.Name = pname.Raw
		param.CondType = ptype
		param.Span = token.Merge(pname.Span, ptype.Span)
		n.Params = append(n.Params, param)
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)

	if p.at(token.ARROW) {
		p.advance()
		n.CondType = p.parseType()
	} else {
		auto := p.new(ast.TypeAuto)
		auto.Span = p.cur().Span
		n.CondType = auto
	}

	n.Then = p.parseScope()
	n.Span = token.Merge(begin, n.Then.Span)
	return n
}

// parseIf implements: "if" expr scope ("elif" expr scope)* ("else" scope)?
func (p *parser) parseIf() *ast.Node {
	begin := p.cur().Span
	p.advance()
	n := p.new(ast.If)
	n.Cond = p.parseExpr()
	n.Then = p.parseScope()
	end := n.Then.Span

	for p.at(token.ELIF) {
		elifSpan := p.cur().Span
		p.advance()
		elif := p.new(ast.If)
		elif.Cond = p.parseExpr()
		elif.Then = p.parseScope()
		elif.Span = token.Merge(elifSpan, elif.Then.Span)
		n.Elifs = append(n.Elifs, elif)
		end = elif.Span
	}

	if p.at(token.ELSE) {
		p.advance()
		n.Else = p.parseScope()
		end = n.Else.Span
	}

	n.Span = token.Merge(begin, end)
	return n
}

func (p *parser) parseReturn() *ast.Node {
	begin := p.cur().Span
	p.advance()
	n := p.new(ast.Return)
	n.Span = begin
	if p.exprFollows() {
		n.Left = p.parseExpr()
		n.Span = token.Merge(begin, n.Left.Span)
	}
	return n
}

// parseWhile implements: "while" expr scope
func (p *parser) parseWhile() *ast.Node {
	begin := p.cur().Span
	p.advance()
	n := p.new(ast.While)
	n.Cond = p.parseExpr()
	n.Then = p.parseScope()
	n.Span = token.Merge(begin, n.Then.Span)
	return n
}

func (p *parser) parseDefer() *ast.Node {
	begin := p.cur().Span
	p.advance()
	n := p.new(ast.Defer)
	n.Left = p.parseStmt()
	n.Span = token.Merge(begin, n.Left.Span)
	return n
}

// parseAssignOrExpr implements: assign_or_expr := expr (("=" | op "=") expr)?
func (p *parser) parseAssignOrExpr() *ast.Node {
	left := p.parseExpr()
	if p.at(token.ASSIGN) || p.tok().IsCompoundAssign() {
		op := p.tok()
		p.advance()
		rhs := p.parseExpr()
		n := p.new(ast.Assign)
		n.Left = left
		n.Right = rhs
		if op != token.ASSIGN {
			n.Op = op.BinaryOp()
		} else {
			n.Op = token.ILLEGAL
		}
		n.Span = token.Merge(left.Span, rhs.Span)
		return n
	}
	n := p.new(ast.ExprStmt)
	n.Left = left
	n.Span = left.Span
	return n
}
