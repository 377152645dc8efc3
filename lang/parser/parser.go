// Package parser turns a token stream into an AST (spec §4.2). It uses
// Pratt/precedence-climbing for expressions and recursive descent for
// statements, in the style of the teacher repo's lang/parser but against
// via's single tagged ast.Node instead of a per-kind AST type hierarchy.
package parser

import (
	"fmt"
	"strings"

	"github.com/via-lang/via/internal/diag"
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/scanner"
	"github.com/via-lang/via/lang/token"
)

// Parse lexes and parses src, returning the resulting chunk (always
// non-nil, possibly partial) and any diagnostics collected along the way.
func Parse(src []byte) (*ast.Chunk, *diag.Bag) {
	toks := scanner.Lex(src)
	p := &parser{toks: toks}
	ch := p.parseChunk()
	p.diags.Sort()
	return ch, &p.diags
}

// errPanicMode is the sentinel a fatal parse error panics with; it is
// recovered at the statement level, which then skips tokens until a
// plausible statement boundary (spec §4.2, "on a fatal error it bails out
// with a single top-level diagnostic").
var errPanicMode = fmt.Errorf("parser: panic mode")

type parser struct {
	toks []token.Value
	pos  int
	pool ast.Pool
	diags diag.Bag

	pendingAttrs []string
}

func (p *parser) cur() token.Value  { return p.toks[p.pos] }
func (p *parser) tok() token.Token  { return p.toks[p.pos].Kind }
func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *parser) at(kinds ...token.Token) bool {
	for _, k := range kinds {
		if p.tok() == k {
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches one of kinds, otherwise
// records a diagnostic and panics with errPanicMode.
func (p *parser) expect(kinds ...token.Token) token.Value {
	if p.at(kinds...) {
		v := p.cur()
		p.advance()
		return v
	}
	p.errorExpected(kinds)
	panic(errPanicMode)
}

func (p *parser) errorExpected(kinds []token.Token) {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.GoString()
	}
	msg := "expected " + strings.Join(names, " or ") + ", found " + p.tok().GoString()
	p.diags.Errorf(p.cur().Span, "%s", msg)
}

func (p *parser) errorf(format string, args ...any) {
	p.diags.Errorf(p.cur().Span, format, args...)
}

func (p *parser) new(kind ast.Kind) *ast.Node {
	return p.pool.NewNode(kind)
}

// parseChunk parses the whole token stream as a sequence of top-level
// statements (spec §3.2, "the root of a compilation unit is an ordered
// sequence of statement nodes").
func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{}
	for !p.at(token.EOF) {
		ch.Stmts = append(ch.Stmts, p.parseStmtRecovering())
	}
	return ch
}

// parseStmtRecovering parses one statement, recovering from a panic-mode
// error by synchronizing to the next statement-starting token.
func (p *parser) parseStmtRecovering() (n *ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			n = p.synchronize()
		}
	}()
	return p.parseStmt()
}

// synchronize skips tokens until a likely statement boundary, returning a
// placeholder expression-statement node spanning the skipped tokens.
func (p *parser) synchronize() *ast.Node {
	begin := p.cur().Span
	for !p.at(token.EOF, token.SEMI, token.RBRACE, token.LOCAL, token.GLOBAL,
		token.CONST, token.FN, token.IF, token.WHILE, token.RETURN, token.BREAK,
		token.CONTINUE, token.DEFER) {
		p.advance()
	}
	if p.at(token.SEMI) {
		p.advance()
	}
	n := p.new(ast.ExprStmt)
	n.Span = token.Merge(begin, p.cur().Span)
	return n
}
