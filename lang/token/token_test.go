package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/via-lang/via/lang/token"
)

func TestLookupPromotesKeywords(t *testing.T) {
	assert.Equal(t, token.IF, token.Lookup("if"))
	assert.Equal(t, token.TRUE, token.Lookup("true"))
	assert.Equal(t, token.FALSE, token.Lookup("false"))
	assert.Equal(t, token.NIL, token.Lookup("nil"))
	assert.Equal(t, token.IDENT, token.Lookup("not_a_keyword"))
}

func TestPrecedenceTable(t *testing.T) {
	assert.Equal(t, 4, token.CARET.Precedence())
	assert.Equal(t, 3, token.STAR.Precedence())
	assert.Equal(t, 2, token.PLUS.Precedence())
	assert.Equal(t, 1, token.AND.Precedence())
	assert.Equal(t, -1, token.LPAREN.Precedence())
}

func TestIsUnaryOp(t *testing.T) {
	for _, tok := range []token.Token{token.MINUS, token.INC, token.DEC, token.POUND, token.NOT} {
		assert.True(t, tok.IsUnaryOp(), tok.String())
	}
	assert.False(t, token.PLUS.IsUnaryOp())
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	assert.Equal(t, "';'", token.SEMI.GoString())
	assert.Equal(t, "'if'", token.IF.GoString())
	assert.Equal(t, "identifier", token.IDENT.GoString())
}

func TestCompoundAssignDesugars(t *testing.T) {
	assert.True(t, token.PLUSEQ.IsCompoundAssign())
	assert.Equal(t, token.PLUS, token.PLUSEQ.BinaryOp())
	assert.False(t, token.ASSIGN.IsCompoundAssign())
}

func TestSpanMerge(t *testing.T) {
	a := token.Span{Line: 1, Col: 1, Begin: 0, End: 3}
	b := token.Span{Line: 1, Col: 5, Begin: 10, End: 15}
	m := token.Merge(a, b)
	assert.Equal(t, 0, m.Begin)
	assert.Equal(t, 15, m.End)
}
