package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/via-lang/via/lang/scanner"
	"github.com/via-lang/via/lang/token"
)

func kinds(toks []token.Value) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexSimpleExpr(t *testing.T) {
	toks := scanner.Lex([]byte("print 1 + 2 * 3"))
	require.Len(t, toks, 7)
	assert.Equal(t, []token.Token{
		token.PRINT, token.INT, token.PLUS, token.INT, token.STAR, token.INT, token.EOF,
	}, kinds(toks))
	assert.Equal(t, int64(1), toks[1].Int)
	assert.Equal(t, int64(3), toks[5].Int)
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks := scanner.Lex([]byte("local const x: auto = nil"))
	assert.Equal(t, []token.Token{
		token.LOCAL, token.CONST, token.IDENT, token.COLON, token.AUTO, token.ASSIGN, token.NIL, token.EOF,
	}, kinds(toks))
}

func TestLexBangSuffixedIdent(t *testing.T) {
	toks := scanner.Lex([]byte("mutate!"))
	require.Len(t, toks, 2)
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, "mutate!", toks[0].Raw)
}

func TestLexLineComment(t *testing.T) {
	toks := scanner.Lex([]byte("1 ## trailing comment\n+ 2"))
	assert.Equal(t, []token.Token{token.INT, token.PLUS, token.INT, token.EOF}, kinds(toks))
}

func TestLexBlockComment(t *testing.T) {
	toks := scanner.Lex([]byte("1 #[ a\nblock\ncomment ]# + 2"))
	assert.Equal(t, []token.Token{token.INT, token.PLUS, token.INT, token.EOF}, kinds(toks))
	assert.Equal(t, 3, toks[1].Span.Line)
}

func TestLexHexAndBinaryInt(t *testing.T) {
	toks := scanner.Lex([]byte("0xFF 0b101"))
	require.Len(t, toks, 3)
	assert.Equal(t, int64(255), toks[0].Int)
	assert.Equal(t, int64(5), toks[1].Int)
}

func TestLexFloat(t *testing.T) {
	toks := scanner.Lex([]byte("3.14 1e3 .5"))
	require.Len(t, toks, 4)
	for _, tok := range toks[:3] {
		assert.Equal(t, token.FLOAT, tok.Kind)
	}
	assert.InDelta(t, 3.14, toks[0].Float, 1e-9)
	assert.InDelta(t, 1000.0, toks[1].Float, 1e-9)
	assert.InDelta(t, 0.5, toks[2].Float, 1e-9)
}

func TestLexStringEscapes(t *testing.T) {
	toks := scanner.Lex([]byte(`"line\nbreak\t\"q\""`))
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "line\nbreak\t\"q\"", toks[0].String)
}

func TestLexUnterminatedStringIsIllegal(t *testing.T) {
	toks := scanner.Lex([]byte(`"no closing quote`))
	require.Len(t, toks, 2)
	assert.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestLexCompoundPunctuation(t *testing.T) {
	toks := scanner.Lex([]byte("== != <= >= ++ -- -> .. ="))
	assert.Equal(t, []token.Token{
		token.EQ, token.NEQ, token.LE, token.GE, token.INC, token.DEC,
		token.ARROW, token.DOTDOT, token.ASSIGN, token.EOF,
	}, kinds(toks))
}

// TestLexerTotality checks the lexer never returns an error — any byte
// sequence, however garbled, yields a token stream ending in EOF (spec
// §4.1: "the lexer is total").
func TestLexerTotality(t *testing.T) {
	toks := scanner.Lex([]byte("~~~ $$ ` \x01\x02"))
	require.NotEmpty(t, toks)
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
	for _, tok := range toks[:len(toks)-1] {
		assert.Equal(t, token.ILLEGAL, tok.Kind)
	}
}

func TestLexSpansTrackLineAndColumn(t *testing.T) {
	toks := scanner.Lex([]byte("a\nb"))
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Span.Line)
	assert.Equal(t, 2, toks[1].Span.Line)
}
