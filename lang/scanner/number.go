package scanner

import (
	"strconv"

	"github.com/via-lang/via/lang/token"
)

// number scans an integer or float literal, including the 0x/0b radix
// prefixes (spec §3.1), and decodes it into the token's Int/Float field so
// the parser never re-parses the lexeme.
func (l *lexer) number(mkSpan func() token.Span) token.Value {
	start := l.off

	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		l.advance()
		for isHex(l.ch) {
			l.advance()
		}
		lit := string(l.src[start:l.off])
		n, err := strconv.ParseInt(lit[2:], 16, 64)
		if err != nil {
			return token.Value{Kind: token.ILLEGAL, Raw: lit, Span: mkSpan()}
		}
		return token.Value{Kind: token.INT, Raw: lit, Int: n, Span: mkSpan()}
	}

	if l.ch == '0' && (l.peek() == 'b' || l.peek() == 'B') {
		l.advance()
		l.advance()
		for l.ch == '0' || l.ch == '1' {
			l.advance()
		}
		lit := string(l.src[start:l.off])
		n, err := strconv.ParseInt(lit[2:], 2, 64)
		if err != nil {
			return token.Value{Kind: token.ILLEGAL, Raw: lit, Span: mkSpan()}
		}
		return token.Value{Kind: token.INT, Raw: lit, Int: n, Span: mkSpan()}
	}

	isFloat := false
	for isDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		isFloat = true
		l.advance()
		for isDigit(l.ch) {
			l.advance()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		for isDigit(l.ch) {
			l.advance()
		}
	}

	lit := string(l.src[start:l.off])
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return token.Value{Kind: token.ILLEGAL, Raw: lit, Span: mkSpan()}
		}
		return token.Value{Kind: token.FLOAT, Raw: lit, Float: f, Span: mkSpan()}
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return token.Value{Kind: token.ILLEGAL, Raw: lit, Span: mkSpan()}
	}
	return token.Value{Kind: token.INT, Raw: lit, Int: n, Span: mkSpan()}
}

func isHex(b byte) bool {
	return isDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}
