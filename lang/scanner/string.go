package scanner

import (
	"strings"

	"github.com/via-lang/via/lang/token"
)

// shortString scans a double-quoted string literal with the escapes
// \n \t \r \\ \" (spec §3.1). An unterminated literal (EOF or a raw
// newline before the closing quote) becomes an ILLEGAL token, same as any
// other lexical failure — the lexer itself never errors out (spec §4.1).
func (l *lexer) shortString(mkSpan func() token.Span) token.Value {
	start := l.off
	l.advance() // opening quote

	var b strings.Builder
	for {
		switch l.ch {
		case '"':
			l.advance()
			return token.Value{Kind: token.STRING, Raw: string(l.src[start:l.off]), String: b.String(), Span: mkSpan()}
		case 0, '\n':
			return token.Value{Kind: token.ILLEGAL, Raw: string(l.src[start:l.off]), Span: mkSpan()}
		case '\\':
			l.advance()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 0, '\n':
				return token.Value{Kind: token.ILLEGAL, Raw: string(l.src[start:l.off]), Span: mkSpan()}
			default:
				b.WriteByte(l.ch)
			}
			l.advance()
		default:
			b.WriteByte(l.ch)
			l.advance()
		}
	}
}
