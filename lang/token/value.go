package token

// Value combines a token's kind, its raw lexeme, its source span and — for
// literal kinds — the already-decoded value, per spec §3.1 ("literal nodes
// carry the parsed value, not the lexeme, after parsing completes"; the
// scanner decodes numbers eagerly so the parser never re-parses a lexeme).
type Value struct {
	Kind Token
	Raw  string // borrowed slice of the source text
	Span Span

	Int    int64
	Float  float64
	String string // decoded string literal (escapes resolved)
}
