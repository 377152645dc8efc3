package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/via-lang/via/lang/scanner"
)

func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, tok := range scanner.Lex(src) {
			fmt.Fprintf(stdio.Stdout, "%s: %s", tok.Span, tok.Kind)
			if tok.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %s", tok.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	return firstErr
}
