package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/via-lang/via/lang/compiler"
)

func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, args []string) error {
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
		prog, diags := compiler.Compile(src)
		for _, r := range diags.Records() {
			fmt.Fprintln(stdio.Stderr, r)
		}
		if prog == nil {
			if firstErr == nil {
				firstErr = diags.Err()
			}
			continue
		}
		compiler.Disassemble(stdio.Stdout, prog)
	}
	return firstErr
}
