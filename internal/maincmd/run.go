package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/via-lang/via"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := via.Run(ctx, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
