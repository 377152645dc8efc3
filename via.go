// Package via ties the lexer, parser, compiler, and machine together into
// the two entry points the spec names directly: compile(path) and
// run(context) (spec §6.1).
package via

import (
	"context"
	"os"

	"github.com/via-lang/via/internal/diag"
	"github.com/via-lang/via/lang/compiler"
	"github.com/via-lang/via/lang/machine"
	"github.com/via-lang/via/lang/token"
)

// Compile reads path and compiles it to a Program, resolving the path to
// source bytes before handing off to compiler.Compile (spec §6.1,
// "path resolution is the host's concern").
func Compile(path string) (*compiler.Program, *diag.Bag) {
	src, err := os.ReadFile(path)
	if err != nil {
		bag := &diag.Bag{}
		bag.Errorf(token.Span{}, "%s: %s", path, err)
		return nil, bag
	}
	return compiler.Compile(src)
}

// Run compiles path and executes it on a fresh machine.Thread, writing to
// the process's standard streams (spec §6.1 run(context)).
func Run(ctx context.Context, path string) error {
	prog, diags := Compile(path)
	if prog == nil {
		return diags.Err()
	}

	th := &machine.Thread{Name: path}
	_, err := th.Run(ctx, prog)
	return err
}
