package compiler_test

import (
	"testing"

	"github.com/via-lang/via/lang/compiler"
)

func TestCompileFoldsConstantArithmetic(t *testing.T) {
	prog, diags := compiler.Compile([]byte(`local x = 1 + 2 * 3`))
	if diags.HasErrors() {
		t.Fatalf("unexpected diags: %v", diags.Records())
	}
	for _, ins := range prog.Instructions {
		if ins.Op == compiler.ADD || ins.Op == compiler.MUL {
			t.Fatalf("expected constant folding, found %s in stream", ins.Op)
		}
	}
	foundLoadI := false
	for _, ins := range prog.Instructions {
		if ins.Op == compiler.LOADI {
			foundLoadI = true
		}
	}
	if !foundLoadI {
		t.Fatal("expected a folded LOADI instruction for the constant result")
	}
}

func TestCompileDivisionByZeroFoldError(t *testing.T) {
	_, diags := compiler.Compile([]byte(`local x = 1 / 0`))
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for constant division by zero")
	}
}

func TestCompileSyntaxError(t *testing.T) {
	prog, diags := compiler.Compile([]byte(`local x = `))
	if prog != nil {
		t.Fatal("expected nil program on syntax error")
	}
	if !diags.HasErrors() {
		t.Fatal("expected diagnostics for malformed source")
	}
}

func TestCompilePrintEmitsCall(t *testing.T) {
	prog, diags := compiler.Compile([]byte(`print "hi"`))
	if diags.HasErrors() {
		t.Fatalf("unexpected diags: %v", diags.Records())
	}
	found := false
	for _, ins := range prog.Instructions {
		if ins.Op == compiler.CALL && ins.A == compiler.NoOperand {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a CALL instruction with the print sentinel callee")
	}
}

func TestCompileErrorIntrinsicUsesDistinctSentinel(t *testing.T) {
	prog, diags := compiler.Compile([]byte(`
fn boom() -> int {
	error "bad"
	return 0
}
`))
	if diags.HasErrors() {
		t.Fatalf("unexpected diags: %v", diags.Records())
	}
	found := false
	for _, ins := range prog.Instructions {
		if ins.Op == compiler.CALL && ins.A == compiler.IntrinsicError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a CALL instruction with the error sentinel callee")
	}
}
