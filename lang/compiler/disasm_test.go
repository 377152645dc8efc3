package compiler_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/via-lang/via/internal/filetest"
	"github.com/via-lang/via/lang/compiler"
)

var testUpdateDisasmTests = flag.Bool("test.update-disasm-tests", false, "If set, replace expected disassembly test results with actual results.")

func TestDisassemble(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".via") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			prog, diags := compiler.Compile(src)
			if diags.HasErrors() {
				t.Fatalf("compile errors: %v", diags.Records())
			}

			var buf bytes.Buffer
			compiler.Disassemble(&buf, prog)
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateDisasmTests)
		})
	}
}
