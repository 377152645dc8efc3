package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/parser"
)

func TestParseArithmeticPrecedence(t *testing.T) {
	ch, diags := parser.Parse([]byte("print 1 + 2 * 3"))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 1)

	stmt := ch.Stmts[0]
	require.Equal(t, ast.ExprStmt, stmt.Kind)
	intr := stmt.Left
	require.Equal(t, ast.Intrinsic, intr.Kind)
	require.Equal(t, "print", intr.Name)

	add := intr.Args[0]
	require.Equal(t, ast.Binary, add.Kind)
	assert.Equal(t, int64(1), add.Left.Value)
	mul := add.Right
	require.Equal(t, ast.Binary, mul.Kind)
	assert.Equal(t, int64(2), mul.Left.Value)
	assert.Equal(t, int64(3), mul.Right.Value)
}

func TestParseDeclAndAssign(t *testing.T) {
	ch, diags := parser.Parse([]byte(`local const x: int = 1
x = x + 1`))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 2)

	decl := ch.Stmts[0]
	assert.Equal(t, ast.Decl, decl.Kind)
	assert.True(t, decl.IsConst)
	assert.False(t, decl.IsGlobal)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, ast.TypePrimitive, decl.CondType.Kind)

	assign := ch.Stmts[1]
	assert.Equal(t, ast.Assign, assign.Kind)
}

func TestParseWhileLoop(t *testing.T) {
	ch, diags := parser.Parse([]byte(`local i: int = 0
while i < 10 {
	i = i + 1
}`))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 2)
	assert.Equal(t, ast.While, ch.Stmts[1].Kind)
}

func TestParseIfElifElse(t *testing.T) {
	src := `if a == 1 {
	print a
} elif a == 2 {
	print a
} else {
	print a
}`
	ch, diags := parser.Parse([]byte(src))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 1)
	ifNode := ch.Stmts[0]
	assert.Equal(t, ast.If, ifNode.Kind)
	assert.Len(t, ifNode.Elifs, 1)
	assert.NotNil(t, ifNode.Else)
}

func TestParseFuncDecl(t *testing.T) {
	ch, diags := parser.Parse([]byte(`fn add(a: int, b: int) -> int {
	return a + b
}`))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 1)
	fn := ch.Stmts[0]
	assert.Equal(t, ast.FuncDecl, fn.Kind)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Params, 2)
	assert.Equal(t, ast.TypePrimitive, fn.CondType.Kind)
}

func TestParseArrayIndexAndCall(t *testing.T) {
	ch, diags := parser.Parse([]byte(`local a: auto = [1, 2, 3]
print a[0]
len(a)`))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 3)
	idx := ch.Stmts[1].Left.Args[0]
	assert.Equal(t, ast.Index, idx.Kind)
}

func TestParseCompoundAssign(t *testing.T) {
	ch, diags := parser.Parse([]byte(`x += 1`))
	require.False(t, diags.HasErrors(), diags.Records())
	assign := ch.Stmts[0]
	require.Equal(t, ast.Assign, assign.Kind)
	assert.Equal(t, "'+'", assign.Op.GoString())
}

func TestParseAttributes(t *testing.T) {
	ch, diags := parser.Parse([]byte("@compile_time\nconst x: int = 1"))
	require.False(t, diags.HasErrors(), diags.Records())
	require.Len(t, ch.Stmts, 1)
	assert.Equal(t, []string{"compile_time"}, ch.Stmts[0].Attrs)
}

func TestParseSyncsAfterError(t *testing.T) {
	ch, diags := parser.Parse([]byte("local x: int = ;\nlocal y: int = 2"))
	assert.True(t, diags.HasErrors())
	require.NotEmpty(t, ch.Stmts)
}
