package ast_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

func TestCountReachableNodes(t *testing.T) {
	var pool ast.Pool
	leaf1 := pool.NewNode(ast.LiteralInt)
	leaf2 := pool.NewNode(ast.LiteralInt)
	bin := pool.NewNode(ast.Binary)
	bin.Left, bin.Right = leaf1, leaf2

	assert.Equal(t, 3, ast.Count(bin))
	assert.Equal(t, 3, pool.Len())
}

func TestWalkVisitsEveryChildField(t *testing.T) {
	var pool ast.Pool
	cond := pool.NewNode(ast.LiteralBool)
	then := pool.NewNode(ast.Scope)
	stmt := pool.NewNode(ast.ExprStmt)
	then.Stmts = []*ast.Node{stmt}
	elif := pool.NewNode(ast.If)
	elseNode := pool.NewNode(ast.Scope)

	n := pool.NewNode(ast.If)
	n.Cond = cond
	n.Then = then
	n.Elifs = []*ast.Node{elif}
	n.Else = elseNode

	var visited []ast.Kind
	ast.Inspect(n, func(n *ast.Node) bool {
		visited = append(visited, n.Kind)
		return true
	})

	require.Len(t, visited, 6)
	assert.Equal(t, ast.If, visited[0])
}

func TestInspectStopsDescending(t *testing.T) {
	var pool ast.Pool
	inner := pool.NewNode(ast.LiteralInt)
	group := pool.NewNode(ast.Group)
	group.Left = inner

	var visited int
	ast.Inspect(group, func(n *ast.Node) bool {
		visited++
		return n.Kind != ast.Group
	})
	assert.Equal(t, 1, visited)
}

func TestPrintProducesIndentedTree(t *testing.T) {
	var pool ast.Pool
	left := pool.NewNode(ast.LiteralInt)
	left.Value = int64(1)
	right := pool.NewNode(ast.LiteralInt)
	right.Value = int64(2)
	bin := pool.NewNode(ast.Binary)
	bin.Op = token.PLUS
	bin.Left, bin.Right = left, right

	var buf bytes.Buffer
	ast.Print(&buf, bin)
	out := buf.String()
	assert.Contains(t, out, "binary '+'")
	assert.Contains(t, out, ". int")
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, ast.Binary.IsExpr())
	assert.False(t, ast.Decl.IsExpr())
	assert.True(t, ast.TypeOptional.IsType())
	assert.True(t, ast.While.IsStmt())
}
