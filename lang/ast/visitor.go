package ast

// Visitor is implemented by callers that want to traverse a Node tree.
// Visit is called once per node on entry; if it returns a non-nil Visitor,
// Walk recurses into the node's children with that (possibly different)
// visitor, mirroring the teacher repo's ast.Visitor contract
// (lang/ast/visitor.go) adapted to the single tagged Node type.
type Visitor interface {
	Visit(n *Node) Visitor
}

// Walk traverses n's children in source order, calling v.Visit on each.
// The AST is a tree, not a DAG (spec §3.2 invariant, tested by §8.2): Walk
// never visits the same *Node twice because no node is reachable from more
// than one parent field.
func Walk(v Visitor, n *Node) {
	if n == nil {
		return
	}
	v = v.Visit(n)
	if v == nil {
		return
	}

	walkChild(v, n.Left)
	walkChild(v, n.Right)
	walkChild(v, n.Callee)
	for _, a := range n.Args {
		walkChild(v, a)
	}
	walkChild(v, n.CondType)
	walkChild(v, n.InitExpr)
	for _, p := range n.Params {
		walkChild(v, p)
	}
	walkChild(v, n.Cond)
	walkChild(v, n.Then)
	for _, e := range n.Elifs {
		walkChild(v, e)
	}
	walkChild(v, n.Else)
	for _, s := range n.Stmts {
		walkChild(v, s)
	}
	walkChild(v, n.Elem)
	for _, t := range n.TypeArgs {
		walkChild(v, t)
	}
}

func walkChild(v Visitor, n *Node) {
	if n != nil {
		Walk(v, n)
	}
}

// inspector adapts a plain func(*Node) bool to the Visitor interface: return
// false from fn to stop descending into that node's children.
type inspector func(n *Node) bool

func (f inspector) Visit(n *Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect traverses n in depth-first order, calling fn for each node. If fn
// returns false, Inspect does not recurse into that node's children.
func Inspect(n *Node, fn func(n *Node) bool) {
	Walk(inspector(fn), n)
}

// Count returns the number of nodes reachable from n, including n itself.
// Used by tests to check arena-acyclicity (spec §8.2): a tree of k arena
// allocations must report exactly k reachable nodes from its root.
func Count(n *Node) int {
	c := 0
	Inspect(n, func(*Node) bool { c++; return true })
	return c
}
