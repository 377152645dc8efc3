package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented tree representation of n to w, one line per
// node, indented one step per level of nesting, in the style of the teacher
// repo's ast.Node.Format (lang/ast/ast.go) but driven by Walk since via's AST
// is one tagged Node type rather than a Formatter per concrete type.
func Print(w io.Writer, n *Node) {
	Walk(printer{w: w}, n)
}

// printer is the Visitor behind Print: it writes one node and hands its
// children a printer one level deeper.
type printer struct {
	w     io.Writer
	depth int
}

func (p printer) Visit(n *Node) Visitor {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(". ", p.depth), describe(n))
	return printer{w: p.w, depth: p.depth + 1}
}

// describe renders a single node's label, analogous to the "label" argument
// the teacher's ast.format helper prints for each concrete node type.
func describe(n *Node) string {
	switch n.Kind {
	case LiteralNil:
		return "nil"
	case LiteralInt, LiteralFloat, LiteralBool, LiteralString:
		return fmt.Sprintf("%s %v", n.Kind, n.Value)
	case Symbol:
		return "symbol " + n.Name
	case Unary:
		return "unary " + n.Op.GoString()
	case Binary:
		return "binary " + n.Op.GoString()
	case Group:
		return "(expr)"
	case Call:
		return fmt.Sprintf("call {args=%d}", len(n.Args))
	case Index:
		if n.Right == nil {
			return "expr." + n.Name
		}
		return "expr[index]"
	case Cast:
		return "cast"
	case Step:
		return "step " + n.Op.GoString()
	case ArrayLit:
		return fmt.Sprintf("array {items=%d}", len(n.Args))
	case Intrinsic:
		return "intrinsic " + n.Name
	case Decl:
		lbl := "decl " + n.Name
		if n.IsConst {
			lbl += " const"
		}
		if n.IsGlobal {
			lbl += " global"
		}
		return lbl
	case Scope:
		return fmt.Sprintf("scope {stmts=%d}", len(n.Stmts))
	case FuncDecl:
		return fmt.Sprintf("fn %s {params=%d}", n.Name, len(n.Params))
	case Assign:
		return "assign " + n.Op.GoString()
	case If:
		return fmt.Sprintf("if {elifs=%d, else=%t}", len(n.Elifs), n.Else != nil)
	case Return:
		return "return"
	case While:
		return "while"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Defer:
		return "defer"
	case ExprStmt:
		return "expr-stmt"
	default:
		return n.Kind.String()
	}
}
