package compiler

import "github.com/via-lang/via/lang/ast"

// compatible implements the type-compatibility rule of spec §4.3.4:
// T? accepts T or nil; int and float are mutually compatible; anything
// else is compared structurally (by primitive/generic name and arity).
func compatible(have, want *ast.Node) bool {
	if want == nil || have == nil {
		return true // an unresolved side is an internal-error case, handled by the caller
	}
	if want.Kind == ast.TypeAuto || have.Kind == ast.TypeAuto {
		return true
	}
	if want.Kind == ast.TypeOptional {
		if have.Kind == ast.LiteralNil {
			return true
		}
		if have.Kind == ast.TypeOptional {
			return compatible(have.Elem, want.Elem)
		}
		return compatible(have, want.Elem)
	}

	if isNumeric(have) && isNumeric(want) {
		return true
	}

	if have.Kind != want.Kind {
		return false
	}
	switch have.Kind {
	case ast.TypePrimitive:
		return have.Name == want.Name
	case ast.TypeGeneric:
		if have.Name != want.Name || len(have.TypeArgs) != len(want.TypeArgs) {
			return false
		}
		for i := range have.TypeArgs {
			if !compatible(have.TypeArgs[i], want.TypeArgs[i]) {
				return false
			}
		}
		return true
	case ast.TypeArray:
		return compatible(have.Elem, want.Elem)
	case ast.TypeFunction:
		if len(have.TypeArgs) != len(want.TypeArgs) {
			return false
		}
		for i := range have.TypeArgs {
			if !compatible(have.TypeArgs[i], want.TypeArgs[i]) {
				return false
			}
		}
		return compatible(have.Elem, want.Elem)
	default:
		return true
	}
}

func isNumeric(t *ast.Node) bool {
	return t.Kind == ast.TypePrimitive && (t.Name == "int" || t.Name == "float")
}

// inferType derives the static type of an expression node well enough to
// drive compatible() and auto-substitution (spec §4.3.4). It is
// intentionally shallow: via's source-level type system is informal, so
// anything it cannot pin down returns nil and the caller treats that as an
// internal-error condition rather than guessing.
func inferType(n *ast.Node, lookup func(name string) *ast.Node) *ast.Node {
	prim := func(name string) *ast.Node { return &ast.Node{Kind: ast.TypePrimitive, Name: name} }

	switch n.Kind {
	case ast.LiteralInt:
		return prim("int")
	case ast.LiteralFloat:
		return prim("float")
	case ast.LiteralBool:
		return prim("bool")
	case ast.LiteralString:
		return prim("string")
	case ast.LiteralNil:
		return &ast.Node{Kind: ast.TypeOptional, Elem: &ast.Node{Kind: ast.TypeAuto}}
	case ast.ArrayLit:
		return &ast.Node{Kind: ast.TypeArray, Elem: &ast.Node{Kind: ast.TypeAuto}}
	case ast.Symbol:
		if lookup != nil {
			if t := lookup(n.Name); t != nil {
				return t
			}
		}
		return nil
	case ast.Group:
		return inferType(n.Left, lookup)
	case ast.Unary:
		return inferType(n.Right, lookup)
	case ast.Binary:
		if n.Op.Precedence() == 1 {
			return prim("bool")
		}
		lt := inferType(n.Left, lookup)
		rt := inferType(n.Right, lookup)
		if lt != nil && lt.Kind == ast.TypePrimitive && lt.Name == "float" {
			return lt
		}
		if rt != nil && rt.Kind == ast.TypePrimitive && rt.Name == "float" {
			return rt
		}
		return lt
	case ast.Cast:
		return n.CondType
	default:
		return nil
	}
}
