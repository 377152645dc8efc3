// Package ast defines the abstract syntax tree produced by the parser.
//
// Per spec §3.2, one tagged node type covers every syntactic form — the
// Kind field selects which of the node's fields are meaningful, the way the
// teacher repo's deep class hierarchy (ast.Expr/ast.Stmt/ast.*Expr) would
// have been expressed if it were a tagged union instead of an interface
// zoo (spec §9 Design Notes: "collapses into a tagged-union AST ... that
// pattern-match on the tag"). Every Node is allocated from a single arena
// owned by the parser's compilation unit and lives exactly as long as it
// does (§10.2).
package ast

import "github.com/via-lang/via/lang/token"

// Kind tags the syntactic form a Node represents.
type Kind uint8

//nolint:revive
const (
	// expressions
	LiteralNil Kind = iota
	LiteralInt
	LiteralFloat
	LiteralBool
	LiteralString
	Symbol
	Unary
	Binary
	Group
	Call
	Index
	Cast
	Step // post ++ / --
	ArrayLit
	Intrinsic // type/typeof/nameof/print/error/try/deep_eq

	// types
	TypeAuto
	TypePrimitive
	TypeGeneric
	TypeUnion
	TypeOptional
	TypeFunction
	TypeArray
	TypeDict
	TypeObject

	// statements
	Decl
	Scope
	FuncDecl
	Assign
	If
	Return
	While
	Break
	Continue
	Defer
	ExprStmt
)

var kindNames = [...]string{
	LiteralNil: "nil", LiteralInt: "int", LiteralFloat: "float", LiteralBool: "bool",
	LiteralString: "string", Symbol: "symbol", Unary: "unary", Binary: "binary",
	Group: "group", Call: "call", Index: "index", Cast: "cast", Step: "step",
	ArrayLit: "array", Intrinsic: "intrinsic",
	TypeAuto: "auto", TypePrimitive: "primitive-type", TypeGeneric: "generic-type",
	TypeUnion: "union-type", TypeOptional: "optional-type", TypeFunction: "function-type",
	TypeArray: "array-type", TypeDict: "dict-type", TypeObject: "object-type",
	Decl: "decl", Scope: "scope", FuncDecl: "func-decl", Assign: "assign",
	If: "if", Return: "return", While: "while", Break: "break", Continue: "continue",
	Defer: "defer", ExprStmt: "expr-stmt",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsExpr() bool { return k <= Intrinsic }
func (k Kind) IsType() bool { return k >= TypeAuto && k <= TypeObject }
func (k Kind) IsStmt() bool { return k >= Decl }

// Node is the single AST node type (spec §3.2). Only the fields relevant to
// Kind are populated; the rest are zero. Fields are documented by which
// kinds use them.
type Node struct {
	Kind Kind
	Span token.Span

	Op    token.Token // Unary/Binary: operator. Step: ++ or --. Assign: binary operator of a compound assignment (PLUS for "+="), ILLEGAL for plain "=".
	Name  string       // Symbol: name. Decl/FuncDecl: bound name. Index with dot-field form: field name. Intrinsic: which intrinsic (typeof, print, ...). TypePrimitive/TypeGeneric: type name.
	Value any          // Literal* : parsed value (int64, float64, bool, string, or nil for LiteralNil).

	Left  *Node // Binary: left operand. Assign: lvalue. Cast: operand. Step: operand. Group: inner expr. Index: prefix (with Right as key expr, or Name set for .field form).
	Right *Node // Binary: right operand. Assign: rvalue. Unary: operand. Index: key expression (nil for .field form).

	Callee *Node   // Call: callee expression.
	Args   []*Node // Call: arguments. ArrayLit: elements. Intrinsic: operands (deep_eq takes two, others take one or zero).

	CondType *Node // Decl: declared/annotated type (may be TypeAuto). FuncDecl: return type. Cast: target type.
	InitExpr *Node // Decl: initializer expression, may be nil.
	Params   []*Node // FuncDecl: parameter Decls (each Kind==Decl, CondType set, InitExpr nil).

	IsConst    bool // Decl: declared const.
	IsGlobal   bool // Decl: declared global (vs local).
	IsConstexpr bool // Decl: filled by the semantic pass — initializer is fold-reducible (§3.3 "constexpr binding").
	Attrs      []string // pending statement attributes, names without the "@", e.g. "compile_time" (spec §3.2).

	Cond  *Node   // If/While: condition.
	Then  *Node   // If/While: body (Kind==Scope). If: may be nil only if malformed.
	Elifs []*Node // If: chain of further If nodes for elif arms, each with its own Cond/Then/Elifs/Else.
	Else  *Node   // If: else body (Kind==Scope), nil if absent.

	Stmts []*Node // Scope: statements in the block.

	// Type node fields (Kind in TypeAuto..TypeObject)
	Elem     *Node   // TypeOptional/TypeArray: element type. TypeFunction: return type.
	TypeArgs []*Node // TypeGeneric: type arguments. TypeUnion: variants. TypeFunction: parameter types. TypeDict/TypeObject: field types (paired with Attrs as field names).
}

// Chunk is the root of a compilation unit: an ordered sequence of top-level
// statements (spec §3.2, "the root of a compilation unit is an ordered
// sequence of statement nodes").
type Chunk struct {
	Stmts []*Node
}
