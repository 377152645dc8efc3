// Package compiler implements semantic analysis and code generation: a
// single tree-walking visitor pass over the AST that produces a register-VM
// Program (spec §4.3). There is no separate resolver stage — symbol
// resolution, type checking, constant folding, and emission all happen
// while walking the tree once.
package compiler

import (
	"github.com/via-lang/via/internal/diag"
	"github.com/via-lang/via/lang/ast"
	"github.com/via-lang/via/lang/token"
)

// ConstKind tags a pooled constant's payload (spec §4.3.1, "other constants
// are interned into the pool").
type ConstKind uint8

const (
	ConstNil ConstKind = iota
	ConstInt
	ConstFloat
	ConstBool
	ConstString
)

// Const is one entry of the constant pool.
type Const struct {
	Kind   ConstKind
	Int    int64
	Float  float64
	Bool   bool
	String string
}

// Global describes one entry of the global table (spec §3.3).
type Global struct {
	Name    string
	DeclTok token.Token // GLOBAL or FN — how it was declared
	Type    *ast.Node
}

// Program is the artifact a compilation produces: an instruction stream, a
// parallel comment vector, a constant pool, and a label table, ready to be
// loaded by the machine package (spec §6.3).
type Program struct {
	Instructions []Instruction
	Comments     []string
	Constants    []Const
	Labels       map[int]int // label id -> instruction index; left empty by Compile, the machine's Load builds its own table from LBL instructions
	Globals      map[string]*Global
}

// Context is the compilation unit's shared state (SPEC_FULL §10.3):
// everything the visitor needs lives here, nothing at package scope.
type Context struct {
	Source []byte
	Tokens []token.Value
	Chunk  *ast.Chunk

	Diags diag.Bag

	prog Program

	constIndex map[Const]int // dedup index for interning (deep-equality)
}

func newContext(src []byte, toks []token.Value, ch *ast.Chunk) *Context {
	return &Context{
		Source: src,
		Tokens: toks,
		Chunk:  ch,
		prog: Program{
			Labels:  make(map[int]int),
			Globals: make(map[string]*Global),
		},
		constIndex: make(map[Const]int),
	}
}

// emit appends one instruction and its comment in lockstep (spec §4.3,
// "emit(op, [a,b,c], comment)"); unused operands must already carry
// NoOperand by the time the caller builds the Instruction.
func (c *Context) emit(op Opcode, a, b, cc uint16, comment string) int {
	c.prog.Instructions = append(c.prog.Instructions, Instruction{Op: op, A: a, B: b, C: cc})
	c.prog.Comments = append(c.prog.Comments, comment)
	return len(c.prog.Instructions) - 1
}

// intern deduplicates k by deep equality and returns its pool index.
func (c *Context) intern(k Const) uint16 {
	if idx, ok := c.constIndex[k]; ok {
		return uint16(idx)
	}
	idx := len(c.prog.Constants)
	c.prog.Constants = append(c.prog.Constants, k)
	c.constIndex[k] = idx
	return uint16(idx)
}

func (c *Context) internString(s string) uint16 {
	return c.intern(Const{Kind: ConstString, String: s})
}

// pc returns the index the next emitted instruction will occupy.
func (c *Context) pc() int { return len(c.prog.Instructions) }
