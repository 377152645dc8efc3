package ast

import "github.com/via-lang/via/internal/arena"

// Pool allocates every Node of a compilation unit from one backing arena
// (spec §3.2, "nodes are allocated in a single arena"), so the whole tree
// is freed at once when the unit goes out of scope (§10.2).
type Pool struct {
	arena arena.Arena[Node]
}

// NewNode allocates a zero Node tagged with kind; the caller fills in Span
// and the kind-specific fields.
func (p *Pool) NewNode(kind Kind) *Node {
	n := p.arena.New()
	n.Kind = kind
	return n
}

// Len reports how many nodes have been allocated from the pool so far.
func (p *Pool) Len() int { return p.arena.Len() }
