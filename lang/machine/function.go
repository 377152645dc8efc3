package machine

import "fmt"

// FuncKind distinguishes a via-defined function from a host-provided native
// one (spec §3.5, "a Callable is a sum of Function and NativeFn").
type FuncKind uint8

const (
	FuncVia FuncKind = iota
	FuncNative
)

// NativeFn is a host-language function pointer invocable from via code.
type NativeFn func(th *Thread, args []Value) (Value, error)

// Function is the immutable, shareable part of a callable: where its body
// lives in the instruction stream, its arity, and debug info (spec §3.5,
// "holds a pointer into the instruction stream, an instruction count, a
// source line for diagnostics, and a debug name").
type Function struct {
	Kind  FuncKind
	Name  string
	Entry int // instruction index of the first body instruction
	Len   int // body instruction count (captures included)
	Line  int
	Arity int

	IsErrorHandler bool
	Native         NativeFn
}

// Closure wraps a Callable with its captured upvalues (spec §3.5, "a Closure
// wraps a Callable with a growable vector of UpValues").
type Closure struct {
	Fn       *Function
	Upvalues []*Upvalue
}

func (c *Closure) String() string {
	name := c.Fn.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("function(%s)", name)
}

// UpvalueState distinguishes a live reference into an enclosing frame's
// register from a copy owned by the upvalue itself (spec §3.5).
type UpvalueState uint8

const (
	UpOpen UpvalueState = iota
	UpClosed
)

// Upvalue is a captured variable shared between a closure and the frame
// that declared it, or between sibling closures that captured the same
// binding (spec §3.5).
type Upvalue struct {
	State  UpvalueState
	Frame  *CallFrame // open: the frame whose register this aliases
	Reg    uint16     // open: frame-relative register index
	closed Value      // closed: the upvalue's own storage
}

// Get reads the upvalue's current value, whichever state it's in.
func (u *Upvalue) Get() Value {
	if u.State == UpOpen {
		return u.Frame.reg(u.Reg)
	}
	return u.closed
}

// Set writes through the upvalue, whichever state it's in.
func (u *Upvalue) Set(v Value) {
	if u.State == UpOpen {
		u.Frame.setReg(u.Reg, v)
		return
	}
	u.closed = v
}

// Close copies the current value into the upvalue's own storage and
// detaches it from the frame (spec §3.5: triggered when the enclosing frame
// is popped, or when an outer binding is captured a second time by an inner
// closure before the frame goes away).
func (u *Upvalue) Close() {
	if u.State != UpOpen {
		return
	}
	u.closed = u.Frame.reg(u.Reg)
	u.State = UpClosed
	u.Frame = nil
}
