// Package machine implements the register-based virtual machine that
// executes a compiler.Program: value representation, containers, closures,
// call frames, and the dispatch loop (spec §3.4-3.6, §4.5).
package machine

import "fmt"

// Kind tags the runtime type of a Value (spec §3.4: "Runtime values are a
// tagged union").
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindArray
	KindDict
	KindFunction
)

var kindNames = [...]string{
	KindNil: "nil", KindInt: "int", KindFloat: "float", KindBool: "bool",
	KindString: "string", KindArray: "array", KindDict: "dict", KindFunction: "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is the tagged union every register, upvalue, and constant pool slot
// holds. Primitive kinds (Int, Float, Bool) are inline; heap kinds (String,
// Array, Dict, Function) carry a pointer to a heap record in Heap
// (spec §3.4).
type Value struct {
	Kind  Kind
	Int   int32
	Float float32
	Bool  bool
	Heap  any // *stringObj | *Array | *Dict | *Closure
}

func Nil() Value                { return Value{Kind: KindNil} }
func IntVal(v int32) Value      { return Value{Kind: KindInt, Int: v} }
func FloatVal(v float32) Value  { return Value{Kind: KindFloat, Float: v} }
func BoolVal(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func StringVal(s string) Value  { return Value{Kind: KindString, Heap: newStringObj(s)} }
func ArrayVal(a *Array) Value   { return Value{Kind: KindArray, Heap: a} }
func DictVal(d *Dict) Value     { return Value{Kind: KindDict, Heap: d} }
func ClosureVal(c *Closure) Value { return Value{Kind: KindFunction, Heap: c} }

func (v Value) strObj() *stringObj { s, _ := v.Heap.(*stringObj); return s }
func (v Value) arr() *Array        { a, _ := v.Heap.(*Array); return a }
func (v Value) dict() *Dict        { d, _ := v.Heap.(*Dict); return d }
func (v Value) closure() *Closure  { c, _ := v.Heap.(*Closure); return c }

// Truthy implements the conditional-context coercion used by JMPIF/JMPIFN
// and the unary "not" operator.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.strObj().len() > 0
	default:
		return true
	}
}

// Clone implements the clone contract of spec §3.4/§4.4: primitive kinds
// copy by value; String/Array/Dict produce a new heap record (deep copy);
// Function values share their Closure (function equality is identity, so a
// "clone" of a function is just another reference to the same closure).
func (v Value) Clone() Value {
	switch v.Kind {
	case KindString:
		return Value{Kind: KindString, Heap: v.strObj().clone()}
	case KindArray:
		return Value{Kind: KindArray, Heap: v.arr().clone()}
	case KindDict:
		return Value{Kind: KindDict, Heap: v.dict().clone()}
	default:
		return v
	}
}

// Reset drops the heap reference (if any) and transitions the value to Nil.
func (v *Value) Reset() { *v = Value{Kind: KindNil} }

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return v.strObj().str()
	case KindArray:
		return v.arr().String()
	case KindDict:
		return v.dict().String()
	case KindFunction:
		return v.closure().String()
	default:
		return "<invalid>"
	}
}

// Equal implements the EQ/NEQ opcode family: shallow equality (spec §4.5.1).
// Strings compare by content, functions by closure identity, containers by
// heap-record identity (no recursion — that is DEQ's job).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		if isNumeric(a.Kind) && isNumeric(b.Kind) {
			return asF64(a) == asF64(b)
		}
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.strObj().str() == b.strObj().str()
	case KindArray:
		return a.arr() == b.arr()
	case KindDict:
		return a.dict() == b.dict()
	case KindFunction:
		return a.closure() == b.closure()
	default:
		return false
	}
}

// DeepEqual implements the DEQ opcode: recurses element-wise into arrays
// (spec §4.5.1, "DEQ recurses into arrays element-wise").
func DeepEqual(a, b Value) bool {
	if a.Kind == KindArray && b.Kind == KindArray {
		ae, be := a.arr().elems, b.arr().elems
		if len(ae) != len(be) {
			return false
		}
		for i := range ae {
			if !DeepEqual(ae[i], be[i]) {
				return false
			}
		}
		return true
	}
	return Equal(a, b)
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat }

func asF64(v Value) float64 {
	if v.Kind == KindFloat {
		return float64(v.Float)
	}
	return float64(v.Int)
}
