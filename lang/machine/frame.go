package machine

// maxLocals bounds the push/pop locals stack of a single CallFrame
// (spec §3.6, "a locals buffer of fixed capacity (200)").
const maxLocals = 200

// maxFrames bounds the call stack depth (spec §3.6, "A fixed-capacity array
// of CallFrames (capacity 200)").
const maxFrames = 200

// CallFrame is one activation record (spec §3.6). Register operands in an
// instruction (a, b, c) are frame-relative; Base is added to reach the
// index into the machine's single shared register file — this is what
// lets every compiled function start its own register numbering from 0
// while still sharing one physical register file at run time.
type CallFrame struct {
	Closure     *Closure
	PC          int
	ReturnPC    int
	Base        uint16
	ReturnReg   uint16
	IsProtected bool

	// Args holds the arguments CALL copied in, a separate area from the
	// register file so GETARG never collides with the callee's own locals
	// (which the compiler numbers from register 0 up).
	Args []Value

	regs *Thread // back-reference, for reg()/setReg()

	// locals is the separate push/pop stack addressed by PUSH/DROP/GETLOCAL/
	// SETLOCAL (spec §4.5.1), distinct from the register file.
	locals    [maxLocals]Value
	localsLen int

	// openUpvalues indexes already-open Upvalues by the frame-relative
	// register they alias, so two closures capturing the same local share
	// one Upvalue object (spec §3.5).
	openUpvalues map[uint16]*Upvalue
}

func (f *CallFrame) reg(r uint16) Value {
	return f.regs.getRegister(f.Base + r)
}

func (f *CallFrame) setReg(r uint16, v Value) {
	f.regs.setRegister(f.Base+r, v)
}

// openUpvalueFor returns the (possibly newly created) open Upvalue aliasing
// frame-relative register r.
func (f *CallFrame) openUpvalueFor(r uint16) *Upvalue {
	if f.openUpvalues == nil {
		f.openUpvalues = make(map[uint16]*Upvalue)
	}
	if uv, ok := f.openUpvalues[r]; ok {
		return uv
	}
	uv := &Upvalue{State: UpOpen, Frame: f, Reg: r}
	f.openUpvalues[r] = uv
	return uv
}

// closeUpvalues closes every upvalue this frame still owns (spec §3.5,
// "closing happens when the enclosing call frame is being popped").
func (f *CallFrame) closeUpvalues() {
	for _, uv := range f.openUpvalues {
		uv.Close()
	}
}

func (f *CallFrame) pushLocal(v Value) bool {
	if f.localsLen >= maxLocals {
		return false
	}
	f.locals[f.localsLen] = v
	f.localsLen++
	return true
}

func (f *CallFrame) popLocal() (Value, bool) {
	if f.localsLen == 0 {
		return Value{}, false
	}
	f.localsLen--
	v := f.locals[f.localsLen]
	f.locals[f.localsLen] = Value{}
	return v, true
}
