// Package machine's dispatch loop is adapted from the register-VM family of
// designs (spec §4.5): a single switch over compiler.Opcode, one shared
// register file addressed frame-relatively, and a fixed-capacity call stack.
package machine

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/via-lang/via/lang/compiler"
)

// Thread runs one compiled Program to completion or error. Multiple Threads
// can coexist in a process but share no state (spec §5, "Multiple VM
// instances can coexist in the host process but do not share state").
type Thread struct {
	// Name optionally identifies the thread for diagnostics.
	Name string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds dispatch iterations before the thread cancels itself;
	// <= 0 means no limit (spec §5, "no opcode suspends execution").
	MaxSteps int

	ctx       context.Context
	ctxCancel func()
	cancelled atomic.Bool
	steps     uint64
	maxSteps  uint64

	stdout io.Writer
	stderr io.Writer

	loaded  *Loaded
	globals map[string]Value
	regs    []Value
	high    int // high-water mark of allocated frame base offsets
	frames  []*CallFrame
}

func (th *Thread) init() {
	if th.MaxSteps <= 0 {
		th.maxSteps = math.MaxUint64
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	th.stdout = th.Stdout
	if th.stdout == nil {
		th.stdout = os.Stdout
	}
	th.stderr = th.Stderr
	if th.stderr == nil {
		th.stderr = os.Stderr
	}
	if th.ctx == nil {
		th.ctx = context.Background()
		th.ctxCancel = func() {}
	}
}

// Cancel requests cooperative cancellation; the thread stops at its next
// dispatch step (spec §5, "the only supported interruption").
func (th *Thread) Cancel() { th.cancelled.Store(true) }

// Run loads p and executes its top-level closure to completion
// (spec §6.1 run(context)).
func (th *Thread) Run(ctx context.Context, p *compiler.Program) (Value, error) {
	th.ctx = ctx
	th.init()

	th.loaded = Load(p)
	th.globals = make(map[string]Value, len(p.Globals))
	th.regs = make([]Value, 256)

	base := th.newFrameBase()
	th.pushFrame(th.loaded.Toplevel, 0, nil, 0, base, false)
	return th.dispatch()
}

func (th *Thread) curFrame() *CallFrame {
	if len(th.frames) == 0 {
		return nil
	}
	return th.frames[len(th.frames)-1]
}

func (th *Thread) pushFrame(cl *Closure, returnPC int, args []Value, returnReg uint16, base uint16, protected bool) *CallFrame {
	f := &CallFrame{
		Closure:     cl,
		PC:          cl.Fn.Entry,
		ReturnPC:    returnPC,
		Base:        base,
		ReturnReg:   returnReg,
		IsProtected: protected,
		Args:        args,
		regs:        th,
	}
	th.frames = append(th.frames, f)
	return f
}

func (th *Thread) ensureRegs(n int) {
	if n <= len(th.regs) {
		return
	}
	grown := make([]Value, n*2)
	copy(grown, th.regs)
	th.regs = grown
}

func (th *Thread) getRegister(idx uint16) Value {
	if int(idx) >= len(th.regs) {
		return Nil()
	}
	return th.regs[idx]
}

func (th *Thread) setRegister(idx uint16, v Value) {
	th.ensureRegs(int(idx) + 1)
	th.regs[idx] = v
}

// newFrameBase reserves a fresh block of the shared register file for a
// callee frame (spec §3.6, "the base register for arguments").
func (th *Thread) newFrameBase() uint16 {
	base := th.high
	th.high += 256
	th.ensureRegs(th.high)
	return uint16(base)
}

func (th *Thread) releaseFrameBase() {
	if th.high >= 256 {
		th.high -= 256
	}
}

// runtimeError is a VM error raised during dispatch (spec §4.5.2), distinct
// from a Go panic: it is caught by the unwinder, not propagated as a host
// exception.
type runtimeError struct{ msg string }

func (e *runtimeError) Error() string { return e.msg }

func (th *Thread) dispatch() (Value, error) {
	for {
		frame := th.curFrame()
		if frame == nil {
			return Nil(), nil
		}
		instrs := th.loaded.Program.Instructions
		if frame.PC >= len(instrs) {
			return Nil(), nil
		}

		th.steps++
		if th.steps >= th.maxSteps {
			return Value{}, fmt.Errorf("thread %q cancelled: step limit exceeded", th.Name)
		}
		if th.cancelled.Load() {
			return Value{}, fmt.Errorf("thread %q cancelled", th.Name)
		}
		select {
		case <-th.ctx.Done():
			return Value{}, th.ctx.Err()
		default:
		}

		ins := instrs[frame.PC]
		frame.PC++

		halted, result, err := th.step(frame, ins)
		if err != nil {
			if !th.raise(err.Error()) {
				return Value{}, th.traceback(err)
			}
			continue
		}
		if halted {
			return result, nil
		}
	}
}

// raise implements the unwind-to-protected-or-halt contract of spec §4.5.2.
// It reports whether execution can resume (a protected frame caught it).
func (th *Thread) raise(msg string) bool {
	for len(th.frames) > 0 {
		f := th.frames[len(th.frames)-1]
		th.frames = th.frames[:len(th.frames)-1]
		f.closeUpvalues()
		th.releaseFrameBase()

		if f.IsProtected {
			caller := th.curFrame()
			if caller == nil {
				return false
			}
			caller.setReg(f.ReturnReg, StringVal(msg))
			caller.PC = f.ReturnPC
			return true
		}
	}
	return false
}

func (th *Thread) traceback(err error) error {
	return fmt.Errorf("traceback (most recent call last):\n  %s", err)
}

// step executes one instruction. halted reports a normal EXIT; result is
// only meaningful when halted is true.
func (th *Thread) step(f *CallFrame, ins compiler.Instruction) (halted bool, result Value, err error) {
	switch ins.Op {
	case compiler.NOP, compiler.LBL:
		// no effect

	case compiler.EXIT:
		return true, Nil(), nil

	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD, compiler.POW:
		return false, Value{}, th.arith(f, ins)
	case compiler.NEG:
		x := f.reg(ins.B)
		switch x.Kind {
		case KindInt:
			f.setReg(ins.A, IntVal(-x.Int))
		case KindFloat:
			f.setReg(ins.A, FloatVal(-x.Float))
		default:
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot negate a %s", x.Kind)}
		}

	case compiler.ADDI, compiler.SUBI, compiler.MULI, compiler.DIVI, compiler.MODI, compiler.POWI:
		return false, Value{}, th.arithImmInt(f, ins)
	case compiler.ADDF, compiler.SUBF, compiler.MULF, compiler.DIVF, compiler.MODF, compiler.POWF:
		return false, Value{}, th.arithImmFloat(f, ins)

	case compiler.MOV:
		f.setReg(ins.A, f.reg(ins.B).Clone())
	case compiler.LOADK:
		f.setReg(ins.A, th.loaded.Constants[ins.B])
	case compiler.LOADNIL:
		f.setReg(ins.A, Nil())
	case compiler.LOADI:
		f.setReg(ins.A, IntVal(unpackInt(ins.B, ins.C)))
	case compiler.LOADF:
		f.setReg(ins.A, FloatVal(unpackFloat(ins.B, ins.C)))
	case compiler.LOADBT:
		f.setReg(ins.A, BoolVal(true))
	case compiler.LOADBF:
		f.setReg(ins.A, BoolVal(false))
	case compiler.LOADARR:
		f.setReg(ins.A, ArrayVal(NewArray()))
	case compiler.LOADDICT:
		f.setReg(ins.A, DictVal(NewDict(0)))

	case compiler.CLOSURE:
		th.makeClosure(f, ins)

	case compiler.PUSH:
		f.pushLocal(f.reg(ins.A))
	case compiler.PUSHK:
		f.pushLocal(th.loaded.Constants[ins.A])
	case compiler.PUSHNIL:
		f.pushLocal(Nil())
	case compiler.PUSHI:
		f.pushLocal(IntVal(unpackInt(ins.A, ins.B)))
	case compiler.PUSHF:
		f.pushLocal(FloatVal(unpackFloat(ins.A, ins.B)))
	case compiler.PUSHBT:
		f.pushLocal(BoolVal(true))
	case compiler.PUSHBF:
		f.pushLocal(BoolVal(false))
	case compiler.DROP:
		f.popLocal()
	case compiler.GETLOCAL:
		if int(ins.B) < f.localsLen {
			f.setReg(ins.A, f.locals[ins.B])
		}
	case compiler.SETLOCAL:
		if int(ins.B) < maxLocals {
			f.locals[ins.B] = f.reg(ins.A)
			if int(ins.B) >= f.localsLen {
				f.localsLen = int(ins.B) + 1
			}
		}
	case compiler.GETARG:
		if int(ins.B) < len(f.Args) {
			f.setReg(ins.A, f.Args[ins.B])
		} else {
			f.setReg(ins.A, Nil())
		}

	case compiler.GETGLOBAL:
		key := f.reg(ins.B).String()
		v, ok := th.globals[key]
		if !ok {
			v = Nil()
		}
		f.setReg(ins.A, v)
	case compiler.SETGLOBAL:
		key := f.reg(ins.B).String()
		th.globals[key] = f.reg(ins.A).Clone()

	case compiler.GETUPV:
		if int(ins.B) < len(f.Closure.Upvalues) {
			f.setReg(ins.A, f.Closure.Upvalues[ins.B].Get())
		}
	case compiler.SETUPV:
		if int(ins.B) < len(f.Closure.Upvalues) {
			f.Closure.Upvalues[ins.B].Set(f.reg(ins.A))
		}

	case compiler.EQ:
		f.setReg(ins.A, BoolVal(Equal(f.reg(ins.B), f.reg(ins.C))))
	case compiler.NEQ:
		f.setReg(ins.A, BoolVal(!Equal(f.reg(ins.B), f.reg(ins.C))))
	case compiler.DEQ:
		f.setReg(ins.A, BoolVal(DeepEqual(f.reg(ins.B), f.reg(ins.C))))
	case compiler.AND:
		f.setReg(ins.A, BoolVal(f.reg(ins.B).Truthy() && f.reg(ins.C).Truthy()))
	case compiler.OR:
		f.setReg(ins.A, BoolVal(f.reg(ins.B).Truthy() || f.reg(ins.C).Truthy()))
	case compiler.NOT:
		f.setReg(ins.A, BoolVal(!f.reg(ins.B).Truthy()))
	case compiler.LT, compiler.GT, compiler.LTEQ, compiler.GTEQ:
		return false, Value{}, th.compare(f, ins)

	case compiler.JMP:
		f.PC = f.PC - 1 + int(int16(ins.A))
	case compiler.JMPIF:
		if f.reg(ins.A).Truthy() {
			f.PC = f.PC - 1 + int(int16(ins.B))
		}
	case compiler.JMPIFN:
		if !f.reg(ins.A).Truthy() {
			f.PC = f.PC - 1 + int(int16(ins.B))
		}
	case compiler.LJMP:
		f.PC = th.loaded.Labels[int(ins.A)]
	case compiler.LJMPIF:
		if f.reg(ins.A).Truthy() {
			f.PC = th.loaded.Labels[int(ins.B)]
		}
	case compiler.LJMPIFN:
		if !f.reg(ins.A).Truthy() {
			f.PC = th.loaded.Labels[int(ins.B)]
		}

	case compiler.CALL, compiler.PCALL:
		return false, Value{}, th.call(f, ins, ins.Op == compiler.PCALL)

	case compiler.RET:
		return th.doReturn(f, f.reg(ins.A))
	case compiler.RETBT:
		return th.doReturn(f, BoolVal(true))
	case compiler.RETBF:
		return th.doReturn(f, BoolVal(false))
	case compiler.RETNIL:
		return th.doReturn(f, Nil())

	case compiler.GETARR:
		arr := f.reg(ins.B)
		if arr.Kind != KindArray {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot index a %s", arr.Kind)}
		}
		idx := f.reg(ins.C)
		f.setReg(ins.A, arr.arr().Get(int(idx.Int)))
	case compiler.SETARR:
		arr := f.reg(ins.A)
		if arr.Kind != KindArray {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot index a %s", arr.Kind)}
		}
		idx := f.reg(ins.B)
		arr.arr().Set(int(idx.Int), f.reg(ins.C).Clone())
	case compiler.LENARR:
		x := f.reg(ins.B)
		switch x.Kind {
		case KindArray:
			f.setReg(ins.A, IntVal(int32(x.arr().Len())))
		case KindString:
			f.setReg(ins.A, IntVal(int32(x.strObj().len())))
		default:
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot take length of a %s", x.Kind)}
		}
	case compiler.NEXTARR:
		arr := f.reg(ins.B)
		idx := int(f.reg(ins.C).Int)
		if arr.Kind == KindArray && idx < arr.arr().Len() {
			f.setReg(ins.A, arr.arr().Get(idx))
			f.setReg(ins.C, IntVal(int32(idx+1)))
		}

	case compiler.GETDICT:
		d := f.reg(ins.B)
		if d.Kind != KindDict {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot index a %s", d.Kind)}
		}
		key := f.reg(ins.C).String()
		v, ok := d.dict().Get(key)
		if !ok {
			v = Nil()
		}
		f.setReg(ins.A, v)
	case compiler.SETDICT:
		d := f.reg(ins.A)
		if d.Kind != KindDict {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot index a %s", d.Kind)}
		}
		key := f.reg(ins.B).String()
		d.dict().Set(key, f.reg(ins.C).Clone())
	case compiler.LENDICT:
		d := f.reg(ins.B)
		if d.Kind != KindDict {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot take length of a %s", d.Kind)}
		}
		f.setReg(ins.A, IntVal(int32(d.dict().Len())))
	case compiler.NEXTDICT:
		d := f.reg(ins.B)
		idx := int(f.reg(ins.C).Int)
		if d.Kind == KindDict {
			if k, v, ok := d.dict().Next(idx); ok {
				f.setReg(ins.A, DictVal(pairOf(k, v)))
				f.setReg(ins.C, IntVal(int32(idx+1)))
			}
		}

	case compiler.CONSTR:
		a, b := f.reg(ins.A), f.reg(ins.B)
		if a.Kind != KindString || b.Kind != KindString {
			return false, Value{}, &runtimeError{"concatenation requires two strings"}
		}
		f.setReg(ins.A, StringVal(a.strObj().str()+b.strObj().str()))
	case compiler.GETSTR:
		s := f.reg(ins.B)
		if s.Kind != KindString {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot index a %s as a string", s.Kind)}
		}
		c, ok := s.strObj().get(int(f.reg(ins.C).Int))
		if !ok {
			return false, Value{}, &runtimeError{"string index out of range"}
		}
		f.setReg(ins.A, StringVal(string([]byte{c})))
	case compiler.SETSTR:
		s := f.reg(ins.A)
		if s.Kind != KindString {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot index a %s as a string", s.Kind)}
		}
		v := f.reg(ins.C)
		if v.Kind != KindString || v.strObj().len() != 1 {
			return false, Value{}, &runtimeError{"string assignment requires a single character"}
		}
		c, _ := v.strObj().get(0)
		if !s.strObj().set(int(f.reg(ins.B).Int), c) {
			return false, Value{}, &runtimeError{"string index out of range"}
		}
	case compiler.LENSTR:
		s := f.reg(ins.B)
		if s.Kind != KindString {
			return false, Value{}, &runtimeError{fmt.Sprintf("cannot take length of a %s", s.Kind)}
		}
		f.setReg(ins.A, IntVal(int32(s.strObj().len())))

	case compiler.ICAST:
		return false, Value{}, th.cast(f, ins, KindInt)
	case compiler.FCAST:
		return false, Value{}, th.cast(f, ins, KindFloat)
	case compiler.STRCAST:
		return false, Value{}, th.cast(f, ins, KindString)
	case compiler.BCAST:
		return false, Value{}, th.cast(f, ins, KindBool)

	case compiler.CAPTURE:
		// only meaningful as a sub-instruction skipped by CLOSURE.

	default:
		return false, Value{}, &runtimeError{fmt.Sprintf("unimplemented opcode %s", ins.Op)}
	}
	return false, Value{}, nil
}

func pairOf(k string, v Value) *Dict {
	d := NewDict(2)
	d.Set("key", StringVal(k))
	d.Set("value", v)
	return d
}

// unpackInt/unpackFloat mirror compiler.unpackInt/unpackFloat, which are
// unexported; the encoding (spec §4.3.1) is shared across both packages.
func unpackInt(hi, lo uint16) int32 {
	return int32(uint32(hi)<<16 | uint32(lo))
}

func unpackFloat(hi, lo uint16) float32 {
	return math.Float32frombits(uint32(unpackInt(hi, lo)))
}

// arith implements the reg-reg arithmetic family: float promotion wins if
// either operand is a float, otherwise 32-bit wrapping integer arithmetic
// (spec §4.4, "float promotion wins").
func (th *Thread) arith(f *CallFrame, ins compiler.Instruction) error {
	a, b := f.reg(ins.B), f.reg(ins.C)
	if !isNumeric(a.Kind) || !isNumeric(b.Kind) {
		return &runtimeError{fmt.Sprintf("cannot apply %s to %s and %s", ins.Op, a.Kind, b.Kind)}
	}
	if a.Kind == KindFloat || b.Kind == KindFloat {
		x, y := asF64(a), asF64(b)
		r, err := applyArith(ins.Op, x, y)
		if err != nil {
			return err
		}
		f.setReg(ins.A, FloatVal(float32(r)))
		return nil
	}
	x, y := a.Int, b.Int
	switch ins.Op {
	case compiler.ADD:
		f.setReg(ins.A, IntVal(x+y))
	case compiler.SUB:
		f.setReg(ins.A, IntVal(x-y))
	case compiler.MUL:
		f.setReg(ins.A, IntVal(x*y))
	case compiler.DIV:
		if y == 0 {
			return &runtimeError{"division by zero"}
		}
		f.setReg(ins.A, IntVal(x/y))
	case compiler.MOD:
		if y == 0 {
			return &runtimeError{"division by zero"}
		}
		f.setReg(ins.A, IntVal(x%y))
	case compiler.POW:
		f.setReg(ins.A, IntVal(int32(math.Pow(float64(x), float64(y)))))
	}
	return nil
}

func applyArith(op compiler.Opcode, x, y float64) (float64, error) {
	switch op {
	case compiler.ADD:
		return x + y, nil
	case compiler.SUB:
		return x - y, nil
	case compiler.MUL:
		return x * y, nil
	case compiler.DIV:
		if y == 0 {
			return 0, &runtimeError{"division by zero"}
		}
		return x / y, nil
	case compiler.MOD:
		if y == 0 {
			return 0, &runtimeError{"division by zero"}
		}
		return math.Mod(x, y), nil
	case compiler.POW:
		return math.Pow(x, y), nil
	default:
		return 0, &runtimeError{fmt.Sprintf("unknown arithmetic opcode %s", op)}
	}
}

// arithImmInt implements the ADDI family: in-place integer arithmetic
// against a 32-bit immediate packed into (b, c) (spec §4.5.1, "a = a op
// imm(hi=b, lo=c)").
func (th *Thread) arithImmInt(f *CallFrame, ins compiler.Instruction) error {
	cur := f.reg(ins.A)
	imm := unpackInt(ins.B, ins.C)
	x := cur.Int
	switch ins.Op {
	case compiler.ADDI:
		f.setReg(ins.A, IntVal(x+imm))
	case compiler.SUBI:
		f.setReg(ins.A, IntVal(x-imm))
	case compiler.MULI:
		f.setReg(ins.A, IntVal(x*imm))
	case compiler.DIVI:
		if imm == 0 {
			return &runtimeError{"division by zero"}
		}
		f.setReg(ins.A, IntVal(x/imm))
	case compiler.MODI:
		if imm == 0 {
			return &runtimeError{"division by zero"}
		}
		f.setReg(ins.A, IntVal(x%imm))
	case compiler.POWI:
		f.setReg(ins.A, IntVal(int32(math.Pow(float64(x), float64(imm)))))
	}
	return nil
}

// arithImmFloat mirrors arithImmInt for the float-immediate family.
func (th *Thread) arithImmFloat(f *CallFrame, ins compiler.Instruction) error {
	cur := f.reg(ins.A)
	imm := float64(unpackFloat(ins.B, ins.C))
	x := float64(cur.Float)
	r, err := applyArith(opcodeWithoutF(ins.Op), x, imm)
	if err != nil {
		return err
	}
	f.setReg(ins.A, FloatVal(float32(r)))
	return nil
}

// opcodeWithoutF maps an *F immediate opcode to its reg-reg counterpart so
// applyArith can be shared between the int and float immediate families.
func opcodeWithoutF(op compiler.Opcode) compiler.Opcode {
	switch op {
	case compiler.ADDF:
		return compiler.ADD
	case compiler.SUBF:
		return compiler.SUB
	case compiler.MULF:
		return compiler.MUL
	case compiler.DIVF:
		return compiler.DIV
	case compiler.MODF:
		return compiler.MOD
	case compiler.POWF:
		return compiler.POW
	default:
		return op
	}
}

// compare implements LT/GT/LTEQ/GTEQ: numeric or lexicographic string
// comparison (spec §4.5.1).
func (th *Thread) compare(f *CallFrame, ins compiler.Instruction) error {
	a, b := f.reg(ins.B), f.reg(ins.C)
	var cmp int
	switch {
	case a.Kind == KindString && b.Kind == KindString:
		as, bs := a.strObj().str(), b.strObj().str()
		switch {
		case as < bs:
			cmp = -1
		case as > bs:
			cmp = 1
		}
	case isNumeric(a.Kind) && isNumeric(b.Kind):
		x, y := asF64(a), asF64(b)
		switch {
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		}
	default:
		return &runtimeError{fmt.Sprintf("cannot compare %s and %s", a.Kind, b.Kind)}
	}
	var res bool
	switch ins.Op {
	case compiler.LT:
		res = cmp < 0
	case compiler.GT:
		res = cmp > 0
	case compiler.LTEQ:
		res = cmp <= 0
	case compiler.GTEQ:
		res = cmp >= 0
	}
	f.setReg(ins.A, BoolVal(res))
	return nil
}

// cast implements ICAST/FCAST/STRCAST/BCAST (spec §4.4's primitive casts).
func (th *Thread) cast(f *CallFrame, ins compiler.Instruction, to Kind) error {
	v := f.reg(ins.B)
	switch to {
	case KindInt:
		switch v.Kind {
		case KindInt:
			f.setReg(ins.A, v)
		case KindFloat:
			f.setReg(ins.A, IntVal(int32(v.Float)))
		case KindBool:
			if v.Bool {
				f.setReg(ins.A, IntVal(1))
			} else {
				f.setReg(ins.A, IntVal(0))
			}
		case KindString:
			n, err := strconv.ParseInt(v.strObj().str(), 10, 32)
			if err != nil {
				return &runtimeError{fmt.Sprintf("cannot cast %q to int", v.strObj().str())}
			}
			f.setReg(ins.A, IntVal(int32(n)))
		default:
			return &runtimeError{fmt.Sprintf("cannot cast %s to int", v.Kind)}
		}
	case KindFloat:
		switch v.Kind {
		case KindFloat:
			f.setReg(ins.A, v)
		case KindInt:
			f.setReg(ins.A, FloatVal(float32(v.Int)))
		case KindString:
			n, err := strconv.ParseFloat(v.strObj().str(), 32)
			if err != nil {
				return &runtimeError{fmt.Sprintf("cannot cast %q to float", v.strObj().str())}
			}
			f.setReg(ins.A, FloatVal(float32(n)))
		default:
			return &runtimeError{fmt.Sprintf("cannot cast %s to float", v.Kind)}
		}
	case KindBool:
		f.setReg(ins.A, BoolVal(v.Truthy()))
	case KindString:
		f.setReg(ins.A, StringVal(v.String()))
	}
	return nil
}

// call implements CALL/PCALL (spec §4.5.1, §4.5.2): native callees run
// synchronously with no frame pushed; via callees get a fresh CallFrame
// carved out of the shared register file, with arguments copied into a
// separate Args area so GETARG never collides with the callee's own locals.
func (th *Thread) call(f *CallFrame, ins compiler.Instruction, protected bool) error {
	switch ins.A {
	case compiler.NoOperand:
		arg := f.reg(ins.B)
		fmt.Fprintln(th.stdout, arg.String())
		f.setReg(ins.C, arg)
		return nil
	case compiler.IntrinsicError:
		arg := f.reg(ins.B)
		return &runtimeError{arg.String()}
	}

	callee := f.reg(ins.A)
	if callee.Kind != KindFunction {
		return &runtimeError{fmt.Sprintf("cannot call a %s", callee.Kind)}
	}
	cl := callee.closure()
	argc := cl.Fn.Arity
	args := make([]Value, argc)
	if argc > 0 && ins.B != compiler.NoOperand {
		for i := 0; i < argc; i++ {
			args[i] = f.reg(ins.B + uint16(i)).Clone()
		}
	}
	if cl.Fn.Kind == FuncNative {
		result, err := cl.Fn.Native(th, args)
		if err != nil {
			if protected {
				f.setReg(ins.C, StringVal(err.Error()))
				return nil
			}
			return &runtimeError{err.Error()}
		}
		f.setReg(ins.C, result)
		return nil
	}
	if len(th.frames) >= maxFrames {
		return &runtimeError{"stack overflow"}
	}
	base := th.newFrameBase()
	th.pushFrame(cl, f.PC, args, ins.C, base, protected)
	return nil
}

// doReturn implements RET/RETBT/RETBF/RETNIL: closes the popped frame's
// upvalues, then writes the result into the caller's return register and
// resumes it (spec §4.5.1). Returning from the outermost frame halts the
// thread.
func (th *Thread) doReturn(f *CallFrame, v Value) (bool, Value, error) {
	f.closeUpvalues()
	th.frames = th.frames[:len(th.frames)-1]
	if len(th.frames) == 0 {
		return true, v, nil
	}
	th.releaseFrameBase()
	caller := th.curFrame()
	caller.setReg(f.ReturnReg, v.Clone())
	caller.PC = f.ReturnPC
	return false, Value{}, nil
}

// makeClosure implements CLOSURE: it must execute every CAPTURE
// sub-instruction within the skipped body range (populating the new
// closure's upvalue vector) while skipping everything else in that range
// (spec §4.5.1).
func (th *Thread) makeClosure(f *CallFrame, ins compiler.Instruction) {
	bodyStart := f.PC
	bodyLen := int(ins.B)
	end := bodyStart + bodyLen
	instrs := th.loaded.Program.Instructions
	if end > len(instrs) {
		end = len(instrs)
	}

	fn := &Function{Kind: FuncVia, Entry: bodyStart, Len: bodyLen, Arity: int(ins.C)}
	cl := &Closure{Fn: fn}
	for pc := bodyStart; pc < end; pc++ {
		sub := instrs[pc]
		if sub.Op != compiler.CAPTURE {
			continue
		}
		if sub.A == 1 {
			if int(sub.B) < len(f.Closure.Upvalues) {
				f.Closure.Upvalues[sub.B].Close()
				cl.Upvalues = append(cl.Upvalues, f.Closure.Upvalues[sub.B])
			}
		} else {
			cl.Upvalues = append(cl.Upvalues, f.openUpvalueFor(sub.B))
		}
	}

	f.PC = end
	f.setReg(ins.A, ClosureVal(cl))
}
