// VM: the single dispatch loop over a linked lang/compiler.Program
// (spec.md §4.9). Grounded on the teacher's machine.go run() — one
// function, one big switch over the opcode, a flat instruction counter —
// re-issued over spec.md's 4-byte fixed-width instruction encoding
// instead of the teacher's variable-length bytecode, and over ArkScript's
// page/Closure model instead of Lua's Funcode/cell-spill model.
package machine

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/arkscript-lang/arkscript/lang/compiler"
)

// Stdio is the set of streams print/puts/input and the io:* built-ins
// (lang/builtins) read and write, deliberately independent of
// internal/maincmd's mainer.Stdio so this package never imports a CLI
// framework: the CLI maps mainer.Stdio onto this at VM construction.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// VM owns the immutable program image and built-ins/plugin registry
// shared by every ExecutionContext it spawns (spec.md §5: "the program
// image... is immutable after loading").
type VM struct {
	Program  *compiler.Program
	Builtins []*CProc
	Plugins  map[string]*Plugin
	Stdio    Stdio

	halted int32 // atomic; set by sys:exit from any context (spec.md §5)
}

// Plugin is a loaded native plugin's exported built-ins (spec.md §4.10's
// plugin ABI), keyed by the name it registers under.
type Plugin struct {
	Path     string
	Builtins map[string]*CProc
}

// New returns a VM ready to execute prog, with Stdio defaulted to the
// process's real standard streams; a CLI wires its own mainer.Stdio over
// this field before calling Run when it needs to capture output.
func New(prog *compiler.Program, builtins []*CProc) *VM {
	return &VM{
		Program:  prog,
		Builtins: builtins,
		Plugins:  make(map[string]*Plugin),
		Stdio:    Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
}

func (vm *VM) Halt()          { atomic.StoreInt32(&vm.halted, 1) }
func (vm *VM) Halted() bool   { return atomic.LoadInt32(&vm.halted) != 0 }

// Run executes ec from its current (IP, PP) until a top-level RET, a
// HALT, or an error. It is the entry point both for the primary context
// and for a secondary context spawned by `async` (spec.md §5).
func (vm *VM) Run(ec *ExecutionContext) (Value, error) {
	baseFC := ec.FC
	for {
		if vm.Halted() {
			return Nil, nil
		}
		if int(ec.PP) >= len(vm.Program.Pages) {
			return nil, newErr(ec, VMInvariantError, "page %d does not exist", ec.PP)
		}
		page := vm.Program.Pages[ec.PP]
		if int(ec.IP) >= len(page) {
			return nil, newErr(ec, VMInvariantError, "instruction pointer %d out of range (page has %d instructions)", ec.IP, len(page))
		}
		in := page[ec.IP]
		ec.IP++

		ret, val, err := vm.step(ec, in)
		if err != nil {
			return nil, err
		}
		if ret {
			if ec.FC < baseFC {
				return val, nil
			}
			ec.push(val)
		}
	}
}

// step executes one instruction. It returns ret=true with val set after
// every RET and HALT; Run then compares the frame count with where it
// started to decide whether that return ends its own invocation.
func (vm *VM) step(ec *ExecutionContext, in compiler.Instr) (ret bool, val Value, err error) {
	switch in.Op {
	case compiler.NOP:
		// nothing

	case compiler.LOAD_CONST:
		v, lerr := vm.loadConst(ec, in.Arg)
		if lerr != nil {
			return false, nil, lerr
		}
		if pa, ok := v.(PageAddr); ok && ec.SavedScope != nil {
			// lang/compiler emits SAVE_ENV immediately before the LOAD_CONST
			// of a function's page address (see compileFun's doc comment);
			// combine them into the Closure that SAVE_ENV was preparing.
			v = &Closure{Scope: ec.SavedScope, PageAddr: uint16(pa)}
			ec.SavedScope = nil
		}
		ec.push(v)

	case compiler.LOAD_SYMBOL:
		ec.LastSymbol = in.Arg
		v, ok := ec.scope().Lookup(in.Arg)
		if !ok {
			return false, nil, newErr(ec, ScopeError, "undefined symbol id %d", in.Arg)
		}
		ec.push(v)

	case compiler.LOAD_CONST_LOAD_CONST:
		a, aerr := vm.loadConst(ec, in.Arg)
		if aerr != nil {
			return false, nil, aerr
		}
		b, berr := vm.loadConst(ec, in.Arg2)
		if berr != nil {
			return false, nil, berr
		}
		ec.push(a)
		ec.push(b)

	case compiler.LOAD_CONST_STORE:
		v, lerr := vm.loadConst(ec, in.Arg)
		if lerr != nil {
			return false, nil, lerr
		}
		if !ec.scope().Store(in.Arg2, v) {
			return false, nil, newErr(ec, ScopeError, "cannot store undeclared symbol id %d", in.Arg2)
		}

	case compiler.STORE:
		v := ec.pop()
		if !ec.scope().Store(in.Arg, v) {
			return false, nil, newErr(ec, ScopeError, "cannot store undeclared symbol id %d", in.Arg)
		}
	case compiler.STORE_FROM:
		src, ok := ec.scope().Lookup(in.Arg)
		if !ok {
			return false, nil, newErr(ec, ScopeError, "undefined symbol id %d", in.Arg)
		}
		if !ec.scope().Store(in.Arg2, src) {
			return false, nil, newErr(ec, ScopeError, "cannot store undeclared symbol id %d", in.Arg2)
		}
	case compiler.SET_VAL_FROM:
		closureV := ec.pop()
		field, ferr := getField(ec, closureV, in.Arg)
		if ferr != nil {
			return false, nil, ferr
		}
		if !ec.scope().Store(in.Arg2, field) {
			return false, nil, newErr(ec, ScopeError, "cannot store undeclared symbol id %d", in.Arg2)
		}

	case compiler.LET:
		ec.scope().Bind(in.Arg, ec.pop())
	case compiler.MUT:
		ec.scope().Bind(in.Arg, ec.pop())
	case compiler.DEL:
		ec.scope().Delete(in.Arg)

	case compiler.GET_FIELD:
		closureV := ec.pop()
		field, ferr := getField(ec, closureV, in.Arg)
		if ferr != nil {
			return false, nil, ferr
		}
		ec.push(field)

	case compiler.SAVE_ENV:
		ec.SavedScope = ec.scope()
	case compiler.CAPTURE:
		// CAPTURE only narrows which ids accompany SAVE_ENV's snapshot in an
		// implementation that avoids capturing the whole scope; this VM
		// always shares the full current scope (spec.md §3's "shares an
		// enclosing scope by reference"), so CAPTURE is a compile-time-only
		// marker here and a runtime no-op.

	case compiler.JUMP:
		ec.IP = in.Arg
	case compiler.POP_JUMP_IF_TRUE:
		if Truthy(ec.pop()) {
			ec.IP = in.Arg
		}
	case compiler.POP_JUMP_IF_FALSE:
		if !Truthy(ec.pop()) {
			ec.IP = in.Arg
		}

	case compiler.POP:
		ec.pop()
	case compiler.POP_LIST:
		v := ec.pop()
		l, ok := Deref(v).(*List)
		if !ok || len(l.Items) == 0 {
			return false, nil, newErr(ec, IndexError, "POP_LIST on empty or non-list value")
		}
		ec.push(NewList(l.Items[:len(l.Items)-1]...))
	case compiler.POP_LIST_IN_PLACE:
		v := ec.pop()
		l, ok := Deref(v).(*List)
		if !ok || len(l.Items) == 0 {
			return false, nil, newErr(ec, IndexError, "POP_LIST_IN_PLACE on empty or non-list value")
		}
		l.Items = l.Items[:len(l.Items)-1]

	case compiler.LIST:
		ec.push(NewList(ec.popN(int(in.Arg))...))
	case compiler.APPEND:
		items := ec.popN(int(in.Arg))
		base, ok := Deref(ec.pop()).(*List)
		if !ok {
			return false, nil, newErr(ec, TypeError, "APPEND target is not a list")
		}
		ec.push(NewList(append(append([]Value{}, base.Items...), items...)...))
	case compiler.APPEND_IN_PLACE:
		items := ec.popN(int(in.Arg))
		base, ok := Deref(ec.pop()).(*List)
		if !ok {
			return false, nil, newErr(ec, TypeError, "APPEND_IN_PLACE target is not a list")
		}
		base.Items = append(base.Items, items...)
	case compiler.CONCAT:
		lists := ec.popN(int(in.Arg))
		var out []Value
		for _, lv := range lists {
			l, ok := Deref(lv).(*List)
			if !ok {
				return false, nil, newErr(ec, TypeError, "CONCAT operand is not a list")
			}
			out = append(out, l.Items...)
		}
		ec.push(NewList(out...))
	case compiler.CONCAT_IN_PLACE:
		lists := ec.popN(int(in.Arg))
		base, ok := Deref(ec.pop()).(*List)
		if !ok {
			return false, nil, newErr(ec, TypeError, "CONCAT_IN_PLACE target is not a list")
		}
		for _, lv := range lists {
			l, ok := Deref(lv).(*List)
			if !ok {
				return false, nil, newErr(ec, TypeError, "CONCAT_IN_PLACE operand is not a list")
			}
			base.Items = append(base.Items, l.Items...)
		}

	case compiler.BUILTIN:
		if int(in.Arg) >= len(vm.Builtins) {
			return false, nil, newErr(ec, ModuleError, "no such built-in %d", in.Arg)
		}
		ec.push(vm.Builtins[in.Arg])

	case compiler.PLUGIN:
		v, lerr := vm.loadConst(ec, in.Arg)
		if lerr != nil {
			return false, nil, lerr
		}
		path, ok := v.(ArkString)
		if !ok {
			return false, nil, newErr(ec, TypeError, "PLUGIN value-table entry is not a string path")
		}
		base := len(vm.Builtins)
		plugin, perr := vm.LoadPlugin(string(path), string(path))
		if perr != nil {
			return false, nil, perr
		}
		for _, proc := range plugin.Builtins {
			vm.Builtins = append(vm.Builtins, proc)
		}
		ec.push(Number(base))

	case compiler.CALL:
		return vm.call(ec, int(in.Arg))

	case compiler.RET:
		v := ec.pop()
		ec.popFrame()
		saved := ec.pop() // the InstPtr CALL pushed
		ip, ok := saved.(InstPtr)
		if !ok {
			return false, nil, newErr(ec, VMInvariantError, "RET found no saved instruction pointer on the stack")
		}
		ec.IP, ec.PP, ec.FC = ip.IP, ip.PP, ip.FC
		return true, v, nil

	case compiler.HALT:
		vm.Halt()
		return true, Nil, nil

	case compiler.INCREMENT, compiler.DECREMENT:
		cur, ok := ec.scope().Lookup(in.Arg)
		if !ok {
			return false, nil, newErr(ec, ScopeError, "undefined symbol id %d", in.Arg)
		}
		n, ok := Deref(cur).(Number)
		if !ok {
			return false, nil, newErr(ec, TypeError, "%s operand is not a number", in.Op)
		}
		if in.Op == compiler.INCREMENT {
			n++
		} else {
			n--
		}
		ec.push(n)

	default:
		if v, verr := vm.operator(ec, in); verr != nil || v != nil {
			if verr != nil {
				return false, nil, verr
			}
			ec.push(v)
			return false, nil, nil
		}
		return false, nil, newErr(ec, VMInvariantError, "unimplemented opcode %s", in.Op)
	}
	return false, nil, nil
}

func (vm *VM) loadConst(ec *ExecutionContext, idx uint16) (Value, error) {
	if int(idx) >= len(vm.Program.Values) {
		return nil, newErr(ec, VMInvariantError, "value-table index %d out of range", idx)
	}
	cv := vm.Program.Values[idx]
	switch cv.Kind {
	case compiler.ValNumber:
		return Number(cv.Number), nil
	case compiler.ValString:
		return ArkString(cv.Str), nil
	case compiler.ValFunction:
		return PageAddr(cv.Page), nil
	default:
		return nil, newErr(ec, VMInvariantError, "unknown value-table entry kind")
	}
}

func getField(ec *ExecutionContext, closureV Value, id uint16) (Value, error) {
	cl, ok := Deref(closureV).(*Closure)
	if !ok {
		return nil, newErr(ec, TypeError, "GET_FIELD operand is not a closure")
	}
	v, ok := cl.Scope.Lookup(id)
	if !ok {
		return nil, newErr(ec, ScopeError, "closure scope has no symbol id %d", id)
	}
	return v, nil
}

// call implements spec.md §4.9's calling convention: args already pushed
// left-to-right, then the callee; CALL pops the callee, then the top
// argc cells are the arguments.
func (vm *VM) call(ec *ExecutionContext, argc int) (bool, Value, error) {
	callee := ec.pop()

	switch fn := Deref(callee).(type) {
	case *CProc:
		args := ec.popN(argc)
		res, err := fn.Fn(args, vm)
		if err != nil {
			return false, nil, err
		}
		ec.push(res)
		return false, nil, nil

	case PageAddr:
		return false, nil, vm.enterFrame(ec, uint16(fn), nil, argc)

	case *Closure:
		return false, nil, vm.enterFrame(ec, fn.PageAddr, fn.Scope, argc)

	default:
		return false, nil, newErr(ec, TypeError, "value of type %s is not callable", callee.Type())
	}
}

// enterFrame pushes a new scope (parented on parentScope — a Closure's
// captured scope, or nil for a bare PageAddr call), binds the argument
// window into the page's declared parameter symbol ids, saves the
// caller's (ip, pp, fc) on the stack, and jumps.
func (vm *VM) enterFrame(ec *ExecutionContext, page uint16, parentScope *Scope, argc int) error {
	if int(page) >= len(vm.Program.Pages) {
		return newErr(ec, VMInvariantError, "call target page %d does not exist", page)
	}
	if ec.MaxRecursion > 0 && len(ec.Locals) >= ec.MaxRecursion {
		return newErr(ec, VMInvariantError, "max recursion depth %d exceeded", ec.MaxRecursion)
	}
	args := ec.popN(argc)

	saved := InstPtr{IP: ec.IP, PP: ec.PP, FC: ec.FC}
	ec.push(saved)

	ec.pushFrame(parentScope)
	params := vm.pageParams(page)
	variadic := int(page) < len(vm.Program.PageVariadic) && vm.Program.PageVariadic[page]
	switch {
	case variadic && len(args) < len(params)-1:
		return newErr(ec, ArityError, "page %d expected at least %d arguments, got %d", page, len(params)-1, len(args))
	case !variadic && len(args) != len(params):
		return newErr(ec, ArityError, "page %d expected %d arguments, got %d", page, len(params), len(args))
	}
	for i, sym := range params {
		if variadic && i == len(params)-1 {
			ec.scope().Bind(sym, NewList(args[i:]...))
			break
		}
		ec.scope().Bind(sym, args[i])
	}

	ec.IP, ec.PP = 0, page
	return nil
}

// Call invokes callee with args from native Go code — the synchronous half
// of Spawn, which is its only caller in this module. Unlike the bytecode CALL opcode, args
// reach Call as a plain slice rather than already sitting on ec's value
// stack. A PageAddr/Closure callee runs to completion before Call returns,
// by reentering Run with ec's frame count raised past the new frame (Run's
// baseFC/ec.FC check already stops exactly there for the top-level RET
// case, which is what a nested invocation from a built-in also needs).
func (vm *VM) Call(ec *ExecutionContext, callee Value, args []Value) (Value, error) {
	switch fn := Deref(callee).(type) {
	case *CProc:
		return fn.Fn(args, vm)
	case PageAddr:
		return vm.invoke(ec, uint16(fn), nil, args)
	case *Closure:
		return vm.invoke(ec, fn.PageAddr, fn.Scope, args)
	default:
		return nil, newErr(ec, TypeError, "value of type %s is not callable", callee.Type())
	}
}

func (vm *VM) invoke(ec *ExecutionContext, page uint16, parentScope *Scope, args []Value) (Value, error) {
	for _, a := range args {
		ec.push(a)
	}
	if err := vm.enterFrame(ec, page, parentScope, len(args)); err != nil {
		return nil, err
	}
	return vm.Run(ec)
}

// Spawn runs callee with args on a brand new ExecutionContext, on its own
// goroutine, and returns immediately with a Future for the result — the
// secondary context spec.md §5 describes `async` spawning, reading the
// same immutable Program the primary context does. lang/builtins' `async`
// built-in is the only intended caller.
func (vm *VM) Spawn(callee Value, args []Value) *Future {
	future := NewFuture()
	go func() {
		ec := NewExecutionContext()
		v, err := vm.Call(ec, callee, args)
		future.Resolve(v, err)
	}()
	return future
}

// pageParams reports the symbol ids enterFrame should bind the argument
// window to, in order — lang/compiler records these directly in
// Program.PageParams at compile time rather than this VM discovering them
// by scanning the page (see DESIGN.md's lang/compiler entry on why a
// Symbol/Spread parameter needs no binding instruction of its own).
func (vm *VM) pageParams(page uint16) []uint16 {
	return vm.Program.PageParams[page]
}

func (vm *VM) operator(ec *ExecutionContext, in compiler.Instr) (Value, error) {
	return evalOperator(ec, in.Op, int(in.Arg))
}
