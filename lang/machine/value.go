// Package machine implements the ArkScript virtual machine: the runtime
// Value representation (spec.md §3) and the single dispatch loop that
// executes a lang/compiler.Program (spec.md §4.9).
//
// Grounded on the teacher's lang/machine: kept the package doc convention
// ("Value is the interface every runtime value implements"), dropped the
// Starlark-derived open extensibility surface (HasBinary/HasAttrs/
// HasMetamap/Iterable/...), since spec.md §3 closes the Value union to
// exactly Number/String/PageAddr/CProc/List/Closure/User/Reference/
// InstPtr/Future/Nil/True/False/Undefined rather than leaving it open for
// embedder-defined types the way Starlark does. Future is the one addition
// beyond spec.md §3's list, required by §5's concurrency model (the handle
// `async` returns and `await` consumes).
package machine

import "fmt"

// Value is the interface implemented by every runtime value. It is a
// closed union by convention (spec.md §3): the only permitted
// implementations are the concrete types below.
type Value interface {
	String() string
	Type() string
}

// Number is an ArkScript double.
type Number float64

func (n Number) String() string { return fmt.Sprintf("%g", float64(n)) }
func (Number) Type() string     { return "number" }

// String is an ArkScript UTF-8 string value. Named ArkString to avoid
// colliding with the String() method every Value implements.
type ArkString string

func (s ArkString) String() string { return string(s) }
func (ArkString) Type() string     { return "string" }

// PageAddr is a bare function entry point, pushed by LOAD_CONST on a
// ValFunction constant when no SAVE_ENV precedes it; after SAVE_ENV,
// LOAD_CONST pushes a Closure instead.
type PageAddr uint16

func (p PageAddr) String() string { return fmt.Sprintf("page@%d", uint16(p)) }
func (PageAddr) Type() string     { return "function" }

// NativeFunc is a built-in's Go implementation: spec.md §4.10's
// "(args: &mut [Value], vm: &mut VM) -> Value" signature.
type NativeFunc func(args []Value, vm *VM) (Value, error)

// CProc is a native (built-in or plugin-provided) callable.
type CProc struct {
	Name string
	Fn   NativeFunc
}

func (c *CProc) String() string { return fmt.Sprintf("<built-in %s>", c.Name) }
func (*CProc) Type() string     { return "function" }

// List is ArkScript's mutable, reference-semantics list value. A plain
// Go slice cannot implement HasSetIndex-by-reference; List is always
// handled behind a pointer so in-place opcodes (APPEND_IN_PLACE, ...)
// observe the mutation through every alias.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List { return &List{Items: items} }

func (l *List) String() string {
	s := "["
	for i, v := range l.Items {
		if i > 0 {
			s += " "
		}
		s += v.String()
	}
	return s + "]"
}
func (*List) Type() string { return "list" }

// Closure is a function value bound to a captured Scope (spec.md §3):
// "{scope: shared-ref to Scope, page_addr}". Equality requires identical
// page address and scopes that Scope.Equal accepts (same symbol ids in the
// same order; bound values are not compared).
type Closure struct {
	Scope    *Scope
	PageAddr uint16
}

func (c *Closure) String() string { return fmt.Sprintf("<closure@%d>", c.PageAddr) }
func (*Closure) Type() string     { return "closure" }

// User wraps a native Go value registered by a plugin (spec.md §4.10's
// plugin ABI and SPEC_FULL.md's supplemented UserType feature).
type User struct {
	TypeName string
	Data     any
}

func (u *User) String() string { return fmt.Sprintf("<%s>", u.TypeName) }
func (u *User) Type() string   { return u.TypeName }

// Reference is an indirection to another Value's storage cell. Operators,
// the list opcodes and CALL accept one through Deref. Nothing in this VM
// creates one: LOAD_SYMBOL pushes the bound value itself, and a List is
// already shared by pointer, so the *_IN_PLACE opcodes reach every alias
// without it.
type Reference struct {
	Target *Value
}

func (r *Reference) String() string { return (*r.Target).String() }
func (r *Reference) Type() string   { return (*r.Target).Type() }

// Deref follows v one level if it is a Reference, otherwise returns v
// unchanged.
func Deref(v Value) Value {
	if r, ok := v.(*Reference); ok {
		return *r.Target
	}
	return v
}

// InstPtr is a saved (ip, pp) pair pushed by CALL so RET can restore the
// caller's position.
type InstPtr struct {
	IP, PP uint16
	FC     int
}

func (p InstPtr) String() string { return fmt.Sprintf("<ip=%d pp=%d>", p.IP, p.PP) }
func (InstPtr) Type() string     { return "instptr" }

// sentinel is the shared representation for Nil/True/False/Undefined:
// values with exactly one instance and no payload.
type sentinel string

func (s sentinel) String() string { return string(s) }
func (s sentinel) Type() string   { return string(s) }

// The four ArkScript sentinel values (spec.md §3). Undefined must never
// be observed by user code; it exists only as an internal placeholder
// (e.g. an uninitialized value-stack slot).
var (
	Nil       Value = sentinel("nil")
	True      Value = sentinel("true")
	False     Value = sentinel("false")
	Undefined Value = sentinel("undefined")
)

// Future is the handle `async` returns: a result that a secondary
// ExecutionContext (spec.md §5) is computing on its own goroutine, and that
// `await` blocks on. Grounded on original_source/include/Ark/VM/Future.hpp,
// which wraps a std::future the same way; done is closed exactly once, by
// Resolve, so Await can block on it with a plain channel receive rather
// than a condition variable.
type Future struct {
	done chan struct{}
	val  Value
	err  error
}

// NewFuture returns an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve records fn's outcome and wakes every Await call waiting on f. It
// must be called exactly once.
func (f *Future) Resolve(v Value, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Await blocks until f is resolved and returns its outcome.
func (f *Future) Await() (Value, error) {
	<-f.done
	return f.val, f.err
}

func (f *Future) String() string { return "<future>" }
func (*Future) Type() string     { return "future" }

// Bool converts a Go bool to the True/False sentinel.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Truthy implements spec.md §4.4's truthiness rule, extended uniformly to
// runtime values: false, nil and the empty list are false; everything
// else is true.
func Truthy(v Value) bool {
	switch v := Deref(v).(type) {
	case sentinel:
		return v != "false" && v != "nil"
	case *List:
		return len(v.Items) > 0
	default:
		return true
	}
}
