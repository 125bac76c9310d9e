// Package builtins is the native function registry and Contract type
// checker (spec.md §4.10's plugin ABI, extended to cover the language's own
// built-ins the same way): every built-in ArkScript can call — print, len,
// append, the string/io/math/sys/time helpers, and the async/await pair —
// registers itself here under a stable name and index, in the same style
// the teacher exposes its Universe map (lang/machine/universe.go), except a
// built-in here also carries the Contract(s) TypeChecker-style diagnostics
// are generated from (grounded on original_source/include/Ark/Builtins and
// original_source/include/Ark/TypeChecker.hpp).
package builtins

import (
	"fmt"
	"strings"

	"github.com/arkscript-lang/arkscript/lang/machine"
)

// Typedef names one accepted argument slot within a Contract: the machine
// Value.Type() strings it accepts ("any" matches every type), and whether
// it is the contract's trailing variadic slot.
type Typedef struct {
	Name     string
	Types    []string
	Variadic bool
}

func (t Typedef) matches(v machine.Value) bool {
	if len(t.Types) == 0 {
		return true
	}
	got := machine.Deref(v).Type()
	for _, want := range t.Types {
		if want == "any" || want == got {
			return true
		}
	}
	return false
}

func (t Typedef) String() string {
	if t.Variadic {
		return t.Name + "..."
	}
	return t.Name
}

// Contract is one accepted call shape for a built-in (original_source's
// Ark::types::Contract): a fixed prefix of typed arguments, optionally
// ending in a variadic slot that absorbs any extra arguments.
type Contract struct {
	Arguments []Typedef
}

// Check reports whether args satisfies c.
func (c Contract) Check(args []machine.Value) bool {
	n := len(c.Arguments)
	if n == 0 {
		return len(args) == 0
	}
	last := c.Arguments[n-1]
	switch {
	case last.Variadic && len(args) < n-1:
		return false
	case !last.Variadic && len(args) != n:
		return false
	}
	for i, a := range args {
		td := last
		if i < n-1 || !last.Variadic {
			if i >= n {
				return false
			}
			td = c.Arguments[i]
		}
		if !td.matches(a) {
			return false
		}
	}
	return true
}

func (c Contract) String() string {
	names := make([]string, len(c.Arguments))
	for i, t := range c.Arguments {
		names[i] = t.String()
	}
	return "(" + strings.Join(names, " ") + ")"
}

// Builtin is one registered native function: its Contracts gate which
// argument shapes reach Fn, generating a diagnostic (generateError) instead
// of a confusing TypeError deep inside Fn when none match.
type Builtin struct {
	Name      string
	Fn        machine.NativeFunc
	Contracts []Contract
}

// registry is the concrete type behind the package-level Registry
// singleton; kept unexported so callers only ever see it through Registry.
type registry struct {
	order []string
	index map[string]uint16
	table map[string]*Builtin
}

// Registry is the global built-in registry, populated at package-init time
// by this package's per-concern files (list.go, io.go, string.go, math.go,
// sys.go, async.go; time is registered in sys.go). lang/compiler.Compile consults Registry.Index
// through the BuiltinIndex callback; CLI entry points call Registry.CProcs
// to build the []*machine.CProc a VM is constructed with.
var Registry = &registry{
	index: make(map[string]uint16),
	table: make(map[string]*Builtin),
}

// Register adds name to the registry, wrapping fn so that, when contracts
// is non-empty, every call is checked against it first (spec.md §4.10's
// Contract type checker). Register panics on a duplicate name: that is a
// programming error in this package, never a condition a caller can hit at
// runtime.
func (r *registry) Register(name string, fn machine.NativeFunc, contracts ...Contract) {
	if _, exists := r.table[name]; exists {
		panic("builtins: duplicate registration of " + name)
	}
	r.table[name] = &Builtin{Name: name, Fn: wrap(name, fn, contracts), Contracts: contracts}
	r.index[name] = uint16(len(r.order))
	r.order = append(r.order, name)
}

// Index implements compiler.BuiltinIndex: it looks up name's registry slot
// to emit at the BUILTIN opcode's Arg.
func (r *registry) Index(name string) (uint16, bool) {
	idx, ok := r.index[name]
	return idx, ok
}

// Lookup returns the Builtin registered under name, if any.
func (r *registry) Lookup(name string) (*Builtin, bool) {
	b, ok := r.table[name]
	return b, ok
}

// Names returns every registered name, in registration order (the same
// order CProcs uses, and so the same order Index's indices refer to).
func (r *registry) Names() []string {
	return append([]string(nil), r.order...)
}

// CProcs returns the registered built-ins as a []*machine.CProc in
// registration order — the slice to pass to machine.New so BUILTIN's Arg
// (assigned by Index at compile time) indexes the matching native
// function at run time.
func (r *registry) CProcs() []*machine.CProc {
	out := make([]*machine.CProc, len(r.order))
	for i, name := range r.order {
		b := r.table[name]
		out[i] = &machine.CProc{Name: b.Name, Fn: b.Fn}
	}
	return out
}

func wrap(name string, fn machine.NativeFunc, contracts []Contract) machine.NativeFunc {
	if len(contracts) == 0 {
		return fn
	}
	return func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
		for _, c := range contracts {
			if c.Check(args) {
				return fn(args, vm)
			}
		}
		return nil, generateError(name, contracts, args)
	}
}

// generateError reports that no contract registered for funcname matched
// args, listing both what was given and every shape that would have been
// accepted (original_source's Ark::types::generateError).
func generateError(funcname string, contracts []Contract, args []machine.Value) error {
	given := make([]string, len(args))
	for i, a := range args {
		given[i] = machine.Deref(a).Type()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: no contract matched arguments (%s)\naccepted:\n", funcname, strings.Join(given, " "))
	for _, c := range contracts {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	return machine.NewRuntimeError(machine.TypeError, "%s", b.String())
}
