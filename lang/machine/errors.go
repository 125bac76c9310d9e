package machine

import "fmt"

// ErrorKind enumerates the runtime error taxonomy (spec.md §7/§4.9).
type ErrorKind int

const (
	TypeError ErrorKind = iota
	IndexError
	ArityError
	ScopeError
	ModuleError
	DivisionByZero
	AssertionError
	VMInvariantError
)

var errorKindNames = [...]string{
	TypeError: "type error", IndexError: "index error", ArityError: "arity error",
	ScopeError: "scope error", ModuleError: "module error",
	DivisionByZero: "division by zero", AssertionError: "assertion failed",
	VMInvariantError: "vm invariant breach",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "unknown error"
}

// RuntimeError is the error type raised by the dispatch loop and by
// built-ins (spec.md §7's taxonomy, collapsed to one error type tagged by
// Kind rather than a class hierarchy — see DESIGN.md's Open Question
// decision on the Error/TypeError split).
type RuntimeError struct {
	Kind ErrorKind
	Msg  string
	IP   uint16
	PP   uint16
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at page %d, instruction %d: %s", e.Kind, e.PP, e.IP, e.Msg)
}

func newErr(ec *ExecutionContext, kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...), IP: ec.IP, PP: ec.PP}
}

// NewRuntimeError builds a RuntimeError with no instruction-pointer
// context, for built-ins (lang/builtins) that raise diagnostics outside of
// the dispatch loop's step function and so have no ExecutionContext to hand
// newErr.
func NewRuntimeError(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
