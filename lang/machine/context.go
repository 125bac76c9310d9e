package machine

// defaultStackSize is the default value-stack capacity per
// ExecutionContext (spec.md §3: "a fixed-size value stack (default 8192
// slots)").
const defaultStackSize = 8192

// ExecutionContext is one VM thread (spec.md §3): the primary context
// drives the program from page 0; secondary contexts are spawned by
// `async` and read the same immutable program image.
//
// Grounded on the teacher's thread.go (one Thread per call stack) and
// frame.go (one Frame per active call), collapsed into a single struct
// because ArkScript's frames are implicit in sp/locals rather than
// separately allocated Frame values (spec.md §4.9).
type ExecutionContext struct {
	IP, PP uint16
	SP     int
	FC     int

	LastSymbol uint16

	Stack  []Value
	Locals []*Scope // one entry per active frame; Locals[FC] is the live scope

	// MaxRecursion bounds len(Locals); zero means unlimited. Set by a CLI
	// that read ARKSCRIPT_MAX_RECURSION (internal/maincmd's envConfig) —
	// NewExecutionContext leaves it unlimited since lang/machine itself has
	// no notion of a configured default.
	MaxRecursion int

	pendingDel []int // per-frame scope-deletion counter, indexed like Locals
	SavedScope *Scope
}

// NewExecutionContext returns a context ready to start executing at page
// 0, instruction 0, with a single top-level scope, a default-sized stack
// and no recursion limit.
func NewExecutionContext() *ExecutionContext {
	return NewExecutionContextWithLimits(defaultStackSize, 0)
}

// NewExecutionContextWithLimits is NewExecutionContext with an explicit
// value-stack size and recursion depth (0 for either means "use the
// package default" / "unlimited") — the entry point internal/maincmd uses
// once it has parsed ARKSCRIPT_MAX_STACK/ARKSCRIPT_MAX_RECURSION.
func NewExecutionContextWithLimits(stackSize, maxRecursion int) *ExecutionContext {
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}
	return &ExecutionContext{
		Stack:        make([]Value, stackSize),
		Locals:       []*Scope{NewScope(nil)},
		pendingDel:   []int{0},
		MaxRecursion: maxRecursion,
	}
}

func (ec *ExecutionContext) push(v Value) {
	if ec.SP >= len(ec.Stack) {
		panic("machine: value stack overflow")
	}
	ec.Stack[ec.SP] = v
	ec.SP++
}

func (ec *ExecutionContext) pop() Value {
	ec.SP--
	v := ec.Stack[ec.SP]
	ec.Stack[ec.SP] = nil
	return v
}

// popN pops the top n values, returning them in original (bottom-to-top)
// order — used by LIST/APPEND/CONCAT/CALL.
func (ec *ExecutionContext) popN(n int) []Value {
	out := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = ec.pop()
	}
	return out
}

func (ec *ExecutionContext) scope() *Scope {
	return ec.Locals[ec.FC]
}

// pushFrame enters a new call frame with scope as its locals, seeded from
// parent for the scope chain (a closure's captured scope for Closure
// calls, nil for a fresh top-level call).
func (ec *ExecutionContext) pushFrame(parent *Scope) {
	ec.Locals = append(ec.Locals, NewScope(parent))
	ec.pendingDel = append(ec.pendingDel, 0)
	ec.FC++
}

// popFrame discards the current frame's scope (RET's "drop the scope(s)
// this frame created").
func (ec *ExecutionContext) popFrame() {
	ec.Locals = ec.Locals[:len(ec.Locals)-1]
	ec.pendingDel = ec.pendingDel[:len(ec.pendingDel)-1]
	ec.FC--
}
