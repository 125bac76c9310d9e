package machine

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/compiler"
	"github.com/arkscript-lang/arkscript/lang/parser"
	"github.com/stretchr/testify/require"
)

// compileAndRun parses and compiles src — which must `(let result ...)` its
// answer, since a top-level form's value is discarded by Compile (only
// function bodies return a value via RET; top-level forms run for effect
// only, per lang/compiler's Compile) — wires the given built-ins (in
// registry order), runs the program, and returns the value bound to
// "result" in the top-level scope afterward.
func compileAndRun(t *testing.T, src string, builtins ...string) (Value, *VM) {
	t.Helper()
	root, _, err := parser.ParseFile("test.ark", []byte(src))
	require.NoError(t, err)

	known := make(map[string]uint16, len(builtins))
	for i, b := range builtins {
		known[b] = uint16(i)
	}
	prog, err := compiler.Compile(root, func(name string) (uint16, bool) {
		idx, ok := known[name]
		return idx, ok
	})
	require.NoError(t, err)

	procs := make([]*CProc, len(builtins))
	for i, name := range builtins {
		procs[i] = &CProc{Name: name}
	}

	vm := New(prog, procs)
	ec := NewExecutionContext()
	_, err = vm.Run(ec)
	require.NoError(t, err)

	var resultID uint16 = ^uint16(0)
	for i, s := range prog.Symbols {
		if s == "result" {
			resultID = uint16(i)
		}
	}
	require.NotEqual(t, ^uint16(0), resultID, "program never bound \"result\"")
	v, ok := ec.Locals[0].Lookup(resultID)
	require.True(t, ok, "\"result\" not found in top-level scope")
	return v, vm
}

func TestRunArithmetic(t *testing.T) {
	v, _ := compileAndRun(t, `(let result (+ 1 2 3))`)
	require.Equal(t, Number(6), v)
}

func TestRunLetAndSet(t *testing.T) {
	v, _ := compileAndRun(t, `
		(begin
			(let x 1)
			(set x (+ x 41))
			(let result x))
	`)
	require.Equal(t, Number(42), v)
}

func TestRunIfBranches(t *testing.T) {
	v, _ := compileAndRun(t, `(let result (if (> 2 1) "yes" "no"))`)
	require.Equal(t, ArkString("yes"), v)

	v, _ = compileAndRun(t, `(let result (if (> 1 2) "yes" "no"))`)
	require.Equal(t, ArkString("no"), v)
}

func TestRunWhileLoop(t *testing.T) {
	v, _ := compileAndRun(t, `
		(begin
			(mut i 0)
			(mut acc 0)
			(while (< i 5)
				(begin
					(set acc (+ acc i))
					(set i (+ i 1))))
			(let result acc))
	`)
	require.Equal(t, Number(0+1+2+3+4), v)
}

func TestRunFunctionCall(t *testing.T) {
	v, _ := compileAndRun(t, `
		(begin
			(let square (fun (n) (* n n)))
			(let result (square 7)))
	`)
	require.Equal(t, Number(49), v)
}

func TestRunClosureCapture(t *testing.T) {
	v, _ := compileAndRun(t, `
		(begin
			(let make-adder (fun (x) (fun (&x y) (+ x y))))
			(let add5 (make-adder 5))
			(let result (add5 10)))
	`)
	require.Equal(t, Number(15), v)
}

func TestRunListOperations(t *testing.T) {
	v, _ := compileAndRun(t, `(let result (len (append (list 1 2) 3)))`)
	require.Equal(t, Number(3), v)
}

func TestRunDivisionByZero(t *testing.T) {
	_, err := func() (Value, error) {
		root, _, err := parser.ParseFile("test.ark", []byte(`(/ 1 0)`))
		require.NoError(t, err)
		prog, err := compiler.Compile(root, nil)
		require.NoError(t, err)
		vm := New(prog, nil)
		return vm.Run(NewExecutionContext())
	}()
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, DivisionByZero, rerr.Kind)
}

func TestRunArityMismatch(t *testing.T) {
	root, _, err := parser.ParseFile("test.ark", []byte(`
		(begin
			(let f (fun (a b) (+ a b)))
			(f 1))
	`))
	require.NoError(t, err)
	prog, err := compiler.Compile(root, nil)
	require.NoError(t, err)
	vm := New(prog, nil)
	_, err = vm.Run(NewExecutionContext())
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, ArityError, rerr.Kind)
}

func TestRunScopeErrorOnUndefinedSymbol(t *testing.T) {
	root, _, err := parser.ParseFile("test.ark", []byte(`undeclared-name`))
	require.NoError(t, err)
	prog, err := compiler.Compile(root, nil)
	require.NoError(t, err)
	vm := New(prog, nil)
	_, err = vm.Run(NewExecutionContext())
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, ScopeError, rerr.Kind)
}

func TestTruthiness(t *testing.T) {
	require.True(t, Truthy(True))
	require.False(t, Truthy(False))
	require.False(t, Truthy(Nil))
	require.False(t, Truthy(NewList()))
	require.True(t, Truthy(NewList(Number(0))))
	require.True(t, Truthy(Number(0)))
}
