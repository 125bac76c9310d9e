package builtins_test

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/builtins"
	"github.com/arkscript-lang/arkscript/lang/compiler"
	"github.com/arkscript-lang/arkscript/lang/machine"
	"github.com/arkscript-lang/arkscript/lang/parser"
	"github.com/stretchr/testify/require"
)

// run parses and compiles src against the real global Registry (rather than
// machine_test.go's hand-built CProc stubs), runs it, and returns the value
// bound to "result" afterward — the same contract every other package's
// compileAndRun helper follows, re-grounded here to exercise the registry
// end to end instead of dummy built-ins.
func run(t *testing.T, src string) machine.Value {
	t.Helper()
	root, _, err := parser.ParseFile("test.ark", []byte(src))
	require.NoError(t, err)

	prog, err := compiler.Compile(root, builtins.Registry.Index)
	require.NoError(t, err)

	vm := machine.New(prog, builtins.Registry.CProcs())
	ec := machine.NewExecutionContext()
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
	require.True(t, ok)
	return v
}

func TestAsyncAwaitRoundTrip(t *testing.T) {
	v := run(t, `
		(begin
			(let f (fun (x) (* x 2)))
			(let a (async f 21))
			(let result (await a)))
	`)
	require.Equal(t, machine.Number(42), v)
}

func TestListBuiltins(t *testing.T) {
	v := run(t, `(let result (list:reverse (list 1 2 3)))`)
	require.Equal(t, "[3 2 1]", v.String())

	v = run(t, `(let result (list:find (list 1 2 3) 2))`)
	require.Equal(t, machine.Number(1), v)

	v = run(t, `(let result (list:sort (list 3 1 2)))`)
	require.Equal(t, "[1 2 3]", v.String())
}

func TestStringBuiltins(t *testing.T) {
	v := run(t, `(let result (str:format "{} and {}" "a" "b"))`)
	require.Equal(t, machine.ArkString("a and b"), v)

	v = run(t, `(let result (str:ord "A"))`)
	require.Equal(t, machine.Number(65), v)
}

func TestMathBuiltins(t *testing.T) {
	v := run(t, `(let result (math:floor 3.7))`)
	require.Equal(t, machine.Number(3), v)

	v = run(t, `(let result (math:pi))`)
	require.InDelta(t, 3.14159, float64(v.(machine.Number)), 0.001)
}

func TestContractMismatchReportsAcceptedShapes(t *testing.T) {
	_, err := func() (machine.Value, error) {
		root, _, err := parser.ParseFile("test.ark", []byte(`(list:reverse "not a list")`))
		require.NoError(t, err)
		prog, err := compiler.Compile(root, builtins.Registry.Index)
		require.NoError(t, err)
		vm := machine.New(prog, builtins.Registry.CProcs())
		return vm.Run(machine.NewExecutionContext())
	}()
	require.Error(t, err)
	rerr, ok := err.(*machine.RuntimeError)
	require.True(t, ok)
	require.Equal(t, machine.TypeError, rerr.Kind)
}
