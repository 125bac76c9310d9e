package macro

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/arkscript-lang/arkscript/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, _, err := parser.ParseFile("test.ark", []byte(src))
	require.NoError(t, err)
	return root
}

func TestExpandSymbolMacro(t *testing.T) {
	root := mustParse(t, `(begin ($ answer 42) (let x answer))`)
	out, err := Expand(root)
	require.NoError(t, err)

	// the source's own (begin …) stays nested under the parser's root begin
	form := out.Tail()[0].Tail()[0]
	require.True(t, form.IsCallTo("let"))
	require.Equal(t, ast.Number, form.Children[2].Kind)
	require.Equal(t, float64(42), form.Children[2].Num)
}

func TestExpandFunctionMacro(t *testing.T) {
	root := mustParse(t, `(begin ($ double (x) (* x 2)) (let y (double 5)))`)
	out, err := Expand(root)
	require.NoError(t, err)

	form := out.Tail()[0].Tail()[0]
	call := form.Children[2]
	require.True(t, call.IsCallTo("*"))
	require.Equal(t, float64(5), call.Children[1].Num)
	require.Equal(t, float64(2), call.Children[2].Num)
}

func TestExpandConditionalMacroTrue(t *testing.T) {
	root := mustParse(t, `(begin ($ if true (let x 1) (let x 2)))`)
	out, err := Expand(root)
	require.NoError(t, err)
	form := out.Tail()[0].Tail()[0]
	require.True(t, form.IsCallTo("let"))
	require.Equal(t, float64(1), form.Children[2].Num)
}

func TestExpandConditionalMacroFalse(t *testing.T) {
	root := mustParse(t, `(begin ($ if false (let x 1) (let x 2)))`)
	out, err := Expand(root)
	require.NoError(t, err)
	form := out.Tail()[0].Tail()[0]
	require.Equal(t, float64(2), form.Children[2].Num)
}

func TestExpandSymcat(t *testing.T) {
	root := mustParse(t, `(begin ($symcat foo bar))`)
	out, err := Expand(root)
	require.NoError(t, err)
	require.Equal(t, ast.Symbol, out.Tail()[0].Tail()[0].Kind)
	require.Equal(t, "foobar", out.Tail()[0].Tail()[0].Str)
}

func TestExpandRepr(t *testing.T) {
	root := mustParse(t, `(begin ($repr (+ 1 2)))`)
	out, err := Expand(root)
	require.NoError(t, err)
	require.Equal(t, ast.String, out.Tail()[0].Tail()[0].Kind)
	require.Equal(t, "(+ 1 2)", out.Tail()[0].Tail()[0].Str)
}

func TestExpandArgcount(t *testing.T) {
	root := mustParse(t, `(begin (let add (fun (a b) (+ a b))) ($argcount add))`)
	out, err := Expand(root)
	require.NoError(t, err)
	require.Equal(t, ast.Number, out.Tail()[0].Tail()[1].Kind)
	require.Equal(t, float64(2), out.Tail()[0].Tail()[1].Num)
}

func TestExpandFunctionMacroSpread(t *testing.T) {
	root := mustParse(t, `(begin ($ wrap (first rest...) (list first rest)) (let z (wrap 1 2 3)))`)
	out, err := Expand(root)
	require.NoError(t, err)
	form := out.Tail()[0].Tail()[0]
	call := form.Children[2]
	require.True(t, call.IsCallTo("list"))
	require.Equal(t, float64(1), call.Children[1].Num)
	rest := call.Children[2]
	require.True(t, rest.IsCallTo("list"))
	require.Len(t, rest.Tail(), 2)
}

func TestExpandDepthLimitError(t *testing.T) {
	root := mustParse(t, `(begin ($ loop (loop)) loop)`)
	_, err := Expand(root)
	require.Error(t, err)
}
