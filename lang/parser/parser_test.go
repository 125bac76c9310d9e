package parser

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, _, err := ParseFile("test.ark", []byte(src))
	require.NoError(t, err)
	return root
}

func TestParseRootIsBegin(t *testing.T) {
	root := mustParse(t, `(let x 1)`)
	require.True(t, root.IsCallTo("begin"))
	require.Len(t, root.Tail(), 1)
}

func TestParseLet(t *testing.T) {
	root := mustParse(t, `(let x 1)`)
	form := root.Tail()[0]
	require.True(t, form.IsCallTo("let"))
	require.Equal(t, "x", form.Children[1].Str)
	require.Equal(t, ast.Number, form.Children[2].Kind)
}

func TestParseBraceSugar(t *testing.T) {
	root := mustParse(t, `{ (let x 1) (let y 2) }`)
	form := root.Tail()[0]
	require.True(t, form.IsCallTo("begin"))
	require.Len(t, form.Tail(), 2)
}

func TestParseBracketSugar(t *testing.T) {
	root := mustParse(t, `(let xs [1 2 3])`)
	form := root.Tail()[0]
	list := form.Children[2]
	require.True(t, list.IsCallTo("list"))
	require.Len(t, list.Tail(), 3)
}

func TestParseFun(t *testing.T) {
	root := mustParse(t, `(fun (a b) (+ a b))`)
	form := root.Tail()[0]
	require.True(t, form.IsCallTo("fun"))
	args := form.Children[1]
	require.Equal(t, ast.List, args.Kind)
	require.Len(t, args.Children, 2)
}

func TestParseMacroDefinition(t *testing.T) {
	root := mustParse(t, `($ double (x) (* x 2))`)
	form := root.Tail()[0]
	require.Equal(t, ast.Macro, form.Kind)
	require.Equal(t, "double", form.Children[0].Str)
}

func TestParseCaptureSpreadField(t *testing.T) {
	root := mustParse(t, `(fun (&x y...) (.f x))`)
	form := root.Tail()[0]
	args := form.Children[1]
	require.Equal(t, ast.Capture, args.Children[0].Kind)
	require.Equal(t, ast.Spread, args.Children[1].Kind)
	body := form.Children[2]
	require.Equal(t, ast.Field, body.Children[0].Kind)
}

func TestParseImportBasic(t *testing.T) {
	_, imports, err := ParseFile("test.ark", []byte(`(import std.list)`))
	require.NoError(t, err)
	require.Len(t, imports, 1)
	require.Equal(t, []string{"std", "list"}, imports[0].Segments)
	require.True(t, imports[0].WithPrefix)
	require.Empty(t, imports[0].Symbols)
}

func TestParseImportGlob(t *testing.T) {
	_, imports, err := ParseFile("test.ark", []byte(`(import std.list.*)`))
	require.NoError(t, err)
	require.False(t, imports[0].WithPrefix)
	require.Empty(t, imports[0].Symbols)
}

func TestParseImportSelective(t *testing.T) {
	_, imports, err := ParseFile("test.ark", []byte(`(import std.list (map filter))`))
	require.NoError(t, err)
	require.Equal(t, []string{"map", "filter"}, imports[0].Symbols)
	require.False(t, imports[0].WithPrefix)
}

func TestParseUnclosedParenIsError(t *testing.T) {
	_, _, err := ParseFile("test.ark", []byte(`(let x 1`))
	require.Error(t, err)
	var cel CodeErrorList
	require.ErrorAs(t, err, &cel)
}

func TestParseIfShapeViolation(t *testing.T) {
	_, _, err := ParseFile("test.ark", []byte(`(if)`))
	require.Error(t, err)
}
