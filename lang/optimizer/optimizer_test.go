package optimizer

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

func TestOptimizeRemovesUnusedBinding(t *testing.T) {
	root := mustParse(t, `(let unused 1) (print 2)`)
	out := Optimize(root)
	require.Len(t, out.Tail(), 1)
	require.True(t, out.Tail()[0].IsCallTo("print"))
}

func TestOptimizeInlinesSingleReferenceBinding(t *testing.T) {
	root := mustParse(t, `(let x 1) (print x)`)
	out := Optimize(root)
	require.Len(t, out.Tail(), 1)
	call := out.Tail()[0]
	require.True(t, call.IsCallTo("print"))
	require.Equal(t, ast.Number, call.Children[1].Kind)
	require.Equal(t, float64(1), call.Children[1].Num)
}

func TestOptimizeKeepsMultiReferenceBinding(t *testing.T) {
	root := mustParse(t, `(let x 1) (print x) (print x)`)
	out := Optimize(root)
	require.Len(t, out.Tail(), 3)
}

func TestOptimizeKeepsListInitializer(t *testing.T) {
	root := mustParse(t, `(let f (fun (a) a))`)
	out := Optimize(root)
	require.Len(t, out.Tail(), 1)
}

func TestOptimizeRecursesIntoNestedBegin(t *testing.T) {
	root := mustParse(t, `{ (let unused 1) (print 2) }`)
	out := Optimize(root)
	block := out.Tail()[0]
	require.Len(t, block.Tail(), 1)
	require.True(t, block.Tail()[0].IsCallTo("print"))
}
