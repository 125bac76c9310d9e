package resolver

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/parser"
	"github.com/stretchr/testify/require"
)

func resolveSrc(t *testing.T, src string, isPredeclared, isUniversal NamePredicate) error {
	t.Helper()
	root, _, err := parser.ParseFile("test.ark", []byte(src))
	require.NoError(t, err)
	return Resolve(root, isPredeclared, isUniversal, nil)
}

func TestResolveLetThenUse(t *testing.T) {
	err := resolveSrc(t, `(let x 1) (print x)`, nil, func(n string) bool { return n == "print" })
	require.NoError(t, err)
}

func TestResolveUndefinedSymbol(t *testing.T) {
	err := resolveSrc(t, `(print y)`, nil, func(n string) bool { return n == "print" })
	require.Error(t, err)
}

func TestResolveUndefinedSymbolSuggestsNear(t *testing.T) {
	err := resolveSrc(t, `(let counter 1) (print countr)`, nil, func(n string) bool { return n == "print" })
	require.Error(t, err)
	require.Contains(t, err.Error(), `"counter"`)
}

func TestResolveRedeclarationInSameScope(t *testing.T) {
	err := resolveSrc(t, `(let x 1) (let x 2)`, nil, nil)
	require.Error(t, err)
}

func TestResolveSetOnImmutable(t *testing.T) {
	err := resolveSrc(t, `(let x 1) (set x 2)`, nil, nil)
	require.Error(t, err)
}

func TestResolveSetOnMutable(t *testing.T) {
	err := resolveSrc(t, `(mut x 1) (set x 2)`, nil, nil)
	require.NoError(t, err)
}

func TestResolveRecursiveFunction(t *testing.T) {
	err := resolveSrc(t, `(let fact (fun (n) (if n (fact n) n)))`, nil, nil)
	require.NoError(t, err)
}

func TestResolveFunParamsScoped(t *testing.T) {
	err := resolveSrc(t, `(let f (fun (a b) (+ a b)))`, nil, func(n string) bool { return n == "+" })
	require.NoError(t, err)
}

func TestResolveFunParamsNotVisibleOutside(t *testing.T) {
	err := resolveSrc(t, `(let f (fun (a) a)) (print a)`, nil, func(n string) bool { return n == "print" })
	require.Error(t, err)
}

func TestResolveNestedBeginScope(t *testing.T) {
	err := resolveSrc(t, `{ (let x 1) (print x) }`, nil, func(n string) bool { return n == "print" })
	require.NoError(t, err)
}

func TestResolvePredeclaredSymbol(t *testing.T) {
	err := resolveSrc(t, `(print 1)`, func(n string) bool { return n == "print" }, nil)
	require.NoError(t, err)
}
