package compiler

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/arkscript-lang/arkscript/lang/parser"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string, builtins ...string) *Program {
	t.Helper()
	root, _, err := parser.ParseFile("test.ark", []byte(src))
	require.NoError(t, err)

	known := make(map[string]uint16, len(builtins))
	for i, b := range builtins {
		known[b] = uint16(i)
	}
	prog, err := Compile(root, func(name string) (uint16, bool) {
		idx, ok := known[name]
		return idx, ok
	})
	require.NoError(t, err)
	return prog
}

func TestCompileLetStoresSymbol(t *testing.T) {
	prog := compileSrc(t, `(let x 1)`)
	require.Len(t, prog.Pages, 1)
	require.Contains(t, prog.Symbols, "x")

	var sawLet bool
	for _, in := range prog.Pages[0] {
		if in.Op == LET {
			sawLet = true
		}
	}
	require.True(t, sawLet)
}

func TestCompileArithmeticUsesOperatorOpcode(t *testing.T) {
	prog := compileSrc(t, `(+ 1 2)`)
	var sawAdd bool
	for _, in := range prog.Pages[0] {
		if in.Op == ADD {
			sawAdd = true
		}
	}
	require.True(t, sawAdd)
}

func TestCompileCallUsesBuiltinOpcode(t *testing.T) {
	prog := compileSrc(t, `(print 1)`, "print")
	var sawBuiltin, sawCall bool
	for _, in := range prog.Pages[0] {
		switch in.Op {
		case BUILTIN:
			sawBuiltin = true
		case CALL:
			sawCall = true
		}
	}
	require.True(t, sawBuiltin)
	require.True(t, sawCall)
}

func TestCompileFunCreatesOwnPage(t *testing.T) {
	prog := compileSrc(t, `(let f (fun (n) (+ n 1)))`)
	require.Len(t, prog.Pages, 2, "main page plus one function page")

	var sawFuncConst bool
	for _, v := range prog.Values {
		if v.Kind == ValFunction && v.Page == 1 {
			sawFuncConst = true
		}
	}
	require.True(t, sawFuncConst)
}

func TestCompileIfBranchesToLabels(t *testing.T) {
	prog := compileSrc(t, `(if (+ 1 2) 10 20)`)
	var sawCondJump bool
	for _, in := range prog.Pages[0] {
		if in.Op == POP_JUMP_IF_FALSE {
			sawCondJump = true
		}
	}
	require.True(t, sawCondJump)
}

func TestCompileRejectsUnexpandedMacro(t *testing.T) {
	defer func() {
		require.NotNil(t, recover(), "compiling a raw Macro node must panic: it signals an internal pipeline-ordering bug, not user input")
	}()
	n := ast.NewList("t", 1, 1, ast.NewKeyword("t", 1, 1, "begin"), &ast.Node{Kind: ast.Macro, Filename: "t", Line: 1, Col: 1})
	_, _ = Compile(n, nil)
}

func TestCompilePeepholeFusesLoadConstStore(t *testing.T) {
	prog := compileSrc(t, `(let x 1) (set x 2)`)
	var sawFused bool
	for _, in := range prog.Pages[0] {
		if in.Op == LOAD_CONST_STORE {
			sawFused = true
		}
	}
	require.True(t, sawFused)
}

func TestCompileIncrementFusion(t *testing.T) {
	prog := compileSrc(t, `(let x 1) (+ x 1)`)
	var sawIncrement bool
	for _, in := range prog.Pages[0] {
		if in.Op == INCREMENT {
			sawIncrement = true
		}
	}
	require.True(t, sawIncrement)
}

func TestCompileDecrementFusionOrderSensitive(t *testing.T) {
	// "- 1 x" must NOT fuse to DECREMENT (only "x - 1" does, per spec.md §4.7).
	prog := compileSrc(t, `(let x 1) (- 1 x)`)
	for _, in := range prog.Pages[0] {
		require.NotEqual(t, DECREMENT, in.Op)
	}
}

func TestBytecodeRoundTrip(t *testing.T) {
	prog := compileSrc(t, `(let x 1) (print (+ x 1))`, "print")
	data := Write(prog, Version{Major: 3, Minor: 6, Patch: 0}, 1700000000)

	c, err := Read(data)
	require.NoError(t, err)
	require.Equal(t, prog.Symbols, c.Program.Symbols)
	require.Equal(t, len(prog.Pages), len(c.Program.Pages))
	require.Equal(t, uint64(1700000000), c.Timestamp)
}

func TestBytecodeReadRejectsCorruption(t *testing.T) {
	prog := compileSrc(t, `(let x 1)`)
	data := Write(prog, Version{Major: 3}, 1)
	data[len(data)-1] ^= 0xFF // flip a byte inside the code segment

	_, err := Read(data)
	require.Error(t, err)
}

func TestBytecodeReadRejectsBadMagic(t *testing.T) {
	_, err := Read([]byte("nope"))
	require.Error(t, err)
}
