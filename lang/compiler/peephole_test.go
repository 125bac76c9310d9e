package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuseLoadConstLoadConst(t *testing.T) {
	consts := []ConstValue{{Kind: ValNumber, Number: 5}, {Kind: ValNumber, Number: 7}}
	in := []entity{&Opcode1{Op: LOAD_CONST, Arg: 0}, &Opcode1{Op: LOAD_CONST, Arg: 1}, &Opcode1{Op: HALT}}

	out := fuse(in, consts)
	require.Len(t, out, 2)
	fused, ok := out[0].(*Opcode2Args)
	require.True(t, ok)
	require.Equal(t, LOAD_CONST_LOAD_CONST, fused.Op)
}

func TestFuseDoesNotCrossLabel(t *testing.T) {
	consts := []ConstValue{{Kind: ValNumber, Number: 1}}
	lbl := &Label{id: 1}
	in := []entity{&Opcode1{Op: LOAD_CONST, Arg: 0}, lbl, &Opcode1{Op: STORE, Arg: 0}}

	out := fuse(in, consts)
	require.Len(t, out, 3, "a Label between two instructions must block fusion")
}

func TestFuseIncrementRequiresLiteralOne(t *testing.T) {
	consts := []ConstValue{{Kind: ValNumber, Number: 2}}
	in := []entity{&Opcode1{Op: LOAD_SYMBOL, Arg: 0}, &Opcode1{Op: LOAD_CONST, Arg: 0}, &Opcode1{Op: ADD}}

	out := fuse(in, consts)
	require.Len(t, out, 3, "literal 2 must not trigger increment fusion, only literal 1")
}
