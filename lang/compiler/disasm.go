package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders prog as human-readable text, one section per table
// plus one block per code page — the format the `dump` CLI subcommand
// prints (spec.md §6).
//
// Grounded on the teacher's asm.go pseudo-assembly encoder/decoder, kept
// in spirit as a text format good enough for tests and manual inspection,
// re-targeted at ArkScript's page/fused-opcode model instead of emitting
// valid re-parseable Lua IR text.
func Disassemble(prog *Program) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "symbols (%d):\n", len(prog.Symbols))
	for i, s := range prog.Symbols {
		fmt.Fprintf(&sb, "  %4d %s\n", i, s)
	}

	fmt.Fprintf(&sb, "values (%d):\n", len(prog.Values))
	for i, v := range prog.Values {
		switch v.Kind {
		case ValNumber:
			fmt.Fprintf(&sb, "  %4d number %g\n", i, v.Number)
		case ValString:
			fmt.Fprintf(&sb, "  %4d string %q\n", i, v.Str)
		case ValFunction:
			fmt.Fprintf(&sb, "  %4d function page %d\n", i, v.Page)
		}
	}

	for pi, page := range prog.Pages {
		fmt.Fprintf(&sb, "page %d (%d instructions):\n", pi, len(page))
		for ii, in := range page {
			if in.Op.isFused() {
				fmt.Fprintf(&sb, "  %4d %-22s %d, %d\n", ii, in.Op, in.Arg, in.Arg2)
			} else {
				fmt.Fprintf(&sb, "  %4d %-22s %d\n", ii, in.Op, in.Arg)
			}
		}
	}

	return sb.String()
}

// DisassemblePage renders only one page, for the BytecodeReader's
// selective-display support (spec.md §4.8).
func DisassemblePage(prog *Program, page int) (string, error) {
	if page < 0 || page >= len(prog.Pages) {
		return "", fmt.Errorf("bytecode: no such page %d (program has %d)", page, len(prog.Pages))
	}
	var sb strings.Builder
	for ii, in := range prog.Pages[page] {
		if in.Op.isFused() {
			fmt.Fprintf(&sb, "%4d %-22s %d, %d\n", ii, in.Op, in.Arg, in.Arg2)
		} else {
			fmt.Fprintf(&sb, "%4d %-22s %d\n", ii, in.Op, in.Arg)
		}
	}
	return sb.String(), nil
}
