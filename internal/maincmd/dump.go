package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/arkscript-lang/arkscript/lang/compiler"
)

// Dump reads a compiled .arkc file and prints its disassembly (spec.md
// §4.8), the whole program by default or a single page when -p/--page is
// given.
func (c *Cmd) Dump(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, file := range args {
		if err := c.dumpFile(file, stdio); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

func (c *Cmd) dumpFile(file string, stdio mainer.Stdio) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %q: %w", file, err)
	}
	cont, err := compiler.Read(data)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if c.Page < 0 {
		fmt.Fprint(stdio.Stdout, compiler.Disassemble(&cont.Program))
		return nil
	}
	out, err := compiler.DisassemblePage(&cont.Program, c.Page)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	fmt.Fprint(stdio.Stdout, out)
	return nil
}
