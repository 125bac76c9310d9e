package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/arkscript-lang/arkscript/lang/builtins"
	"github.com/arkscript-lang/arkscript/lang/machine"
)

// Run compiles and executes each file in turn (spec.md §4.9's full
// pipeline, entered once per file rather than round-tripped through a
// bytecode container — the container format doesn't serialize
// Program.PageParams/PageVariadic, see DESIGN.md).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, file := range args {
		if err := c.runFile(file, stdio); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

func (c *Cmd) runFile(file string, stdio mainer.Stdio) error {
	prog, err := compileFile(file, c.env)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	vm := machine.New(prog, builtins.Registry.CProcs())
	vm.Stdio = toMachineStdio(stdio)

	ec := machine.NewExecutionContextWithLimits(c.env.MaxStack, c.env.MaxRecursion)
	_, err = vm.Run(ec)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}
