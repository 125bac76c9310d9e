package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"github.com/arkscript-lang/arkscript/lang/builtins"
	"github.com/arkscript-lang/arkscript/lang/machine"
)

const replLastBinding = "__repl_last"

// Repl is a stateless read-eval-print loop (spec.md §4.1's embedder,
// surfaced interactively): each entered line is recompiled from scratch
// together with every previously accepted line, bound to replLastBinding,
// and the whole program is freshly run — there is no persistent VM between
// lines, since the bytecode program image is immutable once loaded (spec.md
// §5). Grounded on original_source's linenoise-based REPL, re-issued with
// bufio.Scanner since no line-editing library appears anywhere in the
// example corpus (see DESIGN.md).
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)

	var history []string
	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		src := strings.Join(append(append([]string(nil), history...), line), "\n")
		src += fmt.Sprintf("\n(let %s %s)\n", replLastBinding, line)

		prog, err := compileSource("<repl>", []byte(src), c.env)
		if err != nil {
			printError(stdio, err)
			continue
		}

		vm := machine.New(prog, builtins.Registry.CProcs())
		vm.Stdio = toMachineStdio(stdio)
		ec := machine.NewExecutionContextWithLimits(c.env.MaxStack, c.env.MaxRecursion)
		if _, err := vm.Run(ec); err != nil {
			printError(stdio, err)
			continue
		}

		if v, ok := lookupSymbol(prog.Symbols, ec, replLastBinding); ok {
			fmt.Fprintln(stdio.Stdout, v.String())
		}
		history = append(history, line)
	}
}

func lookupSymbol(symbols []string, ec *machine.ExecutionContext, name string) (machine.Value, bool) {
	for id, s := range symbols {
		if s == name {
			return ec.Locals[0].Lookup(uint16(id))
		}
	}
	return nil, false
}
