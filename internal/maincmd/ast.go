package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/arkscript-lang/arkscript/lang/ast"
)

// Ast parses each file and prints its abstract syntax tree (spec.md §4.2),
// one node per line, indented by nesting depth.
func (c *Cmd) Ast(ctx context.Context, stdio mainer.Stdio, args []string) error {
	printer := ast.Printer{Output: stdio.Stdout, WithPos: c.WithPos}
	for _, file := range args {
		root, err := parseOnly(file)
		if err != nil {
			return printError(stdio, err)
		}
		if err := printer.Print(root); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
