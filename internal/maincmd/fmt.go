package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Fmt parses each file and prints its canonical S-expression form, one
// top-level form per line — a re-serialization through ast.Node.String(),
// not a layout-preserving pretty-printer (see DESIGN.md).
func (c *Cmd) Fmt(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, file := range args {
		root, err := parseOnly(file)
		if err != nil {
			return printError(stdio, err)
		}
		for _, form := range root.Tail() {
			fmt.Fprintln(stdio.Stdout, form.String())
		}
	}
	return nil
}
