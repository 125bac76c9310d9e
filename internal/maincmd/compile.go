package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mna/mainer"

	"github.com/arkscript-lang/arkscript/lang/compiler"
)

// bytecodeVersion is the container format version this CLI emits (spec.md
// §4.8); bumped alongside compiler.Write/Read when the on-disk layout
// changes.
var bytecodeVersion = compiler.Version{Major: 0, Minor: 1, Patch: 0}

// Compile runs the front-end pipeline on each file and writes its linked
// compiler.Program to a .arkc container (spec.md §4.8).
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, file := range args {
		if err := c.compileFileToDisk(file, stdio); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

func (c *Cmd) compileFileToDisk(file string, stdio mainer.Stdio) error {
	prog, err := compileFile(file, c.env)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	out := c.Out
	if out == "" {
		out = strings.TrimSuffix(file, filepath.Ext(file)) + ".arkc"
	}

	data := compiler.Write(prog, bytecodeVersion, uint64(time.Now().Unix()))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", out, err)
	}
	fmt.Fprintf(stdio.Stdout, "%s -> %s\n", file, out)
	return nil
}
