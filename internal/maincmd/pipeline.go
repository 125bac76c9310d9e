package maincmd

import (
	"fmt"
	"os"

	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/arkscript-lang/arkscript/lang/builtins"
	"github.com/arkscript-lang/arkscript/lang/compiler"
	"github.com/arkscript-lang/arkscript/lang/macro"
	"github.com/arkscript-lang/arkscript/lang/optimizer"
	"github.com/arkscript-lang/arkscript/lang/parser"
	"github.com/arkscript-lang/arkscript/lang/resolver"
)

// parseOnly runs just the parser phase (spec.md §4.2), for the ast and fmt
// commands: no import solving, macro expansion, optimization or name
// resolution, since both commands report on exactly what the programmer
// wrote in the given file.
func parseOnly(file string) (*ast.Node, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", file, err)
	}
	root, _, err := parser.ParseFile(file, src)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// compileFile runs the full front-end pipeline (spec.md §4: Parse, Solve
// imports, Expand macros, Optimize, Resolve names) followed by Compile,
// producing a linked *compiler.Program ready to run or serialize.
func compileFile(file string, env envConfig) (*compiler.Program, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", file, err)
	}
	return compileSource(file, src, env)
}

// compileSource is compileFile without the disk read, for the repl (each
// entered line is its own in-memory "file").
func compileSource(file string, src []byte, env envConfig) (*compiler.Program, error) {
	root, imports, err := parser.ParseFile(file, src)
	if err != nil {
		return nil, err
	}

	solver := parser.NewSolver(env.SearchPath)
	if err := solver.Solve(file, root, imports); err != nil {
		return nil, err
	}

	root, err = macro.Expand(root)
	if err != nil {
		return nil, err
	}
	root = optimizer.Optimize(root)

	isUniversal := func(name string) bool {
		_, ok := builtins.Registry.Lookup(name)
		return ok
	}
	if err := resolver.Resolve(root, nil, isUniversal, builtins.Registry.Names); err != nil {
		return nil, err
	}

	return compiler.Compile(root, builtins.Registry.Index)
}
