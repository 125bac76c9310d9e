package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/dolthub/swiss"
)

// Solver resolves and inlines `import` forms, per spec.md §4.3. It caches
// parsed modules by their resolved filesystem path in a swiss-table map —
// every import cache lookup is a hit-or-miss check on a path string never
// iterated in insertion order, exactly the access pattern a swiss table is
// suited to over Go's builtin map (see DESIGN.md) — and detects import
// cycles via a stack of currently-open packages.
type Solver struct {
	searchPath []string
	cache      *swiss.Map[string, *solvedModule]
	inProgress map[string]bool
}

type solvedModule struct {
	root *ast.Node
}

// solverCacheHint is the initial capacity handed to swiss.NewMap: most
// programs import a small, fixed set of modules, so there is little to
// gain from guessing higher and forcing early growth is cheap either way.
const solverCacheHint = 8

// NewSolver returns a Solver that additionally looks up package segments in
// each directory of searchPath (in order) when they aren't found relative
// to the importing file.
func NewSolver(searchPath []string) *Solver {
	return &Solver{
		searchPath: searchPath,
		cache:      swiss.NewMap[string, *solvedModule](solverCacheHint),
		inProgress: make(map[string]bool),
	}
}

// Solve resolves every import descriptor found while parsing entryFile and
// splices the corresponding expansion in place of each import form in root.
func (s *Solver) Solve(entryFile string, root *ast.Node, imports []*ImportDescriptor) error {
	dir := filepath.Dir(entryFile)
	for _, desc := range imports {
		path, err := s.resolve(dir, desc)
		if err != nil {
			return err
		}
		mod, err := s.load(path)
		if err != nil {
			return err
		}
		if !replaceChild(root, desc.Node, s.expand(desc, mod)) {
			return fmt.Errorf("%s: import node not found in parent during solving", entryFile)
		}
	}
	return nil
}

func (s *Solver) resolve(dir string, desc *ImportDescriptor) (string, error) {
	if len(desc.Segments) == 0 {
		return "", fmt.Errorf("import with no package path")
	}
	rel := filepath.Join(append([]string{dir}, desc.Segments...)...) + ".ark"
	if fileExists(rel) {
		return filepath.Clean(rel), nil
	}
	for _, sp := range s.searchPath {
		cand := filepath.Join(append([]string{sp}, desc.Segments...)...) + ".ark"
		if fileExists(cand) {
			return filepath.Clean(cand), nil
		}
	}
	return "", fmt.Errorf("cannot resolve import %q: not found relative to %q or in search path", joinDots(desc.Segments), dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func joinDots(segs []string) string {
	out := segs[0]
	for _, s := range segs[1:] {
		out += "." + s
	}
	return out
}

func (s *Solver) load(path string) (*solvedModule, error) {
	if mod, ok := s.cache.Get(path); ok {
		return mod, nil
	}
	if s.inProgress[path] {
		return nil, fmt.Errorf("import cycle detected at %q", path)
	}
	s.inProgress[path] = true
	defer delete(s.inProgress, path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import %q: %w", path, err)
	}
	root, imports, err := ParseFile(path, src)
	if err != nil {
		return nil, fmt.Errorf("parsing import %q: %w", path, err)
	}

	mod := &solvedModule{root: root}

	if err := s.Solve(path, root, imports); err != nil {
		return nil, err
	}
	s.cache.Put(path, mod)
	return mod, nil
}

// expand returns the nodes that replace an import form, according to its
// shape (spec.md §4.3):
//   - glob: the imported module's top-level forms are spliced directly.
//   - selective: only the named top-level let/mut/fun bindings are kept.
//   - basic: every top-level form is kept, wrapped in its own begin scope
//     (see DESIGN.md for the qualified-access simplification this implies).
func (s *Solver) expand(desc *ImportDescriptor, mod *solvedModule) []*ast.Node {
	body := mod.root.Tail() // skip the synthetic 'begin' head

	switch {
	case len(desc.Symbols) > 0:
		var kept []*ast.Node
		for _, form := range body {
			if name, ok := topLevelBindingName(form); ok && containsStr(desc.Symbols, name) {
				kept = append(kept, form)
			}
		}
		return kept

	case !desc.WithPrefix: // glob
		return body

	default: // basic
		children := append([]*ast.Node{ast.NewKeyword(desc.Node.Filename, desc.Node.Line, desc.Node.Col, "begin")}, body...)
		return []*ast.Node{ast.NewList(desc.Node.Filename, desc.Node.Line, desc.Node.Col, children...)}
	}
}

func topLevelBindingName(n *ast.Node) (string, bool) {
	if n.Kind != ast.List || len(n.Children) < 2 {
		return "", false
	}
	head := n.Head()
	if head == nil || head.Kind != ast.Keyword {
		return "", false
	}
	if head.Str != "let" && head.Str != "mut" && head.Str != "fun" {
		return "", false
	}
	name := n.Children[1]
	if name.Kind != ast.Symbol {
		return "", false
	}
	return name.Str, true
}

func containsStr(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// replaceChild finds target among parent's direct children (parent must be
// a List/Macro node) and splices replacement in its place. Reports whether
// target was found.
func replaceChild(parent *ast.Node, target *ast.Node, replacement []*ast.Node) bool {
	for i, c := range parent.Children {
		if c == target {
			out := make([]*ast.Node, 0, len(parent.Children)-1+len(replacement))
			out = append(out, parent.Children[:i]...)
			out = append(out, replacement...)
			out = append(out, parent.Children[i+1:]...)
			parent.Children = out
			return true
		}
		if c.Kind == ast.List || c.Kind == ast.Macro {
			if replaceChild(c, target, replacement) {
				return true
			}
		}
	}
	return false
}
