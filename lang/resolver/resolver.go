// Package resolver implements the NameResolutionPass (spec.md §4.6): a
// walk of the AST with a stack of lexical scopes, checking every `let`
// declaration, `set` mutation and symbol reference against the bindings
// visible at that point.
//
// Grounded on the teacher's lang/resolver: the block-stack push/pop
// discipline and the convention of reporting through a scanner.ErrorList
// survive verbatim; the Local/Cell/Free binding classification does not,
// since ArkScript closures capture their entire enclosing Scope by
// reference (spec.md §3) rather than per-variable upvalues.
package resolver

import (
	"fmt"
	"go/scanner"
	"go/token"

	"github.com/agnivade/levenshtein"

	"github.com/arkscript-lang/arkscript/lang/ast"
)

// NamePredicate reports whether name is already known by some external
// mechanism — the builtins registry (Universal) or a plugin/native import
// (Predeclared) — and therefore needs no local binding.
type NamePredicate func(name string) bool

// KnownNames supplies a vocabulary for a Levenshtein-based suggestion when
// a symbol cannot be resolved (spec.md §4.6); typically the builtins
// registry's name list plus every predeclared plugin export.
type KnownNames func() []string

// maxSuggestionDistance bounds how dissimilar a suggested name may be
// before the resolver gives up offering one.
const maxSuggestionDistance = 3

// Resolve walks root (the parser's synthetic `begin` list, after import
// solving, macro expansion and optimization) and returns a
// scanner.ErrorList if any binding rule is violated.
func Resolve(root *ast.Node, isPredeclared, isUniversal NamePredicate, knownNames KnownNames) error {
	r := &resolver{isPredeclared: isPredeclared, isUniversal: isUniversal, knownNames: knownNames}
	if r.isPredeclared == nil {
		r.isPredeclared = func(string) bool { return false }
	}
	if r.isUniversal == nil {
		r.isUniversal = func(string) bool { return false }
	}
	if r.knownNames == nil {
		r.knownNames = func() []string { return nil }
	}

	r.push()
	for _, c := range root.Tail() {
		r.walk(c)
	}
	r.pop()

	r.errors.Sort()
	return r.errors.Err()
}

type resolver struct {
	errors scanner.ErrorList
	env    *block

	isPredeclared, isUniversal NamePredicate
	knownNames                 KnownNames
}

func (r *resolver) push() {
	r.env = &block{parent: r.env, bindings: make(map[string]*Binding)}
}

func (r *resolver) pop() {
	r.env = r.env.parent
}

func (r *resolver) errorf(n *ast.Node, format string, args ...any) {
	r.errors.Add(token.Position{Filename: n.Filename, Line: n.Line, Column: n.Col}, fmt.Sprintf(format, args...))
}

// walk resolves one node. Keyword lists get their special-cased treatment
// per spec.md §4.6/§4.2; everything else recurses generically into its
// children.
func (r *resolver) walk(n *ast.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case ast.Symbol:
		r.use(n)
		return

	case ast.List:
		if head := n.Head(); head != nil && head.Kind == ast.Keyword {
			switch head.Str {
			case "let", "mut":
				r.walkLetMut(n, head.Str == "mut")
				return
			case "set":
				r.walkSet(n)
				return
			case "fun":
				r.walkFun(n)
				return
			case "begin":
				r.push()
				for _, c := range n.Tail() {
					r.walk(c)
				}
				r.pop()
				return
			case "if", "while":
				for _, c := range n.Tail() {
					r.walk(c)
				}
				return
			case "del":
				for _, c := range n.Tail() {
					r.walk(c)
				}
				return
			case "import":
				return // resolved away by the ImportSolver before this pass runs
			}
		}

		for _, c := range n.Children {
			r.walk(c)
		}
		return

	case ast.Macro:
		// a surviving Macro node means macro expansion left it unrecognized;
		// walk its children defensively rather than ignore potential symbol
		// references inside it.
		for _, c := range n.Children {
			r.walk(c)
		}

	default: // Capture, Keyword, String, Number, Field, Spread, Unused
		return
	}
}

// walkLetMut binds name before resolving the initializer, so a function
// bound by `let` may call itself recursively — spec.md is silent on this,
// see DESIGN.md's Open Question decisions.
func (r *resolver) walkLetMut(n *ast.Node, mutable bool) {
	if len(n.Children) != 3 {
		return
	}
	name := n.Children[1]
	r.bind(name, mutable)
	r.walk(n.Children[2])
}

func (r *resolver) walkSet(n *ast.Node) {
	if len(n.Children) != 3 {
		return
	}
	name, val := n.Children[1], n.Children[2]
	r.walk(val)

	if name.Kind != ast.Symbol {
		return
	}
	bd, ok := r.env.lookup(name.Str)
	switch {
	case ok && !bd.Mutable:
		r.errorf(name, "cannot set %q: declared with let, not mut", name.Str)
	case ok:
		// mutable local binding, nothing to report
	case r.isPredeclared(name.Str) || r.isUniversal(name.Str):
		r.errorf(name, "cannot set %q: not a local binding", name.Str)
	default:
		r.use(name)
	}
}

func (r *resolver) walkFun(n *ast.Node) {
	if len(n.Children) != 3 {
		return
	}
	params, body := n.Children[1], n.Children[2]

	r.push()
	for _, p := range params.Children {
		switch p.Kind {
		case ast.Symbol, ast.Spread:
			r.bind(&ast.Node{Kind: ast.Symbol, Str: p.Str, Filename: p.Filename, Line: p.Line, Col: p.Col}, true)
		case ast.Capture:
			r.use(&ast.Node{Kind: ast.Symbol, Str: p.Str, Filename: p.Filename, Line: p.Line, Col: p.Col})
		}
	}
	r.walk(body)
	r.pop()
}

func (r *resolver) bind(name *ast.Node, mutable bool) {
	if name.Kind != ast.Symbol {
		r.errorf(name, "expected a symbol in binding position")
		return
	}
	if _, ok := r.env.bindings[name.Str]; ok {
		r.errorf(name, "%q is already declared in this scope", name.Str)
		return
	}
	r.env.bindings[name.Str] = &Binding{Name: name.Str, Mutable: mutable, Decl: name}
}

func (r *resolver) use(name *ast.Node) {
	if _, ok := r.env.lookup(name.Str); ok {
		return
	}
	if r.isPredeclared(name.Str) || r.isUniversal(name.Str) {
		return
	}

	msg := fmt.Sprintf("undefined symbol %q", name.Str)
	if suggestion := r.suggest(name.Str); suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
	}
	r.errorf(name, "%s", msg)
}

// suggest returns the closest known name to name by Levenshtein distance,
// or "" if none is within maxSuggestionDistance. Grounded on
// original_source/include/Ark/Utils.hpp's levenshteinDistance helper,
// backed here by github.com/agnivade/levenshtein instead of a hand-rolled
// edit-distance table.
func (r *resolver) suggest(name string) string {
	best, bestDist := "", maxSuggestionDistance+1

	consider := func(candidate string) {
		if candidate == name {
			return
		}
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}

	for b := r.env; b != nil; b = b.parent {
		for known := range b.bindings {
			consider(known)
		}
	}
	for _, known := range r.knownNames() {
		consider(known)
	}

	if bestDist > maxSuggestionDistance {
		return ""
	}
	return best
}
