// Package macro expands ArkScript's compile-time macros (spec.md §4.4),
// grounded on original_source/include/Ark/Compiler/Macros/Processor.hpp:
// a scoped macro table walked alongside the AST, consulted every time a
// symbol or a list head is encountered, re-expanding results to a fixed
// point.
package macro

import (
	"fmt"

	"github.com/arkscript-lang/arkscript/lang/ast"
)

// Error is raised when macro expansion cannot proceed: a malformed
// definition, an arity mismatch on a predefined macro, or runaway
// recursion past maxExpansionDepth.
type Error struct {
	Filename string
	Line     int
	Col      int
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: macro error: %s", e.Filename, e.Line, e.Col, e.Msg)
}

// maxExpansionDepth bounds fixed-point re-expansion to catch a macro that
// expands into a call to itself forever (spec.md §4.4).
const maxExpansionDepth = 128

// kind distinguishes the two definable macro flavors. Conditional and
// predefined list macros have no definition step; they're recognized and
// evaluated at their call site.
type kind int8

const (
	symbolMacro kind = iota
	functionMacro
)

type definition struct {
	kind   kind
	params []*ast.Node // functionMacro only
	body   *ast.Node
}

// scope is one level of the MacroScope stack (spec.md §4.4): visible
// definitions introduced in the begin-block or function body currently
// being walked. Leaving the scope drops them.
type scope map[string]*definition

// Expander walks an AST expanding macros in place, following the teacher's
// single pass = single entry-point convention (compare resolver.Resolve,
// compiler.Compile).
type Expander struct {
	scopes    []scope
	funcArity map[string]int // (let name (fun (args…) …)) arity, for $argcount
}

// NewExpander returns a ready-to-use Expander.
func NewExpander() *Expander {
	return &Expander{funcArity: make(map[string]int)}
}

// Expand returns a new tree with every macro definition stripped and every
// macro reference substituted, or an *Error if expansion fails.
func Expand(root *ast.Node) (*ast.Node, error) {
	e := NewExpander()
	e.collectFuncArities(root)
	out, err := e.expandBlock(root)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// collectFuncArities records the arity of every `(let name (fun (args…)
// body))` binding, at any depth, ahead of expansion, so that $argcount can
// resolve a name regardless of where the macro call appears relative to
// the definition.
func (e *Expander) collectFuncArities(n *ast.Node) {
	if n.Kind != ast.List && n.Kind != ast.Macro {
		return
	}
	if n.IsCallTo("let") && len(n.Children) == 3 && n.Children[2].IsCallTo("fun") {
		name := n.Children[1]
		fn := n.Children[2]
		if name.Kind == ast.Symbol && len(fn.Children) >= 2 && fn.Children[1].Kind == ast.List {
			e.funcArity[name.Str] = len(fn.Children[1].Children)
		}
	}
	for _, c := range n.Children {
		e.collectFuncArities(c)
	}
}

func (e *Expander) push() { e.scopes = append(e.scopes, scope{}) }
func (e *Expander) pop()  { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *Expander) define(name string, def *definition) {
	e.scopes[len(e.scopes)-1][name] = def
}

func (e *Expander) lookup(name string) *definition {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if d, ok := e.scopes[i][name]; ok {
			return d
		}
	}
	return nil
}

// expandBlock expands the children of a begin-like List/Macro node (or the
// root), maintaining its own MacroScope.
func (e *Expander) expandBlock(n *ast.Node) (*ast.Node, error) {
	e.push()
	defer e.pop()

	out := make([]*ast.Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Kind == ast.Macro {
			replaced, consumed, err := e.handleMacroNode(child)
			if err != nil {
				return nil, err
			}
			if consumed {
				continue // definition: registered, nothing emitted
			}
			expanded, err := e.expandNode(replaced, 0)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded)
			continue
		}
		expanded, err := e.expandNode(child, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}

	cp := *n
	cp.Children = out
	return &cp, nil
}

// handleMacroNode processes a `$`-headed node: a definition (registered,
// consumed=true, nothing to emit) or an invocation (conditional or
// predefined list macro — consumed=false, replaced holds the result).
func (e *Expander) handleMacroNode(n *ast.Node) (replaced *ast.Node, consumed bool, err error) {
	if len(n.Children) == 0 {
		return nil, false, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "empty macro form"}
	}
	head := n.Children[0]

	if head.IsKeyword("if") {
		res, err := e.evalConditional(n)
		return res, false, err
	}

	if head.Kind == ast.Symbol {
		if fn, ok := predefined[head.Str]; ok {
			res, err := fn(e, n, head)
			return res, false, err
		}

		switch len(n.Children) {
		case 2: // ($ name value) — symbol macro
			e.define(head.Str, &definition{kind: symbolMacro, body: n.Children[1]})
			return nil, true, nil
		case 3: // ($ name (params…) body) — function macro
			params := n.Children[1]
			if params.Kind != ast.List {
				return nil, false, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "function macro parameter list must be a list"}
			}
			e.define(head.Str, &definition{kind: functionMacro, params: params.Children, body: n.Children[2]})
			return nil, true, nil
		default:
			return nil, false, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: fmt.Sprintf("malformed macro definition for %q", head.Str)}
		}
	}

	return nil, false, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "macro form must start with a name or 'if'"}
}

// expandNode expands n to a fixed point: symbol-macro references become
// their value, function-macro calls are unified with their arguments, and
// nested begin-like blocks get their own scope.
func (e *Expander) expandNode(n *ast.Node, depth int) (*ast.Node, error) {
	if depth > maxExpansionDepth {
		return nil, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "macro expansion exceeded maximum depth (possible infinite recursion)"}
	}

	switch n.Kind {
	case ast.Symbol:
		if def := e.lookup(n.Str); def != nil && def.kind == symbolMacro {
			return e.expandNode(copyNode(def.body), depth+1)
		}
		return n, nil

	case ast.Macro:
		replaced, consumed, err := e.handleMacroNode(n)
		if err != nil {
			return nil, err
		}
		if consumed {
			return &ast.Node{Kind: ast.Unused, Filename: n.Filename, Line: n.Line, Col: n.Col}, nil
		}
		return e.expandNode(replaced, depth+1)

	case ast.List:
		if head := n.Head(); head != nil && head.Kind == ast.Symbol {
			if def := e.lookup(head.Str); def != nil && def.kind == functionMacro {
				args := n.Tail()
				body, err := unify(def.params, args, def.body)
				if err != nil {
					return nil, err
				}
				return e.expandNode(body, depth+1)
			}
		}

		if n.IsCallTo("begin") || n.IsCallTo("fun") {
			return e.expandBlockLike(n, depth)
		}

		children := make([]*ast.Node, len(n.Children))
		for i, c := range n.Children {
			ec, err := e.expandNode(c, depth)
			if err != nil {
				return nil, err
			}
			children[i] = ec
		}
		cp := *n
		cp.Children = children
		return &cp, nil

	default:
		return n, nil
	}
}

// expandBlockLike re-enters expandBlock for `begin` bodies and function
// bodies so their macro definitions get their own MacroScope (spec.md
// §4.4's "walks begin-blocks and function bodies").
func (e *Expander) expandBlockLike(n *ast.Node, depth int) (*ast.Node, error) {
	if n.IsCallTo("fun") {
		// (fun (args…) body): only the body is a scope boundary.
		body, err := e.expandNode(n.Children[2], depth)
		if err != nil {
			return nil, err
		}
		cp := *n
		cp.Children = []*ast.Node{n.Children[0], n.Children[1], body}
		return &cp, nil
	}
	return e.expandBlock(n)
}

// evalConditional evaluates `($ if cond then [else])` immediately,
// replacing it with whichever branch is selected.
func (e *Expander) evalConditional(n *ast.Node) (*ast.Node, error) {
	if len(n.Children) < 3 || len(n.Children) > 4 {
		return nil, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "conditional macro expects (if cond then [else])"}
	}
	cond, err := e.expandNode(n.Children[1], 0)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return n.Children[2], nil
	}
	if len(n.Children) == 4 {
		return n.Children[3], nil
	}
	return &ast.Node{Kind: ast.Unused, Filename: n.Filename, Line: n.Line, Col: n.Col}, nil
}

// isTruthy implements spec.md §4.4's truthiness rule: false, nil and the
// empty list are false, everything else is true.
func isTruthy(n *ast.Node) bool {
	switch {
	case n == nil:
		return false
	case n.Kind == ast.Symbol && (n.Str == "false" || n.Str == "nil"):
		return false
	case n.Kind == ast.List && len(n.Children) == 0:
		return false
	default:
		return true
	}
}

func copyNode(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*ast.Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = copyNode(c)
		}
	}
	return &cp
}
