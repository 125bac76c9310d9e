package macro

import "github.com/arkscript-lang/arkscript/lang/ast"

// unify substitutes a function macro's formal params with the call's actual
// args inside a copy of body (spec.md §4.4's "Unification"). A spread
// formal (the last param) captures every remaining arg into a `(list …)`
// node, mirroring the parser's own `[...]` sugar.
func unify(params, args []*ast.Node, body *ast.Node) (*ast.Node, error) {
	bindings := make(map[string]*ast.Node, len(params))

	for i, p := range params {
		if p.Kind == ast.Spread {
			rest := args[i:]
			children := make([]*ast.Node, 0, len(rest)+1)
			children = append(children, ast.NewSymbol(p.Filename, p.Line, p.Col, "list"))
			children = append(children, rest...)
			bindings[p.Str] = ast.NewList(p.Filename, p.Line, p.Col, children...)
			return substitute(body, bindings, nil), nil
		}
		if i >= len(args) {
			return nil, &Error{Filename: body.Filename, Line: body.Line, Col: body.Col, Msg: "too few arguments to function macro"}
		}
		bindings[p.Str] = args[i]
	}

	if len(args) > len(params) {
		return nil, &Error{Filename: body.Filename, Line: body.Line, Col: body.Col, Msg: "too many arguments to function macro"}
	}

	return substitute(body, bindings, nil), nil
}

// substitute walks a copy of n, replacing Symbol references present in
// bindings — except names in blocked, which a nested `fun`'s own parameter
// list has shadowed (spec.md §4.4: "a parameter name that is shadowed by an
// inner binding is not substituted there").
func substitute(n *ast.Node, bindings map[string]*ast.Node, blocked map[string]bool) *ast.Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case ast.Symbol:
		if !blocked[n.Str] {
			if v, ok := bindings[n.Str]; ok {
				return copyNode(v)
			}
		}
		return n

	case ast.List, ast.Macro:
		if n.IsCallTo("fun") && len(n.Children) == 3 {
			inner := cloneBlocked(blocked)
			for _, a := range n.Children[1].Children {
				inner[a.Str] = true
			}
			cp := *n
			cp.Children = []*ast.Node{
				n.Children[0],
				substitute(n.Children[1], bindings, blocked),
				substitute(n.Children[2], bindings, inner),
			}
			return &cp
		}

		children := make([]*ast.Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = substitute(c, bindings, blocked)
		}
		cp := *n
		cp.Children = children
		return &cp

	default:
		return n
	}
}

func cloneBlocked(blocked map[string]bool) map[string]bool {
	out := make(map[string]bool, len(blocked)+1)
	for k, v := range blocked {
		out[k] = v
	}
	return out
}
