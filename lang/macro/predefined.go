package macro

import "github.com/arkscript-lang/arkscript/lang/ast"

// predefinedFn evaluates one of the fixed set of list/function call macros
// (spec.md §4.4); n is the full Macro node, head is n.Children[0] (the
// macro's name, already known to match this entry).
type predefinedFn func(e *Expander, n *ast.Node, head *ast.Node) (*ast.Node, error)

var predefined map[string]predefinedFn

// init fills predefined: its entries reach predefined again through
// expandNode, which a package-level initializer may not do.
func init() {
	predefined = map[string]predefinedFn{
		"symcat":   symcat,
		"argcount": argcount,
		"repr":     reprNode,
		"paste":    paste,
	}
}

// symcat concatenates two symbols into a new symbol, e.g.
// ($symcat foo bar) => foobar.
func symcat(e *Expander, n *ast.Node, _ *ast.Node) (*ast.Node, error) {
	args, err := expandArgs(e, n, 2)
	if err != nil {
		return nil, err
	}
	return ast.NewSymbol(n.Filename, n.Line, n.Col, nodeText(args[0])+nodeText(args[1])), nil
}

// argcount reports the declared arity of a function bound by `let` (at
// any depth), e.g. ($argcount my-func).
func argcount(e *Expander, n *ast.Node, _ *ast.Node) (*ast.Node, error) {
	args, err := expandArgs(e, n, 1)
	if err != nil {
		return nil, err
	}
	if args[0].Kind != ast.Symbol {
		return nil, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "$argcount expects a symbol naming a function"}
	}
	arity, ok := e.funcArity[args[0].Str]
	if !ok {
		return nil, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "$argcount: unknown function " + args[0].Str}
	}
	return ast.NewNumber(n.Filename, n.Line, n.Col, float64(arity)), nil
}

// reprNode stringifies a node as it would be printed back to source.
func reprNode(e *Expander, n *ast.Node, _ *ast.Node) (*ast.Node, error) {
	args, err := expandArgs(e, n, 1)
	if err != nil {
		return nil, err
	}
	return ast.NewString(n.Filename, n.Line, n.Col, args[0].String()), nil
}

// paste inserts a node raw, without any further quoting/formatting.
func paste(e *Expander, n *ast.Node, _ *ast.Node) (*ast.Node, error) {
	args := n.Children[1:]
	if len(args) != 1 {
		return nil, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "$paste expects exactly 1 argument"}
	}
	return e.expandNode(args[0], 0)
}

func expandArgs(e *Expander, n *ast.Node, want int) ([]*ast.Node, error) {
	args := n.Children[1:]
	if len(args) != want {
		return nil, &Error{Filename: n.Filename, Line: n.Line, Col: n.Col, Msg: "wrong argument count for predefined macro"}
	}
	out := make([]*ast.Node, len(args))
	for i, a := range args {
		ea, err := e.expandNode(a, 0)
		if err != nil {
			return nil, err
		}
		out[i] = ea
	}
	return out, nil
}

func nodeText(n *ast.Node) string {
	switch n.Kind {
	case ast.Symbol, ast.Keyword, ast.Field, ast.Capture, ast.Spread, ast.String:
		return n.Str
	default:
		return n.String()
	}
}
