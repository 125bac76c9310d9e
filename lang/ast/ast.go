// Package ast defines the abstract syntax tree produced by the parser.
// ArkScript is homoiconic: unlike a conventional language with separate
// expression and statement node types, every construct — literals, symbols,
// keyword forms, macro calls — is represented by the same tagged Node, the
// same shape as the S-expressions read in by the parser.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the payload carried by a Node (spec.md §3).
type Kind int8

//nolint:revive
const (
	Symbol  Kind = iota // payload: Str (a bound or free identifier)
	Capture             // payload: Str (the captured identifier, without its '&' prefix)
	Keyword             // payload: Str, one of the closed keyword set
	String              // payload: Str (escapes already resolved)
	Number              // payload: Num
	List                // payload: Children; first child is often a Keyword or Symbol (the head)
	Spread              // payload: Str, the variadic parameter name
	Field               // payload: Str, the field name accessed (without its '.' prefix)
	Macro               // payload: Children, a $-introduced compile-time construct
	Unused              // placeholder produced by the optimizer for removed bindings
)

var kindNames = [...]string{
	Symbol:  "symbol",
	Capture: "capture",
	Keyword: "keyword",
	String:  "string",
	Number:  "number",
	List:    "list",
	Spread:  "spread",
	Field:   "field",
	Macro:   "macro",
	Unused:  "unused",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("invalid node kind (%d)", k)
}

// Node is a single element of the AST. It is a tagged union: depending on
// Kind, either Str, Num or Children holds the payload; the other fields are
// zero. Filename/Line/Col is the source position of the first token that
// produced this node.
type Node struct {
	Kind     Kind
	Str      string  // Symbol, Capture, Keyword, String, Spread, Field
	Num      float64 // Number
	Children []*Node // List, Macro

	Filename string
	Line, Col int
}

// NewSymbol returns a new Symbol node at the given position.
func NewSymbol(filename string, line, col int, name string) *Node {
	return &Node{Kind: Symbol, Str: name, Filename: filename, Line: line, Col: col}
}

// NewKeyword returns a new Keyword node at the given position.
func NewKeyword(filename string, line, col int, kw string) *Node {
	return &Node{Kind: Keyword, Str: kw, Filename: filename, Line: line, Col: col}
}

// NewString returns a new String node at the given position.
func NewString(filename string, line, col int, val string) *Node {
	return &Node{Kind: String, Str: val, Filename: filename, Line: line, Col: col}
}

// NewNumber returns a new Number node at the given position.
func NewNumber(filename string, line, col int, val float64) *Node {
	return &Node{Kind: Number, Num: val, Filename: filename, Line: line, Col: col}
}

// NewList returns a new List node at the given position with the given
// children (which may be nil or empty for the empty list).
func NewList(filename string, line, col int, children ...*Node) *Node {
	return &Node{Kind: List, Children: children, Filename: filename, Line: line, Col: col}
}

// Head returns the first child of a List/Macro node, or nil if it has none.
func (n *Node) Head() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Tail returns every child after the first.
func (n *Node) Tail() []*Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[1:]
}

// IsKeyword reports whether n is a Keyword node with the given text.
func (n *Node) IsKeyword(text string) bool {
	return n != nil && n.Kind == Keyword && n.Str == text
}

// IsCallTo reports whether n is a List whose head is a Symbol (or Keyword)
// with the given name.
func (n *Node) IsCallTo(name string) bool {
	if n == nil || n.Kind != List {
		return false
	}
	h := n.Head()
	return h != nil && (h.Kind == Symbol || h.Kind == Keyword) && h.Str == name
}

// Walk enters each child node to implement the Visitor pattern.
func (n *Node) Walk(v Visitor) {
	if n.Kind == List || n.Kind == Macro {
		for _, c := range n.Children {
			Walk(v, c)
		}
	}
}

// String renders n back to ArkScript source syntax (as a single line,
// canonical form). The fmt command prints this same rendering, so it does
// not preserve the original layout or comments either.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}

func (n *Node) writeTo(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("nil")
		return
	}
	switch n.Kind {
	case Symbol, Keyword:
		sb.WriteString(n.Str)
	case Capture:
		sb.WriteByte('&')
		sb.WriteString(n.Str)
	case Field:
		sb.WriteByte('.')
		sb.WriteString(n.Str)
	case Spread:
		sb.WriteString(n.Str)
		sb.WriteString("...")
	case String:
		sb.WriteByte('"')
		sb.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(n.Str))
		sb.WriteByte('"')
	case Number:
		sb.WriteString(strconv.FormatFloat(n.Num, 'g', -1, 64))
	case Unused:
		sb.WriteString("()")
	case List, Macro:
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(' ')
			}
			c.writeTo(sb)
		}
		sb.WriteByte(')')
	}
}

// Format implements fmt.Formatter so that Node values can be used directly
// with %v/%s in calls to fmt.Fprintf, matching the convention used
// throughout the compiler's debug output.
func (n *Node) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		fmt.Fprint(f, n.String())
	default:
		fmt.Fprintf(f, "%%!%c(*ast.Node)", verb)
	}
}
