package parser

import (
	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/arkscript-lang/arkscript/lang/token"
)

// ImportDescriptor is the parsed shape of an `(import …)` form, per spec.md
// §3. Segments are the dotted package path, e.g. `std.list` becomes
// []string{"std", "list"}.
//
// Three shapes, distinguished by WithPrefix/Symbols:
//   - basic:      WithPrefix=true,  Symbols=nil  — (import std.list)
//   - glob:       WithPrefix=false, Symbols=nil  — (import std.list.*)
//   - selective:  WithPrefix=false, Symbols≠nil  — (import std.list (map filter))
type ImportDescriptor struct {
	Prefix     string
	Segments   []string
	WithPrefix bool
	Symbols    []string

	Node *ast.Node // the List node this descriptor was parsed from, for ImportSolver rewriting
}

// parseImportForm parses `(import pkg.sub[.*] [(sym…)])`. The `import`
// keyword has already been peeked (not consumed) by the caller.
func (p *parser) parseImportForm(open token.Token) *ast.Node {
	p.next() // consume 'import'

	var (
		segments []string
		glob     bool
	)

	if p.tok.Type != token.Identifier {
		p.errorf(p.tok, "expected package name after 'import'")
	} else {
		segments = append(segments, p.tok.Text)
		p.next()
	}

	for p.tok.Type == token.GetField {
		if p.tok.Text == "*" {
			glob = true
			p.next()
			break
		}
		segments = append(segments, p.tok.Text)
		p.next()
	}

	var symbols []string
	if p.tok.Type == token.Grouping && p.tok.Text == "(" {
		symOpen := p.tok
		p.next()
		for p.tok.Type != token.EOF && !(p.tok.Type == token.Grouping && p.tok.Text == ")") {
			if p.tok.Type == token.Identifier {
				symbols = append(symbols, p.tok.Text)
				p.next()
			} else {
				p.errorf(p.tok, "expected symbol name in selective import list")
				p.next()
			}
		}
		p.expectClose(symOpen, ")")
	}

	p.expectClose(open, ")")

	prefix := ""
	if len(segments) > 0 {
		prefix = segments[len(segments)-1]
	}

	children := make([]*ast.Node, 0, len(segments)+2)
	children = append(children, ast.NewKeyword(p.filename, open.Line, open.Col, "import"))
	for _, seg := range segments {
		children = append(children, ast.NewSymbol(p.filename, open.Line, open.Col, seg))
	}
	n := ast.NewList(p.filename, open.Line, open.Col, children...)

	desc := &ImportDescriptor{
		Prefix:     prefix,
		Segments:   segments,
		WithPrefix: !glob && len(symbols) == 0,
		Symbols:    symbols,
		Node:       n,
	}
	p.imports = append(p.imports, desc)
	return n
}
