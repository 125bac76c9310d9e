// Package parser implements the predictive recursive-descent parser that
// transforms a token stream into the homoiconic AST consumed by every later
// pass, plus the ImportSolver that resolves and inlines `import` forms.
package parser

import (
	"fmt"
	"strings"

	"github.com/arkscript-lang/arkscript/lang/ast"
	"github.com/arkscript-lang/arkscript/lang/scanner"
	"github.com/arkscript-lang/arkscript/lang/token"
)

// CodeError is a syntax error raised while parsing, carrying enough context
// for the CLI to render a source excerpt pointing at the offending token.
type CodeError struct {
	Filename string
	Line     int
	Col      int
	Excerpt  string
	Msg      string
}

func (e *CodeError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s\n\t%s", e.Filename, e.Line, e.Col, e.Msg, e.Excerpt)
}

// CodeErrorList accumulates CodeErrors, following the same append-and-keep-
// going convention as go/scanner.ErrorList, used by the lexer.
type CodeErrorList []*CodeError

func (l *CodeErrorList) Add(err *CodeError) { *l = append(*l, err) }

func (l CodeErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l CodeErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// keywordShape describes the expected positional children of a keyword
// list, per spec.md §4.2. minArgs/maxArgs are inclusive; maxArgs -1 means
// unbounded.
type keywordShape struct {
	minArgs, maxArgs int
}

var keywordShapes = map[string]keywordShape{
	"if":     {2, 3},
	"let":    {2, 2},
	"mut":    {2, 2},
	"set":    {2, 2},
	"fun":    {2, 2},
	"while":  {2, 2},
	"begin":  {0, -1},
	"import": {1, 2},
	"del":    {1, 1},
}

// ParseFile reads src as ArkScript source named filename and returns the
// root List node (head is the synthetic `begin` keyword), the import
// descriptors found at top level, and any CodeErrorList encountered.
func ParseFile(filename string, src []byte) (*ast.Node, []*ImportDescriptor, error) {
	p := &parser{filename: filename}
	p.sc.Init(filename, src, func(pos scanner.Position, msg string) {
		p.errors.Add(&CodeError{Filename: pos.Filename, Line: pos.Line, Col: pos.Column, Msg: msg})
	})
	p.lines = strings.Split(string(src), "\n")
	p.next()

	var children []*ast.Node
	for p.tok.Type != token.EOF {
		n := p.parseForm()
		if n != nil {
			children = append(children, n)
		}
	}

	root := ast.NewList(filename, 1, 1, append([]*ast.Node{ast.NewKeyword(filename, 1, 1, "begin")}, children...)...)
	return root, p.imports, p.errors.Err()
}

type parser struct {
	filename string
	lines    []string
	sc       scanner.Scanner
	errors   CodeErrorList
	imports  []*ImportDescriptor

	tok token.Token
}

func (p *parser) next() {
	p.tok = p.sc.Scan()
	for p.tok.Type == token.Comment || p.tok.Type == token.Skip {
		p.tok = p.sc.Scan()
	}
}

func (p *parser) excerpt(line int) string {
	if line-1 >= 0 && line-1 < len(p.lines) {
		return p.lines[line-1]
	}
	return ""
}

func (p *parser) errorf(tok token.Token, format string, args ...any) {
	p.errors.Add(&CodeError{
		Filename: p.filename,
		Line:     tok.Line,
		Col:      tok.Col,
		Excerpt:  p.excerpt(tok.Line),
		Msg:      fmt.Sprintf(format, args...),
	})
}

// parseForm parses one top-level or nested expression. It never returns nil
// except at EOF; on error it emits a diagnostic, consumes the offending
// token, and returns a placeholder Unused node so parsing can continue and
// surface further errors (mirrors the teacher's error-recovery approach).
func (p *parser) parseForm() *ast.Node {
	tok := p.tok
	switch tok.Type {
	case token.Grouping:
		switch tok.Text {
		case "(":
			return p.parseParen()
		case "[":
			return p.parseSugar("[", "]", "list")
		case "{":
			return p.parseSugar("{", "}", "begin")
		default:
			p.errorf(tok, "unexpected %q", tok.Text)
			p.next()
			return &ast.Node{Kind: ast.Unused, Filename: p.filename, Line: tok.Line, Col: tok.Col}
		}

	case token.Identifier:
		p.next()
		return ast.NewSymbol(p.filename, tok.Line, tok.Col, tok.Text)

	case token.Keyword:
		p.next()
		return ast.NewKeyword(p.filename, tok.Line, tok.Col, tok.Text)

	case token.String:
		p.next()
		return ast.NewString(p.filename, tok.Line, tok.Col, tok.Value)

	case token.Number:
		p.next()
		return ast.NewNumber(p.filename, tok.Line, tok.Col, tok.Num)

	case token.Capture:
		p.next()
		return &ast.Node{Kind: ast.Capture, Str: tok.Text, Filename: p.filename, Line: tok.Line, Col: tok.Col}

	case token.Spread:
		p.next()
		return &ast.Node{Kind: ast.Spread, Str: tok.Text, Filename: p.filename, Line: tok.Line, Col: tok.Col}

	case token.GetField:
		p.next()
		return &ast.Node{Kind: ast.Field, Str: tok.Text, Filename: p.filename, Line: tok.Line, Col: tok.Col}

	case token.Operator:
		// operators used bare (not as a list head) act as ordinary symbol
		// references, e.g. passing `+` as a value to a higher-order function.
		p.next()
		return ast.NewSymbol(p.filename, tok.Line, tok.Col, tok.Text)

	case token.Shorthand:
		return p.parseBareShorthand()

	case token.Mismatch:
		p.errorf(tok, "invalid token %q", tok.Text)
		p.next()
		return &ast.Node{Kind: ast.Unused, Filename: p.filename, Line: tok.Line, Col: tok.Col}

	default:
		p.errorf(tok, "unexpected end of input")
		return nil
	}
}

// parseBareShorthand handles a `$` that was not the head of a parenthesized
// form (e.g. a symbol-macro reference appearing mid-expression).
func (p *parser) parseBareShorthand() *ast.Node {
	tok := p.tok
	p.next()
	if p.tok.Type != token.Identifier {
		p.errorf(tok, "expected macro name after '$'")
		return &ast.Node{Kind: ast.Unused, Filename: p.filename, Line: tok.Line, Col: tok.Col}
	}
	name := p.tok
	p.next()
	return ast.NewSymbol(p.filename, tok.Line, tok.Col, "$"+name.Text)
}

// parseParen parses a `( … )` form: either a macro definition/invocation
// (head token is `$`), an import form, or a plain call/keyword list.
func (p *parser) parseParen() *ast.Node {
	open := p.tok
	p.next() // consume '('

	if p.tok.Type == token.Shorthand {
		return p.parseMacroForm(open)
	}

	if p.tok.Type == token.Keyword && p.tok.Text == "import" {
		return p.parseImportForm(open)
	}

	var children []*ast.Node
	headKeyword := ""
	if p.tok.Type == token.Keyword {
		headKeyword = p.tok.Text
	}

	for p.tok.Type != token.EOF && !(p.tok.Type == token.Grouping && p.tok.Text == ")") {
		children = append(children, p.parseForm())
	}
	p.expectClose(open, ")")

	if headKeyword != "" {
		if shape, ok := keywordShapes[headKeyword]; ok {
			n := len(children) - 1 // exclude the keyword itself
			if n < shape.minArgs || (shape.maxArgs >= 0 && n > shape.maxArgs) {
				p.errorf(open, "%q expects between %d and %d arguments, got %d", headKeyword, shape.minArgs, shape.maxArgs, n)
			}
		}
	}

	return ast.NewList(p.filename, open.Line, open.Col, children...)
}

// parseMacroForm parses `($ name [params] body…)`, producing a Macro node.
// The `$` itself is not kept as a child: Kind == Macro already signals it.
func (p *parser) parseMacroForm(open token.Token) *ast.Node {
	p.next() // consume '$'

	var children []*ast.Node
	for p.tok.Type != token.EOF && !(p.tok.Type == token.Grouping && p.tok.Text == ")") {
		children = append(children, p.parseForm())
	}
	p.expectClose(open, ")")

	if len(children) == 0 {
		p.errorf(open, "macro form requires a name")
	}
	return &ast.Node{Kind: ast.Macro, Children: children, Filename: p.filename, Line: open.Line, Col: open.Col}
}

func (p *parser) parseSugar(openText, closeText, headKeyword string) *ast.Node {
	open := p.tok
	p.next() // consume opening bracket/brace

	head := ast.NewKeyword(p.filename, open.Line, open.Col, headKeyword)
	if !token.IsKeyword(headKeyword) {
		// `list` is not a keyword: [ … ] gets the same Symbol head as (list …)
		head = ast.NewSymbol(p.filename, open.Line, open.Col, headKeyword)
	}
	children := []*ast.Node{head}
	for p.tok.Type != token.EOF && !(p.tok.Type == token.Grouping && p.tok.Text == closeText) {
		children = append(children, p.parseForm())
	}
	p.expectClose(open, closeText)
	return ast.NewList(p.filename, open.Line, open.Col, children...)
}

func (p *parser) expectClose(open token.Token, closeText string) {
	if p.tok.Type == token.Grouping && p.tok.Text == closeText {
		p.next()
		return
	}
	p.errorf(p.tok, "expected closing %q for %q opened at line %d", closeText, open.Text, open.Line)
}
