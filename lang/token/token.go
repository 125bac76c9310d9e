package token

import "fmt"

// Type is the category of a Token, per the closed set described in the
// language's data model: a token carries only its category, raw text and
// source position — unlike many lexers, individual operators/keywords are
// not separate Token values, they are Identifier/Operator/Keyword tokens
// distinguished by their Text.
type Type int8

//nolint:revive
const (
	Mismatch Type = iota // matched nothing; an error was reported
	EOF

	Grouping   // ( ) [ ] { }
	String     // "..."
	Number     // 123, 1.5, 1e10, -4
	Operator   // + - * / % = < > <= >= == != and so on
	Identifier // foo, my-var?, _private
	Capture    // &name
	Keyword    // fun let mut set if while begin import del
	GetField   // .name
	Shorthand  // $ (macro definition marker)
	Spread     // name... (a leading ...name is accepted too)
	Comment    // # to end of line
	Skip       // whitespace, never emitted but reserved for lexer internals
)

var typeNames = [...]string{
	Mismatch:   "mismatch",
	EOF:        "end of file",
	Grouping:   "grouping",
	String:     "string",
	Number:     "number",
	Operator:   "operator",
	Identifier: "identifier",
	Capture:    "capture",
	Keyword:    "keyword",
	GetField:   "field access",
	Shorthand:  "shorthand",
	Spread:     "spread",
	Comment:    "comment",
	Skip:       "skip",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("invalid token type (%d)", t)
}

// Keywords is the closed set of ArkScript keywords (spec.md §3).
var Keywords = map[string]struct{}{
	"fun":    {},
	"let":    {},
	"mut":    {},
	"set":    {},
	"if":     {},
	"while":  {},
	"begin":  {},
	"import": {},
	"del":    {},
}

// IsKeyword reports whether text is one of the closed set of keywords.
func IsKeyword(text string) bool {
	_, ok := Keywords[text]
	return ok
}

// Groupings are the parenthesis-like punctuation that the parser rewrites:
// () is the canonical list form, [] rewrites to (list ...), {} rewrites to
// (begin ...).
const (
	LParen = "("
	RParen = ")"
	LBrack = "["
	RBrack = "]"
	LBrace = "{"
	RBrace = "}"
)

// Operators is the closed set of operator texts recognized by the scanner.
// Multi-char operators must be tried before their single-char prefix.
var Operators = []string{
	"...", // must come before "."
	"<=", ">=", "==", "!=",
	"+", "-", "*", "/", "%", "=", "<", ">", "!",
}

// A Token is a single lexical token: its category, raw source text, and
// 1-based line/column of its first character. Number and String tokens
// additionally carry their decoded value (escape sequences already resolved
// for strings, the parsed float64 for numbers) so that later passes never
// need to re-parse Text.
type Token struct {
	Type  Type
	Text  string
	Line  int
	Col   int
	Num   float64 // valid when Type == Number
	Value string  // valid when Type == String (escapes resolved) or Comment (text without '#')
}

func (t Token) Pos() Pos { return MakePos(t.Line, t.Col) }

func (t Token) String() string {
	if t.Type == EOF {
		return "<EOF>"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}
