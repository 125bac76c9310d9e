// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner tokenizes ArkScript source files for the parser to
// consume.
package scanner

import (
	"bytes"
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arkscript-lang/arkscript/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
	Position  = gotoken.Position
)

var PrintError = scanner.PrintError

// ScanFiles tokenizes the given source files and returns the list of tokens,
// grouped by the file at the same index, and any error encountered. The
// returned error, if non-nil, is guaranteed to implement Unwrap() []error.
func ScanFiles(files ...string) ([][]token.Token, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var (
		s  Scanner
		el ErrorList
	)

	tokensByFile := make([][]token.Token, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(Position{Filename: file}, err.Error())
			continue
		}

		s.Init(file, b, el.Add)
		for {
			tok := s.Scan()
			tokensByFile[i] = append(tokensByFile[i], tok)
			if tok.Type == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return tokensByFile, el.Err()
}

// Scanner tokenizes a single source file for the parser to consume.
type Scanner struct {
	// immutable state after Init
	filename string
	src      []byte
	err      func(pos Position, msg string)

	// mutable scanning state
	sb          strings.Builder
	invalidByte byte
	cur         rune // current character
	off         int  // byte offset of cur
	roff        int  // byte offset right after cur
	line, col   int  // 1-based line/col of cur
}

var (
	bom      = [2]byte{0xEF, 0xBB} // first two bytes of a UTF-8 BOM, third is 0xBF
	hashBang = [2]byte{'#', '!'}
)

// Init initializes the scanner to tokenize a new file.
func (s *Scanner) Init(filename string, src []byte, errHandler func(Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler

	s.sb.Reset()
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0

	if len(src) >= 3 && bytes.Equal(src[:2], bom[:]) && src[2] == 0xBF {
		s.off += 3
		s.roff += 3
	}
	if len(src)-s.roff >= len(hashBang) && bytes.Equal(src[s.roff:s.roff+len(hashBang)], hashBang[:]) {
		for s.cur != '\n' && s.cur != -1 {
			s.advance()
		}
	}
	s.advance()
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	s.off = s.roff
	s.col++

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, s.line, s.col, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off, line, col int, msg string) {
	if s.err != nil {
		s.err(Position{Filename: s.filename, Offset: off, Line: line, Column: col}, msg)
	}
}

func (s *Scanner) errorf(off, line, col int, format string, args ...any) {
	s.error(off, line, col, fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(matches ...byte) bool {
	if bytes.ContainsRune(matches, s.cur) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source file.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespace()

	line, col, off := s.line, s.col, s.off

	switch cur := s.cur; {
	case isLetterStart(cur):
		lit := s.ident()
		if bytes.HasPrefix(s.src[s.off:], []byte("...")) {
			// a trailing `...` marks a spread parameter: `rest...`
			s.advance()
			s.advance()
			s.advance()
			return token.Token{Type: token.Spread, Text: lit, Line: line, Col: col}
		}
		typ := token.Identifier
		if token.IsKeyword(lit) {
			typ = token.Keyword
		}
		return token.Token{Type: typ, Text: lit, Line: line, Col: col}

	case isDecimal(cur) || (cur == '-' && isDecimal(rune(s.peek()))):
		lit := s.number()
		return token.Token{Type: token.Number, Text: lit.text, Num: lit.val, Line: line, Col: col}

	default:
		switch cur {
		case '(', ')', '[', ']', '{', '}':
			s.advance()
			return token.Token{Type: token.Grouping, Text: string(cur), Line: line, Col: col}

		case '"':
			s.advance()
			lit, val := s.shortString()
			return token.Token{Type: token.String, Text: lit, Value: val, Line: line, Col: col}

		case '&':
			s.advance()
			if !isLetterStart(s.cur) {
				s.errorf(off, line, col, "expected identifier after '&'")
				return token.Token{Type: token.Mismatch, Text: "&", Line: line, Col: col}
			}
			lit := s.ident()
			return token.Token{Type: token.Capture, Text: lit, Line: line, Col: col}

		case '.':
			s.advance() // consume the first '.'
			if s.cur == '.' && s.peek() == '.' {
				s.advance()
				s.advance()
				if !isLetterStart(s.cur) {
					s.errorf(off, line, col, "expected identifier after '...'")
					return token.Token{Type: token.Mismatch, Text: "...", Line: line, Col: col}
				}
				lit := s.ident()
				return token.Token{Type: token.Spread, Text: lit, Line: line, Col: col}
			}
			if s.cur == '*' {
				s.advance()
				return token.Token{Type: token.GetField, Text: "*", Line: line, Col: col}
			}
			if !isLetterStart(s.cur) {
				s.errorf(off, line, col, "expected identifier after '.'")
				return token.Token{Type: token.Mismatch, Text: ".", Line: line, Col: col}
			}
			lit := s.ident()
			return token.Token{Type: token.GetField, Text: lit, Line: line, Col: col}

		case '$':
			s.advance()
			return token.Token{Type: token.Shorthand, Text: "$", Line: line, Col: col}

		case '#':
			lit := s.comment()
			return token.Token{Type: token.Comment, Text: lit, Value: strings.TrimPrefix(lit, "#"), Line: line, Col: col}

		case '-':
			// already excluded number case above (requires a following digit)
			s.advance()
			return token.Token{Type: token.Operator, Text: "-", Line: line, Col: col}

		case -1:
			return token.Token{Type: token.EOF, Line: line, Col: col}

		default:
			for _, op := range token.Operators {
				if op == "..." {
					continue // handled above
				}
				if s.matchOperator(op) {
					return token.Token{Type: token.Operator, Text: op, Line: line, Col: col}
				}
			}

			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(off, line, col, "illegal character %#U", cur)
			s.advance()
			return token.Token{Type: token.Mismatch, Text: string(cur), Line: line, Col: col}
		}
	}
}

// matchOperator consumes and reports whether the upcoming bytes equal op.
func (s *Scanner) matchOperator(op string) bool {
	if len(op) == 1 {
		if s.cur == rune(op[0]) {
			s.advance()
			return true
		}
		return false
	}
	// two-char operator: first char plus a following '='
	if s.cur == rune(op[0]) && s.peek() == op[1] {
		s.advance()
		s.advance()
		return true
	}
	return false
}

func (s *Scanner) ident() string {
	start := s.off
	for isIdentRune(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) comment() string {
	start := s.off
	for s.cur != '\n' && s.cur != -1 {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.cur) {
		s.advance()
	}
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r'
}

func isLetterStart(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		strings.ContainsRune(":!?@_", rn) ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

// isIdentRune reports whether rn may appear after the first character of an
// identifier: letters, digits and the extended punctuation set allowed by
// spec.md §4.1 (":!?@_-+*/|=<>%$").
func isIdentRune(rn rune) bool {
	return isLetterStart(rn) || isDigit(rn) || strings.ContainsRune("-+*/|=<>%$", rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' ||
		rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}

func isDecimal(rn rune) bool { return '0' <= rn && rn <= '9' }
