package scanner

import (
	"testing"

	"github.com/arkscript-lang/arkscript/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s Scanner
	s.Init("test.ark", []byte(src), func(pos Position, msg string) {})
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestScanBasics(t *testing.T) {
	toks := scanAll(t, `(let x 1)`)
	require.Equal(t, []token.Type{
		token.Grouping, token.Keyword, token.Identifier, token.Number, token.Grouping, token.EOF,
	}, typesOf(toks))
}

func TestScanCaptureFieldSpread(t *testing.T) {
	toks := scanAll(t, `(fun (&x y...) (.f x))`)
	require.Equal(t, []token.Type{
		token.Grouping, token.Keyword, token.Grouping, token.Capture, token.Spread, token.Grouping,
		token.Grouping, token.GetField, token.Identifier, token.Grouping, token.Grouping, token.EOF,
	}, typesOf(toks))
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"a\nb"`)
	require.Equal(t, token.String, toks[0].Type)
	require.Equal(t, "a\nb", toks[0].Value)
}

func TestScanNumber(t *testing.T) {
	toks := scanAll(t, `-3.5e2`)
	require.Equal(t, token.Number, toks[0].Type)
	require.InDelta(t, -350.0, toks[0].Num, 0.0001)
}

func TestScanGlobField(t *testing.T) {
	toks := scanAll(t, `std.list.*`)
	require.Equal(t, []token.Type{
		token.Identifier, token.GetField, token.GetField, token.EOF,
	}, typesOf(toks))
	require.Equal(t, "*", toks[2].Text)
}

func TestScanComment(t *testing.T) {
	toks := scanAll(t, "# hello\n1")
	require.Equal(t, token.Comment, toks[0].Type)
	require.Equal(t, " hello", toks[0].Value)
	require.Equal(t, token.Number, toks[1].Type)
}

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}
