package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	for typ := Mismatch; typ <= Skip; typ++ {
		require.NotEmpty(t, typ.String())
	}
	require.Contains(t, Type(99).String(), "invalid")
}

func TestIsKeyword(t *testing.T) {
	for kw := range Keywords {
		require.True(t, IsKeyword(kw))
	}
	require.False(t, IsKeyword("not-a-keyword"))
	require.False(t, IsKeyword("function"))
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: Identifier, Text: "foo", Line: 1, Col: 1}
	require.Equal(t, `identifier "foo"`, tok.String())

	eof := Token{Type: EOF}
	require.Equal(t, "<EOF>", eof.String())
}

func TestTokenPos(t *testing.T) {
	tok := Token{Type: Number, Text: "1", Line: 3, Col: 5}
	line, col := tok.Pos().LineCol()
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}
