package lvmtext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token {
	t.Helper()
	l := newLexer([]byte(src))
	var toks []token
	for {
		tok, err := l.next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks
		}
	}
}

func TestLexer_Idents(t *testing.T) {
	toks := lexAll(t, "foo bar_baz QUX123")
	require.Equal(t, tokIdent, toks[0].kind)
	require.Equal(t, "foo", toks[0].text)
	require.Equal(t, "bar_baz", toks[1].text)
	require.Equal(t, "QUX123", toks[2].text)
}

func TestLexer_Ints(t *testing.T) {
	toks := lexAll(t, "42 -7 0")
	require.Equal(t, int64(42), toks[0].ival)
	require.Equal(t, int64(-7), toks[1].ival)
	require.Equal(t, int64(0), toks[2].ival)
}

func TestLexer_Strings(t *testing.T) {
	toks := lexAll(t, `"hello" "with \"quote\"" "with \\ backslash"`)
	require.Equal(t, "hello", toks[0].text)
	require.Equal(t, `with "quote"`, toks[1].text)
	require.Equal(t, `with \ backslash`, toks[2].text)
}

func TestLexer_CommentsAndWhitespace(t *testing.T) {
	toks := lexAll(t, "a = 1 # trailing comment\nb = 2")
	kinds := make([]tokenKind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	require.Equal(t, []tokenKind{tokIdent, tokEquals, tokInt, tokIdent, tokEquals, tokInt, tokEOF}, kinds)
}

func TestLexer_Punctuation(t *testing.T) {
	toks := lexAll(t, "{}[],=")
	kinds := make([]tokenKind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.kind)
	}
	require.Equal(t, []tokenKind{tokLBrace, tokRBrace, tokLBracket, tokRBracket, tokComma, tokEquals, tokEOF}, kinds)
}

func TestLexer_UnterminatedString(t *testing.T) {
	l := newLexer([]byte(`"unterminated`))
	_, err := l.next()
	require.Error(t, err)
}
