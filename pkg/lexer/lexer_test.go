package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenValues(t *testing.T, src string) []string {
	t.Helper()
	toks, err := Tokenize(src, "<test>", false)
	require.NoError(t, err)
	var out []string
	for _, tok := range toks {
		if tok.Type == TokenEOF {
			continue
		}
		out = append(out, tok.Value)
	}
	return out
}

func TestTokenizeEmpty(t *testing.T) {
	toks, err := Tokenize("", "<test>", false)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, TokenEOF, toks[0].Type)
}

func TestTokenizeSkipsComments(t *testing.T) {
	require.Equal(t, []string{"x"}, tokenValues(t, "( a block comment ) x // trailing"))
}

func TestTokenizeWord(t *testing.T) {
	toks, err := Tokenize("empty? foo_bar done!", "<test>", false)
	require.NoError(t, err)
	require.Equal(t, []Token{
		{Type: TokenWord, Value: "empty?", Line: 1, Column: 1},
		{Type: TokenWord, Value: "foo_bar", Line: 1, Column: 8},
		{Type: TokenWord, Value: "done!", Line: 1, Column: 16},
		{Type: TokenEOF, Line: 1, Column: 21},
	}, toks)
}

func TestTokenizeNumbers(t *testing.T) {
	require.Equal(t, []string{"42", "-7", "3.14", "1e10", "2.5e-3"},
		tokenValues(t, "42 -7 3.14 1e10 2.5e-3"))
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\nb\t\"c\\d\e\$"`, "<test>", false)
	require.NoError(t, err)
	require.Equal(t, "a\nb\t\"c\\d\x1b$", toks[0].Value)
}

func TestTokenizeUnclosedString(t *testing.T) {
	_, err := Tokenize(`"unterminated`, "<test>", false)
	require.Error(t, err)
}

func TestTokenizeRegex(t *testing.T) {
	toks, err := Tokenize("`[a-z]+`", "<test>", false)
	require.NoError(t, err)
	require.Equal(t, TokenRegex, toks[0].Type)
	require.Equal(t, "[a-z]+", toks[0].Value)
}

func TestTokenizeMultiCharSymbols(t *testing.T) {
	require.Equal(t, []string{"<=", ">=", "==", "!=", ":=", "+=", "++", "<{", "}>", "<[", "]>"},
		tokenValues(t, "<= >= == != := += ++ <{ }> <[ ]>"))
}

func TestTokenizeStructuralPunctuation(t *testing.T) {
	require.Equal(t, []string{"{", "}", "(", ")", "[", "]", ",", ";", ":", "|"},
		tokenValues(t, "{}()[],;:|"))
}

func TestTokenizeEnvelope(t *testing.T) {
	require.Equal(t, []string{"<{", "ensure", "1", "+", "1", "is", "2", ";", "quote", "(", "42", ")", "}>"},
		tokenValues(t, "<{ ensure 1+1 is 2; quote(42) }>"))
}

func TestTokenizeNFCNormalizesIdentifiers(t *testing.T) {
	// "é" as precomposed (U+00E9) vs. combining-accent form must lex to the
	// same word lexeme after NFC normalization.
	precomposed := "café"
	decomposed := "café"
	a := tokenValues(t, precomposed)
	b := tokenValues(t, decomposed)
	require.Equal(t, a, b)
}

func TestTokenizeLineAndColumnTracking(t *testing.T) {
	toks, err := Tokenize("a\nbb", "<test>", false)
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, 1, toks[1].Column)
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("\x01", "<test>", false)
	require.Error(t, err)
}
