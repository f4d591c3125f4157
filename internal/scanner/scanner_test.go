package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sexpvm/sexpvm/internal/token"
)

func scanAll(source string) []token.Token {
	sc := New(source)
	var toks []token.Token
	for {
		tok := sc.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestSingleCharTokens(t *testing.T) {
	toks := scanAll("(+ 1 2)")
	require.Equal(t, []token.Kind{
		token.LEFTPAREN, token.PLUS, token.INT, token.INT, token.RIGHTPAREN, token.EOF,
	}, kinds(toks))
}

func TestPairedOperators(t *testing.T) {
	tests := map[string]token.Kind{
		"!":  token.BANG,
		"!=": token.BANGEQUAL,
		"<":  token.LESS,
		"<=": token.LESSEQUAL,
		">":  token.GREATER,
		">=": token.GREATEREQUAL,
		"=":  token.EQUAL,
	}
	for src, want := range tests {
		toks := scanAll(src)
		require.Equal(t, want, toks[0].Kind, "source %q", src)
		require.Equal(t, len(src), toks[0].Length, "source %q should be consumed as one token", src)
	}
}

func TestEqualNeverDoubles(t *testing.T) {
	// "==" scans as two single EQUAL tokens: no EQUALEQUAL kind exists.
	toks := scanAll("==")
	require.Equal(t, []token.Kind{token.EQUAL, token.EQUAL, token.EOF}, kinds(toks))
}

func TestIntVsFloat(t *testing.T) {
	toks := scanAll("42 3.14 5.")
	require.Equal(t, token.INT, toks[0].Kind)
	require.Equal(t, token.FLOAT, toks[1].Kind)
	// A trailing '.' not followed by a digit is not consumed by the numeric
	// path: "5" scans as INT, then "." as its own DOT token.
	require.Equal(t, token.INT, toks[2].Kind)
	require.Equal(t, token.DOT, toks[3].Kind)
}

func TestKeywordDictionary(t *testing.T) {
	words := map[string]token.Kind{
		"and": token.AND, "or": token.OR, "if": token.IF, "else": token.ELSE,
		"for": token.FOR, "fun": token.FUN, "return": token.RETURN,
		"super": token.SUPER, "this": token.THIS, "var": token.VAR,
		"while": token.WHILE, "let": token.LET, "not": token.NOT,
		"len": token.LEN, "print": token.PRINT, "def": token.DEF,
		"class": token.CLASS, "true": token.TRUE, "false": token.FALSE,
		"nil": token.NIL,
	}
	for word, want := range words {
		toks := scanAll(word)
		require.Equal(t, want, toks[0].Kind, "word %q", word)
	}
}

func TestKeywordLexemeWithDifferentCaseIsError(t *testing.T) {
	toks := scanAll("IF")
	require.Equal(t, token.ERROR, toks[0].Kind)
}

func TestUppercaseIdentifierIsError(t *testing.T) {
	toks := scanAll("Foo")
	require.Equal(t, token.ERROR, toks[0].Kind)
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(`"hello`)
	require.Equal(t, token.ERROR, toks[0].Kind)
	require.Equal(t, "Unterminated string.", toks[0].Err)
}

func TestStringLexemeIncludesQuotes(t *testing.T) {
	src := `"hi"`
	toks := scanAll(src)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, src, toks[0].Lexeme(src))
}

func TestColonKeywordLiteral(t *testing.T) {
	src := ":foo-bar"
	toks := scanAll(src)
	require.Equal(t, token.KEYWORD, toks[0].Kind)
	require.Equal(t, "foo-bar", toks[0].Lexeme(src))
}

func TestLineTracking(t *testing.T) {
	toks := scanAll("1\n2\n3")
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, 3, toks[2].Line)
}

func TestEveryTokenAccountsForItsSpan(t *testing.T) {
	src := "(+ 1 2.5 \"hi\")"
	toks := scanAll(src)
	last := toks[len(toks)-1]
	require.Equal(t, token.EOF, last.Kind)

	prevEnd := 0
	for _, tok := range toks {
		require.Empty(t, strings.TrimSpace(src[prevEnd:tok.Start]), "only whitespace between tokens")
		prevEnd = tok.Start + tok.Length
	}
	require.Equal(t, len(src), prevEnd)
}
