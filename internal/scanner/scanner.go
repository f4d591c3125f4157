// Package scanner turns source text into a stream of tokens with precise
// source spans, one call to Next at a time.
package scanner

import "github.com/sexpvm/sexpvm/internal/token"

// ASCII classification tables, built once, indexed directly by byte value.
var (
	isDigitByte    [128]bool
	isLowerByte    [128]bool
	identPartByte  [128]bool // [a-z0-9_-]
	keywordRunByte [128]bool // [a-z0-9_:-]
	singleCharKind [128]token.Kind
)

func init() {
	for i := 0; i < 128; i++ {
		singleCharKind[i] = token.NOOP // sentinel: "not a single-char token"
	}
	for c := byte('0'); c <= '9'; c++ {
		isDigitByte[c] = true
	}
	for c := byte('a'); c <= 'z'; c++ {
		isLowerByte[c] = true
	}
	for i := 0; i < 128; i++ {
		identPartByte[i] = isLowerByte[i] || isDigitByte[i] || i == '_' || i == '-'
		keywordRunByte[i] = identPartByte[i] || i == ':'
	}

	singleCharKind['('] = token.LEFTPAREN
	singleCharKind[')'] = token.RIGHTPAREN
	singleCharKind['{'] = token.LEFTBRACE
	singleCharKind['}'] = token.RIGHTBRACE
	singleCharKind['['] = token.LEFTBRACKET
	singleCharKind[']'] = token.RIGHTBRACKET
	singleCharKind[','] = token.COMMA
	singleCharKind['.'] = token.DOT
	singleCharKind[';'] = token.SEMICOLON
	singleCharKind['+'] = token.PLUS
	singleCharKind['-'] = token.MINUS
	singleCharKind['*'] = token.STAR
	singleCharKind['/'] = token.SLASH
}

// Scanner is a single-pass, single-use scanner over one source string.
type Scanner struct {
	source  string
	line    int
	start   int
	current int
}

// New creates a scanner positioned at the start of source, line 1.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Next scans and returns the next token, implementing the scanToken
// contract: skip whitespace, detect EOF, then dispatch on the next byte.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()

	switch {
	case c < 128 && singleCharKind[c] != token.NOOP:
		return s.make(singleCharKind[c])
	case c == '!':
		if s.match('=') {
			return s.make(token.BANGEQUAL)
		}
		return s.make(token.BANG)
	case c == '=':
		return s.make(token.EQUAL)
	case c == '<':
		if s.match('=') {
			return s.make(token.LESSEQUAL)
		}
		return s.make(token.LESS)
	case c == '>':
		if s.match('=') {
			return s.make(token.GREATEREQUAL)
		}
		return s.make(token.GREATER)
	case c == '"':
		return s.string()
	case c >= '0' && c <= '9':
		return s.number()
	case c >= 'a' && c <= 'z':
		return s.identifier()
	case c == ':':
		return s.keyword()
	default:
		return s.errorToken("Unexpected character.")
	}
}

func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		default:
			return
		}
	}
}

// string scans a double-quoted string literal. An EOF before the closing
// quote is a lex error.
func (s *Scanner) string() token.Token {
	for {
		if s.isAtEnd() {
			return s.errorToken("Unterminated string.")
		}
		c := s.peek()
		if c == '"' {
			s.current++
			break
		}
		if c == '\n' {
			s.line++
		}
		s.current++
	}
	return s.make(token.STRING)
}

// number scans an INT or FLOAT literal. A '.' only starts the fractional
// part when followed by a digit; otherwise it is left for the next call to
// scan as its own DOT token.
func (s *Scanner) number() token.Token {
	for !s.isAtEnd() && isDigitByte[s.peek()] {
		s.current++
	}

	isFloat := false
	if !s.isAtEnd() && s.peek() == '.' && s.hasDigitAt(s.current+1) {
		isFloat = true
		s.current++ // consume '.'
		for !s.isAtEnd() && isDigitByte[s.peek()] {
			s.current++
		}
	}

	if isFloat {
		return s.make(token.FLOAT)
	}
	return s.make(token.INT)
}

// identifier scans a lowercase identifier run and resolves it against the
// reserved-word dictionary.
func (s *Scanner) identifier() token.Token {
	for !s.isAtEnd() && identPartByte[s.peek()] {
		s.current++
	}
	lexeme := s.source[s.start:s.current]
	if kind, ok := reservedWords.lookup(lexeme); ok {
		return s.make(kind)
	}
	return s.make(token.IDENTIFIER)
}

// keyword scans a ':'-prefixed keyword literal, e.g. ":foo-bar". The leading
// colon is excluded from the resulting lexeme span.
func (s *Scanner) keyword() token.Token {
	for !s.isAtEnd() && keywordRunByte[s.peek()] {
		s.current++
	}
	s.start++ // advance start past the leading ':'
	return s.make(token.KEYWORD)
}

func (s *Scanner) hasDigitAt(i int) bool {
	if i >= len(s.source) {
		return false
	}
	c := s.source[i]
	return c < 128 && isDigitByte[c]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) peek() byte {
	return s.source[s.current]
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Line:   s.line,
		Start:  s.start,
		Length: s.current - s.start,
	}
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.Token{
		Kind:   token.ERROR,
		Line:   s.line,
		Start:  s.start,
		Length: s.current - s.start,
		Err:    message,
	}
}
