package lexer

import (
	"github.com/xirelogy/go-lox/internal/token"
)

const (
	msgUnterminatedString  = "unterminated string"
	msgUnexpectedCharacter = "unexpected character"
)

// Lexer converts source text into a stream of tokens on demand.
type Lexer struct {
	input string
	start int // first byte of the token being scanned
	pos   int // next byte to read
	line  int
}

// New creates a lexer for the provided source text.
func New(input string) *Lexer {
	l := &Lexer{}
	l.Reset(input)
	return l
}

// Reset rewinds the lexer to the start of input.
func (l *Lexer) Reset(input string) {
	l.input = input
	l.start = 0
	l.pos = 0
	l.line = 1
}

// Tokenize scans input up to and including the EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// NextToken returns the next token from the input. Once the input is
// exhausted every call returns EOF at the same position.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.start = l.pos

	if l.atEnd() {
		return l.makeToken(token.EOF)
	}

	ch := l.advance()
	if isAlpha(ch) {
		return l.readIdentifier()
	}
	if isDigit(ch) {
		return l.readNumber()
	}

	switch ch {
	case '(':
		return l.makeToken(token.LParen)
	case ')':
		return l.makeToken(token.RParen)
	case '{':
		return l.makeToken(token.LBrace)
	case '}':
		return l.makeToken(token.RBrace)
	case ',':
		return l.makeToken(token.Comma)
	case '.':
		return l.makeToken(token.Dot)
	case '-':
		return l.makeToken(token.Minus)
	case '+':
		return l.makeToken(token.Plus)
	case ';':
		return l.makeToken(token.Semicolon)
	case '/':
		return l.makeToken(token.Slash)
	case '*':
		return l.makeToken(token.Star)
	case '!':
		if l.match('=') {
			return l.makeToken(token.BangEqual)
		}
		return l.makeToken(token.Bang)
	case '=':
		if l.match('=') {
			return l.makeToken(token.EqualEqual)
		}
		return l.makeToken(token.Equal)
	case '<':
		if l.match('=') {
			return l.makeToken(token.LessEqual)
		}
		return l.makeToken(token.Less)
	case '>':
		if l.match('=') {
			return l.makeToken(token.GreaterEqual)
		}
		return l.makeToken(token.Greater)
	case '"':
		return l.readString()
	}

	return l.errorToken(msgUnexpectedCharacter)
}

func (l *Lexer) makeToken(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: l.input[l.start:l.pos],
		Offset: l.start,
		Line:   l.line,
	}
}

func (l *Lexer) errorToken(msg string) token.Token {
	return token.Token{
		Type:   token.Error,
		Lexeme: msg,
		Offset: l.start,
		Line:   l.line,
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for l.peek() != '\n' && !l.atEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.makeToken(token.LookupIdent(l.input[l.start:l.pos]))
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.Number)
}

func (l *Lexer) readString() token.Token {
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.atEnd() {
		return l.errorToken(msgUnterminatedString)
	}
	l.advance() // closing quote
	return l.makeToken(token.String)
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) advance() byte {
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.input[l.pos] != expected {
		return false
	}
	l.pos++
	return true
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}
