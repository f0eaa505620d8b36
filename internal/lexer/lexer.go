package lexer

import (
	"texel/internal/token"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int       // current byte position in input (points to start of current rune)
	readPosition int       // next byte position in input (start of next rune)
	ch           rune      // current rune under examination; 0 means EOF
	line         int       // line of the current rune, 1-based
	currentMode  Tokenizer // Current tokenizer strategy
}

// Tokenizer is the token source consumed by the parser.
type Tokenizer interface {
	NextToken() token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.switchMode(NewGeneralTokenizer(l))
	l.readChar()
	return l
}

// Tokenize drains a tokenizer, the trailing EOF token is not included.
func Tokenize(t Tokenizer) []token.Token {
	var tokens []token.Token
	for {
		tok := t.NextToken()
		if tok.Type == token.EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) switchMode(mode Tokenizer) {
	l.currentMode = mode
}

func (l *Lexer) NextToken() token.Token {
	return l.currentMode.NextToken()
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Line: l.line, Position: startPosition}
	}
	return l.newToken(t, l.ch, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			switch l.peekChar() {
			case '/':
				l.skipToLineEnd()
			case '*':
				l.skipBlockComment()
			default:
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipBlockComment consumes a /* ... */ comment, an unterminated one runs to EOF
func (l *Lexer) skipBlockComment() {
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions and the line counter
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or float literal and reports which one it was.
// A '.' only belongs to the number when a digit follows, so `1.x` stays INT PERIOD IDENT.
func (l *Lexer) readNumber() (string, token.TokenType) {
	start := l.position
	kind := token.TokenType(token.INT)
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		kind = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		kind = token.FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], kind
}

func (l *Lexer) exponentFollows() bool {
	next := l.peekChar()
	if isDigit(next) {
		return true
	}
	if next != '+' && next != '-' {
		return false
	}
	idx := l.readPosition + 1
	return idx < len(l.input) && isDigit(rune(l.input[idx]))
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: l.line, Position: position}
}
