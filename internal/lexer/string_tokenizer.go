package lexer

import (
	"strings"
	"texel/internal/token"
)

type SingleLineStringTokenizer struct {
	lexer *Lexer
}

func NewSingleLineStringTokenizer(lexer *Lexer) *SingleLineStringTokenizer {
	return &SingleLineStringTokenizer{lexer: lexer}
}

// NextToken reads the body of a string literal, the opening `"` has already been consumed.
func (s *SingleLineStringTokenizer) NextToken() token.Token {
	var result strings.Builder
	startPosition := s.lexer.position
	line := s.lexer.line

	// always fall back to the general tokenizer after the string ends
	defer s.lexer.switchMode(NewGeneralTokenizer(s.lexer))

	for {
		if s.lexer.ch == 0 || s.lexer.ch == '\n' {
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Line: line, Position: startPosition}
		}

		if s.lexer.ch == '"' {
			s.lexer.readChar() // Consume the closing `"`
			break
		}

		if s.lexer.ch == '\\' && s.lexer.peekChar() == '"' {
			s.lexer.readChar()
		}
		result.WriteRune(s.lexer.ch)
		s.lexer.readChar()
	}

	return token.Token{
		Type:     token.STRING,
		Literal:  result.String(),
		Line:     line,
		Position: startPosition,
	}
}
