package lexer

import (
	"texel/internal/token"
)

type GeneralTokenizer struct {
	lexer *Lexer
}

func NewGeneralTokenizer(lexer *Lexer) *GeneralTokenizer {
	return &GeneralTokenizer{lexer: lexer}
}

func (g *GeneralTokenizer) NextToken() token.Token {
	var tok token.Token

	g.lexer.skipWhitespace()

	startPosition := g.lexer.position // Record the current position as the start of the token

	switch g.lexer.ch {
	case '=':
		tok = g.lexer.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = g.lexer.newToken(token.PLUS, g.lexer.ch, startPosition)
	case '-':
		tok = g.lexer.newToken(token.MINUS, g.lexer.ch, startPosition)
	case '!':
		tok = g.lexer.handleCompoundToken(token.BANG, '=', token.NOT_EQ)
	case '/':
		tok = g.lexer.newToken(token.SLASH, g.lexer.ch, startPosition)
	case '*':
		tok = g.lexer.newToken(token.ASTERISK, g.lexer.ch, startPosition)
	case '%':
		tok = g.lexer.newToken(token.PERCENT, g.lexer.ch, startPosition)
	case '?':
		tok = g.lexer.newToken(token.QUESTION, g.lexer.ch, startPosition)
	case '&':
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '&', token.LOGICAL_AND)
	case '|':
		tok = g.lexer.handleCompoundToken(token.ILLEGAL, '|', token.LOGICAL_OR)
	case '<':
		tok = g.lexer.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = g.lexer.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case ';':
		tok = g.lexer.newToken(token.SEMICOLON, g.lexer.ch, startPosition)
	case ':':
		tok = g.lexer.newToken(token.COLON, g.lexer.ch, startPosition)
	case ',':
		tok = g.lexer.newToken(token.COMMA, g.lexer.ch, startPosition)
	case '.':
		if isDigit(g.lexer.peekChar()) {
			tok.Line = g.lexer.line
			tok.Literal, tok.Type = g.lexer.readNumber()
			tok.Position = startPosition
			return tok
		}
		tok = g.lexer.newToken(token.PERIOD, g.lexer.ch, startPosition)
	case '{':
		tok = g.lexer.newToken(token.LBRACE, g.lexer.ch, startPosition)
	case '}':
		tok = g.lexer.newToken(token.RBRACE, g.lexer.ch, startPosition)
	case '(':
		tok = g.lexer.newToken(token.LPAREN, g.lexer.ch, startPosition)
	case ')':
		tok = g.lexer.newToken(token.RPAREN, g.lexer.ch, startPosition)
	case '"':
		g.lexer.readChar() // consume the opening "
		g.lexer.switchMode(NewSingleLineStringTokenizer(g.lexer))
		return g.lexer.currentMode.NextToken()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Line = g.lexer.line
		tok.Position = startPosition
	default:
		if isLetter(g.lexer.ch) {
			tok.Line = g.lexer.line
			tok.Literal = g.lexer.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			return tok
		} else if isDigit(g.lexer.ch) {
			tok.Line = g.lexer.line
			tok.Literal, tok.Type = g.lexer.readNumber()
			tok.Position = startPosition
			return tok
		} else {
			tok = g.lexer.newToken(token.ILLEGAL, g.lexer.ch, startPosition)
		}
	}

	g.lexer.readChar()
	return tok
}
