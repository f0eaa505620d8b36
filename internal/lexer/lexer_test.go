package lexer

import (
	"texel/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let half = 0.5; // comment
fn add(x, y = .25) {
	return x + y;
}
# alt comment
color += vec3(1, 2e2, 3);
/* block
   comment */
!- / * % < <= > >= == != && || ? :
uv.xy = sample(uv, "bricks");
for (let i = 0; i < 3; i = i + 1) { while true { break; } }
import "lib.tx";
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
		expectedLine    int
	}{
		{token.LET, "let", 1},
		{token.IDENT, "five", 1},
		{token.ASSIGN, "=", 1},
		{token.INT, "5", 1},
		{token.SEMICOLON, ";", 1},
		{token.LET, "let", 2},
		{token.IDENT, "half", 2},
		{token.ASSIGN, "=", 2},
		{token.FLOAT, "0.5", 2},
		{token.SEMICOLON, ";", 2},
		{token.FUNCTION, "fn", 3},
		{token.IDENT, "add", 3},
		{token.LPAREN, "(", 3},
		{token.IDENT, "x", 3},
		{token.COMMA, ",", 3},
		{token.IDENT, "y", 3},
		{token.ASSIGN, "=", 3},
		{token.FLOAT, ".25", 3},
		{token.RPAREN, ")", 3},
		{token.LBRACE, "{", 3},
		{token.RETURN, "return", 4},
		{token.IDENT, "x", 4},
		{token.PLUS, "+", 4},
		{token.IDENT, "y", 4},
		{token.SEMICOLON, ";", 4},
		{token.RBRACE, "}", 5},
		{token.IDENT, "color", 7},
		{token.PLUS, "+", 7},
		{token.ASSIGN, "=", 7},
		{token.VEC3, "vec3", 7},
		{token.LPAREN, "(", 7},
		{token.INT, "1", 7},
		{token.COMMA, ",", 7},
		{token.FLOAT, "2e2", 7},
		{token.COMMA, ",", 7},
		{token.INT, "3", 7},
		{token.RPAREN, ")", 7},
		{token.SEMICOLON, ";", 7},
		{token.BANG, "!", 10},
		{token.MINUS, "-", 10},
		{token.SLASH, "/", 10},
		{token.ASTERISK, "*", 10},
		{token.PERCENT, "%", 10},
		{token.LT, "<", 10},
		{token.LT_EQ, "<=", 10},
		{token.GT, ">", 10},
		{token.GT_EQ, ">=", 10},
		{token.EQ, "==", 10},
		{token.NOT_EQ, "!=", 10},
		{token.LOGICAL_AND, "&&", 10},
		{token.LOGICAL_OR, "||", 10},
		{token.QUESTION, "?", 10},
		{token.COLON, ":", 10},
		{token.IDENT, "uv", 11},
		{token.PERIOD, ".", 11},
		{token.IDENT, "xy", 11},
		{token.ASSIGN, "=", 11},
		{token.IDENT, "sample", 11},
		{token.LPAREN, "(", 11},
		{token.IDENT, "uv", 11},
		{token.COMMA, ",", 11},
		{token.STRING, "bricks", 11},
		{token.RPAREN, ")", 11},
		{token.SEMICOLON, ";", 11},
		{token.FOR, "for", 12},
		{token.LPAREN, "(", 12},
		{token.LET, "let", 12},
		{token.IDENT, "i", 12},
		{token.ASSIGN, "=", 12},
		{token.INT, "0", 12},
		{token.SEMICOLON, ";", 12},
		{token.IDENT, "i", 12},
		{token.LT, "<", 12},
		{token.INT, "3", 12},
		{token.SEMICOLON, ";", 12},
		{token.IDENT, "i", 12},
		{token.ASSIGN, "=", 12},
		{token.IDENT, "i", 12},
		{token.PLUS, "+", 12},
		{token.INT, "1", 12},
		{token.RPAREN, ")", 12},
		{token.LBRACE, "{", 12},
		{token.WHILE, "while", 12},
		{token.TRUE, "true", 12},
		{token.LBRACE, "{", 12},
		{token.BREAK, "break", 12},
		{token.SEMICOLON, ";", 12},
		{token.RBRACE, "}", 12},
		{token.RBRACE, "}", 12},
		{token.IMPORT, "import", 13},
		{token.STRING, "lib.tx", 13},
		{token.SEMICOLON, ";", 13},
		{token.EOF, "", 14},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}

		if tok.Line != tt.expectedLine {
			t.Fatalf("tests[%d] - line wrong for %q. expected=%d, got=%d",
				i, tt.expectedLiteral, tt.expectedLine, tok.Line)
		}
	}
}

func TestNumberEdges(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Token
	}{
		{
			name:  "integer swizzle is not a float",
			input: "1.x",
			want: []token.Token{
				{Type: token.INT, Literal: "1"},
				{Type: token.PERIOD, Literal: "."},
				{Type: token.IDENT, Literal: "x"},
			},
		},
		{
			name:  "signed exponent",
			input: "1.5e-3",
			want:  []token.Token{{Type: token.FLOAT, Literal: "1.5e-3"}},
		},
		{
			name:  "e without digits is an identifier",
			input: "2e",
			want: []token.Token{
				{Type: token.INT, Literal: "2"},
				{Type: token.IDENT, Literal: "e"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(New(tt.input))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i].Type != tt.want[i].Type || got[i].Literal != tt.want[i].Literal {
					t.Fatalf("token %d: expected %q %q, got %q %q",
						i, tt.want[i].Type, tt.want[i].Literal, got[i].Type, got[i].Literal)
				}
			}
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens := Tokenize(New("let s = \"open\nlet"))
	var found bool
	for _, tok := range tokens {
		if tok.Type == token.ILLEGAL {
			found = true
			if tok.Literal != "unterminated string" {
				t.Fatalf("unexpected literal %q", tok.Literal)
			}
		}
	}
	if !found {
		t.Fatalf("expected an ILLEGAL token, got %v", tokens)
	}
}
