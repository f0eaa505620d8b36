package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // color, uv, foo
	INT    = "INT"    // 1343456
	FLOAT  = "FLOAT"  // 0.25, .5, 1e-3
	STRING = "STRING" // "bricks"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	QUESTION = "?"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	LOGICAL_AND = "&&"
	LOGICAL_OR  = "||"

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"

	// Keywords
	LET      = "LET"
	FUNCTION = "FUNCTION"
	IF       = "IF"
	ELSE     = "ELSE"
	FOR      = "FOR"
	WHILE    = "WHILE"
	BREAK    = "BREAK"
	RETURN   = "RETURN"
	IMPORT   = "IMPORT"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	VOID     = "VOID"
	VEC2     = "VEC2"
	VEC3     = "VEC3"
)

type Token struct {
	Type     TokenType
	Literal  string
	Line     int // 1-based source line
	Position int // the src index of the token
}

var keywords = map[string]TokenType{
	// constants
	"true":  TRUE,
	"false": FALSE,
	"void":  VOID,

	// declarations
	"let":    LET,
	"fn":     FUNCTION,
	"import": IMPORT,

	// flow control
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"while":  WHILE,
	"break":  BREAK,
	"return": RETURN,

	// constructors
	"vec2": VEC2,
	"vec3": VEC3,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
