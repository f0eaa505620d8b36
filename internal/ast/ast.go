package ast

import (
	"bytes"
	"strings"
	"texel/internal/token"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Intrinsics are the per-pixel pseudo-variables every program can read.
var Intrinsics = map[string]bool{
	"uv":        true,
	"color":     true,
	"normal":    true,
	"roughness": true,
	"metallic":  true,
	"emissive":  true,
	"opacity":   true,
	"bump":      true,
	"hitpoint":  true,
	"time":      true,
}

// ReadOnlyIntrinsics cannot be assigned to.
var ReadOnlyIntrinsics = map[string]bool{
	"hitpoint": true,
	"time":     true,
}

// Module is the result of parsing one source unit.
type Module struct {
	Name       string
	Path       string
	Source     string
	Statements []Statement
	Globals    map[string]int // global name -> slot index
	Strings    []string       // string table, literals refer to it by index
	Imports    []*Module
}

func (m *Module) TokenLiteral() string {
	if len(m.Statements) > 0 {
		return m.Statements[0].TokenLiteral()
	}
	return ""
}

func (m *Module) String() string {
	var out bytes.Buffer

	for _, s := range m.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

type LetStatement struct {
	Token token.Token // the token.LET token
	Name  string
	Local bool
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	var out bytes.Buffer

	out.WriteString("let ")
	out.WriteString(ls.Name)
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")

	return out.String()
}

type Parameter struct {
	Token   token.Token
	Name    string
	Default Expression // nil when the parameter has no default
}

func (p *Parameter) String() string {
	if p.Default == nil {
		return p.Name
	}
	return p.Name + " = " + p.Default.String()
}

type FunctionStatement struct {
	Token      token.Token // the 'fn' token
	Name       string
	Parameters []*Parameter
	Locals     []string // parameters first, then body lets in order of appearance
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) Arity() int           { return len(fs.Parameters) }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("fn ")
	out.WriteString(fs.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(" }")

	return out.String()
}

type IfStatement struct {
	Token     token.Token // the 'if' token
	Condition Expression
	Then      Statement
	Else      Statement // nil without an else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(is.Then.String())
	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}

	return out.String()
}

type ForStatement struct {
	Token      token.Token // the 'for' token
	Init       []Statement
	Conditions []Expression
	Increments []Expression
	Body       Statement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	inits := []string{}
	for _, s := range fs.Init {
		inits = append(inits, strings.TrimSuffix(s.String(), ";"))
	}
	conds := []string{}
	for _, c := range fs.Conditions {
		conds = append(conds, c.String())
	}
	incrs := []string{}
	for _, i := range fs.Increments {
		incrs = append(incrs, i.String())
	}

	out.WriteString("for (")
	out.WriteString(strings.Join(inits, ", "))
	out.WriteString("; ")
	out.WriteString(strings.Join(conds, ", "))
	out.WriteString("; ")
	out.WriteString(strings.Join(incrs, ", "))
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

// WhileStatement is parsed but has no runtime effect.
type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// BreakStatement is parsed but has no runtime effect.
type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "break;" }

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString("return")
	if rs.ReturnValue != nil {
		if value := rs.ReturnValue.String(); value != "" {
			out.WriteString(" ")
			out.WriteString(value)
		}
	}
	out.WriteString(";")

	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	switch e := es.Expression.(type) {
	case nil:
		return ";"
	case *AssignExpression:
		// a bare statement-level assignment keeps `if c x = 1;` unambiguous
		return e.bare() + ";"
	}
	return es.Expression.String() + ";"
}

type ImportStatement struct {
	Token  token.Token // the 'import' token
	Path   string      // as written in the source
	Module *Module     // the parsed module, resolved against the importer's directory
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) String() string {
	return "import " + quote(is.Path) + ";"
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }

type NumberLiteral struct {
	Token token.Token
	Value float32
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }

// StringLiteral evaluates to its index in the module string table.
type StringLiteral struct {
	Token token.Token
	Value string
	Index int
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return quote(s.Value) }

// VoidLiteral is the `void` keyword or an omitted expression before ';'.
type VoidLiteral struct {
	Token token.Token
}

func (v *VoidLiteral) expressionNode()      {}
func (v *VoidLiteral) TokenLiteral() string { return v.Token.Literal }
func (v *VoidLiteral) String() string {
	if v.Token.Type == token.VOID {
		return "void"
	}
	return ""
}

// VectorLiteral holds exactly two or three components, omitted ones are filled by the parser.
type VectorLiteral struct {
	Token      token.Token // vec2 or vec3
	Components []Expression
	Swizzle    []uint8
}

func (vl *VectorLiteral) expressionNode()      {}
func (vl *VectorLiteral) TokenLiteral() string { return vl.Token.Literal }
func (vl *VectorLiteral) String() string {
	var out bytes.Buffer

	comps := []string{}
	for _, c := range vl.Components {
		comps = append(comps, c.String())
	}

	out.WriteString(vl.Token.Literal)
	out.WriteString("(")
	out.WriteString(strings.Join(comps, ", "))
	out.WriteString(")")
	out.WriteString(SwizzleString(vl.Swizzle))

	return out.String()
}

type Identifier struct {
	Token     token.Token // the token.IDENT token
	Value     string
	Swizzle   []uint8
	FieldPath []string // reserved, always empty
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value + SwizzleString(i.Swizzle) }

type AssignExpression struct {
	Token    token.Token // the '=' token
	Name     string
	Operator string // "=", "+=", "-=", "*=", "/="
	Swizzle  []uint8
	Value    Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) String() string {
	return "(" + ae.bare() + ")"
}

func (ae *AssignExpression) bare() string {
	return ae.Name + SwizzleString(ae.Swizzle) + " " + ae.Operator + " " + ae.Value.String()
}

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. ! or -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

type TernaryExpression struct {
	Token     token.Token // the '?' token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Then.String() + " : " + te.Else.String() + ")"
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression  // Identifier naming a builtin or user function
	Arguments []Expression
	Swizzle   []uint8
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }

// FunctionName returns the callee name, or "" when the callee is not an identifier.
func (ce *CallExpression) FunctionName() string {
	if ident, ok := ce.Function.(*Identifier); ok {
		return ident.Value
	}
	return ""
}

func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	out.WriteString(SwizzleString(ce.Swizzle))

	return out.String()
}

// SwizzleString renders lane indices back to their xyzw spelling.
func SwizzleString(swizzle []uint8) string {
	if len(swizzle) == 0 {
		return ""
	}
	const lanes = "xyzw"
	var out strings.Builder
	out.WriteByte('.')
	for _, s := range swizzle {
		if int(s) < len(lanes) {
			out.WriteByte(lanes[s])
		}
	}
	return out.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
