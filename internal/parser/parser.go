package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"texel/internal/ast"
	"texel/internal/builtin"
	"texel/internal/lexer"
	"texel/internal/token"
)

const (
	_           int = iota
	LOWEST          // statement level
	ASSIGNMENT      // = += -= *= /=, right associative
	LOGICAL_OR      // ||
	LOGICAL_AND     // &&
	TERNARY         // c ? a : b
	EQUALS          // ==
	COMPARISON      // > or <
	SUM             // +
	PRODUCT         // *
	PREFIX          // -X or !X
	CALL            // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:      ASSIGNMENT,
	token.LOGICAL_OR:  LOGICAL_OR,
	token.LOGICAL_AND: LOGICAL_AND,
	token.QUESTION:    TERNARY,
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.SLASH:       PRODUCT,
	token.ASTERISK:    PRODUCT,
	token.PERCENT:     PRODUCT,
	token.LPAREN:      CALL,
}

// compound lists the operators that form op-assignments when followed by '='.
var compound = map[token.TokenType]bool{
	token.PLUS:     true,
	token.MINUS:    true,
	token.ASTERISK: true,
	token.SLASH:    true,
}

const maxArguments = 255

const stringModulePath = "string_based.shpz"

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser turns source into an ast.Module. Globals, strings and function names
// are shared with the parsers of imported files so slots stay unique.
type Parser struct {
	tokens []token.Token
	pos    int // index of the token after peekToken
	eof    token.Token

	name string
	path string
	src  string
	err  *ParseError

	curToken  token.Token
	peekToken token.Token

	globals    map[string]int
	strings    []string
	functions  map[string]bool
	locals     map[string]int // nil outside a function declaration
	localNames []string
	importing  map[string]bool // files on the current import chain
	imports    []*ast.Module

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New() *Parser {
	p := &Parser{
		globals:   map[string]int{},
		functions: map[string]bool{},
		importing: map[string]bool{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.VOID, p.parseVoid)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.VEC2, p.parseVectorLiteral)
	p.registerPrefix(token.VEC3, p.parseVectorLiteral)
	p.registerPrefix(token.ILLEGAL, p.parseIllegal)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LOGICAL_AND, p.parseInfixExpression)
	p.registerInfix(token.LOGICAL_OR, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)
	p.registerInfix(token.QUESTION, p.parseTernaryExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	return p
}

// ParseString parses source that does not live in a file.
func ParseString(source string) (*ast.Module, error) {
	return New().ParseModule("main", source, stringModulePath)
}

func (p *Parser) ParseFile(path string) (*ast.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		p.importing[abs] = true
		defer delete(p.importing, abs)
	}
	return p.ParseModule(moduleName(path), string(src), path)
}

// ParseModule parses one source unit. Parsing stops at the first error.
func (p *Parser) ParseModule(name, source, path string) (*ast.Module, error) {
	p.reset(name, source, path)

	module := &ast.Module{Name: name, Path: path, Source: source}
	for !p.curTokenIs(token.EOF) && p.err == nil {
		stmt := p.parseStatement()
		if stmt != nil {
			module.Statements = append(module.Statements, stmt)
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil, p.err
	}

	module.Globals = p.globals
	module.Strings = p.strings
	module.Imports = p.imports
	return module, nil
}

func (p *Parser) reset(name, source, path string) {
	p.name = name
	p.path = path
	p.src = source
	p.err = nil
	p.imports = nil
	p.locals = nil
	p.localNames = nil

	p.tokens = lexer.Tokenize(lexer.New(source))
	p.pos = 0
	p.eof = token.Token{Type: token.EOF, Line: strings.Count(source, "\n") + 1, Position: len(source)}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *Parser) tokenAt(i int) token.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.eof
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.tokenAt(p.pos)
	p.pos++
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// errorAt records the first error, everything after it is noise.
func (p *Parser) errorAt(tok token.Token, message string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{
		Message: fmt.Sprintf(message, args...),
		Line:    tok.Line,
		Path:    p.path,
		atEnd:   tok.Type == token.EOF,
	}
}

func (p *Parser) expectPeek(t token.TokenType, message string, args ...any) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken, message, args...)
	return false
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.EOF {
		p.errorAt(tok, "Unexpected end of input")
		return
	}
	p.errorAt(tok, "Unexpected '%s'", tok.Literal)
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement(true)
	case token.FUNCTION:
		return p.parseFunctionStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.SEMICOLON:
		return &ast.ExpressionStatement{Token: p.curToken, Expression: &ast.VoidLiteral{Token: p.curToken}}
	default:
		return p.parseExpressionStatement()
	}
}

// parseLetStatement declares a global at top level and a local inside a
// function. The trailing ';' is optional unless the let is a for initializer.
func (p *Parser) parseLetStatement(statement bool) ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT, "Expected variable name") {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(token.ASSIGN, "Expected '=' after variable name") {
		return nil
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	if p.locals != nil {
		stmt.Local = true
		p.declareLocal(stmt.Name)
	} else if _, ok := p.globals[stmt.Name]; !ok {
		p.globals[stmt.Name] = len(p.globals)
	}

	if statement && p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) declareLocal(name string) {
	if _, ok := p.locals[name]; ok {
		return
	}
	p.locals[name] = len(p.localNames)
	p.localNames = append(p.localNames, name)
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if p.locals != nil {
		p.errorAt(p.curToken, "Functions cannot be declared inside functions")
		return nil
	}
	if !p.expectPeek(token.IDENT, "Expected function name") {
		return nil
	}
	stmt.Name = p.curToken.Literal
	// registered before the body so recursive calls resolve
	p.functions[stmt.Name] = true

	if !p.expectPeek(token.LPAREN, "Expected '(' after function name") {
		return nil
	}

	p.locals = map[string]int{}
	p.localNames = nil
	defer func() {
		p.locals = nil
		p.localNames = nil
	}()

	for !p.peekTokenIs(token.RPAREN) {
		if !p.expectPeek(token.IDENT, "Expected parameter name") {
			return nil
		}
		param := &ast.Parameter{Token: p.curToken, Name: p.curToken.Literal}

		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			// defaults are evaluated outside the call frame
			locals := p.locals
			p.locals = nil
			param.Default = p.parseExpression(LOWEST)
			p.locals = locals
			if param.Default == nil {
				return nil
			}
		}

		p.declareLocal(param.Name)
		stmt.Parameters = append(stmt.Parameters, param)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken()

	if !p.expectPeek(token.LBRACE, "Expected '{' before function body") {
		return nil
	}
	body := p.parseBlockStatement()
	if body == nil {
		return nil
	}
	stmt.Body = body.(*ast.BlockStatement)
	stmt.Locals = p.localNames

	return stmt
}

func (p *Parser) parseBlockStatement() ast.Statement {
	block := &ast.BlockStatement{Token: p.curToken}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorAt(p.curToken, "Expected '}' after block")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	p.nextToken()
	stmt.Then = p.parseStatement()
	if stmt.Then == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseStatement()
		if stmt.Else == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.ReturnValue = &ast.VoidLiteral{Token: p.curToken}
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	if !p.expectPeek(token.SEMICOLON, "Expected ';' after return value") {
		return nil
	}

	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expected '(' after 'for'") {
		return nil
	}

	if !p.peekTokenIs(token.SEMICOLON) {
		for {
			p.nextToken()
			var init ast.Statement
			if p.curTokenIs(token.LET) {
				init = p.parseLetStatement(false)
			} else {
				tok := p.curToken
				if exp := p.parseExpression(LOWEST); exp != nil {
					init = &ast.ExpressionStatement{Token: tok, Expression: exp}
				}
			}
			if init == nil {
				return nil
			}
			stmt.Init = append(stmt.Init, init)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if !p.expectPeek(token.SEMICOLON, "Expected ';' after loop initializer") {
		return nil
	}

	if !p.peekTokenIs(token.SEMICOLON) {
		if stmt.Conditions = p.parseExpressionSeries(); stmt.Conditions == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON, "Expected ';' after loop condition") {
		return nil
	}

	if !p.peekTokenIs(token.RPAREN) {
		if stmt.Increments = p.parseExpressionSeries(); stmt.Increments == nil {
			return nil
		}
	}
	if !p.expectPeek(token.RPAREN, "Expected ')' after for clauses") {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseExpressionSeries reads `a, b, c` starting at the peek token.
func (p *Parser) parseExpressionSeries() []ast.Expression {
	var list []ast.Expression
	for {
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil
		}
		list = append(list, exp)
		if !p.peekTokenIs(token.COMMA) {
			return list
		}
		p.nextToken()
	}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseBreakStatement() ast.Statement {
	stmt := &ast.BreakStatement{Token: p.curToken}
	if !p.expectPeek(token.SEMICOLON, "Expected ';' after 'break'") {
		return nil
	}
	return stmt
}

func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}

	if !p.expectPeek(token.STRING, "Expected a path string after 'import'") {
		return nil
	}
	stmt.Path = p.curToken.Literal

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	module := p.importModule(stmt.Path, stmt.Token)
	if module == nil {
		return nil
	}
	stmt.Module = module
	p.imports = append(p.imports, module)

	return stmt
}

// importModule parses an imported file with a parser that shares this one's
// tables, then takes the grown string table back.
func (p *Parser) importModule(path string, tok token.Token) *ast.Module {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(filepath.Dir(p.path), path)
	}
	key := full
	if abs, err := filepath.Abs(full); err == nil {
		key = abs
	}

	if p.importing[key] {
		p.errorAt(tok, "Import cycle detected: '%s'", path)
		return nil
	}

	src, err := os.ReadFile(full)
	if err != nil {
		p.errorAt(tok, "Could not read import file '%s'", path)
		return nil
	}

	child := New()
	child.globals = p.globals
	child.strings = p.strings
	child.functions = p.functions
	child.importing = p.importing

	p.importing[key] = true
	module, err := child.ParseModule(moduleName(full), string(src), full)
	delete(p.importing, key)

	p.strings = child.strings
	if err != nil {
		if p.err == nil {
			p.err = child.err
		}
		return nil
	}
	return module
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if !p.expectPeek(token.SEMICOLON, "Expected ';' after expression") {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// peekPrecedence treats `+ - * /` followed by '=' as an assignment and keeps
// `%` followed by '=' out of the expression altogether.
func (p *Parser) peekPrecedence() int {
	if p.tokenAt(p.pos).Type == token.ASSIGN {
		if compound[p.peekToken.Type] {
			return ASSIGNMENT
		}
		if p.peekTokenIs(token.PERCENT) {
			return LOWEST
		}
	}
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

// known resolves a name: intrinsics, then locals, then globals, then functions.
func (p *Parser) known(name string) bool {
	if ast.Intrinsics[name] {
		return true
	}
	if _, ok := p.locals[name]; ok {
		return true
	}
	if _, ok := p.globals[name]; ok {
		return true
	}
	return p.functions[name] || builtin.IsBuiltin(name)
}

func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.known(ident.Value) {
		p.errorAt(p.curToken, "Unknown identifier '%s'", ident.Value)
		return nil
	}

	ident.Swizzle = p.parseSwizzle()
	return ident
}

// parseSwizzle consumes `.xyzw` after an operand. Anything else after the
// period is left alone.
func (p *Parser) parseSwizzle() []uint8 {
	if !p.peekTokenIs(token.PERIOD) {
		return nil
	}
	name := p.tokenAt(p.pos)
	if name.Type != token.IDENT || p.tokenAt(p.pos+1).Type == token.PERIOD {
		return nil
	}
	lanes, ok := swizzleLanes(name.Literal)
	if !ok {
		return nil
	}
	p.nextToken()
	p.nextToken()
	return lanes
}

func swizzleLanes(s string) ([]uint8, bool) {
	if len(s) == 0 || len(s) > 4 {
		return nil, false
	}
	lanes := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte("xyzw", s[i])
		if idx < 0 {
			return nil, false
		}
		lanes[i] = uint8(idx)
	}
	return lanes, true
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 32)
	if err != nil {
		p.errorAt(p.curToken, "Invalid integer number")
		return nil
	}

	lit.Value = float32(value)
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 32)
	if err != nil {
		p.errorAt(p.curToken, "Invalid float number")
		return nil
	}

	lit.Value = float32(value)
	return lit
}

// parseStringLiteral interns the string, the literal evaluates to its index.
func (p *Parser) parseStringLiteral() ast.Expression {
	p.strings = append(p.strings, p.curToken.Literal)
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal, Index: len(p.strings) - 1}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseVoid() ast.Expression {
	return &ast.VoidLiteral{Token: p.curToken}
}

func (p *Parser) parseIllegal() ast.Expression {
	p.errorAt(p.curToken, "Illegal token: %s", p.curToken.Literal)
	return nil
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	if compound[p.curToken.Type] && p.peekTokenIs(token.ASSIGN) {
		operator := p.curToken.Literal + "="
		p.nextToken()
		return p.parseAssignment(left, operator)
	}

	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(token.LOGICAL_AND) {
		// the right side of && binds at equality level
		precedence = TERNARY
	}
	p.nextToken()

	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	return p.parseAssignment(left, "=")
}

// parseAssignment expects curToken on the '='. Assignments are right associative.
func (p *Parser) parseAssignment(left ast.Expression, operator string) ast.Expression {
	tok := p.curToken
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.errorAt(tok, "Invalid assignment target: '%s'", operator)
		return nil
	}

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	return &ast.AssignExpression{
		Token:    tok,
		Name:     ident.Value,
		Operator: operator,
		Swizzle:  ident.Swizzle,
		Value:    value,
	}
}

func (p *Parser) parseTernaryExpression(condition ast.Expression) ast.Expression {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: condition}

	p.nextToken()
	expression.Then = p.parseExpression(LOWEST)
	if expression.Then == nil {
		return nil
	}

	if !p.expectPeek(token.COLON, "Expect ':' after condition for ternary") {
		return nil
	}

	p.nextToken()
	expression.Else = p.parseExpression(LOWEST)
	if expression.Else == nil {
		return nil
	}

	return expression
}

// parseGroupedExpression returns the inner expression, the AST keeps no parentheses.
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN, "Expected ')' after expression") {
		return nil
	}

	return exp
}

// parseVectorLiteral fills missing components from the first one, an empty
// argument list gives zeros.
func (p *Parser) parseVectorLiteral() ast.Expression {
	lit := &ast.VectorLiteral{Token: p.curToken}
	size := 2
	if p.curTokenIs(token.VEC3) {
		size = 3
	}

	if !p.expectPeek(token.LPAREN, "Expected '(' after %s", lit.Token.Literal) {
		return nil
	}

	var components []ast.Expression
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			exp := p.parseExpression(LOWEST)
			if exp == nil {
				return nil
			}
			components = append(components, exp)

			if p.peekTokenIs(token.COMMA) && len(components) < size {
				p.nextToken()
				continue
			}
			if !p.expectPeek(token.RPAREN, "Expected ')' after vector components") {
				return nil
			}
			break
		}
	}

	lit.Components = make([]ast.Expression, size)
	for i := range lit.Components {
		switch {
		case i < len(components):
			lit.Components[i] = components[i]
		case len(components) > 0:
			lit.Components[i] = components[0]
		default:
			lit.Components[i] = &ast.NumberLiteral{
				Token: token.Token{Type: token.INT, Literal: "0", Line: lit.Token.Line, Position: lit.Token.Position},
			}
		}
	}

	lit.Swizzle = p.parseSwizzle()
	return lit
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			if len(exp.Arguments) >= maxArguments {
				p.errorAt(p.curToken, "Cannot have more than 255 arguments")
				return nil
			}
			p.nextToken()
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil
			}
			exp.Arguments = append(exp.Arguments, arg)

			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RPAREN, "Expect ')' after function arguments") {
			return nil
		}
	}

	exp.Swizzle = p.parseSwizzle()
	return exp
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
