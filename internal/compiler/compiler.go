package compiler

import (
	"fmt"
	"log/slog"

	"texel/internal/ast"
	"texel/internal/builtin"
	"texel/internal/object"
	"texel/internal/pattern"
	"texel/internal/vm"
)

// CompileError reports a semantic error found while lowering the AST.
type CompileError struct {
	Message string
	Line    int
	Path    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

// entry point recorded on the program
const shadeFunction = "shade"

var loadOps = map[string]vm.OpCode{
	"uv":        vm.OpUV,
	"color":     vm.OpColor,
	"normal":    vm.OpNormal,
	"roughness": vm.OpRoughness,
	"metallic":  vm.OpMetallic,
	"emissive":  vm.OpEmissive,
	"opacity":   vm.OpOpacity,
	"bump":      vm.OpBump,
	"hitpoint":  vm.OpHitpoint,
	"time":      vm.OpTime,
}

var storeOps = map[string]vm.OpCode{
	"uv":        vm.OpSetUV,
	"color":     vm.OpSetColor,
	"normal":    vm.OpSetNormal,
	"roughness": vm.OpSetRoughness,
	"metallic":  vm.OpSetMetallic,
	"emissive":  vm.OpSetEmissive,
	"opacity":   vm.OpSetOpacity,
	"bump":      vm.OpSetBump,
}

var infixOps = map[string]vm.OpCode{
	"+":  vm.OpAdd,
	"-":  vm.OpSub,
	"*":  vm.OpMul,
	"/":  vm.OpDiv,
	"%":  vm.OpMod,
	"==": vm.OpEq,
	"!=": vm.OpNe,
	"<":  vm.OpLt,
	"<=": vm.OpLe,
	">":  vm.OpGt,
	">=": vm.OpGe,
	"&&": vm.OpAnd,
	"||": vm.OpOr,
}

var compoundOps = map[string]vm.OpCode{
	"+=": vm.OpAdd,
	"-=": vm.OpSub,
	"*=": vm.OpMul,
	"/=": vm.OpDiv,
}

// Compiler lowers a parsed module into a vm.Program. Instructions are emitted
// into the list on top of the target stack, nested control flow opens a new one.
type Compiler struct {
	prog     *vm.Program
	targets  [][]vm.Op
	globals  map[string]int
	locals   map[string]int // nil at top level
	path     string
	imported []string
}

func New() *Compiler {
	return &Compiler{}
}

func (c *Compiler) Compile(module *ast.Module) (*vm.Program, error) {
	c.prog = vm.NewProgram()
	c.prog.Strings = module.Strings
	c.globals = module.Globals
	c.locals = nil
	c.targets = nil
	c.imported = nil

	c.begin()
	if err := c.compileModule(module); err != nil {
		return nil, err
	}
	c.prog.Body = Optimize(c.end())
	c.prog.Globals = len(module.Globals)

	return c.prog, nil
}

// ImportedPaths lists the files pulled in by the last Compile, in import order.
func (c *Compiler) ImportedPaths() []string {
	return c.imported
}

func (c *Compiler) begin() {
	c.targets = append(c.targets, make([]vm.Op, 0, 8))
}

func (c *Compiler) end() []vm.Op {
	n := len(c.targets) - 1
	ops := c.targets[n]
	c.targets = c.targets[:n]
	return ops
}

func (c *Compiler) emit(op vm.Op) {
	n := len(c.targets) - 1
	c.targets[n] = append(c.targets[n], op)
}

func (c *Compiler) errorf(line int, format string, args ...any) error {
	return &CompileError{Message: fmt.Sprintf(format, args...), Line: line, Path: c.path}
}

func (c *Compiler) compileModule(module *ast.Module) error {
	path := c.path
	c.path = module.Path
	defer func() { c.path = path }()

	for _, stmt := range module.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileBlock(statements []ast.Statement) ([]vm.Op, error) {
	c.begin()
	for _, stmt := range statements {
		if err := c.compileStatement(stmt); err != nil {
			c.end()
			return nil, err
		}
	}
	return c.end(), nil
}

// compileNested compiles one statement into its own instruction list.
func (c *Compiler) compileNested(stmt ast.Statement) ([]vm.Op, error) {
	return c.compileBlock([]ast.Statement{stmt})
}

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
		return c.store(s.Name, s.Token.Line)

	case *ast.FunctionStatement:
		return c.compileFunction(s)

	case *ast.BlockStatement:
		for _, inner := range s.Statements {
			if err := c.compileStatement(inner); err != nil {
				return err
			}
		}
		return nil

	case *ast.IfStatement:
		then, err := c.compileNested(s.Then)
		if err != nil {
			return err
		}
		var otherwise []vm.Op
		if s.Else != nil {
			if otherwise, err = c.compileNested(s.Else); err != nil {
				return err
			}
		}
		if err := c.compileExpression(s.Condition); err != nil {
			return err
		}
		c.emit(vm.Op{Code: vm.OpIf, Then: then, Else: otherwise})
		return nil

	case *ast.ForStatement:
		return c.compileFor(s)

	case *ast.WhileStatement:
		slog.Warn("while loops are not supported, statement ignored",
			slog.String("path", c.path), slog.Int("line", s.Token.Line))
		return nil

	case *ast.BreakStatement:
		slog.Warn("break is not supported, statement ignored",
			slog.String("path", c.path), slog.Int("line", s.Token.Line))
		return nil

	case *ast.ReturnStatement:
		if err := c.compileExpression(s.ReturnValue); err != nil {
			return err
		}
		c.emit(vm.Simple(vm.OpReturn))
		return nil

	case *ast.ImportStatement:
		if s.Module == nil {
			return c.errorf(s.Token.Line, "Import '%s' was not parsed", s.Path)
		}
		locals := c.locals
		c.locals = nil
		err := c.compileModule(s.Module)
		c.locals = locals
		if err != nil {
			return err
		}
		c.imported = append(c.imported, s.Module.Path)
		return nil

	case *ast.ExpressionStatement:
		if _, empty := s.Expression.(*ast.VoidLiteral); empty {
			return nil
		}
		return c.compileExpression(s.Expression)
	}

	return c.errorf(0, "Unsupported statement '%s'", stmt.String())
}

func (c *Compiler) compileFunction(s *ast.FunctionStatement) error {
	fn := &vm.Function{
		Name:     s.Name,
		Arity:    s.Arity(),
		Locals:   len(s.Locals),
		Defaults: make([][]vm.Op, s.Arity()),
	}

	// the slot exists before the body so recursive calls resolve
	index, ok := c.prog.FunctionIndex[s.Name]
	if ok {
		c.prog.Functions[index] = fn
	} else {
		index = len(c.prog.Functions)
		c.prog.Functions = append(c.prog.Functions, fn)
		c.prog.FunctionIndex[s.Name] = index
	}

	outer := c.locals
	defer func() { c.locals = outer }()

	c.locals = nil
	for i, param := range s.Parameters {
		if param.Default == nil {
			continue
		}
		c.begin()
		if err := c.compileExpression(param.Default); err != nil {
			c.end()
			return err
		}
		fn.Defaults[i] = Optimize(c.end())
	}

	c.locals = make(map[string]int, len(s.Locals))
	for i, name := range s.Locals {
		c.locals[name] = i
	}

	body, err := c.compileBlock(s.Body.Statements)
	if err != nil {
		return err
	}
	fn.Body = Optimize(body)

	if s.Name == shadeFunction {
		c.prog.ShadeIndex = index
		c.prog.ShadeLocals = fn.Locals
	}
	return nil
}

func (c *Compiler) compileFor(s *ast.ForStatement) error {
	init, err := c.compileBlock(s.Init)
	if err != nil {
		return err
	}

	c.begin()
	for _, cond := range s.Conditions {
		if err := c.compileExpression(cond); err != nil {
			c.end()
			return err
		}
	}
	cond := c.end()

	c.begin()
	for _, incr := range s.Increments {
		if err := c.compileExpression(incr); err != nil {
			c.end()
			return err
		}
	}
	incr := c.end()

	body, err := c.compileNested(s.Body)
	if err != nil {
		return err
	}

	c.emit(vm.Op{Code: vm.OpFor, Init: init, Cond: cond, Incr: incr, Body: body})
	return nil
}

func (c *Compiler) compileExpression(exp ast.Expression) error {
	switch e := exp.(type) {
	case *ast.NumberLiteral:
		c.emit(vm.Push(object.Splat(e.Value)))

	case *ast.BooleanLiteral:
		c.emit(vm.Push(object.Bool(e.Value)))

	case *ast.StringLiteral:
		c.emit(vm.Push(object.Splat(float32(e.Index))))

	case *ast.VoidLiteral:
		c.emit(vm.Push(object.Zero))

	case *ast.VectorLiteral:
		for _, comp := range e.Components {
			if err := c.compileExpression(comp); err != nil {
				return err
			}
		}
		if len(e.Components) == 2 {
			c.emit(vm.Simple(vm.OpPack2))
		} else {
			c.emit(vm.Simple(vm.OpPack3))
		}
		c.swizzle(e.Swizzle)

	case *ast.Identifier:
		if err := c.load(e.Value, e.Token.Line); err != nil {
			return err
		}
		c.swizzle(e.Swizzle)

	case *ast.AssignExpression:
		return c.compileAssign(e)

	case *ast.PrefixExpression:
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		switch e.Operator {
		case "-":
			c.emit(vm.Simple(vm.OpNeg))
		case "!":
			c.emit(vm.Simple(vm.OpNot))
		default:
			return c.errorf(e.Token.Line, "Unknown operator '%s'", e.Operator)
		}

	case *ast.InfixExpression:
		code, ok := infixOps[e.Operator]
		if !ok {
			return c.errorf(e.Token.Line, "Unknown operator '%s'", e.Operator)
		}
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		c.emit(vm.Simple(code))

	case *ast.TernaryExpression:
		if err := c.compileExpression(e.Condition); err != nil {
			return err
		}
		c.begin()
		if err := c.compileExpression(e.Then); err != nil {
			c.end()
			return err
		}
		then := c.end()
		c.begin()
		if err := c.compileExpression(e.Else); err != nil {
			c.end()
			return err
		}
		otherwise := c.end()
		c.emit(vm.Op{Code: vm.OpIf, Then: then, Else: otherwise})

	case *ast.CallExpression:
		return c.compileCall(e)

	default:
		return c.errorf(0, "Unsupported expression '%s'", exp.String())
	}
	return nil
}

func (c *Compiler) swizzle(s []uint8) {
	if len(s) > 0 {
		c.emit(vm.Op{Code: vm.OpGetComponents, Swizzle: s})
	}
}

// compileAssign leaves nothing on the stack.
func (c *Compiler) compileAssign(e *ast.AssignExpression) error {
	line := e.Token.Line
	code, compound := compoundOps[e.Operator]
	if !compound && e.Operator != "=" {
		return c.errorf(line, "Unknown operator '%s'", e.Operator)
	}

	switch {
	case len(e.Swizzle) == 0 && !compound:
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}

	case len(e.Swizzle) == 0:
		if err := c.load(e.Name, line); err != nil {
			return err
		}
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		c.emit(vm.Simple(code))

	case !compound:
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		if err := c.load(e.Name, line); err != nil {
			return err
		}
		c.emit(vm.Simple(vm.OpSwap))
		c.emit(vm.Op{Code: vm.OpSetComponents, Swizzle: e.Swizzle})

	default:
		if err := c.load(e.Name, line); err != nil {
			return err
		}
		c.emit(vm.Simple(vm.OpDup))
		c.emit(vm.Op{Code: vm.OpGetComponents, Swizzle: e.Swizzle})
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		c.emit(vm.Simple(code))
		c.emit(vm.Op{Code: vm.OpSetComponents, Swizzle: e.Swizzle})
	}

	return c.store(e.Name, line)
}

func (c *Compiler) load(name string, line int) error {
	if code, ok := loadOps[name]; ok {
		c.emit(vm.Simple(code))
		return nil
	}
	if index, ok := c.locals[name]; ok {
		c.emit(vm.Op{Code: vm.OpLoadLocal, Index: index})
		return nil
	}
	if index, ok := c.globals[name]; ok {
		c.emit(vm.Op{Code: vm.OpLoadGlobal, Index: index})
		return nil
	}
	if _, ok := c.prog.FunctionIndex[name]; ok || builtin.IsBuiltin(name) {
		return c.errorf(line, "Function '%s' cannot be used as a value", name)
	}
	return c.errorf(line, "Unknown identifier '%s'", name)
}

func (c *Compiler) store(name string, line int) error {
	if ast.ReadOnlyIntrinsics[name] {
		return c.errorf(line, "Cannot assign to read-only '%s'", name)
	}
	if code, ok := storeOps[name]; ok {
		c.emit(vm.Simple(code))
		return nil
	}
	if index, ok := c.locals[name]; ok {
		c.emit(vm.Op{Code: vm.OpStoreLocal, Index: index})
		return nil
	}
	if index, ok := c.globals[name]; ok {
		c.emit(vm.Op{Code: vm.OpStoreGlobal, Index: index})
		return nil
	}
	return c.errorf(line, "Unknown variable '%s'", name)
}

func (c *Compiler) arityError(line int, name string, expected, got int) error {
	return c.errorf(line, "Wrong amount of arguments for '%s', expected '%d' got '%d'", name, expected, got)
}

func (c *Compiler) compileArguments(args []ast.Expression) error {
	for _, arg := range args {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileCall(e *ast.CallExpression) error {
	line := e.Token.Line
	name := e.FunctionName()
	if name == "" {
		return c.errorf(line, "Unknown function '%s'", e.Function.String())
	}

	if name == builtin.Sample || name == builtin.SampleNormal {
		if err := c.compileSample(e, name); err != nil {
			return err
		}
	} else if b, ok := builtin.Lookup(name); ok {
		if len(e.Arguments) != b.Arity {
			return c.arityError(line, name, b.Arity, len(e.Arguments))
		}
		if err := c.compileArguments(e.Arguments); err != nil {
			return err
		}
		c.emit(vm.Simple(b.Op))
	} else if index, ok := c.prog.FunctionIndex[name]; ok {
		fn := c.prog.Functions[index]
		if len(e.Arguments) != fn.Arity {
			return c.arityError(line, name, fn.Arity, len(e.Arguments))
		}
		if err := c.compileArguments(e.Arguments); err != nil {
			return err
		}
		c.emit(vm.Op{Code: vm.OpCall, Index: index, Arity: fn.Arity, Locals: fn.Locals})
	} else {
		return c.errorf(line, "Unknown function '%s'", name)
	}

	c.swizzle(e.Swizzle)
	return nil
}

// compileSample resolves a literal pattern name to its id at compile time.
// Any other expression is evaluated as a runtime id.
func (c *Compiler) compileSample(e *ast.CallExpression, name string) error {
	b, _ := builtin.Lookup(name)
	if len(e.Arguments) != b.Arity {
		return c.arityError(e.Token.Line, name, b.Arity, len(e.Arguments))
	}
	if err := c.compileExpression(e.Arguments[0]); err != nil {
		return err
	}

	if lit, ok := e.Arguments[1].(*ast.StringLiteral); ok {
		kind, found := pattern.KindFromName(lit.Value)
		if !found {
			slog.Warn("unknown pattern, using value noise",
				slog.String("pattern", lit.Value), slog.String("path", c.path), slog.Int("line", lit.Token.Line))
			kind = pattern.Value
		}
		c.emit(vm.Push(object.Splat(float32(kind))))
	} else if err := c.compileExpression(e.Arguments[1]); err != nil {
		return err
	}

	c.emit(vm.Simple(b.Op))
	return nil
}
