package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"texel/internal/ast"
)

// WalkAST recursively traverses an AST and serializes it into a map structure for JSON output.
func WalkAST(node ast.Node) interface{} {
	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Module:
		statements := walkStatements(n.Statements)
		imports := make([]interface{}, len(n.Imports))
		for i, m := range n.Imports {
			imports[i] = m.Path
		}
		return map[string]interface{}{
			"0.type":       "Module",
			"1.name":       n.Name,
			"2.path":       n.Path,
			"3.globals":    n.Globals,
			"4.strings":    n.Strings,
			"5.imports":    imports,
			"6.statements": statements,
		}

	case *ast.LetStatement:
		return map[string]interface{}{
			"0.type":  "LetStatement",
			"1.line":  n.Token.Line,
			"2.name":  n.Name,
			"3.local": n.Local,
			"4.value": WalkAST(n.Value),
		}

	case *ast.FunctionStatement:
		parameters := make([]interface{}, len(n.Parameters))
		for i, param := range n.Parameters {
			parameters[i] = map[string]interface{}{
				"0.name":    param.Name,
				"1.default": WalkAST(param.Default),
			}
		}
		return map[string]interface{}{
			"0.type":       "FunctionStatement",
			"1.line":       n.Token.Line,
			"2.name":       n.Name,
			"3.parameters": parameters,
			"4.locals":     n.Locals,
			"5.body":       WalkAST(n.Body),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"0.type":       "BlockStatement",
			"1.line":       n.Token.Line,
			"2.statements": walkStatements(n.Statements),
		}

	case *ast.IfStatement:
		var elseBranch interface{}
		if n.Else != nil {
			elseBranch = WalkAST(n.Else)
		}
		return map[string]interface{}{
			"0.type":      "IfStatement",
			"1.line":      n.Token.Line,
			"2.condition": WalkAST(n.Condition),
			"3.then":      WalkAST(n.Then),
			"4.else":      elseBranch,
		}

	case *ast.ForStatement:
		return map[string]interface{}{
			"0.type":       "ForStatement",
			"1.line":       n.Token.Line,
			"2.init":       walkStatements(n.Init),
			"3.conditions": walkExpressions(n.Conditions),
			"4.increments": walkExpressions(n.Increments),
			"5.body":       WalkAST(n.Body),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"0.type":      "WhileStatement",
			"1.line":      n.Token.Line,
			"2.condition": WalkAST(n.Condition),
			"3.body":      WalkAST(n.Body),
		}

	case *ast.BreakStatement:
		return map[string]interface{}{
			"0.type": "BreakStatement",
			"1.line": n.Token.Line,
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"0.type":        "ReturnStatement",
			"1.line":        n.Token.Line,
			"2.returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.ImportStatement:
		return map[string]interface{}{
			"0.type":   "ImportStatement",
			"1.line":   n.Token.Line,
			"2.path":   n.Path,
			"3.module": WalkAST(n.Module),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"0.type":       "ExpressionStatement",
			"1.line":       n.Token.Line,
			"2.expression": WalkAST(n.Expression),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"0.type":    "Identifier",
			"1.line":    n.Token.Line,
			"2.value":   n.Value,
			"3.swizzle": ast.SwizzleString(n.Swizzle),
		}

	case *ast.BooleanLiteral:
		return map[string]interface{}{
			"0.type":  "BooleanLiteral",
			"1.line":  n.Token.Line,
			"2.value": n.Value,
		}

	case *ast.NumberLiteral:
		return map[string]interface{}{
			"0.type":  "NumberLiteral",
			"1.line":  n.Token.Line,
			"2.token": n.TokenLiteral(),
			"3.value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"0.type":  "StringLiteral",
			"1.line":  n.Token.Line,
			"2.value": n.Value,
			"3.index": n.Index,
		}

	case *ast.VoidLiteral:
		return map[string]interface{}{
			"0.type": "VoidLiteral",
			"1.line": n.Token.Line,
		}

	case *ast.VectorLiteral:
		return map[string]interface{}{
			"0.type":       "VectorLiteral",
			"1.line":       n.Token.Line,
			"2.token":      n.TokenLiteral(),
			"3.components": walkExpressions(n.Components),
			"4.swizzle":    ast.SwizzleString(n.Swizzle),
		}

	case *ast.AssignExpression:
		return map[string]interface{}{
			"0.type":     "AssignExpression",
			"1.line":     n.Token.Line,
			"2.name":     n.Name,
			"3.swizzle":  ast.SwizzleString(n.Swizzle),
			"4.operator": n.Operator,
			"5.value":    WalkAST(n.Value),
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"0.type":     "PrefixExpression",
			"1.line":     n.Token.Line,
			"2.operator": n.Operator,
			"3.right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"0.type":     "InfixExpression",
			"1.line":     n.Token.Line,
			"2.left":     WalkAST(n.Left),
			"3.operator": n.Operator,
			"4.right":    WalkAST(n.Right),
		}

	case *ast.TernaryExpression:
		return map[string]interface{}{
			"0.type":      "TernaryExpression",
			"1.line":      n.Token.Line,
			"2.condition": WalkAST(n.Condition),
			"3.then":      WalkAST(n.Then),
			"4.else":      WalkAST(n.Else),
		}

	case *ast.CallExpression:
		return map[string]interface{}{
			"0.type":      "CallExpression",
			"1.line":      n.Token.Line,
			"2.function":  WalkAST(n.Function),
			"3.arguments": walkExpressions(n.Arguments),
			"4.swizzle":   ast.SwizzleString(n.Swizzle),
		}

	default:
		return map[string]interface{}{
			"0.type": "Unknown: " + n.String(),
		}
	}
}

func walkStatements(statements []ast.Statement) []interface{} {
	out := make([]interface{}, len(statements))
	for i, s := range statements {
		out[i] = WalkAST(s)
	}
	return out
}

func walkExpressions(expressions []ast.Expression) []interface{} {
	out := make([]interface{}, len(expressions))
	for i, e := range expressions {
		out[i] = WalkAST(e)
	}
	return out
}

// WriteDebugAST writes the module, imports included, to a JSON file.
func WriteDebugAST(module *ast.Module, filename string) error {
	astMap := WalkAST(module)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
