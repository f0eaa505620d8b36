package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texel/internal/ast"
)

func TestParseRendering(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"let and expression", "let a = 2; a + 2;", "let a = 2;\n(a + 2);\n"},
		{"product binds tighter", "let a = 1; a + 2 * 3;", "let a = 1;\n(a + (2 * 3));\n"},
		{"compound assignment", "let a = 1; a += 2;", "let a = 1;\na += 2;\n"},
		{"swizzle assignment", "let v = vec3(1); v.xy = vec2(2, 3);", "let v = vec3(1, 1, 1);\nv.xy = vec2(2, 3);\n"},
		{"ternary", "let a = 1; let b = a > 0 ? 1 : 2;", "let a = 1;\nlet b = ((a > 0) ? 1 : 2);\n"},
		{"logic", "let a = 1; a || a && a == 1;", "let a = 1;\n(a || (a && (a == 1)));\n"},
		{"assignment is right associative", "let a = 1; let b = 2; a = b = 3;", "let a = 1;\nlet b = 2;\na = (b = 3);\n"},
		{"function with default", "fn f(x, y = 2) { let z = x + y; return z; }", "fn f(x, y = 2) { let z = (x + y); return z; }\n"},
		{"parameters without commas", "fn f(x y) { return x; }", "fn f(x, y) { return x; }\n"},
		{"call with swizzle", "fn f(x) { return x; } f(1).xy;", "fn f(x) { return x; }\nf(1).xy;\n"},
		{"prefix", "-uv.x;", "(-uv.x);\n"},
		{"for loop", "for (let i = 0; i < 3; i += 1) { color += 1; }", "for (let i = 0; (i < 3); (i += 1)) { color += 1; }\n"},
		{"if else", "if uv.x > 0.5 { color = vec3(1); } else { color = vec3(0); }", "if (uv.x > 0.5) { color = vec3(1, 1, 1); } else { color = vec3(0, 0, 0); }\n"},
		{"bare return", "fn f() { return; }", "fn f() { return; }\n"},
		{"empty vector", "vec2();", "vec2(0, 0);\n"},
		{"vec2 replicates", "vec2(4);", "vec2(4, 4);\n"},
		{"string argument", `sample(uv, "bricks");`, "sample(uv, \"bricks\");\n"},
		{"grouping leaves no node", "(1 + 2) * 3;", "((1 + 2) * 3);\n"},
		{"empty statement", ";", ";\n"},
		{"comments", "# hash\n// line\n/* block */ let a = 1;", "let a = 1;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := module.String(); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}

			// rendering is stable under a reparse
			again, err := ParseString(module.String())
			if err != nil {
				t.Fatalf("reparse failed: %v", err)
			}
			if again.String() != module.String() {
				t.Errorf("reparse changed rendering: %q vs %q", again.String(), module.String())
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		message    string
		line       int
		incomplete bool
	}{
		{"missing value", "let a = ;", "Unexpected ';'", 1, false},
		{"unknown identifier", "let a = 1;\n\nfoo;", "Unknown identifier 'foo'", 3, false},
		{"invalid target", "1 = 2;", "Invalid assignment target: '='", 1, false},
		{"invalid compound target", "let a = 1; a + 1 *= 2;", "Invalid assignment target: '*='", 1, false},
		{"missing call paren", "fn f(x) { return x; } f(1;", "Expect ')' after function arguments", 1, false},
		{"too many vector components", "vec2(1, 2, 3);", "Expected ')' after vector components", 1, false},
		{"missing equals", "let a 1;", "Expected '=' after variable name", 1, false},
		{"missing semicolon", "let v = vec3(1); v.foo;", "Expected ';' after expression", 1, false},
		{"ternary without colon", "let a = 1; a ? 1 2;", "Expect ':' after condition for ternary", 1, false},
		{"forward call", "f(1); fn f(x) { return x; }", "Unknown identifier 'f'", 1, false},
		{"unclosed block", "fn f() {\n let a = 1;", "Expected '}' after block", 2, true},
		{"dangling operator", "let a = 1 +", "Unexpected end of input", 1, true},
		{"unterminated string", `print("abc`, "Illegal token: unterminated string", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("expected an error")
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, pe.Message)
			}
			if pe.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, pe.Line)
			}
			if pe.Path != stringModulePath {
				t.Errorf("expected path %q, got %q", stringModulePath, pe.Path)
			}
			if IsIncomplete(err) != tt.incomplete {
				t.Errorf("expected incomplete=%v", tt.incomplete)
			}
		})
	}
}

func TestArgumentLimit(t *testing.T) {
	args := func(n int) string {
		return strings.TrimSuffix(strings.Repeat("1,", n), ",")
	}

	if _, err := ParseString("print(" + args(255) + ");"); err != nil {
		t.Fatalf("255 arguments should parse: %v", err)
	}
	_, err := ParseString("print(" + args(256) + ");")
	if err == nil || !strings.Contains(err.Error(), "Cannot have more than 255 arguments") {
		t.Fatalf("expected the argument limit error, got %v", err)
	}
}

func TestSlotsAndLocals(t *testing.T) {
	module, err := ParseString(`
let a = 1;
let b = "one";
let a = "two";
fn f(x, y) {
	let t = x;
	let t = y;
	let u = t;
	return u;
}
`)
	if err != nil {
		t.Fatal(err)
	}

	if module.Globals["a"] != 0 || module.Globals["b"] != 1 || len(module.Globals) != 2 {
		t.Errorf("unexpected globals %v", module.Globals)
	}
	if len(module.Strings) != 2 || module.Strings[0] != "one" || module.Strings[1] != "two" {
		t.Errorf("unexpected strings %v", module.Strings)
	}

	fn := module.Statements[3].(*ast.FunctionStatement)
	if fn.Arity() != 2 {
		t.Errorf("expected arity 2, got %d", fn.Arity())
	}
	if strings.Join(fn.Locals, ",") != "x,y,t,u" {
		t.Errorf("unexpected locals %v", fn.Locals)
	}
	let := fn.Body.Statements[0].(*ast.LetStatement)
	if !let.Local {
		t.Errorf("let inside a function must be local")
	}
}

func TestLocalsDoNotLeak(t *testing.T) {
	_, err := ParseString("fn f(x) { return x; } x;")
	if err == nil || !strings.Contains(err.Error(), "Unknown identifier 'x'") {
		t.Fatalf("expected x to be unknown outside f, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.shpz", `let k = 2; fn twice(x) { return x * k; } let name = "lib";`)
	main := writeFile(t, dir, "main.shpz", `import "lib.shpz"; let y = twice(3); sample(uv, "value");`)

	module, err := New().ParseFile(main)
	if err != nil {
		t.Fatal(err)
	}
	if module.Name != "main" {
		t.Errorf("expected module name main, got %s", module.Name)
	}
	if len(module.Imports) != 1 || module.Imports[0].Name != "lib" {
		t.Fatalf("expected one import of lib, got %d", len(module.Imports))
	}
	if module.Globals["k"] != 0 || module.Globals["name"] != 1 || module.Globals["y"] != 2 {
		t.Errorf("unexpected globals %v", module.Globals)
	}
	if strings.Join(module.Strings, ",") != "lib,value" {
		t.Errorf("unexpected strings %v", module.Strings)
	}
	imp := module.Statements[0].(*ast.ImportStatement)
	if imp.Module == nil || len(imp.Module.Statements) != 3 {
		t.Errorf("expected the imported statements on the import node")
	}
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.shpz", `import "b.shpz";`)
	writeFile(t, dir, "b.shpz", `import "a.shpz";`)
	writeFile(t, dir, "missing.shpz", `import "nope.shpz";`)
	broken := writeFile(t, dir, "broken.shpz", "let a = 1;\nlet b = ;")
	writeFile(t, dir, "uses_broken.shpz", `import "broken.shpz";`)

	tests := []struct {
		file    string
		message string
		path    string
	}{
		{"a.shpz", "Import cycle detected", ""},
		{"missing.shpz", "Could not read import file", ""},
		{"uses_broken.shpz", "Unexpected ';'", broken},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := New().ParseFile(filepath.Join(dir, tt.file))
			if err == nil || !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q, got %v", tt.message, err)
			}
			if tt.path != "" {
				pe := err.(*ParseError)
				if pe.Path != tt.path || pe.Line != 2 {
					t.Errorf("expected the error in %s:2, got %s:%d", tt.path, pe.Path, pe.Line)
				}
			}
		})
	}
}

func TestWriteDebugAST(t *testing.T) {
	module, err := ParseString("let a = vec3(1, 2, 3); a.x;")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ast.json")
	if err := WriteDebugAST(module, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"0.type": "Module"`, `"VectorLiteral"`, `"3.swizzle": ".x"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in the dump", want)
		}
	}
}
