package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texel/internal/object"
	"texel/internal/pattern"
	"texel/internal/texture"
	"texel/internal/vm"
)

// small patterns keep engine construction cheap
var testPatterns = pattern.NewLibrary(16)

func newEngine(opts Options) *Engine {
	if opts.Patterns == nil {
		opts.Patterns = testPatterns
	}
	return New(opts)
}

func TestExecuteString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected object.Value
	}{
		{"arithmetic", "let a = 2; a + 2;", object.Splat(4)},
		{"fib", "fn fib(n) { if n < 2 { return n; } return fib(n - 1) + fib(n - 2); } fib(27);", object.Splat(196418)},
		{"vector math", "let v = vec3(1, 2, 3); v.zy * 2;", object.New(6, 4, 0)},
		{"swizzle assignment", "let v = vec3(0); v.xz = vec2(1, 2); v;", object.New(1, 0, 2)},
		{"compound swizzle", "let v = vec3(1, 2, 3); v.y *= 10; v;", object.New(1, 20, 3)},
		{"ternary", "let a = 3; a > 2 ? 10 : 20;", object.Splat(10)},
		{"for loop", "let s = 0; for (let i = 0; i < 5; i += 1) { s += i; } s;", object.Splat(10)},
		{"default parameter", "fn f(x, y = 5) { return x + y; } f(1, 2);", object.Splat(3)},
		{"palette", "palette(8);", object.New(1, 0, 77.0 / 255)},
		{"missing palette entry", "palette(99);", object.Zero},
		{"top level return", "let a = 1; return a + 1; a;", object.Splat(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(Options{})
			v, ok, err := e.ExecuteString(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatalf("expected a value")
			}
			if v != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, v)
			}
		})
	}
}

func TestExecuteWithoutValue(t *testing.T) {
	e := newEngine(Options{})
	_, ok, err := e.ExecuteString("let a = 1;")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("a declaration leaves no value")
	}
	if got := e.Globals()[0]; got != object.Splat(1) {
		t.Errorf("expected the global to be kept, got %s", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	e := newEngine(Options{})
	if _, _, err := e.Execute(); err == nil {
		t.Errorf("expected an error without a program")
	}
	if _, _, err := e.ExecuteString("let a = ;"); err == nil {
		t.Errorf("expected a parse error")
	}
	if _, _, err := e.ExecuteString("time = 1;"); err == nil {
		t.Errorf("expected a compile error")
	}

	limited := newEngine(Options{MaxLoopIterations: 10})
	_, _, err := limited.ExecuteString("for (let i = 0; i < 100; i += 1) { }")
	var loop *vm.LoopLimitError
	if !errors.As(err, &loop) || loop.Limit != 10 {
		t.Errorf("expected a loop limit error, got %v", err)
	}
}

func TestTime(t *testing.T) {
	e := newEngine(Options{Time: 1.5})
	v, _, err := e.ExecuteString("time * 2;")
	if err != nil {
		t.Fatal(err)
	}
	if v != object.Splat(3) {
		t.Errorf("expected 3, got %s", v)
	}
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(Options{Out: &out})
	if _, _, err := e.ExecuteString("print(vec2(1, 2));"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "print: [1, 2, 0]") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSample(t *testing.T) {
	e := newEngine(Options{})
	v, _, err := e.ExecuteString(`sample(vec2(0.3, 0.6), "bricks");`)
	if err != nil {
		t.Fatal(err)
	}
	want := testPatterns.Texture(pattern.Bricks).Sample(object.New(0.3, 0.6, 0))
	if v != want {
		t.Errorf("expected %s, got %s", want, v)
	}

	v, _, err = e.ExecuteString(`sample(vec2(0.3, 0.6), 42);`)
	if err != nil {
		t.Fatal(err)
	}
	if v != object.Zero {
		t.Errorf("expected zero for a missing pattern, got %s", v)
	}
}

func TestShade(t *testing.T) {
	e := newEngine(Options{})
	if _, _, err := e.ExecuteString("let k = 0; k = 0.5; fn shade() { color = vec3(uv.x, uv.y, k); }"); err != nil {
		t.Fatal(err)
	}
	index, ok := e.FunctionIndex("shade")
	if !ok {
		t.Fatalf("expected a shade function")
	}

	// 100x90 spans four tiles
	buf := texture.NewRenderBuffer(100, 90)
	if err := e.Shade(buf, index); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x, y     int
		expected [4]float32
	}{
		{0, 0, [4]float32{0, 1, 0.5, 1}},
		{50, 45, [4]float32{0.5, 0.5, 0.5, 1}},
		{99, 89, [4]float32{0.99, 1 - float32(89)/90, 0.5, 1}},
		{85, 10, [4]float32{0.85, 1 - float32(10)/90, 0.5, 1}},
	}
	for _, tt := range tests {
		if got := buf.At(tt.x, tt.y); got != tt.expected {
			t.Errorf("pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestShadeErrors(t *testing.T) {
	e := newEngine(Options{MaxLoopIterations: 5})
	buf := texture.NewRenderBuffer(4, 4)
	if err := e.Shade(buf, 0); err == nil {
		t.Errorf("expected an error without a program")
	}

	if _, _, err := e.ExecuteString("fn shade() { for (let i = 0; 1; i += 1) { } }"); err != nil {
		t.Fatal(err)
	}
	if err := e.Shade(buf, 3); err == nil {
		t.Errorf("expected an error for a bad index")
	}
	var loop *vm.LoopLimitError
	if err := e.Shade(buf, 0); !errors.As(err, &loop) {
		t.Errorf("expected a loop limit error, got %v", err)
	}
}

func TestTextures(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "gradient.png")
	src := `
let t = alloc(8, 4);
fn px() { return vec3(uv.x); }
iterate(t, "px");
save(t, "` + out + `");
`
	e := newEngine(Options{})
	if _, _, err := e.ExecuteString(src); err != nil {
		t.Fatal(err)
	}

	tex, err := texture.LoadPNG(out)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 8 || tex.Height != 4 {
		t.Fatalf("unexpected size %dx%d", tex.Width, tex.Height)
	}
	if tex.At(0, 0).X != 0 || tex.At(4, 0).X < 0.45 {
		t.Errorf("expected a horizontal gradient, got %s and %s", tex.At(0, 0), tex.At(4, 0))
	}
	if _, err := os.Stat(filepath.Join(dir, "gradient_normal.png")); err != nil {
		t.Errorf("expected a normal map next to the texture: %v", err)
	}
}

func TestImportedPaths(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.shpz")
	if err := os.WriteFile(lib, []byte("fn half(x) { return x / 2; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "main.shpz")
	if err := os.WriteFile(main, []byte(`import "lib.shpz"; half(9);`), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newEngine(Options{})
	module, err := e.ParseFile(main)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Compile(module); err != nil {
		t.Fatal(err)
	}
	v, _, err := e.Execute()
	if err != nil {
		t.Fatal(err)
	}
	if v != object.Splat(4.5) {
		t.Errorf("expected 4.5, got %s", v)
	}
	if paths := e.ImportedPaths(); len(paths) != 1 || paths[0] != lib {
		t.Errorf("unexpected imported paths %v", paths)
	}
	if e.DefaultPalette().Len() != 16 {
		t.Errorf("expected the 16 colour default palette")
	}
}
