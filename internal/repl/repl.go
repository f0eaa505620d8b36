package repl

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"texel/internal/ast"
	"texel/internal/engine"
	"texel/internal/object"
	"texel/internal/parser"
	"texel/internal/util"
	"texel/internal/vm"
)

const (
	PROMPT       = ">> "
	CONTINUATION = "... "
	historyFile  = ".texel_history"
)

// Session keeps the declarations of earlier inputs. Every input is compiled
// together with imports, the current global values and the functions seen so
// far, so later lines can refer to them.
type Session struct {
	engine  *engine.Engine
	imports []string
	funcs   []string
	funcPos map[string]int
	globals map[string]int
}

func NewSession(e *engine.Engine) *Session {
	return &Session{engine: e, funcPos: map[string]int{}}
}

// complete appends the ';' interactive users tend to leave off.
func complete(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasSuffix(input, ";") || strings.HasSuffix(input, "}") {
		return input
	}
	return input + ";"
}

func literal(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return "0"
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// prelude renders the session state as source, and returns its statement count.
func (s *Session) prelude() (string, int) {
	var b strings.Builder
	n := 0
	for _, imp := range s.imports {
		b.WriteString(imp + "\n")
		n++
	}

	names := make([]string, 0, len(s.globals))
	for name := range s.globals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return s.globals[names[i]] < s.globals[names[j]] })
	values := s.engine.Globals()
	for _, name := range names {
		v := object.Zero
		if slot := s.globals[name]; slot < len(values) {
			v = values[slot]
		}
		fmt.Fprintf(&b, "let %s = vec3(%s, %s, %s);\n", name, literal(v.X), literal(v.Y), literal(v.Z))
		n++
	}

	for _, fn := range s.funcs {
		b.WriteString(fn + "\n")
		n++
	}
	return b.String(), n
}

func (s *Session) parse(input string) (*ast.Module, int, error) {
	prelude, n := s.prelude()
	module, err := parser.ParseString(prelude + complete(input))
	return module, n, err
}

// Incomplete reports whether input needs more lines before it can parse. The
// raw input must run out of tokens, and the ';' completion must not fix it.
func (s *Session) Incomplete(input string) bool {
	prelude, _ := s.prelude()
	if _, err := parser.ParseString(prelude + input); !parser.IsIncomplete(err) {
		return false
	}
	_, _, err := s.parse(input)
	return err != nil
}

// Eval runs one input. ok is false when the input left no value.
func (s *Session) Eval(input string) (vm.Value, bool, error) {
	module, n, err := s.parse(input)
	if err != nil {
		return object.Zero, false, err
	}
	if err := s.engine.Compile(module); err != nil {
		return object.Zero, false, err
	}
	v, ok, err := s.engine.Execute()
	if err != nil {
		return object.Zero, false, err
	}

	s.globals = module.Globals
	for _, stmt := range module.Statements[n:] {
		switch st := stmt.(type) {
		case *ast.ImportStatement:
			s.imports = append(s.imports, st.String())
		case *ast.FunctionStatement:
			if i, seen := s.funcPos[st.Name]; seen {
				s.funcs[i] = st.String()
			} else {
				s.funcPos[st.Name] = len(s.funcs)
				s.funcs = append(s.funcs, st.String())
			}
		}
	}
	return v, ok, nil
}

// Start runs an interactive session on the terminal until EOF or :quit.
func Start(cfg util.Configuration, opts engine.Options) error {
	fmt.Printf("texel %s, type :quit to exit\n", cfg.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := NewSession(engine.New(opts))
	for {
		input, ok := read(ln, session)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return nil
			}
			fmt.Println("unknown command, type :quit to exit")
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		v, ok, err := session.Eval(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		if ok {
			fmt.Println(v.String())
		}
	}
}

// read collects lines until the input parses or fails for a reason other
// than running out of tokens.
func read(ln *liner.State, session *Session) (string, bool) {
	var b strings.Builder
	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONTINUATION
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !session.Incomplete(b.String()) {
			return b.String(), true
		}
	}
}
