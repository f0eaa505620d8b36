package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"texel/internal/ast"
	"texel/internal/compiler"
	"texel/internal/object"
	"texel/internal/palette"
	"texel/internal/parser"
	"texel/internal/pattern"
	"texel/internal/texture"
	"texel/internal/util/future"
	"texel/internal/vm"
)

// TileSize is the edge of the square tiles Shade splits a buffer into.
const TileSize = 80

// Options configures the services a program sees. Nil members get defaults:
// the PICO-8 palette, a generated pattern library and PNG file textures.
type Options struct {
	Palette           vm.PaletteService
	Patterns          vm.PatternService
	Textures          vm.TextureService
	Out               io.Writer
	MaxLoopIterations int
	Time              float32 // value of the time pseudo-variable
	Logger            *slog.Logger
}

// Engine ties the parser, compiler and VM together. It holds one compiled
// program and the globals left by its last Execute.
type Engine struct {
	services *vm.Services
	compiler *compiler.Compiler
	logger   *slog.Logger
	maxLoop  int
	time     float32

	prog    *vm.Program
	globals []vm.Value
}

func New(opts Options) *Engine {
	if opts.Palette == nil {
		opts.Palette = palette.Default()
	}
	if opts.Patterns == nil {
		opts.Patterns = pattern.NewLibrary(pattern.DefaultSize)
	}
	if opts.Textures == nil {
		opts.Textures = texture.Service{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxLoopIterations <= 0 {
		opts.MaxLoopIterations = vm.DefaultMaxLoopIterations
	}

	return &Engine{
		services: &vm.Services{
			Patterns: opts.Patterns,
			Palette:  opts.Palette,
			Textures: opts.Textures,
			Out:      opts.Out,
		},
		compiler: compiler.New(),
		logger:   opts.Logger,
		maxLoop:  opts.MaxLoopIterations,
		time:     opts.Time,
	}
}

func (e *Engine) ParseFile(path string) (*ast.Module, error) {
	return parser.New().ParseFile(path)
}

func (e *Engine) ParseString(src string) (*ast.Module, error) {
	return parser.ParseString(src)
}

// Compile replaces the current program. Globals are resized, values in
// surviving slots are kept.
func (e *Engine) Compile(module *ast.Module) error {
	prog, err := e.compiler.Compile(module)
	if err != nil {
		return err
	}
	e.prog = prog
	globals := make([]vm.Value, prog.Globals)
	copy(globals, e.globals)
	e.globals = globals
	return nil
}

func (e *Engine) Program() *vm.Program {
	return e.prog
}

func (e *Engine) ImportedPaths() []string {
	return e.compiler.ImportedPaths()
}

func (e *Engine) FunctionIndex(name string) (int, bool) {
	if e.prog == nil {
		return 0, false
	}
	return e.prog.Function(name)
}

func (e *Engine) DefaultPalette() *palette.Palette {
	return palette.Default()
}

func (e *Engine) Globals() []vm.Value {
	return e.globals
}

// NewExecution returns an execution seeded with a copy of the engine globals.
func (e *Engine) NewExecution() *vm.Execution {
	exec := vm.NewExecution(len(e.globals))
	copy(exec.Globals, e.globals)
	exec.MaxLoopIterations = e.maxLoop
	exec.Time = object.Splat(e.time)
	return exec
}

func (e *Engine) runLogger(kind string) *slog.Logger {
	return e.logger.With(slog.String("run", ulid.Make().String()), slog.String("kind", kind))
}

// Execute runs the top-level body of the compiled program. ok is false when
// the body left no value.
func (e *Engine) Execute() (vm.Value, bool, error) {
	if e.prog == nil {
		return object.Zero, false, fmt.Errorf("no program compiled")
	}
	log := e.runLogger("execute")
	start := time.Now()

	exec := e.NewExecution()
	v, ok, err := exec.Run(e.prog, e.services)
	if err != nil {
		log.Error("execution failed", slog.Any("error", err))
		return object.Zero, false, err
	}
	e.globals = exec.Globals

	log.Debug("execution finished", slog.Duration("elapsed", time.Since(start)), slog.Bool("value", ok))
	return v, ok, nil
}

func (e *Engine) ExecuteString(src string) (vm.Value, bool, error) {
	module, err := e.ParseString(src)
	if err != nil {
		return object.Zero, false, err
	}
	if err := e.Compile(module); err != nil {
		return object.Zero, false, err
	}
	return e.Execute()
}

// Shade runs function fn once per pixel of buffer. The buffer is split into
// tiles that shade in parallel, each with its own execution.
func (e *Engine) Shade(buffer *texture.RenderBuffer, fn int) error {
	if e.prog == nil {
		return fmt.Errorf("no program compiled")
	}
	if fn < 0 || fn >= len(e.prog.Functions) {
		return fmt.Errorf("function index %d out of range", fn)
	}
	log := e.runLogger("shade")
	start := time.Now()

	width, height := buffer.Width, buffer.Height
	var mu sync.Mutex
	var tiles []*future.Future[struct{}]

	for ty := 0; ty < height; ty += TileSize {
		for tx := 0; tx < width; tx += TileSize {
			tw := min(TileSize, width-tx)
			th := min(TileSize, height-ty)
			tiles = append(tiles, future.New(func() (struct{}, error) {
				tile, err := e.shadeTile(fn, tx, ty, tw, th, width, height)
				if err != nil {
					return struct{}{}, err
				}
				mu.Lock()
				buffer.AccumFrom(tx, ty, tile)
				mu.Unlock()
				return struct{}{}, nil
			}))
		}
	}

	if _, err := future.All(tiles...).Await(); err != nil {
		log.Error("shading failed", slog.Any("error", err))
		return err
	}
	log.Debug("shading finished",
		slog.Int("width", width), slog.Int("height", height),
		slog.Int("tiles", len(tiles)), slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (e *Engine) shadeTile(fn, tx, ty, tw, th, width, height int) (*texture.RenderBuffer, error) {
	exec := e.NewExecution()
	tile := texture.NewRenderBuffer(tw, th)
	fw, fh := float32(width), float32(height)

	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			exec.UV = object.New(float32(tx+x)/fw, 1-float32(ty+y)/fh, 0)
			exec.Color = object.Zero
			if err := exec.Shade(fn, e.prog, e.services); err != nil {
				return nil, err
			}
			c := exec.Color
			tile.Set(x, y, [4]float32{c.X, c.Y, c.Z, 1})
		}
	}
	return tile, nil
}
