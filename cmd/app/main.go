package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"texel/internal/compiler"
	"texel/internal/engine"
	"texel/internal/palette"
	"texel/internal/parser"
	"texel/internal/pattern"
	"texel/internal/repl"
	"texel/internal/texture"
	"texel/internal/util"
	"texel/internal/vm"
)

var (
	// Version is stamped at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool

	configPath string
	flags      = util.DefaultConfiguration()
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Config file (default $TEXEL_HOME/texel.toml)")
	// render config
	flag.IntVar(&flags.Width, "width", flags.Width, "Render width in pixels")
	flag.IntVar(&flags.Height, "height", flags.Height, "Render height in pixels")
	flag.StringVar(&flags.Output, "output", flags.Output, "Render the shade function into this PNG file")
	flag.StringVar(&flags.Function, "function", flags.Function, "Function to render")
	flag.Float64Var(&flags.Time, "time", flags.Time, "Value of the time variable")
	flag.BoolVar(&flags.Gamma, "gamma", flags.Gamma, "Gamma correct the rendered image")
	flag.IntVar(&flags.MaxLoopIterations, "max-loop", flags.MaxLoopIterations, "Iteration cap for a single loop")
	// services
	flag.StringVar(&flags.PaletteFile, "palette", flags.PaletteFile, "Palette file (.txt or .hex)")
	flag.StringVar(&flags.PaletteDriver, "palette-driver", flags.PaletteDriver, "Palette store driver: sqlite3, mysql, postgres")
	flag.StringVar(&flags.PaletteDSN, "palette-dsn", flags.PaletteDSN, "Palette store data source name")
	flag.StringVar(&flags.PaletteName, "palette-name", flags.PaletteName, "Palette to load from (or save into) the store")
	flag.IntVar(&flags.PatternSize, "pattern-size", flags.PatternSize, "Edge of the generated pattern textures")
	flag.StringVar(&flags.PatternDir, "patterns", flags.PatternDir, "Directory of pattern PNGs overriding the generated ones")
	// debug
	flag.BoolVar(&flags.DebugAST, "debug-ast", flags.DebugAST, "Render the AST as a JSON file")
	flag.BoolVar(&flags.DebugDisassemble, "disasm", flags.DebugDisassemble, "Print the compiled program")
	// log config
	flag.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&flags.LogFile, "log-file", flags.LogFile, "Log file path (if not set, logs to stderr)")
}

// overrides copies explicitly set flags over the file configuration.
var overrides = map[string]func(dst *util.Configuration){
	"width":          func(c *util.Configuration) { c.Width = flags.Width },
	"height":         func(c *util.Configuration) { c.Height = flags.Height },
	"output":         func(c *util.Configuration) { c.Output = flags.Output },
	"function":       func(c *util.Configuration) { c.Function = flags.Function },
	"time":           func(c *util.Configuration) { c.Time = flags.Time },
	"gamma":          func(c *util.Configuration) { c.Gamma = flags.Gamma },
	"max-loop":       func(c *util.Configuration) { c.MaxLoopIterations = flags.MaxLoopIterations },
	"palette":        func(c *util.Configuration) { c.PaletteFile = flags.PaletteFile },
	"palette-driver": func(c *util.Configuration) { c.PaletteDriver = flags.PaletteDriver },
	"palette-dsn":    func(c *util.Configuration) { c.PaletteDSN = flags.PaletteDSN },
	"palette-name":   func(c *util.Configuration) { c.PaletteName = flags.PaletteName },
	"pattern-size":   func(c *util.Configuration) { c.PatternSize = flags.PatternSize },
	"patterns":       func(c *util.Configuration) { c.PatternDir = flags.PatternDir },
	"debug-ast":      func(c *util.Configuration) { c.DebugAST = flags.DebugAST },
	"disasm":         func(c *util.Configuration) { c.DebugDisassemble = flags.DebugDisassemble },
	"log-level":      func(c *util.Configuration) { c.LogLevel = flags.LogLevel },
	"log-file":       func(c *util.Configuration) { c.LogFile = flags.LogFile },
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Creates a new Logger that uses a JSONHandler
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	opts, err := serviceOptions(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		if err := repl.Start(config, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(config, opts, flag.Arg(0)); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	path := configPath
	if path == "" {
		if p := config.DefaultConfigPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := util.LoadConfigurationFile(path, &config); err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply(&config)
		}
	})
	return config, nil
}

func serviceOptions(config util.Configuration) (engine.Options, error) {
	opts := engine.Options{
		Out:               os.Stdout,
		MaxLoopIterations: config.MaxLoopIterations,
		Time:              float32(config.Time),
	}

	patterns := pattern.NewLibrary(config.PatternSize)
	if config.PatternDir != "" {
		if err := patterns.LoadDir(config.PatternDir); err != nil {
			return opts, err
		}
	}
	opts.Patterns = patterns

	pal, err := resolvePalette(config)
	if err != nil {
		return opts, err
	}
	if pal != nil {
		opts.Palette = pal
	}
	return opts, nil
}

// resolvePalette loads a palette file, a stored palette, or both: a file with
// a store and a name is saved into the store under that name.
func resolvePalette(config util.Configuration) (*palette.Palette, error) {
	var pal *palette.Palette
	if config.PaletteFile != "" {
		p, err := palette.LoadFile(config.PaletteFile)
		if err != nil {
			return nil, err
		}
		pal = p
	}
	if config.PaletteDSN == "" || config.PaletteName == "" {
		return pal, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := palette.OpenStore(ctx, config.PaletteDriver, config.PaletteDSN)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if pal != nil {
		pal.Name = config.PaletteName
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return pal, store.Save(ctx, pal)
	}
	return store.Load(ctx, config.PaletteName)
}

func run(config util.Configuration, opts engine.Options, path string) error {
	eng := engine.New(opts)

	module, err := eng.ParseFile(path)
	if err != nil {
		return err
	}
	if config.DebugAST {
		astPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".ast.json"
		if err := parser.WriteDebugAST(module, astPath); err != nil {
			slog.Warn("failed to write AST", slog.String("path", astPath), slog.Any("error", err))
		}
	}

	if err := eng.Compile(module); err != nil {
		return err
	}
	if config.DebugDisassemble {
		vm.DumpProgram(os.Stdout, eng.Program())
	}

	v, ok, err := eng.Execute()
	if err != nil {
		return err
	}
	if ok && config.Output == "" {
		fmt.Println(v.String())
	}

	if config.Output == "" {
		return nil
	}
	index, found := eng.FunctionIndex(config.Function)
	if !found {
		return fmt.Errorf("function '%s' not found in %s", config.Function, path)
	}
	buffer := texture.NewRenderBuffer(config.Width, config.Height)
	if err := eng.Shade(buffer, index); err != nil {
		return err
	}
	if dir := filepath.Dir(config.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := buffer.SavePNG(config.Output, config.Gamma); err != nil {
		return err
	}
	slog.Info("image written", slog.String("path", config.Output),
		slog.Int("width", config.Width), slog.Int("height", config.Height))
	return nil
}

// reportError prints source context for errors that carry a location.
func reportError(err error) {
	var (
		pe   *parser.ParseError
		ce   *compiler.CompileError
		path string
		line int
	)
	switch {
	case errors.As(err, &pe):
		path, line = pe.Path, pe.Line
	case errors.As(err, &ce):
		path, line = ce.Path, ce.Line
	}

	fmt.Fprintln(os.Stderr, err)
	if path == "" {
		return
	}
	if src, readErr := os.ReadFile(path); readErr == nil {
		fmt.Fprint(os.Stderr, util.ContextLines(string(src), line))
	}
}

func configureLogWriter(logFile string) *os.File {
	if logFile == "" {
		return os.Stderr
	}
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	logWriter, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("texel version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: texel [options] [filename]

Options:
  -config <path>         Config file. Default is $TEXEL_HOME/texel.toml when present.
  -output <path>         Render the shade function into a PNG file.
  -function <name>       Function to render. Default is 'shade'.
  -width, -height <px>   Render size. Default is 512x512.
  -time <t>              Value of the time variable.
  -gamma                 Gamma correct the rendered image. Default is true.
  -max-loop <n>          Iteration cap for a single loop. Default is 10000000.
  -palette <path>        Palette file (.txt or .hex).
  -palette-driver <name> Palette store driver: sqlite3, mysql, postgres.
  -palette-dsn <dsn>     Palette store data source name.
  -palette-name <name>   Palette to load from (or save into) the store.
  -pattern-size <px>     Edge of the generated pattern textures. Default is 256.
  -patterns <dir>        Directory of pattern PNGs overriding the generated ones.
  -debug-ast             Render the AST as a JSON file.
  -disasm                Print the compiled program.
  -help                  Display this help information and exit.
  -version               Display version information and exit.
  -log-level <level>     Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>       Specify a log file to write logs. Default is stderr.

Flags set on the command line override the config file.

Examples:
  texel                                  Start the REPL
  texel stone.shpz                       Run a script
  texel -output stone.png stone.shpz     Run a script and render its shade function

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
