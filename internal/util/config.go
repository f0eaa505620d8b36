package util

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ConfigFileName = "texel.toml"
	HomeEnv        = "TEXEL_HOME"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	TexelHome string `toml:"-"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Output   string  `toml:"output"`
	Function string  `toml:"function"`
	Time     float64 `toml:"time"`
	Gamma    bool    `toml:"gamma"`

	PaletteFile   string `toml:"palette_file"`
	PaletteDriver string `toml:"palette_driver"`
	PaletteDSN    string `toml:"palette_dsn"`
	PaletteName   string `toml:"palette_name"`

	PatternSize int    `toml:"pattern_size"`
	PatternDir  string `toml:"pattern_dir"`

	MaxLoopIterations int `toml:"max_loop_iterations"`

	DebugAST         bool `toml:"debug_ast"`
	DebugDisassemble bool `toml:"debug_disassemble"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:          "error",
		Width:             512,
		Height:            512,
		Function:          "shade",
		Gamma:             true,
		PaletteDriver:     "sqlite3",
		PatternSize:       256,
		MaxLoopIterations: 10_000_000,
		TexelHome:         os.Getenv(HomeEnv),
	}
}

// DefaultConfigPath is $TEXEL_HOME/texel.toml, empty when the variable is unset.
func (c *Configuration) DefaultConfigPath() string {
	if c.TexelHome == "" {
		return ""
	}
	return filepath.Join(c.TexelHome, ConfigFileName)
}

// LoadConfigurationFile decodes path over cfg, fields missing from the file
// keep their current values.
func LoadConfigurationFile(path string, cfg *Configuration) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to load config '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("unknown config keys ignored",
			slog.String("path", path), slog.String("keys", strings.Join(keys, ", ")))
	}
	return nil
}
