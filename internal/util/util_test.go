package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContextLines(t *testing.T) {
	src := "let a = 1;\nlet b = 2;\nlet c = ;\nlet d = 4;"
	tests := []struct {
		name     string
		line     int
		expected string
	}{
		{"middle", 3, "       1 | let a = 1;\n       2 | let b = 2;\n  >    3 | let c = ;\n"},
		{"first", 1, "  >    1 | let a = 1;\n"},
		{"out of range", 9, ""},
		{"zero", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContextLines(src, tt.line); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLoadConfigurationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `
width = 128
gamma = false
palette_name = "sunset"
max_loop_iterations = 500
unknown_key = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfiguration()
	if err := LoadConfigurationFile(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 128 || cfg.Gamma || cfg.PaletteName != "sunset" || cfg.MaxLoopIterations != 500 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.Height != 512 || cfg.Function != "shade" || cfg.PatternSize != 256 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigurationFileErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfiguration()
	if err := LoadConfigurationFile(filepath.Join(dir, "missing.toml"), &cfg); err == nil {
		t.Errorf("expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("width = \"wide\""), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadConfigurationFile(bad, &cfg); err == nil {
		t.Errorf("expected a type error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	cfg := Configuration{}
	if cfg.DefaultConfigPath() != "" {
		t.Errorf("expected no path without a home")
	}
	cfg.TexelHome = "/opt/texel"
	if got := cfg.DefaultConfigPath(); got != filepath.Join("/opt/texel", ConfigFileName) {
		t.Errorf("unexpected path %s", got)
	}
}
