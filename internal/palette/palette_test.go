package palette

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"texel/internal/object"
)

func TestDefault(t *testing.T) {
	p := Default()
	if p.Len() != 16 {
		t.Fatalf("expected 16 colours, got %d", p.Len())
	}
	if c, ok := p.Color(0); !ok || c != object.Zero {
		t.Errorf("expected black at 0, got %s", c)
	}
	if c, _ := p.Color(8); c.X != 1 || c.Y != 0 {
		t.Errorf("expected red at 8, got %s", c)
	}
	if _, ok := p.Color(16); ok {
		t.Errorf("16 is out of range")
	}
	if _, ok := p.Color(-1); ok {
		t.Errorf("-1 is out of range")
	}
}

func TestLoadTxt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		colors  []object.Value
		wantErr string
	}{
		{
			"paint.net",
			"; paint.net palette\n;comment\nFFFF0000\nFF00FF00\n",
			[]object.Value{object.New(1, 0, 0), object.New(0, 1, 0)},
			"",
		},
		{
			"hex",
			"0000ff\n\n#ffffff\n",
			[]object.Value{object.New(0, 0, 1), object.New(1, 1, 1)},
			"",
		},
		{
			"alpha is ignored",
			"00000000\n",
			[]object.Value{object.Zero},
			"",
		},
		{"bad length", "ff00ff\nfff\n", nil, "line 2: invalid colour 'fff'"},
		{"bad digits", "zzzzzz\n", nil, "line 1: invalid colour 'zzzzzz'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadTxt("test", strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(p.Colors, tt.colors) {
				t.Errorf("expected %v, got %v", tt.colors, p.Colors)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sunset.hex")
	if err := os.WriteFile(path, []byte("ff8800\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "sunset" || p.Len() != 1 {
		t.Errorf("unexpected palette %s with %d colours", p.Name, p.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.hex")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestRebind(t *testing.T) {
	query := "INSERT INTO t (a, b) VALUES (?, ?)"
	tests := []struct {
		driver   string
		expected string
	}{
		{DriverSQLite, query},
		{DriverMySQL, query},
		{DriverPostgres, "INSERT INTO t (a, b) VALUES ($1, $2)"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s := &Store{driver: tt.driver}
			if got := s.rebind(query); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenStore(context.Background(), "oracle", ""); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(ctx, "sqlite", filepath.Join(t.TempDir(), "palettes.db"))
	if err != nil {
		// go-sqlite3 only works with cgo
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, Default()); err != nil {
		t.Fatal(err)
	}
	small := &Palette{Name: "duo", Colors: []object.Value{object.New(1, 0, 0), object.New(0, 0, 1)}}
	if err := store.Save(ctx, small); err != nil {
		t.Fatal(err)
	}
	// saving again replaces instead of appending
	small.Colors = small.Colors[:1]
	if err := store.Save(ctx, small); err != nil {
		t.Fatal(err)
	}

	names, err := store.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"duo", "pico-8"}) {
		t.Errorf("unexpected names %v", names)
	}

	loaded, err := store.Load(ctx, "pico-8")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded.Colors, Default().Colors) {
		t.Errorf("palette did not round trip")
	}
	duo, err := store.Load(ctx, "duo")
	if err != nil {
		t.Fatal(err)
	}
	if duo.Len() != 1 {
		t.Errorf("expected 1 colour after the second save, got %d", duo.Len())
	}

	if _, err := store.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
