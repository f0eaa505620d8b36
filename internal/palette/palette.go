package palette

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"texel/internal/object"
)

// Palette is an indexed list of RGB colours in [0,1].
type Palette struct {
	Name   string
	Colors []object.Value
}

func (p *Palette) Len() int { return len(p.Colors) }

// Color implements vm.PaletteService.
func (p *Palette) Color(index int) (object.Value, bool) {
	if p == nil || index < 0 || index >= len(p.Colors) {
		return object.Zero, false
	}
	return p.Colors[index], true
}

var pico8 = []uint32{
	0x000000, 0x1d2b53, 0x7e2553, 0x008751, 0xab5236, 0x5f574f, 0xc2c3c7, 0xfff1e8,
	0xff004d, 0xffa300, 0xffec27, 0x00e436, 0x29adff, 0x83769c, 0xff77a8, 0xffccaa,
}

// Default returns the 16 colour PICO-8 palette.
func Default() *Palette {
	p := &Palette{Name: "pico-8", Colors: make([]object.Value, len(pico8))}
	for i, rgb := range pico8 {
		p.Colors[i] = fromRGB(rgb)
	}
	return p
}

func fromRGB(rgb uint32) object.Value {
	return object.New(
		float32((rgb>>16)&0xff)/255,
		float32((rgb>>8)&0xff)/255,
		float32(rgb&0xff)/255,
	)
}

// LoadTxt reads a paint.net palette (AARRGGBB per line, ';' comments) or a
// .hex palette (RRGGBB per line). A leading '#' is accepted.
func LoadTxt(name string, r io.Reader) (*Palette, error) {
	p := &Palette{Name: name}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		text = strings.TrimPrefix(text, "#")

		if len(text) != 6 && len(text) != 8 {
			return nil, fmt.Errorf("palette %s line %d: invalid colour '%s'", name, line, text)
		}
		v, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("palette %s line %d: invalid colour '%s'", name, line, text)
		}
		// alpha is dropped
		p.Colors = append(p.Colors, fromRGB(uint32(v)&0xffffff))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read palette %s: %w", name, err)
	}
	return p, nil
}

// LoadFile names the palette after the file stem.
func LoadFile(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadTxt(name, f)
}
