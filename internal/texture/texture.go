package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"texel/internal/object"
	"texel/internal/util/future"
)

// Texture is a row-major grid of RGB values in [0,1].
type Texture struct {
	Width  int
	Height int
	Data   []object.Value
}

// New allocates a zero filled texture, negative sizes are treated as 0.
func New(width, height int) *Texture {
	width = max(width, 0)
	height = max(height, 0)
	return &Texture{
		Width:  width,
		Height: height,
		Data:   make([]object.Value, width*height),
	}
}

func (t *Texture) Empty() bool { return t.Width == 0 || t.Height == 0 }

func (t *Texture) At(x, y int) object.Value {
	return t.Data[y*t.Width+x]
}

func (t *Texture) Set(x, y int, v object.Value) {
	t.Data[y*t.Width+x] = v
}

// Sample does a nearest-neighbour lookup with repeat wrapping on both axes.
func (t *Texture) Sample(uv object.Value) object.Value {
	if t.Empty() {
		return object.Zero
	}
	u := object.Fract(uv.X)
	v := object.Fract(uv.Y)
	x := wrap(int(object.Floor(u*float32(t.Width))), t.Width)
	y := wrap(int(object.Floor(v*float32(t.Height))), t.Height)
	return t.Data[y*t.Width+x]
}

func (t *Texture) wrapped(x, y int) object.Value {
	return t.Data[wrap(y, t.Height)*t.Width+wrap(x, t.Width)]
}

func wrap(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// PixelFunc shades one pixel. uv is (x/width, y/height, 0).
type PixelFunc func(x, y int, uv object.Value) (object.Value, error)

// ParIterate fills every pixel in parallel. Rows are split across GOMAXPROCS
// workers, newWorker is called once per worker so per-worker state never shares.
func (t *Texture) ParIterate(newWorker func() PixelFunc) error {
	if t.Empty() {
		return nil
	}
	workers := min(runtime.GOMAXPROCS(0), t.Height)
	invW := 1 / float32(t.Width)
	invH := 1 / float32(t.Height)

	_, err := future.Range(workers, func(w int) (struct{}, error) {
		shade := newWorker()
		for y := w; y < t.Height; y += workers {
			v := float32(y) * invH
			for x := 0; x < t.Width; x++ {
				c, err := shade(x, y, object.New(float32(x)*invW, v, 0))
				if err != nil {
					return struct{}{}, err
				}
				t.Data[y*t.Width+x] = c
			}
		}
		return struct{}{}, nil
	})
	return err
}

// luminance uses the Rec. 709 weights
func luminance(v object.Value) float32 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

// ToNormalMap treats the texture as a height field and derives a tangent-space
// normal map, Z-up and packed into [0,1]. Neighbours wrap so the result tiles.
func (t *Texture) ToNormalMap(strength float32) *Texture {
	out := New(t.Width, t.Height)
	if t.Empty() {
		return out
	}
	_, _ = future.Range(t.Height, func(y int) (struct{}, error) {
		for x := 0; x < t.Width; x++ {
			hl := luminance(t.wrapped(x-1, y))
			hr := luminance(t.wrapped(x+1, y))
			hu := luminance(t.wrapped(x, y-1))
			hd := luminance(t.wrapped(x, y+1))

			dx := (hr - hl) * 0.5 * strength
			dy := (hd - hu) * 0.5 * strength

			n := object.New(-dx, -dy, 1).Normalized()
			out.Data[y*t.Width+x] = object.New(0.5*(n.X+1), 0.5*(n.Y+1), 0.5*(n.Z+1))
		}
		return struct{}{}, nil
	})
	return out
}

// ToImage converts to 8-bit RGB, values are clamped to [0,1].
func (t *Texture) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			v := t.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: to8(v.X), G: to8(v.Y), B: to8(v.Z), A: 255})
		}
	}
	return img
}

func (t *Texture) EncodePNG(w io.Writer) error {
	return png.Encode(w, t.ToImage())
}

func (t *Texture) SavePNG(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for '%s': %w", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create png file: %w", err)
	}
	defer f.Close()
	if err := t.EncodePNG(f); err != nil {
		return fmt.Errorf("failed to encode png '%s': %w", path, err)
	}
	return nil
}

// FromImage decodes any image into a texture, alpha is dropped.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	t := New(b.Dx(), b.Dy())
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.Set(x, y, object.New(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255))
		}
	}
	return t
}

func LoadPNG(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode png '%s': %w", path, err)
	}
	return FromImage(img), nil
}

// NormalMapPath turns "dir/stone.png" into "dir/stone_normal.png".
func NormalMapPath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if stem == "" {
		stem = "texture"
	}
	return filepath.Join(filepath.Dir(path), stem+"_normal"+ext)
}

func to8(f float32) uint8 {
	return uint8(object.Clamp(f, 0, 1) * 255)
}

// Service is the default texture backend used by the VM.
type Service struct{}

func (Service) Allocate(width, height int) *Texture { return New(width, height) }

func (Service) NormalMap(t *Texture, strength float32) *Texture { return t.ToNormalMap(strength) }

func (Service) Save(t *Texture, path string) error { return t.SavePNG(path) }
