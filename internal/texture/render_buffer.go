package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"texel/internal/object"
)

const gammaCorrection = 0.4545

// RenderBuffer is an RGBA float frame, four floats per pixel.
type RenderBuffer struct {
	Width  int
	Height int
	Pixels []float32
	Accum  uint32 // running sample count used by AccumFrom
}

func NewRenderBuffer(width, height int) *RenderBuffer {
	return &RenderBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]float32, width*height*4),
		Accum:  1,
	}
}

func (b *RenderBuffer) At(x, y int) [4]float32 {
	i := (y*b.Width + x) * 4
	return [4]float32{b.Pixels[i], b.Pixels[i+1], b.Pixels[i+2], b.Pixels[i+3]}
}

func (b *RenderBuffer) Set(x, y int, c [4]float32) {
	i := (y*b.Width + x) * 4
	copy(b.Pixels[i:i+4], c[:])
}

// CopyFrom blits other at (x, y), pixels falling outside are skipped.
func (b *RenderBuffer) CopyFrom(x, y int, other *RenderBuffer) {
	b.blend(x, y, other, 1)
}

// AccumFrom blends other at (x, y) with factor 1/Accum.
func (b *RenderBuffer) AccumFrom(x, y int, other *RenderBuffer) {
	accum := max(b.Accum, 1)
	b.blend(x, y, other, 1/float32(accum))
}

func (b *RenderBuffer) blend(x, y int, other *RenderBuffer, factor float32) {
	for ly := 0; ly < other.Height; ly++ {
		gy := y + ly
		if gy >= b.Height {
			break
		}
		for lx := 0; lx < other.Width; lx++ {
			gx := x + lx
			if gx >= b.Width {
				break
			}
			dst := (gy*b.Width + gx) * 4
			src := (ly*other.Width + lx) * 4
			for i := 0; i < 4; i++ {
				b.Pixels[dst+i] = b.Pixels[dst+i]*(1-factor) + other.Pixels[src+i]*factor
			}
		}
	}
}

// RGBA8 converts the frame to bytes, optionally gamma correcting the colour channels.
func (b *RenderBuffer) RGBA8(gamma bool) []byte {
	out := make([]byte, len(b.Pixels))
	for i := 0; i < len(b.Pixels); i += 4 {
		for c := 0; c < 3; c++ {
			v := object.Clamp(b.Pixels[i+c], 0, 1)
			if gamma {
				v = object.Pow(v, gammaCorrection)
			}
			out[i+c] = uint8(v * 255)
		}
		out[i+3] = uint8(object.Clamp(b.Pixels[i+3], 0, 1) * 255)
	}
	return out
}

func (b *RenderBuffer) ToImage(gamma bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	bytes := b.RGBA8(gamma)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := (y*b.Width + x) * 4
			img.SetNRGBA(x, y, color.NRGBA{R: bytes[i], G: bytes[i+1], B: bytes[i+2], A: 255})
		}
	}
	return img
}

func (b *RenderBuffer) SavePNG(path string, gamma bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create png file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, b.ToImage(gamma)); err != nil {
		return fmt.Errorf("failed to encode png '%s': %w", path, err)
	}
	return nil
}
