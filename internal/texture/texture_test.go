package texture

import (
	"errors"
	"path/filepath"
	"testing"

	"texel/internal/object"
)

func TestNew(t *testing.T) {
	tex := New(-3, 2)
	if tex.Width != 0 || !tex.Empty() || len(tex.Data) != 0 {
		t.Errorf("negative sizes must clamp to 0")
	}
	if got := tex.Sample(object.New(0.5, 0.5, 0)); got != object.Zero {
		t.Errorf("an empty texture samples zero, got %s", got)
	}
}

func TestSampleWraps(t *testing.T) {
	tex := New(4, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			tex.Set(x, y, object.New(float32(x), float32(y), 0))
		}
	}

	tests := []struct {
		u, v     float32
		expected object.Value
	}{
		{0, 0, object.New(0, 0, 0)},
		{0.3, 0.7, object.New(1, 1, 0)},
		{1.3, 0.7, object.New(1, 1, 0)},
		{-0.1, -0.1, object.New(3, 1, 0)},
		{0.99, 0.49, object.New(3, 0, 0)},
	}
	for _, tt := range tests {
		if got := tex.Sample(object.New(tt.u, tt.v, 0)); got != tt.expected {
			t.Errorf("sample(%g,%g): expected %s, got %s", tt.u, tt.v, tt.expected, got)
		}
	}
}

func TestParIterate(t *testing.T) {
	tex := New(5, 3)
	err := tex.ParIterate(func() PixelFunc {
		return func(x, y int, uv object.Value) (object.Value, error) {
			return uv, nil
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := tex.At(4, 2); got != object.New(4*(1/float32(5)), 2*(1/float32(3)), 0) {
		t.Errorf("unexpected uv %s", got)
	}

	boom := errors.New("boom")
	err = tex.ParIterate(func() PixelFunc {
		return func(x, y int, uv object.Value) (object.Value, error) {
			return object.Zero, boom
		}
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected the pixel error, got %v", err)
	}
}

func TestToNormalMap(t *testing.T) {
	flat := New(4, 4)
	n := flat.ToNormalMap(2)
	for _, v := range n.Data {
		if v != object.New(0.5, 0.5, 1) {
			t.Fatalf("a flat height field gives an upward normal, got %s", v)
		}
	}

	ramp := New(4, 1)
	for x := 0; x < 4; x++ {
		ramp.Set(x, 0, object.Splat(float32(x)/4))
	}
	// rising to the right tilts the normal toward -x
	if got := ramp.ToNormalMap(1).At(1, 0); got.X >= 0.5 {
		t.Errorf("expected a normal tilted left, got %s", got)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	tex := New(3, 2)
	tex.Set(0, 0, object.New(1, 0, 0))
	tex.Set(2, 1, object.New(0, 0, 1))
	tex.Set(1, 1, object.New(2, -1, 0.5)) // clamped on save

	path := filepath.Join(t.TempDir(), "nested", "out.png")
	if err := tex.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPNG(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.At(0, 0) != object.New(1, 0, 0) || loaded.At(2, 1) != object.New(0, 0, 1) {
		t.Errorf("colours did not round trip")
	}
	if got := loaded.At(1, 1); got.X != 1 || got.Y != 0 {
		t.Errorf("expected clamped values, got %s", got)
	}
}

func TestNormalMapPath(t *testing.T) {
	tests := map[string]string{
		"dir/stone.png": filepath.Join("dir", "stone_normal.png"),
		"stone.png":     "stone_normal.png",
		"dir/.png":      filepath.Join("dir", "texture_normal.png"),
	}
	for in, want := range tests {
		if got := NormalMapPath(in); got != want {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func TestRenderBuffer(t *testing.T) {
	dst := NewRenderBuffer(4, 4)
	src := NewRenderBuffer(3, 3)
	for i := range src.Pixels {
		src.Pixels[i] = 1
	}

	// pixels outside dst are dropped
	dst.CopyFrom(2, 2, src)
	if dst.At(3, 3) != [4]float32{1, 1, 1, 1} || dst.At(1, 1) != [4]float32{} {
		t.Errorf("unexpected copy result")
	}

	dst.Accum = 2
	dst.AccumFrom(0, 0, NewRenderBuffer(4, 4))
	if got := dst.At(3, 3); got[0] != 0.5 {
		t.Errorf("expected a running average of 0.5, got %v", got)
	}

	b := NewRenderBuffer(1, 1)
	b.Set(0, 0, [4]float32{0.5, 0, 1, 1})
	if got := b.RGBA8(false); got[0] != 127 || got[2] != 255 || got[3] != 255 {
		t.Errorf("unexpected linear bytes %v", got)
	}
	if got := b.RGBA8(true); got[0] <= 127 {
		t.Errorf("gamma correction must brighten mid tones, got %v", got)
	}
}
