package pattern

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"texel/internal/object"
	"texel/internal/texture"
	"texel/internal/util/future"
	"texel/internal/vm"
)

const (
	DefaultSize = 256

	// normal variants are derived with this height scale
	normalStrength = 2.0
)

// Library holds one grayscale texture and one normal map per Kind. It is
// immutable after construction and safe for concurrent sampling.
type Library struct {
	Size     int
	textures [kindCount]*texture.Texture
	normals  [kindCount]*texture.Texture
}

type built struct {
	tex    *texture.Texture
	normal *texture.Texture
}

// NewLibrary renders every pattern at size x size. Kinds are built in parallel.
func NewLibrary(size int) *Library {
	if size <= 0 {
		size = DefaultSize
	}
	lib := &Library{Size: size}

	results, _ := future.Range(int(kindCount), func(i int) (built, error) {
		k := Kind(i)
		tex := texture.New(size, size)
		err := tex.ParIterate(func() texture.PixelFunc {
			return func(x, y int, uv object.Value) (object.Value, error) {
				return object.Splat(height(k, uv.X, uv.Y)), nil
			}
		})
		if err != nil {
			return built{}, err
		}
		return built{tex: tex, normal: tex.ToNormalMap(normalStrength)}, nil
	})

	for i, b := range results {
		lib.textures[i] = b.tex
		lib.normals[i] = b.normal
	}
	slog.Debug("pattern library built", slog.Int("size", size), slog.Int("patterns", int(kindCount)))
	return lib
}

// LoadDir replaces patterns with "<name>.png" and "<name>_normal.png" files
// found in dir. A texture without a normal file gets a derived normal map.
func (l *Library) LoadDir(dir string) error {
	for _, k := range Kinds() {
		path := filepath.Join(dir, k.String()+".png")
		tex, err := texture.LoadPNG(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load pattern '%s': %w", k, err)
		}
		l.textures[k] = tex

		normal, err := texture.LoadPNG(filepath.Join(dir, k.String()+"_normal.png"))
		switch {
		case err == nil:
			l.normals[k] = normal
		case errors.Is(err, fs.ErrNotExist):
			l.normals[k] = tex.ToNormalMap(normalStrength)
		default:
			return fmt.Errorf("failed to load normal for pattern '%s': %w", k, err)
		}
		slog.Info("pattern loaded", slog.String("pattern", k.String()), slog.String("path", path))
	}
	return nil
}

func (l *Library) Texture(k Kind) *texture.Texture {
	if k < 0 || k >= kindCount {
		return nil
	}
	return l.textures[k]
}

func (l *Library) Normal(k Kind) *texture.Texture {
	if k < 0 || k >= kindCount {
		return nil
	}
	return l.normals[k]
}

func (l *Library) Pattern(id int) (vm.Sampler, bool) {
	k, ok := KindFromIndex(id)
	if !ok || l.textures[k] == nil {
		return nil, false
	}
	return l.textures[k], true
}

func (l *Library) NormalPattern(id int) (vm.Sampler, bool) {
	k, ok := KindFromIndex(id)
	if !ok || l.normals[k] == nil {
		return nil, false
	}
	return l.normals[k], true
}
