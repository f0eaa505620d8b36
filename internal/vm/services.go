package vm

import (
	"fmt"
	"io"

	"texel/internal/texture"
)

// Sampler reads a colour at a uv coordinate.
type Sampler interface {
	Sample(uv Value) Value
}

// PatternService resolves built-in pattern ids to samplers.
type PatternService interface {
	Pattern(id int) (Sampler, bool)
	NormalPattern(id int) (Sampler, bool)
}

// PaletteService resolves palette indices to colours.
type PaletteService interface {
	Color(index int) (Value, bool)
}

// TextureService allocates and persists textures created by scripts.
type TextureService interface {
	Allocate(width, height int) *texture.Texture
	NormalMap(t *texture.Texture, strength float32) *texture.Texture
	Save(t *texture.Texture, path string) error
}

// Services carries everything a running program may call out to. A nil
// member behaves like a missing resource.
type Services struct {
	Patterns PatternService
	Palette  PaletteService
	Textures TextureService
	Out      io.Writer // print sink, nil logs prints at debug level instead
}

func (s *Services) textures() TextureService {
	if s == nil || s.Textures == nil {
		return texture.Service{}
	}
	return s.Textures
}

// LoopLimitError is returned when a single loop exceeds its iteration cap.
type LoopLimitError struct {
	Limit int
}

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("infinite for loop detected: more than %d iterations", e.Limit)
}
