package pattern

import "strings"

// Kind identifies a built-in pattern. The numeric value is the id scripts
// pass to sample and sample_normal.
type Kind int

const (
	Value Kind = iota
	FbmValue
	Perlin
	FbmPerlin
	Bricks
	Tiles
	Blocks

	kindCount
)

var kindNames = [kindCount]string{
	Value:     "value",
	FbmValue:  "fbm_value",
	Perlin:    "perlin",
	FbmPerlin: "fbm_perlin",
	Bricks:    "bricks",
	Tiles:     "tiles",
	Blocks:    "blocks",
}

// Kinds lists every pattern in id order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// KindFromName matches display names case-insensitively.
func KindFromName(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return Value, false
}

func KindFromIndex(i int) (Kind, bool) {
	if i < 0 || i >= int(kindCount) {
		return Value, false
	}
	return Kind(i), true
}
