package pattern

import (
	"texel/internal/object"
)

// All generators take uv in [0,1) and return a height in [0,1]. Lattice
// coordinates wrap at the period so every pattern tiles.

func hash(x, y, seed int) float32 {
	h := uint32(x)*374761393 + uint32(y)*668265263 + uint32(seed)*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0xffffff) / float32(0xffffff)
}

func wrapCell(i, period int) int {
	r := i % period
	if r < 0 {
		r += period
	}
	return r
}

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func valueNoise(u, v float32, period, seed int) float32 {
	x := u * float32(period)
	y := v * float32(period)
	x0, y0 := int(object.Floor(x)), int(object.Floor(y))
	fx, fy := fade(x-float32(x0)), fade(y-float32(y0))

	c := func(i, j int) float32 {
		return hash(wrapCell(x0+i, period), wrapCell(y0+j, period), seed)
	}
	top := object.Mix(c(0, 0), c(1, 0), fx)
	bottom := object.Mix(c(0, 1), c(1, 1), fx)
	return object.Mix(top, bottom, fy)
}

func gradient(x, y, seed int) (float32, float32) {
	a := hash(x, y, seed) * 2 * 3.14159265
	return object.Cos(a), object.Sin(a)
}

func perlinNoise(u, v float32, period, seed int) float32 {
	x := u * float32(period)
	y := v * float32(period)
	x0, y0 := int(object.Floor(x)), int(object.Floor(y))
	dx, dy := x-float32(x0), y-float32(y0)

	dot := func(i, j int) float32 {
		gx, gy := gradient(wrapCell(x0+i, period), wrapCell(y0+j, period), seed)
		return gx*(dx-float32(i)) + gy*(dy-float32(j))
	}
	fx, fy := fade(dx), fade(dy)
	top := object.Mix(dot(0, 0), dot(1, 0), fx)
	bottom := object.Mix(dot(0, 1), dot(1, 1), fx)

	// raw range is about [-0.7,0.7]
	return object.Clamp(object.Mix(top, bottom, fy)*0.7+0.5, 0, 1)
}

const octaves = 5

func fbm(noise func(u, v float32, period, seed int) float32, u, v float32, period int) float32 {
	var sum, norm float32
	amp := float32(0.5)
	for o := 0; o < octaves; o++ {
		sum += amp * noise(u, v, period<<o, o+1)
		norm += amp
		amp *= 0.5
	}
	return sum / norm
}

// mortar returns 0 inside a gap of width w around cell borders and 1 inside.
func mortar(fx, fy, w float32) float32 {
	edge := object.Min(object.Min(fx, 1-fx), object.Min(fy, 1-fy))
	return object.Smoothstep(w*0.5, w, edge)
}

func bricks(u, v float32) float32 {
	const rows, cols = 8, 4
	y := v * rows
	row := int(object.Floor(y))
	x := u * cols
	if row%2 == 1 {
		x += 0.5
	}
	col := int(object.Floor(x))
	tone := 0.55 + 0.35*hash(wrapCell(col, cols), row, 7)
	return tone * mortar(object.Fract(x), object.Fract(y), 0.08)
}

func tiles(u, v float32) float32 {
	const cells = 4
	x, y := u*cells, v*cells
	return 0.8 * mortar(object.Fract(x), object.Fract(y), 0.05)
}

// blocks mixes coarse and fine cells, each with its own flat tone.
func blocks(u, v float32) float32 {
	const cells = 4
	x, y := u*cells, v*cells
	cx, cy := int(object.Floor(x)), int(object.Floor(y))
	fx, fy := object.Fract(x), object.Fract(y)

	if hash(cx, cy, 11) > 0.5 {
		sx, sy := int(fx*2), int(fy*2)
		tone := 0.3 + 0.6*hash(cx*2+sx, cy*2+sy, 13)
		return tone * mortar(object.Fract(fx*2), object.Fract(fy*2), 0.06)
	}
	tone := 0.3 + 0.6*hash(cx, cy, 17)
	return tone * mortar(fx, fy, 0.03)
}

const noisePeriod = 8

func height(k Kind, u, v float32) float32 {
	switch k {
	case Value:
		return valueNoise(u, v, noisePeriod, 0)
	case FbmValue:
		return fbm(valueNoise, u, v, noisePeriod/2)
	case Perlin:
		return perlinNoise(u, v, noisePeriod, 0)
	case FbmPerlin:
		return fbm(perlinNoise, u, v, noisePeriod/2)
	case Bricks:
		return bricks(u, v)
	case Tiles:
		return tiles(u, v)
	case Blocks:
		return blocks(u, v)
	}
	return 0
}
