package object

import (
	"fmt"
	"math"
)

// Value is the only runtime type: three float32 lanes. Scalars are carried in X,
// booleans are 1 or 0 broadcast to every lane.
type Value struct {
	X, Y, Z float32
}

var Zero = Value{}

func New(x, y, z float32) Value { return Value{X: x, Y: y, Z: z} }

// Splat broadcasts a scalar to all lanes.
func Splat(v float32) Value { return Value{X: v, Y: v, Z: v} }

// Bool encodes a truth value as 1 or 0 in every lane.
func Bool(b bool) Value {
	if b {
		return Splat(1)
	}
	return Zero
}

// Truthy reports whether lane x is non-zero.
func (v Value) Truthy() bool { return v.X != 0 }

// Lane returns lane i (0..2), any other index yields 0.
func (v Value) Lane(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	return 0
}

// WithLane returns a copy of v with lane i replaced, out of range indices are ignored.
func (v Value) WithLane(i int, f float32) Value {
	switch i {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	case 2:
		v.Z = f
	}
	return v
}

func (v Value) Add(o Value) Value { return Value{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Value) Sub(o Value) Value { return Value{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Value) Mul(o Value) Value { return Value{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Value) Div(o Value) Value { return Value{v.X / o.X, v.Y / o.Y, v.Z / o.Z} }
func (v Value) Neg() Value        { return Value{-v.X, -v.Y, -v.Z} }
func (v Value) Scale(s float32) Value {
	return Value{v.X * s, v.Y * s, v.Z * s}
}

// Map applies fn to every lane.
func (v Value) Map(fn func(float32) float32) Value {
	return Value{fn(v.X), fn(v.Y), fn(v.Z)}
}

// Map2 applies fn lane-wise to v and o.
func (v Value) Map2(o Value, fn func(a, b float32) float32) Value {
	return Value{fn(v.X, o.X), fn(v.Y, o.Y), fn(v.Z, o.Z)}
}

func (v Value) Dot(o Value) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Value) Dot2(o Value) float32 { return v.X*o.X + v.Y*o.Y }

func (v Value) Cross(o Value) Value {
	return Value{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Value) Length() float32 { return Sqrt(v.Dot(v)) }

func (v Value) Length2() float32 { return Sqrt(v.X*v.X + v.Y*v.Y) }

// Normalized returns v scaled to unit length, the zero vector stays zero.
func (v Value) Normalized() Value {
	l := v.Length()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

func (v Value) String() string {
	return fmt.Sprintf("[%g, %g, %g]", v.X, v.Y, v.Z)
}

// float32 helpers over the float64 math package

func Sqrt(f float32) float32  { return float32(math.Sqrt(float64(f))) }
func Floor(f float32) float32 { return float32(math.Floor(float64(f))) }
func Ceil(f float32) float32  { return float32(math.Ceil(float64(f))) }
func Round(f float32) float32 { return float32(math.Round(float64(f))) }
func Abs(f float32) float32   { return float32(math.Abs(float64(f))) }
func Sin(f float32) float32   { return float32(math.Sin(float64(f))) }
func Cos(f float32) float32   { return float32(math.Cos(float64(f))) }
func Tan(f float32) float32   { return float32(math.Tan(float64(f))) }
func Atan(f float32) float32  { return float32(math.Atan(float64(f))) }
func Log(f float32) float32   { return float32(math.Log(float64(f))) }

func Atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }
func Pow(a, b float32) float32   { return float32(math.Pow(float64(a), float64(b))) }

// Fract is x - floor(x), so Fract(-0.3) is 0.7.
func Fract(f float32) float32 { return f - Floor(f) }

// Mod is x - y*floor(x/y), the result takes the sign of y.
func Mod(x, y float32) float32 { return x - y*Floor(x/y) }

func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func Clamp(x, lo, hi float32) float32 { return Min(Max(x, lo), hi) }

func Mix(a, b, t float32) float32 { return a*(1-t) + b*t }

// Step is 1 when x >= edge, else 0.
func Step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

// Smoothstep is the clamped Hermite interpolation t*t*(3-2t).
func Smoothstep(e0, e1, x float32) float32 {
	t := Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Rotate2D rotates the xy lanes by angle degrees, z is kept.
func Rotate2D(v Value, degrees float32) Value {
	rad := degrees * math.Pi / 180
	s, c := Sin(rad), Cos(rad)
	return Value{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
}
