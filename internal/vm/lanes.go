package vm

import (
	"math"

	"texel/internal/object"
)

type Value = object.Value

// operands lists how many values each pure lane op pops. Ops missing from the
// table touch execution state and are handled by the interpreter directly.
var operands = map[OpCode]int{
	OpLength: 1, OpLength2: 1, OpLength3: 1, OpAbs: 1,
	OpSin: 1, OpSin1: 1, OpSin2: 1, OpCos: 1, OpCos1: 1, OpCos2: 1,
	OpNormalize: 1, OpTan: 1, OpAtan: 1, OpFloor: 1, OpCeil: 1, OpRound: 1,
	OpFract: 1, OpRadians: 1, OpDegrees: 1, OpSqrt: 1, OpLog: 1, OpNot: 1, OpNeg: 1,

	OpAdd: 2, OpSub: 2, OpMul: 2, OpDiv: 2, OpMod: 2, OpAtan2: 2, OpRotate2D: 2,
	OpDot: 2, OpDot2: 2, OpDot3: 2, OpCross: 2, OpMin: 2, OpMax: 2, OpStep: 2, OpPow: 2,
	OpEq: 2, OpNe: 2, OpLt: 2, OpLe: 2, OpGt: 2, OpGe: 2, OpAnd: 2, OpOr: 2,

	OpMix: 3, OpSmoothstep: 3, OpClamp: 3,
}

// Operands reports how many stack values a pure lane op consumes, 0 for anything else.
func Operands(code OpCode) int {
	return operands[code]
}

const toRadians = math.Pi / 180

// Unary evaluates a one-operand lane op.
func Unary(code OpCode, a Value) (Value, bool) {
	switch code {
	case OpLength:
		return object.Splat(a.Length()), true
	case OpLength2:
		return object.New(a.Length2(), 0, 0), true
	case OpLength3:
		return object.New(a.Length(), 0, 0), true
	case OpAbs:
		return a.Map(object.Abs), true
	case OpSin:
		return a.Map(object.Sin), true
	case OpSin1:
		return object.New(object.Sin(a.X), 0, 0), true
	case OpSin2:
		return object.New(object.Sin(a.X), object.Sin(a.Y), 0), true
	case OpCos:
		return a.Map(object.Cos), true
	case OpCos1:
		return object.New(object.Cos(a.X), 0, 0), true
	case OpCos2:
		return object.New(object.Cos(a.X), object.Cos(a.Y), 0), true
	case OpNormalize:
		return a.Normalized(), true
	case OpTan:
		return a.Map(object.Tan), true
	case OpAtan:
		return a.Map(object.Atan), true
	case OpFloor:
		return a.Map(object.Floor), true
	case OpCeil:
		return a.Map(object.Ceil), true
	case OpRound:
		return a.Map(object.Round), true
	case OpFract:
		return a.Map(object.Fract), true
	case OpRadians:
		return a.Scale(toRadians), true
	case OpDegrees:
		return a.Scale(1 / toRadians), true
	case OpSqrt:
		return a.Map(object.Sqrt), true
	case OpLog:
		return a.Map(object.Log), true
	case OpNot:
		return object.Bool(a.X == 0), true
	case OpNeg:
		return a.Neg(), true
	}
	return object.Zero, false
}

// Binary evaluates a two-operand lane op, a is the deeper stack value.
func Binary(code OpCode, a, b Value) (Value, bool) {
	switch code {
	case OpAdd:
		return a.Add(b), true
	case OpSub:
		return a.Sub(b), true
	case OpMul:
		return a.Mul(b), true
	case OpDiv:
		return a.Div(b), true
	case OpMod:
		return a.Map2(b, object.Mod), true
	case OpAtan2:
		return a.Map2(b, object.Atan2), true
	case OpRotate2D:
		return object.Rotate2D(a, b.X), true
	case OpDot:
		return object.Splat(a.Dot(b)), true
	case OpDot2:
		return object.New(a.Dot2(b), 0, 0), true
	case OpDot3:
		return object.New(a.Dot(b), 0, 0), true
	case OpCross:
		return a.Cross(b), true
	case OpMin:
		return a.Map2(b, object.Min), true
	case OpMax:
		return a.Map2(b, object.Max), true
	case OpStep:
		return a.Map2(b, object.Step), true
	case OpPow:
		return a.Map2(b, object.Pow), true
	case OpEq:
		return object.Bool(a.X == b.X), true
	case OpNe:
		return object.Bool(a.X != b.X), true
	case OpLt:
		return object.Bool(a.X < b.X), true
	case OpLe:
		return object.Bool(a.X <= b.X), true
	case OpGt:
		return object.Bool(a.X > b.X), true
	case OpGe:
		return object.Bool(a.X >= b.X), true
	case OpAnd:
		return object.Bool(a.X != 0 && b.X != 0), true
	case OpOr:
		return object.Bool(a.X != 0 || b.X != 0), true
	}
	return object.Zero, false
}

// Ternary evaluates mix, smoothstep and clamp in argument order.
func Ternary(code OpCode, a, b, c Value) (Value, bool) {
	switch code {
	case OpMix:
		return a.Add(b.Sub(a).Mul(c)), true
	case OpSmoothstep:
		return object.Splat(smoothstep(a.X, b.X, c.X)), true
	case OpClamp:
		return object.New(
			object.Clamp(a.X, b.X, c.X),
			object.Clamp(a.Y, b.Y, c.Y),
			object.Clamp(a.Z, b.Z, c.Z),
		), true
	}
	return object.Zero, false
}

// smoothstep on lane x, a zero-width edge yields 0.
func smoothstep(e0, e1, x float32) float32 {
	if e1 == e0 {
		return 0
	}
	return object.Smoothstep(e0, e1, x)
}
