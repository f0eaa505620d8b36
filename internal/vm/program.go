package vm

import (
	"texel/internal/object"
)

type OpCode byte

const (
	OpLoadGlobal OpCode = iota
	OpStoreGlobal
	OpLoadLocal
	OpStoreLocal
	OpSwap
	OpGetComponents
	OpSetComponents
	OpPush
	OpClear
	OpCall
	OpReturn
	OpPack2
	OpPack3
	OpDup
	OpFor
	OpIf

	// lane math
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLength
	OpLength2
	OpLength3
	OpAbs
	OpSin
	OpSin1
	OpSin2
	OpCos
	OpCos1
	OpCos2
	OpNormalize
	OpTan
	OpAtan
	OpAtan2
	OpRotate2D
	OpDot
	OpDot2
	OpDot3
	OpCross
	OpFloor
	OpCeil
	OpRound
	OpFract
	OpRadians
	OpDegrees
	OpMin
	OpMax
	OpMix
	OpSmoothstep
	OpStep
	OpClamp
	OpSqrt
	OpLog
	OpPow

	// comparison and logic, lane x only
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg

	OpPrint

	// pseudo-variables
	OpUV
	OpSetUV
	OpNormal
	OpSetNormal
	OpHitpoint
	OpTime
	OpColor
	OpSetColor
	OpRoughness
	OpSetRoughness
	OpMetallic
	OpSetMetallic
	OpEmissive
	OpSetEmissive
	OpOpacity
	OpSetOpacity
	OpBump
	OpSetBump

	// services
	OpSample
	OpSampleNormal
	OpAlloc
	OpIterate
	OpSave
	OpPaletteIndex

	opCount
)

var opNames = [opCount]string{
	OpLoadGlobal: "LoadGlobal", OpStoreGlobal: "StoreGlobal", OpLoadLocal: "LoadLocal",
	OpStoreLocal: "StoreLocal", OpSwap: "Swap", OpGetComponents: "GetComponents",
	OpSetComponents: "SetComponents", OpPush: "Push", OpClear: "Clear", OpCall: "Call",
	OpReturn: "Return", OpPack2: "Pack2", OpPack3: "Pack3", OpDup: "Dup", OpFor: "For", OpIf: "If",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod",
	OpLength: "Length", OpLength2: "Length2", OpLength3: "Length3", OpAbs: "Abs",
	OpSin: "Sin", OpSin1: "Sin1", OpSin2: "Sin2", OpCos: "Cos", OpCos1: "Cos1", OpCos2: "Cos2",
	OpNormalize: "Normalize", OpTan: "Tan", OpAtan: "Atan", OpAtan2: "Atan2", OpRotate2D: "Rotate2D",
	OpDot: "Dot", OpDot2: "Dot2", OpDot3: "Dot3", OpCross: "Cross", OpFloor: "Floor", OpCeil: "Ceil",
	OpRound: "Round", OpFract: "Fract", OpRadians: "Radians", OpDegrees: "Degrees",
	OpMin: "Min", OpMax: "Max", OpMix: "Mix", OpSmoothstep: "Smoothstep", OpStep: "Step",
	OpClamp: "Clamp", OpSqrt: "Sqrt", OpLog: "Log", OpPow: "Pow",
	OpEq: "Eq", OpNe: "Ne", OpLt: "Lt", OpLe: "Le", OpGt: "Gt", OpGe: "Ge",
	OpAnd: "And", OpOr: "Or", OpNot: "Not", OpNeg: "Neg", OpPrint: "Print",
	OpUV: "UV", OpSetUV: "SetUV", OpNormal: "Normal", OpSetNormal: "SetNormal",
	OpHitpoint: "Hitpoint", OpTime: "Time", OpColor: "Color", OpSetColor: "SetColor",
	OpRoughness: "Roughness", OpSetRoughness: "SetRoughness", OpMetallic: "Metallic",
	OpSetMetallic: "SetMetallic", OpEmissive: "Emissive", OpSetEmissive: "SetEmissive",
	OpOpacity: "Opacity", OpSetOpacity: "SetOpacity", OpBump: "Bump", OpSetBump: "SetBump",
	OpSample: "Sample", OpSampleNormal: "SampleNormal", OpAlloc: "Alloc", OpIterate: "Iterate",
	OpSave: "Save", OpPaletteIndex: "PaletteIndex",
}

func (c OpCode) String() string {
	if c < opCount {
		return opNames[c]
	}
	return "Unknown"
}

// Op is one instruction. Control flow ops own their nested instruction lists,
// so a compiled function is a tree rather than a flat byte stream.
type Op struct {
	Code    OpCode
	Index   int          // global/local slot or function index
	Arity   int          // Call: argument count
	Locals  int          // Call: callee locals count
	Value   object.Value // Push
	Swizzle []uint8      // Get/SetComponents

	Then []Op // If
	Else []Op // If, nil without an else branch

	Init []Op // For
	Cond []Op
	Incr []Op
	Body []Op
}

func Push(v object.Value) Op { return Op{Code: OpPush, Value: v} }

func Simple(code OpCode) Op { return Op{Code: code} }

// Function is a compiled user function. Bodies are shared by reference between
// the program and every execution running it.
type Function struct {
	Name     string
	Arity    int
	Locals   int
	Defaults [][]Op // per parameter, nil when the parameter has no default
	Body     []Op
}

// Program is the immutable output of compilation.
type Program struct {
	Globals       int
	Strings       []string
	Functions     []*Function
	FunctionIndex map[string]int
	ShadeIndex    int // -1 when the program declares no shade function
	ShadeLocals   int
	Body          []Op
}

func NewProgram() *Program {
	return &Program{
		FunctionIndex: map[string]int{},
		ShadeIndex:    -1,
	}
}

// StringAt returns the string table entry at index i, ok is false when out of range.
func (p *Program) StringAt(i int) (string, bool) {
	if i < 0 || i >= len(p.Strings) {
		return "", false
	}
	return p.Strings[i], true
}

func (p *Program) Function(name string) (int, bool) {
	i, ok := p.FunctionIndex[name]
	return i, ok
}
