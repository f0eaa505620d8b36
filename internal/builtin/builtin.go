package builtin

import "texel/internal/vm"

// Builtin is a fixed function compiled to a single instruction.
type Builtin struct {
	Name  string
	Arity int
	Op    vm.OpCode
}

// Sampling builtins take a pattern name that is resolved at compile time.
const (
	Sample       = "sample"
	SampleNormal = "sample_normal"
)

var builtins = map[string]Builtin{}

func register(op vm.OpCode, arity int, names ...string) {
	for _, name := range names {
		builtins[name] = Builtin{Name: name, Arity: arity, Op: op}
	}
}

func init() {
	register(vm.OpLength, 1, "length")
	register(vm.OpLength2, 1, "length2")
	register(vm.OpLength3, 1, "length3")
	register(vm.OpAbs, 1, "abs")
	register(vm.OpSin, 1, "sin")
	register(vm.OpSin1, 1, "sin1")
	register(vm.OpSin2, 1, "sin2")
	register(vm.OpCos, 1, "cos")
	register(vm.OpCos1, 1, "cos1")
	register(vm.OpCos2, 1, "cos2")
	register(vm.OpNormalize, 1, "normalize")
	register(vm.OpTan, 1, "tan")
	register(vm.OpAtan, 1, "atan")
	register(vm.OpAtan2, 2, "atan2")
	register(vm.OpDot, 2, "dot")
	register(vm.OpDot2, 2, "dot2")
	register(vm.OpDot3, 2, "dot3")
	register(vm.OpCross, 2, "cross")
	register(vm.OpFloor, 1, "floor")
	register(vm.OpCeil, 1, "ceil")
	register(vm.OpRound, 1, "round")
	register(vm.OpFract, 1, "fract")
	register(vm.OpRadians, 1, "radians")
	register(vm.OpDegrees, 1, "degrees")
	register(vm.OpMin, 2, "min")
	register(vm.OpMax, 2, "max")
	register(vm.OpMix, 3, "mix")
	register(vm.OpSmoothstep, 3, "smoothstep")
	register(vm.OpStep, 2, "step")
	register(vm.OpMod, 2, "mod")
	register(vm.OpClamp, 3, "clamp")
	register(vm.OpSqrt, 1, "sqrt")
	register(vm.OpLog, 1, "log")
	register(vm.OpPow, 2, "pow")
	register(vm.OpPrint, 1, "print")
	register(vm.OpSample, 2, Sample)
	register(vm.OpSampleNormal, 2, SampleNormal)
	register(vm.OpAlloc, 2, "alloc")
	register(vm.OpIterate, 2, "iterate")
	register(vm.OpSave, 2, "save")
	register(vm.OpRotate2D, 2, "rotate2d")
	register(vm.OpPaletteIndex, 1, "palette")
}

func Lookup(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// IsBuiltin reports whether name is reserved by the builtin table.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Names lists every builtin, used for completion in the repl.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}
