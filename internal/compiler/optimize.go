package compiler

import (
	"texel/internal/object"
	"texel/internal/vm"
)

// Optimize folds constant lane math, vector packing and swizzles of pushed
// constants. Nested instruction lists are optimized too. Folding goes through
// the same lane functions the VM executes, so results are bit identical.
func Optimize(ops []vm.Op) []vm.Op {
	out := make([]vm.Op, 0, len(ops))
	for _, op := range ops {
		out = fold(append(out, nested(op)))
	}
	return out
}

func nested(op vm.Op) vm.Op {
	switch op.Code {
	case vm.OpIf:
		op.Then = Optimize(op.Then)
		if op.Else != nil {
			op.Else = Optimize(op.Else)
		}
	case vm.OpFor:
		op.Init = Optimize(op.Init)
		op.Cond = Optimize(op.Cond)
		op.Incr = Optimize(op.Incr)
		op.Body = Optimize(op.Body)
	}
	return op
}

// pushed returns the constants of the n pushes right before the last op.
func pushed(out []vm.Op, n int) ([]object.Value, bool) {
	if len(out) < n+1 {
		return nil, false
	}
	args := out[len(out)-1-n : len(out)-1]
	values := make([]object.Value, n)
	for i, op := range args {
		if op.Code != vm.OpPush {
			return nil, false
		}
		values[i] = op.Value
	}
	return values, true
}

// fold rewrites the tail of out when its last op only consumes constants.
func fold(out []vm.Op) []vm.Op {
	last := out[len(out)-1]

	var (
		n      int
		result object.Value
		ok     bool
	)
	switch last.Code {
	case vm.OpPack2:
		n = 2
	case vm.OpPack3:
		n = 3
	case vm.OpGetComponents:
		n = 1
	default:
		n = vm.Operands(last.Code)
	}
	if n == 0 {
		return out
	}

	args, constant := pushed(out, n)
	if !constant {
		return out
	}

	switch {
	case last.Code == vm.OpPack2:
		result, ok = object.New(args[0].X, args[1].X, 0), true
	case last.Code == vm.OpPack3:
		result, ok = object.New(args[0].X, args[1].X, args[2].X), true
	case last.Code == vm.OpGetComponents:
		result, ok = vm.GetComponents(args[0], last.Swizzle), true
	case n == 1:
		result, ok = vm.Unary(last.Code, args[0])
	case n == 2:
		result, ok = vm.Binary(last.Code, args[0], args[1])
	case n == 3:
		result, ok = vm.Ternary(last.Code, args[0], args[1], args[2])
	}
	if !ok {
		return out
	}

	out = out[:len(out)-1-n]
	return append(out, vm.Push(result))
}
