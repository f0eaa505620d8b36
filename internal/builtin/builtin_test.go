package builtin

import (
	"testing"

	"texel/internal/vm"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		name  string
		arity int
		op    vm.OpCode
	}{
		{"length", 1, vm.OpLength},
		{"dot3", 2, vm.OpDot3},
		{"mix", 3, vm.OpMix},
		{"sample_normal", 2, vm.OpSampleNormal},
		{"palette", 1, vm.OpPaletteIndex},
		{"rotate2d", 2, vm.OpRotate2D},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, ok := Lookup(c.name)
			if !ok {
				t.Fatalf("expected %s to be a builtin", c.name)
			}
			if b.Arity != c.arity || b.Op != c.op {
				t.Errorf("expected arity %d op %s, got arity %d op %s", c.arity, c.op, b.Arity, b.Op)
			}
		})
	}

	if IsBuiltin("shade") {
		t.Errorf("shade must not be a builtin")
	}
}
