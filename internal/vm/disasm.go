package vm

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble writes one instruction per line, nested lists indented under
// the op that owns them.
func Disassemble(w io.Writer, code []Op) {
	disassemble(w, code, 0)
}

// DumpProgram writes every function followed by the top-level body.
func DumpProgram(w io.Writer, prog *Program) {
	for i, fn := range prog.Functions {
		fmt.Fprintf(w, "fn %d %s arity=%d locals=%d\n", i, fn.Name, fn.Arity, fn.Locals)
		for p, def := range fn.Defaults {
			if def == nil {
				continue
			}
			fmt.Fprintf(w, "  default %d:\n", p)
			disassemble(w, def, 2)
		}
		disassemble(w, fn.Body, 1)
	}
	fmt.Fprintf(w, "main globals=%d\n", prog.Globals)
	disassemble(w, prog.Body, 1)
}

func disassemble(w io.Writer, code []Op, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, op := range code {
		fmt.Fprintf(w, "%s%s\n", indent, describe(op))
		switch op.Code {
		case OpIf:
			fmt.Fprintf(w, "%s then:\n", indent)
			disassemble(w, op.Then, depth+1)
			if op.Else != nil {
				fmt.Fprintf(w, "%s else:\n", indent)
				disassemble(w, op.Else, depth+1)
			}
		case OpFor:
			for _, part := range []struct {
				label string
				code  []Op
			}{{"init", op.Init}, {"cond", op.Cond}, {"incr", op.Incr}, {"body", op.Body}} {
				fmt.Fprintf(w, "%s %s:\n", indent, part.label)
				disassemble(w, part.code, depth+1)
			}
		}
	}
}

func describe(op Op) string {
	switch op.Code {
	case OpLoadGlobal, OpStoreGlobal, OpLoadLocal, OpStoreLocal:
		return fmt.Sprintf("%s %d", op.Code, op.Index)
	case OpPush:
		return fmt.Sprintf("Push %s", op.Value)
	case OpCall:
		return fmt.Sprintf("Call %d arity=%d locals=%d", op.Index, op.Arity, op.Locals)
	case OpGetComponents, OpSetComponents:
		return fmt.Sprintf("%s %s", op.Code, swizzleString(op.Swizzle))
	}
	return op.Code.String()
}

func swizzleString(s []uint8) string {
	var b strings.Builder
	for _, lane := range s {
		if lane < 4 {
			b.WriteByte("xyzw"[lane])
		}
	}
	return b.String()
}
