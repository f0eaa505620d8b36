package vm

import (
	"fmt"
	"log/slog"

	"texel/internal/object"
	"texel/internal/texture"
)

// DefaultMaxLoopIterations bounds a single for loop. The iteration after the
// limit stops the running invocation with a LoopLimitError.
const DefaultMaxLoopIterations = 10_000_000

const saveNormalStrength = 5.0

// Uniforms are the per-pixel pseudo-variables scripts read and write.
type Uniforms struct {
	UV        Value
	Color     Value
	Roughness Value
	Metallic  Value
	Emissive  Value
	Opacity   Value
	Bump      Value
	Normal    Value
	Hitpoint  Value
	Time      Value
}

// Execution is the mutable state of one interpreter. It is not safe for
// concurrent use, parallel work gets its own Execution.
type Execution struct {
	Uniforms

	Globals []Value
	Stack   []Value

	locals []Value
	frames [][]Value // saved locals of the callers

	returnValue Value
	returning   bool
	err         error

	textures []*texture.Texture

	MaxLoopIterations int
}

func NewExecution(globals int) *Execution {
	return &Execution{
		Uniforms:          Uniforms{Roughness: object.Splat(0.5)},
		Globals:           make([]Value, globals),
		Stack:             make([]Value, 0, 32),
		MaxLoopIterations: DefaultMaxLoopIterations,
	}
}

// Reset resizes the globals when switching between programs.
func (e *Execution) Reset(globals int) {
	if globals == len(e.Globals) {
		return
	}
	resized := make([]Value, globals)
	copy(resized, e.Globals)
	e.Globals = resized
}

// SetNormal stores the normal at unit length.
func (e *Execution) SetNormal(v Value) {
	e.Normal = v.Normalized()
}

func (e *Execution) Texture(i int) (*texture.Texture, bool) {
	if i < 0 || i >= len(e.textures) {
		return nil, false
	}
	return e.textures[i], true
}

// Execute runs code against the current state.
func (e *Execution) Execute(code []Op, prog *Program, svc *Services) error {
	e.err = nil
	e.execute(code, prog, svc)
	return e.takeErr()
}

// Run executes the top-level body of prog. The result is the value of a
// top-level return if one ran, otherwise the top of the stack.
func (e *Execution) Run(prog *Program, svc *Services) (Value, bool, error) {
	e.Reset(prog.Globals)
	e.beginCall()
	e.execute(prog.Body, prog, svc)
	if err := e.takeErr(); err != nil {
		return object.Zero, false, err
	}
	if e.returning {
		e.returning = false
		return e.returnValue, true, nil
	}
	if len(e.Stack) > 0 {
		return e.pop(), true, nil
	}
	return object.Zero, false, nil
}

// Shade runs the function at index as a per-pixel shader. Results land in the
// uniforms, Color most of all.
func (e *Execution) Shade(index int, prog *Program, svc *Services) error {
	fn, err := function(prog, index)
	if err != nil {
		return err
	}
	e.beginCall()
	e.locals = sized(e.locals, fn.Locals)
	e.execute(fn.Body, prog, svc)
	e.returning = false
	return e.takeErr()
}

// CallFunctionNoArgs calls the function at index with every parameter taken from its default.
func (e *Execution) CallFunctionNoArgs(index int, prog *Program, svc *Services) (Value, error) {
	return e.CallFunction(index, nil, prog, svc)
}

// CallFunction calls the function at index. Missing trailing arguments are
// taken from the parameter defaults, or zero without one.
func (e *Execution) CallFunction(index int, args []Value, prog *Program, svc *Services) (Value, error) {
	fn, err := function(prog, index)
	if err != nil {
		return object.Zero, err
	}
	e.beginCall()
	locals := make([]Value, max(fn.Locals, len(args)))
	copy(locals, args)
	for i := len(args); i < fn.Arity && i < len(fn.Defaults); i++ {
		if fn.Defaults[i] == nil {
			continue
		}
		e.execute(fn.Defaults[i], prog, svc)
		locals[i] = e.pop()
		e.Stack = e.Stack[:0]
	}
	e.locals = locals
	e.execute(fn.Body, prog, svc)
	if err := e.takeErr(); err != nil {
		return object.Zero, err
	}
	if e.returning {
		e.returning = false
		return e.returnValue, nil
	}
	return e.pop(), nil
}

func function(prog *Program, index int) (*Function, error) {
	if index < 0 || index >= len(prog.Functions) {
		return nil, fmt.Errorf("function index %d out of range", index)
	}
	return prog.Functions[index], nil
}

func (e *Execution) beginCall() {
	e.Stack = e.Stack[:0]
	e.frames = e.frames[:0]
	e.returning = false
	e.returnValue = object.Zero
	e.err = nil
}

func (e *Execution) takeErr() error {
	err := e.err
	e.err = nil
	return err
}

func (e *Execution) halted() bool {
	return e.returning || e.err != nil
}

func (e *Execution) push(v Value) {
	e.Stack = append(e.Stack, v)
}

// pop yields zero on an empty stack.
func (e *Execution) pop() Value {
	n := len(e.Stack)
	if n == 0 {
		return object.Zero
	}
	v := e.Stack[n-1]
	e.Stack = e.Stack[:n-1]
	return v
}

func (e *Execution) truncate(n int) {
	if len(e.Stack) > n {
		e.Stack = e.Stack[:n]
	}
}

func (e *Execution) maxLoop() int {
	if e.MaxLoopIterations <= 0 {
		return DefaultMaxLoopIterations
	}
	return e.MaxLoopIterations
}

func sized(buf []Value, n int) []Value {
	if cap(buf) < n {
		return make([]Value, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

func (e *Execution) execute(code []Op, prog *Program, svc *Services) {
	for i := range code {
		// a pending return or fault unwinds every enclosing list
		if e.halted() {
			return
		}
		op := &code[i]
		switch op.Code {
		case OpLoadGlobal:
			e.push(e.Globals[op.Index])
		case OpStoreGlobal:
			e.Globals[op.Index] = e.pop()
		case OpLoadLocal:
			e.push(e.locals[op.Index])
		case OpStoreLocal:
			e.locals[op.Index] = e.pop()
		case OpSwap:
			b := e.pop()
			a := e.pop()
			e.push(b)
			e.push(a)
		case OpGetComponents:
			e.push(GetComponents(e.pop(), op.Swizzle))
		case OpSetComponents:
			value := e.pop()
			target := e.pop()
			e.push(SetComponents(target, value, op.Swizzle))
		case OpPush:
			e.push(op.Value)
		case OpClear:
			e.pop()
		case OpCall:
			e.call(op, prog, svc)
		case OpReturn:
			e.returnValue = e.pop()
			e.returning = true
			return
		case OpPack2:
			y := e.pop()
			x := e.pop()
			e.push(object.New(x.X, y.X, 0))
		case OpPack3:
			z := e.pop()
			y := e.pop()
			x := e.pop()
			e.push(object.New(x.X, y.X, z.X))
		case OpDup:
			if n := len(e.Stack); n > 0 {
				e.push(e.Stack[n-1])
			}
		case OpFor:
			e.loop(op, prog, svc)
		case OpIf:
			if e.pop().Truthy() {
				e.execute(op.Then, prog, svc)
			} else if op.Else != nil {
				e.execute(op.Else, prog, svc)
			}
		case OpPrint:
			e.print(e.pop(), svc)

		case OpUV:
			e.push(e.UV)
		case OpSetUV:
			e.UV = e.pop()
		case OpNormal:
			e.push(e.Normal)
		case OpSetNormal:
			e.SetNormal(e.pop())
		case OpHitpoint:
			e.push(e.Hitpoint)
		case OpTime:
			e.push(e.Time)
		case OpColor:
			e.push(e.Color)
		case OpSetColor:
			e.Color = e.pop()
		case OpRoughness:
			e.push(e.Roughness)
		case OpSetRoughness:
			e.Roughness = e.pop()
		case OpMetallic:
			e.push(e.Metallic)
		case OpSetMetallic:
			e.Metallic = e.pop()
		case OpEmissive:
			e.push(e.Emissive)
		case OpSetEmissive:
			e.Emissive = e.pop()
		case OpOpacity:
			e.push(e.Opacity)
		case OpSetOpacity:
			e.Opacity = e.pop()
		case OpBump:
			e.push(e.Bump)
		case OpSetBump:
			e.Bump = e.pop()

		case OpSample:
			id := e.pop()
			uv := e.pop()
			e.push(e.sample(svc, int(id.X), uv, false))
		case OpSampleNormal:
			id := e.pop()
			uv := e.pop()
			e.push(e.sample(svc, int(id.X), uv, true))
		case OpAlloc:
			h := e.pop()
			w := e.pop()
			e.textures = append(e.textures, svc.textures().Allocate(int(w.X), int(h.X)))
			e.push(object.Splat(float32(len(e.textures) - 1)))
		case OpIterate:
			name := e.pop()
			handle := e.pop()
			e.iterate(int(handle.X), int(name.X), prog, svc)
		case OpSave:
			name := e.pop()
			handle := e.pop()
			e.save(int(handle.X), int(name.X), prog, svc)
		case OpPaletteIndex:
			index := e.pop()
			e.push(e.paletteColor(svc, int(index.X)))

		default:
			switch operands[op.Code] {
			case 1:
				a := e.pop()
				v, _ := Unary(op.Code, a)
				e.push(v)
			case 2:
				b := e.pop()
				a := e.pop()
				v, _ := Binary(op.Code, a, b)
				e.push(v)
			case 3:
				c := e.pop()
				b := e.pop()
				a := e.pop()
				v, _ := Ternary(op.Code, a, b, c)
				e.push(v)
			}
		}
	}
}

// call runs a user function in a fresh frame. Arguments are popped into the
// first locals, the callee's stack garbage is dropped and exactly one value is pushed.
func (e *Execution) call(op *Op, prog *Program, svc *Services) {
	fn := prog.Functions[op.Index]

	e.frames = append(e.frames, e.locals)
	e.locals = make([]Value, max(op.Locals, op.Arity))
	for i := op.Arity - 1; i >= 0; i-- {
		e.locals[i] = e.pop()
	}

	base := len(e.Stack)
	e.execute(fn.Body, prog, svc)

	ret := object.Zero
	if e.returning {
		ret = e.returnValue
		e.returning = false
		e.returnValue = object.Zero
	} else if len(e.Stack) > base {
		ret = e.pop()
	}
	e.truncate(base)

	e.locals = e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]

	e.push(ret)
}

func (e *Execution) loop(op *Op, prog *Program, svc *Services) {
	base := len(e.Stack)
	limit := e.maxLoop()

	e.execute(op.Init, prog, svc)
	e.truncate(base)

	for iter := 0; ; {
		if e.halted() {
			return
		}
		e.execute(op.Cond, prog, svc)
		if e.halted() {
			return
		}
		cond := e.pop()
		e.truncate(base)
		if !cond.Truthy() {
			return
		}

		e.execute(op.Body, prog, svc)
		e.truncate(base)
		if e.halted() {
			return
		}

		e.execute(op.Incr, prog, svc)
		e.truncate(base)

		iter++
		if iter > limit {
			e.err = &LoopLimitError{Limit: limit}
			return
		}
	}
}

// GetComponents gathers the swizzled lanes of v. One lane broadcasts, four
// lanes or none give zero.
func GetComponents(v Value, swizzle []uint8) Value {
	var lanes []float32
	for _, s := range swizzle {
		if s > 2 {
			continue
		}
		lanes = append(lanes, v.Lane(int(s)))
	}
	switch len(lanes) {
	case 1:
		return object.Splat(lanes[0])
	case 2:
		return object.New(lanes[0], lanes[1], 0)
	case 3:
		return object.New(lanes[0], lanes[1], lanes[2])
	}
	return object.Zero
}

// SetComponents writes value's leading lanes into the swizzled lanes of target.
func SetComponents(target, value Value, swizzle []uint8) Value {
	n := len(swizzle)
	if n > 3 {
		return target
	}
	for i := 0; i < n; i++ {
		target = target.WithLane(int(swizzle[i]), value.Lane(i))
	}
	return target
}

func (e *Execution) print(v Value, svc *Services) {
	if svc != nil && svc.Out != nil {
		fmt.Fprintf(svc.Out, "print: %s\n", v)
		return
	}
	slog.Debug("print", slog.String("value", v.String()))
}

func (e *Execution) sample(svc *Services, id int, uv Value, normal bool) Value {
	if svc == nil || svc.Patterns == nil {
		return object.Zero
	}
	if normal {
		s, ok := svc.Patterns.NormalPattern(id)
		if !ok {
			return object.Zero
		}
		return s.Sample(uv).Scale(2).Sub(object.Splat(1))
	}
	s, ok := svc.Patterns.Pattern(id)
	if !ok {
		return object.Zero
	}
	return s.Sample(uv)
}

// paletteColor yields zero for a missing palette or index.
func (e *Execution) paletteColor(svc *Services, index int) Value {
	if svc == nil || svc.Palette == nil {
		return object.Zero
	}
	c, ok := svc.Palette.Color(index)
	if !ok {
		return object.Zero
	}
	return c
}

func (e *Execution) save(handle, name int, prog *Program, svc *Services) {
	tex, ok := e.Texture(handle)
	if !ok {
		return
	}
	path, ok := prog.StringAt(name)
	if !ok {
		return
	}
	textures := svc.textures()
	if err := textures.Save(tex, path); err != nil {
		slog.Error("failed to save texture", slog.String("path", path), slog.Any("error", err))
	}
	normalPath := texture.NormalMapPath(path)
	if err := textures.Save(textures.NormalMap(tex, saveNormalStrength), normalPath); err != nil {
		slog.Error("failed to save normal map", slog.String("path", normalPath), slog.Any("error", err))
	}
}

// iterate shades every pixel of a texture with a named user function. Each
// worker gets a private Execution seeded with a snapshot of this one, and the
// seed is restored before every pixel so results do not depend on pixel order.
func (e *Execution) iterate(handle, name int, prog *Program, svc *Services) {
	tex, ok := e.Texture(handle)
	if !ok {
		return
	}
	fnName, ok := prog.StringAt(name)
	if !ok {
		return
	}
	index, ok := prog.FunctionIndex[fnName]
	if !ok {
		return
	}
	fn := prog.Functions[index]

	seed := e.Uniforms
	globals := append([]Value(nil), e.Globals...)
	limit := e.maxLoop()

	err := tex.ParIterate(func() texture.PixelFunc {
		w := NewExecution(len(globals))
		w.MaxLoopIterations = limit
		return func(_, _ int, uv Value) (Value, error) {
			w.beginCall()
			w.Uniforms = seed
			w.UV = uv
			copy(w.Globals, globals)
			w.textures = nil
			w.locals = sized(w.locals, fn.Locals)

			w.execute(fn.Body, prog, svc)
			if err := w.takeErr(); err != nil {
				return object.Zero, err
			}
			if w.returning {
				return w.returnValue, nil
			}
			return w.Color, nil
		}
	})
	if err != nil {
		e.err = err
	}
}
