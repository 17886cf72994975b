// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/shaderblend/ir"
)

// OutputKey identifies a fragment color output.
type OutputKey struct {
	Location uint32
	BlendSrc uint32
}

// Inputs are the values a fragment invocation observes.
type Inputs struct {
	// Args holds one value per entry point argument.
	Args []Value

	// Framebuffer holds the current contents of each color attachment,
	// returned by framebuffer fetches. Missing channels read as
	// (0, 0, 0, 1).
	Framebuffer [8]Value

	// BlendConstant is the pipeline blend constant.
	BlendConstant [4]float32
}

// Result is the outcome of one invocation.
type Result struct {
	// Outputs holds the final value of every output written.
	Outputs map[OutputKey]Value

	// Killed reports whether the invocation was discarded.
	Killed bool
}

// Output returns the primary color written to location.
func (r Result) Output(location uint32) (Value, bool) {
	v, ok := r.Outputs[OutputKey{Location: location}]
	return v, ok
}

var errStop = errors.New("stop")

// Run executes a fragment entry point once.
//
// Color outputs must be written with StmtStoreOutput; entry points that
// return their outputs need ir.LowerEntryResults first. Undefined
// values evaluate to zero.
func Run(module *ir.Module, entryPoint string, in Inputs) (Result, error) {
	if module == nil {
		return Result{}, fmt.Errorf("interp: module is nil")
	}
	var ep *ir.EntryPoint
	for i := range module.EntryPoints {
		if module.EntryPoints[i].Name == entryPoint {
			ep = &module.EntryPoints[i]
			break
		}
	}
	if ep == nil {
		return Result{}, fmt.Errorf("interp: entry point %q not found", entryPoint)
	}
	if ep.Stage != ir.StageFragment {
		return Result{}, fmt.Errorf("interp: entry point %q is a %s shader", entryPoint, ep.Stage)
	}
	if int(ep.Function) >= len(module.Functions) {
		return Result{}, fmt.Errorf("interp: entry point %q: function %d does not exist", entryPoint, ep.Function)
	}
	fn := &module.Functions[ep.Function]
	if fn.Result != nil {
		return Result{}, fmt.Errorf("interp: entry point %q returns its outputs; lower them to stores first", entryPoint)
	}
	if len(in.Args) != len(fn.Arguments) {
		return Result{}, fmt.Errorf("interp: entry point %q takes %d arguments, got %d", entryPoint, len(fn.Arguments), len(in.Args))
	}

	st := &state{
		module: module,
		fn:     fn,
		in:     &in,
		values: make([]Value, len(fn.Expressions)),
		done:   make([]bool, len(fn.Expressions)),
		locals: make([]Value, len(fn.LocalVars)),
		result: Result{Outputs: make(map[OutputKey]Value)},
	}
	for i, lv := range fn.LocalVars {
		v, err := st.zero(lv.Type)
		if err != nil {
			return Result{}, fmt.Errorf("interp: local %q: %w", lv.Name, err)
		}
		if lv.Init != nil {
			if v, err = st.operand(*lv.Init); err != nil {
				return Result{}, fmt.Errorf("interp: local %q: %w", lv.Name, err)
			}
		}
		st.locals[i] = v
	}

	if err := st.block(fn.Body); err != nil && !errors.Is(err, errStop) {
		return Result{}, fmt.Errorf("interp: %s: %w", entryPoint, err)
	}
	if st.result.Killed {
		st.result.Outputs = map[OutputKey]Value{}
	}
	return st.result, nil
}

type state struct {
	module *ir.Module
	fn     *ir.Function
	in     *Inputs
	values []Value
	done   []bool
	locals []Value
	result Result
}

func (st *state) block(block ir.Block) error {
	for _, stmt := range block {
		if err := st.statement(stmt.Kind); err != nil {
			return err
		}
	}
	return nil
}

func (st *state) statement(kind ir.StatementKind) error {
	switch s := kind.(type) {
	case ir.StmtEmit:
		for h := s.Range.Start; h < s.Range.End; h++ {
			v, err := st.eval(h)
			if err != nil {
				return err
			}
			st.values[h] = v
			st.done[h] = true
		}
		return nil
	case ir.StmtBlock:
		return st.block(s.Block)
	case ir.StmtIf:
		cond, err := st.operand(s.Condition)
		if err != nil {
			return err
		}
		if cond.C[0] != 0 {
			return st.block(s.Accept)
		}
		return st.block(s.Reject)
	case ir.StmtReturn:
		if s.Value != nil {
			return fmt.Errorf("return with a value")
		}
		return errStop
	case ir.StmtKill:
		st.result.Killed = true
		return errStop
	case ir.StmtStore:
		ptr, ok := st.fn.Expressions[s.Pointer].Kind.(ir.ExprLocalVariable)
		if !ok {
			return fmt.Errorf("store through expression %d, which is not a local variable", s.Pointer)
		}
		v, err := st.operand(s.Value)
		if err != nil {
			return err
		}
		st.locals[ptr.Variable] = v
		return nil
	case ir.StmtStoreOutput:
		v, err := st.operand(s.Value)
		if err != nil {
			return err
		}
		key := OutputKey{Location: s.Location, BlendSrc: s.BlendSrc}
		out := st.result.Outputs[key]
		out.Scalar = v.Scalar
		out.Size = max(out.Size, v.Size)
		for i := 0; i < v.Size; i++ {
			if s.WriteMask&(1<<uint(i)) != 0 {
				out.C[i] = v.C[i]
			}
		}
		st.result.Outputs[key] = out
		return nil
	default:
		return fmt.Errorf("unsupported statement %T", kind)
	}
}

// operand returns the value of an expression a statement or another
// expression refers to.
func (st *state) operand(h ir.ExpressionHandle) (Value, error) {
	if int(h) >= len(st.fn.Expressions) {
		return Value{}, fmt.Errorf("expression %d out of range", h)
	}
	if st.done[h] {
		return st.values[h], nil
	}
	if ir.NeedsEmit(st.fn.Expressions[h].Kind) {
		return Value{}, fmt.Errorf("expression %d used before it is emitted", h)
	}
	v, err := st.eval(h)
	if err != nil {
		return Value{}, err
	}
	st.values[h] = v
	st.done[h] = true
	return v, nil
}

func (st *state) typeOf(h ir.ExpressionHandle) (ir.ScalarType, int, error) {
	res, err := ir.ResolveExpressionType(st.module, st.fn, h)
	if err != nil {
		return ir.ScalarType{}, 0, err
	}
	inner := res.Inner(st.module)
	if ptr, ok := inner.(ir.PointerType); ok {
		inner = st.module.Types[ptr.Base].Inner
	}
	scalar, size, ok := ir.ScalarOf(inner)
	if !ok {
		return ir.ScalarType{}, 0, fmt.Errorf("expression %d has unsupported type %T", h, inner)
	}
	return scalar, size, nil
}

func (st *state) zero(ty ir.TypeHandle) (Value, error) {
	if int(ty) >= len(st.module.Types) {
		return Value{}, fmt.Errorf("type %d out of range", ty)
	}
	scalar, size, ok := ir.ScalarOf(st.module.Types[ty].Inner)
	if !ok {
		return Value{}, fmt.Errorf("unsupported type %T", st.module.Types[ty].Inner)
	}
	return Value{Scalar: scalar, Size: size}, nil
}

// eval computes an expression from its operands.
func (st *state) eval(h ir.ExpressionHandle) (Value, error) {
	scalar, size, err := st.typeOf(h)
	if err != nil {
		return Value{}, fmt.Errorf("expression %d: %w", h, err)
	}
	out := Value{Scalar: scalar, Size: size}

	switch e := st.fn.Expressions[h].Kind.(type) {
	case ir.ExprLocalVariable:
		return Value{}, fmt.Errorf("expression %d: pointer used as a value", h)
	case ir.ExprLoad:
		ptr, ok := st.fn.Expressions[e.Pointer].Kind.(ir.ExprLocalVariable)
		if !ok {
			return Value{}, fmt.Errorf("expression %d: load through a non-local pointer", h)
		}
		return st.locals[ptr.Variable], nil
	}

	ops := ir.Operands(st.fn.Expressions[h].Kind)
	args := make([]Value, len(ops))
	for i, op := range ops {
		if args[i], err = st.operand(op); err != nil {
			return Value{}, fmt.Errorf("expression %d: %w", h, err)
		}
	}

	switch e := st.fn.Expressions[h].Kind.(type) {
	case ir.Literal:
		out.C[0] = literalValue(e.Value)
	case ir.ExprZeroValue, ir.ExprUndef:
	case ir.ExprFunctionArgument:
		arg := st.in.Args[e.Index]
		for i := 0; i < size; i++ {
			out.C[i] = convert(arg.Scalar, scalar, arg.C[i])
		}
	case ir.ExprCompose:
		i := 0
		for _, c := range args {
			for j := 0; j < c.Size && i < size; j++ {
				out.C[i] = c.C[j]
				i++
			}
		}
	case ir.ExprAccessIndex:
		out.C[0] = args[0].C[e.Index]
	case ir.ExprSplat:
		for i := 0; i < size; i++ {
			out.C[i] = args[0].C[0]
		}
	case ir.ExprSwizzle:
		for i := 0; i < size; i++ {
			out.C[i] = args[0].C[e.Pattern[i]]
		}
	case ir.ExprUnary:
		for i := 0; i < size; i++ {
			out.C[i] = unary(e.Op, scalar, args[0].C[i])
		}
	case ir.ExprBinary:
		l, r := args[0], args[1]
		for i := 0; i < size; i++ {
			c, err := binary(e.Op, l.Scalar, lane(l, i), lane(r, i))
			if err != nil {
				return Value{}, fmt.Errorf("expression %d: %w", h, err)
			}
			out.C[i] = c
		}
	case ir.ExprSelect:
		for i := 0; i < size; i++ {
			if lane(args[0], i) != 0 {
				out.C[i] = args[1].C[i]
			} else {
				out.C[i] = args[2].C[i]
			}
		}
	case ir.ExprMath:
		for i := 0; i < size; i++ {
			lanes := make([]float64, len(args))
			for j, a := range args {
				lanes[j] = lane(a, i)
			}
			out.C[i] = mathFunc(e.Fun, scalar, lanes)
		}
	case ir.ExprAs:
		from := args[0].Scalar
		for i := 0; i < size; i++ {
			if e.Convert != nil {
				out.C[i] = convert(from, scalar, args[0].C[i])
				continue
			}
			if out.C[i], err = bitcast(from, scalar, args[0].C[i]); err != nil {
				return Value{}, fmt.Errorf("expression %d: %w", h, err)
			}
		}
	case ir.ExprFramebufferFetch:
		if e.Location >= uint32(len(st.in.Framebuffer)) {
			return Value{}, fmt.Errorf("expression %d: framebuffer location %d out of range", h, e.Location)
		}
		fb := st.in.Framebuffer[e.Location]
		for i := 0; i < 4; i++ {
			if i < fb.Size {
				out.C[i] = convert(fb.Scalar, scalar, fb.C[i])
			} else if i == 3 {
				out.C[i] = convert(ir.F32, scalar, 1)
			}
		}
	case ir.ExprBlendConstant:
		for i := 0; i < 4; i++ {
			out.C[i] = float64(st.in.BlendConstant[i])
		}
	case ir.ExprBlendConstantChannel:
		out.C[0] = float64(st.in.BlendConstant[e.Channel])
	default:
		return Value{}, fmt.Errorf("expression %d: unsupported kind %T", h, e)
	}

	if scalar.Kind == ir.ScalarFloat {
		for i := 0; i < size; i++ {
			out.C[i] = roundFloat(scalar, out.C[i])
		}
	}
	return out, nil
}

// lane returns component i of v, broadcasting scalars.
func lane(v Value, i int) float64 {
	if v.Size == 1 {
		return v.C[0]
	}
	return v.C[i]
}

func literalValue(v ir.LiteralValue) float64 {
	switch l := v.(type) {
	case ir.LiteralF32:
		return float64(l)
	case ir.LiteralF16:
		return float64(l)
	case ir.LiteralU32:
		return float64(l)
	case ir.LiteralI32:
		return float64(l)
	case ir.LiteralBool:
		if l {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("interp: unknown literal %T", v))
	}
}

func unary(op ir.UnaryOperator, scalar ir.ScalarType, c float64) float64 {
	switch op {
	case ir.UnaryNegate:
		if scalar.Kind == ir.ScalarSint {
			return float64(-int32(int64(c)))
		}
		return -c
	case ir.UnaryLogicalNot:
		if c != 0 {
			return 0
		}
		return 1
	case ir.UnaryBitwiseNot:
		if scalar.Kind == ir.ScalarSint {
			return float64(^int32(int64(c)))
		}
		return float64(^uint32(int64(c)))
	default:
		panic(fmt.Sprintf("interp: unknown unary operator %d", op))
	}
}

// binary applies op to one lane. scalar is the type of the left operand.
func binary(op ir.BinaryOperator, scalar ir.ScalarType, l, r float64) (float64, error) {
	if op.IsComparison() {
		var b bool
		switch op {
		case ir.BinaryEqual:
			b = l == r
		case ir.BinaryNotEqual:
			b = l != r
		case ir.BinaryLess:
			b = l < r
		case ir.BinaryLessEqual:
			b = l <= r
		case ir.BinaryGreater:
			b = l > r
		case ir.BinaryGreaterEqual:
			b = l >= r
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}

	switch scalar.Kind {
	case ir.ScalarFloat:
		a, b := float32(l), float32(r)
		switch op {
		case ir.BinaryAdd:
			return float64(a + b), nil
		case ir.BinarySubtract:
			return float64(a - b), nil
		case ir.BinaryMultiply:
			return float64(a * b), nil
		case ir.BinaryDivide:
			return float64(a / b), nil
		}
	case ir.ScalarUint:
		a, b := uint32(int64(l)), uint32(int64(r))
		switch op {
		case ir.BinaryAdd:
			return float64(a + b), nil
		case ir.BinarySubtract:
			return float64(a - b), nil
		case ir.BinaryMultiply:
			return float64(a * b), nil
		case ir.BinaryDivide:
			if b == 0 {
				return float64(a), nil
			}
			return float64(a / b), nil
		case ir.BinaryAnd:
			return float64(a & b), nil
		case ir.BinaryExclusiveOr:
			return float64(a ^ b), nil
		case ir.BinaryInclusiveOr:
			return float64(a | b), nil
		case ir.BinaryShiftLeft:
			return float64(a << (b & 31)), nil
		case ir.BinaryShiftRight:
			return float64(a >> (b & 31)), nil
		}
	case ir.ScalarSint:
		a := int32(int64(l))
		b := int32(int64(r))
		shift := uint32(int64(r)) & 31
		switch op {
		case ir.BinaryAdd:
			return float64(a + b), nil
		case ir.BinarySubtract:
			return float64(a - b), nil
		case ir.BinaryMultiply:
			return float64(a * b), nil
		case ir.BinaryDivide:
			if b == 0 || (a == math.MinInt32 && b == -1) {
				return float64(a), nil
			}
			return float64(a / b), nil
		case ir.BinaryAnd:
			return float64(a & b), nil
		case ir.BinaryExclusiveOr:
			return float64(a ^ b), nil
		case ir.BinaryInclusiveOr:
			return float64(a | b), nil
		case ir.BinaryShiftLeft:
			return float64(a << shift), nil
		case ir.BinaryShiftRight:
			return float64(a >> shift), nil
		}
	case ir.ScalarBool:
		a, b := l != 0, r != 0
		var v bool
		switch op {
		case ir.BinaryLogicalAnd, ir.BinaryAnd:
			v = a && b
		case ir.BinaryLogicalOr, ir.BinaryInclusiveOr:
			v = a || b
		default:
			return 0, fmt.Errorf("operator %d on booleans", op)
		}
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("operator %d on %s", op, scalarName(scalar))
}

func mathFunc(fun ir.MathFunction, scalar ir.ScalarType, a []float64) float64 {
	switch fun {
	case ir.MathAbs:
		return math.Abs(a[0])
	case ir.MathMin:
		return minLane(a[0], a[1])
	case ir.MathMax:
		return maxLane(a[0], a[1])
	case ir.MathClamp:
		return minLane(maxLane(a[0], a[1]), a[2])
	case ir.MathSaturate:
		return minLane(maxLane(a[0], 0), 1)
	case ir.MathRound:
		return math.RoundToEven(a[0])
	default:
		panic(fmt.Sprintf("interp: unknown math function %d on %s", fun, scalarName(scalar)))
	}
}

// minLane and maxLane follow GLSL: min(x, y) is y < x ? y : x.
func minLane(x, y float64) float64 {
	if y < x {
		return y
	}
	return x
}

func maxLane(x, y float64) float64 {
	if x < y {
		return y
	}
	return x
}
