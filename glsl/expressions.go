// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/shaderblend/ir"
)

const componentNames = "xyzw"

// writeExpression writes an expression and returns its GLSL representation.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	// Check if this expression was already named
	if name, ok := w.namedExpressions[handle]; ok {
		return name, nil
	}

	if int(handle) >= len(w.fn.Expressions) {
		return "", fmt.Errorf("invalid expression handle: %d", handle)
	}

	kind := w.fn.Expressions[handle].Kind
	if ir.NeedsEmit(kind) {
		return "", fmt.Errorf("expression %d used before it is emitted", handle)
	}
	return w.writeExpressionKind(kind, handle)
}

// writeExpressionKind writes the expression based on its kind.
//
//nolint:gocyclo,cyclop // Expression handling requires many cases
func (w *Writer) writeExpressionKind(kind ir.ExpressionKind, handle ir.ExpressionHandle) (string, error) {
	switch k := kind.(type) {
	case ir.Literal:
		return writeLiteral(k)
	case ir.ExprZeroValue:
		return w.writeZero(k.Type)
	case ir.ExprUndef:
		return w.writeZero(k.Type)
	case ir.ExprCompose:
		return w.writeCompose(k)
	case ir.ExprAccessIndex:
		return w.writeAccessIndex(k)
	case ir.ExprSplat:
		return w.writeSplat(k)
	case ir.ExprSwizzle:
		return w.writeSwizzle(k)
	case ir.ExprFunctionArgument:
		return w.writeFunctionArgument(k)
	case ir.ExprLocalVariable:
		return w.localNames[k.Variable], nil
	case ir.ExprLoad:
		return w.writeLoad(k)
	case ir.ExprUnary:
		return w.writeUnary(k)
	case ir.ExprBinary:
		return w.writeBinary(k)
	case ir.ExprSelect:
		return w.writeSelect(k)
	case ir.ExprMath:
		return w.writeMath(k)
	case ir.ExprAs:
		return w.writeAs(k, handle)
	case ir.ExprFramebufferFetch:
		return w.outputs[outputKey{location: k.Location}].name, nil
	case ir.ExprBlendConstant:
		return w.options.BlendConstantName, nil
	case ir.ExprBlendConstantChannel:
		if k.Channel > 3 {
			return "", fmt.Errorf("blend constant channel %d", k.Channel)
		}
		return w.options.BlendConstantName + "_" + string(blendConstantChannels[k.Channel]), nil
	default:
		return "", fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

// writeLiteral writes a literal expression.
func writeLiteral(lit ir.Literal) (string, error) {
	switch v := lit.Value.(type) {
	case ir.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	case ir.LiteralI32:
		if int32(v) == -2147483648 {
			return "(-2147483647 - 1)", nil
		}
		return fmt.Sprintf("%d", int32(v)), nil
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v)), nil
	case ir.LiteralF32:
		return formatFloat(float32(v)), nil
	case ir.LiteralF16:
		return formatFloat(float32(v)), nil
	default:
		return "", fmt.Errorf("unsupported literal %T", v)
	}
}

func (w *Writer) writeZero(ty ir.TypeHandle) (string, error) {
	scalar, size, ok := ir.ScalarOf(w.typeInner(ty))
	if !ok {
		return "", fmt.Errorf("zero value of non-numeric type %d", ty)
	}
	return zeroValue(scalar, size), nil
}

// writeCompose writes a vector constructor.
func (w *Writer) writeCompose(c ir.ExprCompose) (string, error) {
	vec, ok := w.typeInner(c.Type).(ir.VectorType)
	if !ok {
		return "", fmt.Errorf("compose of non-vector type %d", c.Type)
	}
	args, err := w.writeList(c.Components)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", vectorToGLSL(vec), args), nil
}

func (w *Writer) writeList(handles []ir.ExpressionHandle) (string, error) {
	parts := make([]string, len(handles))
	for i, h := range handles {
		s, err := w.writeExpression(h)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// writeAccessIndex writes a vector component or a struct input member.
func (w *Writer) writeAccessIndex(a ir.ExprAccessIndex) (string, error) {
	res, err := ir.ResolveExpressionType(w.module, w.fn, a.Base)
	if err != nil {
		return "", err
	}
	switch t := res.Inner(w.module).(type) {
	case ir.VectorType:
		base, err := w.writeExpression(a.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%c", base, componentNames[a.Index]), nil
	case ir.StructType:
		arg, ok := w.fn.Expressions[a.Base].Kind.(ir.ExprFunctionArgument)
		if !ok || int(a.Index) >= len(t.Members) {
			return "", fmt.Errorf("struct access is only supported on entry point inputs")
		}
		if b := t.Members[a.Index].Binding; b != nil {
			if builtin, ok := (*b).(ir.BuiltinBinding); ok {
				return builtinInput(builtin.Builtin)
			}
		}
		return w.inputNames[inputKey{arg: arg.Index, member: int(a.Index)}], nil
	default:
		return "", fmt.Errorf("cannot index into type %T", t)
	}
}

// writeSplat writes a splat expression (scalar to vector).
func (w *Writer) writeSplat(s ir.ExprSplat) (string, error) {
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return "", err
	}
	scalar, _, err := w.scalarOf(s.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", ctorType(scalar, int(s.Size)), value), nil
}

// writeSwizzle writes a swizzle expression.
func (w *Writer) writeSwizzle(s ir.ExprSwizzle) (string, error) {
	vector, err := w.writeExpression(s.Vector)
	if err != nil {
		return "", err
	}
	var pattern strings.Builder
	for i := 0; i < int(s.Size); i++ {
		pattern.WriteByte(componentNames[s.Pattern[i]])
	}
	return fmt.Sprintf("%s.%s", vector, pattern.String()), nil
}

// writeFunctionArgument writes an entry point input.
func (w *Writer) writeFunctionArgument(a ir.ExprFunctionArgument) (string, error) {
	if int(a.Index) >= len(w.fn.Arguments) {
		return "", fmt.Errorf("argument %d out of range", a.Index)
	}
	arg := w.fn.Arguments[a.Index]
	if arg.Binding != nil {
		if builtin, ok := (*arg.Binding).(ir.BuiltinBinding); ok {
			return builtinInput(builtin.Builtin)
		}
	}
	name, ok := w.inputNames[inputKey{arg: a.Index, member: -1}]
	if !ok {
		return "", fmt.Errorf("struct argument %d used as a value", a.Index)
	}
	return name, nil
}

// builtinInput returns the GLSL expression for a fragment built-in input.
func builtinInput(b ir.BuiltinValue) (string, error) {
	switch b {
	case ir.BuiltinPosition:
		return "gl_FragCoord", nil
	case ir.BuiltinFrontFacing:
		return "gl_FrontFacing", nil
	case ir.BuiltinSampleIndex:
		return "uint(gl_SampleID)", nil
	case ir.BuiltinSampleMask:
		return "uint(gl_SampleMaskIn[0])", nil
	default:
		return "", fmt.Errorf("built-in %d is not a fragment input", b)
	}
}

// writeLoad writes a load expression.
func (w *Writer) writeLoad(l ir.ExprLoad) (string, error) {
	if _, ok := w.fn.Expressions[l.Pointer].Kind.(ir.ExprLocalVariable); !ok {
		return "", fmt.Errorf("load through expression %d, which is not a local variable", l.Pointer)
	}
	return w.writeExpression(l.Pointer)
}

// writeUnary writes a unary expression.
func (w *Writer) writeUnary(u ir.ExprUnary) (string, error) {
	operand, err := w.writeExpression(u.Expr)
	if err != nil {
		return "", err
	}

	switch u.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("-(%s)", operand), nil
	case ir.UnaryLogicalNot:
		_, size, err := w.scalarOf(u.Expr)
		if err != nil {
			return "", err
		}
		if size > 1 {
			return fmt.Sprintf("not(%s)", operand), nil
		}
		return fmt.Sprintf("!(%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("~(%s)", operand), nil
	default:
		return "", fmt.Errorf("unsupported unary operator: %v", u.Op)
	}
}

// vectorComparisons maps comparison operators to the GLSL functions
// used when the operands are vectors.
var vectorComparisons = map[ir.BinaryOperator]string{
	ir.BinaryEqual:        "equal",
	ir.BinaryNotEqual:     "notEqual",
	ir.BinaryLess:         "lessThan",
	ir.BinaryLessEqual:    "lessThanEqual",
	ir.BinaryGreater:      "greaterThan",
	ir.BinaryGreaterEqual: "greaterThanEqual",
}

// writeBinary writes a binary expression.
//
//nolint:gocyclo,cyclop // Binary operators require many cases
func (w *Writer) writeBinary(b ir.ExprBinary) (string, error) {
	left, err := w.writeExpression(b.Left)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(b.Right)
	if err != nil {
		return "", err
	}

	if fn, ok := vectorComparisons[b.Op]; ok {
		if _, size, err := w.scalarOf(b.Left); err == nil && size > 1 {
			return fmt.Sprintf("%s(%s, %s)", fn, left, right), nil
		}
	}

	switch b.Op {
	case ir.BinaryAdd:
		return fmt.Sprintf("(%s + %s)", left, right), nil
	case ir.BinarySubtract:
		return fmt.Sprintf("(%s - %s)", left, right), nil
	case ir.BinaryMultiply:
		return fmt.Sprintf("(%s * %s)", left, right), nil
	case ir.BinaryDivide:
		return fmt.Sprintf("(%s / %s)", left, right), nil
	case ir.BinaryEqual:
		return fmt.Sprintf("(%s == %s)", left, right), nil
	case ir.BinaryNotEqual:
		return fmt.Sprintf("(%s != %s)", left, right), nil
	case ir.BinaryLess:
		return fmt.Sprintf("(%s < %s)", left, right), nil
	case ir.BinaryLessEqual:
		return fmt.Sprintf("(%s <= %s)", left, right), nil
	case ir.BinaryGreater:
		return fmt.Sprintf("(%s > %s)", left, right), nil
	case ir.BinaryGreaterEqual:
		return fmt.Sprintf("(%s >= %s)", left, right), nil
	case ir.BinaryAnd:
		return fmt.Sprintf("(%s & %s)", left, right), nil
	case ir.BinaryExclusiveOr:
		return fmt.Sprintf("(%s ^ %s)", left, right), nil
	case ir.BinaryInclusiveOr:
		return fmt.Sprintf("(%s | %s)", left, right), nil
	case ir.BinaryLogicalAnd:
		return fmt.Sprintf("(%s && %s)", left, right), nil
	case ir.BinaryLogicalOr:
		return fmt.Sprintf("(%s || %s)", left, right), nil
	case ir.BinaryShiftLeft:
		return fmt.Sprintf("(%s << %s)", left, right), nil
	case ir.BinaryShiftRight:
		return fmt.Sprintf("(%s >> %s)", left, right), nil
	default:
		return "", fmt.Errorf("unsupported binary operator: %v", b.Op)
	}
}

// writeSelect writes a select expression. Vector conditions select per
// component with mix.
func (w *Writer) writeSelect(s ir.ExprSelect) (string, error) {
	condition, err := w.writeExpression(s.Condition)
	if err != nil {
		return "", err
	}
	accept, err := w.writeExpression(s.Accept)
	if err != nil {
		return "", err
	}
	reject, err := w.writeExpression(s.Reject)
	if err != nil {
		return "", err
	}
	if _, size, err := w.scalarOf(s.Condition); err == nil && size > 1 {
		return fmt.Sprintf("mix(%s, %s, %s)", reject, accept, condition), nil
	}
	return fmt.Sprintf("(%s ? %s : %s)", condition, accept, reject), nil
}

// writeMath writes a math function expression.
func (w *Writer) writeMath(m ir.ExprMath) (string, error) {
	handles := []ir.ExpressionHandle{m.Arg}
	if m.Arg1 != nil {
		handles = append(handles, *m.Arg1)
	}
	if m.Arg2 != nil {
		handles = append(handles, *m.Arg2)
	}
	args, err := w.writeList(handles)
	if err != nil {
		return "", err
	}

	switch m.Fun {
	case ir.MathAbs:
		return fmt.Sprintf("abs(%s)", args), nil
	case ir.MathMin:
		return fmt.Sprintf("min(%s)", args), nil
	case ir.MathMax:
		return fmt.Sprintf("max(%s)", args), nil
	case ir.MathClamp:
		return fmt.Sprintf("clamp(%s)", args), nil
	case ir.MathSaturate:
		return fmt.Sprintf("clamp(%s, 0.0, 1.0)", args), nil
	case ir.MathRound:
		return fmt.Sprintf("roundEven(%s)", args), nil
	default:
		return "", fmt.Errorf("unsupported math function: %v", m.Fun)
	}
}

// writeAs writes a conversion or bitcast.
func (w *Writer) writeAs(a ir.ExprAs, handle ir.ExpressionHandle) (string, error) {
	value, err := w.writeExpression(a.Expr)
	if err != nil {
		return "", err
	}
	from, _, err := w.scalarOf(a.Expr)
	if err != nil {
		return "", err
	}
	to, size, err := w.scalarOf(handle)
	if err != nil {
		return "", err
	}

	if a.Convert != nil || from.Kind == to.Kind || (from.Kind != ir.ScalarFloat && to.Kind != ir.ScalarFloat) {
		return fmt.Sprintf("%s(%s)", ctorType(to, size), value), nil
	}

	switch {
	case from.Kind == ir.ScalarFloat && to.Kind == ir.ScalarUint:
		return fmt.Sprintf("floatBitsToUint(%s)", value), nil
	case from.Kind == ir.ScalarFloat && to.Kind == ir.ScalarSint:
		return fmt.Sprintf("floatBitsToInt(%s)", value), nil
	case from.Kind == ir.ScalarUint:
		return fmt.Sprintf("uintBitsToFloat(%s)", value), nil
	case from.Kind == ir.ScalarSint:
		return fmt.Sprintf("intBitsToFloat(%s)", value), nil
	default:
		return "", fmt.Errorf("unsupported bitcast from %s to %s", scalarToGLSL(from), scalarToGLSL(to))
	}
}
