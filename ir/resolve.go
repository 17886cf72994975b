package ir

import "fmt"

// ResolveExpressionType resolves the type of an expression in a function.
// Returns a TypeResolution that either references a module type or contains an inline type.
//
//nolint:gocyclo,cyclop // Type resolution requires handling all expression kinds
func ResolveExpressionType(module *Module, fn *Function, handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(fn.Expressions))
	}

	// Types recorded by the builder are authoritative.
	if int(handle) < len(fn.ExpressionTypes) {
		if cached := fn.ExpressionTypes[handle]; cached.Handle != nil || cached.Value != nil {
			return cached, nil
		}
	}

	expr := fn.Expressions[handle]

	switch kind := expr.Kind.(type) {
	case Literal:
		return resolveLiteralType(kind)
	case ExprZeroValue:
		h := kind.Type
		return TypeResolution{Handle: &h}, nil
	case ExprUndef:
		h := kind.Type
		return TypeResolution{Handle: &h}, nil
	case ExprCompose:
		h := kind.Type
		return TypeResolution{Handle: &h}, nil
	case ExprAccessIndex:
		return resolveAccessIndexType(module, fn, kind)
	case ExprSplat:
		scalar, err := resolveScalar(module, fn, kind.Value)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("splat value: %w", err)
		}
		return TypeResolution{Value: VectorType{Size: kind.Size, Scalar: scalar}}, nil
	case ExprSwizzle:
		scalar, err := resolveScalar(module, fn, kind.Vector)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("swizzle vector: %w", err)
		}
		return TypeResolution{Value: VectorType{Size: kind.Size, Scalar: scalar}}, nil
	case ExprFunctionArgument:
		if int(kind.Index) >= len(fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", kind.Index)
		}
		h := fn.Arguments[kind.Index].Type
		return TypeResolution{Handle: &h}, nil
	case ExprLocalVariable:
		if int(kind.Variable) >= len(fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", kind.Variable)
		}
		return TypeResolution{Value: PointerType{Base: fn.LocalVars[kind.Variable].Type, Space: SpaceFunction}}, nil
	case ExprLoad:
		return resolveLoadType(module, fn, kind)
	case ExprUnary:
		return ResolveExpressionType(module, fn, kind.Expr)
	case ExprBinary:
		return resolveBinaryType(module, fn, kind)
	case ExprSelect:
		return ResolveExpressionType(module, fn, kind.Accept)
	case ExprMath:
		return ResolveExpressionType(module, fn, kind.Arg)
	case ExprAs:
		return resolveAsType(module, fn, kind)
	case ExprFramebufferFetch:
		return TypeResolution{Value: VectorType{Size: Vec4, Scalar: kind.Scalar}}, nil
	case ExprBlendConstant:
		return TypeResolution{Value: VectorType{Size: Vec4, Scalar: F32}}, nil
	case ExprBlendConstantChannel:
		if kind.Channel > 3 {
			return TypeResolution{}, fmt.Errorf("blend constant channel %d out of range", kind.Channel)
		}
		return TypeResolution{Value: F32}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

func resolveLiteralType(lit Literal) (TypeResolution, error) {
	switch v := lit.Value.(type) {
	case LiteralF32:
		return TypeResolution{Value: F32}, nil
	case LiteralF16:
		return TypeResolution{Value: F16}, nil
	case LiteralU32:
		return TypeResolution{Value: U32}, nil
	case LiteralI32:
		return TypeResolution{Value: I32}, nil
	case LiteralBool:
		return TypeResolution{Value: Bool}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", v)
	}
}

func resolveInner(module *Module, fn *Function, handle ExpressionHandle) (TypeInner, error) {
	res, err := ResolveExpressionType(module, fn, handle)
	if err != nil {
		return nil, err
	}
	inner := res.Inner(module)
	if inner == nil {
		return nil, fmt.Errorf("expression %d has dangling type handle", handle)
	}
	return inner, nil
}

func resolveScalar(module *Module, fn *Function, handle ExpressionHandle) (ScalarType, error) {
	inner, err := resolveInner(module, fn, handle)
	if err != nil {
		return ScalarType{}, err
	}
	scalar, _, ok := ScalarOf(inner)
	if !ok {
		return ScalarType{}, fmt.Errorf("expression %d is not a scalar or vector (%T)", handle, inner)
	}
	return scalar, nil
}

func resolveAccessIndexType(module *Module, fn *Function, expr ExprAccessIndex) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Base)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("access index base: %w", err)
	}

	switch t := inner.(type) {
	case VectorType:
		if expr.Index >= uint32(t.Size) {
			return TypeResolution{}, fmt.Errorf("vector index %d out of range for size %d", expr.Index, t.Size)
		}
		return TypeResolution{Value: t.Scalar}, nil
	case StructType:
		if int(expr.Index) >= len(t.Members) {
			return TypeResolution{}, fmt.Errorf("struct member index %d out of range", expr.Index)
		}
		h := t.Members[expr.Index].Type
		return TypeResolution{Handle: &h}, nil
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into type %T", inner)
	}
}

func resolveLoadType(module *Module, fn *Function, expr ExprLoad) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Pointer)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("load pointer: %w", err)
	}
	ptr, ok := inner.(PointerType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("load through non-pointer type %T", inner)
	}
	h := ptr.Base
	return TypeResolution{Handle: &h}, nil
}

func resolveBinaryType(module *Module, fn *Function, expr ExprBinary) (TypeResolution, error) {
	left, err := resolveInner(module, fn, expr.Left)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary left: %w", err)
	}
	right, err := resolveInner(module, fn, expr.Right)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary right: %w", err)
	}

	// Vector op scalar yields the vector shape.
	shape := left
	if _, ok := left.(ScalarType); ok {
		if _, isVec := right.(VectorType); isVec {
			shape = right
		}
	}

	if expr.Op.IsComparison() {
		if vec, ok := shape.(VectorType); ok {
			return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: Bool}}, nil
		}
		return TypeResolution{Value: Bool}, nil
	}
	return TypeResolution{Value: shape}, nil
}

func resolveAsType(module *Module, fn *Function, expr ExprAs) (TypeResolution, error) {
	inner, err := resolveInner(module, fn, expr.Expr)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("as operand: %w", err)
	}
	scalar, size, ok := ScalarOf(inner)
	if !ok {
		return TypeResolution{}, fmt.Errorf("cannot convert type %T", inner)
	}

	target := ScalarType{Kind: expr.Kind, Width: scalar.Width}
	if expr.Convert != nil {
		target.Width = *expr.Convert
	}
	if size == 1 {
		return TypeResolution{Value: target}, nil
	}
	return TypeResolution{Value: VectorType{Size: VectorSize(size), Scalar: target}}, nil
}
