// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/shaderblend/ir"
)

// GLSL type name constants for repeated use.
const (
	glslTypeInt   = "int"
	glslTypeUint  = "uint"
	glslTypeFloat = "float"
	glslTypeBool  = "bool"
)

// scalarToGLSL returns the GLSL name for a scalar type. Half floats use
// float; declarations mark them mediump.
func scalarToGLSL(t ir.ScalarType) string {
	switch t.Kind {
	case ir.ScalarBool:
		return glslTypeBool
	case ir.ScalarSint:
		return glslTypeInt
	case ir.ScalarUint:
		return glslTypeUint
	default:
		return glslTypeFloat
	}
}

// vectorToGLSL returns the GLSL name for a vector type.
func vectorToGLSL(t ir.VectorType) string {
	switch t.Scalar.Kind {
	case ir.ScalarBool:
		return fmt.Sprintf("bvec%d", t.Size)
	case ir.ScalarSint:
		return fmt.Sprintf("ivec%d", t.Size)
	case ir.ScalarUint:
		return fmt.Sprintf("uvec%d", t.Size)
	default:
		return fmt.Sprintf("vec%d", t.Size)
	}
}

// ctorType returns the constructor name of a scalar or vector, as used
// in expressions.
func ctorType(scalar ir.ScalarType, size int) string {
	if size == 1 {
		return scalarToGLSL(scalar)
	}
	return vectorToGLSL(ir.VectorType{Size: ir.VectorSize(size), Scalar: scalar})
}

// declType returns the type of a scalar or vector as written in a
// declaration, with a precision qualifier for half floats.
func declType(scalar ir.ScalarType, size int) string {
	if scalar.Kind == ir.ScalarFloat && scalar.Width == 2 {
		return "mediump " + ctorType(scalar, size)
	}
	return ctorType(scalar, size)
}

// zeroValue returns the zero constant of a scalar or vector.
func zeroValue(scalar ir.ScalarType, size int) string {
	var zero string
	switch scalar.Kind {
	case ir.ScalarBool:
		zero = "false"
	case ir.ScalarSint:
		zero = "0"
	case ir.ScalarUint:
		zero = "0u"
	default:
		zero = "0.0"
	}
	if size == 1 {
		return zero
	}
	return fmt.Sprintf("%s(%s)", ctorType(scalar, size), zero)
}
