// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/shaderblend/ir"
	"github.com/mrjoshuak/go-openexr/half"
)

// Value is a scalar or a vector of up to four components.
//
// Components are held as float64, which represents every f16, f32, i32
// and u32 value exactly. Float components are always rounded to their
// declared width.
type Value struct {
	Scalar ir.ScalarType
	Size   int
	C      [4]float64
}

// F32 returns a f32 scalar or vector.
func F32(c ...float32) Value { return floats(ir.F32, c) }

// F16 returns a f16 scalar or vector. Components are rounded to half
// precision.
func F16(c ...float32) Value { return floats(ir.F16, c) }

func floats(scalar ir.ScalarType, c []float32) Value {
	v := Value{Scalar: scalar, Size: checkSize(len(c))}
	for i, f := range c {
		v.C[i] = roundFloat(scalar, float64(f))
	}
	return v
}

// U32 returns a u32 scalar or vector.
func U32(c ...uint32) Value {
	v := Value{Scalar: ir.U32, Size: checkSize(len(c))}
	for i, u := range c {
		v.C[i] = float64(u)
	}
	return v
}

// I32 returns an i32 scalar or vector.
func I32(c ...int32) Value {
	v := Value{Scalar: ir.I32, Size: checkSize(len(c))}
	for i, n := range c {
		v.C[i] = float64(n)
	}
	return v
}

// Bool returns a boolean scalar or vector.
func Bool(c ...bool) Value {
	v := Value{Scalar: ir.Bool, Size: checkSize(len(c))}
	for i, b := range c {
		if b {
			v.C[i] = 1
		}
	}
	return v
}

func checkSize(n int) int {
	if n < 1 || n > 4 {
		panic(fmt.Sprintf("interp: value with %d components", n))
	}
	return n
}

// Float32 returns component i as float32.
func (v Value) Float32(i int) float32 { return float32(v.C[i]) }

// Uint32 returns component i as uint32.
func (v Value) Uint32(i int) uint32 { return uint32(int64(v.C[i])) }

// Int32 returns component i as int32.
func (v Value) Int32(i int) int32 { return int32(int64(v.C[i])) }

// Float32s returns the components as float32.
func (v Value) Float32s() []float32 {
	out := make([]float32, v.Size)
	for i := range out {
		out[i] = v.Float32(i)
	}
	return out
}

// String formats the value like a WGSL constructor, e.g. vec4<f32>(1, 0, 0, 1).
func (v Value) String() string {
	var sb strings.Builder
	if v.Size > 1 {
		fmt.Fprintf(&sb, "vec%d<%s>(", v.Size, scalarName(v.Scalar))
	} else {
		fmt.Fprintf(&sb, "%s(", scalarName(v.Scalar))
	}
	for i := 0; i < v.Size; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch v.Scalar.Kind {
		case ir.ScalarBool:
			fmt.Fprint(&sb, v.C[i] != 0)
		default:
			fmt.Fprint(&sb, v.C[i])
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarFloat:
		if s.Width == 2 {
			return "f16"
		}
		return "f32"
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	default:
		return "bool"
	}
}

// roundFloat rounds f to the precision of a float scalar type.
func roundFloat(scalar ir.ScalarType, f float64) float64 {
	if scalar.Width == 2 {
		return float64(half.FromFloat32(float32(f)).Float32())
	}
	return float64(float32(f))
}

// convert converts one component between scalar types with the WGSL
// rules: float to integer truncates toward zero and saturates.
func convert(from, to ir.ScalarType, c float64) float64 {
	switch to.Kind {
	case ir.ScalarFloat:
		return roundFloat(to, c)
	case ir.ScalarBool:
		if c != 0 {
			return 1
		}
		return 0
	}
	if from.Kind == ir.ScalarFloat {
		if math.IsNaN(c) {
			return 0
		}
		c = math.Trunc(c)
		if to.Kind == ir.ScalarUint {
			return math.Max(0, math.Min(c, math.MaxUint32))
		}
		return math.Max(math.MinInt32, math.Min(c, math.MaxInt32))
	}
	if to.Kind == ir.ScalarUint {
		return float64(uint32(int64(c)))
	}
	return float64(int32(int64(c)))
}

// bitcast reinterprets the 32 bits of one component.
func bitcast(from, to ir.ScalarType, c float64) (float64, error) {
	if from.Width != 4 || to.Width != 4 {
		return 0, fmt.Errorf("bitcast between %s and %s", scalarName(from), scalarName(to))
	}
	var bits uint32
	switch from.Kind {
	case ir.ScalarFloat:
		bits = math.Float32bits(float32(c))
	default:
		bits = uint32(int64(c))
	}
	switch to.Kind {
	case ir.ScalarFloat:
		return float64(math.Float32frombits(bits)), nil
	case ir.ScalarUint:
		return float64(bits), nil
	case ir.ScalarSint:
		return float64(int32(bits)), nil
	default:
		return 0, fmt.Errorf("bitcast to %s", scalarName(to))
	}
}
