// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import (
	"fmt"

	"github.com/gogpu/shaderblend/ir"
)

// LogicOp is a bitwise framebuffer operation. The value is the truth
// table of the operation: bit 2*s+d of the op is the result for source
// bit s and destination bit d.
type LogicOp uint8

const (
	LogicOpClear        LogicOp = iota // 0
	LogicOpNor                         // ~(s | d)
	LogicOpAndInverted                 // ~s & d
	LogicOpCopyInverted                // ~s
	LogicOpAndReverse                  // s & ~d
	LogicOpInvert                      // ~d
	LogicOpXor                         // s ^ d
	LogicOpNand                        // ~(s & d)
	LogicOpAnd                         // s & d
	LogicOpEquiv                       // ~(s ^ d)
	LogicOpNoop                        // d
	LogicOpOrInverted                  // ~s | d
	LogicOpCopy                        // s
	LogicOpOrReverse                   // s | ~d
	LogicOpOr                          // s | d
	LogicOpSet                         // all ones
)

var logicOpNames = [...]string{
	LogicOpClear:        "clear",
	LogicOpNor:          "nor",
	LogicOpAndInverted:  "and-inverted",
	LogicOpCopyInverted: "copy-inverted",
	LogicOpAndReverse:   "and-reverse",
	LogicOpInvert:       "invert",
	LogicOpXor:          "xor",
	LogicOpNand:         "nand",
	LogicOpAnd:          "and",
	LogicOpEquiv:        "equiv",
	LogicOpNoop:         "noop",
	LogicOpOrInverted:   "or-inverted",
	LogicOpCopy:         "copy",
	LogicOpOrReverse:    "or-reverse",
	LogicOpOr:           "or",
	LogicOpSet:          "set",
}

// String returns the name of the operation.
func (op LogicOp) String() string {
	if int(op) < len(logicOpNames) {
		return logicOpNames[op]
	}
	return fmt.Sprintf("LogicOp(%d)", uint8(op))
}

// ParseLogicOp returns the operation with the given String name.
func ParseLogicOp(name string) (LogicOp, error) {
	for op, n := range logicOpNames {
		if n == name {
			return LogicOp(op), nil
		}
	}
	return 0, fmt.Errorf("unknown logic op %q", name)
}

// Eval applies the operation to the low bits of s and d selected by
// mask. It is the reference the generated code is tested against.
func (op LogicOp) Eval(s, d, mask uint32) uint32 {
	var r uint32
	for bit := 0; bit < 32; bit++ {
		sb := (s >> bit) & 1
		db := (d >> bit) & 1
		r |= uint32(op>>(2*sb+db)&1) << bit
	}
	return r & mask
}

// bitMask returns a mask of the low bits bits.
func bitMask(bits uint8) uint32 {
	if bits >= 32 {
		return ^uint32(0)
	}
	return 1<<bits - 1
}

// logicOp evaluates op on every channel the format stores. Float and
// sRGB formats are unaffected by logic ops and get the source back.
func (e *emitter) logicOp(op LogicOp) [4]ir.ExpressionHandle {
	var out [4]ir.ExpressionHandle
	format := e.rt.Format
	for ch := 0; ch < 4; ch++ {
		bits := format.Bits[ch]
		if format.IsFloat() || format.IsSRGB() || bits == 0 {
			out[ch] = e.rawSrcChannel(ch)
			continue
		}
		src := e.pack(e.rawSrcChannel(ch), bits)
		dst := e.pack(e.rawDstChannel(ch), bits)
		out[ch] = e.unpack(e.applyLogicOp(op, src, dst, bits), bits)
	}
	return out
}

func (e *emitter) normScale(bits uint8) float32 {
	if e.rt.Format.IsSnorm() {
		return float32(uint32(1)<<(bits-1) - 1)
	}
	return float32(bitMask(bits))
}

// pack converts a channel to the integer the format stores.
func (e *emitter) pack(v ir.ExpressionHandle, bits uint8) ir.ExpressionHandle {
	format := e.rt.Format
	switch {
	case format.IsPureInteger():
		return v
	case format.IsUnorm(), format.IsSnorm():
	default:
		panic(fmt.Sprintf("blend: logic op on %s", format))
	}

	if e.scalar.Width != 4 {
		v = e.b.Convert(v, ir.ScalarFloat, 4)
	}
	kind := ir.ScalarUint
	if format.IsUnorm() {
		v = e.b.Math(ir.MathSaturate, v)
	} else {
		kind = ir.ScalarSint
		v = e.b.Math(ir.MathClamp, v, e.b.Float(ir.F32, -1), e.b.Float(ir.F32, 1))
	}
	v = e.b.Binary(ir.BinaryMultiply, v, e.b.Float(ir.F32, e.normScale(bits)))
	return e.b.Convert(e.b.Math(ir.MathRound, v), kind, 4)
}

// unpack converts a stored integer back to the working representation.
func (e *emitter) unpack(v ir.ExpressionHandle, bits uint8) ir.ExpressionHandle {
	format := e.rt.Format
	if format.IsPureInteger() {
		return v
	}

	scale := e.b.Float(ir.F32, e.normScale(bits))
	if format.IsSnorm() {
		shift := e.b.Uint(uint32(32 - bits))
		v = e.b.Binary(ir.BinaryShiftLeft, v, shift)
		v = e.b.Binary(ir.BinaryShiftRight, v, shift)
	}
	f := e.b.Binary(ir.BinaryDivide, e.b.Convert(v, ir.ScalarFloat, 4), scale)
	if format.IsSnorm() {
		f = e.b.Math(ir.MathMax, f, e.b.Float(ir.F32, -1))
	}
	return e.narrow(f)
}

// applyLogicOp builds op over packed channels, keeping the result within
// the low bits bits.
func (e *emitter) applyLogicOp(op LogicOp, s, d ir.ExpressionHandle, bits uint8) ir.ExpressionHandle {
	b := e.b
	scalar, _ := b.ScalarOf(s)
	var mask ir.ExpressionHandle
	if scalar.Kind == ir.ScalarSint {
		mask = b.Int(int32(bitMask(bits)))
	} else {
		mask = b.Uint(bitMask(bits))
	}
	not := func(v ir.ExpressionHandle) ir.ExpressionHandle {
		return b.Binary(ir.BinaryExclusiveOr, v, mask)
	}
	and := func(x, y ir.ExpressionHandle) ir.ExpressionHandle { return b.Binary(ir.BinaryAnd, x, y) }
	or := func(x, y ir.ExpressionHandle) ir.ExpressionHandle { return b.Binary(ir.BinaryInclusiveOr, x, y) }
	xor := func(x, y ir.ExpressionHandle) ir.ExpressionHandle { return b.Binary(ir.BinaryExclusiveOr, x, y) }

	switch op {
	case LogicOpClear:
		if scalar.Kind == ir.ScalarSint {
			return b.Int(0)
		}
		return b.Uint(0)
	case LogicOpNor:
		return not(or(s, d))
	case LogicOpAndInverted:
		return and(not(s), d)
	case LogicOpCopyInverted:
		return not(s)
	case LogicOpAndReverse:
		return and(s, not(d))
	case LogicOpInvert:
		return not(d)
	case LogicOpXor:
		return xor(s, d)
	case LogicOpNand:
		return not(and(s, d))
	case LogicOpAnd:
		return and(s, d)
	case LogicOpEquiv:
		return not(xor(s, d))
	case LogicOpNoop:
		panic("blend: noop logic op must remove the write")
	case LogicOpOrInverted:
		return or(not(s), d)
	case LogicOpCopy:
		return s
	case LogicOpOrReverse:
		return or(s, not(d))
	case LogicOpOr:
		return or(s, d)
	case LogicOpSet:
		return mask
	default:
		panic(fmt.Sprintf("blend: invalid logic op %d", op))
	}
}
