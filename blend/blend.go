// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import (
	"fmt"

	"github.com/gogpu/shaderblend/ir"
)

// lazyChannels memoizes per-channel expressions so every channel of a
// color is built at most once per write.
type lazyChannels struct {
	h   [4]ir.ExpressionHandle
	set [4]bool
}

func (c *lazyChannels) get(i int, build func() ir.ExpressionHandle) ir.ExpressionHandle {
	if !c.set[i] {
		c.h[i] = build()
		c.set[i] = true
	}
	return c.h[i]
}

// writeInputs are the values one color write is lowered from. The
// source is the value the program wrote; dst yields the read-back
// vector and src1 is the dual-source value, if any.
type writeInputs struct {
	src         ir.ExpressionHandle
	src1        *ir.ExpressionHandle
	dst         func() ir.ExpressionHandle
	scalarConst bool
}

// emitter builds the expressions for a single color write. All
// expressions go through one builder, so their order in the emitted
// block is the order they are requested in.
type emitter struct {
	b      *ir.Builder
	rt     *RenderTarget
	in     writeInputs
	scalar ir.ScalarType
	size   int

	rawSrc   lazyChannels
	rawDst   lazyChannels
	src      lazyChannels
	dst      lazyChannels
	src1     lazyChannels
	bconst   lazyChannels
	literals map[float32]ir.ExpressionHandle

	clampedSrc  *ir.ExpressionHandle
	clampedSrc1 *ir.ExpressionHandle
	constVec    *ir.ExpressionHandle
	alphaSat    *ir.ExpressionHandle
}

func newEmitter(b *ir.Builder, rt *RenderTarget, in writeInputs) *emitter {
	scalar, size := b.ScalarOf(in.src)
	return &emitter{
		b:        b,
		rt:       rt,
		in:       in,
		scalar:   scalar,
		size:     size,
		literals: make(map[float32]ir.ExpressionHandle),
	}
}

// constant returns a literal of the working scalar type.
func (e *emitter) constant(v float32) ir.ExpressionHandle {
	if h, ok := e.literals[v]; ok {
		return h
	}
	var h ir.ExpressionHandle
	switch e.scalar.Kind {
	case ir.ScalarFloat:
		h = e.b.Float(e.scalar, v)
	case ir.ScalarUint:
		h = e.b.Uint(uint32(v))
	case ir.ScalarSint:
		h = e.b.Int(int32(v))
	default:
		panic(fmt.Sprintf("blend: color of scalar kind %d", e.scalar.Kind))
	}
	e.literals[v] = h
	return h
}

// channelDefault is the value of a channel a color does not carry.
func channelDefault(i int) float32 {
	if i == 3 {
		return 1
	}
	return 0
}

// rawSrcChannel returns channel i of the written value, padded with
// (0, 0, 0, 1).
func (e *emitter) rawSrcChannel(i int) ir.ExpressionHandle {
	return e.rawSrc.get(i, func() ir.ExpressionHandle {
		if i >= e.size {
			return e.constant(channelDefault(i))
		}
		return e.b.Channel(e.in.src, i)
	})
}

// rawDstChannel returns channel i of the read-back value as stored.
func (e *emitter) rawDstChannel(i int) ir.ExpressionHandle {
	return e.rawDst.get(i, func() ir.ExpressionHandle {
		return e.b.Channel(e.in.dst(), i)
	})
}

// clampToFormat restricts v to the numeric domain of the target format.
// Float and integer formats are returned unchanged.
func (e *emitter) clampToFormat(v ir.ExpressionHandle) ir.ExpressionHandle {
	switch {
	case e.rt.Format.IsUnorm():
		return e.b.Math(ir.MathSaturate, v)
	case e.rt.Format.IsSnorm():
		return e.b.Math(ir.MathClamp, v, e.constant(-1), e.constant(1))
	default:
		return v
	}
}

// srcChannel returns channel i of the source clamped to the format.
func (e *emitter) srcChannel(i int) ir.ExpressionHandle {
	return e.src.get(i, func() ir.ExpressionHandle {
		if i >= e.size {
			return e.constant(channelDefault(i))
		}
		if e.clampedSrc == nil {
			h := e.clampToFormat(e.in.src)
			e.clampedSrc = &h
		}
		return e.b.Channel(*e.clampedSrc, i)
	})
}

// dstChannel returns channel i of the destination with channels the
// format does not store replaced by (0, 0, 0, 1).
func (e *emitter) dstChannel(i int) ir.ExpressionHandle {
	return e.dst.get(i, func() ir.ExpressionHandle {
		if !e.rt.Format.HasChannel(i) {
			return e.constant(channelDefault(i))
		}
		return e.rawDstChannel(i)
	})
}

// src1Channel returns channel i of the dual-source color, or zero when
// the program wrote none.
func (e *emitter) src1Channel(i int) ir.ExpressionHandle {
	return e.src1.get(i, func() ir.ExpressionHandle {
		if e.in.src1 == nil {
			return e.constant(0)
		}
		if e.clampedSrc1 == nil {
			v := *e.in.src1
			scalar, _ := e.b.ScalarOf(v)
			if scalar != e.scalar {
				v = e.b.Convert(v, e.scalar.Kind, e.scalar.Width)
			}
			v = e.clampToFormat(v)
			e.clampedSrc1 = &v
		}
		if _, size := e.b.ScalarOf(*e.clampedSrc1); i >= size {
			return e.constant(channelDefault(i))
		}
		return e.b.Channel(*e.clampedSrc1, i)
	})
}

// constChannel returns channel i of the blend constant at working
// precision.
func (e *emitter) constChannel(i int) ir.ExpressionHandle {
	return e.bconst.get(i, func() ir.ExpressionHandle {
		if e.in.scalarConst {
			v := e.b.Append(ir.ExprBlendConstantChannel{Channel: uint32(i)})
			return e.narrow(v)
		}
		if e.constVec == nil {
			v := e.narrow(e.b.Append(ir.ExprBlendConstant{}))
			e.constVec = &v
		}
		return e.b.Channel(*e.constVec, i)
	})
}

// narrow converts a 32-bit float value to the working precision.
func (e *emitter) narrow(v ir.ExpressionHandle) ir.ExpressionHandle {
	if e.scalar.Width == 4 {
		return v
	}
	return e.b.Convert(v, ir.ScalarFloat, e.scalar.Width)
}

// alphaSaturate returns min(As, 1-Ad).
func (e *emitter) alphaSaturate() ir.ExpressionHandle {
	if e.alphaSat == nil {
		inv := e.b.Binary(ir.BinarySubtract, e.constant(1), e.dstChannel(3))
		h := e.b.Math(ir.MathMin, e.srcChannel(3), inv)
		e.alphaSat = &h
	}
	return *e.alphaSat
}

// factorValue evaluates a base factor for channel ch.
func (e *emitter) factorValue(base Factor, ch int) ir.ExpressionHandle {
	switch base {
	case FactorOne:
		return e.constant(1)
	case FactorSrcColor:
		return e.srcChannel(ch)
	case FactorSrc1Color:
		return e.src1Channel(ch)
	case FactorDstColor:
		return e.dstChannel(ch)
	case FactorSrcAlpha:
		return e.srcChannel(3)
	case FactorSrc1Alpha:
		return e.src1Channel(3)
	case FactorDstAlpha:
		return e.dstChannel(3)
	case FactorConstColor:
		return e.constChannel(ch)
	case FactorConstAlpha:
		return e.constChannel(3)
	case FactorSrcAlphaSaturate:
		if ch == 3 {
			return e.constant(1)
		}
		return e.alphaSaturate()
	default:
		panic(fmt.Sprintf("blend: invalid blend factor %#x", uint8(base)))
	}
}

// shouldClampFactor reports whether a factor can leave the numeric
// domain of the format and must be clamped after inversion.
func shouldClampFactor(f Factor, snorm bool) bool {
	switch f.Base() {
	case FactorOne:
		return false
	case FactorSrcColor, FactorSrcAlpha, FactorDstColor, FactorDstAlpha,
		FactorSrc1Color, FactorSrc1Alpha:
		return f.Inverted() && snorm
	case FactorConstColor, FactorConstAlpha:
		return true
	case FactorSrcAlphaSaturate:
		if f.Inverted() {
			panic("blend: src-alpha-saturated factor cannot be inverted")
		}
		return snorm
	default:
		panic(fmt.Sprintf("blend: invalid blend factor %#x", uint8(f)))
	}
}

// factor scales raw by factor f for channel ch. Multiplying by one and
// by zero are folded.
func (e *emitter) factor(raw ir.ExpressionHandle, ch int, f Factor) ir.ExpressionHandle {
	switch f {
	case FactorOne:
		return raw
	case FactorZero:
		return e.constant(0)
	}
	v := e.factorValue(f.Base(), ch)
	if f.Inverted() {
		v = e.b.Binary(ir.BinarySubtract, e.constant(1), v)
	}
	if shouldClampFactor(f, e.rt.Format.IsSnorm()) {
		v = e.clampToFormat(v)
	}
	return e.b.Binary(ir.BinaryMultiply, raw, v)
}

func (e *emitter) isZero(h ir.ExpressionHandle) bool {
	zero, ok := e.literals[0]
	return ok && zero == h
}

// equation combines the factored source and destination terms.
func (e *emitter) equation(fn Function, src, dst ir.ExpressionHandle) ir.ExpressionHandle {
	switch fn {
	case FuncAdd:
		switch {
		case e.isZero(dst):
			return src
		case e.isZero(src):
			return dst
		}
		return e.b.Binary(ir.BinaryAdd, src, dst)
	case FuncSubtract:
		if e.isZero(dst) {
			return src
		}
		return e.b.Binary(ir.BinarySubtract, src, dst)
	case FuncReverseSubtract:
		if e.isZero(src) {
			return dst
		}
		return e.b.Binary(ir.BinarySubtract, dst, src)
	case FuncMin:
		return e.b.Math(ir.MathMin, src, dst)
	case FuncMax:
		return e.b.Math(ir.MathMax, src, dst)
	default:
		panic(fmt.Sprintf("blend: invalid blend function %d", fn))
	}
}

// blend evaluates the blend equation of every channel.
func (e *emitter) blend() [4]ir.ExpressionHandle {
	if e.rt.Format.IsScaled() {
		panic(fmt.Sprintf("blend: cannot blend to scaled format %s", e.rt.Format))
	}
	var out [4]ir.ExpressionHandle
	for ch := 0; ch < 4; ch++ {
		c := e.rt.RGB
		if ch == 3 {
			c = e.rt.Alpha
		}
		if !c.Func.Factored() {
			out[ch] = e.equation(c.Func, e.srcChannel(ch), e.dstChannel(ch))
			continue
		}
		src := e.factor(e.srcChannel(ch), ch, c.SrcFactor)
		dst := e.constant(0)
		if c.DstFactor != FactorZero {
			dst = e.factor(e.dstChannel(ch), ch, c.DstFactor)
		}
		out[ch] = e.equation(c.Func, src, dst)
	}
	return out
}
