// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import (
	"errors"
	"fmt"
	"log/slog"
)

// MaxRenderTargets is the number of color attachments a fragment
// program can write.
const MaxRenderTargets = 8

// Function is the arithmetic operator of the blend equation.
type Function uint8

const (
	FuncAdd             Function = iota // src*Fs + dst*Fd
	FuncSubtract                        // src*Fs - dst*Fd
	FuncReverseSubtract                 // dst*Fd - src*Fs
	FuncMin                             // min(src, dst), factors ignored
	FuncMax                             // max(src, dst), factors ignored
)

// Factored reports whether the function multiplies its operands by
// blend factors. Min and max ignore factors.
func (f Function) Factored() bool {
	switch f {
	case FuncAdd, FuncSubtract, FuncReverseSubtract:
		return true
	case FuncMin, FuncMax:
		return false
	default:
		panic(fmt.Sprintf("blend: invalid blend function %d", f))
	}
}

func (f Function) valid() bool { return f <= FuncMax }

// String returns the name of the function.
func (f Function) String() string {
	switch f {
	case FuncAdd:
		return "add"
	case FuncSubtract:
		return "subtract"
	case FuncReverseSubtract:
		return "reverse-subtract"
	case FuncMin:
		return "min"
	case FuncMax:
		return "max"
	default:
		return fmt.Sprintf("Function(%d)", uint8(f))
	}
}

// Factor names a blend factor. The low bits select the base value and
// FactorInvert selects its complement 1-x, so FactorZero is the
// inverted form of FactorOne.
type Factor uint8

// Base factor values.
const (
	FactorOne Factor = iota
	FactorSrcColor
	FactorSrcAlpha
	FactorDstColor
	FactorDstAlpha
	FactorSrc1Color
	FactorSrc1Alpha
	FactorConstColor
	FactorConstAlpha
	FactorSrcAlphaSaturate // min(As, 1-Ad) for color, 1 for alpha; has no inverse

	factorBaseCount
)

// FactorInvert turns a base factor f into 1-f.
const FactorInvert Factor = 0x10

// Inverted factors.
const (
	FactorZero               = FactorOne | FactorInvert
	FactorOneMinusSrcColor   = FactorSrcColor | FactorInvert
	FactorOneMinusSrcAlpha   = FactorSrcAlpha | FactorInvert
	FactorOneMinusDstColor   = FactorDstColor | FactorInvert
	FactorOneMinusDstAlpha   = FactorDstAlpha | FactorInvert
	FactorOneMinusSrc1Color  = FactorSrc1Color | FactorInvert
	FactorOneMinusSrc1Alpha  = FactorSrc1Alpha | FactorInvert
	FactorOneMinusConstColor = FactorConstColor | FactorInvert
	FactorOneMinusConstAlpha = FactorConstAlpha | FactorInvert
)

// Base returns the factor with the inversion stripped.
func (f Factor) Base() Factor { return f &^ FactorInvert }

// Inverted reports whether the factor is a 1-x complement.
func (f Factor) Inverted() bool { return f&FactorInvert != 0 }

// Valid reports whether f names a factor. The saturate factor has no
// inverted form.
func (f Factor) Valid() bool {
	if f&^(FactorInvert|0x0F) != 0 || f.Base() >= factorBaseCount {
		return false
	}
	return !(f.Base() == FactorSrcAlphaSaturate && f.Inverted())
}

var factorNames = [factorBaseCount]string{
	FactorOne:              "one",
	FactorSrcColor:         "src-color",
	FactorSrcAlpha:         "src-alpha",
	FactorDstColor:         "dst-color",
	FactorDstAlpha:         "dst-alpha",
	FactorSrc1Color:        "src1-color",
	FactorSrc1Alpha:        "src1-alpha",
	FactorConstColor:       "constant-color",
	FactorConstAlpha:       "constant-alpha",
	FactorSrcAlphaSaturate: "src-alpha-saturated",
}

// String returns the name of the factor, e.g. "one-minus-src-alpha".
func (f Factor) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Factor(%#x)", uint8(f))
	}
	if f == FactorZero {
		return "zero"
	}
	if f.Inverted() {
		return "one-minus-" + factorNames[f.Base()]
	}
	return factorNames[f]
}

// ParseFactor returns the factor with the given String name.
func ParseFactor(name string) (Factor, error) {
	for base := Factor(0); base < factorBaseCount; base++ {
		for _, f := range []Factor{base, base | FactorInvert} {
			if f.Valid() && f.String() == name {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown blend factor %q", name)
}

// ParseFunction returns the function with the given String name.
func ParseFunction(name string) (Function, error) {
	for f := FuncAdd; f <= FuncMax; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown blend function %q", name)
}

// usesDst reports whether the factor reads the destination color.
func (f Factor) usesDst() bool {
	switch f.Base() {
	case FactorDstColor, FactorDstAlpha, FactorSrcAlphaSaturate:
		return true
	default:
		return false
	}
}

// usesConst reports whether the factor reads the blend constant.
func (f Factor) usesConst() bool {
	b := f.Base()
	return b == FactorConstColor || b == FactorConstAlpha
}

// usesSrc1 reports whether the factor reads the dual-source color.
func (f Factor) usesSrc1() bool {
	b := f.Base()
	return b == FactorSrc1Color || b == FactorSrc1Alpha
}

// Channel is the blend equation for the color or the alpha channels.
type Channel struct {
	Func      Function
	SrcFactor Factor
	DstFactor Factor
}

// Replace is the equation that writes the source unchanged.
var Replace = Channel{Func: FuncAdd, SrcFactor: FactorOne, DstFactor: FactorZero}

// IsReplace reports whether the channel writes the source unchanged.
func (c Channel) IsReplace() bool { return c == Replace }

// usesDst reports whether evaluating the channel reads the destination.
func (c Channel) usesDst() bool {
	if !c.Func.Factored() {
		return true
	}
	return c.DstFactor != FactorZero || c.SrcFactor.usesDst()
}

func (c Channel) usesConst() bool {
	return c.Func.Factored() && (c.SrcFactor.usesConst() || c.DstFactor.usesConst())
}

func (c Channel) usesSrc1() bool {
	return c.Func.Factored() && (c.SrcFactor.usesSrc1() || c.DstFactor.usesSrc1())
}

// RenderTarget is the blend state of one color attachment.
type RenderTarget struct {
	// Format of the attachment. FormatNone leaves the target's writes
	// untouched.
	Format Format

	// RGB applies to channels 0-2, Alpha to channel 3.
	RGB   Channel
	Alpha Channel

	// ColorMask enables writing channel i when bit i is set.
	ColorMask uint8

	// LogicOpEnable replaces arithmetic blending with LogicOp.
	LogicOpEnable bool
	LogicOp       LogicOp
}

// ColorMaskAll enables all four channels.
const ColorMaskAll uint8 = 0xF

// ReplaceTarget returns a target that writes the source color to an
// attachment of the given format with all channels enabled.
func ReplaceTarget(format Format) RenderTarget {
	return RenderTarget{
		Format:    format,
		RGB:       Replace,
		Alpha:     Replace,
		ColorMask: ColorMaskAll,
	}
}

// IsReplace reports whether arithmetic blending on the target is the
// identity.
func (rt *RenderTarget) IsReplace() bool {
	return rt.RGB.IsReplace() && rt.Alpha.IsReplace()
}

// writeDisabled reports whether writes to the target can never change
// the attachment.
func (rt *RenderTarget) writeDisabled() bool {
	return rt.ColorMask&ColorMaskAll == 0 || (rt.LogicOpEnable && rt.LogicOp == LogicOpNoop)
}

// readsDestination reports whether lowering needs the current
// attachment contents.
func (rt *RenderTarget) readsDestination() bool {
	return rt.RGB.usesDst() || rt.Alpha.usesDst() || rt.LogicOpEnable || rt.ColorMask&ColorMaskAll != ColorMaskAll
}

// Options configures Lower.
type Options struct {
	// RenderTargets holds the state of each color attachment, indexed
	// by output location.
	RenderTargets [MaxRenderTargets]RenderTarget

	// ScalarBlendConstant loads the blend constant one channel at a
	// time instead of as a vector.
	ScalarBlendConstant bool

	// Logger receives debug diagnostics. Nil uses the package logger.
	Logger *slog.Logger
}

// DefaultOptions returns options that leave every target untouched.
func DefaultOptions() Options {
	return Options{}
}

// Validate reports configurations the pass cannot lower: malformed
// formats, unknown enum values, an inverted saturate factor and
// arithmetic blending on integer or scaled formats.
func (o *Options) Validate() error {
	var errs []error
	for i := range o.RenderTargets {
		rt := &o.RenderTargets[i]
		if rt.Format.IsNone() {
			continue
		}
		if err := rt.Format.validate(); err != nil {
			errs = append(errs, fmt.Errorf("render target %d: %w", i, err))
			continue
		}
		for _, ch := range []struct {
			name string
			c    Channel
		}{{"rgb", rt.RGB}, {"alpha", rt.Alpha}} {
			if !ch.c.Func.valid() {
				errs = append(errs, fmt.Errorf("render target %d: %s: invalid blend function %d", i, ch.name, ch.c.Func))
			}
			for _, f := range []Factor{ch.c.SrcFactor, ch.c.DstFactor} {
				if !f.Valid() {
					errs = append(errs, fmt.Errorf("render target %d: %s: invalid blend factor %#x", i, ch.name, uint8(f)))
				}
			}
		}
		if rt.LogicOpEnable {
			if rt.LogicOp > LogicOpSet {
				errs = append(errs, fmt.Errorf("render target %d: invalid logic op %d", i, rt.LogicOp))
			}
			if rt.Format.IsScaled() {
				errs = append(errs, fmt.Errorf("render target %d: logic ops are not supported on %s", i, rt.Format.Name))
			}
			continue
		}
		if !rt.IsReplace() && (rt.Format.IsPureInteger() || rt.Format.IsScaled()) {
			errs = append(errs, fmt.Errorf("render target %d: blending is not supported on %s", i, rt.Format.Name))
		}
	}
	return errors.Join(errs...)
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}
