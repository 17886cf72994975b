// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package webgpu converts WebGPU pipeline color target state into
// blend lowering options.
package webgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shaderblend/blend"
)

// FromColorTargets builds options from WebGPU color target states,
// indexed by output location. Targets with an undefined format are not
// lowered. A nil Blend state means replace.
func FromColorTargets(targets []gputypes.ColorTargetState) (blend.Options, error) {
	opts := blend.DefaultOptions()
	if len(targets) > blend.MaxRenderTargets {
		return opts, fmt.Errorf("%d color targets, at most %d are supported", len(targets), blend.MaxRenderTargets)
	}

	var errs []error
	for i, t := range targets {
		if t.Format == gputypes.TextureFormatUndefined {
			continue
		}
		format, ok := formatFromWebGPU(t.Format)
		if !ok {
			errs = append(errs, fmt.Errorf("color target %d: unsupported format %v", i, t.Format))
			continue
		}
		rt := blend.ReplaceTarget(format)
		rt.ColorMask = uint8(t.WriteMask) & blend.ColorMaskAll
		if t.Blend != nil {
			var err error
			if rt.RGB, err = channelFromWebGPU(t.Blend.Color); err != nil {
				errs = append(errs, fmt.Errorf("color target %d: color: %w", i, err))
			}
			if rt.Alpha, err = channelFromWebGPU(t.Blend.Alpha); err != nil {
				errs = append(errs, fmt.Errorf("color target %d: alpha: %w", i, err))
			}
		}
		opts.RenderTargets[i] = rt
	}
	if err := errors.Join(errs...); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func channelFromWebGPU(c gputypes.BlendComponent) (blend.Channel, error) {
	fn, err := functionFromWebGPU(c.Operation)
	if err != nil {
		return blend.Channel{}, err
	}
	src, err := factorFromWebGPU(c.SrcFactor)
	if err != nil {
		return blend.Channel{}, err
	}
	dst, err := factorFromWebGPU(c.DstFactor)
	if err != nil {
		return blend.Channel{}, err
	}
	return blend.Channel{Func: fn, SrcFactor: src, DstFactor: dst}, nil
}

func functionFromWebGPU(op gputypes.BlendOperation) (blend.Function, error) {
	switch op {
	case gputypes.BlendOperationAdd:
		return blend.FuncAdd, nil
	case gputypes.BlendOperationSubtract:
		return blend.FuncSubtract, nil
	case gputypes.BlendOperationReverseSubtract:
		return blend.FuncReverseSubtract, nil
	case gputypes.BlendOperationMin:
		return blend.FuncMin, nil
	case gputypes.BlendOperationMax:
		return blend.FuncMax, nil
	default:
		return 0, fmt.Errorf("unsupported blend operation %v", op)
	}
}

func factorFromWebGPU(f gputypes.BlendFactor) (blend.Factor, error) {
	switch f {
	case gputypes.BlendFactorZero:
		return blend.FactorZero, nil
	case gputypes.BlendFactorOne:
		return blend.FactorOne, nil
	case gputypes.BlendFactorSrc:
		return blend.FactorSrcColor, nil
	case gputypes.BlendFactorOneMinusSrc:
		return blend.FactorOneMinusSrcColor, nil
	case gputypes.BlendFactorSrcAlpha:
		return blend.FactorSrcAlpha, nil
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return blend.FactorOneMinusSrcAlpha, nil
	case gputypes.BlendFactorDst:
		return blend.FactorDstColor, nil
	case gputypes.BlendFactorOneMinusDst:
		return blend.FactorOneMinusDstColor, nil
	case gputypes.BlendFactorDstAlpha:
		return blend.FactorDstAlpha, nil
	case gputypes.BlendFactorOneMinusDstAlpha:
		return blend.FactorOneMinusDstAlpha, nil
	case gputypes.BlendFactorSrcAlphaSaturated:
		return blend.FactorSrcAlphaSaturate, nil
	case gputypes.BlendFactorConstant:
		return blend.FactorConstColor, nil
	case gputypes.BlendFactorOneMinusConstant:
		return blend.FactorOneMinusConstColor, nil
	default:
		return 0, fmt.Errorf("unsupported blend factor %v", f)
	}
}

var webgpuFormats = map[gputypes.TextureFormat]blend.Format{
	gputypes.TextureFormatR8Unorm:        blend.FormatR8Unorm,
	gputypes.TextureFormatR8Snorm:        blend.FormatR8Snorm,
	gputypes.TextureFormatR8Uint:         blend.FormatR8Uint,
	gputypes.TextureFormatR8Sint:         blend.FormatR8Sint,
	gputypes.TextureFormatRG8Unorm:       blend.FormatRG8Unorm,
	gputypes.TextureFormatRG8Snorm:       blend.FormatRG8Snorm,
	gputypes.TextureFormatRGBA8Unorm:     blend.FormatRGBA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb: blend.FormatRGBA8Srgb,
	gputypes.TextureFormatRGBA8Snorm:     blend.FormatRGBA8Snorm,
	gputypes.TextureFormatRGBA8Uint:      blend.FormatRGBA8Uint,
	gputypes.TextureFormatRGBA8Sint:      blend.FormatRGBA8Sint,
	gputypes.TextureFormatBGRA8Unorm:     blend.FormatBGRA8Unorm,
	gputypes.TextureFormatBGRA8UnormSrgb: blend.FormatBGRA8Srgb,
	gputypes.TextureFormatRGB10A2Unorm:   blend.FormatRGB10A2Unorm,
	gputypes.TextureFormatR16Float:       blend.FormatR16Float,
	gputypes.TextureFormatRG16Float:      blend.FormatRG16Float,
	gputypes.TextureFormatRGBA16Float:    blend.FormatRGBA16Float,
	gputypes.TextureFormatRGBA16Uint:     blend.FormatRGBA16Uint,
	gputypes.TextureFormatRGBA16Sint:     blend.FormatRGBA16Sint,
	gputypes.TextureFormatR32Float:       blend.FormatR32Float,
	gputypes.TextureFormatRGBA32Float:    blend.FormatRGBA32Float,
	gputypes.TextureFormatRGBA32Uint:     blend.FormatRGBA32Uint,
	gputypes.TextureFormatRGBA32Sint:     blend.FormatRGBA32Sint,
}

func formatFromWebGPU(f gputypes.TextureFormat) (blend.Format, bool) {
	format, ok := webgpuFormats[f]
	return format, ok
}
