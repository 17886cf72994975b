// Package shaderblend lowers fixed-function color blending into
// fragment shader code.
//
// Targets that cannot blend in hardware read the attachment back with a
// framebuffer fetch and compute the blend equation, the logic operation
// and the color write mask in the shader. The package works on the IR in
// package ir:
//
//   - blend: the lowering pass and its render target configuration
//   - blend/webgpu: conversion from WebGPU color target state
//   - interp: a reference evaluator for fragment programs
//   - glsl: GLSL output for lowered programs
//
// Example usage:
//
//	opts := shaderblend.DefaultOptions()
//	opts.Blend.RenderTargets[0] = blend.RenderTarget{
//	    Format:    blend.FormatRGBA8Unorm,
//	    RGB:       blend.Channel{Func: blend.FuncAdd, SrcFactor: blend.FactorSrcAlpha, DstFactor: blend.FactorOneMinusSrcAlpha},
//	    Alpha:     blend.Replace,
//	    ColorMask: blend.ColorMaskAll,
//	}
//	source, info, err := shaderblend.CompileGLSL(module, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
package shaderblend

import (
	"fmt"

	"github.com/gogpu/shaderblend/blend"
	"github.com/gogpu/shaderblend/glsl"
	"github.com/gogpu/shaderblend/ir"
)

// CompileOptions configures lowering and code generation.
type CompileOptions struct {
	// Blend is the blend state of each color attachment.
	Blend blend.Options

	// GLSL configures the GLSL writer.
	GLSL glsl.Options

	// Validate enables IR validation after lowering
	Validate bool
}

// DefaultOptions returns options that validate the lowered module and
// write GLSL ES 3.10. No render target is blended.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Blend:    blend.DefaultOptions(),
		GLSL:     glsl.DefaultOptions(),
		Validate: true,
	}
}

// Lower rewrites the color outputs of every fragment entry point of the
// module to apply the configured blending.
//
// The pipeline is:
//  1. Turn returned colors into output stores (ir.LowerEntryResults)
//  2. Lower blending, logic ops and write masks (blend.Lower)
//  3. Validate the result (if enabled)
//
// It reports whether blending changed the module.
//
// Invalid blend options are rejected before the module is touched.
func Lower(module *ir.Module, opts CompileOptions) (bool, error) {
	if err := opts.Blend.Validate(); err != nil {
		return false, fmt.Errorf("blend: %w", err)
	}
	if err := ir.LowerEntryResults(module); err != nil {
		return false, fmt.Errorf("output lowering error: %w", err)
	}

	changed, err := blend.Lower(module, &opts.Blend)
	if err != nil {
		return false, err
	}
	Logger().Debug("shaderblend: lowered module", "changed", changed, "entryPoints", len(module.EntryPoints))

	if opts.Validate {
		if err := Validate(module); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// CompileGLSL lowers the module and writes its fragment entry point as
// GLSL source.
func CompileGLSL(module *ir.Module, opts CompileOptions) (string, glsl.TranslationInfo, error) {
	if _, err := Lower(module, opts); err != nil {
		return "", glsl.TranslationInfo{}, err
	}
	source, info, err := glsl.Compile(module, opts.GLSL)
	if err != nil {
		return "", glsl.TranslationInfo{}, fmt.Errorf("GLSL generation error: %w", err)
	}
	return source, info, nil
}

// Validate validates an IR module for correctness. It returns the first
// validation error, or nil.
func Validate(module *ir.Module) error {
	validationErrors, err := ir.Validate(module)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if len(validationErrors) > 0 {
		return fmt.Errorf("validation failed: %w", &validationErrors[0])
	}
	return nil
}
