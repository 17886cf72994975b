// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package blend lowers fixed-function color blending and logic ops into
// fragment shader code.
//
// Hardware without a blending unit, or without blending for some
// attachment formats, still has to honor the pipeline's blend state.
// Lower rewrites every color output write of a fragment entry point so
// that it stores the final attachment value itself:
//
//	dst   = framebuffer fetch at the write's location
//	color = blend(src, src1, dst, constant) or logicop(src, dst)
//	color = colormask ? color : dst, per channel
//	store color trimmed to the attachment format
//
// The blend equation follows the OpenGL and Vulkan rules: min and max
// ignore factors, sources and factors are clamped to the numeric range
// of unorm and snorm formats, channels the format lacks read as
// (0, 0, 0, 1), and logic ops act on the stored integer representation
// and leave float and sRGB formats untouched.
//
// Dual-source values written with BlendSrc 1 are consumed by the pass
// and feed the src1 factors of the same location.
//
// Configuration usually comes from the pipeline, see package
// blend/webgpu:
//
//	opts, err := webgpu.FromColorTargets(desc.Fragment.Targets)
//	if err != nil {
//	    return err
//	}
//	changed, err := blend.Lower(module, &opts)
package blend
