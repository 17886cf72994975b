// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl writes the fragment entry points of an IR module as GLSL
// source, including the constructs blend lowering introduces.
//
// Supported targets:
//
//   - GLSL ES 3.00, 3.10 and 3.20
//   - GLSL 3.30 and 4.50 Core
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(module, glsl.Options{
//	    LangVersion: glsl.VersionES310,
//	})
//
// # Blending Constructs
//
// A framebuffer read declares its color output inout and requires
// GL_EXT_shader_framebuffer_fetch; TranslationInfo.OutputsRead lists the
// locations read. The blend constant is an application-set uniform
// named by Options.BlendConstantName, or four float uniforms with _r, _g,
// _b and _a suffixes for scalar loads. A secondary color output is
// declared with layout index 1.
//
// # Reserved Words
//
// Identifiers that collide with GLSL keywords or use the gl_ prefix are
// escaped with a leading underscore.
package glsl
