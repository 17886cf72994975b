// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/shaderblend/ir"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5

	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1
	VersionES320 = Version{Major: 3, Minor: 20, ES: true} // ES 3.2
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// versionLessThan reports whether Major*100+Minor is below number.
func (v Version) versionLessThan(number int) bool {
	return int(v.Major)*100+int(v.Minor) < number
}

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to VersionES310 if zero.
	LangVersion Version

	// EntryPoint specifies which entry point to compile.
	// If empty, the first fragment entry point is compiled.
	EntryPoint string

	// BlendConstantName names the blend constant uniform. Scalar loads
	// use the name with an _r, _g, _b or _a suffix.
	// Defaults to "u_blend_constant".
	BlendConstantName string
}

// DefaultOptions returns options for GLSL ES 3.10.
func DefaultOptions() Options {
	return Options{
		LangVersion:       VersionES310,
		BlendConstantName: "u_blend_constant",
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// EntryPoint is the name of the compiled entry point.
	EntryPoint string

	// UsedExtensions lists GLSL extensions required by the shader.
	UsedExtensions []string

	// OutputsRead is the bitmask of locations declared inout for
	// framebuffer fetch.
	OutputsRead uint64

	// SampleShading reports that the pipeline must run the shader per
	// sample for framebuffer reads to be exact.
	SampleShading bool

	// BlendConstantUniforms lists the uniforms the application must set
	// to the pipeline blend constant.
	BlendConstantUniforms []string
}

// Compile generates GLSL source code for one fragment entry point of an
// IR module. Color outputs must be written with ir.StmtStoreOutput.
func Compile(module *ir.Module, options Options) (string, TranslationInfo, error) {
	if module == nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: module is nil")
	}
	if options.LangVersion.Major == 0 {
		options.LangVersion = VersionES310
	}
	if options.BlendConstantName == "" {
		options.BlendConstantName = "u_blend_constant"
	}

	ep, err := selectEntryPoint(module, options.EntryPoint)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	w := newWriter(module, &options, ep)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: entry point %q: %w", ep.Name, err)
	}

	info := TranslationInfo{
		EntryPoint:            ep.Name,
		UsedExtensions:        w.extensions,
		OutputsRead:           w.outputsRead,
		SampleShading:         ep.Fragment != nil && ep.Fragment.SampleShading,
		BlendConstantUniforms: w.blendConstantUniforms,
	}
	return w.String(), info, nil
}

func selectEntryPoint(module *ir.Module, name string) (*ir.EntryPoint, error) {
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if name != "" && ep.Name != name {
			continue
		}
		if ep.Stage != ir.StageFragment {
			if name != "" {
				return nil, fmt.Errorf("entry point %q is a %s shader", name, ep.Stage)
			}
			continue
		}
		if int(ep.Function) >= len(module.Functions) {
			return nil, fmt.Errorf("entry point %q: function %d does not exist", ep.Name, ep.Function)
		}
		return ep, nil
	}
	if name != "" {
		return nil, fmt.Errorf("entry point %q not found", name)
	}
	return nil, fmt.Errorf("module has no fragment entry point")
}
