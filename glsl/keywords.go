// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// glslKeywords contains the reserved words and built-in function names
// a generated identifier must not collide with.
var glslKeywords = map[string]struct{}{
	// Types
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"sampler2D": {}, "sampler3D": {}, "samplerCube": {},

	// Qualifiers
	"const": {}, "uniform": {}, "buffer": {}, "shared": {},
	"in": {}, "out": {}, "inout": {}, "attribute": {}, "varying": {},
	"layout": {}, "location": {}, "index": {},
	"centroid": {}, "flat": {}, "smooth": {}, "noperspective": {}, "sample": {},
	"highp": {}, "mediump": {}, "lowp": {}, "precision": {},
	"invariant": {}, "precise": {}, "coherent": {}, "volatile": {},
	"restrict": {}, "readonly": {}, "writeonly": {},

	// Control flow
	"if": {}, "else": {}, "switch": {}, "case": {}, "default": {},
	"for": {}, "while": {}, "do": {}, "break": {}, "continue": {},
	"return": {}, "discard": {}, "true": {}, "false": {}, "struct": {},

	// Future reserved words
	"common": {}, "partition": {}, "active": {}, "asm": {}, "class": {},
	"union": {}, "enum": {}, "typedef": {}, "template": {}, "this": {},
	"resource": {}, "goto": {}, "inline": {}, "noinline": {}, "public": {},
	"static": {}, "extern": {}, "external": {}, "interface": {},
	"long": {}, "short": {}, "half": {}, "fixed": {}, "unsigned": {},
	"superp": {}, "input": {}, "output": {}, "filter": {},
	"sizeof": {}, "cast": {}, "namespace": {}, "using": {},

	// Built-in functions used by generated code
	"abs": {}, "min": {}, "max": {}, "clamp": {}, "mix": {}, "roundEven": {},
	"not": {}, "equal": {}, "notEqual": {}, "lessThan": {}, "lessThanEqual": {},
	"greaterThan": {}, "greaterThanEqual": {},
	"floatBitsToInt": {}, "floatBitsToUint": {}, "intBitsToFloat": {}, "uintBitsToFloat": {},

	// Entry point
	"main": {},
}

// isKeyword checks if a name is a GLSL reserved word.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword escapes a name if it conflicts with GLSL keywords.
// Returns the name with underscore prefix if it's reserved.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) {
		return "_" + name
	}
	// Also escape names starting with "gl_" (reserved prefix)
	if strings.HasPrefix(name, "gl_") {
		return "_" + name
	}
	return name
}
