// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/shaderblend/ir"
)

// GLSL extensions the writer may require.
const (
	extFramebufferFetch   = "GL_EXT_shader_framebuffer_fetch"
	extBlendFuncExtended  = "GL_EXT_blend_func_extended"
	extSampleVariables    = "GL_OES_sample_variables"
	blendConstantChannels = "rgba"
)

// inputKey identifies an entry point input: an argument, or one member
// of a struct argument.
type inputKey struct {
	arg    uint32
	member int
}

// outputKey identifies a color output by location and dual-source index.
type outputKey struct {
	location uint32
	blendSrc uint32
}

// outputVar is a declared color output.
type outputVar struct {
	name    string
	scalar  ir.ScalarType
	size    int
	fetched bool
}

// Writer generates GLSL source code for one fragment entry point.
type Writer struct {
	module  *ir.Module
	options *Options
	ep      *ir.EntryPoint
	fn      *ir.Function

	// Output buffer
	out    strings.Builder
	indent int

	// Name management
	namer            *namer
	inputNames       map[inputKey]string
	localNames       map[uint32]string
	namedExpressions map[ir.ExpressionHandle]string

	// Color outputs, sorted by location and dual-source index
	outputs     map[outputKey]*outputVar
	outputOrder []outputKey

	// Output tracking
	extensions            []string
	outputsRead           uint64
	blendConstantVector   bool
	blendConstantScalar   bool
	blendConstantUniforms []string
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	escaped := escapeKeyword(base)

	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// reserve marks a generated name as taken.
func (n *namer) reserve(name string) {
	n.usedNames[name] = struct{}{}
}

func newWriter(module *ir.Module, options *Options, ep *ir.EntryPoint) *Writer {
	return &Writer{
		module:           module,
		options:          options,
		ep:               ep,
		fn:               &module.Functions[ep.Function],
		namer:            newNamer(),
		inputNames:       make(map[inputKey]string),
		localNames:       make(map[uint32]string),
		namedExpressions: make(map[ir.ExpressionHandle]string),
		outputs:          make(map[outputKey]*outputVar),
	}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates GLSL code for the entry point.
func (w *Writer) writeModule() error {
	if w.fn.Result != nil {
		return fmt.Errorf("entry point returns its outputs; lower them to stores with ir.LowerEntryResults first")
	}

	// 1. Collect what the body needs before writing anything
	if err := w.collectOutputs(w.fn.Body); err != nil {
		return err
	}
	if err := w.collectExpressions(); err != nil {
		return err
	}
	w.sortOutputs()
	w.registerNames()

	// 2. Version, extensions and precision
	w.writeLine("#version %s", w.options.LangVersion.String())
	w.collectExtensions()
	for _, ext := range w.extensions {
		w.writeLine("#extension %s : require", ext)
	}
	w.writeLine("")
	if w.options.LangVersion.ES {
		w.writeLine("precision highp float;")
		w.writeLine("precision highp int;")
		w.writeLine("")
	}

	// 3. Interface
	if err := w.writeInputs(); err != nil {
		return err
	}
	w.writeUniforms()
	w.writeOutputs()

	// 4. Body
	w.writeLine("void main() {")
	w.pushIndent()
	if err := w.writeLocalVars(); err != nil {
		return err
	}
	if err := w.writeBlock(w.fn.Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// collectOutputs records every color output the block writes.
func (w *Writer) collectOutputs(block ir.Block) error {
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case ir.StmtStoreOutput:
			scalar, size, err := w.scalarOf(s.Value)
			if err != nil {
				return fmt.Errorf("output at location %d: %w", s.Location, err)
			}
			if s.BlendSrc > 1 || (s.BlendSrc == 1 && s.Location != 0) {
				return fmt.Errorf("dual-source output at location %d index %d", s.Location, s.BlendSrc)
			}
			if err := w.addOutput(outputKey{s.Location, s.BlendSrc}, scalar, size, false); err != nil {
				return err
			}
		case ir.StmtBlock:
			if err := w.collectOutputs(s.Block); err != nil {
				return err
			}
		case ir.StmtIf:
			if err := w.collectOutputs(s.Accept); err != nil {
				return err
			}
			if err := w.collectOutputs(s.Reject); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectExpressions finds framebuffer reads and blend constant loads.
func (w *Writer) collectExpressions() error {
	for _, expr := range w.fn.Expressions {
		switch e := expr.Kind.(type) {
		case ir.ExprFramebufferFetch:
			if e.Location >= 64 {
				return fmt.Errorf("framebuffer fetch from location %d", e.Location)
			}
			if err := w.addOutput(outputKey{location: e.Location}, e.Scalar, 4, true); err != nil {
				return err
			}
			w.outputsRead |= 1 << e.Location
		case ir.ExprBlendConstant:
			w.blendConstantVector = true
		case ir.ExprBlendConstantChannel:
			w.blendConstantScalar = true
		}
	}
	return nil
}

func (w *Writer) addOutput(key outputKey, scalar ir.ScalarType, size int, fetched bool) error {
	out, ok := w.outputs[key]
	if !ok {
		w.outputs[key] = &outputVar{scalar: scalar, size: size, fetched: fetched}
		w.outputOrder = append(w.outputOrder, key)
		return nil
	}
	if out.scalar.Kind != scalar.Kind {
		return fmt.Errorf("location %d is accessed as both %s and %s", key.location, scalarToGLSL(out.scalar), scalarToGLSL(scalar))
	}
	out.size = max(out.size, size)
	out.fetched = out.fetched || fetched
	if scalar.Width > out.scalar.Width {
		out.scalar = scalar
	}
	return nil
}

func (w *Writer) sortOutputs() {
	sort.Slice(w.outputOrder, func(i, j int) bool {
		a, b := w.outputOrder[i], w.outputOrder[j]
		if a.location != b.location {
			return a.location < b.location
		}
		return a.blendSrc < b.blendSrc
	})
}

// registerNames assigns unique names to inputs, outputs and locals.
func (w *Writer) registerNames() {
	for _, key := range w.outputOrder {
		name := fmt.Sprintf("_fs_out%d", key.location)
		if key.blendSrc != 0 {
			name += "_src1"
		}
		w.namer.reserve(name)
		w.outputs[key].name = name
	}
	if w.blendConstantVector {
		w.namer.reserve(w.options.BlendConstantName)
	}
	if w.blendConstantScalar {
		for _, c := range blendConstantChannels {
			w.namer.reserve(w.options.BlendConstantName + "_" + string(c))
		}
	}

	for i, arg := range w.fn.Arguments {
		base := arg.Name
		if base == "" {
			base = fmt.Sprintf("_fs_in%d", i)
		}
		if st, ok := w.typeInner(arg.Type).(ir.StructType); ok {
			for m, member := range st.Members {
				w.inputNames[inputKey{arg: uint32(i), member: m}] = w.namer.call(base + "_" + member.Name)
			}
			continue
		}
		w.inputNames[inputKey{arg: uint32(i), member: -1}] = w.namer.call(base)
	}

	for i, local := range w.fn.LocalVars {
		base := local.Name
		if base == "" {
			base = fmt.Sprintf("_local%d", i)
		}
		w.localNames[uint32(i)] = w.namer.call(base)
	}
}

func (w *Writer) collectExtensions() {
	if w.outputsRead != 0 {
		w.extensions = append(w.extensions, extFramebufferFetch)
	}
	if w.options.LangVersion.ES {
		for _, key := range w.outputOrder {
			if key.blendSrc != 0 {
				w.extensions = append(w.extensions, extBlendFuncExtended)
				break
			}
		}
		if w.options.LangVersion.versionLessThan(320) && w.usesSampleBuiltins() {
			w.extensions = append(w.extensions, extSampleVariables)
		}
	}
}

func (w *Writer) usesSampleBuiltins() bool {
	found := false
	w.forEachInput(func(_ inputKey, binding ir.Binding, _ ir.TypeHandle) {
		if b, ok := binding.(ir.BuiltinBinding); ok {
			found = found || b.Builtin == ir.BuiltinSampleIndex || b.Builtin == ir.BuiltinSampleMask
		}
	})
	return found
}

// forEachInput visits every bound argument and struct argument member.
func (w *Writer) forEachInput(visit func(key inputKey, binding ir.Binding, ty ir.TypeHandle)) {
	for i, arg := range w.fn.Arguments {
		if st, ok := w.typeInner(arg.Type).(ir.StructType); ok {
			for m, member := range st.Members {
				if member.Binding != nil {
					visit(inputKey{arg: uint32(i), member: m}, *member.Binding, member.Type)
				}
			}
			continue
		}
		if arg.Binding != nil {
			visit(inputKey{arg: uint32(i), member: -1}, *arg.Binding, arg.Type)
		}
	}
}

// writeInputs declares location-bound inputs.
func (w *Writer) writeInputs() error {
	var err error
	wrote := false
	w.forEachInput(func(key inputKey, binding ir.Binding, ty ir.TypeHandle) {
		loc, ok := binding.(ir.LocationBinding)
		if !ok || err != nil {
			return
		}
		scalar, size, ok := ir.ScalarOf(w.typeInner(ty))
		if !ok {
			err = fmt.Errorf("input at location %d has non-numeric type", loc.Location)
			return
		}
		qualifier := interpolationQualifier(loc.Interpolation, scalar)
		w.writeLine("layout(location = %d) %sin %s %s;", loc.Location, qualifier, declType(scalar, size), w.inputNames[key])
		wrote = true
	})
	if err != nil {
		return err
	}
	if wrote {
		w.writeLine("")
	}
	return nil
}

func interpolationQualifier(interp *ir.Interpolation, scalar ir.ScalarType) string {
	if scalar.Kind != ir.ScalarFloat {
		return "flat "
	}
	if interp == nil {
		return ""
	}
	var q string
	switch interp.Kind {
	case ir.InterpolationFlat:
		return "flat "
	case ir.InterpolationLinear:
		q = "noperspective "
	}
	switch interp.Sampling {
	case ir.SamplingCentroid:
		q = "centroid " + q
	case ir.SamplingSample:
		q = "sample " + q
	}
	return q
}

// writeUniforms declares the blend constant.
func (w *Writer) writeUniforms() {
	name := w.options.BlendConstantName
	if w.blendConstantVector {
		w.writeLine("uniform vec4 %s;", name)
		w.blendConstantUniforms = append(w.blendConstantUniforms, name)
	}
	if w.blendConstantScalar {
		for _, c := range blendConstantChannels {
			channel := name + "_" + string(c)
			w.writeLine("uniform float %s;", channel)
			w.blendConstantUniforms = append(w.blendConstantUniforms, channel)
		}
	}
	if w.blendConstantVector || w.blendConstantScalar {
		w.writeLine("")
	}
}

// writeOutputs declares color outputs. Outputs read back are inout.
func (w *Writer) writeOutputs() {
	for _, key := range w.outputOrder {
		out := w.outputs[key]
		switch {
		case key.blendSrc != 0:
			w.writeLine("layout(location = %d, index = %d) out %s %s;", key.location, key.blendSrc, declType(out.scalar, out.size), out.name)
		case out.fetched:
			w.writeLine("layout(location = %d) inout %s %s;", key.location, declType(out.scalar, out.size), out.name)
		default:
			w.writeLine("layout(location = %d) out %s %s;", key.location, declType(out.scalar, out.size), out.name)
		}
	}
	if len(w.outputOrder) > 0 {
		w.writeLine("")
	}
}

// writeLocalVars declares function locals at the top of main.
func (w *Writer) writeLocalVars() error {
	for i, local := range w.fn.LocalVars {
		scalar, size, ok := ir.ScalarOf(w.typeInner(local.Type))
		if !ok {
			return fmt.Errorf("local %q has non-numeric type", local.Name)
		}
		init := zeroValue(scalar, size)
		if local.Init != nil {
			var err error
			if init, err = w.writeExpression(*local.Init); err != nil {
				return err
			}
		}
		w.writeLine("%s %s = %s;", declType(scalar, size), w.localNames[uint32(i)], init)
	}
	return nil
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

func (w *Writer) typeInner(handle ir.TypeHandle) ir.TypeInner {
	if int(handle) >= len(w.module.Types) {
		return nil
	}
	return w.module.Types[handle].Inner
}

// scalarOf resolves the scalar type and size of a numeric expression.
func (w *Writer) scalarOf(handle ir.ExpressionHandle) (ir.ScalarType, int, error) {
	res, err := ir.ResolveExpressionType(w.module, w.fn, handle)
	if err != nil {
		return ir.ScalarType{}, 0, err
	}
	scalar, size, ok := ir.ScalarOf(res.Inner(w.module))
	if !ok {
		return ir.ScalarType{}, 0, fmt.Errorf("expression %d is not a scalar or vector", handle)
	}
	return scalar, size, nil
}

// formatFloat formats a float32 for GLSL output.
func formatFloat(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "(1.0 / 0.0)"
	case math.IsInf(float64(f), -1):
		return "(-1.0 / 0.0)"
	case math.IsNaN(float64(f)):
		return "(0.0 / 0.0)"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
