// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/shaderblend/blend"
	"github.com/gogpu/shaderblend/ir"
)

// passThrough returns a fragment entry point "fs_main" that writes its
// vec4<f32> argument "color" to location 0 with the given write mask.
func passThrough(mask uint8) *ir.Module {
	return &ir.Module{
		Types: []ir.Type{{Name: "color", Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.F32}}},
		Functions: []ir.Function{{
			Name: "fs_main",
			Arguments: []ir.FunctionArgument{
				{Name: "color", Type: 0, Binding: binding(ir.LocationBinding{Location: 0})},
			},
			Expressions: []ir.Expression{
				{Kind: ir.ExprFunctionArgument{Index: 0}},
			},
			Body: ir.Block{
				{Kind: ir.StmtStoreOutput{Location: 0, Value: 0, WriteMask: mask}},
				{Kind: ir.StmtReturn{}},
			},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "fs_main", Stage: ir.StageFragment, Function: 0}},
	}
}

func binding(b ir.Binding) *ir.Binding {
	return &b
}

func compile(t *testing.T, m *ir.Module, opts Options) (string, TranslationInfo) {
	t.Helper()
	source, info, err := Compile(m, opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return source, info
}

func mustContain(t *testing.T, source string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(source, part) {
			t.Errorf("expected %q in output:\n%s", part, source)
		}
	}
}

func mustNotContain(t *testing.T, source string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if strings.Contains(source, part) {
			t.Errorf("unexpected %q in output:\n%s", part, source)
		}
	}
}

// lowered runs blend.Lower with rt at location 0.
func lowered(t *testing.T, m *ir.Module, rt blend.RenderTarget, scalarConstant bool) *ir.Module {
	t.Helper()
	opts := blend.DefaultOptions()
	opts.RenderTargets[0] = rt
	opts.ScalarBlendConstant = scalarConstant
	changed, err := blend.Lower(m, &opts)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if !changed {
		t.Fatal("Lower reported no change")
	}
	return m
}

func TestCompilePassThrough(t *testing.T) {
	source, info := compile(t, passThrough(0xF), DefaultOptions())

	mustContain(t, source,
		"#version 310 es\n",
		"precision highp float;",
		"layout(location = 0) in vec4 color;",
		"layout(location = 0) out vec4 _fs_out0;",
		"void main() {",
		"    _fs_out0 = color;",
		"    return;",
	)
	mustNotContain(t, source, "#extension", "inout", "uniform")

	if info.EntryPoint != "fs_main" {
		t.Errorf("EntryPoint = %q, want fs_main", info.EntryPoint)
	}
	if info.OutputsRead != 0 || len(info.UsedExtensions) != 0 || len(info.BlendConstantUniforms) != 0 {
		t.Errorf("unexpected translation info %+v", info)
	}
}

func TestCompileDesktopVersion(t *testing.T) {
	source, _ := compile(t, passThrough(0xF), Options{LangVersion: Version330})
	mustContain(t, source, "#version 330 core\n")
	mustNotContain(t, source, "precision")
}

func TestCompileWriteMask(t *testing.T) {
	tests := []struct {
		mask uint8
		want string
	}{
		{0x5, "_fs_out0.xz = color.xz;"},
		{0x8, "_fs_out0.w = color.w;"},
		{0x7, "_fs_out0.xyz = color.xyz;"},
	}
	for _, tt := range tests {
		source, _ := compile(t, passThrough(tt.mask), DefaultOptions())
		mustContain(t, source, tt.want)
	}

	source, _ := compile(t, passThrough(0), DefaultOptions())
	mustNotContain(t, source, "_fs_out0 =", "_fs_out0.")
}

func TestCompileLoweredBlend(t *testing.T) {
	rt := blend.RenderTarget{
		Format:    blend.FormatRGBA8Unorm,
		RGB:       blend.Channel{Func: blend.FuncAdd, SrcFactor: blend.FactorOne, DstFactor: blend.FactorOneMinusSrcAlpha},
		Alpha:     blend.Channel{Func: blend.FuncAdd, SrcFactor: blend.FactorOne, DstFactor: blend.FactorOneMinusSrcAlpha},
		ColorMask: blend.ColorMaskAll,
	}
	m := lowered(t, passThrough(0xF), rt, false)
	source, info := compile(t, m, DefaultOptions())

	mustContain(t, source,
		"#extension GL_EXT_shader_framebuffer_fetch : require",
		"layout(location = 0) inout vec4 _fs_out0;",
		"clamp(",
		" _e",
	)
	mustNotContain(t, source, "layout(location = 0) out vec4")
	if info.OutputsRead != 1 {
		t.Errorf("OutputsRead = %#x, want 0x1", info.OutputsRead)
	}
	if !slices.Contains(info.UsedExtensions, extFramebufferFetch) {
		t.Errorf("UsedExtensions = %v, want %s", info.UsedExtensions, extFramebufferFetch)
	}
}

func TestCompileLoweredLogicOp(t *testing.T) {
	rt := blend.ReplaceTarget(blend.FormatRGBA8Unorm)
	rt.LogicOpEnable = true
	rt.LogicOp = blend.LogicOpXor
	m := lowered(t, passThrough(0xF), rt, false)
	source, _ := compile(t, m, DefaultOptions())

	mustContain(t, source, "inout vec4 _fs_out0;", "uint(", " ^ ", "roundEven(")
}

func TestCompileBlendConstant(t *testing.T) {
	rt := blend.ReplaceTarget(blend.FormatRGBA16Float)
	rt.RGB = blend.Channel{Func: blend.FuncAdd, SrcFactor: blend.FactorConstColor, DstFactor: blend.FactorZero}

	t.Run("vector", func(t *testing.T) {
		m := lowered(t, passThrough(0xF), rt, false)
		source, info := compile(t, m, DefaultOptions())
		mustContain(t, source, "uniform vec4 u_blend_constant;")
		mustNotContain(t, source, "#extension")
		if want := []string{"u_blend_constant"}; !slices.Equal(info.BlendConstantUniforms, want) {
			t.Errorf("BlendConstantUniforms = %v, want %v", info.BlendConstantUniforms, want)
		}
	})

	t.Run("scalar", func(t *testing.T) {
		m := lowered(t, passThrough(0xF), rt, true)
		opts := DefaultOptions()
		opts.BlendConstantName = "blendColor"
		source, info := compile(t, m, opts)
		mustContain(t, source,
			"uniform float blendColor_r;",
			"uniform float blendColor_g;",
			"uniform float blendColor_b;",
			"uniform float blendColor_a;",
		)
		mustNotContain(t, source, "uniform vec4")
		if len(info.BlendConstantUniforms) != 4 {
			t.Errorf("BlendConstantUniforms = %v, want four channels", info.BlendConstantUniforms)
		}
	})
}

func TestCompileDualSource(t *testing.T) {
	m := passThrough(0xF)
	fn := &m.Functions[0]
	fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
		Name: "src1", Type: 0, Binding: binding(ir.LocationBinding{Location: 1}),
	})
	fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprFunctionArgument{Index: 1}})
	fn.Body = slices.Insert(fn.Body, 1, ir.Statement{Kind: ir.StmtStoreOutput{
		Location: 0, BlendSrc: 1, Value: 1, WriteMask: 0xF,
	}})

	source, info := compile(t, m, DefaultOptions())
	mustContain(t, source,
		"#extension GL_EXT_blend_func_extended : require",
		"layout(location = 0, index = 1) out vec4 _fs_out0_src1;",
		"_fs_out0_src1 = src1;",
	)
	if !slices.Contains(info.UsedExtensions, extBlendFuncExtended) {
		t.Errorf("UsedExtensions = %v", info.UsedExtensions)
	}

	source, _ = compile(t, m, Options{LangVersion: Version450})
	mustNotContain(t, source, "#extension")
}

func TestCompileBuiltinInputs(t *testing.T) {
	m := passThrough(0xF)
	fn := &m.Functions[0]
	m.Types = append(m.Types, ir.Type{Inner: ir.U32})
	fn.Arguments = []ir.FunctionArgument{
		{Name: "position", Type: 0, Binding: binding(ir.BuiltinBinding{Builtin: ir.BuiltinPosition})},
		{Name: "mask", Type: 1, Binding: binding(ir.BuiltinBinding{Builtin: ir.BuiltinSampleMask})},
	}

	source, info := compile(t, m, DefaultOptions())
	mustContain(t, source, "_fs_out0 = gl_FragCoord;", "#extension GL_OES_sample_variables : require")
	mustNotContain(t, source, " in ")
	if !slices.Contains(info.UsedExtensions, extSampleVariables) {
		t.Errorf("UsedExtensions = %v", info.UsedExtensions)
	}

	source, _ = compile(t, m, Options{LangVersion: VersionES320})
	mustNotContain(t, source, "GL_OES_sample_variables")
}

func TestCompileStructInput(t *testing.T) {
	m := passThrough(0xF)
	m.Types = append(m.Types, ir.Type{Name: "FragmentInput", Inner: ir.StructType{
		Members: []ir.StructMember{
			{Name: "position", Type: 0, Binding: binding(ir.BuiltinBinding{Builtin: ir.BuiltinPosition})},
			{Name: "color", Type: 0, Binding: binding(ir.LocationBinding{
				Location: 2, Interpolation: &ir.Interpolation{Kind: ir.InterpolationFlat},
			})},
		},
	}})
	fn := &m.Functions[0]
	fn.Arguments = []ir.FunctionArgument{{Name: "in", Type: 1}}
	fn.Expressions = []ir.Expression{
		{Kind: ir.ExprFunctionArgument{Index: 0}},
		{Kind: ir.ExprAccessIndex{Base: 0, Index: 1}},
	}
	fn.Body = ir.Block{
		{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 2}}},
		{Kind: ir.StmtStoreOutput{Location: 0, Value: 1, WriteMask: 0xF}},
	}

	source, _ := compile(t, m, DefaultOptions())
	mustContain(t, source,
		"layout(location = 2) flat in vec4 in_color;",
		"vec4 _e1 = in_color;",
		"_fs_out0 = _e1;",
	)
}

func TestCompileLocalsAndControlFlow(t *testing.T) {
	m := passThrough(0xF)
	m.Types = append(m.Types, ir.Type{Inner: ir.F32})
	fn := &m.Functions[0]
	fn.LocalVars = []ir.LocalVariable{{Name: "float", Type: 1}}
	fn.Expressions = []ir.Expression{
		{Kind: ir.ExprFunctionArgument{Index: 0}},
		{Kind: ir.ExprLocalVariable{Variable: 0}},
		{Kind: ir.ExprAccessIndex{Base: 0, Index: 3}},
		{Kind: ir.Literal{Value: ir.LiteralF32(0.5)}},
		{Kind: ir.ExprBinary{Op: ir.BinaryLess, Left: 2, Right: 3}},
		{Kind: ir.ExprLoad{Pointer: 1}},
	}
	fn.Body = ir.Block{
		{Kind: ir.StmtEmit{Range: ir.Range{Start: 2, End: 3}}},
		{Kind: ir.StmtStore{Pointer: 1, Value: 2}},
		{Kind: ir.StmtEmit{Range: ir.Range{Start: 4, End: 5}}},
		{Kind: ir.StmtIf{Condition: 4, Accept: ir.Block{{Kind: ir.StmtKill{}}}}},
		{Kind: ir.StmtEmit{Range: ir.Range{Start: 5, End: 6}}},
		{Kind: ir.StmtStoreOutput{Location: 0, Value: 5, WriteMask: 0x1}},
	}

	source, _ := compile(t, m, DefaultOptions())
	mustContain(t, source,
		"layout(location = 0) out float _fs_out0;",
		"float _float = 0.0;",
		"float _e2 = color.w;",
		"_float = _e2;",
		"bool _e4 = (_e2 < 0.5);",
		"if (_e4) {",
		"        discard;",
		"float _e5 = _float;",
		"_fs_out0 = _e5;",
	)
}

func TestCompileErrors(t *testing.T) {
	vertex := passThrough(0xF)
	vertex.EntryPoints[0].Stage = ir.StageVertex

	withResult := passThrough(0xF)
	withResult.Functions[0].Result = &ir.FunctionResult{Type: 0}

	dualAtOne := passThrough(0xF)
	dualAtOne.Functions[0].Body[0].Kind = ir.StmtStoreOutput{Location: 1, BlendSrc: 1, Value: 0, WriteMask: 0xF}

	unemitted := passThrough(0xF)
	unemitted.Functions[0].Expressions = append(unemitted.Functions[0].Expressions,
		ir.Expression{Kind: ir.ExprSwizzle{Size: ir.Vec4, Vector: 0, Pattern: [4]ir.SwizzleComponent{3, 2, 1, 0}}})
	unemitted.Functions[0].Body[0].Kind = ir.StmtStoreOutput{Location: 0, Value: 1, WriteMask: 0xF}

	tests := []struct {
		name   string
		module *ir.Module
		opts   Options
		want   string
	}{
		{"nil module", nil, DefaultOptions(), "module is nil"},
		{"unknown entry point", passThrough(0xF), Options{EntryPoint: "main"}, `"main" not found`},
		{"named vertex entry point", vertex, Options{EntryPoint: "fs_main"}, "is a vertex shader"},
		{"no fragment entry point", vertex, DefaultOptions(), "no fragment entry point"},
		{"result not lowered", withResult, DefaultOptions(), "ir.LowerEntryResults"},
		{"dual source at location 1", dualAtOne, DefaultOptions(), "dual-source output at location 1"},
		{"use before emit", unemitted, DefaultOptions(), "used before it is emitted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(tt.module, tt.opts)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
