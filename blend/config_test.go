// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import (
	"strings"
	"testing"
)

func TestFactor_Encoding(t *testing.T) {
	if FactorZero.Base() != FactorOne || !FactorZero.Inverted() {
		t.Errorf("zero should be inverted one, got base %s", FactorZero.Base())
	}
	if FactorOneMinusDstAlpha.Base() != FactorDstAlpha {
		t.Errorf("base of %s = %s", FactorOneMinusDstAlpha, FactorOneMinusDstAlpha.Base())
	}
	if FactorSrcAlpha.Inverted() {
		t.Error("src-alpha reported as inverted")
	}

	tests := []struct {
		f     Factor
		valid bool
		name  string
	}{
		{FactorOne, true, "one"},
		{FactorZero, true, "zero"},
		{FactorOneMinusSrcAlpha, true, "one-minus-src-alpha"},
		{FactorSrc1Color, true, "src1-color"},
		{FactorOneMinusConstColor, true, "one-minus-constant-color"},
		{FactorSrcAlphaSaturate, true, "src-alpha-saturated"},
		{FactorSrcAlphaSaturate | FactorInvert, false, "Factor(0x19)"},
		{factorBaseCount, false, "Factor(0xa)"},
		{0x20, false, "Factor(0x20)"},
	}
	for _, tt := range tests {
		if got := tt.f.Valid(); got != tt.valid {
			t.Errorf("%#x.Valid() = %v, want %v", uint8(tt.f), got, tt.valid)
		}
		if got := tt.f.String(); got != tt.name {
			t.Errorf("%#x.String() = %q, want %q", uint8(tt.f), got, tt.name)
		}
	}
}

func TestParseFactor(t *testing.T) {
	for base := Factor(0); base < factorBaseCount; base++ {
		for _, f := range []Factor{base, base | FactorInvert} {
			if !f.Valid() {
				continue
			}
			got, err := ParseFactor(f.String())
			if err != nil || got != f {
				t.Errorf("ParseFactor(%q) = %s, %v", f.String(), got, err)
			}
		}
	}
	if _, err := ParseFactor("one-minus-src-alpha-saturated"); err == nil {
		t.Error("expected error for inverted saturate")
	}
}

func TestParseFunction(t *testing.T) {
	for _, name := range []string{"add", "subtract", "reverse-subtract", "min", "max"} {
		f, err := ParseFunction(name)
		if err != nil {
			t.Fatalf("ParseFunction(%q): %v", name, err)
		}
		if f.String() != name {
			t.Errorf("round trip of %q gave %q", name, f.String())
		}
	}
	if _, err := ParseFunction("multiply"); err == nil {
		t.Error("expected error for unknown function")
	}
}

func TestFunction_Factored(t *testing.T) {
	for f, want := range map[Function]bool{
		FuncAdd: true, FuncSubtract: true, FuncReverseSubtract: true,
		FuncMin: false, FuncMax: false,
	} {
		if got := f.Factored(); got != want {
			t.Errorf("%s.Factored() = %v, want %v", f, got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("Factored on an invalid function did not panic")
		}
	}()
	Function(9).Factored()
}

func TestChannel_UsesDst(t *testing.T) {
	tests := []struct {
		name string
		c    Channel
		want bool
	}{
		{"replace", Replace, false},
		{"src alpha over zero", Channel{FuncAdd, FactorSrcAlpha, FactorZero}, false},
		{"dst factor one", Channel{FuncAdd, FactorZero, FactorOne}, true},
		{"src factor dst color", Channel{FuncAdd, FactorDstColor, FactorZero}, true},
		{"saturate", Channel{FuncSubtract, FactorSrcAlphaSaturate, FactorZero}, true},
		{"min", Channel{FuncMin, FactorOne, FactorZero}, true},
		{"max", Channel{FuncMax, FactorZero, FactorZero}, true},
	}
	for _, tt := range tests {
		if got := tt.c.usesDst(); got != tt.want {
			t.Errorf("%s: usesDst = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRenderTarget_ReadsDestination(t *testing.T) {
	over := ReplaceTarget(FormatRGBA8Unorm)
	over.RGB = Channel{FuncAdd, FactorSrcAlpha, FactorOneMinusSrcAlpha}

	masked := ReplaceTarget(FormatRGBA8Unorm)
	masked.ColorMask = 0x7

	logic := ReplaceTarget(FormatRGBA8Unorm)
	logic.LogicOpEnable = true
	logic.LogicOp = LogicOpCopy

	constOnly := ReplaceTarget(FormatRGBA8Unorm)
	constOnly.RGB = Channel{FuncAdd, FactorConstColor, FactorZero}

	tests := []struct {
		name string
		rt   RenderTarget
		want bool
	}{
		{"replace", ReplaceTarget(FormatRGBA8Unorm), false},
		{"source over", over, true},
		{"partial mask", masked, true},
		{"logic copy", logic, true},
		{"constant only", constOnly, false},
	}
	for _, tt := range tests {
		if got := tt.rt.readsDestination(); got != tt.want {
			t.Errorf("%s: readsDestination = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRenderTarget_WriteDisabled(t *testing.T) {
	rt := ReplaceTarget(FormatRGBA8Unorm)
	if rt.writeDisabled() {
		t.Error("replace target reported disabled")
	}
	rt.ColorMask = 0xF0
	if !rt.writeDisabled() {
		t.Error("mask without low bits should disable writes")
	}
	rt.ColorMask = ColorMaskAll
	rt.LogicOpEnable = true
	rt.LogicOp = LogicOpNoop
	if !rt.writeDisabled() {
		t.Error("noop logic op should disable writes")
	}
	rt.LogicOpEnable = false
	if rt.writeDisabled() {
		t.Error("noop without logic op enable should not disable writes")
	}
}

func TestOptions_Validate(t *testing.T) {
	over := Channel{FuncAdd, FactorSrcAlpha, FactorOneMinusSrcAlpha}

	tests := []struct {
		name    string
		rt      RenderTarget
		wantErr string
	}{
		{"none", RenderTarget{}, ""},
		{"replace unorm", ReplaceTarget(FormatRGBA8Unorm), ""},
		{"replace uint", ReplaceTarget(FormatRGBA8Uint), ""},
		{"blend float", RenderTarget{Format: FormatRGBA16Float, RGB: over, Alpha: over, ColorMask: 0xF}, ""},
		{"blend uint", RenderTarget{Format: FormatRGBA8Uint, RGB: over, Alpha: Replace, ColorMask: 0xF}, "blending is not supported"},
		{"blend uscaled", RenderTarget{Format: FormatRGBA8Uscaled, RGB: over, Alpha: Replace, ColorMask: 0xF}, "blending is not supported"},
		{"logic uint", RenderTarget{Format: FormatRGBA8Uint, RGB: over, Alpha: Replace, ColorMask: 0xF, LogicOpEnable: true, LogicOp: LogicOpXor}, ""},
		{"logic uscaled", RenderTarget{Format: FormatRGBA8Uscaled, RGB: Replace, Alpha: Replace, ColorMask: 0xF, LogicOpEnable: true}, "logic ops are not supported"},
		{"bad logic op", RenderTarget{Format: FormatRGBA8Unorm, RGB: Replace, Alpha: Replace, ColorMask: 0xF, LogicOpEnable: true, LogicOp: 16}, "invalid logic op"},
		{"bad func", RenderTarget{Format: FormatRGBA8Unorm, RGB: Channel{Func: 7}, Alpha: Replace, ColorMask: 0xF}, "invalid blend function"},
		{"inverted saturate", RenderTarget{Format: FormatRGBA8Unorm, RGB: Channel{FuncAdd, FactorSrcAlphaSaturate | FactorInvert, FactorZero}, Alpha: Replace}, "invalid blend factor"},
		{"gap in channels", ReplaceTarget(Format{Name: "rb", Class: ClassUnorm, Bits: [4]uint8{8, 0, 8}}), "prefix of RGBA"},
		{"wide channel", ReplaceTarget(Format{Name: "r64", Class: ClassFloat, Bits: [4]uint8{64}}), "64 bits wide"},
		{"srgb float", ReplaceTarget(Format{Name: "weird", Class: ClassFloat, Bits: [4]uint8{16}, SRGB: true}), "sRGB requires"},
		{"no channels", ReplaceTarget(Format{Name: "empty", Class: ClassUnorm}), "no channels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.RenderTargets[3] = tt.rt
			err := opts.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) || !strings.Contains(err.Error(), "render target 3") {
				t.Errorf("error %q does not mention %q and the target index", err, tt.wantErr)
			}
		})
	}
}

func TestOptions_ValidateJoinsErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.RenderTargets[0] = RenderTarget{Format: FormatRGBA8Sint, RGB: Channel{FuncMin, FactorOne, FactorOne}, Alpha: Replace}
	opts.RenderTargets[5] = RenderTarget{Format: FormatRGBA8Unorm, RGB: Replace, Alpha: Channel{FuncAdd, 0x1F, FactorZero}}
	err := opts.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "render target 0") || !strings.Contains(msg, "render target 5") {
		t.Errorf("joined error misses a target: %q", msg)
	}
}
