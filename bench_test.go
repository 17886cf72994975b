package shaderblend

import (
	"testing"

	"github.com/gogpu/shaderblend/blend"
)

// benchTargets covers the three lowering paths on different formats.
var benchTargets = []struct {
	name string
	rt   func() blend.RenderTarget
}{
	{"AlphaBlend", alphaBlend},
	{"LogicOpXor", func() blend.RenderTarget {
		rt := blend.ReplaceTarget(blend.FormatRGBA8Unorm)
		rt.LogicOpEnable = true
		rt.LogicOp = blend.LogicOpXor
		return rt
	}},
	{"MaskedHalf", func() blend.RenderTarget {
		rt := blend.ReplaceTarget(blend.FormatRGBA16Float)
		rt.ColorMask = 0x7
		return rt
	}},
}

func BenchmarkLower(b *testing.B) {
	for _, bt := range benchTargets {
		b.Run(bt.name, func(b *testing.B) {
			opts := DefaultOptions()
			opts.Blend.RenderTargets[0] = bt.rt()
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Lower(returningFragment(), opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompileGLSL(b *testing.B) {
	for _, bt := range benchTargets {
		b.Run(bt.name, func(b *testing.B) {
			opts := DefaultOptions()
			opts.Blend.RenderTargets[0] = bt.rt()
			b.ReportAllocs()
			for b.Loop() {
				if _, _, err := CompileGLSL(returningFragment(), opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
