// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import (
	"math"
	"testing"

	"github.com/gogpu/shaderblend/interp"
	"github.com/gogpu/shaderblend/ir"
)

// writeModule returns a fragment entry point "fs_main" that writes its
// first argument to location 0. With dual set, a second argument is
// written as the dual-source color of location 0, after the primary
// write.
func writeModule(scalar ir.ScalarType, size int, dual bool) *ir.Module {
	var inner ir.TypeInner = scalar
	if size > 1 {
		inner = ir.VectorType{Size: ir.VectorSize(size), Scalar: scalar}
	}
	m := &ir.Module{
		Types: []ir.Type{{Name: "color", Inner: inner}},
		Functions: []ir.Function{{
			Name: "fs_main",
			Arguments: []ir.FunctionArgument{
				{Name: "color", Type: 0, Binding: locationBinding(0)},
			},
			Expressions: []ir.Expression{
				{Kind: ir.ExprFunctionArgument{Index: 0}},
			},
			Body: ir.Block{
				{Kind: ir.StmtStoreOutput{Location: 0, Value: 0, WriteMask: uint8(1<<uint(size) - 1)}},
			},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "fs_main", Stage: ir.StageFragment, Function: 0}},
	}
	fn := &m.Functions[0]
	if dual {
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{Name: "src1", Type: 0, Binding: locationBinding(1)})
		fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprFunctionArgument{Index: 1}})
		fn.Body = append(fn.Body, ir.Statement{Kind: ir.StmtStoreOutput{
			Location: 0, BlendSrc: 1, Value: 1, WriteMask: uint8(1<<uint(size) - 1),
		}})
	}
	fn.Body = append(fn.Body, ir.Statement{Kind: ir.StmtReturn{}})
	return m
}

func locationBinding(loc uint32) *ir.Binding {
	var b ir.Binding = ir.LocationBinding{Location: loc}
	return &b
}

// lower runs Lower with a single configured target at location 0 and
// checks that the result validates.
func lower(t *testing.T, m *ir.Module, rt RenderTarget, mutate ...func(*Options)) {
	t.Helper()
	opts := DefaultOptions()
	opts.RenderTargets[0] = rt
	for _, f := range mutate {
		f(&opts)
	}
	if _, err := Lower(m, &opts); err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if errs, err := ir.Validate(m); err != nil || len(errs) > 0 {
		t.Fatalf("lowered module does not validate: %v %v", err, errs)
	}
}

// run executes the lowered module and returns the color at location 0.
func run(t *testing.T, m *ir.Module, in interp.Inputs) interp.Value {
	t.Helper()
	res, err := interp.Run(m, "fs_main", in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, ok := res.Output(0)
	if !ok {
		t.Fatal("no color written to location 0")
	}
	return out
}

// blendRGBA8 lowers rt for a vec4<f32> write and runs it once.
func blendRGBA8(t *testing.T, rt RenderTarget, src, dst [4]float32) interp.Value {
	t.Helper()
	m := writeModule(ir.F32, 4, false)
	lower(t, m, rt)
	in := interp.Inputs{Args: []interp.Value{interp.F32(src[:]...)}}
	in.Framebuffer[0] = interp.F32(dst[:]...)
	return run(t, m, in)
}

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-6
}

func checkColor(t *testing.T, got interp.Value, want ...float32) {
	t.Helper()
	if got.Size != len(want) {
		t.Fatalf("got %d components %v, want %v", got.Size, got, want)
	}
	for i, w := range want {
		if !approxEqual(got.Float32(i), w) {
			t.Errorf("channel %d = %v, want %v (color %v)", i, got.Float32(i), w, got)
		}
	}
}

// countMath returns how many expressions of fn apply fun.
func countMath(fn *ir.Function, fun ir.MathFunction) int {
	n := 0
	for _, e := range fn.Expressions {
		if m, ok := e.Kind.(ir.ExprMath); ok && m.Fun == fun {
			n++
		}
	}
	return n
}

// countKind returns how many expressions of fn are of kind K.
func countKind[K ir.ExpressionKind](fn *ir.Function) int {
	n := 0
	for _, e := range fn.Expressions {
		if _, ok := e.Kind.(K); ok {
			n++
		}
	}
	return n
}

// stores returns the output stores of a block and its nested blocks.
func stores(block ir.Block) []ir.StmtStoreOutput {
	var out []ir.StmtStoreOutput
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case ir.StmtStoreOutput:
			out = append(out, s)
		case ir.StmtBlock:
			out = append(out, stores(s.Block)...)
		case ir.StmtIf:
			out = append(out, stores(s.Accept)...)
			out = append(out, stores(s.Reject)...)
		}
	}
	return out
}

func unorm8(k uint32) float32 { return float32(k) / 255 }
