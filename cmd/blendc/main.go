// Command blendc lowers a blend state into a pass-through fragment
// shader and prints the result as GLSL.
//
// Usage:
//
//	blendc [options]
//
// Examples:
//
//	blendc -src src-alpha -dst one-minus-src-alpha       # Alpha blending on rgba8unorm
//	blendc -format rgba16float -mask rgb -half           # Masked write of a half-precision color
//	blendc -logicop xor -glsl es320 -o blend.frag        # Logic op, written to a file
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/shaderblend"
	"github.com/gogpu/shaderblend/blend"
	"github.com/gogpu/shaderblend/glsl"
	"github.com/gogpu/shaderblend/ir"
)

var (
	output     = flag.String("o", "", "output file (default: stdout)")
	format     = flag.String("format", "rgba8unorm", "attachment format")
	srcFactor  = flag.String("src", "one", "color source factor")
	dstFactor  = flag.String("dst", "zero", "color destination factor")
	function   = flag.String("func", "add", "color blend function")
	alphaSrc   = flag.String("alpha-src", "", "alpha source factor (default: -src)")
	alphaDst   = flag.String("alpha-dst", "", "alpha destination factor (default: -dst)")
	alphaFunc  = flag.String("alpha-func", "", "alpha blend function (default: -func)")
	logicOp    = flag.String("logicop", "", "logic operation replacing blending")
	mask       = flag.String("mask", "rgba", "enabled color channels")
	components = flag.Int("components", 4, "components written by the shader (1-4)")
	half       = flag.Bool("half", false, "write a half-precision color")
	scalarC    = flag.Bool("scalar-constant", false, "load the blend constant one channel at a time")
	langVer    = flag.String("glsl", "es310", "GLSL version: es300, es310, es320, 330 or 450")
	verbose    = flag.Bool("v", false, "log lowering decisions to stderr")
	version    = flag.Bool("version", false, "print version")
)

const blendcVersion = "0.1.0-dev"

var glslVersions = map[string]glsl.Version{
	"es300": glsl.VersionES300,
	"es310": glsl.VersionES310,
	"es320": glsl.VersionES320,
	"330":   glsl.Version330,
	"450":   glsl.Version450,
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("blendc version %s\n", blendcVersion)
		return
	}
	if *verbose {
		shaderblend.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts, err := buildOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		usage()
		os.Exit(1)
	}

	scalar := ir.F32
	if *half {
		scalar = ir.F16
	}
	if *components < 1 || *components > 4 {
		fmt.Fprintf(os.Stderr, "Error: -components must be between 1 and 4, got %d\n", *components)
		os.Exit(1)
	}

	source, info, err := shaderblend.CompileGLSL(passThrough(scalar, *components), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(source), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", *output, len(source))
	} else if _, err := os.Stdout.WriteString(source); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if len(info.UsedExtensions) > 0 {
		fmt.Fprintf(os.Stderr, "extensions: %s\n", strings.Join(info.UsedExtensions, ", "))
	}
	if len(info.BlendConstantUniforms) > 0 {
		fmt.Fprintf(os.Stderr, "blend constant uniforms: %s\n", strings.Join(info.BlendConstantUniforms, ", "))
	}
	if info.SampleShading {
		fmt.Fprintln(os.Stderr, "note: run the shader per sample for exact framebuffer reads")
	}
}

// buildOptions turns the flags into options for render target 0.
func buildOptions() (shaderblend.CompileOptions, error) {
	opts := shaderblend.DefaultOptions()
	opts.Blend.ScalarBlendConstant = *scalarC

	v, ok := glslVersions[*langVer]
	if !ok {
		return opts, fmt.Errorf("unknown GLSL version %q", *langVer)
	}
	opts.GLSL.LangVersion = v

	f, ok := blend.LookupFormat(*format)
	if !ok {
		return opts, fmt.Errorf("unknown format %q", *format)
	}
	rt := blend.ReplaceTarget(f)

	var err error
	if rt.RGB, err = parseChannel(*function, *srcFactor, *dstFactor); err != nil {
		return opts, fmt.Errorf("color: %w", err)
	}
	if rt.Alpha, err = parseChannel(orDefault(*alphaFunc, *function), orDefault(*alphaSrc, *srcFactor), orDefault(*alphaDst, *dstFactor)); err != nil {
		return opts, fmt.Errorf("alpha: %w", err)
	}
	if rt.ColorMask, err = parseMask(*mask); err != nil {
		return opts, err
	}
	if *logicOp != "" {
		op, err := blend.ParseLogicOp(*logicOp)
		if err != nil {
			return opts, err
		}
		rt.LogicOpEnable = true
		rt.LogicOp = op
	}

	opts.Blend.RenderTargets[0] = rt
	return opts, nil
}

func parseChannel(fn, src, dst string) (blend.Channel, error) {
	var (
		c   blend.Channel
		err error
	)
	if c.Func, err = blend.ParseFunction(fn); err != nil {
		return c, err
	}
	if c.SrcFactor, err = blend.ParseFactor(src); err != nil {
		return c, err
	}
	if c.DstFactor, err = blend.ParseFactor(dst); err != nil {
		return c, err
	}
	return c, nil
}

func parseMask(s string) (uint8, error) {
	var m uint8
	for _, r := range s {
		i := strings.IndexRune("rgba", r)
		if i < 0 {
			return 0, fmt.Errorf("invalid channel %q in mask %q", r, s)
		}
		m |= 1 << i
	}
	return m, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// passThrough returns a fragment entry point that returns its
// interpolated input as the color at location 0.
func passThrough(scalar ir.ScalarType, size int) *ir.Module {
	var inner ir.TypeInner = scalar
	if size > 1 {
		inner = ir.VectorType{Size: ir.VectorSize(size), Scalar: scalar}
	}
	var in, out ir.Binding = ir.LocationBinding{Location: 0}, ir.LocationBinding{Location: 0}
	value := ir.ExpressionHandle(0)
	return &ir.Module{
		Types: []ir.Type{{Name: "color", Inner: inner}},
		Functions: []ir.Function{{
			Name:        "main",
			Arguments:   []ir.FunctionArgument{{Name: "color", Type: 0, Binding: &in}},
			Result:      &ir.FunctionResult{Type: 0, Binding: &out},
			Expressions: []ir.Expression{{Kind: ir.ExprFunctionArgument{Index: 0}}},
			Body:        ir.Block{{Kind: ir.StmtReturn{Value: &value}}},
		}},
		EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageFragment, Function: 0}},
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: blendc [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  blendc -src src-alpha -dst one-minus-src-alpha   Alpha blending\n")
	fmt.Fprintf(os.Stderr, "  blendc -format rgba16float -mask rgb -half       Masked half-precision write\n")
	fmt.Fprintf(os.Stderr, "  blendc -logicop xor -o blend.frag                Logic op to a file\n")
}
