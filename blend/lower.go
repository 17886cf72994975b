// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package blend

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shaderblend/ir"
)

// path is how a color write is lowered.
type path uint8

const (
	pathReplace path = iota
	pathBlend
	pathLogicOp
)

func (p path) String() string {
	switch p {
	case pathReplace:
		return "replace"
	case pathBlend:
		return "blend"
	case pathLogicOp:
		return "logic-op"
	default:
		return fmt.Sprintf("path(%d)", uint8(p))
	}
}

func (rt *RenderTarget) path() path {
	switch {
	case rt.LogicOpEnable:
		return pathLogicOp
	case rt.Format.IsPureInteger() || rt.IsReplace():
		return pathReplace
	default:
		return pathBlend
	}
}

// Lower rewrites the color output writes of every fragment entry point
// in module so that each write stores the final attachment value: the
// source blended with, or combined by logic op with, the current
// attachment contents, masked by the color mask and trimmed to the
// attachment format.
//
// Writes to targets whose Format is FormatNone are left untouched.
// Dual-source writes to lowered targets are consumed. Entry points
// that gain a framebuffer read are marked in their FragmentInfo.
//
// Lower expects color outputs in StmtStoreOutput form; run
// ir.LowerEntryResults first on modules that return their colors. It
// reports whether the module changed. Each call lowers the writes it
// finds, so lowering an already lowered module blends twice.
func Lower(module *ir.Module, opts *Options) (bool, error) {
	if module == nil {
		return false, fmt.Errorf("blend: module is nil")
	}
	if opts == nil {
		return false, fmt.Errorf("blend: options are nil")
	}
	if err := opts.Validate(); err != nil {
		return false, fmt.Errorf("blend: %w", err)
	}

	log := opts.logger()
	changed := false
	fetched := make(map[ir.FunctionHandle]uint64)
	for _, ep := range module.EntryPoints {
		if ep.Stage != ir.StageFragment {
			continue
		}
		if int(ep.Function) >= len(module.Functions) {
			return changed, fmt.Errorf("blend: entry point %q: function %d does not exist", ep.Name, ep.Function)
		}
		if _, done := fetched[ep.Function]; done {
			continue
		}

		l := newLowerer(module, ep.Function, opts, log.With("entry", ep.Name))
		l.run()
		fetched[ep.Function] = l.fetched
		changed = changed || l.changed
	}

	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		mask := fetched[ep.Function]
		if ep.Stage != ir.StageFragment || mask == 0 {
			continue
		}
		if ep.Fragment == nil {
			ep.Fragment = &ir.FragmentInfo{}
		}
		ep.Fragment.FramebufferFetch = true
		ep.Fragment.SampleShading = true
		ep.Fragment.OutputsRead |= mask
	}
	return changed, nil
}

// lowerer rewrites the color writes of one function.
type lowerer struct {
	module *ir.Module
	fn     *ir.Function
	opts   *Options
	log    *slog.Logger
	b      *ir.Builder

	// src1 holds the dual-source value written for each target.
	src1 [MaxRenderTargets]*ir.ExpressionHandle

	fetched uint64
	changed bool
}

func newLowerer(module *ir.Module, fn ir.FunctionHandle, opts *Options, log *slog.Logger) *lowerer {
	f := &module.Functions[fn]
	return &lowerer{
		module: module,
		fn:     f,
		opts:   opts,
		log:    log,
		b:      ir.NewBuilder(module, f),
	}
}

// run consumes the dual-source writes, then rewrites the primary
// writes. The collection must finish first: a primary write may
// precede its dual-source companion.
func (l *lowerer) run() {
	l.fn.Body = l.collectDualSources(l.fn.Body)
	l.fn.Body = l.rewriteBlock(l.fn.Body)
}

// lowered reports whether writes to location are rewritten.
func (l *lowerer) lowered(location uint32) bool {
	return location < MaxRenderTargets && !l.opts.RenderTargets[location].Format.IsNone()
}

// collectDualSources removes the dual-source writes to lowered targets
// and records their values.
func (l *lowerer) collectDualSources(block ir.Block) ir.Block {
	out := make(ir.Block, 0, len(block))
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case ir.StmtBlock:
			stmt = ir.Statement{Kind: ir.StmtBlock{Block: l.collectDualSources(s.Block)}}
		case ir.StmtIf:
			stmt = ir.Statement{Kind: ir.StmtIf{
				Condition: s.Condition,
				Accept:    l.collectDualSources(s.Accept),
				Reject:    l.collectDualSources(s.Reject),
			}}
		case ir.StmtStoreOutput:
			if s.BlendSrc == 1 {
				if s.Location >= MaxRenderTargets {
					panic(fmt.Sprintf("blend: dual-source write to location %d", s.Location))
				}
				if l.lowered(s.Location) {
					v := s.Value
					l.src1[s.Location] = &v
					l.changed = true
					continue
				}
			}
		}
		out = append(out, stmt)
	}
	return out
}

// rewriteBlock replaces every primary write to a lowered target. Each
// replacement is placed at the end of the straight-line run holding the
// write, ahead of the next nested block, branch, return or kill, so it
// follows every statement of that run it may depend on and control flow
// still sees the write where the program made it.
func (l *lowerer) rewriteBlock(block ir.Block) ir.Block {
	out := make(ir.Block, 0, len(block))
	var writes []ir.StmtStoreOutput
	flush := func() {
		for _, w := range writes {
			out = append(out, l.lowerWrite(w)...)
		}
		writes = writes[:0]
	}
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case ir.StmtBlock:
			flush()
			stmt = ir.Statement{Kind: ir.StmtBlock{Block: l.rewriteBlock(s.Block)}}
		case ir.StmtIf:
			flush()
			stmt = ir.Statement{Kind: ir.StmtIf{
				Condition: s.Condition,
				Accept:    l.rewriteBlock(s.Accept),
				Reject:    l.rewriteBlock(s.Reject),
			}}
		case ir.StmtReturn, ir.StmtKill:
			flush()
		case ir.StmtStoreOutput:
			if s.BlendSrc == 0 && l.lowered(s.Location) {
				writes = append(writes, s)
				continue
			}
		}
		out = append(out, stmt)
	}
	flush()
	return out
}

// lowerWrite returns the statements that replace one primary write.
func (l *lowerer) lowerWrite(w ir.StmtStoreOutput) ir.Block {
	l.changed = true
	rt := &l.opts.RenderTargets[w.Location]
	log := l.log.With("location", w.Location, "format", rt.Format.String())
	if rt.writeDisabled() {
		log.Debug("blend: removed disabled color write")
		return nil
	}

	n := rt.Format.NumComponents()
	mask := w.WriteMask & uint8(1<<uint(n)-1)
	if mask == 0 {
		log.Debug("blend: removed color write outside the format", "writeMask", w.WriteMask)
		return nil
	}

	b := l.b
	scalar, _ := b.ScalarOf(w.Value)
	readsDst := rt.readsDestination()
	var dstVec *ir.ExpressionHandle
	if readsDst {
		h := b.Append(ir.ExprFramebufferFetch{Location: w.Location, Scalar: scalar})
		dstVec = &h
		l.fetched |= 1 << w.Location
	}

	e := newEmitter(b, rt, writeInputs{
		src:  w.Value,
		src1: l.src1[w.Location],
		dst: func() ir.ExpressionHandle {
			if dstVec == nil {
				h := b.Append(ir.ExprUndef{Type: b.VectorType(scalar, 4)})
				dstVec = &h
			}
			return *dstVec
		},
		scalarConst: l.opts.ScalarBlendConstant,
	})

	p := rt.path()
	var value ir.ExpressionHandle
	if p == pathReplace && rt.ColorMask&ColorMaskAll == ColorMaskAll && e.size == n {
		value = w.Value
	} else {
		var blended [4]ir.ExpressionHandle
		switch p {
		case pathLogicOp:
			blended = e.logicOp(rt.LogicOp)
		case pathBlend:
			blended = e.blend()
		default:
			for i := range blended {
				blended[i] = e.rawSrcChannel(i)
			}
		}
		final := make([]ir.ExpressionHandle, n)
		for i := range final {
			if rt.ColorMask&(1<<uint(i)) != 0 {
				final[i] = blended[i]
			} else {
				final[i] = e.rawDstChannel(i)
			}
		}
		value = b.Vec(final...)
	}

	b.Statement(ir.StmtStoreOutput{
		Location:  w.Location,
		Value:     value,
		WriteMask: mask,
	})
	log.Debug("blend: lowered color write", "path", p.String(), "readback", readsDst)
	return b.Finish()
}
