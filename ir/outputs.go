package ir

import "fmt"

// LowerEntryResults rewrites fragment entry points that return their
// color outputs into explicit StmtStoreOutput writes.
//
// A result bound to a location becomes one store per return. A struct
// result becomes one store per member, each reading the member with
// AccessIndex. Every return then drops its value and the function's
// Result is cleared. Entry points without a result are left alone, so
// running the pass twice is harmless.
//
// Builtin outputs have no store form and are rejected.
func LowerEntryResults(module *Module) error {
	if module == nil {
		return fmt.Errorf("module is nil")
	}

	for _, ep := range module.EntryPoints {
		if ep.Stage != StageFragment {
			continue
		}
		if int(ep.Function) >= len(module.Functions) {
			return fmt.Errorf("entry point %q: function %d does not exist", ep.Name, ep.Function)
		}
		fn := &module.Functions[ep.Function]
		if fn.Result == nil {
			continue
		}

		targets, err := resultTargets(module, fn.Result)
		if err != nil {
			return fmt.Errorf("entry point %q: %w", ep.Name, err)
		}

		b := NewBuilder(module, fn)
		fn.Body = rewriteReturns(b, fn.Body, targets)
		fn.Result = nil
	}
	return nil
}

// outputTarget is one located output of an entry point result. member
// is -1 when the whole result is the output.
type outputTarget struct {
	member   int
	location uint32
	blendSrc uint32
}

func resultTargets(module *Module, result *FunctionResult) ([]outputTarget, error) {
	if result.Binding != nil {
		loc, ok := (*result.Binding).(LocationBinding)
		if !ok {
			return nil, fmt.Errorf("builtin result binding %T cannot be written as a color output", *result.Binding)
		}
		return []outputTarget{{member: -1, location: loc.Location, blendSrc: loc.BlendSrc}}, nil
	}

	if int(result.Type) >= len(module.Types) {
		return nil, fmt.Errorf("result type %d does not exist", result.Type)
	}
	st, ok := module.Types[result.Type].Inner.(StructType)
	if !ok {
		return nil, fmt.Errorf("unbound result must be a struct, got %T", module.Types[result.Type].Inner)
	}

	targets := make([]outputTarget, 0, len(st.Members))
	for i, member := range st.Members {
		if member.Binding == nil {
			return nil, fmt.Errorf("result member %q has no binding", member.Name)
		}
		loc, ok := (*member.Binding).(LocationBinding)
		if !ok {
			return nil, fmt.Errorf("result member %q: builtin binding cannot be written as a color output", member.Name)
		}
		targets = append(targets, outputTarget{member: i, location: loc.Location, blendSrc: loc.BlendSrc})
	}
	return targets, nil
}

func rewriteReturns(b *Builder, block Block, targets []outputTarget) Block {
	out := make(Block, 0, len(block))
	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case StmtBlock:
			out = append(out, Statement{Kind: StmtBlock{Block: rewriteReturns(b, s.Block, targets)}})
		case StmtIf:
			out = append(out, Statement{Kind: StmtIf{
				Condition: s.Condition,
				Accept:    rewriteReturns(b, s.Accept, targets),
				Reject:    rewriteReturns(b, s.Reject, targets),
			}})
		case StmtReturn:
			if s.Value == nil {
				out = append(out, stmt)
				continue
			}
			value := *s.Value
			for _, t := range targets {
				v := value
				if t.member >= 0 {
					v = b.Append(ExprAccessIndex{Base: value, Index: uint32(t.member)})
				}
				_, size := b.ScalarOf(v)
				b.Statement(StmtStoreOutput{
					Location:  t.location,
					BlendSrc:  t.blendSrc,
					Value:     v,
					WriteMask: uint8(1<<uint(size)) - 1,
				})
			}
			b.Statement(StmtReturn{})
			out = append(out, b.Finish()...)
		default:
			out = append(out, stmt)
		}
	}
	return out
}
