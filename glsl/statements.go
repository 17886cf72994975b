// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/shaderblend/ir"
)

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for _, stmt := range block {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(stmt ir.Statement) error {
	switch s := stmt.Kind.(type) {
	case ir.StmtEmit:
		return w.writeEmit(s)
	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(s.Block); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil
	case ir.StmtIf:
		return w.writeIf(s)
	case ir.StmtReturn:
		if s.Value != nil {
			return fmt.Errorf("return with a value from a fragment entry point")
		}
		w.writeLine("return;")
		return nil
	case ir.StmtKill:
		w.writeLine("discard;")
		return nil
	case ir.StmtStore:
		return w.writeStore(s)
	case ir.StmtStoreOutput:
		return w.writeStoreOutput(s)
	default:
		return fmt.Errorf("unsupported statement kind: %T", stmt.Kind)
	}
}

// writeEmit bakes every expression in the range into a temporary, so
// later statements see the value as of this point.
func (w *Writer) writeEmit(s ir.StmtEmit) error {
	for h := s.Range.Start; h < s.Range.End; h++ {
		if int(h) >= len(w.fn.Expressions) {
			return fmt.Errorf("emit range ends past expression %d", len(w.fn.Expressions))
		}
		if _, done := w.namedExpressions[h]; done {
			continue
		}
		scalar, size, err := w.scalarOf(h)
		if err != nil {
			return err
		}
		value, err := w.writeExpressionKind(w.fn.Expressions[h].Kind, h)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("_e%d", h)
		w.namer.reserve(name)
		w.writeLine("%s %s = %s;", declType(scalar, size), name, value)
		w.namedExpressions[h] = name
	}
	return nil
}

// writeIf writes an if statement.
func (w *Writer) writeIf(s ir.StmtIf) error {
	condition, err := w.writeExpression(s.Condition)
	if err != nil {
		return err
	}
	w.writeLine("if (%s) {", condition)
	w.pushIndent()
	if err := w.writeBlock(s.Accept); err != nil {
		return err
	}
	w.popIndent()
	if len(s.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(s.Reject); err != nil {
			return err
		}
		w.popIndent()
	}
	w.writeLine("}")
	return nil
}

// writeStore writes a store to a local variable.
func (w *Writer) writeStore(s ir.StmtStore) error {
	if _, ok := w.fn.Expressions[s.Pointer].Kind.(ir.ExprLocalVariable); !ok {
		return fmt.Errorf("store through expression %d, which is not a local variable", s.Pointer)
	}
	pointer, err := w.writeExpression(s.Pointer)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", pointer, value)
	return nil
}

// writeStoreOutput writes the masked components of a color output.
func (w *Writer) writeStoreOutput(s ir.StmtStoreOutput) error {
	out, ok := w.outputs[outputKey{s.Location, s.BlendSrc}]
	if !ok {
		return fmt.Errorf("output at location %d was not collected", s.Location)
	}
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return err
	}
	_, size, err := w.scalarOf(s.Value)
	if err != nil {
		return err
	}

	var mask strings.Builder
	for i := 0; i < size; i++ {
		if s.WriteMask&(1<<i) != 0 {
			mask.WriteByte(componentNames[i])
		}
	}
	switch {
	case mask.Len() == 0:
		return nil
	case out.size == 1:
		w.writeLine("%s = %s;", out.name, value)
	case mask.Len() == out.size:
		w.writeLine("%s = %s;", out.name, value)
	case size == 1:
		w.writeLine("%s.%s = %s;", out.name, mask.String(), value)
	default:
		w.writeLine("%s.%s = %s.%s;", out.name, mask.String(), value, mask.String())
	}
	return nil
}
