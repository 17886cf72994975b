package ir

import "fmt"

// Builder appends expressions to a function's arena and collects the
// statements that make them visible, in order.
//
// The builder never touches the function body. Finish hands back the
// collected block and the caller splices it where it belongs, so the
// insertion point is always explicit at the call site.
type Builder struct {
	module *Module
	fn     *Function
	types  *TypeRegistry

	block     Block
	emitting  bool
	emitStart ExpressionHandle
}

// NewBuilder creates a builder that appends to fn, which must belong to module.
func NewBuilder(module *Module, fn *Function) *Builder {
	return &Builder{
		module: module,
		fn:     fn,
		types:  NewTypeRegistry(module),
	}
}

// Module returns the module the builder adds types to.
func (b *Builder) Module() *Module { return b.module }

// Function returns the function the builder appends to.
func (b *Builder) Function() *Function { return b.fn }

// Append adds an expression to the arena and returns its handle.
// Expressions that need emission are covered by the next Emit the
// builder writes; the range is closed automatically before any
// expression that must not be emitted.
func (b *Builder) Append(kind ExpressionKind) ExpressionHandle {
	needsEmit := NeedsEmit(kind)
	if !needsEmit {
		b.flushEmit()
	}

	for len(b.fn.ExpressionTypes) < len(b.fn.Expressions) {
		b.fn.ExpressionTypes = append(b.fn.ExpressionTypes, TypeResolution{})
	}

	h := ExpressionHandle(len(b.fn.Expressions))
	b.fn.Expressions = append(b.fn.Expressions, Expression{Kind: kind})
	b.fn.ExpressionTypes = append(b.fn.ExpressionTypes, TypeResolution{})

	res, err := ResolveExpressionType(b.module, b.fn, h)
	if err != nil {
		panic(fmt.Sprintf("ir: builder appended ill-typed expression %d (%T): %v", h, kind, err))
	}
	b.fn.ExpressionTypes[h] = res

	if needsEmit && !b.emitting {
		b.emitting = true
		b.emitStart = h
	}
	return h
}

// Statement appends a statement after all expressions built so far.
func (b *Builder) Statement(kind StatementKind) {
	b.flushEmit()
	b.block = append(b.block, Statement{Kind: kind})
}

// Finish closes any open emit range and returns the collected block.
// The builder is empty afterwards and may be reused.
func (b *Builder) Finish() Block {
	b.flushEmit()
	block := b.block
	b.block = nil
	return block
}

func (b *Builder) flushEmit() {
	if !b.emitting {
		return
	}
	end := ExpressionHandle(len(b.fn.Expressions))
	if end > b.emitStart {
		b.block = append(b.block, Statement{Kind: StmtEmit{Range: Range{Start: b.emitStart, End: end}}})
	}
	b.emitting = false
}

// TypeOf returns the resolved inner type of an expression.
func (b *Builder) TypeOf(h ExpressionHandle) TypeInner {
	res, err := ResolveExpressionType(b.module, b.fn, h)
	if err != nil {
		panic(fmt.Sprintf("ir: builder: %v", err))
	}
	return res.Inner(b.module)
}

// ScalarOf returns the scalar type and component count of a scalar or
// vector expression.
func (b *Builder) ScalarOf(h ExpressionHandle) (ScalarType, int) {
	inner := b.TypeOf(h)
	scalar, size, ok := ScalarOf(inner)
	if !ok {
		panic(fmt.Sprintf("ir: builder: expression %d has non-numeric type %T", h, inner))
	}
	return scalar, size
}

// Type returns a module handle for inner, reusing an existing one.
func (b *Builder) Type(inner TypeInner) TypeHandle {
	return b.types.GetOrCreate("", inner)
}

// VectorType returns a handle for a vector of size components, or for
// the scalar itself when size is 1.
func (b *Builder) VectorType(scalar ScalarType, size int) TypeHandle {
	if size == 1 {
		return b.Type(scalar)
	}
	return b.Type(VectorType{Size: VectorSize(size), Scalar: scalar})
}

// Float appends a float literal of the given scalar width.
func (b *Builder) Float(scalar ScalarType, v float32) ExpressionHandle {
	if scalar.Width == 2 {
		return b.Append(Literal{Value: LiteralF16(v)})
	}
	return b.Append(Literal{Value: LiteralF32(v)})
}

// Uint appends a u32 literal.
func (b *Builder) Uint(v uint32) ExpressionHandle {
	return b.Append(Literal{Value: LiteralU32(v)})
}

// Int appends an i32 literal.
func (b *Builder) Int(v int32) ExpressionHandle {
	return b.Append(Literal{Value: LiteralI32(v)})
}

// Channel extracts component i of a vector. Scalars are returned as-is
// for i == 0.
func (b *Builder) Channel(v ExpressionHandle, i int) ExpressionHandle {
	if _, size := b.ScalarOf(v); size == 1 {
		if i != 0 {
			panic(fmt.Sprintf("ir: builder: channel %d of scalar expression %d", i, v))
		}
		return v
	}
	return b.Append(ExprAccessIndex{Base: v, Index: uint32(i)})
}

// Vec composes scalars of one type into a vector. A single component is
// returned unchanged.
func (b *Builder) Vec(components ...ExpressionHandle) ExpressionHandle {
	if len(components) == 1 {
		return components[0]
	}
	scalar, _ := b.ScalarOf(components[0])
	ty := b.VectorType(scalar, len(components))
	comps := make([]ExpressionHandle, len(components))
	copy(comps, components)
	return b.Append(ExprCompose{Type: ty, Components: comps})
}

// Binary appends a binary operation.
func (b *Builder) Binary(op BinaryOperator, left, right ExpressionHandle) ExpressionHandle {
	return b.Append(ExprBinary{Op: op, Left: left, Right: right})
}

// Unary appends a unary operation.
func (b *Builder) Unary(op UnaryOperator, v ExpressionHandle) ExpressionHandle {
	return b.Append(ExprUnary{Op: op, Expr: v})
}

// Math appends a math function call. The number of arguments must
// match the function's arity.
func (b *Builder) Math(fun MathFunction, args ...ExpressionHandle) ExpressionHandle {
	if len(args) != fun.ArgCount() {
		panic(fmt.Sprintf("ir: builder: math function %d takes %d arguments, got %d", fun, fun.ArgCount(), len(args)))
	}
	expr := ExprMath{Fun: fun, Arg: args[0]}
	if len(args) > 1 {
		a1 := args[1]
		expr.Arg1 = &a1
	}
	if len(args) > 2 {
		a2 := args[2]
		expr.Arg2 = &a2
	}
	return b.Append(expr)
}

// Convert appends a numeric conversion to the given kind and width.
func (b *Builder) Convert(v ExpressionHandle, kind ScalarKind, width uint8) ExpressionHandle {
	w := width
	return b.Append(ExprAs{Expr: v, Kind: kind, Convert: &w})
}

// Bitcast reinterprets the bits of v as kind.
func (b *Builder) Bitcast(v ExpressionHandle, kind ScalarKind) ExpressionHandle {
	return b.Append(ExprAs{Expr: v, Kind: kind})
}
