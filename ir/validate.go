package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function   string
	Expression *ExpressionHandle
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Expression != nil {
			return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	module  *Module
	errors  []ValidationError
	context validationContext
}

// validationContext holds current validation context.
type validationContext struct {
	function     *Function
	functionName string
	stage        *ShaderStage

	// emitted holds expressions visible at the current point. Entries
	// added inside a nested block are dropped when the block ends.
	emitted map[ExpressionHandle]bool
	// everEmitted catches an expression emitted twice anywhere.
	everEmitted map[ExpressionHandle]bool
}

// Validate checks the IR module for correctness.
// Returns validation errors if any, or nil if module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()

	stages := make(map[FunctionHandle]ShaderStage, len(v.module.EntryPoints))
	for _, ep := range v.module.EntryPoints {
		stages[ep.Function] = ep.Stage
	}
	for i := range v.module.Functions {
		var stage *ShaderStage
		if s, ok := stages[FunctionHandle(i)]; ok {
			stage = &s
		}
		v.validateFunction(&v.module.Functions[i], stage)
	}

	v.validateEntryPoints()
}

// validateTypes checks all type definitions.
func (v *Validator) validateTypes() {
	for i, typ := range v.module.Types {
		handle := TypeHandle(i)
		switch inner := typ.Inner.(type) {
		case nil:
			v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		case ScalarType:
			if !validScalar(inner) {
				v.addError(fmt.Sprintf("type %d: invalid scalar (kind %d, width %d)", handle, inner.Kind, inner.Width))
			}
		case VectorType:
			if inner.Size != Vec2 && inner.Size != Vec3 && inner.Size != Vec4 {
				v.addError(fmt.Sprintf("type %d: vector size must be 2, 3, or 4, got %d", handle, inner.Size))
			}
			if !validScalar(inner.Scalar) {
				v.addError(fmt.Sprintf("type %d: invalid vector scalar (kind %d, width %d)", handle, inner.Scalar.Kind, inner.Scalar.Width))
			}
		case StructType:
			memberNames := make(map[string]bool)
			for j, member := range inner.Members {
				if member.Name == "" {
					v.addError(fmt.Sprintf("type %d: struct member %d has empty name", handle, j))
				}
				if memberNames[member.Name] {
					v.addError(fmt.Sprintf("type %d: duplicate struct member name %q", handle, member.Name))
				}
				memberNames[member.Name] = true
				if !v.isValidTypeHandle(member.Type) || member.Type == handle {
					v.addError(fmt.Sprintf("type %d: struct member %q has invalid type %d", handle, member.Name, member.Type))
				}
			}
		case PointerType:
			if !v.isValidTypeHandle(inner.Base) {
				v.addError(fmt.Sprintf("type %d: pointer base type %d does not exist", handle, inner.Base))
			}
		}
	}
}

func validScalar(s ScalarType) bool {
	switch s.Kind {
	case ScalarFloat:
		return s.Width == 2 || s.Width == 4
	case ScalarSint, ScalarUint:
		return s.Width == 4
	case ScalarBool:
		return s.Width == 1
	default:
		return false
	}
}

// validateFunction checks one function's arena and body.
func (v *Validator) validateFunction(fn *Function, stage *ShaderStage) {
	v.context = validationContext{
		function:     fn,
		functionName: fn.Name,
		stage:        stage,
		emitted:      make(map[ExpressionHandle]bool),
		everEmitted:  make(map[ExpressionHandle]bool),
	}

	for i, arg := range fn.Arguments {
		if !v.isValidTypeHandle(arg.Type) {
			v.addFunctionError(fmt.Sprintf("argument %d (%s) has invalid type %d", i, arg.Name, arg.Type))
		}
	}
	for i, local := range fn.LocalVars {
		if !v.isValidTypeHandle(local.Type) {
			v.addFunctionError(fmt.Sprintf("local variable %d (%s) has invalid type %d", i, local.Name, local.Type))
		}
	}
	if fn.Result != nil && !v.isValidTypeHandle(fn.Result.Type) {
		v.addFunctionError(fmt.Sprintf("result has invalid type %d", fn.Result.Type))
	}

	for i := range fn.Expressions {
		v.validateExpression(ExpressionHandle(i))
	}

	v.validateBlock(fn.Body)
}

// validateExpression checks operand ordering and that the expression has a type.
func (v *Validator) validateExpression(handle ExpressionHandle) {
	fn := v.context.function
	kind := fn.Expressions[handle].Kind
	if kind == nil {
		v.addExpressionError(handle, "nil expression kind")
		return
	}

	for _, op := range Operands(kind) {
		if op >= handle {
			v.addExpressionError(handle, fmt.Sprintf("operand %d does not precede its user", op))
			return
		}
	}

	switch k := kind.(type) {
	case ExprCompose:
		if !v.isValidTypeHandle(k.Type) {
			v.addExpressionError(handle, fmt.Sprintf("compose type %d does not exist", k.Type))
			return
		}
		switch t := v.module.Types[k.Type].Inner.(type) {
		case VectorType:
			if len(k.Components) != int(t.Size) {
				v.addExpressionError(handle, fmt.Sprintf("compose of vec%d has %d components", t.Size, len(k.Components)))
			}
		case StructType:
			if len(k.Components) != len(t.Members) {
				v.addExpressionError(handle, fmt.Sprintf("compose of struct with %d members has %d components", len(t.Members), len(k.Components)))
			}
		default:
			v.addExpressionError(handle, fmt.Sprintf("cannot compose type %T", t))
		}
	case ExprZeroValue:
		if !v.isValidTypeHandle(k.Type) {
			v.addExpressionError(handle, fmt.Sprintf("zero value type %d does not exist", k.Type))
			return
		}
	case ExprUndef:
		if !v.isValidTypeHandle(k.Type) {
			v.addExpressionError(handle, fmt.Sprintf("undef type %d does not exist", k.Type))
			return
		}
	case ExprMath:
		got := 1
		if k.Arg1 != nil {
			got++
		}
		if k.Arg2 != nil {
			got++
		}
		if got != k.Fun.ArgCount() {
			v.addExpressionError(handle, fmt.Sprintf("math function %d takes %d arguments, got %d", k.Fun, k.Fun.ArgCount(), got))
		}
	case ExprFramebufferFetch:
		if v.context.stage == nil || *v.context.stage != StageFragment {
			v.addExpressionError(handle, "framebuffer fetch outside a fragment entry point")
		}
	}

	if _, err := ResolveExpressionType(v.module, fn, handle); err != nil {
		v.addExpressionError(handle, err.Error())
	}
}

// validateBlock checks statements in order, tracking emitted expressions.
func (v *Validator) validateBlock(block Block) {
	var scoped []ExpressionHandle
	defer func() {
		for _, h := range scoped {
			delete(v.context.emitted, h)
		}
	}()

	for _, stmt := range block {
		switch s := stmt.Kind.(type) {
		case StmtEmit:
			scoped = append(scoped, v.validateEmit(s.Range)...)
		case StmtBlock:
			v.validateBlock(s.Block)
		case StmtIf:
			v.requireAvailable(s.Condition, "if condition")
			v.validateBlock(s.Accept)
			v.validateBlock(s.Reject)
		case StmtReturn:
			if s.Value != nil {
				v.requireAvailable(*s.Value, "return value")
			}
		case StmtKill:
			if v.context.stage != nil && *v.context.stage != StageFragment {
				v.addFunctionError("kill outside a fragment entry point")
			}
		case StmtStore:
			v.requireAvailable(s.Pointer, "store pointer")
			v.requireAvailable(s.Value, "store value")
		case StmtStoreOutput:
			v.validateStoreOutput(s)
		default:
			v.addFunctionError(fmt.Sprintf("unsupported statement kind %T", s))
		}
	}
}

// validateEmit marks a range visible, returning the handles it added.
func (v *Validator) validateEmit(r Range) []ExpressionHandle {
	fn := v.context.function
	if r.Start > r.End || int(r.End) > len(fn.Expressions) {
		v.addFunctionError(fmt.Sprintf("emit range [%d, %d) out of bounds", r.Start, r.End))
		return nil
	}

	added := make([]ExpressionHandle, 0, r.End-r.Start)
	for h := r.Start; h < r.End; h++ {
		kind := fn.Expressions[h].Kind
		if kind != nil && !NeedsEmit(kind) {
			v.addExpressionError(h, "expression does not need to be emitted")
			continue
		}
		if v.context.everEmitted[h] {
			v.addExpressionError(h, "expression emitted twice")
			continue
		}
		if kind != nil {
			for _, op := range Operands(kind) {
				v.requireAvailable(op, fmt.Sprintf("operand of expression %d", h))
			}
		}
		v.context.emitted[h] = true
		v.context.everEmitted[h] = true
		added = append(added, h)
	}
	return added
}

// requireAvailable reports an error if a statement or emitted expression
// uses a handle that has not been emitted in an enclosing scope.
func (v *Validator) requireAvailable(h ExpressionHandle, what string) {
	fn := v.context.function
	if int(h) >= len(fn.Expressions) {
		v.addFunctionError(fmt.Sprintf("%s: expression handle %d out of range", what, h))
		return
	}
	kind := fn.Expressions[h].Kind
	if kind == nil || !NeedsEmit(kind) {
		return
	}
	if !v.context.emitted[h] {
		v.addExpressionError(h, fmt.Sprintf("%s used before it is emitted", what))
	}
}

func (v *Validator) validateStoreOutput(s StmtStoreOutput) {
	if v.context.stage == nil || *v.context.stage != StageFragment {
		v.addFunctionError("store to a color output outside a fragment entry point")
	}
	v.requireAvailable(s.Value, "output value")
	if s.BlendSrc > 1 {
		v.addFunctionError(fmt.Sprintf("output location %d: blend source %d is not 0 or 1", s.Location, s.BlendSrc))
	}
	if s.BlendSrc == 1 && s.Location >= 8 {
		v.addFunctionError(fmt.Sprintf("dual-source output location %d out of range", s.Location))
	}

	fn := v.context.function
	if int(s.Value) >= len(fn.Expressions) {
		return
	}
	res, err := ResolveExpressionType(v.module, fn, s.Value)
	if err != nil {
		return // reported by validateExpression
	}
	scalar, size, ok := ScalarOf(res.Inner(v.module))
	if !ok || scalar.Kind == ScalarBool {
		v.addFunctionError(fmt.Sprintf("output location %d: value must be a numeric scalar or vector", s.Location))
		return
	}
	if s.WriteMask == 0 || s.WriteMask>>uint(size) != 0 {
		v.addFunctionError(fmt.Sprintf("output location %d: write mask %#x does not fit %d components", s.Location, s.WriteMask, size))
	}
}

// validateEntryPoints checks all entry points.
func (v *Validator) validateEntryPoints() {
	names := make(map[string]bool)

	for _, ep := range v.module.EntryPoints {
		if ep.Name == "" {
			v.addError("entry point has empty name")
		}
		if names[ep.Name] {
			v.addError(fmt.Sprintf("duplicate entry point name %q", ep.Name))
		}
		names[ep.Name] = true

		if int(ep.Function) >= len(v.module.Functions) {
			v.addError(fmt.Sprintf("entry point %q: function %d does not exist", ep.Name, ep.Function))
			continue
		}
		if ep.Stage != StageFragment {
			if ep.Fragment != nil {
				v.addError(fmt.Sprintf("entry point %q: fragment info on %s stage", ep.Name, ep.Stage))
			}
			continue
		}

		fn := &v.module.Functions[ep.Function]
		for i, expr := range fn.Expressions {
			fetch, ok := expr.Kind.(ExprFramebufferFetch)
			if !ok {
				continue
			}
			if ep.Fragment == nil || !ep.Fragment.FramebufferFetch {
				v.addError(fmt.Sprintf("entry point %q: expression %d reads the framebuffer without FramebufferFetch", ep.Name, i))
				continue
			}
			if fetch.Location >= 64 || ep.Fragment.OutputsRead&(1<<fetch.Location) == 0 {
				v.addError(fmt.Sprintf("entry point %q: location %d read back but not in OutputsRead", ep.Name, fetch.Location))
			}
		}
	}
}

// isValidTypeHandle checks if a type handle is valid.
func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

// addError adds a validation error.
func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg})
}

func (v *Validator) addFunctionError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:  msg,
		Function: v.context.functionName,
	})
}

func (v *Validator) addExpressionError(h ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Function:   v.context.functionName,
		Expression: &h,
	})
}
