package ir

// Expression represents an expression in the IR.
// Expressions follow Single Static Assignment (SSA) form similar to SPIR-V.
type Expression struct {
	Kind ExpressionKind
}

// ExpressionKind represents the different kinds of expressions.
type ExpressionKind interface {
	expressionKind()
}

// Literal represents a literal constant value.
type Literal struct {
	Value LiteralValue
}

func (Literal) expressionKind() {}

// LiteralValue represents the value of a literal.
type LiteralValue interface {
	literalValue()
}

// LiteralF32 represents a 32-bit float literal (may not be NaN or infinity).
type LiteralF32 float32

func (LiteralF32) literalValue() {}

// LiteralF16 represents a 16-bit float literal. The value is held at
// single precision and must be exactly representable in binary16.
type LiteralF16 float32

func (LiteralF16) literalValue() {}

// LiteralU32 represents a 32-bit unsigned integer literal.
type LiteralU32 uint32

func (LiteralU32) literalValue() {}

// LiteralI32 represents a 32-bit signed integer literal.
type LiteralI32 int32

func (LiteralI32) literalValue() {}

// LiteralBool represents a boolean literal.
type LiteralBool bool

func (LiteralBool) literalValue() {}

// ExprZeroValue represents a zero-initialized value of a given type.
type ExprZeroValue struct {
	Type TypeHandle
}

func (ExprZeroValue) expressionKind() {}

// ExprUndef is a value of the given type whose contents are unspecified.
// Consumers may pick any value; backends and the evaluator use zero.
type ExprUndef struct {
	Type TypeHandle
}

func (ExprUndef) expressionKind() {}

// ExprCompose constructs a composite value (vector or struct).
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprAccessIndex performs access with a compile-time constant index.
// Can access vectors and struct fields.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprSplat broadcasts a scalar value to all components of a vector.
type ExprSplat struct {
	Size  VectorSize
	Value ExpressionHandle
}

func (ExprSplat) expressionKind() {}

// ExprSwizzle reorders or duplicates vector components.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

func (ExprSwizzle) expressionKind() {}

// SwizzleComponent represents a single component in a vector swizzle.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = 0
	SwizzleY SwizzleComponent = 1
	SwizzleZ SwizzleComponent = 2
	SwizzleW SwizzleComponent = 3
)

// ExprFunctionArgument references a function parameter by its index.
type ExprFunctionArgument struct {
	Index uint32
}

func (ExprFunctionArgument) expressionKind() {}

// ExprLocalVariable references a local variable.
// Produces a pointer to the variable's value.
type ExprLocalVariable struct {
	Variable uint32 // Index into Function.LocalVars
}

func (ExprLocalVariable) expressionKind() {}

// ExprLoad loads a value indirectly through a pointer.
type ExprLoad struct {
	Pointer ExpressionHandle
}

func (ExprLoad) expressionKind() {}

// ExprUnary applies a unary operator to an expression.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOperator represents unary operations.
type UnaryOperator uint8

const (
	UnaryNegate     UnaryOperator = iota // Arithmetic negation
	UnaryLogicalNot                      // Logical not (!)
	UnaryBitwiseNot                      // Bitwise not (~)
)

// ExprBinary applies a binary operator to two expressions.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOperator represents binary operations.
type BinaryOperator uint8

const (
	// Arithmetic operations
	BinaryAdd      BinaryOperator = iota // Addition
	BinarySubtract                       // Subtraction
	BinaryMultiply                       // Multiplication
	BinaryDivide                         // Division

	// Comparison operations
	BinaryEqual        // Equal (==)
	BinaryNotEqual     // Not equal (!=)
	BinaryLess         // Less than (<)
	BinaryLessEqual    // Less than or equal (<=)
	BinaryGreater      // Greater than (>)
	BinaryGreaterEqual // Greater than or equal (>=)

	// Bitwise operations
	BinaryAnd         // Bitwise AND
	BinaryExclusiveOr // Bitwise XOR
	BinaryInclusiveOr // Bitwise OR

	// Logical operations
	BinaryLogicalAnd // Logical AND (&&)
	BinaryLogicalOr  // Logical OR (||)

	// Shift operations
	BinaryShiftLeft  // Left shift (<<)
	BinaryShiftRight // Right shift (>>) - arithmetic for signed, logical for unsigned
)

// IsComparison reports whether the operator produces a boolean.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// ExprSelect selects between two values based on a boolean condition.
// Equivalent to the ternary operator (condition ? accept : reject).
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

func (ExprSelect) expressionKind() {}

// ExprMath applies a mathematical function.
type ExprMath struct {
	Fun  MathFunction
	Arg  ExpressionHandle
	Arg1 *ExpressionHandle
	Arg2 *ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction represents built-in mathematical functions.
type MathFunction uint8

const (
	MathAbs      MathFunction = iota // Absolute value
	MathMin                          // Minimum
	MathMax                          // Maximum
	MathClamp                        // Clamp to range
	MathSaturate                     // Clamp to [0, 1]
	MathRound                        // Round to nearest integer, ties to even
)

// ArgCount returns the number of operands the function takes.
func (f MathFunction) ArgCount() int {
	switch f {
	case MathMin, MathMax:
		return 2
	case MathClamp:
		return 3
	default:
		return 1
	}
}

// ExprAs performs a type cast or conversion.
type ExprAs struct {
	Expr    ExpressionHandle
	Kind    ScalarKind
	Convert *uint8 // If set, convert to this byte width; otherwise bitcast
}

func (ExprAs) expressionKind() {}

// ExprFramebufferFetch reads the current contents of the color
// attachment bound to an output location, as a four-component vector
// whose scalar type is given by Scalar.
type ExprFramebufferFetch struct {
	Location uint32
	Scalar   ScalarType
}

func (ExprFramebufferFetch) expressionKind() {}

// ExprBlendConstant loads the pipeline blend constant as vec4<f32>.
type ExprBlendConstant struct{}

func (ExprBlendConstant) expressionKind() {}

// ExprBlendConstantChannel loads one channel of the blend constant as
// f32, for targets that keep the constant in scalar storage.
type ExprBlendConstantChannel struct {
	Channel uint32
}

func (ExprBlendConstantChannel) expressionKind() {}

// NeedsEmit reports whether an expression kind must be covered by a
// StmtEmit before statements may use it. Literals, arguments, undefined
// values and variable references are available from function entry.
func NeedsEmit(kind ExpressionKind) bool {
	switch kind.(type) {
	case Literal, ExprZeroValue, ExprUndef, ExprFunctionArgument, ExprLocalVariable:
		return false
	default:
		return true
	}
}

// Operands returns the expression handles an expression reads, in
// evaluation order.
func Operands(kind ExpressionKind) []ExpressionHandle {
	switch k := kind.(type) {
	case ExprCompose:
		return k.Components
	case ExprAccessIndex:
		return []ExpressionHandle{k.Base}
	case ExprSplat:
		return []ExpressionHandle{k.Value}
	case ExprSwizzle:
		return []ExpressionHandle{k.Vector}
	case ExprLoad:
		return []ExpressionHandle{k.Pointer}
	case ExprUnary:
		return []ExpressionHandle{k.Expr}
	case ExprBinary:
		return []ExpressionHandle{k.Left, k.Right}
	case ExprSelect:
		return []ExpressionHandle{k.Condition, k.Accept, k.Reject}
	case ExprMath:
		ops := []ExpressionHandle{k.Arg}
		if k.Arg1 != nil {
			ops = append(ops, *k.Arg1)
		}
		if k.Arg2 != nil {
			ops = append(ops, *k.Arg2)
		}
		return ops
	case ExprAs:
		return []ExpressionHandle{k.Expr}
	default:
		return nil
	}
}
