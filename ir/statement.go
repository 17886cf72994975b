package ir

// Statement represents a statement in the IR.
// Statements have side effects and structured control flow, but do not produce values.
// The function body is represented as a tree of statements, with references to expressions.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block represents a sequence of statements executed in order.
type Block []Statement

// Range represents a range of expression handles for Emit statements.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle // Exclusive
}

// StmtEmit emits a range of expressions, making them visible to all statements that follow.
// This is used to mark when expressions should be evaluated in SSA form.
type StmtEmit struct {
	Range Range
}

func (StmtEmit) statementKind() {}

// StmtBlock contains a sequence of statements to be executed in order.
type StmtBlock struct {
	Block Block
}

func (StmtBlock) statementKind() {}

// StmtIf conditionally executes one of two blocks based on the condition value.
// There are no phi instructions. To use values computed in accept or reject
// blocks after the If statement, store them in a LocalVariable.
type StmtIf struct {
	Condition ExpressionHandle // Must be a bool expression
	Accept    Block
	Reject    Block
}

func (StmtIf) statementKind() {}

// StmtReturn returns from the function, possibly with a value.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}

// StmtKill aborts the current shader execution (fragment shader discard).
type StmtKill struct{}

func (StmtKill) statementKind() {}

// StmtStore stores a value at an address through a pointer.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

func (StmtStore) statementKind() {}

// StmtStoreOutput writes a fragment color output.
//
// Location names the color attachment and BlendSrc the dual-source
// input (0 primary, 1 secondary). Value is a scalar or vector; only
// components whose bit is set in WriteMask are written.
type StmtStoreOutput struct {
	Location  uint32
	BlendSrc  uint32
	Value     ExpressionHandle
	WriteMask uint8
}

func (StmtStoreOutput) statementKind() {}

// IsTerminator reports whether control never continues past the statement.
func IsTerminator(kind StatementKind) bool {
	switch kind.(type) {
	case StmtReturn, StmtKill:
		return true
	default:
		return false
	}
}
