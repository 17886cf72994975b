package ir

import (
	"strings"
	"testing"
)

// structResultModule returns a fragment entry point whose result is a
// struct with a primary and a dual-source color at location 0.
func structResultModule() *Module {
	return &Module{
		Types: []Type{
			{Name: "vec4f", Inner: VectorType{Size: Vec4, Scalar: F32}},
			{Name: "FragmentOutput", Inner: StructType{Members: []StructMember{
				{Name: "color", Type: 0, Binding: bindingPtr(LocationBinding{Location: 0})},
				{Name: "blend", Type: 0, Binding: bindingPtr(LocationBinding{Location: 0, BlendSrc: 1})},
			}}},
		},
		Functions: []Function{
			{
				Name: "fs_main",
				Arguments: []FunctionArgument{
					{Name: "a", Type: 0, Binding: bindingPtr(LocationBinding{Location: 0})},
					{Name: "b", Type: 0, Binding: bindingPtr(LocationBinding{Location: 1})},
				},
				Result: &FunctionResult{Type: 1},
				Expressions: []Expression{
					{Kind: ExprFunctionArgument{Index: 0}},
					{Kind: ExprFunctionArgument{Index: 1}},
					{Kind: ExprCompose{Type: 1, Components: []ExpressionHandle{0, 1}}},
				},
				Body: Block{
					{Kind: StmtEmit{Range: Range{Start: 2, End: 3}}},
					{Kind: StmtReturn{Value: exprHandlePtr(2)}},
				},
			},
		},
		EntryPoints: []EntryPoint{
			{Name: "fs_main", Stage: StageFragment, Function: 0},
		},
	}
}

func TestLowerEntryResults_Struct(t *testing.T) {
	m := structResultModule()
	if err := LowerEntryResults(m); err != nil {
		t.Fatalf("LowerEntryResults: %v", err)
	}

	fn := &m.Functions[0]
	if fn.Result != nil {
		t.Error("Result should be cleared")
	}

	var stores []StmtStoreOutput
	var sawReturn bool
	for _, stmt := range fn.Body {
		switch s := stmt.Kind.(type) {
		case StmtStoreOutput:
			stores = append(stores, s)
		case StmtReturn:
			if s.Value != nil {
				t.Error("return still carries a value")
			}
			sawReturn = true
		}
	}
	if !sawReturn {
		t.Error("return was dropped")
	}
	if len(stores) != 2 {
		t.Fatalf("got %d output stores, want 2", len(stores))
	}
	if stores[0].Location != 0 || stores[0].BlendSrc != 0 || stores[0].WriteMask != 0xF {
		t.Errorf("primary store = %+v", stores[0])
	}
	if stores[1].Location != 0 || stores[1].BlendSrc != 1 {
		t.Errorf("secondary store = %+v", stores[1])
	}
	access, ok := fn.Expressions[stores[1].Value].Kind.(ExprAccessIndex)
	if !ok || access.Base != 2 || access.Index != 1 {
		t.Errorf("secondary store reads %+v, want member 1 of the result", fn.Expressions[stores[1].Value].Kind)
	}

	if errs, _ := Validate(m); len(errs) > 0 {
		t.Errorf("lowered module has validation errors: %v", errs)
	}
}

func TestLowerEntryResults_LocationResultInBranches(t *testing.T) {
	m := passthroughModule()
	fn := &m.Functions[0]
	fn.Result = &FunctionResult{Type: 0, Binding: bindingPtr(LocationBinding{Location: 3})}
	fn.Expressions = append(fn.Expressions, Expression{Kind: Literal{Value: LiteralBool(true)}})
	fn.Body = Block{
		{Kind: StmtIf{
			Condition: 1,
			Accept:    Block{{Kind: StmtReturn{Value: exprHandlePtr(0)}}},
			Reject:    Block{{Kind: StmtKill{}}},
		}},
		{Kind: StmtReturn{Value: exprHandlePtr(0)}},
	}

	if err := LowerEntryResults(m); err != nil {
		t.Fatalf("LowerEntryResults: %v", err)
	}

	accept := fn.Body[0].Kind.(StmtIf).Accept
	if len(accept) != 2 {
		t.Fatalf("accept block has %d statements, want 2", len(accept))
	}
	if s, ok := accept[0].Kind.(StmtStoreOutput); !ok || s.Location != 3 || s.Value != 0 {
		t.Errorf("accept[0] = %+v, want store to location 3", accept[0].Kind)
	}
	if _, ok := fn.Body[0].Kind.(StmtIf).Reject[0].Kind.(StmtKill); !ok {
		t.Error("reject block was altered")
	}

	// A second run finds no result and changes nothing.
	before := len(fn.Body)
	if err := LowerEntryResults(m); err != nil {
		t.Fatalf("second LowerEntryResults: %v", err)
	}
	if len(fn.Body) != before {
		t.Error("second run changed the body")
	}
}

func TestLowerEntryResults_BuiltinRejected(t *testing.T) {
	m := passthroughModule()
	m.Types = append(m.Types, Type{Name: "f32", Inner: F32})
	m.Functions[0].Result = &FunctionResult{Type: 1, Binding: bindingPtr(BuiltinBinding{Builtin: BuiltinFragDepth})}

	err := LowerEntryResults(m)
	if err == nil || !strings.Contains(err.Error(), "builtin") {
		t.Errorf("LowerEntryResults() error = %v, want builtin rejection", err)
	}
}

func TestLowerEntryResults_NilModule(t *testing.T) {
	if err := LowerEntryResults(nil); err == nil {
		t.Error("expected error for nil module")
	}
}

func exprHandlePtr(v ExpressionHandle) *ExpressionHandle {
	return &v
}
