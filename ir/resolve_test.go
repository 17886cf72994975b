package ir

import (
	"reflect"
	"testing"
)

func TestResolveLiteralType(t *testing.T) {
	tests := []struct {
		name     string
		literal  Literal
		wantType TypeInner
	}{
		{name: "f32 literal", literal: Literal{Value: LiteralF32(3.14)}, wantType: F32},
		{name: "f16 literal", literal: Literal{Value: LiteralF16(0.5)}, wantType: F16},
		{name: "i32 literal", literal: Literal{Value: LiteralI32(42)}, wantType: I32},
		{name: "u32 literal", literal: Literal{Value: LiteralU32(100)}, wantType: U32},
		{name: "bool literal", literal: Literal{Value: LiteralBool(true)}, wantType: Bool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := resolveLiteralType(tt.literal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Handle != nil {
				t.Errorf("expected inline type, got handle %d", *result.Handle)
			}
			if !reflect.DeepEqual(result.Value, tt.wantType) {
				t.Errorf("got type %+v, want %+v", result.Value, tt.wantType)
			}
		})
	}
}

func TestResolveExpressionType(t *testing.T) {
	vec4f := VectorType{Size: Vec4, Scalar: F32}
	one := ExpressionHandle(1)

	module := &Module{
		Types: []Type{
			{Name: "vec4f", Inner: vec4f},
			{Name: "f32", Inner: F32},
		},
	}
	fn := &Function{
		Name: "f",
		Arguments: []FunctionArgument{
			{Name: "c", Type: 0},
		},
		LocalVars: []LocalVariable{
			{Name: "tmp", Type: 1},
		},
		Expressions: []Expression{
			{Kind: ExprFunctionArgument{Index: 0}},                                                       // 0: vec4f
			{Kind: Literal{Value: LiteralF32(2)}},                                                        // 1: f32
			{Kind: ExprAccessIndex{Base: 0, Index: 3}},                                                   // 2: f32
			{Kind: ExprBinary{Op: BinaryMultiply, Left: 1, Right: 0}},                                    // 3: vec4f
			{Kind: ExprBinary{Op: BinaryLess, Left: 0, Right: 0}},                                        // 4: vec4<bool>
			{Kind: ExprSwizzle{Size: Vec2, Vector: 0, Pattern: [4]SwizzleComponent{SwizzleW, SwizzleX}}}, // 5
			{Kind: ExprAs{Expr: 0, Kind: ScalarFloat, Convert: uint8Ptr(2)}},                             // 6: vec4<f16>
			{Kind: ExprAs{Expr: 0, Kind: ScalarUint}},                                                    // 7: vec4<u32>
			{Kind: ExprLocalVariable{Variable: 0}},                                                       // 8: ptr<f32>
			{Kind: ExprLoad{Pointer: 8}},                                                                 // 9: f32
			{Kind: ExprFramebufferFetch{Location: 1, Scalar: F16}},                                       // 10: vec4<f16>
			{Kind: ExprBlendConstant{}},                                                                  // 11: vec4f
			{Kind: ExprBlendConstantChannel{Channel: 2}},                                                 // 12: f32
			{Kind: ExprMath{Fun: MathMin, Arg: 2, Arg1: &one}},                                           // 13: f32
			{Kind: ExprSplat{Size: Vec3, Value: 1}},                                                      // 14: vec3f
		},
	}

	tests := []struct {
		handle ExpressionHandle
		want   TypeInner
	}{
		{0, vec4f},
		{1, F32},
		{2, F32},
		{3, vec4f},
		{4, VectorType{Size: Vec4, Scalar: Bool}},
		{5, VectorType{Size: Vec2, Scalar: F32}},
		{6, VectorType{Size: Vec4, Scalar: F16}},
		{7, VectorType{Size: Vec4, Scalar: U32}},
		{8, PointerType{Base: 1, Space: SpaceFunction}},
		{9, F32},
		{10, VectorType{Size: Vec4, Scalar: F16}},
		{11, vec4f},
		{12, F32},
		{13, F32},
		{14, VectorType{Size: Vec3, Scalar: F32}},
	}

	for _, tt := range tests {
		res, err := ResolveExpressionType(module, fn, tt.handle)
		if err != nil {
			t.Errorf("expression %d: unexpected error: %v", tt.handle, err)
			continue
		}
		if got := res.Inner(module); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("expression %d: got %+v, want %+v", tt.handle, got, tt.want)
		}
	}
}

func TestResolveExpressionType_Errors(t *testing.T) {
	module := &Module{Types: []Type{{Inner: VectorType{Size: Vec2, Scalar: F32}}}}
	fn := &Function{
		Arguments: []FunctionArgument{{Name: "v", Type: 0}},
		Expressions: []Expression{
			{Kind: ExprFunctionArgument{Index: 0}},
			{Kind: ExprAccessIndex{Base: 0, Index: 2}},
			{Kind: ExprBlendConstantChannel{Channel: 4}},
			{Kind: ExprLoad{Pointer: 0}},
		},
	}

	for _, h := range []ExpressionHandle{1, 2, 3, 99} {
		if _, err := ResolveExpressionType(module, fn, h); err == nil {
			t.Errorf("expression %d: expected error, got nil", h)
		}
	}
}

func uint8Ptr(v uint8) *uint8 {
	return &v
}
