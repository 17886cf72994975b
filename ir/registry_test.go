package ir

import "testing"

func TestTypeRegistry_Deduplication(t *testing.T) {
	module := &Module{
		Types: []Type{
			{Name: "f32", Inner: F32},
			{Name: "vec4f", Inner: VectorType{Size: Vec4, Scalar: F32}},
		},
	}
	reg := NewTypeRegistry(module)

	if h := reg.GetOrCreate("", VectorType{Size: Vec4, Scalar: F32}); h != 1 {
		t.Errorf("existing vec4<f32> got handle %d, want 1", h)
	}
	if h := reg.GetOrCreate("", F32); h != 0 {
		t.Errorf("existing f32 got handle %d, want 0", h)
	}

	h16 := reg.GetOrCreate("vec4h", VectorType{Size: Vec4, Scalar: F16})
	if h16 != 2 {
		t.Errorf("new vec4<f16> got handle %d, want 2", h16)
	}
	if again := reg.GetOrCreate("", VectorType{Size: Vec4, Scalar: F16}); again != h16 {
		t.Errorf("second vec4<f16> got handle %d, want %d", again, h16)
	}
	if len(module.Types) != 3 {
		t.Errorf("module has %d types, want 3", len(module.Types))
	}
}

func TestEnsureType(t *testing.T) {
	module := &Module{}
	a := EnsureType(module, VectorType{Size: Vec3, Scalar: U32})
	b := EnsureType(module, VectorType{Size: Vec3, Scalar: U32})
	c := EnsureType(module, VectorType{Size: Vec3, Scalar: I32})
	if a != b {
		t.Errorf("identical types got handles %d and %d", a, b)
	}
	if a == c {
		t.Errorf("distinct types share handle %d", a)
	}
}

func TestTypeKey_Distinct(t *testing.T) {
	keys := map[string]TypeInner{}
	for _, inner := range []TypeInner{
		F16, F32, I32, U32, Bool,
		VectorType{Size: Vec2, Scalar: F32},
		VectorType{Size: Vec4, Scalar: F32},
		VectorType{Size: Vec4, Scalar: F16},
		PointerType{Base: 0, Space: SpaceFunction},
		PointerType{Base: 0, Space: SpacePrivate},
		StructType{Members: []StructMember{{Name: "a", Type: 0}}},
	} {
		k := typeKey(inner)
		if prev, dup := keys[k]; dup {
			t.Errorf("types %+v and %+v share key %q", prev, inner, k)
		}
		keys[k] = inner
	}
}
