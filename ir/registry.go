package ir

import (
	"fmt"
	"strconv"
)

// TypeRegistry deduplicates structurally identical types in a module's
// type arena. Passes that synthesize vectors use it so that repeated
// requests for, say, vec4<f32> share one handle.
type TypeRegistry struct {
	module  *Module
	typeMap map[string]TypeHandle
}

// NewTypeRegistry creates a registry over the module's existing types.
func NewTypeRegistry(module *Module) *TypeRegistry {
	r := &TypeRegistry{
		module:  module,
		typeMap: make(map[string]TypeHandle, len(module.Types)+4),
	}
	for i, t := range module.Types {
		key := typeKey(t.Inner)
		if _, exists := r.typeMap[key]; !exists {
			r.typeMap[key] = TypeHandle(i)
		}
	}
	return r
}

// GetOrCreate returns an existing handle for the type if it exists,
// or appends it to the module if it's unique.
func (r *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := typeKey(inner)
	if handle, exists := r.typeMap[key]; exists {
		return handle
	}

	handle := TypeHandle(len(r.module.Types))
	r.module.Types = append(r.module.Types, Type{Name: name, Inner: inner})
	r.typeMap[key] = handle
	return handle
}

// EnsureType returns a handle for inner in the module, appending a new
// type only when no structurally identical one exists.
func EnsureType(module *Module, inner TypeInner) TypeHandle {
	return NewTypeRegistry(module).GetOrCreate("", inner)
}

// typeKey creates a unique key for a type based on its structure.
// Two structurally identical types will produce the same key.
func typeKey(inner TypeInner) string {
	switch t := inner.(type) {
	case ScalarType:
		return "scalar:" + strconv.Itoa(int(t.Kind)) + ":" + strconv.Itoa(int(t.Width))
	case VectorType:
		return "vec:" + strconv.Itoa(int(t.Size)) + ":" + typeKey(t.Scalar)
	case StructType:
		// Structs use fmt.Sprintf since they're less frequent and more complex.
		key := fmt.Sprintf("struct:%d:%d", len(t.Members), t.Span)
		for _, member := range t.Members {
			key += fmt.Sprintf(":m(%s,%d,%d)", member.Name, member.Type, member.Offset)
		}
		return key
	case PointerType:
		return "ptr:" + strconv.Itoa(int(t.Base)) + ":" + strconv.Itoa(int(t.Space))
	default:
		return fmt.Sprintf("unknown:%T", inner)
	}
}
