package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// IteratorPolyName is the polymorphic struct giving custom iteration.
// A for loop over a value whose struct type was constructed from it
// compiles into next/close calls.
const IteratorPolyName = "Iterator"

// Builtins collects the compiler-known types the checker synthesizes
// nodes against.
type Builtins struct {
	// Range is the struct produced by range literals: low, high and
	// step as i32, step defaulting to 1.
	Range *types.Type
	// Str is the string representation, a slice of bytes.
	Str *types.Type
	// CallSite is the struct a callsite argument expands into.
	CallSite *types.Type
}

func makeBuiltinStruct(name string, members ...*types.StructMember) *types.Type {
	info := &types.StructInfo{Name: name, Status: types.StructUsesDone}
	for _, m := range members {
		info.AddMember(m)
	}
	return types.MakeStruct(info)
}

// DefaultBuiltins constructs the standard built-in table.
func DefaultBuiltins() Builtins {
	i32 := types.Basic(types.BasicI32)
	u32 := types.Basic(types.BasicU32)
	str := types.MakeSlice(types.Basic(types.BasicU8))
	return Builtins{
		Range: makeBuiltinStruct("range",
			&types.StructMember{Name: "low", Type: i32},
			&types.StructMember{Name: "high", Type: i32},
			&types.StructMember{Name: "step", Type: i32, HasDefault: true},
		),
		Str: str,
		CallSite: makeBuiltinStruct("CallSite",
			&types.StructMember{Name: "file", Type: str},
			&types.StructMember{Name: "line", Type: u32},
			&types.StructMember{Name: "column", Type: u32},
		),
	}
}

// defaultIntrinsics maps the names recognized on intrinsic-tagged
// functions to their call rewrites.
func defaultIntrinsics() map[string]ast.IntrinsicKind {
	return map[string]ast.IntrinsicKind{
		"memory_copy": ast.IntrinsicMemoryCopy,
		"memory_fill": ast.IntrinsicMemoryFill,
		"atomic_add":  ast.IntrinsicAtomicAdd,
		"sqrt":        ast.IntrinsicSqrt,
		"abs":         ast.IntrinsicAbs,
		"min":         ast.IntrinsicMin,
		"max":         ast.IntrinsicMax,
	}
}
