package types

// Structural predicates and compatibility queries. The checker treats these
// as its type oracle and never inspects descriptor internals itself.

// IsBool reports whether t is the boolean basic type.
func IsBool(t *Type) bool {
	return t != nil && t.Kind == KindBasic && t.Basic.Flags&FlagBoolean != 0
}

// IsInteger reports whether t is an integer basic type or an enum.
func IsInteger(t *Type) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindEnum {
		return true
	}
	return t.Kind == KindBasic && t.Basic.Flags&FlagInteger != 0
}

// IsSmallInteger reports whether t is an integer of at most 32 bits,
// the only types accepted as subscript indices.
func IsSmallInteger(t *Type) bool {
	return t != nil && t.Kind == KindBasic && t.Basic.Flags&FlagInteger != 0 && t.Basic.Size <= 4
}

// IsNumeric reports whether t supports arithmetic.
func IsNumeric(t *Type) bool {
	return t != nil && t.Kind == KindBasic && t.Basic.Flags&FlagNumeric != 0
}

// IsFloat reports whether t is a floating basic type.
func IsFloat(t *Type) bool {
	return t != nil && t.Kind == KindBasic && t.Basic.Flags&FlagFloat != 0
}

// IsPointer reports whether t is a typed pointer.
func IsPointer(t *Type) bool { return t != nil && t.Kind == KindPointer }

// IsRawptr reports whether t is the untyped pointer type.
func IsRawptr(t *Type) bool {
	return t != nil && t.Kind == KindBasic && t.Basic.Kind == BasicRawptr
}

// IsCompound reports whether t is a multi-value type.
func IsCompound(t *Type) bool { return t != nil && t.Kind == KindCompound }

// IsStructLike reports whether member lookup is meaningful on t: structs,
// pointers to structs, and the slice-shaped kinds that carry synthetic
// members (data, count).
func IsStructLike(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindStruct, KindSlice, KindDynArray, KindVarArgs:
		return true
	case KindPointer:
		return t.Elem != nil && t.Elem.Kind == KindStruct
	}
	return false
}

// IsStructLikeStrict reports whether t can be built with a member-filling
// struct literal.
func IsStructLikeStrict(t *Type) bool { return t != nil && t.Kind == KindStruct }

// IsArrayAccessible reports whether t can be subscripted.
func IsArrayAccessible(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindArray, KindSlice, KindDynArray, KindVarArgs, KindPointer:
		return t.Kind != KindPointer || !IsRawptr(t)
	}
	return false
}

// ContainedElem returns the element type produced by subscripting t,
// or nil when t is not subscriptable.
func ContainedElem(t *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindArray, KindSlice, KindDynArray, KindVarArgs, KindPointer:
		return t.Elem
	}
	return nil
}

// StructOf unwraps t to its struct payload, looking through one pointer.
func StructOf(t *Type) *StructInfo {
	if t == nil {
		return nil
	}
	if t.Kind == KindPointer {
		t = t.Elem
	}
	if t != nil && t.Kind == KindStruct {
		return t.Struct
	}
	return nil
}

// ConstructedFromPoly reports whether t is a struct instantiated from the
// named polymorphic struct.
func ConstructedFromPoly(t *Type, polyName string) bool {
	return t != nil && t.Kind == KindStruct && t.Struct.ConstructedFrom == polyName
}

// BasicFlagsOf returns the operation flags a type exposes to the binary
// operator table. Pointers, enums and functions borrow basic-type flags.
func BasicFlagsOf(t *Type) BasicFlag {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case KindBasic:
		return t.Basic.Flags
	case KindPointer:
		return FlagPointer
	case KindEnum:
		return FlagInteger
	case KindFunction:
		return FlagEquality
	}
	return 0
}

// Size returns the byte size of t. The auto-return placeholder and unknown
// types have size zero.
func (t *Type) Size() int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case KindBasic:
		return t.Basic.Size
	case KindPointer:
		return 8
	case KindArray:
		return t.Count * t.Elem.Size()
	case KindSlice, KindVarArgs:
		return 16 // data + count
	case KindDynArray:
		return 24 // data + count + capacity
	case KindStruct:
		total := 0
		for _, m := range t.Struct.Members {
			total += m.Type.Size()
		}
		return total
	case KindEnum:
		return t.Enum.Backing.Size()
	case KindFunction:
		return 8
	case KindCompound:
		total := 0
		for _, m := range t.Compound {
			total += m.Size()
		}
		return total
	}
	return 0
}

// Alignment returns the alignment of t.
func (t *Type) Alignment() int {
	if t == nil {
		return 1
	}
	switch t.Kind {
	case KindBasic:
		if t.Basic.Size == 0 {
			return 1
		}
		return t.Basic.Size
	case KindPointer, KindSlice, KindDynArray, KindVarArgs, KindFunction:
		return 8
	case KindArray:
		return t.Elem.Alignment()
	case KindStruct:
		align := 1
		for _, m := range t.Struct.Members {
			if a := m.Type.Alignment(); a > align {
				align = a
			}
		}
		return align
	case KindEnum:
		return t.Enum.Backing.Alignment()
	}
	return 1
}

// Compatible answers whether values of type b may appear where a is
// expected without any conversion. It is not symmetric for pointers:
// a typed pointer is compatible with rawptr, never the reverse.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	if a == AutoReturn || b == AutoReturn {
		return false
	}
	switch a.Kind {
	case KindBasic:
		if IsRawptr(a) && (b.Kind == KindPointer || IsRawptr(b)) {
			return true
		}
		return b.Kind == KindBasic && a.Basic.Kind == b.Basic.Kind
	case KindPointer:
		if b.Kind != KindPointer {
			return false
		}
		return Compatible(a.Elem, b.Elem)
	case KindArray:
		return b.Kind == KindArray && a.Count == b.Count && Compatible(a.Elem, b.Elem)
	case KindSlice:
		return b.Kind == KindSlice && Compatible(a.Elem, b.Elem)
	case KindDynArray:
		return b.Kind == KindDynArray && Compatible(a.Elem, b.Elem)
	case KindVarArgs:
		return b.Kind == KindVarArgs && Compatible(a.Elem, b.Elem)
	case KindStruct:
		return b.Kind == KindStruct && a.Struct == b.Struct
	case KindEnum:
		return b.Kind == KindEnum && a.Enum == b.Enum
	case KindFunction:
		if b.Kind != KindFunction {
			return false
		}
		if len(a.Fn.Params) != len(b.Fn.Params) {
			return false
		}
		for i := range a.Fn.Params {
			if !Compatible(a.Fn.Params[i], b.Fn.Params[i]) {
				return false
			}
		}
		return Compatible(a.Fn.Return, b.Fn.Return)
	case KindCompound:
		if b.Kind != KindCompound || len(a.Compound) != len(b.Compound) {
			return false
		}
		for i := range a.Compound {
			if !Compatible(a.Compound[i], b.Compound[i]) {
				return false
			}
		}
		return true
	}
	return false
}
