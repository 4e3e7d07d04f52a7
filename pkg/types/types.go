package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the type descriptor variants.
type Kind int

const (
	KindInvalid Kind = iota
	KindBasic
	KindPointer
	KindArray
	KindSlice
	KindDynArray
	KindVarArgs
	KindStruct
	KindFunction
	KindEnum
	KindCompound
)

// BasicKind enumerates the built-in scalar types.
type BasicKind int

const (
	BasicVoid BasicKind = iota
	BasicBool
	BasicI8
	BasicI16
	BasicI32
	BasicI64
	BasicU8
	BasicU16
	BasicU32
	BasicU64
	BasicF32
	BasicF64
	BasicRawptr
	BasicTypeIndex
)

// BasicFlag classifies what operations a basic type participates in.
type BasicFlag uint16

const (
	FlagBoolean BasicFlag = 1 << iota
	FlagInteger
	FlagUnsigned
	FlagFloat
	FlagPointer
	FlagSIMD

	FlagNumeric  = FlagInteger | FlagFloat
	FlagEquality = FlagBoolean | FlagInteger | FlagFloat | FlagPointer
	FlagOrdered  = FlagInteger | FlagFloat
)

// BasicInfo describes a basic type.
type BasicInfo struct {
	Kind  BasicKind
	Flags BasicFlag
	Size  int
	name  string
}

// StructStatus tracks how far a struct's layout has been completed.
// Field accesses must wait until embedded "used" members are applied.
type StructStatus int

const (
	StructStart StructStatus = iota
	StructMembersDone
	StructUsesDone
)

// StructMember is one member slot of a struct type.
type StructMember struct {
	Name   string
	Type   *Type
	Idx    int
	Offset int
	// Used marks an embedded member whose fields are promoted into
	// the containing struct.
	Used bool
	// UsedThroughPointerIdx is the index of the embedding pointer
	// member a promoted field is reached through, or -1.
	UsedThroughPointerIdx int
	HasDefault            bool
}

// StructInfo is the shared payload of a struct type. Two Types naming the
// same StructInfo are the same struct.
type StructInfo struct {
	Name    string
	Status  StructStatus
	Members []*StructMember
	byName  map[string]*StructMember

	// ConstructedFrom names the polymorphic struct this one was
	// instantiated from, together with the solved type arguments.
	ConstructedFrom string
	PolyArgs        []*Type
}

// AddMember appends a member, assigning its index and offset.
func (s *StructInfo) AddMember(m *StructMember) {
	if s.byName == nil {
		s.byName = make(map[string]*StructMember)
	}
	m.Idx = len(s.Members)
	if m.Idx > 0 {
		prev := s.Members[m.Idx-1]
		m.Offset = prev.Offset + prev.Type.Size()
	}
	if m.UsedThroughPointerIdx == 0 {
		m.UsedThroughPointerIdx = -1
	}
	s.Members = append(s.Members, m)
	s.byName[m.Name] = m
}

// PromoteMember makes a member of an embedded struct reachable by name
// on this struct. The member keeps the index and offset the caller
// computed and does not occupy a layout slot of its own.
func (s *StructInfo) PromoteMember(m *StructMember) {
	if s.byName == nil {
		s.byName = make(map[string]*StructMember)
	}
	s.byName[m.Name] = m
}

// Member looks a member up by name.
func (s *StructInfo) Member(name string) (*StructMember, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// MemberByIdx returns the member at the given slot.
func (s *StructInfo) MemberByIdx(idx int) (*StructMember, bool) {
	if idx < 0 || idx >= len(s.Members) {
		return nil, false
	}
	return s.Members[idx], true
}

// EnumInfo carries an enum's backing type and flags-ness.
type EnumInfo struct {
	Name    string
	Backing *Type
	IsFlags bool
}

// Signature is the payload of a function type. A non-nil VariadicElem
// makes the last parameter a typed variadic pack; UntypedVariadic
// accepts trailing arguments of any type instead.
type Signature struct {
	Params          []*Type
	Return          *Type
	VariadicElem    *Type
	UntypedVariadic bool
}

// Variadic reports whether the signature accepts trailing arguments.
func (s *Signature) Variadic() bool { return s.VariadicElem != nil || s.UntypedVariadic }

// Type is an opaque descriptor handed out by this package. The checker
// never builds one directly; it goes through the Make* constructors.
type Type struct {
	Kind     Kind
	Basic    *BasicInfo
	Elem     *Type
	Count    int
	Struct   *StructInfo
	Fn       *Signature
	Enum     *EnumInfo
	Compound []*Type
}

var basicInfos = [...]BasicInfo{
	BasicVoid:      {BasicVoid, 0, 0, "void"},
	BasicBool:      {BasicBool, FlagBoolean, 1, "bool"},
	BasicI8:        {BasicI8, FlagInteger, 1, "i8"},
	BasicI16:       {BasicI16, FlagInteger, 2, "i16"},
	BasicI32:       {BasicI32, FlagInteger, 4, "i32"},
	BasicI64:       {BasicI64, FlagInteger, 8, "i64"},
	BasicU8:        {BasicU8, FlagInteger | FlagUnsigned, 1, "u8"},
	BasicU16:       {BasicU16, FlagInteger | FlagUnsigned, 2, "u16"},
	BasicU32:       {BasicU32, FlagInteger | FlagUnsigned, 4, "u32"},
	BasicU64:       {BasicU64, FlagInteger | FlagUnsigned, 8, "u64"},
	BasicF32:       {BasicF32, FlagFloat, 4, "f32"},
	BasicF64:       {BasicF64, FlagFloat, 8, "f64"},
	BasicRawptr:    {BasicRawptr, FlagPointer, 8, "rawptr"},
	BasicTypeIndex: {BasicTypeIndex, FlagInteger, 4, "type_expr"},
}

var basicTypes [len(basicInfos)]*Type

func init() {
	for i := range basicInfos {
		basicTypes[i] = &Type{Kind: KindBasic, Basic: &basicInfos[i]}
	}
}

// Basic returns the shared descriptor for a basic kind.
func Basic(kind BasicKind) *Type { return basicTypes[kind] }

// AutoReturn is the placeholder return type of functions whose return type
// is inferred from their first checked return statement. Compared by
// pointer identity, never by structure.
var AutoReturn = &Type{Kind: KindBasic, Basic: &BasicInfo{Kind: BasicVoid, name: "#auto"}}

// MakePointer returns a pointer type to elem.
func MakePointer(elem *Type) *Type { return &Type{Kind: KindPointer, Elem: elem} }

// MakeArray returns a fixed-size array type.
func MakeArray(elem *Type, count int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice returns a slice type over elem.
func MakeSlice(elem *Type) *Type { return &Type{Kind: KindSlice, Elem: elem} }

// MakeDynArray returns a growable array type over elem.
func MakeDynArray(elem *Type) *Type { return &Type{Kind: KindDynArray, Elem: elem} }

// MakeVarArgs returns a variadic-pack type over elem.
func MakeVarArgs(elem *Type) *Type { return &Type{Kind: KindVarArgs, Elem: elem} }

// MakeStruct returns a fresh struct type around info.
func MakeStruct(info *StructInfo) *Type { return &Type{Kind: KindStruct, Struct: info} }

// MakeFunction returns a function type with the given signature.
func MakeFunction(sig *Signature) *Type { return &Type{Kind: KindFunction, Fn: sig} }

// MakeEnum returns an enum type.
func MakeEnum(info *EnumInfo) *Type {
	if info.Backing == nil {
		info.Backing = Basic(BasicI32)
	}
	return &Type{Kind: KindEnum, Enum: info}
}

// MakeCompound returns a multi-value type.
func MakeCompound(members []*Type) *Type {
	return &Type{Kind: KindCompound, Compound: members}
}

// Name renders a user-facing name for diagnostics.
func (t *Type) Name() string {
	if t == nil {
		return "<unknown>"
	}
	if t == AutoReturn {
		return "#auto"
	}
	switch t.Kind {
	case KindBasic:
		return t.Basic.name
	case KindPointer:
		return "^" + t.Elem.Name()
	case KindArray:
		return fmt.Sprintf("[%d] %s", t.Count, t.Elem.Name())
	case KindSlice:
		return "[] " + t.Elem.Name()
	case KindDynArray:
		return "[..] " + t.Elem.Name()
	case KindVarArgs:
		return ".." + t.Elem.Name()
	case KindStruct:
		return t.Struct.Name
	case KindEnum:
		return t.Enum.Name
	case KindFunction:
		parts := make([]string, len(t.Fn.Params))
		for i, p := range t.Fn.Params {
			parts[i] = p.Name()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + t.Fn.Return.Name()
	case KindCompound:
		parts := make([]string, len(t.Compound))
		for i, m := range t.Compound {
			parts[i] = m.Name()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "<invalid>"
}
