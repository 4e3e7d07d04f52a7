package ast

import "thorn/compiler-go/pkg/types"

// NamedType references a type by name. Name resolution fills Decl (for
// declared types) or Builtin (for primitive names) before checking.
type NamedType struct {
	exprBase
	typeExprMarker
	Name    string
	Decl    Node
	Builtin *types.Type
}

func NewNamedType(name string) *NamedType {
	return &NamedType{exprBase: exprBase{base: base{kind: KindNamedType}}, Name: name}
}

// NewBuiltinType references a primitive type directly.
func NewBuiltinType(t *types.Type) *NamedType {
	return &NamedType{exprBase: exprBase{base: base{kind: KindNamedType}}, Name: t.Name(), Builtin: t}
}

// PointerType is `^Elem`.
type PointerType struct {
	exprBase
	typeExprMarker
	Elem TypeExpression
}

func NewPointerType(elem TypeExpression) *PointerType {
	return &PointerType{exprBase: exprBase{base: base{kind: KindPointerType}}, Elem: elem}
}

// ArrayType is `[Count] Elem`; Count must be compile-time known.
type ArrayType struct {
	exprBase
	typeExprMarker
	Count Expression
	Elem  TypeExpression
}

func NewArrayType(count Expression, elem TypeExpression) *ArrayType {
	return &ArrayType{exprBase: exprBase{base: base{kind: KindArrayType}}, Count: count, Elem: elem}
}

// SliceType is `[] Elem`.
type SliceType struct {
	exprBase
	typeExprMarker
	Elem TypeExpression
}

func NewSliceType(elem TypeExpression) *SliceType {
	return &SliceType{exprBase: exprBase{base: base{kind: KindSliceType}}, Elem: elem}
}

// DynArrayType is `[..] Elem`.
type DynArrayType struct {
	exprBase
	typeExprMarker
	Elem TypeExpression
}

func NewDynArrayType(elem TypeExpression) *DynArrayType {
	return &DynArrayType{exprBase: exprBase{base: base{kind: KindDynArrayType}}, Elem: elem}
}

// VarArgType is `..Elem`.
type VarArgType struct {
	exprBase
	typeExprMarker
	Elem TypeExpression
}

func NewVarArgType(elem TypeExpression) *VarArgType {
	return &VarArgType{exprBase: exprBase{base: base{kind: KindVarArgType}}, Elem: elem}
}

// FunctionType is `(params) -> Return`.
type FunctionType struct {
	exprBase
	typeExprMarker
	ParamExprs []TypeExpression
	ReturnExpr TypeExpression
}

func NewFunctionType(params []TypeExpression, ret TypeExpression) *FunctionType {
	return &FunctionType{exprBase: exprBase{base: base{kind: KindFunctionType}}, ParamExprs: params, ReturnExpr: ret}
}

// TypeOf is the type of an expression.
type TypeOf struct {
	exprBase
	typeExprMarker
	Expr     Expression
	Resolved *types.Type
}

func NewTypeOf(expr Expression) *TypeOf {
	return &TypeOf{exprBase: exprBase{base: base{kind: KindTypeOf}}, Expr: expr}
}

// TypeAlias forwards to another type expression.
type TypeAlias struct {
	exprBase
	typeExprMarker
	To TypeExpression
}

func NewTypeAlias(to TypeExpression) *TypeAlias {
	return &TypeAlias{exprBase: exprBase{base: base{kind: KindTypeAlias}}, To: to}
}

// StructMemberDecl is one declared member of a struct type.
type StructMemberDecl struct {
	Name     string
	TypeExpr TypeExpression
	Default  Expression
	// Used promotes the member's fields into the containing struct;
	// through a pointer member an intermediate access is inserted.
	Used bool
}

// StructType is a struct declaration. Building its concrete type may take
/// several scheduler passes: member types resolve, then used members are
// applied, then defaults are checked as a separate entity.
type StructType struct {
	exprBase
	typeExprMarker
	Name    string
	Members []*StructMemberDecl

	Constraints *ConstraintContext

	// PendingType is the partially built type; Cache is the finished one.
	PendingType  *types.Type
	PendingValid bool
	Cache        *types.Type
	ReadyToBuild bool

	DefaultsEntity EntityRef
	TypeEntity     EntityRef
}

func NewStructType(name string, members []*StructMemberDecl) *StructType {
	return &StructType{exprBase: exprBase{base: base{kind: KindStructType}}, Name: name, Members: members}
}
