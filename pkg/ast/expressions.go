package ast

import "thorn/compiler-go/pkg/types"

// Symbol is an identifier name resolution has not bound yet. Checking a
// symbol always suspends; the name-resolution phase replaces it.
type Symbol struct {
	exprBase
	Name string
}

func NewSymbol(name string) *Symbol {
	return &Symbol{exprBase: exprBase{base: base{kind: KindSymbol}}, Name: name}
}

// Local is a local variable or parameter binding.
type Local struct {
	exprBase
	Name     string
	TypeExpr TypeExpression
	IsParam  bool
}

func NewLocal(name string, typeExpr TypeExpression) *Local {
	return &Local{exprBase: exprBase{base: base{kind: KindLocal}}, Name: name, TypeExpr: typeExpr}
}

// Global is a memory reservation: a module-level variable checked in two
// steps (type first, then initial value).
type Global struct {
	exprBase
	Name       string
	TypeExpr   TypeExpression
	Value      Expression
	TypeEntity EntityRef
}

func NewGlobal(name string, typeExpr TypeExpression, value Expression) *Global {
	return &Global{exprBase: exprBase{base: base{kind: KindGlobal}}, Name: name, TypeExpr: typeExpr, Value: value}
}

// NumLit is a numeric literal. Until resolved against a context its type
// slot may be nil; resolveExpressionType assigns the default.
type NumLit struct {
	exprBase
	IsFloat bool
	Int     int64
	Float   float64
}

func NewIntLit(v int64) *NumLit {
	n := &NumLit{exprBase: exprBase{base: base{kind: KindNumLit}}, Int: v}
	n.AddFlags(FlagComptime)
	return n
}

func NewFloatLit(v float64) *NumLit {
	n := &NumLit{exprBase: exprBase{base: base{kind: KindNumLit}}, IsFloat: true, Float: v}
	n.AddFlags(FlagComptime)
	return n
}

// StrLit is a string literal.
type StrLit struct {
	exprBase
	Value string
}

func NewStrLit(v string) *StrLit {
	s := &StrLit{exprBase: exprBase{base: base{kind: KindStrLit}}, Value: v}
	s.AddFlags(FlagComptime)
	return s
}

// BoolLit is a boolean literal.
type BoolLit struct {
	exprBase
	Value bool
}

func NewBoolLit(v bool) *BoolLit {
	b := &BoolLit{exprBase: exprBase{base: base{kind: KindBoolLit}}, Value: v}
	b.AddFlags(FlagComptime)
	return b
}

// StructLiteral builds a struct value member by member. With a nil
// TypeExpr checking is deferred until a typed context adopts it.
type StructLiteral struct {
	exprBase
	TypeExpr TypeExpression
	Args     Arguments
}

func NewStructLiteral(typeExpr TypeExpression, args Arguments) *StructLiteral {
	return &StructLiteral{exprBase: exprBase{base: base{kind: KindStructLiteral}}, TypeExpr: typeExpr, Args: args}
}

// ArrayLiteral builds a fixed-size array value. ElemTypeExpr names the
// element type; the array type is derived from it and the value count.
type ArrayLiteral struct {
	exprBase
	ElemTypeExpr TypeExpression
	Values       []Expression
}

func NewArrayLiteral(elemType TypeExpression, values []Expression) *ArrayLiteral {
	return &ArrayLiteral{exprBase: exprBase{base: base{kind: KindArrayLiteral}}, ElemTypeExpr: elemType, Values: values}
}

// RangeLiteral is `low .. high` with an optional step.
type RangeLiteral struct {
	exprBase
	Low  Expression
	High Expression
	Step Expression
}

func NewRangeLiteral(low, high Expression) *RangeLiteral {
	return &RangeLiteral{exprBase: exprBase{base: base{kind: KindRangeLiteral}}, Low: low, High: high}
}

// Binary is a binary operator application, including assignments.
// OverloadArgs caches the synthetic argument list built for operator
// overload resolution so retries do not rebuild it.
type Binary struct {
	exprBase
	Op    Operator
	Left  Expression
	Right Expression

	OverloadArgs        *Arguments
	PotentialSubstitute *Binary
}

func NewBinary(op Operator, left, right Expression) *Binary {
	return &Binary{exprBase: exprBase{base: base{kind: KindBinary}}, Op: op, Left: left, Right: right}
}

// Unary is a unary operator application. TargetType is the destination
// type expression for casts.
type Unary struct {
	exprBase
	Op         UnaryOperator
	Operand    Expression
	TargetType TypeExpression
}

func NewUnary(op UnaryOperator, operand Expression) *Unary {
	return &Unary{exprBase: exprBase{base: base{kind: KindUnary}}, Op: op, Operand: operand}
}

// IntrinsicKind identifies a compiler intrinsic a call was lowered to.
type IntrinsicKind int

const (
	IntrinsicNone IntrinsicKind = iota
	IntrinsicMemoryCopy
	IntrinsicMemoryFill
	IntrinsicAtomicAdd
	IntrinsicSqrt
	IntrinsicAbs
	IntrinsicMin
	IntrinsicMax
)

// Call applies a callee to arguments. Its kind becomes KindIntrinsicCall
// when the callee was an intrinsic function.
type Call struct {
	exprBase
	Callee    Expression
	Args      Arguments
	Intrinsic IntrinsicKind
}

func NewCall(callee Expression, args Arguments) *Call {
	return &Call{exprBase: exprBase{base: base{kind: KindCall}}, Callee: callee, Args: args}
}

// MethodCall is the `recv.f(args)` sugar; checking rewrites it into the
// canonical call with the receiver prepended.
type MethodCall struct {
	exprBase
	Receiver Expression
	CallNode *Call
}

func NewMethodCall(receiver Expression, call *Call) *MethodCall {
	return &MethodCall{exprBase: exprBase{base: base{kind: KindMethodCall}}, Receiver: receiver, CallNode: call}
}

// AddressOf takes the address of an lvalue. CanBeRemoved marks wrappers
// synthesized by sugar that may silently degrade to their operand.
type AddressOf struct {
	exprBase
	Operand      Expression
	CanBeRemoved bool

	PotentialSubstitute *Binary
}

func NewAddressOf(operand Expression) *AddressOf {
	return &AddressOf{exprBase: exprBase{base: base{kind: KindAddressOf}}, Operand: operand}
}

// Dereference loads through a typed pointer.
type Dereference struct {
	exprBase
	Operand Expression
}

func NewDereference(operand Expression) *Dereference {
	return &Dereference{exprBase: exprBase{base: base{kind: KindDereference}}, Operand: operand}
}

// Subscript indexes an array-accessible value. Its kind becomes
// KindSliceExpr when the index is a range.
type Subscript struct {
	exprBase
	Addr     Expression
	Index    Expression
	ElemSize int

	PotentialSubstitute *Binary
}

func NewSubscript(addr, index Expression) *Subscript {
	return &Subscript{exprBase: exprBase{base: base{kind: KindSubscript}}, Addr: addr, Index: index}
}

// FieldAccess selects a member of a struct-like value.
type FieldAccess struct {
	exprBase
	Operand Expression
	Field   string
	Offset  int
	Idx     int
}

func NewFieldAccess(operand Expression, field string) *FieldAccess {
	return &FieldAccess{exprBase: exprBase{base: base{kind: KindFieldAccess}}, Operand: operand, Field: field}
}

// Compound is a multi-value expression.
type Compound struct {
	exprBase
	Exprs []Expression
}

func NewCompound(exprs []Expression) *Compound {
	return &Compound{exprBase: exprBase{base: base{kind: KindCompound}}, Exprs: exprs}
}

// IfExpression is a two-armed conditional expression.
type IfExpression struct {
	exprBase
	Cond      Expression
	TrueExpr  Expression
	FalseExpr Expression
}

func NewIfExpression(cond, trueExpr, falseExpr Expression) *IfExpression {
	return &IfExpression{exprBase: exprBase{base: base{kind: KindIfExpression}}, Cond: cond, TrueExpr: trueExpr, FalseExpr: falseExpr}
}

// DoBlock is an expression-position block with its own expected return.
type DoBlock struct {
	exprBase
	TypeExpr TypeExpression
	Body     *Block
}

func NewDoBlock(typeExpr TypeExpression, body *Block) *DoBlock {
	return &DoBlock{exprBase: exprBase{base: base{kind: KindDoBlock}}, TypeExpr: typeExpr, Body: body}
}

// SizeOf folds to the byte size of the queried type.
type SizeOf struct {
	exprBase
	Query TypeExpression
	Size  int
}

func NewSizeOf(query TypeExpression) *SizeOf {
	return &SizeOf{exprBase: exprBase{base: base{kind: KindSizeOf}}, Query: query}
}

// AlignOf folds to the alignment of the queried type.
type AlignOf struct {
	exprBase
	Query     TypeExpression
	Alignment int
}

func NewAlignOf(query TypeExpression) *AlignOf {
	return &AlignOf{exprBase: exprBase{base: base{kind: KindAlignOf}}, Query: query}
}

// Alias transparently forwards to another expression.
type Alias struct {
	exprBase
	Target Expression
}

func NewAlias(target Expression) *Alias {
	return &Alias{exprBase: exprBase{base: base{kind: KindAlias}}, Target: target}
}

// CallSite expands to the location of the call that supplied it.
type CallSite struct {
	exprBase
	Filename string
	Line     int
	Column   int
}

func NewCallSite() *CallSite {
	return &CallSite{exprBase: exprBase{base: base{kind: KindCallSite}}}
}

// ZeroValue is the synthesized default-initialization node produced for an
// argument-less struct literal over a non-struct type.
type ZeroValue struct {
	exprBase
}

func NewZeroValue() *ZeroValue {
	z := &ZeroValue{exprBase: exprBase{base: base{kind: KindZeroValue}}}
	z.AddFlags(FlagComptime)
	return z
}

// AutoCast requests one implicit conversion of its operand to whatever
// type the context demands.
type AutoCast struct {
	exprBase
	Operand Expression
}

func NewAutoCast(operand Expression) *AutoCast {
	return &AutoCast{exprBase: exprBase{base: base{kind: KindAutoCast}}, Operand: operand}
}

// VarargKind classifies a parameter's variadic-ness.
type VarargKind int

const (
	VarargNone VarargKind = iota
	VarargTyped
	VarargUntyped
)

// Param is one formal parameter of a function.
type Param struct {
	Local   *Local
	Default Expression
	Vararg  VarargKind
}

// Function is a procedure. The header (params, return type, constraints)
// and the body are checked as separate entities.
type Function struct {
	exprBase
	Name           string
	Params         []*Param
	ReturnTypeExpr TypeExpression
	Body           *Block
	Tags           []Expression

	IsIntrinsic   bool
	IntrinsicName string

	Constraints *ConstraintContext

	// HeaderEntity points at the header entity so body checking can wait
	// for the header to finish.
	HeaderEntity EntityRef

	// GeneratedFrom is set on functions instantiated from a polymorphic
	// procedure, for error attribution.
	GeneratedFrom Pos
	HasGenerated  bool
}

func NewFunction(name string, params []*Param, returnType TypeExpression, body *Block) *Function {
	return &Function{exprBase: exprBase{base: base{kind: KindFunction}}, Name: name, Params: params, ReturnTypeExpr: returnType, Body: body}
}

// OverloadedFunction is an ordered overload set.
type OverloadedFunction struct {
	exprBase
	Name      string
	Overloads []Expression
}

func NewOverloadedFunction(name string, overloads []Expression) *OverloadedFunction {
	return &OverloadedFunction{exprBase: exprBase{base: base{kind: KindOverloadedFunction}}, Name: name, Overloads: overloads}
}

// PolyParam is one polymorphic variable of a polymorphic procedure,
// solved from the type of the named formal parameter.
type PolyParam struct {
	Name     string
	ParamIdx int
}

// PolySolution is one solved polymorphic variable.
type PolySolution struct {
	Name string
	Type *TypeValue
}

// TypeValue wraps a resolved type so solutions can also carry values
// later without changing the map shape.
type TypeValue struct {
	Name     string
	Resolved *types.Type
}

// PolyProc is a polymorphic procedure template. Instances caches
// instantiations by solution-set key.
type PolyProc struct {
	exprBase
	Name       string
	PolyParams []*PolyParam
	Template   *Function

	Instances map[string]*Function
}

func NewPolyProc(name string, polyParams []*PolyParam, template *Function) *PolyProc {
	return &PolyProc{exprBase: exprBase{base: base{kind: KindPolyProc}}, Name: name, PolyParams: polyParams, Template: template}
}

// Macro wraps a function whose body is expanded at the call site.
type Macro struct {
	exprBase
	Body *Function
}

func NewMacro(body *Function) *Macro {
	return &Macro{exprBase: exprBase{base: base{kind: KindMacro}}, Body: body}
}

// ConstraintSentinel stands in for a value of a constraint's placeholder
// type while the constraint's requirement expressions are checked.
type ConstraintSentinel struct {
	exprBase
	TypeExpr TypeExpression
}

func NewConstraintSentinel(typeExpr TypeExpression) *ConstraintSentinel {
	return &ConstraintSentinel{exprBase: exprBase{base: base{kind: KindConstraintSentinel}}, TypeExpr: typeExpr}
}

// EnumValue is one value of an enum declaration, checked as its own
// expression entity.
type EnumValue struct {
	exprBase
	Name  string
	Value Expression
}

func NewEnumValue(name string, value Expression) *EnumValue {
	return &EnumValue{exprBase: exprBase{base: base{kind: KindEnumValue}}, Name: name, Value: value}
}

// ErrorNode marks a subtree earlier phases already reported about.
type ErrorNode struct {
	exprBase
}

func NewErrorNode() *ErrorNode {
	return &ErrorNode{exprBase: exprBase{base: base{kind: KindError}}}
}
