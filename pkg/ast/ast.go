package ast

import "thorn/compiler-go/pkg/types"

// Pos is a source location carried by every node.
type Pos struct {
	File   string
	Line   int
	Column int
}

// NodeKind tags the variant of a node.
type NodeKind int

const (
	KindInvalid NodeKind = iota

	// Expressions.
	KindSymbol
	KindLocal
	KindGlobal
	KindNumLit
	KindStrLit
	KindBoolLit
	KindStructLiteral
	KindArrayLiteral
	KindRangeLiteral
	KindBinary
	KindUnary
	KindCall
	KindIntrinsicCall
	KindMethodCall
	KindAddressOf
	KindDereference
	KindSubscript
	KindSliceExpr
	KindFieldAccess
	KindCompound
	KindIfExpression
	KindDoBlock
	KindSizeOf
	KindAlignOf
	KindAlias
	KindCallSite
	KindZeroValue
	KindAutoCast
	KindFunction
	KindOverloadedFunction
	KindPolyProc
	KindMacro
	KindConstraintSentinel
	KindEnumValue

	// Type expressions. Everything between KindTypeStart and KindTypeEnd
	// is usable in type position.
	KindTypeStart
	KindNamedType
	KindPointerType
	KindArrayType
	KindSliceType
	KindDynArrayType
	KindVarArgType
	KindFunctionType
	KindTypeOf
	KindTypeAlias
	KindStructType
	KindTypeEnd

	// Statements.
	KindBlock
	KindReturn
	KindIf
	KindStaticIf
	KindWhile
	KindFor
	KindSwitch
	KindSwitchCase
	KindDefer
	KindJump
	KindRemove

	// Declarations and directives.
	KindInterface
	KindConstraint
	KindDirectiveExport
	KindDirectiveInit
	KindDirectiveLibrary
	KindError
)

var kindNames = map[NodeKind]string{
	KindSymbol:             "symbol",
	KindLocal:              "local",
	KindGlobal:             "global",
	KindNumLit:             "numeric literal",
	KindStrLit:             "string literal",
	KindBoolLit:            "boolean literal",
	KindStructLiteral:      "struct literal",
	KindArrayLiteral:       "array literal",
	KindRangeLiteral:       "range literal",
	KindBinary:             "binary operator",
	KindUnary:              "unary operator",
	KindCall:               "call",
	KindIntrinsicCall:      "intrinsic call",
	KindMethodCall:         "method call",
	KindAddressOf:          "address-of",
	KindDereference:        "dereference",
	KindSubscript:          "subscript",
	KindSliceExpr:          "slice expression",
	KindFieldAccess:        "field access",
	KindCompound:           "compound expression",
	KindIfExpression:       "if expression",
	KindDoBlock:            "do block",
	KindSizeOf:             "size-of",
	KindAlignOf:            "align-of",
	KindAlias:              "alias",
	KindCallSite:           "call-site",
	KindZeroValue:          "zero value",
	KindAutoCast:           "auto cast",
	KindFunction:           "function",
	KindOverloadedFunction: "overloaded function",
	KindPolyProc:           "polymorphic procedure",
	KindMacro:              "macro",
	KindConstraintSentinel: "constraint sentinel",
	KindEnumValue:          "enum value",
	KindNamedType:          "named type",
	KindPointerType:        "pointer type",
	KindArrayType:          "array type",
	KindSliceType:          "slice type",
	KindDynArrayType:       "growable array type",
	KindVarArgType:         "variadic type",
	KindFunctionType:       "function type",
	KindTypeOf:             "type-of",
	KindTypeAlias:          "type alias",
	KindStructType:         "struct type",
	KindBlock:              "block",
	KindReturn:             "return",
	KindIf:                 "if",
	KindStaticIf:           "static if",
	KindWhile:              "while",
	KindFor:                "for",
	KindSwitch:             "switch",
	KindSwitchCase:         "switch case",
	KindDefer:              "defer",
	KindJump:               "jump",
	KindRemove:             "remove",
	KindInterface:          "interface",
	KindConstraint:         "constraint",
	KindDirectiveExport:    "export directive",
	KindDirectiveInit:      "init directive",
	KindDirectiveLibrary:   "library directive",
	KindError:              "error",
}

// String renders a user-facing name for diagnostics.
func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown node"
}

// IsTypeKind reports whether k denotes a type expression.
func (k NodeKind) IsTypeKind() bool { return k > KindTypeStart && k < KindTypeEnd }

// Flags is the per-node flag bitset.
type Flags uint32

const (
	FlagChecked Flags = 1 << iota
	FlagComptime
	FlagAddressTaken
	FlagCannotTakeAddr
	FlagConst
	FlagArrayLiteralTyped
	FlagStaticIfResolved
	FlagExprIgnored
	FlagProbeOnly
	FlagFunctionUsed
)

// EntityRef lets nodes point back at the scheduler entity that owns them
// without this package depending on the scheduler.
type EntityRef interface {
	// Pending reports whether the owning entity has not yet passed
	// type-checking.
	Pending() bool
}

// Node is any syntax element.
type Node interface {
	Kind() NodeKind
	Pos() Pos
	SetPos(Pos)
}

// Statement is a node usable in statement position. Every expression is
// also a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node carrying a mutable resolved-type slot and flags.
type Expression interface {
	Statement
	Type() *types.Type
	SetType(*types.Type)
	HasFlag(Flags) bool
	AddFlags(Flags)
	ClearFlags(Flags)
	Entity() EntityRef
	SetEntity(EntityRef)
	expressionNode()
}

// TypeExpression is an expression usable in type position.
type TypeExpression interface {
	Expression
	typeExpressionNode()
}

type base struct {
	kind NodeKind
	Loc  Pos
}

func (b *base) Kind() NodeKind { return b.kind }
func (b *base) Pos() Pos       { return b.Loc }
func (b *base) SetPos(p Pos)   { b.Loc = p }

// Rekind rewrites the node's tag in place. Used when checking converts a
// node to a close relative (call to intrinsic call, subscript to slice).
func (b *base) Rekind(k NodeKind) { b.kind = k }

type exprBase struct {
	base
	typ   *types.Type
	flags Flags
	ent   EntityRef
}

func (e *exprBase) Type() *types.Type       { return e.typ }
func (e *exprBase) SetType(t *types.Type)   { e.typ = t }
func (e *exprBase) HasFlag(f Flags) bool    { return e.flags&f != 0 }
func (e *exprBase) AddFlags(f Flags)        { e.flags |= f }
func (e *exprBase) ClearFlags(f Flags)      { e.flags &^= f }
func (e *exprBase) Entity() EntityRef       { return e.ent }
func (e *exprBase) SetEntity(ref EntityRef) { e.ent = ref }
func (e *exprBase) expressionNode()         {}
func (e *exprBase) statementNode()          {}

type stmtBase struct {
	base
}

func (s *stmtBase) statementNode() {}

type typeExprMarker struct{}

func (typeExprMarker) typeExpressionNode() {}

// Operator enumerates binary operators, including the assignment family
// and the synthetic subscript operators used by overload registration.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual

	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar

	OpBoolAnd
	OpBoolOr

	OpAssign
	OpAssignAdd
	OpAssignSub
	OpAssignMul
	OpAssignDiv
	OpAssignMod
	OpAssignAnd
	OpAssignOr
	OpAssignXor
	OpAssignShl
	OpAssignShr
	OpAssignSar

	OpSubscript
	OpPtrSubscript
	OpSubscriptEquals

	OperatorCount
)

var operatorNames = [OperatorCount]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEqual: "==", OpNotEqual: "!=", OpLess: "<", OpLessEqual: "<=",
	OpGreater: ">", OpGreaterEqual: ">=",
	OpAnd: "&", OpOr: "|", OpXor: "^", OpShl: "<<", OpShr: ">>", OpSar: ">>>",
	OpBoolAnd: "&&", OpBoolOr: "||",
	OpAssign: "=", OpAssignAdd: "+=", OpAssignSub: "-=", OpAssignMul: "*=",
	OpAssignDiv: "/=", OpAssignMod: "%=", OpAssignAnd: "&=", OpAssignOr: "|=",
	OpAssignXor: "^=", OpAssignShl: "<<=", OpAssignShr: ">>=", OpAssignSar: ">>>=",
	OpSubscript: "[]", OpPtrSubscript: "&[]", OpSubscriptEquals: "[]=",
}

func (op Operator) String() string {
	if op >= 0 && op < OperatorCount {
		return operatorNames[op]
	}
	return "?"
}

// IsAssignment reports whether op is in the assignment family.
func (op Operator) IsAssignment() bool { return op >= OpAssign && op <= OpAssignSar }

// IsComparison reports whether op compares its operands.
func (op Operator) IsComparison() bool { return op >= OpEqual && op <= OpGreaterEqual }

// UnderlyingOp maps a compound-assignment operator to the arithmetic
// operator it desugars to. The second result is false for plain operators.
func (op Operator) UnderlyingOp() (Operator, bool) {
	switch op {
	case OpAssignAdd:
		return OpAdd, true
	case OpAssignSub:
		return OpSub, true
	case OpAssignMul:
		return OpMul, true
	case OpAssignDiv:
		return OpDiv, true
	case OpAssignMod:
		return OpMod, true
	case OpAssignAnd:
		return OpAnd, true
	case OpAssignOr:
		return OpOr, true
	case OpAssignXor:
		return OpXor, true
	case OpAssignShl:
		return OpShl, true
	case OpAssignShr:
		return OpShr, true
	case OpAssignSar:
		return OpSar, true
	}
	return op, false
}

// UnaryOperator enumerates unary operators.
type UnaryOperator int

const (
	UnaryNegate UnaryOperator = iota
	UnaryNot
	UnaryBitNot
	UnaryCast
)

func (op UnaryOperator) String() string {
	switch op {
	case UnaryNegate:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryBitNot:
		return "~"
	case UnaryCast:
		return "cast"
	}
	return "?"
}

// NamedValue pairs an argument name with its expression.
type NamedValue struct {
	Name  string
	Value Expression
}

// Arguments is the ordered positional values plus named values used by
// calls, struct literals and operator-overload synthesis.
type Arguments struct {
	Values []Expression
	Named  []*NamedValue
}

// EnsureLength grows Values with empty slots up to n.
func (a *Arguments) EnsureLength(n int) {
	for len(a.Values) < n {
		a.Values = append(a.Values, nil)
	}
}

// Clone copies the argument containers; the value expressions are shared.
func (a *Arguments) Clone() Arguments {
	out := Arguments{}
	out.Values = append(out.Values, a.Values...)
	for _, nv := range a.Named {
		out.Named = append(out.Named, &NamedValue{Name: nv.Name, Value: nv.Value})
	}
	return out
}
