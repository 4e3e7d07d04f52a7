package ast

import "thorn/compiler-go/pkg/types"

// Compact constructors used heavily by tests and by node synthesis in
// the checker. They keep hand-built trees readable.

// Int builds an untyped integer literal.
func Int(v int64) *NumLit { return NewIntLit(v) }

// Flt builds an untyped float literal.
func Flt(v float64) *NumLit { return NewFloatLit(v) }

// Str builds a string literal.
func Str(v string) *StrLit { return NewStrLit(v) }

// Bool builds a boolean literal.
func Bool(v bool) *BoolLit { return NewBoolLit(v) }

// Sym builds an unresolved symbol reference.
func Sym(name string) *Symbol { return NewSymbol(name) }

// Bin builds a binary expression.
func Bin(op Operator, left, right Expression) *Binary { return NewBinary(op, left, right) }

// Un builds a unary expression.
func Un(op UnaryOperator, operand Expression) *Unary { return NewUnary(op, operand) }

// Cast builds a cast of operand to the given type expression.
func Cast(operand Expression, target TypeExpression) *Unary {
	u := NewUnary(UnaryCast, operand)
	u.TargetType = target
	return u
}

// Loc builds a local with an optional declared type.
func Loc(name string, typeExpr TypeExpression) *Local { return NewLocal(name, typeExpr) }

// TypedLocal builds a local whose type is already resolved, bypassing
// type expression building. Tests use it to seed known-typed slots.
func TypedLocal(name string, t *types.Type) *Local {
	l := NewLocal(name, nil)
	l.SetType(t)
	return l
}

// Ty builds a reference to a builtin type.
func Ty(t *types.Type) *NamedType { return NewBuiltinType(t) }

// Ptr builds a pointer type expression.
func Ptr(elem TypeExpression) *PointerType { return NewPointerType(elem) }

// Blk builds a block from statements.
func Blk(stmts ...Statement) *Block { return NewBlock(stmts) }

// Ret builds a return statement.
func Ret(value Expression) *Return { return NewReturn(value) }

// CallTo builds a call with positional arguments only.
func CallTo(callee Expression, args ...Expression) *Call {
	return NewCall(callee, Arguments{Values: args})
}

// P builds a plain parameter.
func P(name string, typeExpr TypeExpression) *Param {
	l := NewLocal(name, typeExpr)
	l.IsParam = true
	return &Param{Local: l}
}

// Fn builds a function with the given parameters, return type and body.
func Fn(name string, params []*Param, ret TypeExpression, body *Block) *Function {
	return NewFunction(name, params, ret, body)
}
