package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func (c *Checker) checkBinaryOp(place *ast.Expression, n *ast.Binary) Outcome {
	if n.Op.IsAssignment() {
		return c.checkBinaryAssignment(place, n)
	}

	if o := c.checkExpression(&n.Left); o.Interrupts() {
		return o
	}
	if o := c.checkExpression(&n.Right); o.Interrupts() {
		return o
	}

	// Struct-like operands route through operator overloads before any
	// builtin rule is considered.
	if c.shouldTryOverload(n) {
		switch o := c.binaryopTryOperatorOverload(place, n, n.Op); o {
		case OutcomeSuccess:
			return OutcomeSuccess
		case OutcomeYield:
			return c.yield(n.Pos(), "operator overload for '%s' is not resolved yet", n.Op)
		case OutcomeFailed:
			// No overload matched; fall through to builtin rules.
		default:
			if o.Interrupts() {
				return o
			}
		}
	}

	if n.Op == ast.OpBoolAnd || n.Op == ast.OpBoolOr {
		return c.checkBinaryBool(place, n)
	}
	if n.Op.IsComparison() {
		return c.checkBinaryCompare(place, n)
	}
	return c.checkBinaryArith(place, n)
}

// shouldTryOverload reports whether either operand could select an
// operator overload.
func (c *Checker) shouldTryOverload(n *ast.Binary) bool {
	if len(c.overloads[n.Op]) == 0 {
		return false
	}
	return types.IsStructLike(n.Left.Type()) || types.IsStructLike(n.Right.Type())
}

func (c *Checker) checkBinaryBool(place *ast.Expression, n *ast.Binary) Outcome {
	if !types.IsBool(n.Left.Type()) || !types.IsBool(n.Right.Type()) {
		return c.errorf(n.Pos(), "'%s' expects bool operands, got '%s' and '%s'",
			n.Op, n.Left.Type().Name(), n.Right.Type().Name())
	}
	n.SetType(types.Basic(types.BasicBool))
	c.foldIfComptime(place, n)
	return OutcomeSuccess
}

func (c *Checker) checkBinaryCompare(place *ast.Expression, n *ast.Binary) Outcome {
	lt, rt := n.Left.Type(), n.Right.Type()

	// Two typed pointers compare as raw addresses.
	if types.IsPointer(lt) && types.IsPointer(rt) {
		n.SetType(types.Basic(types.BasicBool))
		return OutcomeSuccess
	}

	if lt == nil && rt != nil {
		if c.unifyNodeAndType(&n.Left, rt) == MatchFailed {
			return c.compareTypeError(n)
		}
	} else if rt == nil && lt != nil {
		if c.unifyNodeAndType(&n.Right, lt) == MatchFailed {
			return c.compareTypeError(n)
		}
	} else if lt == nil && rt == nil {
		if o := c.resolveExpressionType(n.Left); o.Interrupts() {
			return o
		}
		if c.unifyNodeAndType(&n.Right, n.Left.Type()) == MatchFailed {
			return c.compareTypeError(n)
		}
	}
	lt, rt = n.Left.Type(), n.Right.Type()

	if !types.Compatible(lt, rt) {
		// One side may still fit through an automatic conversion.
		if c.unifyNodeAndType(&n.Right, lt) != MatchSuccess &&
			c.unifyNodeAndType(&n.Left, rt) != MatchSuccess {
			return c.compareTypeError(n)
		}
		lt = n.Left.Type()
	}

	flags := types.BasicFlagsOf(lt)
	if n.Op == ast.OpEqual || n.Op == ast.OpNotEqual {
		if flags&types.FlagEquality == 0 && lt.Kind != types.KindEnum {
			return c.errorf(n.Pos(), "'%s' values cannot be compared for equality", lt.Name())
		}
	} else if flags&types.FlagOrdered == 0 {
		return c.errorf(n.Pos(), "'%s' values are not ordered", lt.Name())
	}

	n.SetType(types.Basic(types.BasicBool))
	c.foldIfComptime(place, n)
	return OutcomeSuccess
}

func (c *Checker) compareTypeError(n *ast.Binary) Outcome {
	return c.errorf(n.Pos(), "cannot compare '%s' against '%s'",
		n.Left.Type().Name(), n.Right.Type().Name())
}

func (c *Checker) checkBinaryArith(place *ast.Expression, n *ast.Binary) Outcome {
	lt, rt := n.Left.Type(), n.Right.Type()

	// Pointer arithmetic scales the integer operand by the element
	// size, so later stages treat addresses as plain integers.
	if types.IsPointer(lt) && (n.Op == ast.OpAdd || n.Op == ast.OpSub) {
		return c.checkPointerArith(n, &n.Right, lt)
	}
	if types.IsPointer(rt) && n.Op == ast.OpAdd {
		return c.checkPointerArith(n, &n.Left, rt)
	}

	if lt == nil && rt == nil {
		if o := c.resolveExpressionType(n.Left); o.Interrupts() {
			return o
		}
		lt = n.Left.Type()
	}
	if lt == nil {
		if c.unifyNodeAndType(&n.Left, rt) == MatchFailed {
			return c.arithTypeError(n)
		}
		lt = n.Left.Type()
	}
	if c.unifyNodeAndType(&n.Right, lt) == MatchFailed {
		if c.unifyNodeAndType(&n.Left, n.Right.Type()) != MatchSuccess {
			return c.arithTypeError(n)
		}
		lt = n.Left.Type()
	}

	flags := types.BasicFlagsOf(lt)
	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if flags&types.FlagNumeric == 0 {
			return c.arithTypeError(n)
		}
	default:
		// Modulo, bitwise and shift operators want integers.
		if flags&types.FlagInteger == 0 {
			return c.arithTypeError(n)
		}
	}

	n.SetType(lt)
	c.foldIfComptime(place, n)
	return OutcomeSuccess
}

func (c *Checker) arithTypeError(n *ast.Binary) Outcome {
	return c.errorf(n.Pos(), "invalid operands for '%s', '%s' and '%s'",
		n.Op, n.Left.Type().Name(), n.Right.Type().Name())
}

// checkPointerArith rewrites the integer side of pointer addition or
// subtraction into `offset * size_of(elem)`.
func (c *Checker) checkPointerArith(n *ast.Binary, intSide *ast.Expression, ptrType *types.Type) Outcome {
	if c.unifyNodeAndType(intSide, types.Basic(types.BasicI64)) == MatchFailed {
		if !types.IsInteger((*intSide).Type()) {
			return c.errorf(n.Pos(), "pointer arithmetic needs an integer offset, got '%s'",
				(*intSide).Type().Name())
		}
	}
	size := ast.Int(int64(ptrType.Elem.Size()))
	size.SetType((*intSide).Type())
	size.AddFlags(ast.FlagChecked)
	scaled := ast.Bin(ast.OpMul, *intSide, size)
	scaled.SetPos((*intSide).Pos())
	scaled.SetType((*intSide).Type())
	scaled.AddFlags(ast.FlagChecked)
	*intSide = scaled
	n.SetType(ptrType)
	return OutcomeSuccess
}

func (c *Checker) checkBinaryAssignment(place *ast.Expression, n *ast.Binary) Outcome {
	if c.level == expressionLevel {
		return c.errorf(n.Pos(), "assignment is not allowed inside an expression")
	}

	// `a[i] = v` on a struct-like container may be claimed by a `[]=`
	// overload before the subscript target is lowered.
	if sub, ok := n.Left.(*ast.Subscript); ok && n.Op == ast.OpAssign &&
		!sub.HasFlag(ast.FlagChecked) && len(c.overloads[ast.OpSubscriptEquals]) > 0 {
		switch o := c.trySubscriptAssignOverload(place, n, sub); o {
		case OutcomeSuccess:
			return OutcomeSuccess
		case OutcomeFailed:
			// Not claimed; continue as a plain assignment.
		default:
			if o.Interrupts() {
				return o
			}
		}
	}

	if o := c.checkExpression(&n.Left); o.Interrupts() {
		return o
	}
	if o := c.checkExpression(&n.Right); o.Interrupts() {
		return o
	}
	if !isLValue(n.Left) {
		return c.errorf(n.Left.Pos(), "cannot assign to this expression")
	}

	// `a[i] op= v` and struct compound assignments may be claimed by an
	// operator overload before any desugaring happens.
	if n.Op != ast.OpAssign && c.shouldTryOverload(n) {
		switch o := c.binaryopTryOperatorOverload(place, n, n.Op); o {
		case OutcomeSuccess:
			return OutcomeSuccess
		case OutcomeYield:
			return c.yield(n.Pos(), "operator overload for '%s' is not resolved yet", n.Op)
		default:
			if o.Interrupts() && o != OutcomeFailed {
				return o
			}
		}
	}

	if n.Op != ast.OpAssign {
		// Compound assignment desugars to `left = left op right`.
		under, _ := n.Op.UnderlyingOp()
		inner := ast.Bin(under, n.Left, n.Right)
		inner.SetPos(n.Pos())
		n.Op = ast.OpAssign
		n.Right = inner
		if o := c.checkExpression(&n.Right); o.Interrupts() {
			return o
		}
	}

	if n.Left.Type() == nil {
		// Declaration-style assignment; the right side decides the type.
		if o := c.resolveExpressionType(n.Right); o.Interrupts() {
			return o
		}
		rt := n.Right.Type()
		if rt == nil || types.Compatible(rt, types.Basic(types.BasicVoid)) {
			return c.errorf(n.Pos(), "cannot assign a void value")
		}
		n.Left.SetType(rt)
	} else {
		switch c.unifyNodeAndType(&n.Right, n.Left.Type()) {
		case MatchYield:
			return c.yield(n.Pos(), "assignment value type is not decided yet")
		case MatchFailed:
			if o := c.resolveExpressionType(n.Right); o.Interrupts() {
				return o
			}
			return c.errorf(n.Pos(), "cannot assign '%s' to '%s'",
				n.Right.Type().Name(), n.Left.Type().Name())
		}
	}

	n.SetType(types.Basic(types.BasicVoid))
	return OutcomeSuccess
}

// isLValue decides whether an expression denotes assignable storage.
func isLValue(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Local:
		return !n.HasFlag(ast.FlagConst)
	case *ast.Global:
		return true
	case *ast.Dereference, *ast.Subscript:
		return true
	case *ast.FieldAccess:
		return isLValue(n.Operand) || types.IsPointer(n.Operand.Type())
	case *ast.Symbol:
		return true
	case *ast.Alias:
		return isLValue(n.Target)
	}
	return false
}

// foldIfComptime replaces a fully compile-time binary with its literal
// value and propagates the comptime flag otherwise.
func (c *Checker) foldIfComptime(place *ast.Expression, n *ast.Binary) {
	if !n.Left.HasFlag(ast.FlagComptime) || !n.Right.HasFlag(ast.FlagComptime) {
		return
	}
	n.AddFlags(ast.FlagComptime)
	if folded := foldBinary(n); folded != nil {
		*place = folded
	}
}

func foldBinary(n *ast.Binary) ast.Expression {
	finish := func(e ast.Expression) ast.Expression {
		e.SetPos(n.Pos())
		e.AddFlags(ast.FlagChecked | ast.FlagComptime)
		return e
	}

	if lb, ok := n.Left.(*ast.BoolLit); ok {
		rb, ok := n.Right.(*ast.BoolLit)
		if !ok {
			return nil
		}
		var v bool
		switch n.Op {
		case ast.OpBoolAnd:
			v = lb.Value && rb.Value
		case ast.OpBoolOr:
			v = lb.Value || rb.Value
		case ast.OpEqual:
			v = lb.Value == rb.Value
		case ast.OpNotEqual:
			v = lb.Value != rb.Value
		default:
			return nil
		}
		lit := ast.Bool(v)
		lit.SetType(types.Basic(types.BasicBool))
		return finish(lit)
	}

	ln, ok := n.Left.(*ast.NumLit)
	if !ok {
		return nil
	}
	rn, ok := n.Right.(*ast.NumLit)
	if !ok {
		return nil
	}

	if n.Op.IsComparison() {
		var v bool
		if ln.IsFloat || rn.IsFloat {
			l, r := numAsFloat(ln), numAsFloat(rn)
			switch n.Op {
			case ast.OpEqual:
				v = l == r
			case ast.OpNotEqual:
				v = l != r
			case ast.OpLess:
				v = l < r
			case ast.OpLessEqual:
				v = l <= r
			case ast.OpGreater:
				v = l > r
			case ast.OpGreaterEqual:
				v = l >= r
			}
		} else {
			l, r := ln.Int, rn.Int
			switch n.Op {
			case ast.OpEqual:
				v = l == r
			case ast.OpNotEqual:
				v = l != r
			case ast.OpLess:
				v = l < r
			case ast.OpLessEqual:
				v = l <= r
			case ast.OpGreater:
				v = l > r
			case ast.OpGreaterEqual:
				v = l >= r
			}
		}
		lit := ast.Bool(v)
		lit.SetType(types.Basic(types.BasicBool))
		return finish(lit)
	}

	if ln.IsFloat || rn.IsFloat {
		l, r := numAsFloat(ln), numAsFloat(rn)
		var v float64
		switch n.Op {
		case ast.OpAdd:
			v = l + r
		case ast.OpSub:
			v = l - r
		case ast.OpMul:
			v = l * r
		case ast.OpDiv:
			if r == 0 {
				return nil
			}
			v = l / r
		default:
			return nil
		}
		lit := ast.Flt(v)
		lit.SetType(n.Type())
		return finish(lit)
	}

	l, r := ln.Int, rn.Int
	var v int64
	switch n.Op {
	case ast.OpAdd:
		v = l + r
	case ast.OpSub:
		v = l - r
	case ast.OpMul:
		v = l * r
	case ast.OpDiv:
		if r == 0 {
			return nil
		}
		v = l / r
	case ast.OpMod:
		if r == 0 {
			return nil
		}
		v = l % r
	case ast.OpAnd:
		v = l & r
	case ast.OpOr:
		v = l | r
	case ast.OpXor:
		v = l ^ r
	case ast.OpShl:
		v = l << uint64(r)
	case ast.OpShr:
		v = int64(uint64(l) >> uint64(r))
	case ast.OpSar:
		v = l >> uint64(r)
	default:
		return nil
	}
	lit := ast.Int(v)
	lit.SetType(n.Type())
	return finish(lit)
}

func numAsFloat(n *ast.NumLit) float64 {
	if n.IsFloat {
		return n.Float
	}
	return float64(n.Int)
}
