package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// checkExpression checks the expression stored at place, rewriting it
// when checking demands a different node. Checked nodes are flagged and
// skipped on re-entry, which keeps retried passes from redoing work and
// from reapplying one-shot rewrites.
func (c *Checker) checkExpression(place *ast.Expression) Outcome {
	expr := *place
	if expr == nil {
		return OutcomeSuccess
	}
	if expr.HasFlag(ast.FlagChecked) {
		return OutcomeSuccess
	}

	if expr.Kind().IsTypeKind() {
		te, ok := expr.(ast.TypeExpression)
		if !ok {
			return c.errorf(expr.Pos(), "malformed type expression")
		}
		if _, o := c.buildType(te); o.Interrupts() {
			return o
		}
		expr.AddFlags(ast.FlagChecked | ast.FlagComptime)
		return OutcomeSuccess
	}

	var o Outcome
	switch n := expr.(type) {
	case *ast.Symbol:
		o = c.checkSymbol(n)
	case *ast.Local:
		o = c.checkLocal(n)
	case *ast.Global:
		o = c.checkGlobalUse(n)
	case *ast.NumLit, *ast.ZeroValue:
		o = OutcomeSuccess
	case *ast.StrLit:
		n.SetType(c.builtins.Str)
		o = OutcomeSuccess
	case *ast.BoolLit:
		n.SetType(types.Basic(types.BasicBool))
		o = OutcomeSuccess
	case *ast.StructLiteral:
		o = c.checkStructLiteral(place, n)
	case *ast.ArrayLiteral:
		o = c.checkArrayLiteral(n)
	case *ast.RangeLiteral:
		o = c.checkRangeLiteral(place, n)
	case *ast.Binary:
		o = c.checkBinaryOp(place, n)
	case *ast.Unary:
		o = c.checkUnary(place, n)
	case *ast.Call:
		o = c.checkCall(place, n)
	case *ast.MethodCall:
		o = c.checkMethodCall(place, n)
	case *ast.AddressOf:
		o = c.checkAddressOf(place, n)
	case *ast.Dereference:
		o = c.checkDereference(n)
	case *ast.Subscript:
		o = c.checkSubscript(place, n)
	case *ast.FieldAccess:
		o = c.checkFieldAccess(place, n)
	case *ast.Compound:
		o = c.checkCompound(n)
	case *ast.IfExpression:
		o = c.checkIfExpression(n)
	case *ast.DoBlock:
		o = c.checkDoBlock(n)
	case *ast.SizeOf:
		o = c.checkSizeOf(n)
	case *ast.AlignOf:
		o = c.checkAlignOf(n)
	case *ast.Alias:
		o = c.checkAlias(n)
	case *ast.CallSite:
		n.SetType(c.builtins.CallSite)
		n.AddFlags(ast.FlagComptime)
		o = OutcomeSuccess
	case *ast.AutoCast:
		o = c.checkExpression(&n.Operand)
		if o == OutcomeSuccess && n.Type() == nil {
			// Carry the operand's type so unification can judge the
			// requested conversion.
			n.SetType(n.Operand.Type())
		}
	case *ast.Function:
		o = c.checkFunctionUse(n)
	case *ast.OverloadedFunction, *ast.PolyProc, *ast.Macro:
		// Callables resolve at their call sites.
		o = OutcomeSuccess
	case *ast.ConstraintSentinel:
		o = c.checkConstraintSentinel(n)
	case *ast.EnumValue:
		o = c.checkEnumValue(n)
	case *ast.ErrorNode:
		o = OutcomeFailed
	default:
		o = c.errorf(expr.Pos(), "internal: cannot check expression of kind %s", expr.Kind())
	}

	if o == OutcomeSuccess {
		(*place).AddFlags(ast.FlagChecked)
	}
	return o
}

func (c *Checker) checkSymbol(n *ast.Symbol) Outcome {
	if ref := n.Entity(); ref != nil && ref.Pending() {
		return c.yield(n.Pos(), "'%s' is not ready yet", n.Name)
	}
	if n.Type() == nil {
		return c.yield(n.Pos(), "cannot resolve symbol '%s'", n.Name)
	}
	return OutcomeSuccess
}

func (c *Checker) checkLocal(n *ast.Local) Outcome {
	if n.Type() != nil {
		return OutcomeSuccess
	}
	if n.TypeExpr == nil {
		// Untyped local; the first assignment infers its type.
		return OutcomeSuccess
	}
	t, o := c.buildType(n.TypeExpr)
	if o.Interrupts() {
		return o
	}
	n.SetType(t)
	return OutcomeSuccess
}

func (c *Checker) checkGlobalUse(n *ast.Global) Outcome {
	if n.Type() != nil {
		return OutcomeSuccess
	}
	if n.TypeEntity != nil && n.TypeEntity.Pending() {
		return c.yield(n.Pos(), "global '%s' does not have a type yet", n.Name)
	}
	return c.yield(n.Pos(), "global '%s' does not have a type yet", n.Name)
}

func (c *Checker) checkUnary(place *ast.Expression, n *ast.Unary) Outcome {
	if o := c.checkExpression(&n.Operand); o.Interrupts() {
		return o
	}

	if n.Op == ast.UnaryCast {
		target, o := c.buildType(n.TargetType)
		if o.Interrupts() {
			return o
		}
		if c.unifyNodeAndType(&n.Operand, target) == MatchSuccess {
			n.SetType(target)
			return OutcomeSuccess
		}
		if o := c.resolveExpressionType(n.Operand); o.Interrupts() {
			return o
		}
		if !castLegal(n.Operand.Type(), target) {
			return c.errorf(n.Pos(), "cannot cast from '%s' to '%s'",
				n.Operand.Type().Name(), target.Name())
		}
		n.SetType(target)
		if n.Operand.HasFlag(ast.FlagComptime) {
			n.AddFlags(ast.FlagComptime)
		}
		return OutcomeSuccess
	}

	if o := c.resolveExpressionType(n.Operand); o.Interrupts() {
		return o
	}
	t := n.Operand.Type()
	switch n.Op {
	case ast.UnaryNegate:
		if !types.IsNumeric(t) {
			return c.errorf(n.Pos(), "cannot negate a '%s'", t.Name())
		}
	case ast.UnaryNot:
		if !types.IsBool(t) {
			return c.errorf(n.Pos(), "'!' expects a bool, got '%s'", t.Name())
		}
	case ast.UnaryBitNot:
		if !types.IsInteger(t) {
			return c.errorf(n.Pos(), "'~' expects an integer, got '%s'", t.Name())
		}
	}
	n.SetType(t)
	if n.Operand.HasFlag(ast.FlagComptime) {
		n.AddFlags(ast.FlagComptime)
		if folded := foldUnary(n); folded != nil {
			*place = folded
		}
	}
	return OutcomeSuccess
}

// foldUnary collapses a compile-time unary onto its literal operand.
func foldUnary(n *ast.Unary) ast.Expression {
	switch operand := n.Operand.(type) {
	case *ast.NumLit:
		var lit *ast.NumLit
		switch {
		case n.Op == ast.UnaryNegate && operand.IsFloat:
			lit = ast.Flt(-operand.Float)
		case n.Op == ast.UnaryNegate:
			lit = ast.Int(-operand.Int)
		case n.Op == ast.UnaryBitNot && !operand.IsFloat:
			lit = ast.Int(^operand.Int)
		default:
			return nil
		}
		lit.SetPos(n.Pos())
		lit.SetType(n.Type())
		lit.AddFlags(ast.FlagChecked)
		return lit
	case *ast.BoolLit:
		if n.Op != ast.UnaryNot {
			return nil
		}
		lit := ast.Bool(!operand.Value)
		lit.SetPos(n.Pos())
		lit.SetType(types.Basic(types.BasicBool))
		lit.AddFlags(ast.FlagChecked)
		return lit
	}
	return nil
}

func (c *Checker) checkCompound(n *ast.Compound) Outcome {
	all := true
	for i := range n.Exprs {
		if o := c.checkExpression(&n.Exprs[i]); o.Interrupts() {
			return o
		}
		if n.Exprs[i].Type() == nil {
			all = false
		}
	}
	if all {
		members := make([]*types.Type, len(n.Exprs))
		for i, e := range n.Exprs {
			members[i] = e.Type()
		}
		n.SetType(types.MakeCompound(members))
	}
	return OutcomeSuccess
}

func (c *Checker) checkIfExpression(n *ast.IfExpression) Outcome {
	if o := c.checkExpression(&n.Cond); o.Interrupts() {
		return o
	}
	if !types.IsBool(n.Cond.Type()) {
		return c.errorf(n.Cond.Pos(), "if expression condition must be a bool")
	}
	if o := c.checkExpression(&n.TrueExpr); o.Interrupts() {
		return o
	}
	if o := c.checkExpression(&n.FalseExpr); o.Interrupts() {
		return o
	}

	// Let a typed branch give the untyped one its type.
	if n.TrueExpr.Type() != nil && n.FalseExpr.Type() == nil {
		c.unifyNodeAndType(&n.FalseExpr, n.TrueExpr.Type())
	} else if n.FalseExpr.Type() != nil && n.TrueExpr.Type() == nil {
		c.unifyNodeAndType(&n.TrueExpr, n.FalseExpr.Type())
	}
	if n.TrueExpr.Type() != nil && n.FalseExpr.Type() != nil {
		if !types.Compatible(n.TrueExpr.Type(), n.FalseExpr.Type()) {
			return c.errorf(n.Pos(), "branches of if expression differ in type, '%s' against '%s'",
				n.TrueExpr.Type().Name(), n.FalseExpr.Type().Name())
		}
		n.SetType(n.TrueExpr.Type())
	}
	return OutcomeSuccess
}

func (c *Checker) checkDoBlock(n *ast.DoBlock) Outcome {
	if n.TypeExpr != nil && n.Type() == nil {
		t, o := c.buildType(n.TypeExpr)
		if o.Interrupts() {
			return o
		}
		n.SetType(t)
	}
	if o := c.checkBlock(n.Body); o.Interrupts() {
		return o
	}
	if n.Type() == nil {
		n.SetType(types.Basic(types.BasicVoid))
	}
	return OutcomeSuccess
}

func (c *Checker) checkSizeOf(n *ast.SizeOf) Outcome {
	t, o := c.buildType(n.Query)
	if o.Interrupts() {
		return o
	}
	n.Size = t.Size()
	n.SetType(types.Basic(types.BasicI32))
	n.AddFlags(ast.FlagComptime)
	return OutcomeSuccess
}

func (c *Checker) checkAlignOf(n *ast.AlignOf) Outcome {
	t, o := c.buildType(n.Query)
	if o.Interrupts() {
		return o
	}
	n.Alignment = t.Alignment()
	n.SetType(types.Basic(types.BasicI32))
	n.AddFlags(ast.FlagComptime)
	return OutcomeSuccess
}

func (c *Checker) checkAlias(n *ast.Alias) Outcome {
	if o := c.checkExpression(&n.Target); o.Interrupts() {
		return o
	}
	n.SetType(n.Target.Type())
	if n.Target.HasFlag(ast.FlagComptime) {
		n.AddFlags(ast.FlagComptime)
	}
	n.SetEntity(n.Target.Entity())
	return OutcomeSuccess
}

func (c *Checker) checkFunctionUse(n *ast.Function) Outcome {
	if n.Type() == nil {
		if n.HeaderEntity != nil && !n.HeaderEntity.Pending() {
			return OutcomeFailed
		}
		return c.yield(n.Pos(), "function '%s' does not have a type yet", n.Name)
	}
	n.AddFlags(ast.FlagFunctionUsed)
	return OutcomeSuccess
}

func (c *Checker) checkConstraintSentinel(n *ast.ConstraintSentinel) Outcome {
	if n.Type() != nil {
		return OutcomeSuccess
	}
	t, o := c.buildType(n.TypeExpr)
	if o.Interrupts() {
		return o
	}
	n.SetType(t)
	return OutcomeSuccess
}

// checkEnumValue checks one declared value of an enum. The value feeds
// the member's backing constant, so it must be a comptime integer.
func (c *Checker) checkEnumValue(n *ast.EnumValue) Outcome {
	if o := c.checkExpression(&n.Value); o.Interrupts() {
		return o
	}
	if o := c.resolveExpressionType(n.Value); o.Interrupts() {
		return o
	}
	if !n.Value.HasFlag(ast.FlagComptime) {
		return c.errorf(n.Pos(), "value of enum member '%s' must be known at compile time", n.Name)
	}
	t := n.Value.Type()
	if !types.IsInteger(t) {
		return c.errorf(n.Pos(), "value of enum member '%s' must be an integer, got '%s'", n.Name, t.Name())
	}
	n.SetType(t)
	n.AddFlags(ast.FlagComptime)
	return OutcomeSuccess
}
