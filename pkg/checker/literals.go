package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func (c *Checker) checkStructLiteral(place *ast.Expression, n *ast.StructLiteral) Outcome {
	if n.TypeExpr == nil {
		// No type named; the surrounding context supplies one through
		// unification.
		return OutcomeSuccess
	}
	t, o := c.buildType(n.TypeExpr)
	if o.Interrupts() {
		return o
	}

	if types.StructOf(t) == nil {
		if len(n.Args.Values) == 0 && len(n.Args.Named) == 0 {
			zero := ast.NewZeroValue()
			zero.SetPos(n.Pos())
			zero.SetType(t)
			zero.AddFlags(ast.FlagChecked | ast.FlagComptime)
			*place = zero
			return OutcomeSuccess
		}
		return c.errorf(n.Pos(), "cannot construct a '%s' with arguments", t.Name())
	}
	return c.checkStructLiteralAgainst(n, t)
}

// checkStructLiteralAgainst checks a struct literal's members against a
// known struct type. Used both directly and when a deferred literal
// receives its type from context.
func (c *Checker) checkStructLiteralAgainst(n *ast.StructLiteral, t *types.Type) Outcome {
	info := types.StructOf(t)
	if info == nil {
		return c.errorf(n.Pos(), "'%s' is not a struct type", t.Name())
	}
	if info.Status != types.StructUsesDone {
		return c.yield(n.Pos(), "members of '%s' are not all in place yet", info.Name)
	}

	for _, nv := range n.Args.Named {
		m, ok := info.Member(nv.Name)
		if !ok {
			return c.errorf(nv.Value.Pos(), "'%s' has no member named '%s'", info.Name, nv.Name)
		}
		n.Args.EnsureLength(m.Idx + 1)
		if n.Args.Values[m.Idx] != nil {
			return c.errorf(nv.Value.Pos(), "member '%s' was given twice", nv.Name)
		}
		n.Args.Values[m.Idx] = nv.Value
	}
	n.Args.Named = nil

	if len(n.Args.Values) > len(info.Members) {
		return c.errorf(n.Pos(), "too many values for '%s', expected at most %d", info.Name, len(info.Members))
	}

	for i, m := range info.Members {
		if i >= len(n.Args.Values) || n.Args.Values[i] == nil {
			if m.HasDefault {
				continue
			}
			return c.errorf(n.Pos(), "no value given for member '%s' of '%s'", m.Name, info.Name)
		}
		if o := c.checkExpression(&n.Args.Values[i]); o.Interrupts() {
			return o
		}
		switch c.unifyNodeAndType(&n.Args.Values[i], m.Type) {
		case MatchSuccess:
		case MatchYield:
			return c.yield(n.Args.Values[i].Pos(), "member '%s' value type is not decided yet", m.Name)
		default:
			if o := c.resolveExpressionType(n.Args.Values[i]); o.Interrupts() {
				return o
			}
			return c.errorf(n.Args.Values[i].Pos(), "cannot use a '%s' for member '%s' of type '%s'",
				n.Args.Values[i].Type().Name(), m.Name, m.Type.Name())
		}
	}

	// The literal is compile-time only when every member value is; this
	// is decided strictly after all members have been checked.
	comptime := true
	for _, v := range n.Args.Values {
		if v != nil && !v.HasFlag(ast.FlagComptime) {
			comptime = false
		}
	}
	if comptime {
		n.AddFlags(ast.FlagComptime)
	}
	n.SetType(t)
	n.AddFlags(ast.FlagChecked)
	return OutcomeSuccess
}

func (c *Checker) checkArrayLiteral(n *ast.ArrayLiteral) Outcome {
	for i := range n.Values {
		if o := c.checkExpression(&n.Values[i]); o.Interrupts() {
			return o
		}
	}

	if n.ElemTypeExpr != nil && !n.HasFlag(ast.FlagArrayLiteralTyped) {
		elem, o := c.buildType(n.ElemTypeExpr)
		if o.Interrupts() {
			return o
		}
		for i := range n.Values {
			switch c.unifyNodeAndType(&n.Values[i], elem) {
			case MatchSuccess:
			case MatchYield:
				return c.yield(n.Values[i].Pos(), "array element type is not decided yet")
			default:
				if o := c.resolveExpressionType(n.Values[i]); o.Interrupts() {
					return o
				}
				return c.errorf(n.Values[i].Pos(), "array of '%s' cannot hold a '%s'",
					elem.Name(), n.Values[i].Type().Name())
			}
		}
		n.SetType(types.MakeArray(elem, len(n.Values)))
		n.AddFlags(ast.FlagArrayLiteralTyped)
	}

	comptime := true
	for _, v := range n.Values {
		if !v.HasFlag(ast.FlagComptime) {
			comptime = false
		}
	}
	if comptime {
		n.AddFlags(ast.FlagComptime)
	}
	return OutcomeSuccess
}

// checkRangeLiteral types `low .. high` as the builtin range struct,
// synthesizing the default step of 1 when none was written.
func (c *Checker) checkRangeLiteral(place *ast.Expression, n *ast.RangeLiteral) Outcome {
	i32 := types.Basic(types.BasicI32)

	if n.Step == nil {
		step := ast.Int(1)
		step.SetPos(n.Pos())
		n.Step = step
	}
	for _, part := range []struct {
		what  string
		place *ast.Expression
	}{
		{"lower bound", &n.Low},
		{"upper bound", &n.High},
		{"step", &n.Step},
	} {
		if o := c.checkExpression(part.place); o.Interrupts() {
			return o
		}
		switch c.unifyNodeAndType(part.place, i32) {
		case MatchSuccess:
		case MatchYield:
			return c.yield((*part.place).Pos(), "range %s type is not decided yet", part.what)
		default:
			return c.errorf((*part.place).Pos(), "range %s must be an i32, got '%s'",
				part.what, (*part.place).Type().Name())
		}
	}

	if n.Low.HasFlag(ast.FlagComptime) && n.High.HasFlag(ast.FlagComptime) && n.Step.HasFlag(ast.FlagComptime) {
		n.AddFlags(ast.FlagComptime)
	}
	n.SetType(c.builtins.Range)
	return OutcomeSuccess
}
