package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func (c *Checker) checkSwitch(n *ast.Switch) Outcome {
	if n.Init != nil {
		if o := c.checkStatement(&n.Init); o.Interrupts() {
			return o
		}
	}
	if o := c.checkExpression(&n.Expr); o.Interrupts() {
		return o
	}
	if o := c.resolveExpressionType(n.Expr); o.Interrupts() {
		return o
	}

	t := n.Expr.Type()
	if n.CaseMap == nil && n.CaseExprs == nil {
		if types.IsInteger(t) || types.IsBool(t) || t.Kind == types.KindEnum {
			n.Kind_ = ast.SwitchInteger
			n.CaseMap = make(map[int64]*ast.Block)
		} else {
			n.Kind_ = ast.SwitchUseEquals
		}
	}

	// Case lowering resumes where a yield left off, so already lowered
	// arms are never registered twice.
	for ; n.YieldReturnIndex < len(n.Cases); n.YieldReturnIndex++ {
		sc := n.Cases[n.YieldReturnIndex]
		if sc.IsDefault {
			if n.Default != nil {
				return c.errorf(sc.Pos(), "switch already has a default case")
			}
			n.Default = sc.Body
			continue
		}
		for vi := range sc.Values {
			if o := c.addCaseToSwitch(n, sc, &sc.Values[vi]); o.Interrupts() {
				return o
			}
		}
	}

	for _, sc := range n.Cases {
		if o := c.checkBlock(sc.Body); o.Interrupts() {
			return o
		}
	}
	return c.checkBlock(n.Default)
}

func (c *Checker) addCaseToSwitch(n *ast.Switch, sc *ast.SwitchCase, place *ast.Expression) Outcome {
	if n.Kind_ == ast.SwitchUseEquals {
		// Arms already lowered for this value are keyed by the value
		// node itself, never by its spelling.
		for _, cc := range n.CaseExprs {
			if cc.Original == *place {
				return OutcomeSuccess
			}
		}
		cmp := ast.Bin(ast.OpEqual, n.Expr, *place)
		cmp.SetPos((*place).Pos())
		var expr ast.Expression = cmp
		if o := c.checkExpression(&expr); o.Interrupts() {
			return o
		}
		if !types.IsBool(expr.Type()) {
			return c.errorf((*place).Pos(), "case comparison did not produce a bool")
		}
		n.CaseExprs = append(n.CaseExprs, &ast.CaseComparison{
			Original:   *place,
			Comparison: expr,
			Body:       sc.Body,
		})
		return OutcomeSuccess
	}

	if rl, ok := (*place).(*ast.RangeLiteral); ok {
		low, o := c.comptimeIntOf(&rl.Low)
		if o.Interrupts() {
			return o
		}
		high, o := c.comptimeIntOf(&rl.High)
		if o.Interrupts() {
			return o
		}
		if low > high {
			return c.errorf(rl.Pos(), "case range is empty, %d is above %d", low, high)
		}
		// A case range covers both endpoints.
		for v := low; v <= high; v++ {
			if o := c.addIntegerCase(n, v, sc.Body, rl.Pos()); o.Interrupts() {
				return o
			}
		}
		return OutcomeSuccess
	}

	if o := c.checkExpression(place); o.Interrupts() {
		return o
	}
	value := *place
	switch c.unifyNodeAndType(place, n.Expr.Type()) {
	case MatchYield:
		return c.yield(value.Pos(), "case value type is not decided yet")
	case MatchFailed:
		if o := c.resolveExpressionType(value); o.Interrupts() {
			return o
		}
		return c.errorf(value.Pos(), "case value of type '%s' does not match the switched '%s'",
			value.Type().Name(), n.Expr.Type().Name())
	}
	value = *place

	if !value.HasFlag(ast.FlagComptime) {
		return c.errorf(value.Pos(), "case values must be known at compile time")
	}
	v, o := integerValueOf(value)
	if o.Interrupts() {
		return c.errorf(value.Pos(), "case values must be integers, booleans or enum values")
	}
	return c.addIntegerCase(n, v, sc.Body, value.Pos())
}

func (c *Checker) addIntegerCase(n *ast.Switch, v int64, body *ast.Block, pos ast.Pos) Outcome {
	if _, taken := n.CaseMap[v]; taken {
		return c.errorf(pos, "duplicate case value %d", v)
	}
	if len(n.CaseMap) == 0 || v < n.MinCase {
		n.MinCase = v
	}
	if len(n.CaseMap) == 0 || v > n.MaxCase {
		n.MaxCase = v
	}
	n.CaseMap[v] = body
	return OutcomeSuccess
}

func integerValueOf(e ast.Expression) (int64, Outcome) {
	switch v := e.(type) {
	case *ast.NumLit:
		if v.IsFloat {
			return 0, OutcomeFailed
		}
		return v.Int, OutcomeSuccess
	case *ast.BoolLit:
		if v.Value {
			return 1, OutcomeSuccess
		}
		return 0, OutcomeSuccess
	}
	return 0, OutcomeFailed
}
