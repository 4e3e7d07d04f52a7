package checker

import (
	"thorn/compiler-go/pkg/ast"
)

// checkConstraint evaluates one interface obligation in two phases.
// Cloning materializes the interface's requirement expressions with the
// constraint's concrete type arguments substituted in; Checking then
// evaluates them one clause at a time. Clause failures are silent: the
// result travels through the Report slot and the owning context decides
// whether anything is worth telling the user.
func (c *Checker) checkConstraint(cons *ast.Constraint) Outcome {
	if cons.Phase == ast.ConstraintCloning {
		iface, o := c.resolveInterface(cons.Interface)
		if o.Interrupts() {
			return o
		}
		if len(cons.TypeArgs) != len(iface.Params) {
			return c.errorf(cons.Pos(), "'%s' expects %d type arguments, got %d",
				iface.Name, len(iface.Params), len(cons.TypeArgs))
		}
		subst := ast.Subst{}
		for i, p := range iface.Params {
			t, o := c.buildType(cons.TypeArgs[i])
			if o.Interrupts() {
				return o
			}
			subst[p.TypeName] = t
		}
		cons.Clauses = cons.Clauses[:0]
		for _, cl := range iface.Clauses {
			cons.Clauses = append(cons.Clauses, ast.CloneClause(cl, subst))
		}
		cons.ClauseIdx = 0
		cons.Phase = ast.ConstraintChecking
	}

	// Every diagnostic produced while probing clauses is captured and
	// thrown away; a failed clause reports through the status slot.
	c.reporter.PushBuffer()
	defer c.reporter.PopDiscard()

	for ; cons.ClauseIdx < len(cons.Clauses); cons.ClauseIdx++ {
		cl := cons.Clauses[cons.ClauseIdx]

		pass := true
		switch o := c.checkExpression(&cl.Expr); {
		case o == OutcomeYield || o == OutcomeReturnToSymres:
			return c.yield(cons.Pos(), "constraint clause cannot be decided yet")
		case o.Interrupts():
			pass = false
		}

		if pass && cl.ExpectedTypeExpr != nil {
			expected, o := c.buildType(cl.ExpectedTypeExpr)
			if o == OutcomeYield {
				return c.yield(cons.Pos(), "constraint clause cannot be decided yet")
			}
			if o.Interrupts() {
				pass = false
			} else {
				switch c.unifyNodeAndType(&cl.Expr, expected) {
				case MatchSuccess:
				case MatchYield:
					return c.yield(cons.Pos(), "constraint clause cannot be decided yet")
				default:
					pass = false
				}
			}
		}

		if cl.Invert {
			pass = !pass
		}
		if !pass {
			*cons.Report = ast.ConstraintFailed
			c.reporter.ClearPending()
			return OutcomeComplete
		}
		c.reporter.ClearPending()
	}

	*cons.Report = ast.ConstraintSucceeded
	return OutcomeComplete
}

func (c *Checker) resolveInterface(expr ast.Expression) (*ast.Interface, Outcome) {
	for {
		switch n := expr.(type) {
		case *ast.Interface:
			return n, OutcomeSuccess
		case *ast.Alias:
			expr = n.Target
		case *ast.Symbol:
			if ref := n.Entity(); ref != nil && ref.Pending() {
				return nil, c.yield(n.Pos(), "'%s' is not resolved yet", n.Name)
			}
			return nil, c.errorf(n.Pos(), "'%s' does not name an interface", n.Name)
		default:
			return nil, c.errorf(expr.Pos(), "expected an interface here")
		}
	}
}

// checkConstraintContext drives every constraint of a context to a
// verdict. The first call wires the status slots and schedules the
// constraint entities; later calls poll until all verdicts are in.
func (c *Checker) checkConstraintContext(ctx *ast.ConstraintContext, pos ast.Pos) Outcome {
	if ctx == nil || ctx.Met {
		return OutcomeSuccess
	}
	if ctx.Checks == nil {
		ctx.Checks = make([]ast.ConstraintStatus, len(ctx.Constraints))
		for i, cons := range ctx.Constraints {
			cons.Report = &ctx.Checks[i]
			c.enqueue(NewConstraintEntity(cons))
		}
	}

	pending := false
	for i, status := range ctx.Checks {
		switch status {
		case ast.ConstraintQueued:
			pending = true
		case ast.ConstraintFailed:
			cons := ctx.Constraints[i]
			if ctx.ProduceErrors {
				return c.errorf(cons.Pos(), "constraint '%s' is not satisfied", constraintName(cons))
			}
			return OutcomeFailed
		}
	}
	if pending {
		return c.yield(pos, "constraints are not all decided yet")
	}
	ctx.Met = true
	return OutcomeSuccess
}

func constraintName(cons *ast.Constraint) string {
	if iface, ok := cons.Interface.(*ast.Interface); ok {
		return iface.Name
	}
	if sym, ok := cons.Interface.(*ast.Symbol); ok {
		return sym.Name
	}
	return "<interface>"
}
