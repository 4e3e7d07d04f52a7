package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// checkBlock checks statements in order, resuming from where a previous
// attempt was interrupted.
func (c *Checker) checkBlock(b *ast.Block) Outcome {
	if b == nil {
		return OutcomeSuccess
	}
	for b.StatementIdx < len(b.Body) {
		if o := c.checkStatement(&b.Body[b.StatementIdx]); o.Interrupts() {
			return o
		}
		b.StatementIdx++
	}
	return OutcomeSuccess
}

func (c *Checker) checkStatement(place *ast.Statement) Outcome {
	switch n := (*place).(type) {
	case *ast.Block:
		return c.checkBlock(n)
	case *ast.Return:
		return c.checkReturn(n)
	case *ast.If:
		return c.checkIf(n)
	case *ast.StaticIf:
		return c.checkStaticIfStmt(place, n)
	case *ast.While:
		return c.checkWhile(n)
	case *ast.For:
		return c.checkFor(n)
	case *ast.Switch:
		return c.checkSwitch(n)
	case *ast.Jump:
		return OutcomeSuccess
	case *ast.Defer:
		return c.checkStatement(&n.Stmt)
	case *ast.Remove:
		if !c.insideForIterator {
			return c.errorf(n.Pos(), "'remove' is only allowed inside an iterator-based for loop")
		}
		return OutcomeSuccess
	case ast.Expression:
		expr := n
		if o := c.checkExpression(&expr); o.Interrupts() {
			return o
		}
		if o := c.resolveExpressionType(expr); o.Interrupts() {
			return o
		}
		expr.AddFlags(ast.FlagExprIgnored)
		*place = expr
		return OutcomeSuccess
	}
	return c.errorf((*place).Pos(), "internal: cannot check statement of kind %s", (*place).Kind())
}

func (c *Checker) checkReturn(n *ast.Return) Outcome {
	fn := c.currentFunction()
	if fn == nil {
		return c.errorf(n.Pos(), "'return' outside of a function")
	}
	sig := signatureOf(fn.Type())
	if sig == nil {
		return c.yield(n.Pos(), "function signature is not ready")
	}

	if n.Value == nil {
		if sig.Return == types.AutoReturn {
			sig.Return = types.Basic(types.BasicVoid)
			return OutcomeSuccess
		}
		if !types.Compatible(sig.Return, types.Basic(types.BasicVoid)) {
			return c.errorf(n.Pos(), "expected to return a value of type '%s'", sig.Return.Name())
		}
		return OutcomeSuccess
	}

	if o := c.checkExpression(&n.Value); o.Interrupts() {
		return o
	}

	// The first checked return of an inferred-return function decides
	// the return type for the whole function.
	if sig.Return == types.AutoReturn {
		if o := c.resolveExpressionType(n.Value); o.Interrupts() {
			return o
		}
		sig.Return = n.Value.Type()
		return OutcomeSuccess
	}

	switch c.unifyNodeAndType(&n.Value, sig.Return) {
	case MatchSuccess:
		return OutcomeSuccess
	case MatchYield:
		return c.yield(n.Pos(), "return value type is not decided yet")
	default:
		if o := c.resolveExpressionType(n.Value); o.Interrupts() {
			return o
		}
		return c.errorf(n.Pos(), "cannot return '%s' from a function returning '%s'",
			n.Value.Type().Name(), sig.Return.Name())
	}
}

func (c *Checker) checkCondition(place *ast.Expression, what string) Outcome {
	if o := c.checkExpression(place); o.Interrupts() {
		return o
	}
	if !types.IsBool((*place).Type()) {
		t := (*place).Type()
		return c.errorf((*place).Pos(), "%s condition must be a bool, got '%s'", what, t.Name())
	}
	return OutcomeSuccess
}

func (c *Checker) checkIf(n *ast.If) Outcome {
	if n.Init != nil {
		if o := c.checkStatement(&n.Init); o.Interrupts() {
			return o
		}
	}
	if o := c.checkCondition(&n.Cond, "if"); o.Interrupts() {
		return o
	}
	if n.TrueStmt != nil {
		if o := c.checkStatement(&n.TrueStmt); o.Interrupts() {
			return o
		}
	}
	if n.FalseStmt != nil {
		if o := c.checkStatement(&n.FalseStmt); o.Interrupts() {
			return o
		}
	}
	return OutcomeSuccess
}

func (c *Checker) checkWhile(n *ast.While) Outcome {
	if n.Init != nil {
		if o := c.checkStatement(&n.Init); o.Interrupts() {
			return o
		}
	}
	if o := c.checkCondition(&n.Cond, "while"); o.Interrupts() {
		return o
	}
	if n.Body != nil {
		if o := c.checkStatement(&n.Body); o.Interrupts() {
			return o
		}
	}
	if n.ElseStmt != nil {
		if n.BottomTest {
			return c.errorf(n.Pos(), "while loops with an 'else' clause cannot be bottom tested")
		}
		if o := c.checkStatement(&n.ElseStmt); o.Interrupts() {
			return o
		}
	}
	return OutcomeSuccess
}

// staticCondition evaluates a static-if condition down to a bool known
// at compile time.
func (c *Checker) staticCondition(s *ast.StaticIf) (bool, Outcome) {
	if s.HasFlag(ast.FlagStaticIfResolved) {
		return s.Resolution, OutcomeSuccess
	}
	cond := s.Cond
	if o := c.checkExpression(&cond); o.Interrupts() {
		return false, o
	}
	s.Cond = cond
	if !cond.HasFlag(ast.FlagComptime) || !types.IsBool(cond.Type()) {
		return false, c.errorf(cond.Pos(), "static if condition must be a compile-time known bool")
	}
	lit, ok := cond.(*ast.BoolLit)
	if !ok {
		return false, c.yield(cond.Pos(), "static if condition did not fold to a constant")
	}
	s.Resolution = lit.Value
	s.AddFlags(ast.FlagStaticIfResolved)
	return s.Resolution, OutcomeSuccess
}

// checkStaticIfStmt resolves a static if inside a function body,
// replacing it with the winning branch.
func (c *Checker) checkStaticIfStmt(place *ast.Statement, s *ast.StaticIf) Outcome {
	keep, o := c.staticCondition(s)
	if o.Interrupts() {
		return o
	}
	var branch ast.Statement
	if keep {
		branch = s.TrueStmt
	} else {
		branch = s.FalseStmt
	}
	if branch == nil {
		branch = ast.Blk()
	}
	*place = branch
	return c.checkStatement(place)
}

// checkStaticIf resolves a top-level static-if entity and releases the
// entities of the winning branch. The losing branch is discarded
// without ever being processed.
func (c *Checker) checkStaticIf(e *Entity) Outcome {
	keep, o := c.staticCondition(e.StaticIf)
	if o.Interrupts() {
		return o
	}
	released := e.FalseEntities
	if keep {
		released = e.TrueEntities
	}
	for _, sub := range released {
		c.enqueue(sub)
	}
	return OutcomeComplete
}
