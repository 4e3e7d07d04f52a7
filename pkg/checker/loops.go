package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// checkFor classifies the iterable and types the loop variable. The
// classification is recorded on the node for later stages.
func (c *Checker) checkFor(n *ast.For) Outcome {
	if o := c.checkExpression(&n.Iterable); o.Interrupts() {
		return o
	}
	if o := c.resolveExpressionType(n.Iterable); o.Interrupts() {
		return o
	}
	t := n.Iterable.Type()

	var elem *types.Type
	switch {
	case t == c.builtins.Range:
		n.LoopKind = ast.ForRange
		elem = types.Basic(types.BasicI32)

	case t.Kind == types.KindArray:
		n.LoopKind = ast.ForArray
		elem = t.Elem

	case t.Kind == types.KindSlice || t.Kind == types.KindVarArgs:
		n.LoopKind = ast.ForSlice
		elem = t.Elem

	case t.Kind == types.KindDynArray:
		n.LoopKind = ast.ForDynArray
		elem = t.Elem

	case types.ConstructedFromPoly(t, IteratorPolyName):
		n.LoopKind = ast.ForIterator
		elem = t.Struct.PolyArgs[0]

	case types.IsInteger(t):
		// An integer count iterates as the range 0 .. count.
		low := ast.Int(0)
		low.SetPos(n.Iterable.Pos())
		rng := ast.NewRangeLiteral(low, n.Iterable)
		rng.SetPos(n.Iterable.Pos())
		n.Iterable = rng
		if o := c.checkExpression(&n.Iterable); o.Interrupts() {
			return o
		}
		n.LoopKind = ast.ForRange
		elem = types.Basic(types.BasicI32)

	default:
		return c.errorf(n.Iterable.Pos(), "cannot iterate over a '%s'", t.Name())
	}

	if n.ByPointer {
		switch n.LoopKind {
		case ast.ForRange:
			return c.errorf(n.Pos(), "cannot iterate by pointer over a range")
		case ast.ForIterator:
			return c.errorf(n.Pos(), "cannot iterate by pointer over an iterator")
		}
		n.Var.SetType(types.MakePointer(elem))
	} else {
		n.Var.SetType(elem)
		// The slot is rematerialized every iteration; handing out its
		// address would dangle.
		n.Var.AddFlags(ast.FlagCannotTakeAddr)
	}
	n.Var.AddFlags(ast.FlagChecked)

	if n.LoopKind == ast.ForIterator {
		prev := c.insideForIterator
		c.insideForIterator = true
		o := c.checkBlock(n.Body)
		c.insideForIterator = prev
		return o
	}
	return c.checkBlock(n.Body)
}
