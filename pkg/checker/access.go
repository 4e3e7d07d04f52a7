package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func (c *Checker) checkAddressOf(place *ast.Expression, n *ast.AddressOf) Outcome {
	// `&container[index]` may be claimed by a `&[]` overload, which
	// hands out a pointer into the container.
	if sub, ok := n.Operand.(*ast.Subscript); ok && !sub.HasFlag(ast.FlagChecked) &&
		len(c.overloads[ast.OpPtrSubscript]) > 0 {
		if o := c.checkExpression(&sub.Addr); o.Interrupts() {
			return o
		}
		if types.IsStructLike(sub.Addr.Type()) {
			if n.PotentialSubstitute == nil {
				n.PotentialSubstitute = ast.Bin(ast.OpPtrSubscript, sub.Addr, sub.Index)
				n.PotentialSubstitute.SetPos(n.Pos())
			}
			var expr ast.Expression = n.PotentialSubstitute
			switch o := c.binaryopTryOperatorOverload(&expr, n.PotentialSubstitute, ast.OpPtrSubscript); o {
			case OutcomeSuccess:
				*place = expr
				return OutcomeSuccess
			case OutcomeFailed:
				// Fall through to the plain address rules.
			default:
				if o.Interrupts() {
					return o
				}
			}
		}
	}

	if o := c.checkExpression(&n.Operand); o.Interrupts() {
		return o
	}
	if o := c.resolveExpressionType(n.Operand); o.Interrupts() {
		return o
	}

	if !isAddressable(n.Operand) {
		if n.CanBeRemoved {
			// Sugar-introduced wrapper; degrade to the plain value and
			// restart so the revealed operand is resolved on its own.
			*place = n.Operand
			return OutcomeReturnToSymres
		}
		return c.errorf(n.Pos(), "cannot take the address of this expression")
	}

	markAddressTaken(n.Operand)
	n.SetType(types.MakePointer(n.Operand.Type()))
	return OutcomeSuccess
}

func isAddressable(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Local:
		return !n.HasFlag(ast.FlagCannotTakeAddr)
	case *ast.Global, *ast.Dereference:
		return true
	case *ast.Subscript:
		return true
	case *ast.FieldAccess:
		return isAddressable(n.Operand) || types.IsPointer(n.Operand.Type())
	case *ast.Symbol:
		return true
	case *ast.ConstraintSentinel:
		return true
	case *ast.StructLiteral, *ast.ArrayLiteral:
		// Literals are materialized into a stack slot.
		return true
	case *ast.Alias:
		return isAddressable(n.Target)
	}
	return false
}

func markAddressTaken(e ast.Expression) {
	for {
		e.AddFlags(ast.FlagAddressTaken)
		switch n := e.(type) {
		case *ast.FieldAccess:
			e = n.Operand
		case *ast.Subscript:
			e = n.Addr
		case *ast.Alias:
			e = n.Target
		default:
			return
		}
	}
}

func (c *Checker) checkDereference(n *ast.Dereference) Outcome {
	if o := c.checkExpression(&n.Operand); o.Interrupts() {
		return o
	}
	t := n.Operand.Type()
	if !types.IsPointer(t) {
		if types.IsRawptr(t) {
			return c.errorf(n.Pos(), "cannot dereference a rawptr; cast it to a typed pointer first")
		}
		return c.errorf(n.Pos(), "cannot dereference a '%s'", t.Name())
	}
	n.SetType(t.Elem)
	return OutcomeSuccess
}

func (c *Checker) checkSubscript(place *ast.Expression, n *ast.Subscript) Outcome {
	if o := c.checkExpression(&n.Addr); o.Interrupts() {
		return o
	}

	// Structs subscript through the `[]` overload; slices and arrays
	// keep the builtin indexing below.
	if types.IsStructLikeStrict(n.Addr.Type()) && n.Addr.Type() != c.builtins.Range {
		if len(c.overloads[ast.OpSubscript]) == 0 {
			return c.errorf(n.Pos(), "cannot subscript a '%s'", n.Addr.Type().Name())
		}
		if n.PotentialSubstitute == nil {
			n.PotentialSubstitute = ast.Bin(ast.OpSubscript, n.Addr, n.Index)
			n.PotentialSubstitute.SetPos(n.Pos())
		}
		var expr ast.Expression = n.PotentialSubstitute
		switch o := c.binaryopTryOperatorOverload(&expr, n.PotentialSubstitute, ast.OpSubscript); o {
		case OutcomeSuccess:
			*place = expr
			return OutcomeSuccess
		case OutcomeYield:
			return c.yield(n.Pos(), "'[]' overload for '%s' is not resolved yet", n.Addr.Type().Name())
		default:
			if o.Interrupts() {
				return o
			}
			return c.errorf(n.Pos(), "no '[]' overload accepts a '%s' index on '%s'",
				n.Index.Type().Name(), n.Addr.Type().Name())
		}
	}

	if o := c.checkExpression(&n.Index); o.Interrupts() {
		return o
	}

	addrType := n.Addr.Type()
	var elem *types.Type
	switch {
	case types.IsArrayAccessible(addrType):
		elem = types.ContainedElem(addrType)
	case types.IsPointer(addrType):
		elem = addrType.Elem
	default:
		return c.errorf(n.Pos(), "cannot subscript a '%s'", addrType.Name())
	}

	// Slices, growable arrays and varargs index through their backing
	// data member; project it so the indexed operand is a plain pointer.
	switch addrType.Kind {
	case types.KindSlice, types.KindDynArray, types.KindVarArgs:
		data := ast.NewFieldAccess(n.Addr, "data")
		data.SetPos(n.Addr.Pos())
		data.SetType(types.MakePointer(elem))
		data.AddFlags(ast.FlagChecked)
		n.Addr = data
	}

	// Indexing with a range produces a slice of the container.
	if n.Index.Type() == c.builtins.Range {
		n.Rekind(ast.KindSliceExpr)
		n.ElemSize = elem.Size()
		n.SetType(types.MakeSlice(elem))
		return OutcomeSuccess
	}

	switch c.unifyNodeAndType(&n.Index, types.Basic(types.BasicI32)) {
	case MatchYield:
		return c.yield(n.Index.Pos(), "subscript index type is not decided yet")
	case MatchFailed:
		if !types.IsSmallInteger(n.Index.Type()) {
			return c.errorf(n.Index.Pos(), "subscript index must be a small integer, got '%s'",
				n.Index.Type().Name())
		}
	}

	n.ElemSize = elem.Size()
	n.SetType(elem)
	return OutcomeSuccess
}

func (c *Checker) checkFieldAccess(place *ast.Expression, n *ast.FieldAccess) Outcome {
	if o := c.checkExpression(&n.Operand); o.Interrupts() {
		return o
	}

	t := n.Operand.Type()
	if types.IsPointer(t) {
		t = t.Elem
	}
	if t == nil {
		return c.yield(n.Pos(), "cannot access '%s' before the operand has a type", n.Field)
	}

	// Slices and arrays expose count and data directly.
	if types.IsArrayAccessible(t) {
		switch n.Field {
		case "count":
			if t.Kind == types.KindArray {
				lit := ast.Int(int64(t.Count))
				lit.SetPos(n.Pos())
				lit.SetType(types.Basic(types.BasicI32))
				lit.AddFlags(ast.FlagChecked | ast.FlagComptime)
				*place = lit
				return OutcomeSuccess
			}
			n.SetType(types.Basic(types.BasicI32))
			return OutcomeSuccess
		case "data":
			n.SetType(types.MakePointer(types.ContainedElem(t)))
			return OutcomeSuccess
		}
		return c.errorf(n.Pos(), "'%s' does not have a member named '%s'", t.Name(), n.Field)
	}

	info := types.StructOf(t)
	if info == nil {
		return c.errorf(n.Pos(), "cannot select '%s' out of a '%s'", n.Field, t.Name())
	}
	// Member promotion through `use` rewrites lookups; until those
	// rewrites are applied the member table is incomplete.
	if info.Status != types.StructUsesDone {
		return c.yield(n.Pos(), "struct '%s' is not fully laid out yet", info.Name)
	}

	m, ok := info.Member(n.Field)
	if !ok {
		if hint := closestMemberName(info, n.Field); hint != "" {
			return c.errorf(n.Pos(), "'%s' does not have a member named '%s'; did you mean '%s'?",
				info.Name, n.Field, hint)
		}
		return c.errorf(n.Pos(), "'%s' does not have a member named '%s'", info.Name, n.Field)
	}

	// A member promoted from a pointered `use` is reached through the
	// embedding pointer; materialize the intermediate access.
	if m.UsedThroughPointerIdx >= 0 {
		via, _ := info.MemberByIdx(m.UsedThroughPointerIdx)
		inner := ast.NewFieldAccess(n.Operand, via.Name)
		inner.SetPos(n.Pos())
		inner.Offset = via.Offset
		inner.Idx = via.Idx
		inner.SetType(via.Type)
		inner.AddFlags(ast.FlagChecked)
		n.Operand = inner
	}

	n.Offset = m.Offset
	n.Idx = m.Idx
	n.SetType(m.Type)
	return OutcomeSuccess
}

// closestMemberName suggests the member with the smallest edit distance
// from the requested name, if it is close enough to be a likely typo.
func closestMemberName(info *types.StructInfo, field string) string {
	best, bestDist := "", len(field)/2+1
	for _, m := range info.Members {
		if d := editDistance(field, m.Name); d < bestDist {
			best, bestDist = m.Name, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
