package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// TypeMatch is the tri-state result of fitting a node to an expected
// type. Yield means the fit cannot be decided yet, typically because a
// deferred literal's type is still under construction.
type TypeMatch int

const (
	MatchSuccess TypeMatch = iota
	MatchFailed
	MatchYield
)

// unifyNodeAndType fits the expression at place to the expected type,
// rewriting the node when the fit requires one. Untyped numeric
// literals adopt a compatible expected type; a nil-typed struct literal
// is checked now against the expected type; a pointer fits a rawptr
// slot; an autocast node becomes an explicit cast.
func (c *Checker) unifyNodeAndType(place *ast.Expression, expected *types.Type) TypeMatch {
	node := *place
	if node == nil || expected == nil {
		return MatchFailed
	}

	if node.Type() == nil {
		switch n := node.(type) {
		case *ast.NumLit:
			return unifyNumLit(n, expected)

		case *ast.StructLiteral:
			if n.TypeExpr == nil {
				if types.StructOf(expected) == nil {
					return MatchFailed
				}
				switch o := c.checkStructLiteralAgainst(n, expected); {
				case o == OutcomeSuccess:
					return MatchSuccess
				case o == OutcomeYield:
					return MatchYield
				default:
					return MatchFailed
				}
			}
			return MatchYield

		case *ast.ZeroValue:
			n.SetType(expected)
			return MatchSuccess

		case *ast.ArrayLiteral:
			if !n.HasFlag(ast.FlagArrayLiteralTyped) && types.IsArrayAccessible(expected) {
				elem := types.ContainedElem(expected)
				ok := true
				for i := range n.Values {
					if c.unifyNodeAndType(&n.Values[i], elem) != MatchSuccess {
						ok = false
					}
				}
				if !ok {
					return MatchFailed
				}
				n.AddFlags(ast.FlagArrayLiteralTyped)
				if expected.Kind == types.KindArray {
					if expected.Count != len(n.Values) {
						return MatchFailed
					}
					n.SetType(expected)
				} else {
					n.SetType(types.MakeArray(elem, len(n.Values)))
				}
				return MatchSuccess
			}
			return MatchYield
		}
		return MatchYield
	}

	// Compatible covers the pointer-into-rawptr asymmetry.
	if types.Compatible(expected, node.Type()) {
		return MatchSuccess
	}

	// A sugar-introduced address-of degrades to its operand when the
	// slot wants the plain value.
	if ao, ok := node.(*ast.AddressOf); ok && ao.CanBeRemoved {
		if types.Compatible(expected, ao.Operand.Type()) {
			*place = ao.Operand
			return MatchSuccess
		}
	}

	if ac, ok := node.(*ast.AutoCast); ok {
		if castLegal(ac.Operand.Type(), expected) {
			cast := ast.Cast(ac.Operand, ast.Ty(expected))
			cast.SetPos(ac.Pos())
			cast.SetType(expected)
			cast.AddFlags(ast.FlagChecked)
			*place = cast
			return MatchSuccess
		}
		return MatchFailed
	}

	return MatchFailed
}

func unifyNumLit(n *ast.NumLit, expected *types.Type) TypeMatch {
	flags := types.BasicFlagsOf(expected)
	if n.IsFloat {
		if flags&types.FlagFloat == 0 {
			return MatchFailed
		}
		n.SetType(expected)
		return MatchSuccess
	}
	if flags&types.FlagFloat != 0 {
		// Integer literals promote to float targets.
		n.IsFloat = true
		n.Float = float64(n.Int)
		n.SetType(expected)
		return MatchSuccess
	}
	if flags&types.FlagInteger == 0 {
		return MatchFailed
	}
	if flags&types.FlagUnsigned != 0 && n.Int < 0 {
		return MatchFailed
	}
	n.SetType(expected)
	return MatchSuccess
}

// castLegal reports whether an explicit cast between the two types is
// permitted: numeric to numeric, pointer to pointer or rawptr, and enum
// to its backing type.
func castLegal(from, to *types.Type) bool {
	if from == nil || to == nil {
		return false
	}
	ff, tf := types.BasicFlagsOf(from), types.BasicFlagsOf(to)
	if ff&types.FlagNumeric != 0 && tf&types.FlagNumeric != 0 {
		return true
	}
	if (types.IsPointer(from) || types.IsRawptr(from)) && (types.IsPointer(to) || types.IsRawptr(to)) {
		return true
	}
	if from.Kind == types.KindEnum {
		return castLegal(from.Enum.Backing, to)
	}
	if to.Kind == types.KindEnum {
		return castLegal(from, to.Enum.Backing)
	}
	return false
}
