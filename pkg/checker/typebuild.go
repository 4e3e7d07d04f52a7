package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// buildType materializes the type a type expression denotes. The result
// is cached on the node, so re-entry after a yield is cheap.
func (c *Checker) buildType(te ast.TypeExpression) (*types.Type, Outcome) {
	return c.buildTypeInner(te, false)
}

func (c *Checker) buildTypeInner(te ast.TypeExpression, allowPending bool) (*types.Type, Outcome) {
	if te == nil {
		return nil, OutcomeSuccess
	}
	if t := te.Type(); t != nil {
		return t, OutcomeSuccess
	}

	var built *types.Type
	switch n := te.(type) {
	case *ast.NamedType:
		t, o := c.buildNamedType(n, allowPending)
		if o.Interrupts() {
			return nil, o
		}
		built = t

	case *ast.PointerType:
		// Pointing at a struct still under construction is legal; this
		// is what lets self-referential structs build at all.
		elem, o := c.buildTypeInner(n.Elem, true)
		if o.Interrupts() {
			return nil, o
		}
		built = types.MakePointer(elem)

	case *ast.ArrayType:
		elem, o := c.buildTypeInner(n.Elem, false)
		if o.Interrupts() {
			return nil, o
		}
		count, o := c.comptimeIntOf(&n.Count)
		if o.Interrupts() {
			return nil, o
		}
		if count < 0 {
			return nil, c.errorf(n.Pos(), "array size cannot be negative, got %d", count)
		}
		built = types.MakeArray(elem, int(count))

	case *ast.SliceType:
		elem, o := c.buildTypeInner(n.Elem, false)
		if o.Interrupts() {
			return nil, o
		}
		built = types.MakeSlice(elem)

	case *ast.DynArrayType:
		elem, o := c.buildTypeInner(n.Elem, false)
		if o.Interrupts() {
			return nil, o
		}
		built = types.MakeDynArray(elem)

	case *ast.VarArgType:
		elem, o := c.buildTypeInner(n.Elem, false)
		if o.Interrupts() {
			return nil, o
		}
		built = types.MakeVarArgs(elem)

	case *ast.FunctionType:
		sig := &types.Signature{}
		for _, p := range n.ParamExprs {
			pt, o := c.buildTypeInner(p, false)
			if o.Interrupts() {
				return nil, o
			}
			sig.Params = append(sig.Params, pt)
		}
		if n.ReturnExpr != nil {
			rt, o := c.buildTypeInner(n.ReturnExpr, false)
			if o.Interrupts() {
				return nil, o
			}
			sig.Return = rt
		} else {
			sig.Return = types.Basic(types.BasicVoid)
		}
		built = types.MakeFunction(sig)

	case *ast.TypeOf:
		expr := n.Expr
		if o := c.checkExpression(&expr); o.Interrupts() {
			return nil, o
		}
		n.Expr = expr
		if o := c.resolveExpressionType(n.Expr); o.Interrupts() {
			return nil, o
		}
		built = n.Expr.Type()
		n.Resolved = built

	case *ast.TypeAlias:
		t, o := c.buildTypeInner(n.To, allowPending)
		if o.Interrupts() {
			return nil, o
		}
		built = t

	case *ast.StructType:
		t, o := c.structTypeOf(n, allowPending)
		if o.Interrupts() {
			return nil, o
		}
		built = t

	default:
		return nil, c.errorf(te.Pos(), "expected a type expression, got %s", te.Kind())
	}

	te.SetType(built)
	return built, OutcomeSuccess
}

func (c *Checker) buildNamedType(n *ast.NamedType, allowPending bool) (*types.Type, Outcome) {
	if n.Builtin != nil {
		return n.Builtin, OutcomeSuccess
	}
	switch decl := n.Decl.(type) {
	case *ast.StructType:
		return c.structTypeOf(decl, allowPending)
	case *ast.TypeAlias:
		return c.buildTypeInner(decl, allowPending)
	case nil:
		return nil, c.yield(n.Pos(), "cannot resolve type '%s'", n.Name)
	default:
		return nil, c.errorf(n.Pos(), "'%s' does not name a type", n.Name)
	}
}

func (c *Checker) structTypeOf(s *ast.StructType, allowPending bool) (*types.Type, Outcome) {
	if s.Cache != nil {
		return s.Cache, OutcomeSuccess
	}
	if allowPending && s.PendingValid {
		return s.PendingType, OutcomeSuccess
	}
	return nil, c.yield(s.Pos(), "type '%s' is not constructed yet", s.Name)
}

// comptimeIntOf checks an expression and extracts a compile-time known
// integer from it.
func (c *Checker) comptimeIntOf(place *ast.Expression) (int64, Outcome) {
	if o := c.checkExpression(place); o.Interrupts() {
		return 0, o
	}
	expr := *place
	if !expr.HasFlag(ast.FlagComptime) {
		return 0, c.errorf(expr.Pos(), "expected a compile-time known integer")
	}
	lit, ok := expr.(*ast.NumLit)
	if !ok || lit.IsFloat {
		return 0, c.errorf(expr.Pos(), "expected a compile-time known integer")
	}
	if lit.Type() == nil {
		lit.SetType(types.Basic(types.BasicI32))
	}
	return lit.Int, OutcomeSuccess
}

// resolveExpressionType forces an expression to a concrete type,
// assigning defaults to numeric literals that survived checking without
// picking one up from context. i64-range integers default to i32 when
// they fit, i64 otherwise; floats default to f64.
func (c *Checker) resolveExpressionType(expr ast.Expression) Outcome {
	if expr == nil {
		return OutcomeSuccess
	}
	switch n := expr.(type) {
	case *ast.NumLit:
		if n.Type() == nil {
			if n.IsFloat {
				n.SetType(types.Basic(types.BasicF64))
			} else if n.Int >= -(1<<31) && n.Int < 1<<31 {
				n.SetType(types.Basic(types.BasicI32))
			} else {
				n.SetType(types.Basic(types.BasicI64))
			}
		}
		return OutcomeSuccess

	case *ast.IfExpression:
		if o := c.resolveExpressionType(n.TrueExpr); o.Interrupts() {
			return o
		}
		if o := c.resolveExpressionType(n.FalseExpr); o.Interrupts() {
			return o
		}
		if n.Type() == nil {
			if !types.Compatible(n.TrueExpr.Type(), n.FalseExpr.Type()) {
				return c.errorf(n.Pos(), "mismatched types in if expression, '%s' and '%s'",
					n.TrueExpr.Type().Name(), n.FalseExpr.Type().Name())
			}
			n.SetType(n.TrueExpr.Type())
		}
		return OutcomeSuccess

	case *ast.ArrayLiteral:
		for _, v := range n.Values {
			if o := c.resolveExpressionType(v); o.Interrupts() {
				return o
			}
		}
		if n.Type() == nil && len(n.Values) > 0 {
			n.SetType(types.MakeArray(n.Values[0].Type(), len(n.Values)))
		}
		return OutcomeSuccess

	case *ast.Compound:
		members := make([]*types.Type, len(n.Exprs))
		for i, v := range n.Exprs {
			if o := c.resolveExpressionType(v); o.Interrupts() {
				return o
			}
			members[i] = v.Type()
		}
		if n.Type() == nil {
			n.SetType(types.MakeCompound(members))
		}
		return OutcomeSuccess
	}

	if expr.Type() == nil {
		if c.finalTypesOnly {
			return c.errorf(expr.Pos(), "unable to resolve the type of this expression")
		}
		return c.yield(expr.Pos(), "expression type is not known yet")
	}
	return OutcomeSuccess
}
