package ast

import "thorn/compiler-go/pkg/types"

// Subst maps polymorphic variable names to solved types during
// instantiation cloning. A nil Subst clones verbatim.
type Subst map[string]*types.Type

// CloneExpr deep-clones an expression tree. Resolved-type slots, entity
// links and the checked flag are dropped so the clone checks from
// scratch; comptime and const flags survive.
func CloneExpr(e Expression) Expression {
	return CloneExprWith(e, nil)
}

// CloneExprWith clones while substituting named types found in subst.
func CloneExprWith(e Expression, subst Subst) Expression {
	if e == nil {
		return nil
	}
	out := cloneExpr(e, subst)
	if out != nil {
		out.SetType(nil)
		out.SetEntity(nil)
		out.ClearFlags(FlagChecked | FlagArrayLiteralTyped)
	}
	return out
}

func cloneTypeExpr(t TypeExpression, subst Subst) TypeExpression {
	if t == nil {
		return nil
	}
	cloned := CloneExprWith(t, subst)
	return cloned.(TypeExpression)
}

func cloneExprs(in []Expression, subst Subst) []Expression {
	if in == nil {
		return nil
	}
	out := make([]Expression, len(in))
	for i, e := range in {
		out[i] = CloneExprWith(e, subst)
	}
	return out
}

func cloneArguments(a Arguments, subst Subst) Arguments {
	out := Arguments{Values: cloneExprs(a.Values, subst)}
	for _, nv := range a.Named {
		out.Named = append(out.Named, &NamedValue{Name: nv.Name, Value: CloneExprWith(nv.Value, subst)})
	}
	return out
}

func cloneExpr(e Expression, subst Subst) Expression {
	switch n := e.(type) {
	case *Symbol:
		c := NewSymbol(n.Name)
		c.Loc = n.Loc
		return c
	case *Local:
		c := NewLocal(n.Name, cloneTypeExpr(n.TypeExpr, subst))
		c.IsParam = n.IsParam
		c.Loc = n.Loc
		if n.HasFlag(FlagConst) {
			c.AddFlags(FlagConst)
		}
		return c
	case *NumLit:
		var c *NumLit
		if n.IsFloat {
			c = NewFloatLit(n.Float)
		} else {
			c = NewIntLit(n.Int)
		}
		c.Loc = n.Loc
		return c
	case *StrLit:
		c := NewStrLit(n.Value)
		c.Loc = n.Loc
		return c
	case *BoolLit:
		c := NewBoolLit(n.Value)
		c.Loc = n.Loc
		return c
	case *StructLiteral:
		c := NewStructLiteral(cloneTypeExpr(n.TypeExpr, subst), cloneArguments(n.Args, subst))
		c.Loc = n.Loc
		return c
	case *ArrayLiteral:
		c := NewArrayLiteral(cloneTypeExpr(n.ElemTypeExpr, subst), cloneExprs(n.Values, subst))
		c.Loc = n.Loc
		return c
	case *RangeLiteral:
		c := NewRangeLiteral(CloneExprWith(n.Low, subst), CloneExprWith(n.High, subst))
		c.Step = CloneExprWith(n.Step, subst)
		c.Loc = n.Loc
		return c
	case *Binary:
		c := NewBinary(n.Op, CloneExprWith(n.Left, subst), CloneExprWith(n.Right, subst))
		c.Loc = n.Loc
		return c
	case *Unary:
		c := NewUnary(n.Op, CloneExprWith(n.Operand, subst))
		c.TargetType = cloneTypeExpr(n.TargetType, subst)
		c.Loc = n.Loc
		return c
	case *Call:
		c := NewCall(CloneExprWith(n.Callee, subst), cloneArguments(n.Args, subst))
		c.Loc = n.Loc
		return c
	case *MethodCall:
		inner := cloneExpr(n.CallNode, subst).(*Call)
		c := NewMethodCall(CloneExprWith(n.Receiver, subst), inner)
		c.Loc = n.Loc
		return c
	case *AddressOf:
		c := NewAddressOf(CloneExprWith(n.Operand, subst))
		c.CanBeRemoved = n.CanBeRemoved
		c.Loc = n.Loc
		return c
	case *Dereference:
		c := NewDereference(CloneExprWith(n.Operand, subst))
		c.Loc = n.Loc
		return c
	case *Subscript:
		c := NewSubscript(CloneExprWith(n.Addr, subst), CloneExprWith(n.Index, subst))
		c.Loc = n.Loc
		return c
	case *FieldAccess:
		c := NewFieldAccess(CloneExprWith(n.Operand, subst), n.Field)
		c.Loc = n.Loc
		return c
	case *Compound:
		c := NewCompound(cloneExprs(n.Exprs, subst))
		c.Loc = n.Loc
		return c
	case *IfExpression:
		c := NewIfExpression(CloneExprWith(n.Cond, subst), CloneExprWith(n.TrueExpr, subst), CloneExprWith(n.FalseExpr, subst))
		c.Loc = n.Loc
		return c
	case *DoBlock:
		c := NewDoBlock(cloneTypeExpr(n.TypeExpr, subst), CloneBlock(n.Body, subst))
		c.Loc = n.Loc
		return c
	case *SizeOf:
		c := NewSizeOf(cloneTypeExpr(n.Query, subst))
		c.Loc = n.Loc
		return c
	case *AlignOf:
		c := NewAlignOf(cloneTypeExpr(n.Query, subst))
		c.Loc = n.Loc
		return c
	case *Alias:
		c := NewAlias(n.Target) // aliases share their target
		c.Loc = n.Loc
		return c
	case *CallSite:
		c := NewCallSite()
		c.Loc = n.Loc
		return c
	case *ZeroValue:
		c := NewZeroValue()
		c.Loc = n.Loc
		return c
	case *AutoCast:
		c := NewAutoCast(CloneExprWith(n.Operand, subst))
		c.Loc = n.Loc
		return c
	case *Function:
		params := make([]*Param, len(n.Params))
		for i, p := range n.Params {
			params[i] = &Param{
				Local:   cloneExpr(p.Local, subst).(*Local),
				Default: CloneExprWith(p.Default, subst),
				Vararg:  p.Vararg,
			}
			params[i].Local.IsParam = true
		}
		c := NewFunction(n.Name, params, cloneTypeExpr(n.ReturnTypeExpr, subst), CloneBlock(n.Body, subst))
		c.IsIntrinsic = n.IsIntrinsic
		c.IntrinsicName = n.IntrinsicName
		c.Loc = n.Loc
		return c
	case *ConstraintSentinel:
		c := NewConstraintSentinel(cloneTypeExpr(n.TypeExpr, subst))
		c.Loc = n.Loc
		return c
	case *NamedType:
		if subst != nil {
			if t, ok := subst[n.Name]; ok {
				c := NewBuiltinType(t)
				c.Loc = n.Loc
				return c
			}
		}
		c := NewNamedType(n.Name)
		c.Decl = n.Decl
		c.Builtin = n.Builtin
		c.Loc = n.Loc
		return c
	case *PointerType:
		c := NewPointerType(cloneTypeExpr(n.Elem, subst))
		c.Loc = n.Loc
		return c
	case *ArrayType:
		c := NewArrayType(CloneExprWith(n.Count, subst), cloneTypeExpr(n.Elem, subst))
		c.Loc = n.Loc
		return c
	case *SliceType:
		c := NewSliceType(cloneTypeExpr(n.Elem, subst))
		c.Loc = n.Loc
		return c
	case *DynArrayType:
		c := NewDynArrayType(cloneTypeExpr(n.Elem, subst))
		c.Loc = n.Loc
		return c
	case *VarArgType:
		c := NewVarArgType(cloneTypeExpr(n.Elem, subst))
		c.Loc = n.Loc
		return c
	case *FunctionType:
		params := make([]TypeExpression, len(n.ParamExprs))
		for i, p := range n.ParamExprs {
			params[i] = cloneTypeExpr(p, subst)
		}
		c := NewFunctionType(params, cloneTypeExpr(n.ReturnExpr, subst))
		c.Loc = n.Loc
		return c
	case *TypeOf:
		c := NewTypeOf(CloneExprWith(n.Expr, subst))
		c.Loc = n.Loc
		return c
	case *TypeAlias:
		c := NewTypeAlias(cloneTypeExpr(n.To, subst))
		c.Loc = n.Loc
		return c
	}
	// Declarations (functions sets, structs, interfaces) are shared by
	// reference, never cloned into checked positions.
	return e
}

// CloneStmt deep-clones a statement tree.
func CloneStmt(s Statement, subst Subst) Statement {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case Expression:
		return CloneExprWith(n, subst)
	case *Block:
		return CloneBlock(n, subst)
	case *Return:
		c := NewReturn(CloneExprWith(n.Value, subst))
		c.Loc = n.Loc
		return c
	case *If:
		c := NewIf(CloneExprWith(n.Cond, subst), CloneStmt(n.TrueStmt, subst), CloneStmt(n.FalseStmt, subst))
		c.Init = CloneStmt(n.Init, subst)
		c.Loc = n.Loc
		return c
	case *StaticIf:
		c := NewStaticIf(CloneExprWith(n.Cond, subst), CloneStmt(n.TrueStmt, subst), CloneStmt(n.FalseStmt, subst))
		c.Loc = n.Loc
		return c
	case *While:
		c := NewWhile(CloneExprWith(n.Cond, subst), CloneStmt(n.Body, subst))
		c.Init = CloneStmt(n.Init, subst)
		c.ElseStmt = CloneStmt(n.ElseStmt, subst)
		c.BottomTest = n.BottomTest
		c.Loc = n.Loc
		return c
	case *For:
		c := NewFor(cloneExpr(n.Var, subst).(*Local), CloneExprWith(n.Iterable, subst), CloneBlock(n.Body, subst))
		c.ByPointer = n.ByPointer
		c.NoClose = n.NoClose
		c.Loc = n.Loc
		return c
	case *Switch:
		cases := make([]*SwitchCase, len(n.Cases))
		for i, sc := range n.Cases {
			cases[i] = NewSwitchCase(cloneExprs(sc.Values, subst), CloneBlock(sc.Body, subst))
			cases[i].IsDefault = sc.IsDefault
			cases[i].Loc = sc.Loc
		}
		c := NewSwitch(CloneExprWith(n.Expr, subst), cases)
		c.Init = CloneStmt(n.Init, subst)
		c.Default = CloneBlock(n.Default, subst)
		c.Loc = n.Loc
		return c
	case *Defer:
		c := NewDefer(CloneStmt(n.Stmt, subst))
		c.Loc = n.Loc
		return c
	case *Jump:
		c := NewJump(n.JumpKind)
		c.Loc = n.Loc
		return c
	case *Remove:
		c := NewRemove()
		c.Loc = n.Loc
		return c
	}
	return s
}

// CloneBlock deep-clones a block, resetting its resume index.
func CloneBlock(b *Block, subst Subst) *Block {
	if b == nil {
		return nil
	}
	body := make([]Statement, len(b.Body))
	for i, s := range b.Body {
		body[i] = CloneStmt(s, subst)
	}
	c := NewBlock(body)
	c.Loc = b.Loc
	return c
}

// CloneClause deep-clones one interface requirement for a constraint.
func CloneClause(ic *InterfaceClause, subst Subst) *InterfaceClause {
	return &InterfaceClause{
		Expr:             CloneExprWith(ic.Expr, subst),
		ExpectedTypeExpr: cloneTypeExpr(ic.ExpectedTypeExpr, subst),
		Invert:           ic.Invert,
	}
}
