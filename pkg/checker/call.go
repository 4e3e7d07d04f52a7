package checker

import (
	"fmt"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func (c *Checker) checkCall(place *ast.Expression, n *ast.Call) Outcome {
	if o := c.checkExpression(&n.Callee); o.Interrupts() {
		return o
	}

	// Arguments live at expression level; assignments inside them are
	// rejected.
	if o := c.atExpressionLevel(func() Outcome {
		for i := range n.Args.Values {
			if o := c.checkExpression(&n.Args.Values[i]); o.Interrupts() {
				return o
			}
		}
		for _, nv := range n.Args.Named {
			if o := c.checkExpression(&nv.Value); o.Interrupts() {
				return o
			}
		}
		return OutcomeSuccess
	}); o.Interrupts() {
		return o
	}

	// Peel the callee down to a concrete function: overload sets pick a
	// member, macros expand in place, polymorphic procedures
	// instantiate against the argument types.
	for {
		switch callee := n.Callee.(type) {
		case *ast.OverloadedFunction:
			match, o := c.findMatchingOverload(callee.Overloads, &n.Args)
			switch o {
			case OutcomeSuccess:
				n.Callee = match
				continue
			case OutcomeYield:
				return c.yield(n.Pos(), "overloads of '%s' are not all resolved yet", callee.Name)
			default:
				return c.errorf(n.Pos(), "no overload of '%s' matches these arguments", callee.Name)
			}

		case *ast.Macro:
			return c.expandMacro(place, n, callee)

		case *ast.PolyProc:
			inst, o := c.polymorphicProcLookup(callee, &n.Args, true)
			switch o {
			case OutcomeSuccess:
				n.Callee = inst
				continue
			case OutcomeYield:
				return c.yield(n.Pos(), "polymorphic instantiation of '%s' is not ready", callee.Name)
			default:
				return o
			}
		}
		break
	}

	if fn, ok := n.Callee.(*ast.Function); ok {
		return c.checkResolvedCall(n, fn)
	}

	// Calling through a function-typed value; positional only.
	sig := signatureOf(n.Callee.Type())
	if sig == nil {
		if n.Callee.Type() == nil {
			return c.yield(n.Pos(), "callee type is not known yet")
		}
		return c.errorf(n.Pos(), "cannot call a value of type '%s'", n.Callee.Type().Name())
	}
	if len(n.Args.Named) > 0 {
		return c.errorf(n.Pos(), "named arguments require a directly named function")
	}
	return c.checkArgumentsAgainst(n, sig, nil)
}

func (c *Checker) checkResolvedCall(n *ast.Call, fn *ast.Function) Outcome {
	sig := signatureOf(fn.Type())
	if sig == nil {
		return c.yield(n.Pos(), "function '%s' does not have a type yet", fn.Name)
	}
	if sig.Return == types.AutoReturn {
		// The body has not reached a return statement; its entity will
		// fill the slot in.
		return c.yield(n.Pos(), "return type of '%s' is not determined yet", fn.Name)
	}
	fn.AddFlags(ast.FlagFunctionUsed)

	if o := c.fillInArguments(fn, &n.Args, n.Pos()); o.Interrupts() {
		return o
	}
	if fn.IsIntrinsic {
		kind, ok := c.intrinsics[fn.IntrinsicName]
		if !ok {
			return c.errorf(n.Pos(), "unknown intrinsic '%s'", fn.IntrinsicName)
		}
		n.Intrinsic = kind
		n.Rekind(ast.KindIntrinsicCall)
	}
	return c.checkArgumentsAgainst(n, sig, fn)
}

// fillInArguments normalizes a call's argument list against the callee:
// named arguments move to their positional slot and omitted parameters
// take a fresh clone of their default. A callsite default is stamped
// with the call's own location.
func (c *Checker) fillInArguments(fn *ast.Function, args *ast.Arguments, pos ast.Pos) Outcome {
	fixed := len(fn.Params)
	if fixed > 0 && fn.Params[fixed-1].Vararg != ast.VarargNone {
		fixed--
	}

	for _, nv := range args.Named {
		idx := paramIndex(fn, nv.Name)
		if idx < 0 {
			return c.errorf(nv.Value.Pos(), "'%s' has no parameter named '%s'", fn.Name, nv.Name)
		}
		if idx >= fixed {
			return c.errorf(nv.Value.Pos(), "variadic parameter '%s' cannot be passed by name", nv.Name)
		}
		args.EnsureLength(idx + 1)
		if args.Values[idx] != nil {
			return c.errorf(nv.Value.Pos(), "parameter '%s' was given twice", nv.Name)
		}
		args.Values[idx] = nv.Value
	}
	args.Named = nil

	if len(args.Values) < fixed {
		args.EnsureLength(fixed)
	}
	for i := 0; i < fixed; i++ {
		if args.Values[i] != nil {
			continue
		}
		p := fn.Params[i]
		if p.Default == nil {
			return c.errorf(pos, "no value provided for parameter '%s'", p.Local.Name)
		}
		def := ast.CloneExpr(p.Default)
		if cs, ok := def.(*ast.CallSite); ok {
			cs.Filename = pos.File
			cs.Line = pos.Line
			cs.Column = pos.Column
		}
		def.SetPos(pos)
		args.Values[i] = def
		// The clone is a fresh subtree; check it before it meets the
		// parameter type.
		if o := c.checkExpression(&args.Values[i]); o.Interrupts() {
			return o
		}
	}
	return OutcomeSuccess
}

// checkArgumentsAgainst fits every argument to its parameter type. fn
// is nil when calling through a function pointer.
func (c *Checker) checkArgumentsAgainst(n *ast.Call, sig *types.Signature, fn *ast.Function) Outcome {
	fixed := len(sig.Params)
	if len(n.Args.Values) < fixed {
		return c.errorf(n.Pos(), "expected %d arguments, got %d", fixed, len(n.Args.Values))
	}
	if len(n.Args.Values) > fixed && !sig.Variadic() {
		return c.errorf(n.Pos(), "expected %d arguments, got %d", fixed, len(n.Args.Values))
	}

	for i := range n.Args.Values {
		var expected *types.Type
		if i < fixed {
			expected = sig.Params[i]
		} else if sig.UntypedVariadic {
			if o := c.resolveExpressionType(n.Args.Values[i]); o.Interrupts() {
				return o
			}
			continue
		} else {
			expected = sig.VariadicElem
		}
		switch c.unifyNodeAndType(&n.Args.Values[i], expected) {
		case MatchSuccess:
			continue
		case MatchYield:
			return c.yield(n.Args.Values[i].Pos(), "argument %d's type is not decided yet", i+1)
		default:
			if o := c.resolveExpressionType(n.Args.Values[i]); o.Interrupts() {
				return o
			}
			name := fmt.Sprintf("argument %d", i+1)
			if fn != nil && i < len(fn.Params) {
				name = "parameter '" + fn.Params[i].Local.Name + "'"
			}
			return c.errorf(n.Args.Values[i].Pos(), "cannot pass '%s' for %s of type '%s'",
				n.Args.Values[i].Type().Name(), name, expected.Name())
		}
	}
	n.SetType(sig.Return)
	return OutcomeSuccess
}

// expandMacro splices a macro's cloned body into the call site as a
// do-block, binding the parameters first. The fresh subtree mentions
// unbound names, so the entity goes back to symbol resolution.
func (c *Checker) expandMacro(place *ast.Expression, call *ast.Call, m *ast.Macro) Outcome {
	fn := m.Body
	if o := c.fillInArguments(fn, &call.Args, call.Pos()); o.Interrupts() {
		return o
	}
	if len(call.Args.Values) != len(fn.Params) {
		return c.errorf(call.Pos(), "macro '%s' expects %d arguments, got %d",
			fn.Name, len(fn.Params), len(call.Args.Values))
	}

	stmts := make([]ast.Statement, 0, len(fn.Params)+1)
	for i, p := range fn.Params {
		local := ast.CloneExpr(p.Local).(*ast.Local)
		bind := ast.Bin(ast.OpAssign, local, call.Args.Values[i])
		bind.SetPos(call.Pos())
		stmts = append(stmts, bind)
	}
	stmts = append(stmts, ast.CloneBlock(fn.Body, nil))

	var retExpr ast.TypeExpression
	if fn.ReturnTypeExpr != nil {
		retExpr = ast.CloneExpr(fn.ReturnTypeExpr).(ast.TypeExpression)
	}
	expansion := ast.NewDoBlock(retExpr, ast.Blk(stmts...))
	expansion.SetPos(call.Pos())
	*place = expansion
	return OutcomeReturnToSymres
}

func (c *Checker) checkMethodCall(place *ast.Expression, n *ast.MethodCall) Outcome {
	if o := c.checkExpression(&n.Receiver); o.Interrupts() {
		return o
	}
	if o := c.resolveExpressionType(n.Receiver); o.Interrupts() {
		return o
	}

	// `v.f(x)` becomes `f(&v, x)`; the address-of degrades to a plain
	// value if the first parameter takes one.
	recv := n.Receiver
	if !types.IsPointer(recv.Type()) {
		addr := ast.NewAddressOf(recv)
		addr.CanBeRemoved = true
		addr.SetPos(recv.Pos())
		recv = addr
	}
	n.CallNode.Args.Values = append([]ast.Expression{recv}, n.CallNode.Args.Values...)
	var expr ast.Expression = n.CallNode
	if o := c.checkExpression(&expr); o.Interrupts() {
		return o
	}
	*place = expr
	return OutcomeSuccess
}
