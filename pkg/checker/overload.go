package checker

import (
	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// binaryopTryOperatorOverload offers a binary operation to the
// registered overloads for op. The synthetic argument list is cached on
// the node so a retried pass keeps any literal typing or autocast
// rewrites already applied to it. For assignment-family operators the
// left operand is passed by address, through a removable address-of.
//
// Returns Success after rewriting the node into a call, Yield when a
// candidate cannot be judged yet, Failed when no overload matches.
func (c *Checker) binaryopTryOperatorOverload(place *ast.Expression, n *ast.Binary, op ast.Operator) Outcome {
	if n.OverloadArgs == nil {
		left := n.Left
		if op.IsAssignment() {
			addr := ast.NewAddressOf(left)
			addr.CanBeRemoved = true
			addr.SetPos(left.Pos())
			// Matching happens before the synthesized call is checked,
			// so the wrapper needs its type up front.
			if left.Type() != nil {
				addr.SetType(types.MakePointer(left.Type()))
			}
			left = addr
		}
		n.OverloadArgs = &ast.Arguments{Values: []ast.Expression{left, n.Right}}
	}

	match, o := c.findMatchingOverload(c.overloads[op], n.OverloadArgs)
	if o != OutcomeSuccess {
		return o
	}
	call := ast.NewCall(match, *n.OverloadArgs)
	call.SetPos(n.Pos())
	var expr ast.Expression = call
	if o := c.checkExpression(&expr); o.Interrupts() {
		return o
	}
	*place = expr
	return OutcomeSuccess
}

// trySubscriptAssignOverload offers `container[index] = value` to the
// `[]=` overloads. The container goes by address so the overload can
// mutate it.
func (c *Checker) trySubscriptAssignOverload(place *ast.Expression, n *ast.Binary, sub *ast.Subscript) Outcome {
	if o := c.checkExpression(&sub.Addr); o.Interrupts() {
		return o
	}
	if !types.IsStructLike(sub.Addr.Type()) {
		return OutcomeFailed
	}
	if o := c.checkExpression(&sub.Index); o.Interrupts() {
		return o
	}
	if o := c.checkExpression(&n.Right); o.Interrupts() {
		return o
	}

	if n.OverloadArgs == nil {
		addr := ast.NewAddressOf(sub.Addr)
		addr.CanBeRemoved = true
		addr.SetPos(sub.Addr.Pos())
		addr.SetType(types.MakePointer(sub.Addr.Type()))
		n.OverloadArgs = &ast.Arguments{Values: []ast.Expression{addr, sub.Index, n.Right}}
	}

	match, o := c.findMatchingOverload(c.overloads[ast.OpSubscriptEquals], n.OverloadArgs)
	if o != OutcomeSuccess {
		return o
	}
	call := ast.NewCall(match, *n.OverloadArgs)
	call.SetPos(n.Pos())
	var expr ast.Expression = call
	if o := c.checkExpression(&expr); o.Interrupts() {
		return o
	}
	*place = expr
	return OutcomeSuccess
}

// findMatchingOverload walks candidates in registration order and
// returns the first whose parameters accept the arguments. A candidate
// whose signature is not constructed yet makes the whole lookup yield,
// since a later pass might select it.
func (c *Checker) findMatchingOverload(candidates []ast.Expression, args *ast.Arguments) (ast.Expression, Outcome) {
	for _, cand := range candidates {
		switch fn := cand.(type) {
		case *ast.Function:
			if fn.Type() == nil {
				if fn.HeaderEntity != nil && !fn.HeaderEntity.Pending() {
					continue
				}
				return nil, OutcomeYield
			}
			if c.argumentsFitFunction(fn, args) {
				return fn, OutcomeSuccess
			}

		case *ast.PolyProc:
			inst, o := c.polymorphicProcLookup(fn, args, false)
			switch o {
			case OutcomeSuccess:
				if c.argumentsFitFunction(inst, args) {
					return inst, OutcomeSuccess
				}
			case OutcomeYield:
				return nil, OutcomeYield
			}
			// A failed instantiation just rules this candidate out.

		case *ast.OverloadedFunction:
			inner, o := c.findMatchingOverload(fn.Overloads, args)
			if o != OutcomeFailed {
				return inner, o
			}
		}
	}
	return nil, OutcomeFailed
}

// argumentsFitFunction checks the provided arguments against a typed
// function's parameters without reporting and without filling defaults.
func (c *Checker) argumentsFitFunction(fn *ast.Function, args *ast.Arguments) bool {
	sig := signatureOf(fn.Type())
	if sig == nil {
		return false
	}
	fixed := len(sig.Params)
	given := len(args.Values)
	if given > fixed && !sig.Variadic() {
		return false
	}
	if given < fixed {
		// The gap must be coverable by defaults.
		for i := given; i < fixed; i++ {
			if fn.Params[i].Default == nil {
				return false
			}
		}
	}
	for i := range args.Values {
		if i >= fixed {
			if sig.UntypedVariadic {
				continue
			}
			if c.unifyNodeAndType(&args.Values[i], sig.VariadicElem) != MatchSuccess {
				return false
			}
			continue
		}
		if c.unifyNodeAndType(&args.Values[i], sig.Params[i]) != MatchSuccess {
			return false
		}
	}
	for _, nv := range args.Named {
		idx := paramIndex(fn, nv.Name)
		if idx < 0 || idx >= fixed {
			return false
		}
		if c.unifyNodeAndType(&nv.Value, sig.Params[idx]) != MatchSuccess {
			return false
		}
	}
	return true
}

func paramIndex(fn *ast.Function, name string) int {
	for i, p := range fn.Params {
		if p.Local.Name == name {
			return i
		}
	}
	return -1
}
