package checker

import (
	"go.uber.org/zap"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// checkFunctionHeader produces the function's type from its parameter
// list and return type expression. Constraint obligations are settled
// first; a header flagged as a probe fails silently instead of
// reporting, leaving no trace of the attempt.
func (c *Checker) checkFunctionHeader(fn *ast.Function) Outcome {
	if fn.Type() != nil {
		return OutcomeSuccess
	}

	probe := fn.HasFlag(ast.FlagProbeOnly)
	if probe {
		c.reporter.PushBuffer()
		defer c.reporter.PopDiscard()
	}

	if fn.Constraints != nil {
		fn.Constraints.ProduceErrors = !probe
		switch o := c.checkConstraintContext(fn.Constraints, fn.Pos()); o {
		case OutcomeSuccess:
		case OutcomeFailed:
			return OutcomeFailed
		default:
			return o
		}
	}

	sig := &types.Signature{}
	seenDefault := false
	for i, p := range fn.Params {
		if p.Vararg != ast.VarargNone {
			if i != len(fn.Params)-1 {
				return c.errorf(fn.Pos(), "the variadic parameter of '%s' must come last", fn.Name)
			}
			if p.Vararg == ast.VarargUntyped {
				sig.UntypedVariadic = true
				continue
			}
			vt, ok := p.Local.TypeExpr.(*ast.VarArgType)
			if !ok {
				return c.errorf(p.Local.Pos(), "variadic parameter '%s' needs an element type", p.Local.Name)
			}
			elem, o := c.buildType(vt.Elem)
			if o.Interrupts() {
				return o
			}
			sig.VariadicElem = elem
			p.Local.SetType(types.MakeVarArgs(elem))
			p.Local.AddFlags(ast.FlagChecked)
			continue
		}

		var pt *types.Type
		if p.Local.TypeExpr != nil {
			t, o := c.buildType(p.Local.TypeExpr)
			if o.Interrupts() {
				return o
			}
			pt = t
		} else if p.Default != nil {
			// The default's type stands in for a missing annotation.
			if o := c.checkExpression(&p.Default); o.Interrupts() {
				return o
			}
			if o := c.resolveExpressionType(p.Default); o.Interrupts() {
				return o
			}
			pt = p.Default.Type()
		} else {
			return c.errorf(p.Local.Pos(), "parameter '%s' has neither a type nor a default", p.Local.Name)
		}

		if pt.Size() == 0 {
			return c.errorf(p.Local.Pos(), "parameter '%s' has a zero-size type '%s'", p.Local.Name, pt.Name())
		}
		if p.Default != nil {
			seenDefault = true
		} else if seenDefault {
			return c.errorf(p.Local.Pos(), "parameter '%s' without a default cannot follow defaulted parameters", p.Local.Name)
		}

		p.Local.SetType(pt)
		p.Local.AddFlags(ast.FlagChecked)
		sig.Params = append(sig.Params, pt)
	}

	if fn.ReturnTypeExpr != nil {
		rt, o := c.buildType(fn.ReturnTypeExpr)
		if o.Interrupts() {
			return o
		}
		sig.Return = rt
	} else {
		sig.Return = types.Basic(types.BasicVoid)
	}

	fn.SetType(types.MakeFunction(sig))
	c.log.Debug("function header checked", zap.String("function", fn.Name))
	return OutcomeSuccess
}

// checkFunction checks a function body once the header gave it a type.
func (c *Checker) checkFunction(fn *ast.Function) Outcome {
	sig := signatureOf(fn.Type())
	if sig == nil {
		if fn.HeaderEntity != nil && !fn.HeaderEntity.Pending() {
			return OutcomeFailed
		}
		return c.yield(fn.Pos(), "header of '%s' is not checked yet", fn.Name)
	}
	if fn.IsIntrinsic {
		return OutcomeComplete
	}

	c.pushFunction(fn)
	o := c.checkBlock(fn.Body)
	c.popFunction()
	if o.Interrupts() {
		return o
	}

	// A body with no return statement settles an inferred return type
	// to void.
	if sig.Return == types.AutoReturn {
		sig.Return = types.Basic(types.BasicVoid)
	}
	return OutcomeSuccess
}

func (c *Checker) checkOverloadedFunction(of *ast.OverloadedFunction) Outcome {
	for _, cand := range of.Overloads {
		switch cand.(type) {
		case *ast.Function, *ast.PolyProc, *ast.OverloadedFunction, *ast.Macro:
		default:
			return c.errorf(cand.Pos(), "'%s' overload option is not a procedure", of.Name)
		}
	}
	return OutcomeSuccess
}

// checkGlobalHeader settles a global's type, either from its annotation
// or from its initial value.
func (c *Checker) checkGlobalHeader(g *ast.Global) Outcome {
	if g.Type() != nil {
		return OutcomeSuccess
	}
	if g.TypeExpr != nil {
		t, o := c.buildType(g.TypeExpr)
		if o.Interrupts() {
			return o
		}
		g.SetType(t)
		return OutcomeSuccess
	}
	if g.Value == nil {
		return c.errorf(g.Pos(), "global '%s' needs a type or a value", g.Name)
	}
	if o := c.checkExpression(&g.Value); o.Interrupts() {
		return o
	}
	if o := c.resolveExpressionType(g.Value); o.Interrupts() {
		return o
	}
	g.SetType(g.Value.Type())
	return OutcomeSuccess
}

// checkGlobal checks a global's initial value against its settled type.
func (c *Checker) checkGlobal(g *ast.Global) Outcome {
	if g.Type() == nil {
		return c.yield(g.Pos(), "global '%s' does not have a type yet", g.Name)
	}
	if g.Value == nil {
		return OutcomeSuccess
	}
	if o := c.checkExpression(&g.Value); o.Interrupts() {
		return o
	}
	switch c.unifyNodeAndType(&g.Value, g.Type()) {
	case MatchSuccess:
	case MatchYield:
		return c.yield(g.Pos(), "initial value of '%s' is not decided yet", g.Name)
	default:
		if o := c.resolveExpressionType(g.Value); o.Interrupts() {
			return o
		}
		return c.errorf(g.Value.Pos(), "cannot initialize '%s' of type '%s' with a '%s'",
			g.Name, g.Type().Name(), g.Value.Type().Name())
	}
	if !g.Value.HasFlag(ast.FlagComptime) {
		return c.errorf(g.Value.Pos(), "initial value of global '%s' must be known at compile time", g.Name)
	}
	return OutcomeSuccess
}

// checkStructType constructs the struct's type descriptor. The pending
// descriptor is published before member types are built, so members may
// point back at the struct through a pointer. Member layout completes
// in two steps: direct members first, then promotion of members pulled
// in with `use`.
func (c *Checker) checkStructType(s *ast.StructType) Outcome {
	if s.Cache != nil {
		return OutcomeSuccess
	}
	if !s.PendingValid {
		info := &types.StructInfo{Name: s.Name}
		s.PendingType = types.MakeStruct(info)
		s.PendingValid = true
	}
	info := s.PendingType.Struct

	if s.Constraints != nil {
		s.Constraints.ProduceErrors = true
		switch o := c.checkConstraintContext(s.Constraints, s.Pos()); o {
		case OutcomeSuccess:
		case OutcomeFailed:
			return OutcomeFailed
		default:
			return o
		}
	}

	// Resume member construction where the last attempt stopped.
	for i := len(info.Members); i < len(s.Members); i++ {
		decl := s.Members[i]
		t, o := c.buildType(decl.TypeExpr)
		if o.Interrupts() {
			return o
		}
		if _, dup := info.Member(decl.Name); dup {
			return c.errorf(s.Pos(), "struct '%s' has two members named '%s'", s.Name, decl.Name)
		}
		info.AddMember(&types.StructMember{
			Name:                  decl.Name,
			Type:                  t,
			UsedThroughPointerIdx: -1,
			HasDefault:            decl.Default != nil,
			Used:                  decl.Used,
		})
	}
	info.Status = types.StructMembersDone

	for _, m := range info.Members {
		if !m.Used {
			continue
		}
		if o := c.promoteUsedMember(s, info, m); o.Interrupts() {
			return o
		}
	}
	info.Status = types.StructUsesDone

	s.Cache = s.PendingType
	s.SetType(s.Cache)
	c.log.Debug("struct type constructed",
		zap.String("struct", s.Name), zap.Int("members", len(info.Members)))
	return OutcomeSuccess
}

// promoteUsedMember maps the members of an embedded struct into the
// containing struct's name table. Access through an embedding pointer
// is recorded so field accesses can materialize the intermediate load.
func (c *Checker) promoteUsedMember(s *ast.StructType, info *types.StructInfo, m *types.StructMember) Outcome {
	inner := m.Type
	throughPointer := false
	if types.IsPointer(inner) {
		inner = inner.Elem
		throughPointer = true
	}
	innerInfo := types.StructOf(inner)
	if innerInfo == nil {
		return c.errorf(s.Pos(), "'use' member '%s' of '%s' is not a struct", m.Name, s.Name)
	}
	if innerInfo.Status != types.StructUsesDone {
		return c.yield(s.Pos(), "embedded struct '%s' is not fully laid out yet", innerInfo.Name)
	}
	for _, im := range innerInfo.Members {
		if _, clash := info.Member(im.Name); clash {
			return c.errorf(s.Pos(), "member '%s' promoted from '%s' collides with an existing member",
				im.Name, innerInfo.Name)
		}
		promoted := &types.StructMember{
			Name:                  im.Name,
			Type:                  im.Type,
			Idx:                   im.Idx,
			Offset:                im.Offset,
			UsedThroughPointerIdx: -1,
		}
		if throughPointer {
			promoted.UsedThroughPointerIdx = m.Idx
		} else {
			promoted.Offset = m.Offset + im.Offset
		}
		info.PromoteMember(promoted)
	}
	return OutcomeSuccess
}

// checkStructDefaults checks member default values once the struct's
// type exists. A separate entity keeps default expressions, which may
// call functions, from blocking type construction.
func (c *Checker) checkStructDefaults(s *ast.StructType) Outcome {
	if s.Cache == nil {
		return c.yield(s.Pos(), "type of struct '%s' is not constructed yet", s.Name)
	}
	info := s.Cache.Struct
	for _, decl := range s.Members {
		if decl.Default == nil {
			continue
		}
		m, _ := info.Member(decl.Name)
		if o := c.checkExpression(&decl.Default); o.Interrupts() {
			return o
		}
		switch c.unifyNodeAndType(&decl.Default, m.Type) {
		case MatchSuccess:
		case MatchYield:
			return c.yield(decl.Default.Pos(), "default for member '%s' is not decided yet", decl.Name)
		default:
			if o := c.resolveExpressionType(decl.Default); o.Interrupts() {
				return o
			}
			return c.errorf(decl.Default.Pos(), "default for member '%s' has type '%s', expected '%s'",
				decl.Name, decl.Default.Type().Name(), m.Type.Name())
		}
	}
	return OutcomeSuccess
}

func (c *Checker) checkTypeAlias(e *Entity) Outcome {
	t, o := c.buildType(e.Alias.To)
	if o.Interrupts() {
		return o
	}
	e.Alias.SetType(t)
	return OutcomeComplete
}

func (c *Checker) checkDirectiveExport(d *ast.DirectiveExport) Outcome {
	if o := c.checkExpression(&d.Target); o.Interrupts() {
		return o
	}
	switch target := d.Target.(type) {
	case *ast.Function:
		if target.Type() == nil {
			return c.yield(d.Pos(), "cannot export a function before it is typed")
		}
		target.AddFlags(ast.FlagFunctionUsed)
	case *ast.PolyProc:
		return c.errorf(d.Pos(), "cannot export the polymorphic procedure '%s'", target.Name)
	default:
		return c.errorf(d.Pos(), "only procedures can be exported")
	}

	if o := c.checkExpression(&d.NameExpr); o.Interrupts() {
		return o
	}
	lit, ok := d.NameExpr.(*ast.StrLit)
	if !ok || !d.NameExpr.HasFlag(ast.FlagComptime) {
		return c.errorf(d.NameExpr.Pos(), "export name must be a compile-time string")
	}
	d.ResolvedName = lit.Value
	return OutcomeComplete
}

func (c *Checker) checkDirectiveInit(d *ast.DirectiveInit) Outcome {
	if !d.HasFlag(ast.FlagChecked) {
		if o := c.checkExpression(&d.Proc); o.Interrupts() {
			return o
		}
		fn, ok := d.Proc.(*ast.Function)
		if !ok {
			return c.errorf(d.Pos(), "an init procedure must be a plain function")
		}
		sig := signatureOf(fn.Type())
		if sig == nil {
			return c.yield(d.Pos(), "init procedure '%s' is not typed yet", fn.Name)
		}
		if len(sig.Params) != 0 || sig.Variadic() {
			return c.errorf(d.Pos(), "init procedure '%s' cannot take parameters", fn.Name)
		}
		fn.AddFlags(ast.FlagFunctionUsed)
		d.AddFlags(ast.FlagChecked)
	}

	// Every dependency registers its own procedure before this one may.
	for _, dep := range d.Dependencies {
		target := dep
		for {
			a, ok := target.(*ast.Alias)
			if !ok {
				break
			}
			target = a.Target
		}
		di, ok := target.(*ast.DirectiveInit)
		if !ok {
			return c.errorf(d.Pos(), "every dependency of an init directive must be another init directive")
		}
		e, _ := di.Entity().(*Entity)
		if e == nil || e.State != StateFinalized {
			return c.yield(d.Pos(), "init directive dependencies are not finalized yet")
		}
	}

	c.initProcs = append(c.initProcs, d.Proc.(*ast.Function))
	return OutcomeComplete
}

func (c *Checker) checkDirectiveLibrary(d *ast.DirectiveLibrary) Outcome {
	if o := c.checkExpression(&d.NameExpr); o.Interrupts() {
		return o
	}
	lit, ok := d.NameExpr.(*ast.StrLit)
	if !ok || !d.NameExpr.HasFlag(ast.FlagComptime) {
		return c.errorf(d.NameExpr.Pos(), "library name must be a compile-time string")
	}
	d.LibraryName = lit.Value
	return OutcomeComplete
}
