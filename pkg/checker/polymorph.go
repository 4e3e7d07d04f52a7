package checker

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// polymorphicProcLookup resolves a polymorphic procedure against an
// argument list. Solutions come from the types of the arguments named
// by the procedure's polymorphic parameters; instances are cached by
// solution set, so identical call shapes share one function. A fresh
// instantiation is scheduled and the caller yields until its header has
// produced a type.
func (c *Checker) polymorphicProcLookup(pp *ast.PolyProc, args *ast.Arguments, errorOnFail bool) (*ast.Function, Outcome) {
	subst := ast.Subst{}
	sols := make([]ast.PolySolution, 0, len(pp.PolyParams))
	for _, param := range pp.PolyParams {
		if param.ParamIdx >= len(args.Values) || args.Values[param.ParamIdx] == nil {
			if errorOnFail {
				return nil, c.errorf(pp.Pos(), "no argument given for polymorphic parameter '%s'", param.Name)
			}
			return nil, OutcomeFailed
		}
		arg := args.Values[param.ParamIdx]
		if arg.Type() == nil {
			if o := c.resolveExpressionType(arg); o.Interrupts() {
				return nil, o
			}
		}
		t := arg.Type()
		if t == nil || t == types.AutoReturn {
			return nil, OutcomeYield
		}
		subst[param.Name] = t
		sols = append(sols, ast.PolySolution{Name: param.Name, Type: &ast.TypeValue{Name: t.Name(), Resolved: t}})
	}

	key := solutionKey(sols)
	if pp.Instances == nil {
		pp.Instances = make(map[string]*ast.Function)
	}
	if inst, ok := pp.Instances[key]; ok {
		if inst.Type() == nil {
			return nil, OutcomeYield
		}
		return inst, OutcomeSuccess
	}

	inst := c.instantiatePolyProc(pp, subst, key)
	pp.Instances[key] = inst
	c.enqueue(NewFunctionHeaderEntity(inst))
	c.enqueue(NewFunctionEntity(inst))
	c.log.Debug("instantiated polymorphic procedure",
		zap.String("proc", pp.Name), zap.String("solutions", key))
	return nil, OutcomeYield
}

func (c *Checker) instantiatePolyProc(pp *ast.PolyProc, subst ast.Subst, key string) *ast.Function {
	inst := ast.CloneExprWith(pp.Template, subst).(*ast.Function)
	inst.Name = pp.Name + "(" + key + ")"
	inst.GeneratedFrom = pp.Pos()
	inst.HasGenerated = true
	inst.SetPos(pp.Template.Pos())
	return inst
}

func solutionKey(sols []ast.PolySolution) string {
	parts := make([]string, len(sols))
	for i, s := range sols {
		parts[i] = s.Name + "=" + s.Type.Name
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// checkPolyQuery drives a deferred instantiation request entity.
func (c *Checker) checkPolyQuery(e *Entity) Outcome {
	q := e.Query
	inst, o := c.polymorphicProcLookup(q.Proc, q.Args, q.ErrorOnFail)
	switch o {
	case OutcomeSuccess:
		q.Solutions = solutionsOf(q.Proc, q.Args)
		q.Result = inst
		return OutcomeComplete
	case OutcomeYield:
		return c.yield(e.Pos, "cannot solve polymorphic procedure '%s' yet", q.Proc.Name)
	default:
		if q.ErrorOnFail {
			return o
		}
		return OutcomeFailed
	}
}

func solutionsOf(pp *ast.PolyProc, args *ast.Arguments) []ast.PolySolution {
	sols := make([]ast.PolySolution, 0, len(pp.PolyParams))
	for _, param := range pp.PolyParams {
		if param.ParamIdx >= len(args.Values) || args.Values[param.ParamIdx] == nil {
			continue
		}
		t := args.Values[param.ParamIdx].Type()
		if t == nil {
			continue
		}
		sols = append(sols, ast.PolySolution{Name: param.Name, Type: &ast.TypeValue{Name: t.Name(), Resolved: t}})
	}
	return sols
}
