package driver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/checker"
)

// Unit is one source unit's worth of top-level declarations, already
// parsed and name-bound.
type Unit struct {
	Name  string
	Decls []ast.Node
}

// OperatorOverload binds a procedure to an operator for the whole
// program. Registration order is match order.
type OperatorOverload struct {
	Op   ast.Operator
	Proc ast.Expression
}

// Program is an assembled set of units ready to check.
type Program struct {
	log      *zap.Logger
	units    []*Unit
	reporter *checker.Reporter
	checker  *checker.Checker
	sched    *checker.Scheduler
}

// NewProgram wires a checker and scheduler around the given units.
// A nil resolver means the trees are pre-bound.
func NewProgram(log *zap.Logger, resolver checker.SymbolResolver, units ...*Unit) *Program {
	if log == nil {
		log = zap.NewNop()
	}
	reporter := checker.NewReporter()
	chk := checker.NewChecker(log.Named("checker"), reporter)
	sched := checker.NewScheduler(log.Named("scheduler"), chk, resolver)
	return &Program{
		log:      log,
		units:    units,
		reporter: reporter,
		checker:  chk,
		sched:    sched,
	}
}

// Checker exposes the program's checker, mainly so callers can register
// operator overloads before Run.
func (p *Program) Checker() *checker.Checker { return p.checker }

// Reporter exposes the diagnostic sink.
func (p *Program) Reporter() *checker.Reporter { return p.reporter }

// RegisterOverloads adds operator overload candidates in order.
func (p *Program) RegisterOverloads(ovs ...OperatorOverload) {
	for _, ov := range ovs {
		p.checker.RegisterOperatorOverload(ov.Op, ov.Proc)
	}
}

// Assemble converts every unit's declarations into scheduler entities.
// It must run before Run and reports the first declaration it cannot
// place.
func (p *Program) Assemble() error {
	total := 0
	for _, u := range p.units {
		for _, decl := range u.Decls {
			es, err := entitiesFor(decl)
			if err != nil {
				return fmt.Errorf("unit %s: %w", u.Name, err)
			}
			p.sched.AddAll(es...)
			total += len(es)
		}
	}
	p.log.Debug("program assembled",
		zap.Int("units", len(p.units)), zap.Int("entities", total))
	return nil
}

// Run drives the scheduler to quiescence.
func (p *Program) Run(ctx context.Context) error {
	err := p.sched.Run(ctx)
	p.log.Debug("checking finished",
		zap.Int("passes", p.sched.Passes()),
		zap.Int("diagnostics", len(p.reporter.Diagnostics())))
	return err
}

// entitiesFor maps one top-level declaration to its entities. Entities
// that depend on another, a function body on its header or struct
// defaults on the struct type, are created together so the
// back-references exist before the first pass.
func entitiesFor(decl ast.Node) ([]*checker.Entity, error) {
	switch n := decl.(type) {
	case *ast.Function:
		return []*checker.Entity{
			checker.NewFunctionHeaderEntity(n),
			checker.NewFunctionEntity(n),
		}, nil
	case *ast.OverloadedFunction:
		return []*checker.Entity{checker.NewOverloadedFunctionEntity(n)}, nil
	case *ast.PolyProc:
		return []*checker.Entity{checker.NewPolyProcEntity(n)}, nil
	case *ast.Macro:
		return []*checker.Entity{checker.NewMacroEntity(n)}, nil
	case *ast.Global:
		return []*checker.Entity{
			checker.NewGlobalHeaderEntity(n),
			checker.NewGlobalEntity(n),
		}, nil
	case *ast.StructType:
		return []*checker.Entity{
			checker.NewStructTypeEntity(n),
			checker.NewStructDefaultsEntity(n),
		}, nil
	case *ast.TypeAlias:
		return []*checker.Entity{checker.NewTypeAliasEntity("", n)}, nil
	case *ast.StaticIf:
		return staticIfEntities(n)
	case *ast.DirectiveExport:
		return []*checker.Entity{checker.NewExportEntity(n)}, nil
	case *ast.DirectiveInit:
		return []*checker.Entity{checker.NewInitEntity(n)}, nil
	case *ast.DirectiveLibrary:
		return []*checker.Entity{checker.NewLibraryEntity(n)}, nil
	case ast.Expression:
		return []*checker.Entity{checker.NewExpressionEntity(n)}, nil
	}
	return nil, fmt.Errorf("cannot schedule a top-level %s", decl.Kind())
}

// staticIfEntities builds the entity for a top-level static if. Branch
// declarations become sub-entities held back until the condition
// resolves; the losing branch is never scheduled.
func staticIfEntities(s *ast.StaticIf) ([]*checker.Entity, error) {
	e := checker.NewStaticIfEntity(s)
	var err error
	if e.TrueEntities, err = branchEntities(s.TrueStmt); err != nil {
		return nil, err
	}
	if e.FalseEntities, err = branchEntities(s.FalseStmt); err != nil {
		return nil, err
	}
	return []*checker.Entity{e}, nil
}

func branchEntities(branch ast.Statement) ([]*checker.Entity, error) {
	if branch == nil {
		return nil, nil
	}
	block, ok := branch.(*ast.Block)
	if !ok {
		return entitiesFor(branch)
	}
	var out []*checker.Entity
	for _, stmt := range block.Body {
		es, err := entitiesFor(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, es...)
	}
	return out, nil
}
