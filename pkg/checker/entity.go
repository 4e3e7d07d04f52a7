package checker

import (
	"thorn/compiler-go/pkg/ast"
)

// EntityKind identifies what a scheduled entity wraps. The numeric
// order is also the preferred processing order within a pass, so
// headers run before bodies and types before the globals using them.
type EntityKind int

const (
	EntityStaticIf EntityKind = iota
	EntityTypeAlias
	EntityStructType
	EntityStructDefaults
	EntityGlobalHeader
	EntityGlobal
	EntityOverloadedFunction
	EntityPolyProc
	EntityMacro
	EntityConstraintCheck
	EntityFunctionHeader
	EntityDirectiveExport
	EntityDirectiveInit
	EntityDirectiveLibrary
	EntityFunction
	EntityPolyQuery
	EntityExpression
)

var entityKindNames = map[EntityKind]string{
	EntityStaticIf:           "static-if",
	EntityTypeAlias:          "type-alias",
	EntityStructType:         "struct-type",
	EntityStructDefaults:     "struct-defaults",
	EntityGlobalHeader:       "global-header",
	EntityGlobal:             "global",
	EntityOverloadedFunction: "overloaded-function",
	EntityPolyProc:           "poly-proc",
	EntityMacro:              "macro",
	EntityConstraintCheck:    "constraint-check",
	EntityFunctionHeader:     "function-header",
	EntityDirectiveExport:    "directive-export",
	EntityDirectiveInit:      "directive-init",
	EntityDirectiveLibrary:   "directive-library",
	EntityFunction:           "function",
	EntityPolyQuery:          "poly-query",
	EntityExpression:         "expression",
}

func (k EntityKind) String() string {
	if n, ok := entityKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// EntityState is the lifecycle position of an entity.
type EntityState int

const (
	StateUnresolved EntityState = iota
	StateResolvingSymbols
	StateCheckingTypes
	StateCodeGenReady
	StateFinalized
	StateFailed
)

var entityStateNames = map[EntityState]string{
	StateUnresolved:       "unresolved",
	StateResolvingSymbols: "resolving-symbols",
	StateCheckingTypes:    "checking-types",
	StateCodeGenReady:     "codegen-ready",
	StateFinalized:        "finalized",
	StateFailed:           "failed",
}

func (s EntityState) String() string {
	if n, ok := entityStateNames[s]; ok {
		return n
	}
	return "unknown"
}

// PolyQuery is a pending polymorphic instantiation request.
type PolyQuery struct {
	Proc      *ast.PolyProc
	Args      *ast.Arguments
	Solutions []ast.PolySolution
	// ErrorOnFail distinguishes a direct call, which must report, from
	// an overload candidate probe, which fails silently.
	ErrorOnFail bool
	// Result receives the instantiated function once solved.
	Result *ast.Function
}

// Entity is one unit of scheduled work. Exactly one payload field is
// set, matching Kind.
type Entity struct {
	Kind  EntityKind
	State EntityState
	Name  string
	Pos   ast.Pos

	Function   *ast.Function
	Overloads  *ast.OverloadedFunction
	Global     *ast.Global
	Expr       ast.Expression
	StaticIf   *ast.StaticIf
	Struct     *ast.StructType
	Alias      *ast.TypeAlias
	PolyProc   *ast.PolyProc
	Query      *PolyQuery
	MacroNode  *ast.Macro
	Constraint *ast.Constraint
	Export     *ast.DirectiveExport
	Init       *ast.DirectiveInit
	Library    *ast.DirectiveLibrary

	// TrueEntities and FalseEntities hold the entities produced from a
	// static-if's branches; the losing side is discarded unprocessed.
	TrueEntities  []*Entity
	FalseEntities []*Entity

	// attempts counts scheduler passes that reached this entity.
	attempts int
}

// Pending reports whether the entity still has work ahead of it.
// Implements ast.EntityRef.
func (e *Entity) Pending() bool {
	return e.State < StateCodeGenReady
}

// Done reports a successfully finished entity.
func (e *Entity) Done() bool {
	return e.State == StateCodeGenReady || e.State == StateFinalized
}

// Failed reports an entity in the failed state.
func (e *Entity) Failed() bool { return e.State == StateFailed }

func NewFunctionHeaderEntity(fn *ast.Function) *Entity {
	e := &Entity{Kind: EntityFunctionHeader, Name: fn.Name, Pos: fn.Pos(), Function: fn}
	fn.HeaderEntity = e
	return e
}

func NewFunctionEntity(fn *ast.Function) *Entity {
	return &Entity{Kind: EntityFunction, Name: fn.Name, Pos: fn.Pos(), Function: fn}
}

func NewOverloadedFunctionEntity(of *ast.OverloadedFunction) *Entity {
	return &Entity{Kind: EntityOverloadedFunction, Name: of.Name, Pos: of.Pos(), Overloads: of}
}

func NewGlobalHeaderEntity(g *ast.Global) *Entity {
	e := &Entity{Kind: EntityGlobalHeader, Name: g.Name, Pos: g.Pos(), Global: g}
	g.TypeEntity = e
	return e
}

func NewGlobalEntity(g *ast.Global) *Entity {
	return &Entity{Kind: EntityGlobal, Name: g.Name, Pos: g.Pos(), Global: g}
}

func NewExpressionEntity(expr ast.Expression) *Entity {
	return &Entity{Kind: EntityExpression, Pos: expr.Pos(), Expr: expr}
}

func NewStaticIfEntity(s *ast.StaticIf) *Entity {
	return &Entity{Kind: EntityStaticIf, Pos: s.Pos(), StaticIf: s}
}

func NewStructTypeEntity(s *ast.StructType) *Entity {
	e := &Entity{Kind: EntityStructType, Name: s.Name, Pos: s.Pos(), Struct: s}
	s.TypeEntity = e
	return e
}

func NewStructDefaultsEntity(s *ast.StructType) *Entity {
	e := &Entity{Kind: EntityStructDefaults, Name: s.Name, Pos: s.Pos(), Struct: s}
	s.DefaultsEntity = e
	return e
}

func NewTypeAliasEntity(name string, a *ast.TypeAlias) *Entity {
	return &Entity{Kind: EntityTypeAlias, Name: name, Pos: a.Pos(), Alias: a}
}

func NewPolyProcEntity(p *ast.PolyProc) *Entity {
	return &Entity{Kind: EntityPolyProc, Name: p.Name, Pos: p.Pos(), PolyProc: p}
}

func NewPolyQueryEntity(q *PolyQuery, pos ast.Pos) *Entity {
	return &Entity{Kind: EntityPolyQuery, Name: q.Proc.Name, Pos: pos, Query: q}
}

func NewMacroEntity(m *ast.Macro) *Entity {
	return &Entity{Kind: EntityMacro, Name: m.Body.Name, Pos: m.Pos(), MacroNode: m}
}

func NewConstraintEntity(c *ast.Constraint) *Entity {
	return &Entity{Kind: EntityConstraintCheck, Pos: c.Pos(), Constraint: c}
}

func NewExportEntity(d *ast.DirectiveExport) *Entity {
	return &Entity{Kind: EntityDirectiveExport, Pos: d.Pos(), Export: d}
}

func NewInitEntity(d *ast.DirectiveInit) *Entity {
	e := &Entity{Kind: EntityDirectiveInit, Pos: d.Pos(), Init: d}
	d.SetEntity(e)
	return e
}

func NewLibraryEntity(d *ast.DirectiveLibrary) *Entity {
	return &Entity{Kind: EntityDirectiveLibrary, Pos: d.Pos(), Library: d}
}
