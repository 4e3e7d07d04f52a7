package ast

// InterfaceParam is one placeholder of an interface: a value name bound
// to a sentinel of the concrete type, and the type name itself.
type InterfaceParam struct {
	ValueName string
	TypeName  string
}

// InterfaceClause is one requirement of an interface. With Invert set the
// requirement is satisfied when the expression fails to check or fails to
// match the expected type.
type InterfaceClause struct {
	Expr             Expression
	ExpectedTypeExpr TypeExpression
	Invert           bool
}

// Interface declares a set of requirement expressions over placeholder
// types.
type Interface struct {
	exprBase
	Name    string
	Params  []*InterfaceParam
	Clauses []*InterfaceClause
}

func NewInterface(name string, params []*InterfaceParam, clauses []*InterfaceClause) *Interface {
	return &Interface{exprBase: exprBase{base: base{kind: KindInterface}}, Name: name, Params: params, Clauses: clauses}
}

// ConstraintPhase sequences the two-phase evaluation of a constraint.
type ConstraintPhase int

const (
	ConstraintCloning ConstraintPhase = iota
	ConstraintChecking
)

// ConstraintStatus is the tri-state outcome shared back to every caller
// that queued the constraint.
type ConstraintStatus int

const (
	ConstraintQueued ConstraintStatus = iota
	ConstraintFailed
	ConstraintSucceeded
)

// Constraint is one interface obligation bound to concrete type
// arguments. Clauses are deep clones of the interface's requirements;
// ClauseIdx tracks evaluation progress so a resumed constraint continues
// where it stopped.
type Constraint struct {
	exprBase
	Interface Expression
	TypeArgs  []TypeExpression

	Phase     ConstraintPhase
	Clauses   []*InterfaceClause
	ClauseIdx int

	// Report points into the owning context's status array.
	Report *ConstraintStatus
}

func NewConstraint(iface Expression, typeArgs []TypeExpression) *Constraint {
	return &Constraint{exprBase: exprBase{base: base{kind: KindConstraint}}, Interface: iface, TypeArgs: typeArgs}
}

// ConstraintContext batches the constraints attached to a declaration.
// The owner yields until every queued constraint reports a terminal
// status.
type ConstraintContext struct {
	Constraints []*Constraint
	Checks      []ConstraintStatus
	Met         bool
	// ProduceErrors is cleared during speculative probing, where a
	// failed constraint is silent.
	ProduceErrors bool
}

// DirectiveExport publishes an entity under an external name.
type DirectiveExport struct {
	exprBase
	Target       Expression
	NameExpr     Expression
	ResolvedName string
}

func NewDirectiveExport(target, nameExpr Expression) *DirectiveExport {
	return &DirectiveExport{exprBase: exprBase{base: base{kind: KindDirectiveExport}}, Target: target, NameExpr: nameExpr}
}

// DirectiveInit registers a zero-argument function to run at startup,
// after its dependencies. A dependency must resolve to another init
// directive, possibly through aliases.
type DirectiveInit struct {
	exprBase
	Proc         Expression
	Dependencies []Expression
}

func NewDirectiveInit(proc Expression) *DirectiveInit {
	return &DirectiveInit{exprBase: exprBase{base: base{kind: KindDirectiveInit}}, Proc: proc}
}

// DirectiveLibrary names a native library to link.
type DirectiveLibrary struct {
	exprBase
	NameExpr    Expression
	LibraryName string
}

func NewDirectiveLibrary(nameExpr Expression) *DirectiveLibrary {
	return &DirectiveLibrary{exprBase: exprBase{base: base{kind: KindDirectiveLibrary}}, NameExpr: nameExpr}
}
