package checker

import (
	"go.uber.org/zap"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// checking levels, tracked while descending into a statement. Assignment
// is only legal at statement level.
const (
	statementLevel = iota
	expressionLevel
)

// Checker walks entity payloads, resolving types, rewriting nodes in
// place and reporting diagnostics. One Checker serves one program; it
// is not safe for concurrent use.
type Checker struct {
	log      *zap.Logger
	reporter *Reporter
	sched    *Scheduler

	// overloads holds operator overload candidates, indexed by operator.
	overloads [ast.OperatorCount][]ast.Expression

	intrinsics map[string]ast.IntrinsicKind
	builtins   Builtins

	// fnStack tracks the functions whose bodies are being checked, for
	// return statements and inferred return types.
	fnStack []*ast.Function

	level             int
	insideForIterator bool

	// finalTypesOnly forbids leaving a numeric literal untyped; set
	// while resolving the final type of a checked expression entity.
	finalTypesOnly bool

	// initProcs collects init-directive procedures in dependency order.
	initProcs []*ast.Function
}

func NewChecker(log *zap.Logger, reporter *Reporter) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	if reporter == nil {
		reporter = NewReporter()
	}
	return &Checker{
		log:        log,
		reporter:   reporter,
		intrinsics: defaultIntrinsics(),
		builtins:   DefaultBuiltins(),
	}
}

// Reporter exposes the diagnostic sink.
func (c *Checker) Reporter() *Reporter { return c.reporter }

// Builtins exposes the built-in type table.
func (c *Checker) Builtins() *Builtins { return &c.builtins }

// InitProcedures returns the registered init procedures in the order
// they must run: every procedure follows its dependencies.
func (c *Checker) InitProcedures() []*ast.Function { return c.initProcs }

// RegisterOperatorOverload adds an overload candidate for op. Candidates
// are tried in registration order.
func (c *Checker) RegisterOperatorOverload(op ast.Operator, overload ast.Expression) {
	c.overloads[op] = append(c.overloads[op], overload)
}

// yield parks the caller's entity. Once the scheduler has flagged a
// stuck pass, the parked reason is promoted to an error instead so the
// run terminates with a message rather than spinning.
func (c *Checker) yield(pos ast.Pos, format string, args ...any) Outcome {
	if c.sched != nil && c.sched.cycleDetected {
		c.reporter.Errorf(pos, format+" (likely due to a circular dependency)", args...)
		return OutcomeError
	}
	return OutcomeYield
}

func (c *Checker) errorf(pos ast.Pos, format string, args ...any) Outcome {
	c.reporter.Errorf(pos, format, args...)
	return OutcomeError
}

// enqueue hands a freshly created entity to the scheduler.
func (c *Checker) enqueue(e *Entity) {
	if c.sched != nil {
		c.sched.Add(e)
	}
}

// checkEntity dispatches one entity in the checking-types state.
func (c *Checker) checkEntity(e *Entity) Outcome {
	switch e.Kind {
	case EntityFunctionHeader:
		return c.checkFunctionHeader(e.Function)
	case EntityFunction:
		return c.checkFunction(e.Function)
	case EntityOverloadedFunction:
		return c.checkOverloadedFunction(e.Overloads)
	case EntityGlobalHeader:
		return c.checkGlobalHeader(e.Global)
	case EntityGlobal:
		return c.checkGlobal(e.Global)
	case EntityExpression:
		return c.checkTopLevelExpression(e)
	case EntityStaticIf:
		return c.checkStaticIf(e)
	case EntityStructType:
		return c.checkStructType(e.Struct)
	case EntityStructDefaults:
		return c.checkStructDefaults(e.Struct)
	case EntityTypeAlias:
		return c.checkTypeAlias(e)
	case EntityPolyProc, EntityMacro:
		// Templates are checked per instantiation or expansion site.
		return OutcomeComplete
	case EntityPolyQuery:
		return c.checkPolyQuery(e)
	case EntityConstraintCheck:
		return c.checkConstraint(e.Constraint)
	case EntityDirectiveExport:
		return c.checkDirectiveExport(e.Export)
	case EntityDirectiveInit:
		return c.checkDirectiveInit(e.Init)
	case EntityDirectiveLibrary:
		return c.checkDirectiveLibrary(e.Library)
	}
	return c.errorf(e.Pos, "internal: unhandled entity kind %s", e.Kind)
}

// checkTopLevelExpression checks a free-standing expression entity and
// forces its type to a concrete one.
func (c *Checker) checkTopLevelExpression(e *Entity) Outcome {
	if o := c.checkExpression(&e.Expr); o.Interrupts() {
		return o
	}
	c.finalTypesOnly = true
	o := c.resolveExpressionType(e.Expr)
	c.finalTypesOnly = false
	return o
}

// currentFunction returns the innermost function whose body is being
// checked, or nil at top level.
func (c *Checker) currentFunction() *ast.Function {
	if len(c.fnStack) == 0 {
		return nil
	}
	return c.fnStack[len(c.fnStack)-1]
}

func (c *Checker) pushFunction(fn *ast.Function) { c.fnStack = append(c.fnStack, fn) }
func (c *Checker) popFunction()                  { c.fnStack = c.fnStack[:len(c.fnStack)-1] }

// atExpressionLevel runs fn with the checking level raised, restoring
// it afterwards even on interrupting outcomes.
func (c *Checker) atExpressionLevel(fn func() Outcome) Outcome {
	prev := c.level
	c.level = expressionLevel
	o := fn()
	c.level = prev
	return o
}

// signatureOf fetches the resolved signature behind a callable's type.
func signatureOf(t *types.Type) *types.Signature {
	if t == nil || t.Kind != types.KindFunction {
		return nil
	}
	return t.Fn
}
