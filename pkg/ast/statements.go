package ast

// Block is a statement sequence. StatementIdx remembers how many leading
// statements already checked successfully so re-entry resumes, not
// restarts.
type Block struct {
	stmtBase
	Body         []Statement
	StatementIdx int
}

func NewBlock(body []Statement) *Block {
	return &Block{stmtBase: stmtBase{base: base{kind: KindBlock}}, Body: body}
}

// Return returns an optional value from the enclosing function.
type Return struct {
	stmtBase
	Value Expression
}

func NewReturn(value Expression) *Return {
	return &Return{stmtBase: stmtBase{base: base{kind: KindReturn}}, Value: value}
}

// If is a conditional statement with an optional initialization statement.
type If struct {
	stmtBase
	Init      Statement
	Cond      Expression
	TrueStmt  Statement
	FalseStmt Statement
}

func NewIf(cond Expression, trueStmt, falseStmt Statement) *If {
	return &If{stmtBase: stmtBase{base: base{kind: KindIf}}, Cond: cond, TrueStmt: trueStmt, FalseStmt: falseStmt}
}

// StaticIf selects between two statement branches at compile time. At the
// top level it is an entity that injects the chosen branch's entities.
type StaticIf struct {
	stmtBase
	Cond      Expression
	TrueStmt  Statement
	FalseStmt Statement

	flags Flags
	// Resolution is valid once FlagStaticIfResolved is set.
	Resolution bool
}

func (s *StaticIf) HasFlag(f Flags) bool { return s.flags&f != 0 }
func (s *StaticIf) AddFlags(f Flags)     { s.flags |= f }

func NewStaticIf(cond Expression, trueStmt, falseStmt Statement) *StaticIf {
	return &StaticIf{stmtBase: stmtBase{base: base{kind: KindStaticIf}}, Cond: cond, TrueStmt: trueStmt, FalseStmt: falseStmt}
}

// While is a loop with an optional else branch taken when the condition
// is false on entry. BottomTest makes it a do-while.
type While struct {
	stmtBase
	Init       Statement
	Cond       Expression
	Body       Statement
	ElseStmt   Statement
	BottomTest bool
}

func NewWhile(cond Expression, body Statement) *While {
	return &While{stmtBase: stmtBase{base: base{kind: KindWhile}}, Cond: cond, Body: body}
}

// ForLoopKind is the classification of a for-loop's iterable, assigned
// during checking.
type ForLoopKind int

const (
	ForInvalid ForLoopKind = iota
	ForRange
	ForArray
	ForSlice
	ForDynArray
	ForIterator
)

// For iterates over a classified iterable. ByPointer binds the loop
// variable to element addresses where legal.
type For struct {
	stmtBase
	Var       *Local
	Iterable  Expression
	Body      *Block
	ByPointer bool
	NoClose   bool

	LoopKind ForLoopKind
	flags    Flags
}

func (f *For) HasFlag(fl Flags) bool { return f.flags&fl != 0 }
func (f *For) AddFlags(fl Flags)     { f.flags |= fl }

func NewFor(loopVar *Local, iterable Expression, body *Block) *For {
	return &For{stmtBase: stmtBase{base: base{kind: KindFor}}, Var: loopVar, Iterable: iterable, Body: body}
}

// SwitchKind is the dispatch strategy chosen on first check.
type SwitchKind int

const (
	SwitchInteger SwitchKind = iota
	SwitchUseEquals
)

// SwitchCase is one case arm. An inclusive range literal in Values covers
// every integer it spans.
type SwitchCase struct {
	stmtBase
	Values    []Expression
	Body      *Block
	IsDefault bool
}

func NewSwitchCase(values []Expression, body *Block) *SwitchCase {
	return &SwitchCase{stmtBase: stmtBase{base: base{kind: KindSwitchCase}}, Values: values, Body: body}
}

/// CaseComparison is one lowered equality-mode case: the original case
// expression and the synthesized `scrutinee == value` comparison.
// Deduplicated by Original's node identity, so two distinct but
// syntactically identical expressions each keep their own comparison.
type CaseComparison struct {
	Original   Expression
	Comparison Expression
	Body       *Block
}

// Switch dispatches over integer-keyed or equality-keyed case arms.
type Switch struct {
	stmtBase
	Init    Statement
	Expr    Expression
	Cases   []*SwitchCase
	Default *Block

	Kind_            SwitchKind
	CaseMap          map[int64]*Block
	MinCase, MaxCase int64
	CaseExprs        []*CaseComparison
	YieldReturnIndex int
	flags            Flags
}

func (s *Switch) HasFlag(f Flags) bool { return s.flags&f != 0 }
func (s *Switch) AddFlags(f Flags)     { s.flags |= f }

func NewSwitch(expr Expression, cases []*SwitchCase) *Switch {
	return &Switch{stmtBase: stmtBase{base: base{kind: KindSwitch}}, Expr: expr, Cases: cases}
}

// Defer runs its statement on scope exit.
type Defer struct {
	stmtBase
	Stmt Statement
}

func NewDefer(stmt Statement) *Defer {
	return &Defer{stmtBase: stmtBase{base: base{kind: KindDefer}}, Stmt: stmt}
}

// JumpKind distinguishes break/continue/fallthrough.
type JumpKind int

const (
	JumpBreak JumpKind = iota
	JumpContinue
	JumpFallthrough
)

// Jump is a break/continue/fallthrough statement.
type Jump struct {
	stmtBase
	JumpKind JumpKind
}

func NewJump(kind JumpKind) *Jump {
	return &Jump{stmtBase: stmtBase{base: base{kind: KindJump}}, JumpKind: kind}
}

// Remove deletes the current element; legal only in iterator-classified
// for-loop bodies.
type Remove struct {
	stmtBase
}

func NewRemove() *Remove {
	return &Remove{stmtBase: stmtBase{base: base{kind: KindRemove}}}
}
