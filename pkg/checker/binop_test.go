package checker

import (
	"testing"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func TestArithmeticDefaultsAndFolds(t *testing.T) {
	c := newTestChecker()
	var expr ast.Expression = ast.Bin(ast.OpAdd, ast.Int(5), ast.Int(3))
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("5 + 3: %v", o)
	}
	lit, ok := expr.(*ast.NumLit)
	if !ok || lit.Int != 8 {
		t.Fatalf("5 + 3 folded to %#v", expr)
	}
	if lit.Type() != types.Basic(types.BasicI32) {
		t.Fatalf("folded sum typed as %s", lit.Type().Name())
	}
	if !lit.HasFlag(ast.FlagComptime) || !lit.HasFlag(ast.FlagChecked) {
		t.Fatal("folded sum missing flags")
	}
}

func TestArithmeticAdoptsTypedSide(t *testing.T) {
	c := newTestChecker()
	n := ast.Bin(ast.OpMul, ast.TypedLocal("x", types.Basic(types.BasicF64)), ast.Int(2))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("x * 2: %v", o)
	}
	if n.Type() != types.Basic(types.BasicF64) {
		t.Fatalf("x * 2 typed as %s", n.Type().Name())
	}
	if n.Right.Type() != types.Basic(types.BasicF64) {
		t.Fatalf("literal operand typed as %s", n.Right.Type().Name())
	}
}

func TestDivisionByZeroDoesNotFold(t *testing.T) {
	c := newTestChecker()
	var expr ast.Expression = ast.Bin(ast.OpDiv, ast.Int(1), ast.Int(0))
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("1 / 0: %v", o)
	}
	if _, ok := expr.(*ast.Binary); !ok {
		t.Fatalf("1 / 0 was folded to %T", expr)
	}
}

func TestModuloRequiresIntegers(t *testing.T) {
	c := newTestChecker()
	var expr ast.Expression = ast.Bin(ast.OpMod,
		ast.TypedLocal("x", types.Basic(types.BasicF64)), ast.Flt(2))
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("float modulo: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "invalid operands for '%'")
}

func TestComparisonFoldsToBool(t *testing.T) {
	c := newTestChecker()
	var expr ast.Expression = ast.Bin(ast.OpLess, ast.Int(2), ast.Int(7))
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("2 < 7: %v", o)
	}
	lit, ok := expr.(*ast.BoolLit)
	if !ok || !lit.Value {
		t.Fatalf("2 < 7 folded to %#v", expr)
	}
}

func TestOrderedComparisonRejectsBool(t *testing.T) {
	c := newTestChecker()
	var expr ast.Expression = ast.Bin(ast.OpLess, ast.Bool(true), ast.Bool(false))
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("true < false: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "not ordered")
}

func TestPointerComparison(t *testing.T) {
	c := newTestChecker()
	pt := types.MakePointer(types.Basic(types.BasicI32))
	n := ast.Bin(ast.OpEqual, ast.TypedLocal("a", pt), ast.TypedLocal("b", pt))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("pointer equality: %v", o)
	}
	if !types.IsBool(n.Type()) {
		t.Fatalf("pointer equality typed as %s", n.Type().Name())
	}
}

func TestBoolOperatorsFold(t *testing.T) {
	c := newTestChecker()
	var expr ast.Expression = ast.Bin(ast.OpBoolAnd, ast.Bool(true), ast.Bool(false))
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("true && false: %v", o)
	}
	if lit, ok := expr.(*ast.BoolLit); !ok || lit.Value {
		t.Fatalf("true && false folded to %#v", expr)
	}

	var bad ast.Expression = ast.Bin(ast.OpBoolOr, ast.Bool(true), ast.Int(1))
	if o := c.checkExpression(&bad); o != OutcomeError {
		t.Fatalf("true || 1: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "expects bool operands")
}

func TestPointerArithmeticScalesOffset(t *testing.T) {
	c := newTestChecker()
	pt := types.MakePointer(types.Basic(types.BasicI64))
	n := ast.Bin(ast.OpAdd, ast.TypedLocal("p", pt), ast.Int(3))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("p + 3: %v", o)
	}
	if n.Type() != pt {
		t.Fatalf("pointer sum typed as %s", n.Type().Name())
	}
	scaled, ok := n.Right.(*ast.Binary)
	if !ok || scaled.Op != ast.OpMul {
		t.Fatalf("offset not scaled, right side is %T", n.Right)
	}
	size, ok := scaled.Right.(*ast.NumLit)
	if !ok || size.Int != 8 {
		t.Fatalf("scale factor %#v, want element size 8", scaled.Right)
	}
}

func TestDeclarationAssignmentInfersType(t *testing.T) {
	c := newTestChecker()
	local := ast.Loc("x", nil)
	n := ast.Bin(ast.OpAssign, local, ast.Int(10))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("x = 10: %v", o)
	}
	if local.Type() != types.Basic(types.BasicI32) {
		t.Fatalf("declared local typed as %s", local.Type().Name())
	}
	if n.Type() != types.Basic(types.BasicVoid) {
		t.Fatalf("assignment typed as %s", n.Type().Name())
	}
}

func TestAssignmentTypeMismatch(t *testing.T) {
	c := newTestChecker()
	n := ast.Bin(ast.OpAssign,
		ast.TypedLocal("x", types.Basic(types.BasicBool)),
		ast.TypedLocal("s", c.builtins.Str))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("bool = str: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot assign")
}

func TestAssignmentOfVoidRejected(t *testing.T) {
	c := newTestChecker()
	voidFn := ast.Fn("noop", nil, nil, ast.Blk())
	checkedHeader(t, c, voidFn)

	n := ast.Bin(ast.OpAssign, ast.Loc("x", nil), ast.CallTo(voidFn))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("x = noop(): %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot assign a void value")
}

func TestAssignmentInsideExpressionRejected(t *testing.T) {
	c := newTestChecker()
	n := ast.Bin(ast.OpAssign, ast.TypedLocal("x", types.Basic(types.BasicI32)), ast.Int(1))
	var expr ast.Expression = n
	o := c.atExpressionLevel(func() Outcome { return c.checkExpression(&expr) })
	if o != OutcomeError {
		t.Fatalf("nested assignment: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "assignment is not allowed inside an expression")
}

func TestCompoundAssignmentDesugars(t *testing.T) {
	c := newTestChecker()
	local := ast.TypedLocal("x", types.Basic(types.BasicI32))
	n := ast.Bin(ast.OpAssignAdd, local, ast.Int(4))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("x += 4: %v", o)
	}
	if n.Op != ast.OpAssign {
		t.Fatalf("compound assignment kept operator %s", n.Op)
	}
	inner, ok := n.Right.(*ast.Binary)
	if !ok || inner.Op != ast.OpAdd {
		t.Fatalf("right side is %T, want the desugared addition", n.Right)
	}
}

func TestAssignmentToNonLValue(t *testing.T) {
	c := newTestChecker()
	n := ast.Bin(ast.OpAssign, ast.Int(3), ast.Int(4))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("3 = 4: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot assign to this expression")
}

func TestConstLocalIsNotAssignable(t *testing.T) {
	c := newTestChecker()
	local := ast.TypedLocal("k", types.Basic(types.BasicI32))
	local.AddFlags(ast.FlagConst)
	n := ast.Bin(ast.OpAssign, local, ast.Int(1))
	var expr ast.Expression = n
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("const = 1: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot assign to this expression")
}
