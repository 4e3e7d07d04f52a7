package checker

import (
	"testing"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

// pointType builds a struct with a defaulted third member.
func pointType() *types.Type {
	return makeBuiltinStruct("Point",
		&types.StructMember{Name: "x", Type: types.Basic(types.BasicI32)},
		&types.StructMember{Name: "y", Type: types.Basic(types.BasicI32)},
		&types.StructMember{Name: "z", Type: types.Basic(types.BasicI32), HasDefault: true},
	)
}

func TestStructLiteralPositional(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Values: []ast.Expression{ast.Int(1), ast.Int(2), ast.Int(3)},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("struct literal: %v", o)
	}
	if lit.Type() != pt {
		t.Fatalf("literal typed as %s", lit.Type().Name())
	}
	if !lit.HasFlag(ast.FlagComptime) {
		t.Fatal("all-literal struct literal is not comptime")
	}
}

func TestStructLiteralNamedArgumentsSlot(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Named: []*ast.NamedValue{
			{Name: "y", Value: ast.Int(20)},
			{Name: "x", Value: ast.Int(10)},
		},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("named struct literal: %v", o)
	}
	if len(lit.Args.Named) != 0 {
		t.Fatal("named values were not moved to positional slots")
	}
	x := lit.Args.Values[0].(*ast.NumLit)
	y := lit.Args.Values[1].(*ast.NumLit)
	if x.Int != 10 || y.Int != 20 {
		t.Fatalf("slotted values x=%d y=%d", x.Int, y.Int)
	}
}

func TestStructLiteralDoubledMember(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Values: []ast.Expression{ast.Int(1)},
		Named:  []*ast.NamedValue{{Name: "x", Value: ast.Int(2)}},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("doubled member: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "member 'x' was given twice")
}

func TestStructLiteralMissingMember(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Values: []ast.Expression{ast.Int(1)},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("missing member: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "no value given for member 'y'")
}

func TestStructLiteralDefaultedMemberOmitted(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Values: []ast.Expression{ast.Int(1), ast.Int(2)},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("defaulted member omitted: %v", o)
	}
}

func TestStructLiteralUnknownMember(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Named: []*ast.NamedValue{{Name: "w", Value: ast.Int(1)}},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("unknown member: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "has no member named 'w'")
}

func TestStructLiteralMemberTypeMismatch(t *testing.T) {
	c := newTestChecker()
	pt := pointType()

	lit := ast.NewStructLiteral(ast.Ty(pt), ast.Arguments{
		Values: []ast.Expression{ast.Str("one"), ast.Int(2)},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("member mismatch: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "for member 'x'")
}

func TestArglessLiteralOverScalarBecomesZeroValue(t *testing.T) {
	c := newTestChecker()

	lit := ast.NewStructLiteral(ast.Ty(types.Basic(types.BasicI64)), ast.Arguments{})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("zero literal: %v", o)
	}
	zero, ok := expr.(*ast.ZeroValue)
	if !ok {
		t.Fatalf("rewrote to %T, want zero value", expr)
	}
	if zero.Type() != types.Basic(types.BasicI64) || !zero.HasFlag(ast.FlagComptime) {
		t.Fatalf("zero value typed as %s", zero.Type().Name())
	}
}

func TestScalarLiteralWithArgumentsRejected(t *testing.T) {
	c := newTestChecker()

	lit := ast.NewStructLiteral(ast.Ty(types.Basic(types.BasicI64)), ast.Arguments{
		Values: []ast.Expression{ast.Int(1)},
	})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("scalar construction: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot construct")
}

func TestArrayLiteralWithElementType(t *testing.T) {
	c := newTestChecker()
	f64 := types.Basic(types.BasicF64)

	lit := ast.NewArrayLiteral(ast.Ty(f64), []ast.Expression{ast.Int(1), ast.Flt(2.5)})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("array literal: %v", o)
	}
	if lit.Type().Kind != types.KindArray || lit.Type().Count != 2 || lit.Type().Elem != f64 {
		t.Fatalf("array literal typed as %s", lit.Type().Name())
	}
	if !lit.HasFlag(ast.FlagComptime) {
		t.Fatal("all-literal array is not comptime")
	}
}

func TestArrayLiteralElementMismatch(t *testing.T) {
	c := newTestChecker()

	lit := ast.NewArrayLiteral(ast.Ty(types.Basic(types.BasicI32)),
		[]ast.Expression{ast.Int(1), ast.Str("two")})
	var expr ast.Expression = lit
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("element mismatch: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot hold")
}

func TestRangeLiteralSynthesizesStep(t *testing.T) {
	c := newTestChecker()

	rl := ast.NewRangeLiteral(ast.Int(0), ast.Int(10))
	var expr ast.Expression = rl
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("range literal: %v", o)
	}
	if rl.Type() != c.builtins.Range {
		t.Fatalf("range typed as %s", rl.Type().Name())
	}
	step, ok := rl.Step.(*ast.NumLit)
	if !ok || step.Int != 1 {
		t.Fatalf("default step %#v", rl.Step)
	}
	if !rl.HasFlag(ast.FlagComptime) {
		t.Fatal("constant range is not comptime")
	}
}

func TestRangeLiteralBoundsMustBeI32(t *testing.T) {
	c := newTestChecker()

	rl := ast.NewRangeLiteral(ast.TypedLocal("lo", types.Basic(types.BasicF64)), ast.Int(10))
	var expr ast.Expression = rl
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("float bound: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "range lower bound must be an i32")
}
