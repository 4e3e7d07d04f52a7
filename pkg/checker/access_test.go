package checker

import (
	"testing"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func TestAddressOfLocal(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	local := ast.TypedLocal("x", i32)
	addr := ast.NewAddressOf(local)
	var expr ast.Expression = addr
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("address of local: %v", o)
	}
	if addr.Type().Kind != types.KindPointer || addr.Type().Elem != i32 {
		t.Fatalf("address typed as %s", addr.Type().Name())
	}
	if !local.HasFlag(ast.FlagAddressTaken) {
		t.Fatal("operand was not marked address-taken")
	}
}

func TestAddressOfFieldMarksWholeChain(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	base := ast.TypedLocal("v", v2)
	field := ast.NewFieldAccess(base, "x")
	addr := ast.NewAddressOf(field)
	var expr ast.Expression = addr
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("address of field: %v", o)
	}
	if !field.HasFlag(ast.FlagAddressTaken) || !base.HasFlag(ast.FlagAddressTaken) {
		t.Fatal("address-taken flag did not cover the access chain")
	}
}

func TestAddressOfLiteralRejected(t *testing.T) {
	c := newTestChecker()

	var expr ast.Expression = ast.NewAddressOf(ast.Int(3))
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("address of literal: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot take the address of this expression")
}

func TestAddressOfLoopVariableRejected(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	slot := ast.TypedLocal("x", i32)
	slot.AddFlags(ast.FlagCannotTakeAddr)
	var expr ast.Expression = ast.NewAddressOf(slot)
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("address of loop slot: %v, want error", o)
	}
}

func TestRemovableAddressOfDegradesToOperand(t *testing.T) {
	c := newTestChecker()

	lit := ast.Int(3)
	addr := ast.NewAddressOf(lit)
	addr.CanBeRemoved = true
	var expr ast.Expression = addr
	if o := c.checkExpression(&expr); o != OutcomeReturnToSymres {
		t.Fatalf("removable wrapper: %v, want a restart through symbol resolution", o)
	}
	if expr != ast.Expression(lit) {
		t.Fatalf("wrapper degraded to %T, want the operand", expr)
	}
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("revealed operand: %v", o)
	}
}

func TestAddressOfArrayLiteral(t *testing.T) {
	c := newTestChecker()

	addr := ast.NewAddressOf(ast.NewArrayLiteral(nil, []ast.Expression{ast.Int(1), ast.Int(2)}))
	var expr ast.Expression = addr
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("address of array literal: %v", o)
	}
	at := addr.Type()
	if at.Kind != types.KindPointer || at.Elem.Kind != types.KindArray {
		t.Fatalf("address typed as %s", at.Name())
	}
}

func TestAddressOfConstraintSentinel(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	addr := ast.NewAddressOf(ast.NewConstraintSentinel(ast.Ty(i32)))
	var expr ast.Expression = addr
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("address of sentinel: %v", o)
	}
	if addr.Type().Kind != types.KindPointer || addr.Type().Elem != i32 {
		t.Fatalf("address typed as %s", addr.Type().Name())
	}
}

func TestDereference(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	deref := ast.NewDereference(ast.TypedLocal("p", types.MakePointer(i32)))
	var expr ast.Expression = deref
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("dereference: %v", o)
	}
	if deref.Type() != i32 {
		t.Fatalf("dereference typed as %s", deref.Type().Name())
	}
}

func TestDereferenceRawptrRejected(t *testing.T) {
	c := newTestChecker()

	var expr ast.Expression = ast.NewDereference(
		ast.TypedLocal("p", types.Basic(types.BasicRawptr)))
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("rawptr dereference: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot dereference a rawptr; cast it to a typed pointer first")
}

func TestDereferenceNonPointerRejected(t *testing.T) {
	c := newTestChecker()

	var expr ast.Expression = ast.NewDereference(
		ast.TypedLocal("n", types.Basic(types.BasicI32)))
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("scalar dereference: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot dereference a 'i32'")
}

func TestSubscriptSlice(t *testing.T) {
	c := newTestChecker()
	f64 := types.Basic(types.BasicF64)

	sub := ast.NewSubscript(ast.TypedLocal("xs", types.MakeSlice(f64)), ast.Int(2))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("slice subscript: %v", o)
	}
	if sub.Type() != f64 {
		t.Fatalf("subscript typed as %s", sub.Type().Name())
	}
	if sub.ElemSize != 8 {
		t.Fatalf("element size %d, want 8", sub.ElemSize)
	}
	if sub.Index.Type() != types.Basic(types.BasicI32) {
		t.Fatal("index literal did not adopt i32")
	}
	data, ok := sub.Addr.(*ast.FieldAccess)
	if !ok {
		t.Fatalf("indexed operand is %T, want the projected data member", sub.Addr)
	}
	if data.Field != "data" {
		t.Fatalf("projected member %q, want data", data.Field)
	}
	dt := data.Type()
	if dt.Kind != types.KindPointer || dt.Elem != f64 {
		t.Fatalf("data member typed as %s", dt.Name())
	}
}

func TestSubscriptArrayKeepsOperand(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	xs := ast.TypedLocal("xs", types.MakeArray(i32, 4))
	sub := ast.NewSubscript(xs, ast.Int(2))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("array subscript: %v", o)
	}
	if sub.Addr != ast.Expression(xs) {
		t.Fatalf("fixed array operand was rewritten to %T", sub.Addr)
	}
}

func TestSubscriptRejectsWideIndex(t *testing.T) {
	c := newTestChecker()

	sub := ast.NewSubscript(
		ast.TypedLocal("xs", types.MakeSlice(types.Basic(types.BasicI32))),
		ast.TypedLocal("i", types.Basic(types.BasicI64)))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("i64 index: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "subscript index must be a small integer, got 'i64'")
}

func TestSubscriptIndexMustBeInteger(t *testing.T) {
	c := newTestChecker()

	sub := ast.NewSubscript(
		ast.TypedLocal("xs", types.MakeSlice(types.Basic(types.BasicI32))),
		ast.TypedLocal("i", types.Basic(types.BasicF64)))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("float index: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "subscript index must be a small integer, got 'f64'")
}

func TestSubscriptWithRangeMakesSlice(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	sub := ast.NewSubscript(
		ast.TypedLocal("xs", types.MakeSlice(i32)),
		ast.NewRangeLiteral(ast.Int(1), ast.Int(3)))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("range subscript: %v", o)
	}
	if sub.Kind() != ast.KindSliceExpr {
		t.Fatalf("subscript kind %v, want slice expression", sub.Kind())
	}
	st := sub.Type()
	if st.Kind != types.KindSlice || st.Elem != i32 {
		t.Fatalf("range subscript typed as %s", st.Name())
	}
	if sub.ElemSize != 4 {
		t.Fatalf("element size %d, want 4", sub.ElemSize)
	}
}

func TestSubscriptPointer(t *testing.T) {
	c := newTestChecker()
	u8 := types.Basic(types.BasicU8)

	sub := ast.NewSubscript(ast.TypedLocal("p", types.MakePointer(u8)), ast.Int(1))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("pointer subscript: %v", o)
	}
	if sub.Type() != u8 {
		t.Fatalf("pointer subscript typed as %s", sub.Type().Name())
	}
}

func TestSubscriptScalarRejected(t *testing.T) {
	c := newTestChecker()

	sub := ast.NewSubscript(ast.TypedLocal("n", types.Basic(types.BasicI32)), ast.Int(0))
	var expr ast.Expression = sub
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("scalar subscript: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot subscript a 'i32'")
}

func TestFieldAccessStructMember(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	fa := ast.NewFieldAccess(ast.TypedLocal("v", v2), "y")
	var expr ast.Expression = fa
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("field access: %v", o)
	}
	if fa.Type() != types.Basic(types.BasicF64) {
		t.Fatalf("field typed as %s", fa.Type().Name())
	}
	if fa.Offset != 8 || fa.Idx != 1 {
		t.Fatalf("field offset=%d idx=%d", fa.Offset, fa.Idx)
	}
}

func TestFieldAccessAutoDereferences(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	fa := ast.NewFieldAccess(ast.TypedLocal("p", types.MakePointer(v2)), "x")
	var expr ast.Expression = fa
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("pointer field access: %v", o)
	}
	if fa.Type() != types.Basic(types.BasicF64) {
		t.Fatalf("field typed as %s", fa.Type().Name())
	}
}

func TestFieldAccessTypoHint(t *testing.T) {
	c := newTestChecker()

	body := makeBuiltinStruct("Body",
		&types.StructMember{Name: "speed", Type: types.Basic(types.BasicF64)},
		&types.StructMember{Name: "mass", Type: types.Basic(types.BasicF64)},
	)
	fa := ast.NewFieldAccess(ast.TypedLocal("b", body), "sped")
	var expr ast.Expression = fa
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("unknown member: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "did you mean 'speed'?")
}

func TestFieldAccessUnknownMemberNoHint(t *testing.T) {
	c := newTestChecker()

	fa := ast.NewFieldAccess(ast.TypedLocal("v", vec2Type()), "magnitude")
	var expr ast.Expression = fa
	if o := c.checkExpression(&expr); o != OutcomeError {
		t.Fatalf("unknown member: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "'Vec2' does not have a member named 'magnitude'")
}

func TestFixedArrayCountFoldsToLiteral(t *testing.T) {
	c := newTestChecker()

	fa := ast.NewFieldAccess(
		ast.TypedLocal("xs", types.MakeArray(types.Basic(types.BasicI32), 7)), "count")
	var expr ast.Expression = fa
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("array count: %v", o)
	}
	lit, ok := expr.(*ast.NumLit)
	if !ok {
		t.Fatalf("count is %T, want a folded literal", expr)
	}
	if lit.Int != 7 || !lit.HasFlag(ast.FlagComptime) {
		t.Fatalf("count folded to %d", lit.Int)
	}
}

func TestSliceCountAndData(t *testing.T) {
	c := newTestChecker()
	f64 := types.Basic(types.BasicF64)
	xs := ast.TypedLocal("xs", types.MakeSlice(f64))

	count := ast.NewFieldAccess(xs, "count")
	var expr ast.Expression = count
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("slice count: %v", o)
	}
	if count.Type() != types.Basic(types.BasicI32) {
		t.Fatalf("count typed as %s", count.Type().Name())
	}

	data := ast.NewFieldAccess(xs, "data")
	expr = data
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("slice data: %v", o)
	}
	dt := data.Type()
	if dt.Kind != types.KindPointer || dt.Elem != f64 {
		t.Fatalf("data typed as %s", dt.Name())
	}
}

func TestFieldAccessThroughPromotedPointer(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	s := ast.NewStructType("Sprite", []*ast.StructMemberDecl{
		{Name: "pos", TypeExpr: ast.Ptr(ast.Ty(v2)), Used: true},
	})
	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("struct type: %v", o)
	}

	fa := ast.NewFieldAccess(ast.TypedLocal("sp", s.Cache), "x")
	var expr ast.Expression = fa
	if o := c.checkExpression(&expr); o != OutcomeSuccess {
		t.Fatalf("promoted access: %v", o)
	}
	inner, ok := fa.Operand.(*ast.FieldAccess)
	if !ok {
		t.Fatalf("operand is %T, want the materialized embedding access", fa.Operand)
	}
	if inner.Field != "pos" {
		t.Fatalf("intermediate access selects %q, want pos", inner.Field)
	}
	if fa.Type() != types.Basic(types.BasicF64) {
		t.Fatalf("promoted member typed as %s", fa.Type().Name())
	}
}
