package ast

import (
	"testing"

	"thorn/compiler-go/pkg/types"
)

func TestCloneExprResetsCheckingState(t *testing.T) {
	lit := Int(5)
	lit.SetType(types.Basic(types.BasicI32))
	lit.AddFlags(FlagChecked)

	bin := Bin(OpAdd, lit, Int(2))
	bin.SetType(types.Basic(types.BasicI32))
	bin.AddFlags(FlagChecked)

	clone := CloneExpr(bin).(*Binary)
	if clone == bin {
		t.Fatal("clone returned the original node")
	}
	if clone.Type() != nil {
		t.Fatalf("clone kept type %s", clone.Type().Name())
	}
	if clone.HasFlag(FlagChecked) {
		t.Fatal("clone kept the checked flag")
	}
	if !clone.Left.(*NumLit).HasFlag(FlagComptime) {
		t.Fatal("comptime flag must survive cloning")
	}
	if clone.Left.(*NumLit).Int != 5 {
		t.Fatalf("left operand cloned as %d", clone.Left.(*NumLit).Int)
	}
}

func TestCloneLocalKeepsConstFlag(t *testing.T) {
	l := NewLocal("x", nil)
	l.AddFlags(FlagConst | FlagChecked)
	l.SetType(types.Basic(types.BasicI32))

	c := CloneExpr(l).(*Local)
	if !c.HasFlag(FlagConst) {
		t.Fatal("const flag must survive cloning")
	}
	if c.HasFlag(FlagChecked) || c.Type() != nil {
		t.Fatal("clone must check from scratch")
	}
}

func TestCloneSubstitutesNamedTypes(t *testing.T) {
	fn := Fn("id", []*Param{P("x", NewNamedType("T"))}, NewNamedType("T"), Blk())
	sub := Subst{"T": types.Basic(types.BasicF64)}

	c := CloneExprWith(fn, sub).(*Function)
	pt, ok := c.Params[0].Local.TypeExpr.(*NamedType)
	if !ok {
		t.Fatalf("substituted parameter type is %T", c.Params[0].Local.TypeExpr)
	}
	if pt.Builtin != types.Basic(types.BasicF64) {
		t.Fatalf("parameter type resolved to %v", pt.Builtin)
	}
	rt := c.ReturnTypeExpr.(*NamedType)
	if rt.Builtin != types.Basic(types.BasicF64) {
		t.Fatalf("return type resolved to %v", rt.Builtin)
	}
	if !c.Params[0].Local.IsParam {
		t.Fatal("cloned parameter local lost its parameter mark")
	}
}

func TestCloneLeavesUnknownNamesAlone(t *testing.T) {
	nt := NewNamedType("U")
	decl := NewStructType("U", nil)
	nt.Decl = decl

	c := CloneExprWith(nt, Subst{"T": types.Basic(types.BasicI32)}).(*NamedType)
	if c.Name != "U" || c.Decl != Node(decl) {
		t.Fatalf("unrelated named type was rewritten: %+v", c)
	}
	if c.Builtin != nil {
		t.Fatal("unrelated named type gained a builtin binding")
	}
}

func TestCloneBlockResetsResumeIndex(t *testing.T) {
	b := Blk(Int(1), Int(2))
	b.StatementIdx = 2

	c := CloneBlock(b, nil)
	if c.StatementIdx != 0 {
		t.Fatalf("cloned block resumes at %d", c.StatementIdx)
	}
	if len(c.Body) != 2 || c.Body[0] == b.Body[0] {
		t.Fatal("block body was not deep-cloned")
	}
}

func TestCloneAliasSharesTarget(t *testing.T) {
	target := TypedLocal("buf", types.Basic(types.BasicI64))
	a := NewAlias(target)

	c := CloneExpr(a).(*Alias)
	if c.Target != Expression(target) {
		t.Fatal("alias clone must reference the original target")
	}
}

func TestCloneSharesDeclarations(t *testing.T) {
	fn := Fn("callee", nil, nil, Blk())
	set := NewOverloadedFunction("callee", []Expression{fn})

	call := CallTo(set, Int(1))
	c := CloneExpr(call).(*Call)
	if c.Callee != Expression(set) {
		t.Fatal("overload sets are shared by reference, not cloned")
	}
	if c.Args.Values[0] == call.Args.Values[0] {
		t.Fatal("arguments must be deep-cloned")
	}
}

func TestCloneArrayLiteralDropsTypedFlag(t *testing.T) {
	al := NewArrayLiteral(Ty(types.Basic(types.BasicI32)), []Expression{Int(1)})
	al.AddFlags(FlagArrayLiteralTyped | FlagChecked)

	c := CloneExpr(al).(*ArrayLiteral)
	if c.HasFlag(FlagArrayLiteralTyped) || c.HasFlag(FlagChecked) {
		t.Fatal("array literal clone kept checking flags")
	}
}

func TestCloneStaticIfAndSwitch(t *testing.T) {
	sw := NewSwitch(Int(1), []*SwitchCase{NewSwitchCase([]Expression{Int(2)}, Blk())})
	si := NewStaticIf(Bool(true), sw, nil)

	c := CloneStmt(si, nil).(*StaticIf)
	if c == si {
		t.Fatal("static if was not cloned")
	}
	csw, ok := c.TrueStmt.(*Switch)
	if !ok {
		t.Fatalf("cloned branch is %T", c.TrueStmt)
	}
	if csw == sw || csw.Cases[0] == sw.Cases[0] {
		t.Fatal("switch body was not deep-cloned")
	}
}
