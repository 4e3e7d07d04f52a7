package checker

import (
	"testing"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func TestHeaderVariadicMustComeLast(t *testing.T) {
	c := newTestChecker()

	i32 := ast.Ty(types.Basic(types.BasicI32))
	xs := ast.P("xs", ast.NewVarArgType(i32))
	xs.Vararg = ast.VarargTyped
	fn := ast.Fn("f", []*ast.Param{xs, ast.P("b", i32)}, nil, ast.Blk())
	if o := c.checkFunctionHeader(fn); o != OutcomeError {
		t.Fatalf("misplaced variadic: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "the variadic parameter of 'f' must come last")
}

func TestHeaderTypedVariadicNeedsElementType(t *testing.T) {
	c := newTestChecker()

	xs := ast.P("xs", ast.Ty(types.Basic(types.BasicI32)))
	xs.Vararg = ast.VarargTyped
	fn := ast.Fn("f", []*ast.Param{xs}, nil, ast.Blk())
	if o := c.checkFunctionHeader(fn); o != OutcomeError {
		t.Fatalf("bad variadic annotation: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "variadic parameter 'xs' needs an element type")
}

func TestHeaderTypedVariadicSignature(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	xs := ast.P("xs", ast.NewVarArgType(ast.Ty(i32)))
	xs.Vararg = ast.VarargTyped
	fn := ast.Fn("f", []*ast.Param{xs}, nil, ast.Blk())
	checkedHeader(t, c, fn)

	sig := signatureOf(fn.Type())
	if sig.VariadicElem != i32 {
		t.Fatalf("variadic element %s, want i32", sig.VariadicElem.Name())
	}
	if !sig.Variadic() {
		t.Fatal("signature does not report itself variadic")
	}
	if xs.Local.Type().Kind != types.KindVarArgs {
		t.Fatalf("variadic local typed as %s", xs.Local.Type().Name())
	}
}

func TestHeaderDefaultOrdering(t *testing.T) {
	c := newTestChecker()

	i32 := ast.Ty(types.Basic(types.BasicI32))
	a := ast.P("a", i32)
	a.Default = ast.Int(1)
	fn := ast.Fn("f", []*ast.Param{a, ast.P("b", i32)}, nil, ast.Blk())
	if o := c.checkFunctionHeader(fn); o != OutcomeError {
		t.Fatalf("undefaulted after defaulted: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "parameter 'b' without a default cannot follow defaulted parameters")
}

func TestHeaderRejectsZeroSizeParameter(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", []*ast.Param{ast.P("v", ast.Ty(types.Basic(types.BasicVoid)))}, nil, ast.Blk())
	if o := c.checkFunctionHeader(fn); o != OutcomeError {
		t.Fatalf("void parameter: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "parameter 'v' has a zero-size type 'void'")
}

func TestHeaderParameterNeedsTypeOrDefault(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", []*ast.Param{ast.P("x", nil)}, nil, ast.Blk())
	if o := c.checkFunctionHeader(fn); o != OutcomeError {
		t.Fatalf("bare parameter: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "parameter 'x' has neither a type nor a default")
}

func TestProbeHeaderFailsSilently(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", []*ast.Param{ast.P("v", ast.Ty(types.Basic(types.BasicVoid)))}, nil, ast.Blk())
	fn.AddFlags(ast.FlagProbeOnly)
	if o := c.checkFunctionHeader(fn); o == OutcomeSuccess {
		t.Fatal("probe over a bad header succeeded")
	}
	wantNoDiagnostics(t, c.reporter)
}

func TestFunctionBodyWaitsForHeader(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", nil, nil, ast.Blk())
	fn.HeaderEntity = &Entity{Kind: EntityFunctionHeader, State: StateCheckingTypes}
	if o := c.checkFunction(fn); o != OutcomeYield {
		t.Fatalf("pending header: %v, want yield", o)
	}

	fn.HeaderEntity = &Entity{Kind: EntityFunctionHeader, State: StateFailed}
	if o := c.checkFunction(fn); o != OutcomeFailed {
		t.Fatalf("failed header: %v, want failed", o)
	}
}

func TestFunctionAutoReturnSettlesToVoid(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", nil, nil, ast.Blk())
	sig := &types.Signature{Return: types.AutoReturn}
	fn.SetType(types.MakeFunction(sig))
	if o := c.checkFunction(fn); o != OutcomeSuccess {
		t.Fatalf("returnless body: %v", o)
	}
	if sig.Return != types.Basic(types.BasicVoid) {
		t.Fatalf("settled return %s, want void", sig.Return.Name())
	}
}

func TestIntrinsicFunctionHasNoBodyToCheck(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("sqrt", nil, nil, nil)
	fn.IsIntrinsic = true
	fn.SetType(types.MakeFunction(&types.Signature{Return: types.Basic(types.BasicF64)}))
	if o := c.checkFunction(fn); o != OutcomeComplete {
		t.Fatalf("intrinsic body: %v, want complete", o)
	}
}

func TestOverloadedFunctionValidatesOptions(t *testing.T) {
	c := newTestChecker()

	good := ast.NewOverloadedFunction("f", []ast.Expression{
		ast.Fn("f1", nil, nil, ast.Blk()),
		ast.Fn("f2", nil, nil, ast.Blk()),
	})
	if o := c.checkOverloadedFunction(good); o != OutcomeSuccess {
		t.Fatalf("procedure overloads: %v", o)
	}

	bad := ast.NewOverloadedFunction("g", []ast.Expression{ast.Int(1)})
	if o := c.checkOverloadedFunction(bad); o != OutcomeError {
		t.Fatalf("literal overload: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "'g' overload option is not a procedure")
}

func TestGlobalHeaderFromAnnotationAndValue(t *testing.T) {
	c := newTestChecker()

	annotated := ast.NewGlobal("a", ast.Ty(types.Basic(types.BasicF64)), nil)
	if o := c.checkGlobalHeader(annotated); o != OutcomeSuccess {
		t.Fatalf("annotated global: %v", o)
	}
	if annotated.Type() != types.Basic(types.BasicF64) {
		t.Fatalf("annotated global typed %s", annotated.Type().Name())
	}

	inferred := ast.NewGlobal("b", nil, ast.Int(3))
	if o := c.checkGlobalHeader(inferred); o != OutcomeSuccess {
		t.Fatalf("inferred global: %v", o)
	}
	if inferred.Type() != types.Basic(types.BasicI32) {
		t.Fatalf("inferred global typed %s", inferred.Type().Name())
	}

	bare := ast.NewGlobal("c", nil, nil)
	if o := c.checkGlobalHeader(bare); o != OutcomeError {
		t.Fatalf("bare global: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "global 'c' needs a type or a value")
}

func TestGlobalInitializerMustBeComptime(t *testing.T) {
	c := newTestChecker()
	i32 := types.Basic(types.BasicI32)

	g := ast.NewGlobal("g", nil, ast.TypedLocal("runtime", i32))
	g.SetType(i32)
	if o := c.checkGlobal(g); o != OutcomeError {
		t.Fatalf("runtime initializer: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "initial value of global 'g' must be known at compile time")
}

func TestGlobalInitializerTypeMismatch(t *testing.T) {
	c := newTestChecker()

	g := ast.NewGlobal("g", nil, ast.Int(3))
	g.SetType(types.Basic(types.BasicBool))
	if o := c.checkGlobal(g); o != OutcomeError {
		t.Fatalf("mismatched initializer: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot initialize 'g' of type 'bool'")
}

func TestStructTypeLayout(t *testing.T) {
	c := newTestChecker()

	s := ast.NewStructType("Pair", []*ast.StructMemberDecl{
		{Name: "a", TypeExpr: ast.Ty(types.Basic(types.BasicI32))},
		{Name: "b", TypeExpr: ast.Ty(types.Basic(types.BasicF64))},
	})
	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("struct type: %v", o)
	}
	info := s.Cache.Struct
	if info.Status != types.StructUsesDone {
		t.Fatalf("struct status %v, want uses done", info.Status)
	}
	a, _ := info.Member("a")
	b, _ := info.Member("b")
	if a.Offset != 0 || b.Offset != 4 {
		t.Fatalf("offsets a=%d b=%d", a.Offset, b.Offset)
	}
	if s.Type() != s.Cache {
		t.Fatal("struct node not typed with its cache")
	}
}

func TestStructSelfReferenceThroughPointer(t *testing.T) {
	c := newTestChecker()

	s := ast.NewStructType("Node", nil)
	self := ast.NewNamedType("Node")
	self.Decl = s
	s.Members = []*ast.StructMemberDecl{
		{Name: "next", TypeExpr: ast.NewPointerType(self)},
		{Name: "val", TypeExpr: ast.Ty(types.Basic(types.BasicI32))},
	}
	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("self-referential struct: %v", o)
	}
	next, _ := s.Cache.Struct.Member("next")
	if next.Type.Kind != types.KindPointer || next.Type.Elem != s.Cache {
		t.Fatalf("next typed as %s", next.Type.Name())
	}
}

func TestStructDuplicateMember(t *testing.T) {
	c := newTestChecker()

	s := ast.NewStructType("Pair", []*ast.StructMemberDecl{
		{Name: "a", TypeExpr: ast.Ty(types.Basic(types.BasicI32))},
		{Name: "a", TypeExpr: ast.Ty(types.Basic(types.BasicI32))},
	})
	if o := c.checkStructType(s); o != OutcomeError {
		t.Fatalf("doubled member: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "struct 'Pair' has two members named 'a'")
}

func TestStructUsePromotionByValue(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	s := ast.NewStructType("Sprite", []*ast.StructMemberDecl{
		{Name: "pos", TypeExpr: ast.Ty(v2), Used: true},
		{Name: "layer", TypeExpr: ast.Ty(types.Basic(types.BasicI32))},
	})
	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("use promotion: %v", o)
	}
	info := s.Cache.Struct
	x, ok := info.Member("x")
	if !ok {
		t.Fatal("embedded member 'x' was not promoted")
	}
	if x.Offset != 0 || x.UsedThroughPointerIdx != -1 {
		t.Fatalf("promoted x offset=%d through=%d", x.Offset, x.UsedThroughPointerIdx)
	}
	y, _ := info.Member("y")
	if y.Offset != 8 {
		t.Fatalf("promoted y offset=%d, want 8", y.Offset)
	}
}

func TestStructUsePromotionThroughPointer(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	s := ast.NewStructType("Sprite", []*ast.StructMemberDecl{
		{Name: "pos", TypeExpr: ast.Ptr(ast.Ty(v2)), Used: true},
	})
	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("pointer use promotion: %v", o)
	}
	x, _ := s.Cache.Struct.Member("x")
	if x.UsedThroughPointerIdx != 0 {
		t.Fatalf("promoted x through=%d, want 0", x.UsedThroughPointerIdx)
	}
}

func TestStructUseOfNonStruct(t *testing.T) {
	c := newTestChecker()

	s := ast.NewStructType("S", []*ast.StructMemberDecl{
		{Name: "n", TypeExpr: ast.Ty(types.Basic(types.BasicI32)), Used: true},
	})
	if o := c.checkStructType(s); o != OutcomeError {
		t.Fatalf("use of scalar: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "'use' member 'n' of 'S' is not a struct")
}

func TestStructPromotedMemberClash(t *testing.T) {
	c := newTestChecker()
	v2 := vec2Type()

	s := ast.NewStructType("S", []*ast.StructMemberDecl{
		{Name: "pos", TypeExpr: ast.Ty(v2), Used: true},
		{Name: "x", TypeExpr: ast.Ty(types.Basic(types.BasicF64))},
	})
	if o := c.checkStructType(s); o != OutcomeError {
		t.Fatalf("promotion clash: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "member 'x' promoted from 'Vec2' collides with an existing member")
}

func TestStructDefaultsWaitForType(t *testing.T) {
	c := newTestChecker()

	s := ast.NewStructType("Pair", []*ast.StructMemberDecl{
		{Name: "a", TypeExpr: ast.Ty(types.Basic(types.BasicI32)), Default: ast.Int(7)},
	})
	if o := c.checkStructDefaults(s); o != OutcomeYield {
		t.Fatalf("defaults before type: %v, want yield", o)
	}

	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("struct type: %v", o)
	}
	if o := c.checkStructDefaults(s); o != OutcomeSuccess {
		t.Fatalf("defaults after type: %v", o)
	}
	if s.Members[0].Default.Type() != types.Basic(types.BasicI32) {
		t.Fatal("default value did not adopt the member type")
	}
}

func TestStructDefaultTypeMismatch(t *testing.T) {
	c := newTestChecker()

	s := ast.NewStructType("Pair", []*ast.StructMemberDecl{
		{Name: "a", TypeExpr: ast.Ty(types.Basic(types.BasicI32)), Default: ast.Str("seven")},
	})
	if o := c.checkStructType(s); o != OutcomeSuccess {
		t.Fatalf("struct type: %v", o)
	}
	if o := c.checkStructDefaults(s); o != OutcomeError {
		t.Fatalf("mismatched default: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "default for member 'a' has type '[] u8', expected 'i32'")
}

func TestTypeAliasEntityResolves(t *testing.T) {
	c := newTestChecker()

	alias := ast.NewTypeAlias(ast.Ty(types.Basic(types.BasicI64)))
	e := NewTypeAliasEntity("Id", alias)
	if o := c.checkEntity(e); o != OutcomeComplete {
		t.Fatalf("type alias: %v, want complete", o)
	}
	if alias.Type() != types.Basic(types.BasicI64) {
		t.Fatalf("alias typed as %s", alias.Type().Name())
	}
}

func TestDirectiveExport(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", nil, nil, ast.Blk())
	checkedHeader(t, c, fn)
	d := ast.NewDirectiveExport(fn, ast.Str("thorn_f"))
	if o := c.checkDirectiveExport(d); o != OutcomeComplete {
		t.Fatalf("export: %v, want complete", o)
	}
	if d.ResolvedName != "thorn_f" {
		t.Fatalf("resolved export name %q", d.ResolvedName)
	}
	if !fn.HasFlag(ast.FlagFunctionUsed) {
		t.Fatal("exported function was not marked used")
	}
}

func TestDirectiveExportRejectsPolyProc(t *testing.T) {
	c := newTestChecker()

	pp := ast.NewPolyProc("id", nil, ast.Fn("id", nil, nil, ast.Blk()))
	d := ast.NewDirectiveExport(pp, ast.Str("id"))
	if o := c.checkDirectiveExport(d); o != OutcomeError {
		t.Fatalf("polymorphic export: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "cannot export the polymorphic procedure 'id'")
}

func TestDirectiveExportNameMustBeComptime(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("f", nil, nil, ast.Blk())
	checkedHeader(t, c, fn)
	d := ast.NewDirectiveExport(fn, ast.TypedLocal("name", c.builtins.Str))
	if o := c.checkDirectiveExport(d); o != OutcomeError {
		t.Fatalf("runtime export name: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "export name must be a compile-time string")
}

func TestDirectiveInit(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("setup", nil, nil, ast.Blk())
	checkedHeader(t, c, fn)
	if o := c.checkDirectiveInit(ast.NewDirectiveInit(fn)); o != OutcomeComplete {
		t.Fatalf("init directive: %v, want complete", o)
	}
	if !fn.HasFlag(ast.FlagFunctionUsed) {
		t.Fatal("init procedure was not marked used")
	}

	withArg := ast.Fn("setup2", []*ast.Param{ast.P("n", ast.Ty(types.Basic(types.BasicI32)))}, nil, ast.Blk())
	checkedHeader(t, c, withArg)
	if o := c.checkDirectiveInit(ast.NewDirectiveInit(withArg)); o != OutcomeError {
		t.Fatalf("init with parameters: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "init procedure 'setup2' cannot take parameters")
}

func TestDirectiveInitDependencyMustBeInit(t *testing.T) {
	c := newTestChecker()

	fn := ast.Fn("setup", nil, nil, ast.Blk())
	checkedHeader(t, c, fn)
	d := ast.NewDirectiveInit(fn)
	d.Dependencies = []ast.Expression{ast.Int(1)}
	if o := c.checkDirectiveInit(d); o != OutcomeError {
		t.Fatalf("non-init dependency: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "every dependency of an init directive must be another init directive")
}

func TestDirectiveInitRunsAfterDependencies(t *testing.T) {
	c := newTestChecker()

	fnA := ast.Fn("open_log", nil, nil, ast.Blk())
	fnB := ast.Fn("load_config", nil, nil, ast.Blk())
	initA := ast.NewDirectiveInit(fnA)
	initB := ast.NewDirectiveInit(fnB)
	initB.Dependencies = []ast.Expression{ast.NewAlias(initA)}

	// The dependent directive is queued first; it has to wait for its
	// dependency to finalize before registering.
	entB := NewInitEntity(initB)
	entA := NewInitEntity(initA)
	if err := runEntities(t, c, entB, entA,
		NewFunctionHeaderEntity(fnA), NewFunctionHeaderEntity(fnB)); err != nil {
		t.Fatalf("init chain: %v", err)
	}
	if entA.State != StateFinalized || entB.State != StateFinalized {
		t.Fatalf("entity states %v and %v, want finalized", entA.State, entB.State)
	}
	procs := c.InitProcedures()
	if len(procs) != 2 || procs[0] != fnA || procs[1] != fnB {
		t.Fatalf("init order %v, want open_log before load_config", procs)
	}
}

func TestDirectiveLibrary(t *testing.T) {
	c := newTestChecker()

	d := ast.NewDirectiveLibrary(ast.Str("m"))
	if o := c.checkDirectiveLibrary(d); o != OutcomeComplete {
		t.Fatalf("library directive: %v, want complete", o)
	}
	if d.LibraryName != "m" {
		t.Fatalf("library name %q", d.LibraryName)
	}

	bad := ast.NewDirectiveLibrary(ast.TypedLocal("name", c.builtins.Str))
	if o := c.checkDirectiveLibrary(bad); o != OutcomeError {
		t.Fatalf("runtime library name: %v, want error", o)
	}
	wantDiagnostic(t, c.reporter, "library name must be a compile-time string")
}
