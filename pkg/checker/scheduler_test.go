package checker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"thorn/compiler-go/pkg/ast"
	"thorn/compiler-go/pkg/types"
)

func TestSchedulerDrivesDependencyChain(t *testing.T) {
	c := newTestChecker()
	i32 := ast.Ty(types.Basic(types.BasicI32))
	pa := ast.P("a", i32)
	pb := ast.P("b", i32)
	fn := ast.Fn("add", []*ast.Param{pa, pb}, i32,
		ast.Blk(ast.Ret(ast.Bin(ast.OpAdd, pa.Local, pb.Local))))

	header := NewFunctionHeaderEntity(fn)
	body := NewFunctionEntity(fn)
	call := NewExpressionEntity(ast.CallTo(fn, ast.Int(1), ast.Int(2)))

	s := NewScheduler(zap.NewNop(), c, nil)
	// Deliberately queued backwards; per-pass sorting restores the
	// header-first order.
	s.AddAll(call, body, header)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v, diagnostics %v", err, c.reporter.Diagnostics())
	}
	wantNoDiagnostics(t, c.reporter)
	for _, e := range []*Entity{header, body, call} {
		if !e.Done() {
			t.Fatalf("%s entity finished in state %s", e.Kind, e.State)
		}
	}
	if s.Passes() != 1 {
		t.Fatalf("took %d passes, want 1", s.Passes())
	}
	if call.Expr.Type() != types.Basic(types.BasicI32) {
		t.Fatalf("call typed as %s", call.Expr.Type().Name())
	}
}

func TestSchedulerFailsStuckEntity(t *testing.T) {
	c := newTestChecker()
	fn := ast.Fn("orphan", nil, nil, ast.Blk())
	fn.HeaderEntity = &Entity{Kind: EntityFunctionHeader, State: StateCheckingTypes}

	body := NewFunctionEntity(fn)
	s := NewScheduler(zap.NewNop(), c, nil)
	s.Add(body)
	if err := s.Run(context.Background()); !errors.Is(err, ErrChecksFailed) {
		t.Fatalf("run: %v, want failed checks", err)
	}
	if !body.Failed() {
		t.Fatalf("stuck entity finished in state %s", body.State)
	}
	if s.Passes() != 3 {
		t.Fatalf("took %d passes, want 3", s.Passes())
	}

	found := false
	for _, d := range c.reporter.Diagnostics() {
		if strings.Contains(d.Message, "likely due to a circular dependency") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no cycle hint in %v", c.reporter.Diagnostics())
	}
}

func TestSchedulerStaticIfReleasesWinningSide(t *testing.T) {
	c := newTestChecker()
	s := NewScheduler(zap.NewNop(), c, nil)

	winner := NewExpressionEntity(ast.Int(1))
	loser := NewExpressionEntity(ast.Sym("undefined"))

	cond := NewStaticIfEntity(ast.NewStaticIf(ast.Bool(true), nil, nil))
	cond.TrueEntities = []*Entity{winner}
	cond.FalseEntities = []*Entity{loser}

	s.Add(cond)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v, diagnostics %v", err, c.reporter.Diagnostics())
	}
	if cond.State != StateFinalized {
		t.Fatalf("static if finished in state %s", cond.State)
	}
	if !winner.Done() {
		t.Fatalf("winning branch entity finished in state %s", winner.State)
	}
	if loser.State != StateUnresolved {
		t.Fatalf("losing branch entity was processed, state %s", loser.State)
	}
}

type countingResolver struct {
	calls     int
	yieldOnce bool
}

func (r *countingResolver) Resolve(*Entity) Outcome {
	r.calls++
	if r.yieldOnce {
		r.yieldOnce = false
		return OutcomeYield
	}
	return OutcomeSuccess
}

func TestSchedulerRetriesSymbolResolution(t *testing.T) {
	c := newTestChecker()
	r := &countingResolver{yieldOnce: true}
	s := NewScheduler(zap.NewNop(), c, r)

	e := NewExpressionEntity(ast.Int(7))
	s.Add(e)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.calls != 2 {
		t.Fatalf("resolver called %d times, want 2", r.calls)
	}
	if !e.Done() {
		t.Fatalf("entity finished in state %s", e.State)
	}
}

func TestSchedulerHonorsContextCancellation(t *testing.T) {
	c := newTestChecker()
	s := NewScheduler(zap.NewNop(), c, nil)
	s.Add(NewExpressionEntity(ast.Int(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run: %v, want context.Canceled", err)
	}
}
