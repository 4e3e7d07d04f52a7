package checker

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
)

// SymbolResolver binds the names an entity mentions before type
// checking runs. The checker sends entities back here whenever a
// rewrite introduces fresh unresolved symbols.
type SymbolResolver interface {
	Resolve(e *Entity) Outcome
}

// NoopResolver accepts every entity. Programs assembled directly from
// pre-bound trees, including the test suites, use it.
type NoopResolver struct{}

func (NoopResolver) Resolve(*Entity) Outcome { return OutcomeSuccess }

// ErrChecksFailed is returned by Run when diagnostics include at least
// one error.
var ErrChecksFailed = errors.New("checking failed")

// Scheduler drives entities through their lifecycle with repeated
// passes over a worklist. An entity that yields is retried on the next
// pass; when a whole pass makes no progress the cycle flag flips and
// yields become hard errors on the following pass.
type Scheduler struct {
	log      *zap.Logger
	reporter *Reporter
	checker  *Checker
	resolver SymbolResolver

	queue         []*Entity
	cycleDetected bool
	passes        int
}

func NewScheduler(log *zap.Logger, checker *Checker, resolver SymbolResolver) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if resolver == nil {
		resolver = NoopResolver{}
	}
	s := &Scheduler{log: log, reporter: checker.reporter, checker: checker, resolver: resolver}
	checker.sched = s
	return s
}

// Add queues an entity for processing.
func (s *Scheduler) Add(e *Entity) { s.queue = append(s.queue, e) }

// AddAll queues several entities.
func (s *Scheduler) AddAll(es ...*Entity) { s.queue = append(s.queue, es...) }

// CycleDetected reports whether the last completed pass made no
// progress. Checking functions consult it to turn yields into errors.
func (s *Scheduler) CycleDetected() bool { return s.cycleDetected }

// Passes reports how many passes have run.
func (s *Scheduler) Passes() int { return s.passes }

// Run processes the worklist to quiescence. It returns ErrChecksFailed
// if any error diagnostic was produced, or the context error if the
// context is cancelled between passes.
func (s *Scheduler) Run(ctx context.Context) error {
	for len(s.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.passes++
		pass := s.queue
		s.queue = nil

		// Headers, types and overload sets go first so the entities
		// that consume them yield less.
		sort.SliceStable(pass, func(i, j int) bool { return pass[i].Kind < pass[j].Kind })

		progress := false
		for _, e := range pass {
			if s.process(e) {
				progress = true
			}
		}

		s.log.Debug("checker pass finished",
			zap.Int("pass", s.passes),
			zap.Int("processed", len(pass)),
			zap.Int("remaining", len(s.queue)),
			zap.Bool("progress", progress))

		if s.reporter.HasCritical() {
			break
		}
		if !progress {
			if s.cycleDetected {
				// Second stuck pass; every yield already reported.
				break
			}
			s.cycleDetected = true
			s.log.Warn("no progress in pass, assuming circular dependencies", zap.Int("pass", s.passes))
		}
	}
	if s.reporter.HasErrors() {
		return ErrChecksFailed
	}
	return nil
}

// process advances one entity and reports whether its state changed.
func (s *Scheduler) process(e *Entity) bool {
	e.attempts++
	before := e.State

	if e.State == StateUnresolved {
		e.State = StateResolvingSymbols
	}
	if e.State == StateResolvingSymbols {
		switch o := s.resolver.Resolve(e); o {
		case OutcomeSuccess:
			e.State = StateCheckingTypes
		case OutcomeComplete:
			e.State = StateFinalized
			return true
		case OutcomeYield:
			s.queue = append(s.queue, e)
			return e.State != before
		default:
			e.State = StateFailed
			return true
		}
	}

	if e.State != StateCheckingTypes {
		return e.State != before
	}

	switch o := s.checker.checkEntity(e); o {
	case OutcomeSuccess:
		e.State = StateCodeGenReady
	case OutcomeComplete:
		e.State = StateFinalized
	case OutcomeReturnToSymres:
		e.State = StateResolvingSymbols
		s.queue = append(s.queue, e)
	case OutcomeYield:
		s.queue = append(s.queue, e)
	case OutcomeFailed, OutcomeError:
		e.State = StateFailed
	}
	return e.State != before
}
