package checker

import (
	"fmt"

	"thorn/compiler-go/pkg/ast"
)

// Severity ranks a diagnostic. Critical diagnostics stop the scheduler
// at the end of the current pass.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// Diagnostic is one user-facing message tied to a source position.
type Diagnostic struct {
	Pos      ast.Pos
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	if d.Pos.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Pos.File, d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// Reporter accumulates diagnostics. Speculative checking paths, such as
// probing a function header or testing a constraint clause, push a
// buffer first; the buffer is either committed into the permanent list
// or discarded depending on whether the speculation is kept.
type Reporter struct {
	diags   []Diagnostic
	buffers [][]Diagnostic
}

func NewReporter() *Reporter { return &Reporter{} }

func (r *Reporter) add(d Diagnostic) {
	if n := len(r.buffers); n > 0 {
		r.buffers[n-1] = append(r.buffers[n-1], d)
		return
	}
	r.diags = append(r.diags, d)
}

// Warnf records a warning.
func (r *Reporter) Warnf(pos ast.Pos, format string, args ...any) {
	r.add(Diagnostic{Pos: pos, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Errorf records an error.
func (r *Reporter) Errorf(pos ast.Pos, format string, args ...any) {
	r.add(Diagnostic{Pos: pos, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Criticalf records an error that aborts the run after the current
// scheduler pass.
func (r *Reporter) Criticalf(pos ast.Pos, format string, args ...any) {
	r.add(Diagnostic{Pos: pos, Severity: SeverityCritical, Message: fmt.Sprintf(format, args...)})
}

// PushBuffer starts capturing diagnostics instead of recording them.
// Buffers nest.
func (r *Reporter) PushBuffer() { r.buffers = append(r.buffers, nil) }

// PopCommit ends the innermost buffer and keeps its diagnostics.
func (r *Reporter) PopCommit() {
	n := len(r.buffers)
	captured := r.buffers[n-1]
	r.buffers = r.buffers[:n-1]
	for _, d := range captured {
		r.add(d)
	}
}

// PopDiscard ends the innermost buffer and throws its diagnostics away.
func (r *Reporter) PopDiscard() {
	r.buffers = r.buffers[:len(r.buffers)-1]
}

// ClearPending empties the innermost buffer without closing it. Used
// between constraint clauses so one clause's silent failures do not
// leak into the next.
func (r *Reporter) ClearPending() {
	if n := len(r.buffers); n > 0 {
		r.buffers[n-1] = nil
	}
}

// PendingCount reports how many diagnostics the innermost buffer holds.
func (r *Reporter) PendingCount() int {
	if n := len(r.buffers); n > 0 {
		return len(r.buffers[n-1])
	}
	return 0
}

// Diagnostics returns everything recorded outside of buffers.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// HasErrors reports whether any error or critical diagnostic was
// recorded.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// HasCritical reports whether a critical diagnostic was recorded.
func (r *Reporter) HasCritical() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
