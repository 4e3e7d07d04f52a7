package checker

// Outcome is the result protocol shared by every checking function.
// Values at ReturnToSymres and above interrupt the current pass over an
// entity; the scheduler decides what happens to the entity next.
type Outcome int

const (
	// OutcomeSuccess means the node checked cleanly.
	OutcomeSuccess Outcome = iota
	// OutcomeComplete means the whole entity finished ahead of its
	// normal state progression and needs no further processing.
	OutcomeComplete
	// OutcomeReturnToSymres sends the entity back to symbol
	// resolution, typically after a rewrite introduced unresolved
	// symbols.
	OutcomeReturnToSymres
	// OutcomeYield parks the entity; something it depends on has not
	// been produced yet. The scheduler retries it on a later pass.
	OutcomeYield
	// OutcomeFailed marks the entity itself as unusable without
	// aborting the whole run. Callers depending on it see the failure
	// through the entity state.
	OutcomeFailed
	// OutcomeError reports a hard, user-visible error.
	OutcomeError
)

var outcomeNames = map[Outcome]string{
	OutcomeSuccess:        "success",
	OutcomeComplete:       "complete",
	OutcomeReturnToSymres: "return-to-symres",
	OutcomeYield:          "yield",
	OutcomeFailed:         "failed",
	OutcomeError:          "error",
}

func (o Outcome) String() string {
	if n, ok := outcomeNames[o]; ok {
		return n
	}
	return "unknown"
}

// Interrupts reports whether the outcome aborts the remainder of the
// current checking pass. Success and Complete do not; everything from
// ReturnToSymres up does.
func (o Outcome) Interrupts() bool { return o >= OutcomeReturnToSymres }
