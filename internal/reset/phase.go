// Package reset sequences process shutdown, snapshotting, identity
// mutation, and cache purging into one observable operation.
package reset

// Phase identifies one stage of a reset run. COMPLETE and FAILED are
// terminal.
type Phase string

const (
	PhaseInit          Phase = "INIT"
	PhaseCloseProcess  Phase = "CLOSE_PROCESS"
	PhasePurgeOrMutate Phase = "PURGE_OR_MUTATE"
	PhaseCachePurge    Phase = "CACHE_PURGE"
	PhaseComplete      Phase = "COMPLETE"
	PhaseFailed        Phase = "FAILED"
)

// Event is one progress notification. Within a single run, percentages form
// a non-decreasing sequence ending at 100 on success.
type Event struct {
	Phase      Phase
	Message    string
	Percentage int
}

// emitter delivers events while enforcing the monotonic percentage
// invariant.
type emitter struct {
	fn   func(Event)
	last int
}

func (e *emitter) emit(phase Phase, message string, percentage int) {
	if percentage < e.last {
		percentage = e.last
	}
	if percentage > 100 {
		percentage = 100
	}
	e.last = percentage
	if e.fn != nil {
		e.fn(Event{Phase: phase, Message: message, Percentage: percentage})
	}
}
