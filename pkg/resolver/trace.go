package resolver

// Trace phases
const (
	PhaseLocks    = "locks"
	PhaseSchedule = "schedule"
	PhaseSummary  = "summary"
)

// TraceEvent is one entry in the sequential decision log of a run.
type TraceEvent struct {
	Seq      int    `json:"seq"`
	Phase    string `json:"phase"`
	Kind     string `json:"kind"`
	ShiftID  string `json:"shift_id,omitempty"`
	SeatID   string `json:"seat_id,omitempty"`
	MemberID string `json:"member_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// TraceSink receives the decision log as the scheduler works through a run.
// It is observability only: sinks must not influence control flow, and a
// nil sink disables tracing entirely.
type TraceSink interface {
	Record(TraceEvent)
}

// MemoryTrace collects trace events in order.
type MemoryTrace struct {
	Events []TraceEvent
}

// Record appends the event.
func (t *MemoryTrace) Record(ev TraceEvent) {
	t.Events = append(t.Events, ev)
}

// tracer numbers events sequentially and swallows a nil sink.
type tracer struct {
	sink TraceSink
	seq  int
}

func (t *tracer) emit(phase, kind string, ev TraceEvent) {
	if t.sink == nil {
		return
	}
	t.seq++
	ev.Seq = t.seq
	ev.Phase = phase
	ev.Kind = kind
	t.sink.Record(ev)
}
