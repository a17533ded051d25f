package engine

// Phase is the engine's position in the batch lifecycle. Phases are reported
// through progress events so the UI can show what the engine is waiting on.
type Phase int

const (
	PhaseFetching Phase = iota
	PhaseAdvising
	PhaseAwaitingDecisions
	PhaseApplying
	PhaseCheckpointing
	PhaseExhausted
	PhaseInterrupted
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "FETCHING"
	case PhaseAdvising:
		return "ADVISING"
	case PhaseAwaitingDecisions:
		return "AWAITING_DECISIONS"
	case PhaseApplying:
		return "APPLYING"
	case PhaseCheckpointing:
		return "CHECKPOINTING"
	case PhaseExhausted:
		return "EXHAUSTED"
	case PhaseInterrupted:
		return "INTERRUPTED"
	default:
		return "UNKNOWN"
	}
}
