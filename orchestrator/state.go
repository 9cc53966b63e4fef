package orchestrator

// State is a node in the turn pipeline. The machine always enters at
// StateGenerate and terminates at StateDone.
type State int

const (
	StateGenerate State = iota
	StateValidate
	StateExecute
	StateSummarize
	StateDone
)

func (s State) String() string {
	switch s {
	case StateGenerate:
		return "generate"
	case StateValidate:
		return "validate"
	case StateExecute:
		return "execute"
	case StateSummarize:
		return "summarize"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is the outcome of processing a state.
type Event int

const (
	EventGenerated Event = iota
	EventValid
	EventInvalid
	EventExecuted
	EventExecFailed
	EventSummarized
	EventExhausted
)

func (e Event) String() string {
	switch e {
	case EventGenerated:
		return "generated"
	case EventValid:
		return "valid"
	case EventInvalid:
		return "invalid"
	case EventExecuted:
		return "executed"
	case EventExecFailed:
		return "exec_failed"
	case EventSummarized:
		return "summarized"
	case EventExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Transitions maps (state, event) to the next state. Keeping it as data
// makes the retry edges and terminal conditions testable without standing
// up the pipeline.
type Transitions map[State]map[Event]State

// Next returns the successor state. Pairs outside the table terminate the
// machine: an impossible event must never loop.
func (t Transitions) Next(s State, e Event) State {
	if row, ok := t[s]; ok {
		if next, ok := row[e]; ok {
			return next
		}
	}
	return StateDone
}

// NewTransitions builds the transition table. Fast mode removes the
// validation stop: generation goes straight to execution.
func NewTransitions(fast bool) Transitions {
	t := Transitions{
		StateGenerate: {
			EventGenerated: StateValidate,
		},
		StateValidate: {
			EventValid:   StateExecute,
			EventInvalid: StateGenerate,
		},
		StateExecute: {
			EventExecuted:   StateSummarize,
			EventExecFailed: StateGenerate,
			EventExhausted:  StateDone,
		},
		StateSummarize: {
			EventSummarized: StateDone,
		},
	}

	if fast {
		t[StateGenerate] = map[Event]State{
			EventGenerated: StateExecute,
		}
		delete(t, StateValidate)
	}

	return t
}
