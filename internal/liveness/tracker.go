// internal/liveness/tracker.go
package liveness

// State is the tracker's view of the game session.
type State int

const (
	Dead State = iota
	Alive
)

func (s State) String() string {
	if s == Alive {
		return "ALIVE"
	}
	return "DEAD"
}

// Transition is the edge, if any, produced by one observation.
type Transition int

const (
	TransitionNone Transition = iota
	// TransitionStarted fires on DEAD -> ALIVE. The tick that sees it skips sampling.
	TransitionStarted
	// TransitionEnded fires on ALIVE -> DEAD. The caller reads the final score once.
	TransitionEnded
)

func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionEnded:
		return "ended"
	default:
		return "none"
	}
}

// Tracker is a two-state machine fed with one liveness probe per tick.
// It is not safe for concurrent use; the sampling loop owns it.
type Tracker struct {
	state State
}

// NewTracker returns a tracker in the Dead state.
func NewTracker() *Tracker {
	return &Tracker{state: Dead}
}

// Observe records a probe result and reports the transition it caused.
func (t *Tracker) Observe(alive bool) Transition {
	switch {
	case alive && t.state == Dead:
		t.state = Alive
		return TransitionStarted
	case !alive && t.state == Alive:
		t.state = Dead
		return TransitionEnded
	default:
		return TransitionNone
	}
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Playing reports whether a session is active.
func (t *Tracker) Playing() bool {
	return t.state == Alive
}
