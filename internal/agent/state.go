// internal/agent/state.go
package agent

import "github.com/xkilldash9x/snakepilot/internal/liveness"

// LoopState is the loop's mutable state. Only the loop goroutine touches it.
type LoopState struct {
	liveness *liveness.Tracker
	inflight bool
}

func newLoopState() LoopState {
	return LoopState{liveness: liveness.NewTracker()}
}

// Playing reports whether a game session is active.
func (s *LoopState) Playing() bool {
	return s.liveness.Playing()
}

// Inflight reports whether a decision request is outstanding.
func (s *LoopState) Inflight() bool {
	return s.inflight
}

// acquire takes the in-flight slot. It returns false if the slot is taken.
func (s *LoopState) acquire() bool {
	if s.inflight {
		return false
	}
	s.inflight = true
	return true
}

func (s *LoopState) release() {
	s.inflight = false
}
