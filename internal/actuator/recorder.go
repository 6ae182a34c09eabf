// internal/actuator/recorder.go
package actuator

import (
	"context"
	"sync"
)

// Call is one recorded actuator invocation.
type Call struct {
	Method string
	Angle  float64
	Boost  bool
}

// Recorder is an Actuator that records calls instead of touching a page.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	// Err, when set, is returned from every call after recording it.
	Err error
}

var _ Actuator = (*Recorder)(nil)

func (r *Recorder) Steer(_ context.Context, angleDegrees float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "Steer", Angle: angleDegrees})
	return r.Err
}

func (r *Recorder) Boost(_ context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: "Boost", Boost: enabled})
	return r.Err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
