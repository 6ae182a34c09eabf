package schemas

import "time"

// -- Session Schemas --

// SessionRecord summarizes one completed game session, from the first alive tick
// until the liveness affordance reported the player dead.
type SessionRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	FinalScore int       `json:"final_score"`
	Ticks      int       `json:"ticks"`
	Dispatched int       `json:"dispatched"`
	Dropped    int       `json:"dropped"`
	Failures   int       `json:"failures"`
}

// Duration returns how long the session lasted.
func (r SessionRecord) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
