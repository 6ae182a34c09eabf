// internal/game/reader.go
package game

import (
	"context"
	"errors"
)

// ErrHostUnavailable is returned by a StateReader when the host runtime cannot be reached
// at all, as opposed to a single global being missing.
var ErrHostUnavailable = errors.New("game host unavailable")

// StateReader is the capability interface over the host game runtime.
// Implementations read live values on every call; nothing is cached between ticks.
type StateReader interface {
	// CurrentPlayer returns the player snake, or nil while none has spawned.
	CurrentPlayer(ctx context.Context) (*RawSnake, error)
	// CurrentFood returns the host's food array. Holes are reported as nil entries.
	CurrentFood(ctx context.Context) ([]*RawFood, error)
	CurrentPrey(ctx context.Context) ([]*RawPrey, error)
	// CurrentEnemies returns every tracked snake, the player included.
	CurrentEnemies(ctx context.Context) ([]*RawSnake, error)
	CurrentScore(ctx context.Context) (int, error)
	// IsAlive reports whether a game session is currently active.
	IsAlive(ctx context.Context) (bool, error)
	// LastScore reads the score shown after a session ended.
	LastScore(ctx context.Context) (int, error)
}

// RawPoint is a single body part as the host stores it.
type RawPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RawSnake mirrors a host snake object. ID is the host's identity key for the object;
// zero means the host did not expose one. Self is set by the host on the player object.
type RawSnake struct {
	ID      int64       `json:"id"`
	Self    bool        `json:"self"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Angle   float64     `json:"angle"`
	Speed   float64     `json:"speed"`
	Boosted bool        `json:"boosted"`
	Parts   []*RawPoint `json:"parts"`
}

// RawFood mirrors a host food object.
type RawFood struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// RawPrey mirrors a host prey object.
type RawPrey struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Same reports whether two raw snakes denote the same host object. Two snakes the
// host tagged as the player are the same object whatever their IDs.
func (s *RawSnake) Same(other *RawSnake) bool {
	if s == nil || other == nil {
		return false
	}
	if s == other || (s.Self && other.Self) {
		return true
	}
	return s.ID != 0 && s.ID == other.ID
}
