// File: internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/decision"
)

// Prober is the part of the host the loop consults on every tick.
type Prober interface {
	IsAlive(ctx context.Context) (bool, error)
	LastScore(ctx context.Context) (int, error)
}

// Sampler produces the encoded observation for one tick.
type Sampler interface {
	Sample(ctx context.Context) (decision.Request, error)
}

// Dispatcher starts a decision request without blocking. decision.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req decision.Request) *decision.Pending
}

// SignalExtractor builds the structured observation. game.Extractor implements it.
type SignalExtractor interface {
	Extract(ctx context.Context) (schemas.SignalBundle, error)
}

// FrameSource captures the render surface for pixel payloads.
type FrameSource interface {
	CaptureFrame(ctx context.Context, size int) (schemas.Frame, error)
}

// Host is the installation surface of the game page.
type Host interface {
	HasPlayButton(ctx context.Context) (bool, error)
	HasCanvas(ctx context.Context) (bool, error)
	ClickPlay(ctx context.Context) error
}

// SessionRecorder persists completed game sessions.
type SessionRecorder interface {
	Record(ctx context.Context, rec schemas.SessionRecord) error
}
