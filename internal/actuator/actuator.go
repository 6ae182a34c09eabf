// internal/actuator/actuator.go
package actuator

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultSteerRadius is the distance from the viewport center at which the
// pointer is placed when steering.
const DefaultSteerRadius = 100.0

// Actuator turns decisions into input on the host page.
type Actuator interface {
	// Steer points the player toward angleDegrees (0 = +x, clockwise on screen).
	Steer(ctx context.Context, angleDegrees float64) error
	// Boost presses or releases the boost button at the last steering target.
	Boost(ctx context.Context, enabled bool) error
}

// PointerActuator steers by moving a synthetic pointer around the viewport center.
// It is not safe for concurrent use; the sampling loop calls it from one goroutine.
type PointerActuator struct {
	exec   Executor
	radius float64
	logger *zap.Logger

	// last is the most recent steering target. Boost events reuse it.
	last Vector2D
}

var _ Actuator = (*PointerActuator)(nil)

// NewPointerActuator creates an actuator over exec. A non-positive radius uses the default.
func NewPointerActuator(exec Executor, radius float64, logger *zap.Logger) *PointerActuator {
	if radius <= 0 {
		radius = DefaultSteerRadius
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PointerActuator{
		exec:   exec,
		radius: radius,
		logger: logger.Named("actuator"),
	}
}

// Target computes the pointer position for angleDegrees inside a viewport of the given size.
func Target(viewport Vector2D, radius, angleDegrees float64) Vector2D {
	rad := DegreesToRadians(NormalizeDegrees(angleDegrees))
	return viewport.Center().Add(Polar(radius, rad))
}

func (a *PointerActuator) Steer(ctx context.Context, angleDegrees float64) error {
	viewport, err := a.exec.Viewport(ctx)
	if err != nil {
		return fmt.Errorf("steer: %w", err)
	}

	target := Target(viewport, a.radius, angleDegrees)
	a.last = target

	if err := a.exec.DispatchMouseEvent(ctx, MouseEventData{Type: MouseMove, X: target.X, Y: target.Y}); err != nil {
		return fmt.Errorf("steer: failed to dispatch pointer move: %w", err)
	}
	a.logger.Debug("steered", zap.Float64("angle", angleDegrees), zap.Float64("x", target.X), zap.Float64("y", target.Y))
	return nil
}

func (a *PointerActuator) Boost(ctx context.Context, enabled bool) error {
	data := MouseEventData{Type: MouseRelease, X: a.last.X, Y: a.last.Y, Button: ButtonLeft}
	if enabled {
		data.Type = MousePress
		data.Buttons = 1
		data.ClickCount = 1
	}
	if err := a.exec.DispatchMouseEvent(ctx, data); err != nil {
		return fmt.Errorf("boost: failed to dispatch %s: %w", data.Type, err)
	}
	return nil
}

// LastTarget returns the most recent steering target, (0,0) before the first Steer.
func (a *PointerActuator) LastTarget() Vector2D {
	return a.last
}
