// Filename: internal/actuator/executor.go
package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// eventTimeout bounds a single CDP input round trip.
const eventTimeout = 5 * time.Second

// Executor is the seam between pointer math and the browser.
type Executor interface {
	// DispatchMouseEvent sends a raw low-level mouse event to the page.
	DispatchMouseEvent(ctx context.Context, data MouseEventData) error
	// Viewport returns the size of the page body in CSS pixels.
	Viewport(ctx context.Context) (Vector2D, error)
}

// CDPExecutor is the production Executor. The context passed to its methods must
// carry a chromedp target.
type CDPExecutor struct {
	logger     *zap.Logger
	runActions func(ctx context.Context, actions ...chromedp.Action) error
}

var _ Executor = (*CDPExecutor)(nil)

// NewCDPExecutor creates a new production executor.
func NewCDPExecutor(logger *zap.Logger) *CDPExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CDPExecutor{
		logger:     logger.Named("cdp_executor"),
		runActions: chromedp.Run,
	}
}

// WithRunner routes actions through run instead of chromedp.Run.
func (e *CDPExecutor) WithRunner(run func(ctx context.Context, actions ...chromedp.Action) error) *CDPExecutor {
	e.runActions = run
	return e
}

func (e *CDPExecutor) DispatchMouseEvent(ctx context.Context, data MouseEventData) error {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y)
	if data.Button != "" {
		p = p.WithButton(input.MouseButton(data.Button))
	}
	if data.Buttons != 0 {
		p = p.WithButtons(data.Buttons)
	}
	if data.ClickCount > 0 {
		p = p.WithClickCount(int64(data.ClickCount))
	}

	opCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	err := e.runActions(opCtx, p)
	if err != nil && opCtx.Err() == context.DeadlineExceeded {
		e.logger.Debug("DispatchMouseEvent timed out.", zap.Duration("timeout", eventTimeout))
		return fmt.Errorf("DispatchMouseEvent timed out after %v: %w", eventTimeout, opCtx.Err())
	}
	return err
}

// viewportScript reads the same dimensions the page uses for its own pointer math.
const viewportScript = `[document.body.clientWidth, document.body.clientHeight]`

func (e *CDPExecutor) Viewport(ctx context.Context) (Vector2D, error) {
	var size []float64
	if err := e.runActions(ctx, chromedp.Evaluate(viewportScript, &size)); err != nil {
		return Vector2D{}, fmt.Errorf("failed to read viewport size: %w", err)
	}
	if len(size) != 2 {
		return Vector2D{}, fmt.Errorf("unexpected viewport result %v", size)
	}
	return Vector2D{X: size[0], Y: size[1]}, nil
}
