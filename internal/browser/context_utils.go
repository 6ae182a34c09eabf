// internal/browser/context_utils.go
package browser

import (
	"context"
	"time"
)

// CombineContext returns a context derived from primary that is also canceled when
// secondary is. Values come from primary only; chromedp keeps its target there.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// valueOnlyContext keeps the parent's values and drops its deadline and cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context that carries ctx's values but outlives it. Used for
// cleanup that must still reach the browser after the caller's context ended.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
