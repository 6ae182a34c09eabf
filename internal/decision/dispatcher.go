// File: internal/decision/dispatcher.go
package decision

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// Pending is the future for one dispatched request.
type Pending struct {
	done   chan struct{}
	action schemas.Action
	err    error
}

// Done is closed once the request has settled, successfully or not.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (p *Pending) Result() (schemas.Action, error) {
	return p.action, p.err
}

// Wait blocks until the request settles and returns its outcome.
func (p *Pending) Wait() (schemas.Action, error) {
	<-p.done
	return p.Result()
}

// Dispatcher runs each request on its own goroutine. It does not limit
// concurrency; the caller holds the in-flight slot.
type Dispatcher struct {
	client Client
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher over client.
func NewDispatcher(client Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{client: client, logger: logger.Named("dispatcher")}
}

// Dispatch starts req and returns immediately. The returned Pending always settles,
// even if the client panics.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Panic recovered in decision request",
					zap.Any("panic_value", r),
					zap.String("stack", string(debug.Stack())),
				)
				p.err = fmt.Errorf("decision request panicked: %v", r)
			}
		}()
		p.action, p.err = d.client.Decide(ctx, req)
	}()
	return p
}
