// internal/agent/fakes_test.go
package agent

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/decision"
)

type fakeProber struct {
	alive     atomic.Bool
	score     int
	err       error
	scoreErr  error
	aliveHits atomic.Int32
	scoreHits atomic.Int32
}

func (p *fakeProber) IsAlive(context.Context) (bool, error) {
	p.aliveHits.Add(1)
	return p.alive.Load(), p.err
}

func (p *fakeProber) LastScore(context.Context) (int, error) {
	p.scoreHits.Add(1)
	return p.score, p.scoreErr
}

type fakeSampler struct {
	calls atomic.Int32
	err   error
}

func (s *fakeSampler) Sample(context.Context) (decision.Request, error) {
	s.calls.Add(1)
	if s.err != nil {
		return decision.Request{}, s.err
	}
	return decision.EncodeSignals(schemas.SignalBundle{Score: 1})
}

// clientFunc adapts a function to decision.Client.
type clientFunc func(ctx context.Context, req decision.Request) (schemas.Action, error)

func (f clientFunc) Decide(ctx context.Context, req decision.Request) (schemas.Action, error) {
	return f(ctx, req)
}

// countingClient tracks how many requests are outstanding at once.
type countingClient struct {
	action   schemas.Action
	inflight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (c *countingClient) Decide(context.Context, decision.Request) (schemas.Action, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	c.calls.Add(1)
	for {
		prev := c.maxSeen.Load()
		if n <= prev || c.maxSeen.CompareAndSwap(prev, n) {
			break
		}
	}
	return c.action, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []schemas.SessionRecord
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, rec schemas.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

func (r *fakeRecorder) Records() []schemas.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]schemas.SessionRecord(nil), r.records...)
}

type fakeHost struct {
	playButton bool
	canvas     bool
	probeErr   error
	clickErr   error
	clicks     int
}

func (h *fakeHost) HasPlayButton(context.Context) (bool, error) { return h.playButton, h.probeErr }
func (h *fakeHost) HasCanvas(context.Context) (bool, error)     { return h.canvas, nil }
func (h *fakeHost) ClickPlay(context.Context) error {
	h.clicks++
	return h.clickErr
}
