// File: internal/agent/loop.go
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/actuator"
	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/decision"
	"github.com/xkilldash9x/snakepilot/internal/liveness"
)

const recordTimeout = 5 * time.Second

// TickOutcome describes what a single tick did.
type TickOutcome int

const (
	OutcomeIdle TickOutcome = iota
	OutcomeStarted
	OutcomeEnded
	OutcomeDropped
	OutcomeDispatched
	OutcomeSampleFailed
	OutcomeProbeFailed
)

func (o TickOutcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeStarted:
		return "started"
	case OutcomeEnded:
		return "ended"
	case OutcomeDropped:
		return "dropped"
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeSampleFailed:
		return "sample_failed"
	case OutcomeProbeFailed:
		return "probe_failed"
	default:
		return fmt.Sprintf("TickOutcome(%d)", int(o))
	}
}

// Deps are the collaborators of the sampling loop. Recorder is optional.
type Deps struct {
	Prober     Prober
	Sampler    Sampler
	Dispatcher Dispatcher
	Actuator   actuator.Actuator
	Recorder   SessionRecorder
}

// Loop is the fixed-rate sampling loop. All of its state is owned by the goroutine
// running Run; request completions are delivered back to that goroutine.
type Loop struct {
	deps   Deps
	cfg    config.AgentConfig
	logger *zap.Logger

	state   LoopState
	pending *decision.Pending
	session *schemas.SessionRecord
	dropLog rate.Sometimes
	now     func() time.Time
}

// NewLoop creates a loop. The liveness state starts DEAD.
func NewLoop(deps Deps, cfg config.AgentConfig, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	dropLog := rate.Sometimes{Interval: cfg.DropLogInterval}
	if cfg.DropLogInterval <= 0 {
		dropLog = rate.Sometimes{Every: 1}
	}
	return &Loop{
		deps:    deps,
		cfg:     cfg,
		logger:  logger.Named("loop"),
		state:   newLoopState(),
		dropLog: dropLog,
		now:     time.Now,
	}
}

// Run ticks at the configured rate until ctx is cancelled. On shutdown it waits for
// an outstanding request to settle and discards its action.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.cfg.Interval()
	if interval <= 0 {
		return fmt.Errorf("invalid sample rate %v", l.cfg.SampleRateHz)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	l.logger.Info("Sampling loop started", zap.Duration("interval", interval))

	for {
		// A nil channel blocks forever, so the case is disabled while nothing is in flight.
		var settled <-chan struct{}
		if l.pending != nil {
			settled = l.pending.Done()
		}

		select {
		case <-ctx.Done():
			if l.pending != nil {
				l.logger.Debug("Waiting for in-flight request before exit")
				<-l.pending.Done()
				l.pending = nil
				l.state.release()
			}
			l.logger.Info("Sampling loop stopped")
			return nil
		case <-settled:
			l.settle(ctx)
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// State exposes the loop state for inspection.
func (l *Loop) State() *LoopState {
	return &l.state
}

// Tick runs one sampling step.
func (l *Loop) Tick(ctx context.Context) TickOutcome {
	alive, err := l.deps.Prober.IsAlive(ctx)
	if err != nil {
		l.logger.Debug("Liveness probe failed", zap.Error(err))
		return OutcomeProbeFailed
	}

	switch l.state.liveness.Observe(alive) {
	case liveness.TransitionStarted:
		l.startSession()
		return OutcomeStarted
	case liveness.TransitionEnded:
		l.endSession(ctx)
		return OutcomeEnded
	}

	if !l.state.Playing() {
		return OutcomeIdle
	}
	l.count(func(r *schemas.SessionRecord) { r.Ticks++ })

	if !l.state.acquire() {
		l.count(func(r *schemas.SessionRecord) { r.Dropped++ })
		l.dropLog.Do(func() {
			l.logger.Warn("dropping frame due to inflight query")
		})
		return OutcomeDropped
	}

	req, err := l.deps.Sampler.Sample(ctx)
	if err != nil {
		l.state.release()
		l.logger.Error("Failed to sample game state", zap.Error(err))
		return OutcomeSampleFailed
	}

	l.pending = l.deps.Dispatcher.Dispatch(ctx, req)
	l.count(func(r *schemas.SessionRecord) { r.Dispatched++ })
	return OutcomeDispatched
}

// settle consumes a completed request. The in-flight slot is released on every path.
func (l *Loop) settle(ctx context.Context) {
	if l.pending == nil {
		return
	}
	action, err := l.pending.Result()
	l.pending = nil
	l.state.release()

	if err != nil {
		l.count(func(r *schemas.SessionRecord) { r.Failures++ })
		l.logger.Error("error in ai query", zap.Error(err))
		return
	}
	if ctx.Err() != nil {
		return
	}

	if err := l.deps.Actuator.Steer(ctx, action.Angle); err != nil {
		l.logger.Warn("Failed to steer", zap.Float64("angle", action.Angle), zap.Error(err))
	}
	if err := l.deps.Actuator.Boost(ctx, action.Boost); err != nil {
		l.logger.Warn("Failed to toggle boost", zap.Bool("boost", action.Boost), zap.Error(err))
	}
}

func (l *Loop) startSession() {
	l.session = &schemas.SessionRecord{ID: uuid.NewString(), StartedAt: l.now()}
	l.logger.Info("game started!", zap.String("session_id", l.session.ID))
}

func (l *Loop) endSession(ctx context.Context) {
	score, err := l.deps.Prober.LastScore(ctx)
	if err != nil {
		l.logger.Warn("Final score unavailable", zap.Error(err))
	}
	l.logger.Warn("game ended. final score", zap.Int("final_score", score))

	if l.session == nil {
		return
	}
	rec := *l.session
	l.session = nil
	rec.EndedAt = l.now()
	rec.FinalScore = score

	if l.deps.Recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := l.deps.Recorder.Record(recordCtx, rec); err != nil {
		l.logger.Error("Failed to record session", zap.String("session_id", rec.ID), zap.Error(err))
	}
}

func (l *Loop) count(f func(*schemas.SessionRecord)) {
	if l.session != nil {
		f(l.session)
	}
}
