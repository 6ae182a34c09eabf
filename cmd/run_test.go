// File: cmd/run_test.go
package cmd

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/actuator"
	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/game"
	"github.com/xkilldash9x/snakepilot/internal/refserver"
	"github.com/xkilldash9x/snakepilot/internal/store"
)

func TestRunOptionsApply(t *testing.T) {
	t.Run("should override only the flags that were set", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		opts := &runOptions{headless: true, rate: 2, decisionURL: "http://ignored/ai"}
		changed := func(name string) bool { return name == "headless" || name == "rate" }

		require.NoError(t, opts.apply(changed, cfg))
		assert.True(t, cfg.Browser().Headless)
		assert.Equal(t, 500*time.Millisecond, cfg.Agent().Interval())
		assert.Equal(t, "http://localhost:8000/ai", cfg.Decision().URL)
	})

	t.Run("should reject invalid overrides", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		opts := &runOptions{payload: "smell"}
		err := opts.apply(func(name string) bool { return name == "payload" }, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid flags")
	})
}

// scriptedHost is a game page with one living player.
type scriptedHost struct{}

func (scriptedHost) CurrentPlayer(context.Context) (*game.RawSnake, error) {
	return &game.RawSnake{ID: 1, X: 10, Y: 10, Parts: []*game.RawPoint{{X: 10, Y: 10}}}, nil
}
func (scriptedHost) CurrentFood(context.Context) ([]*game.RawFood, error) {
	return []*game.RawFood{{X: 20, Y: 20, Size: 2}}, nil
}
func (scriptedHost) CurrentPrey(context.Context) ([]*game.RawPrey, error)     { return nil, nil }
func (scriptedHost) CurrentEnemies(context.Context) ([]*game.RawSnake, error) { return nil, nil }
func (scriptedHost) CurrentScore(context.Context) (int, error)                { return 10, nil }
func (scriptedHost) IsAlive(context.Context) (bool, error)                    { return true, nil }
func (scriptedHost) LastScore(context.Context) (int, error)                   { return 0, nil }
func (scriptedHost) CaptureFrame(context.Context, int) (schemas.Frame, error) {
	return schemas.Frame{}, nil
}

type capturingExecutor struct {
	mu     sync.Mutex
	events []actuator.MouseEventData
}

func (e *capturingExecutor) DispatchMouseEvent(_ context.Context, data actuator.MouseEventData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, data)
	return nil
}

func (e *capturingExecutor) Viewport(context.Context) (actuator.Vector2D, error) {
	return actuator.Vector2D{X: 800, Y: 600}, nil
}

func (e *capturingExecutor) Events() []actuator.MouseEventData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]actuator.MouseEventData(nil), e.events...)
}

func TestBuildLoopAgainstReferenceService(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ts := httptest.NewServer(refserver.New(config.ServerConfig{}, logger).Handler())
	defer ts.Close()

	cfg := config.NewDefaultConfig()
	cfg.SetDecisionURL(ts.URL + "/ai")
	cfg.SetAgentSampleRate(50)

	exec := &capturingExecutor{}
	loop, err := buildLoop(cfg, scriptedHost{}, exec, store.Discard{}, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(exec.Events()) >= 2
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	events := exec.Events()
	// The reference service always steers at 0 degrees without boost.
	assert.Equal(t, actuator.MouseMove, events[0].Type)
	assert.InDelta(t, 500, events[0].X, 1e-9)
	assert.InDelta(t, 300, events[0].Y, 1e-9)
	assert.Equal(t, actuator.MouseRelease, events[1].Type)
}

func TestBuildLoopRejectsUnknownPayload(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.AgentCfg.Payload = "audio"
	_, err := buildLoop(cfg, scriptedHost{}, &capturingExecutor{}, nil, nil)
	assert.Error(t, err)
}
