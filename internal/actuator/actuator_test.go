// internal/actuator/actuator_test.go
package actuator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mockExecutor records dispatched events against a fixed viewport.
type mockExecutor struct {
	viewport    Vector2D
	viewportErr error
	dispatchErr error
	events      []MouseEventData
}

func (m *mockExecutor) DispatchMouseEvent(_ context.Context, data MouseEventData) error {
	if m.dispatchErr != nil {
		return m.dispatchErr
	}
	m.events = append(m.events, data)
	return nil
}

func (m *mockExecutor) Viewport(context.Context) (Vector2D, error) {
	return m.viewport, m.viewportErr
}

const delta = 1e-9

func TestSteer(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name  string
		angle float64
		wantX float64
		wantY float64
	}{
		{"east", 0, 500, 300},
		{"south on screen", 90, 400, 400},
		{"west", 180, 300, 300},
		{"north on screen", 270, 400, 200},
		{"full turn wraps", 360, 500, 300},
		{"negative wraps", -90, 400, 200},
		{"diagonal", 45, 400 + 100*math.Sqrt2/2, 300 + 100*math.Sqrt2/2},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{viewport: Vector2D{X: 800, Y: 600}}
			a := NewPointerActuator(exec, 100, zaptest.NewLogger(t))

			require.NoError(t, a.Steer(ctx, tt.angle))
			require.Len(t, exec.events, 1)

			ev := exec.events[0]
			assert.Equal(t, MouseMove, ev.Type)
			assert.InDelta(t, tt.wantX, ev.X, delta)
			assert.InDelta(t, tt.wantY, ev.Y, delta)
		})
	}
}

func TestSteerIsPeriodic(t *testing.T) {
	ctx := context.Background()
	for _, base := range []float64{0, 0.1, 17.5, -33.3, 45, 123, 359.9} {
		var targets []Vector2D
		for _, k := range []float64{-2, -1, 0, 1, 3} {
			exec := &mockExecutor{viewport: Vector2D{X: 1024, Y: 768}}
			a := NewPointerActuator(exec, 0, nil)
			require.NoError(t, a.Steer(ctx, base+360*k))
			targets = append(targets, a.LastTarget())
		}
		for _, got := range targets[1:] {
			assert.Equal(t, targets[0], got, "angle %v", base)
		}
	}
}

func TestBoost(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the origin before any steering", func(t *testing.T) {
		exec := &mockExecutor{viewport: Vector2D{X: 800, Y: 600}}
		a := NewPointerActuator(exec, 100, nil)

		require.NoError(t, a.Boost(ctx, true))
		require.Len(t, exec.events, 1)
		assert.Equal(t, MouseEventData{Type: MousePress, Button: ButtonLeft, Buttons: 1, ClickCount: 1}, exec.events[0])
	})

	t.Run("reuses the last steering target", func(t *testing.T) {
		exec := &mockExecutor{viewport: Vector2D{X: 800, Y: 600}}
		a := NewPointerActuator(exec, 100, nil)

		require.NoError(t, a.Steer(ctx, 0))
		require.NoError(t, a.Boost(ctx, true))
		require.NoError(t, a.Boost(ctx, false))
		require.Len(t, exec.events, 3)

		press, release := exec.events[1], exec.events[2]
		assert.Equal(t, MousePress, press.Type)
		assert.Equal(t, MouseRelease, release.Type)
		for _, ev := range []MouseEventData{press, release} {
			assert.Equal(t, ButtonLeft, ev.Button)
			assert.InDelta(t, 500, ev.X, delta)
			assert.InDelta(t, 300, ev.Y, delta)
		}
	})
}

func TestActuatorErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("viewport failure aborts steering", func(t *testing.T) {
		exec := &mockExecutor{viewportErr: errors.New("target closed")}
		a := NewPointerActuator(exec, 100, nil)
		err := a.Steer(ctx, 10)
		require.Error(t, err)
		assert.Empty(t, exec.events)
		assert.Equal(t, Vector2D{}, a.LastTarget())
	})

	t.Run("dispatch failure is returned", func(t *testing.T) {
		exec := &mockExecutor{viewport: Vector2D{X: 10, Y: 10}, dispatchErr: errors.New("detached")}
		a := NewPointerActuator(exec, 100, nil)
		assert.Error(t, a.Steer(ctx, 10))
		assert.Error(t, a.Boost(ctx, true))
	})
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Steer(context.Background(), 12))
	require.NoError(t, r.Boost(context.Background(), true))
	assert.Equal(t, []Call{{Method: "Steer", Angle: 12}, {Method: "Boost", Boost: true}}, r.Calls())

	r.Err = errors.New("nope")
	assert.Error(t, r.Steer(context.Background(), 0))
	assert.Len(t, r.Calls(), 3)
}
