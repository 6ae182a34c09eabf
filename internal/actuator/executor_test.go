// internal/actuator/executor_test.go
package actuator

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCDPExecutor(t *testing.T) {
	t.Run("DispatchMouseEvent_Press", func(t *testing.T) {
		var captured []chromedp.Action
		exec := NewCDPExecutor(zaptest.NewLogger(t))
		exec.runActions = func(ctx context.Context, actions ...chromedp.Action) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "events run under a timeout")
			captured = actions
			return nil
		}

		data := MouseEventData{Type: MousePress, X: 10.5, Y: 20.5, Button: ButtonLeft, Buttons: 1, ClickCount: 1}
		require.NoError(t, exec.DispatchMouseEvent(context.Background(), data))

		require.Len(t, captured, 1)
		action, ok := captured[0].(*input.DispatchMouseEventParams)
		require.True(t, ok, "Action should be DispatchMouseEventParams")
		assert.Equal(t, input.MousePressed, action.Type)
		assert.Equal(t, 10.5, action.X)
		assert.Equal(t, 20.5, action.Y)
		assert.Equal(t, input.Left, action.Button)
		assert.Equal(t, int64(1), action.Buttons)
		assert.Equal(t, int64(1), action.ClickCount)
	})

	t.Run("DispatchMouseEvent_Move", func(t *testing.T) {
		var captured []chromedp.Action
		exec := NewCDPExecutor(nil)
		exec.runActions = func(_ context.Context, actions ...chromedp.Action) error {
			captured = actions
			return nil
		}

		require.NoError(t, exec.DispatchMouseEvent(context.Background(), MouseEventData{Type: MouseMove, X: 1, Y: 2}))
		action := captured[0].(*input.DispatchMouseEventParams)
		assert.Equal(t, input.MouseMoved, action.Type)
		assert.Empty(t, action.Button)
	})

	t.Run("DispatchMouseEvent_Error", func(t *testing.T) {
		exec := NewCDPExecutor(nil)
		exec.runActions = func(context.Context, ...chromedp.Action) error {
			return errors.New("target closed")
		}
		assert.EqualError(t, exec.DispatchMouseEvent(context.Background(), MouseEventData{Type: MouseMove}), "target closed")
	})

	t.Run("Viewport_Error", func(t *testing.T) {
		exec := NewCDPExecutor(nil)
		exec.runActions = func(context.Context, ...chromedp.Action) error {
			return errors.New("no target")
		}
		_, err := exec.Viewport(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read viewport size")
	})

	t.Run("Viewport_Malformed", func(t *testing.T) {
		exec := NewCDPExecutor(nil)
		exec.runActions = func(context.Context, ...chromedp.Action) error { return nil }
		_, err := exec.Viewport(context.Background())
		assert.Error(t, err, "an empty result is not a size")
	})
}

func TestCDPExecutorWithRunner(t *testing.T) {
	var ran bool
	exec := NewCDPExecutor(nil).WithRunner(func(context.Context, ...chromedp.Action) error {
		ran = true
		return nil
	})
	require.NoError(t, exec.DispatchMouseEvent(context.Background(), MouseEventData{Type: MouseMove, X: 1, Y: 2}))
	assert.True(t, ran)
}
