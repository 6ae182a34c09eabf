// internal/browser/context_utils_test.go
package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineContext(t *testing.T) {
	type ctxKey string
	const key ctxKey = "testKey"
	const value = "testValue"

	t.Run("InheritsValuesFromPrimary", func(t *testing.T) {
		primary := context.WithValue(context.Background(), key, value)
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		assert.Equal(t, value, combined.Value(key))
		assert.Nil(t, combined.Err())
	})

	t.Run("CancelledByPrimary", func(t *testing.T) {
		primary, cancelPrimary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		cancelPrimary()
		assert.Eventually(t, func() bool { return combined.Err() != nil }, time.Second, 5*time.Millisecond)
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("CancelledBySecondary", func(t *testing.T) {
		secondary, cancelSecondary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		cancelSecondary()
		assert.Eventually(t, func() bool { return combined.Err() != nil }, time.Second, 5*time.Millisecond)
	})

	t.Run("DeadlineFromPrimary", func(t *testing.T) {
		deadline := time.Now().Add(time.Minute)
		primary, cancelPrimary := context.WithDeadline(context.Background(), deadline)
		defer cancelPrimary()

		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		got, ok := combined.Deadline()
		require.True(t, ok)
		assert.True(t, got.Equal(deadline))
	})
}

func TestDetach(t *testing.T) {
	type ctxKey string
	parent, cancel := context.WithTimeout(context.WithValue(context.Background(), ctxKey("k"), "v"), time.Millisecond)
	cancel()

	detached := Detach(parent)
	assert.Equal(t, "v", detached.Value(ctxKey("k")))
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	_, ok := detached.Deadline()
	assert.False(t, ok)
}
