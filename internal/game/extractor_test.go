// internal/game/extractor_test.go
package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// fakeReader is an in-memory StateReader.
type fakeReader struct {
	player *RawSnake
	food   []*RawFood
	prey   []*RawPrey
	snakes []*RawSnake
	score  int
	alive  bool
	last   int
	errs   map[string]error
	calls  map[string]int
}

func (f *fakeReader) hit(name string) error {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeReader) CurrentPlayer(context.Context) (*RawSnake, error) {
	return f.player, f.hit("player")
}
func (f *fakeReader) CurrentFood(context.Context) ([]*RawFood, error) { return f.food, f.hit("food") }
func (f *fakeReader) CurrentPrey(context.Context) ([]*RawPrey, error) { return f.prey, f.hit("prey") }
func (f *fakeReader) CurrentEnemies(context.Context) ([]*RawSnake, error) {
	return f.snakes, f.hit("enemies")
}
func (f *fakeReader) CurrentScore(context.Context) (int, error) { return f.score, f.hit("score") }
func (f *fakeReader) IsAlive(context.Context) (bool, error)     { return f.alive, f.hit("alive") }
func (f *fakeReader) LastScore(context.Context) (int, error)    { return f.last, f.hit("last") }

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("should report an absent player and drop food holes", func(t *testing.T) {
		reader := &fakeReader{
			food: []*RawFood{{X: 10, Y: 10, Size: 1}, nil, {X: 20, Y: 20, Size: 2}},
		}
		bundle, err := NewExtractor(reader, zaptest.NewLogger(t)).Extract(ctx)
		require.NoError(t, err)

		want := schemas.SignalBundle{
			Player: nil,
			Food: []schemas.FoodItem{
				{Position: schemas.Position{X: 10, Y: 10}, Size: 1},
				{Position: schemas.Position{X: 20, Y: 20}, Size: 2},
			},
			Prey:    []schemas.PreyItem{},
			Enemies: []schemas.EntitySnapshot{},
			Score:   0,
		}
		if diff := cmp.Diff(want, bundle); diff != "" {
			t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should exclude the player from enemies by identity", func(t *testing.T) {
		player := &RawSnake{ID: 1, X: 5, Y: 6, Angle: 1.5, Speed: 5.8, Parts: []*RawPoint{{X: 5, Y: 6}}}
		// A distinct object that shares the player's identity key.
		alias := &RawSnake{ID: 1, X: 5, Y: 6}
		enemy := &RawSnake{ID: 2, X: 100, Y: 200, Boosted: true, Parts: []*RawPoint{{X: 100, Y: 200}, {X: 101, Y: 201}}}
		reader := &fakeReader{
			player: player,
			snakes: []*RawSnake{player, enemy, nil, alias},
			score:  42,
		}

		bundle, err := NewExtractor(reader, zaptest.NewLogger(t)).Extract(ctx)
		require.NoError(t, err)

		require.NotNil(t, bundle.Player)
		assert.Equal(t, 42, bundle.Score)
		want := []schemas.EntitySnapshot{{
			Position: schemas.Position{X: 100, Y: 200},
			Boosted:  true,
			Segments: []schemas.SegmentPoint{
				{Position: schemas.Position{X: 100, Y: 200}, Size: 4},
				{Position: schemas.Position{X: 101, Y: 201}, Size: 4},
			},
		}}
		if diff := cmp.Diff(want, bundle.Enemies); diff != "" {
			t.Errorf("enemies mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should exclude the tagged player when the host exposes no ids", func(t *testing.T) {
		reader := &fakeReader{
			player: &RawSnake{Self: true, X: 5, Y: 5},
			snakes: []*RawSnake{
				{Self: true, X: 5, Y: 5},
				{X: 40, Y: 60},
				{X: 70, Y: 80},
			},
		}
		bundle, err := NewExtractor(reader, nil).Extract(ctx)
		require.NoError(t, err)
		require.Len(t, bundle.Enemies, 2)
		assert.Equal(t, 40.0, bundle.Enemies[0].X)
		assert.Equal(t, 70.0, bundle.Enemies[1].X)
	})

	t.Run("should skip the tagged player even if the player read came back empty", func(t *testing.T) {
		reader := &fakeReader{snakes: []*RawSnake{{Self: true}, {X: 1}}}
		bundle, err := NewExtractor(reader, nil).Extract(ctx)
		require.NoError(t, err)
		require.Len(t, bundle.Enemies, 1)
		assert.Equal(t, 1.0, bundle.Enemies[0].X)
	})

	t.Run("should keep every tracked snake when there is no player", func(t *testing.T) {
		reader := &fakeReader{snakes: []*RawSnake{{ID: 3}, {ID: 4}}}
		bundle, err := NewExtractor(reader, nil).Extract(ctx)
		require.NoError(t, err)
		assert.Len(t, bundle.Enemies, 2)
	})

	t.Run("should size segments by the raw part count", func(t *testing.T) {
		reader := &fakeReader{player: &RawSnake{
			Parts: []*RawPoint{{X: 1, Y: 1}, nil, {X: 2, Y: 2}},
		}}
		bundle, err := NewExtractor(reader, nil).Extract(ctx)
		require.NoError(t, err)

		require.Len(t, bundle.Player.Segments, 2)
		for _, seg := range bundle.Player.Segments {
			assert.Equal(t, 6.0, seg.Size, "holes count toward the segment size")
		}
		assert.Equal(t, 1.0, bundle.Player.Segments[0].X)
		assert.Equal(t, 2.0, bundle.Player.Segments[1].X)
	})

	t.Run("should keep prey order and drop prey holes", func(t *testing.T) {
		reader := &fakeReader{prey: []*RawPrey{nil, {X: 3, Size: 9}, {X: 1, Size: 8}}}
		bundle, err := NewExtractor(reader, nil).Extract(ctx)
		require.NoError(t, err)
		require.Len(t, bundle.Prey, 2)
		assert.Equal(t, 3.0, bundle.Prey[0].X)
		assert.Equal(t, 1.0, bundle.Prey[1].X)
	})

	t.Run("should degrade optional collections on read errors", func(t *testing.T) {
		boom := errors.New("global missing")
		reader := &fakeReader{
			player: &RawSnake{ID: 1},
			food:   []*RawFood{{X: 1}},
			score:  7,
			errs:   map[string]error{"food": boom, "prey": boom, "enemies": boom, "score": boom},
		}
		bundle, err := NewExtractor(reader, zaptest.NewLogger(t)).Extract(ctx)
		require.NoError(t, err)

		assert.NotNil(t, bundle.Player)
		assert.Empty(t, bundle.Food)
		assert.NotNil(t, bundle.Food)
		assert.Empty(t, bundle.Prey)
		assert.NotNil(t, bundle.Enemies)
		assert.Zero(t, bundle.Score)
	})

	t.Run("should return player read errors", func(t *testing.T) {
		reader := &fakeReader{errs: map[string]error{"player": ErrHostUnavailable}}
		_, err := NewExtractor(reader, nil).Extract(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrHostUnavailable)
		assert.Zero(t, reader.calls["food"], "no further reads after the player fails")
	})

	t.Run("should never touch liveness or the last score", func(t *testing.T) {
		reader := &fakeReader{}
		_, err := NewExtractor(reader, nil).Extract(ctx)
		require.NoError(t, err)
		assert.Zero(t, reader.calls["alive"])
		assert.Zero(t, reader.calls["last"])
	})
}

func TestRawSnakeSame(t *testing.T) {
	a := &RawSnake{ID: 7}
	assert.True(t, a.Same(a))
	assert.True(t, a.Same(&RawSnake{ID: 7}))
	assert.False(t, a.Same(&RawSnake{ID: 8}))
	assert.False(t, a.Same(nil))
	assert.False(t, (&RawSnake{}).Same(&RawSnake{}), "zero ids are not an identity")
	assert.True(t, (&RawSnake{Self: true}).Same(&RawSnake{Self: true}), "both tagged as the player")
	assert.False(t, (&RawSnake{Self: true}).Same(&RawSnake{}))
}
