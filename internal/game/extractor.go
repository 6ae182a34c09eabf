// internal/game/extractor.go
package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// Extractor turns the host's live object graph into a SignalBundle.
type Extractor struct {
	reader StateReader
	logger *zap.Logger
}

// NewExtractor creates an Extractor reading from the given StateReader.
func NewExtractor(reader StateReader, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		reader: reader,
		logger: logger.Named("extractor"),
	}
}

// Extract samples the host once. Missing optional collections degrade to empty
// values; only a failure to read the player is returned as an error.
func (e *Extractor) Extract(ctx context.Context) (schemas.SignalBundle, error) {
	rawPlayer, err := e.reader.CurrentPlayer(ctx)
	if err != nil {
		return schemas.SignalBundle{}, fmt.Errorf("failed to read player: %w", err)
	}

	bundle := schemas.SignalBundle{
		Player: snapshotOf(rawPlayer),
		Food:   []schemas.FoodItem{},
		Prey:   []schemas.PreyItem{},
	}

	if foods, err := e.reader.CurrentFood(ctx); err != nil {
		e.logger.Debug("food unavailable, sending empty set", zap.Error(err))
	} else {
		bundle.Food = mapFood(foods)
	}

	if preys, err := e.reader.CurrentPrey(ctx); err != nil {
		e.logger.Debug("prey unavailable, sending empty set", zap.Error(err))
	} else {
		bundle.Prey = mapPrey(preys)
	}

	if snakes, err := e.reader.CurrentEnemies(ctx); err != nil {
		e.logger.Debug("tracked snakes unavailable, sending no enemies", zap.Error(err))
		bundle.Enemies = []schemas.EntitySnapshot{}
	} else {
		bundle.Enemies = mapEnemies(snakes, rawPlayer)
	}

	if score, err := e.reader.CurrentScore(ctx); err != nil {
		e.logger.Debug("score unavailable, reporting 0", zap.Error(err))
	} else {
		bundle.Score = score
	}

	return bundle, nil
}

// snapshotOf maps a raw snake. A nil snake yields a nil snapshot.
func snapshotOf(s *RawSnake) *schemas.EntitySnapshot {
	if s == nil {
		return nil
	}

	// Every segment carries the same size, twice the raw part count. Holes count too.
	size := float64(2 * len(s.Parts))
	segments := make([]schemas.SegmentPoint, 0, len(s.Parts))
	for _, p := range s.Parts {
		if p == nil {
			continue
		}
		segments = append(segments, schemas.SegmentPoint{
			Position: schemas.Position{X: p.X, Y: p.Y},
			Size:     size,
		})
	}

	return &schemas.EntitySnapshot{
		Position: schemas.Position{X: s.X, Y: s.Y},
		Angle:    s.Angle,
		Speed:    s.Speed,
		Boosted:  s.Boosted,
		Segments: segments,
	}
}

func mapFood(foods []*RawFood) []schemas.FoodItem {
	out := make([]schemas.FoodItem, 0, len(foods))
	for _, f := range foods {
		if f == nil {
			continue
		}
		out = append(out, schemas.FoodItem{Position: schemas.Position{X: f.X, Y: f.Y}, Size: f.Size})
	}
	return out
}

func mapPrey(preys []*RawPrey) []schemas.PreyItem {
	out := make([]schemas.PreyItem, 0, len(preys))
	for _, p := range preys {
		if p == nil {
			continue
		}
		out = append(out, schemas.PreyItem{Position: schemas.Position{X: p.X, Y: p.Y}, Size: p.Size})
	}
	return out
}

// mapEnemies maps every tracked snake except the player. A snake the host tagged
// as the player is skipped even when no player was read this tick.
func mapEnemies(snakes []*RawSnake, player *RawSnake) []schemas.EntitySnapshot {
	out := make([]schemas.EntitySnapshot, 0, len(snakes))
	for _, s := range snakes {
		if s == nil || s.Self || s.Same(player) {
			continue
		}
		out = append(out, *snapshotOf(s))
	}
	return out
}
