// internal/refserver/field.go
package refserver

import "github.com/xkilldash9x/snakepilot/api/schemas"

const (
	preySize       = 50
	enemyHeadScale = 5
)

// FieldPoint is an attraction (positive size) or repulsion (negative size) source
// in player-relative coordinates, with the y axis pointing up.
type FieldPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// FieldSummary totals the weights of a field.
type FieldSummary struct {
	Points     int
	Attraction float64
	Repulsion  float64
}

// RelativeField folds a bundle into one weighted point set around the player. Food keeps its
// size, prey weighs a flat 50, enemy segments repel by their size and enemy heads five times as
// hard. An absent player or an empty food set yields no field.
func RelativeField(b schemas.SignalBundle) []FieldPoint {
	if b.Player == nil || len(b.Food) == 0 {
		return nil
	}

	origin := b.Player.Position
	rel := func(p schemas.Position, size float64) FieldPoint {
		return FieldPoint{X: p.X - origin.X, Y: -(p.Y - origin.Y), Size: size}
	}

	out := make([]FieldPoint, 0, len(b.Food)+len(b.Prey))
	for _, f := range b.Food {
		out = append(out, rel(f.Position, f.Size))
	}
	for _, e := range b.Enemies {
		for i, seg := range e.Segments {
			scale := 1.0
			if i == 0 {
				scale = enemyHeadScale
			}
			out = append(out, rel(seg.Position, -seg.Size*scale))
		}
	}
	for _, p := range b.Prey {
		out = append(out, rel(p.Position, preySize))
	}
	return out
}

// Summarize totals a field.
func Summarize(field []FieldPoint) FieldSummary {
	sum := FieldSummary{Points: len(field)}
	for _, p := range field {
		if p.Size >= 0 {
			sum.Attraction += p.Size
		} else {
			sum.Repulsion -= p.Size
		}
	}
	return sum
}
