package schemas

// -- Observation Schemas --
//
// These types form the payload sent to the decision service on every sampled tick.
// They are value types: built once by the extractor and never mutated afterwards.

// Position is a point in world coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SegmentPoint is a single body segment of a snake.
//
// Size is derived from the owning snake's segment count (2 * count) and is identical for
// every segment of that snake. It is an approximation of the real per-segment radius, kept
// as-is because consumers of the payload are calibrated against it.
type SegmentPoint struct {
	Position
	Size float64 `json:"size"`
}

// EntitySnapshot captures the state of one snake (the player or an enemy) at sample time.
type EntitySnapshot struct {
	Position
	Angle    float64        `json:"angle"`
	Speed    float64        `json:"speed"`
	Boosted  bool           `json:"boosted"`
	Segments []SegmentPoint `json:"parts"`
}

// FoodItem is a food pellet lying in the world.
type FoodItem struct {
	Position
	Size float64 `json:"size"`
}

// PreyItem is a moving prey entity.
type PreyItem struct {
	Position
	Size float64 `json:"size"`
}

// SignalBundle is the unit of transmission to the decision service for one tick.
// Player is nil while no player entity has spawned.
type SignalBundle struct {
	Player  *EntitySnapshot  `json:"player"`
	Food    []FoodItem       `json:"food"`
	Prey    []PreyItem       `json:"prey"`
	Enemies []EntitySnapshot `json:"enemies"`
	Score   int              `json:"score"`
}

// Normalized returns a copy of the bundle whose collections are non-nil, so the
// encoded payload always carries arrays rather than nulls.
func (b SignalBundle) Normalized() SignalBundle {
	if b.Food == nil {
		b.Food = []FoodItem{}
	}
	if b.Prey == nil {
		b.Prey = []PreyItem{}
	}
	if b.Enemies == nil {
		b.Enemies = []EntitySnapshot{}
	}
	return b
}
