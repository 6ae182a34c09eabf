// internal/actuator/vector.go
package actuator

import "math"

// Vector2D represents a point or vector in 2D space.
type Vector2D struct {
	X, Y float64
}

// Add returns the vector sum of v and other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Mul returns the vector v scaled by the scalar factor.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{X: v.X * scalar, Y: v.Y * scalar}
}

// Center returns the midpoint of a box of size v anchored at the origin.
func (v Vector2D) Center() Vector2D {
	return v.Mul(0.5)
}

// Polar returns the vector of length radius pointing at radians.
func Polar(radius, radians float64) Vector2D {
	return Vector2D{X: radius * math.Cos(radians), Y: radius * math.Sin(radians)}
}

// degreeGrid is the resolution headings are snapped to, in steps per degree.
const degreeGrid = 1e9

// NormalizeDegrees reduces an angle into [0, 360) and snaps it to a nano-degree grid,
// so angles a whole number of turns apart normalize to the same value.
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	deg = math.Round(deg*degreeGrid) / degreeGrid
	// -0, and tiny negatives that round up to 360.
	if deg == 0 || deg >= 360 {
		return 0
	}
	return deg
}

// DegreesToRadians converts an angle from degrees.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
