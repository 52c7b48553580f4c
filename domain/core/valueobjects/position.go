package valueobjects

import (
	"math/rand"
	"time"
)

// Position is a point on the canvas. The canvas is unbounded, so any finite
// coordinate (including negatives) is valid.
type Position struct {
	X float64
	Y float64
}

// Offset returns the position translated by dx, dy
func (p Position) Offset(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// RandomSource yields uniformly distributed values in [0, 1).
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a RandomSource with a fixed seed
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSource returns a RandomSource seeded from the wall clock
func NewTimeSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SpawnRegion is the rectangle new nodes are placed in, half-open on both axes
type SpawnRegion struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// RandomPosition draws a position inside the region
func (r SpawnRegion) RandomPosition(src RandomSource) Position {
	return Position{
		X: r.MinX + src.Float64()*(r.MaxX-r.MinX),
		Y: r.MinY + src.Float64()*(r.MaxY-r.MinY),
	}
}

// Contains reports whether p lies in the region
func (r SpawnRegion) Contains(p Position) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}
