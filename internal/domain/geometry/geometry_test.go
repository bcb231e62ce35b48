package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a closed axis-aligned square as a one-polygon multipolygon.
func square(x, y, size float64) orb.MultiPolygon {
	return orb.MultiPolygon{{
		{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}},
	}}
}

func TestArea_Square(t *testing.T) {
	assert.InDelta(t, 100.0, Area(square(0, 0, 10)), 1e-9)
}

func TestArea_OrientationIndependent(t *testing.T) {
	cw := orb.MultiPolygon{{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
	}}
	assert.InDelta(t, 100.0, Area(cw), 1e-9)
}

func TestArea_WithHole(t *testing.T) {
	withHole := orb.MultiPolygon{{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}},
	}}
	assert.InDelta(t, 96.0, Area(withHole), 1e-9)
}

func TestArea_Empty(t *testing.T) {
	assert.Zero(t, Area(orb.MultiPolygon{}))
	assert.Zero(t, Area(nil))
}

func TestIntersection_OverlappingSquares(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)

	got := Intersection(a, b)
	assert.InDelta(t, 25.0, Area(got), 1e-6)
}

func TestIntersection_Disjoint(t *testing.T) {
	got := Intersection(square(0, 0, 10), square(100, 100, 10))
	assert.Zero(t, Area(got))
}

func TestIntersection_EmptyOperand(t *testing.T) {
	got := Intersection(orb.MultiPolygon{}, square(0, 0, 10))
	assert.Empty(t, got)
}

func TestRepair_Bowtie(t *testing.T) {
	// Self-intersecting "bowtie": two triangles meeting at (5, 5).
	bowtie := orb.MultiPolygon{{
		{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}},
	}}

	fixed := Repair(bowtie)
	require.NotEmpty(t, fixed)
	// Each triangle has area 25.
	assert.InDelta(t, 50.0, Area(fixed), 1e-6)

	// A repaired geometry intersects cleanly with another footprint.
	inter := Intersection(fixed, square(0, 0, 10))
	assert.InDelta(t, 50.0, Area(inter), 1e-6)
}

func TestRepair_Empty(t *testing.T) {
	assert.Empty(t, Repair(orb.MultiPolygon{}))
}

func TestBuffer_GrowsSquare(t *testing.T) {
	const size, dist = 100.0, 10.0
	buffered := Buffer(square(0, 0, size), dist)

	got := Area(buffered)
	// Exact dilated area with round corners: s² + 4·s·d + π·d².
	exact := size*size + 4*size*dist + math.Pi*dist*dist
	// The corner discs are polygonal approximations, so allow a small
	// negative bias but nothing beyond the exact value.
	assert.Greater(t, got, size*size+4*size*dist)
	assert.LessOrEqual(t, got, exact+1e-6)
	assert.InDelta(t, exact, got, exact*0.01)
}

func TestBuffer_NonPositiveDistance(t *testing.T) {
	sq := square(0, 0, 10)
	assert.Equal(t, sq, Buffer(sq, 0))
	assert.Equal(t, sq, Buffer(sq, -5))
}

func TestBuffer_ContainsOriginal(t *testing.T) {
	buffered := Buffer(square(0, 0, 10), 2)
	inter := Intersection(buffered, square(0, 0, 10))
	assert.InDelta(t, 100.0, Area(inter), 1e-6)
}

func TestContains(t *testing.T) {
	sq := square(0, 0, 10)

	assert.True(t, Contains(sq, orb.Point{5, 5}))
	assert.True(t, Contains(sq, orb.Point{0, 5}), "boundary points count as contained")
	assert.False(t, Contains(sq, orb.Point{15, 5}))
	assert.False(t, Contains(orb.MultiPolygon{}, orb.Point{0, 0}))
}
