// Package geometry provides the planar operations the pairing pipeline
// depends on: validity repair, intersection, buffering, area, and point
// containment, plus the WGS84 → UTM projection that establishes the
// metre-accurate working frame.
//
// Footprints are represented as orb.MultiPolygon throughout; a plain polygon
// is a one-element multipolygon.  Boolean operations are delegated to the
// polygol Martinez-Rueda implementation.  All operations are total: invalid
// or degenerate input never panics, it collapses to an empty multipolygon
// whose area is zero, which later filter stages eliminate naturally.
package geometry

import (
	"math"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// bufferSegments is the number of segments used to approximate the quarter
// circle at each vertex when buffering.  32 per full circle keeps the area
// error well below the thresholds the filters operate with.
const bufferSegments = 32

// toGeom converts an orb.MultiPolygon to polygol's nested-slice geometry.
func toGeom(mp orb.MultiPolygon) polygol.Geom {
	g := make(polygol.Geom, 0, len(mp))
	for _, poly := range mp {
		pg := make([][][]float64, 0, len(poly))
		for _, ring := range poly {
			rg := make([][]float64, 0, len(ring))
			for _, pt := range ring {
				rg = append(rg, []float64{pt[0], pt[1]})
			}
			pg = append(pg, rg)
		}
		g = append(g, pg)
	}
	return g
}

// fromGeom converts a polygol geometry back to an orb.MultiPolygon, closing
// any ring whose last point does not repeat the first.
func fromGeom(g polygol.Geom) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(g))
	for _, pg := range g {
		poly := make(orb.Polygon, 0, len(pg))
		for _, rg := range pg {
			ring := make(orb.Ring, 0, len(rg)+1)
			for _, c := range rg {
				if len(c) < 2 {
					continue
				}
				ring = append(ring, orb.Point{c[0], c[1]})
			}
			if len(ring) < 3 {
				continue
			}
			if ring[0] != ring[len(ring)-1] {
				ring = append(ring, ring[0])
			}
			poly = append(poly, ring)
		}
		if len(poly) > 0 {
			mp = append(mp, poly)
		}
	}
	return mp
}

// Repair returns a valid version of mp, resolving self-intersections via a
// self-union.  Repair of an empty or unrecoverable geometry returns an empty
// multipolygon; it never returns an error, per the pipeline's rule that
// geometric operations on bad data flow through as zero area.
func Repair(mp orb.MultiPolygon) orb.MultiPolygon {
	if len(mp) == 0 {
		return orb.MultiPolygon{}
	}
	out, err := polygol.Union(toGeom(mp))
	if err != nil {
		return orb.MultiPolygon{}
	}
	return fromGeom(out)
}

// Intersection returns the planar intersection of a and b.  Inputs are
// expected to be repaired already; callers that hold raw catalog footprints
// must call Repair first.
func Intersection(a, b orb.MultiPolygon) orb.MultiPolygon {
	if len(a) == 0 || len(b) == 0 {
		return orb.MultiPolygon{}
	}
	out, err := polygol.Intersection(toGeom(a), toGeom(b))
	if err != nil {
		return orb.MultiPolygon{}
	}
	return fromGeom(out)
}

// Buffer dilates mp outward by dist (same unit as the coordinates, metres in
// the working frame).  The dilation is a Minkowski sum with a disc, computed
// as the union of the original geometry with a rectangle swept along every
// edge and a disc placed on every vertex.  dist <= 0 returns mp unchanged.
func Buffer(mp orb.MultiPolygon, dist float64) orb.MultiPolygon {
	if dist <= 0 || len(mp) == 0 {
		return mp
	}

	pieces := make([]polygol.Geom, 0, 64)
	for _, poly := range mp {
		for _, ring := range poly {
			for i := 0; i < len(ring); i++ {
				pt := ring[i]
				pieces = append(pieces, discGeom(pt, dist))
				if i+1 < len(ring) {
					if quad, ok := edgeQuadGeom(pt, ring[i+1], dist); ok {
						pieces = append(pieces, quad)
					}
				}
			}
		}
	}

	out, err := polygol.Union(toGeom(mp), pieces...)
	if err != nil {
		return orb.MultiPolygon{}
	}
	return fromGeom(out)
}

// discGeom builds a regular polygon approximating the disc of radius r
// centred on pt.
func discGeom(pt orb.Point, r float64) polygol.Geom {
	ring := make([][]float64, 0, bufferSegments+1)
	for i := 0; i <= bufferSegments; i++ {
		theta := 2 * math.Pi * float64(i) / bufferSegments
		ring = append(ring, []float64{pt[0] + r*math.Cos(theta), pt[1] + r*math.Sin(theta)})
	}
	return polygol.Geom{{ring}}
}

// edgeQuadGeom builds the rectangle of half-width r swept along the edge
// a → b.  Zero-length edges produce no quad.
func edgeQuadGeom(a, b orb.Point, r float64) (polygol.Geom, bool) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil, false
	}
	// Unit normal to the edge.
	nx := -dy / length * r
	ny := dx / length * r
	ring := [][]float64{
		{a[0] + nx, a[1] + ny},
		{b[0] + nx, b[1] + ny},
		{b[0] - nx, b[1] - ny},
		{a[0] - nx, a[1] - ny},
		{a[0] + nx, a[1] + ny},
	}
	return polygol.Geom{{ring}}, true
}

// Area returns the planar area of mp.  The shoelace sum is taken per ring
// with the outer ring counted positive and interior rings subtracted, all by
// absolute value, so the result does not depend on ring orientation.
func Area(mp orb.MultiPolygon) float64 {
	var total float64
	for _, poly := range mp {
		for i, ring := range poly {
			a := math.Abs(ringArea(ring))
			if i == 0 {
				total += a
			} else {
				total -= a
			}
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// ringArea returns the signed shoelace area of a ring.
func ringArea(ring orb.Ring) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	// Close the ring if the input did not.
	if ring[0] != ring[len(ring)-1] {
		last := ring[len(ring)-1]
		sum += last[0]*ring[0][1] - ring[0][0]*last[1]
	}
	return sum / 2
}

// Contains reports whether mp contains pt.  Points on the boundary count as
// contained.
func Contains(mp orb.MultiPolygon, pt orb.Point) bool {
	if len(mp) == 0 {
		return false
	}
	return planar.MultiPolygonContains(mp, pt)
}
