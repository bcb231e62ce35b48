package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

// Projector transforms geographic (lon/lat degree) coordinates into the UTM
// zone covering the data, giving the metre-accurate frame required for area
// and buffer-distance computations, and back again for output.
//
// The zone is chosen once from a representative point (normally the centre of
// the mission catalog's bounds) and applied to everything in the run; survey
// catalogs are regional, so a single zone is accurate across the data.
type Projector struct {
	zone     int
	northern bool
	forward  func(lon, lat, h float64) (east, north, h2 float64)
	inverse  func(east, north, h float64) (lon, lat, h2 float64)
}

// NewProjector picks the UTM zone containing (lon, lat) and returns a
// Projector for it.
func NewProjector(lon, lat float64) *Projector {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	northern := lat >= 0

	utm := wgs84.UTM(float64(zone), northern)
	return &Projector{
		zone:     zone,
		northern: northern,
		forward:  wgs84.LonLat().To(utm),
		inverse:  utm.To(wgs84.LonLat()),
	}
}

// Zone returns the UTM zone number (1–60).
func (p *Projector) Zone() int { return p.zone }

// EPSG returns the EPSG code of the working frame: 326xx for the northern
// hemisphere, 327xx for the southern.
func (p *Projector) EPSG() int {
	if p.northern {
		return 32600 + p.zone
	}
	return 32700 + p.zone
}

// Point projects a geographic point into the working frame.
func (p *Projector) Point(pt orb.Point) orb.Point {
	east, north, _ := p.forward(pt[0], pt[1], 0)
	return orb.Point{east, north}
}

// InversePoint projects a working-frame point back to geographic coordinates.
func (p *Projector) InversePoint(pt orb.Point) orb.Point {
	lon, lat, _ := p.inverse(pt[0], pt[1], 0)
	return orb.Point{lon, lat}
}

// MultiPolygon projects a geographic multipolygon into the working frame.
func (p *Projector) MultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	return p.mapMultiPolygon(mp, p.Point)
}

// InverseMultiPolygon projects a working-frame multipolygon back to
// geographic coordinates.
func (p *Projector) InverseMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	return p.mapMultiPolygon(mp, p.InversePoint)
}

func (p *Projector) mapMultiPolygon(mp orb.MultiPolygon, f func(orb.Point) orb.Point) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, poly := range mp {
		op := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			or := make(orb.Ring, 0, len(ring))
			for _, pt := range ring {
				or = append(or, f(pt))
			}
			op = append(op, or)
		}
		out = append(out, op)
	}
	return out
}
