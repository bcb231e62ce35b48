package pairing

import (
	"sort"
	"time"

	"github.com/paulmach/orb"

	"github.com/aerialops/missionpair/internal/domain/geometry"
)

// Role identifies which side of a pairing a cropped polygon (or selected
// image) belongs to.
type Role string

const (
	RoleHighNadir  Role = "hn"
	RoleLowOblique Role = "lo"
)

// PairPolygon is the cropped footprint one mission contributes to one
// composite.  Exactly two rows exist per candidate pair, one per role.
// Geometry is in the working frame; AreaM2 is its metric area.
type PairPolygon struct {
	CompositeID string
	Role        Role
	MissionID   string
	CapturedAt  *time.Time
	Geometry    orb.MultiPolygon
	AreaM2      float64
}

// BuildPairPolygons derives the two cropped polygons of every candidate:
//
//   - high-nadir polygon = hn footprint ∩ lo footprint
//   - low-oblique polygon = lo footprint ∩ buffer(hn footprint, bufferM)
//
// Candidate footprints were repaired at generation time, so every operand
// here is valid.  Zero-area results are carried forward unmodified; the
// area-ratio filters downstream eliminate them naturally.
func BuildPairPolygons(candidates []Candidate, bufferM float64) []PairPolygon {
	polygons := make([]PairPolygon, 0, 2*len(candidates))
	for _, c := range candidates {
		hnCrop := geometry.Intersection(c.HighNadirFootprint, c.LowObliqueFootprint)
		loCrop := geometry.Intersection(c.LowObliqueFootprint, geometry.Buffer(c.HighNadirFootprint, bufferM))

		polygons = append(polygons,
			PairPolygon{
				CompositeID: c.CompositeID,
				Role:        RoleHighNadir,
				MissionID:   c.HighNadirID,
				CapturedAt:  c.HighNadirDate,
				Geometry:    hnCrop,
				AreaM2:      geometry.Area(hnCrop),
			},
			PairPolygon{
				CompositeID: c.CompositeID,
				Role:        RoleLowOblique,
				MissionID:   c.LowObliqueID,
				CapturedAt:  c.LowObliqueDate,
				Geometry:    loCrop,
				AreaM2:      geometry.Area(loCrop),
			},
		)
	}
	return polygons
}

// dropComposites returns copies of the candidate and polygon collections
// without the given composite IDs.  Both rows of a dropped composite and its
// candidate record go together, regardless of which mission triggered the
// drop.
func dropComposites(candidates []Candidate, polygons []PairPolygon, drop map[string]bool) ([]Candidate, []PairPolygon) {
	if len(drop) == 0 {
		return candidates, polygons
	}
	keptCandidates := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !drop[c.CompositeID] {
			keptCandidates = append(keptCandidates, c)
		}
	}
	keptPolygons := make([]PairPolygon, 0, len(polygons))
	for _, p := range polygons {
		if !drop[p.CompositeID] {
			keptPolygons = append(keptPolygons, p)
		}
	}
	return keptCandidates, keptPolygons
}

// sortedKeys returns the map's keys in lexical order, for reproducible logs.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// groupByMission clusters polygon row indices by mission ID, preserving the
// first-appearance order of missions so that iteration is deterministic.
func groupByMission(polygons []PairPolygon) (order []string, groups map[string][]int) {
	groups = make(map[string][]int)
	for i, p := range polygons {
		if _, seen := groups[p.MissionID]; !seen {
			order = append(order, p.MissionID)
		}
		groups[p.MissionID] = append(groups[p.MissionID], i)
	}
	return order, groups
}

// emptyGeometry reports whether mp has no rings at all.
func emptyGeometry(mp orb.MultiPolygon) bool {
	return len(mp) == 0
}
