package pairing

import (
	"strings"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

// FilterSubsets removes pairings whose cropped footprint for some mission is
// almost entirely contained in that mission's footprint from a different
// pairing.  Such a pairing contributes no unique spatial coverage; only the
// pairing giving the mission the larger footprint is kept.
//
// All removal decisions are computed against the input snapshot: marks
// accumulate over the full collection before anything is dropped, so the
// outcome is independent of iteration order.
func FilterSubsets(candidates []Candidate, polygons []PairPolygon, cfg Config, log logging.Logger) ([]Candidate, []PairPolygon) {
	drop := make(map[string]bool)

	missionOrder, groups := groupByMission(polygons)
	for _, missionID := range missionOrder {
		rows := groups[missionID]
		if len(rows) <= 1 {
			continue
		}
		for _, i := range rows {
			smaller := polygons[i]
			if smaller.AreaM2 <= 0 {
				continue
			}
			for _, j := range rows {
				if i == j {
					continue
				}
				larger := polygons[j]
				if smaller.AreaM2 >= larger.AreaM2 {
					continue
				}
				if smaller.AreaM2 >= cfg.SubsetSizeRatio*larger.AreaM2 {
					// Too similar in size: two legitimately near-equal
					// pairings, not a subset relationship.
					continue
				}
				if emptyGeometry(larger.Geometry) {
					continue
				}
				covered := geometry.Area(geometry.Intersection(smaller.Geometry, larger.Geometry)) / smaller.AreaM2
				if covered >= cfg.SubsetAreaThreshold {
					drop[smaller.CompositeID] = true
					break // this pairing is already gone; no need to check more
				}
			}
		}
	}

	if len(drop) > 0 {
		log.Info("dropping subset pairings",
			logging.Int("dropped", len(drop)),
			logging.String("composite_ids", strings.Join(sortedKeys(drop), ",")))
	}
	return dropComposites(candidates, polygons, drop)
}
