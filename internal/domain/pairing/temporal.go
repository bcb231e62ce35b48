package pairing

import (
	"strings"

	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

// FilterPreferWithinYear discards cross-year pairings for missions that also
// have a within-year pairing, unless the cross-year cropped footprint is more
// than the configured margin larger than the best within-year one.
// Cross-year pairs are more likely to differ environmentally (foliage, snow)
// even when spatially valid.
//
// The filter runs strictly after subset resolution, on its output.  A row
// counts as within-year only when its pair's date difference is defined and
// strictly below the threshold; undefined date differences are treated as
// cross-year.
func FilterPreferWithinYear(candidates []Candidate, polygons []PairPolygon, cfg Config, log logging.Logger) ([]Candidate, []PairPolygon) {
	diffByComposite := make(map[string]*float64, len(candidates))
	for _, c := range candidates {
		diffByComposite[c.CompositeID] = c.DateDiffDays
	}

	drop := make(map[string]bool)

	missionOrder, groups := groupByMission(polygons)
	for _, missionID := range missionOrder {
		rows := groups[missionID]
		if len(rows) <= 1 {
			continue
		}

		var within, cross []int
		for _, i := range rows {
			diff := diffByComposite[polygons[i].CompositeID]
			if diff != nil && *diff < cfg.WithinYearDays {
				within = append(within, i)
			} else {
				cross = append(cross, i)
			}
		}
		if len(within) == 0 || len(cross) == 0 {
			continue
		}

		bestWithinArea := 0.0
		for _, i := range within {
			if polygons[i].AreaM2 > bestWithinArea {
				bestWithinArea = polygons[i].AreaM2
			}
		}

		for _, i := range cross {
			if polygons[i].AreaM2 <= bestWithinArea*(1+cfg.WithinYearAreaMargin) {
				drop[polygons[i].CompositeID] = true
			}
		}
	}

	if len(drop) > 0 {
		log.Info("dropping cross-year pairings in favour of within-year ones",
			logging.Int("dropped", len(drop)),
			logging.String("composite_ids", strings.Join(sortedKeys(drop), ",")))
	}
	return dropComposites(candidates, polygons, drop)
}
