package pairing

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/mission"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

// CompositeIDSeparator joins the two mission IDs of a pair.  The downstream
// config generator splits composite IDs on this separator, so it must never
// occur inside a mission ID.
const CompositeIDSeparator = "_"

// CompositeID builds the identifier of a high-nadir / low-oblique pairing.
func CompositeID(highNadirID, lowObliqueID string) string {
	return highNadirID + CompositeIDSeparator + lowObliqueID
}

// Candidate is one geometrically and temporally compatible cross-profile
// pair.  The footprints it carries are the missions' full footprints,
// repaired and projected into the working frame; cropping happens in the
// pair-polygon stage.
type Candidate struct {
	CompositeID string

	HighNadirID  string
	LowObliqueID string

	// OverlapAreaHa is the footprint intersection area in hectares.
	OverlapAreaHa float64

	// DateDiffDays is the absolute capture-date difference in whole days;
	// nil when either mission has no capture date.
	DateDiffDays *float64

	HighNadirDate  *time.Time
	LowObliqueDate *time.Time

	// Repaired, projected original footprints.
	HighNadirFootprint  orb.MultiPolygon
	LowObliqueFootprint orb.MultiPolygon
}

// dateDiffDays returns the absolute difference between two capture dates in
// whole days, or nil when either is missing.
func dateDiffDays(a, b *time.Time) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := a.Sub(*b)
	if d < 0 {
		d = -d
	}
	days := math.Floor(d.Hours() / 24)
	return &days
}

// GenerateCandidates computes the full bipartite intersection between the
// high-nadir and low-oblique catalogs and keeps the pairs that clear the
// overlap and date thresholds.  Either side being empty yields an empty
// candidate list, not an error; the caller reports that terminal state.
//
// The result is sorted by overlap area descending, then date difference
// ascending (missing date differences last), which is the canonical
// tie-break order later stages rely on.  Beyond that the input catalog order
// is preserved, keeping repeated runs byte-for-byte identical.
func GenerateCandidates(highNadir, lowOblique []*mission.Mission, proj *geometry.Projector, cfg Config, log logging.Logger) []Candidate {
	if len(highNadir) == 0 || len(lowOblique) == 0 {
		return nil
	}

	// Project and repair each footprint once.
	hnFootprints := make([]orb.MultiPolygon, len(highNadir))
	for i, m := range highNadir {
		hnFootprints[i] = geometry.Repair(proj.MultiPolygon(m.Footprint))
	}
	loFootprints := make([]orb.MultiPolygon, len(lowOblique))
	for i, m := range lowOblique {
		loFootprints[i] = geometry.Repair(proj.MultiPolygon(m.Footprint))
	}

	var candidates []Candidate
	belowOverlap := 0
	beyondDates := 0

	for i, hn := range highNadir {
		for j, lo := range lowOblique {
			overlap := geometry.Intersection(hnFootprints[i], loFootprints[j])
			if len(overlap) == 0 {
				continue
			}
			overlapHa := geometry.Area(overlap) / 1e4
			if overlapHa < cfg.MinOverlapHa {
				belowOverlap++
				continue
			}

			diff := dateDiffDays(hn.CapturedAt, lo.CapturedAt)
			if diff != nil && *diff > cfg.MaxDateDiffDays {
				beyondDates++
				continue
			}

			candidates = append(candidates, Candidate{
				CompositeID:         CompositeID(hn.ID, lo.ID),
				HighNadirID:         hn.ID,
				LowObliqueID:        lo.ID,
				OverlapAreaHa:       overlapHa,
				DateDiffDays:        diff,
				HighNadirDate:       hn.CapturedAt,
				LowObliqueDate:      lo.CapturedAt,
				HighNadirFootprint:  hnFootprints[i],
				LowObliqueFootprint: loFootprints[j],
			})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.OverlapAreaHa != cb.OverlapAreaHa {
			return ca.OverlapAreaHa > cb.OverlapAreaHa
		}
		return lessDateDiff(ca.DateDiffDays, cb.DateDiffDays)
	})

	log.Info("generated candidate pairs",
		logging.Int("candidates", len(candidates)),
		logging.Int("below_min_overlap", belowOverlap),
		logging.Int("beyond_date_window", beyondDates))

	return candidates
}

// lessDateDiff orders defined date differences ascending and places missing
// values last.
func lessDateDiff(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}
