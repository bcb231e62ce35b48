package pairing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/mission"
)

// sameAreaOverlapPct is the partner-overlap percentage above which two
// partner footprints are treated as covering the same ground.
const sameAreaOverlapPct = 25.0

// MissionDuplication records one mission that participates in more than one
// candidate pairing, together with how much its partners overlap each other.
type MissionDuplication struct {
	MissionID string
	Profile   mission.Profile

	// PartnerIDs lists the opposite-profile missions this mission pairs
	// with, in candidate order.
	PartnerIDs []string

	// PartnerOverlapPcts holds, for every unordered pair of partners, the
	// intersection area as a percentage of the smaller partner footprint.
	PartnerOverlapPcts []float64

	// SameArea is true when any two partners overlap by more than
	// sameAreaOverlapPct, meaning the mission is genuinely paired against
	// the same ground twice rather than against adjacent strips.
	SameArea bool
}

// DuplicationReport summarises mission reuse across the candidate set.  It is
// informational: duplicated pairings are legitimate when a single wide
// mission spans several partner strips.
type DuplicationReport struct {
	HighNadir  []MissionDuplication
	LowOblique []MissionDuplication
}

// Empty reports whether no mission appears in more than one candidate.
func (r DuplicationReport) Empty() bool {
	return len(r.HighNadir) == 0 && len(r.LowOblique) == 0
}

// Summary renders the report as operator-readable text, one line per
// duplicated mission.
func (r DuplicationReport) Summary() string {
	if r.Empty() {
		return "no duplicated missions"
	}
	var b strings.Builder
	writeSide := func(label string, dups []MissionDuplication) {
		for _, d := range dups {
			flag := "distinct areas"
			if d.SameArea {
				flag = "same area"
			}
			fmt.Fprintf(&b, "%s mission %s paired %d times (%s): partners %s\n",
				label, d.MissionID, len(d.PartnerIDs), flag, strings.Join(d.PartnerIDs, ", "))
		}
	}
	writeSide("high-nadir", r.HighNadir)
	writeSide("low-oblique", r.LowOblique)
	return strings.TrimRight(b.String(), "\n")
}

// BuildDuplicationReport inspects the candidate set for missions paired more
// than once and measures how much their partners' footprints overlap each
// other.  Footprints are taken from the candidates themselves, so the report
// reflects the repaired, projected geometry the rest of the pipeline uses.
func BuildDuplicationReport(candidates []Candidate) DuplicationReport {
	var report DuplicationReport
	report.HighNadir = duplicationsForSide(candidates, mission.ProfileHighNadir)
	report.LowOblique = duplicationsForSide(candidates, mission.ProfileLowOblique)
	return report
}

func duplicationsForSide(candidates []Candidate, profile mission.Profile) []MissionDuplication {
	type partner struct {
		id        string
		footprint orb.MultiPolygon
	}

	partners := make(map[string][]partner)
	var order []string
	for _, c := range candidates {
		var ownID string
		var p partner
		if profile == mission.ProfileHighNadir {
			ownID = c.HighNadirID
			p = partner{id: c.LowObliqueID, footprint: c.LowObliqueFootprint}
		} else {
			ownID = c.LowObliqueID
			p = partner{id: c.HighNadirID, footprint: c.HighNadirFootprint}
		}
		if _, seen := partners[ownID]; !seen {
			order = append(order, ownID)
		}
		partners[ownID] = append(partners[ownID], p)
	}

	var dups []MissionDuplication
	for _, id := range order {
		ps := partners[id]
		if len(ps) < 2 {
			continue
		}
		d := MissionDuplication{MissionID: id, Profile: profile}
		for _, p := range ps {
			d.PartnerIDs = append(d.PartnerIDs, p.id)
		}
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				pct := partnerOverlapPct(ps[i].footprint, ps[j].footprint)
				d.PartnerOverlapPcts = append(d.PartnerOverlapPcts, pct)
				if pct > sameAreaOverlapPct {
					d.SameArea = true
				}
			}
		}
		dups = append(dups, d)
	}

	sort.SliceStable(dups, func(i, j int) bool { return dups[i].MissionID < dups[j].MissionID })
	return dups
}

// partnerOverlapPct returns the intersection of two footprints as a
// percentage of the smaller footprint's area.  Degenerate footprints yield 0.
func partnerOverlapPct(a, b orb.MultiPolygon) float64 {
	areaA := geometry.Area(a)
	areaB := geometry.Area(b)
	smaller := areaA
	if areaB < smaller {
		smaller = areaB
	}
	if smaller <= 0 {
		return 0
	}
	inter := geometry.Area(geometry.Intersection(a, b))
	return inter / smaller * 100
}
