package mission

import (
	"math"

	"github.com/aerialops/missionpair/pkg/errors"
)

// ProfileRange bounds one flight profile: mean altitude AGL in metres and
// absolute camera pitch in degrees from nadir, both inclusive.
type ProfileRange struct {
	AltitudeMin float64
	AltitudeMax float64
	PitchMin    float64
	PitchMax    float64
}

// contains reports whether the altitude/pitch pair falls inside the range.
func (r ProfileRange) contains(altitude, absPitch float64) bool {
	return altitude >= r.AltitudeMin && altitude <= r.AltitudeMax &&
		absPitch >= r.PitchMin && absPitch <= r.PitchMax
}

// overlaps reports whether two ranges admit a common altitude/pitch pair.
func (r ProfileRange) overlaps(o ProfileRange) bool {
	return r.AltitudeMin <= o.AltitudeMax && o.AltitudeMin <= r.AltitudeMax &&
		r.PitchMin <= o.PitchMax && o.PitchMin <= r.PitchMax
}

// ClassifierConfig holds the classification thresholds.  It is immutable once
// constructed; tests override individual fields per scenario rather than
// mutating shared state.
type ClassifierConfig struct {
	// HighNadir bounds the high-nadir profile.
	HighNadir ProfileRange

	// LowOblique bounds the low-oblique profile.
	LowOblique ProfileRange

	// MinFidelity is the minimum terrain-follow fidelity for either profile.
	// A mission with a present fidelity score below this is unusable; a
	// missing score passes the gate.
	MinFidelity float64
}

// DefaultClassifierConfig returns the reference thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		HighNadir:   ProfileRange{AltitudeMin: 100, AltitudeMax: 160, PitchMin: 0, PitchMax: 10},
		LowOblique:  ProfileRange{AltitudeMin: 60, AltitudeMax: 120, PitchMin: 18, PitchMax: 38},
		MinFidelity: 50,
	}
}

// Validate checks the configured ranges for internal consistency and mutual
// disjointness.  The classifier itself resolves an overlap by first-match
// precedence, but an overlapping configuration is almost certainly a mistake
// and is rejected up front.
func (c ClassifierConfig) Validate() error {
	for _, r := range []ProfileRange{c.HighNadir, c.LowOblique} {
		if r.AltitudeMin > r.AltitudeMax || r.PitchMin > r.PitchMax {
			return errors.New(errors.CodeClassifierConfigInvalid, "profile range bounds are inverted")
		}
	}
	if c.HighNadir.overlaps(c.LowOblique) {
		return errors.New(errors.CodeProfileRangesOverlap,
			"high-nadir and low-oblique ranges admit the same mission")
	}
	if c.MinFidelity < 0 || c.MinFidelity > 100 {
		return errors.New(errors.CodeClassifierConfigInvalid, "min fidelity must be within [0, 100]")
	}
	return nil
}

// Classify returns the flight-profile label for m.  It is a pure function of
// the record and the thresholds:
//
//   - missing altitude or pitch → ProfileNone
//   - present fidelity below the minimum → ProfileNone
//   - pitch sign is ignored
//   - high-nadir is evaluated before low-oblique; first match wins
func Classify(m *Mission, cfg ClassifierConfig) Profile {
	if m == nil || m.AltitudeAGL == nil || m.CameraPitch == nil {
		return ProfileNone
	}
	if m.Fidelity != nil && *m.Fidelity < cfg.MinFidelity {
		return ProfileNone
	}

	altitude := *m.AltitudeAGL
	absPitch := math.Abs(*m.CameraPitch)

	if cfg.HighNadir.contains(altitude, absPitch) {
		return ProfileHighNadir
	}
	if cfg.LowOblique.contains(altitude, absPitch) {
		return ProfileLowOblique
	}
	return ProfileNone
}

// ClassifyAll labels every mission in place and partitions the catalog by
// profile.  The returned slices preserve catalog order, which later stages
// rely on for deterministic output.
func ClassifyAll(missions []*Mission, cfg ClassifierConfig) (highNadir, lowOblique []*Mission) {
	for _, m := range missions {
		m.Profile = Classify(m, cfg)
		switch m.Profile {
		case ProfileHighNadir:
			highNadir = append(highNadir, m)
		case ProfileLowOblique:
			lowOblique = append(lowOblique, m)
		}
	}
	return highNadir, lowOblique
}
