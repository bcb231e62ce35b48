// Package pairing implements the cross-profile mission pairing pipeline:
// candidate generation, pair-polygon cropping, subset resolution, temporal
// preference, image selection, and the duplication report.
//
// Stages communicate through full collections; no stage mutates its input.
// All geometry handled here is in the projected metric working frame.
package pairing

import (
	"github.com/aerialops/missionpair/pkg/errors"
)

// Config holds every numeric threshold the pipeline stages use.  It is
// passed explicitly into each stage so that tests can override thresholds per
// scenario without global state.
type Config struct {
	// MinOverlapHa is the minimum footprint intersection, in hectares, for a
	// cross-profile pair to become a candidate.
	MinOverlapHa float64

	// MaxDateDiffDays is the maximum capture-date difference, in days,
	// between the two missions of a candidate.  A pair with either date
	// missing passes the filter.
	MaxDateDiffDays float64

	// LowObliqueBufferM is the buffer distance in metres applied to the
	// high-nadir footprint when cropping the low-oblique polygon.
	LowObliqueBufferM float64

	// SubsetAreaThreshold is the fraction of a smaller cropped footprint
	// that must be covered by a larger one (same mission, different pairing)
	// for the smaller pairing to be considered a strict subset and dropped.
	SubsetAreaThreshold float64

	// SubsetSizeRatio guards the subset filter: the smaller footprint is
	// only eligible for removal when its area is below this fraction of the
	// larger one, so near-equal pairings are never treated as subsets.
	SubsetSizeRatio float64

	// WithinYearDays is the date-difference bound, in days, below which a
	// pairing counts as "within-year" for the temporal preference filter.
	WithinYearDays float64

	// WithinYearAreaMargin is the fractional area margin by which a
	// cross-year pairing must exceed the best within-year pairing to
	// survive the temporal preference filter.
	WithinYearAreaMargin float64
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		MinOverlapHa:         2.0,
		MaxDateDiffDays:      547.5, // one and a half years
		LowObliqueBufferM:    100,
		SubsetAreaThreshold:  0.99,
		SubsetSizeRatio:      0.75,
		WithinYearDays:       150,
		WithinYearAreaMargin: 0.10,
	}
}

// Validate rejects configurations the filters cannot operate with.
func (c Config) Validate() error {
	if c.MinOverlapHa < 0 {
		return errors.New(errors.CodePairingConfigInvalid, "min overlap must not be negative")
	}
	if c.MaxDateDiffDays < 0 {
		return errors.New(errors.CodePairingConfigInvalid, "max date difference must not be negative")
	}
	if c.SubsetAreaThreshold <= 0 || c.SubsetAreaThreshold > 1 {
		return errors.New(errors.CodePairingConfigInvalid, "subset area threshold must be within (0, 1]")
	}
	if c.SubsetSizeRatio <= 0 || c.SubsetSizeRatio > 1 {
		return errors.New(errors.CodePairingConfigInvalid, "subset size ratio must be within (0, 1]")
	}
	if c.WithinYearDays < 0 {
		return errors.New(errors.CodePairingConfigInvalid, "within-year days must not be negative")
	}
	if c.WithinYearAreaMargin < 0 {
		return errors.New(errors.CodePairingConfigInvalid, "within-year area margin must not be negative")
	}
	return nil
}
