// Package mission defines the catalog entities the pairing pipeline consumes
// (survey missions and their images) and the flight-profile classifier.
package mission

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/aerialops/missionpair/pkg/errors"
)

// Profile labels a mission's flight profile.
type Profile string

const (
	// ProfileHighNadir is the moderate-altitude, near-straight-down profile.
	ProfileHighNadir Profile = "hn"

	// ProfileLowOblique is the lower-altitude, off-nadir profile.
	ProfileLowOblique Profile = "lo"

	// ProfileNone marks a mission that satisfies neither profile or lacks the
	// attributes needed to classify it.
	ProfileNone Profile = ""
)

// Mission is one aerial survey flight.  It is loaded once from the catalog
// and never mutated afterwards, except for the derived Profile label which is
// computed exactly once by Classify.
type Mission struct {
	// ID is the unique mission identifier.
	ID string

	// Footprint is the ground footprint in geographic coordinates.
	Footprint orb.MultiPolygon

	// CapturedAt is the earliest capture date; nil when missing or
	// unparseable in the source catalog.
	CapturedAt *time.Time

	// AltitudeAGL is the mean above-ground altitude in metres; nil when the
	// catalog carries no value.
	AltitudeAGL *float64

	// CameraPitch is the mean camera pitch in degrees from nadir, signed;
	// nil when missing.
	CameraPitch *float64

	// Fidelity is the terrain-follow fidelity score on a 0–100 scale; nil
	// when missing.
	Fidelity *float64

	// SubMissionIDs lists the sub-mission folders the mission's imagery is
	// organised into; used by the downstream config generator.
	SubMissionIDs []string

	// Profile is the derived flight-profile label, set by Classify.
	Profile Profile
}

// NewMission validates the required fields and constructs a Mission.
func NewMission(id string, footprint orb.MultiPolygon) (*Mission, error) {
	if id == "" {
		return nil, errors.Validation("mission ID cannot be empty")
	}
	if len(footprint) == 0 {
		return nil, errors.New(errors.CodeCatalogFieldBad, "mission footprint cannot be empty").
			WithDetail("mission_id=" + id)
	}
	return &Mission{ID: id, Footprint: footprint}, nil
}

// Image is a single capture location belonging to a mission.  Loaded once,
// never mutated, and consumed only by image selection.
type Image struct {
	// ID is the unique image identifier.
	ID string

	// MissionID is the owning mission.
	MissionID string

	// Location is the capture point in geographic coordinates.  Elevation is
	// irrelevant to selection and not carried.
	Location orb.Point

	// AltitudeAGL is the image's above-ground altitude in metres; nil when
	// missing.  Used by the config generator to derive altitude offsets.
	AltitudeAGL *float64
}

// NewImage validates the required fields and constructs an Image.
func NewImage(id, missionID string, location orb.Point) (*Image, error) {
	if id == "" {
		return nil, errors.Validation("image ID cannot be empty")
	}
	if missionID == "" {
		return nil, errors.New(errors.CodeCatalogFieldBad, "image has no owning mission").
			WithDetail("image_id=" + id)
	}
	return &Image{ID: id, MissionID: missionID, Location: location}, nil
}
