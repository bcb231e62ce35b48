// Package catalog reads and writes the GeoJSON collections at the pipeline
// boundary: the compiled mission and image catalogs on the way in, the pair
// polygons and selected images on the way out.
package catalog

import (
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/aerialops/missionpair/internal/domain/mission"
	"github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

// Property keys of the compiled catalogs.
const (
	propMissionID     = "mission_id"
	propEarliestDate  = "earliest_date_derived"
	propAltitudeAGL   = "agl_mean"
	propCameraPitch   = "camera_pitch_derived"
	propFidelity      = "agl_fidelity"
	propSubMissionIDs = "sub_mission_ids"

	propImageID       = "image_id"
	propImageAltitude = "altitude_agl"
)

// dateLayouts are tried in order when parsing catalog dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// LoadReport summarises one catalog decode for operator audit.
type LoadReport struct {
	Features int
	Loaded   int
	Skipped  int
}

// DecodeMissions parses a compiled mission catalog.  Features with missing
// geometry or identifier are skipped with a warning and counted in the
// report; a catalog that cannot be parsed at all is an error.
func DecodeMissions(data []byte, log logging.Logger) ([]*mission.Mission, LoadReport, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, LoadReport{}, errors.Wrap(err, errors.CodeCatalogParseFailed, "mission catalog is not valid GeoJSON")
	}

	report := LoadReport{Features: len(fc.Features)}
	missions := make([]*mission.Mission, 0, len(fc.Features))
	for i, f := range fc.Features {
		id := propString(f, propMissionID)
		footprint := toMultiPolygon(f.Geometry)
		m, err := mission.NewMission(id, footprint)
		if err != nil {
			report.Skipped++
			log.Warn("skipping mission feature",
				logging.Int("feature_index", i),
				logging.String("mission_id", id),
				logging.Err(err))
			continue
		}

		m.CapturedAt = propTime(f, propEarliestDate, log)
		m.AltitudeAGL = propFloat(f, propAltitudeAGL)
		m.CameraPitch = propFloat(f, propCameraPitch)
		m.Fidelity = propFloat(f, propFidelity)
		m.SubMissionIDs = splitSubMissionIDs(propString(f, propSubMissionIDs))

		missions = append(missions, m)
		report.Loaded++
	}
	return missions, report, nil
}

// DecodeImages parses a compiled image catalog.  Only point features with an
// image and mission identifier are kept.
func DecodeImages(data []byte, log logging.Logger) ([]*mission.Image, LoadReport, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, LoadReport{}, errors.Wrap(err, errors.CodeCatalogParseFailed, "image catalog is not valid GeoJSON")
	}

	report := LoadReport{Features: len(fc.Features)}
	images := make([]*mission.Image, 0, len(fc.Features))
	for i, f := range fc.Features {
		id := propString(f, propImageID)
		missionID := propString(f, propMissionID)

		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			report.Skipped++
			log.Warn("skipping image feature without point geometry",
				logging.Int("feature_index", i),
				logging.String("image_id", id))
			continue
		}

		img, err := mission.NewImage(id, missionID, pt)
		if err != nil {
			report.Skipped++
			log.Warn("skipping image feature",
				logging.Int("feature_index", i),
				logging.String("image_id", id),
				logging.Err(err))
			continue
		}
		img.AltitudeAGL = propFloat(f, propImageAltitude)

		images = append(images, img)
		report.Loaded++
	}
	return images, report, nil
}

// DecodeSelectedImages parses a selected-image collection previously written
// by EncodeSelectedImages, as the config generator consumes it in a separate
// invocation from the run that produced it.
func DecodeSelectedImages(data []byte, log logging.Logger) ([]pairing.SelectedImage, LoadReport, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, LoadReport{}, errors.Wrap(err, errors.CodeCatalogParseFailed, "selected-image collection is not valid GeoJSON")
	}

	report := LoadReport{Features: len(fc.Features)}
	selected := make([]pairing.SelectedImage, 0, len(fc.Features))
	for i, f := range fc.Features {
		compositeID := propString(f, propCompositeID)
		role := pairing.Role(propString(f, propMissionType))
		missionID := propString(f, propMissionID)
		imageID := propString(f, propImageID)

		pt, ptOK := f.Geometry.(orb.Point)
		if compositeID == "" || !ptOK || (role != pairing.RoleHighNadir && role != pairing.RoleLowOblique) {
			report.Skipped++
			log.Warn("skipping selected-image feature",
				logging.Int("feature_index", i),
				logging.String("composite_id", compositeID),
				logging.String("image_id", imageID))
			continue
		}

		img, err := mission.NewImage(imageID, missionID, pt)
		if err != nil {
			report.Skipped++
			log.Warn("skipping selected-image feature",
				logging.Int("feature_index", i),
				logging.String("image_id", imageID),
				logging.Err(err))
			continue
		}
		img.AltitudeAGL = propFloat(f, propImageAltitude)

		selected = append(selected, pairing.SelectedImage{
			CompositeID: compositeID,
			Role:        role,
			MissionID:   missionID,
			Image:       img,
		})
		report.Loaded++
	}
	return selected, report, nil
}

// toMultiPolygon normalises a feature geometry to a multipolygon.  Anything
// that is not areal comes back empty, which the mission constructor rejects.
func toMultiPolygon(g orb.Geometry) orb.MultiPolygon {
	switch v := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{v}
	case orb.MultiPolygon:
		return v
	default:
		return nil
	}
}

func propString(f *geojson.Feature, key string) string {
	if v, ok := f.Properties[key].(string); ok {
		return v
	}
	return ""
}

func propFloat(f *geojson.Feature, key string) *float64 {
	switch v := f.Properties[key].(type) {
	case float64:
		return &v
	case int:
		fl := float64(v)
		return &fl
	default:
		return nil
	}
}

// propTime parses a date property, treating unparseable values like missing
// ones so that a single bad date never fails the run.
func propTime(f *geojson.Feature, key string, log logging.Logger) *time.Time {
	raw := propString(f, key)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	log.Warn("unparseable catalog date treated as missing",
		logging.String("property", key),
		logging.String("value", raw))
	return nil
}

// splitSubMissionIDs splits the comma-separated sub-mission list the catalog
// carries, e.g. "000002-01, 000002-02".
func splitSubMissionIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
