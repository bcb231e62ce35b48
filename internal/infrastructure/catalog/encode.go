package catalog

import (
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/pkg/errors"
)

// Property keys of the output collections.
const (
	propCompositeID = "composite_id"
	propMissionType = "mission_type"
	propDate        = "date"
	propAreaM2      = "area_m2"
)

const outputDateLayout = "2006-01-02"

// EncodePairPolygons serialises the final pair polygons as a GeoJSON feature
// collection in geographic coordinates, inverse-projecting each geometry out
// of the working frame.  Row order is preserved, so identical runs produce
// identical bytes.
func EncodePairPolygons(polygons []pairing.PairPolygon, proj *geometry.Projector) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range polygons {
		f := geojson.NewFeature(proj.InverseMultiPolygon(p.Geometry))
		f.Properties[propCompositeID] = p.CompositeID
		f.Properties[propMissionType] = string(p.Role)
		f.Properties[propMissionID] = p.MissionID
		f.Properties[propDate] = formatDate(p.CapturedAt)
		f.Properties[propAreaM2] = p.AreaM2
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to encode pair polygons")
	}
	return data, nil
}

// EncodeSelectedImages serialises the selected images as a GeoJSON feature
// collection.  Image locations were never reprojected, so they are written
// as loaded.
func EncodeSelectedImages(selected []pairing.SelectedImage) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, s := range selected {
		f := geojson.NewFeature(s.Image.Location)
		f.Properties[propCompositeID] = s.CompositeID
		f.Properties[propMissionType] = string(s.Role)
		f.Properties[propMissionID] = s.MissionID
		f.Properties[propImageID] = s.Image.ID
		if s.Image.AltitudeAGL != nil {
			f.Properties[propImageAltitude] = *s.Image.AltitudeAGL
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to encode selected images")
	}
	return data, nil
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(outputDateLayout)
}
