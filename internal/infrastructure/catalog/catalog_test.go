package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/mission"
	"github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/internal/testutil"
	"github.com/aerialops/missionpair/pkg/errors"
)

const missionCatalogJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[0.01,0],[0.01,0.01],[0,0.01],[0,0]]]},
      "properties": {
        "mission_id": "000123",
        "earliest_date_derived": "2023-06-15",
        "agl_mean": 120.5,
        "camera_pitch_derived": -3.2,
        "agl_fidelity": 88,
        "sub_mission_ids": "000123-01, 000123-02"
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[1,1],[1.01,1],[1.01,1.01],[1,1.01],[1,1]]]]},
      "properties": {
        "mission_id": "000456",
        "earliest_date_derived": "not-a-date",
        "agl_mean": null,
        "camera_pitch_derived": 25.0
      }
    },
    {
      "type": "Feature",
      "geometry": null,
      "properties": {"mission_id": "000789"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[2,2],[2.01,2],[2.01,2.01],[2,2.01],[2,2]]]},
      "properties": {}
    }
  ]
}`

func TestDecodeMissions(t *testing.T) {
	log := testutil.NewMockLogger()
	missions, report, err := DecodeMissions([]byte(missionCatalogJSON), log)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Features)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 2, report.Skipped)
	// Two skip warnings plus the unparseable-date warning.
	assert.Equal(t, 3, log.CountLevel("warn"))
	require.Len(t, missions, 2)

	m := missions[0]
	assert.Equal(t, "000123", m.ID)
	require.NotNil(t, m.CapturedAt)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), *m.CapturedAt)
	require.NotNil(t, m.AltitudeAGL)
	assert.Equal(t, 120.5, *m.AltitudeAGL)
	require.NotNil(t, m.CameraPitch)
	assert.Equal(t, -3.2, *m.CameraPitch)
	require.NotNil(t, m.Fidelity)
	assert.Equal(t, 88.0, *m.Fidelity)
	assert.Equal(t, []string{"000123-01", "000123-02"}, m.SubMissionIDs)
	assert.Len(t, m.Footprint, 1)

	// Unparseable date and null altitude come through as missing.
	m = missions[1]
	assert.Equal(t, "000456", m.ID)
	assert.Nil(t, m.CapturedAt)
	assert.Nil(t, m.AltitudeAGL)
	assert.Nil(t, m.Fidelity)
	assert.Empty(t, m.SubMissionIDs)
}

func TestDecodeMissionsBadJSON(t *testing.T) {
	_, _, err := DecodeMissions([]byte("{not json"), logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCatalogParseFailed))
}

const imageCatalogJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [0.005, 0.005]},
      "properties": {"image_id": "img-1", "mission_id": "000123", "altitude_agl": 118.2}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [0.006, 0.004]},
      "properties": {"image_id": "img-2", "mission_id": "000123"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]},
      "properties": {"image_id": "img-3", "mission_id": "000123"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [0.007, 0.003]},
      "properties": {"image_id": "img-4"}
    }
  ]
}`

func TestDecodeImages(t *testing.T) {
	images, report, err := DecodeImages([]byte(imageCatalogJSON), logging.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Features)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, images, 2)

	assert.Equal(t, "img-1", images[0].ID)
	assert.Equal(t, "000123", images[0].MissionID)
	require.NotNil(t, images[0].AltitudeAGL)
	assert.Equal(t, 118.2, *images[0].AltitudeAGL)
	assert.Equal(t, orb.Point{0.005, 0.005}, images[0].Location)

	assert.Equal(t, "img-2", images[1].ID)
	assert.Nil(t, images[1].AltitudeAGL)
}

func TestEncodePairPolygons(t *testing.T) {
	proj := geometry.NewProjector(3, 0.5)
	captured := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	polygons := []pairing.PairPolygon{
		{
			CompositeID: "000123_000456",
			Role:        pairing.RoleHighNadir,
			MissionID:   "000123",
			CapturedAt:  &captured,
			Geometry: orb.MultiPolygon{{{
				{500000, 0}, {500100, 0}, {500100, 100}, {500000, 100}, {500000, 0},
			}}},
			AreaM2: 10000,
		},
	}

	data, err := EncodePairPolygons(polygons, proj)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, "000123_000456", f.Properties["composite_id"])
	assert.Equal(t, "hn", f.Properties["mission_type"])
	assert.Equal(t, "000123", f.Properties["mission_id"])
	assert.Equal(t, "2023-06-15", f.Properties["date"])
	assert.InDelta(t, 10000, f.Properties["area_m2"].(float64), 0.01)

	// Geometry came back out in geographic coordinates near the projector
	// anchor, not in metres.
	mp, ok := f.Geometry.(orb.MultiPolygon)
	require.True(t, ok)
	assert.InDelta(t, 3.0, mp[0][0][0][0], 0.1)
	assert.InDelta(t, 0.0, mp[0][0][0][1], 0.1)
}

func TestEncodePairPolygonsMissingDate(t *testing.T) {
	proj := geometry.NewProjector(3, 0.5)
	polygons := []pairing.PairPolygon{{
		CompositeID: "a_b",
		Role:        pairing.RoleLowOblique,
		MissionID:   "b",
		Geometry:    orb.MultiPolygon{{{{500000, 0}, {500100, 0}, {500100, 100}, {500000, 0}}}},
	}}

	data, err := EncodePairPolygons(polygons, proj)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	features := raw["features"].([]interface{})
	props := features[0].(map[string]interface{})["properties"].(map[string]interface{})
	v, present := props["date"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestEncodeSelectedImages(t *testing.T) {
	alt := 118.2
	img := &mission.Image{ID: "img-1", MissionID: "000123", Location: orb.Point{0.005, 0.005}, AltitudeAGL: &alt}
	selected := []pairing.SelectedImage{{
		CompositeID: "000123_000456",
		Role:        pairing.RoleHighNadir,
		MissionID:   "000123",
		Image:       img,
	}}

	data, err := EncodeSelectedImages(selected)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, "000123_000456", f.Properties["composite_id"])
	assert.Equal(t, "hn", f.Properties["mission_type"])
	assert.Equal(t, "img-1", f.Properties["image_id"])
	assert.InDelta(t, 118.2, f.Properties["altitude_agl"].(float64), 0.001)
	assert.Equal(t, orb.Point{0.005, 0.005}, f.Geometry)
}

func TestDecodeSelectedImagesRoundTrip(t *testing.T) {
	alt := 118.2
	selected := []pairing.SelectedImage{
		{
			CompositeID: "000123_000456",
			Role:        pairing.RoleHighNadir,
			MissionID:   "000123",
			Image:       &mission.Image{ID: "img-1", MissionID: "000123", Location: orb.Point{0.005, 0.005}, AltitudeAGL: &alt},
		},
		{
			CompositeID: "000123_000456",
			Role:        pairing.RoleLowOblique,
			MissionID:   "000456",
			Image:       &mission.Image{ID: "img-2", MissionID: "000456", Location: orb.Point{0.006, 0.004}},
		},
	}

	data, err := EncodeSelectedImages(selected)
	require.NoError(t, err)

	decoded, report, err := DecodeSelectedImages(data, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Zero(t, report.Skipped)
	require.Len(t, decoded, 2)

	assert.Equal(t, selected[0].CompositeID, decoded[0].CompositeID)
	assert.Equal(t, selected[0].Role, decoded[0].Role)
	assert.Equal(t, selected[0].MissionID, decoded[0].MissionID)
	assert.Equal(t, selected[0].Image.ID, decoded[0].Image.ID)
	assert.Equal(t, selected[0].Image.Location, decoded[0].Image.Location)
	require.NotNil(t, decoded[0].Image.AltitudeAGL)
	assert.Equal(t, alt, *decoded[0].Image.AltitudeAGL)
	assert.Nil(t, decoded[1].Image.AltitudeAGL)
}

func TestDecodeSelectedImagesSkipsUnknownRole(t *testing.T) {
	const data = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [0.005, 0.005]},
      "properties": {"composite_id": "a_b", "mission_type": "sideways", "mission_id": "a", "image_id": "img-1"}
    }
  ]
}`
	log := testutil.NewMockLogger()
	decoded, report, err := DecodeSelectedImages([]byte(data), log)
	require.NoError(t, err)
	assert.Empty(t, decoded)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, log.HasMessage("warn", "skipping selected-image feature"))
}
