package configgen

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aerialops/missionpair/internal/domain/mission"
	domainpair "github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

const baseConfigYAML = `
project:
  photo_path: []
  project_crs: "EPSG::4326"
add_photos:
  multispectral: false
argo:
  cluster: default
align_photos:
  downscale: 1
`

func testOptions() Options {
	return Options{
		ImageryBucket: "ofo-public",
		ImageryPrefix: "drone/missions_03",
		SubsetsFolder: "/data/subsets",
	}
}

func selectedRow(id, missionID, compositeID string, role domainpair.Role, lon, lat, agl float64) domainpair.SelectedImage {
	return domainpair.SelectedImage{
		CompositeID: compositeID,
		Role:        role,
		MissionID:   missionID,
		Image: &mission.Image{
			ID:          id,
			MissionID:   missionID,
			Location:    orb.Point{lon, lat},
			AltitudeAGL: &agl,
		},
	}
}

func pairedFixture() GenerateInput {
	hn := &mission.Mission{ID: "000123", SubMissionIDs: []string{"000123-01", "000123-02"}}
	lo := &mission.Mission{ID: "000456", SubMissionIDs: []string{"000456-01"}}

	return GenerateInput{
		BaseConfig: []byte(baseConfigYAML),
		Missions:   []*mission.Mission{hn, lo},
		SelectedImages: []domainpair.SelectedImage{
			selectedRow("img-1", "000123", "000123_000456", domainpair.RoleHighNadir, -120.5, 38.9, 130),
			selectedRow("img-2", "000123", "000123_000456", domainpair.RoleHighNadir, -120.5, 38.9, 121),
			selectedRow("img-3", "000456", "000123_000456", domainpair.RoleLowOblique, -120.5, 38.9, 95),
		},
	}
}

func TestGenerateSingleComposite(t *testing.T) {
	svc := NewService(testOptions(), logging.NewNopLogger())

	result, err := svc.Generate(pairedFixture())
	require.NoError(t, err)

	require.Len(t, result.Configs, 1)
	cfg := result.Configs[0]
	assert.Equal(t, "000123_000456", cfg.CompositeID)
	assert.Equal(t, "000123_000456.yml", cfg.FileName)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(cfg.Data, &decoded))

	project := decoded["project"].(map[string]interface{})
	// Northern California sits in UTM zone 10 north.
	assert.Equal(t, "EPSG::32610", project["project_crs"])
	assert.Equal(t, []interface{}{
		"__DOWNLOADED__/000456_images/000456-01",
		"__DOWNLOADED__/000123_images/000123-01",
		"__DOWNLOADED__/000123_images/000123-02",
	}, project["photo_path"])

	addPhotos := decoded["add_photos"].(map[string]interface{})
	assert.Equal(t, true, addPhotos["apply_paired_altitude_offset"])
	// Mean hn altitude 125.5 minus mean lo altitude 95.
	assert.InDelta(t, 30.5, addPhotos["paired_altitude_offset"].(float64), 1e-9)
	assert.Equal(t, []interface{}{"__DOWNLOADED__/000456_images/000456-01"}, addPhotos["lower_offset_folders"])
	// Untouched base keys survive.
	assert.Equal(t, false, addPhotos["multispectral"])

	argo := decoded["argo"].(map[string]interface{})
	assert.Equal(t, []interface{}{
		"ofo-public/drone/missions_03/000456/images/000456_images.zip",
		"ofo-public/drone/missions_03/000123/images/000123_images.zip",
	}, argo["s3_imagery_zip_download"])
	assert.Equal(t, "/data/subsets/000123_000456.txt", argo["images_subset_file"])
	assert.Equal(t, "default", argo["cluster"])

	require.Len(t, result.Subsets, 1)
	assert.Equal(t, "000123_000456.txt", result.Subsets[0].FileName)
	assert.Equal(t, "img-1\nimg-2\nimg-3\n", string(result.Subsets[0].Data))

	list := string(result.ConfigList)
	assert.True(t, strings.HasPrefix(list, "# Standard-priority missions\n"))
	assert.Contains(t, list, "000123_000456.yml\n")
}

func TestGenerateDoesNotMutateBase(t *testing.T) {
	svc := NewService(testOptions(), logging.NewNopLogger())
	input := pairedFixture()

	// Add a second composite so the base map is reused.
	hn2 := &mission.Mission{ID: "000777", SubMissionIDs: []string{"000777-01"}}
	lo2 := &mission.Mission{ID: "000888", SubMissionIDs: []string{"000888-01"}}
	input.Missions = append(input.Missions, hn2, lo2)
	input.SelectedImages = append(input.SelectedImages,
		selectedRow("img-4", "000777", "000777_000888", domainpair.RoleHighNadir, -120.4, 38.8, 140),
		selectedRow("img-5", "000888", "000777_000888", domainpair.RoleLowOblique, -120.4, 38.8, 90),
	)

	result, err := svc.Generate(input)
	require.NoError(t, err)
	require.Len(t, result.Configs, 2)

	// Composites come out in lexical order and carry their own photo paths.
	var first, second map[string]interface{}
	require.NoError(t, yaml.Unmarshal(result.Configs[0].Data, &first))
	require.NoError(t, yaml.Unmarshal(result.Configs[1].Data, &second))
	assert.Equal(t, "000123_000456", result.Configs[0].CompositeID)
	assert.Equal(t, "000777_000888", result.Configs[1].CompositeID)

	firstPaths := first["project"].(map[string]interface{})["photo_path"].([]interface{})
	secondPaths := second["project"].(map[string]interface{})["photo_path"].([]interface{})
	assert.NotEqual(t, firstPaths, secondPaths)
	assert.Contains(t, secondPaths, "__DOWNLOADED__/000888_images/000888-01")
}

func TestGenerateSkipsIncompleteComposites(t *testing.T) {
	svc := NewService(testOptions(), logging.NewNopLogger())
	input := pairedFixture()

	// A composite with only one profile's images is skipped, the rest still
	// generate.
	input.SelectedImages = append(input.SelectedImages,
		selectedRow("img-9", "000999", "000999_000111", domainpair.RoleHighNadir, -120.3, 38.7, 150),
	)

	result, err := svc.Generate(input)
	require.NoError(t, err)
	assert.Len(t, result.Configs, 1)
	assert.Equal(t, 1, result.Skipped)
}

func TestMissionIDsByRoleRequiresBothProfiles(t *testing.T) {
	rows := []domainpair.SelectedImage{
		selectedRow("img-9", "000999", "000999_000111", domainpair.RoleHighNadir, -120.3, 38.7, 150),
	}

	_, _, err := missionIDsByRole("000999_000111", rows)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCompositeIDInvalid))
}

func TestGenerateMissingSubMissionIDs(t *testing.T) {
	svc := NewService(testOptions(), logging.NewNopLogger())
	input := pairedFixture()
	input.Missions[1].SubMissionIDs = nil

	_, err := svc.Generate(input)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDerivedConfigFailed))
}

func TestGenerateBadBaseConfig(t *testing.T) {
	svc := NewService(testOptions(), logging.NewNopLogger())
	input := pairedFixture()
	input.BaseConfig = []byte("{invalid")

	_, err := svc.Generate(input)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeBaseConfigInvalid))
}

func TestGenerateNoSelectedImages(t *testing.T) {
	svc := NewService(testOptions(), logging.NewNopLogger())

	_, err := svc.Generate(GenerateInput{BaseConfig: []byte(baseConfigYAML)})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCatalogEmpty))
}
