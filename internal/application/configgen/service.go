// Package configgen derives per-pair photogrammetry configs from a base
// config and the selected-image output of a pairing run.  Each surviving
// composite gets a YAML config, an image-subset file, and an entry in the
// config list consumed by the processing workflow.
package configgen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/mission"
	domainpair "github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

// downloadedImagesRoot is the folder the workflow unpacks imagery zips into.
const downloadedImagesRoot = "__DOWNLOADED__"

// Options holds the generator's environment.
type Options struct {
	// ImageryBucket and ImageryPrefix locate the per-mission imagery zip
	// archives: <bucket>/<prefix>/<mission_id>/images/<mission_id>_images.zip.
	ImageryBucket string
	ImageryPrefix string

	// SubsetsFolder is where the subset files will be mounted at execution
	// time; it is written into each derived config as-is.
	SubsetsFolder string
}

// GenerateInput carries a pairing run's outputs plus the base config.
type GenerateInput struct {
	BaseConfig     []byte
	Missions       []*mission.Mission
	SelectedImages []domainpair.SelectedImage
}

// DerivedConfig is one composite's generated photogrammetry config.
type DerivedConfig struct {
	CompositeID string
	FileName    string
	Data        []byte
}

// SubsetFile lists one composite's selected image IDs, one per line.
type SubsetFile struct {
	CompositeID string
	FileName    string
	Data        []byte
}

// Result is the full output of one generation pass.  The caller writes the
// files; generation itself is pure.
type Result struct {
	Configs    []DerivedConfig
	Subsets    []SubsetFile
	ConfigList []byte
	Skipped    int
}

// Service derives per-pair photogrammetry configs.
type Service interface {
	Generate(input GenerateInput) (*Result, error)
}

type serviceImpl struct {
	opts   Options
	logger logging.Logger
}

// NewService builds a config generator.
func NewService(opts Options, log logging.Logger) Service {
	return &serviceImpl{opts: opts, logger: log.Named("configgen")}
}

func (s *serviceImpl) Generate(input GenerateInput) (*Result, error) {
	var base map[string]interface{}
	if err := yaml.Unmarshal(input.BaseConfig, &base); err != nil {
		return nil, errors.Wrap(err, errors.CodeBaseConfigInvalid, "base config is not valid YAML")
	}
	if base == nil {
		return nil, errors.New(errors.CodeBaseConfigInvalid, "base config is empty")
	}
	if len(input.SelectedImages) == 0 {
		return nil, errors.New(errors.CodeCatalogEmpty, "no selected images to generate configs from")
	}

	subMissionsByID := make(map[string][]string, len(input.Missions))
	for _, m := range input.Missions {
		subMissionsByID[m.ID] = m.SubMissionIDs
	}

	byComposite := groupByComposite(input.SelectedImages)
	composites := make([]string, 0, len(byComposite))
	for id := range byComposite {
		composites = append(composites, id)
	}
	sort.Strings(composites)

	result := &Result{}
	var listNames []string
	for _, compositeID := range composites {
		rows := byComposite[compositeID]

		cfg, subset, err := s.deriveOne(base, compositeID, rows, subMissionsByID)
		if err != nil {
			result.Skipped++
			s.logger.Warn("skipping composite",
				logging.String("composite_id", compositeID),
				logging.Err(err))
			continue
		}

		result.Configs = append(result.Configs, *cfg)
		result.Subsets = append(result.Subsets, *subset)
		listNames = append(listNames, cfg.FileName)
	}

	if len(result.Configs) == 0 {
		return nil, errors.New(errors.CodeDerivedConfigFailed, "no composite produced a usable config")
	}

	result.ConfigList = buildConfigList(listNames)

	s.logger.Info("derived configs generated",
		logging.Int("configs", len(result.Configs)),
		logging.Int("skipped", result.Skipped))
	return result, nil
}

// deriveOne builds one composite's config and subset file.
func (s *serviceImpl) deriveOne(base map[string]interface{}, compositeID string, rows []domainpair.SelectedImage, subMissionsByID map[string][]string) (*DerivedConfig, *SubsetFile, error) {
	hnID, loID, err := missionIDsByRole(compositeID, rows)
	if err != nil {
		return nil, nil, err
	}

	offset, err := altitudeOffset(rows)
	if err != nil {
		return nil, nil, err
	}

	hnPaths := photoPaths(hnID, subMissionsByID[hnID])
	loPaths := photoPaths(loID, subMissionsByID[loID])
	if len(hnPaths) == 0 || len(loPaths) == 0 {
		return nil, nil, errors.New(errors.CodeSubMissionIDsMissing, "a paired mission has no sub-mission IDs")
	}

	projectCRS := utmEPSGString(imageCentroid(rows))

	cfg := deepCopyMap(base)
	project := subMap(cfg, "project")
	project["photo_path"] = append(append([]string{}, loPaths...), hnPaths...)
	project["project_crs"] = projectCRS

	addPhotos := subMap(cfg, "add_photos")
	addPhotos["apply_paired_altitude_offset"] = true
	addPhotos["paired_altitude_offset"] = offset
	addPhotos["lower_offset_folders"] = loPaths
	addPhotos["upper_offset_folders"] = hnPaths

	argo := subMap(cfg, "argo")
	argo["s3_imagery_zip_download"] = []string{
		s.imageryZipPath(loID),
		s.imageryZipPath(hnID),
	}
	argo["images_subset_file"] = s.subsetPath(compositeID + ".txt")

	data, err := marshalYAML(cfg)
	if err != nil {
		return nil, nil, err
	}

	var subset bytes.Buffer
	for _, r := range rows {
		subset.WriteString(r.Image.ID)
		subset.WriteByte('\n')
	}

	return &DerivedConfig{
			CompositeID: compositeID,
			FileName:    compositeID + ".yml",
			Data:        data,
		}, &SubsetFile{
			CompositeID: compositeID,
			FileName:    compositeID + ".txt",
			Data:        subset.Bytes(),
		}, nil
}

// missionIDsByRole extracts the two mission IDs of a composite from its
// selected rows, requiring both roles to be present.
func missionIDsByRole(compositeID string, rows []domainpair.SelectedImage) (hnID, loID string, err error) {
	for _, r := range rows {
		switch r.Role {
		case domainpair.RoleHighNadir:
			hnID = r.MissionID
		case domainpair.RoleLowOblique:
			loID = r.MissionID
		}
	}
	if hnID == "" || loID == "" {
		return "", "", errors.Newf(errors.CodeCompositeIDInvalid,
			"composite %q has images for only one profile", compositeID)
	}
	return hnID, loID, nil
}

// altitudeOffset is the mean high-nadir image altitude minus the mean
// low-oblique one; the photogrammetry workflow applies it to level the two
// image sets.
func altitudeOffset(rows []domainpair.SelectedImage) (float64, error) {
	var hnSum, loSum float64
	var hnN, loN int
	for _, r := range rows {
		if r.Image.AltitudeAGL == nil {
			continue
		}
		switch r.Role {
		case domainpair.RoleHighNadir:
			hnSum += *r.Image.AltitudeAGL
			hnN++
		case domainpair.RoleLowOblique:
			loSum += *r.Image.AltitudeAGL
			loN++
		}
	}
	if hnN == 0 || loN == 0 {
		return 0, errors.New(errors.CodeDerivedConfigFailed, "missing image altitudes for one profile")
	}
	return hnSum/float64(hnN) - loSum/float64(loN), nil
}

// imageCentroid is the mean of the selected image locations.
func imageCentroid(rows []domainpair.SelectedImage) orb.Point {
	var x, y float64
	for _, r := range rows {
		x += r.Image.Location[0]
		y += r.Image.Location[1]
	}
	n := float64(len(rows))
	return orb.Point{x / n, y / n}
}

// utmEPSGString renders the UTM EPSG code of a geographic point in the
// double-colon form the photogrammetry configs expect.
func utmEPSGString(pt orb.Point) string {
	return fmt.Sprintf("EPSG::%d", geometry.NewProjector(pt[0], pt[1]).EPSG())
}

// photoPaths maps sub-mission IDs onto the unpacked imagery layout.
func photoPaths(missionID string, subMissionIDs []string) []string {
	paths := make([]string, 0, len(subMissionIDs))
	for _, sub := range subMissionIDs {
		paths = append(paths, fmt.Sprintf("%s/%s_images/%s", downloadedImagesRoot, missionID, sub))
	}
	return paths
}

func (s *serviceImpl) imageryZipPath(missionID string) string {
	root := s.opts.ImageryBucket
	if s.opts.ImageryPrefix != "" {
		root += "/" + strings.Trim(s.opts.ImageryPrefix, "/")
	}
	return fmt.Sprintf("%s/%s/images/%s_images.zip", root, missionID, missionID)
}

func (s *serviceImpl) subsetPath(fileName string) string {
	if s.opts.SubsetsFolder == "" {
		return fileName
	}
	return strings.TrimSuffix(s.opts.SubsetsFolder, "/") + "/" + fileName
}

func groupByComposite(rows []domainpair.SelectedImage) map[string][]domainpair.SelectedImage {
	grouped := make(map[string][]domainpair.SelectedImage)
	for _, r := range rows {
		grouped[r.CompositeID] = append(grouped[r.CompositeID], r)
	}
	return grouped
}

// buildConfigList renders the config index with its priority sections; today
// everything is standard priority.
func buildConfigList(names []string) []byte {
	var b bytes.Buffer
	b.WriteString("# Standard-priority missions\n")
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.Bytes()
}

// deepCopyMap clones a decoded YAML tree so per-composite overrides never
// leak into the shared base.
func deepCopyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case []interface{}:
		cp := make([]interface{}, len(t))
		for i, e := range t {
			cp[i] = deepCopyValue(e)
		}
		return cp
	default:
		return v
	}
}

// subMap returns the named section as a map, creating it when the base
// config does not carry it.
func subMap(cfg map[string]interface{}, key string) map[string]interface{} {
	if m, ok := cfg[key].(map[string]interface{}); ok {
		return m
	}
	m := make(map[string]interface{})
	cfg[key] = m
	return m
}

func marshalYAML(cfg map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeDerivedConfigFailed, "failed to encode derived config")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDerivedConfigFailed, "failed to finalise derived config")
	}
	return buf.Bytes(), nil
}
