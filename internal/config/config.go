// Package config defines the configuration structures for the missionpair
// pipeline.  No I/O or parsing logic lives here, only plain data types,
// conversions into the domain config objects, and validation.
package config

import (
	"fmt"

	"github.com/aerialops/missionpair/internal/domain/mission"
	"github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// CatalogConfig locates the input catalogs and the output collections.  Paths
// are local filesystem paths; when object storage is enabled the same file
// names are resolved under the bucket prefix instead.
type CatalogConfig struct {
	MissionsPath string `mapstructure:"missions_path"`
	ImagesPath   string `mapstructure:"images_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

// ProfileRangeConfig is one flight profile's admission window.
type ProfileRangeConfig struct {
	AltitudeMin float64 `mapstructure:"altitude_min"`
	AltitudeMax float64 `mapstructure:"altitude_max"`
	PitchMin    float64 `mapstructure:"pitch_min"`
	PitchMax    float64 `mapstructure:"pitch_max"`
}

// ClassifierConfig holds the flight-profile classification windows.
type ClassifierConfig struct {
	HighNadir   ProfileRangeConfig `mapstructure:"high_nadir"`
	LowOblique  ProfileRangeConfig `mapstructure:"low_oblique"`
	MinFidelity float64            `mapstructure:"min_fidelity"`
}

// PairingConfig holds every numeric threshold of the pairing stages.
type PairingConfig struct {
	MinOverlapHa         float64 `mapstructure:"min_overlap_ha"`
	MaxDateDiffDays      float64 `mapstructure:"max_date_diff_days"`
	LowObliqueBufferM    float64 `mapstructure:"low_oblique_buffer_m"`
	SubsetAreaThreshold  float64 `mapstructure:"subset_area_threshold"`
	SubsetSizeRatio      float64 `mapstructure:"subset_size_ratio"`
	WithinYearDays       float64 `mapstructure:"within_year_days"`
	WithinYearAreaMargin float64 `mapstructure:"within_year_area_margin"`
}

// MinIOConfig holds S3-compatible object-storage parameters for catalog
// transfer.  Enabled is false for purely local runs.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// ConfigGenConfig holds the inputs of the per-pair photogrammetry config
// generator.
type ConfigGenConfig struct {
	BaseConfigPath string `mapstructure:"base_config_path"`
	OutputDir      string `mapstructure:"output_dir"`

	// ImageryBucket and ImageryPrefix locate the per-mission imagery zip
	// archives referenced by the generated configs.
	ImageryBucket string `mapstructure:"imagery_bucket"`
	ImageryPrefix string `mapstructure:"imagery_prefix"`

	// SubsetsFolder is the path where the image-subset files will be mounted
	// when the generated configs are executed.
	SubsetsFolder string `mapstructure:"subsets_folder"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration of the missionpair binary.
type Config struct {
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Pairing    PairingConfig    `mapstructure:"pairing"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	ConfigGen  ConfigGenConfig  `mapstructure:"configgen"`
	Log        logging.Config   `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain conversions
// ─────────────────────────────────────────────────────────────────────────────

// Domain converts the classifier section into the domain config object.
func (c ClassifierConfig) Domain() mission.ClassifierConfig {
	toRange := func(r ProfileRangeConfig) mission.ProfileRange {
		return mission.ProfileRange{
			AltitudeMin: r.AltitudeMin,
			AltitudeMax: r.AltitudeMax,
			PitchMin:    r.PitchMin,
			PitchMax:    r.PitchMax,
		}
	}
	return mission.ClassifierConfig{
		HighNadir:   toRange(c.HighNadir),
		LowOblique:  toRange(c.LowOblique),
		MinFidelity: c.MinFidelity,
	}
}

// Domain converts the pairing section into the domain config object.
func (c PairingConfig) Domain() pairing.Config {
	return pairing.Config{
		MinOverlapHa:         c.MinOverlapHa,
		MaxDateDiffDays:      c.MaxDateDiffDays,
		LowObliqueBufferM:    c.LowObliqueBufferM,
		SubsetAreaThreshold:  c.SubsetAreaThreshold,
		SubsetSizeRatio:      c.SubsetSizeRatio,
		WithinYearDays:       c.WithinYearDays,
		WithinYearAreaMargin: c.WithinYearAreaMargin,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to run the pipeline.
func (c *Config) Validate() error {
	if c.Catalog.MissionsPath == "" {
		return fmt.Errorf("config: catalog.missions_path is required")
	}
	if c.Catalog.ImagesPath == "" {
		return fmt.Errorf("config: catalog.images_path is required")
	}

	if err := c.Classifier.Domain().Validate(); err != nil {
		return fmt.Errorf("config: classifier section invalid: %w", err)
	}
	if err := c.Pairing.Domain().Validate(); err != nil {
		return fmt.Errorf("config: pairing section invalid: %w", err)
	}
	if c.Pairing.LowObliqueBufferM < 0 {
		return fmt.Errorf("config: pairing.low_oblique_buffer_m must be ≥ 0, got %g", c.Pairing.LowObliqueBufferM)
	}

	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio.enabled is true")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio.enabled is true")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
