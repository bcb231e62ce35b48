package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all pipeline settings.
const envPrefix = "MISSIONPAIR"

// newViper builds a pre-configured Viper instance: YAML file type,
// MISSIONPAIR_ env prefix, automatic env binding, and a key replacer that
// maps "." → "_" so that nested keys like "minio.endpoint" resolve to
// "MISSIONPAIR_MINIO_ENDPOINT".
//
// Every configuration key is registered up front via SetDefault.  AutomaticEnv
// only resolves environment variables for keys viper already knows about, so
// without this registration an env-only load would silently ignore every
// MISSIONPAIR_* override and fall back to the defaults.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys declares every configuration key to viper with its pipeline
// default.  Defaults sit below file and env values in viper's precedence
// order, so an explicit zero in either source survives the load.
func registerKeys(v *viper.Viper) {
	def := &Config{}
	ApplyDefaults(def)

	v.SetDefault("catalog.missions_path", def.Catalog.MissionsPath)
	v.SetDefault("catalog.images_path", def.Catalog.ImagesPath)
	v.SetDefault("catalog.output_dir", def.Catalog.OutputDir)

	registerRange := func(prefix string, r ProfileRangeConfig) {
		v.SetDefault(prefix+".altitude_min", r.AltitudeMin)
		v.SetDefault(prefix+".altitude_max", r.AltitudeMax)
		v.SetDefault(prefix+".pitch_min", r.PitchMin)
		v.SetDefault(prefix+".pitch_max", r.PitchMax)
	}
	registerRange("classifier.high_nadir", def.Classifier.HighNadir)
	registerRange("classifier.low_oblique", def.Classifier.LowOblique)
	v.SetDefault("classifier.min_fidelity", def.Classifier.MinFidelity)

	v.SetDefault("pairing.min_overlap_ha", def.Pairing.MinOverlapHa)
	v.SetDefault("pairing.max_date_diff_days", def.Pairing.MaxDateDiffDays)
	v.SetDefault("pairing.low_oblique_buffer_m", def.Pairing.LowObliqueBufferM)
	v.SetDefault("pairing.subset_area_threshold", def.Pairing.SubsetAreaThreshold)
	v.SetDefault("pairing.subset_size_ratio", def.Pairing.SubsetSizeRatio)
	v.SetDefault("pairing.within_year_days", def.Pairing.WithinYearDays)
	v.SetDefault("pairing.within_year_area_margin", def.Pairing.WithinYearAreaMargin)

	v.SetDefault("minio.enabled", def.MinIO.Enabled)
	v.SetDefault("minio.endpoint", def.MinIO.Endpoint)
	v.SetDefault("minio.access_key", def.MinIO.AccessKey)
	v.SetDefault("minio.secret_key", def.MinIO.SecretKey)
	v.SetDefault("minio.use_ssl", def.MinIO.UseSSL)
	v.SetDefault("minio.bucket", def.MinIO.Bucket)
	v.SetDefault("minio.prefix", def.MinIO.Prefix)

	v.SetDefault("configgen.base_config_path", def.ConfigGen.BaseConfigPath)
	v.SetDefault("configgen.output_dir", def.ConfigGen.OutputDir)
	v.SetDefault("configgen.imagery_bucket", def.ConfigGen.ImageryBucket)
	v.SetDefault("configgen.imagery_prefix", def.ConfigGen.ImageryPrefix)
	v.SetDefault("configgen.subsets_folder", def.ConfigGen.SubsetsFolder)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output_paths", []string{})
}

// Load reads the YAML file at configPath, merges MISSIONPAIR_* environment
// variable overrides on top of it, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndValidate(v)
}

// LoadFromEnv builds a Config entirely from MISSIONPAIR_* environment
// variables and defaults, with no config file required.  This is the
// preferred loading strategy inside the survey-processing containers.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndValidate(newViper())
}

// unmarshalAndValidate unmarshals viper state into a Config and validates
// the result.  Defaulting already happened inside viper via registerKeys, so
// no post-unmarshal pass runs here and an explicitly configured zero value
// is preserved.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
