package config

// Default file names under the catalog output directory and bucket prefix.
const (
	DefaultMissionsFile     = "missions.geojson"
	DefaultImagesFile       = "images.geojson"
	DefaultPairPolygonsFile = "paired-mission-polygons.geojson"
	DefaultPairImagesFile   = "paired-mission-images.geojson"
	DefaultConfigListFile   = "config-list.txt"
)

const (
	DefaultOutputDir    = "out"
	DefaultConfigGenDir = "configs"

	DefaultMinFidelity = 50.0

	DefaultMinOverlapHa         = 2.0
	DefaultMaxDateDiffDays      = 547.5
	DefaultLowObliqueBufferM    = 100.0
	DefaultSubsetAreaThreshold  = 0.99
	DefaultSubsetSizeRatio      = 0.75
	DefaultWithinYearDays       = 150.0
	DefaultWithinYearAreaMargin = 0.10

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  It serves programmatically constructed configs (and seeds the
// loader's per-key viper defaults); the file/env loading path defaults
// through viper itself, where explicit values always win.
//
// Because this pass cannot tell an explicit zero from an unset field, a
// caller building a Config in code who needs a genuine zero threshold
// (for example classifier.min_fidelity 0 to disable the fidelity gate) must
// set it after calling ApplyDefaults.  Configs arriving through Load or
// LoadFromEnv do not have this limitation.
//
// Threshold fields where zero is meaningful (pitch minima) are intentionally
// not defaulted here; they belong to the classifier ranges, which are
// defaulted as whole windows.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Catalog ──────────────────────────────────────────────────────────────
	if cfg.Catalog.MissionsPath == "" {
		cfg.Catalog.MissionsPath = DefaultMissionsFile
	}
	if cfg.Catalog.ImagesPath == "" {
		cfg.Catalog.ImagesPath = DefaultImagesFile
	}
	if cfg.Catalog.OutputDir == "" {
		cfg.Catalog.OutputDir = DefaultOutputDir
	}

	// ── Classifier ───────────────────────────────────────────────────────────
	// A range left fully zero means "not configured"; a partially set range is
	// the operator's responsibility and fails validation if inverted.
	if cfg.Classifier.HighNadir == (ProfileRangeConfig{}) {
		cfg.Classifier.HighNadir = ProfileRangeConfig{AltitudeMin: 100, AltitudeMax: 160, PitchMin: 0, PitchMax: 10}
	}
	if cfg.Classifier.LowOblique == (ProfileRangeConfig{}) {
		cfg.Classifier.LowOblique = ProfileRangeConfig{AltitudeMin: 60, AltitudeMax: 120, PitchMin: 18, PitchMax: 38}
	}
	if cfg.Classifier.MinFidelity == 0 {
		cfg.Classifier.MinFidelity = DefaultMinFidelity
	}

	// ── Pairing ──────────────────────────────────────────────────────────────
	if cfg.Pairing.MinOverlapHa == 0 {
		cfg.Pairing.MinOverlapHa = DefaultMinOverlapHa
	}
	if cfg.Pairing.MaxDateDiffDays == 0 {
		cfg.Pairing.MaxDateDiffDays = DefaultMaxDateDiffDays
	}
	if cfg.Pairing.LowObliqueBufferM == 0 {
		cfg.Pairing.LowObliqueBufferM = DefaultLowObliqueBufferM
	}
	if cfg.Pairing.SubsetAreaThreshold == 0 {
		cfg.Pairing.SubsetAreaThreshold = DefaultSubsetAreaThreshold
	}
	if cfg.Pairing.SubsetSizeRatio == 0 {
		cfg.Pairing.SubsetSizeRatio = DefaultSubsetSizeRatio
	}
	if cfg.Pairing.WithinYearDays == 0 {
		cfg.Pairing.WithinYearDays = DefaultWithinYearDays
	}
	if cfg.Pairing.WithinYearAreaMargin == 0 {
		cfg.Pairing.WithinYearAreaMargin = DefaultWithinYearAreaMargin
	}

	// ── Config generation ────────────────────────────────────────────────────
	if cfg.ConfigGen.OutputDir == "" {
		cfg.ConfigGen.OutputDir = DefaultConfigGenDir
	}

	// ── MinIO ────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}

	// ── Log ──────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
