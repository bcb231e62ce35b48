package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aerialops/missionpair/internal/application/configgen"
	"github.com/aerialops/missionpair/internal/config"
	"github.com/aerialops/missionpair/internal/infrastructure/catalog"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

// configsOptions holds the configs subcommand's flags.
type configsOptions struct {
	baseConfigPath string
	missionsPath   string
	selectedPath   string
	outputDir      string
}

// NewConfigsCommand creates the subcommand that derives per-pair
// photogrammetry configs from a finished pairing run.
func NewConfigsCommand() *cobra.Command {
	opts := &configsOptions{}

	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Generate per-pair photogrammetry configs from pairing outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigs(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.baseConfigPath, "base-config", "", "base photogrammetry config path (overrides config)")
	f.StringVar(&opts.missionsPath, "missions", "", "mission catalog path (overrides config)")
	f.StringVar(&opts.selectedPath, "selected-images", "", "paired-image collection path (defaults to the pairing output)")
	f.StringVar(&opts.outputDir, "output-dir", "", "directory for the derived configs (overrides config)")

	return cmd
}

func runConfigs(cmd *cobra.Command, opts *configsOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, log := cliCtx.Config, cliCtx.Logger

	if opts.baseConfigPath != "" {
		cfg.ConfigGen.BaseConfigPath = opts.baseConfigPath
	}
	if opts.missionsPath != "" {
		cfg.Catalog.MissionsPath = opts.missionsPath
	}
	if opts.outputDir != "" {
		cfg.ConfigGen.OutputDir = opts.outputDir
	}
	if cfg.ConfigGen.BaseConfigPath == "" {
		return errors.InvalidParam("base config path is not configured")
	}
	selectedPath := opts.selectedPath
	if selectedPath == "" {
		selectedPath = filepath.Join(cfg.Catalog.OutputDir, config.DefaultPairImagesFile)
	}

	baseData, err := os.ReadFile(cfg.ConfigGen.BaseConfigPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeBaseConfigInvalid, "failed to read base config").
			WithDetail("path=" + cfg.ConfigGen.BaseConfigPath)
	}
	missionsData, err := os.ReadFile(cfg.Catalog.MissionsPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeCatalogMissing, "failed to read mission catalog").
			WithDetail("path=" + cfg.Catalog.MissionsPath)
	}
	selectedData, err := os.ReadFile(selectedPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeCatalogMissing, "failed to read paired-image collection").
			WithDetail("path=" + selectedPath)
	}

	missions, _, err := catalog.DecodeMissions(missionsData, log)
	if err != nil {
		return err
	}
	selected, selectedReport, err := catalog.DecodeSelectedImages(selectedData, log)
	if err != nil {
		return err
	}
	log.Info("pairing outputs loaded",
		logging.Int("selected_images", selectedReport.Loaded),
		logging.Int("selected_skipped", selectedReport.Skipped))

	svc := configgen.NewService(configgen.Options{
		ImageryBucket: cfg.ConfigGen.ImageryBucket,
		ImageryPrefix: cfg.ConfigGen.ImageryPrefix,
		SubsetsFolder: cfg.ConfigGen.SubsetsFolder,
	}, log)

	result, err := svc.Generate(configgen.GenerateInput{
		BaseConfig:     baseData,
		Missions:       missions,
		SelectedImages: selected,
	})
	if err != nil {
		return err
	}

	if err := writeGeneratedConfigs(cfg.ConfigGen.OutputDir, result, log); err != nil {
		return err
	}
	log.Info("config generation finished",
		logging.Int("configs", len(result.Configs)),
		logging.Int("skipped", result.Skipped))
	return nil
}

func writeGeneratedConfigs(outputDir string, result *configgen.Result, log logging.Logger) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create output directory")
	}

	write := func(name string, data []byte) error {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to write generated file").
				WithDetail("path=" + path)
		}
		return nil
	}

	for _, c := range result.Configs {
		if err := write(c.FileName, c.Data); err != nil {
			return err
		}
	}
	for _, s := range result.Subsets {
		if err := write(s.FileName, s.Data); err != nil {
			return err
		}
	}
	if err := write(config.DefaultConfigListFile, result.ConfigList); err != nil {
		return err
	}
	log.Info("wrote derived configs", logging.String("output_dir", outputDir))
	return nil
}
