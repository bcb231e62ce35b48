package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apppairing "github.com/aerialops/missionpair/internal/application/pairing"
	"github.com/aerialops/missionpair/internal/config"
	"github.com/aerialops/missionpair/internal/domain/mission"
	"github.com/aerialops/missionpair/internal/infrastructure/catalog"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/internal/infrastructure/storage/minio"
	"github.com/aerialops/missionpair/pkg/errors"
)

// pairOptions holds the pair subcommand's flags.
type pairOptions struct {
	missionsPath string
	imagesPath   string
	outputDir    string
	dryRun       bool
	upload       bool
}

// NewPairCommand creates the subcommand that runs the full pairing pipeline.
func NewPairCommand() *cobra.Command {
	opts := &pairOptions{}

	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Run the mission-pairing pipeline over the compiled catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPair(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.missionsPath, "missions", "", "mission catalog path (overrides config)")
	f.StringVar(&opts.imagesPath, "images", "", "image catalog path (overrides config)")
	f.StringVar(&opts.outputDir, "output-dir", "", "output directory (overrides config)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "run the pipeline without writing or uploading outputs")
	f.BoolVar(&opts.upload, "upload", false, "upload outputs to object storage after writing them")

	return cmd
}

func runPair(cmd *cobra.Command, opts *pairOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg, log := cliCtx.Config, cliCtx.Logger

	if opts.missionsPath != "" {
		cfg.Catalog.MissionsPath = opts.missionsPath
	}
	if opts.imagesPath != "" {
		cfg.Catalog.ImagesPath = opts.imagesPath
	}
	if opts.outputDir != "" {
		cfg.Catalog.OutputDir = opts.outputDir
	}
	if opts.upload && !cfg.MinIO.Enabled {
		return errors.InvalidParam("--upload requires object storage to be configured")
	}

	var store *minio.CatalogStore
	if cfg.MinIO.Enabled {
		store, err = connectStore(ctx, cfg, log)
		if err != nil {
			return err
		}
	}

	missions, images, err := loadCatalogs(ctx, cfg, store, log)
	if err != nil {
		return err
	}

	svc, err := apppairing.NewService(cfg.Classifier.Domain(), cfg.Pairing.Domain(), log)
	if err != nil {
		return err
	}

	result, err := svc.Run(ctx, apppairing.RunInput{Missions: missions, Images: images})
	if err != nil {
		return err
	}

	if !result.Report.Empty() {
		log.Info("duplication report", logging.String("summary", result.Report.Summary()))
	}

	// The full collections go to the output files; stdout carries the run
	// summary only.
	summary := struct {
		RunID         string            `json:"run_id"`
		TerminalState string            `json:"terminal_state"`
		EPSG          int               `json:"epsg"`
		Counts        apppairing.Counts `json:"counts"`
	}{result.RunID, result.TerminalState, result.EPSG, result.Counts}

	if result.TerminalState == apppairing.TerminalNoCandidates {
		return PrintResult(summary)
	}

	if opts.dryRun {
		log.Info("dry run, outputs not written")
		return PrintResult(summary)
	}

	if err := writeOutputs(ctx, cfg, result, store, opts.upload, log); err != nil {
		return err
	}
	return PrintResult(summary)
}

// connectStore opens the configured bucket.
func connectStore(ctx context.Context, cfg *config.Config, log logging.Logger) (*minio.CatalogStore, error) {
	api, err := minio.Connect(ctx, minio.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		UseSSL:    cfg.MinIO.UseSSL,
		Bucket:    cfg.MinIO.Bucket,
		Prefix:    cfg.MinIO.Prefix,
	}, log)
	if err != nil {
		return nil, err
	}
	return minio.NewCatalogStore(api, cfg.MinIO.Bucket, cfg.MinIO.Prefix, log), nil
}

// loadCatalogs reads the two input catalogs from object storage when
// configured, the local filesystem otherwise.
func loadCatalogs(ctx context.Context, cfg *config.Config, store *minio.CatalogStore, log logging.Logger) ([]*mission.Mission, []*mission.Image, error) {
	missionsData, err := readCatalog(ctx, store, cfg.Catalog.MissionsPath)
	if err != nil {
		return nil, nil, err
	}
	imagesData, err := readCatalog(ctx, store, cfg.Catalog.ImagesPath)
	if err != nil {
		return nil, nil, err
	}

	missions, missionReport, err := catalog.DecodeMissions(missionsData, log)
	if err != nil {
		return nil, nil, err
	}
	images, imageReport, err := catalog.DecodeImages(imagesData, log)
	if err != nil {
		return nil, nil, err
	}

	log.Info("catalogs loaded",
		logging.Int("missions", missionReport.Loaded),
		logging.Int("missions_skipped", missionReport.Skipped),
		logging.Int("images", imageReport.Loaded),
		logging.Int("images_skipped", imageReport.Skipped))
	return missions, images, nil
}

func readCatalog(ctx context.Context, store *minio.CatalogStore, path string) ([]byte, error) {
	if store != nil {
		return store.Fetch(ctx, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.CodeCatalogMissing, "catalog %q does not exist", path)
		}
		return nil, errors.Wrap(err, errors.CodeCatalogParseFailed, "failed to read catalog").
			WithDetail("path=" + path)
	}
	return data, nil
}

// writeOutputs encodes the run outputs, writes them under the output
// directory, and optionally uploads them under the bucket prefix.
func writeOutputs(ctx context.Context, cfg *config.Config, result *apppairing.Result, store *minio.CatalogStore, upload bool, log logging.Logger) error {
	polygonsData, err := catalog.EncodePairPolygons(result.PairPolygons, result.Projector)
	if err != nil {
		return err
	}
	imagesData, err := catalog.EncodeSelectedImages(result.SelectedImages)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Catalog.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create output directory")
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{config.DefaultPairPolygonsFile, polygonsData},
		{config.DefaultPairImagesFile, imagesData},
	}
	for _, out := range outputs {
		path := filepath.Join(cfg.Catalog.OutputDir, out.name)
		if err := os.WriteFile(path, out.data, 0o644); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to write output").
				WithDetail("path=" + path)
		}
		log.Info("wrote output", logging.String("path", path))

		if upload && store != nil {
			if err := store.Upload(ctx, out.name, out.data); err != nil {
				return err
			}
		}
	}
	return nil
}
