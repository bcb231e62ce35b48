// Package pairing provides the application-level service that runs the full
// mission-pairing pipeline over loaded catalogs.  This package serves as the
// interface between the CLI and the domain logic.
package pairing

import (
	"context"

	"github.com/google/uuid"

	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/mission"
	domainpair "github.com/aerialops/missionpair/internal/domain/pairing"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
	"github.com/aerialops/missionpair/pkg/errors"
)

// Terminal states of a pipeline run.
const (
	// TerminalCompleted means the full pipeline ran and produced outputs.
	TerminalCompleted = "completed"

	// TerminalNoCandidates means classification or candidate generation left
	// nothing to pair.  This is a legitimate outcome, not an error.
	TerminalNoCandidates = "no-candidates"
)

// Service runs the mission-pairing pipeline.
type Service interface {
	Run(ctx context.Context, input RunInput) (*Result, error)
}

// RunInput carries the decoded catalogs.
type RunInput struct {
	Missions []*mission.Mission
	Images   []*mission.Image
}

// Counts summarises each stage of a run.
type Counts struct {
	Missions        int `json:"missions"`
	Images          int `json:"images"`
	HighNadir       int `json:"high_nadir"`
	LowOblique      int `json:"low_oblique"`
	Candidates      int `json:"candidates"`
	PairsRetained   int `json:"pairs_retained"`
	PairPolygonRows int `json:"pair_polygon_rows"`
	SelectedRows    int `json:"selected_rows"`
	UniqueImages    int `json:"unique_images"`
	DuplicatedRows  int `json:"duplicated_rows"`
}

// Result is the full output of one pipeline run.
type Result struct {
	RunID         string `json:"run_id"`
	TerminalState string `json:"terminal_state"`
	EPSG          int    `json:"epsg"`
	Counts        Counts `json:"counts"`

	Candidates     []domainpair.Candidate
	PairPolygons   []domainpair.PairPolygon
	SelectedImages []domainpair.SelectedImage
	Report         domainpair.DuplicationReport

	// Projector is the working frame the run used; callers need it to bring
	// the pair polygons back to geographic coordinates.
	Projector *geometry.Projector
}

type serviceImpl struct {
	classifierCfg mission.ClassifierConfig
	pairingCfg    domainpair.Config
	logger        logging.Logger
}

// NewService builds a pipeline service with validated configuration.
func NewService(classifierCfg mission.ClassifierConfig, pairingCfg domainpair.Config, log logging.Logger) (Service, error) {
	if err := classifierCfg.Validate(); err != nil {
		return nil, err
	}
	if err := pairingCfg.Validate(); err != nil {
		return nil, err
	}
	return &serviceImpl{
		classifierCfg: classifierCfg,
		pairingCfg:    pairingCfg,
		logger:        log.Named("pairing"),
	}, nil
}

// Run executes classification, candidate generation, polygon building, both
// filters, and image selection over the input catalogs.
func (s *serviceImpl) Run(ctx context.Context, input RunInput) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "run cancelled")
	}
	if len(input.Missions) == 0 {
		return nil, errors.New(errors.CodeCatalogEmpty, "mission catalog is empty")
	}

	result := &Result{RunID: uuid.NewString()}
	result.Counts.Missions = len(input.Missions)
	result.Counts.Images = len(input.Images)

	log := s.logger.With(logging.String("run_id", result.RunID))
	log.Info("pipeline run starting",
		logging.Int("missions", len(input.Missions)),
		logging.Int("images", len(input.Images)))

	proj := projectorForCatalog(input.Missions)
	result.Projector = proj
	result.EPSG = proj.EPSG()
	log.Info("working frame selected",
		logging.Int("utm_zone", proj.Zone()),
		logging.Int("epsg", proj.EPSG()))

	highNadir, lowOblique := mission.ClassifyAll(input.Missions, s.classifierCfg)
	result.Counts.HighNadir = len(highNadir)
	result.Counts.LowOblique = len(lowOblique)
	log.Info("classified missions",
		logging.Int("high_nadir", len(highNadir)),
		logging.Int("low_oblique", len(lowOblique)))

	if len(highNadir) == 0 || len(lowOblique) == 0 {
		log.Warn("one or both flight profiles are empty; nothing to pair")
		result.TerminalState = TerminalNoCandidates
		return result, nil
	}

	candidates := domainpair.GenerateCandidates(highNadir, lowOblique, proj, s.pairingCfg, log)
	result.Counts.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Warn("no candidate pairs cleared the overlap and date thresholds")
		result.TerminalState = TerminalNoCandidates
		return result, nil
	}

	result.Report = domainpair.BuildDuplicationReport(candidates)
	if !result.Report.Empty() {
		log.Info("missions paired more than once",
			logging.Int("high_nadir", len(result.Report.HighNadir)),
			logging.Int("low_oblique", len(result.Report.LowOblique)))
	}

	polygons := domainpair.BuildPairPolygons(candidates, s.pairingCfg.LowObliqueBufferM)
	candidates, polygons = domainpair.FilterSubsets(candidates, polygons, s.pairingCfg, log)
	candidates, polygons = domainpair.FilterPreferWithinYear(candidates, polygons, s.pairingCfg, log)

	result.Candidates = candidates
	result.PairPolygons = polygons
	result.Counts.PairsRetained = len(candidates)
	result.Counts.PairPolygonRows = len(polygons)

	selected, stats := domainpair.SelectImages(polygons, input.Images, proj, log)
	result.SelectedImages = selected
	result.Counts.SelectedRows = stats.SelectedRows
	result.Counts.UniqueImages = stats.UniqueImages
	result.Counts.DuplicatedRows = stats.DuplicatedRows

	result.TerminalState = TerminalCompleted
	log.Info("pipeline run finished",
		logging.Int("pairs", len(candidates)),
		logging.Int("selected_rows", stats.SelectedRows))
	return result, nil
}

// projectorForCatalog anchors the working frame at the centre of the mission
// catalog's combined bounding box, so the UTM zone follows the data.
func projectorForCatalog(missions []*mission.Mission) *geometry.Projector {
	bound := missions[0].Footprint.Bound()
	for _, m := range missions[1:] {
		bound = bound.Union(m.Footprint.Bound())
	}
	center := bound.Center()
	return geometry.NewProjector(center[0], center[1])
}
