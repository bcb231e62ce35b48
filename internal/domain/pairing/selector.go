package pairing

import (
	"github.com/aerialops/missionpair/internal/domain/geometry"
	"github.com/aerialops/missionpair/internal/domain/mission"
	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

// SelectedImage assigns one image to one composite and role.  The same image
// may appear under several composites when its owning mission participates
// in multiple surviving pairs; that duplication is expected and surfaced via
// SelectionStats.
type SelectedImage struct {
	CompositeID string
	Role        Role
	MissionID   string
	Image       *mission.Image
}

// SelectionStats summarises an image-selection pass for operator audit.
type SelectionStats struct {
	// SelectedRows is the total number of (image, composite, role) rows.
	SelectedRows int

	// UniqueImages is the number of distinct images selected at least once.
	UniqueImages int

	// DuplicatedRows counts the rows whose image appears in more than one
	// row, matching how the reference tooling reports duplication.
	DuplicatedRows int
}

// SelectImages assigns every image to the pair polygons that geometrically
// contain it AND belong to the image's own mission.  Containment alone is
// insufficient because adjacent missions' footprints overlap; the ownership
// check keeps a neighbouring mission's images out.
//
// Images are reprojected into the polygons' working frame before the
// containment test.  An image matching no pairing is simply absent from the
// output.
func SelectImages(polygons []PairPolygon, images []*mission.Image, proj *geometry.Projector, log logging.Logger) ([]SelectedImage, SelectionStats) {
	// Index polygon rows by mission for the ownership pre-filter.
	_, groups := groupByMission(polygons)

	var selected []SelectedImage
	perImageRows := make(map[string]int)

	for _, img := range images {
		rows, ok := groups[img.MissionID]
		if !ok {
			continue
		}
		pt := proj.Point(img.Location)
		for _, i := range rows {
			p := polygons[i]
			if !geometry.Contains(p.Geometry, pt) {
				continue
			}
			selected = append(selected, SelectedImage{
				CompositeID: p.CompositeID,
				Role:        p.Role,
				MissionID:   p.MissionID,
				Image:       img,
			})
			perImageRows[img.ID]++
		}
	}

	stats := SelectionStats{SelectedRows: len(selected), UniqueImages: len(perImageRows)}
	for _, n := range perImageRows {
		if n > 1 {
			stats.DuplicatedRows += n
		}
	}

	log.Info("selected images",
		logging.Int("rows", stats.SelectedRows),
		logging.Int("unique_images", stats.UniqueImages),
		logging.Int("duplicated_rows", stats.DuplicatedRows))

	return selected, stats
}
