package pairing

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/aerialops/missionpair/internal/infrastructure/monitoring/logging"
)

// rect builds a single-ring multipolygon in working-frame metres.
func rect(x, y, w, h float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y},
	}}}
}

func fp(v float64) *float64 { return &v }

func tp(t time.Time) *time.Time { return &t }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nopLog() logging.Logger { return logging.NewNopLogger() }
