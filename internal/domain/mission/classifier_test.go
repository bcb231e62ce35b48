package mission

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func testFootprint() orb.MultiPolygon {
	return orb.MultiPolygon{{
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
	}}
}

func testMission(alt, pitch, fidelity *float64) *Mission {
	m, _ := NewMission("m-1", testFootprint())
	m.AltitudeAGL = alt
	m.CameraPitch = pitch
	m.Fidelity = fidelity
	return m
}

func TestNewMission_Validation(t *testing.T) {
	_, err := NewMission("", testFootprint())
	assert.Error(t, err)

	_, err = NewMission("m-1", nil)
	assert.Error(t, err)

	m, err := NewMission("m-1", testFootprint())
	require.NoError(t, err)
	assert.Equal(t, ProfileNone, m.Profile)
}

func TestNewImage_Validation(t *testing.T) {
	_, err := NewImage("", "m-1", orb.Point{0, 0})
	assert.Error(t, err)

	_, err = NewImage("i-1", "", orb.Point{0, 0})
	assert.Error(t, err)

	img, err := NewImage("i-1", "m-1", orb.Point{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "m-1", img.MissionID)
}

func TestClassify(t *testing.T) {
	cfg := DefaultClassifierConfig()

	tests := []struct {
		name     string
		alt      *float64
		pitch    *float64
		fidelity *float64
		want     Profile
	}{
		{"high nadir", f(130), f(3), f(80), ProfileHighNadir},
		{"low oblique", f(90), f(25), f(70), ProfileLowOblique},
		{"negative pitch uses absolute value", f(90), f(-25), f(70), ProfileLowOblique},
		{"missing altitude", nil, f(3), f(80), ProfileNone},
		{"missing pitch", f(130), nil, f(80), ProfileNone},
		{"missing fidelity passes gate", f(130), f(3), nil, ProfileHighNadir},
		{"fidelity below minimum", f(130), f(3), f(49), ProfileNone},
		{"fidelity at minimum", f(130), f(3), f(50), ProfileHighNadir},
		{"altitude below both", f(40), f(3), f(80), ProfileNone},
		{"altitude above both", f(200), f(3), f(80), ProfileNone},
		{"hn altitude with lo pitch", f(150), f(25), f(80), ProfileNone},
		{"pitch between profiles", f(110), f(14), f(80), ProfileNone},
		{"hn altitude lower bound", f(100), f(0), f(80), ProfileHighNadir},
		{"hn altitude upper bound", f(160), f(10), f(80), ProfileHighNadir},
		{"lo bounds", f(60), f(38), f(80), ProfileLowOblique},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMission(tt.alt, tt.pitch, tt.fidelity)
			assert.Equal(t, tt.want, Classify(m, cfg))
		})
	}
}

func TestClassify_NilMission(t *testing.T) {
	assert.Equal(t, ProfileNone, Classify(nil, DefaultClassifierConfig()))
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// A deliberately overlapping configuration: both ranges admit the
	// mission.  High-nadir must win because it is evaluated first.
	cfg := ClassifierConfig{
		HighNadir:  ProfileRange{AltitudeMin: 0, AltitudeMax: 200, PitchMin: 0, PitchMax: 45},
		LowOblique: ProfileRange{AltitudeMin: 0, AltitudeMax: 200, PitchMin: 0, PitchMax: 45},
	}
	m := testMission(f(100), f(20), nil)
	assert.Equal(t, ProfileHighNadir, Classify(m, cfg))
}

func TestDefaultClassifierConfig_RangesDisjoint(t *testing.T) {
	// No mission may ever satisfy both profiles under the defaults.
	cfg := DefaultClassifierConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.HighNadir.overlaps(cfg.LowOblique))
}

func TestClassifierConfig_Validate(t *testing.T) {
	cfg := DefaultClassifierConfig()
	cfg.HighNadir.AltitudeMax = 50 // inverted
	assert.Error(t, cfg.Validate())

	cfg = DefaultClassifierConfig()
	cfg.LowOblique.PitchMin = 5 // overlaps high-nadir pitch at shared altitudes
	assert.Error(t, cfg.Validate())

	cfg = DefaultClassifierConfig()
	cfg.MinFidelity = 120
	assert.Error(t, cfg.Validate())
}

func TestClassifyAll(t *testing.T) {
	hnMission := testMission(f(130), f(3), f(80))
	hnMission.ID = "hn-1"
	loMission := testMission(f(90), f(25), f(70))
	loMission.ID = "lo-1"
	unclassified := testMission(nil, f(3), f(80))
	unclassified.ID = "none-1"

	hn, lo := ClassifyAll([]*Mission{hnMission, loMission, unclassified}, DefaultClassifierConfig())

	require.Len(t, hn, 1)
	require.Len(t, lo, 1)
	assert.Equal(t, "hn-1", hn[0].ID)
	assert.Equal(t, "lo-1", lo[0].ID)
	assert.Equal(t, ProfileNone, unclassified.Profile)
}
