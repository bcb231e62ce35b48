package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerialops/missionpair/pkg/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min overlap", func(c *Config) { c.MinOverlapHa = -1 }},
		{"negative date window", func(c *Config) { c.MaxDateDiffDays = -1 }},
		{"zero subset threshold", func(c *Config) { c.SubsetAreaThreshold = 0 }},
		{"subset threshold above one", func(c *Config) { c.SubsetAreaThreshold = 1.5 }},
		{"zero size ratio", func(c *Config) { c.SubsetSizeRatio = 0 }},
		{"size ratio above one", func(c *Config) { c.SubsetSizeRatio = 2 }},
		{"negative within-year days", func(c *Config) { c.WithinYearDays = -1 }},
		{"negative area margin", func(c *Config) { c.WithinYearAreaMargin = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodePairingConfigInvalid))
		})
	}
}
