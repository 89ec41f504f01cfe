package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
scraper:
  agency: ""
  max_retries: 5
  exhausted_policy: skip
output:
  dir: /tmp/scrapes
usaspending:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Scraper.Agency)
	assert.Equal(t, 5, cfg.Scraper.MaxRetries)
	assert.Equal(t, "skip", cfg.Scraper.ExhaustedPolicy)
	assert.Equal(t, "/tmp/scrapes", cfg.Output.Dir)
	assert.False(t, cfg.USASpending.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, "https://www.doge.gov/savings", cfg.Scraper.URL)
	assert.Equal(t, "table tr", cfg.Selectors.Row)
	assert.Equal(t, 24, cfg.Watch.IntervalHours)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scraper: [not a mapping"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Scraper.Headless)
	assert.Equal(t, "CONSUMER FINANCIAL PROTECTION BUREAU", cfg.Scraper.Agency)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, "abort", cfg.Scraper.ExhaustedPolicy)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.True(t, cfg.USASpending.Enabled)
}
