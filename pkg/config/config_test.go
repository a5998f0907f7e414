package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
log:
  level: debug
persistence:
  backend: badger
  dir: /tmp/surgebot
surge:
  baseline_hour: 0
  profiles:
    - name: usdt
      quote_currency: usdt
      fee_budget: 1000
      entry_threshold: 0.02
      entry_ceiling: 0.5
      exit_threshold: 0.05
      wait_time: 600
paper:
  fee_rate: 0.002
  contracts:
    - symbol: btcusdt
      exchange: PAPER
      quote_currency: usdt
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Persistence.Backend)
	assert.Equal(t, "/tmp/surgebot", cfg.Persistence.Dir)
	assert.Len(t, cfg.Surge.Profiles, 1)
	assert.Equal(t, 0.002, cfg.Paper.FeeRate)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "surge:\n  profils: []\n"))
	assert.Error(t, err, "拼错的键必须报错")
}

func TestLoadRejectsInvalidStrategyConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "surge:\n  profiles: []\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestPersistenceDefaults(t *testing.T) {
	p := PersistenceConfig{}
	require.NoError(t, p.Validate())
	assert.Equal(t, "file", p.Backend)
	assert.Equal(t, "data", p.Dir)

	p = PersistenceConfig{Backend: "redis"}
	assert.Error(t, p.Validate())
}
