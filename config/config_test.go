package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/config"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
network = "80001"
keystore = "/keys/me.json"
refresh_delay = "500ms"
read_concurrency = 3
log = "development"

[prices]
short = "1"
medium = "0.5"
long = "0.2"
`), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "80001", cfg.Network)
	assert.Equal(t, "/keys/me.json", cfg.Keystore)
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDelay.Duration)
	assert.Equal(t, 2*time.Second, cfg.PollInterval.Duration)
	assert.Equal(t, 3, cfg.ReadConcurrency)
	assert.Equal(t, config.Prices{Short: "1", Medium: "0.5", Long: "0.2"}, cfg.Prices)
	assert.Equal(t, config.Default().Contract, cfg.Contract)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("netwrok = \"mumbai\"\n"), 0600))
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netwrok")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("read_concurrency = 0\n"), 0600))
	_, err := config.Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("refresh_delay = \"soon\"\n"), 0600))
	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := config.Default()
	cfg.WalletURL = "ws://localhost:8546"
	cfg.PollInterval = config.Duration{Duration: time.Second}
	require.NoError(t, config.Save(path, cfg))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyFlags(t *testing.T) {
	defer func() { config.Network, config.Keystore = "", "" }()
	config.Network = "polygon"
	config.Keystore = "/tmp/k.json"

	cfg := config.Default()
	cfg.ApplyFlags()
	assert.Equal(t, "polygon", cfg.Network)
	assert.Equal(t, "/tmp/k.json", cfg.Keystore)
	assert.Equal(t, config.Default().Contract, cfg.Contract)
}

func TestNewLogger(t *testing.T) {
	for _, mode := range []string{config.LogOff, config.LogDevelopment, config.LogProduction} {
		log, err := config.NewLogger(mode)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
	_, err := config.NewLogger("verbose")
	assert.Error(t, err)
}
