package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefaultConfigMatchesSpecIntervals(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 1000, cfg.Polling.FocusedMs)
	require.Equal(t, 1000, cfg.Polling.PermissionMs)
	require.Equal(t, 3000, cfg.Polling.WorkingMs)
	require.Equal(t, 10000, cfg.Polling.IdleMs)
	require.Equal(t, 5000, cfg.Polling.ErrorMs)
	require.True(t, cfg.Notification.Enabled)
	require.False(t, cfg.Notification.Sound)
}

func TestIntervalForByStatus(t *testing.T) {
	p := DefaultConfig().Polling
	require.Equal(t, time.Second, p.Focused())
	require.Equal(t, time.Second, p.IntervalFor("Permission"))
	require.Equal(t, 3*time.Second, p.IntervalFor("Working"))
	require.Equal(t, 5*time.Second, p.IntervalFor("Error"))
	require.Equal(t, 10*time.Second, p.IntervalFor("Idle"))
	require.Equal(t, 10*time.Second, p.IntervalFor("Done"))
	require.Equal(t, 10*time.Second, p.IntervalFor("Dead"))
}

func TestLoadConfigCreatesDefaultOnMissingFile(t *testing.T) {
	dir := withConfigHome(t)

	cfg := LoadConfig()
	require.Equal(t, DefaultConfig(), cfg)

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "apiary"), configDir)

	_, err = os.Stat(filepath.Join(configDir, ConfigFileName))
	require.NoError(t, err, "default config should be written back on first load")
}

func TestLoadConfigFallsBackAndBacksUpCorruptFile(t *testing.T) {
	withConfigHome(t)

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	configPath := filepath.Join(configDir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("{not valid json"), 0644))

	cfg := LoadConfig()
	require.Equal(t, DefaultConfig(), cfg)

	entries, err := os.ReadDir(configDir)
	require.NoError(t, err)
	var sawBackup bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" && e.Name() != ConfigFileName {
			sawBackup = true
		}
	}
	require.True(t, sawBackup, "corrupt config should be backed up")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	withConfigHome(t)

	cfg := DefaultConfig()
	cfg.Polling.WorkingMs = 4242
	cfg.Detection.Permission = []string{"custom prompt\\?"}
	require.NoError(t, SaveConfig(cfg))

	loaded := LoadConfig()
	require.Equal(t, cfg, loaded)
}
