package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "mapprefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: FILE
  path: prefs.json
seed_zone: emberwastes
log:
  level: debug
activity:
  enabled: true
  journal: data/activity.jsonl
  actor_id: 5f8e2a8e-8a8b-4c36-9a55-7c1f3c9d2b10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "prefs.json", cfg.Store.Path)
	assert.Equal(t, "ember.map", cfg.Store.Namespace)
	assert.Equal(t, "emberwastes", cfg.SeedZone)
	assert.True(t, cfg.Activity.Enabled)
	assert.Equal(t, "map-preferences", cfg.Activity.Channel)
	assert.Equal(t, "data/activity.jsonl", cfg.Activity.Journal)
	assert.Equal(t, "5f8e2a8e-8a8b-4c36-9a55-7c1f3c9d2b10", cfg.Activity.ActorID)

	t.Setenv(EnvStoreDriver, "memory")
	t.Setenv(EnvSeedZone, "voidreach")
	t.Setenv(EnvActivityJournal, "/tmp/other.jsonl")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "voidreach", cfg.SeedZone)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.jsonl", cfg.Activity.Journal)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MAPPREFS_LOG_LEVEL=warn\n"), 0o644))
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Driver = "redis"
	require.ErrorContains(t, cfg.Validate(), "unknown store driver")

	cfg = DefaultConfig()
	cfg.Store.Path = " "
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Store.Driver = "memory"
	cfg.Store.Path = ""
	cfg.Store.Namespace = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ember.map", cfg.Store.Namespace)
}

func TestSaveRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.SeedZone = "frostmarch"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
