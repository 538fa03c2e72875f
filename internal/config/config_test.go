package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/greenfly/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Nil(t, cfg.Model.Generations)
	require.Nil(t, cfg.Logging.Level)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[model]
juveniles = 10
adults = 10
seniles = 10
generations = 5
juvenile-survival = 1.0
adult-survival = 1.0
senile-survival = 0.0
birth-rate = 2.0
trigger = 35

[validation]
max-generations = 40

[logging]
level = "debug"

[archive]
auto-save = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.True(t, cfg.Model.Complete())

	var opts model.Options
	cfg.Model.Apply(&opts)
	require.Equal(t, model.Options{
		StartingJuveniles:    10,
		StartingAdults:       10,
		StartingSeniles:      10,
		Generations:          5,
		JuvenileSurvivalRate: 1,
		AdultSurvivalRate:    1,
		AdultBirthRate:       2,
		DiseaseTrigger:       35,
	}, opts)

	minGen, maxGen := cfg.Validation.Bounds(5, 25)
	require.Equal(t, 5, minGen)
	require.Equal(t, 40, maxGen)
	require.Equal(t, "debug", *cfg.Logging.Level)
	require.False(t, *cfg.Archive.AutoSave)
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[model\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestModelConfigPartial(t *testing.T) {
	gens := 7
	cfg := ModelConfig{Generations: &gens}
	require.False(t, cfg.Complete())
	opts := model.Options{StartingAdults: 3}
	cfg.Apply(&opts)
	require.Equal(t, 7, opts.Generations)
	require.Equal(t, 3, opts.StartingAdults)
}

func TestDefaultPathsHonorXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	require.Equal(t, filepath.Join("/tmp/cfg", "greenfly", "config.toml"), DefaultConfigPath())
	require.Equal(t, filepath.Join("/tmp/data", "greenfly", "greenfly.db"), DefaultDBPath())
}
