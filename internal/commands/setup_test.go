package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/config"
)

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	opts := &globalOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")}

	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Default().Dashboard.ProjectionDays, cfg.Dashboard.ProjectionDays)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finsight.yaml")
	cfg := config.Default()
	cfg.Dashboard.ProjectionDays = 14
	require.NoError(t, config.Save(path, cfg))

	opts := &globalOptions{configPath: path}
	loaded, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 14, loaded.Dashboard.ProjectionDays)
}

func TestBuildService_FixtureSource(t *testing.T) {
	opts := &globalOptions{fixtureDir: t.TempDir()}

	svc, cache, err := opts.buildService(config.Default(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, svc)
	require.NotNil(t, cache)

	// The empty fixture directory yields an empty but valid snapshot.
	snap, err := cache.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Receivables)
}

func TestBuildService_BadValueTolerance(t *testing.T) {
	cfg := config.Default()
	cfg.Reconcile.ValueTolerance = "loose"
	opts := &globalOptions{fixtureDir: t.TempDir()}

	_, _, err := opts.buildService(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildService_LiveRequiresCredentials(t *testing.T) {
	for _, k := range []string{
		envERPClientID, envERPClientSecret, envERPRefreshToken,
		envBankClientID, envBankClientSecret,
	} {
		t.Setenv(k, "")
	}
	opts := &globalOptions{}

	_, _, err := opts.buildService(config.Default(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing environment variables")
}

func TestMissingEnv(t *testing.T) {
	t.Setenv("FINSIGHT_TEST_SET", "value")
	t.Setenv("FINSIGHT_TEST_EMPTY", "")

	missing := missingEnv("FINSIGHT_TEST_SET", "FINSIGHT_TEST_EMPTY")
	assert.Equal(t, []string{"FINSIGHT_TEST_EMPTY"}, missing)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FINSIGHT_TEST_URL", "https://example.test")
	assert.Equal(t, "https://example.test", envOr("FINSIGHT_TEST_URL", "fallback"))
	assert.Equal(t, "fallback", envOr("FINSIGHT_TEST_UNSET_URL", "fallback"))
}
