package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finsight.yaml")

	cfg := Default()
	cfg.Dashboard.ProjectionDays = 90
	cfg.Reconcile.ValueTolerance = "0.05"
	cfg.Server.Addr = ":9090"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90, loaded.Dashboard.ProjectionDays)
	assert.Equal(t, "0.05", loaded.Reconcile.ValueTolerance)
	assert.Equal(t, ":9090", loaded.Server.Addr)
	assert.Equal(t, Default().ERP.BaseURL, loaded.ERP.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finsight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard: ["), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 60, cfg.Dashboard.ProjectionDays)
	assert.Equal(t, 6, cfg.Dashboard.BurnRateMonths)
	assert.Equal(t, 180, cfg.Dashboard.LookbackDays)
	assert.Equal(t, 3, cfg.Reconcile.DateToleranceDays)
	assert.Equal(t, "0.01", cfg.Reconcile.ValueTolerance)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL())
	assert.Equal(t, 100*time.Millisecond, cfg.ERP.MinRequestInterval())
	assert.Equal(t, time.Second, cfg.ERP.RetryBackoff())
}

func TestValueToleranceAmount(t *testing.T) {
	r := ReconcileConfig{ValueTolerance: "0.01"}
	d, err := r.ValueToleranceAmount()
	require.NoError(t, err)
	assert.Equal(t, "0.01", d.String())

	r.ValueTolerance = "cheap"
	_, err = r.ValueToleranceAmount()
	assert.ErrorContains(t, err, "value_tolerance")
}
