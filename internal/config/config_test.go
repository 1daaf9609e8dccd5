package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/camps-trends/internal/analytics"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DB_DRIVER", "GRPC_PORT", "RECALC_WORKERS", "CACHE_TTL", "JOBS_DB_PATH"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 4, cfg.RecalcWorkers)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 730*24*time.Hour, cfg.Lookback())
	assert.Empty(t, cfg.JobsDBPath)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PATH", "postgres://camps@localhost/camps?sslmode=disable")
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")
	t.Setenv("RECALC_WORKERS", "8")
	t.Setenv("RECALC_UNIT_TIMEOUT", "45s")
	t.Setenv("RECALC_INTERVAL", "6h")
	t.Setenv("RECALC_LOOKBACK_DAYS", "365")
	t.Setenv("SOURCE_READS_PER_SECOND", "2.5")
	t.Setenv("JOBS_DB_PATH", "/var/lib/camps/jobs.db")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
	assert.Equal(t, 8, cfg.RecalcWorkers)
	assert.Equal(t, 45*time.Second, cfg.RecalcUnitTimeout)
	assert.Equal(t, 6*time.Hour, cfg.RecalcInterval)
	assert.Equal(t, 365, cfg.RecalcLookbackDays)
	assert.Equal(t, 2.5, cfg.SourceReadsPerSecond)
	assert.Equal(t, "/var/lib/camps/jobs.db", cfg.JobsDBPath)
}

func TestLoadFromEnv_ReportsAllBadValues(t *testing.T) {
	t.Setenv("GRPC_PORT", "grpc")
	t.Setenv("RECALC_UNIT_TIMEOUT", "soon")
	t.Setenv("RECALC_WORKERS", "0")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRPC_PORT")
	assert.Contains(t, err.Error(), "RECALC_UNIT_TIMEOUT")
	assert.Contains(t, err.Error(), "RECALC_WORKERS must be positive")
}

func TestLoadThresholds(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		th, err := LoadThresholds("")
		require.NoError(t, err)
		assert.Equal(t, analytics.DefaultThresholds(), th)
	})

	t.Run("file overrides selected values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thresholds.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_sample_size: 5\nsignificant_change: 2.5\nstability_cut_points: [0.1, 0.2, 0.3, 0.4]\n"), 0o600))

		th, err := LoadThresholds(path)
		require.NoError(t, err)
		assert.Equal(t, 5, th.MinSampleSize)
		assert.Equal(t, 2.5, th.SignificantChange)
		assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, th.StabilityCutPoints)
		assert.Equal(t, 0.05, th.SignificanceLevel)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("CAMPS_MODERATE_CHANGE", "0.5")
		th, err := LoadThresholds("")
		require.NoError(t, err)
		assert.Equal(t, 0.5, th.ModerateChange)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thresholds.yaml")
		require.NoError(t, os.WriteFile(path, []byte("moderate_change: 3\nsignificant_change: 2\n"), 0o600))

		_, err := LoadThresholds(path)
		assert.ErrorContains(t, err, "invalid thresholds")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadThresholds(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "read thresholds")
	})
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(&Config{AppEnv: env})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
