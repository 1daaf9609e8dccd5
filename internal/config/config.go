package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/godilite/camps-trends/internal/analytics"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	GRPCPort              int
	GRPCReflectionEnabled bool
	CacheTTL              time.Duration

	RecalcWorkers        int
	RecalcUnitTimeout    time.Duration
	RecalcInterval       time.Duration
	RecalcLookbackDays   int
	RecalcLockTTL        time.Duration
	SourceReadsPerSecond float64

	// JobsDBPath is the bbolt file for recalculation jobs. Empty keeps jobs
	// in memory.
	JobsDBPath     string
	ThresholdsFile string
}

// LoadFromEnv loads configuration from environment variables. Unset
// variables take their defaults; malformed ones are reported together.
func LoadFromEnv() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/camps.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		GRPCPort:              p.int("GRPC_PORT", 50051),
		GRPCReflectionEnabled: p.bool("GRPC_REFLECTION_ENABLED", false),
		CacheTTL:              p.duration("CACHE_TTL", 10*time.Minute),
		RecalcWorkers:         p.int("RECALC_WORKERS", 4),
		RecalcUnitTimeout:     p.duration("RECALC_UNIT_TIMEOUT", 30*time.Second),
		RecalcInterval:        p.duration("RECALC_INTERVAL", 24*time.Hour),
		RecalcLookbackDays:    p.int("RECALC_LOOKBACK_DAYS", 730),
		RecalcLockTTL:         p.duration("RECALC_LOCK_TTL", 30*time.Minute),
		SourceReadsPerSecond:  p.float("SOURCE_READS_PER_SECOND", 0),
		JobsDBPath:            os.Getenv("JOBS_DB_PATH"),
		ThresholdsFile:        os.Getenv("THRESHOLDS_FILE"),
	}

	if cfg.GRPCPort < 0 || cfg.GRPCPort > 65535 {
		p.errs = append(p.errs, fmt.Errorf("GRPC_PORT out of range: %d", cfg.GRPCPort))
	}
	if cfg.RecalcWorkers < 1 {
		p.errs = append(p.errs, fmt.Errorf("RECALC_WORKERS must be positive, got %d", cfg.RecalcWorkers))
	}
	if cfg.RecalcLookbackDays < 1 {
		p.errs = append(p.errs, fmt.Errorf("RECALC_LOOKBACK_DAYS must be positive, got %d", cfg.RecalcLookbackDays))
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Lookback returns RecalcLookbackDays as a duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.RecalcLookbackDays) * 24 * time.Hour
}

// LoadThresholds reads analysis thresholds. Values come from the defaults,
// then the optional YAML file at path, then CAMPS_* environment variables
// such as CAMPS_MIN_SAMPLE_SIZE.
func LoadThresholds(path string) (analytics.Thresholds, error) {
	def := analytics.DefaultThresholds()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("min_sample_size", def.MinSampleSize)
	v.SetDefault("significance_level", def.SignificanceLevel)
	v.SetDefault("large_sample_size", def.LargeSampleSize)
	v.SetDefault("significant_change", def.SignificantChange)
	v.SetDefault("moderate_change", def.ModerateChange)
	v.SetDefault("stability_cut_points", def.StabilityCutPoints)
	v.SetDefault("flat_slope", def.FlatSlope)
	v.SetDefault("strong_slope", def.StrongSlope)
	v.SetDefault("seasonality_autocorrelation", def.SeasonalityAutocorrelation)

	v.SetEnvPrefix("CAMPS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return analytics.Thresholds{}, fmt.Errorf("read thresholds %s: %w", path, err)
		}
	}

	var t analytics.Thresholds
	if err := v.Unmarshal(&t); err != nil {
		return analytics.Thresholds{}, fmt.Errorf("decode thresholds: %w", err)
	}
	if err := t.Validate(); err != nil {
		return analytics.Thresholds{}, fmt.Errorf("invalid thresholds: %w", err)
	}
	return t, nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// parser converts env values, collecting errors instead of stopping at the
// first one.
type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) bool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
