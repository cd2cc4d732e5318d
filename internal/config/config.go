package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level finsight.yaml configuration.
// Credentials never live here; they come from the environment.
type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard"`
	Reconcile ReconcileConfig `yaml:"reconciliation"`
	ERP       APIConfig       `yaml:"erp"`
	Bank      APIConfig       `yaml:"bank"`
	Server    ServerConfig    `yaml:"server"`
}

// DashboardConfig controls the derived-metric windows.
type DashboardConfig struct {
	ProjectionDays     int     `yaml:"projection_days"`
	BurnRateMonths     int     `yaml:"burn_rate_months"`
	LookbackDays       int     `yaml:"lookback_days"`
	HistoryMonths      int     `yaml:"history_months"`
	TopCategories      int     `yaml:"top_categories"`
	CacheTTLSeconds    int     `yaml:"cache_ttl_seconds"`
	DelinquencyWarning float64 `yaml:"delinquency_warning"`
}

// CacheTTL returns the snapshot cache time-to-live.
func (d DashboardConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

// ReconcileConfig controls the matcher tolerances.
type ReconcileConfig struct {
	DateToleranceDays int    `yaml:"date_tolerance_days"`
	ValueTolerance    string `yaml:"value_tolerance"`
}

// ValueToleranceAmount parses the configured value tolerance.
func (r ReconcileConfig) ValueToleranceAmount() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.ValueTolerance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing value_tolerance %q: %w", r.ValueTolerance, err)
	}
	return d, nil
}

// APIConfig holds the transport settings for one upstream API.
type APIConfig struct {
	BaseURL              string `yaml:"base_url"`
	MinRequestIntervalMS int    `yaml:"min_request_interval_ms"`
	MaxRetries           int    `yaml:"max_retries"`
	RetryBackoffMS       int    `yaml:"retry_backoff_ms"`
}

// MinRequestInterval returns the minimum spacing between requests.
func (a APIConfig) MinRequestInterval() time.Duration {
	return time.Duration(a.MinRequestIntervalMS) * time.Millisecond
}

// RetryBackoff returns the base backoff between retries.
func (a APIConfig) RetryBackoff() time.Duration {
	return time.Duration(a.RetryBackoffMS) * time.Millisecond
}

// ServerConfig controls the JSON API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a finsight.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			ProjectionDays:     60,
			BurnRateMonths:     6,
			LookbackDays:       180,
			HistoryMonths:      12,
			TopCategories:      8,
			CacheTTLSeconds:    300,
			DelinquencyWarning: 0.20,
		},
		Reconcile: ReconcileConfig{
			DateToleranceDays: 3,
			ValueTolerance:    "0.01",
		},
		ERP: APIConfig{
			BaseURL:              "https://api-v2.contaazul.com/v1",
			MinRequestIntervalMS: 100,
			MaxRetries:           3,
			RetryBackoffMS:       1000,
		},
		Bank: APIConfig{
			BaseURL:              "https://cdpj.partners.bancointer.com.br",
			MinRequestIntervalMS: 100,
			MaxRetries:           3,
			RetryBackoffMS:       1000,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
