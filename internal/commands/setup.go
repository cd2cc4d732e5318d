package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/apiclient"
	"github.com/finsight-dev/finsight/internal/bank"
	"github.com/finsight-dev/finsight/internal/config"
	"github.com/finsight-dev/finsight/internal/dashboard"
	"github.com/finsight-dev/finsight/internal/erp"
	"github.com/finsight-dev/finsight/internal/fixture"
	"github.com/finsight-dev/finsight/internal/oauth"
	"github.com/finsight-dev/finsight/internal/snapshot"
)

// Environment variables for the live data sources. Credentials live
// only here and in the token providers.
const (
	envERPClientID     = "FINSIGHT_ERP_CLIENT_ID"
	envERPClientSecret = "FINSIGHT_ERP_CLIENT_SECRET"
	envERPRefreshToken = "FINSIGHT_ERP_REFRESH_TOKEN"
	envERPTokenURL     = "FINSIGHT_ERP_TOKEN_URL"

	envBankClientID     = "FINSIGHT_BANK_CLIENT_ID"
	envBankClientSecret = "FINSIGHT_BANK_CLIENT_SECRET"
	envBankTokenURL     = "FINSIGHT_BANK_TOKEN_URL"
	envBankScope        = "FINSIGHT_BANK_SCOPE"
	envBankAccount      = "FINSIGHT_BANK_ACCOUNT"
	envBankCertFile     = "FINSIGHT_BANK_CERT_FILE"
	envBankKeyFile      = "FINSIGHT_BANK_KEY_FILE"
)

const (
	defaultERPTokenURL = "https://auth.contaazul.com/oauth2/token"
	defaultBankScope   = "extrato.read"
)

type globalOptions struct {
	configPath string
	fixtureDir string
	verbose    bool
}

func (o *globalOptions) logger() (*zap.Logger, error) {
	if o.verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig reads finsight.yaml, falling back to defaults when the
// file does not exist.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildService wires a dashboard service over either the fixture
// directory or the live APIs, with the TTL snapshot cache in front.
func (o *globalOptions) buildService(cfg *config.Config, log *zap.Logger) (*dashboard.Service, *snapshot.Cache, error) {
	valueTolerance, err := cfg.Reconcile.ValueToleranceAmount()
	if err != nil {
		return nil, nil, err
	}

	var src snapshot.Source
	sourceName := "live"
	if o.fixtureDir != "" {
		sourceName = "fixture"
		src = fixture.NewSource(o.fixtureDir, nil)
	} else {
		src, err = buildLiveSource(cfg, log)
		if err != nil {
			return nil, nil, err
		}
	}

	cache := snapshot.NewCache(src, cfg.Dashboard.CacheTTL(), nil)

	svc := dashboard.NewService(cache, dashboard.Options{
		ProjectionDays:     cfg.Dashboard.ProjectionDays,
		BurnRateMonths:     cfg.Dashboard.BurnRateMonths,
		HistoryMonths:      cfg.Dashboard.HistoryMonths,
		TopCategories:      cfg.Dashboard.TopCategories,
		DateToleranceDays:  cfg.Reconcile.DateToleranceDays,
		ValueTolerance:     valueTolerance,
		DelinquencyWarning: cfg.Dashboard.DelinquencyWarning,
		SourceName:         sourceName,
		LogRoot:            ".",
	}, log)

	return svc, cache, nil
}

// buildLiveSource assembles the ERP and bank clients from environment
// credentials. A .env in the working directory is honored when present.
func buildLiveSource(cfg *config.Config, log *zap.Logger) (snapshot.Source, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to load .env", zap.Error(err))
	}

	missing := missingEnv(envERPClientID, envERPClientSecret, envERPRefreshToken,
		envBankClientID, envBankClientSecret)
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s (or run with --fixture)",
			strings.Join(missing, ", "))
	}

	erpTokens := oauth.NewRefreshTokenSource(
		envOr(envERPTokenURL, defaultERPTokenURL),
		os.Getenv(envERPClientID),
		os.Getenv(envERPClientSecret),
		os.Getenv(envERPRefreshToken),
		log,
	)
	erpClient := erp.NewClient(apiclient.New(
		cfg.ERP.BaseURL, erpTokens,
		cfg.ERP.MinRequestInterval(), cfg.ERP.MaxRetries, cfg.ERP.RetryBackoff(),
		log,
	), log)

	bankHTTP, err := bankHTTPClient()
	if err != nil {
		return nil, err
	}
	bankTokens := oauth.NewClientCredentialsSource(
		envOr(envBankTokenURL, cfg.Bank.BaseURL+"/oauth/v2/token"),
		os.Getenv(envBankClientID),
		os.Getenv(envBankClientSecret),
		envOr(envBankScope, defaultBankScope),
		bankHTTP,
		log,
	)

	bankOpts := []apiclient.Option{}
	if account := os.Getenv(envBankAccount); account != "" {
		bankOpts = append(bankOpts, apiclient.WithHeader("x-conta-corrente", account))
	}
	if bankHTTP != nil {
		bankOpts = append(bankOpts, apiclient.WithHTTPClient(bankHTTP))
	}
	bankClient := bank.NewClient(apiclient.New(
		cfg.Bank.BaseURL, bankTokens,
		cfg.Bank.MinRequestInterval(), cfg.Bank.MaxRetries, cfg.Bank.RetryBackoff(),
		log,
		bankOpts...,
	), log)

	return snapshot.NewFetcher(erpClient, bankClient, cfg.Dashboard.LookbackDays, nil, log), nil
}

// bankHTTPClient returns an mTLS client when a certificate pair is
// configured, nil otherwise.
func bankHTTPClient() (*http.Client, error) {
	certFile := os.Getenv(envBankCertFile)
	keyFile := os.Getenv(envBankKeyFile)
	if certFile == "" && keyFile == "" {
		return nil, nil
	}
	if certFile == "" || keyFile == "" {
		return nil, fmt.Errorf("%s and %s must be set together", envBankCertFile, envBankKeyFile)
	}
	return oauth.MTLSClient(certFile, keyFile)
}

func missingEnv(keys ...string) []string {
	var missing []string
	for _, k := range keys {
		if os.Getenv(k) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
