// Package app wires configuration, storage, clients, and services into one
// application core shared by the server and import binaries.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jpariona/cartera/internal/clients/alphavantage"
	"github.com/jpariona/cartera/internal/clients/polygon"
	"github.com/jpariona/cartera/internal/clients/sbs"
	"github.com/jpariona/cartera/internal/clients/yahoo"
	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/services/marketdata"
	"github.com/jpariona/cartera/internal/services/performance"
	"github.com/jpariona/cartera/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.Store
	PerformanceService interfaces.PerformanceService
	MarketDataService  interfaces.MarketDataService
	StartupTime        time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration - check provided path, CARTERA_CONFIG, then binary
	// dir, then the development fallback.
	if configPath == "" {
		configPath = os.Getenv("CARTERA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "cartera.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/cartera.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		if _, err := os.Stat(config.Storage.Path); os.IsNotExist(err) {
			config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
		}
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := storage.NewStore(config.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Price providers in priority order. Providers without keys stay in the
	// chain; their failures are recorded and the next one is tried.
	priceProviders := []interfaces.PriceProvider{
		polygon.NewClient(config.Clients.Polygon.APIKey,
			polygon.WithBaseURL(config.Clients.Polygon.BaseURL),
			polygon.WithLogger(logger),
		),
		alphavantage.NewClient(config.Clients.AlphaVantage.APIKey,
			alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
			alphavantage.WithLogger(logger),
		),
		yahoo.NewClient(
			yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
			yahoo.WithLogger(logger),
		),
	}

	if config.Clients.Polygon.APIKey == "" {
		logger.Warn().Msg("Polygon API key not configured - provider will be skipped")
	}
	if config.Clients.AlphaVantage.APIKey == "" {
		logger.Warn().Msg("Alpha Vantage API key not configured - provider will be skipped")
	}

	fxClient := sbs.NewClient(
		sbs.WithBaseURL(config.Clients.SBS.BaseURL),
		sbs.WithLogger(logger),
	)
	benchmarkClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
	)

	performanceService := performance.NewService(store, config.ReportingCurrency, logger)
	marketDataService := marketdata.NewService(
		store,
		priceProviders,
		fxClient,
		benchmarkClient,
		config.Clients.GetRefreshDelay(),
		logger,
	)

	a := &App{
		Config:             config,
		Logger:             logger,
		Storage:            store,
		PerformanceService: performanceService,
		MarketDataService:  marketDataService,
		StartupTime:        startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
