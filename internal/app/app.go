// Package app wires configuration, storage, clients and services into one
// application container.
package app

import (
	"fmt"

	"github.com/khtseng/folio/internal/clients/coingecko"
	"github.com/khtseng/folio/internal/clients/yahoo"
	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/services/asset"
	"github.com/khtseng/folio/internal/services/history"
	"github.com/khtseng/folio/internal/services/pricesync"
	"github.com/khtseng/folio/internal/storage"
)

// App holds all application components.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	Assets  interfaces.AssetService
	History interfaces.HistoryService

	Hub     *pricesync.PriceWSHub
	Updater *pricesync.Updater
}

// NewApp creates the application from configuration.
func NewApp(config *common.Config) (*App, error) {
	logger := common.NewLogger(config.Logging.Level)

	store, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	equityClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)
	cryptoClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	assetService := asset.NewService(store, logger)
	historyService := history.NewService(store, logger)

	hub := pricesync.NewPriceWSHub(logger)
	updater := pricesync.NewUpdater(
		assetService,
		equityClient,
		cryptoClient,
		hub,
		config.Refresh.GetInterval(),
		logger,
	)

	a := &App{
		Config:  config,
		Logger:  logger,
		Storage: store,
		Assets:  assetService,
		History: historyService,
		Hub:     hub,
		Updater: updater,
	}

	if config.Storage.SeedDemo {
		if err := a.seedDemoData(); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed demo data")
		}
	}

	return a, nil
}

// Start launches the background components.
func (a *App) Start() {
	go a.Hub.Run()
	if a.Config.Refresh.Enabled {
		a.Updater.Start()
	} else {
		a.Logger.Info().Msg("Periodic price refresh disabled")
	}
}

// Close stops background components and releases storage.
func (a *App) Close() error {
	a.Updater.Stop()
	a.Hub.Stop()
	return a.Storage.Close()
}
