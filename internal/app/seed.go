package app

import (
	"context"

	"github.com/khtseng/folio/internal/models"
)

// seedDemoData inserts a sample portfolio into an empty store so a fresh
// install has something to show. No-op when assets already exist.
func (a *App) seedDemoData() error {
	ctx := context.Background()

	existing, err := a.Assets.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []*models.Asset{
		{
			Name:         "TSMC",
			Type:         models.AssetStockTW,
			Symbol:       "2330",
			Amount:       100,
			Cost:         58000,
			CurrentPrice: 600,
		},
		{
			Name:         "Apple",
			Type:         models.AssetStockUS,
			Symbol:       "AAPL",
			Amount:       10,
			Cost:         1700,
			CurrentPrice: 190,
		},
		{
			Name:         "Bitcoin",
			Type:         models.AssetCrypto,
			Symbol:       "bitcoin",
			Amount:       0.1,
			Cost:         3500,
			CurrentPrice: 43000,
		},
		// Dollar-denominated holdings carry a unit price of 1 so market
		// value tracks the amount.
		{
			Name:         "Emergency Fund",
			Type:         models.AssetCash,
			Amount:       10000,
			Cost:         10000,
			CurrentPrice: 1,
		},
		{
			Name:         "Aave Lending",
			Type:         models.AssetDeFi,
			Amount:       5000,
			Cost:         5000,
			CurrentPrice: 1,
			DeFi: &models.DeFiMetadata{
				Protocol:     "Aave",
				PositionType: "lending",
				Blockchain:   "Ethereum",
				APY:          4.2,
				RiskLevel:    "low",
			},
		},
	}

	for _, asset := range demo {
		if _, err := a.Assets.Create(ctx, asset); err != nil {
			return err
		}
	}

	a.Logger.Info().Int("assets", len(demo)).Msg("Demo portfolio seeded")
	return nil
}
