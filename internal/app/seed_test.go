package app

import (
	"context"
	"testing"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/models"
	"github.com/khtseng/folio/internal/services/asset"
	"github.com/khtseng/folio/internal/storage"
)

func newSeedTestApp(t *testing.T) *App {
	t.Helper()

	logger := common.NewSilentLogger()
	db, err := storage.NewBadgerDB(logger, t.TempDir())
	if err != nil {
		t.Fatalf("failed to open badger store: %v", err)
	}
	store := storage.NewLocalManager(logger, db)
	t.Cleanup(func() { store.Close() })

	return &App{
		Config:  common.NewDefaultConfig(),
		Logger:  logger,
		Storage: store,
		Assets:  asset.NewService(store, logger),
	}
}

func TestSeedDemoData_NoHoldingStartsAtALoss(t *testing.T) {
	a := newSeedTestApp(t)

	if err := a.seedDemoData(); err != nil {
		t.Fatalf("seedDemoData failed: %v", err)
	}

	assets, err := a.Assets.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(assets) == 0 {
		t.Fatal("expected seeded assets")
	}

	for _, got := range assets {
		if got.MarketValue <= 0 {
			t.Errorf("%s: market_value = %v, want > 0", got.Name, got.MarketValue)
		}
		if got.Profit < 0 {
			t.Errorf("%s: profit = %v, want >= 0 for demo data", got.Name, got.Profit)
		}
	}
}

func TestSeedDemoData_CashTracksAmount(t *testing.T) {
	a := newSeedTestApp(t)

	if err := a.seedDemoData(); err != nil {
		t.Fatalf("seedDemoData failed: %v", err)
	}

	assets, err := a.Assets.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	for _, got := range assets {
		if got.Type == models.AssetCash || got.Type == models.AssetDeFi {
			if got.MarketValue != got.Amount {
				t.Errorf("%s: market_value = %v, want %v (amount at unit price)", got.Name, got.MarketValue, got.Amount)
			}
		}
	}
}

func TestSeedDemoData_SkipsNonEmptyStore(t *testing.T) {
	a := newSeedTestApp(t)

	if _, err := a.Assets.Create(context.Background(), &models.Asset{
		Name: "Existing", Type: models.AssetCash, Amount: 1, Cost: 1, CurrentPrice: 1,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := a.seedDemoData(); err != nil {
		t.Fatalf("seedDemoData failed: %v", err)
	}

	assets, err := a.Assets.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(assets) != 1 {
		t.Errorf("expected seed to be a no-op on a non-empty store, got %d assets", len(assets))
	}
}
