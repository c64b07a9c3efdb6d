package interfaces

import (
	"context"

	"github.com/khtseng/folio/internal/models"
)

// StorageManager coordinates the storage backends. The backing store is
// treated as durable but offers no transactions and no concurrent-write
// guarantees; the asset service is the sole writer.
type StorageManager interface {
	Assets() AssetStore
	Transactions() TransactionStore
	PriceHistory() PriceHistoryStore
	Settings() SettingsStore

	Close() error
}

// AssetStore persists assets.
type AssetStore interface {
	Get(ctx context.Context, id string) (*models.Asset, error)
	List(ctx context.Context) ([]*models.Asset, error)
	Save(ctx context.Context, asset *models.Asset) error // upsert by ID
	Delete(ctx context.Context, id string) error
}

// TransactionStore persists immutable buy/sell records.
type TransactionStore interface {
	Get(ctx context.Context, id string) (*models.Transaction, error)
	List(ctx context.Context) ([]*models.Transaction, error)
	ListByAsset(ctx context.Context, assetID string) ([]*models.Transaction, error)
	Save(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id string) error

	// DeleteByAsset removes all transactions for an asset and returns the
	// count removed. Used by the cascade on asset deletion.
	DeleteByAsset(ctx context.Context, assetID string) (int, error)
}

// PriceHistoryStore persists daily portfolio value snapshots.
type PriceHistoryStore interface {
	List(ctx context.Context) ([]*models.PricePoint, error)
	Save(ctx context.Context, point *models.PricePoint) error // upsert by day
}

// SettingsStore persists dashboard preferences.
type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}
