package interfaces

import (
	"context"

	"github.com/khtseng/folio/internal/models"
)

// AssetService owns all portfolio state changes. Every command recomputes
// derived fields through the same derivation path, so displayed values
// cannot drift between call sites.
type AssetService interface {
	List(ctx context.Context) ([]*models.Asset, error)
	Get(ctx context.Context, id string) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	Update(ctx context.Context, id string, update AssetUpdate) (*models.Asset, error)

	// Delete removes an asset and cascade-deletes its transactions.
	Delete(ctx context.Context, id string) error

	// ApplyPrice records a new unit price for the asset and recalculates
	// derived fields. This is the price updater's sole write path.
	ApplyPrice(ctx context.Context, id string, price float64) (*models.Asset, error)

	// PostTransaction appends a buy/sell record and adjusts the owning
	// asset's amount and cost basis. Sells exceeding the held amount are
	// rejected.
	PostTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	Transactions(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// AssetUpdate carries the editable asset fields. Nil pointers leave the
// current value untouched.
type AssetUpdate struct {
	Name         *string                `json:"name,omitempty"`
	Symbol       *string                `json:"symbol,omitempty"`
	Amount       *float64               `json:"amount,omitempty"`
	Cost         *float64               `json:"cost,omitempty"`
	CurrentPrice *float64               `json:"current_price,omitempty"`
	Notes        *string                `json:"notes,omitempty"`
	DeFi         *models.DeFiMetadata   `json:"defi,omitempty"`
	Wallet       *models.WalletMetadata `json:"wallet,omitempty"`
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	AssetID string
	Type    models.TransactionType
}

// HistoryService records and serves portfolio value snapshots.
type HistoryService interface {
	// Snapshot records today's total value and cost. Saving twice on the
	// same day overwrites that day's point.
	Snapshot(ctx context.Context) (*models.PricePoint, error)

	List(ctx context.Context) ([]*models.PricePoint, error)

	// RenderGrowthChart renders a PNG line chart of value vs cost over time.
	RenderGrowthChart(ctx context.Context) ([]byte, error)

	// RenderAllocationChart renders a PNG donut chart of current market
	// value grouped by asset type.
	RenderAllocationChart(ctx context.Context) ([]byte, error)
}
