// Package asset implements the portfolio command service. All asset and
// transaction writes flow through here so derived fields are recomputed on
// every path.
package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

// Service implements interfaces.AssetService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates the asset service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.Asset, error) {
	return s.storage.Assets().List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Asset, error) {
	return s.storage.Assets().Get(ctx, id)
}

// Create validates and persists a new asset. The ID is always assigned
// server-side; any client-supplied ID is ignored.
func (s *Service) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	asset.ID = uuid.New().String()
	asset.DecodeNotesMetadata()

	if err := asset.Validate(); err != nil {
		return nil, err
	}

	asset.Recalculate(s.now())

	if err := s.storage.Assets().Save(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", asset.ID).
		Str("name", asset.Name).
		Str("type", string(asset.Type)).
		Msg("Asset created")

	return asset, nil
}

// Update applies the non-nil fields of update and recalculates. The asset
// type is fixed at creation and cannot be changed.
func (s *Service) Update(ctx context.Context, id string, update interfaces.AssetUpdate) (*models.Asset, error) {
	asset, err := s.storage.Assets().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		asset.Name = *update.Name
	}
	if update.Symbol != nil {
		asset.Symbol = *update.Symbol
	}
	if update.Amount != nil {
		asset.Amount = *update.Amount
	}
	if update.Cost != nil {
		asset.Cost = *update.Cost
	}
	if update.CurrentPrice != nil {
		asset.CurrentPrice = *update.CurrentPrice
	}
	if update.Notes != nil {
		asset.Notes = *update.Notes
		asset.DecodeNotesMetadata()
	}
	if update.DeFi != nil {
		asset.DeFi = update.DeFi
	}
	if update.Wallet != nil {
		asset.Wallet = update.Wallet
	}

	if err := asset.Validate(); err != nil {
		return nil, err
	}

	asset.Recalculate(s.now())

	if err := s.storage.Assets().Save(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", asset.ID).Msg("Asset updated")
	return asset, nil
}

// Delete removes the asset and cascade-deletes its transactions. Orphaned
// transactions would otherwise poison the transaction listing.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.storage.Assets().Get(ctx, id); err != nil {
		return err
	}

	deleted, err := s.storage.Transactions().DeleteByAsset(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cascade-delete transactions: %w", err)
	}

	if err := s.storage.Assets().Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Int("transactions_deleted", deleted).Msg("Asset deleted")
	return nil
}

// ApplyPrice records a fresh unit price and recalculates derived fields.
func (s *Service) ApplyPrice(ctx context.Context, id string, price float64) (*models.Asset, error) {
	asset, err := s.storage.Assets().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	asset.CurrentPrice = price
	asset.Recalculate(s.now())

	if err := s.storage.Assets().Save(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("id", asset.ID).
		Str("symbol", asset.Symbol).
		Float64("price", price).
		Msg("Price applied")

	return asset, nil
}

// PostTransaction validates the record, adjusts the owning asset's holdings
// and cost basis, then persists both. The asset is written first so a
// storage failure cannot leave a transaction the asset never absorbed.
func (s *Service) PostTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	tx.ID = uuid.New().String()
	tx.Total = tx.Amount * tx.Price
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	asset, err := s.storage.Assets().Get(ctx, tx.AssetID)
	if err != nil {
		return nil, err
	}

	if err := asset.ApplyTransaction(tx, s.now()); err != nil {
		return nil, err
	}

	if err := s.storage.Assets().Save(ctx, asset); err != nil {
		return nil, err
	}
	if err := s.storage.Transactions().Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", tx.ID).
		Str("asset_id", tx.AssetID).
		Str("type", string(tx.Type)).
		Float64("amount", tx.Amount).
		Float64("total", tx.Total).
		Msg("Transaction posted")

	return tx, nil
}

func (s *Service) Transactions(ctx context.Context, filter interfaces.TransactionFilter) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	var err error

	if filter.AssetID != "" {
		txs, err = s.storage.Transactions().ListByAsset(ctx, filter.AssetID)
	} else {
		txs, err = s.storage.Transactions().List(ctx)
	}
	if err != nil {
		return nil, err
	}

	if filter.Type == "" {
		return txs, nil
	}
	filtered := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == filter.Type {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

// DeleteTransaction removes the record without readjusting the asset.
// Records are immutable history; correcting a mistake means posting a
// compensating transaction, not rewriting the ledger.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.storage.Transactions().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Msg("Transaction deleted")
	return nil
}
