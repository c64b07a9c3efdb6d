// Package storage provides persistence with pluggable backends: a local
// BadgerDB store and the spreadsheet script collaborator.
package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/models"
)

// BadgerDB wraps badgerhold for typed storage
type BadgerDB struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewBadgerDB opens (or creates) the local store at path.
func NewBadgerDB(logger *common.Logger, path string) (*BadgerDB, error) {
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // Disable badger's internal logging

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerDB opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
	}, nil
}

// Close closes the database
func (db *BadgerDB) Close() error {
	if db.store != nil {
		return db.store.Close()
	}
	return nil
}

// --- asset store ---

type localAssetStore struct {
	db     *BadgerDB
	logger *common.Logger
}

func (s *localAssetStore) Get(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.store.Get(id, &asset); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("asset %q: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

func (s *localAssetStore) List(ctx context.Context) ([]*models.Asset, error) {
	var assets []models.Asset
	if err := s.db.store.Find(&assets, nil); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	out := make([]*models.Asset, len(assets))
	for i := range assets {
		out[i] = &assets[i]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *localAssetStore) Save(ctx context.Context, asset *models.Asset) error {
	if err := s.db.store.Upsert(asset.ID, asset); err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	s.logger.Debug().Str("id", asset.ID).Str("name", asset.Name).Msg("Asset saved")
	return nil
}

func (s *localAssetStore) Delete(ctx context.Context, id string) error {
	if err := s.db.store.Delete(id, models.Asset{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("asset %q: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	s.logger.Debug().Str("id", id).Msg("Asset deleted")
	return nil
}

// --- transaction store ---

type localTransactionStore struct {
	db     *BadgerDB
	logger *common.Logger
}

func (s *localTransactionStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.store.Get(id, &tx); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("transaction %q: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (s *localTransactionStore) List(ctx context.Context) ([]*models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.store.Find(&txs, nil); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return sortTransactions(txs), nil
}

func (s *localTransactionStore) ListByAsset(ctx context.Context, assetID string) ([]*models.Transaction, error) {
	var txs []models.Transaction
	query := badgerhold.Where("AssetID").Eq(assetID).Index("AssetID")
	if err := s.db.store.Find(&txs, query); err != nil {
		return nil, fmt.Errorf("failed to list transactions for asset %s: %w", assetID, err)
	}
	return sortTransactions(txs), nil
}

// sortTransactions orders newest first, matching the dashboard listing.
func sortTransactions(txs []models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, len(txs))
	for i := range txs {
		out[i] = &txs[i]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (s *localTransactionStore) Save(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.store.Insert(tx.ID, tx); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	s.logger.Debug().Str("id", tx.ID).Str("asset_id", tx.AssetID).Msg("Transaction saved")
	return nil
}

func (s *localTransactionStore) Delete(ctx context.Context, id string) error {
	if err := s.db.store.Delete(id, models.Transaction{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("transaction %q: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (s *localTransactionStore) DeleteByAsset(ctx context.Context, assetID string) (int, error) {
	txs, err := s.ListByAsset(ctx, assetID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, tx := range txs {
		if err := s.Delete(ctx, tx.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// --- price history store ---

type localHistoryStore struct {
	db     *BadgerDB
	logger *common.Logger
}

func (s *localHistoryStore) List(ctx context.Context) ([]*models.PricePoint, error) {
	var points []models.PricePoint
	if err := s.db.store.Find(&points, nil); err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}

	out := make([]*models.PricePoint, len(points))
	for i := range points {
		out[i] = &points[i]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *localHistoryStore) Save(ctx context.Context, point *models.PricePoint) error {
	if err := s.db.store.Upsert(point.Day, point); err != nil {
		return fmt.Errorf("failed to save price point: %w", err)
	}
	return nil
}

// --- settings store ---

// settingsKey is the fixed key for the single settings record.
const settingsKey = "settings"

type localSettingsStore struct {
	db *BadgerDB
}

func (s *localSettingsStore) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := s.db.store.Get(settingsKey, &settings); err != nil {
		if err == badgerhold.ErrNotFound {
			defaults := models.DefaultSettings()
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func (s *localSettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	if err := s.db.store.Upsert(settingsKey, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
