package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

// memStorage is an in-memory StorageManager for service tests.
type memStorage struct {
	assets   map[string]*models.Asset
	txs      map[string]*models.Transaction
	points   map[string]*models.PricePoint
	settings *models.Settings

	failAssetSave bool
}

func newMemStorage() *memStorage {
	return &memStorage{
		assets: make(map[string]*models.Asset),
		txs:    make(map[string]*models.Transaction),
		points: make(map[string]*models.PricePoint),
	}
}

func (m *memStorage) Assets() interfaces.AssetStore              { return (*memAssets)(m) }
func (m *memStorage) Transactions() interfaces.TransactionStore  { return (*memTxs)(m) }
func (m *memStorage) PriceHistory() interfaces.PriceHistoryStore { return (*memHistory)(m) }
func (m *memStorage) Settings() interfaces.SettingsStore         { return (*memSettings)(m) }
func (m *memStorage) Close() error                               { return nil }

type memAssets memStorage

func (m *memAssets) Get(ctx context.Context, id string) (*models.Asset, error) {
	a, ok := m.assets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAssets) List(ctx context.Context) ([]*models.Asset, error) {
	out := make([]*models.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAssets) Save(ctx context.Context, asset *models.Asset) error {
	if m.failAssetSave {
		return errors.New("save failed")
	}
	cp := *asset
	m.assets[asset.ID] = &cp
	return nil
}

func (m *memAssets) Delete(ctx context.Context, id string) error {
	if _, ok := m.assets[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.assets, id)
	return nil
}

type memTxs memStorage

func (m *memTxs) Get(ctx context.Context, id string) (*models.Transaction, error) {
	tx, ok := m.txs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return tx, nil
}

func (m *memTxs) List(ctx context.Context) ([]*models.Transaction, error) {
	out := make([]*models.Transaction, 0, len(m.txs))
	for _, tx := range m.txs {
		out = append(out, tx)
	}
	return out, nil
}

func (m *memTxs) ListByAsset(ctx context.Context, assetID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range m.txs {
		if tx.AssetID == assetID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *memTxs) Save(ctx context.Context, tx *models.Transaction) error {
	m.txs[tx.ID] = tx
	return nil
}

func (m *memTxs) Delete(ctx context.Context, id string) error {
	if _, ok := m.txs[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.txs, id)
	return nil
}

func (m *memTxs) DeleteByAsset(ctx context.Context, assetID string) (int, error) {
	n := 0
	for id, tx := range m.txs {
		if tx.AssetID == assetID {
			delete(m.txs, id)
			n++
		}
	}
	return n, nil
}

type memHistory memStorage

func (m *memHistory) List(ctx context.Context) ([]*models.PricePoint, error) {
	out := make([]*models.PricePoint, 0, len(m.points))
	for _, p := range m.points {
		out = append(out, p)
	}
	return out, nil
}

func (m *memHistory) Save(ctx context.Context, point *models.PricePoint) error {
	m.points[point.Day] = point
	return nil
}

type memSettings memStorage

func (m *memSettings) Get(ctx context.Context) (*models.Settings, error) {
	if m.settings == nil {
		defaults := models.DefaultSettings()
		return &defaults, nil
	}
	return m.settings, nil
}

func (m *memSettings) Save(ctx context.Context, settings *models.Settings) error {
	m.settings = settings
	return nil
}

var frozen = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *memStorage) *Service {
	return NewService(store, common.NewSilentLogger()).WithClock(func() time.Time { return frozen })
}

func TestCreate_AssignsIDAndDerives(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		ID:           "client-supplied",
		Name:         "TSMC",
		Type:         models.AssetStockTW,
		Symbol:       "2330",
		Amount:       10,
		Cost:         5000,
		CurrentPrice: 600,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "client-supplied", created.ID)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 6000.0, created.MarketValue)
	assert.Equal(t, 1000.0, created.Profit)
	assert.Equal(t, 20.0, created.ProfitPercentage)
	assert.Equal(t, frozen, created.LastUpdated)
}

func TestCreate_RejectsInvalid(t *testing.T) {
	svc := newTestService(newMemStorage())

	// Live-priced asset without a symbol cannot be quoted.
	_, err := svc.Create(context.Background(), &models.Asset{
		Name: "Nameless stock", Type: models.AssetStockUS,
	})
	assert.Error(t, err)
}

func TestCreate_MigratesLegacyNotes(t *testing.T) {
	svc := newTestService(newMemStorage())

	created, err := svc.Create(context.Background(), &models.Asset{
		Name:  "Aave Lending",
		Type:  models.AssetDeFi,
		Notes: `{"protocol":"Aave","type":"lending","blockchain":"Ethereum","apy":4.2}`,
	})
	require.NoError(t, err)
	require.NotNil(t, created.DeFi)
	assert.Equal(t, "Aave", created.DeFi.Protocol)
	assert.Empty(t, created.Notes)
}

func TestUpdate_PartialFieldsRecalculated(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		Name: "Bitcoin", Type: models.AssetCrypto, Symbol: "bitcoin",
		Amount: 1, Cost: 30000, CurrentPrice: 40000,
	})
	require.NoError(t, err)

	amount := 2.0
	updated, err := svc.Update(context.Background(), created.ID, interfaces.AssetUpdate{Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, 2.0, updated.Amount)
	assert.Equal(t, "Bitcoin", updated.Name, "untouched fields survive")
	assert.Equal(t, 80000.0, updated.MarketValue, "derived fields recomputed")
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newMemStorage())

	name := "x"
	_, err := svc.Update(context.Background(), "missing", interfaces.AssetUpdate{Name: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDelete_CascadesTransactions(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		Name: "Cash", Type: models.AssetCash, Amount: 100, Cost: 100,
	})
	require.NoError(t, err)

	_, err = svc.PostTransaction(context.Background(), &models.Transaction{
		AssetID: created.ID, Type: models.TransactionBuy, Amount: 50, Price: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	assert.Empty(t, store.assets)
	assert.Empty(t, store.txs)
}

func TestApplyPrice_Recalculates(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		Name: "Apple", Type: models.AssetStockUS, Symbol: "AAPL",
		Amount: 10, Cost: 1500, CurrentPrice: 150,
	})
	require.NoError(t, err)

	updated, err := svc.ApplyPrice(context.Background(), created.ID, 190)
	require.NoError(t, err)

	assert.Equal(t, 190.0, updated.CurrentPrice)
	assert.Equal(t, 1900.0, updated.MarketValue)
	assert.Equal(t, 400.0, updated.Profit)
}

func TestPostTransaction_BuyAdjustsHoldings(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		Name: "Ethereum", Type: models.AssetCrypto, Symbol: "ethereum",
		Amount: 1, Cost: 2000, CurrentPrice: 2500,
	})
	require.NoError(t, err)

	tx, err := svc.PostTransaction(context.Background(), &models.Transaction{
		AssetID: created.ID, Type: models.TransactionBuy, Amount: 2, Price: 2400,
	})
	require.NoError(t, err)

	assert.Equal(t, 4800.0, tx.Total, "total computed server-side")
	assert.Equal(t, frozen, tx.Date, "missing date defaults to now")

	asset, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, asset.Amount)
	assert.Equal(t, 6800.0, asset.Cost)
}

func TestPostTransaction_OversellRejected(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		Name: "Ethereum", Type: models.AssetCrypto, Symbol: "ethereum",
		Amount: 1, Cost: 2000,
	})
	require.NoError(t, err)

	_, err = svc.PostTransaction(context.Background(), &models.Transaction{
		AssetID: created.ID, Type: models.TransactionSell, Amount: 5, Price: 2500,
	})
	require.ErrorIs(t, err, models.ErrOversell)

	// The asset and the ledger are both untouched.
	asset, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, asset.Amount)
	assert.Empty(t, store.txs)
}

func TestPostTransaction_UnknownAsset(t *testing.T) {
	svc := newTestService(newMemStorage())

	_, err := svc.PostTransaction(context.Background(), &models.Transaction{
		AssetID: "missing", Type: models.TransactionBuy, Amount: 1, Price: 1,
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostTransaction_AssetSaveFailureLeavesNoRecord(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{
		Name: "Cash", Type: models.AssetCash, Amount: 10, Cost: 10,
	})
	require.NoError(t, err)

	store.failAssetSave = true
	_, err = svc.PostTransaction(context.Background(), &models.Transaction{
		AssetID: created.ID, Type: models.TransactionBuy, Amount: 1, Price: 1,
	})
	require.Error(t, err)
	assert.Empty(t, store.txs, "transaction must not be recorded when the asset write fails")
}

func TestTransactions_Filtering(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	a1, err := svc.Create(context.Background(), &models.Asset{Name: "A", Type: models.AssetCash, Amount: 100, Cost: 100})
	require.NoError(t, err)
	a2, err := svc.Create(context.Background(), &models.Asset{Name: "B", Type: models.AssetCash, Amount: 100, Cost: 100})
	require.NoError(t, err)

	for _, spec := range []struct {
		assetID string
		typ     models.TransactionType
	}{
		{a1.ID, models.TransactionBuy},
		{a1.ID, models.TransactionSell},
		{a2.ID, models.TransactionBuy},
	} {
		_, err := svc.PostTransaction(context.Background(), &models.Transaction{
			AssetID: spec.assetID, Type: spec.typ, Amount: 1, Price: 1,
		})
		require.NoError(t, err)
	}

	all, err := svc.Transactions(context.Background(), interfaces.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byAsset, err := svc.Transactions(context.Background(), interfaces.TransactionFilter{AssetID: a1.ID})
	require.NoError(t, err)
	assert.Len(t, byAsset, 2)

	buysOfA1, err := svc.Transactions(context.Background(), interfaces.TransactionFilter{
		AssetID: a1.ID, Type: models.TransactionBuy,
	})
	require.NoError(t, err)
	assert.Len(t, buysOfA1, 1)
}

func TestDeleteTransaction(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), &models.Asset{Name: "A", Type: models.AssetCash, Amount: 100, Cost: 100})
	require.NoError(t, err)

	tx, err := svc.PostTransaction(context.Background(), &models.Transaction{
		AssetID: created.ID, Type: models.TransactionBuy, Amount: 1, Price: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(context.Background(), tx.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(context.Background(), tx.ID), models.ErrNotFound)
}
