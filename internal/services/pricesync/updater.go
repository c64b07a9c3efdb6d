// Package pricesync keeps live-priced assets current. A background updater
// polls the quote sources on a fixed interval and pushes changed prices to
// dashboard clients over WebSocket.
package pricesync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

// taiwanSuffix is Yahoo's exchange suffix for TWSE-listed symbols.
const taiwanSuffix = ".TW"

// ErrRefreshInProgress is returned by RefreshNow when a cycle is already
// running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Updater runs the periodic price refresh.
type Updater struct {
	assets   interfaces.AssetService
	equity   interfaces.EquityQuoteClient
	crypto   interfaces.CryptoQuoteClient
	hub      *PriceWSHub
	interval time.Duration
	logger   *common.Logger
	now      func() time.Time

	mu      sync.Mutex
	cycling bool

	cancel  context.CancelFunc
	stopped chan struct{}
	wg      sync.WaitGroup
	started bool
}

// NewUpdater creates the price updater. The hub may be nil when no
// WebSocket push is wanted.
func NewUpdater(assets interfaces.AssetService, equity interfaces.EquityQuoteClient, crypto interfaces.CryptoQuoteClient, hub *PriceWSHub, interval time.Duration, logger *common.Logger) *Updater {
	return &Updater{
		assets:   assets,
		equity:   equity,
		crypto:   crypto,
		hub:      hub,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (u *Updater) WithClock(now func() time.Time) *Updater {
	u.now = now
	return u
}

// Start launches the refresh loop. The first cycle runs immediately, then
// every interval until Stop.
func (u *Updater) Start() {
	u.mu.Lock()
	if u.started {
		u.mu.Unlock()
		return
	}
	u.started = true
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.stopped = make(chan struct{})
	u.mu.Unlock()

	go func() {
		defer close(u.stopped)

		u.logger.Info().Dur("interval", u.interval).Msg("Price updater started")

		u.runCycle(ctx)

		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				u.runCycle(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for in-flight fetches to settle.
func (u *Updater) Stop() {
	u.mu.Lock()
	if !u.started {
		u.mu.Unlock()
		return
	}
	u.started = false
	cancel := u.cancel
	stopped := u.stopped
	u.mu.Unlock()

	cancel()
	<-stopped
	u.wg.Wait()
	u.logger.Info().Msg("Price updater stopped")
}

// RefreshNow runs one cycle outside the schedule. Used by the manual
// refresh endpoint.
func (u *Updater) RefreshNow(ctx context.Context) error {
	u.mu.Lock()
	if u.cycling {
		u.mu.Unlock()
		return ErrRefreshInProgress
	}
	u.mu.Unlock()

	u.runCycle(ctx)
	return nil
}

// runCycle snapshots the asset list once and refreshes each live-priced
// asset. The cycle blocks until every fetch settles and the cycling guard
// keeps cycles from overlapping, so a slow quote source cannot pile up
// duplicate requests for the same asset.
func (u *Updater) runCycle(ctx context.Context) {
	u.mu.Lock()
	if u.cycling {
		u.mu.Unlock()
		return
	}
	u.cycling = true
	u.mu.Unlock()
	defer func() {
		u.mu.Lock()
		u.cycling = false
		u.mu.Unlock()
	}()

	assets, err := u.assets.List(ctx)
	if err != nil {
		u.logger.Error().Err(err).Msg("Price cycle: failed to list assets")
		return
	}

	var cycleWG sync.WaitGroup
	updated := 0
	var updatedMu sync.Mutex

	for _, asset := range assets {
		if !asset.Type.LivePriced() || asset.Symbol == "" {
			continue
		}

		cycleWG.Add(1)
		u.wg.Add(1)
		go func(asset *models.Asset) {
			defer cycleWG.Done()
			defer u.wg.Done()

			if u.refreshAsset(ctx, asset) {
				updatedMu.Lock()
				updated++
				updatedMu.Unlock()
			}
		}(asset)
	}

	cycleWG.Wait()

	if updated > 0 {
		u.logger.Info().Int("updated", updated).Msg("Price cycle complete")
	}
}

// refreshAsset fetches one quote and applies it when the price moved.
// Errors are logged and swallowed so one bad symbol cannot starve the rest
// of the cycle. Reports whether the asset was updated.
func (u *Updater) refreshAsset(ctx context.Context, asset *models.Asset) bool {
	price, err := u.fetchPrice(ctx, asset)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		u.logger.Warn().Err(err).
			Str("id", asset.ID).
			Str("symbol", asset.Symbol).
			Str("type", string(asset.Type)).
			Msg("Quote fetch failed")
		return false
	}

	if price == asset.CurrentPrice {
		return false
	}

	updated, err := u.assets.ApplyPrice(ctx, asset.ID, price)
	if err != nil {
		u.logger.Warn().Err(err).Str("id", asset.ID).Msg("Failed to apply price")
		return false
	}

	if u.hub != nil {
		u.hub.Broadcast(PriceEvent{
			AssetID:     updated.ID,
			Name:        updated.Name,
			Type:        updated.Type,
			Symbol:      updated.Symbol,
			Price:       updated.CurrentPrice,
			MarketValue: updated.MarketValue,
			Profit:      updated.Profit,
			UpdatedAt:   u.now(),
		})
	}

	return true
}

// fetchPrice routes the asset to its quote source. Taiwan equities get the
// exchange suffix appended, US equities pass through verbatim, crypto
// symbols are CoinGecko coin ids.
func (u *Updater) fetchPrice(ctx context.Context, asset *models.Asset) (float64, error) {
	switch asset.Type {
	case models.AssetStockTW:
		symbol := asset.Symbol
		if !strings.HasSuffix(symbol, taiwanSuffix) {
			symbol += taiwanSuffix
		}
		return u.equity.GetPrice(ctx, symbol)
	case models.AssetStockUS:
		return u.equity.GetPrice(ctx, asset.Symbol)
	case models.AssetCrypto:
		return u.crypto.GetPrice(ctx, asset.Symbol)
	default:
		return 0, errors.New("asset type has no quote source")
	}
}
