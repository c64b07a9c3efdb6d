// Package history records daily portfolio value snapshots and renders them
// as charts for the dashboard.
package history

import (
	"context"
	"time"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

const dayFormat = "2006-01-02"

// Service implements interfaces.HistoryService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates the history service.
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

// Snapshot sums the current portfolio into today's price point. One point
// per day; a later snapshot on the same day replaces the earlier one.
func (s *Service) Snapshot(ctx context.Context) (*models.PricePoint, error) {
	assets, err := s.storage.Assets().List(ctx)
	if err != nil {
		return nil, err
	}

	var totalValue, totalCost float64
	for _, a := range assets {
		totalValue += a.MarketValue
		totalCost += a.Cost
	}

	now := s.now()
	point := &models.PricePoint{
		Day:        now.Format(dayFormat),
		Date:       now,
		TotalValue: totalValue,
		TotalCost:  totalCost,
	}

	if err := s.storage.PriceHistory().Save(ctx, point); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("day", point.Day).
		Float64("total_value", totalValue).
		Float64("total_cost", totalCost).
		Msg("Portfolio snapshot recorded")

	return point, nil
}

// List returns all recorded points, oldest first.
func (s *Service) List(ctx context.Context) ([]*models.PricePoint, error) {
	return s.storage.PriceHistory().List(ctx)
}

// RenderGrowthChart renders the recorded history as a PNG line chart.
func (s *Service) RenderGrowthChart(ctx context.Context) ([]byte, error) {
	points, err := s.storage.PriceHistory().List(ctx)
	if err != nil {
		return nil, err
	}
	return renderGrowthChart(points)
}

// RenderAllocationChart renders current market value grouped by asset type
// as a PNG donut chart.
func (s *Service) RenderAllocationChart(ctx context.Context) ([]byte, error) {
	assets, err := s.storage.Assets().List(ctx)
	if err != nil {
		return nil, err
	}
	return renderAllocationChart(assets)
}
