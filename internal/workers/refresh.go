package workers

import (
	"context"
	"time"

	trendssvc "hermes/internal/services/trends"
)

// TrendRefreshWorker warms the coin and topic caches on a fixed interval so
// interactive reads usually land on a valid cache entry. A failed refresh is
// logged and retried on the next tick; it never substitutes stale or mock
// data for the caches.
type TrendRefreshWorker struct {
	*BaseWorker
	service *trendssvc.Service
}

// NewTrendRefreshWorker creates the cache warming worker
func NewTrendRefreshWorker(service *trendssvc.Service, interval time.Duration, enabled bool) *TrendRefreshWorker {
	return &TrendRefreshWorker{
		BaseWorker: NewBaseWorker("trend_refresh", interval, enabled),
		service:    service,
	}
}

// Run refreshes both trend result kinds through the regular read path
func (w *TrendRefreshWorker) Run(ctx context.Context) error {
	coins, err := w.service.GetTrendingCoins(ctx)
	if err != nil {
		w.Log().Errorf("Trending coins refresh failed: %v", err)
		return err
	}

	topics, err := w.service.GetTrendingTopics(ctx)
	if err != nil {
		w.Log().Errorf("Trending topics refresh failed: %v", err)
		return err
	}

	w.Log().Infow("Trend caches refreshed", "coins", len(coins), "topics", len(topics))
	return nil
}
