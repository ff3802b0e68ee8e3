package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
)

const statsLoadTimeout = 30 * time.Second

// DashboardUseCase serves the back-office headline figures.
type DashboardUseCase struct {
	statsRepo StatsRepository
	cache     Cache
	ttl       time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	// loads collapses concurrent misses into one aggregate query.
	loads singleflight.Group
}

// NewDashboardUseCase creates a new DashboardUseCase. A nil cache disables caching.
func NewDashboardUseCase(statsRepo StatsRepository, cache Cache, ttl time.Duration, metrics *metrics.Metrics, logger zerolog.Logger) *DashboardUseCase {
	if ttl <= 0 {
		ttl = DefaultStatsCacheTTL
	}

	return &DashboardUseCase{
		statsRepo: statsRepo,
		cache:     cache,
		ttl:       ttl,
		metrics:   metrics,
		logger:    logger,
	}
}

// Stats returns the dashboard figures, at most ttl old. Cache failures fall
// back to the database.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if stats := uc.cached(ctx); stats != nil {
		return stats, nil
	}

	// The shared load outlives any one caller; each caller still honours
	// its own ctx while waiting.
	loading := uc.loads.DoChan(DashboardStatsCacheKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsLoadTimeout)
		defer cancel()
		return uc.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-loading:
		if res.Err != nil {
			return nil, res.Err
		}
		stats := *res.Val.(*domain.DashboardStats)
		return &stats, nil
	}
}

func (uc *DashboardUseCase) load(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := uc.statsRepo.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = time.Now().UTC()

	if uc.cache != nil {
		data, err := json.Marshal(stats)
		if err == nil {
			err = uc.cache.Set(ctx, DashboardStatsCacheKey, data, uc.ttl)
		}
		if err != nil {
			uc.logger.Warn().Err(err).Msg("failed to cache dashboard stats")
		}
	}

	return stats, nil
}

func (uc *DashboardUseCase) cached(ctx context.Context) *domain.DashboardStats {
	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Get(ctx, DashboardStatsCacheKey)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("dashboard stats cache unavailable")
		uc.countLookup("error")
		return nil
	}
	if data == nil {
		uc.countLookup("miss")
		return nil
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		uc.countLookup("error")
		return nil
	}

	uc.countLookup("hit")
	return &stats
}

func (uc *DashboardUseCase) countLookup(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
