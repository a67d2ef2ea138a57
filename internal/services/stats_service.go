package services

import (
	"context"
	"fmt"
	"time"

	"finman/internal/core"
	"finman/internal/storage"
)

// DefaultTopLimit caps TopCategories when the caller passes no limit.
const DefaultTopLimit = 10

// StatsService computes sums, counts, and category breakdowns over a
// time range.
type StatsService struct {
	store *storage.Store
}

func NewStatsService(store *storage.Store) *StatsService {
	return &StatsService{store: store}
}

// PeriodStats aggregates the window [start, end] inclusive. A window with
// no transactions yields zero-valued totals and an empty breakdown.
func (s *StatsService) PeriodStats(ctx context.Context, userID int64, start, end time.Time) (core.PeriodStats, error) {
	stats, err := s.store.PeriodStats(ctx, userID, start, end)
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("period stats: %w", err)
	}
	return stats, nil
}

// TopCategories ranks expense categories by descending summed amount.
// A limit of zero or less falls back to DefaultTopLimit; the optional
// window applies when both bounds are set.
func (s *StatsService) TopCategories(ctx context.Context, userID int64, limit int, start, end time.Time) ([]core.CategoryRank, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	ranks, err := s.store.TopCategories(ctx, userID, limit, start, end)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	return ranks, nil
}
