package storage

import (
	"context"
	"fmt"
	"time"

	"finman/internal/core"
)

// PeriodStats aggregates a user's ledger over [start, end] inclusive.
// Missing aggregates resolve to zero via COALESCE; an empty window yields
// an all-zero result with an empty breakdown, not an error.
func (s *Store) PeriodStats(ctx context.Context, userID int64, start, end time.Time) (core.PeriodStats, error) {
	var stats core.PeriodStats

	startText := start.UTC().Format(core.TimeLayout)
	endText := end.UTC().Format(core.TimeLayout)

	err := s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0),
			COUNT(*)
		 FROM transactions
		 WHERE user_id = ? AND transaction_time BETWEEN ? AND ?`,
		userID, startText, endText,
	).Scan(&stats.TotalIncome.Cents, &stats.TotalExpense.Cents, &stats.TransactionCount)
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("period totals: %w", err)
	}
	stats.NetAmount.Cents = stats.TotalIncome.Cents - stats.TotalExpense.Cents

	// Breakdown groups by category across both kinds, mirroring what the
	// summary view has always displayed.
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS category_amount
		 FROM transactions
		 WHERE user_id = ? AND transaction_time BETWEEN ? AND ?
		 GROUP BY category
		 ORDER BY category_amount DESC`,
		userID, startText, endText,
	)
	if err != nil {
		return core.PeriodStats{}, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	stats.ByCategory = []core.CategoryAmount{}
	for rows.Next() {
		var (
			category string
			ca       core.CategoryAmount
		)
		if err := rows.Scan(&category, &ca.Amount.Cents); err != nil {
			return core.PeriodStats{}, fmt.Errorf("scan category breakdown: %w", err)
		}
		if ca.Category, err = core.ParseCategory(category); err != nil {
			return core.PeriodStats{}, fmt.Errorf("category breakdown %q: %w", category, err)
		}
		stats.ByCategory = append(stats.ByCategory, ca)
	}
	if err := rows.Err(); err != nil {
		return core.PeriodStats{}, fmt.Errorf("iterate category breakdown: %w", err)
	}

	return stats, nil
}

// TopCategories ranks expense categories by summed amount, descending,
// truncated to limit. The time bounds apply only when both are set,
// matching the historical contract of the statistics view.
func (s *Store) TopCategories(ctx context.Context, userID int64, limit int, start, end time.Time) ([]core.CategoryRank, error) {
	query := `SELECT category, SUM(amount_cents) AS total_amount, COUNT(*) AS cnt
		 FROM transactions
		 WHERE user_id = ? AND kind = 'expense'`
	args := []any{userID}

	if !start.IsZero() && !end.IsZero() {
		query += ` AND transaction_time BETWEEN ? AND ?`
		args = append(args, start.UTC().Format(core.TimeLayout), end.UTC().Format(core.TimeLayout))
	}

	query += ` GROUP BY category ORDER BY total_amount DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	ranks := []core.CategoryRank{}
	for rows.Next() {
		var (
			category string
			r        core.CategoryRank
		)
		if err := rows.Scan(&category, &r.Amount.Cents, &r.Count); err != nil {
			return nil, fmt.Errorf("scan top category: %w", err)
		}
		if r.Category, err = core.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("top category %q: %w", category, err)
		}
		ranks = append(ranks, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top categories: %w", err)
	}

	return ranks, nil
}
