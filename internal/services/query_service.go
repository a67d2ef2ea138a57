package services

import (
	"context"
	"fmt"

	"finman/internal/core"
	"finman/internal/storage"
)

// QueryService builds filtered, parameterized lookups over a user's ledger.
type QueryService struct {
	store *storage.Store
}

func NewQueryService(store *storage.Store) *QueryService {
	return &QueryService{store: store}
}

// Query applies the optional criteria conjunctively and returns matches
// newest first. Present enum filters are validated up front so a typo'd
// kind or category is rejected rather than matching nothing by accident.
func (s *QueryService) Query(ctx context.Context, userID int64, c core.Criteria) ([]core.Transaction, error) {
	if c.Kind != "" {
		if err := c.Kind.Validate(); err != nil {
			return nil, err
		}
	}
	if c.Category != "" {
		if err := c.Category.Validate(); err != nil {
			return nil, err
		}
	}

	list, err := s.store.QueryTransactions(ctx, userID, c)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return list, nil
}
