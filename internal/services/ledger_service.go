package services

import (
	"context"
	"log/slog"

	"finman/internal/core"
	"finman/internal/storage"
)

// DefaultListLimit caps ListForUser when the caller passes no limit.
const DefaultListLimit = 100

// LedgerService owns create/list/delete over transaction records.
type LedgerService struct {
	store *storage.Store
}

func NewLedgerService(store *storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// Add validates and inserts a transaction, returning the assigned id.
// Validation and storage faults are logged and surfaced as ok=false;
// Add never propagates an error to the caller.
func (s *LedgerService) Add(ctx context.Context, t core.Transaction) (int64, bool) {
	if err := t.Validate(); err != nil {
		slog.WarnContext(ctx, "Transaction rejected",
			"user_id", t.UserID, "kind", string(t.Kind), "category", string(t.Category), "error", err)
		return 0, false
	}

	id, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction insert failed",
			"user_id", t.UserID, "amount_cents", t.Amount.Cents, "error", err)
		return 0, false
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id, "user_id", t.UserID, "kind", string(t.Kind),
		"category", string(t.Category), "amount_cents", t.Amount.Cents)
	return id, true
}

// ListForUser returns the owner's transactions newest first. A limit of
// zero or less falls back to DefaultListLimit. Faults are logged and
// surfaced as an empty list, keeping the method total for the view layer.
func (s *LedgerService) ListForUser(ctx context.Context, userID int64, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	list, err := s.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction list failed", "user_id", userID, "error", err)
		return []core.Transaction{}
	}
	return list
}

// Delete removes a transaction by id, reporting whether a row was
// actually removed rather than whether the statement executed.
func (s *LedgerService) Delete(ctx context.Context, id int64) bool {
	removed, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction delete failed", "id", id, "error", err)
		return false
	}
	return removed
}

// DeleteForUser is Delete scoped to an owner: rows belonging to another
// user report false exactly like rows that never existed.
func (s *LedgerService) DeleteForUser(ctx context.Context, id, userID int64) bool {
	removed, err := s.store.DeleteTransactionOwned(ctx, id, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction delete failed", "id", id, "user_id", userID, "error", err)
		return false
	}
	return removed
}
