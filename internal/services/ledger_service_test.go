package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"finman/internal/core"
	"finman/internal/storage"
)

type fixture struct {
	store  *storage.Store
	ledger *LedgerService
	query  *QueryService
	stats  *StatsService
	userID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	auth := NewAuthService(store, bcrypt.MinCost)
	user, err := auth.Register(context.Background(), "alice", "pw", "")
	if err != nil {
		t.Fatalf("register fixture user: %v", err)
	}
	return &fixture{
		store:  store,
		ledger: NewLedgerService(store),
		query:  NewQueryService(store),
		stats:  NewStatsService(store),
		userID: user.ID,
	}
}

func (f *fixture) tx(kind core.Kind, cat core.Category, cents int64, when time.Time) core.Transaction {
	return core.Transaction{
		UserID:   f.userID,
		FromUser: "alice",
		ToUser:   "bob",
		Amount:   core.Money{Cents: cents},
		Kind:     kind,
		Category: cat,
		Time:     when,
	}
}

func TestLedgerAddListDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, ok := f.ledger.Add(ctx, f.tx(core.Expense, core.Food, 1234, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)))
	if !ok || id == 0 {
		t.Fatalf("add = (%d, %v)", id, ok)
	}

	list := f.ledger.ListForUser(ctx, f.userID, 0)
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("list after add: %+v", list)
	}
	if list[0].Amount.Cents != 1234 || list[0].Category != core.Food {
		t.Fatalf("round-trip mismatch: %+v", list[0])
	}

	if !f.ledger.Delete(ctx, id) {
		t.Fatal("delete existing returned false")
	}
	if len(f.ledger.ListForUser(ctx, f.userID, 0)) != 0 {
		t.Fatal("deleted transaction still listed")
	}
	if f.ledger.Delete(ctx, id) {
		t.Fatal("delete of missing id returned true")
	}
}

func TestLedgerAddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bad := f.tx(core.Expense, core.Food, 1234, time.Now())
	bad.Kind = "refund"
	if id, ok := f.ledger.Add(ctx, bad); ok {
		t.Fatalf("invalid kind accepted, id=%d", id)
	}

	bad = f.tx(core.Expense, core.Food, 0, time.Now())
	if _, ok := f.ledger.Add(ctx, bad); ok {
		t.Fatal("zero amount accepted")
	}

	if len(f.ledger.ListForUser(ctx, f.userID, 0)) != 0 {
		t.Fatal("rejected transactions were stored")
	}
}

func TestLedgerListOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	times := []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	for _, tm := range times {
		if _, ok := f.ledger.Add(ctx, f.tx(core.Expense, core.Other, 100, tm)); !ok {
			t.Fatal("add failed")
		}
	}

	list := f.ledger.ListForUser(ctx, f.userID, 0)
	if len(list) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Time.After(list[i-1].Time) {
			t.Fatalf("rows out of order at %d: %v after %v", i, list[i].Time, list[i-1].Time)
		}
	}

	if got := f.ledger.ListForUser(ctx, f.userID, 2); len(got) != 2 {
		t.Fatalf("limit 2 returned %d rows", len(got))
	}
}

func TestQueryServiceFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	aID, _ := f.ledger.Add(ctx, f.tx(core.Expense, core.Food, 1000, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	salary := f.tx(core.Income, core.Salary, 250000, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	salary.FromUser = "ACME Corp"
	salary.ToUser = "alice"
	f.ledger.Add(ctx, salary)

	got, err := f.query.Query(ctx, f.userID, core.Criteria{Kind: core.Expense})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != aID {
		t.Fatalf("kind=expense: %+v", got)
	}

	// Same filter set plus a start bound past A: empty.
	got, err = f.query.Query(ctx, f.userID, core.Criteria{
		Kind:      core.Expense,
		StartTime: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestQueryServiceRejectsBadEnums(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.query.Query(ctx, f.userID, core.Criteria{Kind: "refund"}); err == nil {
		t.Fatal("expected error for invalid kind filter")
	}
	if _, err := f.query.Query(ctx, f.userID, core.Criteria{Category: "misc"}); err == nil {
		t.Fatal("expected error for invalid category filter")
	}
}

func TestStatsServicePeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Add(ctx, f.tx(core.Income, core.Salary, 10000, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	f.ledger.Add(ctx, f.tx(core.Expense, core.Food, 4000, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))

	stats, err := f.stats.PeriodStats(ctx, f.userID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("period stats: %v", err)
	}
	if stats.TotalIncome.Decimal() != "100.00" ||
		stats.TotalExpense.Decimal() != "40.00" ||
		stats.NetAmount.Decimal() != "60.00" ||
		stats.TransactionCount != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsServiceTopCategoriesDefaultLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.ledger.Add(ctx, f.tx(core.Expense, core.Food, 500, time.Now()))

	ranks, err := f.stats.TopCategories(ctx, f.userID, 0, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("top categories: %v", err)
	}
	if len(ranks) != 1 || ranks[0].Category != core.Food {
		t.Fatalf("unexpected ranks: %+v", ranks)
	}
}
