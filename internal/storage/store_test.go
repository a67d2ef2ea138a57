package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finman/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "finman.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func at(y, m, d, hh int) time.Time {
	return time.Date(y, time.Month(m), d, hh, 0, 0, 0, time.UTC)
}

func seedUser(t *testing.T, s *Store, name string) *core.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "hash", name+"@example.com")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func seedTx(t *testing.T, s *Store, userID int64, kind core.Kind, cat core.Category, cents int64, when time.Time) int64 {
	t.Helper()
	id, err := s.InsertTransaction(context.Background(), core.Transaction{
		UserID:   userID,
		FromUser: "alice",
		ToUser:   "bob",
		Amount:   core.Money{Cents: cents},
		Kind:     kind,
		Category: cat,
		Time:     when,
	})
	if err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
	return id
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateUser(ctx, "alice", "h1", "a@example.com")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected assigned id")
	}

	if _, err := s.CreateUser(ctx, "alice", "h2", "other@example.com"); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Fatalf("duplicate registration mutated state: %d users", n)
	}
}

func TestGetUserByUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, s, "alice")

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil {
		t.Fatal("expected user")
	}
	if got.ID != created.ID || got.Email != created.Email || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, created)
	}

	// Username matching is case-sensitive.
	if got, err := s.GetUserByUsername(ctx, "Alice"); err != nil || got != nil {
		t.Fatalf("expected no match for different case, got %+v, %v", got, err)
	}

	ok, err := s.UserExists(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("UserExists(alice) = %v, %v", ok, err)
	}
	ok, err = s.UserExists(ctx, "nobody")
	if err != nil || ok {
		t.Fatalf("UserExists(nobody) = %v, %v", ok, err)
	}
}

func TestListTransactionsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	oldest := seedTx(t, s, u.ID, core.Expense, core.Food, 100, at(2024, 1, 1, 9))
	middle := seedTx(t, s, u.ID, core.Expense, core.Transport, 200, at(2024, 1, 2, 9))
	newest := seedTx(t, s, u.ID, core.Income, core.Salary, 300, at(2024, 1, 3, 9))

	list, err := s.ListTransactions(ctx, u.ID, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(list))
	}
	if list[0].ID != newest || list[1].ID != middle || list[2].ID != oldest {
		t.Fatalf("wrong order: %d, %d, %d", list[0].ID, list[1].ID, list[2].ID)
	}

	list, err = s.ListTransactions(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(list) != 2 || list[0].ID != newest {
		t.Fatalf("limit not applied: %d rows", len(list))
	}

	// Other users' rows never leak in.
	other := seedUser(t, s, "bob")
	list, err = s.ListTransactions(ctx, other.ID, 100)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for other user, got %d", len(list))
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	id := seedTx(t, s, u.ID, core.Expense, core.Food, 100, at(2024, 1, 1, 9))

	removed, err := s.DeleteTransaction(ctx, id)
	if err != nil || !removed {
		t.Fatalf("delete existing = %v, %v", removed, err)
	}

	list, err := s.ListTransactions(ctx, u.ID, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted row still listed")
	}

	removed, err = s.DeleteTransaction(ctx, id)
	if err != nil || removed {
		t.Fatalf("delete missing = %v, %v; want false, nil", removed, err)
	}
}

func TestQueryTransactionsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	a := seedTx(t, s, u.ID, core.Expense, core.Food, 1000, at(2024, 1, 5, 12))
	b, err := s.InsertTransaction(ctx, core.Transaction{
		UserID:   u.ID,
		FromUser: "ACME Corp",
		ToUser:   "alice",
		Amount:   core.Money{Cents: 250000},
		Kind:     core.Income,
		Category: core.Salary,
		Time:     at(2024, 2, 1, 9),
	})
	if err != nil {
		t.Fatalf("insert salary: %v", err)
	}

	cases := []struct {
		name string
		c    core.Criteria
		want []int64
	}{
		{"no filters", core.Criteria{}, []int64{b, a}},
		{"kind expense", core.Criteria{Kind: core.Expense}, []int64{a}},
		{"kind expense after feb", core.Criteria{Kind: core.Expense, StartTime: at(2024, 2, 1, 0)}, []int64{}},
		{"category salary", core.Criteria{Category: core.Salary}, []int64{b}},
		{"end bound inclusive", core.Criteria{EndTime: at(2024, 1, 5, 12)}, []int64{a}},
		{"start bound inclusive", core.Criteria{StartTime: at(2024, 2, 1, 9)}, []int64{b}},
		{"target substring from_user", core.Criteria{TargetUser: "acme"}, []int64{b}},
		{"target substring to_user", core.Criteria{TargetUser: "bob"}, []int64{a}},
		{"target no match", core.Criteria{TargetUser: "charlie"}, []int64{}},
		{"combined", core.Criteria{TargetUser: "acme", Kind: core.Income, StartTime: at(2024, 1, 1, 0), EndTime: at(2024, 12, 31, 23)}, []int64{b}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.QueryTransactions(ctx, u.ID, tc.c)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d rows, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i].ID != tc.want[i] {
					t.Fatalf("row %d: got id %d, want %d", i, got[i].ID, tc.want[i])
				}
			}
		})
	}
}

func TestQueryTransactionsLikeWildcardsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	seedTx(t, s, u.ID, core.Expense, core.Food, 100, at(2024, 1, 1, 9))

	// A bare "%" must not match everything.
	got, err := s.QueryTransactions(ctx, u.ID, core.Criteria{TargetUser: "%"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("wildcard treated as pattern: matched %d rows", len(got))
	}
}

func TestPeriodStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	seedTx(t, s, u.ID, core.Income, core.Salary, 10000, at(2024, 3, 10, 9))
	seedTx(t, s, u.ID, core.Expense, core.Food, 4000, at(2024, 3, 15, 13))
	// Outside the window.
	seedTx(t, s, u.ID, core.Expense, core.Shopping, 9999, at(2024, 4, 2, 10))

	stats, err := s.PeriodStats(ctx, u.ID, at(2024, 3, 1, 0), at(2024, 3, 31, 23))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalIncome.Cents != 10000 {
		t.Fatalf("total income = %d", stats.TotalIncome.Cents)
	}
	if stats.TotalExpense.Cents != 4000 {
		t.Fatalf("total expense = %d", stats.TotalExpense.Cents)
	}
	if stats.NetAmount.Cents != 6000 {
		t.Fatalf("net = %d", stats.NetAmount.Cents)
	}
	if stats.TransactionCount != 2 {
		t.Fatalf("count = %d", stats.TransactionCount)
	}
	if len(stats.ByCategory) != 2 {
		t.Fatalf("breakdown rows = %d", len(stats.ByCategory))
	}
	// Descending by amount: salary 10000, food 4000.
	if stats.ByCategory[0].Category != core.Salary || stats.ByCategory[0].Amount.Cents != 10000 {
		t.Fatalf("breakdown[0] = %+v", stats.ByCategory[0])
	}
	if stats.ByCategory[1].Category != core.Food || stats.ByCategory[1].Amount.Cents != 4000 {
		t.Fatalf("breakdown[1] = %+v", stats.ByCategory[1])
	}
}

func TestPeriodStatsEmptyWindow(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice")

	stats, err := s.PeriodStats(context.Background(), u.ID, at(2020, 1, 1, 0), at(2020, 12, 31, 23))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalIncome.Cents != 0 || stats.TotalExpense.Cents != 0 ||
		stats.NetAmount.Cents != 0 || stats.TransactionCount != 0 {
		t.Fatalf("expected all-zero stats, got %+v", stats)
	}
	if len(stats.ByCategory) != 0 {
		t.Fatalf("expected empty breakdown, got %d rows", len(stats.ByCategory))
	}
}

func TestTopCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	seedTx(t, s, u.ID, core.Expense, core.Food, 3000, at(2024, 3, 1, 9))
	seedTx(t, s, u.ID, core.Expense, core.Food, 2000, at(2024, 3, 2, 9))
	seedTx(t, s, u.ID, core.Expense, core.Transport, 4000, at(2024, 3, 3, 9))
	// Income never ranks.
	seedTx(t, s, u.ID, core.Income, core.Salary, 100000, at(2024, 3, 4, 9))

	ranks, err := s.TopCategories(ctx, u.ID, 10, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("top categories: %v", err)
	}
	if len(ranks) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(ranks))
	}
	if ranks[0].Category != core.Food || ranks[0].Amount.Cents != 5000 || ranks[0].Count != 2 {
		t.Fatalf("ranks[0] = %+v", ranks[0])
	}
	if ranks[1].Category != core.Transport || ranks[1].Amount.Cents != 4000 || ranks[1].Count != 1 {
		t.Fatalf("ranks[1] = %+v", ranks[1])
	}

	ranks, err = s.TopCategories(ctx, u.ID, 1, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("top categories limited: %v", err)
	}
	if len(ranks) != 1 || ranks[0].Category != core.Food {
		t.Fatalf("limit not applied: %+v", ranks)
	}

	// Bounded window excluding the transport row.
	ranks, err = s.TopCategories(ctx, u.ID, 10, at(2024, 3, 1, 0), at(2024, 3, 2, 23))
	if err != nil {
		t.Fatalf("top categories bounded: %v", err)
	}
	if len(ranks) != 1 || ranks[0].Category != core.Food {
		t.Fatalf("window not applied: %+v", ranks)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")
	seedTx(t, s, u.ID, core.Expense, core.Food, 100, at(2024, 1, 1, 9))

	removed, err := s.DeleteUser(ctx, u.ID)
	if err != nil || !removed {
		t.Fatalf("delete user = %v, %v", removed, err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if n != 0 {
		t.Fatalf("cascade delete left %d transactions", n)
	}
}

func TestScanRejectsUnknownEnumText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "alice")

	// Write a corrupted row behind the domain layer's back.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, from_user, to_user, amount_cents, kind, category, description, transaction_time)
		 VALUES (?, 'a', 'b', 100, 'refund', 'food', '', '2024-01-01 00:00:00')`, u.ID)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	if _, err := s.ListTransactions(ctx, u.ID, 100); err == nil {
		t.Fatal("expected read to fail fast on unknown kind text")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finman.db")

	s1, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}
