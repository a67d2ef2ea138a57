package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"finman/internal/core"
)

const transactionColumns = `id, user_id, from_user, to_user, amount_cents, kind, category, description, transaction_time`

// InsertTransaction inserts a transaction row and returns the assigned id.
// A zero Time defaults to now; times are stored as UTC text.
func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	when := t.Time
	if when.IsZero() {
		when = time.Now()
	}
	when = when.UTC().Truncate(time.Second)

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO transactions
		 (user_id, from_user, to_user, amount_cents, kind, category, description, transaction_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		t.UserID, t.FromUser, t.ToUser, t.Amount.Cents,
		string(t.Kind), string(t.Category), t.Description,
		when.Format(core.TimeLayout),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

// ListTransactions returns a user's transactions, newest first, capped at limit.
func (s *Store) ListTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY transaction_time DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// DeleteTransaction deletes by id and reports whether a row was removed.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteTransactionOwned deletes by id scoped to an owner, so a caller
// can only remove its own rows.
func (s *Store) DeleteTransactionOwned(ctx context.Context, id, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete owned transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete owned transaction rows affected: %w", err)
	}
	return n > 0, nil
}

// QueryTransactions applies the optional criteria conjunctively on top of
// the owner filter, newest first. Filter values are bound as parameters;
// the clause text never interpolates user input.
func (s *Store) QueryTransactions(ctx context.Context, userID int64, c core.Criteria) ([]core.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`)
	args := []any{userID}

	if c.TargetUser != "" {
		sb.WriteString(` AND (from_user LIKE ? ESCAPE '\' OR to_user LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(c.TargetUser) + "%"
		args = append(args, pattern, pattern)
	}
	if !c.StartTime.IsZero() {
		sb.WriteString(` AND transaction_time >= ?`)
		args = append(args, c.StartTime.UTC().Format(core.TimeLayout))
	}
	if !c.EndTime.IsZero() {
		sb.WriteString(` AND transaction_time <= ?`)
		args = append(args, c.EndTime.UTC().Format(core.TimeLayout))
	}
	if c.Kind != "" {
		sb.WriteString(` AND kind = ?`)
		args = append(args, string(c.Kind))
	}
	if c.Category != "" {
		sb.WriteString(` AND category = ?`)
		args = append(args, string(c.Category))
	}

	sb.WriteString(` ORDER BY transaction_time DESC, id DESC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// escapeLike neutralizes LIKE wildcards in user input so a literal "%" or
// "_" in a party name matches itself.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// scanTransaction maps one row back into the domain. Kind and category
// text must round-trip through the enum parsers: a row carrying unknown
// text fails the read instead of being silently defaulted.
func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t              core.Transaction
		kind, category string
		when           string
	)
	if err := rows.Scan(
		&t.ID, &t.UserID, &t.FromUser, &t.ToUser, &t.Amount.Cents,
		&kind, &category, &t.Description, &when,
	); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	var err error
	if t.Kind, err = core.ParseKind(kind); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: kind %q: %w", t.ID, kind, err)
	}
	if t.Category, err = core.ParseCategory(category); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: category %q: %w", t.ID, category, err)
	}
	if t.Time, err = time.ParseInLocation(core.TimeLayout, when, time.UTC); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: time %q: %w", t.ID, when, err)
	}
	return t, nil
}
