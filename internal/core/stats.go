package core

import "time"

// CategoryAmount is an amount aggregated under a single category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// PeriodStats summarizes a user's ledger over an inclusive time window.
// ByCategory groups by category across both kinds, so a category that saw
// income and expense rows carries their combined total.
type PeriodStats struct {
	TotalIncome      Money
	TotalExpense     Money
	NetAmount        Money
	TransactionCount int64
	ByCategory       []CategoryAmount
}

// CategoryRank is one row of a top-spending-categories ranking.
type CategoryRank struct {
	Category Category
	Amount   Money
	Count    int64
}

// Criteria is the optional, composable filter set for ledger queries.
// Zero values mean "unset": each present filter is combined with AND,
// absent filters impose no constraint.
type Criteria struct {
	// TargetUser substring-matches either party name, case-insensitive.
	TargetUser string
	// StartTime and EndTime are inclusive bounds on the transaction time.
	StartTime time.Time
	EndTime   time.Time
	Kind      Kind
	Category  Category
}

// IsZero reports whether no filter is set.
func (c Criteria) IsZero() bool {
	return c.TargetUser == "" && c.StartTime.IsZero() && c.EndTime.IsZero() &&
		c.Kind == "" && c.Category == ""
}
