package http

import (
	"finman/internal/core"
)

type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type transactionPayload struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	FromUser    string `json:"from_user"`
	ToUser      string `json:"to_user"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

type categoryAmountPayload struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type periodStatsPayload struct {
	TotalIncome       string                  `json:"total_income"`
	TotalExpense      string                  `json:"total_expense"`
	NetAmount         string                  `json:"net_amount"`
	TransactionCount  int64                   `json:"transaction_count"`
	CategoryBreakdown []categoryAmountPayload `json:"category_breakdown"`
}

type categoryRankPayload struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Count    int64  `json:"count"`
}

func toUserPayload(u *core.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(core.TimeLayout),
	}
}

func toTransactionPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:          t.ID,
		UserID:      t.UserID,
		FromUser:    t.FromUser,
		ToUser:      t.ToUser,
		Amount:      t.Amount.Decimal(),
		Kind:        string(t.Kind),
		Category:    string(t.Category),
		Description: t.Description,
		Time:        t.Time.Format(core.TimeLayout),
	}
}

func toTransactionPayloads(list []core.Transaction) []transactionPayload {
	out := make([]transactionPayload, len(list))
	for i, t := range list {
		out[i] = toTransactionPayload(t)
	}
	return out
}

func toPeriodStatsPayload(s core.PeriodStats) periodStatsPayload {
	breakdown := make([]categoryAmountPayload, len(s.ByCategory))
	for i, ca := range s.ByCategory {
		breakdown[i] = categoryAmountPayload{
			Category: string(ca.Category),
			Amount:   ca.Amount.Decimal(),
		}
	}
	return periodStatsPayload{
		TotalIncome:       s.TotalIncome.Decimal(),
		TotalExpense:      s.TotalExpense.Decimal(),
		NetAmount:         s.NetAmount.Decimal(),
		TransactionCount:  s.TransactionCount,
		CategoryBreakdown: breakdown,
	}
}

func toCategoryRankPayloads(ranks []core.CategoryRank) []categoryRankPayload {
	out := make([]categoryRankPayload, len(ranks))
	for i, r := range ranks {
		out[i] = categoryRankPayload{
			Category: string(r.Category),
			Amount:   r.Amount.Decimal(),
			Count:    r.Count,
		}
	}
	return out
}
