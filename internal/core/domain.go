package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Transfer      Category = "transfer"
	Payment       Category = "payment"
	RedPacket     Category = "red_packet"
	Salary        Category = "salary"
	Food          Category = "food"
	Transport     Category = "transport"
	Entertainment Category = "entertainment"
	Shopping      Category = "shopping"
	Other         Category = "other"
)

// TimeLayout is the textual timestamp layout used everywhere a transaction
// time is stored or exchanged. All times are UTC so lexicographic comparison
// in SQL matches chronological order.
const TimeLayout = "2006-01-02 15:04:05"

type (
	// Kind classifies a transaction as money coming in or going out.
	Kind string

	// Category is the closed classification tag for a transaction.
	Category string

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		Email        string
		CreatedAt    time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		FromUser    string
		ToUser      string
		Amount      Money
		Kind        Kind
		Category    Category
		Description string
		Time        time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyParty      = errors.New("empty party name")
	ErrEmptyUsername   = errors.New("empty username")
)

var kinds = map[string]Kind{
	string(Income):  Income,
	string(Expense): Expense,
}

var categories = map[string]Category{
	string(Transfer):      Transfer,
	string(Payment):       Payment,
	string(RedPacket):     RedPacket,
	string(Salary):        Salary,
	string(Food):          Food,
	string(Transport):     Transport,
	string(Entertainment): Entertainment,
	string(Shopping):      Shopping,
	string(Other):         Other,
}

// ParseKind maps stored text back onto a Kind. Unrecognized text is an
// error, never coerced: kind correctness is load-bearing for aggregation.
func ParseKind(s string) (Kind, error) {
	if k, ok := kinds[s]; ok {
		return k, nil
	}
	return "", ErrInvalidKind
}

// ParseCategory maps stored text back onto a Category, rejecting unknowns.
func ParseCategory(s string) (Category, error) {
	if c, ok := categories[s]; ok {
		return c, nil
	}
	return "", ErrInvalidCategory
}

// Categories returns every valid category in a stable order.
func Categories() []Category {
	return []Category{
		Transfer, Payment, RedPacket, Salary, Food,
		Transport, Entertainment, Shopping, Other,
	}
}

func (k Kind) Validate() error {
	if _, ok := kinds[string(k)]; !ok {
		return ErrInvalidKind
	}
	return nil
}

func (c Category) Validate() error {
	if _, ok := categories[string(c)]; !ok {
		return ErrInvalidCategory
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return errors.New("missing owner id")
	}
	if strings.TrimSpace(t.FromUser) == "" || strings.TrimSpace(t.ToUser) == "" {
		return ErrEmptyParty
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Category.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}
