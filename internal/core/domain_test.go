package core

import (
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"income", true},
		{"expense", true},
		{"Income", false},
		{"transfer", false},
		{"", false},
	}
	for _, tc := range cases {
		k, err := ParseKind(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseKind(%q) unexpected error: %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseKind(%q) expected error, got %q", tc.in, k)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil {
			t.Fatalf("ParseCategory(%q) unexpected error: %v", c, err)
		}
		if got != c {
			t.Fatalf("ParseCategory(%q) = %q", c, got)
		}
	}
	for _, bad := range []string{"", "groceries", "FOOD", "red packet"} {
		if _, err := ParseCategory(bad); err == nil {
			t.Fatalf("ParseCategory(%q) expected error", bad)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		UserID:   1,
		FromUser: "alice",
		ToUser:   "bob",
		Amount:   Money{Cents: 1500},
		Kind:     Expense,
		Category: Food,
		Time:     time.Now().UTC(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
	}{
		{"missing owner", func(tx *Transaction) { tx.UserID = 0 }},
		{"empty from", func(tx *Transaction) { tx.FromUser = "  " }},
		{"empty to", func(tx *Transaction) { tx.ToUser = "" }},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -5} }},
		{"bad kind", func(tx *Transaction) { tx.Kind = "refund" }},
		{"bad category", func(tx *Transaction) { tx.Category = "misc" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mut(&tx)
			if err := tx.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCriteriaIsZero(t *testing.T) {
	if !(Criteria{}).IsZero() {
		t.Fatal("empty criteria should be zero")
	}
	if (Criteria{Kind: Income}).IsZero() {
		t.Fatal("criteria with kind set should not be zero")
	}
	if (Criteria{StartTime: time.Now()}).IsZero() {
		t.Fatal("criteria with start time set should not be zero")
	}
}
