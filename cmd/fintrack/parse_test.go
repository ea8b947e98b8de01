package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.Local)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{"today", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{"Yesterday", time.Date(2024, 3, 14, 0, 0, 0, 0, time.Local)},
		{"2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in, now)
		if err != nil {
			t.Fatalf("parseDate(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := parseDate("15/03/2024", now); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func TestParseBudgetRule(t *testing.T) {
	r, err := parseBudgetRule("60/25/15")
	if err != nil {
		t.Fatal(err)
	}
	if r != (core.BudgetRule{Essentials: 60, Personal: 25, Investments: 15}) {
		t.Fatalf("unexpected rule %+v", r)
	}
	for _, bad := range []string{"50/30", "50/30/x", "50/30/30", "120/-10/-10"} {
		if _, err := parseBudgetRule(bad); err == nil {
			t.Errorf("parseBudgetRule(%q): expected error", bad)
		}
	}
	if _, err := parseBudgetRule("50/30/30"); !errors.Is(err, core.ErrInvalidBudgetRule) {
		t.Errorf("expected ErrInvalidBudgetRule, got %v", err)
	}
}

func TestParseEnums(t *testing.T) {
	if p, err := parsePayment(" Credit "); err != nil || p != core.PaymentCredit {
		t.Errorf("parsePayment: %v %v", p, err)
	}
	if _, err := parsePayment("cheque"); !errors.Is(err, core.ErrInvalidPayment) {
		t.Errorf("expected ErrInvalidPayment, got %v", err)
	}
	if p, err := parsePriority("HIGH"); err != nil || p != core.PriorityHigh {
		t.Errorf("parsePriority: %v %v", p, err)
	}
	if c, err := parseGoalCategory("debt"); err != nil || c != core.GoalDebt {
		t.Errorf("parseGoalCategory: %v %v", c, err)
	}
	if typ, err := parseExpenseTypeFlag(""); err != nil || typ != "" {
		t.Errorf("empty type flag should defer to category: %q %v", typ, err)
	}
	if _, err := parseExpenseTypeFlag("luxury"); err == nil {
		t.Error("expected error for unknown expense type")
	}
}

func TestResolveID(t *testing.T) {
	ids := []string{"abc123", "abd456", "abc"}

	if id, err := resolveID("expense", "abc", ids); err != nil || id != "abc" {
		t.Errorf("exact match should win: %q %v", id, err)
	}
	if id, err := resolveID("expense", "abd", ids); err != nil || id != "abd456" {
		t.Errorf("unique prefix: %q %v", id, err)
	}
	if _, err := resolveID("expense", "ab", ids); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
	if _, err := resolveID("expense", "zz", ids); err == nil || !strings.Contains(err.Error(), "no expense") {
		t.Errorf("expected no match error, got %v", err)
	}
	if _, err := resolveID("expense", " ", ids); err == nil {
		t.Error("expected error for empty ref")
	}
}

func TestResolveCard(t *testing.T) {
	st := core.FinanceState{CreditCards: []core.CreditCard{
		{ID: "c-visa-1", Name: "Visa"},
		{ID: "c-amex-1", Name: "Amex"},
	}}
	if id, err := resolveCard(st, "visa"); err != nil || id != "c-visa-1" {
		t.Errorf("by name: %q %v", id, err)
	}
	if id, err := resolveCard(st, "c-amex"); err != nil || id != "c-amex-1" {
		t.Errorf("by prefix: %q %v", id, err)
	}
	if _, err := resolveCard(st, ""); !errors.Is(err, core.ErrMissingCreditCard) {
		t.Errorf("expected ErrMissingCreditCard, got %v", err)
	}
}

func TestBar(t *testing.T) {
	if got := bar(50, 10); got != "[#####.....]" {
		t.Errorf("bar(50) = %q", got)
	}
	if got := bar(150, 4); got != "[####]" {
		t.Errorf("bar should clamp: %q", got)
	}
	if got := bar(-5, 4); got != "[....]" {
		t.Errorf("bar should clamp at zero: %q", got)
	}
}
