package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:            "1",
		Amount:        10,
		Category:      CategoryFood,
		Date:          day(2025, 1, 1),
		Type:          TypeEssential,
		PaymentMethod: PaymentCash,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	credit := good
	credit.PaymentMethod = PaymentCredit
	credit.CreditCardID = "card"
	credit.Installments = &Installments{Total: 3, Current: 1, OriginalAmount: 30}
	if err := credit.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"zero amount", func(e *Expense) { e.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = -5 }, ErrInvalidAmount},
		{"zero date", func(e *Expense) { e.Date = time.Time{} }, ErrInvalidDate},
		{"unknown category", func(e *Expense) { e.Category = "pets" }, ErrInvalidCategory},
		{"unknown type", func(e *Expense) { e.Type = "luxury" }, ErrInvalidExpenseType},
		{"unknown payment", func(e *Expense) { e.PaymentMethod = "pix" }, ErrInvalidPayment},
		{"credit without card", func(e *Expense) { e.PaymentMethod = PaymentCredit }, ErrMissingCreditCard},
		{"cash with card", func(e *Expense) { e.CreditCardID = "card" }, ErrUnexpectedCreditCard},
		{"long description", func(e *Expense) { e.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
		{"installment past total", func(e *Expense) {
			e.Installments = &Installments{Total: 2, Current: 3, OriginalAmount: 10}
		}, ErrInvalidInstallments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := good
			tt.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBudgetRuleValidate(t *testing.T) {
	if err := (BudgetRule{60, 30, 20}).Validate(); err != nil {
		t.Fatalf("rule not summing to 100 must be tolerated, got %v", err)
	}
	if err := (BudgetRule{60, 30, 20}).ValidateTotal(); !errors.Is(err, ErrInvalidBudgetRule) {
		t.Fatalf("expected ErrInvalidBudgetRule, got %v", err)
	}
	if err := DefaultBudgetRule.ValidateTotal(); err != nil {
		t.Fatalf("default rule invalid: %v", err)
	}
	if err := (BudgetRule{-1, 50, 51}).Validate(); !errors.Is(err, ErrInvalidBudgetRule) {
		t.Fatalf("expected ErrInvalidBudgetRule, got %v", err)
	}
}

func TestCreditCardValidate(t *testing.T) {
	cases := []struct {
		card CreditCard
		want error
	}{
		{CreditCard{Name: "Visa", Limit: 1000, DueDay: 10}, nil},
		{CreditCard{Name: "Visa", Limit: 0, DueDay: 31}, nil},
		{CreditCard{Name: " ", Limit: 1000, DueDay: 10}, ErrEmptyName},
		{CreditCard{Name: "Visa", Limit: -1, DueDay: 10}, ErrInvalidLimit},
		{CreditCard{Name: "Visa", Limit: 1000, DueDay: 0}, ErrInvalidDueDay},
		{CreditCard{Name: "Visa", Limit: 1000, DueDay: 32}, ErrInvalidDueDay},
	}
	for i, tc := range cases {
		if err := tc.card.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestRecurringValidate(t *testing.T) {
	r := RecurringTransaction{Amount: 100, Description: "Rent", Type: TransactionExpense, Frequency: FrequencyMonthly, IsActive: true}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	r.Frequency = "weekly"
	if err := r.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
	r.Frequency = FrequencyMonthly
	r.Description = ""
	if err := r.Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{Title: "Trip", TargetAmount: 1000, Deadline: day(2025, 6, 1), Category: GoalSavings, Priority: PriorityHigh}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.TargetAmount = 0
	if err := g.Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestFinanceStateJSON(t *testing.T) {
	s := DefaultState(day(2024, 3, 17))
	s.Expenses = append(s.Expenses, Expense{
		ID: "x", Amount: 50, Category: CategoryFood, Date: day(2024, 3, 2),
		Type: TypeEssential, PaymentMethod: PaymentCash,
	})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"budgetRule"`, `"recurringTransactions"`, `"isOnboarded":false`, `"selectedMonth":"2024-03-01T00:00:00Z"`, `"paymentMethod":"cash"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("document missing %s: %s", key, data)
		}
	}
	if strings.Contains(string(data), "creditCardId") {
		t.Errorf("cash expense should omit creditCardId: %s", data)
	}
}

func TestFinanceStateDecodesBrowserDates(t *testing.T) {
	doc := `{"income":5000,"budgetRule":{"essentials":50,"personal":30,"investments":20},
		"expenses":[{"id":"1","amount":10,"category":"food","date":"2024-01-15T12:30:00.000Z","type":"essential","paymentMethod":"cash"}],
		"isOnboarded":true,"selectedMonth":"2024-01-01T03:00:00.000Z"}`
	var s FinanceState
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Expenses[0].Date.Day() != 15 || s.Month() != NewMonth(2024, time.January) {
		t.Fatalf("dates not restored: %+v", s)
	}
	if s.Incomes != nil {
		t.Fatalf("expected nil incomes before normalize")
	}
	s.Normalize()
	if s.Incomes == nil || s.Goals == nil {
		t.Fatalf("normalize left nil collections")
	}
}

func TestClone(t *testing.T) {
	s := DefaultState(day(2024, 1, 1))
	s.Expenses = []Expense{{ID: "a", Installments: &Installments{Total: 2, Current: 1, OriginalAmount: 10}}}
	s.Goals = []Goal{{ID: "g", SmartCriteria: &SmartCriteria{Specific: "x"}}}

	c := s.Clone()
	c.Expenses[0].Installments.Current = 2
	c.Goals[0].SmartCriteria.Specific = "y"
	c.Expenses = append(c.Expenses, Expense{ID: "b"})

	if s.Expenses[0].Installments.Current != 1 || s.Goals[0].SmartCriteria.Specific != "x" || len(s.Expenses) != 1 {
		t.Fatalf("clone shares memory with original")
	}
}
