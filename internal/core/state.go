package core

import (
	"time"

	"github.com/google/uuid"
)

// FinanceState is the whole of one user's financial data. It is persisted as
// a single JSON document.
type FinanceState struct {
	Income                float64                `json:"income"`
	BudgetRule            BudgetRule             `json:"budgetRule"`
	Expenses              []Expense              `json:"expenses"`
	Incomes               []Income               `json:"incomes"`
	RecurringTransactions []RecurringTransaction `json:"recurringTransactions"`
	CreditCards           []CreditCard           `json:"creditCards"`
	Goals                 []Goal                 `json:"goals"`
	Alerts                []Alert                `json:"alerts"`
	PlannedPurchases      []PlannedPurchase      `json:"plannedPurchases"`
	IsOnboarded           bool                   `json:"isOnboarded"`
	SelectedMonth         time.Time              `json:"selectedMonth"`
}

// UserDocument is the remote representation of a FinanceState.
type UserDocument struct {
	FinanceState
	UserID    string    `json:"userId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultBudgetRule is the 50/30/20 split offered during onboarding.
var DefaultBudgetRule = BudgetRule{Essentials: 50, Personal: 30, Investments: 20}

// DefaultState returns an empty, not yet onboarded state whose selected
// month is the month of now.
func DefaultState(now time.Time) FinanceState {
	return FinanceState{
		BudgetRule:            DefaultBudgetRule,
		Expenses:              []Expense{},
		Incomes:               []Income{},
		RecurringTransactions: []RecurringTransaction{},
		CreditCards:           []CreditCard{},
		Goals:                 []Goal{},
		Alerts:                []Alert{},
		PlannedPurchases:      []PlannedPurchase{},
		SelectedMonth:         MonthOf(now).FirstDay(),
	}
}

// Month returns the selected month.
func (s FinanceState) Month() Month {
	return MonthOf(s.SelectedMonth)
}

// Clone returns a deep copy that shares no slices or pointers with s.
func (s FinanceState) Clone() FinanceState {
	out := s
	out.Expenses = make([]Expense, len(s.Expenses))
	for i, e := range s.Expenses {
		if e.Installments != nil {
			inst := *e.Installments
			e.Installments = &inst
		}
		out.Expenses[i] = e
	}
	out.Incomes = append([]Income{}, s.Incomes...)
	out.RecurringTransactions = append([]RecurringTransaction{}, s.RecurringTransactions...)
	out.CreditCards = append([]CreditCard{}, s.CreditCards...)
	out.Goals = make([]Goal, len(s.Goals))
	for i, g := range s.Goals {
		if g.SmartCriteria != nil {
			sc := *g.SmartCriteria
			g.SmartCriteria = &sc
		}
		out.Goals[i] = g
	}
	out.Alerts = append([]Alert{}, s.Alerts...)
	out.PlannedPurchases = append([]PlannedPurchase{}, s.PlannedPurchases...)
	return out
}

// Normalize replaces nil collections with empty ones so documents always
// serialize arrays rather than null.
func (s *FinanceState) Normalize() {
	if s.Expenses == nil {
		s.Expenses = []Expense{}
	}
	if s.Incomes == nil {
		s.Incomes = []Income{}
	}
	if s.RecurringTransactions == nil {
		s.RecurringTransactions = []RecurringTransaction{}
	}
	if s.CreditCards == nil {
		s.CreditCards = []CreditCard{}
	}
	if s.Goals == nil {
		s.Goals = []Goal{}
	}
	if s.Alerts == nil {
		s.Alerts = []Alert{}
	}
	if s.PlannedPurchases == nil {
		s.PlannedPurchases = []PlannedPurchase{}
	}
}

// CreditCard looks up a card by id.
func (s FinanceState) CreditCard(id string) (CreditCard, bool) {
	for _, c := range s.CreditCards {
		if c.ID == id {
			return c, true
		}
	}
	return CreditCard{}, false
}

// NewID returns a random identifier for a new record.
func NewID() string {
	return uuid.NewString()
}
