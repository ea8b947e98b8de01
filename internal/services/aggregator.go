package services

import (
	"time"

	"fintrack/internal/core"
)

// MonthSummary is the set of values derived from a FinanceState for one
// month. It is computed on demand and never stored.
type MonthSummary struct {
	Month    core.Month     `json:"month"`
	Expenses []core.Expense `json:"expenses"`
	Incomes  []core.Income  `json:"incomes"`

	AdditionalIncome   float64 `json:"additionalIncome"`
	RecurringExpenses  float64 `json:"recurringExpenses"`
	RecurringIncomes   float64 `json:"recurringIncomes"`
	TotalMonthlyIncome float64 `json:"totalMonthlyIncome"`
	TotalSpent         float64 `json:"totalSpent"`

	EssentialSpent  float64 `json:"essentialSpent"`
	PersonalSpent   float64 `json:"personalSpent"`
	InvestmentSpent float64 `json:"investmentSpent"`

	EssentialBudget  float64 `json:"essentialBudget"`
	PersonalBudget   float64 `json:"personalBudget"`
	InvestmentBudget float64 `json:"investmentBudget"`

	EssentialRemaining  float64 `json:"essentialRemaining"`
	PersonalRemaining   float64 `json:"personalRemaining"`
	InvestmentRemaining float64 `json:"investmentRemaining"`

	// TotalBudget and TotalRemaining cover essential and personal only.
	TotalBudget    float64     `json:"totalBudget"`
	TotalRemaining float64     `json:"totalRemaining"`
	HealthPercent  float64     `json:"healthPercent"`
	Health         core.Health `json:"health"`

	Cards []CardUsage  `json:"cards"`
	Fleet FleetSummary `json:"fleet"`
}

// Summarize buckets the state's records into month and derives budgets,
// spending and remainders.
//
// Dated expenses and incomes count toward the month they fall in. Active
// recurring transactions count toward every month; recurring expenses are
// always charged to the essential bucket.
func Summarize(state core.FinanceState, month core.Month) MonthSummary {
	s := MonthSummary{
		Month:    month,
		Expenses: ExpensesIn(state.Expenses, month),
		Incomes:  IncomesIn(state.Incomes, month),
	}

	for _, inc := range s.Incomes {
		s.AdditionalIncome += inc.Amount
	}
	s.RecurringExpenses, s.RecurringIncomes = recurringTotals(state.RecurringTransactions)
	s.TotalMonthlyIncome = state.Income + s.AdditionalIncome + s.RecurringIncomes

	var dated float64
	for _, e := range s.Expenses {
		dated += e.Amount
		switch e.Type {
		case core.TypeEssential:
			s.EssentialSpent += e.Amount
		case core.TypePersonal:
			s.PersonalSpent += e.Amount
		case core.TypeInvestment:
			s.InvestmentSpent += e.Amount
		}
	}
	s.TotalSpent = dated + s.RecurringExpenses
	s.EssentialSpent += s.RecurringExpenses

	rule := state.BudgetRule
	s.EssentialBudget = s.TotalMonthlyIncome * float64(rule.Essentials) / 100
	s.PersonalBudget = s.TotalMonthlyIncome * float64(rule.Personal) / 100
	s.InvestmentBudget = s.TotalMonthlyIncome * float64(rule.Investments) / 100

	s.EssentialRemaining = s.EssentialBudget - s.EssentialSpent
	s.PersonalRemaining = s.PersonalBudget - s.PersonalSpent
	s.InvestmentRemaining = s.InvestmentBudget - s.InvestmentSpent

	s.TotalBudget = s.EssentialBudget + s.PersonalBudget
	s.TotalRemaining = s.EssentialRemaining + s.PersonalRemaining
	s.HealthPercent = HealthPercent(s.EssentialSpent+s.PersonalSpent, s.TotalBudget)
	s.Health = core.ClassifyHealth(s.HealthPercent)

	s.Fleet, s.Cards = FleetUsage(state, month)
	return s
}

// HealthPercent is spent/budget as a percentage, or 0 when there is no
// positive budget.
func HealthPercent(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return spent / budget * 100
}

// DailyAllowance spreads the remaining essential and personal budget over
// the days left in the month, counting today. Past months and exhausted
// budgets allow nothing.
func (s MonthSummary) DailyAllowance(now time.Time) float64 {
	if s.TotalRemaining <= 0 {
		return 0
	}
	current := core.MonthOf(now)
	var days int
	switch {
	case s.Month.Before(current):
		return 0
	case s.Month == current:
		days = s.Month.Days() - now.Day() + 1
	default:
		days = s.Month.Days()
	}
	return s.TotalRemaining / float64(days)
}

// ExpensesIn returns copies of the expenses dated within month.
func ExpensesIn(expenses []core.Expense, month core.Month) []core.Expense {
	out := []core.Expense{}
	for _, e := range expenses {
		if !month.Contains(e.Date) {
			continue
		}
		if e.Installments != nil {
			inst := *e.Installments
			e.Installments = &inst
		}
		out = append(out, e)
	}
	return out
}

// IncomesIn returns the one-off incomes dated within month.
func IncomesIn(incomes []core.Income, month core.Month) []core.Income {
	out := []core.Income{}
	for _, inc := range incomes {
		if month.Contains(inc.Date) {
			out = append(out, inc)
		}
	}
	return out
}

func recurringTotals(rs []core.RecurringTransaction) (expenses, incomes float64) {
	for _, r := range rs {
		if !r.IsActive {
			continue
		}
		switch r.Type {
		case core.TransactionExpense:
			expenses += r.Amount
		case core.TransactionIncome:
			incomes += r.Amount
		}
	}
	return expenses, incomes
}
