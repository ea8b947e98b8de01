package services

import (
	"sort"

	"fintrack/internal/core"
)

// MonthRecord is one row of the spending history.
type MonthRecord struct {
	Month       core.Month `json:"month"`
	Income      float64    `json:"income"`
	Expenses    float64    `json:"expenses"`
	Essentials  float64    `json:"essentials"`
	Personal    float64    `json:"personal"`
	Investments float64    `json:"investments"`
}

// Balance is income minus expenses.
func (r MonthRecord) Balance() float64 { return r.Income - r.Expenses }

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category core.Category `json:"category"`
	Total    float64       `json:"total"`
}

// CategoryTrend tracks one category across consecutive months.
type CategoryTrend struct {
	Category core.Category `json:"category"`
	Values   []float64     `json:"values"`
	Total    float64       `json:"total"`
	// Trend is the change between the last two months.
	Trend float64 `json:"trend"`
}

// MonthlyHistory returns n months ending at end, oldest first. Income is the
// base income plus the one-off incomes of that month; recurring transactions
// are not included.
func MonthlyHistory(state core.FinanceState, end core.Month, n int) []MonthRecord {
	out := make([]MonthRecord, 0, max(n, 0))
	for i := n - 1; i >= 0; i-- {
		m := end.AddMonths(-i)
		rec := MonthRecord{Month: m, Income: state.Income}
		for _, inc := range IncomesIn(state.Incomes, m) {
			rec.Income += inc.Amount
		}
		for _, e := range state.Expenses {
			if !m.Contains(e.Date) {
				continue
			}
			rec.Expenses += e.Amount
			switch e.Type {
			case core.TypeEssential:
				rec.Essentials += e.Amount
			case core.TypePersonal:
				rec.Personal += e.Amount
			case core.TypeInvestment:
				rec.Investments += e.Amount
			}
		}
		out = append(out, rec)
	}
	return out
}

// CategoryBreakdown totals expenses per category, largest first. Categories
// with nothing spent are left out.
func CategoryBreakdown(expenses []core.Expense) []CategoryTotal {
	totals := make(map[core.Category]float64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	out := make([]CategoryTotal, 0, len(totals))
	for _, c := range core.Categories {
		if t := totals[c]; t > 0 {
			out = append(out, CategoryTotal{Category: c, Total: t})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// CategoryTrends reports per-category spending over n months ending at end,
// keeping at most limit categories with the largest totals.
func CategoryTrends(state core.FinanceState, end core.Month, n, limit int) []CategoryTrend {
	if n <= 0 {
		return nil
	}
	values := make(map[core.Category][]float64, len(core.Categories))
	for _, c := range core.Categories {
		values[c] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		m := end.AddMonths(i - n + 1)
		for _, e := range state.Expenses {
			if m.Contains(e.Date) {
				if v, ok := values[e.Category]; ok {
					v[i] += e.Amount
				}
			}
		}
	}

	var out []CategoryTrend
	for _, c := range core.Categories {
		v := values[c]
		var total float64
		for _, x := range v {
			total += x
		}
		if total <= 0 {
			continue
		}
		trend := CategoryTrend{Category: c, Values: v, Total: total}
		if n >= 2 {
			trend.Trend = v[n-1] - v[n-2]
		}
		out = append(out, trend)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BankStatementExpenses returns the month's expenses flagged to appear on the
// bank statement.
func BankStatementExpenses(state core.FinanceState, month core.Month) []core.Expense {
	out := []core.Expense{}
	for _, e := range ExpensesIn(state.Expenses, month) {
		if e.ShowInBankStatement {
			out = append(out, e)
		}
	}
	return out
}
