package services

import (
	"math"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestMonthlyHistory(t *testing.T) {
	s := baseState()
	s.Income = 1000
	s.Incomes = []core.Income{{ID: "bonus", Amount: 500, Date: date(2024, 2, 10)}}
	s.Expenses = []core.Expense{
		cashExpense("1", 100, core.TypeEssential, date(2024, 1, 5)),
		cashExpense("2", 40, core.TypePersonal, date(2024, 3, 5)),
		cashExpense("3", 60, core.TypeInvestment, date(2024, 3, 6)),
	}

	hist := MonthlyHistory(s, core.NewMonth(2024, time.March), 3)
	if len(hist) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(hist))
	}
	if hist[0].Month != core.NewMonth(2024, time.January) || hist[2].Month != core.NewMonth(2024, time.March) {
		t.Fatalf("months out of order: %v %v", hist[0].Month, hist[2].Month)
	}
	if hist[0].Essentials != 100 || hist[0].Income != 1000 {
		t.Fatalf("january: %+v", hist[0])
	}
	if hist[1].Income != 1500 || hist[1].Expenses != 0 {
		t.Fatalf("february: %+v", hist[1])
	}
	if hist[2].Expenses != 100 || hist[2].Personal != 40 || hist[2].Investments != 60 || hist[2].Balance() != 900 {
		t.Fatalf("march: %+v", hist[2])
	}
}

func TestCategoryBreakdown(t *testing.T) {
	expenses := []core.Expense{
		{Category: core.CategoryFood, Amount: 10},
		{Category: core.CategoryHousing, Amount: 50},
		{Category: core.CategoryFood, Amount: 30},
	}
	got := CategoryBreakdown(expenses)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %+v", got)
	}
	if got[0].Category != core.CategoryHousing || got[1].Total != 40 {
		t.Fatalf("breakdown: %+v", got)
	}
}

func TestCategoryTrends(t *testing.T) {
	s := baseState()
	s.Expenses = []core.Expense{
		{Category: core.CategoryFood, Amount: 10, Date: date(2024, 1, 1)},
		{Category: core.CategoryFood, Amount: 20, Date: date(2024, 2, 1)},
		{Category: core.CategoryFood, Amount: 50, Date: date(2024, 3, 1)},
		{Category: core.CategoryOther, Amount: 5, Date: date(2024, 3, 1)},
		{Category: core.CategoryHealth, Amount: 500, Date: date(2023, 12, 1)},
	}
	got := CategoryTrends(s, core.NewMonth(2024, time.March), 3, 6)
	if len(got) != 2 {
		t.Fatalf("expected food and other, got %+v", got)
	}
	food := got[0]
	if food.Category != core.CategoryFood || food.Total != 80 || food.Trend != 30 {
		t.Fatalf("food trend: %+v", food)
	}
	if len(CategoryTrends(s, core.NewMonth(2024, time.March), 3, 1)) != 1 {
		t.Fatalf("limit not applied")
	}
}

func TestBankStatementExpenses(t *testing.T) {
	s := baseState()
	shown := cashExpense("shown", 10, core.TypeEssential, date(2024, 3, 1))
	shown.ShowInBankStatement = true
	otherMonth := shown
	otherMonth.ID = "other"
	otherMonth.Date = date(2024, 4, 1)
	s.Expenses = []core.Expense{shown, otherMonth, cashExpense("hidden", 5, core.TypeEssential, date(2024, 3, 2))}

	got := BankStatementExpenses(s, core.NewMonth(2024, time.March))
	if len(got) != 1 || got[0].ID != "shown" {
		t.Fatalf("statement: %+v", got)
	}
}

func TestPlanGoal(t *testing.T) {
	now := date(2024, 1, 1)
	g := core.Goal{ID: "g", Title: "Car", TargetAmount: 12000, CurrentAmount: 3000, Deadline: now.AddDate(0, 0, 90), IsActive: true}
	plan := PlanGoal(g, now)
	if plan.DaysLeft != 90 || plan.Remaining != 9000 || plan.MonthlyNeed != 3000 || plan.ProgressPct != 25 {
		t.Fatalf("plan: %+v", plan)
	}

	// Deadlines closer than a month ask for the whole remainder at once.
	g.Deadline = now.AddDate(0, 0, 10)
	if got := PlanGoal(g, now).MonthlyNeed; got != 9000 {
		t.Fatalf("short deadline: %v", got)
	}

	g.Deadline = now.AddDate(0, 0, -5)
	plan = PlanGoal(g, now)
	if plan.DaysLeft != 1 || !plan.PastDeadline {
		t.Fatalf("past deadline: %+v", plan)
	}
}

func TestMonthlyGoalContribution(t *testing.T) {
	now := date(2024, 1, 1)
	goals := []core.Goal{
		{TargetAmount: 600, Deadline: now.AddDate(0, 0, 60), IsActive: true},
		{TargetAmount: 300, Deadline: now.AddDate(0, 0, 90), IsActive: true},
		{TargetAmount: 9999, Deadline: now.AddDate(0, 0, 30), IsActive: false},
		{TargetAmount: 100, CurrentAmount: 150, Deadline: now.AddDate(0, 0, 30), IsActive: true},
	}
	if got := MonthlyGoalContribution(goals, now); math.Abs(got-400) > 1e-9 {
		t.Fatalf("expected 400, got %v", got)
	}

	sum := MonthSummary{TotalRemaining: 1000}
	if got := AvailableForGoals(sum, goals, now); math.Abs(got-600) > 1e-9 {
		t.Fatalf("available: %v", got)
	}
	sum.TotalRemaining = 100
	if got := AvailableForGoals(sum, goals, now); got != 0 {
		t.Fatalf("available should floor at 0: %v", got)
	}
}
