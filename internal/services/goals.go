package services

import (
	"math"
	"time"

	"fintrack/internal/core"
)

// GoalPlan is the monthly saving needed to reach one goal by its deadline.
type GoalPlan struct {
	GoalID       string  `json:"goalId"`
	Title        string  `json:"title"`
	Remaining    float64 `json:"remaining"`
	DaysLeft     int     `json:"daysLeft"`
	MonthlyNeed  float64 `json:"monthlyNeed"`
	ProgressPct  float64 `json:"progressPercent"`
	Completed    bool    `json:"completed"`
	PastDeadline bool    `json:"pastDeadline"`
}

// PlanGoal computes how much must be saved per month for g. Days left are
// rounded up and floored at 1; months left are days/30 floored at 1.
func PlanGoal(g core.Goal, now time.Time) GoalPlan {
	remaining := math.Max(0, g.TargetAmount-g.CurrentAmount)
	days := int(math.Ceil(g.Deadline.Sub(now).Hours() / 24))
	plan := GoalPlan{
		GoalID:       g.ID,
		Title:        g.Title,
		Remaining:    remaining,
		DaysLeft:     max(1, days),
		Completed:    g.Completed(),
		PastDeadline: days <= 0,
	}
	if g.TargetAmount > 0 {
		plan.ProgressPct = math.Min(100, g.CurrentAmount/g.TargetAmount*100)
	}
	months := math.Max(1, float64(plan.DaysLeft)/30)
	plan.MonthlyNeed = remaining / months
	return plan
}

// MonthlyGoalContribution sums the monthly need of every active goal.
func MonthlyGoalContribution(goals []core.Goal, now time.Time) float64 {
	var total float64
	for _, g := range goals {
		if g.IsActive {
			total += PlanGoal(g, now).MonthlyNeed
		}
	}
	return total
}

// AvailableForGoals is what remains of the essential and personal budgets
// after the month's goal contributions, never negative.
func AvailableForGoals(s MonthSummary, goals []core.Goal, now time.Time) float64 {
	return math.Max(0, s.TotalRemaining-MonthlyGoalContribution(goals, now))
}
