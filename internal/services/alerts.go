package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

const (
	goalDeadlineWindow = 7 * 24 * time.Hour
	spikeFactor        = 1.5
)

// EvaluateAlerts runs the alert rules over month. Alert ids are derived from
// the rule and its subject, so evaluating twice yields the same ids and
// callers can skip alerts they already hold.
func EvaluateAlerts(state core.FinanceState, month core.Month, now time.Time) []core.Alert {
	summary := Summarize(state, month)
	var alerts []core.Alert

	switch summary.Health {
	case core.HealthWarning, core.HealthDanger:
		sev := core.SeverityWarning
		if summary.Health == core.HealthDanger {
			sev = core.SeverityDanger
		}
		alerts = append(alerts, core.Alert{
			ID:       fmt.Sprintf("%s:%s", core.AlertBudgetExceeded, month),
			Type:     core.AlertBudgetExceeded,
			Title:    "Budget almost exhausted",
			Message:  fmt.Sprintf("%.0f%% of the essential and personal budget spent in %s", summary.HealthPercent, month),
			Severity: sev,
		})
	}

	for _, card := range summary.Cards {
		if card.Status == core.CardOK {
			continue
		}
		sev := core.SeverityWarning
		if card.Status == core.CardDanger {
			sev = core.SeverityDanger
		}
		alerts = append(alerts, core.Alert{
			ID:       fmt.Sprintf("%s:%s:%s", core.AlertCardLimit, card.CardID, month),
			Type:     core.AlertCardLimit,
			Title:    "Credit card limit",
			Message:  fmt.Sprintf("%s is at %.0f%% of its limit for the %s bill", card.Name, card.Percent, month),
			Severity: sev,
		})
	}

	for _, g := range state.Goals {
		if !g.IsActive || g.Completed() {
			continue
		}
		left := g.Deadline.Sub(now)
		if left > goalDeadlineWindow {
			continue
		}
		sev := core.SeverityWarning
		msg := fmt.Sprintf("%s is due on %s", g.Title, g.Deadline.Format("2006-01-02"))
		if left < 0 {
			sev = core.SeverityDanger
			msg = fmt.Sprintf("%s passed its deadline of %s", g.Title, g.Deadline.Format("2006-01-02"))
		}
		alerts = append(alerts, core.Alert{
			ID:       fmt.Sprintf("%s:%s", core.AlertGoalDeadline, g.ID),
			Type:     core.AlertGoalDeadline,
			Title:    "Goal deadline",
			Message:  msg,
			Severity: sev,
		})
	}

	prev := Summarize(state, month.Prev())
	if prev.TotalSpent > 0 && summary.TotalSpent > prev.TotalSpent*spikeFactor {
		alerts = append(alerts, core.Alert{
			ID:       fmt.Sprintf("%s:%s", core.AlertSpendingSpike, month),
			Type:     core.AlertSpendingSpike,
			Title:    "Spending spike",
			Message:  fmt.Sprintf("Spending in %s is %.0f%% above %s", month, (summary.TotalSpent/prev.TotalSpent-1)*100, month.Prev()),
			Severity: core.SeverityInfo,
		})
	}

	for i := range alerts {
		alerts[i].CreatedAt = now
	}
	return alerts
}
