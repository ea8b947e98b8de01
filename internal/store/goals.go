package store

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type GoalInput struct {
	Title         string
	TargetAmount  float64
	CurrentAmount float64
	Deadline      time.Time
	Category      core.GoalCategory
	Priority      core.Priority
	SmartCriteria *core.SmartCriteria
}

func (s *Store) AddGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:            s.newID(),
		Title:         in.Title,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		Category:      in.Category,
		Priority:      in.Priority,
		IsActive:      true,
		CreatedAt:     s.now(),
		SmartCriteria: in.SmartCriteria,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	err := s.mutate(ctx, "add_goal", true, func(st *core.FinanceState) error {
		st.Goals = append(st.Goals, g)
		return nil
	})
	return g, err
}

func (s *Store) UpdateGoal(ctx context.Context, id string, in GoalInput) (core.Goal, error) {
	var updated core.Goal
	err := s.mutate(ctx, "update_goal", true, func(st *core.FinanceState) error {
		i := indexOf(st.Goals, func(g core.Goal) bool { return g.ID == id })
		if i < 0 {
			return notFound("goal", id)
		}
		g := st.Goals[i]
		g.Title, g.TargetAmount, g.CurrentAmount = in.Title, in.TargetAmount, in.CurrentAmount
		g.Deadline, g.Category, g.Priority = in.Deadline, in.Category, in.Priority
		g.SmartCriteria = in.SmartCriteria
		if err := g.Validate(); err != nil {
			return err
		}
		st.Goals[i] = g
		updated = g
		return nil
	})
	return updated, err
}

// DepositToGoal adds amount to the goal's progress. A negative amount
// withdraws; progress never drops below zero.
func (s *Store) DepositToGoal(ctx context.Context, id string, amount float64) (core.Goal, error) {
	var updated core.Goal
	err := s.mutate(ctx, "deposit_to_goal", true, func(st *core.FinanceState) error {
		i := indexOf(st.Goals, func(g core.Goal) bool { return g.ID == id })
		if i < 0 {
			return notFound("goal", id)
		}
		g := st.Goals[i]
		g.CurrentAmount += amount
		if g.CurrentAmount < 0 {
			return core.ErrNegativeProgress
		}
		st.Goals[i] = g
		updated = g
		return nil
	})
	if err == nil && updated.Completed() {
		slog.InfoContext(ctx, "Goal reached",
			log.FieldComponent, log.ComponentStore,
			log.FieldGoalID, id)
	}
	return updated, err
}

func (s *Store) SetGoalActive(ctx context.Context, id string, active bool) error {
	return s.mutate(ctx, "set_goal_active", true, func(st *core.FinanceState) error {
		i := indexOf(st.Goals, func(g core.Goal) bool { return g.ID == id })
		if i < 0 {
			return notFound("goal", id)
		}
		st.Goals[i].IsActive = active
		return nil
	})
}

func (s *Store) RemoveGoal(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_goal", true, func(st *core.FinanceState) error {
		i := indexOf(st.Goals, func(g core.Goal) bool { return g.ID == id })
		if i < 0 {
			return notFound("goal", id)
		}
		st.Goals = append(st.Goals[:i], st.Goals[i+1:]...)
		return nil
	})
}

type PlannedPurchaseInput struct {
	Title       string
	Amount      float64
	Category    core.Category
	PlannedDate time.Time
	Priority    core.Priority
	Notes       string
}

func (s *Store) AddPlannedPurchase(ctx context.Context, in PlannedPurchaseInput) (core.PlannedPurchase, error) {
	p := core.PlannedPurchase{
		ID:          s.newID(),
		Title:       in.Title,
		Amount:      in.Amount,
		Category:    in.Category,
		PlannedDate: in.PlannedDate,
		Priority:    in.Priority,
		Notes:       in.Notes,
	}
	if err := p.Validate(); err != nil {
		return core.PlannedPurchase{}, err
	}
	err := s.mutate(ctx, "add_planned_purchase", true, func(st *core.FinanceState) error {
		st.PlannedPurchases = append(st.PlannedPurchases, p)
		return nil
	})
	return p, err
}

// CompletePlannedPurchase marks the purchase done. It does not record an
// expense; the user adds that separately.
func (s *Store) CompletePlannedPurchase(ctx context.Context, id string) error {
	return s.mutate(ctx, "complete_planned_purchase", true, func(st *core.FinanceState) error {
		i := indexOf(st.PlannedPurchases, func(p core.PlannedPurchase) bool { return p.ID == id })
		if i < 0 {
			return notFound("planned purchase", id)
		}
		st.PlannedPurchases[i].IsCompleted = true
		return nil
	})
}

func (s *Store) RemovePlannedPurchase(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_planned_purchase", true, func(st *core.FinanceState) error {
		i := indexOf(st.PlannedPurchases, func(p core.PlannedPurchase) bool { return p.ID == id })
		if i < 0 {
			return notFound("planned purchase", id)
		}
		st.PlannedPurchases = append(st.PlannedPurchases[:i], st.PlannedPurchases[i+1:]...)
		return nil
	})
}

// RefreshAlerts evaluates the alert rules for the selected month and stores
// the alerts not already present. It returns the new ones. When nothing is
// new the state is left untouched and nothing is saved.
func (s *Store) RefreshAlerts(ctx context.Context) ([]core.Alert, error) {
	st := s.Snapshot()
	known := make(map[string]bool, len(st.Alerts))
	for _, a := range st.Alerts {
		known[a.ID] = true
	}
	var fresh []core.Alert
	for _, a := range services.EvaluateAlerts(st, st.Month(), s.now()) {
		if !known[a.ID] {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}
	err := s.mutate(ctx, "refresh_alerts", true, func(st *core.FinanceState) error {
		have := make(map[string]bool, len(st.Alerts))
		for _, a := range st.Alerts {
			have[a.ID] = true
		}
		for _, a := range fresh {
			if !have[a.ID] {
				st.Alerts = append(st.Alerts, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "New alerts raised",
		log.FieldComponent, log.ComponentStore,
		log.FieldCount, len(fresh))
	return fresh, nil
}

// DismissAlert marks an alert read. It stays stored so the same condition
// does not raise it again.
func (s *Store) DismissAlert(ctx context.Context, id string) error {
	return s.mutate(ctx, "dismiss_alert", true, func(st *core.FinanceState) error {
		i := indexOf(st.Alerts, func(a core.Alert) bool { return a.ID == id })
		if i < 0 {
			return notFound("alert", id)
		}
		st.Alerts[i].IsRead = true
		return nil
	})
}

// ClearAlerts removes every read alert.
func (s *Store) ClearAlerts(ctx context.Context) error {
	return s.mutate(ctx, "clear_alerts", true, func(st *core.FinanceState) error {
		kept := st.Alerts[:0]
		for _, a := range st.Alerts {
			if !a.IsRead {
				kept = append(kept, a)
			}
		}
		st.Alerts = kept
		return nil
	})
}
