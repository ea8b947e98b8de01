package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type (
	GoalCategory  string
	Priority      string
	AlertType     string
	AlertSeverity string

	// SmartCriteria holds the optional S.M.A.R.T. notes attached to a goal.
	SmartCriteria struct {
		Specific   string `json:"specific,omitempty"`
		Measurable string `json:"measurable,omitempty"`
		Achievable string `json:"achievable,omitempty"`
		Relevant   string `json:"relevant,omitempty"`
		Timebound  string `json:"timebound,omitempty"`
	}

	Goal struct {
		ID            string         `json:"id"`
		Title         string         `json:"title"`
		TargetAmount  float64        `json:"targetAmount"`
		CurrentAmount float64        `json:"currentAmount"`
		Deadline      time.Time      `json:"deadline"`
		Category      GoalCategory   `json:"category"`
		Priority      Priority       `json:"priority"`
		IsActive      bool           `json:"isActive"`
		CreatedAt     time.Time      `json:"createdAt"`
		SmartCriteria *SmartCriteria `json:"smartCriteria,omitempty"`
	}

	Alert struct {
		ID        string        `json:"id"`
		Type      AlertType     `json:"type"`
		Title     string        `json:"title"`
		Message   string        `json:"message"`
		Severity  AlertSeverity `json:"severity"`
		IsRead    bool          `json:"isRead"`
		CreatedAt time.Time     `json:"createdAt"`
	}

	PlannedPurchase struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Amount      float64   `json:"amount"`
		Category    Category  `json:"category"`
		PlannedDate time.Time `json:"plannedDate"`
		Priority    Priority  `json:"priority"`
		Notes       string    `json:"notes,omitempty"`
		IsCompleted bool      `json:"isCompleted"`
	}
)

const (
	GoalSavings    GoalCategory = "savings"
	GoalPurchase   GoalCategory = "purchase"
	GoalInvestment GoalCategory = "investment"
	GoalDebt       GoalCategory = "debt"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	AlertBudgetExceeded AlertType = "budget_exceeded"
	AlertGoalDeadline   AlertType = "goal_deadline"
	AlertSpendingSpike  AlertType = "spending_spike"
	AlertCardLimit      AlertType = "card_limit"

	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeverityDanger  AlertSeverity = "danger"
)

var (
	ErrEmptyTitle          = errors.New("empty title")
	ErrInvalidTarget       = errors.New("target amount must be positive")
	ErrNegativeProgress    = errors.New("current amount cannot be negative")
	ErrInvalidGoalCategory = errors.New("invalid goal category")
	ErrInvalidPriority     = errors.New("invalid priority")
)

func (c GoalCategory) Valid() bool {
	switch c {
	case GoalSavings, GoalPurchase, GoalInvestment, GoalDebt:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount <= 0 || math.IsNaN(g.TargetAmount) || math.IsInf(g.TargetAmount, 0) {
		return ErrInvalidTarget
	}
	if g.CurrentAmount < 0 || math.IsNaN(g.CurrentAmount) {
		return ErrNegativeProgress
	}
	if g.Deadline.IsZero() {
		return ErrInvalidDate
	}
	if !g.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidGoalCategory, g.Category)
	}
	if !g.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, g.Priority)
	}
	return nil
}

// Completed reports whether the goal reached its target.
func (g Goal) Completed() bool {
	return g.CurrentAmount >= g.TargetAmount
}

func (p PlannedPurchase) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if err := validAmount(p.Amount); err != nil {
		return err
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, p.Category)
	}
	if p.PlannedDate.IsZero() {
		return ErrInvalidDate
	}
	if !p.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, p.Priority)
	}
	return nil
}
