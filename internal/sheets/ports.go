package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// MonthlyReport is one row of the reports sheet: a user's totals for a month.
type MonthlyReport struct {
	UserID          string
	Month           core.Month
	Income          float64
	Spent           float64
	EssentialSpent  float64
	PersonalSpent   float64
	InvestmentSpent float64
	Remaining       float64
	HealthPercent   float64
	Health          core.Health
	CardsUsed       float64
	UpdatedAt       time.Time
}

// NewMonthlyReport flattens a month summary into a report row.
func NewMonthlyReport(userID string, s services.MonthSummary, updatedAt time.Time) MonthlyReport {
	return MonthlyReport{
		UserID:          userID,
		Month:           s.Month,
		Income:          s.TotalMonthlyIncome,
		Spent:           s.TotalSpent,
		EssentialSpent:  s.EssentialSpent,
		PersonalSpent:   s.PersonalSpent,
		InvestmentSpent: s.InvestmentSpent,
		Remaining:       s.TotalRemaining,
		HealthPercent:   s.HealthPercent,
		Health:          s.Health,
		CardsUsed:       s.Fleet.Used,
		UpdatedAt:       updatedAt,
	}
}

// Ports for outbound adapters.
type (
	// ReportWriter stores monthly reports. Writing the same user and month
	// twice replaces the earlier row.
	ReportWriter interface {
		UpsertReport(ctx context.Context, r MonthlyReport) (rowRef string, err error)
	}

	// ReportLister reads back every report row of a year.
	ReportLister interface {
		ListReports(ctx context.Context, year int) ([]MonthlyReport, error)
	}

	ReportStore interface {
		ReportWriter
		ReportLister
	}
)
