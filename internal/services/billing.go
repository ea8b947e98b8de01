package services

import (
	"time"

	"fintrack/internal/core"
)

// ResolveBillingMonth returns the statement month a card purchase is charged
// to. A statement closes on dueDay: purchases made after it roll into the
// next month's bill. dueDay is not clamped to the length of short months.
func ResolveBillingMonth(purchase time.Time, dueDay int) core.Month {
	m := core.MonthOf(purchase)
	if purchase.Day() > dueDay {
		return m.Next()
	}
	return m
}
