package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// lastColumn is the column of the final report field.
const lastColumn = "L"

func reportHeader() []any {
	return []any{
		"Month", "User", "Income", "Spent", "Essential", "Personal", "Investment",
		"Remaining", "Health %", "Health", "Cards", "Updated",
	}
}

func reportValues(r ports.MonthlyReport) []any {
	return []any{
		r.Month.String(),
		r.UserID,
		round2(r.Income),
		round2(r.Spent),
		round2(r.EssentialSpent),
		round2(r.PersonalSpent),
		round2(r.InvestmentSpent),
		round2(r.Remaining),
		round2(r.HealthPercent),
		string(r.Health),
		round2(r.CardsUsed),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// parseReportRow is the inverse of reportValues. Header and malformed rows
// report false.
func parseReportRow(row []any) (ports.MonthlyReport, bool) {
	if len(row) < 12 {
		return ports.MonthlyReport{}, false
	}
	month, err := core.ParseMonth(cell(row[0]))
	if err != nil {
		return ports.MonthlyReport{}, false
	}
	r := ports.MonthlyReport{
		UserID: cell(row[1]),
		Month:  month,
		Health: core.Health(cell(row[9])),
	}
	nums := []*float64{
		&r.Income, &r.Spent, &r.EssentialSpent, &r.PersonalSpent,
		&r.InvestmentSpent, &r.Remaining, &r.HealthPercent,
	}
	for i, dst := range nums {
		v, err := toFloat(row[2+i])
		if err != nil {
			return ports.MonthlyReport{}, false
		}
		*dst = v
	}
	cards, err := toFloat(row[10])
	if err != nil {
		return ports.MonthlyReport{}, false
	}
	r.CardsUsed = cards
	if t, err := time.Parse(time.RFC3339, cell(row[11])); err == nil {
		r.UpdatedAt = t
	}
	return r, true
}

// findReportRow returns the 1-based sheet row holding month and user, or 0.
func findReportRow(values [][]any, month, userID string) int {
	for i, row := range values {
		if len(row) < 2 {
			continue
		}
		if cell(row[0]) == month && cell(row[1]) == userID {
			return i + 1
		}
	}
	return 0
}

func cell(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
	default:
		return 0, fmt.Errorf("unexpected cell %T", v)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// four-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
