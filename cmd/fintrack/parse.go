package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD, "today" and "yesterday". An empty value is
// today.
func parseDate(s string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// parseBudgetRule reads an "essentials/personal/investments" split such as
// "50/30/20".
func parseBudgetRule(s string) (core.BudgetRule, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return core.BudgetRule{}, fmt.Errorf("invalid budget rule %q: expected E/P/I, e.g. 50/30/20", s)
	}
	var pct [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return core.BudgetRule{}, fmt.Errorf("invalid budget rule %q: %q is not a whole number", s, p)
		}
		pct[i] = n
	}
	rule := core.BudgetRule{Essentials: pct[0], Personal: pct[1], Investments: pct[2]}
	if err := rule.ValidateTotal(); err != nil {
		return core.BudgetRule{}, err
	}
	return rule, nil
}

func parsePayment(s string) (core.PaymentMethod, error) {
	p := core.PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (use cash or credit)", core.ErrInvalidPayment, s)
	}
	return p, nil
}

func parsePriority(s string) (core.Priority, error) {
	p := core.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (use low, medium or high)", core.ErrInvalidPriority, s)
	}
	return p, nil
}

func parseGoalCategory(s string) (core.GoalCategory, error) {
	c := core.GoalCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidGoalCategory, s)
	}
	return c, nil
}

// parseExpenseTypeFlag returns "" for an empty flag so the category default
// applies.
func parseExpenseTypeFlag(s string) (core.ExpenseType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseExpenseType(s)
}

// resolveID matches ref against ids, accepting an exact id or a unique
// prefix of one.
func resolveID(kind, ref string, ids []string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("missing %s id", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s matches %q", kind, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(matches))
	}
}

func idsOf[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
