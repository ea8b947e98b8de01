package services

import (
	"errors"
	"fmt"

	"fintrack/internal/core"
)

var ErrCardNotFound = errors.New("credit card not found")

// CardUsage is one card's utilization for a billing month.
type CardUsage struct {
	CardID    string          `json:"cardId"`
	Name      string          `json:"name"`
	Limit     float64         `json:"limit"`
	Used      float64         `json:"used"`
	Available float64         `json:"available"`
	Percent   float64         `json:"percent"`
	Status    core.CardStatus `json:"status"`
}

// FleetSummary adds up usage and limits across every card. The percent is
// computed from the two sums, not averaged per card.
type FleetSummary struct {
	Used      float64 `json:"used"`
	Limit     float64 `json:"limit"`
	Available float64 `json:"available"`
	Percent   float64 `json:"percent"`
}

// CreditCardUsage reports the usage of one card for the bill of month.
func CreditCardUsage(state core.FinanceState, cardID string, month core.Month) (CardUsage, error) {
	card, ok := state.CreditCard(cardID)
	if !ok {
		return CardUsage{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	return usageFor(card, state.Expenses, month), nil
}

// FleetUsage computes per-card usage for month along with the fleet rollup.
func FleetUsage(state core.FinanceState, month core.Month) (FleetSummary, []CardUsage) {
	var fleet FleetSummary
	cards := make([]CardUsage, 0, len(state.CreditCards))
	for _, card := range state.CreditCards {
		u := usageFor(card, state.Expenses, month)
		fleet.Used += u.Used
		fleet.Limit += u.Limit
		cards = append(cards, u)
	}
	fleet.Available = fleet.Limit - fleet.Used
	fleet.Percent = usagePercent(fleet.Used, fleet.Limit)
	return fleet, cards
}

// usageFor buckets credit expenses by billing month rather than purchase date.
func usageFor(card core.CreditCard, expenses []core.Expense, month core.Month) CardUsage {
	var used float64
	for _, e := range expenses {
		if e.PaymentMethod != core.PaymentCredit || e.CreditCardID != card.ID {
			continue
		}
		if ResolveBillingMonth(e.Date, card.DueDay) == month {
			used += e.Amount
		}
	}
	percent := usagePercent(used, card.Limit)
	return CardUsage{
		CardID:    card.ID,
		Name:      card.Name,
		Limit:     card.Limit,
		Used:      used,
		Available: card.Limit - used,
		Percent:   percent,
		Status:    core.ClassifyCardUsage(percent),
	}
}

func usagePercent(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return used / limit * 100
}
