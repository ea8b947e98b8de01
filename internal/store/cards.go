package store

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type CardInput struct {
	Name   string
	Limit  float64
	DueDay int
	Color  string
}

func (s *Store) AddCreditCard(ctx context.Context, in CardInput) (core.CreditCard, error) {
	card := core.CreditCard{
		ID:       s.newID(),
		Name:     in.Name,
		Limit:    in.Limit,
		DueDay:   in.DueDay,
		Color:    in.Color,
		IsActive: true,
	}
	if err := card.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	err := s.mutate(ctx, "add_credit_card", true, func(st *core.FinanceState) error {
		st.CreditCards = append(st.CreditCards, card)
		return nil
	})
	if err == nil {
		slog.InfoContext(ctx, "Credit card added",
			log.FieldComponent, log.ComponentStore,
			log.FieldCardID, card.ID)
	}
	return card, err
}

// UpdateCreditCard changes a card's settings. A new due day moves past
// purchases to other billing months the next time usage is computed.
func (s *Store) UpdateCreditCard(ctx context.Context, id string, in CardInput) (core.CreditCard, error) {
	var updated core.CreditCard
	err := s.mutate(ctx, "update_credit_card", true, func(st *core.FinanceState) error {
		i := indexOf(st.CreditCards, func(c core.CreditCard) bool { return c.ID == id })
		if i < 0 {
			return notFound("credit card", id)
		}
		c := st.CreditCards[i]
		c.Name, c.Limit, c.DueDay, c.Color = in.Name, in.Limit, in.DueDay, in.Color
		if err := c.Validate(); err != nil {
			return err
		}
		st.CreditCards[i] = c
		updated = c
		return nil
	})
	return updated, err
}

func (s *Store) SetCreditCardActive(ctx context.Context, id string, active bool) error {
	return s.mutate(ctx, "set_credit_card_active", true, func(st *core.FinanceState) error {
		i := indexOf(st.CreditCards, func(c core.CreditCard) bool { return c.ID == id })
		if i < 0 {
			return notFound("credit card", id)
		}
		st.CreditCards[i].IsActive = active
		return nil
	})
}

// RemoveCreditCard deletes the card only. Expenses charged to it keep their
// card id and drop out of every card's usage.
func (s *Store) RemoveCreditCard(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_credit_card", true, func(st *core.FinanceState) error {
		i := indexOf(st.CreditCards, func(c core.CreditCard) bool { return c.ID == id })
		if i < 0 {
			return notFound("credit card", id)
		}
		st.CreditCards = append(st.CreditCards[:i], st.CreditCards[i+1:]...)
		return nil
	})
}

// RecurringInput describes a monthly recurring transaction.
type RecurringInput struct {
	Amount      float64
	Description string
	Type        core.TransactionType
	Category    core.Category
	// ExpenseType defaults to the type of Category for expenses.
	ExpenseType   core.ExpenseType
	PaymentMethod core.PaymentMethod
}

func (s *Store) buildRecurring(id string, in RecurringInput) (core.RecurringTransaction, error) {
	r := core.RecurringTransaction{
		ID:            id,
		Amount:        in.Amount,
		Category:      in.Category,
		Description:   in.Description,
		Type:          in.Type,
		ExpenseType:   in.ExpenseType,
		PaymentMethod: in.PaymentMethod,
		Frequency:     core.FrequencyMonthly,
		IsActive:      true,
	}
	if r.Type == core.TransactionExpense && r.ExpenseType == "" && r.Category != "" {
		r.ExpenseType = s.types.TypeFor(r.Category)
	}
	return r, r.Validate()
}

func (s *Store) AddRecurring(ctx context.Context, in RecurringInput) (core.RecurringTransaction, error) {
	r, err := s.buildRecurring(s.newID(), in)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	err = s.mutate(ctx, "add_recurring", true, func(st *core.FinanceState) error {
		st.RecurringTransactions = append(st.RecurringTransactions, r)
		return nil
	})
	return r, err
}

// UpdateRecurring replaces the fields of a recurring transaction, keeping
// its active flag.
func (s *Store) UpdateRecurring(ctx context.Context, id string, in RecurringInput) (core.RecurringTransaction, error) {
	var updated core.RecurringTransaction
	err := s.mutate(ctx, "update_recurring", true, func(st *core.FinanceState) error {
		i := indexOf(st.RecurringTransactions, func(r core.RecurringTransaction) bool { return r.ID == id })
		if i < 0 {
			return notFound("recurring transaction", id)
		}
		r, err := s.buildRecurring(id, in)
		if err != nil {
			return err
		}
		r.IsActive = st.RecurringTransactions[i].IsActive
		st.RecurringTransactions[i] = r
		updated = r
		return nil
	})
	return updated, err
}

func (s *Store) SetRecurringActive(ctx context.Context, id string, active bool) error {
	return s.mutate(ctx, "set_recurring_active", true, func(st *core.FinanceState) error {
		i := indexOf(st.RecurringTransactions, func(r core.RecurringTransaction) bool { return r.ID == id })
		if i < 0 {
			return notFound("recurring transaction", id)
		}
		st.RecurringTransactions[i].IsActive = active
		return nil
	})
}

func (s *Store) RemoveRecurring(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_recurring", true, func(st *core.FinanceState) error {
		i := indexOf(st.RecurringTransactions, func(r core.RecurringTransaction) bool { return r.ID == id })
		if i < 0 {
			return notFound("recurring transaction", id)
		}
		st.RecurringTransactions = append(st.RecurringTransactions[:i], st.RecurringTransactions[i+1:]...)
		return nil
	})
}
