package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// ErrUnknownCard is returned when an expense references a card that does not
// exist.
var ErrUnknownCard = errors.New("unknown credit card")

// ExpenseInput is what the user submits for a new or edited expense.
type ExpenseInput struct {
	// Amount is the full purchase amount, before any installment split, on
	// AddExpense. On UpdateExpense it is the amount of the edited record.
	Amount        float64
	Category      core.Category
	Description   string
	Date          time.Time
	PaymentMethod core.PaymentMethod
	CreditCardID  string
	// Installments is the number of installments; values below 2 mean a
	// single payment. Only credit purchases are split.
	Installments int
	// CurrentInstallment defaults to 1.
	CurrentInstallment  int
	ShowInBankStatement bool
	// Type overrides the type derived from Category.
	Type core.ExpenseType
}

func (s *Store) buildExpense(st *core.FinanceState, id string, in ExpenseInput) (core.Expense, error) {
	e := core.Expense{
		ID:                  id,
		Amount:              in.Amount,
		Category:            in.Category,
		Description:         in.Description,
		Date:                in.Date,
		Type:                in.Type,
		PaymentMethod:       in.PaymentMethod,
		CreditCardID:        in.CreditCardID,
		ShowInBankStatement: in.ShowInBankStatement,
	}
	if e.Type == "" {
		e.Type = s.types.TypeFor(in.Category)
	}
	if e.PaymentMethod == core.PaymentCredit {
		if _, ok := st.CreditCard(e.CreditCardID); !ok && e.CreditCardID != "" {
			return core.Expense{}, fmt.Errorf("%w: %s", ErrUnknownCard, e.CreditCardID)
		}
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// AddExpense records a new expense. A credit purchase with more than one
// installment is expanded into one expense per installment; all created
// records are returned.
func (s *Store) AddExpense(ctx context.Context, in ExpenseInput) ([]core.Expense, error) {
	var created []core.Expense
	err := s.mutate(ctx, "add_expense", true, func(st *core.FinanceState) error {
		e, err := s.buildExpense(st, s.newID(), in)
		if err != nil {
			return err
		}
		if e.PaymentMethod == core.PaymentCredit && in.Installments > 1 {
			current := in.CurrentInstallment
			if current == 0 {
				current = 1
			}
			e.Installments = &core.Installments{
				Total:          in.Installments,
				Current:        current,
				OriginalAmount: in.Amount,
			}
			if err := e.Installments.Validate(); err != nil {
				return err
			}
		}
		created = services.ExpandInstallments(e)
		st.Expenses = append(st.Expenses, created...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Expense added",
		log.FieldComponent, log.ComponentStore,
		log.FieldExpenseID, created[0].ID,
		log.FieldAmount, in.Amount,
		log.FieldCategory, in.Category,
		log.FieldCount, len(created))
	return created, nil
}

// UpdateExpense replaces the fields of one expense. in.Amount becomes the
// record's amount as is, with no split. A credit installment keeps its
// installment information and its "(i/n)" label; siblings are left
// untouched.
func (s *Store) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	var updated core.Expense
	err := s.mutate(ctx, "update_expense", true, func(st *core.FinanceState) error {
		i := indexOf(st.Expenses, func(e core.Expense) bool { return e.ID == id })
		if i < 0 {
			return notFound("expense", id)
		}
		e, err := s.buildExpense(st, id, in)
		if err != nil {
			return err
		}
		if old := st.Expenses[i].Installments; old != nil && e.PaymentMethod == core.PaymentCredit {
			inst := *old
			e.Installments = &inst
			e.Description = services.InstallmentDescription(e.Description, e.Installments)
			if err := e.Validate(); err != nil {
				return err
			}
		}
		st.Expenses[i] = e
		updated = e
		return nil
	})
	return updated, err
}

// RemoveExpense deletes a single expense. Other installments of the same
// purchase remain.
func (s *Store) RemoveExpense(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_expense", true, func(st *core.FinanceState) error {
		i := indexOf(st.Expenses, func(e core.Expense) bool { return e.ID == id })
		if i < 0 {
			return notFound("expense", id)
		}
		st.Expenses = append(st.Expenses[:i], st.Expenses[i+1:]...)
		return nil
	})
}

// IncomeInput describes a one-off income.
type IncomeInput struct {
	Amount      float64
	Description string
	Date        time.Time
}

func (s *Store) AddIncome(ctx context.Context, in IncomeInput) (core.Income, error) {
	inc := core.Income{
		ID:          s.newID(),
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := inc.Validate(); err != nil {
		return core.Income{}, err
	}
	err := s.mutate(ctx, "add_income", true, func(st *core.FinanceState) error {
		st.Incomes = append(st.Incomes, inc)
		return nil
	})
	return inc, err
}

func (s *Store) RemoveIncome(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_income", true, func(st *core.FinanceState) error {
		i := indexOf(st.Incomes, func(inc core.Income) bool { return inc.ID == id })
		if i < 0 {
			return notFound("income", id)
		}
		st.Incomes = append(st.Incomes[:i], st.Incomes[i+1:]...)
		return nil
	})
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}
