package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"

	TransactionExpense TransactionType = "expense"
	TransactionIncome  TransactionType = "income"

	FrequencyMonthly Frequency = "monthly"

	maxDescriptionLen = 200
)

type (
	PaymentMethod   string
	TransactionType string
	Frequency       string

	// BudgetRule splits total monthly income across the three expense types,
	// in whole percentages.
	BudgetRule struct {
		Essentials  int `json:"essentials"`
		Personal    int `json:"personal"`
		Investments int `json:"investments"`
	}

	CreditCard struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Limit    float64 `json:"limit"`
		DueDay   int     `json:"dueDay"`
		Color    string  `json:"color"`
		IsActive bool    `json:"isActive"`
	}

	// Installments describes the position of one expense within a purchase
	// split across consecutive months.
	Installments struct {
		Total          int     `json:"total"`
		Current        int     `json:"current"`
		OriginalAmount float64 `json:"originalAmount"`
	}

	Expense struct {
		ID                  string        `json:"id"`
		Amount              float64       `json:"amount"`
		Category            Category      `json:"category"`
		Description         string        `json:"description,omitempty"`
		Date                time.Time     `json:"date"`
		Type                ExpenseType   `json:"type"`
		PaymentMethod       PaymentMethod `json:"paymentMethod"`
		CreditCardID        string        `json:"creditCardId,omitempty"`
		Installments        *Installments `json:"installments,omitempty"`
		ShowInBankStatement bool          `json:"showInBankStatement,omitempty"`
	}

	Income struct {
		ID          string    `json:"id"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description,omitempty"`
		Date        time.Time `json:"date"`
	}

	// RecurringTransaction applies to every month while active. It is never
	// materialized into dated records.
	RecurringTransaction struct {
		ID            string          `json:"id"`
		Amount        float64         `json:"amount"`
		Category      Category        `json:"category,omitempty"`
		Description   string          `json:"description"`
		Type          TransactionType `json:"type"`
		ExpenseType   ExpenseType     `json:"expenseType,omitempty"`
		PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
		Frequency     Frequency       `json:"frequency"`
		IsActive      bool            `json:"isActive"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrEmptyDescription     = errors.New("empty description")
	ErrDescriptionTooLong   = fmt.Errorf("description too long (max %d characters)", maxDescriptionLen)
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidExpenseType   = errors.New("invalid expense type")
	ErrInvalidPayment       = errors.New("invalid payment method")
	ErrMissingCreditCard    = errors.New("credit expense requires a credit card")
	ErrUnexpectedCreditCard = errors.New("cash expense cannot reference a credit card")
	ErrInvalidInstallments  = errors.New("invalid installments")
	ErrInvalidDueDay        = errors.New("due day must be between 1 and 31")
	ErrInvalidLimit         = errors.New("credit limit cannot be negative")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidBudgetRule    = errors.New("invalid budget rule")
	ErrInvalidTransaction   = errors.New("invalid transaction type")
	ErrInvalidFrequency     = errors.New("invalid frequency")
)

// validAmount rejects zero, negative and non-finite values.
func validAmount(v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func validDescription(s string, required bool) error {
	if required && strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if len(s) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCredit
}

func (t TransactionType) Valid() bool {
	return t == TransactionExpense || t == TransactionIncome
}

// Validate checks each percentage is within [0,100]. The rule is not
// required to sum to 100; see ValidateTotal.
func (r BudgetRule) Validate() error {
	for _, pct := range []int{r.Essentials, r.Personal, r.Investments} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: percentage %d out of range", ErrInvalidBudgetRule, pct)
		}
	}
	return nil
}

// ValidateTotal additionally requires the percentages to add up to 100.
func (r BudgetRule) ValidateTotal() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if sum := r.Essentials + r.Personal + r.Investments; sum != 100 {
		return fmt.Errorf("%w: percentages sum to %d, want 100", ErrInvalidBudgetRule, sum)
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Limit < 0 || math.IsNaN(c.Limit) || math.IsInf(c.Limit, 0) {
		return ErrInvalidLimit
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (i Installments) Validate() error {
	if i.Total < 1 || i.Current < 1 || i.Current > i.Total {
		return fmt.Errorf("%w: %d/%d", ErrInvalidInstallments, i.Current, i.Total)
	}
	if err := validAmount(i.OriginalAmount); err != nil {
		return fmt.Errorf("%w: original amount", ErrInvalidInstallments)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validAmount(e.Amount); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidExpenseType, e.Type)
	}
	if err := validDescription(e.Description, false); err != nil {
		return err
	}
	switch e.PaymentMethod {
	case PaymentCredit:
		if strings.TrimSpace(e.CreditCardID) == "" {
			return ErrMissingCreditCard
		}
	case PaymentCash:
		if e.CreditCardID != "" {
			return ErrUnexpectedCreditCard
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPayment, e.PaymentMethod)
	}
	if e.Installments != nil {
		if err := e.Installments.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (i Income) Validate() error {
	if err := validAmount(i.Amount); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	return validDescription(i.Description, false)
}

func (r RecurringTransaction) Validate() error {
	if err := validAmount(r.Amount); err != nil {
		return err
	}
	if err := validDescription(r.Description, true); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransaction, r.Type)
	}
	if r.Frequency != FrequencyMonthly {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if r.Category != "" && !r.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, r.Category)
	}
	if r.ExpenseType != "" && !r.ExpenseType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidExpenseType, r.ExpenseType)
	}
	if r.PaymentMethod != "" && !r.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPayment, r.PaymentMethod)
	}
	return nil
}
