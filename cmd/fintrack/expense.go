package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"exp"},
		Short:   "Record and list expenses",
	}
	cmd.AddCommand(expenseAddCmd(), expenseEditCmd(), expenseListCmd(), expenseRemoveCmd())
	return cmd
}

type expenseFlags struct {
	category     string
	description  string
	date         string
	payment      string
	card         string
	installments int
	current      int
	bank         bool
	expenseType  string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.category, "category", "c", string(core.CategoryOther), "category")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description")
	cmd.Flags().StringVar(&f.date, "date", "", "purchase date (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVarP(&f.payment, "payment", "p", string(core.PaymentCash), "payment method (cash, credit)")
	cmd.Flags().StringVar(&f.card, "card", "", "credit card id or name prefix, required for credit")
	cmd.Flags().IntVarP(&f.installments, "installments", "n", 1, "number of monthly installments (credit only)")
	cmd.Flags().IntVar(&f.current, "current", 1, "installment the purchase starts at")
	cmd.Flags().BoolVar(&f.bank, "bank", false, "show on the bank statement")
	cmd.Flags().StringVar(&f.expenseType, "type", "", "budget bucket override (essential, personal, investment)")
}

func (f *expenseFlags) input(amountArg string, st core.FinanceState) (store.ExpenseInput, error) {
	amount, err := core.ParseAmount(amountArg)
	if err != nil {
		return store.ExpenseInput{}, err
	}
	category, err := core.ParseCategory(f.category)
	if err != nil {
		return store.ExpenseInput{}, err
	}
	payment, err := parsePayment(f.payment)
	if err != nil {
		return store.ExpenseInput{}, err
	}
	when, err := parseDate(f.date, time.Now())
	if err != nil {
		return store.ExpenseInput{}, err
	}
	typ, err := parseExpenseTypeFlag(f.expenseType)
	if err != nil {
		return store.ExpenseInput{}, err
	}
	in := store.ExpenseInput{
		Amount:              amount,
		Category:            category,
		Description:         f.description,
		Date:                when,
		PaymentMethod:       payment,
		Installments:        f.installments,
		CurrentInstallment:  f.current,
		ShowInBankStatement: f.bank,
		Type:                typ,
	}
	if payment == core.PaymentCredit {
		cardID, err := resolveCard(st, f.card)
		if err != nil {
			return store.ExpenseInput{}, err
		}
		in.CreditCardID = cardID
	}
	return in, nil
}

func expenseAddCmd() *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense",
		Example: `  fintrack expense add 42.50 -c food -d "groceries"
  fintrack expense add 900 -c shopping -p credit --card visa -n 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.requireOnboarded(); err != nil {
				return err
			}
			in, err := f.input(args[0], sess.store.Snapshot())
			if err != nil {
				return err
			}
			created, err := sess.store.AddExpense(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(created) == 1 {
				e := created[0]
				done(w, "Expense %s %s on %s (%s)", money(e.Amount), e.Category, e.Date.Format(dateLayout), shortID(e.ID))
				return nil
			}
			done(w, "%d installments of %s created", len(created), money(created[0].Amount))
			for _, e := range created {
				fmt.Fprintf(w, "  %s  %s  %s\n", subtleStyle.Render(shortID(e.ID)), e.Date.Format(dateLayout), e.Description)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func expenseEditCmd() *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "edit <id> <amount>",
		Short: "Replace the fields of an expense",
		Long: `Replace the fields of an expense. Unset flags take their defaults, not the
previous values. Installment details of a split purchase are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			id, err := resolveID("expense", args[0], expenseIDs(st))
			if err != nil {
				return err
			}
			in, err := f.input(args[1], st)
			if err != nil {
				return err
			}
			e, err := sess.store.UpdateExpense(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Expense %s updated", shortID(e.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func expenseListCmd() *cobra.Command {
	var bank bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the expenses of the selected month",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			month := st.Month()
			expenses := services.ExpensesIn(st.Expenses, month)
			title := "Expenses " + month.String()
			if bank {
				expenses = services.BankStatementExpenses(st, month)
				title = "Bank statement " + month.String()
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, titleStyle.Render(title))
			if len(expenses) == 0 {
				empty(w, "expenses")
				return nil
			}
			printExpenses(w, st, expenses)
			return nil
		},
	}
	cmd.Flags().BoolVar(&bank, "bank", false, "only expenses shown on the bank statement")
	return cmd
}

func printExpenses(w io.Writer, st core.FinanceState, expenses []core.Expense) {
	var total float64
	for _, e := range expenses {
		total += e.Amount
		pay := string(e.PaymentMethod)
		if card, ok := st.CreditCard(e.CreditCardID); ok {
			pay = card.Name
		}
		if e.Installments != nil {
			pay += fmt.Sprintf(" %d/%d", e.Installments.Current, e.Installments.Total)
		}
		fmt.Fprintf(w, "%s  %s  %10s  %-13s %-10s %-14s %s\n",
			subtleStyle.Render(shortID(e.ID)), e.Date.Format(dateLayout), money(e.Amount),
			e.Category, e.Type, pay, e.Description)
	}
	fmt.Fprintln(w, boldStyle.Render(fmt.Sprintf("%d expenses, total %s", len(expenses), money(total))))
}

func expenseRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove one expense; other installments of the purchase stay",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID("expense", args[0], expenseIDs(sess.store.Snapshot()))
			if err != nil {
				return err
			}
			if err := sess.store.RemoveExpense(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Expense removed")
			return nil
		},
	}
}

func expenseIDs(st core.FinanceState) []string {
	return idsOf(st.Expenses, func(e core.Expense) string { return e.ID })
}
