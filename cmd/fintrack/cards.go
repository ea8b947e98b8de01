package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage credit cards and see their usage",
	}
	cmd.AddCommand(cardAddCmd(), cardListCmd(), cardUsageCmd(), cardToggleCmd(), cardRemoveCmd())
	return cmd
}

// resolveCard accepts a card id, id prefix or case-insensitive name.
func resolveCard(st core.FinanceState, ref string) (string, error) {
	if ref == "" {
		return "", core.ErrMissingCreditCard
	}
	for _, c := range st.CreditCards {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return resolveID("credit card", ref, idsOf(st.CreditCards, func(c core.CreditCard) string { return c.ID }))
}

func cardAddCmd() *cobra.Command {
	var (
		limit  string
		dueDay int
		color  string
	)
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a credit card",
		Example: `  fintrack card add Visa --limit 3000 --due 10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lim, err := core.ParseAmount(limit)
			if err != nil {
				return fmt.Errorf("limit: %w", err)
			}
			card, err := sess.store.AddCreditCard(cmd.Context(), store.CardInput{Name: args[0], Limit: lim, DueDay: dueDay, Color: color})
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Card %s added, limit %s, due on day %d (%s)", card.Name, money(card.Limit), card.DueDay, shortID(card.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&limit, "limit", "", "credit limit")
	cmd.Flags().IntVar(&dueDay, "due", 10, "day of the month the bill closes (1-31)")
	cmd.Flags().StringVar(&color, "color", "#7D56F4", "display color")
	cmd.MarkFlagRequired("limit")
	return cmd
}

func cardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cards with their usage for the selected month",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			s := sess.store.SelectedSummary()
			fmt.Fprintln(w, titleStyle.Render("Credit cards, bill of "+s.Month.String()))
			if len(s.Cards) == 0 {
				empty(w, "credit cards")
				return nil
			}
			st := sess.store.Snapshot()
			for _, u := range s.Cards {
				card, _ := st.CreditCard(u.CardID)
				name := u.Name
				if !card.IsActive {
					name += subtleStyle.Render(" (inactive)")
				}
				fmt.Fprintf(w, "%s  %-16s %s %s  %s / %s  due %d\n",
					subtleStyle.Render(shortID(u.CardID)), name,
					bar(u.Percent, 20), cardStyle(u.Status).Render(fmt.Sprintf("%5.1f%%", u.Percent)),
					money(u.Used), money(u.Limit), card.DueDay)
			}
			f := s.Fleet
			row(w, "All cards", fmt.Sprintf("%s / %s (%.1f%%), %s available", money(f.Used), money(f.Limit), f.Percent, money(f.Available)))
			return nil
		},
	}
}

func cardUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage <card>",
		Short: "Show one card's usage for the selected billing month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			id, err := resolveCard(st, args[0])
			if err != nil {
				return err
			}
			u, err := sess.store.CardUsage(id, st.Month())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, titleStyle.Render(u.Name+", bill of "+st.Month().String()))
			row(w, "Used", money(u.Used))
			row(w, "Limit", money(u.Limit))
			row(w, "Available", money(u.Available))
			row(w, "Usage", bar(u.Percent, 20)+" "+cardStyle(u.Status).Render(fmt.Sprintf("%.1f%%", u.Percent)))
			return nil
		},
	}
}

func cardToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <card>",
		Short: "Activate or deactivate a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			id, err := resolveCard(st, args[0])
			if err != nil {
				return err
			}
			card, _ := st.CreditCard(id)
			if err := sess.store.SetCreditCardActive(cmd.Context(), id, !card.IsActive); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Card %s %s", card.Name, activeWord(!card.IsActive))
			return nil
		},
	}
}

func cardRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <card>",
		Aliases: []string{"remove"},
		Short:   "Remove a card; its expenses are kept",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveCard(sess.store.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := sess.store.RemoveCreditCard(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Card removed")
			return nil
		},
	}
}

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rec"},
		Short:   "Manage monthly recurring expenses and incomes",
	}
	cmd.AddCommand(recurringAddCmd(), recurringListCmd(), recurringToggleCmd(), recurringRemoveCmd())
	return cmd
}

func recurringAddCmd() *cobra.Command {
	var (
		income   bool
		category string
		payment  string
	)
	cmd := &cobra.Command{
		Use:   "add <amount> <description>",
		Short: "Add a monthly recurring transaction",
		Example: `  fintrack recurring add 750 rent -c housing
  fintrack recurring add 200 "side job" --income`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}
			in := store.RecurringInput{Amount: amount, Description: args[1], Type: core.TransactionExpense}
			if income {
				in.Type = core.TransactionIncome
			} else {
				if in.Category, err = core.ParseCategory(category); err != nil {
					return err
				}
				if in.PaymentMethod, err = parsePayment(payment); err != nil {
					return err
				}
			}
			r, err := sess.store.AddRecurring(cmd.Context(), in)
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Monthly %s of %s added (%s)", r.Type, money(r.Amount), shortID(r.ID))
			return nil
		},
	}
	cmd.Flags().BoolVar(&income, "income", false, "recurring income instead of expense")
	cmd.Flags().StringVarP(&category, "category", "c", string(core.CategoryOther), "expense category")
	cmd.Flags().StringVarP(&payment, "payment", "p", string(core.PaymentCash), "payment method (cash, credit)")
	return cmd
}

func recurringListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recurring transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st := sess.store.Snapshot()
			fmt.Fprintln(w, titleStyle.Render("Recurring transactions"))
			if len(st.RecurringTransactions) == 0 {
				empty(w, "recurring transactions")
				return nil
			}
			for _, r := range st.RecurringTransactions {
				line := fmt.Sprintf("%s  %-7s %10s  %-13s %s", shortID(r.ID), r.Type, money(r.Amount), r.Category, r.Description)
				if !r.IsActive {
					line = subtleStyle.Render(line + " (paused)")
				}
				fmt.Fprintln(w, line)
			}
			s := sess.store.SelectedSummary()
			row(w, "Monthly expenses", money(s.RecurringExpenses))
			row(w, "Monthly incomes", money(s.RecurringIncomes))
			return nil
		},
	}
}

func recurringIDs(st core.FinanceState) []string {
	return idsOf(st.RecurringTransactions, func(r core.RecurringTransaction) string { return r.ID })
}

func recurringToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume a recurring transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			id, err := resolveID("recurring transaction", args[0], recurringIDs(st))
			if err != nil {
				return err
			}
			var active bool
			for _, r := range st.RecurringTransactions {
				if r.ID == id {
					active = !r.IsActive
				}
			}
			if err := sess.store.SetRecurringActive(cmd.Context(), id, active); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Recurring transaction %s", activeWord(active))
			return nil
		},
	}
}

func recurringRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a recurring transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID("recurring transaction", args[0], recurringIDs(sess.store.Snapshot()))
			if err != nil {
				return err
			}
			if err := sess.store.RemoveRecurring(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Recurring transaction removed")
			return nil
		},
	}
}

func activeWord(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}
