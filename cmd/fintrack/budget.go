package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func onboardCmd() *cobra.Command {
	var (
		income string
		rule   string
	)
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set the monthly income and budget rule",
		Example: `  fintrack onboard --income 2500
  fintrack onboard --income 2500 --rule 60/25/15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(income)
			if err != nil {
				return fmt.Errorf("income: %w", err)
			}
			r, err := parseBudgetRule(rule)
			if err != nil {
				return err
			}
			if err := sess.store.CompleteOnboarding(cmd.Context(), amount, r); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Income %s, budget %d/%d/%d", money(amount), r.Essentials, r.Personal, r.Investments)
			return nil
		},
	}
	cmd.Flags().StringVar(&income, "income", "", "monthly net income")
	cmd.Flags().StringVar(&rule, "rule", "50/30/20", "budget split essentials/personal/investments")
	cmd.MarkFlagRequired("income")
	return cmd
}

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage base income and one-off incomes",
	}
	cmd.AddCommand(incomeSetCmd(), incomeAddCmd(), incomeListCmd(), incomeRemoveCmd())
	return cmd
}

func incomeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <amount>",
		Short: "Change the base monthly income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}
			if err := sess.store.UpdateIncome(cmd.Context(), amount); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Base income set to %s", money(amount))
			return nil
		},
	}
}

func incomeAddCmd() *cobra.Command {
	var (
		description string
		date        string
	)
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a one-off income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}
			when, err := parseDate(date, time.Now())
			if err != nil {
				return err
			}
			in, err := sess.store.AddIncome(cmd.Context(), store.IncomeInput{Amount: amount, Description: description, Date: when})
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Income %s recorded on %s (%s)", money(in.Amount), in.Date.Format(dateLayout), shortID(in.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD, today, yesterday)")
	return cmd
}

func incomeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the incomes of the selected month",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			s := sess.store.SelectedSummary()
			fmt.Fprintln(w, titleStyle.Render("Incomes "+s.Month.String()))
			row(w, "Base income", money(sess.store.Snapshot().Income))
			if len(s.Incomes) == 0 {
				empty(w, "one-off incomes")
				return nil
			}
			for _, in := range s.Incomes {
				fmt.Fprintf(w, "%s  %s  %10s  %s\n", subtleStyle.Render(shortID(in.ID)), in.Date.Format(dateLayout), money(in.Amount), in.Description)
			}
			return nil
		},
	}
}

func incomeRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a one-off income",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			id, err := resolveID("income", args[0], idsOf(st.Incomes, func(i core.Income) string { return i.ID }))
			if err != nil {
				return err
			}
			if err := sess.store.RemoveIncome(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Income removed")
			return nil
		},
	}
}

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or change the budget rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := sess.store.Snapshot().BudgetRule
			fmt.Fprintf(cmd.OutOrStdout(), "Essentials %d%%  Personal %d%%  Investments %d%%\n", r.Essentials, r.Personal, r.Investments)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <E/P/I>",
		Short: "Change the budget rule, e.g. 50/30/20",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseBudgetRule(args[0])
			if err != nil {
				return err
			}
			if err := sess.store.UpdateBudgetRule(cmd.Context(), r); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Budget rule set to %d/%d/%d", r.Essentials, r.Personal, r.Investments)
			return nil
		},
	})
	return cmd
}
