package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/services"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the budget summary of the selected month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.requireOnboarded(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			s := sess.store.SelectedSummary()
			fmt.Fprintln(w, titleStyle.Render("Summary "+s.Month.String()))
			row(w, "Income", money(s.TotalMonthlyIncome))
			if s.AdditionalIncome > 0 || s.RecurringIncomes > 0 {
				fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("  incl. %s one-off, %s recurring", money(s.AdditionalIncome), money(s.RecurringIncomes))))
			}
			row(w, "Spent", money(s.TotalSpent))
			fmt.Fprintln(w)
			bucket := func(name string, spent, budget, remaining float64) {
				pct := services.HealthPercent(spent, budget)
				row(w, name, fmt.Sprintf("%s %s / %s, %s left", bar(pct, 20), money(spent), money(budget), money(remaining)))
			}
			bucket("Essentials", s.EssentialSpent, s.EssentialBudget, s.EssentialRemaining)
			bucket("Personal", s.PersonalSpent, s.PersonalBudget, s.PersonalRemaining)
			bucket("Investments", s.InvestmentSpent, s.InvestmentBudget, s.InvestmentRemaining)
			if s.RecurringExpenses > 0 {
				fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("  essentials incl. %s recurring", money(s.RecurringExpenses))))
			}
			fmt.Fprintln(w)
			row(w, "Budget health", healthStyle(s.Health).Render(fmt.Sprintf("%.1f%% %s", s.HealthPercent, s.Health)))
			row(w, "Remaining", money(s.TotalRemaining))
			row(w, "Daily allowance", money(s.DailyAllowance(time.Now())))
			if s.Fleet.Limit > 0 {
				row(w, "Credit cards", fmt.Sprintf("%s / %s (%.1f%%)", money(s.Fleet.Used), money(s.Fleet.Limit), s.Fleet.Percent))
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		months int
		top    int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show income and spending over the last months",
		RunE: func(cmd *cobra.Command, args []string) error {
			if months < 1 || months > 24 {
				return fmt.Errorf("--months must be between 1 and 24")
			}
			w := cmd.OutOrStdout()
			st := sess.store.Snapshot()
			end := st.Month()
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Last %d months to %s", months, end)))
			fmt.Fprintf(w, "%-8s %10s %10s %10s %10s %10s %10s\n", "month", "income", "spent", "essential", "personal", "invest", "balance")
			for _, r := range services.MonthlyHistory(st, end, months) {
				balance := money(r.Balance())
				if r.Balance() < 0 {
					balance = errorStyle.Render(fmt.Sprintf("%10s", balance))
				} else {
					balance = fmt.Sprintf("%10s", balance)
				}
				fmt.Fprintf(w, "%-8s %10s %10s %10s %10s %10s %s\n", r.Month, money(r.Income), money(r.Expenses),
					money(r.Essentials), money(r.Personal), money(r.Investments), balance)
			}

			trends := services.CategoryTrends(st, end, months, top)
			if len(trends) == 0 {
				return nil
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, titleStyle.Render("Top categories"))
			for _, t := range trends {
				change := fmt.Sprintf("%+.2f", t.Trend)
				switch {
				case t.Trend > 0:
					change = warningStyle.Render(change)
				case t.Trend < 0:
					change = successStyle.Render(change)
				}
				fmt.Fprintf(w, "%-14s %10s  last month %s\n", t.Category, money(t.Total), change)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 6, "number of months")
	cmd.Flags().IntVar(&top, "top", 5, "number of categories to show")
	return cmd
}

func alertsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Check budget rules and list alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fresh, err := sess.store.RefreshAlerts(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(fresh) > 0 {
				fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%d new alert(s)", len(fresh))))
			}
			shown := 0
			for _, a := range sess.store.Snapshot().Alerts {
				if a.IsRead && !all {
					continue
				}
				shown++
				title := severityStyle(a.Severity).Render(a.Title)
				if a.IsRead {
					title = subtleStyle.Render(a.Title + " (dismissed)")
				}
				fmt.Fprintf(w, "%s  %s\n    %s\n", subtleStyle.Render(shortID(a.ID)), title, a.Message)
			}
			if shown == 0 {
				empty(w, "alerts")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include dismissed alerts")
	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss <id>",
		Short: "Mark an alert as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := sess.store.Snapshot()
			ids := make([]string, 0, len(st.Alerts))
			for _, a := range st.Alerts {
				ids = append(ids, a.ID)
			}
			id, err := resolveID("alert", args[0], ids)
			if err != nil {
				return err
			}
			if err := sess.store.DismissAlert(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Alert dismissed")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every dismissed alert",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.store.ClearAlerts(cmd.Context()); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Dismissed alerts cleared")
			return nil
		},
	})
	return cmd
}
