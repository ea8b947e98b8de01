package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage savings goals",
	}
	cmd.AddCommand(goalAddCmd(), goalListCmd(), goalDepositCmd(), goalRemoveCmd())
	return cmd
}

func goalAddCmd() *cobra.Command {
	var (
		target   string
		saved    string
		deadline string
		category string
		priority string
	)
	cmd := &cobra.Command{
		Use:     "add <title>",
		Short:   "Add a savings goal",
		Example: `  fintrack goal add "Emergency fund" --target 6000 --deadline 2025-12-31`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := store.GoalInput{Title: args[0]}
			var err error
			if in.TargetAmount, err = core.ParseAmount(target); err != nil {
				return fmt.Errorf("target: %w", err)
			}
			if saved != "" {
				if in.CurrentAmount, err = core.ParseAmount(saved); err != nil {
					return fmt.Errorf("saved: %w", err)
				}
			}
			if in.Deadline, err = parseDate(deadline, time.Now()); err != nil {
				return err
			}
			if in.Category, err = parseGoalCategory(category); err != nil {
				return err
			}
			if in.Priority, err = parsePriority(priority); err != nil {
				return err
			}
			g, err := sess.store.AddGoal(cmd.Context(), in)
			if err != nil {
				return err
			}
			plan := services.PlanGoal(g, time.Now())
			done(cmd.OutOrStdout(), "Goal %q added, save %s per month (%s)", g.Title, money(plan.MonthlyNeed), shortID(g.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target amount")
	cmd.Flags().StringVar(&saved, "saved", "", "amount already saved")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", string(core.GoalSavings), "savings, purchase, investment or debt")
	cmd.Flags().StringVar(&priority, "priority", string(core.PriorityMedium), "low, medium or high")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("deadline")
	return cmd
}

func goalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals with their monthly saving need",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st := sess.store.Snapshot()
			now := time.Now()
			fmt.Fprintln(w, titleStyle.Render("Goals"))
			if len(st.Goals) == 0 {
				empty(w, "goals")
				return nil
			}
			for _, g := range st.Goals {
				p := services.PlanGoal(g, now)
				status := fmt.Sprintf("%s/month, %d days left", money(p.MonthlyNeed), p.DaysLeft)
				switch {
				case p.Completed:
					status = successStyle.Render("reached")
				case p.PastDeadline:
					status = errorStyle.Render("past deadline")
				}
				line := fmt.Sprintf("%s  %-24s %s %5.1f%%  %s / %s  %s",
					shortID(g.ID), g.Title, bar(p.ProgressPct, 16), p.ProgressPct,
					money(g.CurrentAmount), money(g.TargetAmount), status)
				if !g.IsActive {
					line = subtleStyle.Render(line + " (paused)")
				}
				fmt.Fprintln(w, line)
			}
			s := sess.store.SelectedSummary()
			row(w, "Monthly need", money(services.MonthlyGoalContribution(st.Goals, now)))
			row(w, "Available for goals", money(services.AvailableForGoals(s, st.Goals, now)))
			return nil
		},
	}
}

func goalIDs(st core.FinanceState) []string {
	return idsOf(st.Goals, func(g core.Goal) string { return g.ID })
}

func goalDepositCmd() *cobra.Command {
	var withdraw bool
	cmd := &cobra.Command{
		Use:   "deposit <id> <amount>",
		Short: "Add to (or with --withdraw, take from) a goal's savings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID("goal", args[0], goalIDs(sess.store.Snapshot()))
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			if withdraw {
				amount = -amount
			}
			g, err := sess.store.DepositToGoal(cmd.Context(), id, amount)
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "%s: %s of %s saved", g.Title, money(g.CurrentAmount), money(g.TargetAmount))
			if g.Completed() {
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Goal reached!"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withdraw, "withdraw", false, "take the amount out instead")
	return cmd
}

func goalRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a goal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID("goal", args[0], goalIDs(sess.store.Snapshot()))
			if err != nil {
				return err
			}
			if err := sess.store.RemoveGoal(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Goal removed")
			return nil
		},
	}
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage planned purchases",
	}
	cmd.AddCommand(planAddCmd(), planListCmd(), planDoneCmd(), planRemoveCmd())
	return cmd
}

func planAddCmd() *cobra.Command {
	var (
		category string
		date     string
		priority string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "add <amount> <title>",
		Short: "Plan a future purchase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := store.PlannedPurchaseInput{Title: args[1], Notes: notes}
			var err error
			if in.Amount, err = core.ParseAmount(args[0]); err != nil {
				return err
			}
			if in.Category, err = core.ParseCategory(category); err != nil {
				return err
			}
			if in.PlannedDate, err = parseDate(date, time.Now()); err != nil {
				return err
			}
			if in.Priority, err = parsePriority(priority); err != nil {
				return err
			}
			p, err := sess.store.AddPlannedPurchase(cmd.Context(), in)
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Planned %q for %s on %s (%s)", p.Title, money(p.Amount), p.PlannedDate.Format(dateLayout), shortID(p.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(core.CategoryShopping), "category")
	cmd.Flags().StringVar(&date, "date", "", "planned date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&priority, "priority", string(core.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	return cmd
}

func planListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List planned purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st := sess.store.Snapshot()
			fmt.Fprintln(w, titleStyle.Render("Planned purchases"))
			if len(st.PlannedPurchases) == 0 {
				empty(w, "planned purchases")
				return nil
			}
			var pending float64
			for _, p := range st.PlannedPurchases {
				line := fmt.Sprintf("%s  %s  %10s  %-6s %-13s %s", shortID(p.ID), p.PlannedDate.Format(dateLayout), money(p.Amount), p.Priority, p.Category, p.Title)
				if p.IsCompleted {
					line = subtleStyle.Render(line + " (done)")
				} else {
					pending += p.Amount
				}
				fmt.Fprintln(w, line)
			}
			row(w, "Still to buy", money(pending))
			return nil
		},
	}
}

func planIDs(st core.FinanceState) []string {
	return idsOf(st.PlannedPurchases, func(p core.PlannedPurchase) string { return p.ID })
}

func planDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a planned purchase as bought",
		Long:  "Mark a planned purchase as bought. Record the expense itself with \"fintrack expense add\".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID("planned purchase", args[0], planIDs(sess.store.Snapshot()))
			if err != nil {
				return err
			}
			if err := sess.store.CompletePlannedPurchase(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Planned purchase completed")
			return nil
		},
	}
}

func planRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a planned purchase",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID("planned purchase", args[0], planIDs(sess.store.Snapshot()))
			if err != nil {
				return err
			}
			if err := sess.store.RemovePlannedPurchase(cmd.Context(), id); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "Planned purchase removed")
			return nil
		},
	}
}
