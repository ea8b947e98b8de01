// Command fintrack is the terminal client: it keeps the finance state in a
// local SQLite snapshot and mirrors it to the fintrack API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

var (
	monthFlag   string
	offlineFlag bool
	logLevel    string

	sess *session

	rootCmd = &cobra.Command{
		Use:   "fintrack",
		Short: "Personal budgeting from the terminal",
		Long: `fintrack tracks income, expenses, credit cards, recurring transactions and
savings goals against a monthly budget rule (50/30/20 by default).

Every change is stored locally first and then pushed to the fintrack API in
the background. Run "fintrack sync" to pull changes made on other devices.`,
		SilenceUsage:      true,
		PersistentPreRunE: openSessionForCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&monthFlag, "month", "m", "", "month to work on (YYYY-MM, default: the selected month)")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "do not contact the remote API")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(onboardCmd())
	rootCmd.AddCommand(incomeCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(expenseCmd())
	rootCmd.AddCommand(recurringCmd())
	rootCmd.AddCommand(cardCmd())
	rootCmd.AddCommand(goalCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(whoamiCmd())
}

func main() {
	cli.LoadEnvFile()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if sess != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), sess.cfg.RemoteTimeout)
		sess.Close(closeCtx)
		cancel()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func openSessionForCommand(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return nil
	}
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// Logs go to stderr and stay quiet unless asked for.
	if logLevel == "" && os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentCLI)

	s, err := openSession(cmd.Context(), cfg, logger, offlineFlag)
	if err != nil {
		return err
	}
	sess = s
	if monthFlag != "" {
		return sess.selectMonth(cmd.Context(), monthFlag)
	}
	return nil
}
