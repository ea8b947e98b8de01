package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cloudsync"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull the remote copy of your data",
		Long: `Reconcile with the remote API. The remote copy replaces local data except
for the selected month. When the remote has nothing yet it is seeded from this
device; when it cannot be reached local data is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if offlineFlag {
				return fmt.Errorf("sync is not available with --offline")
			}
			w := cmd.OutOrStdout()
			switch sess.store.Sync(cmd.Context()) {
			case cloudsync.OutcomeRemote:
				done(w, "Local data updated from remote")
			case cloudsync.OutcomeSeeded:
				done(w, "Remote was empty and has been seeded from this device")
			case cloudsync.OutcomeOffline:
				fmt.Fprintln(w, warningStyle.Render("Remote unreachable, keeping local data"))
			}
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all data and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("this erases all data on this device and the remote; pass --force to confirm")
			}
			if err := sess.store.Reset(cmd.Context()); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "All data erased")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm the reset")
	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user id and sync status of this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st := sess.store.Snapshot()
			row(w, "User id", boldStyle.Render(sess.store.UserID()))
			row(w, "Selected month", st.Month().String())
			row(w, "Local database", sess.cfg.LocalDBPath)
			if sess.saver == nil {
				row(w, "Remote", subtleStyle.Render("offline"))
				return nil
			}
			row(w, "Remote", sess.cfg.RemoteAPIURL)
			return nil
		},
	}
}
