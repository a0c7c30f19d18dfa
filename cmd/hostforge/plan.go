package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/logger"
	"github.com/arkadix/hostforge/provision"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a run would do without changing anything",
	Long:  "plan evaluates every step's precondition against the target host and prints which steps would run and which would be skipped. Preconditions only observe, so this is safe on a live host.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := provision.New(cfg, verbose)
		if err != nil {
			return err
		}
		defer p.Close()

		log := logger.Log.WithField(common.LogFieldApp, common.AppName)
		entries, err := p.Plan(cmd.Context(), log)
		if err != nil {
			return err
		}

		for _, e := range entries {
			verdict := "would run"
			if e.WouldSkip {
				verdict = "would skip"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-10s %s\n", e.Step, verdict, e.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
