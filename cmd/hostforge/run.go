package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/logger"
	"github.com/arkadix/hostforge/provision"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the provisioning sequence",
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
		report, err := p.Run(cmd.Context(), log)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report.String())
		if failure := report.FirstFailure(); failure != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "step %s failed: %s\n", failure.Step, failure.Reason())
			return errors.Errorf("provisioning halted at step %s", failure.Step)
		}
		if report.AllSkipped() {
			fmt.Fprintln(cmd.OutOrStdout(), "host already fully provisioned, nothing to do")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
