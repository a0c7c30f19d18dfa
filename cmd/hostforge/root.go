package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arkadix/hostforge/common"
	"github.com/arkadix/hostforge/config"
	"github.com/arkadix/hostforge/file"
	"github.com/arkadix/hostforge/logger"
)

var (
	configFile string
	logDir     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           common.AppName,
	Short:         "Provision a CentOS 7 host as an Ansible control node",
	Long:          "hostforge turns a CentOS 7 host into an Ansible control node: vault yum repositories, build prerequisites, OpenSSL and Python built from source, and Ansible installed via pip. Every step is idempotent; a fully provisioned host results in a run where everything is skipped.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logDir, verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the provisioning config file (defaults provision the local host)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for rotated log files (console only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		exists, err := file.PathExists(configFile)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errors.Errorf("config file %s does not exist", configFile)
		}
	}
	return config.Load(configFile)
}
