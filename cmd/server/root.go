package main

import (
	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/config"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "rxndiagram",
		Short:        "Reaction diagram editing server",
		Version:      Version + " (" + GitCommit + ")",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newValidateCommand())
	root.AddCommand(newExportCommand())
	return root
}

// loadConfig reads the config and builds the logger it describes.
func loadConfig(opts *rootOptions) (*config.Loader, logging.Logger, error) {
	loader, err := config.NewLoader(opts.configPath, nil)
	if err != nil {
		return nil, nil, err
	}
	logConf := loader.Config().Log
	if opts.logLevel != "" {
		logConf.Level = opts.logLevel
	}
	log, err := logging.NewLogger(logConf)
	if err != nil {
		return nil, nil, err
	}
	loader.SetLogger(log.Named("config"))
	return loader, log, nil
}
