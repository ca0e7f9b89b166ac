package main

import (
	"fmt"
	"io"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/validator"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

type rootOptions struct {
	configPath string
	strict     bool
	noColor    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "cardcheck",
		Short:         "Validate credit card numbers with the Luhn checksum",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	f.BoolVar(&opts.strict, "strict", false, "reject numbers containing anything but digits")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newCheckCmd(opts),
		newREPLCmd(),
		newServeCmd(opts),
		newGenCmd(),
	)
	return cmd
}

// config loads the config file and environment, then applies global flags.
func (o *rootOptions) config() (*validator.Config, error) {
	cfg, err := validator.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.strict {
		cfg.Policy = cardcheck.Strict.String()
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		if _, err := cfg.Level(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *validator.Config, w io.Writer) (*slog.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
