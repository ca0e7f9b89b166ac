package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alovak/cardcheck/validator"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var httpAddr, isoAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve card checks over HTTP and ISO 8583",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if httpAddr != "" {
				cfg.HTTPAddr = httpAddr
			}
			if isoAddr != "" {
				cfg.ISO8583Addr = isoAddr
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := validator.NewApp(logger, cfg)
			if err := app.Start(); err != nil {
				app.Shutdown()
				return err
			}

			<-ctx.Done()
			app.Shutdown()
			return nil
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&isoAddr, "iso8583-addr", "", "ISO 8583 listen address (overrides config)")
	return cmd
}
