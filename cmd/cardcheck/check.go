package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/internal/checkclient"
	"github.com/alovak/cardcheck/internal/report"
	"github.com/alovak/cardcheck/validator"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	file    string
	workers int
	format  string
	server  string
	mask    bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [number...]",
		Short: "Check card numbers and print one result per number",
		Long: `The check command validates each number with the Luhn checksum and names its card type.
Numbers are taken from the arguments, else from --file, else from stdin, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = opts.workers
			}

			formatter, err := report.New(opts.format, root.noColor)
			if err != nil {
				return err
			}

			numbers, err := readNumbers(cmd.InOrStdin(), args, opts.file)
			if err != nil {
				return err
			}
			if len(numbers) == 0 {
				return errors.New("no card numbers given")
			}

			var entries []report.Entry
			if opts.server != "" {
				entries, err = checkRemote(cmd.Context(), opts.server, numbers, opts.mask)
			} else {
				entries, err = checkLocal(cmd.Context(), cfg, numbers, opts.mask)
			}
			if err != nil {
				return err
			}

			return formatter.Format(cmd.OutOrStdout(), entries)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "read numbers from a file, one per line")
	f.IntVarP(&opts.workers, "workers", "w", 0, "number of concurrent checks (default from config)")
	f.StringVarP(&opts.format, "format", "o", "text", fmt.Sprintf("output format: %s", strings.Join(report.Formats, ", ")))
	f.StringVar(&opts.server, "server", "", "validator base URL; checks run remotely when set")
	f.BoolVar(&opts.mask, "mask", false, "print masked numbers")

	return cmd
}

func checkLocal(ctx context.Context, cfg *validator.Config, numbers []string, mask bool) ([]report.Entry, error) {
	checker := cardcheck.NewChecker(cfg.CheckPolicy())
	outcomes := checker.CheckAll(ctx, numbers, cfg.Workers)

	entries := make([]report.Entry, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil && !errors.Is(o.Err, cardcheck.ErrMalformedInput) {
			return nil, o.Err
		}
		entries[i] = report.FromOutcome(o, mask)
	}
	return entries, nil
}

func checkRemote(ctx context.Context, server string, numbers []string, mask bool) ([]report.Entry, error) {
	results, err := checkclient.New(server, nil).CheckBatch(ctx, numbers)
	if err != nil {
		return nil, err
	}

	entries := make([]report.Entry, len(results))
	for i, r := range results {
		entries[i] = report.FromResult(numbers[i], r, mask)
	}
	return entries, nil
}

// readNumbers returns args when present, otherwise the non-blank lines of
// file or, without a file, of stdin.
func readNumbers(stdin io.Reader, args []string, file string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	r := stdin
	if file != "" {
		fh, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening numbers file: %w", err)
		}
		defer fh.Close()
		r = fh
	}

	var numbers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		numbers = append(numbers, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading numbers: %w", err)
	}
	return numbers, nil
}
