package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const replPrompt = "Enter credit card number (or 'exit' to quit): "

func newREPLCmd() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Check card numbers interactively until 'exit'",
		Long: `The repl command reads one number per line and rejects anything but digits.
Use --lenient to drop separators such as spaces and dashes instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			return runREPL(in, cmd.OutOrStdout(), replChecker(lenient), isTerminal(in))
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "drop non-digit characters instead of rejecting the input")
	return cmd
}

func replChecker(lenient bool) *cardcheck.Checker {
	if lenient {
		return cardcheck.NewChecker(cardcheck.Lenient)
	}
	return cardcheck.NewChecker(cardcheck.Strict)
}

// runREPL checks one number per line until "exit" or end of input. The
// prompt is only printed for interactive sessions.
func runREPL(in io.Reader, out io.Writer, checker *cardcheck.Checker, prompt bool) error {
	sc := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, replPrompt)
		}
		if !sc.Scan() {
			if prompt {
				fmt.Fprintln(out)
			}
			return sc.Err()
		}

		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "exit":
			return nil
		}

		res, err := checker.Check(line)
		switch {
		case errors.Is(err, cardcheck.ErrMalformedInput):
			fmt.Fprintln(out, "Invalid input: Please enter digits only.")
		case err != nil:
			return err
		case res.Valid:
			fmt.Fprintf(out, "Credit card is valid (%s).\n", res.Type)
		default:
			fmt.Fprintln(out, "Credit card is not valid.")
		}
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
