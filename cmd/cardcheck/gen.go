package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/internal/cardgen"
	"github.com/spf13/cobra"
)

func newGenCmd() *cobra.Command {
	var (
		typeName string
		length   int
		count    int
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Luhn-valid test card numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := cardcheck.ParseType(typeName)
			if err != nil {
				return err
			}
			if typ == cardcheck.Unknown {
				return errors.New("card type is required")
			}
			if count <= 0 {
				return fmt.Errorf("count must be positive (got %d)", count)
			}

			seen := make(map[string]bool, count)
			gen := func() (string, error) { return cardgen.GenerateNumber(typ, length) }
			exists := func(pan string) (bool, error) { return seen[pan], nil }

			for i := 0; i < count; i++ {
				pan, err := cardgen.GenerateUnique(gen, 5, exists)
				if err != nil {
					return err
				}
				seen[pan] = true
				fmt.Fprintln(cmd.OutOrStdout(), pan)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "visa", "card type: amex, mastercard, visa or discover")
	cmd.Flags().IntVarP(&length, "length", "l", 0, "number length (defaults: "+defaultLengths()+")")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many numbers to generate")
	return cmd
}

// defaultLengths describes the length used per card type when --length is 0.
func defaultLengths() string {
	parts := make([]string, 0, len(cardcheck.Types))
	for _, typ := range cardcheck.Types {
		parts = append(parts, fmt.Sprintf("%s %d", typ.Slug(), cardgen.DefaultLength(typ)))
	}
	return strings.Join(parts, ", ")
}
