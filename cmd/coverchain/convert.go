package main

import (
	"github.com/dmagro/coverchain/internal/currency"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between the display currency and wei at the configured rate",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "to-wei <amount>",
		Short: "Convert a display amount to wei",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := currency.ParseAmount(args[0])
			if err != nil {
				return err
			}
			a, err := newOfflineApp()
			if err != nil {
				return err
			}
			defer a.Close()

			wei, err := a.converter.ToBaseUnit(amount)
			if err != nil {
				return err
			}
			return a.printer.Conversion(amount, wei)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "from-wei <wei>",
		Short: "Convert wei to the display currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wei, err := parseWei(args[0])
			if err != nil {
				return err
			}
			a, err := newOfflineApp()
			if err != nil {
				return err
			}
			defer a.Close()

			amount, err := a.converter.FromBaseUnit(wei)
			if err != nil {
				return err
			}
			return a.printer.Conversion(amount, wei)
		},
	})

	return cmd
}
