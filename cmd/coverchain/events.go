package main

import (
	"github.com/spf13/cobra"
)

func eventsCmd() *cobra.Command {
	var fromBlock, toBlock string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Scan contract events (best effort: node errors yield an empty list)",
	}
	cmd.PersistentFlags().StringVar(&fromBlock, "from-block", "", "First block (number, hex or tag; default earliest)")
	cmd.PersistentFlags().StringVar(&toBlock, "to-block", "", "Last block (number, hex or tag; default latest)")

	cmd.AddCommand(&cobra.Command{
		Use:   "policies",
		Short: "List PolicyCreated events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			logs := a.service.ScanPolicyCreatedEvents(cmd.Context(), fromBlock, toBlock)
			return a.printer.PolicyEvents(logs)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "claims",
		Short: "List ClaimFiled events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			logs := a.service.ScanClaimFiledEvents(cmd.Context(), fromBlock, toBlock)
			return a.printer.ClaimEvents(logs)
		},
	})

	return cmd
}
