package main

import (
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	var samples int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show node version, contract address and account balances",
		Long: `Show the node's client version, the resolved contract address and the
balance of every unlocked account. With --samples the node is also probed
for round-trip latency.

Examples:
  coverchain status
  coverchain status --samples 10 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.service.NodeStatus(cmd.Context())
			if err != nil {
				return err
			}
			if samples > 0 {
				latency, err := a.service.ProbeLatency(cmd.Context(), samples)
				if err != nil {
					return err
				}
				status.Latency = &latency
			}
			return a.printer.Status(status)
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Probe node latency with this many sequential calls")
	return cmd
}
