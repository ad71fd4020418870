package main

import (
	"fmt"
	"time"

	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/insurance"
	"github.com/spf13/cobra"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Open, fund and inspect policies",
	}
	cmd.AddCommand(policyOpenCmd())
	cmd.AddCommand(policyPayCmd())
	cmd.AddCommand(policyGetCmd())
	return cmd
}

func policyOpenCmd() *cobra.Command {
	var (
		coverage string
		premium  string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a policy, paying the premium with the transaction",
		Long: `Open a coverage policy. Amounts are in the display currency and are
converted to wei at the configured exchange rate.

Examples:
  coverchain policy open --coverage 10 --premium 0.1 --duration 8760h
  coverchain policy open --coverage 2500 --premium 25 --from 0x627306090abaB3A6e1400e9345bC60c78a8BEf57`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coverageAmount, err := currency.ParseAmount(coverage)
			if err != nil {
				return err
			}
			premiumAmount, err := currency.ParseAmount(premium)
			if err != nil {
				return err
			}
			if duration < time.Second {
				return fmt.Errorf("duration must be at least 1s")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			payer, err := a.sender(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.service.OpenPolicy(cmd.Context(), insurance.OpenPolicyRequest{
				Coverage:        coverageAmount,
				Premium:         premiumAmount,
				DurationSeconds: uint64(duration / time.Second),
				Payer:           payer,
			})
			if err != nil {
				return err
			}
			return a.printer.PolicyOpened(result)
		},
	}

	cmd.Flags().StringVar(&coverage, "coverage", "", "Coverage amount in the display currency")
	cmd.Flags().StringVar(&premium, "premium", "", "Premium paid now, in the display currency")
	cmd.Flags().DurationVar(&duration, "duration", 365*24*time.Hour, "Policy duration")
	_ = cmd.MarkFlagRequired("coverage")
	_ = cmd.MarkFlagRequired("premium")
	return cmd
}

func policyPayCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "pay <policy-id>",
		Short: "Pay an additional premium into a policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policyID, err := parseID(args[0])
			if err != nil {
				return err
			}
			value, err := currency.ParseAmount(amount)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			payer, err := a.sender(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.service.PayPremium(cmd.Context(), insurance.PayPremiumRequest{
				PolicyID: policyID,
				Amount:   value,
				Payer:    payer,
			})
			if err != nil {
				return err
			}
			return a.printer.PremiumPaid(result)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Premium amount in the display currency")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func policyGetCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get <policy-id>",
		Short: "Read a policy from the contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policyID, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			policy, err := a.service.GetPolicy(cmd.Context(), policyID)
			if err != nil {
				return err
			}
			return a.printer.Policy(policy, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Include the undecoded eth_call result")
	return cmd
}
