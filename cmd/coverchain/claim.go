package main

import (
	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/insurance"
	"github.com/spf13/cobra"
)

func claimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "File, adjudicate and inspect claims",
	}
	cmd.AddCommand(claimFileCmd())
	cmd.AddCommand(claimAdjudicateCmd())
	cmd.AddCommand(claimGetCmd())
	return cmd
}

func claimFileCmd() *cobra.Command {
	var (
		amount string
		proof  string
	)

	cmd := &cobra.Command{
		Use:   "file <policy-id>",
		Short: "File a claim against a policy",
		Long: `File a claim against a policy. --proof is the content address of the
uploaded proof document; it is stored on-chain as given.

Examples:
  coverchain claim file 1 --amount 5 --proof QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG`,
		Args: cobra.ExactArgs(1),
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

			claimant, err := a.sender(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.service.FileClaim(cmd.Context(), insurance.FileClaimRequest{
				PolicyID:       policyID,
				Amount:         value,
				ProofReference: proof,
				Claimant:       claimant,
			})
			if err != nil {
				return err
			}
			return a.printer.ClaimFiled(result)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Claimed amount in the display currency")
	cmd.Flags().StringVar(&proof, "proof", "", "Content address of the proof document")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("proof")
	return cmd
}

func claimAdjudicateCmd() *cobra.Command {
	var approve, reject bool

	cmd := &cobra.Command{
		Use:   "adjudicate <claim-id>",
		Short: "Approve or reject a claim; approval pays the indemnity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimID, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			adjudicator, err := a.sender(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.service.AdjudicateClaim(cmd.Context(), insurance.AdjudicateClaimRequest{
				ClaimID:     claimID,
				Approved:    approve && !reject,
				Adjudicator: adjudicator,
			})
			if err != nil {
				return err
			}
			return a.printer.ClaimAdjudicated(result)
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the claim")
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject the claim")
	cmd.MarkFlagsMutuallyExclusive("approve", "reject")
	cmd.MarkFlagsOneRequired("approve", "reject")
	return cmd
}

func claimGetCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get <claim-id>",
		Short: "Read a claim from the contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimID, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			claim, err := a.service.GetClaim(cmd.Context(), claimID)
			if err != nil {
				return err
			}
			return a.printer.Claim(claim, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Include the undecoded eth_call result")
	return cmd
}
