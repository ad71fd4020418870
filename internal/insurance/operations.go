package insurance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dmagro/coverchain/internal/abi"
	"github.com/dmagro/coverchain/internal/ledger"
	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/dmagro/coverchain/internal/txn"
	"go.uber.org/zap"
)

// OpenPolicy creates a policy paying the premium as the transaction value.
// The policy id is the first indexed topic of the first emitted log.
func (s *Service) OpenPolicy(ctx context.Context, req OpenPolicyRequest) (*OpenPolicyResult, error) {
	coverageWei, err := s.converter.ToBaseUnit(req.Coverage)
	if err != nil {
		return nil, fmt.Errorf("coverage: %w", err)
	}
	premiumWei, err := s.converter.ToBaseUnit(req.Premium)
	if err != nil {
		return nil, fmt.Errorf("premium: %w", err)
	}

	args := []abi.Value{abi.Uint(coverageWei), abi.Uint64(req.DurationSeconds)}
	hash, receipt, err := s.orch.Execute(ctx, FnCreatePolicy, args, txn.SendOptions{From: req.Payer, Value: premiumWei})
	if err != nil {
		return nil, fmt.Errorf("open policy: %w", err)
	}

	policyID, err := extractID(hash, receipt)
	rec := ledger.NewRecord(ledger.OperationOpenPolicy, hash)
	rec.EntityID = policyID
	rec.AmountWei = premiumWei
	rec.Actor = req.Payer
	s.handOff(ctx, rec, receipt)
	if err != nil {
		return nil, fmt.Errorf("open policy: %w", err)
	}

	s.logger.Sugar().Infow("policy opened",
		zap.String("policyId", policyID.String()),
		zap.String("txHash", hash),
		zap.String("coverageWei", coverageWei.String()),
		zap.String("premiumWei", premiumWei.String()),
	)
	return &OpenPolicyResult{
		TxResult:    TxResult{TxHash: hash, Receipt: receipt},
		PolicyID:    policyID,
		CoverageWei: coverageWei,
		PremiumWei:  premiumWei,
	}, nil
}

// PayPremium tops up an existing policy.
func (s *Service) PayPremium(ctx context.Context, req PayPremiumRequest) (*PayPremiumResult, error) {
	if req.PolicyID == nil {
		return nil, &abi.EncodingError{Index: 0, Type: "uint256", Reason: "policy id is required"}
	}
	amountWei, err := s.converter.ToBaseUnit(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("premium: %w", err)
	}

	hash, receipt, err := s.orch.Execute(ctx, FnPayPremium, []abi.Value{abi.Uint(req.PolicyID)}, txn.SendOptions{From: req.Payer, Value: amountWei})
	if err != nil {
		return nil, fmt.Errorf("pay premium on policy %s: %w", req.PolicyID, err)
	}

	rec := ledger.NewRecord(ledger.OperationPayPremium, hash)
	rec.EntityID = req.PolicyID
	rec.AmountWei = amountWei
	rec.Actor = req.Payer
	s.handOff(ctx, rec, receipt)

	return &PayPremiumResult{
		TxResult:  TxResult{TxHash: hash, Receipt: receipt},
		PolicyID:  req.PolicyID,
		AmountWei: amountWei,
	}, nil
}

// FileClaim files a claim against a policy. Contract rejections, such as an
// amount above the coverage, surface as the node's protocol error.
func (s *Service) FileClaim(ctx context.Context, req FileClaimRequest) (*FileClaimResult, error) {
	if req.PolicyID == nil {
		return nil, &abi.EncodingError{Index: 0, Type: "uint256", Reason: "policy id is required"}
	}
	amountWei, err := s.converter.ToBaseUnit(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("claim amount: %w", err)
	}

	args := []abi.Value{abi.Uint(req.PolicyID), abi.Uint(amountWei), abi.String(req.ProofReference)}
	hash, receipt, err := s.orch.Execute(ctx, FnFileClaim, args, txn.SendOptions{From: req.Claimant})
	if err != nil {
		return nil, fmt.Errorf("file claim on policy %s: %w", req.PolicyID, err)
	}

	claimID, err := extractID(hash, receipt)
	rec := ledger.NewRecord(ledger.OperationFileClaim, hash)
	rec.EntityID = claimID
	rec.AmountWei = amountWei
	rec.Actor = req.Claimant
	s.handOff(ctx, rec, receipt)
	if err != nil {
		return nil, fmt.Errorf("file claim on policy %s: %w", req.PolicyID, err)
	}

	s.logger.Sugar().Infow("claim filed",
		zap.String("claimId", claimID.String()),
		zap.String("policyId", req.PolicyID.String()),
		zap.String("txHash", hash),
	)
	return &FileClaimResult{
		TxResult:  TxResult{TxHash: hash, Receipt: receipt},
		ClaimID:   claimID,
		PolicyID:  req.PolicyID,
		AmountWei: amountWei,
	}, nil
}

// AdjudicateClaim records the decision on a claim. On approval the contract
// pays the indemnity itself; no second transaction is sent.
func (s *Service) AdjudicateClaim(ctx context.Context, req AdjudicateClaimRequest) (*AdjudicateClaimResult, error) {
	if req.ClaimID == nil {
		return nil, &abi.EncodingError{Index: 0, Type: "uint256", Reason: "claim id is required"}
	}

	args := []abi.Value{abi.Uint(req.ClaimID), abi.Bool(req.Approved)}
	hash, receipt, err := s.orch.Execute(ctx, FnValidateClaim, args, txn.SendOptions{From: req.Adjudicator})
	if err != nil {
		return nil, fmt.Errorf("adjudicate claim %s: %w", req.ClaimID, err)
	}

	approved := req.Approved
	rec := ledger.NewRecord(ledger.OperationAdjudicateClaim, hash)
	rec.EntityID = req.ClaimID
	rec.Actor = req.Adjudicator
	rec.Approved = &approved
	s.handOff(ctx, rec, receipt)

	return &AdjudicateClaimResult{
		TxResult: TxResult{TxHash: hash, Receipt: receipt},
		ClaimID:  req.ClaimID,
		Approved: req.Approved,
	}, nil
}

func extractID(hash string, receipt *rpc.Receipt) (*big.Int, error) {
	id, ok, err := txn.ExtractIndexedID(receipt, 0, 1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w (tx %s)", ErrMissingIdentifier, hash)
	}
	return id, nil
}
