// Package insurance implements the coverage workflows on top of the
// transaction orchestrator: opening and funding policies, filing and
// adjudicating claims, and the read and scan queries that go with them.
package insurance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/dmagro/coverchain/internal/currency"
	"github.com/dmagro/coverchain/internal/ledger"
	"github.com/dmagro/coverchain/internal/logger"
	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/dmagro/coverchain/internal/txn"
	"go.uber.org/zap"
)

// Contract function and event names.
const (
	FnCreatePolicy  = "createPolicy"
	FnPayPremium    = "payPremium"
	FnFileClaim     = "fileClaim"
	FnValidateClaim = "validateClaim"
	FnGetPolicy     = "getPolicy"
	FnGetClaim      = "getClaim"

	EventPolicyCreated  = "PolicyCreated"
	EventPremiumPaid    = "PremiumPaid"
	EventClaimFiled     = "ClaimFiled"
	EventClaimValidated = "ClaimValidated"
	EventClaimPaid      = "ClaimPaid"
)

// ErrMissingIdentifier is returned when a mined transaction that must
// create a policy or claim emitted no identifying event.
var ErrMissingIdentifier = errors.New("receipt carries no identifying event")

// AccountSource is the node surface used for status and account lookups.
// *rpc.Client satisfies it.
type AccountSource interface {
	ClientVersion(ctx context.Context) (string, error)
	Accounts(ctx context.Context) ([]string, error)
	GetBalance(ctx context.Context, address, block string) (*big.Int, error)
}

// Service runs the domain operations. It holds no mutable state; ordering
// of concurrent operations is left to the node.
type Service struct {
	orch      *txn.Orchestrator
	accounts  AccountSource
	converter *currency.Converter
	recorder  ledger.Recorder
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets where successful writes are handed off. The default
// writes them to the log.
func WithRecorder(r ledger.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(orch *txn.Orchestrator, accounts AccountSource, conv *currency.Converter, l *zap.Logger, opts ...Option) (*Service, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account source is required")
	}
	if conv == nil {
		return nil, fmt.Errorf("currency converter is required")
	}
	l = logger.OrNop(l)
	s := &Service{
		orch:      orch,
		accounts:  accounts,
		converter: conv,
		recorder:  ledger.NewLogRecorder(l),
		logger:    l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Converter() *currency.Converter { return s.converter }

// ResolveAccount returns configured when set, otherwise the node's first
// unlocked account.
func (s *Service) ResolveAccount(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	accounts, err := s.accounts.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list node accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("node has no unlocked accounts and no default account is configured")
	}
	return accounts[0], nil
}

// handOff passes rec to the recorder. The chain operation has already
// succeeded, so a recorder failure is logged for reconciliation and not
// returned.
func (s *Service) handOff(ctx context.Context, rec ledger.Record, receipt *rpc.Receipt) {
	if receipt != nil {
		if parsed, err := receipt.Parsed(); err == nil {
			rec.BlockNumber = parsed.BlockNumber
			rec.GasUsed = parsed.GasUsed
		}
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Sugar().Errorw("failed to hand off ledger record",
			zap.String("operation", string(rec.Operation)),
			zap.String("txHash", rec.TxHash),
			zap.String("recordId", rec.ID.String()),
			zap.Error(err),
		)
	}
}
