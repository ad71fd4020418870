package insurance

import (
	"math/big"
	"time"

	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/dmagro/coverchain/internal/stats"
	"github.com/shopspring/decimal"
)

// TxResult is what every write returns once its transaction is mined.
type TxResult struct {
	TxHash  string
	Receipt *rpc.Receipt
}

type OpenPolicyRequest struct {
	Coverage        decimal.Decimal
	Premium         decimal.Decimal
	DurationSeconds uint64
	Payer           string
}

type OpenPolicyResult struct {
	TxResult
	PolicyID    *big.Int
	CoverageWei *big.Int
	PremiumWei  *big.Int
}

type PayPremiumRequest struct {
	PolicyID *big.Int
	Amount   decimal.Decimal
	Payer    string
}

type PayPremiumResult struct {
	TxResult
	PolicyID  *big.Int
	AmountWei *big.Int
}

type FileClaimRequest struct {
	PolicyID *big.Int
	Amount   decimal.Decimal
	// ProofReference is the content address of the uploaded proof. It is
	// passed through untouched.
	ProofReference string
	Claimant       string
}

type FileClaimResult struct {
	TxResult
	ClaimID   *big.Int
	PolicyID  *big.Int
	AmountWei *big.Int
}

type AdjudicateClaimRequest struct {
	ClaimID     *big.Int
	Approved    bool
	Adjudicator string
}

type AdjudicateClaimResult struct {
	TxResult
	ClaimID  *big.Int
	Approved bool
}

// Policy is the contract's view of a policy. Raw is the undecoded eth_call
// result.
type Policy struct {
	ID          *big.Int
	Insured     string
	CoverageWei *big.Int
	PremiumWei  *big.Int
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
	BalanceWei  *big.Int
	Raw         string
}

// Claim is the contract's view of a claim. Raw is the undecoded eth_call
// result.
type Claim struct {
	ID             *big.Int
	PolicyID       *big.Int
	Claimant       string
	AmountWei      *big.Int
	ProofReference string
	Validated      bool
	Paid           bool
	Raw            string
}

// PolicyCreated is a decoded PolicyCreated log.
type PolicyCreated struct {
	PolicyID    *big.Int
	Insured     string
	CoverageWei *big.Int
	Log         rpc.Log
}

// ClaimFiled is a decoded ClaimFiled log.
type ClaimFiled struct {
	ClaimID   *big.Int
	PolicyID  *big.Int
	AmountWei *big.Int
	Log       rpc.Log
}

type AccountStatus struct {
	Address string
	Wei     *big.Int
	Ether   decimal.Decimal
	Display decimal.Decimal
}

type NodeStatus struct {
	ClientVersion   string
	ContractAddress string
	Accounts        []AccountStatus
	// Latency is set only when the node was probed.
	Latency *stats.TailLatency
}
