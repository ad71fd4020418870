// Package ledger hands the outcome of on-chain operations to the off-chain
// system of record. It never writes to a database itself.
package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OperationOpenPolicy      Operation = "open_policy"
	OperationPayPremium      Operation = "pay_premium"
	OperationFileClaim       Operation = "file_claim"
	OperationAdjudicateClaim Operation = "adjudicate_claim"
)

// Record carries the receipt-derived fields the persistence layer attaches
// to its own policy and claim rows. EntityID is the policy or claim id.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Operation   Operation `json:"operation"`
	TxHash      string    `json:"txHash"`
	EntityID    *big.Int  `json:"entityId,omitempty"`
	BlockNumber uint64    `json:"blockNumber"`
	GasUsed     uint64    `json:"gasUsed"`
	AmountWei   *big.Int  `json:"amountWei,omitempty"`
	Actor       string    `json:"actor"`
	Approved    *bool     `json:"approved,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// NewRecord stamps a record with a fresh correlation id and the current time.
func NewRecord(op Operation, txHash string) Record {
	return Record{
		ID:         uuid.New(),
		Operation:  op,
		TxHash:     txHash,
		RecordedAt: time.Now().UTC(),
	}
}

// Key is the partitioning key for a record: records about the same
// transaction land together.
func (r Record) Key() []byte {
	return []byte(r.TxHash)
}

// Recorder receives records after the chain operation has succeeded.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Close() error
}
