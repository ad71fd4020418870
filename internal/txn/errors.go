package txn

import (
	"fmt"
	"time"
)

// TimeoutError means no receipt appeared within the polling bound. The
// transaction may still be mined later.
type TimeoutError struct {
	TxHash   string
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not mined after %d attempts (%s)", e.TxHash, e.Attempts, e.Elapsed)
}

// RevertedError means the transaction was mined with a failed status.
type RevertedError struct {
	TxHash      string
	BlockNumber string
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("transaction %s reverted in block %s", e.TxHash, e.BlockNumber)
}
