// Package txn submits contract transactions to the node and follows them
// until they are mined.
package txn

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/dmagro/coverchain/internal/abi"
	"github.com/dmagro/coverchain/internal/logger"
	"github.com/dmagro/coverchain/internal/rpc"
	"go.uber.org/zap"
)

// Node is the subset of the JSON-RPC surface the orchestrator drives.
// *rpc.Client satisfies it.
type Node interface {
	SendTransaction(ctx context.Context, tx rpc.TxArgs) (string, error)
	EthCall(ctx context.Context, args rpc.CallArgs, block string) (string, error)
	GetTransactionReceipt(ctx context.Context, hash string) (*rpc.Receipt, error)
	GetLogs(ctx context.Context, filter rpc.LogFilter) ([]rpc.Log, error)
}

// Config is fixed at construction and never mutated.
type Config struct {
	ContractAddress string
	GasLimit        uint64
	PollInterval    time.Duration
	MaxAttempts     int
}

// SendOptions describe one transaction. Value is attached only when non-nil.
type SendOptions struct {
	From     string
	Value    *big.Int
	GasLimit uint64
}

type Orchestrator struct {
	node     Node
	contract *abi.Contract
	config   Config
	clock    Clock
	logger   *zap.Logger
}

type Option func(*Orchestrator)

// WithClock replaces the wall clock used between polls.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func NewOrchestrator(node Node, contract *abi.Contract, cfg Config, l *zap.Logger, opts ...Option) (*Orchestrator, error) {
	if err := abi.ValidateAddress(cfg.ContractAddress); err != nil {
		return nil, fmt.Errorf("invalid contract address: %w", err)
	}
	if cfg.GasLimit == 0 {
		return nil, fmt.Errorf("gas limit must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive")
	}
	o := &Orchestrator{
		node:     node,
		contract: contract,
		config:   cfg,
		clock:    wallClock{},
		logger:   logger.OrNop(l),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) Contract() *abi.Contract { return o.contract }

func (o *Orchestrator) ContractAddress() string { return o.config.ContractAddress }

// Submit encodes functionName with args and sends it as a transaction to
// the contract, returning the transaction hash.
func (o *Orchestrator) Submit(ctx context.Context, functionName string, args []abi.Value, opts SendOptions) (string, error) {
	method, err := o.contract.Method(functionName)
	if err != nil {
		return "", err
	}
	if opts.Value != nil && !method.Payable {
		return "", &abi.EncodingError{Index: -1, Reason: fmt.Sprintf("%s is not payable", method.Signature())}
	}
	if err := abi.ValidateAddress(opts.From); err != nil {
		return "", &abi.EncodingError{Index: -1, Type: "address", Reason: fmt.Sprintf("sender: %v", err)}
	}

	calldata, err := method.Encode(args...)
	if err != nil {
		return "", err
	}

	gas := opts.GasLimit
	if gas == 0 {
		gas = o.config.GasLimit
	}
	tx := rpc.TxArgs{
		From: opts.From,
		To:   o.config.ContractAddress,
		Data: calldata,
		Gas:  rpc.Uint64ToHex(gas),
	}
	if opts.Value != nil {
		tx.Value = rpc.BigToHex(opts.Value)
	}

	hash, err := o.node.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %w", method.Name, err)
	}

	o.logger.Sugar().Infow("transaction submitted",
		zap.String("function", method.Signature()),
		zap.String("from", opts.From),
		zap.String("txHash", hash),
	)
	return hash, nil
}

// AwaitMined polls for the receipt of hash up to maxAttempts times, waiting
// interval between attempts. It returns as soon as a receipt exists and
// fails with *TimeoutError once the attempts are spent. Cancelling ctx
// stops the wait immediately.
func (o *Orchestrator) AwaitMined(ctx context.Context, hash string, maxAttempts int, interval time.Duration) (*rpc.Receipt, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	start := o.clock.Now()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		receipt, err := o.node.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash, err)
		}
		if receipt != nil {
			o.logger.Sugar().Infow("transaction mined",
				zap.String("txHash", hash),
				zap.String("blockNumber", receipt.BlockNumber),
				zap.Int("attempt", attempt),
			)
			return receipt, nil
		}

		o.logger.Sugar().Debugw("receipt not available yet",
			zap.String("txHash", hash),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
		)
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-o.clock.After(interval):
		}
	}

	return nil, &TimeoutError{TxHash: hash, Attempts: maxAttempts, Elapsed: o.clock.Now().Sub(start)}
}

// Execute submits a transaction and waits for it with the configured bounds.
// A mined receipt with a failed status is returned together with a
// *RevertedError.
func (o *Orchestrator) Execute(ctx context.Context, functionName string, args []abi.Value, opts SendOptions) (string, *rpc.Receipt, error) {
	hash, err := o.Submit(ctx, functionName, args, opts)
	if err != nil {
		return "", nil, err
	}
	receipt, err := o.AwaitMined(ctx, hash, o.config.MaxAttempts, o.config.PollInterval)
	if err != nil {
		return hash, nil, err
	}
	if !receipt.Succeeded() {
		return hash, receipt, &RevertedError{TxHash: hash, BlockNumber: receipt.BlockNumber}
	}
	return hash, receipt, nil
}

// Read performs an eth_call of functionName against the contract and
// returns the raw hex result.
func (o *Orchestrator) Read(ctx context.Context, functionName string, args ...abi.Value) (string, error) {
	method, err := o.contract.Method(functionName)
	if err != nil {
		return "", err
	}
	calldata, err := method.Encode(args...)
	if err != nil {
		return "", err
	}
	out, err := o.node.EthCall(ctx, rpc.CallArgs{To: o.config.ContractAddress, Data: calldata}, "latest")
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", method.Name, err)
	}
	return out, nil
}

// Logs fetches logs emitted by the contract for the given topics.
func (o *Orchestrator) Logs(ctx context.Context, topics []string, fromBlock, toBlock string) ([]rpc.Log, error) {
	return o.node.GetLogs(ctx, rpc.LogFilter{
		Address:   o.config.ContractAddress,
		Topics:    topics,
		FromBlock: fromBlock,
		ToBlock:   toBlock,
	})
}

// ExtractIndexedID reads an indexed integer from receipt.Logs[logIndex].
// Topics[topicIndex]. ok is false, with no error, when the receipt has no
// such log or topic.
func ExtractIndexedID(receipt *rpc.Receipt, logIndex, topicIndex int) (id *big.Int, ok bool, err error) {
	if receipt == nil || logIndex < 0 || logIndex >= len(receipt.Logs) {
		return nil, false, nil
	}
	topics := receipt.Logs[logIndex].Topics
	if topicIndex < 0 || topicIndex >= len(topics) {
		return nil, false, nil
	}
	id, err = abi.DecodeTopicUint(topics, topicIndex)
	if err != nil {
		return nil, false, err
	}
	return id, true, nil
}
