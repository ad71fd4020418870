package txn

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmagro/coverchain/internal/abi"
	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contractAddress = "0xCfEB869F69431e42cdB54A4F4f105C19C080A601"
	payer           = "0x627306090abaB3A6e1400e9345bC60c78a8BEf57"
	txHash          = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

type fakeNode struct {
	mu sync.Mutex

	sent      []rpc.TxArgs
	sendErr   error
	calls     []rpc.CallArgs
	callOut   string
	polls     int
	minedOn   int
	receipt   *rpc.Receipt
	receiptFn func(poll int) (*rpc.Receipt, error)
}

func (n *fakeNode) SendTransaction(_ context.Context, tx rpc.TxArgs) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return "", n.sendErr
	}
	n.sent = append(n.sent, tx)
	return txHash, nil
}

func (n *fakeNode) EthCall(_ context.Context, args rpc.CallArgs, _ string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, args)
	return n.callOut, nil
}

func (n *fakeNode) GetTransactionReceipt(_ context.Context, _ string) (*rpc.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.polls++
	if n.receiptFn != nil {
		return n.receiptFn(n.polls)
	}
	if n.minedOn > 0 && n.polls >= n.minedOn {
		return n.receipt, nil
	}
	return nil, nil
}

func (n *fakeNode) GetLogs(context.Context, rpc.LogFilter) ([]rpc.Log, error) {
	return nil, nil
}

// fakeClock fires every wait immediately and advances virtual time.
type fakeClock struct {
	now   time.Time
	waits []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// stuckClock never fires.
type stuckClock struct{}

func (stuckClock) Now() time.Time { return time.Time{} }

func (stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func minedReceipt(status string) *rpc.Receipt {
	return &rpc.Receipt{
		TransactionHash: txHash,
		BlockNumber:     "0x2a",
		GasUsed:         "0x1d4c0",
		Status:          status,
		Logs: []rpc.Log{{
			Address: contractAddress,
			Topics: []string{
				abi.TopicOf("PolicyCreated(uint256,address,uint256)"),
				"0x0000000000000000000000000000000000000000000000000000000000000001",
			},
		}},
	}
}

func newTestOrchestrator(t *testing.T, node Node, clock Clock) *Orchestrator {
	contract, err := abi.DefaultContract()
	require.NoError(t, err)
	o, err := NewOrchestrator(node, contract, Config{
		ContractAddress: contractAddress,
		GasLimit:        3_000_000,
		PollInterval:    time.Second,
		MaxAttempts:     5,
	}, nil, WithClock(clock))
	require.NoError(t, err)
	return o
}

func TestAwaitMined(t *testing.T) {
	ctx := context.Background()

	t.Run("returns on the k-th attempt", func(t *testing.T) {
		for _, k := range []int{1, 2, 4, 10} {
			node := &fakeNode{minedOn: k, receipt: minedReceipt("0x1")}
			clock := &fakeClock{}
			o := newTestOrchestrator(t, node, clock)

			receipt, err := o.AwaitMined(ctx, txHash, 10, 2*time.Second)
			require.NoError(t, err)
			assert.Equal(t, txHash, receipt.TransactionHash)
			assert.Equal(t, k, node.polls)
			assert.Len(t, clock.waits, k-1)
		}
	})

	t.Run("times out after exactly maxAttempts polls", func(t *testing.T) {
		node := &fakeNode{}
		clock := &fakeClock{}
		o := newTestOrchestrator(t, node, clock)

		_, err := o.AwaitMined(ctx, txHash, 5, 2*time.Second)
		var timeoutErr *TimeoutError
		require.True(t, errors.As(err, &timeoutErr))
		assert.Equal(t, 5, node.polls)
		assert.Equal(t, 5, timeoutErr.Attempts)
		assert.Equal(t, txHash, timeoutErr.TxHash)
		assert.Equal(t, 8*time.Second, timeoutErr.Elapsed)
		assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}, clock.waits)
	})

	t.Run("cancellation stops the wait", func(t *testing.T) {
		node := &fakeNode{}
		o := newTestOrchestrator(t, node, stuckClock{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := o.AwaitMined(cctx, txHash, 5, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, node.polls)
	})

	t.Run("poll failure propagates", func(t *testing.T) {
		node := &fakeNode{receiptFn: func(int) (*rpc.Receipt, error) {
			return nil, &rpc.TransportError{Method: rpc.MethodGetTransactionReceipt, Err: errors.New("connection refused")}
		}}
		o := newTestOrchestrator(t, node, &fakeClock{})

		_, err := o.AwaitMined(ctx, txHash, 5, time.Second)
		var transportErr *rpc.TransportError
		assert.True(t, errors.As(err, &transportErr))
		assert.Equal(t, 1, node.polls)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("payable call carries value and gas", func(t *testing.T) {
		node := &fakeNode{}
		o := newTestOrchestrator(t, node, &fakeClock{})

		hash, err := o.Submit(ctx, "createPolicy", []abi.Value{abi.Uint64(10), abi.Uint64(31536000)}, SendOptions{
			From:  payer,
			Value: big.NewInt(100000000000000000),
		})
		require.NoError(t, err)
		assert.Equal(t, txHash, hash)
		require.Len(t, node.sent, 1)

		tx := node.sent[0]
		assert.Equal(t, payer, tx.From)
		assert.Equal(t, contractAddress, tx.To)
		assert.Equal(t, "0x2dc6c0", tx.Gas)
		assert.Equal(t, "0x16345785d8a0000", tx.Value)
		assert.True(t, strings.HasPrefix(tx.Data, "0xc7e2f28e"))
		assert.Len(t, tx.Data, 10+2*64)
	})

	t.Run("non-payable call carries no value", func(t *testing.T) {
		node := &fakeNode{}
		o := newTestOrchestrator(t, node, &fakeClock{})

		_, err := o.Submit(ctx, "validateClaim", []abi.Value{abi.Uint64(1), abi.Bool(true)}, SendOptions{From: payer, GasLimit: 100000})
		require.NoError(t, err)
		assert.Empty(t, node.sent[0].Value)
		assert.Equal(t, "0x186a0", node.sent[0].Gas)
	})

	t.Run("value on a non-payable function is rejected", func(t *testing.T) {
		node := &fakeNode{}
		o := newTestOrchestrator(t, node, &fakeClock{})

		_, err := o.Submit(ctx, "validateClaim", []abi.Value{abi.Uint64(1), abi.Bool(true)}, SendOptions{From: payer, Value: big.NewInt(1)})
		var encErr *abi.EncodingError
		assert.True(t, errors.As(err, &encErr))
		assert.Empty(t, node.sent)
	})

	t.Run("unknown function and bad sender", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeNode{}, &fakeClock{})
		var encErr *abi.EncodingError

		_, err := o.Submit(ctx, "withdrawAll", nil, SendOptions{From: payer})
		assert.True(t, errors.As(err, &encErr))

		_, err = o.Submit(ctx, "payPremium", []abi.Value{abi.Uint64(1)}, SendOptions{From: "alice"})
		assert.True(t, errors.As(err, &encErr))
	})

	t.Run("node rejection is returned", func(t *testing.T) {
		node := &fakeNode{sendErr: &rpc.ProtocolError{Method: rpc.MethodSendTransaction, Code: -32000, Message: "revert"}}
		o := newTestOrchestrator(t, node, &fakeClock{})

		_, err := o.Submit(ctx, "payPremium", []abi.Value{abi.Uint64(1)}, SendOptions{From: payer, Value: big.NewInt(1)})
		var protoErr *rpc.ProtocolError
		assert.True(t, errors.As(err, &protoErr))
	})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("mined", func(t *testing.T) {
		node := &fakeNode{minedOn: 2, receipt: minedReceipt("0x1")}
		o := newTestOrchestrator(t, node, &fakeClock{})

		hash, receipt, err := o.Execute(ctx, "payPremium", []abi.Value{abi.Uint64(1)}, SendOptions{From: payer, Value: big.NewInt(1)})
		require.NoError(t, err)
		assert.Equal(t, txHash, hash)
		assert.NotNil(t, receipt)
	})

	t.Run("reverted status", func(t *testing.T) {
		node := &fakeNode{minedOn: 1, receipt: minedReceipt("0x0")}
		o := newTestOrchestrator(t, node, &fakeClock{})

		hash, receipt, err := o.Execute(ctx, "payPremium", []abi.Value{abi.Uint64(1)}, SendOptions{From: payer, Value: big.NewInt(1)})
		var reverted *RevertedError
		require.True(t, errors.As(err, &reverted))
		assert.Equal(t, "0x2a", reverted.BlockNumber)
		assert.Equal(t, txHash, hash)
		assert.NotNil(t, receipt)
	})

	t.Run("uses configured attempts", func(t *testing.T) {
		node := &fakeNode{}
		o := newTestOrchestrator(t, node, &fakeClock{})

		hash, _, err := o.Execute(ctx, "payPremium", []abi.Value{abi.Uint64(1)}, SendOptions{From: payer, Value: big.NewInt(1)})
		var timeoutErr *TimeoutError
		assert.True(t, errors.As(err, &timeoutErr))
		assert.Equal(t, txHash, hash)
		assert.Equal(t, 5, node.polls)
	})
}

func TestRead(t *testing.T) {
	node := &fakeNode{callOut: "0x01"}
	o := newTestOrchestrator(t, node, &fakeClock{})

	out, err := o.Read(context.Background(), "getPolicy", abi.Uint64(1))
	require.NoError(t, err)
	assert.Equal(t, "0x01", out)
	require.Len(t, node.calls, 1)
	assert.Equal(t, contractAddress, node.calls[0].To)
	assert.Equal(t, "0x2b07fce3"+"0000000000000000000000000000000000000000000000000000000000000001", node.calls[0].Data)
}

func TestExtractIndexedID(t *testing.T) {
	t.Run("first indexed topic", func(t *testing.T) {
		id, ok, err := ExtractIndexedID(minedReceipt("0x1"), 0, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1), id.Int64())
	})

	t.Run("no logs is not an error", func(t *testing.T) {
		id, ok, err := ExtractIndexedID(&rpc.Receipt{}, 0, 1)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, id)
	})

	t.Run("missing topic is not an error", func(t *testing.T) {
		receipt := &rpc.Receipt{Logs: []rpc.Log{{Topics: []string{"0xaa"}}}}
		_, ok, err := ExtractIndexedID(receipt, 0, 1)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed topic", func(t *testing.T) {
		receipt := &rpc.Receipt{Logs: []rpc.Log{{Topics: []string{"0xaa", "0xnothex"}}}}
		_, _, err := ExtractIndexedID(receipt, 0, 1)
		var decErr *abi.DecodingError
		assert.True(t, errors.As(err, &decErr))
	})
}

func TestNewOrchestratorValidation(t *testing.T) {
	contract, err := abi.DefaultContract()
	require.NoError(t, err)

	_, err = NewOrchestrator(&fakeNode{}, contract, Config{ContractAddress: "0x1", GasLimit: 1, MaxAttempts: 1}, nil)
	assert.Error(t, err)
	_, err = NewOrchestrator(&fakeNode{}, contract, Config{ContractAddress: contractAddress, MaxAttempts: 1}, nil)
	assert.Error(t, err)
	_, err = NewOrchestrator(&fakeNode{}, contract, Config{ContractAddress: contractAddress, GasLimit: 1}, nil)
	assert.Error(t, err)
}
