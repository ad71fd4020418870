package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/dmagro/coverchain/internal/rpc/rpctest"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCall(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the raw result", func(t *testing.T) {
		node := rpctest.NewFakeNode()
		node.Result(rpc.MethodClientVersion, "Ganache/v7.9.1/EthereumJS TestRPC/v7.9.1/ethereum-js")

		version, err := node.Client().ClientVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ganache/v7.9.1/EthereumJS TestRPC/v7.9.1/ethereum-js", version)
		assert.Equal(t, 1, node.Calls(rpc.MethodClientVersion))
	})

	t.Run("sends a JSON-RPC 2.0 envelope", func(t *testing.T) {
		mt := httpmock.NewMockTransport()
		var got rpc.Request
		mt.RegisterResponder(http.MethodPost, rpctest.DefaultURL, func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(200, `{"jsonrpc":"2.0","id":1,"result":[]}`), nil
		})
		client := rpc.NewClient(rpc.ClientConfig{URL: rpctest.DefaultURL, HTTPClient: &http.Client{Transport: mt}}, nil)

		accounts, err := client.Accounts(ctx)
		require.NoError(t, err)
		assert.Empty(t, accounts)
		assert.Equal(t, "2.0", got.JSONRPC)
		assert.Equal(t, rpc.MethodAccounts, got.Method)
		assert.Equal(t, 1, got.ID)
		assert.NotNil(t, got.Params)
	})

	t.Run("node error becomes ProtocolError", func(t *testing.T) {
		node := rpctest.NewFakeNode()
		node.Fail(rpc.MethodSendTransaction, -32000, "VM Exception while processing transaction: revert", "0x08c379a0")

		_, err := node.Client().SendTransaction(ctx, rpc.TxArgs{From: "0x1", To: "0x2", Data: "0x"})
		var protoErr *rpc.ProtocolError
		require.True(t, errors.As(err, &protoErr))
		assert.Equal(t, -32000, protoErr.Code)
		assert.Equal(t, rpc.MethodSendTransaction, protoErr.Method)
		assert.Contains(t, protoErr.Message, "revert")
		assert.Equal(t, "0x08c379a0", protoErr.DataHex())
	})

	t.Run("connection failure becomes TransportError", func(t *testing.T) {
		mt := httpmock.NewMockTransport()
		mt.RegisterResponder(http.MethodPost, rpctest.DefaultURL, httpmock.NewErrorResponder(errors.New("connection refused")))
		client := rpc.NewClient(rpc.ClientConfig{URL: rpctest.DefaultURL, HTTPClient: &http.Client{Transport: mt}}, nil)

		_, err := client.Call(ctx, rpc.MethodAccounts)
		var transportErr *rpc.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.Temporary())
		assert.Equal(t, rpctest.DefaultURL, transportErr.URL)
	})

	t.Run("non-200 becomes TransportError with status", func(t *testing.T) {
		mt := httpmock.NewMockTransport()
		mt.RegisterResponder(http.MethodPost, rpctest.DefaultURL, httpmock.NewStringResponder(502, "bad gateway"))
		client := rpc.NewClient(rpc.ClientConfig{URL: rpctest.DefaultURL, HTTPClient: &http.Client{Transport: mt}}, nil)

		_, err := client.Call(ctx, rpc.MethodAccounts)
		var transportErr *rpc.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, 502, transportErr.StatusCode)
	})

	t.Run("garbage body becomes TransportError", func(t *testing.T) {
		mt := httpmock.NewMockTransport()
		mt.RegisterResponder(http.MethodPost, rpctest.DefaultURL, httpmock.NewStringResponder(200, "<html>"))
		client := rpc.NewClient(rpc.ClientConfig{URL: rpctest.DefaultURL, HTTPClient: &http.Client{Transport: mt}}, nil)

		_, err := client.Call(ctx, rpc.MethodAccounts)
		var transportErr *rpc.TransportError
		assert.True(t, errors.As(err, &transportErr))
	})

	t.Run("cancelled context is returned as is", func(t *testing.T) {
		node := rpctest.NewFakeNode()
		node.Result(rpc.MethodAccounts, []string{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := node.Client().Accounts(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("caller's http client is not modified", func(t *testing.T) {
		node := rpctest.NewFakeNode()
		node.Result(rpc.MethodAccounts, []string{})
		hc := node.HTTPClient()

		client := rpc.NewClient(rpc.ClientConfig{URL: node.URL, HTTPClient: hc, Timeout: 3 * time.Second}, nil)
		_, err := client.Accounts(ctx)
		require.NoError(t, err)
		assert.Zero(t, hc.Timeout)
	})

	t.Run("timeout bounds every call", func(t *testing.T) {
		mt := httpmock.NewMockTransport()
		mt.RegisterResponder(http.MethodPost, rpctest.DefaultURL, func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})
		client := rpc.NewClient(rpc.ClientConfig{
			URL:        rpctest.DefaultURL,
			Timeout:    20 * time.Millisecond,
			HTTPClient: &http.Client{Transport: mt},
		}, nil)

		_, err := client.Call(ctx, rpc.MethodAccounts)
		var transportErr *rpc.TransportError
		assert.True(t, errors.As(err, &transportErr))
	})

	t.Run("unsupported method is rejected before sending", func(t *testing.T) {
		node := rpctest.NewFakeNode()
		_, err := node.Client().Call(ctx, "eth_sign", "0x1", "0x2")
		var methodErr *rpc.UnsupportedMethodError
		require.True(t, errors.As(err, &methodErr))
		assert.Equal(t, "eth_sign", methodErr.Method)
		assert.Equal(t, 0, node.Calls("eth_sign"))
		assert.False(t, rpc.Supported("eth_sign"))
		assert.True(t, rpc.Supported(rpc.MethodGetLogs))
	})
}

func TestClientMethods(t *testing.T) {
	ctx := context.Background()
	node := rpctest.NewFakeNode()
	client := node.Client()

	t.Run("eth_getBalance", func(t *testing.T) {
		node.Result(rpc.MethodGetBalance, "0xde0b6b3a7640000")
		wei, err := client.GetBalance(ctx, "0x627306090abab3a6e1400e9345bc60c78a8bef57", "")
		require.NoError(t, err)
		assert.Equal(t, "1000000000000000000", wei.String())

		var params []string
		for _, p := range node.Params(rpc.MethodGetBalance, 0) {
			var s string
			require.NoError(t, json.Unmarshal(p, &s))
			params = append(params, s)
		}
		assert.Equal(t, []string{"0x627306090abab3a6e1400e9345bc60c78a8bef57", "latest"}, params)
	})

	t.Run("eth_sendTransaction omits empty value", func(t *testing.T) {
		node.Result(rpc.MethodSendTransaction, "0xabc")
		hash, err := client.SendTransaction(ctx, rpc.TxArgs{From: "0x1", To: "0x2", Data: "0xdead", Gas: "0x2dc6c0"})
		require.NoError(t, err)
		assert.Equal(t, "0xabc", hash)

		var tx map[string]string
		require.NoError(t, json.Unmarshal(node.Params(rpc.MethodSendTransaction, 0)[0], &tx))
		assert.Equal(t, "0x2dc6c0", tx["gas"])
		_, hasValue := tx["value"]
		assert.False(t, hasValue)
	})

	t.Run("eth_call", func(t *testing.T) {
		node.Result(rpc.MethodCall, "0x01")
		out, err := client.EthCall(ctx, rpc.CallArgs{To: "0x2", Data: "0x"}, "")
		require.NoError(t, err)
		assert.Equal(t, "0x01", out)
	})

	t.Run("eth_getTransactionReceipt null means pending", func(t *testing.T) {
		node.Result(rpc.MethodGetTransactionReceipt, nil)
		receipt, err := client.GetTransactionReceipt(ctx, "0xabc")
		require.NoError(t, err)
		assert.Nil(t, receipt)
	})

	t.Run("eth_getTransactionReceipt parses logs", func(t *testing.T) {
		node.Result(rpc.MethodGetTransactionReceipt, map[string]interface{}{
			"transactionHash": "0xabc",
			"blockNumber":     "0x10",
			"gasUsed":         "0x5208",
			"status":          "0x1",
			"logs": []map[string]interface{}{
				{"address": "0x2", "topics": []string{"0xaa", "0x01"}, "data": "0x"},
			},
		})
		receipt, err := client.GetTransactionReceipt(ctx, "0xabc")
		require.NoError(t, err)
		require.NotNil(t, receipt)
		assert.True(t, receipt.Succeeded())

		parsed, err := receipt.Parsed()
		require.NoError(t, err)
		assert.Equal(t, uint64(16), parsed.BlockNumber)
		assert.Equal(t, uint64(21000), parsed.GasUsed)
		assert.Equal(t, 1, parsed.LogCount)
	})

	t.Run("eth_getLogs", func(t *testing.T) {
		node.Result(rpc.MethodGetLogs, []map[string]interface{}{
			{"address": "0x2", "topics": []string{"0xaa"}, "data": "0x", "blockNumber": "0x1"},
		})
		logs, err := client.GetLogs(ctx, rpc.LogFilter{Address: "0x2", Topics: []string{"0xaa"}, FromBlock: "0x0"})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, []string{"0xaa"}, logs[0].Topics)
	})
}

func TestReceiptStatus(t *testing.T) {
	assert.True(t, (&rpc.Receipt{Status: "0x1"}).Succeeded())
	assert.False(t, (&rpc.Receipt{Status: "0x0"}).Succeeded())
	assert.True(t, (&rpc.Receipt{}).Succeeded())
}
