package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
)

const (
	MethodClientVersion         = "web3_clientVersion"
	MethodAccounts              = "eth_accounts"
	MethodGetBalance            = "eth_getBalance"
	MethodSendTransaction       = "eth_sendTransaction"
	MethodCall                  = "eth_call"
	MethodGetTransactionReceipt = "eth_getTransactionReceipt"
	MethodGetLogs               = "eth_getLogs"
)

var supportedMethods = map[string]bool{
	MethodClientVersion:         true,
	MethodAccounts:              true,
	MethodGetBalance:            true,
	MethodSendTransaction:       true,
	MethodCall:                  true,
	MethodGetTransactionReceipt: true,
	MethodGetLogs:               true,
}

// Supported reports whether method is one of the Method constants.
func Supported(method string) bool { return supportedMethods[method] }

// ClientVersion calls web3_clientVersion.
func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.callInto(ctx, &version, MethodClientVersion); err != nil {
		return "", err
	}
	return version, nil
}

// Accounts returns the node's unlocked accounts.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.callInto(ctx, &accounts, MethodAccounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance returns the balance of address in wei at block ("latest" when empty).
func (c *Client) GetBalance(ctx context.Context, address, block string) (*big.Int, error) {
	if block == "" {
		block = "latest"
	}
	var hexStr string
	if err := c.callInto(ctx, &hexStr, MethodGetBalance, address, block); err != nil {
		return nil, err
	}
	wei, err := ParseHexBigInt(hexStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	return wei, nil
}

// SendTransaction submits tx from an unlocked account and returns its hash.
func (c *Client) SendTransaction(ctx context.Context, tx TxArgs) (string, error) {
	var hash string
	if err := c.callInto(ctx, &hash, MethodSendTransaction, tx); err != nil {
		return "", err
	}
	return hash, nil
}

// EthCall executes a read-only call and returns the raw hex result.
func (c *Client) EthCall(ctx context.Context, args CallArgs, block string) (string, error) {
	if block == "" {
		block = "latest"
	}
	var result string
	if err := c.callInto(ctx, &result, MethodCall, args, block); err != nil {
		return "", err
	}
	return result, nil
}

// GetTransactionReceipt returns the receipt for hash, or nil when the
// transaction has not been mined yet.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	raw, err := c.Call(ctx, MethodGetTransactionReceipt, hash)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}
	var receipt Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("failed to parse receipt: %w", err)
	}
	return &receipt, nil
}

// GetLogs returns the logs matching filter.
func (c *Client) GetLogs(ctx context.Context, filter LogFilter) ([]Log, error) {
	var logs []Log
	if err := c.callInto(ctx, &logs, MethodGetLogs, filter); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) callInto(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return fmt.Errorf("%s returned null", method)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
