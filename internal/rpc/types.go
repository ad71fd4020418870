package rpc

import (
	"encoding/json"
	"math/big"
)

// Request is a JSON-RPC 2.0 request. ID is always 1: every call is an
// independent HTTP round trip, so there is nothing to correlate.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// Response is a JSON-RPC 2.0 response. Result is kept raw so each method
// wrapper decodes it into its own shape; Error is nil on success.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object a node returns instead of a result.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TxArgs is the transaction object for eth_sendTransaction. Numeric fields
// are 0x-prefixed hex quantities, as the node expects.
type TxArgs struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Data  string `json:"data"`
	Gas   string `json:"gas,omitempty"`
	Value string `json:"value,omitempty"`
}

// CallArgs is the call object for eth_call. It carries no sender or value,
// so the call can never move funds.
type CallArgs struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// LogFilter is the filter object for eth_getLogs.
type LogFilter struct {
	Address   string   `json:"address,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	FromBlock string   `json:"fromBlock,omitempty"`
	ToBlock   string   `json:"toBlock,omitempty"`
}

// Log is an event log entry as reported by the node. Topics[0] is the event
// signature hash; later topics are indexed parameters.
type Log struct {
	Address          string   `json:"address"`
	Topics           []string `json:"topics"`
	Data             string   `json:"data"`
	BlockNumber      string   `json:"blockNumber"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
}

// Receipt is the node's record of a mined transaction, in wire format.
type Receipt struct {
	TransactionHash   string `json:"transactionHash"`
	TransactionIndex  string `json:"transactionIndex"`
	BlockHash         string `json:"blockHash"`
	BlockNumber       string `json:"blockNumber"`
	From              string `json:"from"`
	To                string `json:"to"`
	GasUsed           string `json:"gasUsed"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	ContractAddress   string `json:"contractAddress"`
	Status            string `json:"status"`
	Logs              []Log  `json:"logs"`
}

// ParsedReceipt holds the numeric receipt fields as native types.
type ParsedReceipt struct {
	TransactionHash string
	BlockNumber     uint64
	GasUsed         uint64
	Succeeded       bool
	LogCount        int
}

// Parsed converts the hex fields of r. A missing status (pre-Byzantium
// nodes) is reported as success.
func (r *Receipt) Parsed() (*ParsedReceipt, error) {
	blockNumber, err := ParseHexUint64(r.BlockNumber)
	if err != nil {
		return nil, err
	}
	gasUsed, err := ParseHexUint64(r.GasUsed)
	if err != nil {
		return nil, err
	}
	return &ParsedReceipt{
		TransactionHash: r.TransactionHash,
		BlockNumber:     blockNumber,
		GasUsed:         gasUsed,
		Succeeded:       r.Succeeded(),
		LogCount:        len(r.Logs),
	}, nil
}

// Succeeded reports whether the receipt status is 0x1 (or absent).
func (r *Receipt) Succeeded() bool {
	if r.Status == "" {
		return true
	}
	status, err := ParseHexUint64(r.Status)
	return err == nil && status == 1
}

// Balance is an account balance in wei.
type Balance struct {
	Address string
	Wei     *big.Int
}
