package rpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TransportError means the request never produced a usable JSON-RPC
// response: connection refused, timeout, non-200 status or an unparseable
// body. Callers may retry it.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rpc transport error calling %s: HTTP %d", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("rpc transport error calling %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Temporary marks transport failures as retryable.
func (e *TransportError) Temporary() bool { return true }

// UnsupportedMethodError is returned before any request is sent when the
// method is not one this client speaks.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported rpc method %q", e.Method)
}

// ProtocolError is an error object returned by the node. Contract reverts
// surface here; retrying them gives the same answer.
type ProtocolError struct {
	Method  string
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rpc error calling %s: %d %s", e.Method, e.Code, e.Message)
}

// DataHex returns the error data when the node sent it as a hex string,
// which is how revert payloads are reported.
func (e *ProtocolError) DataHex() string {
	if len(e.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil && strings.HasPrefix(s, "0x") {
		return s
	}
	// ganache nests the revert payload: {"data": {"<txhash>": {"return": "0x..."}}}
	var nested map[string]struct {
		Return string `json:"return"`
	}
	if err := json.Unmarshal(e.Data, &nested); err == nil {
		for _, v := range nested {
			if strings.HasPrefix(v.Return, "0x") {
				return v.Return
			}
		}
	}
	return ""
}
