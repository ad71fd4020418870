// Package rpctest provides an in-process fake Ethereum node for tests,
// served through an httpmock transport.
package rpctest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dmagro/coverchain/internal/rpc"
	"github.com/jarcoal/httpmock"
)

const DefaultURL = "http://127.0.0.1:8545"

// Handler answers one JSON-RPC method. Returning a non-nil *rpc.RPCError
// makes the node reply with an error object instead of a result.
type Handler func(params []json.RawMessage) (interface{}, *rpc.RPCError)

type FakeNode struct {
	URL       string
	Transport *httpmock.MockTransport

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string][][]json.RawMessage
}

func NewFakeNode() *FakeNode {
	n := &FakeNode{
		URL:       DefaultURL,
		Transport: httpmock.NewMockTransport(),
		handlers:  make(map[string]Handler),
		calls:     make(map[string][][]json.RawMessage),
	}
	n.Transport.RegisterResponder(http.MethodPost, n.URL, n.respond)
	return n
}

// HTTPClient returns a client routed to the fake node.
func (n *FakeNode) HTTPClient() *http.Client {
	return &http.Client{Transport: n.Transport}
}

// Client returns an rpc.Client pointed at the fake node.
func (n *FakeNode) Client() *rpc.Client {
	return rpc.NewClient(rpc.ClientConfig{URL: n.URL, HTTPClient: n.HTTPClient()}, nil)
}

func (n *FakeNode) Handle(method string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// Result makes method always return v.
func (n *FakeNode) Result(method string, v interface{}) {
	n.Handle(method, func([]json.RawMessage) (interface{}, *rpc.RPCError) {
		return v, nil
	})
}

// Fail makes method always return an error object.
func (n *FakeNode) Fail(method string, code int, message string, data interface{}) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	n.Handle(method, func([]json.RawMessage) (interface{}, *rpc.RPCError) {
		return nil, &rpc.RPCError{Code: code, Message: message, Data: raw}
	})
}

// Calls returns how many times method was requested.
func (n *FakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls[method])
}

// Params returns the params of the i-th call to method.
func (n *FakeNode) Params(method string, i int) []json.RawMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i >= len(n.calls[method]) {
		return nil
	}
	return n.calls[method][i]
}

func (n *FakeNode) respond(req *http.Request) (*http.Response, error) {
	var in struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
	}

	n.mu.Lock()
	n.calls[in.Method] = append(n.calls[in.Method], in.Params)
	h, ok := n.handlers[in.Method]
	n.mu.Unlock()

	out := map[string]interface{}{"jsonrpc": "2.0", "id": 1}
	if !ok {
		out["error"] = rpc.RPCError{Code: -32601, Message: "the method " + in.Method + " does not exist/is not available"}
		return httpmock.NewJsonResponse(http.StatusOK, out)
	}

	result, rpcErr := h(in.Params)
	if rpcErr != nil {
		out["error"] = rpcErr
	} else {
		out["result"] = result
	}
	return httpmock.NewJsonResponse(http.StatusOK, out)
}
