package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmagro/coverchain/internal/logger"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

type ClientConfig struct {
	URL     string
	Timeout time.Duration
	// HTTPClient supplies the transport. It is copied, and the copy gets
	// Timeout when its own is zero, so every call stays bounded.
	HTTPClient *http.Client
}

// Client is a stateless JSON-RPC over HTTP client for a single node. It
// performs no retries; each Call is one POST.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg ClientConfig, l *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		hc := *cfg.HTTPClient
		httpClient = &hc
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = timeout
	}

	return &Client{
		url:        cfg.URL,
		httpClient: httpClient,
		logger:     logger.OrNop(l),
	}
}

func (c *Client) URL() string { return c.url }

// Call executes one JSON-RPC request and returns the raw result. It fails
// with *UnsupportedMethodError for methods outside the Method constants,
// with *TransportError when no well-formed response arrives and with
// *ProtocolError when the node answers with an error object.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if !Supported(method) {
		return nil, &UnsupportedMethodError{Method: method}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params == nil {
		params = []interface{}{}
	}

	body, err := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s params: %w", method, err)
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, method, body)
	c.logger.Sugar().Debugw("rpc call",
		zap.String("method", method),
		zap.Duration("latency", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) doRequest(ctx context.Context, method string, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Method: method, URL: c.url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Method: method, URL: c.url, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Method:     method,
			URL:        c.url,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", httpResp.StatusCode),
		}
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: c.url, Err: err}
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &TransportError{Method: method, URL: c.url, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}

	if resp.Error != nil {
		return nil, &ProtocolError{
			Method:  method,
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
			Data:    resp.Error.Data,
		}
	}

	return &resp, nil
}
