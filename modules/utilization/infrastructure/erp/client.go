package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Client is the minimal surface the engine needs from the remote data
// source: authenticate once, then execute bulk operations against entity
// collections.
type Client interface {
	// Authenticate exchanges the configured credentials for a numeric
	// user id.
	Authenticate(ctx context.Context) (int64, error)
	// ExecuteKw runs one operation (search, read, search_read,
	// search_count) against an entity model.
	ExecuteKw(ctx context.Context, uid int64, model, method string, args []any, kwargs map[string]any) (any, error)
}

// Credentials for the remote source.
type Credentials struct {
	URL      string
	Database string
	Username string
	Password string
}

// rpcClient talks JSON-RPC to an Odoo-compatible endpoint. The wire shape
// is the standard {service, method, args} envelope on /jsonrpc.
type rpcClient struct {
	creds Credentials
	http  *http.Client
	seq   atomic.Int64
}

// NewClient builds the default JSON-RPC client. The HTTP client carries no
// timeout of its own: every call is bounded by its context.
func NewClient(creds Credentials) Client {
	return &rpcClient{
		creds: creds,
		http:  &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: 4, IdleConnTimeout: 90 * time.Second}},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcFault       `json:"error"`
}

type rpcFault struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (c *rpcClient) Authenticate(ctx context.Context) (int64, error) {
	result, err := c.call(ctx, "common", "authenticate", []any{
		c.creds.Database, c.creds.Username, c.creds.Password, map[string]any{},
	})
	if err != nil {
		return 0, err
	}
	var uid float64
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		// The endpoint reports bad credentials as `false`.
		return 0, errors.Wrap(ErrNoSession, "authentication rejected")
	}
	return int64(uid), nil
}

func (c *rpcClient) ExecuteKw(ctx context.Context, uid int64, model, method string, args []any, kwargs map[string]any) (any, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	result, err := c.call(ctx, "object", "execute_kw", []any{
		c.creds.Database, uid, c.creds.Password, model, method, args, kwargs,
	})
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(result, &decoded); err != nil {
		return nil, errors.Wrapf(err, "decoding %s.%s result", model, method)
	}
	return decoded, nil
}

func (c *rpcClient) call(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.seq.Add(1),
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding rpc request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.URL+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building rpc request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "rpc transport")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, errors.Wrap(err, "reading rpc response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("erp: unexpected status %d from %s.%s", resp.StatusCode, service, method)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, errors.Wrap(err, "decoding rpc envelope")
	}
	if rpcResp.Error != nil {
		return nil, &RemoteError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
			Data:    rpcResp.Error.Data.Message,
		}
	}
	return rpcResp.Result, nil
}
