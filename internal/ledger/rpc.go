package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Client is the subset of the IOTA node API used by the adapter.
type Client interface {
	WaitForTransaction(ctx context.Context, digest string) error
	GetTransactionBlock(ctx context.Context, digest string, opts TransactionBlockOptions) (*TransactionBlock, error)
	GetOwnedObjects(ctx context.Context, owner string, query OwnedObjectsQuery, cursor string) (*ObjectPage, error)
}

type TransactionBlockOptions struct {
	ShowEffects       bool `json:"showEffects,omitempty"`
	ShowObjectChanges bool `json:"showObjectChanges,omitempty"`
}

type ObjectChange struct {
	Type       string `json:"type"`
	ObjectType string `json:"objectType,omitempty"`
	ObjectID   string `json:"objectId,omitempty"`
	Sender     string `json:"sender,omitempty"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

type TransactionBlock struct {
	Digest        string              `json:"digest"`
	Effects       *TransactionEffects `json:"effects,omitempty"`
	ObjectChanges []ObjectChange      `json:"objectChanges,omitempty"`
}

type OwnedObjectsQuery struct {
	Filter  ObjectFilter      `json:"filter"`
	Options ObjectDataOptions `json:"options"`
}

type ObjectFilter struct {
	StructType string `json:"StructType,omitempty"`
}

type ObjectDataOptions struct {
	ShowContent bool `json:"showContent,omitempty"`
}

type ObjectContent struct {
	DataType string         `json:"dataType"`
	Type     string         `json:"type,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Type     string         `json:"type,omitempty"`
	Content  *ObjectContent `json:"content,omitempty"`
}

type ObjectResponse struct {
	Data *ObjectData `json:"data,omitempty"`
}

type ObjectPage struct {
	Data        []ObjectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCClient talks JSON-RPC 2.0 to an IOTA full node.
type RPCClient struct {
	url          string
	http         *http.Client
	pollInterval time.Duration
	nextID       atomic.Int64
}

func NewRPCClient(url string, httpClient *http.Client, pollInterval time.Duration) *RPCClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &RPCClient{url: url, http: httpClient, pollInterval: pollInterval}
}

func (c *RPCClient) call(ctx context.Context, method string, result any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

func (c *RPCClient) GetTransactionBlock(ctx context.Context, digest string, opts TransactionBlockOptions) (*TransactionBlock, error) {
	var block TransactionBlock
	if err := c.call(ctx, "iota_getTransactionBlock", &block, digest, opts); err != nil {
		return nil, err
	}
	return &block, nil
}

// WaitForTransaction polls the node until the transaction is known. It only
// stops early when ctx is done; a transaction that executed with a failure
// status is reported as an error.
func (c *RPCClient) WaitForTransaction(ctx context.Context, digest string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		block, err := c.GetTransactionBlock(ctx, digest, TransactionBlockOptions{ShowEffects: true})
		if err == nil {
			if block.Effects != nil && block.Effects.Status.Status == "failure" {
				return fmt.Errorf("transaction %s failed: %s", digest, block.Effects.Status.Error)
			}
			return nil
		}

		var rpcErr *RPCError
		if !errors.As(err, &rpcErr) {
			return fmt.Errorf("waiting for transaction %s: %w", digest, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for transaction %s: %w", digest, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *RPCClient) GetOwnedObjects(ctx context.Context, owner string, query OwnedObjectsQuery, cursor string) (*ObjectPage, error) {
	var next any
	if cursor != "" {
		next = cursor
	}

	var page ObjectPage
	if err := c.call(ctx, "iotax_getOwnedObjects", &page, owner, query, next, nil); err != nil {
		return nil, err
	}
	return &page, nil
}
