// Package venue talks to the order-matching program's node. The gateway
// treats the venue as an external collaborator: it forwards rewritten
// requests and delegates open-orders account allocation, nothing more.
package venue

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/permlabs/dexgate/pkg/proxy"
)

// RPCClient forwards proxied requests to a venue node over JSON-RPC. It
// implements proxy.Forwarder and proxy.Allocator.
type RPCClient struct {
	url  string
	http *http.Client
	log  *zap.SugaredLogger
}

// NewRPCClient creates a client for the venue node at url.
func NewRPCClient(url string, log *zap.SugaredLogger) *RPCClient {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RPCClient{
		url:  url,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Error  *rpcError       `json:"error"`
	Result json.RawMessage `json:"result"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("venue rpc error %d: %s", e.Code, e.Message)
}

type accountParam struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type relayParams struct {
	Data     string         `json:"data"` // base64, unmodified payload
	Accounts []accountParam `json:"accounts"`
	Seeds    [][]string     `json:"seeds"` // base64 components per seed set
}

type createOpenOrdersParams struct {
	DexProgram    string `json:"dexProgram"`
	OpenOrders    string `json:"openOrders"`
	Payer         string `json:"payer"`
	Market        string `json:"market"`
	Rent          string `json:"rent"`
	InitAuthority string `json:"initAuthority"`
	Bump          uint8  `json:"bump"`
	BumpInit      uint8  `json:"bumpInit"`
}

// Forward relays the rewritten request to the venue. The payload goes out
// byte-for-byte as received; only accounts and signer seeds differ from what
// the caller submitted.
func (c *RPCClient) Forward(ctx context.Context, req proxy.ForwardRequest) error {
	params := relayParams{
		Data:     base64.StdEncoding.EncodeToString(req.Payload),
		Accounts: make([]accountParam, len(req.Accounts)),
		Seeds:    make([][]string, len(req.Seeds)),
	}
	for i, a := range req.Accounts {
		params.Accounts[i] = accountParam{
			Pubkey:     a.Key.String(),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}
	for i, set := range req.Seeds {
		encoded := make([]string, len(set))
		for j, component := range set {
			encoded[j] = base64.StdEncoding.EncodeToString(component)
		}
		params.Seeds[i] = encoded
	}

	if err := c.call(ctx, "relayInstruction", params); err != nil {
		return fmt.Errorf("forward to venue: %w", err)
	}
	c.log.Debugw("forwarded_to_venue", "accounts", len(req.Accounts), "seed_sets", len(req.Seeds))
	return nil
}

// CreateOpenOrders asks the venue node to allocate and initialize one
// open-orders account under the derived address.
func (c *RPCClient) CreateOpenOrders(ctx context.Context, req proxy.AllocationRequest) error {
	params := createOpenOrdersParams{
		DexProgram:    req.DexPID.String(),
		OpenOrders:    req.OpenOrders.String(),
		Payer:         req.Payer.Key.String(),
		Market:        req.Market.Key.String(),
		Rent:          req.Rent.Key.String(),
		InitAuthority: req.InitAuthority.String(),
		Bump:          req.Bump,
		BumpInit:      req.BumpInit,
	}
	if err := c.call(ctx, "createOpenOrders", params); err != nil {
		return fmt.Errorf("allocate open orders: %w", err)
	}
	return nil
}

func (c *RPCClient) call(ctx context.Context, method string, params any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: venue returned status %d", method, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	return nil
}
