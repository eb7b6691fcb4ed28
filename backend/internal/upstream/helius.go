package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

const jsonRPCVersion = "2.0"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (r rpcResponse) resultIsNull() bool {
	return len(r.Result) == 0 || string(r.Result) == "null"
}

// Helius covers the DAS and priority fee JSON-RPC methods on the RPC url and
// the enhanced transactions REST API. Both take the key as api-key.
type Helius struct {
	rpc *fetch.Client
	api *fetch.Client
	seq atomic.Uint64
}

func NewHelius(rpcURL, apiURL, apiKey string, timeout time.Duration) *Helius {
	rpc := fetch.New(rpcURL, timeout)
	api := fetch.New(apiURL, timeout)
	if apiKey != "" {
		rpc.Query = fetch.Params{"api-key": apiKey}
		api.Query = fetch.Params{"api-key": apiKey}
	}
	return &Helius{rpc: rpc, api: api}
}

func (h *Helius) call(ctx context.Context, method string, params any) (rpcResponse, error) {
	req := rpcRequest{
		JSONRPC: jsonRPCVersion,
		ID:      fmt.Sprintf("solexplorer-%d", h.seq.Add(1)),
		Method:  method,
		Params:  params,
	}
	resp, err := fetch.DoJSON[rpcResponse](ctx, h.rpc, fetch.Request{Method: http.MethodPost, Body: req})
	if err != nil {
		return resp, err
	}
	if resp.Error != nil {
		return resp, fmt.Errorf("%s: %w", method, resp.Error)
	}
	return resp, nil
}

// GetAsset returns the DAS asset for mint, or a 404 when Helius knows none.
func (h *Helius) GetAsset(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	resp, err := h.call(ctx, "getAsset", map[string]any{"id": mint})
	if err != nil {
		return nil, err
	}
	if resp.resultIsNull() {
		return nil, internal_errors.NotFound("asset not found")
	}
	return resp.Result, nil
}

func (h *Helius) AssetsByOwner(ctx context.Context, owner domain.WalletAddress, page domain.Page) (json.RawMessage, error) {
	page = page.Normalize()
	resp, err := h.call(ctx, "getAssetsByOwner", map[string]any{
		"ownerAddress": owner,
		"page":         page.Page,
		"limit":        page.PageSize,
		"displayOptions": map[string]bool{
			"showFungible":      true,
			"showNativeBalance": true,
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.resultIsNull() {
		return nil, errEmptyResult
	}
	return resp.Result, nil
}

func (h *Helius) PriorityFee(ctx context.Context, req api.PriorityFeeRequest) (json.RawMessage, error) {
	param := map[string]any{
		"options": map[string]any{"recommended": true},
	}
	if req.Transaction != "" {
		param["transaction"] = req.Transaction
	} else {
		param["accountKeys"] = req.AccountKeys
	}
	resp, err := h.call(ctx, "getPriorityFeeEstimate", []any{param})
	if err != nil {
		return nil, err
	}
	if resp.resultIsNull() {
		return nil, errEmptyResult
	}
	return resp.Result, nil
}

// TransactionsQuery pages through parsed transactions of an address.
type TransactionsQuery struct {
	Address domain.WalletAddress
	Before  domain.Signature // signature to page back from
	Type    string           // Helius transaction type filter, e.g. SWAP
	Limit   int
}

func (h *Helius) Transactions(ctx context.Context, q TransactionsQuery) (json.RawMessage, error) {
	params := fetch.Params{}
	if q.Before != "" {
		params["before"] = q.Before
	}
	if q.Type != "" {
		params["type"] = q.Type
	}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}
	return h.api.Get(ctx, "v0/addresses/"+url.PathEscape(q.Address)+"/transactions", params)
}

// Ping calls getHealth, which answers "ok" while the node is caught up.
func (h *Helius) Ping(ctx context.Context) error {
	resp, err := h.call(ctx, "getHealth", []any{})
	if err != nil {
		return err
	}
	var status string
	if err := json.Unmarshal(resp.Result, &status); err != nil || status != "ok" {
		return fmt.Errorf("rpc node unhealthy: %s", resp.Result)
	}
	return nil
}
