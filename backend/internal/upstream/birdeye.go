package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

// Birdeye serves token market data. Responses are wrapped as
// {"success": bool, "data": ...} and only data is returned.
type Birdeye struct {
	c *fetch.Client
}

func NewBirdeye(baseURL, apiKey string, timeout time.Duration) *Birdeye {
	c := fetch.New(baseURL, timeout)
	c.Header = http.Header{}
	c.Header.Set("X-API-KEY", apiKey)
	c.Header.Set("x-chain", "solana")
	return &Birdeye{c: c}
}

type birdeyeEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

func (b *Birdeye) data(ctx context.Context, endpoint string, params fetch.Params) (json.RawMessage, error) {
	env, err := fetch.DoJSON[birdeyeEnvelope](ctx, b.c, fetch.Request{Endpoint: endpoint, Query: params})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "birdeye request was not successful"
		}
		return nil, fmt.Errorf("%s: %s", endpoint, msg)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, errEmptyResult
	}
	return env.Data, nil
}

func (b *Birdeye) TokenOverview(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	return b.data(ctx, "defi/token_overview", fetch.Params{"address": mint})
}

func (b *Birdeye) Price(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	return b.data(ctx, "defi/price", fetch.Params{"address": mint})
}
