package apiclient

import (
	"context"
	"encoding/json"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
	"github.com/solexplorer/solexplorer/shared/query"
)

func (c *APIClient) TokenRequest(mint domain.MintAddress) query.Request {
	return c.read("token/{mint}", map[string]string{"mint": mint}, nil, "mint")
}

func (c *APIClient) TokenPriceRequest(mint domain.MintAddress) query.Request {
	return c.read("token/{mint}/price", map[string]string{"mint": mint}, nil, "mint")
}

func (c *APIClient) SolidScoreRequest(id string) query.Request {
	return c.read("solid-score/{id}", map[string]string{"id": id}, nil, "id")
}

func (c *APIClient) TransactionsRequest(address domain.WalletAddress, before domain.Signature) query.Request {
	return c.read("transactions", nil, fetch.Params{"address": address, "before": optional(before)}, "address")
}

// optional drops empty strings from the URL.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (c *APIClient) GetToken(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	return fetchAs[json.RawMessage](ctx, c, c.TokenRequest(mint))
}

func (c *APIClient) GetSolidScore(ctx context.Context, id string) (json.RawMessage, error) {
	return fetchAs[json.RawMessage](ctx, c, c.SolidScoreRequest(id))
}

func (c *APIClient) WatchTokenPrice(ctx context.Context, mint domain.MintAddress, opts ...query.Option) *query.Query[json.RawMessage] {
	return query.Watch[json.RawMessage](ctx, c.queries, c.TokenPriceRequest(mint), opts...)
}

func (c *APIClient) WatchTransactions(ctx context.Context, address domain.WalletAddress, opts ...query.Option) *query.Query[json.RawMessage] {
	return query.Watch[json.RawMessage](ctx, c.queries, c.TransactionsRequest(address, ""), opts...)
}
