package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

// DefaultAuctionHouse is Magic Eden's main auction house, used when a
// listing does not name one.
const DefaultAuctionHouse = "E8cU1WiRWjanGxmn96ewBgk9vPTcL6AEZ1t6F6fkgUWe"

type MagicEden struct {
	c *fetch.Client
}

func NewMagicEden(baseURL, apiKey string, timeout time.Duration) *MagicEden {
	c := fetch.New(baseURL, timeout)
	if apiKey != "" {
		c.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return &MagicEden{c: c}
}

type METoken struct {
	Mint       string `json:"mintAddress"`
	Name       string `json:"name"`
	Collection string `json:"collection"`
}

type MEListing struct {
	TokenMint    string  `json:"tokenMint"`
	Price        float64 `json:"price"`
	Seller       string  `json:"seller"`
	AuctionHouse string  `json:"auctionHouse"`
}

func (m *MagicEden) CollectionStats(ctx context.Context, symbol string) (json.RawMessage, error) {
	raw, err := m.c.Get(ctx, "collections/"+url.PathEscape(symbol)+"/stats", nil)
	return raw, notFoundAs(err, "collection not found")
}

func (m *MagicEden) Listings(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error) {
	params := fetch.Params{}
	if offset > 0 {
		params["offset"] = offset
	}
	if limit > 0 {
		params["limit"] = limit
	}
	raw, err := m.c.Get(ctx, "collections/"+url.PathEscape(symbol)+"/listings", params)
	return raw, notFoundAs(err, "collection not found")
}

func (m *MagicEden) Token(ctx context.Context, mint domain.MintAddress) (METoken, error) {
	token, err := fetch.DoJSON[METoken](ctx, m.c, fetch.Request{Endpoint: "tokens/" + url.PathEscape(mint)})
	return token, notFoundAs(err, "token not found")
}

// FirstListing returns one listing of the collection, or false when it has none.
func (m *MagicEden) FirstListing(ctx context.Context, symbol string) (MEListing, bool, error) {
	listings, err := fetch.DoJSON[[]MEListing](ctx, m.c, fetch.Request{
		Endpoint: "collections/" + url.PathEscape(symbol) + "/listings",
		Query:    fetch.Params{"limit": 1},
	})
	if err != nil {
		return MEListing{}, false, notFoundAs(err, "collection not found")
	}
	if len(listings) == 0 {
		return MEListing{}, false, nil
	}
	return listings[0], true, nil
}
