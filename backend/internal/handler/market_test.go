package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solexplorer/solexplorer/backend/internal/service"
	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

// --- Mock for MarketService ---

type MockMarketService struct {
	MockTokenOverview      func(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
	MockTransactions       func(ctx context.Context, q upstream.TransactionsQuery) (json.RawMessage, error)
	MockQuote              func(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error)
	MockCollectionListings func(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error)
	MockAuctionHouse       func(ctx context.Context, mint domain.MintAddress) (service.AuctionHouseInfo, error)
}

var _ service.MarketService = (*MockMarketService)(nil)

func (m *MockMarketService) TokenOverview(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	if m.MockTokenOverview != nil {
		return m.MockTokenOverview(ctx, mint)
	}
	return okRaw, nil
}

func (m *MockMarketService) TokenPrice(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) NFT(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) Assets(ctx context.Context, owner domain.WalletAddress, page domain.Page) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) Transactions(ctx context.Context, q upstream.TransactionsQuery) (json.RawMessage, error) {
	if m.MockTransactions != nil {
		return m.MockTransactions(ctx, q)
	}
	return okRaw, nil
}

func (m *MockMarketService) PriorityFee(ctx context.Context, req api.PriorityFeeRequest) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) PerpsPositions(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) PerpsOrders(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) PerpsTrades(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) Quote(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error) {
	if m.MockQuote != nil {
		return m.MockQuote(ctx, q)
	}
	return okRaw, nil
}

func (m *MockMarketService) CollectionStats(ctx context.Context, symbol string) (json.RawMessage, error) {
	return okRaw, nil
}

func (m *MockMarketService) CollectionListings(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error) {
	if m.MockCollectionListings != nil {
		return m.MockCollectionListings(ctx, symbol, offset, limit)
	}
	return okRaw, nil
}

func (m *MockMarketService) AuctionHouse(ctx context.Context, mint domain.MintAddress) (service.AuctionHouseInfo, error) {
	if m.MockAuctionHouse != nil {
		return m.MockAuctionHouse(ctx, mint)
	}
	return service.AuctionHouseInfo{}, nil
}

// --- Mock for ScoreService ---

type MockScoreService struct {
	MockScore func(ctx context.Context, id string) (json.RawMessage, error)
}

func (m *MockScoreService) Score(ctx context.Context, id string) (json.RawMessage, error) {
	return m.MockScore(ctx, id)
}

func TestTokenOverviewHandler(t *testing.T) {
	h := &Handler{}
	router := newRouter(http.MethodGet, "/api/token/{mint}", h.TokenOverview)

	t.Run("successful", func(t *testing.T) {
		h.market = &MockMarketService{
			MockTokenOverview: func(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
				assert.Equal(t, bobWallet, mint)
				return json.RawMessage(`{"symbol":"SOL"}`), nil
			},
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/token/"+bobWallet, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"symbol":"SOL"}`, rr.Body.String())
		assert.Equal(t, "public, s-maxage=60, stale-while-revalidate=120", rr.Header().Get("Cache-Control"))
	})

	t.Run("invalid mint", func(t *testing.T) {
		h.market = &MockMarketService{
			MockTokenOverview: func(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
				return nil, internal_errors.BadRequest("mint is not a valid solana address")
			},
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/token/nope", nil))

		assertErrorEnvelope(t, rr, http.StatusBadRequest, "mint is not a valid solana address")
	})
}

func TestTransactionsHandler(t *testing.T) {
	h := &Handler{market: &MockMarketService{
		MockTransactions: func(ctx context.Context, q upstream.TransactionsQuery) (json.RawMessage, error) {
			assert.Equal(t, upstream.TransactionsQuery{Address: aliceWallet, Before: "sig", Type: "swap", Limit: 5}, q)
			return json.RawMessage(`[]`), nil
		},
	}}
	router := newRouter(http.MethodGet, "/api/transactions", h.Transactions)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?address="+aliceWallet+"&before=sig&type=swap&limit=5", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/transactions?address="+aliceWallet+"&limit=ten", nil))
	assertErrorEnvelope(t, rr, http.StatusBadRequest, "invalid limit: must be an integer")
}

func TestQuoteHandler(t *testing.T) {
	h := &Handler{}
	router := newRouter(http.MethodGet, "/api/jupiter/quote", h.Quote)

	t.Run("successful", func(t *testing.T) {
		h.market = &MockMarketService{
			MockQuote: func(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error) {
				assert.Equal(t, upstream.QuoteRequest{
					InputMint:   aliceWallet,
					OutputMint:  bobWallet,
					Amount:      1_000_000,
					SlippageBps: 50,
					SwapMode:    "ExactIn",
				}, q)
				return json.RawMessage(`{"outAmount":"42"}`), nil
			},
		}
		url := "/api/jupiter/quote?inputMint=" + aliceWallet + "&outputMint=" + bobWallet + "&amount=1000000&slippageBps=50&swapMode=ExactIn"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"outAmount":"42"}`, rr.Body.String())
	})

	t.Run("invalid amount", func(t *testing.T) {
		for _, amount := range []string{"", "-1", "1.5"} {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jupiter/quote?amount="+amount, nil))
			assertErrorEnvelope(t, rr, http.StatusBadRequest, "invalid amount: must be a positive integer")
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		h.market = &MockMarketService{
			MockQuote: func(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error) {
				return nil, &fetch.Error{StatusCode: http.StatusBadRequest, Message: "Could not find any route"}
			},
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jupiter/quote?amount=1", nil))

		assertErrorEnvelope(t, rr, http.StatusInternalServerError, "Could not find any route")
	})
}

func TestCollectionListingsHandler(t *testing.T) {
	var gotOffset, gotLimit int
	h := &Handler{market: &MockMarketService{
		MockCollectionListings: func(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error) {
			assert.Equal(t, "degods", symbol)
			gotOffset, gotLimit = offset, limit
			return json.RawMessage(`[]`), nil
		},
	}}
	router := newRouter(http.MethodGet, "/api/magiceden/collections/{symbol}/listings", h.CollectionListings)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/magiceden/collections/degods/listings", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, defaultListingsLimit, gotLimit)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/magiceden/collections/degods/listings?offset=40&limit=10", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 40, gotOffset)
	assert.Equal(t, 10, gotLimit)
}

func TestAuctionHouseHandler(t *testing.T) {
	h := &Handler{market: &MockMarketService{
		MockAuctionHouse: func(ctx context.Context, mint domain.MintAddress) (service.AuctionHouseInfo, error) {
			return service.AuctionHouseInfo{Mint: mint, Collection: "degods", AuctionHouse: upstream.DefaultAuctionHouse, Default: true}, nil
		},
	}}
	router := newRouter(http.MethodGet, "/api/magiceden/tokens/{mint}/auction-house", h.AuctionHouse)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/magiceden/tokens/"+bobWallet+"/auction-house", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var info service.AuctionHouseInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&info))
	assert.Equal(t, bobWallet, info.Mint)
	assert.True(t, info.Default)
}

func TestSolidScoreHandler(t *testing.T) {
	h := &Handler{}
	router := newRouter(http.MethodGet, "/api/solid-score/{id}", h.SolidScore)

	t.Run("successful", func(t *testing.T) {
		h.score = &MockScoreService{MockScore: func(ctx context.Context, id string) (json.RawMessage, error) {
			assert.Equal(t, aliceWallet, id)
			return json.RawMessage(`{"score":87}`), nil
		}}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/solid-score/"+aliceWallet, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"score":87}`, rr.Body.String())
		assert.Equal(t, "public, s-maxage=3600, stale-while-revalidate=600", rr.Header().Get("Cache-Control"))
	})

	t.Run("upstream failure", func(t *testing.T) {
		h.score = &MockScoreService{MockScore: func(ctx context.Context, id string) (json.RawMessage, error) {
			return nil, &fetch.Error{StatusCode: http.StatusServiceUnavailable, Message: "request failed with status 503"}
		}}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/solid-score/"+aliceWallet, nil))

		assertErrorEnvelope(t, rr, http.StatusInternalServerError, "request failed with status 503")
		assert.Empty(t, rr.Header().Get("Cache-Control"))
	})
}
