package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

const (
	wallet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mint   = "So11111111111111111111111111111111111111112"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func statusOf(err error) int {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func TestTapestry_InjectsApiKey(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		assert.Equal(t, wallet, r.URL.Query().Get("walletAddress"))
		assert.Equal(t, "nemoapp", r.URL.Query().Get("namespace"))
		w.Write([]byte(`{"profiles":[]}`))
	})

	raw, err := NewTapestry(srv.URL, "secret", "nemoapp", time.Second).FindProfiles(context.Background(), wallet)
	require.NoError(t, err)
	assert.JSONEq(t, `{"profiles":[]}`, string(raw))
}

func TestTapestry_ProfileNotFound(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Profile not found"}`))
	})

	_, err := NewTapestry(srv.URL, "k", "", time.Second).GetProfile(context.Background(), "ghost")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestTapestry_UpstreamFailureKeepsMessage(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"graph unavailable"}`))
	})

	_, err := NewTapestry(srv.URL, "k", "", time.Second).GlobalActivity(context.Background(), domain.Page{})
	require.Error(t, err)
	assert.Zero(t, statusOf(err), "non 404 failures are not client errors")
	assert.Equal(t, "graph unavailable", err.Error())
	assert.Equal(t, http.StatusBadGateway, fetch.StatusOf(err))
}

func TestTapestry_CreateCommentBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["profileId"])
		assert.Equal(t, "post-1", body["contentId"])
		assert.Equal(t, "gm", body["text"])
		assert.NotContains(t, body, "commentId")
		w.Write([]byte(`{"id":"c1","text":"gm"}`))
	})

	_, err := NewTapestry(srv.URL, "k", "", time.Second).CreateComment(context.Background(), api.CreateCommentRequest{
		ProfileId: "alice", ContentId: "post-1", Text: "gm",
	})
	require.NoError(t, err)
}

func TestTapestry_CommentsQuery(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "post-1", q.Get("contentId"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.False(t, q.Has("targetProfileId"))
		w.Write([]byte(`{"comments":[{"comment":{"id":"c1","text":"hi"},"author":{"username":"bob"}}],"page":2,"pageSize":20}`))
	})

	res, err := NewTapestry(srv.URL, "k", "", time.Second).Comments(context.Background(), CommentsQuery{
		ContentId: "post-1", Page: domain.Page{Page: 2},
	})
	require.NoError(t, err)
	require.Len(t, res.Comments, 1)
	assert.Equal(t, "hi", res.Comments[0].Comment.Text)
	assert.Contains(t, res.Comments[0].Extra, "author")
}

func TestBirdeye_NarrowsToData(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/token_overview", r.URL.Path)
		assert.Equal(t, "bk", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "solana", r.Header.Get("x-chain"))
		assert.Equal(t, mint, r.URL.Query().Get("address"))
		w.Write([]byte(`{"success":true,"data":{"symbol":"SOL","price":150.5}}`))
	})

	raw, err := NewBirdeye(srv.URL, "bk", time.Second).TokenOverview(context.Background(), mint)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"SOL","price":150.5}`, string(raw))
}

func TestBirdeye_Unsuccessful(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"address not supported"}`))
	})

	_, err := NewBirdeye(srv.URL, "bk", time.Second).Price(context.Background(), mint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address not supported")
}

func rpcServer(t *testing.T, result string, check func(req rpcRequest)) *httptest.Server {
	return newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hk", r.URL.Query().Get("api-key"))
		body, _ := io.ReadAll(r.Body)
		var req rpcRequest
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, jsonRPCVersion, req.JSONRPC)
		if check != nil {
			check(req)
		}
		w.Write([]byte(result))
	})
}

func TestHelius_GetAsset(t *testing.T) {
	srv := rpcServer(t, `{"jsonrpc":"2.0","id":"1","result":{"id":"`+mint+`","interface":"V1_NFT"}}`, func(req rpcRequest) {
		assert.Equal(t, "getAsset", req.Method)
	})

	raw, err := NewHelius(srv.URL, srv.URL, "hk", time.Second).GetAsset(context.Background(), mint)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "V1_NFT")
}

func TestHelius_GetAssetNull(t *testing.T) {
	srv := rpcServer(t, `{"jsonrpc":"2.0","id":"1","result":null}`, nil)

	_, err := NewHelius(srv.URL, srv.URL, "hk", time.Second).GetAsset(context.Background(), mint)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestHelius_RPCError(t *testing.T) {
	srv := rpcServer(t, `{"jsonrpc":"2.0","id":"1","error":{"code":-32602,"message":"invalid owner"}}`, nil)

	_, err := NewHelius(srv.URL, srv.URL, "hk", time.Second).AssetsByOwner(context.Background(), wallet, domain.Page{})
	var rpcErr *rpcError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)
}

func TestHelius_Ping(t *testing.T) {
	healthy := rpcServer(t, `{"jsonrpc":"2.0","id":"1","result":"ok"}`, func(req rpcRequest) {
		assert.Equal(t, "getHealth", req.Method)
	})
	assert.NoError(t, NewHelius(healthy.URL, healthy.URL, "hk", time.Second).Ping(context.Background()))

	behind := rpcServer(t, `{"jsonrpc":"2.0","id":"1","error":{"code":-32005,"message":"Node is behind by 42 slots"}}`, nil)
	assert.Error(t, NewHelius(behind.URL, behind.URL, "hk", time.Second).Ping(context.Background()))
}

func TestHelius_PriorityFeeParams(t *testing.T) {
	srv := rpcServer(t, `{"jsonrpc":"2.0","id":"1","result":{"priorityFeeEstimate":1200}}`, func(req rpcRequest) {
		assert.Equal(t, "getPriorityFeeEstimate", req.Method)
		params, ok := req.Params.([]any)
		if assert.True(t, ok) && assert.Len(t, params, 1) {
			first, _ := params[0].(map[string]any)
			assert.Equal(t, []any{wallet}, first["accountKeys"])
		}
	})

	raw, err := NewHelius(srv.URL, srv.URL, "hk", time.Second).PriorityFee(context.Background(), api.PriorityFeeRequest{AccountKeys: []string{wallet}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"priorityFeeEstimate":1200}`, string(raw))
}

func TestHelius_Transactions(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/addresses/"+wallet+"/transactions", r.URL.Path)
		assert.Equal(t, "SWAP", r.URL.Query().Get("type"))
		assert.Equal(t, "hk", r.URL.Query().Get("api-key"))
		w.Write([]byte(`[]`))
	})

	raw, err := NewHelius(srv.URL, srv.URL, "hk", time.Second).Transactions(context.Background(), TransactionsQuery{Address: wallet, Type: "SWAP"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestJupiter_QuoteFee(t *testing.T) {
	var gotFee string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "1000000", r.URL.Query().Get("amount"))
		gotFee = r.URL.Query().Get("platformFeeBps")
		w.Write([]byte(`{"outAmount":"42"}`))
	})
	q := QuoteRequest{InputMint: mint, OutputMint: wallet, Amount: 1_000_000}

	_, err := NewJupiter(srv.URL, srv.URL, wallet, 25, time.Second).Quote(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "25", gotFee)

	_, err = NewJupiter(srv.URL, srv.URL, "", 25, time.Second).Quote(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, gotFee, "no fee without a fee wallet")
}

func TestMagicEden_Auth(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mk", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/tokens/" + mint:
			w.Write([]byte(`{"mintAddress":"` + mint + `","collection":"degods"}`))
		case "/collections/degods/listings":
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	me := NewMagicEden(srv.URL, "mk", time.Second)

	token, err := me.Token(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, "degods", token.Collection)

	_, found, err := me.FirstListing(context.Background(), "degods")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = me.CollectionStats(context.Background(), "nope")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}
