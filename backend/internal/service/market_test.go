package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

type MockAuctionHouseSource struct {
	MockToken        func(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error)
	MockFirstListing func(ctx context.Context, symbol string) (upstream.MEListing, bool, error)
}

func (m *MockAuctionHouseSource) Token(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error) {
	return m.MockToken(ctx, mint)
}

func (m *MockAuctionHouseSource) FirstListing(ctx context.Context, symbol string) (upstream.MEListing, bool, error) {
	return m.MockFirstListing(ctx, symbol)
}

func TestAuctionHouses_Resolve(t *testing.T) {
	var listingCalls atomic.Int32
	source := &MockAuctionHouseSource{
		MockToken: func(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error) {
			if mint == bobWallet {
				return upstream.METoken{Mint: mint}, nil
			}
			return upstream.METoken{Mint: mint, Collection: "degods"}, nil
		},
		MockFirstListing: func(ctx context.Context, symbol string) (upstream.MEListing, bool, error) {
			listingCalls.Add(1)
			return upstream.MEListing{AuctionHouse: "house-1"}, true, nil
		},
	}
	a := NewAuctionHouses(source, 10, time.Hour)

	info, err := a.Resolve(context.Background(), aliceWallet)
	require.NoError(t, err)
	assert.Equal(t, AuctionHouseInfo{Mint: aliceWallet, Collection: "degods", AuctionHouse: "house-1"}, info)

	_, err = a.Resolve(context.Background(), aliceWallet)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listingCalls.Load(), "collection lookup is cached")

	_, err = a.Resolve(context.Background(), bobWallet)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAuctionHouses_DefaultWhenNoListing(t *testing.T) {
	a := NewAuctionHouses(&MockAuctionHouseSource{
		MockToken: func(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error) {
			return upstream.METoken{Mint: mint, Collection: "quiet"}, nil
		},
		MockFirstListing: func(ctx context.Context, symbol string) (upstream.MEListing, bool, error) {
			return upstream.MEListing{}, false, nil
		},
	}, 10, time.Hour)

	info, err := a.Resolve(context.Background(), aliceWallet)
	require.NoError(t, err)
	assert.Equal(t, upstream.DefaultAuctionHouse, info.AuctionHouse)
	assert.True(t, info.Default)
}

func TestAuctionHouses_ListingFailureNotCached(t *testing.T) {
	var calls atomic.Int32
	a := NewAuctionHouses(&MockAuctionHouseSource{
		MockToken: func(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error) {
			return upstream.METoken{Mint: mint, Collection: "flaky"}, nil
		},
		MockFirstListing: func(ctx context.Context, symbol string) (upstream.MEListing, bool, error) {
			if calls.Add(1) == 1 {
				return upstream.MEListing{}, false, errors.New("magic eden down")
			}
			return upstream.MEListing{AuctionHouse: "house-2"}, true, nil
		},
	}, 10, time.Hour)

	_, err := a.Resolve(context.Background(), aliceWallet)
	require.Error(t, err)

	info, err := a.Resolve(context.Background(), aliceWallet)
	require.NoError(t, err)
	assert.Equal(t, "house-2", info.AuctionHouse)
}

func TestMarket_Validation(t *testing.T) {
	m := NewMarket(nil, nil, nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"token mint", func() error { _, err := m.TokenOverview(ctx, "bad"); return err }},
		{"price mint", func() error { _, err := m.TokenPrice(ctx, ""); return err }},
		{"nft mint", func() error { _, err := m.NFT(ctx, "0OIl"); return err }},
		{"assets owner", func() error { _, err := m.Assets(ctx, "x", domain.Page{}); return err }},
		{"transactions address", func() error {
			_, err := m.Transactions(ctx, upstream.TransactionsQuery{Address: "x"})
			return err
		}},
		{"transactions before", func() error {
			_, err := m.Transactions(ctx, upstream.TransactionsQuery{Address: aliceWallet, Before: "short"})
			return err
		}},
		{"priority fee empty", func() error { _, err := m.PriorityFee(ctx, api.PriorityFeeRequest{}); return err }},
		{"perps wallet", func() error { _, err := m.PerpsPositions(ctx, "x"); return err }},
		{"quote same mint", func() error {
			_, err := m.Quote(ctx, upstream.QuoteRequest{InputMint: aliceWallet, OutputMint: aliceWallet, Amount: 1})
			return err
		}},
		{"quote zero amount", func() error {
			_, err := m.Quote(ctx, upstream.QuoteRequest{InputMint: aliceWallet, OutputMint: bobWallet})
			return err
		}},
		{"quote swap mode", func() error {
			_, err := m.Quote(ctx, upstream.QuoteRequest{InputMint: aliceWallet, OutputMint: bobWallet, Amount: 1, SwapMode: "Sideways"})
			return err
		}},
		{"collection symbol", func() error { _, err := m.CollectionStats(ctx, " "); return err }},
		{"listings offset", func() error { _, err := m.CollectionListings(ctx, "degods", -1, 0); return err }},
		{"auction house mint", func() error { _, err := m.AuctionHouse(ctx, "x"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireStatus(t, tt.call(), http.StatusBadRequest)
		})
	}
}

func TestSolidScore_DeduplicatesConcurrentRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/score/"+aliceWallet, r.URL.Path)
		<-release
		w.Write([]byte(`{"score":87}`))
	}))
	defer srv.Close()

	s := NewSolidScore(fetch.New(srv.URL, time.Second), 5*time.Minute, 16)

	var wg sync.WaitGroup
	results := make([]json.RawMessage, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.Score(context.Background(), aliceWallet)
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// give the second caller time to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range 2 {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `{"score":87}`, string(results[i]))
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err := s.Score(context.Background(), aliceWallet)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "served from the dedup window")
}

func TestSolidScore_RequiresId(t *testing.T) {
	s := NewSolidScore(fetch.New("http://unused.test", time.Second), time.Minute, 16)
	_, err := s.Score(context.Background(), "  ")
	requireStatus(t, err, http.StatusBadRequest)
}
