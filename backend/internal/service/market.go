package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
)

// to mock service in tests
type MarketService interface {
	TokenOverview(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
	TokenPrice(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
	NFT(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
	Assets(ctx context.Context, owner domain.WalletAddress, page domain.Page) (json.RawMessage, error)
	Transactions(ctx context.Context, q upstream.TransactionsQuery) (json.RawMessage, error)
	PriorityFee(ctx context.Context, req api.PriorityFeeRequest) (json.RawMessage, error)
	PerpsPositions(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	PerpsOrders(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	PerpsTrades(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	Quote(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error)
	CollectionStats(ctx context.Context, symbol string) (json.RawMessage, error)
	CollectionListings(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error)
	AuctionHouse(ctx context.Context, mint domain.MintAddress) (AuctionHouseInfo, error)
}

type TokenData interface {
	TokenOverview(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
	Price(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
}

type ChainData interface {
	GetAsset(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error)
	AssetsByOwner(ctx context.Context, owner domain.WalletAddress, page domain.Page) (json.RawMessage, error)
	Transactions(ctx context.Context, q upstream.TransactionsQuery) (json.RawMessage, error)
	PriorityFee(ctx context.Context, req api.PriorityFeeRequest) (json.RawMessage, error)
}

type Trading interface {
	Positions(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	LimitOrders(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	Trades(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	Quote(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error)
}

type NFTMarket interface {
	CollectionStats(ctx context.Context, symbol string) (json.RawMessage, error)
	Listings(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error)
	Token(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error)
	FirstListing(ctx context.Context, symbol string) (upstream.MEListing, bool, error)
}

var (
	_ TokenData = (*upstream.Birdeye)(nil)
	_ ChainData = (*upstream.Helius)(nil)
	_ Trading   = (*upstream.Jupiter)(nil)
	_ NFTMarket = (*upstream.MagicEden)(nil)
)

const maxListingsLimit = 100

type Market struct {
	tokens   TokenData
	chain    ChainData
	trading  Trading
	nfts     NFTMarket
	auctions *AuctionHouses
}

func NewMarket(tokens TokenData, chain ChainData, trading Trading, nfts NFTMarket, auctions *AuctionHouses) MarketService {
	return &Market{tokens: tokens, chain: chain, trading: trading, nfts: nfts, auctions: auctions}
}

func validMint(mint domain.MintAddress) error {
	if err := domain.ValidateAddress(mint); err != nil {
		return internal_errors.BadRequest("mint is not a valid solana address")
	}
	return nil
}

func validWallet(name string, wallet domain.WalletAddress) error {
	if err := domain.ValidateAddress(wallet); err != nil {
		return internal_errors.BadRequest(name + " is not a valid solana address")
	}
	return nil
}

func (m *Market) TokenOverview(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	if err := validMint(mint); err != nil {
		return nil, err
	}
	return m.tokens.TokenOverview(ctx, mint)
}

func (m *Market) TokenPrice(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	if err := validMint(mint); err != nil {
		return nil, err
	}
	return m.tokens.Price(ctx, mint)
}

func (m *Market) NFT(ctx context.Context, mint domain.MintAddress) (json.RawMessage, error) {
	if err := validMint(mint); err != nil {
		return nil, err
	}
	return m.chain.GetAsset(ctx, mint)
}

func (m *Market) Assets(ctx context.Context, owner domain.WalletAddress, page domain.Page) (json.RawMessage, error) {
	if err := validWallet("owner", owner); err != nil {
		return nil, err
	}
	return m.chain.AssetsByOwner(ctx, owner, page.Normalize())
}

func (m *Market) Transactions(ctx context.Context, q upstream.TransactionsQuery) (json.RawMessage, error) {
	if err := validWallet("address", q.Address); err != nil {
		return nil, err
	}
	if q.Before != "" {
		if err := domain.ValidateSignature(q.Before); err != nil {
			return nil, internal_errors.BadRequest("before is not a valid transaction signature")
		}
	}
	q.Type = strings.ToUpper(q.Type)
	if q.Limit > domain.MaxPageSize {
		q.Limit = domain.MaxPageSize
	}
	return m.chain.Transactions(ctx, q)
}

func (m *Market) PriorityFee(ctx context.Context, req api.PriorityFeeRequest) (json.RawMessage, error) {
	if req.Transaction == "" && len(req.AccountKeys) == 0 {
		return nil, internal_errors.BadRequest("accountKeys or transaction is required")
	}
	return m.chain.PriorityFee(ctx, req)
}

func (m *Market) PerpsPositions(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	if err := validWallet("walletAddress", wallet); err != nil {
		return nil, err
	}
	return m.trading.Positions(ctx, wallet)
}

func (m *Market) PerpsOrders(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	if err := validWallet("walletAddress", wallet); err != nil {
		return nil, err
	}
	return m.trading.LimitOrders(ctx, wallet)
}

func (m *Market) PerpsTrades(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	if err := validWallet("walletAddress", wallet); err != nil {
		return nil, err
	}
	return m.trading.Trades(ctx, wallet)
}

func (m *Market) Quote(ctx context.Context, q upstream.QuoteRequest) (json.RawMessage, error) {
	if err := validWallet("inputMint", q.InputMint); err != nil {
		return nil, err
	}
	if err := validWallet("outputMint", q.OutputMint); err != nil {
		return nil, err
	}
	if q.InputMint == q.OutputMint {
		return nil, internal_errors.BadRequest("inputMint and outputMint must differ")
	}
	if q.Amount == 0 {
		return nil, internal_errors.BadRequest("amount must be positive")
	}
	if q.SlippageBps < 0 || q.SlippageBps > 10_000 {
		return nil, internal_errors.BadRequest("slippageBps must be within [0, 10000]")
	}
	if q.SwapMode != "" && q.SwapMode != "ExactIn" && q.SwapMode != "ExactOut" {
		return nil, internal_errors.BadRequest("swapMode must be ExactIn or ExactOut")
	}
	return m.trading.Quote(ctx, q)
}

func (m *Market) CollectionStats(ctx context.Context, symbol string) (json.RawMessage, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, internal_errors.BadRequest("symbol is required")
	}
	return m.nfts.CollectionStats(ctx, symbol)
}

func (m *Market) CollectionListings(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, internal_errors.BadRequest("symbol is required")
	}
	if offset < 0 || limit < 0 {
		return nil, internal_errors.BadRequest("offset and limit must not be negative")
	}
	limit = min(limit, maxListingsLimit)
	return m.nfts.Listings(ctx, symbol, offset, limit)
}

func (m *Market) AuctionHouse(ctx context.Context, mint domain.MintAddress) (AuctionHouseInfo, error) {
	if err := validMint(mint); err != nil {
		return AuctionHouseInfo{}, err
	}
	return m.auctions.Resolve(ctx, mint)
}
