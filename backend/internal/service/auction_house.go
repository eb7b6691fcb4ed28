package service

import (
	"context"
	"time"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/cache"
	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/logger"
)

type AuctionHouseInfo struct {
	Mint         domain.MintAddress `json:"mint"`
	Collection   string             `json:"collection"`
	AuctionHouse string             `json:"auctionHouse"`
	Default      bool               `json:"isDefault"`
}

type AuctionHouseSource interface {
	Token(ctx context.Context, mint domain.MintAddress) (upstream.METoken, error)
	FirstListing(ctx context.Context, symbol string) (upstream.MEListing, bool, error)
}

// AuctionHouses resolves the Magic Eden auction house of a mint through its
// collection. Results are cached per collection.
type AuctionHouses struct {
	source AuctionHouseSource
	cache  *cache.TTL[string, string]
}

func NewAuctionHouses(source AuctionHouseSource, size int, ttl time.Duration) *AuctionHouses {
	if size <= 0 {
		size = 1024
	}
	return &AuctionHouses{source: source, cache: cache.NewTTL[string, string](size, ttl)}
}

func (a *AuctionHouses) Resolve(ctx context.Context, mint domain.MintAddress) (AuctionHouseInfo, error) {
	token, err := a.source.Token(ctx, mint)
	if err != nil {
		return AuctionHouseInfo{}, err
	}
	if token.Collection == "" {
		return AuctionHouseInfo{}, internal_errors.NotFound("token is not part of a collection")
	}

	house, err := a.cache.GetOrLoad(ctx, token.Collection, func(ctx context.Context) (string, error) {
		listing, found, err := a.source.FirstListing(ctx, token.Collection)
		if err != nil {
			return "", err
		}
		if !found || listing.AuctionHouse == "" {
			logger.Log.Debug("no listing auction house, using default", "component", "auction_house", "collection", token.Collection)
			return upstream.DefaultAuctionHouse, nil
		}
		return listing.AuctionHouse, nil
	})
	if err != nil {
		return AuctionHouseInfo{}, err
	}

	return AuctionHouseInfo{
		Mint:         mint,
		Collection:   token.Collection,
		AuctionHouse: house,
		Default:      house == upstream.DefaultAuctionHouse,
	}, nil
}
