package setup

import (
	"github.com/solexplorer/solexplorer/backend/internal/handler"
	"github.com/solexplorer/solexplorer/backend/internal/service"
	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/config"
	"github.com/solexplorer/solexplorer/shared/jwt"
	mw "github.com/solexplorer/solexplorer/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Upstreams      *upstream.Clients
	Handler        *handler.Handler
	Jwt            *jwt.Jwt
	AuthMiddleware *mw.Auth
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	clients := upstream.New(cfg)

	// Dynamic issues the wallet session tokens, its environment id is the audience
	tokens := jwt.New(cfg.JwtKey(), cfg.JwtTTL(), cfg.Private.DynamicEnvironmentID)

	social := service.NewSocial(clients.Tapestry, service.NewTextProcessor())
	auctions := service.NewAuctionHouses(clients.MagicEden, cfg.Public.CacheSize, cfg.Public.AuctionHouseTTL)
	market := service.NewMarket(clients.Birdeye, clients.Helius, clients.Jupiter, clients.MagicEden, auctions)
	score := service.NewSolidScore(clients.SolidScore.Client, cfg.Public.SolidScoreDedup, cfg.Public.CacheSize)

	h := handler.New(social, market, score, clients.Helius)

	return &Dependencies{
		Config:         cfg,
		Upstreams:      clients,
		Handler:        h,
		Jwt:            tokens,
		AuthMiddleware: mw.NewAuth(tokens),
	}, nil
}
