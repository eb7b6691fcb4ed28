package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solexplorer/solexplorer/backend/internal/setup"
	mw "github.com/solexplorer/solexplorer/shared/middleware"
	"github.com/solexplorer/solexplorer/shared/middleware/metrics"
	rl "github.com/solexplorer/solexplorer/shared/middleware/ratelimiter"
	"github.com/solexplorer/solexplorer/shared/utils"
)

// New creates and configures a new chi router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit request for all endpoints combined in that group
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config.Public

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders(cfg.SecureHeaders))

	// setup CORS for the web app
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Enable gzip compression for all responses
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.RateLimit(rl.New(20, 40, time.Hour), mw.GetIP)) // 20 RPS per IP
		r.Use(mw.GlobalRateLimit(rl.New(1000, 1000, time.Hour)))  // 1000 global RPS

		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		// Public reads
		r.Group(func(r chi.Router) {
			r.Use(authMw.OptionalAuth())

			r.Get("/profiles", h.FindProfiles)
			r.Get("/profiles/{username}", h.GetProfile)
			r.Get("/profiles/{username}/followers", h.Followers)
			r.Get("/profiles/{username}/following", h.Following)
			r.Get("/followers/state", h.FollowState)
			r.Get("/comments", h.Comments)
			r.Get("/activity", h.ActivityFeed)
			r.Get("/activity/global", h.GlobalActivity)
			r.Get("/leaderboard", h.Leaderboard)

			r.Get("/token/{mint}", h.TokenOverview)
			r.Get("/token/{mint}/price", h.TokenPrice)
			r.Get("/nft/{mint}", h.NFT)
			r.Get("/assets", h.Assets)
			r.Get("/transactions", h.Transactions)
			r.Get("/jupiter/perps/positions", h.PerpsPositions)
			r.Get("/jupiter/perps/orders", h.PerpsOrders)
			r.Get("/jupiter/perps/transactions", h.PerpsTrades)
			r.Get("/jupiter/quote", h.Quote)
			r.Get("/magiceden/collections/{symbol}", h.CollectionStats)
			r.Get("/magiceden/collections/{symbol}/listings", h.CollectionListings)
			r.Get("/magiceden/tokens/{mint}/auction-house", h.AuctionHouse)
			r.Get("/solid-score/{id}", h.SolidScore)

			// Fee estimation is a read, POST only carries the account list
			r.With(mw.RateLimit(rl.New(5, 10, time.Hour), mw.WalletOrIP)).Post("/priority-fee", h.PriorityFee)
		})

		// Wallet-authenticated writes
		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Use(mw.RateLimit(rl.New(5, 10, time.Hour), mw.GetWalletFromContext)) // 5 RPS per wallet

			r.Post("/profiles", h.CreateProfile)
			r.Put("/profiles/{username}", h.UpdateProfile)

			// Follow and comment: 1 per second per wallet
			r.With(mw.RateLimit(rl.New(1, 3, time.Hour), mw.GetWalletFromContext)).Post("/followers/add", h.Follow)
			r.With(mw.RateLimit(rl.New(1, 3, time.Hour), mw.GetWalletFromContext)).Post("/followers/remove", h.Unfollow)
			r.With(mw.RateLimit(rl.New(1, 3, time.Hour), mw.GetWalletFromContext)).Post("/comments", h.CreateComment)

			r.Post("/comments/{id}/like", h.Like)
			r.Delete("/comments/{id}/like", h.Unlike)
			r.Post("/contents/{id}/like", h.Like)
			r.Delete("/contents/{id}/like", h.Unlike)
		})
	})

	return r
}
