package handler

import (
	"context"
	"net/http"

	"github.com/solexplorer/solexplorer/backend/internal/service"
	"github.com/solexplorer/solexplorer/shared/utils"
)

// HealthChecker reports whether the dependencies needed to serve traffic are up.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	social service.SocialService
	market service.MarketService
	score  service.ScoreService
	health HealthChecker
}

func New(social service.SocialService, market service.MarketService, score service.ScoreService, health HealthChecker) *Handler {
	return &Handler{social: social, market: market, score: score, health: health}
}

// Edge cache policies of the cacheable routes
var (
	globalActivityCache = utils.CachePolicy{SMaxAge: 760, MaxAge: 760}
	leaderboardCache    = utils.CachePolicy{SMaxAge: 300, StaleWhileRevalidate: 600}
	tokenCache          = utils.CachePolicy{SMaxAge: 60, StaleWhileRevalidate: 120}
	solidScoreCache     = utils.CachePolicy{SMaxAge: 3600, StaleWhileRevalidate: 600}
)

func writeJSON(w http.ResponseWriter, v any) {
	utils.WriteJSON(w, http.StatusOK, v)
}
