package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/query"
)

// to mock service in tests
type ScoreService interface {
	Score(ctx context.Context, id string) (json.RawMessage, error)
}

// SolidScore reads wallet scores through a query cache, so concurrent and
// repeated lookups of one id inside the window share a single upstream call.
type SolidScore struct {
	queries *query.Client
}

func NewSolidScore(f query.Fetcher, window time.Duration, cacheSize int) ScoreService {
	return &SolidScore{
		queries: query.New(f,
			query.WithDefaults(query.WithDedupingInterval(window)),
			query.WithCacheSize(cacheSize),
		),
	}
}

func (s *SolidScore) Score(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, internal_errors.BadRequest("id is required")
	}
	entry, err := s.queries.Fetch(ctx, query.Request{
		Endpoint:   upstream.SolidScoreEndpoint,
		PathParams: map[string]string{"id": id},
		Required:   []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	return entry.Data, nil
}
