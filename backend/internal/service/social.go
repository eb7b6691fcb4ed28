package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/logger"
)

// to mock service in tests
type SocialService interface {
	FindProfiles(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	GetProfile(ctx context.Context, username domain.Username) (json.RawMessage, error)
	CreateProfile(ctx context.Context, caller domain.Identity, req api.CreateProfileRequest) (json.RawMessage, error)
	UpdateProfile(ctx context.Context, caller domain.Identity, username domain.Username, req api.UpdateProfileRequest) (json.RawMessage, error)
	Followers(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error)
	Following(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error)
	FollowState(ctx context.Context, startId, endId domain.ProfileId) (json.RawMessage, error)
	Follow(ctx context.Context, caller domain.Identity, req api.FollowRequest) (json.RawMessage, error)
	Unfollow(ctx context.Context, caller domain.Identity, req api.FollowRequest) (json.RawMessage, error)
	Comments(ctx context.Context, q upstream.CommentsQuery) (api.CommentsResponse, error)
	CreateComment(ctx context.Context, caller domain.Identity, req api.CreateCommentRequest) (json.RawMessage, error)
	Like(ctx context.Context, caller domain.Identity, nodeId string, req api.LikeRequest) (json.RawMessage, error)
	Unlike(ctx context.Context, caller domain.Identity, nodeId string, req api.LikeRequest) (json.RawMessage, error)
	ActivityFeed(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error)
	GlobalActivity(ctx context.Context, page domain.Page) (json.RawMessage, error)
	Leaderboard(ctx context.Context) (json.RawMessage, error)
}

// SocialGraph is the Tapestry surface the service depends on.
type SocialGraph interface {
	FindProfiles(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error)
	GetProfile(ctx context.Context, id domain.Username) (json.RawMessage, error)
	FindOrCreateProfile(ctx context.Context, req api.CreateProfileRequest) (json.RawMessage, error)
	UpdateProfile(ctx context.Context, id domain.Username, req api.UpdateProfileRequest) (json.RawMessage, error)
	Followers(ctx context.Context, id domain.Username, page domain.Page) (json.RawMessage, error)
	Following(ctx context.Context, id domain.Username, page domain.Page) (json.RawMessage, error)
	FollowState(ctx context.Context, startId, endId domain.ProfileId) (json.RawMessage, error)
	Follow(ctx context.Context, req api.FollowRequest) (json.RawMessage, error)
	Unfollow(ctx context.Context, req api.FollowRequest) (json.RawMessage, error)
	Comments(ctx context.Context, q upstream.CommentsQuery) (api.CommentsResponse, error)
	CreateComment(ctx context.Context, req api.CreateCommentRequest) (json.RawMessage, error)
	Like(ctx context.Context, nodeId string, req api.LikeRequest) (json.RawMessage, error)
	Unlike(ctx context.Context, nodeId string, req api.LikeRequest) (json.RawMessage, error)
	ActivityFeed(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error)
	GlobalActivity(ctx context.Context, page domain.Page) (json.RawMessage, error)
	Leaderboard(ctx context.Context) (json.RawMessage, error)
}

var _ SocialGraph = (*upstream.Tapestry)(nil)

type Social struct {
	graph SocialGraph
	text  *TextProcessor
}

func NewSocial(graph SocialGraph, text *TextProcessor) SocialService {
	return &Social{graph: graph, text: text}
}

func (s *Social) FindProfiles(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	if err := domain.ValidateAddress(wallet); err != nil {
		return nil, internal_errors.BadRequest("walletAddress is not a valid solana address")
	}
	return s.graph.FindProfiles(ctx, wallet)
}

func (s *Social) GetProfile(ctx context.Context, username domain.Username) (json.RawMessage, error) {
	if username == "" {
		return nil, internal_errors.BadRequest("username is required")
	}
	return s.graph.GetProfile(ctx, username)
}

// CreateProfile finds or creates the profile of the calling wallet. A wallet
// can only register itself.
func (s *Social) CreateProfile(ctx context.Context, caller domain.Identity, req api.CreateProfileRequest) (json.RawMessage, error) {
	if !caller.Owns(req.WalletAddress) {
		return nil, internal_errors.Forbidden("wallet does not belong to the caller")
	}
	raw, err := s.graph.FindOrCreateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("profile ensured", "component", "social", "username", req.Username)
	return raw, nil
}

func (s *Social) UpdateProfile(ctx context.Context, caller domain.Identity, username domain.Username, req api.UpdateProfileRequest) (json.RawMessage, error) {
	if err := s.requireProfile(ctx, caller, username); err != nil {
		return nil, err
	}
	return s.graph.UpdateProfile(ctx, username, req)
}

func (s *Social) Followers(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error) {
	if username == "" {
		return nil, internal_errors.BadRequest("username is required")
	}
	return s.graph.Followers(ctx, username, page.Normalize())
}

func (s *Social) Following(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error) {
	if username == "" {
		return nil, internal_errors.BadRequest("username is required")
	}
	return s.graph.Following(ctx, username, page.Normalize())
}

func (s *Social) FollowState(ctx context.Context, startId, endId domain.ProfileId) (json.RawMessage, error) {
	if startId == "" || endId == "" {
		return nil, internal_errors.BadRequest("startId and endId are required")
	}
	return s.graph.FollowState(ctx, startId, endId)
}

func (s *Social) Follow(ctx context.Context, caller domain.Identity, req api.FollowRequest) (json.RawMessage, error) {
	if err := s.requireProfile(ctx, caller, req.StartId); err != nil {
		return nil, err
	}
	return s.graph.Follow(ctx, req)
}

func (s *Social) Unfollow(ctx context.Context, caller domain.Identity, req api.FollowRequest) (json.RawMessage, error) {
	if err := s.requireProfile(ctx, caller, req.StartId); err != nil {
		return nil, err
	}
	return s.graph.Unfollow(ctx, req)
}

// Comments lists comments and attaches the rendered HTML of each one.
func (s *Social) Comments(ctx context.Context, q upstream.CommentsQuery) (api.CommentsResponse, error) {
	if q.ContentId == "" && q.TargetProfileId == "" {
		return api.CommentsResponse{}, internal_errors.BadRequest("contentId or targetProfileId is required")
	}
	q.Page = q.Page.Normalize()
	res, err := s.graph.Comments(ctx, q)
	if err != nil {
		return res, err
	}
	for i := range res.Comments {
		res.Comments[i].Comment.TextHtml = s.text.Render(res.Comments[i].Comment.Text)
	}
	return res, nil
}

func (s *Social) CreateComment(ctx context.Context, caller domain.Identity, req api.CreateCommentRequest) (json.RawMessage, error) {
	if err := s.requireProfile(ctx, caller, req.ProfileId); err != nil {
		return nil, err
	}
	text, err := s.text.CleanInput(req.Text)
	if err != nil {
		return nil, err
	}
	req.Text = text
	return s.graph.CreateComment(ctx, req)
}

func (s *Social) Like(ctx context.Context, caller domain.Identity, nodeId string, req api.LikeRequest) (json.RawMessage, error) {
	if err := s.requireProfile(ctx, caller, req.StartId); err != nil {
		return nil, err
	}
	if nodeId == "" {
		return nil, internal_errors.BadRequest("id is required")
	}
	return s.graph.Like(ctx, nodeId, req)
}

func (s *Social) Unlike(ctx context.Context, caller domain.Identity, nodeId string, req api.LikeRequest) (json.RawMessage, error) {
	if err := s.requireProfile(ctx, caller, req.StartId); err != nil {
		return nil, err
	}
	if nodeId == "" {
		return nil, internal_errors.BadRequest("id is required")
	}
	return s.graph.Unlike(ctx, nodeId, req)
}

func (s *Social) ActivityFeed(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error) {
	if username == "" {
		return nil, internal_errors.BadRequest("username is required")
	}
	return s.graph.ActivityFeed(ctx, username, page.Normalize())
}

func (s *Social) GlobalActivity(ctx context.Context, page domain.Page) (json.RawMessage, error) {
	return s.graph.GlobalActivity(ctx, page.Normalize())
}

func (s *Social) Leaderboard(ctx context.Context) (json.RawMessage, error) {
	return s.graph.Leaderboard(ctx)
}

// requireProfile checks that the caller acts as their own profile. Tokens
// issued before the profile existed carry no profile id, in that case the
// profile owner is looked up.
func (s *Social) requireProfile(ctx context.Context, caller domain.Identity, profileId domain.ProfileId) error {
	if profileId == "" {
		return internal_errors.BadRequest("profile id is required")
	}
	if caller.ProfileId != "" {
		if caller.ProfileId != profileId {
			return internal_errors.Forbidden("profile does not belong to the caller")
		}
		return nil
	}

	raw, err := s.graph.GetProfile(ctx, profileId)
	if err != nil {
		return err
	}
	var profile api.ProfileEnvelope
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("cannot decode profile %s: %w", profileId, err)
	}
	if !caller.Owns(profile.Owner()) {
		return internal_errors.Forbidden("profile does not belong to the caller")
	}
	return nil
}
