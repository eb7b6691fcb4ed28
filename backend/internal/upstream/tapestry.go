package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
)

// Tapestry is the social graph API: profiles, follows, comments, likes
// and activity. The api key travels as the apiKey query param.
type Tapestry struct {
	c         *fetch.Client
	namespace string
}

func NewTapestry(baseURL, apiKey, namespace string, timeout time.Duration) *Tapestry {
	c := fetch.New(baseURL, timeout)
	c.Query = fetch.Params{"apiKey": apiKey}
	return &Tapestry{c: c, namespace: namespace}
}

const (
	tapestryBlockchain = "SOLANA"
	tapestryExecution  = "FAST_UNCONFIRMED"
)

func pageParams(p domain.Page) fetch.Params {
	p = p.Normalize()
	return fetch.Params{"page": p.Page, "pageSize": p.PageSize}
}

func (t *Tapestry) namespaceParam() any {
	if t.namespace == "" {
		return nil
	}
	return t.namespace
}

func (t *Tapestry) FindProfiles(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return t.c.Get(ctx, "profiles", fetch.Params{
		"walletAddress": wallet,
		"namespace":     t.namespaceParam(),
	})
}

func (t *Tapestry) GetProfile(ctx context.Context, id domain.Username) (json.RawMessage, error) {
	raw, err := t.c.Get(ctx, "profiles/"+url.PathEscape(id), nil)
	return raw, notFoundAs(err, "profile not found")
}

func (t *Tapestry) FindOrCreateProfile(ctx context.Context, req api.CreateProfileRequest) (json.RawMessage, error) {
	body := map[string]any{
		"walletAddress": req.WalletAddress,
		"username":      req.Username,
		"id":            req.Username,
		"blockchain":    tapestryBlockchain,
		"execution":     tapestryExecution,
	}
	if req.Bio != "" {
		body["bio"] = req.Bio
	}
	if req.Image != "" {
		body["image"] = req.Image
	}
	return t.c.Post(ctx, "profiles/findOrCreate", body)
}

func (t *Tapestry) UpdateProfile(ctx context.Context, id domain.Username, req api.UpdateProfileRequest) (json.RawMessage, error) {
	body := map[string]any{"execution": tapestryExecution}
	if req.Username != "" {
		body["username"] = req.Username
	}
	if req.Bio != "" {
		body["bio"] = req.Bio
	}
	if req.Image != "" {
		body["image"] = req.Image
	}
	raw, err := t.c.Do(ctx, fetch.Request{Endpoint: "profiles/" + url.PathEscape(id), Method: http.MethodPut, Body: body})
	return raw, notFoundAs(err, "profile not found")
}

func (t *Tapestry) Followers(ctx context.Context, id domain.Username, page domain.Page) (json.RawMessage, error) {
	raw, err := t.c.Get(ctx, "profiles/"+url.PathEscape(id)+"/followers", pageParams(page))
	return raw, notFoundAs(err, "profile not found")
}

func (t *Tapestry) Following(ctx context.Context, id domain.Username, page domain.Page) (json.RawMessage, error) {
	raw, err := t.c.Get(ctx, "profiles/"+url.PathEscape(id)+"/following", pageParams(page))
	return raw, notFoundAs(err, "profile not found")
}

func (t *Tapestry) FollowState(ctx context.Context, startId, endId domain.ProfileId) (json.RawMessage, error) {
	return t.c.Get(ctx, "followers/state", fetch.Params{"startId": startId, "endId": endId})
}

func (t *Tapestry) Follow(ctx context.Context, req api.FollowRequest) (json.RawMessage, error) {
	return t.c.Post(ctx, "followers/add", map[string]any{
		"startId":   req.StartId,
		"endId":     req.EndId,
		"execution": tapestryExecution,
	})
}

func (t *Tapestry) Unfollow(ctx context.Context, req api.FollowRequest) (json.RawMessage, error) {
	return t.c.Post(ctx, "followers/remove", map[string]any{
		"startId":   req.StartId,
		"endId":     req.EndId,
		"execution": tapestryExecution,
	})
}

// CommentsQuery selects comments by content or by target profile.
type CommentsQuery struct {
	ContentId           string
	TargetProfileId     string
	RequestingProfileId string
	Page                domain.Page
}

func (q CommentsQuery) params() fetch.Params {
	p := pageParams(q.Page)
	optional := map[string]string{
		"contentId":           q.ContentId,
		"targetProfileId":     q.TargetProfileId,
		"requestingProfileId": q.RequestingProfileId,
	}
	for k, v := range optional {
		if v != "" {
			p[k] = v
		}
	}
	return p
}

func (t *Tapestry) Comments(ctx context.Context, q CommentsQuery) (api.CommentsResponse, error) {
	return fetch.DoJSON[api.CommentsResponse](ctx, t.c, fetch.Request{Endpoint: "comments", Query: q.params()})
}

func (t *Tapestry) CreateComment(ctx context.Context, req api.CreateCommentRequest) (json.RawMessage, error) {
	body := map[string]any{
		"profileId": req.ProfileId,
		"text":      req.Text,
		"execution": tapestryExecution,
	}
	if req.ContentId != "" {
		body["contentId"] = req.ContentId
	}
	if req.CommentId != "" {
		body["commentId"] = req.CommentId
	}
	return t.c.Post(ctx, "comments", body)
}

// Like targets either a comment or a content node, Tapestry treats both the same.
func (t *Tapestry) Like(ctx context.Context, nodeId string, req api.LikeRequest) (json.RawMessage, error) {
	return t.c.Post(ctx, "likes/"+url.PathEscape(nodeId), map[string]any{
		"startId":   req.StartId,
		"execution": tapestryExecution,
	})
}

func (t *Tapestry) Unlike(ctx context.Context, nodeId string, req api.LikeRequest) (json.RawMessage, error) {
	return t.c.Do(ctx, fetch.Request{
		Endpoint: "likes/" + url.PathEscape(nodeId),
		Method:   http.MethodDelete,
		Body:     map[string]any{"startId": req.StartId},
	})
}

func (t *Tapestry) ActivityFeed(ctx context.Context, username domain.Username, page domain.Page) (json.RawMessage, error) {
	p := pageParams(page)
	p["username"] = username
	return t.c.Get(ctx, "activity/feed", p)
}

func (t *Tapestry) GlobalActivity(ctx context.Context, page domain.Page) (json.RawMessage, error) {
	return t.c.Get(ctx, "activity/global", pageParams(page))
}

func (t *Tapestry) Leaderboard(ctx context.Context) (json.RawMessage, error) {
	return t.c.Get(ctx, "leaderboard", fetch.Params{"namespace": t.namespaceParam()})
}
