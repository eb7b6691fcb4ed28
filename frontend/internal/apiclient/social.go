package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/fetch"
	"github.com/solexplorer/solexplorer/shared/query"
)

// === Requests ===

func (c *APIClient) ProfileRequest(username domain.Username) query.Request {
	return c.read("profiles/{username}", map[string]string{"username": username}, nil, "username")
}

func (c *APIClient) ProfilesByWalletRequest(wallet domain.WalletAddress) query.Request {
	return c.read("profiles", nil, fetch.Params{"walletAddress": wallet}, "walletAddress")
}

func (c *APIClient) FollowersRequest(username domain.Username, page domain.Page) query.Request {
	return c.read("profiles/{username}/followers", map[string]string{"username": username}, pageParams(page), "username")
}

func (c *APIClient) FollowStateRequest(startId, endId domain.ProfileId) query.Request {
	return c.read("followers/state", nil, fetch.Params{"startId": startId, "endId": endId}, "startId", "endId")
}

func (c *APIClient) CommentsRequest(contentId string, page domain.Page) query.Request {
	params := pageParams(page)
	params["contentId"] = contentId
	return c.read("comments", nil, params, "contentId")
}

func (c *APIClient) ActivityRequest(username domain.Username, page domain.Page) query.Request {
	params := pageParams(page)
	params["username"] = username
	return c.read("activity", nil, params, "username")
}

func (c *APIClient) GlobalActivityRequest(page domain.Page) query.Request {
	return c.read("activity/global", nil, pageParams(page))
}

func (c *APIClient) LeaderboardRequest() query.Request {
	return c.read("leaderboard", nil, nil)
}

// pageParams leaves unset values out of the URL so the backend defaults apply
// and equal pages share a cache key.
func pageParams(p domain.Page) fetch.Params {
	params := fetch.Params{}
	if p.Page > 0 {
		params["page"] = p.Page
	}
	if p.PageSize > 0 {
		params["pageSize"] = p.PageSize
	}
	return params
}

// === Reads ===

func (c *APIClient) GetProfile(ctx context.Context, username domain.Username) (json.RawMessage, error) {
	return fetchAs[json.RawMessage](ctx, c, c.ProfileRequest(username))
}

func (c *APIClient) FindProfiles(ctx context.Context, wallet domain.WalletAddress) (json.RawMessage, error) {
	return fetchAs[json.RawMessage](ctx, c, c.ProfilesByWalletRequest(wallet))
}

func (c *APIClient) GetComments(ctx context.Context, contentId string, page domain.Page) (api.CommentsResponse, error) {
	return fetchAs[api.CommentsResponse](ctx, c, c.CommentsRequest(contentId, page))
}

func (c *APIClient) GetLeaderboard(ctx context.Context) (json.RawMessage, error) {
	return fetchAs[json.RawMessage](ctx, c, c.LeaderboardRequest())
}

// === Subscriptions ===

func (c *APIClient) WatchActivity(ctx context.Context, username domain.Username, page domain.Page, opts ...query.Option) *query.Query[json.RawMessage] {
	return query.Watch[json.RawMessage](ctx, c.queries, c.ActivityRequest(username, page), opts...)
}

func (c *APIClient) WatchGlobalActivity(ctx context.Context, page domain.Page, opts ...query.Option) *query.Query[json.RawMessage] {
	return query.Watch[json.RawMessage](ctx, c.queries, c.GlobalActivityRequest(page), opts...)
}

func (c *APIClient) WatchComments(ctx context.Context, contentId string, opts ...query.Option) *query.Query[api.CommentsResponse] {
	return query.Watch[api.CommentsResponse](ctx, c.queries, c.CommentsRequest(contentId, domain.Page{}), opts...)
}

// === Mutations ===

// CreateComment returns a trigger that posts comments and refreshes the first
// comment page of the content.
func (c *APIClient) CreateComment(contentId string) *query.Mutation[json.RawMessage] {
	return query.NewMutation[json.RawMessage](c.queries, "comments",
		c.writeOptions(query.Invalidates(c.CommentsRequest(contentId, domain.Page{})))...)
}

func (c *APIClient) CreateProfile() *query.Mutation[json.RawMessage] {
	return query.NewMutation[json.RawMessage](c.queries, "profiles", c.writeOptions()...)
}

func (c *APIClient) UpdateProfile(username domain.Username) *query.Mutation[json.RawMessage] {
	return query.NewMutation[json.RawMessage](c.queries, "profiles/"+url.PathEscape(username),
		c.writeOptions(query.WithMethod(http.MethodPut), query.Invalidates(c.ProfileRequest(username)))...)
}

// Follow and Unfollow refresh the follow state between the two profiles.
func (c *APIClient) Follow(startId, endId domain.ProfileId) *query.Mutation[json.RawMessage] {
	return query.NewMutation[json.RawMessage](c.queries, "followers/add",
		c.writeOptions(query.Invalidates(c.FollowStateRequest(startId, endId), c.FollowersRequest(endId, domain.Page{})))...)
}

func (c *APIClient) Unfollow(startId, endId domain.ProfileId) *query.Mutation[json.RawMessage] {
	return query.NewMutation[json.RawMessage](c.queries, "followers/remove",
		c.writeOptions(query.Invalidates(c.FollowStateRequest(startId, endId), c.FollowersRequest(endId, domain.Page{})))...)
}

// LikeContent likes (or with DELETE unlikes) a content node.
func (c *APIClient) LikeContent(contentId string, method string) *query.Mutation[json.RawMessage] {
	return query.NewMutation[json.RawMessage](c.queries, "contents/"+url.PathEscape(contentId)+"/like",
		c.writeOptions(query.WithMethod(method))...)
}
