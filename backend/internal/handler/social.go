package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/utils"
)

func (h *Handler) FindProfiles(w http.ResponseWriter, r *http.Request) {
	raw, err := h.social.FindProfiles(r.Context(), r.URL.Query().Get("walletAddress"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	raw, err := h.social.GetProfile(r.Context(), chi.URLParam(r, "username"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.CreateProfileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.CreateProfile(r.Context(), caller, body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.UpdateProfileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.UpdateProfile(r.Context(), caller, chi.URLParam(r, "username"), body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	raw, err := h.social.Followers(r.Context(), chi.URLParam(r, "username"), page)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	raw, err := h.social.Following(r.Context(), chi.URLParam(r, "username"), page)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) FollowState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw, err := h.social.FollowState(r.Context(), q.Get("startId"), q.Get("endId"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.FollowRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.Follow(r.Context(), caller, body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.FollowRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.Unfollow(r.Context(), caller, body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Comments(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	q := r.URL.Query()
	res, err := h.social.Comments(r.Context(), upstream.CommentsQuery{
		ContentId:           q.Get("contentId"),
		TargetProfileId:     q.Get("targetProfileId"),
		RequestingProfileId: q.Get("requestingProfileId"),
		Page:                page,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.CreateCommentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.CreateComment(r.Context(), caller, body)
	writeRaw(w, raw, err, nil)
}

// Like serves both /comments/{id}/like and /contents/{id}/like, Tapestry
// keys likes by node id either way.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.LikeRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.Like(r.Context(), caller, chi.URLParam(r, "id"), body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var body api.LikeRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.social.Unlike(r.Context(), caller, chi.URLParam(r, "id"), body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) ActivityFeed(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	raw, err := h.social.ActivityFeed(r.Context(), r.URL.Query().Get("username"), page)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) GlobalActivity(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	raw, err := h.social.GlobalActivity(r.Context(), page)
	writeRaw(w, raw, err, &globalActivityCache)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	raw, err := h.social.Leaderboard(r.Context())
	writeRaw(w, raw, err, &leaderboardCache)
}
