package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solexplorer/solexplorer/backend/internal/upstream"
	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/utils"
)

const defaultListingsLimit = 20

func (h *Handler) TokenOverview(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.TokenOverview(r.Context(), chi.URLParam(r, "mint"))
	writeRaw(w, raw, err, &tokenCache)
}

func (h *Handler) TokenPrice(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.TokenPrice(r.Context(), chi.URLParam(r, "mint"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) NFT(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.NFT(r.Context(), chi.URLParam(r, "mint"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.market.Assets(r.Context(), r.URL.Query().Get("owner"), domain.Page{Page: page, PageSize: limit})
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	q := r.URL.Query()
	raw, err := h.market.Transactions(r.Context(), upstream.TransactionsQuery{
		Address: q.Get("address"),
		Before:  q.Get("before"),
		Type:    q.Get("type"),
		Limit:   limit,
	})
	writeRaw(w, raw, err, nil)
}

func (h *Handler) PriorityFee(w http.ResponseWriter, r *http.Request) {
	var body api.PriorityFeeRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.market.PriorityFee(r.Context(), body)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) PerpsPositions(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.PerpsPositions(r.Context(), r.URL.Query().Get("walletAddress"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) PerpsOrders(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.PerpsOrders(r.Context(), r.URL.Query().Get("walletAddress"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) PerpsTrades(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.PerpsTrades(r.Context(), r.URL.Query().Get("walletAddress"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseUint(q.Get("amount"), 10, 64)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, errors.BadRequest("invalid amount: must be a positive integer"))
		return
	}
	slippage, err := queryInt(r, "slippageBps", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.market.Quote(r.Context(), upstream.QuoteRequest{
		InputMint:   q.Get("inputMint"),
		OutputMint:  q.Get("outputMint"),
		Amount:      amount,
		SlippageBps: slippage,
		SwapMode:    q.Get("swapMode"),
	})
	writeRaw(w, raw, err, nil)
}

func (h *Handler) CollectionStats(w http.ResponseWriter, r *http.Request) {
	raw, err := h.market.CollectionStats(r.Context(), chi.URLParam(r, "symbol"))
	writeRaw(w, raw, err, nil)
}

func (h *Handler) CollectionListings(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultListingsLimit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	raw, err := h.market.CollectionListings(r.Context(), chi.URLParam(r, "symbol"), offset, limit)
	writeRaw(w, raw, err, nil)
}

func (h *Handler) AuctionHouse(w http.ResponseWriter, r *http.Request) {
	info, err := h.market.AuctionHouse(r.Context(), chi.URLParam(r, "mint"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, info)
}

func (h *Handler) SolidScore(w http.ResponseWriter, r *http.Request) {
	raw, err := h.score.Score(r.Context(), chi.URLParam(r, "id"))
	writeRaw(w, raw, err, &solidScoreCache)
}
