package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/solexplorer/solexplorer/shared/domain"
	"github.com/solexplorer/solexplorer/shared/errors"
	mw "github.com/solexplorer/solexplorer/shared/middleware"
	"github.com/solexplorer/solexplorer/shared/utils"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("invalid %s: must be an integer", paramName))
	}
	return val, nil
}

// queryInt reads an optional integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return parseIntParam(v, name)
}

// parsePage reads page and pageSize. Missing values are filled in by the service.
func parsePage(r *http.Request) (domain.Page, error) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(r, "pageSize", 0)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Page: page, PageSize: size}, nil
}

// requireIdentity returns the caller set by the auth middleware.
func requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := mw.GetIdentityFromContext(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Please connect your wallet")
	}
	return identity, ok
}

// writeRaw forwards an upstream payload, optionally with a cache policy.
func writeRaw(w http.ResponseWriter, raw json.RawMessage, err error, policy *utils.CachePolicy) {
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if policy != nil {
		utils.SetCacheControl(w, *policy)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	w.Write(raw)
}
