package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/solexplorer/solexplorer/shared/domain"
	jwt_internal "github.com/solexplorer/solexplorer/shared/jwt"
	"github.com/solexplorer/solexplorer/shared/logger"
	"github.com/solexplorer/solexplorer/shared/utils"
)

type key int

const identityKey key = 0

const accessTokenCookie = "accessToken"

var errNoToken = errors.New("no token")

// TokenDecoder verifies a session token and returns its owner.
type TokenDecoder interface {
	DecodeToken(jwtStr string) (domain.Identity, error)
}

var _ TokenDecoder = (*jwt_internal.Jwt)(nil)

type Auth struct {
	tokens TokenDecoder
}

func NewAuth(tokens TokenDecoder) *Auth {
	return &Auth{tokens: tokens}
}

// NeedAuth rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := a.extractIdentity(r)
			if errors.Is(err, errNoToken) {
				utils.WriteError(w, http.StatusUnauthorized, "Please connect your wallet")
				return
			}
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth populates the identity when a valid token is present and
// lets anonymous requests through.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := a.extractIdentity(r)
			if err == nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			} else if !errors.Is(err, errNoToken) {
				logger.Log.Debug("ignoring invalid token on optional auth route", "path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractIdentity(r *http.Request) (domain.Identity, error) {
	var tokenString string
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = strings.TrimSpace(token)
	} else if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		return domain.Identity{}, errNoToken
	}
	return a.tokens.DecodeToken(tokenString)
}

func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentityFromContext returns the caller set by the auth middleware.
func GetIdentityFromContext(r *http.Request) (domain.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(domain.Identity)
	return identity, ok
}
