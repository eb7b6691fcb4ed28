package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/solexplorer/solexplorer/shared/middleware/ratelimiter"
	"github.com/solexplorer/solexplorer/shared/utils"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getKey func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := getKey(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(key) {
				w.Header().Set("Retry-After", "1")
				utils.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetWalletFromContext keys limits by the authenticated wallet. It needs
// NeedAuth earlier in the chain.
func GetWalletFromContext(r *http.Request) (string, error) {
	identity, ok := GetIdentityFromContext(r)
	if !ok {
		return "", errors.New("can't get wallet from context")
	}
	return "wallet_" + identity.Wallet, nil
}

// GetIP extracts the client IP from RemoteAddr.
// Forwarded headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// WalletOrIP prefers the wallet and falls back to the client IP.
func WalletOrIP(r *http.Request) (string, error) {
	if key, err := GetWalletFromContext(r); err == nil {
		return key, nil
	}
	return GetIP(r)
}
