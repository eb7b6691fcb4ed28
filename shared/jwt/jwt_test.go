package jwt

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
)

const wallet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestRoundTrip(t *testing.T) {
	svc := New("secret", time.Hour, "")
	token, err := svc.NewToken(domain.Identity{Wallet: wallet, ProfileId: "alice"})
	require.NoError(t, err)

	identity, err := svc.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, identity.Wallet)
	assert.Equal(t, "alice", identity.ProfileId)
}

func TestNewToken_InvalidWallet(t *testing.T) {
	svc := New("secret", time.Hour, "")
	_, err := svc.NewToken(domain.Identity{Wallet: "nope"})
	assert.Error(t, err)
}

func TestDecodeToken_Rejects(t *testing.T) {
	svc := New("secret", time.Hour, "env-1")
	valid, err := svc.NewToken(domain.Identity{Wallet: wallet})
	require.NoError(t, err)

	expired := New("secret", time.Hour, "env-1")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.NewToken(domain.Identity{Wallet: wallet})
	require.NoError(t, err)

	otherAudience, err := New("secret", time.Hour, "env-2").NewToken(domain.Identity{Wallet: wallet})
	require.NoError(t, err)

	otherKey, err := New("other", time.Hour, "env-1").NewToken(domain.Identity{Wallet: wallet})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   wallet,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.DecodeToken(valid)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expiredToken},
		{"wrong audience", otherAudience},
		{"wrong key", otherKey},
		{"alg none", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DecodeToken(tt.token)
			var e *internal_errors.ErrorWithStatusCode
			require.True(t, errors.As(err, &e))
			assert.Equal(t, http.StatusUnauthorized, e.StatusCode)
		})
	}
}
