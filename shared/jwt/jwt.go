package jwt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solexplorer/solexplorer/shared/domain"
	internal_errors "github.com/solexplorer/solexplorer/shared/errors"
	"github.com/solexplorer/solexplorer/shared/logger"
)

type JwtService interface {
	NewToken(identity domain.Identity) (string, error)
	DecodeToken(jwtStr string) (domain.Identity, error)
}

// Claims carried by a session token. The subject is the wallet address.
type Claims struct {
	ProfileId string `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}

type Jwt struct {
	secretKey []byte
	ttl       time.Duration
	audience  string
	now       func() time.Time
}

// New builds an HS256 token service. A non-empty audience is stamped on new
// tokens and required on decoded ones.
func New(secretKey string, ttl time.Duration, audience string) *Jwt {
	return &Jwt{secretKey: []byte(secretKey), ttl: ttl, audience: audience, now: time.Now}
}

func (j *Jwt) NewToken(identity domain.Identity) (string, error) {
	if err := domain.ValidateAddress(identity.Wallet); err != nil {
		return "", err
	}
	now := j.now()
	claims := Claims{
		ProfileId: identity.ProfileId,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Wallet,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", fmt.Errorf("can't create token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(jwtStr, &claims, func(token *jwt.Token) (any, error) {
		return j.secretKey, nil
	}, opts...)
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return domain.Identity{}, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}
	if !token.Valid || !domain.IsAddress(claims.Subject) {
		return domain.Identity{}, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return domain.Identity{Wallet: claims.Subject, ProfileId: claims.ProfileId}, nil
}
