// Package auth verifies the bearer tokens issued by the identity service.
// Tokens only establish which firm and user a request acts for; permission
// policy is enforced upstream.
package auth

import (
	"errors"
	"time"

	"github.com/farmerp/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingFirmID    = errors.New("missing firm_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the claims this service reads from an access token
type Claims struct {
	jwt.RegisteredClaims
	FirmID string `json:"firm_id"`
	UserID string `json:"user_id"`
}

// FirmUUID parses the firm claim
func (c *Claims) FirmUUID() (uuid.UUID, error) {
	return uuid.Parse(c.FirmID)
}

// UserUUID parses the user claim
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// TokenVerifier validates HS256 access tokens
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier from the jwt config section
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Verify parses tokenString and returns its claims. Both firm_id and user_id
// must be present and be valid UUIDs.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.FirmID == "" {
		return nil, ErrMissingFirmID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := claims.FirmUUID(); err != nil {
		return nil, ErrInvalidClaims
	}
	if _, err := claims.UserUUID(); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Issue signs a token for firmID and userID valid for ttl. The service never
// issues tokens in production; this backs local tooling and tests.
func (v *TokenVerifier) Issue(firmID, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    v.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		FirmID: firmID.String(),
		UserID: userID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
