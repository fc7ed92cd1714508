package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farmerp/backend/internal/infrastructure/auth"
	"github.com/farmerp/backend/internal/infrastructure/logger"
	"github.com/farmerp/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys written by JWTAuth. FirmIDKey matches the key the request
// logger reads.
const (
	JWTClaimsKey = "jwt_claims"
	FirmIDKey    = "firm_id"
	UserIDKey    = "user_id"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Verifier         TokenVerifier
	SkipPaths        []string
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuth requires a valid bearer token and stores its firm and user on the
// gin and request contexts.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			rejectToken(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			rejectToken(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			rejectToken(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			rejectToken(c, log, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(FirmIDKey, claims.FirmID)
		c.Set(UserIDKey, claims.UserID)

		ctx := logger.WithFirmID(c.Request.Context(), claims.FirmID)
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func rejectToken(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason),
		zap.Error(err),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingFirmID), errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, reason
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetFirmID returns the authenticated firm
func GetFirmID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, FirmIDKey)
}

// GetUserID returns the authenticated user
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, UserIDKey)
}

func uuidFromContext(c *gin.Context, key string) (uuid.UUID, bool) {
	raw := c.GetString(key)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
