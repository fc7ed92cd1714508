package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmerp/backend/internal/infrastructure/auth"
	"github.com/farmerp/backend/internal/infrastructure/config"
	"github.com/farmerp/backend/internal/infrastructure/logger"
	"github.com/farmerp/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuth(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: "middleware-test-secret", Issuer: "farmerp"})
	firmID, userID := uuid.New(), uuid.New()

	r := gin.New()
	r.Use(JWTAuth(JWTConfig{
		Verifier:         verifier,
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/swagger/"},
	}))
	handler := func(c *gin.Context) {
		firm, ok := GetFirmID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		user, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"firm":     firm.String(),
			"user":     user.String(),
			"ctx_firm": logger.GetFirmID(c.Request.Context()),
		})
	}
	r.GET("/api/v1/orders", handler)
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })

	valid, err := verifier.Issue(firmID, userID, time.Hour)
	require.NoError(t, err)
	expired, err := verifier.Issue(firmID, userID, -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.NewTokenVerifier(config.JWTConfig{Secret: "other", Issuer: "farmerp"}).
		Issue(firmID, userID, time.Hour)
	require.NoError(t, err)

	rejections := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"wrong scheme", "Basic abc", dto.ErrCodeTokenInvalid},
		{"empty bearer", "Bearer ", dto.ErrCodeTokenInvalid},
		{"expired", "Bearer " + expired, dto.ErrCodeTokenExpired},
		{"wrong key", "Bearer " + foreign, dto.ErrCodeTokenInvalid},
	}
	for _, tc := range rejections {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			if tc.header != "" {
				req.Header.Set(AuthHeaderKey, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.code, decodeEnvelope(t, w).Error.Code)
		})
	}

	t.Run("valid token exposes firm and user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set(AuthHeaderKey, "Bearer "+valid)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"firm":"`+firmID.String()+`","user":"`+userID.String()+`","ctx_firm":"`+firmID.String()+`"}`,
			w.Body.String())
	})

	t.Run("skipped paths need no token", func(t *testing.T) {
		for _, path := range []string{"/health", "/swagger/index.html"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})
}

func TestGetFirmID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetFirmID(c)
	assert.False(t, ok)

	c.Set(FirmIDKey, "not-a-uuid")
	_, ok = GetFirmID(c)
	assert.False(t, ok)
}
