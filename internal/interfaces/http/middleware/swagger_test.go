package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmerp/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	serve := func(cfg SwaggerConfig, remoteAddr string) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("disabled hides the docs", func(t *testing.T) {
		w := serve(SwaggerConfig{Enabled: false}, "10.0.0.1:1234")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeEnvelope(t, w).Error.Code)
	})

	t.Run("enabled without allow list is open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(SwaggerConfig{Enabled: true}, "203.0.113.5:1234").Code)
	})

	tests := []struct {
		name    string
		allowed []string
		remote  string
		want    int
	}{
		{"single ip match", []string{"10.0.0.1"}, "10.0.0.1:1234", http.StatusOK},
		{"single ip miss", []string{"10.0.0.1"}, "10.0.0.2:1234", http.StatusForbidden},
		{"cidr match", []string{"192.168.0.0/16"}, "192.168.4.20:1234", http.StatusOK},
		{"cidr miss", []string{"192.168.0.0/16"}, "172.16.0.1:1234", http.StatusForbidden},
		{"ipv6 single", []string{"::1"}, "[::1]:1234", http.StatusOK},
		{"garbage entries ignored", []string{"not-an-ip", "10.0.0.0/8"}, "10.1.2.3:1234", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(SwaggerConfig{Enabled: true, AllowedIPs: tc.allowed}, tc.remote)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
