package middleware

import (
	"context"
	"strings"

	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling tags profile samples taken while a request is handled with its
// method, route, endpoint and firm. Skipped prefixes are served untagged.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := map[string]string{telemetry.ProfilingLabelMethod: c.Request.Method}
	if route := c.FullPath(); route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
		if endpoint := endpointOf(route); endpoint != "" {
			labels[telemetry.ProfilingLabelEndpoint] = endpoint
		}
	}
	if firmID := c.GetString(FirmIDKey); firmID != "" {
		labels[telemetry.ProfilingLabelFirmID] = firmID
	}
	return labels
}

// endpointOf returns the resource segment of an /api/v1/{context}/{resource}
// route, e.g. "purchase-orders".
func endpointOf(route string) string {
	var parts []string
	for _, p := range strings.Split(route, "/") {
		if p == "" || p == "api" || strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") || isVersionSegment(p) {
			continue
		}
		parts = append(parts, p)
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[1]
	}
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
