package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	calls := 0
	r := NewRouter(engine, WithAPIMiddleware(func(c *gin.Context) {
		calls++
		c.Next()
	}))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Equal(t, 1, calls, "API middleware only wraps API routes")
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }

	group := NewDomainGroup("items", "/items").
		GET("", ok).
		POST("", ok).
		PUT("/:id", ok).
		DELETE("/:id", ok).
		Handle(http.MethodPatch, "/:id", ok)
	NewRouter(engine).Register(group).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/items"},
		{http.MethodPost, "/api/v1/items"},
		{http.MethodPut, "/api/v1/items/1"},
		{http.MethodDelete, "/api/v1/items/1"},
		{http.MethodPatch, "/api/v1/items/1"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tt.method)
		assert.Equal(t, tt.method, w.Body.String())
	}
}

func TestDomainGroupNested(t *testing.T) {
	engine := gin.New()
	var order []string

	parent := NewDomainGroup("parent", "/parent").Use(func(c *gin.Context) {
		order = append(order, "parent")
		c.Next()
	})
	parent.Group("child", "/child").
		Use(func(c *gin.Context) {
			order = append(order, "child")
			c.Next()
		}).
		GET("/leaf", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "parent", parent.Name())
	assert.Equal(t, "/parent", parent.Prefix())

	NewRouter(engine).Register(parent).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parent/child/leaf", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"parent", "child"}, order)
}
