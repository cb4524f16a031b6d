package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BlocksBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	l := &rateLimiter{
		rps:     1,
		burst:   1,
		clients: make(map[string]*clientBucket),
		now:     func() time.Time { return now },
	}

	c1, _ := gin.CreateTestContext(httptest.NewRecorder())
	c1.Request = httptest.NewRequest(http.MethodPost, "/api/query", nil)
	l.handle(c1)
	require.False(t, c1.IsAborted())

	w := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w)
	c2.Request = httptest.NewRequest(http.MethodPost, "/api/query", nil)
	l.handle(c2)
	require.True(t, c2.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	now = now.Add(time.Second)
	assert.True(t, l.allow(c1.ClientIP()))
}

func TestRateLimiter_KeysByClient(t *testing.T) {
	now := time.Now()
	l := &rateLimiter{
		rps:     1,
		burst:   1,
		clients: make(map[string]*clientBucket),
		now:     func() time.Time { return now },
	}

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
	assert.False(t, l.allow("10.0.0.1"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Now()
	l := &rateLimiter{
		rps:     1,
		burst:   1,
		clients: make(map[string]*clientBucket),
		now:     func() time.Time { return now },
	}
	l.allow("idle")
	now = now.Add(idleClientTTL)
	l.allow("fresh")

	assert.NotContains(t, l.clients, "idle")
	assert.Contains(t, l.clients, "fresh")
}

func TestRateLimit_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestNewRouter_HealthIsNotRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{Query: &mockQuery{}, Schema: &mockSchema{}}, Options{RateLimit: 1})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRouter_MountsMCP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r := NewRouter(Deps{Query: &mockQuery{}, Schema: &mockSchema{}, MCP: mcp}, Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
