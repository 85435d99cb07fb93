package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_apartment/config"
	"smart_apartment/services"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret-key-for-testing-only", ExpiresIn: time.Hour, Issuer: "smart-apartment"}
}

func newProtectedRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetCurrentUser(c)})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	am := NewAuthMiddleware(testJWTConfig(), true)
	router := newProtectedRouter(am)

	token, expiresAt, err := am.IssueToken("manager")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"valid raw", token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), "manager")
			}
		})
	}
}

func TestRequireAuth_ExpiredAndForeignTokens(t *testing.T) {
	am := NewAuthMiddleware(testJWTConfig(), true)
	am.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := am.IssueToken("manager")
	require.NoError(t, err)
	am.now = time.Now

	otherCfg := testJWTConfig()
	otherCfg.Secret = "another-secret-key-for-testing-only"
	foreign, _, err := NewAuthMiddleware(otherCfg, true).IssueToken("manager")
	require.NoError(t, err)

	router := newProtectedRouter(am)
	for _, token := range []string{expired, foreign} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestRequireAuth_Disabled(t *testing.T) {
	router := newProtectedRouter(NewAuthMiddleware(config.JWTConfig{}, false))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_, _, err := NewAuthMiddleware(config.JWTConfig{}, false).IssueToken("x")
	assert.Error(t, err)
}

func TestRateLimit_WithoutRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIRateLimit(nil, config.SecurityConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := services.NewMetrics()
	r := gin.New()
	r.Use(RequestMetrics(metrics))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	count, err := testutil.GatherAndCount(metrics.Registry(), "smart_apartment_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
