package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type roles map[string]bool

func (r roles) HasRole(_ context.Context, userID, role string) (bool, error) {
	if userID == "boom" {
		return false, errors.New("db down")
	}
	return r[userID+":"+role], nil
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.Use(RequestIDMiddleware())
	handlers := append(mw, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	e.GET("/", handlers...)
	return e
}

func TestAuth_WithoutRedisTrustsTheToken(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	token, _, err := jwt.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	e := newEngine(Auth(nil, jwt))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: token})
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing access token")

	refresh, _, err := jwt.GenerateRefreshToken("user-1", "sid-1")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	checker := roles{"admin-1:admin": true}
	as := func(uid string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(CtxUserIDKey, uid) }
	}
	cases := []struct {
		uid  string
		want int
	}{
		{"admin-1", http.StatusOK},
		{"user-1", http.StatusForbidden},
		{"", http.StatusUnauthorized},
		{"boom", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := newEngine(as(tc.uid), RequireRole(checker, "admin"))
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tc.want, w.Code, tc.uid)
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	e := newEngine()
	id := "2f1b6c1e-8a55-4d3e-9b59-7f6b1c7d3a10"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, id)
	e.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	e.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRealIPPrefersProxyHeaders(t *testing.T) {
	e := gin.New()
	e.Use(RealIP())
	e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	e.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	e.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.2", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "garbage")
	req.Header.Set("X-Real-IP", "::ffff:192.0.2.10")
	e.ServeHTTP(w, req)
	assert.Equal(t, "192.0.2.10", w.Body.String())
}

func TestRateLimitWithoutRedisIsANoop(t *testing.T) {
	e := newEngine(RateLimit(nil, 1, time.Minute, KeyByIP(), AllowPrivateIP()))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 0, remaining(5, 7))
	assert.Equal(t, 2, remaining(5, 3))
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	cases := map[string]bool{
		"10.0.0.4":        true,
		"127.0.0.1":       true,
		"fd00::1":         true,
		"::ffff:10.0.0.1": true,
		"203.0.113.7":     false,
		"":                false,
	}
	for ip, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "198.51.100.1:1234"
		if ip != "" {
			c.Set(CtxRealIPKey, ip)
		}
		assert.Equal(t, want, allow(c), ip)
	}
}
