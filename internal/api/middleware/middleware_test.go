package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type setBlacklist map[string]bool

func (b setBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return b[jti], nil
}

func (setBlacklist) UserTokensRevokedAt(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}

// userCutoffs per-user revocation times
type userCutoffs map[string]time.Time

func (userCutoffs) IsBlacklisted(context.Context, string) (bool, error) {
	return false, nil
}

func (u userCutoffs) UserTokensRevokedAt(_ context.Context, userID string) (time.Time, error) {
	return u[userID], nil
}

type brokenBlacklist struct{}

func (brokenBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenBlacklist) UserTokensRevokedAt(context.Context, string) (time.Time, error) {
	return time.Time{}, errors.New("redis down")
}

func testManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "middleware-test-secret-0123456789",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  time.Hour,
		RefreshTokenTTLRemember: 24 * time.Hour,
	})
}

func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserID), "role": c.GetString(CtxRole)})
}

func TestSessionAuth(t *testing.T) {
	mgr := testManager()
	access, err := mgr.GenerateAccessToken("u1", "parent")
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken("u1", "parent", false)
	require.NoError(t, err)
	claims, err := mgr.ParseToken(access)
	require.NoError(t, err)

	tests := []struct {
		name      string
		blacklist Blacklist
		prepare   func(r *http.Request)
		want      int
	}{
		{"bearer header", nil, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, http.StatusOK},
		{"session cookie", nil, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: access}) }, http.StatusOK},
		{"missing", nil, func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", nil, func(r *http.Request) { r.Header.Set("Authorization", "Token "+access) }, http.StatusUnauthorized},
		{"refresh token", nil, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+refresh) }, http.StatusUnauthorized},
		{"blacklisted", setBlacklist{claims.ID: true}, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, http.StatusUnauthorized},
		{"blacklist error fails open", brokenBlacklist{}, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, http.StatusOK},
		{"user revoked after issue", userCutoffs{"u1": time.Now()}, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, http.StatusUnauthorized},
		{"user revoked before issue", userCutoffs{"u1": time.Now().Add(-time.Minute)}, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, http.StatusOK},
		{"other user revoked", userCutoffs{"u9": time.Now()}, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", SessionAuth(mgr, tt.blacklist), whoami)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.prepare(req)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	mgr := testManager()
	access, err := mgr.GenerateAccessToken("u2", "student")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/blog", OptionalAuth(mgr, nil), whoami)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blog", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/blog", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "a bad token on a public route is ignored")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/blog", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
}

func TestRoleAuth(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				c.Set(CtxRole, role)
			}
			c.Next()
		}
	}

	for role, want := range map[string]int{
		"admin":   http.StatusOK,
		"parent":  http.StatusForbidden,
		"":        http.StatusUnauthorized,
		"student": http.StatusForbidden,
	} {
		r := gin.New()
		r.GET("/admin", withRole(role), RoleAuth("admin", "instructor"), whoami)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, want, w.Code, "role %q", role)
	}
}

func TestRateLimit_FourthContactRejected(t *testing.T) {
	limiter := NewLimiter(nil, 3, time.Minute)
	r := gin.New()
	r.POST("/contact", RateLimit("contact", limiter, "too many messages", zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func(ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = ip + ":5000"
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, send("203.0.113.7").Code)
	}
	w := send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too many messages")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, send("198.51.100.1").Code, "other clients keep their own budget")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/echo", BodyLimit(16), func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(true))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 100))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestLogger_RouteTemplateAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/courses/:slug", func(c *gin.Context) {
		c.Set(CtxUserID, "u-1")
		c.Set(CtxRole, "parent")
		c.Status(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/courses/python-game-lab", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "health probe", entries[0].Message)

	fields := entries[1].ContextMap()
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "/api/courses/:slug", fields["route"])
	assert.Equal(t, "/api/courses/python-game-lab", fields["path"])
	assert.Equal(t, "parent", fields["role"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, "unmatched", entries[2].ContextMap()["route"])
}
