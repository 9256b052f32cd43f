package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/api/handler"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/jwt"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MaxBodyBytes: 1 << 20,
			CORS:         config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		},
		Auth: config.AuthConfig{
			JWTSecret:               "router-test-secret",
			AccessTokenTTL:          time.Hour,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 720 * time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			ContactLimit: 3, ContactWindow: time.Minute,
			AuthLimit: 10, AuthWindow: time.Minute,
		},
	}
}

func TestSetup_RoutesAndGuards(t *testing.T) {
	cfg := testConfig()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	h := handler.NewHandler(&service.Service{}, cfg)

	var engine http.Handler
	require.NotPanics(t, func() {
		engine = Setup(cfg, h, jwtMgr, nil, nil, zap.NewNop())
	})

	studentToken, err := jwtMgr.GenerateAccessToken("u-student", "student")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"me needs a session", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{"admin needs a session", http.MethodGet, "/api/admin/users", "", http.StatusUnauthorized},
		{"admin rejects students", http.MethodGet, "/api/admin/users", studentToken, http.StatusForbidden},
		{"manage rejects students", http.MethodPost, "/api/manage/courses", studentToken, http.StatusForbidden},
		{"parent area rejects students", http.MethodGet, "/api/parent/children", studentToken, http.StatusForbidden},
		{"checkout rejects students", http.MethodPost, "/api/payments/checkout", studentToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func postContact(engine http.Handler, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.7:40000"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestSetup_ContactLimitIgnoresUntrustedForwardedFor(t *testing.T) {
	cfg := testConfig()
	engine := Setup(cfg, handler.NewHandler(&service.Service{}, cfg), jwt.NewManager(&cfg.Auth), nil, nil, zap.NewNop())

	var codes []int
	for i := 0; i < 6; i++ {
		codes = append(codes, postContact(engine, fmt.Sprintf("203.0.113.%d", i+1)))
	}
	// the invalid body is rejected until the per-IP limit kicks in on the 4th request
	assert.Equal(t, []int{
		http.StatusBadRequest, http.StatusBadRequest, http.StatusBadRequest,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestSetup_ContactLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"198.51.100.0/24"}
	engine := Setup(cfg, handler.NewHandler(&service.Service{}, cfg), jwt.NewManager(&cfg.Auth), nil, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusBadRequest, postContact(engine, "203.0.113.50"))
	}
	assert.Equal(t, http.StatusTooManyRequests, postContact(engine, "203.0.113.50"))
	// a different client behind the same proxy has its own budget
	assert.Equal(t, http.StatusBadRequest, postContact(engine, "203.0.113.51"))
}
