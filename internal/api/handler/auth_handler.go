package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/api/middleware"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// AuthHandler sign-up, login and session cookies
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.AuthConfig
}

// NewAuthHandler creates an AuthHandler. A nil cfg uses insecure cookie defaults (tests).
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	if cfg == nil {
		cfg = &config.AuthConfig{
			AccessTokenTTL:          time.Hour,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
		}
	}
	return &AuthHandler{authSvc: authSvc, cfg: cfg}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	response.Created(c, result)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	response.OK(c, result)
}

// Refresh POST /api/auth/refresh. The refresh token comes from the cookie or the body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshCookie)
	if token == "" {
		var req dto.RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		response.BadRequest(c, response.CodeValidation, "refresh_token is required")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrUserInactive) || errors.Is(err, service.ErrUserNotFound) {
			h.clearSessionCookies(c)
		}
		h.handleAuthError(c, err)
		return
	}

	h.setSessionCookies(c, result)
	response.OK(c, result)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	access := middleware.ExtractToken(c)
	refresh, _ := c.Cookie(middleware.RefreshCookie)

	if err := h.authSvc.Logout(c.Request.Context(), access, refresh); err != nil {
		response.InternalError(c)
		return
	}

	h.clearSessionCookies(c)
	response.OK(c, nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), caller)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, me)
}

// ChangePassword PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── cookies ──

func (h *AuthHandler) setSessionCookies(c *gin.Context, t *dto.TokenResponse) {
	refreshTTL := h.cfg.RefreshTokenTTLDefault
	if t.RememberMe {
		refreshTTL = h.cfg.RefreshTokenTTLRemember
	}
	h.setCookie(c, middleware.SessionCookie, t.AccessToken, "/", int(h.cfg.AccessTokenTTL.Seconds()))
	if t.RefreshToken != "" {
		h.setCookie(c, middleware.RefreshCookie, t.RefreshToken, "/api/auth", int(refreshTTL.Seconds()))
	}
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookie, "", "/", -1)
	h.setCookie(c, middleware.RefreshCookie, "", "/api/auth", -1)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value, path string, maxAge int) {
	c.SetSameSite(sameSite(h.cfg.Cookie.SameSite))
	c.SetCookie(name, value, maxAge, path, h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, err.Error())
	case errors.Is(err, service.ErrUserInactive):
		response.Forbidden(c, 11002, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, 11003, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11004, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11005, err.Error())
	case errors.Is(err, service.ErrSamePassword):
		response.BadRequest(c, 11006, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
