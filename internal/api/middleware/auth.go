package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/pkg/jwt"
	"ourcodingkiddos/backend/pkg/response"
)

// Context keys set by SessionAuth and OptionalAuth
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// Cookie names shared with the auth handler
const (
	SessionCookie = "session"
	RefreshCookie = "refresh_token"
)

// Blacklist revoked token ids and per-user revocation cutoffs. A nil Blacklist skips
// the check.
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	UserTokensRevokedAt(ctx context.Context, userID string) (time.Time, error)
}

// SessionAuth requires a valid access token from the Authorization header or the
// session cookie.
func SessionAuth(jwtMgr *jwt.Manager, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractToken(c)
		if raw == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "authentication required")
			c.Abort()
			return
		}

		claims, ok := verifyAccessToken(c, jwtMgr, blacklist, raw)
		if !ok {
			response.Unauthorized(c, response.CodeUnauthorized, "session is invalid or has expired")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth annotates the context when a valid session is present and never rejects
func OptionalAuth(jwtMgr *jwt.Manager, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := ExtractToken(c); raw != "" {
			if claims, ok := verifyAccessToken(c, jwtMgr, blacklist, raw); ok {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RoleAuth allows only the listed roles; must run after SessionAuth
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "authentication required")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "you do not have access to this resource")
		c.Abort()
	}
}

// ExtractToken bearer header first, then the session cookie
func ExtractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func verifyAccessToken(c *gin.Context, jwtMgr *jwt.Manager, blacklist Blacklist, raw string) (*jwt.Claims, bool) {
	claims, err := jwtMgr.ParseToken(raw)
	if err != nil || claims.TokenType != jwt.TypeAccess {
		return nil, false
	}

	// Redis errors fail open, the token signature is still checked
	if blacklist != nil && claims.ID != "" {
		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err == nil && revoked {
			return nil, false
		}
	}
	// iat has second precision, so a token minted in the revocation second is rejected too
	if blacklist != nil && claims.IssuedAt != nil {
		cutoff, err := blacklist.UserTokensRevokedAt(c.Request.Context(), claims.UserID)
		if err == nil && !cutoff.IsZero() && !claims.IssuedAt.Time.After(cutoff) {
			return nil, false
		}
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxTokenJTI, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExp, claims.ExpiresAt.Time)
	} else {
		c.Set(CtxTokenExp, time.Time{})
	}
}
