package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	"github.com/oksasatya/karaoke-social-api/pkg/response"
)

// Auth validates the access token. When Redis is configured the token must
// also belong to the active session, which lets logout and refresh revoke
// older tokens. It sets userID, userName and userEmail in the Gin context and
// marks the user as online.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := accessClaims(c, jwt)
		if errors.Is(err, errMissingToken) {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		if rdb == nil {
			c.Set(CtxUserIDKey, claims.UserID)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		data, err := rdb.HGetAll(ctx, helpers.KeySession(claims.UserID)).Result()
		if err != nil || len(data) == 0 {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			return
		}
		if sid := data["sid"]; sid != "" && sid != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session expired", nil)
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserNameKey, data["name"])
		c.Set(CtxUserEmailKey, data["email"])
		_ = helpers.RedisTouchPresence(ctx, rdb, claims.UserID, time.Now())
		c.Next()
	}
}

// RoleChecker answers whether a user holds a role. The user repository
// satisfies it.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// RequireRole lets the request through only when the authenticated user holds
// role. It must run after Auth.
func RequireRole(roles RoleChecker, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		ok, err := roles.HasRole(c.Request.Context(), uid, role)
		if err != nil {
			response.Error[any](c, http.StatusInternalServerError, "role lookup failed", nil)
			return
		}
		if !ok {
			response.Error[any](c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}
