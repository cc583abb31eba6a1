package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	"github.com/oksasatya/buytoro/pkg/helpers"
	"github.com/oksasatya/buytoro/pkg/response"
)

// Context keys set by Protect.
const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

const bearerPrefix = "bearer "

// Protect resolves the bearer token to a stored user. The user, without its
// password hash, is put in the Gin context under CtxUserKey and its id
// under CtxUserIDKey.
func Protect(users repo.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, "not authorized, no token", nil)
			return
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" || jwt == nil {
			response.Abort(c, http.StatusUnauthorized, "not authorized, no token", nil)
			return
		}

		claims, err := jwt.VerifyToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "not authorized, token failed", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "not authorized, token failed", nil)
			return
		}
		if u.IsBlocked {
			response.Abort(c, http.StatusForbidden, "account is blocked", nil)
			return
		}

		c.Set(CtxUserKey, u.Sanitized())
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin {
			response.Abort(c, http.StatusUnauthorized, "not authorized as admin", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Protect, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

// Actor describes the current user for order rules.
func Actor(c *gin.Context) entity.Actor {
	u := CurrentUser(c)
	if u == nil {
		return entity.Actor{}
	}
	return entity.Actor{UserID: u.ID, IsAdmin: u.IsAdmin}
}
