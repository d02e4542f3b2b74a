package middleware

import (
	"errors"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/model"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserFinder loads a live account. Soft-deleted users must come back as
// gorm.ErrRecordNotFound.
type UserFinder interface {
	FindByID(id uint) (*model.User, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

// AuthMiddleware accepts a valid token only while its account still exists,
// so a deleted account cannot keep playing on an old token.
func AuthMiddleware(cfg *config.Config, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if _, err := users.FindByID(claims.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Log.Debug("Token of a deleted account rejected", zap.Uint("user_id", claims.UserID))
				util.Unauthorized(c)
				c.Abort()
				return
			}
			util.LogInternalError(c, err)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !user.IsAdmin {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
