package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/petcare-reservation/models"
	"github.com/yeremiapane/petcare-reservation/repositories"
	"github.com/yeremiapane/petcare-reservation/utils"
)

// UserResolver loads the caller named by a token.
type UserResolver interface {
	FindActiveUser(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware requires a bearer token signed with secret whose user still exists and is active.
// The token may also come from the token query parameter.
func AuthMiddleware(secret []byte, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// browsers cannot set headers on websocket upgrades
			if token := c.Query("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}

		user, err := users.FindActiveUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("user not found or inactive"))
			} else {
				utils.ErrorLogger.WithError(err).Error("failed to resolve authenticated user")
				utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
			}
			c.Abort()
			return
		}

		c.Set("userID", user.ID)
		c.Set("role", user.Role)
		c.Next()
	}
}
