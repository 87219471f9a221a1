package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tasklist/api/internal/repository"
	"tasklist/api/internal/service"
)

const (
	msgUserNotFound   = "User not found. Make sure that the refresh token and user id are correct"
	msgSessionInvalid = "Refresh token has expired or the session is invalid"
)

// VerifySession gates refresh-token-consuming routes. It requires both the
// refresh token and the user id headers, resolves the user, and scans their
// session set for a matching, non-expired entry. This is the only path that
// re-mints an access token without a password.
func VerifySession(auth *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken := c.GetHeader(HeaderRefreshToken)
		userID := c.GetHeader(HeaderUserID)
		if refreshToken == "" || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUserNotFound})
			return
		}

		user, _, err := auth.ResolveSession(c.Request.Context(), userID, refreshToken)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUserNotFound})
			case errors.Is(err, service.ErrSessionInvalid):
				log.Debug().Str("user_id", userID).Msg("refresh rejected")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgSessionInvalid})
			case errors.Is(err, repository.ErrStoreUnavailable):
				log.Error().Err(err).Msg("session lookup failed")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			default:
				log.Error().Err(err).Msg("session verification failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextCurrentUser, user)
		c.Set(ContextRefreshToken, refreshToken)

		c.Next()
	}
}
