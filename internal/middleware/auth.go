package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tasklist/api/internal/config"
	"tasklist/api/internal/security"
)

// Header names are part of the wire contract.
const (
	HeaderAccessToken  = "x-access-token"
	HeaderRefreshToken = "x-refresh-token"
	HeaderUserID       = "_id"
)

// Gin context keys set by the gates.
const (
	ContextUserID       = "user_id"
	ContextCurrentUser  = "current_user"
	ContextRefreshToken = "refresh_token"
)

// Authenticate gates resource routes on a signed access token. The check is
// stateless: no database access happens here, only signature and expiry
// verification. The status is a uniform 401; the body names the failure.
func Authenticate(cfg *config.AppConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderAccessToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": security.ErrTokenMalformed.Error()})
			return
		}

		userID, err := security.ParseAccessToken(token, cfg.Security.JWTSecret)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				log.Debug().Str("path", c.Request.URL.Path).Msg("expired access token")
			case errors.Is(err, security.ErrTokenSignature):
				log.Warn().Str("path", c.Request.URL.Path).Str("client_ip", c.ClientIP()).Msg("access token signature mismatch")
			default:
				log.Warn().Str("path", c.Request.URL.Path).Str("client_ip", c.ClientIP()).Msg("malformed access token")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
