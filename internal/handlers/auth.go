package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasklist/api/internal/middleware"
	"tasklist/api/internal/models"
	"tasklist/api/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse is the only user shape that ever leaves the server; the
// password hash has no field to leak through.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

func (h HandlerSet) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

// sendAuthResponse carries both tokens in the response headers; the body is
// the user document.
func sendAuthResponse(c *gin.Context, result service.AuthResult) {
	c.Header(middleware.HeaderRefreshToken, result.RefreshToken)
	c.Header(middleware.HeaderAccessToken, result.AccessToken)
	c.JSON(http.StatusOK, toUserResponse(result.User))
}

// RefreshAccessToken runs behind the session gate: the refresh token and user
// id were already validated, so all that is left is minting a new access
// token. The refresh token is not rotated here.
func (h HandlerSet) RefreshAccessToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	accessToken, err := h.auth.IssueAccessToken(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header(middleware.HeaderAccessToken, accessToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// Logout revokes the session behind the presented refresh token; other
// sessions of the same user stay valid.
func (h HandlerSet) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tokenVal, _ := c.Get(middleware.ContextRefreshToken)
	refreshToken, _ := tokenVal.(string)

	if err := h.auth.Logout(c.Request.Context(), userID, refreshToken); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type sessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessions, err := h.auth.ListSessions(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	now := time.Now()
	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, sessionResponse{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			Expired:   session.Expired(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}
