package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) UploadAttachment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	task, err := h.tasks.Attach(
		c.Request.Context(),
		userID,
		c.Param("listId"),
		c.Param("taskId"),
		file,
		header.Size,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetAttachment redirects to a short-lived presigned download URL instead of
// proxying the object body through the API.
func (h HandlerSet) GetAttachment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	url, err := h.tasks.AttachmentURL(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}
