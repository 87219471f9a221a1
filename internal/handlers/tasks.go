package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasklist/api/internal/models"
)

type createTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type updateTaskRequest struct {
	Title     string `json:"title" binding:"required"`
	Completed bool   `json:"completed"`
}

type taskResponse struct {
	ID             string    `json:"id"`
	ListID         string    `json:"listId"`
	Title          string    `json:"title"`
	Completed      bool      `json:"completed"`
	AttachmentName *string   `json:"attachmentName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toTaskResponse(task models.Task) taskResponse {
	return taskResponse{
		ID:             task.ID,
		ListID:         task.ListID,
		Title:          task.Title,
		Completed:      task.Completed,
		AttachmentName: task.AttachmentName,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

func (h HandlerSet) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := h.tasks.ListForList(c.Request.Context(), userID, c.Param("listId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, toTaskResponse(task))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, c.Param("listId"), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h HandlerSet) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"), req.Title, req.Completed)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h HandlerSet) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	task, err := h.tasks.Delete(c.Request.Context(), userID, c.Param("listId"), c.Param("taskId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}
