package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tasklist/api/internal/config"
	"tasklist/api/internal/middleware"
	"tasklist/api/internal/repository"
	"tasklist/api/internal/service"
	"tasklist/api/internal/storage"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	auth  *service.AuthService
	lists *service.ListService
	tasks *service.TaskService
	db    *pgxpool.Pool
	cache *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	listRepo := repository.NewListRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	lists := service.NewListService(listRepo, log)
	tasks := service.NewTaskService(taskRepo, lists, store, log)

	return HandlerSet{
		log:   log,
		cfg:   cfg,
		auth:  auth,
		lists: lists,
		tasks: tasks,
		db:    db,
		cache: cache,
	}
}

// AuthService exposes the auth core for out-of-band callers (the scheduler).
func (h HandlerSet) AuthService() *service.AuthService {
	return h.auth
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	credentialLimit := middleware.RateLimit(
		h.cache,
		h.cfg.Security.LoginRateLimit,
		h.cfg.Security.LoginRateWindow,
		h.log,
	)

	users := router.Group("/users")
	{
		users.POST("", credentialLimit, h.Signup)
		users.POST("/login", credentialLimit, h.Login)

		refresh := users.Group("/me")
		refresh.Use(middleware.VerifySession(h.auth, h.log))
		refresh.GET("/access-token", h.RefreshAccessToken)
		refresh.POST("/logout", h.Logout)

		me := users.Group("/me")
		me.Use(middleware.Authenticate(h.cfg, h.log))
		me.GET("/sessions", h.ListSessions)
	}

	lists := router.Group("/lists")
	lists.Use(middleware.Authenticate(h.cfg, h.log))
	{
		lists.GET("", h.ListLists)
		lists.POST("", h.CreateList)
		lists.PATCH("/:listId", h.UpdateList)
		lists.DELETE("/:listId", h.DeleteList)

		lists.GET("/:listId/tasks", h.ListTasks)
		lists.POST("/:listId/tasks", h.CreateTask)
		lists.PATCH("/:listId/tasks/:taskId", h.UpdateTask)
		lists.DELETE("/:listId/tasks/:taskId", h.DeleteTask)

		lists.POST("/:listId/tasks/:taskId/attachment", h.UploadAttachment)
		lists.GET("/:listId/tasks/:taskId/attachment", h.GetAttachment)
	}
}

// currentUserID reads the identity a gate resolved for this request.
func currentUserID(c *gin.Context) (string, bool) {
	val, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

// respondError maps the closed error set to HTTP. Everything the core emits
// is terminal for the request; only a store outage is retriable.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSessionInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrListNotFound),
		errors.Is(err, repository.ErrTaskNotFound),
		errors.Is(err, service.ErrNoAttachment):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrStoreUnavailable):
		h.log.Error().Err(err).Msg("store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
