package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"tasklist/api/internal/ids"
	"tasklist/api/internal/models"
)

var ErrNoAttachment = errors.New("task has no attachment")

type TaskStore interface {
	Create(ctx context.Context, task models.Task) error
	ListByList(ctx context.Context, listID string) ([]models.Task, error)
	Get(ctx context.Context, taskID string, listID string) (models.Task, error)
	Update(ctx context.Context, taskID string, listID string, title string, completed bool) (models.Task, error)
	SetAttachment(ctx context.Context, taskID string, listID string, key string, name string) error
	Delete(ctx context.Context, taskID string, listID string) (models.Task, error)
}

// BlobStore holds task attachments keyed by opaque object keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, filename string, expiry time.Duration) (string, error)
}

// TaskService runs every operation as authorize-then-act: first the list
// ownership check, then the task mutation under that list.
type TaskService struct {
	tasks TaskStore
	lists *ListService
	blobs BlobStore
	log   zerolog.Logger
}

func NewTaskService(tasks TaskStore, lists *ListService, blobs BlobStore, log zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, lists: lists, blobs: blobs, log: log}
}

func (s *TaskService) Create(ctx context.Context, userID string, listID string, title string) (models.Task, error) {
	if title == "" {
		return models.Task{}, ErrValidation
	}
	if _, err := s.lists.Authorize(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:     ids.New(),
		ListID: listID,
		Title:  title,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) ListForList(ctx context.Context, userID string, listID string) ([]models.Task, error) {
	if _, err := s.lists.Authorize(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.tasks.ListByList(ctx, listID)
}

func (s *TaskService) Update(ctx context.Context, userID string, listID string, taskID string, title string, completed bool) (models.Task, error) {
	if title == "" {
		return models.Task{}, ErrValidation
	}
	if _, err := s.lists.Authorize(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}
	return s.tasks.Update(ctx, taskID, listID, title, completed)
}

func (s *TaskService) Delete(ctx context.Context, userID string, listID string, taskID string) (models.Task, error) {
	if _, err := s.lists.Authorize(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}
	return s.tasks.Delete(ctx, taskID, listID)
}

// Attach stores the uploaded file and records its key on the task. A second
// upload replaces the previous attachment key.
func (s *TaskService) Attach(ctx context.Context, userID string, listID string, taskID string, r io.Reader, size int64, filename string, contentType string) (models.Task, error) {
	if _, err := s.lists.Authorize(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}
	if _, err := s.tasks.Get(ctx, taskID, listID); err != nil {
		return models.Task{}, err
	}

	key := fmt.Sprintf("%s/%s/%s", listID, taskID, ids.New())
	if err := s.blobs.Put(ctx, key, r, size, contentType); err != nil {
		return models.Task{}, err
	}

	if err := s.tasks.SetAttachment(ctx, taskID, listID, key, filename); err != nil {
		return models.Task{}, err
	}
	return s.tasks.Get(ctx, taskID, listID)
}

// AttachmentURL returns a short-lived presigned download URL.
func (s *TaskService) AttachmentURL(ctx context.Context, userID string, listID string, taskID string) (string, error) {
	if _, err := s.lists.Authorize(ctx, userID, listID); err != nil {
		return "", err
	}
	task, err := s.tasks.Get(ctx, taskID, listID)
	if err != nil {
		return "", err
	}
	if task.AttachmentKey == nil {
		return "", ErrNoAttachment
	}

	name := ""
	if task.AttachmentName != nil {
		name = *task.AttachmentName
	}
	return s.blobs.PresignGet(ctx, *task.AttachmentKey, name, 15*time.Minute)
}
