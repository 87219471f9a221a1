package service

import (
	"context"

	"github.com/rs/zerolog"

	"tasklist/api/internal/ids"
	"tasklist/api/internal/models"
)

// ListStore is the persistence surface for lists. GetOwned is the
// authorization primitive: it resolves a list only for its owner.
type ListStore interface {
	Create(ctx context.Context, list models.List) error
	ListByUser(ctx context.Context, userID string) ([]models.List, error)
	GetOwned(ctx context.Context, listID string, userID string) (models.List, error)
	UpdateTitle(ctx context.Context, listID string, userID string, title string) (models.List, error)
	Delete(ctx context.Context, listID string, userID string) error
}

type ListService struct {
	lists ListStore
	log   zerolog.Logger
}

func NewListService(lists ListStore, log zerolog.Logger) *ListService {
	return &ListService{lists: lists, log: log}
}

func (s *ListService) Create(ctx context.Context, userID string, title string) (models.List, error) {
	if title == "" {
		return models.List{}, ErrValidation
	}

	list := models.List{
		ID:     ids.New(),
		UserID: userID,
		Title:  title,
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return models.List{}, err
	}
	return list, nil
}

func (s *ListService) ListForUser(ctx context.Context, userID string) ([]models.List, error) {
	return s.lists.ListByUser(ctx, userID)
}

func (s *ListService) Rename(ctx context.Context, userID string, listID string, title string) (models.List, error) {
	if title == "" {
		return models.List{}, ErrValidation
	}
	return s.lists.UpdateTitle(ctx, listID, userID, title)
}

// Delete removes the list together with its tasks.
func (s *ListService) Delete(ctx context.Context, userID string, listID string) (models.List, error) {
	list, err := s.lists.GetOwned(ctx, listID, userID)
	if err != nil {
		return models.List{}, err
	}
	if err := s.lists.Delete(ctx, listID, userID); err != nil {
		return models.List{}, err
	}
	return list, nil
}

// Authorize is the shared ownership gate the task service goes through
// before any mutation under a list.
func (s *ListService) Authorize(ctx context.Context, userID string, listID string) (models.List, error) {
	list, err := s.lists.GetOwned(ctx, listID, userID)
	if err != nil {
		return models.List{}, err
	}
	return list, nil
}
