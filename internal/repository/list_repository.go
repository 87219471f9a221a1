package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasklist/api/internal/models"
)

type ListRepository struct {
	pool *pgxpool.Pool
}

func NewListRepository(pool *pgxpool.Pool) *ListRepository {
	return &ListRepository{pool: pool}
}

func (r *ListRepository) Create(ctx context.Context, list models.List) error {
	const query = `
		INSERT INTO lists (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	if _, err := r.pool.Exec(ctx, query, list.ID, list.UserID, list.Title); err != nil {
		return storeErr("create list", err)
	}
	return nil
}

func (r *ListRepository) ListByUser(ctx context.Context, userID string) ([]models.List, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list lists", err)
	}
	defer rows.Close()

	var lists []models.List
	for rows.Next() {
		var list models.List
		if err := rows.Scan(&list.ID, &list.UserID, &list.Title, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, storeErr("scan list", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list lists", err)
	}
	return lists, nil
}

// GetOwned resolves a list only when it belongs to userID. A list that exists
// but belongs to someone else is indistinguishable from one that does not
// exist, which is exactly what the ownership gate wants.
func (r *ListRepository) GetOwned(ctx context.Context, listID string, userID string) (models.List, error) {
	const query = `
		SELECT id, user_id, title, created_at, updated_at
		FROM lists
		WHERE id = $1 AND user_id = $2
	`

	row := r.pool.QueryRow(ctx, query, listID, userID)
	var list models.List
	if err := row.Scan(&list.ID, &list.UserID, &list.Title, &list.CreatedAt, &list.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.List{}, ErrListNotFound
		}
		return models.List{}, storeErr("get list", err)
	}
	return list, nil
}

func (r *ListRepository) UpdateTitle(ctx context.Context, listID string, userID string, title string) (models.List, error) {
	const query = `
		UPDATE lists SET title = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, listID, userID, title)
	var list models.List
	if err := row.Scan(&list.ID, &list.UserID, &list.Title, &list.CreatedAt, &list.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.List{}, ErrListNotFound
		}
		return models.List{}, storeErr("update list", err)
	}
	return list, nil
}

// Delete removes the list and, through the cascading foreign key, its tasks.
func (r *ListRepository) Delete(ctx context.Context, listID string, userID string) error {
	const query = `DELETE FROM lists WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, listID, userID)
	if err != nil {
		return storeErr("delete list", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrListNotFound
	}
	return nil
}
