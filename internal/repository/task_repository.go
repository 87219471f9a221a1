package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasklist/api/internal/models"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, list_id, title, completed, attachment_key, attachment_name, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task models.Task) error {
	const query = `
		INSERT INTO tasks (id, list_id, title, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	if _, err := r.pool.Exec(ctx, query, task.ID, task.ListID, task.Title, task.Completed); err != nil {
		return storeErr("create task", err)
	}
	return nil
}

func (r *TaskRepository) ListByList(ctx context.Context, listID string) ([]models.Task, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE list_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, listID)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storeErr("scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, taskID string, listID string) (models.Task, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND list_id = $2
	`

	task, err := scanTask(r.pool.QueryRow(ctx, query, taskID, listID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, storeErr("get task", err)
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, taskID string, listID string, title string, completed bool) (models.Task, error) {
	const query = `
		UPDATE tasks SET title = $3, completed = $4, updated_at = NOW()
		WHERE id = $1 AND list_id = $2
		RETURNING ` + taskColumns + `
	`

	task, err := scanTask(r.pool.QueryRow(ctx, query, taskID, listID, title, completed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, storeErr("update task", err)
	}
	return task, nil
}

func (r *TaskRepository) SetAttachment(ctx context.Context, taskID string, listID string, key string, name string) error {
	const query = `
		UPDATE tasks SET attachment_key = $3, attachment_name = $4, updated_at = NOW()
		WHERE id = $1 AND list_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, taskID, listID, key, name)
	if err != nil {
		return storeErr("set attachment", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID string, listID string) (models.Task, error) {
	const query = `
		DELETE FROM tasks
		WHERE id = $1 AND list_id = $2
		RETURNING ` + taskColumns + `
	`

	task, err := scanTask(r.pool.QueryRow(ctx, query, taskID, listID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, storeErr("delete task", err)
	}
	return task, nil
}

func scanTask(row pgx.Row) (models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.ListID,
		&task.Title,
		&task.Completed,
		&task.AttachmentKey,
		&task.AttachmentName,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}
