package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/task"
	repo "taskAssistant/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, title, description, status, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create_task", start)

	query := `INSERT INTO tasks
				(id, user_id, title, description, status, completed_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.CompletedAt,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.UpdatedAt)
	if err != nil {
		logger.Error("Repository: Failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting task: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get_task", start)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Failed to get task", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("update_task", start)

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				completed_at = $4,
				updated_at = NOW()
			WHERE id = $5 AND user_id = $6
			RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.CompletedAt,
		taskToUpdate.ID,
		taskToUpdate.UserID,
	).Scan(&taskToUpdate.CreatedAt, &taskToUpdate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Failed to update task", err, zap.String("task_id", taskToUpdate.ID.String()))
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// soft delete: the row stays with status deleted
func (s *Storage) DeleteTaskSoft(ctx context.Context, taskToDelete *task.Task) error {
	start := time.Now()
	defer warnIfSlow("delete_task_soft", start)

	query := `UPDATE tasks
				SET status = $1,
				completed_at = NULL,
				updated_at = NOW()
			WHERE id = $2 AND user_id = $3
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query, task.StatusDeleted, taskToDelete.ID, taskToDelete.UserID).
		Scan(&taskToDelete.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Failed to soft delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("soft deleting task: %w", err)
	}
	taskToDelete.Status = task.StatusDeleted
	taskToDelete.CompletedAt = nil
	return nil
}

func (s *Storage) DeleteTaskFull(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("delete_task_full", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Failed to delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, userID uuid.UUID, page, limit int) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND status != $2
				ORDER BY created_at DESC, id DESC
				LIMIT $3 OFFSET $4`

	return s.queryTasks(ctx, "list_tasks", query, userID, task.StatusDeleted, limit, offset(page, limit))
}

func (s *Storage) ListTasksByStatus(ctx context.Context, userID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND status = $2
				ORDER BY created_at DESC, id DESC
				LIMIT $3 OFFSET $4`

	return s.queryTasks(ctx, "list_tasks_by_status", query, userID, status, limit, offset(page, limit))
}

func (s *Storage) ListRecentTasks(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND status != $2
				ORDER BY updated_at DESC, id DESC
				LIMIT $3`

	return s.queryTasks(ctx, "list_recent_tasks", query, userID, task.StatusDeleted, limit)
}

func (s *Storage) CountTasksByStatus(ctx context.Context, userID uuid.UUID) (map[task.Status]int, error) {
	start := time.Now()
	defer warnIfSlow("count_tasks", start)

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		logger.Error("Repository: Failed to count tasks", err)
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[task.Status]int, len(task.Statuses))
	for rows.Next() {
		var status task.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning task count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task counts: %w", err)
	}
	return counts, nil
}

func (s *Storage) queryTasks(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(op, start)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Failed to query tasks", err, zap.String("op", op))
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Failed to scan task", err)
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return tasks, nil
}
