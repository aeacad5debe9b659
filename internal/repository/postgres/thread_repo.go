package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/thread"
	repo "taskAssistant/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const threadColumns = `id, user_id, title, status, created_at, updated_at`

func scanThread(row pgx.Row) (*thread.Thread, error) {
	t := &thread.Thread{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) CreateThread(ctx context.Context, threadToCreate *thread.Thread) error {
	start := time.Now()
	defer warnIfSlow("create_thread", start)

	query := `INSERT INTO threads (id, user_id, title, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NOW(), NOW())
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		threadToCreate.ID,
		threadToCreate.UserID,
		threadToCreate.Title,
		threadToCreate.Status,
	).Scan(&threadToCreate.CreatedAt, &threadToCreate.UpdatedAt)
	if err != nil {
		logger.Error("Repository: Failed to insert thread", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("inserting thread: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	start := time.Now()
	defer warnIfSlow("get_thread", start)

	t, err := scanThread(s.pool.QueryRow(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Failed to get thread", err, zap.String("thread_id", id.String()))
		return nil, fmt.Errorf("getting thread: %w", err)
	}
	return t, nil
}

func (s *Storage) UpdateThread(ctx context.Context, threadToUpdate *thread.Thread) error {
	start := time.Now()
	defer warnIfSlow("update_thread", start)

	query := `UPDATE threads
			SET title = $1,
				status = $2,
				updated_at = NOW()
			WHERE id = $3 AND user_id = $4
			RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		threadToUpdate.Title,
		threadToUpdate.Status,
		threadToUpdate.ID,
		threadToUpdate.UserID,
	).Scan(&threadToUpdate.CreatedAt, &threadToUpdate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Failed to update thread", err, zap.String("thread_id", threadToUpdate.ID.String()))
		return fmt.Errorf("updating thread: %w", err)
	}
	return nil
}

// DeleteThread removes the thread and its messages in one transaction.
func (s *Storage) DeleteThread(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("delete_thread", start)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Failed to begin transaction", err)
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	msgs, err := tx.Exec(ctx, `DELETE FROM messages WHERE thread_id = $1`, id)
	if err != nil {
		logger.Error("Repository: Failed to delete messages", err, zap.String("thread_id", id.String()))
		return fmt.Errorf("deleting messages: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Failed to delete thread", err, zap.String("thread_id", id.String()))
		return fmt.Errorf("deleting thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Failed to commit thread delete", err)
		return fmt.Errorf("committing: %w", err)
	}

	logger.Debug("Repository: Thread deleted",
		zap.String("thread_id", id.String()),
		zap.Int64("messages", msgs.RowsAffected()))
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, userID uuid.UUID, page, limit int) ([]*thread.Thread, error) {
	query := `SELECT ` + threadColumns + `
				FROM threads
				WHERE user_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2 OFFSET $3`

	return s.queryThreads(ctx, "list_threads", query, userID, limit, offset(page, limit))
}

func (s *Storage) ListThreadsByStatus(ctx context.Context, userID uuid.UUID, status thread.Status, page, limit int) ([]*thread.Thread, error) {
	query := `SELECT ` + threadColumns + `
				FROM threads
				WHERE user_id = $1 AND status = $2
				ORDER BY created_at DESC, id DESC
				LIMIT $3 OFFSET $4`

	return s.queryThreads(ctx, "list_threads_by_status", query, userID, status, limit, offset(page, limit))
}

func (s *Storage) CountThreadsByStatus(ctx context.Context, userID uuid.UUID) (map[thread.Status]int, error) {
	start := time.Now()
	defer warnIfSlow("count_threads", start)

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM threads WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		logger.Error("Repository: Failed to count threads", err)
		return nil, fmt.Errorf("counting threads: %w", err)
	}
	defer rows.Close()

	counts := make(map[thread.Status]int, len(thread.Statuses))
	for rows.Next() {
		var status thread.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning thread count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating thread counts: %w", err)
	}
	return counts, nil
}

// CreateMessages inserts msgs in one transaction.
func (s *Storage) CreateMessages(ctx context.Context, msgs ...*thread.Message) error {
	start := time.Now()
	defer warnIfSlow("create_messages", start)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Failed to begin transaction", err)
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `INSERT INTO messages (id, thread_id, user_id, role, content, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				RETURNING created_at`

	for _, msg := range msgs {
		err := tx.QueryRow(ctx, query, msg.ID, msg.ThreadID, msg.UserID, msg.Role, msg.Content).
			Scan(&msg.CreatedAt)
		if err != nil {
			mapped := mapError(err)
			if errors.Is(mapped, repo.ErrNotFound) {
				return repo.ErrNotFound
			}
			logger.Error("Repository: Failed to insert message", err, zap.String("thread_id", msg.ThreadID.String()))
			return fmt.Errorf("inserting message: %w", mapped)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Failed to commit messages", err)
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// ListMessages returns a thread's messages in insertion order.
func (s *Storage) ListMessages(ctx context.Context, threadID uuid.UUID) ([]*thread.Message, error) {
	start := time.Now()
	defer warnIfSlow("list_messages", start)

	query := `SELECT id, thread_id, user_id, role, content, created_at
				FROM messages
				WHERE thread_id = $1
				ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, threadID)
	if err != nil {
		logger.Error("Repository: Failed to list messages", err, zap.String("thread_id", threadID.String()))
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	msgs := []*thread.Message{}
	for rows.Next() {
		m := &thread.Message{}
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			logger.Error("Repository: Failed to scan message", err)
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

func (s *Storage) CountMessages(ctx context.Context, userID uuid.UUID) (int, error) {
	start := time.Now()
	defer warnIfSlow("count_messages", start)

	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE user_id = $1`, userID).Scan(&n); err != nil {
		logger.Error("Repository: Failed to count messages", err)
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

func (s *Storage) queryThreads(ctx context.Context, op, query string, args ...any) ([]*thread.Thread, error) {
	start := time.Now()
	defer warnIfSlow(op, start)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Failed to query threads", err, zap.String("op", op))
		return nil, fmt.Errorf("querying threads: %w", err)
	}
	defer rows.Close()

	threads := []*thread.Thread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			logger.Error("Repository: Failed to scan thread", err)
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating threads: %w", err)
	}
	return threads, nil
}
