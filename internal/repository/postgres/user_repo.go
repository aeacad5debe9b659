package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/user"
	repo "taskAssistant/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const sessionColumns = `id, user_id, refresh_token, expires_at, created_at, updated_at`

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (id, email, name, password_hash, created_at)
				VALUES ($1, $2, $3, $4, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, repo.ErrAlreadyExists) {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Failed to insert user", err)
		return fmt.Errorf("inserting user: %w", mapped)
	}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Failed to get user", err)
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

func (s *Storage) CreateSession(ctx context.Context, session *user.Session) error {
	query := `INSERT INTO sessions (id, user_id, refresh_token, expires_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NOW(), NOW())
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query, session.ID, session.UserID, session.RefreshToken, session.ExpiresAt).
		Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, repo.ErrNotFound) || errors.Is(mapped, repo.ErrAlreadyExists) {
			return mapped
		}
		logger.Error("Repository: Failed to insert session", err)
		return fmt.Errorf("inserting session: %w", mapped)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id uuid.UUID) (*user.Session, error) {
	return s.getSession(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
}

func (s *Storage) GetSessionByRefreshToken(ctx context.Context, token string) (*user.Session, error) {
	return s.getSession(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = $1`, token)
}

func (s *Storage) getSession(ctx context.Context, query string, arg any) (*user.Session, error) {
	session := &user.Session{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Failed to get session", err)
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *user.Session) error {
	query := `UPDATE sessions
			SET refresh_token = $1,
				expires_at = $2,
				updated_at = NOW()
			WHERE id = $3
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query, session.RefreshToken, session.ExpiresAt, session.ID).Scan(&session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Failed to update session", err, zap.String("session_id", session.ID.String()))
		return fmt.Errorf("updating session: %w", mapError(err))
	}
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Failed to delete session", err)
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	defer warnIfSlow("delete_expired_sessions", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		logger.Error("Repository: Failed to purge sessions", err)
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
