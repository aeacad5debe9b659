package inmemory

import (
	"context"
	"time"

	"taskAssistant/internal/models/user"
	repo "taskAssistant/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, taken := s.usersByEmail[u.Email]; taken {
		return repo.ErrAlreadyExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	stored := *u
	s.users[u.ID] = &stored
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *s.users[id]
	return &c, nil
}

func (s *Storage) CreateSession(ctx context.Context, session *user.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return repo.ErrNotFound
	}
	if _, taken := s.sessionsByRef[session.RefreshToken]; taken {
		return repo.ErrAlreadyExists
	}
	stored := *session
	s.sessions[session.ID] = &stored
	s.sessionsByRef[session.RefreshToken] = session.ID
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id uuid.UUID) (*user.Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *session
	return &c, nil
}

func (s *Storage) GetSessionByRefreshToken(ctx context.Context, token string) (*user.Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.sessionsByRef[token]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := *s.sessions[id]
	return &c, nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *user.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.sessions[session.ID]
	if !ok {
		return repo.ErrNotFound
	}
	delete(s.sessionsByRef, existing.RefreshToken)
	stored := *session
	s.sessions[session.ID] = &stored
	s.sessionsByRef[session.RefreshToken] = session.ID
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return repo.ErrNotFound
	}
	delete(s.sessionsByRef, session.RefreshToken)
	delete(s.sessions, id)
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var removed int64
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessionsByRef, session.RefreshToken)
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
