package inmemory

import (
	"context"
	"time"

	"taskAssistant/internal/models/thread"
	repo "taskAssistant/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateThread(ctx context.Context, threadToCreate *thread.Thread) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	threadToCreate.CreatedAt = now
	threadToCreate.UpdatedAt = now

	s.threads[threadToCreate.ID] = threadToCreate.Clone()
	s.threadIDs = append(s.threadIDs, threadToCreate.ID)
	return nil
}

func (s *Storage) GetThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Storage) UpdateThread(ctx context.Context, threadToUpdate *thread.Thread) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.threads[threadToUpdate.ID]
	if !ok || existing.UserID != threadToUpdate.UserID {
		return repo.ErrNotFound
	}

	threadToUpdate.CreatedAt = existing.CreatedAt
	threadToUpdate.UpdatedAt = time.Now()
	s.threads[threadToUpdate.ID] = threadToUpdate.Clone()
	return nil
}

// DeleteThread removes the thread together with all of its messages.
func (s *Storage) DeleteThread(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.threads[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.threads, id)
	delete(s.messages, id)
	for ind, val := range s.threadIDs {
		if val == id {
			s.threadIDs = append(s.threadIDs[:ind], s.threadIDs[ind+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) ListThreads(ctx context.Context, userID uuid.UUID, page, limit int) ([]*thread.Thread, error) {
	return s.listThreads(userID, page, limit, func(*thread.Thread) bool { return true }), nil
}

func (s *Storage) ListThreadsByStatus(ctx context.Context, userID uuid.UUID, status thread.Status, page, limit int) ([]*thread.Thread, error) {
	return s.listThreads(userID, page, limit, func(t *thread.Thread) bool {
		return t.Status == status
	}), nil
}

func (s *Storage) CountThreadsByStatus(ctx context.Context, userID uuid.UUID) (map[thread.Status]int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := make(map[thread.Status]int, len(thread.Statuses))
	for _, t := range s.threads {
		if t.UserID == userID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

// CreateMessages stores msgs all at once. Nothing is stored when any
// message points at an unknown thread.
func (s *Storage) CreateMessages(ctx context.Context, msgs ...*thread.Message) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, msg := range msgs {
		if _, ok := s.threads[msg.ThreadID]; !ok {
			return repo.ErrNotFound
		}
	}
	now := time.Now()
	for _, msg := range msgs {
		msg.CreatedAt = now
		stored := *msg
		s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], &stored)
	}
	return nil
}

// ListMessages returns a thread's messages oldest first.
func (s *Storage) ListMessages(ctx context.Context, threadID uuid.UUID) ([]*thread.Message, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored := s.messages[threadID]
	res := make([]*thread.Message, 0, len(stored))
	for _, m := range stored {
		c := *m
		res = append(res, &c)
	}
	return res, nil
}

func (s *Storage) CountMessages(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n := 0
	for _, msgs := range s.messages {
		for _, m := range msgs {
			if m.UserID == userID {
				n++
			}
		}
	}
	return n, nil
}

func (s *Storage) listThreads(userID uuid.UUID, page, limit int, keep func(*thread.Thread) bool) []*thread.Thread {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*thread.Thread{}
	for i := len(s.threadIDs) - 1; i >= 0; i-- {
		t := s.threads[s.threadIDs[i]]
		if t.UserID == userID && keep(t) {
			matched = append(matched, t)
		}
	}

	start, end := paginate(len(matched), page, limit)
	res := make([]*thread.Thread, 0, end-start)
	for _, t := range matched[start:end] {
		res = append(res, t.Clone())
	}
	return res
}
