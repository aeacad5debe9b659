package inmemory

import (
	"context"
	"sort"
	"time"

	"taskAssistant/internal/models/task"
	repo "taskAssistant/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	s.tasks[taskToCreate.ID] = taskToCreate.Clone()
	s.taskIDs = append(s.taskIDs, taskToCreate.ID)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[taskToUpdate.ID]
	if !ok || existing.UserID != taskToUpdate.UserID {
		return repo.ErrNotFound
	}

	taskToUpdate.CreatedAt = existing.CreatedAt
	taskToUpdate.UpdatedAt = time.Now()
	s.tasks[taskToUpdate.ID] = taskToUpdate.Clone()
	return nil
}

// soft delete: the row stays with status deleted
func (s *Storage) DeleteTaskSoft(ctx context.Context, taskToDelete *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[taskToDelete.ID]
	if !ok || existing.UserID != taskToDelete.UserID {
		return repo.ErrNotFound
	}

	existing.Status = task.StatusDeleted
	existing.CompletedAt = nil
	existing.UpdatedAt = time.Now()

	taskToDelete.Status = existing.Status
	taskToDelete.CompletedAt = nil
	taskToDelete.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *Storage) DeleteTaskFull(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.tasks, id)
	for ind, val := range s.taskIDs {
		if val == id {
			s.taskIDs = append(s.taskIDs[:ind], s.taskIDs[ind+1:]...)
			break
		}
	}
	return nil
}

// newest first, deleted tasks excluded
func (s *Storage) ListTasks(ctx context.Context, userID uuid.UUID, page, limit int) ([]*task.Task, error) {
	return s.listTasks(userID, page, limit, func(t *task.Task) bool {
		return t.Status != task.StatusDeleted
	}), nil
}

func (s *Storage) ListTasksByStatus(ctx context.Context, userID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error) {
	return s.listTasks(userID, page, limit, func(t *task.Task) bool {
		return t.Status == status
	}), nil
}

func (s *Storage) ListRecentTasks(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if t.UserID == userID && t.Status != task.StatusDeleted {
			res = append(res, t.Clone())
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *Storage) CountTasksByStatus(ctx context.Context, userID uuid.UUID) (map[task.Status]int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := make(map[task.Status]int, len(task.Statuses))
	for _, t := range s.tasks {
		if t.UserID == userID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (s *Storage) listTasks(userID uuid.UUID, page, limit int, keep func(*task.Task) bool) []*task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*task.Task{}
	for i := len(s.taskIDs) - 1; i >= 0; i-- {
		t := s.tasks[s.taskIDs[i]]
		if t.UserID == userID && keep(t) {
			matched = append(matched, t)
		}
	}

	start, end := paginate(len(matched), page, limit)
	res := make([]*task.Task, 0, end-start)
	for _, t := range matched[start:end] {
		res = append(res, t.Clone())
	}
	return res
}
