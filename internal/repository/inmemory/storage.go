// Package inmemory is a map-backed store for development and tests. It
// implements the same repository contracts as the postgres package.
package inmemory

import (
	"context"
	"sync"

	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/models/user"

	"github.com/google/uuid"
)

type Storage struct {
	mtx *sync.RWMutex

	tasks   map[uuid.UUID]*task.Task
	taskIDs []uuid.UUID

	threads   map[uuid.UUID]*thread.Thread
	threadIDs []uuid.UUID
	messages  map[uuid.UUID][]*thread.Message

	users         map[uuid.UUID]*user.User
	usersByEmail  map[string]uuid.UUID
	sessions      map[uuid.UUID]*user.Session
	sessionsByRef map[string]uuid.UUID
}

func NewStorage() *Storage {
	return &Storage{
		mtx:           &sync.RWMutex{},
		tasks:         make(map[uuid.UUID]*task.Task),
		threads:       make(map[uuid.UUID]*thread.Thread),
		messages:      make(map[uuid.UUID][]*thread.Message),
		users:         make(map[uuid.UUID]*user.User),
		usersByEmail:  make(map[string]uuid.UUID),
		sessions:      make(map[uuid.UUID]*user.Session),
		sessionsByRef: make(map[string]uuid.UUID),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: In-memory storage is up")
	return nil
}

func (s *Storage) Close() {}

// paginate returns the [start, end) window of page within n items.
func paginate(n, page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || page-1 >= (n+limit-1)/limit {
		return n, n
	}
	start := (page - 1) * limit
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}
