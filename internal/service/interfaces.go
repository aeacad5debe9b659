package service

import (
	"context"

	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"

	"github.com/google/uuid"
)

type TaskRepository interface {
	CreateTask(context.Context, *task.Task) error
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	UpdateTask(context.Context, *task.Task) error
	DeleteTaskSoft(context.Context, *task.Task) error
	DeleteTaskFull(context.Context, uuid.UUID) error
	ListTasks(ctx context.Context, userID uuid.UUID, page, limit int) ([]*task.Task, error)
	ListTasksByStatus(ctx context.Context, userID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error)
}

type ThreadRepository interface {
	CreateThread(context.Context, *thread.Thread) error
	GetThread(context.Context, uuid.UUID) (*thread.Thread, error)
	UpdateThread(context.Context, *thread.Thread) error
	DeleteThread(context.Context, uuid.UUID) error
	ListThreads(ctx context.Context, userID uuid.UUID, page, limit int) ([]*thread.Thread, error)
	ListThreadsByStatus(ctx context.Context, userID uuid.UUID, status thread.Status, page, limit int) ([]*thread.Thread, error)
}

type MessageRepository interface {
	// CreateMessages stores all of msgs or none of them.
	CreateMessages(ctx context.Context, msgs ...*thread.Message) error
	ListMessages(ctx context.Context, threadID uuid.UUID) ([]*thread.Message, error)
}

type DashboardRepository interface {
	CountTasksByStatus(ctx context.Context, userID uuid.UUID) (map[task.Status]int, error)
	CountThreadsByStatus(ctx context.Context, userID uuid.UUID) (map[thread.Status]int, error)
	CountMessages(ctx context.Context, userID uuid.UUID) (int, error)
	ListRecentTasks(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error)
}

type RateLimiter interface {
	Limit(rule, key string) error
}

// Responder produces the assistant's reply to a message.
type Responder interface {
	Respond(ctx context.Context, history []*thread.Message, prompt string) (string, error)
}
