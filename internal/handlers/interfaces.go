package handlers

import (
	"context"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/models/user"
	"taskAssistant/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	CreateTask(ctx context.Context, title string, description *string) (*task.Task, error)
	ListTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	ListActiveTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	ListCompletedTasks(ctx context.Context, page, limit int) ([]*task.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, params service.UpdateTaskParams) (*task.Task, error)
	CompleteTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	ReactivateTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	RemoveTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	PermanentlyDeleteTask(ctx context.Context, id uuid.UUID) error
}

type AssistantService interface {
	CreateThread(ctx context.Context, title *string) (*thread.Thread, error)
	ListThreads(ctx context.Context, page, limit int) ([]*thread.Thread, error)
	ListActiveThreads(ctx context.Context, page, limit int) ([]*thread.Thread, error)
	GetThread(ctx context.Context, id uuid.UUID) (*service.ThreadDetails, error)
	SendMessage(ctx context.Context, threadID uuid.UUID, content string) (*service.SendMessageResult, error)
	UpdateThread(ctx context.Context, id uuid.UUID, params service.UpdateThreadParams) (*thread.Thread, error)
	ArchiveThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error)
	UnarchiveThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error)
	DeleteThread(ctx context.Context, id uuid.UUID) error
}

type DashboardService interface {
	Summary(ctx context.Context) (*service.Summary, error)
	Recent(ctx context.Context, limit int) ([]*task.Task, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*auth.Tokens, error)
	SignIn(ctx context.Context, email, password string) (*auth.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Tokens, error)
	SignOut(ctx context.Context, sessionID uuid.UUID) error
	CurrentUser(ctx context.Context) (*user.User, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ TaskService      = (*service.TaskService)(nil)
	_ AssistantService = (*service.AssistantService)(nil)
	_ DashboardService = (*service.DashboardService)(nil)
	_ AuthService      = (*auth.Service)(nil)
)
