package service_test

import (
	"context"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTaskSoft(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTaskFull(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, userID uuid.UUID, page, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) ListTasksByStatus(ctx context.Context, userID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, userID, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) CreateThread(ctx context.Context, t *thread.Thread) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockThreadRepository) GetThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*thread.Thread), args.Error(1)
}

func (m *MockThreadRepository) UpdateThread(ctx context.Context, t *thread.Thread) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockThreadRepository) DeleteThread(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockThreadRepository) ListThreads(ctx context.Context, userID uuid.UUID, page, limit int) ([]*thread.Thread, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*thread.Thread), args.Error(1)
}

func (m *MockThreadRepository) ListThreadsByStatus(ctx context.Context, userID uuid.UUID, status thread.Status, page, limit int) ([]*thread.Thread, error) {
	args := m.Called(ctx, userID, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*thread.Thread), args.Error(1)
}

var _ service.ThreadRepository = (*MockThreadRepository)(nil)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) CreateMessages(ctx context.Context, msgs ...*thread.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageRepository) ListMessages(ctx context.Context, threadID uuid.UUID) ([]*thread.Message, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*thread.Message), args.Error(1)
}

var _ service.MessageRepository = (*MockMessageRepository)(nil)

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) CountTasksByStatus(ctx context.Context, userID uuid.UUID) (map[task.Status]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[task.Status]int), args.Error(1)
}

func (m *MockDashboardRepository) CountThreadsByStatus(ctx context.Context, userID uuid.UUID) (map[thread.Status]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[thread.Status]int), args.Error(1)
}

func (m *MockDashboardRepository) CountMessages(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardRepository) ListRecentTasks(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

var _ service.DashboardRepository = (*MockDashboardRepository)(nil)

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Limit(rule, key string) error {
	args := m.Called(rule, key)
	return args.Error(0)
}

var _ service.RateLimiter = (*MockRateLimiter)(nil)

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Respond(ctx context.Context, history []*thread.Message, prompt string) (string, error) {
	args := m.Called(ctx, history, prompt)
	return args.String(0), args.Error(1)
}

var _ service.Responder = (*MockResponder)(nil)

func asUser(userID uuid.UUID) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: userID, SessionID: uuid.New()})
}

func businessCode(err error) string {
	if busErr, ok := service.AsBusinessError(err); ok {
		return busErr.Code
	}
	return ""
}

func strPtr(s string) *string {
	return &s
}
