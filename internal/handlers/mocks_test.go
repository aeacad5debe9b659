package handlers_test

import (
	"context"
	"net/http"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/handlers"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/models/user"
	"taskAssistant/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) task(args mock.Arguments) (*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) tasks(args mock.Arguments) ([]*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, title string, description *string) (*task.Task, error) {
	return m.task(m.Called(ctx, title, description))
}

func (m *MockTaskService) ListTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, page, limit))
}

func (m *MockTaskService) ListActiveTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, page, limit))
}

func (m *MockTaskService) ListCompletedTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, page, limit))
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return m.task(m.Called(ctx, id))
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, params service.UpdateTaskParams) (*task.Task, error) {
	return m.task(m.Called(ctx, id, params))
}

func (m *MockTaskService) CompleteTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return m.task(m.Called(ctx, id))
}

func (m *MockTaskService) ReactivateTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return m.task(m.Called(ctx, id))
}

func (m *MockTaskService) RemoveTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return m.task(m.Called(ctx, id))
}

func (m *MockTaskService) PermanentlyDeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAssistantService struct {
	mock.Mock
}

func (m *MockAssistantService) thread(args mock.Arguments) (*thread.Thread, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*thread.Thread), args.Error(1)
}

func (m *MockAssistantService) threads(args mock.Arguments) ([]*thread.Thread, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*thread.Thread), args.Error(1)
}

func (m *MockAssistantService) CreateThread(ctx context.Context, title *string) (*thread.Thread, error) {
	return m.thread(m.Called(ctx, title))
}

func (m *MockAssistantService) ListThreads(ctx context.Context, page, limit int) ([]*thread.Thread, error) {
	return m.threads(m.Called(ctx, page, limit))
}

func (m *MockAssistantService) ListActiveThreads(ctx context.Context, page, limit int) ([]*thread.Thread, error) {
	return m.threads(m.Called(ctx, page, limit))
}

func (m *MockAssistantService) GetThread(ctx context.Context, id uuid.UUID) (*service.ThreadDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ThreadDetails), args.Error(1)
}

func (m *MockAssistantService) SendMessage(ctx context.Context, threadID uuid.UUID, content string) (*service.SendMessageResult, error) {
	args := m.Called(ctx, threadID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SendMessageResult), args.Error(1)
}

func (m *MockAssistantService) UpdateThread(ctx context.Context, id uuid.UUID, params service.UpdateThreadParams) (*thread.Thread, error) {
	return m.thread(m.Called(ctx, id, params))
}

func (m *MockAssistantService) ArchiveThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	return m.thread(m.Called(ctx, id))
}

func (m *MockAssistantService) UnarchiveThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	return m.thread(m.Called(ctx, id))
}

func (m *MockAssistantService) DeleteThread(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context) (*service.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Summary), args.Error(1)
}

func (m *MockDashboardService) Recent(ctx context.Context, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) tokens(args mock.Arguments) (*auth.Tokens, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Tokens), args.Error(1)
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password, name string) (*auth.Tokens, error) {
	return m.tokens(m.Called(ctx, email, password, name))
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*auth.Tokens, error) {
	return m.tokens(m.Called(ctx, email, password))
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.Tokens, error) {
	return m.tokens(m.Called(ctx, refreshToken))
}

func (m *MockAuthService) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockAuthService) CurrentUser(ctx context.Context) (*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ handlers.TaskService      = (*MockTaskService)(nil)
	_ handlers.AssistantService = (*MockAssistantService)(nil)
	_ handlers.DashboardService = (*MockDashboardService)(nil)
	_ handlers.AuthService      = (*MockAuthService)(nil)
	_ handlers.HealthChecker    = (*MockHealthChecker)(nil)
)

// withID attaches a chi route context carrying the {id} parameter.
func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
