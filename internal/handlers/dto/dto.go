package dto

import (
	"time"

	"taskAssistant/internal/auth"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/models/user"
	"taskAssistant/internal/service"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateThreadRequest struct {
	Title *string `json:"title,omitempty"`
}

type UpdateThreadRequest struct {
	Title  *string        `json:"title,omitempty"`
	Status *thread.Status `json:"status,omitempty"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type ThreadResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromThread(t *thread.Thread) ThreadResponse {
	return ThreadResponse{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromThreadList(threads []*thread.Thread) []ThreadResponse {
	result := make([]ThreadResponse, len(threads))
	for i, t := range threads {
		result[i] = FromThread(t)
	}
	return result
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func FromMessage(m *thread.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func FromMessageList(msgs []*thread.Message) []MessageResponse {
	result := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		result[i] = FromMessage(m)
	}
	return result
}

type TableSummaryResponse struct {
	Table    string         `json:"table"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status,omitempty"`
}

func FromSummary(s *service.Summary) []TableSummaryResponse {
	result := make([]TableSummaryResponse, len(s.Tables))
	for i, ts := range s.Tables {
		result[i] = TableSummaryResponse{
			Table:    ts.Table.String(),
			Total:    ts.Total,
			ByStatus: ts.ByStatus,
		}
	}
	return result
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

type TokensResponse struct {
	UserID                uuid.UUID `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

func FromTokens(t *auth.Tokens) TokensResponse {
	return TokensResponse{
		UserID:                t.UserID,
		AccessToken:           t.AccessToken,
		AccessTokenExpiresAt:  t.AccessTokenExpiresAt,
		RefreshToken:          t.RefreshToken,
		RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
		TokenType:             "Bearer",
	}
}
