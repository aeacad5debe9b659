package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskAssistant/internal/constants"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/thread"
	repo "taskAssistant/internal/repository"
	"taskAssistant/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AssistantService struct {
	threads   ThreadRepository
	messages  MessageRepository
	responder Responder
	limiter   RateLimiter
}

func NewAssistantService(threads ThreadRepository, messages MessageRepository, responder Responder, limiter RateLimiter) *AssistantService {
	return &AssistantService{
		threads:   threads,
		messages:  messages,
		responder: responder,
		limiter:   limiter,
	}
}

type ThreadDetails struct {
	Thread   *thread.Thread
	Messages []*thread.Message
}

type SendMessageResult struct {
	Thread           *thread.Thread
	UserMessage      *thread.Message
	AssistantMessage *thread.Message
}

// UpdateThreadParams carries the fields to change. An empty Title clears it.
type UpdateThreadParams struct {
	Title  *string
	Status *thread.Status
}

func (s *AssistantService) CreateThread(ctx context.Context, title *string) (*thread.Thread, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleCreateThread, userID); err != nil {
		return nil, err
	}

	cleaned, err := cleanThreadTitle(title)
	if err != nil {
		return nil, err
	}

	th := &thread.Thread{
		ID:     uuid.New(),
		UserID: userID,
		Title:  cleaned,
		Status: thread.StatusActive,
	}
	if err := s.threads.CreateThread(ctx, th); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}

	logger.Info("Service: Thread created",
		zap.String("thread_id", th.ID.String()),
		zap.String("user_id", userID.String()))
	return th, nil
}

func (s *AssistantService) ListThreads(ctx context.Context, page, limit int) ([]*thread.Thread, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	page, limit = pageArgs(page, limit)

	threads, err := s.threads.ListThreads(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	return threads, nil
}

func (s *AssistantService) ListActiveThreads(ctx context.Context, page, limit int) ([]*thread.Thread, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	page, limit = pageArgs(page, limit)

	threads, err := s.threads.ListThreadsByStatus(ctx, userID, thread.StatusActive, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listing active threads: %w", err)
	}
	return threads, nil
}

// GetThread returns the thread with its messages oldest first.
func (s *AssistantService) GetThread(ctx context.Context, id uuid.UUID) (*ThreadDetails, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	th, err := s.ownedThread(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return &ThreadDetails{Thread: th, Messages: msgs}, nil
}

// SendMessage asks the responder for a reply, then stores the user's
// message and the reply together. A failed reply stores nothing. An
// untitled thread is named after the first message.
func (s *AssistantService) SendMessage(ctx context.Context, threadID uuid.UUID, content string) (*SendMessageResult, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleSendMessage, userID); err != nil {
		return nil, err
	}

	if !validation.IsValidMessageContent(content) {
		return nil, NewValidationError("content",
			fmt.Sprintf("message must be between 1 and %d characters", constants.MaxMessageContentLength))
	}
	content = validation.SanitizeMessageContent(content)

	th, err := s.ownedThread(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}
	if th.Status == thread.StatusArchived {
		return nil, newTransitionError(errors.New("thread is archived"))
	}

	history, err := s.messages.ListMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	reply, err := s.responder.Respond(ctx, history, content)
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	userMsg := &thread.Message{
		ID:       uuid.New(),
		ThreadID: threadID,
		UserID:   userID,
		Role:     thread.RoleUser,
		Content:  content,
	}
	assistantMsg := &thread.Message{
		ID:       uuid.New(),
		ThreadID: threadID,
		UserID:   userID,
		Role:     thread.RoleAssistant,
		Content:  validation.SanitizeMessageContent(reply),
	}
	if err := s.messages.CreateMessages(ctx, userMsg, assistantMsg); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound(ResourceThread, threadID.String())
		}
		return nil, fmt.Errorf("creating messages: %w", err)
	}

	if th.Title == nil {
		if title := validation.SanitizeThreadTitle(content); title != "" {
			th.Title = &title
		}
	}
	th.UpdatedAt = time.Now()
	if err := s.save(ctx, th); err != nil {
		return nil, err
	}

	logger.Info("Service: Message sent",
		zap.String("thread_id", threadID.String()),
		zap.Int("history", len(history)))
	return &SendMessageResult{Thread: th, UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

func (s *AssistantService) UpdateThread(ctx context.Context, id uuid.UUID, params UpdateThreadParams) (*thread.Thread, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleUpdateThread, userID); err != nil {
		return nil, err
	}

	if params.Title == nil && params.Status == nil {
		return nil, NewValidationError("body", "nothing to update")
	}
	title, err := cleanThreadTitle(params.Title)
	if err != nil {
		return nil, err
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown thread status %q", *params.Status))
	}

	th, err := s.ownedThread(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if params.Title != nil {
		th.Title = title
	}
	if params.Status != nil && *params.Status != th.Status {
		apply := th.Archive
		if *params.Status == thread.StatusActive {
			apply = th.Unarchive
		}
		if err := apply(now); err != nil {
			return nil, newTransitionError(err)
		}
	}
	th.UpdatedAt = now

	if err := s.save(ctx, th); err != nil {
		return nil, err
	}

	logger.Info("Service: Thread updated", zap.String("thread_id", id.String()))
	return th, nil
}

func (s *AssistantService) ArchiveThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	return s.transition(ctx, id, "archived", (*thread.Thread).Archive)
}

func (s *AssistantService) UnarchiveThread(ctx context.Context, id uuid.UUID) (*thread.Thread, error) {
	return s.transition(ctx, id, "unarchived", (*thread.Thread).Unarchive)
}

func (s *AssistantService) transition(ctx context.Context, id uuid.UUID, verb string, apply func(*thread.Thread, time.Time) error) (*thread.Thread, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleUpdateThread, userID); err != nil {
		return nil, err
	}

	th, err := s.ownedThread(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(th, time.Now()); err != nil {
		return nil, newTransitionError(err)
	}
	if err := s.save(ctx, th); err != nil {
		return nil, err
	}

	logger.Info("Service: Thread "+verb, zap.String("thread_id", id.String()))
	return th, nil
}

// DeleteThread removes the thread and every message in it.
func (s *AssistantService) DeleteThread(ctx context.Context, id uuid.UUID) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := checkLimit(s.limiter, constants.RuleDeleteThread, userID); err != nil {
		return err
	}

	if _, err := s.ownedThread(ctx, id, userID); err != nil {
		return err
	}
	if err := s.threads.DeleteThread(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(ResourceThread, id.String())
		}
		return fmt.Errorf("deleting thread: %w", err)
	}

	logger.Info("Service: Thread deleted", zap.String("thread_id", id.String()))
	return nil
}

func (s *AssistantService) ownedThread(ctx context.Context, id, userID uuid.UUID) (*thread.Thread, error) {
	th, err := s.threads.GetThread(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Thread not found", zap.String("target_id", id.String()))
			return nil, NewNotFound(ResourceThread, id.String())
		}
		return nil, fmt.Errorf("getting thread: %w", err)
	}
	if !th.IsOwnedBy(userID) {
		logger.Warn("Service: Thread owned by another user",
			zap.String("target_id", id.String()),
			zap.String("user_id", userID.String()))
		return nil, NewNotAuthorized(ResourceThread, id.String())
	}
	return th, nil
}

func (s *AssistantService) save(ctx context.Context, th *thread.Thread) error {
	if err := s.threads.UpdateThread(ctx, th); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(ResourceThread, th.ID.String())
		}
		return fmt.Errorf("updating thread: %w", err)
	}
	return nil
}

// cleanThreadTitle maps a blank title to nil.
func cleanThreadTitle(title *string) (*string, error) {
	if title == nil {
		return nil, nil
	}
	if !validation.IsValidThreadTitle(*title) {
		return nil, NewValidationError("title",
			fmt.Sprintf("title must be at most %d characters", constants.MaxThreadTitleLength))
	}
	cleaned := validation.SanitizeThreadTitle(*title)
	if cleaned == "" {
		return nil, nil
	}
	return &cleaned, nil
}
