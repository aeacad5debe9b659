package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskAssistant/internal/constants"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/task"
	repo "taskAssistant/internal/repository"
	"taskAssistant/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService struct {
	repo    TaskRepository
	limiter RateLimiter
}

func NewTaskService(repo TaskRepository, limiter RateLimiter) *TaskService {
	return &TaskService{
		repo:    repo,
		limiter: limiter,
	}
}

// UpdateTaskParams carries the fields to change. A nil field is left as is;
// an empty Description clears it.
type UpdateTaskParams struct {
	Title       *string
	Description *string
}

func (s *TaskService) CreateTask(ctx context.Context, title string, description *string) (*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleCreateTask, userID); err != nil {
		return nil, err
	}

	title, err = cleanTitle(title)
	if err != nil {
		return nil, err
	}
	desc, err := cleanDescription(description)
	if err != nil {
		return nil, err
	}

	t := &task.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: desc,
		Status:      task.StatusActive,
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: Task created",
		zap.String("task_id", t.ID.String()),
		zap.String("user_id", userID.String()))
	return t, nil
}

// ListTasks returns the caller's active and completed tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	page, limit = pageArgs(page, limit)

	tasks, err := s.repo.ListTasks(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) ListActiveTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	return s.listByStatus(ctx, task.StatusActive, page, limit)
}

func (s *TaskService) ListCompletedTasks(ctx context.Context, page, limit int) ([]*task.Task, error) {
	return s.listByStatus(ctx, task.StatusCompleted, page, limit)
}

func (s *TaskService) listByStatus(ctx context.Context, status task.Status, page, limit int) ([]*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	page, limit = pageArgs(page, limit)

	tasks, err := s.repo.ListTasksByStatus(ctx, userID, status, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listing %s tasks: %w", status, err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.ownedTask(ctx, id, userID)
}

func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleUpdateTask, userID); err != nil {
		return nil, err
	}

	if params.Title == nil && params.Description == nil {
		return nil, NewValidationError("body", "nothing to update")
	}
	var title string
	if params.Title != nil {
		if title, err = cleanTitle(*params.Title); err != nil {
			return nil, err
		}
	}
	desc, err := cleanDescription(params.Description)
	if err != nil {
		return nil, err
	}

	t, err := s.ownedTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if t.Status == task.StatusDeleted {
		return nil, newTransitionError(task.ErrDeleted)
	}

	if params.Title != nil {
		t.Title = title
	}
	if params.Description != nil {
		t.Description = desc
	}
	t.UpdatedAt = time.Now()

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	logger.Info("Service: Task updated", zap.String("task_id", id.String()))
	return t, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return s.transition(ctx, id, "completed", (*task.Task).Complete)
}

func (s *TaskService) ReactivateTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return s.transition(ctx, id, "reactivated", (*task.Task).Reactivate)
}

func (s *TaskService) transition(ctx context.Context, id uuid.UUID, verb string, apply func(*task.Task, time.Time) error) (*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleUpdateTask, userID); err != nil {
		return nil, err
	}

	t, err := s.ownedTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(t, time.Now()); err != nil {
		return nil, newTransitionError(err)
	}

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	logger.Info("Service: Task "+verb, zap.String("task_id", id.String()))
	return t, nil
}

// RemoveTask soft deletes: the task keeps its row with status deleted.
func (s *TaskService) RemoveTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(s.limiter, constants.RuleDeleteTask, userID); err != nil {
		return nil, err
	}

	t, err := s.ownedTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := t.MarkDeleted(time.Now()); err != nil {
		return nil, newTransitionError(err)
	}

	if err := s.repo.DeleteTaskSoft(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound(ResourceTask, id.String())
		}
		return nil, fmt.Errorf("soft deleting task: %w", err)
	}

	logger.Info("Service: Task removed", zap.String("task_id", id.String()))
	return t, nil
}

func (s *TaskService) PermanentlyDeleteTask(ctx context.Context, id uuid.UUID) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := checkLimit(s.limiter, constants.RuleDeleteTask, userID); err != nil {
		return err
	}

	if _, err := s.ownedTask(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteTaskFull(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(ResourceTask, id.String())
		}
		return fmt.Errorf("deleting task: %w", err)
	}

	logger.Info("Service: Task permanently deleted", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) ownedTask(ctx context.Context, id, userID uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Task not found", zap.String("target_id", id.String()))
			return nil, NewNotFound(ResourceTask, id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	if !t.IsOwnedBy(userID) {
		logger.Warn("Service: Task owned by another user",
			zap.String("target_id", id.String()),
			zap.String("user_id", userID.String()))
		return nil, NewNotAuthorized(ResourceTask, id.String())
	}
	return t, nil
}

func (s *TaskService) save(ctx context.Context, t *task.Task) error {
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(ResourceTask, t.ID.String())
		}
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func cleanTitle(title string) (string, error) {
	if !validation.IsValidTaskTitle(title) {
		return "", NewValidationError("title",
			fmt.Sprintf("title must be between 1 and %d characters", constants.MaxTaskTitleLength))
	}
	return validation.SanitizeTaskTitle(title), nil
}

// cleanDescription maps a blank description to nil.
func cleanDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	if !validation.IsValidTaskDescription(*description) {
		return nil, NewValidationError("description",
			fmt.Sprintf("description must be at most %d characters", constants.MaxTaskDescriptionLength))
	}
	desc := validation.SanitizeTaskDescription(*description)
	if desc == "" {
		return nil, nil
	}
	return &desc, nil
}
