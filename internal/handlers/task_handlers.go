package handlers

import (
	"context"
	"net/http"
	"time"

	"taskAssistant/internal/handlers/dto"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/task"
	"taskAssistant/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_tasks", h.TaskService.ListTasks)
}

func (h *TaskHandler) ListActiveTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_active_tasks", h.TaskService.ListActiveTasks)
}

func (h *TaskHandler) ListCompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_completed_tasks", h.TaskService.ListCompletedTasks)
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request, operation string, fetch func(context.Context, int, int) ([]*task.Task, error)) {
	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}
	page, limit = service.NormalizePage(page, limit)

	tasks, err := fetch(r.Context(), page, limit)
	if err != nil {
		handleServiceError(w, r, err, operation)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("page", page),
		toPayload("limit", limit),
	)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TaskService.CreateTask(r.Context(), request.Title, request.Description)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Task created",
		zap.String("task_id", t.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(t)))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TaskService.UpdateTask(r.Context(), id, service.UpdateTaskParams{
		Title:       request.Title,
		Description: request.Description,
	})
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "complete_task", h.TaskService.CompleteTask)
}

func (h *TaskHandler) ReactivateTask(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "reactivate_task", h.TaskService.ReactivateTask)
}

func (h *TaskHandler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove_task", h.TaskService.RemoveTask)
}

func (h *TaskHandler) mutate(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, uuid.UUID) (*task.Task, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := apply(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, operation)
		return
	}

	logger.Info("HTTP_OUT: Task changed",
		zap.String("operation", operation),
		zap.String("task_id", id.String()),
		zap.String("status", string(t.Status)))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (h *TaskHandler) PermanentlyDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.PermanentlyDeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "permanently_delete_task")
		return
	}

	logger.Info("HTTP_OUT: Task permanently deleted", zap.String("task_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
