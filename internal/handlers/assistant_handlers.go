package handlers

import (
	"context"
	"net/http"

	"taskAssistant/internal/handlers/dto"
	"taskAssistant/internal/logger"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AssistantHandler struct {
	AssistantService AssistantService
}

func NewAssistantHandler(assistantService AssistantService) *AssistantHandler {
	return &AssistantHandler{
		AssistantService: assistantService,
	}
}

func (h *AssistantHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var request dto.CreateThreadRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	th, err := h.AssistantService.CreateThread(r.Context(), request.Title)
	if err != nil {
		handleServiceError(w, r, err, "create_thread")
		return
	}

	logger.Info("HTTP_OUT: Thread created", zap.String("thread_id", th.ID.String()))
	responseWithJSON(w, http.StatusCreated, toPayload("thread", dto.FromThread(th)))
}

func (h *AssistantHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_threads", h.AssistantService.ListThreads)
}

func (h *AssistantHandler) ListActiveThreads(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_active_threads", h.AssistantService.ListActiveThreads)
}

func (h *AssistantHandler) list(w http.ResponseWriter, r *http.Request, operation string, fetch func(context.Context, int, int) ([]*thread.Thread, error)) {
	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}
	page, limit = service.NormalizePage(page, limit)

	threads, err := fetch(r.Context(), page, limit)
	if err != nil {
		handleServiceError(w, r, err, operation)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("threads", dto.FromThreadList(threads)),
		toPayload("page", page),
		toPayload("limit", limit),
	)
}

func (h *AssistantHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	details, err := h.AssistantService.GetThread(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_thread")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("thread", dto.FromThread(details.Thread)),
		toPayload("messages", dto.FromMessageList(details.Messages)),
	)
}

func (h *AssistantHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.SendMessageRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, err := h.AssistantService.SendMessage(r.Context(), id, request.Content)
	if err != nil {
		handleServiceError(w, r, err, "send_message")
		return
	}

	responseWithJSON(w, http.StatusCreated,
		toPayload("thread", dto.FromThread(result.Thread)),
		toPayload("user_message", dto.FromMessage(result.UserMessage)),
		toPayload("assistant_message", dto.FromMessage(result.AssistantMessage)),
	)
}

func (h *AssistantHandler) UpdateThread(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateThreadRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	th, err := h.AssistantService.UpdateThread(r.Context(), id, service.UpdateThreadParams{
		Title:  request.Title,
		Status: request.Status,
	})
	if err != nil {
		handleServiceError(w, r, err, "update_thread")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("thread", dto.FromThread(th)))
}

func (h *AssistantHandler) ArchiveThread(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "archive_thread", h.AssistantService.ArchiveThread)
}

func (h *AssistantHandler) UnarchiveThread(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "unarchive_thread", h.AssistantService.UnarchiveThread)
}

func (h *AssistantHandler) mutate(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, uuid.UUID) (*thread.Thread, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	th, err := apply(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, operation)
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("thread", dto.FromThread(th)))
}

func (h *AssistantHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.AssistantService.DeleteThread(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_thread")
		return
	}

	logger.Info("HTTP_OUT: Thread deleted", zap.String("thread_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
