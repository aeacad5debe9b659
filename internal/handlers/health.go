package handlers

import (
	"context"
	"net/http"
	"time"

	"taskAssistant/internal/logger"
)

const serviceName = "task-assistant"

type HealthHandler struct {
	checker      HealthChecker
	deploymentID string
}

func NewHealthHandler(checker HealthChecker, deploymentID string) *HealthHandler {
	return &HealthHandler{checker: checker, deploymentID: deploymentID}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.HealthCheck(ctx); err != nil {
		logger.Error("HTTP: Health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("error", codeUnavailable),
			toPayload("service", serviceName),
			toPayload("deployment_id", h.deploymentID),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("deployment_id", h.deploymentID),
	)
}
