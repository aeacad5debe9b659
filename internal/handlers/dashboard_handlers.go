package handlers

import (
	"net/http"

	"taskAssistant/internal/handlers/dto"
)

type DashboardHandler struct {
	DashboardService DashboardService
}

func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{DashboardService: dashboardService}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.DashboardService.Summary(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "dashboard_summary")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("tables", dto.FromSummary(summary)))
}

func (h *DashboardHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	tasks, err := h.DashboardService.Recent(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err, "dashboard_recent")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}
