package handler

import (
	"net/http"

	"agendanotify/internal/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	checker *service.HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(checker *service.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth handles GET requests to the /health endpoint
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckHealth()

	httpStatus := http.StatusOK
	if status.Status != service.StatusHealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	_ = WriteJSON(w, httpStatus, status)
}
