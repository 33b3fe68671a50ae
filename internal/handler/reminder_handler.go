package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"agendanotify/internal/models"
	"agendanotify/internal/service"
)

// ReminderHandler handles HTTP requests that trigger reminder dispatch
type ReminderHandler struct {
	dispatcher *service.ReminderDispatcher
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(dispatcher *service.ReminderDispatcher) *ReminderHandler {
	return &ReminderHandler{dispatcher: dispatcher}
}

// DispatchReminderRequest is the trigger payload from the booking layer
type DispatchReminderRequest struct {
	AppointmentID int    `json:"appointment_id"`
	Type          string `json:"type"`
}

// Validate validates the dispatch reminder request
func (r *DispatchReminderRequest) Validate() error {
	if r.AppointmentID <= 0 {
		return fmt.Errorf("appointment_id is required")
	}
	if !models.ValidReminderType(r.Type) {
		return fmt.Errorf("invalid reminder type: %q", r.Type)
	}
	return nil
}

// Dispatch handles POST /api/reminders/dispatch. Business-level
// failures (no rule, no channel, provider rejection) come back as a
// 202 with the outcome; only process faults map to error statuses.
func (h *ReminderHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchReminderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if err := req.Validate(); err != nil {
		WriteValidationError(w, err.Error())
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), req.AppointmentID, models.ReminderType(req.Type))
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteAccepted(w, result)
}
