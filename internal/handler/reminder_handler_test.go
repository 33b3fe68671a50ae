package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendanotify/internal/logger"
	"agendanotify/internal/models"
	"agendanotify/internal/service"
)

type stubAppointmentRepository struct {
	appointment *models.AppointmentContext
}

func (s *stubAppointmentRepository) GetContext(_ context.Context, _ int) (*models.AppointmentContext, error) {
	return s.appointment, nil
}

type stubRuleRepository struct {
	rule *models.ReminderRule
}

func (s *stubRuleRepository) GetByType(_ context.Context, _ int, _ models.ReminderType) (*models.ReminderRule, error) {
	return s.rule, nil
}

type stubChannelRepository struct {
	instance *models.ChannelInstance
}

func (s *stubChannelRepository) GetConnected(_ context.Context, _ int) (*models.ChannelInstance, error) {
	return s.instance, nil
}

type stubDeliveryRepository struct {
	inserted []*models.DeliveryRecord
}

func (s *stubDeliveryRepository) Insert(_ context.Context, record *models.DeliveryRecord) error {
	s.inserted = append(s.inserted, record)
	return nil
}

func (s *stubDeliveryRepository) ListBySource(_ context.Context, _ models.SourceKind, _ int) ([]*models.DeliveryRecord, error) {
	return nil, nil
}

type stubSender struct{}

func (s *stubSender) Send(_ context.Context, _ *models.ChannelInstance, phone, _ string) service.Outcome {
	return service.Outcome{OK: true, NormalizedPhone: "55" + phone, ProviderResponse: `{"status":"sent"}`}
}

func newTestHandler(appointment *models.AppointmentContext, rule *models.ReminderRule, instance *models.ChannelInstance) (*ReminderHandler, *stubDeliveryRepository) {
	deliveries := &stubDeliveryRepository{}
	dispatcher := service.NewReminderDispatcher(
		&stubAppointmentRepository{appointment: appointment},
		&stubRuleRepository{rule: rule},
		&stubChannelRepository{instance: instance},
		deliveries,
		&stubSender{},
		logger.Nop(),
	)
	return NewReminderHandler(dispatcher), deliveries
}

func testAppointment() *models.AppointmentContext {
	return &models.AppointmentContext{
		AppointmentID:    42,
		TenantID:         1,
		CompanyName:      "Studio Bela Vista",
		ClientName:       "Ana Souza",
		ClientPhone:      "11999990001",
		ServiceName:      "Corte Feminino",
		ProfessionalName: "Paula Ribeiro",
		StartsAt:         time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC),
	}
}

func postDispatch(t *testing.T, h *ReminderHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/dispatch", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Dispatch(rec, req)
	return rec
}

func TestDispatchReminderAccepted(t *testing.T) {
	rule := &models.ReminderRule{ID: 1, TenantID: 1, Type: models.ReminderTypeDayBefore, Active: true, MessageBody: "See you on {appointmentDate}, {clientName}!"}
	instance := &models.ChannelInstance{ID: 7, TenantID: 1, InstanceName: "studio-test", Connected: true}
	h, deliveries := newTestHandler(testAppointment(), rule, instance)

	rec := postDispatch(t, h, `{"appointment_id": 42, "type": "day-before"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var result service.ReminderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Dispatched)
	assert.Equal(t, models.DeliveryStatusSent, result.Status)
	assert.Equal(t, 42, result.AppointmentID)

	require.Len(t, deliveries.inserted, 1)
	assert.Equal(t, "See you on 14/03/2026, Ana Souza!", deliveries.inserted[0].MessageBody)
}

func TestDispatchReminderSkippedWithoutRule(t *testing.T) {
	instance := &models.ChannelInstance{ID: 7, TenantID: 1, InstanceName: "studio-test", Connected: true}
	h, deliveries := newTestHandler(testAppointment(), nil, instance)

	rec := postDispatch(t, h, `{"appointment_id": 42, "type": "confirmation"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var result service.ReminderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Dispatched)
	assert.Equal(t, service.SkipReasonNoRule, result.SkipReason)
	assert.Empty(t, deliveries.inserted)
}

func TestDispatchReminderUnknownAppointment(t *testing.T) {
	h, _ := newTestHandler(nil, nil, nil)

	rec := postDispatch(t, h, `{"appointment_id": 99, "type": "confirmation"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "RESOURCE_NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "appointment")
}

func TestDispatchReminderValidation(t *testing.T) {
	h, _ := newTestHandler(testAppointment(), nil, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{
			name: "empty body",
			body: "",
			code: "INVALID_JSON",
		},
		{
			name: "malformed json",
			body: `{"appointment_id":`,
			code: "INVALID_JSON",
		},
		{
			name: "missing appointment id",
			body: `{"type": "confirmation"}`,
			code: "VALIDATION_ERROR",
		},
		{
			name: "unknown reminder type",
			body: `{"appointment_id": 42, "type": "week-before"}`,
			code: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postDispatch(t, h, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
