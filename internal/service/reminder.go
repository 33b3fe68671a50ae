package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"agendanotify/internal/metrics"
	"agendanotify/internal/models"
	"agendanotify/internal/repository"
)

// Reminder skip reasons
const (
	SkipReasonNoRule    = "no_active_rule"
	SkipReasonNoChannel = "no_channel_instance"
)

// ReminderResult summarizes one reminder dispatch invocation. Business
// failures are reported here, never as errors.
type ReminderResult struct {
	AppointmentID int                   `json:"appointment_id"`
	Type          models.ReminderType   `json:"type"`
	Dispatched    bool                  `json:"dispatched"`
	SkipReason    string                `json:"skip_reason,omitempty"`
	Status        models.DeliveryStatus `json:"status,omitempty"`
}

// ReminderDispatcher runs the event-triggered single-recipient path:
// one appointment, one rule, one rendered message, one send attempt,
// one delivery record. It never retries.
type ReminderDispatcher struct {
	appointments repository.AppointmentRepository
	rules        repository.ReminderRuleRepository
	channels     repository.ChannelRepository
	deliveries   repository.DeliveryRepository
	sender       Sender
	logger       zerolog.Logger
}

// NewReminderDispatcher creates a reminder dispatcher
func NewReminderDispatcher(
	appointments repository.AppointmentRepository,
	rules repository.ReminderRuleRepository,
	channels repository.ChannelRepository,
	deliveries repository.DeliveryRepository,
	sender Sender,
	logger zerolog.Logger,
) *ReminderDispatcher {
	return &ReminderDispatcher{
		appointments: appointments,
		rules:        rules,
		channels:     channels,
		deliveries:   deliveries,
		sender:       sender,
		logger:       logger,
	}
}

// Dispatch sends one reminder of the given type for one appointment.
// A missing or inactive rule is a silent skip. A tenant without a
// connected channel instance is a logged skip; no record can reference
// a channel that does not exist. Errors are returned only for
// process-level faults (persistence unreachable, unknown appointment).
func (d *ReminderDispatcher) Dispatch(ctx context.Context, appointmentID int, ruleType models.ReminderType) (*ReminderResult, error) {
	log := d.logger.With().
		Int("appointment_id", appointmentID).
		Str("reminder_type", string(ruleType)).
		Logger()

	result := &ReminderResult{AppointmentID: appointmentID, Type: ruleType}

	appointment, err := d.appointments.GetContext(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment context: %w", err)
	}
	if appointment == nil {
		return nil, &NotFoundError{Resource: "appointment", ID: appointmentID}
	}

	rule, err := d.rules.GetByType(ctx, appointment.TenantID, ruleType)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reminder rule: %w", err)
	}
	if rule == nil || !rule.Active {
		log.Debug().Msg("no active reminder rule, skipping")
		metrics.IncReminder(string(ruleType), "skipped")
		result.SkipReason = SkipReasonNoRule
		return result, nil
	}

	body := Render(rule.MessageBody, appointment.PlaceholderValues())

	instance, err := d.channels.GetConnected(ctx, appointment.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up channel instance: %w", err)
	}
	if instance == nil {
		log.Warn().Int("tenant_id", appointment.TenantID).Msg("tenant has no connected channel instance, reminder not sent")
		metrics.IncReminder(string(ruleType), "skipped")
		result.SkipReason = SkipReasonNoChannel
		return result, nil
	}

	outcome := d.sender.Send(ctx, instance, appointment.ClientPhone, body)

	record := &models.DeliveryRecord{
		TenantID:          appointment.TenantID,
		SourceKind:        models.SourceKindReminder,
		SourceID:          appointmentID,
		RecipientPhone:    appointment.ClientPhone,
		MessageBody:       body,
		ChannelInstanceID: instance.ID,
		Status:            models.DeliveryStatusFailed,
	}
	if outcome.NormalizedPhone != "" {
		record.RecipientPhone = outcome.NormalizedPhone
	}
	if outcome.ProviderResponse != "" {
		providerResponse := outcome.ProviderResponse
		record.ProviderResponse = &providerResponse
	}
	if outcome.OK {
		record.Status = models.DeliveryStatusSent
	} else if outcome.Err != nil {
		lastError := outcome.Err.Error()
		record.LastError = &lastError
	}

	if err := d.deliveries.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert delivery record: %w", err)
	}

	metrics.IncReminder(string(ruleType), string(record.Status))
	metrics.IncMessage(string(record.Status))

	result.Dispatched = true
	result.Status = record.Status
	log.Info().Str("status", string(record.Status)).Msg("reminder dispatched")

	return result, nil
}
