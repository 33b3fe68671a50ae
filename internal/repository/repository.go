package repository

import (
	"context"
	"time"

	"agendanotify/internal/models"
)

// IntentRepository defines dispatch intent data access operations.
// The scheduler is the sole writer of intent status.
type IntentRepository interface {
	ListDue(ctx context.Context, now time.Time) ([]*models.DispatchIntent, error)
	UpdateStatus(ctx context.Context, id int, status models.IntentStatus) error
	Finalize(ctx context.Context, id int, status models.IntentStatus, totalTargets, sentCount int) error
	FailStale(ctx context.Context, olderThan time.Time) (int, error)
}

// ContactRepository defines read-only access to tenant contacts
type ContactRepository interface {
	ListWithPhone(ctx context.Context, tenantID int) ([]*models.Contact, error)
	GetByIDs(ctx context.Context, tenantID int, ids []int) ([]*models.Contact, error)
}

// DeliveryRepository defines append-only delivery record storage
type DeliveryRepository interface {
	Insert(ctx context.Context, record *models.DeliveryRecord) error
	ListBySource(ctx context.Context, kind models.SourceKind, sourceID int) ([]*models.DeliveryRecord, error)
}

// ChannelRepository defines read-only access to channel instances.
// GetConnected returns (nil, nil) when the tenant has no connected
// instance; callers treat that as a configuration failure.
type ChannelRepository interface {
	GetConnected(ctx context.Context, tenantID int) (*models.ChannelInstance, error)
}

// ReminderRuleRepository defines read-only access to reminder rules.
// GetByType returns (nil, nil) when no rule exists for the pair.
type ReminderRuleRepository interface {
	GetByType(ctx context.Context, tenantID int, ruleType models.ReminderType) (*models.ReminderRule, error)
}

// AppointmentRepository loads the denormalized appointment view used to
// fill reminder templates. GetContext returns (nil, nil) when the
// appointment does not exist.
type AppointmentRepository interface {
	GetContext(ctx context.Context, appointmentID int) (*models.AppointmentContext, error)
}
