package models

import (
	"fmt"
	"time"
)

// IntentStatus represents valid dispatch intent statuses
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSending   IntentStatus = "sending"
	IntentStatusCompleted IntentStatus = "completed"
	IntentStatusFailed    IntentStatus = "failed"
)

// TargetMode represents how an intent's audience is selected
type TargetMode string

const (
	TargetModeAll      TargetMode = "all"
	TargetModeExplicit TargetMode = "explicit"
)

// DispatchIntent is a tenant-scoped request to send one message to a
// resolved audience. It is created elsewhere in status pending and is
// mutated only by the campaign scheduler.
type DispatchIntent struct {
	ID           int          `json:"id" db:"id"`
	TenantID     int          `json:"tenant_id" db:"tenant_id"`
	Name         string       `json:"name" db:"name"`
	MessageBody  string       `json:"message_body" db:"message_body"`
	TargetMode   TargetMode   `json:"target_mode" db:"target_mode"`
	RecipientIDs []int        `json:"recipient_ids,omitempty" db:"recipient_ids"`
	ScheduledFor time.Time    `json:"scheduled_for" db:"scheduled_for"`
	Status       IntentStatus `json:"status" db:"status"`
	TotalTargets int          `json:"total_targets" db:"total_targets"`
	SentCount    int          `json:"sent_count" db:"sent_count"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Validate checks if the intent fields are consistent
func (i *DispatchIntent) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("intent name is required")
	}
	if i.MessageBody == "" {
		return fmt.Errorf("message body is required")
	}
	if i.TargetMode != TargetModeAll && i.TargetMode != TargetModeExplicit {
		return fmt.Errorf("invalid target mode: must be 'all' or 'explicit'")
	}
	if i.TargetMode == TargetModeExplicit && len(i.RecipientIDs) == 0 {
		return fmt.Errorf("explicit target mode requires a non-empty recipient list")
	}
	return nil
}

// IsDue checks if the intent should be picked up by the scheduler
func (i *DispatchIntent) IsDue(now time.Time) bool {
	return i.Status == IntentStatusPending && !i.ScheduledFor.After(now)
}

// IsTerminal checks if the intent reached a final status
func (i *DispatchIntent) IsTerminal() bool {
	return i.Status == IntentStatusCompleted || i.Status == IntentStatusFailed
}
