package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus represents valid delivery record statuses
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// SourceKind identifies which entry point produced a delivery record
type SourceKind string

const (
	SourceKindCampaign SourceKind = "campaign"
	SourceKindReminder SourceKind = "reminder"
)

// DeliveryRecord is one immutable row per recipient per send attempt.
// Failed attempts produce a record too; nothing is silently dropped.
type DeliveryRecord struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	TenantID          int            `json:"tenant_id" db:"tenant_id"`
	SourceKind        SourceKind     `json:"source_kind" db:"source_kind"`
	SourceID          int            `json:"source_id" db:"source_id"`
	RecipientPhone    string         `json:"recipient_phone" db:"recipient_phone"`
	MessageBody       string         `json:"message_body" db:"message_body"`
	ChannelInstanceID int            `json:"channel_instance_id" db:"channel_instance_id"`
	Status            DeliveryStatus `json:"status" db:"status"`
	ProviderResponse  *string        `json:"provider_response,omitempty" db:"provider_response"`
	LastError         *string        `json:"last_error,omitempty" db:"last_error"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}
