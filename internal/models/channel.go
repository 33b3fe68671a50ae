package models

import "time"

// ChannelInstance is one tenant's connected outbound messaging endpoint.
// The provider base URL and API key are global configuration; the
// instance name routes the send call to the tenant's account.
type ChannelInstance struct {
	ID           int       `json:"id" db:"id"`
	TenantID     int       `json:"tenant_id" db:"tenant_id"`
	InstanceName string    `json:"instance_name" db:"instance_name"`
	Connected    bool      `json:"connected" db:"connected"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
