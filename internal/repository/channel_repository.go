package repository

import (
	"context"
	"database/sql"
	"fmt"

	"agendanotify/internal/models"
)

type channelRepository struct {
	db *sql.DB
}

// NewChannelRepository creates a new channel instance repository
func NewChannelRepository(db *sql.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// GetConnected retrieves the tenant's connected channel instance, or
// (nil, nil) when the tenant has none
func (r *channelRepository) GetConnected(ctx context.Context, tenantID int) (*models.ChannelInstance, error) {
	query := `
		SELECT id, tenant_id, instance_name, connected, created_at, updated_at
		FROM channel_instances
		WHERE tenant_id = $1 AND connected = TRUE
		ORDER BY id ASC
		LIMIT 1
	`

	instance := &models.ChannelInstance{}
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&instance.ID,
		&instance.TenantID,
		&instance.InstanceName,
		&instance.Connected,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel instance: %w", err)
	}

	return instance, nil
}
