package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"agendanotify/internal/models"
)

type deliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository creates a new delivery record repository
func NewDeliveryRepository(db *sql.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

// Insert writes one delivery record. Records are append-only; there is
// no update path.
func (r *deliveryRepository) Insert(ctx context.Context, record *models.DeliveryRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO delivery_records
			(id, tenant_id, source_kind, source_id, recipient_phone, message_body,
			 channel_instance_id, status, provider_response, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.ID,
		record.TenantID,
		record.SourceKind,
		record.SourceID,
		record.RecipientPhone,
		record.MessageBody,
		record.ChannelInstanceID,
		record.Status,
		record.ProviderResponse,
		record.LastError,
	).Scan(&record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert delivery record: %w", err)
	}

	return nil
}

// ListBySource retrieves the delivery history of one intent or reminder
// source, oldest first
func (r *deliveryRepository) ListBySource(ctx context.Context, kind models.SourceKind, sourceID int) ([]*models.DeliveryRecord, error) {
	query := `
		SELECT id, tenant_id, source_kind, source_id, recipient_phone, message_body,
		       channel_instance_id, status, provider_response, last_error, created_at
		FROM delivery_records
		WHERE source_kind = $1 AND source_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, kind, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery records: %w", err)
	}
	defer rows.Close()

	records := []*models.DeliveryRecord{}
	for rows.Next() {
		record := &models.DeliveryRecord{}
		err := rows.Scan(
			&record.ID,
			&record.TenantID,
			&record.SourceKind,
			&record.SourceID,
			&record.RecipientPhone,
			&record.MessageBody,
			&record.ChannelInstanceID,
			&record.Status,
			&record.ProviderResponse,
			&record.LastError,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delivery records: %w", err)
	}

	return records, nil
}
