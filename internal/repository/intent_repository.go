package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"agendanotify/internal/models"
)

type intentRepository struct {
	db *sql.DB
}

// NewIntentRepository creates a new dispatch intent repository
func NewIntentRepository(db *sql.DB) IntentRepository {
	return &intentRepository{db: db}
}

// ListDue retrieves pending intents whose scheduled time has passed,
// oldest first
func (r *intentRepository) ListDue(ctx context.Context, now time.Time) ([]*models.DispatchIntent, error) {
	query := `
		SELECT id, tenant_id, name, message_body, target_mode, recipient_ids,
		       scheduled_for, status, total_targets, sent_count, created_at, updated_at
		FROM dispatch_intents
		WHERE status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
	`

	rows, err := r.db.QueryContext(ctx, query, models.IntentStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due intents: %w", err)
	}
	defer rows.Close()

	intents := []*models.DispatchIntent{}
	for rows.Next() {
		intent := &models.DispatchIntent{}
		var recipientIDs pq.Int64Array
		err := rows.Scan(
			&intent.ID,
			&intent.TenantID,
			&intent.Name,
			&intent.MessageBody,
			&intent.TargetMode,
			&recipientIDs,
			&intent.ScheduledFor,
			&intent.Status,
			&intent.TotalTargets,
			&intent.SentCount,
			&intent.CreatedAt,
			&intent.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intent: %w", err)
		}
		intent.RecipientIDs = make([]int, 0, len(recipientIDs))
		for _, id := range recipientIDs {
			intent.RecipientIDs = append(intent.RecipientIDs, int(id))
		}
		intents = append(intents, intent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intents: %w", err)
	}

	return intents, nil
}

// UpdateStatus transitions an intent to a new lifecycle status
func (r *intentRepository) UpdateStatus(ctx context.Context, id int, status models.IntentStatus) error {
	query := `
		UPDATE dispatch_intents
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update intent status: %w", err)
	}

	return nil
}

// Finalize writes the terminal status and the aggregate totals in one
// statement. Totals are set exactly once, here.
func (r *intentRepository) Finalize(ctx context.Context, id int, status models.IntentStatus, totalTargets, sentCount int) error {
	query := `
		UPDATE dispatch_intents
		SET status = $2, total_targets = $3, sent_count = $4, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, totalTargets, sentCount)
	if err != nil {
		return fmt.Errorf("failed to finalize intent: %w", err)
	}

	return nil
}

// FailStale marks intents stuck in sending past the staleness threshold
// as failed. Run at scheduler startup; a crash mid-send can leave
// intents in sending with no one to finish them.
func (r *intentRepository) FailStale(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		UPDATE dispatch_intents
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND updated_at < $3
	`

	result, err := r.db.ExecContext(ctx, query, models.IntentStatusFailed, models.IntentStatusSending, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile stale intents: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reconciled intents: %w", err)
	}

	return int(affected), nil
}
