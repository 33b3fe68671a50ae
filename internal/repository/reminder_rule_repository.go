package repository

import (
	"context"
	"database/sql"
	"fmt"

	"agendanotify/internal/models"
)

type reminderRuleRepository struct {
	db *sql.DB
}

// NewReminderRuleRepository creates a new reminder rule repository
func NewReminderRuleRepository(db *sql.DB) ReminderRuleRepository {
	return &reminderRuleRepository{db: db}
}

// GetByType retrieves the tenant's rule for the given type, or
// (nil, nil) when no rule exists. The active flag is returned as-is;
// skipping inactive rules is the dispatcher's decision.
func (r *reminderRuleRepository) GetByType(ctx context.Context, tenantID int, ruleType models.ReminderType) (*models.ReminderRule, error) {
	query := `
		SELECT id, tenant_id, type, active, message_body, created_at, updated_at
		FROM reminder_rules
		WHERE tenant_id = $1 AND type = $2
		LIMIT 1
	`

	rule := &models.ReminderRule{}
	err := r.db.QueryRowContext(ctx, query, tenantID, ruleType).Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.Type,
		&rule.Active,
		&rule.MessageBody,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder rule: %w", err)
	}

	return rule, nil
}
