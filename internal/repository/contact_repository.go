package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"agendanotify/internal/models"
)

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// ListWithPhone retrieves every contact of the tenant that has a
// non-empty phone. Ordered by id for a stable resolution order.
func (r *contactRepository) ListWithPhone(ctx context.Context, tenantID int) ([]*models.Contact, error) {
	query := `
		SELECT id, tenant_id, name, phone, created_at
		FROM contacts
		WHERE tenant_id = $1 AND phone IS NOT NULL AND phone <> ''
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// GetByIDs retrieves the subset of the given ids that belong to the
// tenant and have a non-empty phone. Ids that do not resolve are
// silently dropped.
func (r *contactRepository) GetByIDs(ctx context.Context, tenantID int, ids []int) ([]*models.Contact, error) {
	if len(ids) == 0 {
		return []*models.Contact{}, nil
	}

	query := `
		SELECT id, tenant_id, name, phone, created_at
		FROM contacts
		WHERE tenant_id = $1 AND id = ANY($2) AND phone IS NOT NULL AND phone <> ''
		ORDER BY id ASC
	`

	idArray := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		idArray = append(idArray, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, query, tenantID, idArray)
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts by ids: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// scanContacts scans a contact result set
func scanContacts(rows *sql.Rows) ([]*models.Contact, error) {
	contacts := []*models.Contact{}
	for rows.Next() {
		contact := &models.Contact{}
		err := rows.Scan(
			&contact.ID,
			&contact.TenantID,
			&contact.Name,
			&contact.Phone,
			&contact.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}
