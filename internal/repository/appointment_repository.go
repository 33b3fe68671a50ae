package repository

import (
	"context"
	"database/sql"
	"fmt"

	"agendanotify/internal/models"
)

type appointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

// GetContext loads the denormalized appointment view used to fill
// reminder placeholders, or (nil, nil) when the appointment does not
// exist
func (r *appointmentRepository) GetContext(ctx context.Context, appointmentID int) (*models.AppointmentContext, error) {
	query := `
		SELECT a.id, a.tenant_id, t.name, c.name, c.phone, s.name, p.name, a.starts_at
		FROM appointments a
		JOIN tenants t ON a.tenant_id = t.id
		JOIN contacts c ON a.contact_id = c.id
		JOIN services s ON a.service_id = s.id
		JOIN professionals p ON a.professional_id = p.id
		WHERE a.id = $1
	`

	appointment := &models.AppointmentContext{}
	err := r.db.QueryRowContext(ctx, query, appointmentID).Scan(
		&appointment.AppointmentID,
		&appointment.TenantID,
		&appointment.CompanyName,
		&appointment.ClientName,
		&appointment.ClientPhone,
		&appointment.ServiceName,
		&appointment.ProfessionalName,
		&appointment.StartsAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment context: %w", err)
	}

	return appointment, nil
}
