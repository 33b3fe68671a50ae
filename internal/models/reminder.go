package models

import "time"

// ReminderType represents valid reminder rule types
type ReminderType string

const (
	ReminderTypeConfirmation ReminderType = "confirmation"
	ReminderTypeDayBefore    ReminderType = "day-before"
	ReminderTypeHourBefore   ReminderType = "hour-before"
)

// ValidReminderType checks if a raw string names a known reminder type
func ValidReminderType(s string) bool {
	switch ReminderType(s) {
	case ReminderTypeConfirmation, ReminderTypeDayBefore, ReminderTypeHourBefore:
		return true
	}
	return false
}

// ReminderRule is a tenant-scoped, typed message template. At most one
// rule is consulted per (tenant, type); an inactive rule skips the
// dispatch silently.
type ReminderRule struct {
	ID          int          `json:"id" db:"id"`
	TenantID    int          `json:"tenant_id" db:"tenant_id"`
	Type        ReminderType `json:"type" db:"type"`
	Active      bool         `json:"active" db:"active"`
	MessageBody string       `json:"message_body" db:"message_body"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// AppointmentContext is the denormalized view of one appointment used to
// fill reminder template placeholders. Loading it is the booking side's
// responsibility; this subsystem only consumes it.
type AppointmentContext struct {
	AppointmentID    int       `json:"appointment_id" db:"appointment_id"`
	TenantID         int       `json:"tenant_id" db:"tenant_id"`
	CompanyName      string    `json:"company_name" db:"company_name"`
	ClientName       string    `json:"client_name" db:"client_name"`
	ClientPhone      string    `json:"client_phone" db:"client_phone"`
	ServiceName      string    `json:"service_name" db:"service_name"`
	ProfessionalName string    `json:"professional_name" db:"professional_name"`
	StartsAt         time.Time `json:"starts_at" db:"starts_at"`
}

// PlaceholderValues flattens the context into the placeholder map the
// template renderer consumes.
func (a *AppointmentContext) PlaceholderValues() map[string]string {
	return map[string]string{
		"companyName":      a.CompanyName,
		"clientName":       a.ClientName,
		"serviceName":      a.ServiceName,
		"professionalName": a.ProfessionalName,
		"appointmentDate":  a.StartsAt.Format("02/01/2006"),
		"appointmentTime":  a.StartsAt.Format("15:04"),
	}
}
