package models

import "time"

// Contact represents a phone-addressable recipient owned by the
// client-management side of the product. This subsystem only reads them.
type Contact struct {
	ID        int       `json:"id" db:"id"`
	TenantID  int       `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasPhone checks if the contact can be messaged at all
func (c *Contact) HasPhone() bool {
	return c.Phone != ""
}
