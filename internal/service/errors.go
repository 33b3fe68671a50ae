package service

import "fmt"

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConfigurationError represents a tenant misconfiguration, such as a
// missing connected channel instance
type ConfigurationError struct {
	TenantID int
	Message  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for tenant %d: %s", e.TenantID, e.Message)
}
