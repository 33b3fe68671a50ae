package service

import (
	"context"
	"fmt"

	"agendanotify/internal/models"
	"agendanotify/internal/repository"
)

// RecipientResolver turns an intent's target mode into the ordered list
// of contacts to message. Resolving to an empty list is not an error;
// the caller decides what an empty audience means.
type RecipientResolver struct {
	contacts repository.ContactRepository
}

// NewRecipientResolver creates a new recipient resolver
func NewRecipientResolver(contacts repository.ContactRepository) *RecipientResolver {
	return &RecipientResolver{contacts: contacts}
}

// Resolve returns the contacts to message for one dispatch intent.
// Mode all returns every tenant contact with a phone; mode explicit
// returns only the tenant-owned, phone-bearing subset of the given ids.
// Ids that do not resolve are dropped, not errored.
func (r *RecipientResolver) Resolve(ctx context.Context, tenantID int, mode models.TargetMode, explicitIDs []int) ([]*models.Contact, error) {
	switch mode {
	case models.TargetModeAll:
		return r.contacts.ListWithPhone(ctx, tenantID)
	case models.TargetModeExplicit:
		return r.contacts.GetByIDs(ctx, tenantID, explicitIDs)
	default:
		return nil, fmt.Errorf("unknown target mode: %q", mode)
	}
}
