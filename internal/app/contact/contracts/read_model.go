package contracts

import (
	"context"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
)

// ReadModel loads persisted contacts.
type ReadModel interface {
	ListContacts(ctx context.Context) ([]*domain.Contact, error)
}
