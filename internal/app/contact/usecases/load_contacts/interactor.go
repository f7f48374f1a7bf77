package load_contacts

import (
	"context"
	"fmt"

	contracts "github.com/murkotick/contact-sync-service/internal/app/contact/contracts"
	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

// Interactor loads persisted contacts into a change-tracking collection.
type Interactor struct {
	ReadModel contracts.ReadModel
	Options   []tracking.Option
}

// NewInteractor returns an interactor; opts are passed to the collection
// after the defaults.
func NewInteractor(readModel contracts.ReadModel, opts ...tracking.Option) *Interactor {
	return &Interactor{ReadModel: readModel, Options: opts}
}

// Execute seeds a collection in which every loaded contact is Unchanged.
// Selection changes never mark a contact Modified.
func (it *Interactor) Execute(ctx context.Context) (*tracking.Collection[*domain.Contact], error) {
	contacts, err := it.ReadModel.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	opts := append([]tracking.Option{tracking.WithIgnoredFields(domain.FieldSelected)}, it.Options...)
	return tracking.NewSeeded(contacts, opts...)
}
