package queries

import (
	"context"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/models/m_contact"
)

// SpannerReadModel satisfies contracts.ReadModel against Cloud Spanner.
type SpannerReadModel struct {
	Client *spanner.Client
}

func NewSpannerReadModel(client *spanner.Client) *SpannerReadModel {
	return &SpannerReadModel{Client: client}
}

// ListContacts reads every contact in primary key order.
func (rm *SpannerReadModel) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	iter := rm.Client.Single().Read(ctx, m_contact.TableName, spanner.AllKeys(), m_contact.AllColumns)
	defer iter.Stop()

	var out []*domain.Contact
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		c, err := m_contact.FromSpannerRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
}
