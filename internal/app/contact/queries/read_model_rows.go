package queries

import (
	"context"
	"fmt"
	"sort"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/models/m_contact"
)

// RowSource is implemented by the SQL, Excel and in-memory stores.
type RowSource interface {
	LoadRows(ctx context.Context, table string, columns []string) ([]map[string]any, error)
}

// RowReadModel satisfies contracts.ReadModel over any RowSource.
type RowReadModel struct {
	src RowSource
}

func NewRowReadModel(src RowSource) *RowReadModel {
	return &RowReadModel{src: src}
}

// ListContacts returns contacts ordered by id so every backend seeds the
// same sequence.
func (rm *RowReadModel) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	rows, err := rm.src.LoadRows(ctx, m_contact.TableName, m_contact.AllColumns)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Contact, 0, len(rows))
	for i, row := range rows {
		c, err := m_contact.FromValues(row)
		if err != nil {
			return nil, fmt.Errorf("contact row %d: %w", i, err)
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}
