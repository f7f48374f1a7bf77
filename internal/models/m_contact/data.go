package m_contact

import (
	"fmt"
	"strconv"

	"cloud.google.com/go/spanner"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

// Mapping returns the column table for contacts.
func Mapping() tracking.Mapping[*domain.Contact] {
	return tracking.Mapping[*domain.Contact]{
		Table: TableName,
		Columns: []tracking.Column[*domain.Contact]{
			{Name: ColContactID, Value: func(c *domain.Contact) any { return c.ID() }},
			{Name: ColName, Field: domain.FieldName, Value: func(c *domain.Contact) any { return c.Name() }},
			{Name: ColEmail, Field: domain.FieldEmail, Value: func(c *domain.Contact) any { return c.Email() }},
		},
	}
}

// FromValues hydrates a contact from a column -> value row as returned by the
// SQL, Excel and in-memory stores.
func FromValues(row map[string]any) (*domain.Contact, error) {
	id, err := toInt64(row[ColContactID])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColContactID, err)
	}
	return domain.NewContact(id, toString(row[ColName]), toString(row[ColEmail]))
}

// FromSpannerRow hydrates a contact from a row read with AllColumns.
func FromSpannerRow(row *spanner.Row) (*domain.Contact, error) {
	var (
		id    int64
		name  string
		email spanner.NullString
	)
	if err := row.Columns(&id, &name, &email); err != nil {
		return nil, fmt.Errorf("decode contact row: %w", err)
	}
	return domain.NewContact(id, name, email.StringVal)
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case nil:
		return 0, fmt.Errorf("missing value")
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
