package tracking

// Column maps one store column to a value read from a record. Field is the
// name the record reports in change notifications; it may be empty when the
// column is derived.
type Column[T any] struct {
	Name  string
	Field string
	Value func(T) any
}

// Mapping is the statically declared column table of an entity type.
type Mapping[T any] struct {
	Table   string
	Columns []Column[T]
}

// Resolve returns the columns named by names, in the order given. Every name
// that does not match a declared column is reported in one ConfigurationError.
func (m Mapping[T]) Resolve(names []string) ([]Column[T], error) {
	byName := make(map[string]Column[T], len(m.Columns))
	for _, c := range m.Columns {
		byName[c.Name] = c
	}

	out := make([]Column[T], 0, len(names))
	var missing []string
	for _, n := range names {
		c, ok := byName[n]
		if !ok || c.Value == nil {
			missing = append(missing, n)
			continue
		}
		out = append(out, c)
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Table: m.Table, Columns: missing, Reason: "unknown columns"}
	}
	return out, nil
}

// Names returns every declared column name.
func (m Mapping[T]) Names() []string {
	out := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		out[i] = c.Name
	}
	return out
}
