package tracking

import "sort"

// FieldChangedFunc receives the name of a field that changed on a record.
type FieldChangedFunc func(field string)

// ChangeTracker records which fields of a record have been modified and
// fans every change out to the subscribed listeners.
type ChangeTracker struct {
	dirtyFields map[string]bool
	listeners   map[uint64]FieldChangedFunc
	order       []uint64
	nextID      uint64
}

// NewChangeTracker creates a new ChangeTracker instance.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{
		dirtyFields: make(map[string]bool),
		listeners:   make(map[uint64]FieldChangedFunc),
	}
}

// MarkDirty marks a field as dirty and notifies listeners in subscription order.
func (ct *ChangeTracker) MarkDirty(field string) {
	ct.dirtyFields[field] = true
	for _, id := range append([]uint64(nil), ct.order...) {
		if fn, ok := ct.listeners[id]; ok {
			fn(field)
		}
	}
}

// Dirty checks if a specific field has been marked dirty.
func (ct *ChangeTracker) Dirty(field string) bool {
	return ct.dirtyFields[field]
}

// HasChanges returns true if any fields have been marked dirty.
func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.dirtyFields) > 0
}

// DirtyFields returns the dirty field names in lexical order.
func (ct *ChangeTracker) DirtyFields() []string {
	fields := make([]string, 0, len(ct.dirtyFields))
	for field := range ct.dirtyFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Clear removes all dirty field markers. Listeners stay subscribed.
func (ct *ChangeTracker) Clear() {
	ct.dirtyFields = make(map[string]bool)
}

// Count returns the number of dirty fields.
func (ct *ChangeTracker) Count() int {
	return len(ct.dirtyFields)
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (ct *ChangeTracker) Subscribe(fn FieldChangedFunc) func() {
	if fn == nil {
		return func() {}
	}
	ct.nextID++
	id := ct.nextID
	ct.listeners[id] = fn
	ct.order = append(ct.order, id)
	return func() { ct.unsubscribe(id) }
}

// Listeners returns the number of active subscriptions.
func (ct *ChangeTracker) Listeners() int {
	return len(ct.listeners)
}

func (ct *ChangeTracker) unsubscribe(id uint64) {
	if _, ok := ct.listeners[id]; !ok {
		return
	}
	delete(ct.listeners, id)
	for i, v := range ct.order {
		if v == id {
			ct.order = append(ct.order[:i], ct.order[i+1:]...)
			break
		}
	}
}
