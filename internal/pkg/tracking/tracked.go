package tracking

// Record is the contract every tracked record satisfies.
//
// The collection owns the state: application code reads ItemState but only
// the collection calls SetItemState.
type Record interface {
	ItemState() ItemState
	SetItemState(ItemState)
	Subscribe(fn FieldChangedFunc) (unsubscribe func())
}

// Item is the constraint for collection elements. Records are expected to be
// pointers so that identity survives mutation.
type Item interface {
	comparable
	Record
}

// Tracked implements Record and is meant to be embedded in entity structs.
// The zero value is ready to use.
type Tracked struct {
	state   ItemState
	changes *ChangeTracker
}

func (t *Tracked) ItemState() ItemState {
	return t.state
}

// SetItemState sets the lifecycle state. Moving to Unchanged forgets the
// dirty field markers.
func (t *Tracked) SetItemState(s ItemState) {
	t.state = s
	if s == Unchanged && t.changes != nil {
		t.changes.Clear()
	}
}

func (t *Tracked) Subscribe(fn FieldChangedFunc) func() {
	return t.Changes().Subscribe(fn)
}

// Changes returns the record's change tracker.
func (t *Tracked) Changes() *ChangeTracker {
	if t.changes == nil {
		t.changes = NewChangeTracker()
	}
	return t.changes
}

// NotifyFieldChanged marks field dirty and notifies subscribers.
// Entity setters call it after a real value change.
func (t *Tracked) NotifyFieldChanged(field string) {
	t.Changes().MarkDirty(field)
}

// DirtyFields returns the fields changed since the record was last Unchanged.
func (t *Tracked) DirtyFields() []string {
	if t.changes == nil {
		return nil
	}
	return t.changes.DirtyFields()
}
