package tracking

import "fmt"

// ItemState is the lifecycle state of a tracked record.
type ItemState int

const (
	// Unchanged means the record matches what the store holds.
	Unchanged ItemState = iota
	// Added means the record was placed into a collection and has never been persisted.
	Added
	// Modified means a persisted record had at least one non-ignored field changed.
	Modified
	// Deleted means a persisted record was removed and must be deleted from the store.
	Deleted
)

var itemStateNames = [...]string{
	Unchanged: "unchanged",
	Added:     "added",
	Modified:  "modified",
	Deleted:   "deleted",
}

func (s ItemState) String() string {
	if s < Unchanged || s > Deleted {
		return fmt.Sprintf("ItemState(%d)", int(s))
	}
	return itemStateNames[s]
}

// Valid reports whether s is one of the four known states.
func (s ItemState) Valid() bool {
	return s >= Unchanged && s <= Deleted
}

// Op is a container operation that drives a state transition.
type Op int

const (
	OpInsert Op = iota
	OpFieldChange
	OpRemove
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpFieldChange:
		return "field_change"
	case OpRemove:
		return "remove"
	case OpClear:
		return "clear"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Next returns the state a record moves to when op is applied in state current.
// The function is total over every (state, op) pair.
//
// Added and Deleted records do not move on a field change. Removing an Added
// record leaves it Added: the container discards it instead of producing a
// delete intent (see Discards).
func Next(current ItemState, op Op) ItemState {
	switch op {
	case OpInsert:
		return Added
	case OpFieldChange:
		if current == Unchanged {
			return Modified
		}
		return current
	case OpRemove, OpClear:
		if current == Added {
			return Added
		}
		return Deleted
	}
	return current
}

// Discards reports whether applying op in state current drops the record
// without leaving a delete intent behind.
func Discards(current ItemState, op Op) bool {
	return current == Added && (op == OpRemove || op == OpClear)
}
