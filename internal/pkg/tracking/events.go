package tracking

// EventKind identifies what a collection Event describes.
type EventKind int

const (
	// EventItemsAdded covers Insert, Append and AddRange (one event per call).
	EventItemsAdded EventKind = iota
	EventItemRemoved
	EventItemReplaced
	// EventReset is raised by Clear.
	EventReset
	// EventCountChanged is raised once per counter whose value changed.
	EventCountChanged
)

func (k EventKind) String() string {
	switch k {
	case EventItemsAdded:
		return "items_added"
	case EventItemRemoved:
		return "item_removed"
	case EventItemReplaced:
		return "item_replaced"
	case EventReset:
		return "reset"
	case EventCountChanged:
		return "count_changed"
	}
	return "unknown"
}

// Event is a change notification raised by a Collection.
type Event[T any] struct {
	Kind EventKind

	// Index is the position of the first affected item, or -1.
	Index int
	// Items holds the added items, the removed item, or the new item on replace.
	Items []T
	// Old is the replaced item for EventItemReplaced.
	Old []T

	// State, OldCount and NewCount are set for EventCountChanged.
	State    ItemState
	OldCount int
	NewCount int
}

// EventFunc observes collection events.
type EventFunc[T any] func(Event[T])

type observers[T any] struct {
	fns    map[uint64]EventFunc[T]
	order  []uint64
	nextID uint64
}

func (o *observers[T]) add(fn EventFunc[T]) func() {
	if fn == nil {
		return func() {}
	}
	if o.fns == nil {
		o.fns = make(map[uint64]EventFunc[T])
	}
	o.nextID++
	id := o.nextID
	o.fns[id] = fn
	o.order = append(o.order, id)
	return func() {
		if _, ok := o.fns[id]; !ok {
			return
		}
		delete(o.fns, id)
		for i, v := range o.order {
			if v == id {
				o.order = append(o.order[:i], o.order[i+1:]...)
				break
			}
		}
	}
}

func (o *observers[T]) emit(ev Event[T]) {
	if len(o.order) == 0 {
		return
	}
	for _, id := range append([]uint64(nil), o.order...) {
		if fn, ok := o.fns[id]; ok {
			fn(ev)
		}
	}
}
