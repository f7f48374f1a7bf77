package tracking

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Option configures a Collection.
type Option func(*options)

type options struct {
	retainRemoved bool
	ignored       []string
	logger        *zap.Logger
}

func defaultOptions() options {
	return options{retainRemoved: true, logger: zap.NewNop()}
}

// WithRetainRemoved selects how removed records are handled. When true (the
// default) records that were persisted before are kept in the removed ledger
// as Deleted so that a later plan deletes them. When false they are marked
// Deleted, logged and dropped; no delete intent survives.
func WithRetainRemoved(retain bool) Option {
	return func(o *options) { o.retainRemoved = retain }
}

// WithIgnoredFields names volatile fields whose changes never mark a record Modified.
func WithIgnoredFields(fields ...string) Option {
	return func(o *options) { o.ignored = append(o.ignored, fields...) }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Collection is an ordered container that tracks the lifecycle state of every
// record it holds and keeps the added, modified and removed ledgers needed to
// plan a synchronization.
//
// A Collection is not safe for concurrent mutation. Reads may run in parallel
// with each other once the counters are clean.
type Collection[T Item] struct {
	items []T

	added    ledger[T]
	modified ledger[T]
	removed  ledger[T]

	subs    map[T]func()
	ignored map[string]struct{}

	retainRemoved bool
	counters      *Counters
	events        observers[T]
	logger        *zap.Logger
}

// NewCollection returns an empty collection.
func NewCollection[T Item](opts ...Option) *Collection[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Collection[T]{
		subs:          make(map[T]func()),
		ignored:       make(map[string]struct{}, len(o.ignored)),
		retainRemoved: o.retainRemoved,
		logger:        o.logger,
	}
	for _, f := range o.ignored {
		c.ignored[f] = struct{}{}
	}
	c.counters = NewCounters(c.recount, c.countChanged)
	return c
}

// NewSeeded returns a collection holding records that already exist in the
// store. Every record is marked Unchanged without passing through Added, and
// the counters are left dirty so that the first read does a single recount.
func NewSeeded[T Item](records []T, opts ...Option) (*Collection[T], error) {
	c := NewCollection[T](opts...)
	c.items = make([]T, 0, len(records))
	for i, r := range records {
		if _, ok := c.subs[r]; ok {
			return nil, fmt.Errorf("seed record %d: %w", i, ErrDuplicateItem)
		}
		r.SetItemState(Unchanged)
		c.subscribe(r)
		c.items = append(c.items, r)
	}
	c.counters.Invalidate()
	return c, nil
}

// Len returns the size of the live sequence.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// At returns the record at index.
func (c *Collection[T]) At(index int) (T, error) {
	if index < 0 || index >= len(c.items) {
		var zero T
		return zero, indexError("at", index, len(c.items))
	}
	return c.items[index], nil
}

// Items returns a copy of the live sequence.
func (c *Collection[T]) Items() []T {
	return slices.Clone(c.items)
}

// IndexOf returns the position of item in the live sequence, or -1.
func (c *Collection[T]) IndexOf(item T) int {
	return slices.Index(c.items, item)
}

// Contains reports whether item is in the live sequence.
func (c *Collection[T]) Contains(item T) bool {
	_, ok := c.subs[item]
	return ok
}

// Observe registers fn for collection events and returns its cancel function.
func (c *Collection[T]) Observe(fn EventFunc[T]) func() {
	return c.events.add(fn)
}

// Insert places item at index and tracks it as Added.
func (c *Collection[T]) Insert(index int, item T) error {
	if index < 0 || index > len(c.items) {
		return indexError("insert", index, len(c.items))
	}
	if c.Contains(item) {
		return ErrDuplicateItem
	}
	c.track(item)
	c.items = slices.Insert(c.items, index, item)
	c.events.emit(Event[T]{Kind: EventItemsAdded, Index: index, Items: []T{item}})
	return nil
}

// Append inserts item at the end of the live sequence.
func (c *Collection[T]) Append(item T) error {
	return c.Insert(len(c.items), item)
}

// AddRange appends items as one batch: a single EventItemsAdded is raised
// and the counters are recomputed once. Nothing is added if any item is
// already present.
func (c *Collection[T]) AddRange(items []T) error {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(items))
	for i, it := range items {
		if _, dup := seen[it]; dup || c.Contains(it) {
			return fmt.Errorf("add range item %d: %w", i, ErrDuplicateItem)
		}
		seen[it] = struct{}{}
	}

	start := len(c.items)
	c.counters.Invalidate()
	for _, it := range items {
		c.track(it)
	}
	c.items = append(c.items, items...)
	c.events.emit(Event[T]{Kind: EventItemsAdded, Index: start, Items: slices.Clone(items)})
	c.counters.Refresh()
	return nil
}

// RemoveAt removes the record at index. A record that was Added is simply
// discarded; any other record becomes Deleted.
func (c *Collection[T]) RemoveAt(index int) error {
	if index < 0 || index >= len(c.items) {
		return indexError("remove", index, len(c.items))
	}
	item := c.items[index]
	c.items = slices.Delete(c.items, index, index+1)
	c.untrack(item, OpRemove)
	c.events.emit(Event[T]{Kind: EventItemRemoved, Index: index, Items: []T{item}})
	return nil
}

// Remove removes the first occurrence of item and reports whether it was found.
func (c *Collection[T]) Remove(item T) bool {
	i := c.IndexOf(item)
	if i < 0 {
		return false
	}
	_ = c.RemoveAt(i)
	return true
}

// SetItem replaces the record at index: the old record is removed as by
// RemoveAt and item is inserted as Added. Replacing a record with itself
// keeps its state, emits no event and is logged at debug level, so an
// Unchanged record is never planned as a delete plus an insert.
func (c *Collection[T]) SetItem(index int, item T) error {
	if index < 0 || index >= len(c.items) {
		return indexError("set", index, len(c.items))
	}
	old := c.items[index]
	if old == item {
		c.logger.Debug("set item with the same record ignored",
			zap.Int("index", index),
			zap.Stringer("state", item.ItemState()),
		)
		return nil
	}
	if c.Contains(item) {
		return ErrDuplicateItem
	}
	c.untrack(old, OpRemove)
	c.track(item)
	c.items[index] = item
	c.events.emit(Event[T]{Kind: EventItemReplaced, Index: index, Items: []T{item}, Old: []T{old}})
	return nil
}

// Clear removes every record as by RemoveAt and empties the live sequence.
func (c *Collection[T]) Clear() {
	if len(c.items) == 0 {
		return
	}
	old := c.items
	c.counters.Invalidate()
	for _, it := range old {
		c.untrack(it, OpClear)
	}
	c.items = nil
	c.events.emit(Event[T]{Kind: EventReset, Index: -1, Old: old})
	c.counters.Refresh()
}

// AcceptChanges marks every ledger record Unchanged and clears the ledgers.
// It is the only way out of Added, Modified and Deleted.
func (c *Collection[T]) AcceptChanges() {
	if !c.HasChanges() {
		return
	}
	c.counters.Invalidate()
	for _, l := range []*ledger[T]{&c.added, &c.modified, &c.removed} {
		for _, it := range l.items {
			it.SetItemState(Unchanged)
		}
		l.clear()
	}
	c.counters.Refresh()
}

// HasChanges reports whether any ledger holds a record.
func (c *Collection[T]) HasChanges() bool {
	return c.added.len()+c.modified.len()+c.removed.len() > 0
}

// ItemsByState returns the records in state s. Added and Modified come from
// the ledgers in insertion order, Deleted from the removed ledger, and
// Unchanged is computed by scanning the live sequence.
func (c *Collection[T]) ItemsByState(s ItemState) []T {
	switch s {
	case Added:
		return c.added.list()
	case Modified:
		return c.modified.list()
	case Deleted:
		return c.removed.list()
	case Unchanged:
		out := make([]T, 0, len(c.items))
		for _, it := range c.items {
			if it.ItemState() == Unchanged {
				out = append(out, it)
			}
		}
		return out
	}
	return nil
}

func (c *Collection[T]) CountUnchanged() int { return c.counters.Count(Unchanged) }
func (c *Collection[T]) CountAdded() int     { return c.counters.Count(Added) }
func (c *Collection[T]) CountModified() int  { return c.counters.Count(Modified) }
func (c *Collection[T]) CountDeleted() int   { return c.counters.Count(Deleted) }

// Counts returns a snapshot of all four counters.
func (c *Collection[T]) Counts() Counts {
	return c.counters.Snapshot()
}

// RetainsRemoved reports whether removed records are kept for deletion.
func (c *Collection[T]) RetainsRemoved() bool {
	return c.retainRemoved
}

// track moves item into the Added ledger and subscribes to it.
func (c *Collection[T]) track(item T) {
	prev := item.ItemState()
	switch prev {
	case Modified:
		c.modified.remove(item)
	case Deleted:
		if c.removed.remove(item) {
			c.counters.Apply(Deleted, -1)
		}
	}
	item.SetItemState(Next(prev, OpInsert))
	c.added.add(item)
	c.counters.Apply(Added, 1)
	c.subscribe(item)
}

// untrack applies a remove or clear transition to an item that has already
// left, or is about to leave, the live sequence.
func (c *Collection[T]) untrack(item T, op Op) {
	c.unsubscribe(item)
	prev := item.ItemState()
	if Discards(prev, op) {
		c.added.remove(item)
		c.counters.Apply(Added, -1)
		return
	}

	switch prev {
	case Unchanged:
		c.counters.Apply(Unchanged, -1)
	case Modified:
		c.modified.remove(item)
		c.counters.Apply(Modified, -1)
	}
	item.SetItemState(Next(prev, op))

	if c.retainRemoved {
		if c.removed.add(item) {
			c.counters.Apply(Deleted, 1)
		}
		return
	}
	c.logger.Debug("dropped removed record",
		zap.Stringer("previous_state", prev),
		zap.Stringer("op", op),
	)
}

func (c *Collection[T]) subscribe(item T) {
	c.subs[item] = item.Subscribe(func(field string) {
		c.onFieldChanged(item, field)
	})
}

func (c *Collection[T]) unsubscribe(item T) {
	if cancel, ok := c.subs[item]; ok {
		cancel()
		delete(c.subs, item)
	}
}

func (c *Collection[T]) onFieldChanged(item T, field string) {
	if _, ok := c.ignored[field]; ok {
		return
	}
	prev := item.ItemState()
	next := Next(prev, OpFieldChange)
	if next == prev {
		return
	}
	item.SetItemState(next)
	if prev == Unchanged && next == Modified {
		c.modified.add(item)
		c.counters.Apply(Unchanged, -1)
		c.counters.Apply(Modified, 1)
	}
}

func (c *Collection[T]) recount() [4]int {
	var n [4]int
	for _, it := range c.items {
		if s := it.ItemState(); s.Valid() && s != Deleted {
			n[s]++
		}
	}
	n[Deleted] = c.removed.len()
	return n
}

func (c *Collection[T]) countChanged(s ItemState, oldCount, newCount int) {
	c.events.emit(Event[T]{Kind: EventCountChanged, Index: -1, State: s, OldCount: oldCount, NewCount: newCount})
}
