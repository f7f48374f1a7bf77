package tracking

// Counts is a snapshot of the four aggregate counters.
type Counts struct {
	Unchanged int
	Added     int
	Modified  int
	Deleted   int
}

// Get returns the count for state s.
func (c Counts) Get(s ItemState) int {
	switch s {
	case Unchanged:
		return c.Unchanged
	case Added:
		return c.Added
	case Modified:
		return c.Modified
	case Deleted:
		return c.Deleted
	}
	return 0
}

// Pending is the number of records that would produce an operation.
func (c Counts) Pending() int {
	return c.Added + c.Modified + c.Deleted
}

// Counters caches one count per ItemState. Incremental deltas are applied
// while the cache is clean; once invalidated, deltas are dropped and the next
// read (or Refresh) performs a full recount.
type Counters struct {
	values  [4]int
	dirty   bool
	recount func() [4]int
	notify  func(state ItemState, oldCount, newCount int)
}

// NewCounters creates a clean cache with all counts at zero.
// recount must return the true counts indexed by ItemState.
func NewCounters(recount func() [4]int, notify func(state ItemState, oldCount, newCount int)) *Counters {
	return &Counters{recount: recount, notify: notify}
}

// Count returns the cached value for s, recounting first when dirty.
func (c *Counters) Count(s ItemState) int {
	if !s.Valid() {
		return 0
	}
	if c.dirty {
		c.Refresh()
	}
	return c.values[s]
}

// Snapshot returns all four counts, recounting first when dirty.
func (c *Counters) Snapshot() Counts {
	if c.dirty {
		c.Refresh()
	}
	return Counts{
		Unchanged: c.values[Unchanged],
		Added:     c.values[Added],
		Modified:  c.values[Modified],
		Deleted:   c.values[Deleted],
	}
}

// Apply adds delta to the count for s. It is a no-op while the cache is dirty
// so that a pending recount never double counts.
func (c *Counters) Apply(s ItemState, delta int) {
	if c.dirty || delta == 0 || !s.Valid() {
		return
	}
	old := c.values[s]
	c.values[s] = old + delta
	if c.notify != nil {
		c.notify(s, old, c.values[s])
	}
}

// Invalidate marks the cache dirty.
func (c *Counters) Invalidate() {
	c.dirty = true
}

// Dirty reports whether a full recount is pending.
func (c *Counters) Dirty() bool {
	return c.dirty
}

// Refresh recounts immediately and notifies for every count that moved.
func (c *Counters) Refresh() {
	next := c.recount()
	old := c.values
	c.values = next
	c.dirty = false
	if c.notify == nil {
		return
	}
	for s := Unchanged; s <= Deleted; s++ {
		if old[s] != next[s] {
			c.notify(s, old[s], next[s])
		}
	}
}
