package tracking

import (
	"go.uber.org/zap"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// PlannerOption configures a Planner.
type PlannerOption func(*plannerOptions)

type plannerOptions struct {
	changedOnly bool
	logger      *zap.Logger
}

// WithChangedColumnsOnly narrows the SET clause of each update to the columns
// whose Field the record reports as dirty. Records that do not report dirty
// fields, or whose dirty fields map to no SET column, get the full SET clause.
func WithChangedColumnsOnly() PlannerOption {
	return func(o *plannerOptions) { o.changedOnly = true }
}

// WithPlannerLogger reports updates the planner drops at debug level.
func WithPlannerLogger(l *zap.Logger) PlannerOption {
	return func(o *plannerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

type dirtyReporter interface {
	DirtyFields() []string
}

// Planner turns the ledgers of a Collection into an ordered Plan:
// inserts for Added records, then updates for Modified records, then
// deletes for Deleted records, each group in ledger order.
type Planner[T Item] struct {
	table       string
	insertCols  []Column[T]
	updateCols  []Column[T]
	keyCols     []Column[T]
	changedOnly bool
	logger      *zap.Logger
}

// NewPlanner resolves setColumns and keyColumns against m. Unknown, duplicate
// or missing names are reported as a *ConfigurationError.
func NewPlanner[T Item](m Mapping[T], setColumns, keyColumns []string, opts ...PlannerOption) (*Planner[T], error) {
	o := plannerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if m.Table == "" {
		return nil, &ConfigurationError{Reason: "mapping has no table"}
	}
	if len(keyColumns) == 0 {
		return nil, &ConfigurationError{Table: m.Table, Reason: "no key columns"}
	}
	if dups := duplicates(setColumns); len(dups) > 0 {
		return nil, &ConfigurationError{Table: m.Table, Columns: dups, Reason: "duplicate set columns"}
	}
	if dups := duplicates(keyColumns); len(dups) > 0 {
		return nil, &ConfigurationError{Table: m.Table, Columns: dups, Reason: "duplicate key columns"}
	}

	setCols, err := m.Resolve(setColumns)
	if err != nil {
		return nil, err
	}
	keyCols, err := m.Resolve(keyColumns)
	if err != nil {
		return nil, err
	}

	isKey := make(map[string]bool, len(keyCols))
	for _, k := range keyCols {
		isKey[k.Name] = true
	}
	updateCols := make([]Column[T], 0, len(setCols))
	for _, c := range setCols {
		if !isKey[c.Name] {
			updateCols = append(updateCols, c)
		}
	}

	return &Planner[T]{
		table:       m.Table,
		insertCols:  setCols,
		updateCols:  updateCols,
		keyCols:     keyCols,
		changedOnly: o.changedOnly,
		logger:      o.logger,
	}, nil
}

// Plan builds the operations needed to bring the store in line with c. It
// does no I/O, and the same collection state always yields an equal plan.
//
// Modified records of a table whose set columns are all keys have nothing to
// update and produce no operation; each skip is logged at debug level.
func (p *Planner[T]) Plan(c *Collection[T]) *committer.Plan {
	plan := committer.NewPlan()

	for _, r := range c.ItemsByState(Added) {
		plan.Add(committer.Insert(p.table, r, params(p.insertCols, r)))
	}
	for _, r := range c.ItemsByState(Modified) {
		cols := p.updateColumns(r)
		if len(cols) == 0 {
			p.logger.Debug("modified record has no set columns, update skipped",
				zap.String("table", p.table))
			continue
		}
		plan.Add(committer.Update(p.table, r, params(cols, r), params(p.keyCols, r)))
	}
	for _, r := range c.ItemsByState(Deleted) {
		plan.Add(committer.Delete(p.table, r, params(p.keyCols, r)))
	}
	return plan
}

// Table returns the target table.
func (p *Planner[T]) Table() string {
	return p.table
}

func (p *Planner[T]) updateColumns(r T) []Column[T] {
	if !p.changedOnly {
		return p.updateCols
	}
	dr, ok := any(r).(dirtyReporter)
	if !ok {
		return p.updateCols
	}
	dirty := make(map[string]bool)
	for _, f := range dr.DirtyFields() {
		dirty[f] = true
	}
	out := make([]Column[T], 0, len(p.updateCols))
	for _, c := range p.updateCols {
		if c.Field != "" && dirty[c.Field] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return p.updateCols
	}
	return out
}

// Plan is a convenience wrapper that builds a Planner and plans c in one call.
func Plan[T Item](c *Collection[T], m Mapping[T], setColumns, keyColumns []string, opts ...PlannerOption) (*committer.Plan, error) {
	p, err := NewPlanner(m, setColumns, keyColumns, opts...)
	if err != nil {
		return nil, err
	}
	return p.Plan(c), nil
}

func params[T any](cols []Column[T], r T) []committer.Param {
	out := make([]committer.Param, len(cols))
	for i, c := range cols {
		out[i] = committer.Param{Column: c.Name, Value: c.Value(r)}
	}
	return out
}

func duplicates(names []string) []string {
	seen := make(map[string]bool, len(names))
	var dups []string
	for _, n := range names {
		if seen[n] {
			dups = append(dups, n)
		}
		seen[n] = true
	}
	return dups
}
