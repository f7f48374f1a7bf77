package tracking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// FlushState is the state of a Flusher.
type FlushState int

const (
	FlushIdle FlushState = iota
	FlushPlanning
	FlushExecuting
	FlushCommitted
	FlushFailed
)

func (s FlushState) String() string {
	switch s {
	case FlushIdle:
		return "idle"
	case FlushPlanning:
		return "planning"
	case FlushExecuting:
		return "executing"
	case FlushCommitted:
		return "committed"
	case FlushFailed:
		return "failed"
	}
	return fmt.Sprintf("FlushState(%d)", int(s))
}

// Committer applies a plan atomically. *committer.Committer satisfies it.
type Committer interface {
	Apply(ctx context.Context, plan *committer.Plan) error
}

// PlanHook may append operations to a freshly built plan before it executes.
type PlanHook func(ctx context.Context, plan *committer.Plan) error

// FlushOption configures a Flusher.
type FlushOption func(*flushOptions)

type flushOptions struct {
	hooks  []PlanHook
	logger *zap.Logger
}

// WithPlanHook registers a hook run after planning and before execution.
func WithPlanHook(h PlanHook) FlushOption {
	return func(o *flushOptions) {
		if h != nil {
			o.hooks = append(o.hooks, h)
		}
	}
}

// WithFlushLogger sets the logger.
func WithFlushLogger(l *zap.Logger) FlushOption {
	return func(o *flushOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Flusher runs the flush protocol for one collection:
// Idle → Planning → Executing → Committed | Failed.
//
// The collection is only touched after the committer reports success, so a
// failed flush can be retried and will produce the same plan.
type Flusher[T Item] struct {
	coll      *Collection[T]
	planner   *Planner[T]
	committer Committer
	hooks     []PlanHook
	logger    *zap.Logger
	state     FlushState
}

func NewFlusher[T Item](c *Collection[T], p *Planner[T], cm Committer, opts ...FlushOption) *Flusher[T] {
	o := flushOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Flusher[T]{
		coll:      c,
		planner:   p,
		committer: cm,
		hooks:     o.hooks,
		logger:    o.logger,
	}
}

// State returns the state reached by the last Flush call.
func (f *Flusher[T]) State() FlushState {
	return f.state
}

// Flush plans the collection, applies the plan and accepts the changes on
// success. It returns the plan it attempted. Store failures, including
// cancellation of ctx, are returned as *TransactionError and leave the
// collection untouched.
func (f *Flusher[T]) Flush(ctx context.Context) (*committer.Plan, error) {
	if f.state == FlushPlanning || f.state == FlushExecuting {
		return nil, ErrFlushInProgress
	}

	f.state = FlushPlanning
	plan := f.planner.Plan(f.coll)
	for _, h := range f.hooks {
		if err := h(ctx, plan); err != nil {
			f.state = FlushFailed
			return plan, fmt.Errorf("plan hook: %w", err)
		}
	}

	inserts, updates, deletes := plan.Counts()
	log := f.logger.With(
		zap.String("table", f.planner.Table()),
		zap.Int("inserts", inserts),
		zap.Int("updates", updates),
		zap.Int("deletes", deletes),
	)

	f.state = FlushExecuting
	if err := f.committer.Apply(ctx, plan); err != nil {
		f.state = FlushFailed
		log.Warn("flush failed", zap.Error(err))
		return plan, &TransactionError{Err: err}
	}

	f.coll.AcceptChanges()
	f.state = FlushCommitted
	log.Debug("flush committed")
	return plan, nil
}
