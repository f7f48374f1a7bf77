package committer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/murkotick/contact-sync-service/internal/pkg/clock"
	"github.com/murkotick/contact-sync-service/internal/pkg/metrics"
)

// Committer applies a Plan through a Store in one transaction.
type Committer struct {
	store       Store
	metrics     *metrics.Metrics
	logger      *zap.Logger
	clock       clock.Clock
	requireRows bool
}

// Option configures a Committer.
type Option func(*Committer)

// WithMetrics records flush and operation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Committer) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Committer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the clock used to time transactions.
func WithClock(clk clock.Clock) Option {
	return func(c *Committer) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithRequireRowsAffected makes an update or delete that touches no row fail
// the whole plan with ErrNoRowsAffected.
func WithRequireRowsAffected(require bool) Option {
	return func(c *Committer) { c.requireRows = require }
}

func New(store Store, opts ...Option) *Committer {
	c := &Committer{
		store:  store,
		logger: zap.NewNop(),
		clock:  clock.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply executes the plan in order inside a single store transaction. The
// first failing operation aborts the transaction; later operations are not
// attempted and the returned error is an *OpError.
func (c *Committer) Apply(ctx context.Context, plan *Plan) error {
	if plan.IsEmpty() {
		c.metrics.ObserveFlush(metrics.OutcomeEmpty, 0)
		return nil
	}
	if c.store == nil {
		return ErrNilStore
	}

	start := c.clock.Now()
	err := c.store.RunInTransaction(ctx, func(ctx context.Context, ex Executor) error {
		for i, op := range plan.Operations() {
			if err := ctx.Err(); err != nil {
				return &OpError{Index: i, Op: op, Err: err}
			}
			if err := c.execute(ctx, ex, op); err != nil {
				return &OpError{Index: i, Op: op, Err: err}
			}
			c.metrics.ObserveOperation(op.Kind.String())
		}
		return nil
	})
	elapsed := c.clock.Now().Sub(start)

	if err != nil {
		c.metrics.ObserveFlush(metrics.OutcomeFailed, elapsed)
		c.logger.Warn("plan rolled back",
			zap.Int("operations", plan.Len()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return err
	}
	c.metrics.ObserveFlush(metrics.OutcomeCommitted, elapsed)
	c.logger.Debug("plan committed",
		zap.Int("operations", plan.Len()),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (c *Committer) execute(ctx context.Context, ex Executor, op Operation) error {
	var (
		n   int64
		err error
	)
	switch op.Kind {
	case OpInsert:
		n, err = ex.ExecuteInsert(ctx, op.Table, op.Set)
	case OpUpdate:
		n, err = ex.ExecuteUpdate(ctx, op.Table, op.Set, op.Keys)
	case OpDelete:
		n, err = ex.ExecuteDelete(ctx, op.Table, op.Keys)
	default:
		return fmt.Errorf("unknown operation kind %d", int(op.Kind))
	}
	if err != nil {
		return err
	}
	if n == 0 && op.Kind != OpInsert {
		if c.requireRows {
			return ErrNoRowsAffected
		}
		c.logger.Debug("operation matched no rows", zap.Stringer("operation", op))
	}
	return nil
}
