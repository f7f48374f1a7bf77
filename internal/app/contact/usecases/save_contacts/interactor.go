package save_contacts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	contracts "github.com/murkotick/contact-sync-service/internal/app/contact/contracts"
	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/models/m_contact"
	"github.com/murkotick/contact-sync-service/internal/pkg/clock"
	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

// ErrNoContacts is returned when the request carries no collection.
var ErrNoContacts = errors.New("save contacts: collection is required")

// Request carries the collection to synchronize. FlushID is optional; a
// retry passes the FlushID of the failed attempt so the journal row keeps it.
type Request struct {
	Contacts *tracking.Collection[*domain.Contact]
	FlushID  string
}

// Result summarizes a flush. Counts exclude the journal row. A failed
// Execute still reports FlushID. The journal CreatedAt is taken per attempt.
type Result struct {
	FlushID string
	Inserts int
	Updates int
	Deletes int
}

// Empty reports whether the flush had nothing to write.
func (r Result) Empty() bool {
	return r.Inserts+r.Updates+r.Deletes == 0
}

// Interactor plans the pending contact changes, appends a journal row and
// commits everything in one transaction.
type Interactor struct {
	Committer          contracts.Committer
	JournalRepo        contracts.JournalRepo
	Clock              clock.Clock
	Logger             *zap.Logger
	ChangedColumnsOnly bool
}

func NewInteractor(cm contracts.Committer, journal contracts.JournalRepo, clk clock.Clock, logger *zap.Logger, changedColumnsOnly bool) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		Committer:          cm,
		JournalRepo:        journal,
		Clock:              clk,
		Logger:             logger,
		ChangedColumnsOnly: changedColumnsOnly,
	}
}

func (it *Interactor) Execute(ctx context.Context, req Request) (Result, error) {
	if req.Contacts == nil {
		return Result{}, ErrNoContacts
	}

	popts := []tracking.PlannerOption{tracking.WithPlannerLogger(it.Logger)}
	if it.ChangedColumnsOnly {
		popts = append(popts, tracking.WithChangedColumnsOnly())
	}
	planner, err := tracking.NewPlanner(m_contact.Mapping(), m_contact.SetColumns, m_contact.KeyColumns, popts...)
	if err != nil {
		return Result{}, err
	}

	res := Result{FlushID: req.FlushID}
	if res.FlushID == "" {
		res.FlushID = uuid.New().String()
	}
	log := it.Logger.With(zap.String("flush_id", res.FlushID))

	journal := func(_ context.Context, plan *committer.Plan) error {
		if plan.IsEmpty() {
			return nil
		}
		res.Inserts, res.Updates, res.Deletes = plan.Counts()
		if it.JournalRepo == nil {
			return nil
		}
		op, ok := it.JournalRepo.InsertOp(&contracts.JournalEntry{
			FlushID:      res.FlushID,
			Entity:       m_contact.TableName,
			Inserts:      res.Inserts,
			Updates:      res.Updates,
			Deletes:      res.Deletes,
			CreatedAtUTC: it.Clock.Now().UTC(),
		})
		if ok {
			plan.Add(op)
		}
		return nil
	}

	flusher := tracking.NewFlusher(req.Contacts, planner, it.Committer,
		tracking.WithPlanHook(journal),
		tracking.WithFlushLogger(log),
	)
	if _, err := flusher.Flush(ctx); err != nil {
		log.Error("save contacts failed", zap.Error(err), zap.Bool("retryable", committer.IsRetryable(err)))
		return Result{FlushID: res.FlushID}, err
	}

	if res.Empty() {
		log.Debug("no contact changes to save")
		return res, nil
	}
	log.Info("contacts saved",
		zap.Int("inserts", res.Inserts),
		zap.Int("updates", res.Updates),
		zap.Int("deletes", res.Deletes),
	)
	return res, nil
}
