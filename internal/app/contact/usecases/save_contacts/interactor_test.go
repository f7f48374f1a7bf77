package save_contacts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/murkotick/contact-sync-service/internal/app/contact/domain"
	"github.com/murkotick/contact-sync-service/internal/app/contact/queries"
	"github.com/murkotick/contact-sync-service/internal/app/contact/repo"
	"github.com/murkotick/contact-sync-service/internal/app/contact/usecases/load_contacts"
	"github.com/murkotick/contact-sync-service/internal/infra/persistence/memory"
	"github.com/murkotick/contact-sync-service/internal/models/m_contact"
	"github.com/murkotick/contact-sync-service/internal/models/m_journal"
	"github.com/murkotick/contact-sync-service/internal/pkg/clock"
	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
	"github.com/murkotick/contact-sync-service/internal/pkg/tracking"
)

var now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newStore() *memory.Store {
	s := memory.NewStore()
	s.DefineTable(m_contact.TableName, m_contact.KeyColumns...)
	s.DefineTable(m_journal.TableName, m_journal.ColFlushID)
	s.Seed(m_contact.TableName,
		memory.Row{m_contact.ColContactID: int64(1), m_contact.ColName: "Ann", m_contact.ColEmail: "ann@example.com"},
		memory.Row{m_contact.ColContactID: int64(2), m_contact.ColName: "Bob", m_contact.ColEmail: "bob@example.com"},
		memory.Row{m_contact.ColContactID: int64(3), m_contact.ColName: "Cid", m_contact.ColEmail: ""},
	)
	return s
}

func load(t *testing.T, s *memory.Store) *tracking.Collection[*domain.Contact] {
	t.Helper()
	coll, err := load_contacts.NewInteractor(queries.NewRowReadModel(s)).Execute(context.Background())
	require.NoError(t, err)
	return coll
}

// edit renames Bob, removes Cid and adds Dee.
func edit(t *testing.T, coll *tracking.Collection[*domain.Contact]) {
	t.Helper()
	bob, err := coll.At(1)
	require.NoError(t, err)
	require.NoError(t, bob.Rename("Bobby"))
	require.NoError(t, coll.RemoveAt(2))
	dee, err := domain.NewContact(4, "Dee", "dee@example.com")
	require.NoError(t, err)
	require.NoError(t, coll.Append(dee))
}

func names(rows []memory.Row) map[int64]string {
	out := make(map[int64]string, len(rows))
	for _, r := range rows {
		out[r[m_contact.ColContactID].(int64)] = r[m_contact.ColName].(string)
	}
	return out
}

func TestExecute_CommitsChangesAndJournal(t *testing.T) {
	s := newStore()
	coll := load(t, s)
	edit(t, coll)

	it := NewInteractor(committer.New(s), repo.NewJournalRepo(), clock.NewFake(now), nil, false)
	res, err := it.Execute(context.Background(), Request{Contacts: coll})
	require.NoError(t, err)

	_, err = uuid.Parse(res.FlushID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserts)
	assert.Equal(t, 1, res.Updates)
	assert.Equal(t, 1, res.Deletes)

	assert.Equal(t, map[int64]string{1: "Ann", 2: "Bobby", 4: "Dee"}, names(s.Rows(m_contact.TableName)))

	journal := s.Rows(m_journal.TableName)
	require.Len(t, journal, 1)
	assert.Equal(t, res.FlushID, journal[0][m_journal.ColFlushID])
	assert.Equal(t, m_contact.TableName, journal[0][m_journal.ColEntity])
	assert.Equal(t, int64(1), journal[0][m_journal.ColInserts])
	assert.Equal(t, now, journal[0][m_journal.ColCreatedAt])

	assert.False(t, coll.HasChanges())
	assert.Equal(t, 3, coll.CountUnchanged())
	assert.Zero(t, coll.CountDeleted())
}

func TestExecute_FailureLeavesCollectionAndStoreUntouched(t *testing.T) {
	s := newStore()
	coll := load(t, s)
	edit(t, coll)
	boom := errors.New("boom")
	s.FailOn(2, boom)

	core, logs := observer.New(zap.ErrorLevel)
	it := NewInteractor(committer.New(s), repo.NewJournalRepo(), clock.NewFake(now), zap.New(core), false)

	_, err := it.Execute(context.Background(), Request{Contacts: coll})
	require.Error(t, err)
	assert.ErrorIs(t, err, tracking.ErrTransactionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("save contacts failed").Len())

	assert.Equal(t, map[int64]string{1: "Ann", 2: "Bob", 3: "Cid"}, names(s.Rows(m_contact.TableName)))
	assert.Empty(t, s.Rows(m_journal.TableName))
	assert.Equal(t, tracking.Counts{Unchanged: 1, Added: 1, Modified: 1, Deleted: 1}, coll.Counts())

	// The hook only fires once, so the retry commits.
	res, err := it.Execute(context.Background(), Request{Contacts: coll})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updates)
	assert.Equal(t, map[int64]string{1: "Ann", 2: "Bobby", 4: "Dee"}, names(s.Rows(m_contact.TableName)))
}

func TestExecute_RetryReusesFlushID(t *testing.T) {
	s := newStore()
	coll := load(t, s)
	edit(t, coll)
	s.FailOn(2, errors.New("boom"))

	it := NewInteractor(committer.New(s), repo.NewJournalRepo(), clock.NewFake(now), nil, false)
	failed, err := it.Execute(context.Background(), Request{Contacts: coll})
	require.Error(t, err)
	require.NotEmpty(t, failed.FlushID)

	res, err := it.Execute(context.Background(), Request{Contacts: coll, FlushID: failed.FlushID})
	require.NoError(t, err)
	assert.Equal(t, failed.FlushID, res.FlushID)

	journal := s.Rows(m_journal.TableName)
	require.Len(t, journal, 1)
	assert.Equal(t, failed.FlushID, journal[0][m_journal.ColFlushID])
}

func TestExecute_NothingToSave(t *testing.T) {
	s := newStore()
	coll := load(t, s)

	it := NewInteractor(committer.New(s), repo.NewJournalRepo(), clock.NewFake(now), nil, false)
	res, err := it.Execute(context.Background(), Request{Contacts: coll})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, s.Rows(m_journal.TableName))
}

func TestExecute_ChangedColumnsOnly(t *testing.T) {
	s := newStore()
	coll := load(t, s)
	ann, err := coll.At(0)
	require.NoError(t, err)
	ann.SetEmail("ann@new.example.com")

	rec := &recordingCommitter{}
	it := NewInteractor(rec, nil, clock.NewFake(now), nil, true)
	_, err = it.Execute(context.Background(), Request{Contacts: coll})
	require.NoError(t, err)

	require.NotNil(t, rec.plan)
	ops := rec.plan.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, []string{m_contact.ColEmail}, committer.Columns(ops[0].Set))
	assert.Equal(t, []any{int64(1)}, committer.Values(ops[0].Keys))
}

func TestExecute_RequiresCollection(t *testing.T) {
	it := NewInteractor(&recordingCommitter{}, nil, clock.NewFake(now), nil, false)
	_, err := it.Execute(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoContacts)
}

type recordingCommitter struct {
	plan *committer.Plan
}

func (r *recordingCommitter) Apply(_ context.Context, plan *committer.Plan) error {
	r.plan = plan
	return nil
}
