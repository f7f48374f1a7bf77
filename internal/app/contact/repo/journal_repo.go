package repo

import (
	contracts "github.com/murkotick/contact-sync-service/internal/app/contact/contracts"
	"github.com/murkotick/contact-sync-service/internal/models/m_journal"
	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// JournalRepo writes sync journal rows through the committer port.
type JournalRepo struct{}

func NewJournalRepo() *JournalRepo {
	return &JournalRepo{}
}

// InsertOp returns the insert for e. The second result is false for a nil entry.
func (r *JournalRepo) InsertOp(e *contracts.JournalEntry) (committer.Operation, bool) {
	if e == nil {
		return committer.Operation{}, false
	}
	values := m_journal.BuildInsertMap(
		e.FlushID,
		e.Entity,
		e.Inserts,
		e.Updates,
		e.Deletes,
		e.CreatedAtUTC,
	)
	return committer.Insert(m_journal.TableName, e, m_journal.InsertParams(values)), true
}
