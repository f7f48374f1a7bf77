package contracts

import (
	"time"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// JournalRepo builds the sync journal write. It returns an operation and
// never applies it.
type JournalRepo interface {
	InsertOp(e *JournalEntry) (committer.Operation, bool)
}

// JournalEntry records one successful flush.
type JournalEntry struct {
	FlushID      string
	Entity       string
	Inserts      int
	Updates      int
	Deletes      int
	CreatedAtUTC time.Time
}
