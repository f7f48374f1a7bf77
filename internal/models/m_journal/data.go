package m_journal

import (
	"time"

	"github.com/murkotick/contact-sync-service/internal/pkg/committer"
)

// BuildInsertMap constructs the column values of one journal row.
func BuildInsertMap(flushID, entity string, inserts, updates, deletes int, createdAt time.Time) map[string]any {
	return map[string]any{
		ColFlushID:   flushID,
		ColEntity:    entity,
		ColInserts:   int64(inserts),
		ColUpdates:   int64(updates),
		ColDeletes:   int64(deletes),
		ColCreatedAt: createdAt,
	}
}

// InsertParams orders the values of BuildInsertMap by Columns.
func InsertParams(values map[string]any) []committer.Param {
	out := make([]committer.Param, 0, len(Columns))
	for _, c := range Columns {
		if v, ok := values[c]; ok {
			out = append(out, committer.Param{Column: c, Value: v})
		}
	}
	return out
}
