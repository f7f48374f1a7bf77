package m_journal

const (
	TableName = "sync_journal"

	ColFlushID   = "flush_id"
	ColEntity    = "entity"
	ColInserts   = "inserts"
	ColUpdates   = "updates"
	ColDeletes   = "deletes"
	ColCreatedAt = "created_at"
)

// Columns lists the journal columns in table order.
var Columns = []string{ColFlushID, ColEntity, ColInserts, ColUpdates, ColDeletes, ColCreatedAt}
