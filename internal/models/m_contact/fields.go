package m_contact

// Field constants for the contacts table.
const (
	TableName = "contacts"

	ColContactID = "contact_id"
	ColName      = "name"
	ColEmail     = "email"
)

var (
	// SetColumns are written on insert and, minus the keys, on update.
	SetColumns = []string{ColContactID, ColName, ColEmail}
	// KeyColumns identify a row for update and delete.
	KeyColumns = []string{ColContactID}
	// AllColumns is the read projection.
	AllColumns = []string{ColContactID, ColName, ColEmail}
)
