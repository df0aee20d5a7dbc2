package domain

import "time"

// Assignment pseudo-statuses recorded in the audit trail. These never appear
// on the report itself; they exist only inside statusHistory entries and the
// dashboard renders them as assignment events. OldStatus is left empty on
// assignment entries, matching the document schema other readers depend on.
const (
	HistoryStatusAssigned   = "assigned"
	HistoryStatusUnassigned = "unassigned"
)

// StatusHistory is an immutable audit entry written alongside every status
// or assignment change.
type StatusHistory struct {
	ID            string
	ReportID      string
	OldStatus     string
	NewStatus     string
	ChangedBy     string
	ChangedByUser string
	Notes         string
	Timestamp     time.Time
	Automatic     bool
}
