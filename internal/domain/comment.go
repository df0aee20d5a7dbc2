package domain

import "time"

// Comment is an append-only staff note attached to a report. Comments are
// never edited or deleted once written.
type Comment struct {
	ID        string
	ReportID  string
	UserID    string
	UserEmail string
	UserType  UserType
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
