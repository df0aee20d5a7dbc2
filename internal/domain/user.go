package domain

import "time"

// UserType distinguishes staff roles from residents. Values are part of the
// stored document contract.
type UserType string

const (
	UserTypeAdmin    UserType = "ADMIN"
	UserTypeEmployee UserType = "EMPLOYEE"
	UserTypeResident UserType = "RESIDENT"
)

// User models a staff member or resident record. Workload counters are
// display-only: the assignment flow reads them but does not maintain them.
type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    string
	UserType        UserType
	Department      string
	PhoneNumber     string
	Skills          []string
	IsActive        bool
	CurrentWorkload int
	MaxWorkload     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastLoginAt     *time.Time
}

// Staff reports whether the user belongs to municipal staff.
func (u *User) Staff() bool {
	return u.UserType == UserTypeAdmin || u.UserType == UserTypeEmployee
}
