package dto

import (
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// EmployeeResponse is a directory entry. Password hashes never leave the
// repository layer.
type EmployeeResponse struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	FullName        string          `json:"fullName"`
	UserType        domain.UserType `json:"userType"`
	Department      string          `json:"department,omitempty"`
	PhoneNumber     string          `json:"phoneNumber,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	IsActive        bool            `json:"isActive"`
	CurrentWorkload int             `json:"currentWorkload"`
	MaxWorkload     int             `json:"maxWorkload"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastLoginAt     *time.Time      `json:"lastLoginAt,omitempty"`
}

// WorkloadResponse is the display summary next to each candidate.
type WorkloadResponse struct {
	Current int     `json:"current"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
	Band    string  `json:"band"`
}

// CandidateResponse pairs an employee with workload display data.
type CandidateResponse struct {
	Employee EmployeeResponse `json:"employee"`
	Workload WorkloadResponse `json:"workload"`
}
