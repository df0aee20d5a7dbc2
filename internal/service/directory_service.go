package service

import (
	"context"
	"sort"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// DirectoryService supplies the candidate list for assignment: active
// employees, optionally narrowed to a department.
type DirectoryService struct {
	users repository.UserRepository
}

// NewDirectoryService creates the service.
func NewDirectoryService(users repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// ActiveEmployees returns active EMPLOYEE users ordered by full name.
// Department, when non-nil, is an exact match.
func (s *DirectoryService) ActiveEmployees(ctx context.Context, department *string) ([]domain.User, error) {
	active := true
	filter := repository.UserFilter{
		UserTypes:  []domain.UserType{domain.UserTypeEmployee},
		IsActive:   &active,
		Department: department,
	}
	employees, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

// EmployeeByID resolves an employee through the active-employee list rather
// than a point read. An inactive employee therefore resolves to not-found
// even though the record exists; the assignment flow depends on this to keep
// inactive staff out of every path.
func (s *DirectoryService) EmployeeByID(ctx context.Context, id string) (*domain.User, error) {
	employees, err := s.ActiveEmployees(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		if employees[i].ID == id {
			return &employees[i], nil
		}
	}
	return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": id})
}

// Departments returns the distinct departments present across active
// employees, sorted. Feeds the assignment modal's department filter.
func (s *DirectoryService) Departments(ctx context.Context) ([]string, error) {
	employees, err := s.ActiveEmployees(ctx, nil)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	departments := []string{}
	for _, emp := range employees {
		if emp.Department == "" {
			continue
		}
		if _, ok := seen[emp.Department]; ok {
			continue
		}
		seen[emp.Department] = struct{}{}
		departments = append(departments, emp.Department)
	}
	sort.Strings(departments)
	return departments, nil
}

// ActiveStaff returns active EMPLOYEE and ADMIN users; used by analytics and
// export to resolve assignee display names.
func (s *DirectoryService) ActiveStaff(ctx context.Context) ([]domain.User, error) {
	staff, err := s.users.List(ctx, repository.UserFilter{
		UserTypes: []domain.UserType{domain.UserTypeEmployee, domain.UserTypeAdmin},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}
