package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

func TestActiveEmployeesFiltersTypeAndActivity(t *testing.T) {
	store := newFakeStore()
	store.addUser(domain.User{FullName: "Maya Okafor", UserType: domain.UserTypeEmployee, Department: "Roads", IsActive: true})
	store.addUser(domain.User{FullName: "Retired Employee", UserType: domain.UserTypeEmployee, IsActive: false})
	store.addUser(domain.User{FullName: "Site Admin", UserType: domain.UserTypeAdmin, IsActive: true})
	store.addUser(domain.User{FullName: "A Resident", UserType: domain.UserTypeResident, IsActive: true})
	svc := NewDirectoryService(&fakeUserRepo{store: store})

	employees, err := svc.ActiveEmployees(context.Background(), nil)
	if err != nil {
		t.Fatalf("ActiveEmployees: %v", err)
	}
	if len(employees) != 1 || employees[0].FullName != "Maya Okafor" {
		t.Fatalf("employees = %+v, want only active EMPLOYEE users", employees)
	}
}

func TestEmployeeByIDInactiveIsNotFound(t *testing.T) {
	store := newFakeStore()
	inactive := store.addUser(domain.User{FullName: "Retired Employee", UserType: domain.UserTypeEmployee, IsActive: false})
	svc := NewDirectoryService(&fakeUserRepo{store: store})

	// the record exists but is resolved through the active list
	_, err := svc.EmployeeByID(context.Background(), inactive.ID)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND for inactive employee, got %v", err)
	}
}

func TestDepartmentsDistinctSorted(t *testing.T) {
	store := newFakeStore()
	store.addUser(domain.User{FullName: "A", UserType: domain.UserTypeEmployee, Department: "Water", IsActive: true})
	store.addUser(domain.User{FullName: "B", UserType: domain.UserTypeEmployee, Department: "Roads", IsActive: true})
	store.addUser(domain.User{FullName: "C", UserType: domain.UserTypeEmployee, Department: "Roads", IsActive: true})
	store.addUser(domain.User{FullName: "D", UserType: domain.UserTypeEmployee, Department: "", IsActive: true})
	svc := NewDirectoryService(&fakeUserRepo{store: store})

	departments, err := svc.Departments(context.Background())
	if err != nil {
		t.Fatalf("Departments: %v", err)
	}
	if len(departments) != 2 || departments[0] != "Roads" || departments[1] != "Water" {
		t.Errorf("departments = %v, want [Roads Water]", departments)
	}
}
