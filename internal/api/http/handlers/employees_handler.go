package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stuurdean/municipality-dashboards/internal/api/dto"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/service"
)

// EmployeesHandler serves the staff directory and assignment candidates.
type EmployeesHandler struct {
	directory   *service.DirectoryService
	assignments *service.AssignmentService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(directory *service.DirectoryService, assignments *service.AssignmentService) *EmployeesHandler {
	return &EmployeesHandler{directory: directory, assignments: assignments}
}

// ListEmployees GET /employees.
func (h *EmployeesHandler) ListEmployees(c *fiber.Ctx) error {
	var department *string
	if v := c.Query("department"); v != "" {
		department = &v
	}
	employees, err := h.directory.ActiveEmployees(c.UserContext(), department)
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, employeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetEmployee GET /employees/:id.
func (h *EmployeesHandler) GetEmployee(c *fiber.Ctx) error {
	employee, err := h.directory.EmployeeByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(employee)})
}

// ListDepartments GET /departments.
func (h *EmployeesHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.directory.Departments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departments})
}

// ListCandidates GET /assignments/candidates.
func (h *EmployeesHandler) ListCandidates(c *fiber.Ctx) error {
	candidates, err := h.assignments.Candidates(c.UserContext(), service.CandidateFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
	})
	if err != nil {
		return err
	}
	items := make([]dto.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, dto.CandidateResponse{
			Employee: employeeResponse(&candidates[i].Employee),
			Workload: dto.WorkloadResponse{
				Current: candidates[i].Workload.Current,
				Max:     candidates[i].Workload.Max,
				Percent: candidates[i].Workload.Percent,
				Band:    string(candidates[i].Workload.Band),
			},
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func employeeResponse(user *domain.User) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		UserType:        user.UserType,
		Department:      user.Department,
		PhoneNumber:     user.PhoneNumber,
		Skills:          user.Skills,
		IsActive:        user.IsActive,
		CurrentWorkload: user.CurrentWorkload,
		MaxWorkload:     user.MaxWorkload,
		CreatedAt:       user.CreatedAt,
		LastLoginAt:     user.LastLoginAt,
	}
}
