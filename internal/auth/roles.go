package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// RequireStaff ensures the caller is an active employee or admin. Residents
// submit reports through a separate channel and never reach the dashboard.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Staff() {
			return apperrors.NewForbidden("staff access required")
		}
		return c.Next()
	}
}

// RequireUserType ensures the principal has one of the allowed user types.
func RequireUserType(allowed ...domain.UserType) fiber.Handler {
	allowedSet := make(map[domain.UserType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.UserType]; !exists {
			return apperrors.NewForbidden("insufficient privileges")
		}
		return c.Next()
	}
}
