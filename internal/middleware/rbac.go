package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lab-preauth/internal/domain"
)

func RequireRole(requiredRole domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if user.Role != requiredRole && user.Role != domain.RoleAdmin {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func RequireAnyRole(roles ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		if user.Role == domain.RoleAdmin {
			return c.Next()
		}

		return Forbidden("Insufficient permissions for this operation")
	}
}

func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !hasPermission(user.Role, permission) {
			return Forbidden("Insufficient permissions for this operation")
		}

		return c.Next()
	}
}

func hasPermission(role domain.UserRole, permission string) bool {
	permissions := map[domain.UserRole]map[string]bool{
		domain.RoleReviewer: {
			"create_request":  true,
			"view_requests":   true,
			"review_requests": true,
			"view_catalog":    true,
			"view_dashboard":  true,
			"view_activity":   true,
		},
		domain.RoleAdmin: {
			"create_request":  true,
			"view_requests":   true,
			"review_requests": true,
			"view_catalog":    true,
			"manage_catalog":  true,
			"import_catalog":  true,
			"manage_users":    true,
			"view_dashboard":  true,
			"view_activity":   true,
			"view_reports":    true,
		},
		domain.RoleReportsViewer: {
			"view_requests":  true,
			"view_catalog":   true,
			"view_dashboard": true,
			"view_reports":   true,
		},
	}

	if rolePermissions, exists := permissions[role]; exists {
		return rolePermissions[permission]
	}
	return false
}
