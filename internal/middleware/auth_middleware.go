package middleware

import (
	"strings"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"
	"go-invoice-verify/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates the JWT token and sets operator
// info in the request context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Invalid or expired token"})
		}

		// Strict session check against DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"status": "error", "message": "User not found"})
		}

		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Session expired (logged in on another device)"})
		}

		c.Locals("user_id", claims.UserID.String())
		c.Locals("user_email", claims.Email)
		c.Locals("user_name", claims.Name)
		c.Locals("user_role", claims.Role)

		return c.Next()
	}
}

// RequireRole gates a route to specific operator roles. Admin always passes.
func RequireRole(roles ...model.OperatorRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"status": "error", "message": "No role found"})
		}

		if role == string(model.RoleAdmin) {
			return c.Next()
		}
		for _, r := range roles {
			if role == string(r) {
				return c.Next()
			}
		}

		allowed := make([]string, len(roles))
		for i, r := range roles {
			allowed[i] = string(r)
		}
		return c.Status(403).JSON(fiber.Map{
			"status":  "error",
			"message": "Forbidden: requires one of " + strings.Join(allowed, ", ") + " roles",
		})
	}
}
