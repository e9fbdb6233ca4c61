package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sjpos/pos-api/pkg/jwt"
)

// Locals keys con la identidad del token.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthMiddleware valida el Bearer Token JWT de acceso y copia la identidad a c.Locals.
func AuthMiddleware(accessSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return errorBody(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "authorization header is required")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return errorBody(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "format: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return errorBody(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "empty token")
		}
		id, err := jwt.Parse(accessSecret, tokenString)
		if err != nil {
			return errorBody(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalEmail, id.Email)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

// RequireRole deja pasar solo a los roles indicados. Va después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return errorBody(c, fiber.StatusUnauthorized, "MISSING_ROLE", "token has no role")
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return errorBody(c, fiber.StatusForbidden, CodeForbidden, "you do not have permission to access this resource")
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetEmail devuelve el email del token.
func GetEmail(c *fiber.Ctx) string { return localString(c, LocalEmail) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
