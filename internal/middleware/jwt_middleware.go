package middleware

import (
	"errors"
	"strings"

	"tokoadmin/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Locals keys set for authenticated admin requests.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

var (
	errMissingHeader = errors.New("authorization header is required")
	errHeaderFormat  = errors.New("authorization header format must be 'Bearer <token>'")
)

// AuthRequired rejects admin requests without a valid bearer token and
// stores the token's account in the request locals.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"error":   err.Error(),
			})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected admin token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalUserID, claims["user_id"])
		c.Locals(LocalUsername, claims["username"])
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errHeaderFormat
	}
	return strings.TrimSpace(token), nil
}
