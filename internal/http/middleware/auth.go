package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"devconnect/internal/auth"
	"devconnect/internal/metrics"
)

const userIDKey = "user_id"

// TokenHeader is the header the web client sends its session token in.
const TokenHeader = "x-auth-token"

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid session token and stores the
// verified user id for downstream handlers.
// Accepts: x-auth-token: <token> or Authorization: Bearer <token>
func RequireAuth(tokens TokenVerifier, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			metrics.TokenErrors.WithLabelValues("missing").Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "No token, authorization denied",
			})
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			metrics.TokenErrors.WithLabelValues(reason).Inc()
			logger.Debug("Rejected session token", slog.String("reason", reason), slog.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Token is not valid",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the identity verified by RequireAuth, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func tokenFrom(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(TokenHeader)); token != "" {
		return token
	}
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
