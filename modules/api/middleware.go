package api

import (
	"strings"

	"github.com/example/farm-market/modules/market"
	"github.com/gofiber/fiber/v2"
)

// SessionContextKey is the key used to store the session ID in the Fiber context.
const SessionContextKey = "session_id"

// SessionMiddleware resolves the bearer token to a session.
func SessionMiddleware(port market.MarketPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		sessionID, err := port.ValidateToken(c.UserContext(), token)
		if err != nil {
			if market.IsRejection(err, market.CodeSessionNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "unauthorized",
					Message: "Session has ended",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(SessionContextKey, sessionID)
		return c.Next()
	}
}
