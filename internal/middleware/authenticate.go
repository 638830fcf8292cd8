package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nos-web/budget/internal/auth"
)

// LocalUserID holds the authenticated user identifier.
const LocalUserID = "user_id"

// Authenticate resolves the session token in the Authorization header and
// rejects the request when it does not map to a live session.
func Authenticate(sessions *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		}
		userID, err := sessions.Validate(c.UserContext(), token)
		if errors.Is(err, auth.ErrUnauthenticated) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if err != nil {
			return err
		}

		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}
