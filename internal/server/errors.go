package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nos-web/budget/internal/auth"
	"github.com/nos-web/budget/internal/budget"
	"github.com/nos-web/budget/internal/identity"
)

// errorHandler renders every error as {"error": "..."} with the status its
// kind maps to. Unexpected errors are never echoed to the client; logging them
// is left to middleware.Audit.
func errorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func classify(err error) (int, string) {
	var ferr *fiber.Error
	switch {
	case errors.Is(err, identity.ErrDuplicateUsername):
		return http.StatusConflict, identity.ErrDuplicateUsername.Error()
	case errors.Is(err, identity.ErrInvalidInput), errors.Is(err, budget.ErrBadCommand):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, identity.ErrInvalidCredentials.Error()
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, auth.ErrUnauthenticated.Error()
	case errors.Is(err, identity.ErrNotFound), errors.Is(err, budget.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &ferr):
		if ferr.Code >= http.StatusInternalServerError {
			return ferr.Code, http.StatusText(ferr.Code)
		}
		return ferr.Code, ferr.Message
	}
	return http.StatusInternalServerError, "internal server error"
}
