package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nos-web/budget/internal/middleware"
)

// Handler exposes the authenticated budget endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a budget HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get returns the caller's current budget.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	st, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(st)
}

// Command applies one command from the request body and returns the updated budget.
func (h *Handler) Command(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var cmd Command
	if err := json.Unmarshal(c.Body(), &cmd); err != nil {
		if errors.Is(err, ErrBadCommand) {
			return err
		}
		return fmt.Errorf("%w: malformed command body", ErrBadCommand)
	}
	st, err := h.service.Execute(c.UserContext(), uid, cmd)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(st)
}

// History lists recent commands; ?limit= bounds the result.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), uid, c.QueryInt("limit", defaultHistoryLimit))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entries": entries})
}

func userID(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals(middleware.LocalUserID).(string)
	if uid == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}
	return uid, nil
}
