package auth

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nos-web/budget/internal/identity"
)

// homeLocation is where a freshly logged-in client goes next.
const homeLocation = "/user"

// Handler exposes the login and logout endpoints.
type Handler struct {
	ids    *identity.Service
	svc    *Service
	logger *slog.Logger
}

func NewHandler(ids *identity.Service, svc *Service, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, svc: svc, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		return err
	}
	token, err := h.svc.Issue(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	if h.logger != nil {
		h.logger.Info("users.login completed", slog.String("user_id", user.ID))
	}
	c.Set(fiber.HeaderLocation, homeLocation)
	return c.Status(http.StatusOK).JSON(token)
}

// Logout discards the session behind the Authorization header.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := BearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return ErrUnauthenticated
	}
	if err := h.svc.Revoke(c.UserContext(), token); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
