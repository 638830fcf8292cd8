package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nos-web/budget/internal/auth"
	"github.com/nos-web/budget/internal/budget"
	"github.com/nos-web/budget/internal/identity"
)

// RegisterUserRoutes wires the public account endpoints. Registration
// provisions an empty budget for the new user.
func RegisterUserRoutes(r fiber.Router, ids *identity.Service, budgets *budget.Service, h *auth.Handler, rateLimiter fiber.Handler, logger *slog.Logger) {
	group := r.Group("/users")

	group.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		user, err := ids.Register(c.UserContext(), identity.Credentials{Username: req.Username, Password: req.Password})
		if err != nil {
			return err
		}
		// A failure here is recovered by lazy initialisation on first access.
		if err := budgets.Provision(c.UserContext(), user.ID, user.Username); err != nil {
			logger.Warn("budget provisioning failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		logger.Info("users.register completed",
			slog.String("user_id", user.ID),
			slog.String("username", user.Username),
			slog.Int("status", http.StatusCreated),
		)
		return c.Status(http.StatusCreated).JSON(fiber.Map{"id": user.ID})
	})

	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/logout", h.Logout)
}

// RegisterBudgetRoutes wires the budget endpoints behind guards. Guards are
// attached per route: a Fiber group prefix "/user" would also match "/users".
func RegisterBudgetRoutes(r fiber.Router, h *budget.Handler, guards ...fiber.Handler) {
	with := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), handler)
	}
	r.Get("/user", with(h.Get)...)
	r.Post("/user", with(h.Command)...)
	r.Get("/user/history", with(h.History)...)
}
