package budget

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/nos-web/budget/internal/logging"
	"github.com/nos-web/budget/internal/middleware"
)

func newHandlerApp(t *testing.T, userID string) *fiber.App {
	t.Helper()
	svc := NewService(NewMemoryStore(), nil, logging.Discard())
	if err := svc.Provision(context.Background(), "u-1", "alice"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	h := NewHandler(svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals(middleware.LocalUserID, userID)
		}
		return c.Next()
	})
	app.Get("/user", h.Get)
	app.Post("/user", h.Command)
	return app
}

func TestHandlerReadsAuthenticatedUser(t *testing.T) {
	app := newHandlerApp(t, "u-1")

	req := httptest.NewRequest(fiber.MethodPost, "/user", strings.NewReader(`{"command":"getpaid","amount":"$1,000"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var st State
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.Username != "alice" || st.CurrentBalance != 100_000 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestHandlerWithoutUserIsUnauthorized(t *testing.T) {
	app := newHandlerApp(t, "")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/user", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}
}
