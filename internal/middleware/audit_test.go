package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuditLogsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logger))
	app.Get("/resource", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-7")
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set(requestIDHeader, "req-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	var logged map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logged); err != nil {
		t.Fatalf("decode audit line %q: %v", buf.String(), err)
	}
	if logged["method"] != "GET" || logged["path"] != "/resource" {
		t.Fatalf("unexpected request fields in %v", logged)
	}
	if logged["status"] != float64(fiber.StatusOK) {
		t.Fatalf("expected status 200, got %v", logged["status"])
	}
	if logged["request_id"] != "req-42" {
		t.Fatalf("expected request_id req-42, got %v", logged["request_id"])
	}
	if logged["user_id"] != "user-7" {
		t.Fatalf("expected user_id user-7, got %v", logged["user_id"])
	}
}

func TestAuditOmitsUserWhenAnonymous(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logger))
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/public", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	var logged map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logged); err != nil {
		t.Fatalf("decode audit line %q: %v", buf.String(), err)
	}
	if _, ok := logged["user_id"]; ok {
		t.Fatalf("did not expect user_id on anonymous request: %v", logged)
	}
	if logged["request_id"] == "" {
		t.Fatal("expected a generated request_id")
	}
}
