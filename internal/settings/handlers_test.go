package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend-bikeredlights/internal/ride"

	"github.com/gofiber/fiber/v2"
)

func newSettingsApp(t *testing.T) *fiber.App {
	t.Helper()
	svc, _ := newTestService(t)
	app := fiber.New()
	middleware := func(c *fiber.Ctx) error {
		c.Locals("rider_id", "rider-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/settings"), svc, middleware)
	return app
}

func TestAutoPauseGetAndPut(t *testing.T) {
	app := newSettingsApp(t)

	req := httptest.NewRequest(http.MethodGet, "/settings/auto-pause", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get: %v status %d", err, resp.StatusCode)
	}
	var out autoPauseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ThresholdSeconds != ride.DefaultAutoPauseThresholdS {
		t.Fatalf("expected default, got %d", out.ThresholdSeconds)
	}

	req = httptest.NewRequest(http.MethodPut, "/settings/auto-pause", strings.NewReader(`{"threshold_seconds":30}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("put: %v status %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/settings/auto-pause", nil)
	resp, _ = app.Test(req)
	out = autoPauseResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ThresholdSeconds != 30 {
		t.Fatalf("expected 30 after put, got %d", out.ThresholdSeconds)
	}
}

func TestAutoPausePutRejectsInvalidThreshold(t *testing.T) {
	app := newSettingsApp(t)

	req := httptest.NewRequest(http.MethodPut, "/settings/auto-pause", strings.NewReader(`{"threshold_seconds":7}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
