package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cardsavvy/cardsavvy/internal/auth"
	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/config"
	"github.com/cardsavvy/cardsavvy/internal/logging"
	"github.com/cardsavvy/cardsavvy/internal/notification"
	"github.com/cardsavvy/cardsavvy/internal/verify"
	"github.com/cardsavvy/cardsavvy/internal/wallet"
)

const testAdminToken = "reviewer-token"

func testConfig() config.Config {
	return config.Config{
		AppName:          "CardSavvy",
		Env:              "development",
		Port:             "8080",
		AuthSecret:       "test-secret",
		AdminToken:       testAdminToken,
		RewardUnit:       "INR",
		ClassifyTimeout:  2 * time.Second,
		ClassifyCacheTTL: time.Minute,
		IdempotencyTTL:   time.Minute,
		LookupRatePerMin: 100,
		ShutdownPeriod:   time.Second,
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: testConfig(), Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.Sign(auth.Claims{Subject: userID, Expires: time.Now().Add(time.Hour)}, "test-secret")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, token)
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()

	// Error middleware responses may be plain text; keep them inspectable.
	decoded := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			decoded["raw"] = string(raw)
		}
	}
	return resp, decoded
}

func TestPublicCatalogNeedsNoAuth(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/cards/public", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	cards, _ := body["cards"].([]any)
	if len(cards) != len(catalog.Seed()) {
		t.Fatalf("expected %d seeded cards, got %d", len(catalog.Seed()), len(cards))
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{fiber.MethodPost, "/api/analyze"},
		{fiber.MethodPost, "/api/cards/lookup"},
		{fiber.MethodGet, "/api/cards/wallet"},
	} {
		resp, _ := doJSON(t, app, route.method, route.path, "", fiber.Map{})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestAdmitAndAnalyzeFlow(t *testing.T) {
	app := newTestApp(t)
	token := bearerToken(t, "user-1")

	// Swiggy HDFC seed card: 10% on dining.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cards/wallet", token, fiber.Map{
		"card_catalog_id": "8d8b49c2-4a87-4a5d-b9be-3e2a6e0f12b2",
		"last_four":       "4242",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admit: expected 201, got %d (%v)", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/cards/wallet", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wallet: expected 200, got %d", resp.StatusCode)
	}
	if cards, _ := body["cards"].([]any); len(cards) != 1 {
		t.Fatalf("expected 1 wallet card, got %v", body["cards"])
	}

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/analyze", token, fiber.Map{
		"merchant": "Swiggy",
		"amount":   "1500",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["category"] != "dining" {
		t.Fatalf("expected dining, got %v", body["category"])
	}
	card, _ := body["recommendedCard"].(map[string]any)
	if card["name"] != "Swiggy HDFC Bank Credit Card" {
		t.Fatalf("unexpected recommendation %v", card)
	}
	reward, _ := body["estimatedReward"].(map[string]any)
	if reward["value"] != "150.00" || reward["unit"] != "INR" || reward["percentage"] != 10.0 {
		t.Fatalf("unexpected reward %v", reward)
	}
	if body["explanation"] == "" {
		t.Fatal("expected an explanation")
	}
}

func TestAnalyzeWithEmptyWallet(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/analyze", bearerToken(t, "user-empty"), fiber.Map{
		"merchant": "Swiggy",
		"amount":   "100",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["field"] != "wallet" {
		t.Fatalf("expected wallet field error, got %v", body)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	app := newTestApp(t)
	token := bearerToken(t, "user-1")

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/analyze", token, fiber.Map{
		"merchant": "Swiggy",
		"amount":   "not-a-number",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["field"] != "amount" {
		t.Fatalf("expected amount field error, got %v", body)
	}
}

func TestLookupVerifiedCard(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cards/lookup", bearerToken(t, "user-1"), fiber.Map{
		"card_name": "Millennia Credit Card",
		"issuer":    "HDFC Bank",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["status"] != "found_verified" {
		t.Fatalf("expected found_verified, got %v", body["status"])
	}
	card, _ := body["card"].(map[string]any)
	if card["card_name"] != "Millennia Credit Card" {
		t.Fatalf("unexpected card %v", card)
	}
}

func TestLookupUnknownCardWithoutExtractor(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/cards/lookup", bearerToken(t, "user-1"), fiber.Map{
		"card_name": "Centurion Card",
		"issuer":    "American Express",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestConfirmAndResolveFlow(t *testing.T) {
	app := newTestApp(t)
	token := bearerToken(t, "user-1")

	rules := map[string]float64{
		"dining": 0.048, "groceries": 0.01, "shopping": 0.012, "travel": 0.048,
		"fuel": 0.01, "utilities": 0.01, "entertainment": 0.01, "others": 0.01,
	}
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cards/confirm", token, fiber.Map{
		"card_name":    "Magnus Credit Card",
		"issuer":       "Axis Bank",
		"network":      "Visa",
		"reward_rules": rules,
		"confidence":   0.6,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("confirm: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	card, _ := body["card"].(map[string]any)
	catalogID, _ := card["id"].(string)
	if catalogID == "" || card["verification_status"] != "pending" {
		t.Fatalf("unexpected confirm response %v", body)
	}

	// Pending cards cannot be admitted by another user yet.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/cards/wallet", bearerToken(t, "user-2"), fiber.Map{
		"card_catalog_id": catalogID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("admit pending: expected 409, got %d", resp.StatusCode)
	}

	// Reviewer approves.
	req := httptest.NewRequest(fiber.MethodPost, fmt.Sprintf("/api/admin/cards/%s/resolve", catalogID),
		bytes.NewReader([]byte(`{"status":"verified"}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Admin-Token", testAdminToken)
	adminResp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if adminResp.StatusCode != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d", adminResp.StatusCode)
	}
	adminResp.Body.Close()

	// Now admission succeeds.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/cards/wallet", bearerToken(t, "user-2"), fiber.Map{
		"card_catalog_id": catalogID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admit verified: expected 201, got %d", resp.StatusCode)
	}

	// Resolving again conflicts.
	req = httptest.NewRequest(fiber.MethodPost, fmt.Sprintf("/api/admin/cards/%s/resolve", catalogID),
		bytes.NewReader([]byte(`{"status":"rejected"}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Admin-Token", testAdminToken)
	adminResp, err = app.Test(req, 5000)
	if err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
	if adminResp.StatusCode != http.StatusConflict {
		t.Fatalf("re-resolve: expected 409, got %d", adminResp.StatusCode)
	}
	adminResp.Body.Close()
}

func TestConfirmRejectsBadCandidates(t *testing.T) {
	app := newTestApp(t)
	token := bearerToken(t, "user-1")

	// A partial rate table is a caller mistake, not a server fault.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cards/confirm", token, fiber.Map{
		"card_name":    "Magnus Credit Card",
		"issuer":       "Axis Bank",
		"reward_rules": map[string]float64{"dining": 0.04},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("incomplete rules: expected 400, got %d (%v)", resp.StatusCode, body)
	}
	if body["field"] != "reward_rules" {
		t.Fatalf("expected reward_rules field error, got %v", body)
	}

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/cards/confirm", token, fiber.Map{
		"card_name": "  ",
		"issuer":    "Axis Bank",
		"reward_rules": map[string]float64{
			"dining": 0.02, "groceries": 0.02, "shopping": 0.02, "travel": 0.02,
			"fuel": 0.02, "utilities": 0.02, "entertainment": 0.02, "others": 0.02,
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank name: expected 400, got %d (%v)", resp.StatusCode, body)
	}
	if body["field"] != "card_name" {
		t.Fatalf("expected card_name field error, got %v", body)
	}
}

func TestLookupWritesAuditTrail(t *testing.T) {
	catalogRepo := catalog.NewMemoryRepository(catalog.Seed()...)
	walletRepo := wallet.NewMemoryRepository(catalogRepo)
	auditLog := catalog.NewMemoryAuditLog()
	lookupSvc := catalog.NewLookupService(catalogRepo, nil, nil, logging.Discard())
	workflow := verify.New(catalogRepo, walletRepo, notification.NewLoggerNotifier(logging.Discard()), logging.Discard())
	handler := NewCardsHandler(lookupSvc, workflow, catalogRepo, walletRepo, auditLog, logging.Discard())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	app.Post("/api/cards/lookup", handler.Lookup)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/cards/lookup", "", fiber.Map{
		"card_name": "Millennia Credit Card",
		"issuer":    "HDFC Bank",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup: expected 200, got %d (%v)", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/cards/lookup", "", fiber.Map{
		"card_name": "Centurion Card",
		"issuer":    "American Express",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("lookup miss: expected 404, got %d", resp.StatusCode)
	}

	records := auditLog.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(records))
	}
	if records[0].Outcome != catalog.StatusFoundVerified || records[0].CatalogID == "" {
		t.Fatalf("unexpected hit record %+v", records[0])
	}
	if records[1].Outcome != catalog.LookupOutcomeNotFound || records[1].CatalogID != "" {
		t.Fatalf("unexpected miss record %+v", records[1])
	}
	for _, rec := range records {
		if rec.UserID != "user-1" {
			t.Fatalf("expected user-1 on record %+v", rec)
		}
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/admin/cards/some-id/resolve",
		bytes.NewReader([]byte(`{"status":"verified"}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCatalogFilterRejectsUnknownStatus(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/cards/catalog?verification=bogus", bearerToken(t, "user-1"), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
