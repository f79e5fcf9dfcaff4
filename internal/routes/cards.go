package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
	"github.com/cardsavvy/cardsavvy/internal/verify"
	"github.com/cardsavvy/cardsavvy/internal/wallet"
)

// CardsHandler serves catalog lookup, confirmation and wallet endpoints.
type CardsHandler struct {
	lookup   *catalog.LookupService
	workflow *verify.Workflow
	catalog  catalog.Repository
	wallet   wallet.Repository
	audit    catalog.AuditLog
	logger   *slog.Logger
}

// NewCardsHandler builds the card endpoints handler. The audit log is
// optional; without one lookups leave no persisted trail.
func NewCardsHandler(lookup *catalog.LookupService, workflow *verify.Workflow, catalogRepo catalog.Repository, walletRepo wallet.Repository, audit catalog.AuditLog, logger *slog.Logger) *CardsHandler {
	return &CardsHandler{lookup: lookup, workflow: workflow, catalog: catalogRepo, wallet: walletRepo, audit: audit, logger: logger}
}

// recordLookup writes provenance best-effort; a failed write never fails the
// request.
func (h *CardsHandler) recordLookup(c *fiber.Ctx, name, issuer, outcome, catalogID string) {
	if h.audit == nil {
		return
	}
	userID, _ := c.Locals("user_id").(string)
	err := h.audit.RecordLookup(c.UserContext(), catalog.LookupRecord{
		UserID:    userID,
		CardName:  name,
		Issuer:    issuer,
		Outcome:   outcome,
		CatalogID: catalogID,
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("lookup audit write failed", "outcome", outcome, "error", err)
	}
}

type cardJSON struct {
	ID          string             `json:"id"`
	CardName    string             `json:"card_name"`
	Issuer      string             `json:"issuer"`
	Network     string             `json:"network,omitempty"`
	RewardRules map[string]float64 `json:"reward_rules"`
	Source      string             `json:"source"`
	Status      string             `json:"verification_status"`
	Evidence    *catalog.Evidence  `json:"evidence,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toCardJSON(e catalog.Entry) cardJSON {
	rules := make(map[string]float64, len(e.Rules))
	for cat, rate := range e.Rules {
		rules[string(cat)] = rate
	}
	return cardJSON{
		ID:          e.ID,
		CardName:    e.CardName,
		Issuer:      e.Issuer,
		Network:     e.Network,
		RewardRules: rules,
		Source:      e.Source,
		Status:      e.Status,
		Evidence:    e.Evidence,
		UpdatedAt:   e.UpdatedAt,
	}
}

func rulesFromWire(raw map[string]float64) rewards.Rules {
	rules := make(rewards.Rules, len(raw))
	for name, rate := range raw {
		rules[rewards.Category(name)] = rate
	}
	return rules
}

type lookupRequest struct {
	CardName string `json:"card_name"`
	Issuer   string `json:"issuer"`
	Network  string `json:"network"`
}

// Lookup resolves a typed card name against the catalog. The response is a
// tagged union on "status": found_verified carries the card, and
// needs_confirmation carries a candidate plus extraction provenance.
func (h *CardsHandler) Lookup(c *fiber.Ctx) error {
	var req lookupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.lookup.Lookup(c.UserContext(), req.CardName, req.Issuer, req.Network)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.recordLookup(c, req.CardName, req.Issuer, catalog.LookupOutcomeNotFound, "")
		}
		return respondError(c, err)
	}

	switch res.Status {
	case catalog.StatusFoundVerified:
		h.recordLookup(c, req.CardName, req.Issuer, res.Status, res.Card.ID)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status": res.Status,
			"card":   toCardJSON(res.Card),
		})
	default:
		h.recordLookup(c, req.CardName, req.Issuer, res.Status, res.Candidate.ID)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":         res.Status,
			"candidate":      toCardJSON(res.Candidate),
			"confidence":     res.Confidence,
			"extracted_from": res.ExtractedFrom,
		})
	}
}

type confirmRequest struct {
	CardName   string             `json:"card_name"`
	Issuer     string             `json:"issuer"`
	Network    string             `json:"network"`
	Rules      map[string]float64 `json:"reward_rules"`
	Evidence   *catalog.Evidence  `json:"evidence"`
	Confidence float64            `json:"confidence"`
	LastFour   string             `json:"last_four"`
	Nickname   string             `json:"nickname"`
}

// Confirm stores a user-approved candidate as pending and adds the card to
// the caller's wallet.
func (h *CardsHandler) Confirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	userID, _ := c.Locals("user_id").(string)
	entry, card, err := h.workflow.Confirm(c.UserContext(), userID, verify.ConfirmInput{
		CardName:   req.CardName,
		Issuer:     req.Issuer,
		Network:    req.Network,
		Rules:      rulesFromWire(req.Rules),
		Evidence:   req.Evidence,
		Confidence: req.Confidence,
		LastFour:   req.LastFour,
		Nickname:   req.Nickname,
	})
	if err != nil {
		return respondError(c, err)
	}
	h.recordLookup(c, req.CardName, req.Issuer, catalog.LookupOutcomeConfirmed, entry.ID)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"card":           toCardJSON(entry),
		"wallet_card_id": card.ID,
	})
}

type admitRequest struct {
	CardCatalogID string `json:"card_catalog_id"`
	LastFour      string `json:"last_four"`
	Nickname      string `json:"nickname"`
}

// Admit adds a verified catalog entry to the caller's wallet.
func (h *CardsHandler) Admit(c *fiber.Ctx) error {
	var req admitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.CardCatalogID == "" {
		return respondError(c, &rewards.InvalidInputError{Field: "card_catalog_id", Reason: "must not be blank"})
	}

	userID, _ := c.Locals("user_id").(string)
	card, err := h.workflow.AdmitVerified(c.UserContext(), userID, req.CardCatalogID, req.LastFour, req.Nickname)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"wallet_card_id":  card.ID,
		"card_catalog_id": card.CatalogID,
	})
}

type walletItemJSON struct {
	WalletCardID string   `json:"wallet_card_id"`
	Nickname     string   `json:"nickname,omitempty"`
	LastFour     string   `json:"last_four,omitempty"`
	Card         cardJSON `json:"card"`
}

// Wallet lists the caller's cards joined with their catalog entries.
func (h *CardsHandler) Wallet(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	items, err := h.wallet.ListForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]walletItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, walletItemJSON{
			WalletCardID: item.Card.ID,
			Nickname:     item.Card.Nickname,
			LastFour:     item.Card.LastFour,
			Card:         toCardJSON(item.Entry),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"cards": out})
}

// Catalog lists catalog entries, optionally filtered by verification status.
func (h *CardsHandler) Catalog(c *fiber.Ctx) error {
	status := c.Query("verification")
	if status == "" {
		status = catalog.StatusVerified
	}
	switch status {
	case catalog.StatusVerified, catalog.StatusPending, catalog.StatusRejected:
	default:
		return respondError(c, &rewards.InvalidInputError{Field: "verification", Reason: "must be verified, pending or rejected"})
	}

	entries, err := h.catalog.ListByStatus(c.UserContext(), status)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]cardJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toCardJSON(e))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"cards": out})
}

// Public lists verified catalog entries without authentication, for signup
// and browsing flows.
func (h *CardsHandler) Public(c *fiber.Ctx) error {
	entries, err := h.catalog.ListByStatus(c.UserContext(), catalog.StatusVerified)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]cardJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toCardJSON(e))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"cards": out})
}
