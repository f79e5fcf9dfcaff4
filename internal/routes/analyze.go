package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
	"github.com/cardsavvy/cardsavvy/internal/wallet"
)

// AnalyzeHandler serves merchant recommendations over the caller's wallet.
type AnalyzeHandler struct {
	engine *rewards.Engine
	wallet wallet.Repository
}

// NewAnalyzeHandler builds the analyze endpoint handler.
func NewAnalyzeHandler(engine *rewards.Engine, walletRepo wallet.Repository) *AnalyzeHandler {
	return &AnalyzeHandler{engine: engine, wallet: walletRepo}
}

type analyzeRequest struct {
	Merchant string `json:"merchant"`
	Amount   string `json:"amount"`
}

type analyzeResponse struct {
	Category        string          `json:"category"`
	Confidence      float64         `json:"confidence"`
	RecommendedCard recommendedCard `json:"recommendedCard"`
	EstimatedReward estimatedReward `json:"estimatedReward"`
	Explanation     string          `json:"explanation"`
}

type recommendedCard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bank string `json:"bank"`
}

type estimatedReward struct {
	Value      string  `json:"value"`
	Unit       string  `json:"unit"`
	Percentage float64 `json:"percentage"`
}

// Analyze classifies the merchant and recommends the best verified card in
// the caller's wallet. Pending and rejected cards never influence the pick.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	userID, _ := c.Locals("user_id").(string)
	items, err := h.wallet.ListForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	candidates := make([]rewards.Candidate, 0, len(items))
	for _, item := range items {
		if item.Entry.Status != catalog.StatusVerified {
			continue
		}
		candidates = append(candidates, rewards.Candidate{
			CardID: item.Entry.ID,
			Name:   item.Entry.CardName,
			Bank:   item.Entry.Issuer,
			Rules:  item.Entry.Rules,
		})
	}

	rec, err := h.engine.Analyze(c.UserContext(), rewards.AnalyzeInput{
		Merchant: req.Merchant,
		Amount:   req.Amount,
		Wallet:   candidates,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(analyzeResponse{
		Category:   string(rec.Category),
		Confidence: rec.Confidence,
		RecommendedCard: recommendedCard{
			ID:   rec.Card.CardID,
			Name: rec.Card.Name,
			Bank: rec.Card.Bank,
		},
		EstimatedReward: estimatedReward{
			Value:      rec.Estimated.Value,
			Unit:       rec.Estimated.Unit,
			Percentage: rec.Estimated.Percentage,
		},
		Explanation: rec.Explanation,
	})
}
