package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardsavvy/cardsavvy/internal/catalog"
	"github.com/cardsavvy/cardsavvy/internal/rewards"
	"github.com/cardsavvy/cardsavvy/internal/verify"
)

// respondError maps domain errors onto HTTP statuses. Unknown errors become
// opaque 500s; their details stay in the audit log.
func respondError(c *fiber.Ctx, err error) error {
	var invalid *rewards.InvalidInputError
	if errors.As(err, &invalid) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": invalid.Reason,
			"field": invalid.Field,
		})
	}

	switch {
	case errors.Is(err, rewards.ErrEmptyWallet):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "wallet has no verified cards",
			"field": "wallet",
		})
	case errors.Is(err, rewards.ErrClassifierTimeout):
		return c.Status(http.StatusGatewayTimeout).JSON(fiber.Map{"error": "merchant classification timed out"})
	case errors.Is(err, rewards.ErrClassifierUnavailable):
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "merchant classification unavailable"})
	case errors.Is(err, catalog.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "card not found"})
	case errors.Is(err, verify.ErrNotVerified):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "card is not verified"})
	case errors.Is(err, verify.ErrConflict),
		errors.Is(err, catalog.ErrDuplicate),
		errors.Is(err, catalog.ErrAlreadyResolved):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
