package routes

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardsavvy/cardsavvy/internal/verify"
)

const adminTokenHeader = "X-Admin-Token"

// AdminHandler serves reviewer endpoints.
type AdminHandler struct {
	workflow *verify.Workflow
}

// NewAdminHandler builds the admin endpoints handler.
func NewAdminHandler(workflow *verify.Workflow) *AdminHandler {
	return &AdminHandler{workflow: workflow}
}

// AdminToken gates admin routes behind a shared token. With no token
// configured, admin routes are disabled outright.
func AdminToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return fiber.NewError(http.StatusNotFound, "not found")
		}
		got := c.Get(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin token")
		}
		return c.Next()
	}
}

type resolveRequest struct {
	Status string `json:"status"`
}

// Resolve flips a pending catalog entry to verified or rejected.
func (h *AdminHandler) Resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	entry, err := h.workflow.Resolve(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"card": toCardJSON(entry)})
}
