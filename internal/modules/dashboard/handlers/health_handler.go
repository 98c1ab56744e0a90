package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	documentStore string
	emailProvider string
}

func NewHealthHandler(documentStore, emailProvider string) *HealthHandler {
	return &HealthHandler{documentStore: documentStore, emailProvider: emailProvider}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"service":        "rigbot-dashboard",
		"document_store": h.documentStore,
		"email_provider": h.emailProvider,
	})
}
