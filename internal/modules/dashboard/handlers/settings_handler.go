package handlers

import (
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/widget"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetMain godoc
// @Summary Main dashboard page
// @Description Client name, widget secret and embed script
// @Tags Settings
// @Produce json
// @Success 200 {object} services.PageView
// @Success 202 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /client [get]
func (h *SettingsHandler) GetMain(c *fiber.Ctx) error {
	view, err := h.settingsService.LoadMain(c.UserContext(), auth.IdentityFrom(c))
	return h.render(c, view, err)
}

// SaveMain godoc
// @Summary Save main dashboard page
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body services.SaveMainRequest true "Main page fields"
// @Success 200 {object} services.PageView
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /client [post]
func (h *SettingsHandler) SaveMain(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident == nil {
		return auth.AccessDenied(c)
	}
	var req services.SaveMainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	view, err := h.settingsService.SaveMain(c.UserContext(), ident, req, requestMeta(c))
	return h.render(c, view, err)
}

// GetChatbot godoc
// @Summary Chatbot settings page
// @Tags Settings
// @Produce json
// @Success 200 {object} services.PageView
// @Success 202 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /client/chatbot-settings [get]
func (h *SettingsHandler) GetChatbot(c *fiber.Ctx) error {
	view, err := h.settingsService.LoadChatbot(c.UserContext(), auth.IdentityFrom(c))
	return h.render(c, view, err)
}

// SaveChatbot godoc
// @Summary Save chatbot settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body services.SaveChatbotRequest true "Chatbot fields"
// @Success 200 {object} services.PageView
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /client/chatbot-settings [post]
func (h *SettingsHandler) SaveChatbot(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident == nil {
		return auth.AccessDenied(c)
	}
	var req services.SaveChatbotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	view, err := h.settingsService.SaveChatbot(c.UserContext(), ident, req, requestMeta(c))
	return h.render(c, view, err)
}

// PromptPreview godoc
// @Summary Preview the rendered base prompt
// @Tags Settings
// @Produce json
// @Success 200 {object} services.PromptPreview
// @Failure 401 {object} map[string]interface{}
// @Router /client/chatbot-settings/prompt-preview [get]
func (h *SettingsHandler) PromptPreview(c *fiber.Ctx) error {
	preview, err := h.settingsService.PromptPreview(c.UserContext(), auth.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(preview)
}

// GetLead godoc
// @Summary Lead capture settings page
// @Tags Settings
// @Produce json
// @Success 200 {object} services.PageView
// @Failure 401 {object} map[string]interface{}
// @Router /client/lead-settings [get]
func (h *SettingsHandler) GetLead(c *fiber.Ctx) error {
	view, err := h.settingsService.LoadLead(c.UserContext(), auth.IdentityFrom(c))
	return h.render(c, view, err)
}

// SaveLead godoc
// @Summary Save lead capture settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body services.SaveLeadRequest true "Lead fields"
// @Success 200 {object} services.PageView
// @Failure 401 {object} map[string]interface{}
// @Router /client/lead-settings [post]
func (h *SettingsHandler) SaveLead(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident == nil {
		return auth.AccessDenied(c)
	}
	var req services.SaveLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	view, err := h.settingsService.SaveLead(c.UserContext(), ident, req, requestMeta(c))
	return h.render(c, view, err)
}

// SendLeadTest godoc
// @Summary Send a test lead notification email
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /client/lead-settings/test-email [post]
func (h *SettingsHandler) SendLeadTest(c *fiber.Ctx) error {
	to, err := h.settingsService.SendLeadTest(c.UserContext(), auth.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Correo de prueba enviado",
		"to":      to,
	})
}

// History godoc
// @Summary Settings change history
// @Tags Settings
// @Produce json
// @Param limit query int false "Max entries" default(50)
// @Success 200 {array} audit.AuditLog
// @Failure 401 {object} map[string]interface{}
// @Router /client/history [get]
func (h *SettingsHandler) History(c *fiber.Ctx) error {
	logs, err := h.settingsService.History(c.UserContext(), auth.IdentityFrom(c), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(logs)
}

// EmbedScript godoc
// @Summary Widget embed script
// @Description Script tag to paste on the client's website
// @Tags Widget
// @Produce plain
// @Success 200 {string} string
// @Failure 401 {object} map[string]interface{}
// @Router /client/embed-script [get]
func (h *SettingsHandler) EmbedScript(c *fiber.Ctx) error {
	view, err := h.settingsService.LoadMain(c.UserContext(), auth.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	form, ok := view.Form.(services.MainForm)
	if !ok {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"phase": view.Phase})
	}
	c.Type("txt", "utf-8")
	return c.SendString(form.EmbedScript)
}

// WhatsAppQR godoc
// @Summary WhatsApp QR code
// @Description PNG QR code linking to the stored WhatsApp number
// @Tags Widget
// @Produce png
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /client/whatsapp-qr.png [get]
func (h *SettingsHandler) WhatsAppQR(c *fiber.Ctx) error {
	view, err := h.settingsService.LoadChatbot(c.UserContext(), auth.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	form, ok := view.Form.(services.ChatbotForm)
	if !ok {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"phase": view.Phase})
	}

	png, err := widget.WhatsAppQR(form.WhatsAppNumber)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No hay un número de WhatsApp configurado.",
		})
	}
	c.Type("png")
	return c.Send(png)
}

func (h *SettingsHandler) render(c *fiber.Ctx, view *services.PageView, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	if view.Phase == services.PhaseLoading {
		return c.Status(fiber.StatusAccepted).JSON(view)
	}
	return c.JSON(view)
}
