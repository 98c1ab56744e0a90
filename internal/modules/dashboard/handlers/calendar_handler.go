package handlers

import (
	"errors"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/backend"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/services"
	"github.com/gofiber/fiber/v2"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
}

func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// DisconnectRequest carries the user's answer to the confirm dialog
type DisconnectRequest struct {
	Confirm bool `json:"confirm"`
}

// GetStatus godoc
// @Summary Calendar integration page
// @Description Connection state derived from the client profile
// @Tags Calendar
// @Produce json
// @Success 200 {object} services.CalendarView
// @Failure 401 {object} map[string]interface{}
// @Router /client/calendar-integration [get]
func (h *CalendarHandler) GetStatus(c *fiber.Ctx) error {
	view, err := h.calendarService.Status(c.UserContext(), auth.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// Connect godoc
// @Summary Start Google Calendar OAuth
// @Description Redirects the browser to the backend's OAuth initiation endpoint
// @Tags Calendar
// @Success 302
// @Failure 401 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /client/calendar-integration/connect [get]
func (h *CalendarHandler) Connect(c *fiber.Ctx) error {
	target, err := h.calendarService.ConnectURL(auth.IdentityFrom(c))
	if errors.Is(err, backend.ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": services.DisconnectMessage(err),
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(target, fiber.StatusFound)
}

// Disconnect godoc
// @Summary Disconnect Google Calendar
// @Description Revokes the connection through the backend. Requires confirm=true.
// @Tags Calendar
// @Accept json
// @Produce json
// @Param request body DisconnectRequest true "Confirmation"
// @Success 200 {object} services.CalendarView
// @Failure 401 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /client/calendar-integration/disconnect [post]
func (h *CalendarHandler) Disconnect(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident == nil {
		return auth.AccessDenied(c)
	}

	var req DisconnectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	view, err := h.calendarService.Disconnect(c.UserContext(), ident, req.Confirm, requestMeta(c))
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return c.JSON(view)
	case errors.As(err, &apiErr), errors.Is(err, backend.ErrNotConfigured):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": services.DisconnectMessage(err),
		})
	default:
		return respondError(c, err)
	}
}
