package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/services"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/utils"
	"github.com/gofiber/fiber/v2"
)

// LogsGateCookie holds the log viewer pass
const LogsGateCookie = "rigbot_logs_pass"

const logsPath = "/logs"

type LogsHandler struct {
	logsService  *services.LogsService
	gate         *services.LogsGate
	cookieSecure bool
}

func NewLogsHandler(logsService *services.LogsService, gate *services.LogsGate, cookieSecure bool) *LogsHandler {
	return &LogsHandler{
		logsService:  logsService,
		gate:         gate,
		cookieSecure: cookieSecure,
	}
}

// AccessRequest is the log viewer password form
type AccessRequest struct {
	Password string `json:"password"`
}

// Access godoc
// @Summary Unlock the log viewer
// @Description Shared password check. Not an authorization mechanism.
// @Tags Logs
// @Accept json
// @Produce json
// @Param request body AccessRequest true "Password"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /logs/access [post]
func (h *LogsHandler) Access(c *fiber.Ctx) error {
	var req AccessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, expires, err := h.gate.Unlock(c.UserContext(), c.IP(), req.Password)
	switch {
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": services.UserMessage(err),
		})
	case errors.Is(err, services.ErrWrongPassword):
		utils.LogWarn("🚫 Logs gate denied", map[string]interface{}{"ip": c.IP()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": services.UserMessage(err),
		})
	case err != nil:
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     LogsGateCookie,
		Value:    token,
		Path:     logsPath,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	utils.LogInfo("🔓 Logs gate unlocked", map[string]interface{}{"ip": c.IP()})
	return c.JSON(fiber.Map{"message": "Acceso concedido"})
}

// RequirePass rejects requests without a valid log viewer pass
func (h *LogsHandler) RequirePass() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !h.gate.Allowed(c.Cookies(LogsGateCookie)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":      "Ingresa la contraseña para ver los registros.",
				"access_url": logsPath + "/access",
			})
		}
		return c.Next()
	}
}

// List godoc
// @Summary List chat logs
// @Description Newest entries first. The limit bounds the fetch, filters apply afterwards.
// @Tags Logs
// @Produce json
// @Param limit query int false "25, 50, 100, 200 or 500" default(50)
// @Param role query string false "Exact role (user, assistant)"
// @Param sessionId query string false "Session id substring, case-insensitive"
// @Success 200 {object} services.LogsPage
// @Failure 401 {object} map[string]interface{}
// @Router /logs [get]
func (h *LogsHandler) List(c *fiber.Ctx) error {
	page, err := h.logsService.List(c.UserContext(), c.QueryInt("limit", services.DefaultLogLimit), filterFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// Export godoc
// @Summary Export chat logs
// @Description Exports the filtered set as CSV (default), Excel or PDF
// @Tags Logs
// @Produce octet-stream
// @Param format query string false "csv, excel or pdf" default(csv)
// @Param limit query int false "25, 50, 100, 200 or 500" default(50)
// @Param role query string false "Exact role (user, assistant)"
// @Param sessionId query string false "Session id substring, case-insensitive"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /logs/export [get]
func (h *LogsHandler) Export(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	file, err := h.logsService.Export(c.UserContext(), c.QueryInt("limit", services.DefaultLogLimit), filterFrom(c), format)
	if errors.Is(err, services.ErrNothingToExport) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": services.UserMessage(err),
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.Name+`"; filename*=UTF-8''`+url.PathEscape(file.Name))
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set("X-Generated-At", time.Now().UTC().Format(time.RFC3339))
	return c.Send(file.Body)
}

func filterFrom(c *fiber.Ctx) services.LogFilter {
	return services.LogFilter{
		Role:      c.Query("role"),
		SessionID: c.Query("sessionId"),
	}
}
