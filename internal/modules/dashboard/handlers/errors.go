package handlers

import (
	"errors"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/services"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/shared/utils"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto the page's error rendering
func respondError(c *fiber.Ctx, err error) error {
	var cfgErr *config.Error
	var reqErr *services.RequiredFieldError
	var unavailable *services.ProfileUnavailableError

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return auth.AccessDenied(c)
	case errors.As(err, &cfgErr):
		return configUnavailable(c, cfgErr)
	case errors.As(err, &reqErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.UserMessage(err),
			"field": reqErr.Field,
		})
	case errors.Is(err, services.ErrConfirmationRequired):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": services.UserMessage(err),
		})
	case errors.Is(err, services.ErrProfileLoading):
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"phase": services.PhaseLoading,
		})
	case errors.As(err, &unavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": services.UserMessage(err),
		})
	case errors.Is(err, email.ErrNoProvider):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "El envío de correos no está configurado.",
		})
	default:
		utils.LogError("❌ Request failed", err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": services.UserMessage(err),
		})
	}
}

func configUnavailable(c *fiber.Ctx, cfgErr *config.Error) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":   cfgErr.UserMessage(),
		"feature": cfgErr.Feature,
		"missing": cfgErr.Missing,
	})
}

// RequireConfig disables a route group while its configuration is missing
func RequireConfig(cfgErr *config.Error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfgErr != nil {
			return configUnavailable(c, cfgErr)
		}
		return c.Next()
	}
}

func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: string(c.Request().Header.UserAgent()),
	}
}
