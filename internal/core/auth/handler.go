package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	authService  *Service
	cookieSecure bool
}

// NewHandler creates a new auth handler
func NewHandler(authService *Service, cookieSecure bool) *Handler {
	return &Handler{
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

// LoginWithGoogle godoc
// @Summary Login with Google
// @Description Exchange the Google popup ID token for a dashboard session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/google [post]
func (h *Handler) LoginWithGoogle(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if perr := FromProviderCode(req.ProviderError); perr != nil {
		log.Warn().Str("code", req.ProviderError).Msg("⚠️ Google popup sign-in failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": FriendlyMessage(perr),
		})
	}

	if req.GoogleIDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "google_id_token is required",
		})
	}

	resp, _, err := h.authService.LoginWithGoogle(c.UserContext(), req.GoogleIDToken)
	if err != nil {
		log.Error().Err(err).Msg("❌ Google login failed")
		status := fiber.StatusUnauthorized
		if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrEmailNotVerified) {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{
			"error": FriendlyMessage(err),
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(resp)
}

// Logout godoc
// @Summary Logout user
// @Description End the dashboard session
// @Tags Authentication
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	if ident := IdentityFrom(c); ident != nil {
		h.authService.Logout(ident.UID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Me godoc
// @Summary Get current user
// @Description Get the signed-in identity
// @Tags Authentication
// @Produce json
// @Success 200 {object} Identity
// @Failure 401 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	ident := IdentityFrom(c)
	if ident == nil {
		return AccessDenied(c)
	}
	return c.JSON(ident)
}
