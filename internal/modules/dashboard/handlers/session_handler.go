package handlers

import (
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/services"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/session"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	provider *session.Provider
}

func NewSessionHandler(provider *session.Provider) *SessionHandler {
	return &SessionHandler{provider: provider}
}

// SessionResponse is the provider state as the pages see it
type SessionResponse struct {
	Identity       *auth.Identity  `json:"identity"`
	Profile        *models.Profile `json:"profile"`
	AuthLoading    bool            `json:"authLoading"`
	ProfileLoading bool            `json:"profileLoading"`
	Error          string          `json:"error,omitempty"`
}

// GetSession godoc
// @Summary Current session state
// @Description Identity, normalized profile and the two loading flags
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /client/session [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident == nil {
		// Known absent: nobody is signed in
		return c.JSON(SessionResponse{})
	}

	st := h.provider.State(ident.UID)
	if st.AuthLoading {
		st = h.provider.Resolve(c.UserContext(), ident)
	}
	return c.JSON(toSessionResponse(st))
}

// RefreshSession godoc
// @Summary Re-read the profile
// @Description Retries a failed profile load or picks up writes made elsewhere
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 503 {object} SessionResponse
// @Router /client/session/refresh [post]
func (h *SessionHandler) RefreshSession(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident == nil {
		return auth.AccessDenied(c)
	}

	if st := h.provider.State(ident.UID); st.AuthLoading {
		st = h.provider.Resolve(c.UserContext(), ident)
		return h.refreshed(c, st)
	}

	st, _ := h.provider.Refresh(c.UserContext(), ident)
	return h.refreshed(c, st)
}

func (h *SessionHandler) refreshed(c *fiber.Ctx, st session.State) error {
	resp := toSessionResponse(st)
	if st.Profile == nil && !st.ProfileLoading {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func toSessionResponse(st session.State) SessionResponse {
	resp := SessionResponse{
		Identity:       st.Identity,
		Profile:        st.Profile,
		AuthLoading:    st.AuthLoading,
		ProfileLoading: st.ProfileLoading,
	}
	if st.Err != nil {
		resp.Error = services.UserMessage(st.Err)
	}
	return resp
}
