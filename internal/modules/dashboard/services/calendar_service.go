package services

import (
	"context"
	"errors"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/backend"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/metrics"
	"github.com/rs/zerolog/log"
)

// CalendarStatus is derived from the profile's calendar fields only
type CalendarStatus string

const (
	CalendarUnknown      CalendarStatus = "unknown"
	CalendarConnected    CalendarStatus = "connected"
	CalendarDisconnected CalendarStatus = "disconnected"
)

const pageCalendar = "calendar-integration"

// CalendarView is the calendar integration page
type CalendarView struct {
	Status CalendarStatus `json:"status"`
	Email  string         `json:"email,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// CalendarBackend is the external service that owns the OAuth handshake
type CalendarBackend interface {
	InitiateURL(userID string) (string, error)
	DisconnectCalendar(ctx context.Context, bearer string) error
}

// TokenIssuer mints the bearer credential sent to the backend
type TokenIssuer interface {
	IDToken(ident *auth.Identity) (string, error)
}

type CalendarService struct {
	profiles ProfileSource
	backend  CalendarBackend
	tokens   TokenIssuer
	audit    audit.Store
	metrics  *metrics.Metrics
}

func NewCalendarService(profiles ProfileSource, be CalendarBackend, tokens TokenIssuer, auditStore audit.Store, m *metrics.Metrics) *CalendarService {
	return &CalendarService{
		profiles: profiles,
		backend:  be,
		tokens:   tokens,
		audit:    auditStore,
		metrics:  m,
	}
}

// Status reads the connection state from a fresh copy of the profile. A
// profile that is loading or unavailable reports unknown.
func (s *CalendarService) Status(ctx context.Context, ident *auth.Identity) (*CalendarView, error) {
	prof, err := currentProfile(ctx, s.profiles, ident)
	if errors.Is(err, auth.ErrUnauthenticated) {
		return nil, err
	}
	if err != nil {
		view := &CalendarView{Status: CalendarUnknown}
		if !errors.Is(err, ErrProfileLoading) {
			view.Error = UserMessage(err)
		}
		return view, nil
	}

	if prof.GoogleCalendarConnected {
		return &CalendarView{Status: CalendarConnected, Email: prof.GoogleCalendarEmail}, nil
	}
	return &CalendarView{Status: CalendarDisconnected}, nil
}

// ConnectURL is where the browser goes to start the OAuth handshake
func (s *CalendarService) ConnectURL(ident *auth.Identity) (string, error) {
	if ident == nil {
		return "", auth.ErrUnauthenticated
	}
	target, err := s.backend.InitiateURL(ident.UID)
	s.observe("connect", err)
	if err != nil {
		return "", err
	}
	log.Info().Str("client_id", ident.UID).Msg("🔗 Calendar connect initiated")
	return target, nil
}

// Disconnect revokes the calendar connection. Without confirmed nothing is
// sent and the profile is left as is. On success the provider re-reads the
// profile so the page reflects the backend's write.
func (s *CalendarService) Disconnect(ctx context.Context, ident *auth.Identity, confirmed bool, meta RequestMeta) (*CalendarView, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	token, err := s.tokens.IDToken(ident)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.backend.DisconnectCalendar(ctx, token)
	s.observeLatency("disconnect", err, time.Since(start))
	s.observe("disconnect", err)
	if err != nil {
		log.Error().Err(err).Str("client_id", ident.UID).Msg("❌ Calendar disconnect failed")
		return nil, err
	}
	log.Info().Str("client_id", ident.UID).Msg("🔌 Calendar disconnected")

	if s.audit != nil {
		if err := s.audit.LogChange(ctx, audit.Change{
			ClientID:  ident.UID,
			ActorID:   ident.UID,
			Action:    audit.ActionDisconnect,
			Entity:    pageCalendar,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		}); err != nil {
			log.Warn().Err(err).Str("client_id", ident.UID).Msg("⚠️ Failed to record audit entry")
		}
	}

	return s.Status(ctx, ident)
}

// DisconnectMessage is the text shown for a failed disconnect. Backend
// answers are passed through verbatim.
func DisconnectMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, backend.ErrNotConfigured) {
		return "La URL del backend de RigBot no está configurada."
	}
	return UserMessage(err)
}

func (s *CalendarService) observe(action string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.CalendarActions.WithLabelValues(action, outcome(err)).Inc()
}

func (s *CalendarService) observeLatency(endpoint string, err error, d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.BackendLatency.WithLabelValues(endpoint, outcome(err)).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
