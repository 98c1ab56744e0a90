package services

import (
	"context"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/session"
	"github.com/rs/zerolog/log"
)

// ProfileSource is the part of the session provider the pages use
type ProfileSource interface {
	State(uid string) session.State
	Resolve(ctx context.Context, ident *auth.Identity) session.State
	Refresh(ctx context.Context, ident *auth.Identity) (session.State, error)
}

// currentProfile returns a freshly read, normalized profile for ident.
//
// Anonymous callers get auth.ErrUnauthenticated before anything is read. A
// session the provider has not seen yet is resolved first; a load still in
// flight yields ErrProfileLoading; a terminal provider failure yields
// ProfileUnavailableError.
func currentProfile(ctx context.Context, src ProfileSource, ident *auth.Identity) (*models.Profile, error) {
	if ident == nil {
		return nil, auth.ErrUnauthenticated
	}

	st := src.State(ident.UID)
	if st.AuthLoading {
		st = src.Resolve(ctx, ident)
	}
	if st.ProfileLoading {
		return nil, ErrProfileLoading
	}
	if st.Profile == nil {
		return nil, &ProfileUnavailableError{Err: st.Err}
	}

	fresh, err := src.Refresh(ctx, ident)
	if err != nil {
		log.Error().Err(err).Str("client_id", ident.UID).Msg("❌ Failed to re-read profile")
		return nil, &ProfileUnavailableError{Err: err}
	}
	if fresh.Profile == nil {
		return nil, &ProfileUnavailableError{Err: fresh.Err}
	}
	return fresh.Profile, nil
}
