// Package session mirrors the signed-in identity and its client profile
// document into shared state. It subscribes to the auth session-change stream
// once and lazily creates the profile document on first sign-in.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/repositories"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// State is what consumers see for one identity
type State struct {
	Identity       *auth.Identity
	Profile        *models.Profile
	AuthLoading    bool
	ProfileLoading bool
	Err            error
}

// Unavailable reports whether the profile is known to be missing, as opposed
// to still loading
func (s State) Unavailable() bool {
	return !s.AuthLoading && !s.ProfileLoading && s.Identity != nil && s.Profile == nil
}

// Provider is the single source of truth for who is signed in and what their
// profile is
type Provider struct {
	repo    repositories.ProfileRepo
	now     func() time.Time
	metrics *metrics.Metrics
	group   singleflight.Group

	mu        sync.RWMutex
	states    map[string]*State
	onSignOut []func(uid string)
}

func NewProvider(repo repositories.ProfileRepo) *Provider {
	return &Provider{
		repo:   repo,
		now:    time.Now,
		states: make(map[string]*State),
	}
}

// WithClock overrides the time source used for read-time defaults
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// WithMetrics counts profile load outcomes
func (p *Provider) WithMetrics(m *metrics.Metrics) *Provider {
	p.metrics = m
	return p
}

// OnSignOut registers fn to run after the state of a signed-out uid is dropped
func (p *Provider) OnSignOut(fn func(uid string)) *Provider {
	p.mu.Lock()
	p.onSignOut = append(p.onSignOut, fn)
	p.mu.Unlock()
	return p
}

// Watch consumes session changes until ctx is done or the stream closes
func (p *Provider) Watch(ctx context.Context, changes <-chan auth.SessionChange) {
	log.Info().Str("component", "session").Msg("👀 Watching session changes")
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			p.Handle(ctx, change)
		}
	}
}

// Handle applies a single session change. A sign-in always reads the
// profile again, whatever the provider held for that identity before.
func (p *Provider) Handle(ctx context.Context, change auth.SessionChange) {
	if change.Identity == nil {
		p.Forget(change.UID)
		log.Info().Str("client_id", change.UID).Msg("🔒 Session cleared")
		return
	}
	p.signIn(ctx, change.Identity)
}

func (p *Provider) signIn(ctx context.Context, ident *auth.Identity) State {
	p.mu.Lock()
	p.states[ident.UID] = &State{Identity: ident, ProfileLoading: true}
	p.mu.Unlock()

	v, _, _ := p.group.Do("signin:"+ident.UID, func() (interface{}, error) {
		return p.load(ctx, ident), nil
	})
	return v.(State)
}

// State returns the current state for uid. An identity the provider has not
// seen yet reports AuthLoading.
func (p *Provider) State(uid string) State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	st, ok := p.states[uid]
	if !ok {
		return State{AuthLoading: true}
	}
	return *st
}

// Resolve returns the state for ident, loading (and creating) the profile if
// the provider does not hold it yet. Concurrent calls for the same identity
// share one load.
func (p *Provider) Resolve(ctx context.Context, ident *auth.Identity) State {
	if ident == nil {
		return State{}
	}

	p.mu.Lock()
	st, ok := p.states[ident.UID]
	if ok && !st.ProfileLoading && st.Profile != nil {
		cur := *st
		p.mu.Unlock()
		return cur
	}
	if ok && !st.ProfileLoading && st.Err != nil {
		// Failures are terminal until the next sign-in
		cur := *st
		p.mu.Unlock()
		return cur
	}
	p.states[ident.UID] = &State{Identity: ident, ProfileLoading: true}
	p.mu.Unlock()

	v, _, _ := p.group.Do(ident.UID, func() (interface{}, error) {
		return p.load(ctx, ident), nil
	})
	return v.(State)
}

// Refresh re-reads the stored document for an identity already known to the
// provider
func (p *Provider) Refresh(ctx context.Context, ident *auth.Identity) (State, error) {
	if ident == nil {
		return State{}, auth.ErrUnauthenticated
	}

	v, err, _ := p.group.Do("refresh:"+ident.UID, func() (interface{}, error) {
		doc, err := p.repo.Get(ctx, ident.UID)
		if errors.Is(err, repositories.ErrProfileNotFound) {
			// The document vanished; recreate it like a first sign-in
			return p.load(ctx, ident), nil
		}
		if err != nil {
			log.Error().Err(err).Str("client_id", ident.UID).Msg("❌ Failed to refresh profile")
			return nil, err
		}
		prof := models.Normalize(doc, owner(ident), p.now())
		return p.store(ident, &prof, nil), nil
	})
	if err != nil {
		return p.State(ident.UID), err
	}
	st := v.(State)
	return st, st.Err
}

// Forget drops the state held for uid and runs the sign-out hooks
func (p *Provider) Forget(uid string) {
	p.mu.Lock()
	delete(p.states, uid)
	hooks := append([]func(string){}, p.onSignOut...)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn(uid)
	}
}

func (p *Provider) load(ctx context.Context, ident *auth.Identity) State {
	logger := log.With().Str("client_id", ident.UID).Str("component", "session").Logger()

	doc, err := p.repo.Get(ctx, ident.UID)
	switch {
	case err == nil:
		prof := models.Normalize(doc, owner(ident), p.now())
		logger.Info().Msg("✅ Profile loaded")
		p.observe("found")
		return p.store(ident, &prof, nil)

	case errors.Is(err, repositories.ErrProfileNotFound):
		fresh := models.NewDocument(owner(ident), p.now())
		created, err := p.repo.CreateIfAbsent(ctx, fresh)
		if err != nil {
			logger.Error().Err(err).Msg("❌ Failed to create profile")
			p.observe("error")
			return p.store(ident, nil, fmt.Errorf("create profile: %w", err))
		}
		if !created {
			// Another sign-in created it first; use the stored copy
			doc, err := p.repo.Get(ctx, ident.UID)
			if err != nil {
				logger.Error().Err(err).Msg("❌ Failed to read profile")
				p.observe("error")
				return p.store(ident, nil, fmt.Errorf("read profile: %w", err))
			}
			fresh = doc
			p.observe("found")
		} else {
			logger.Info().Msg("🆕 Profile created with defaults")
			p.observe("created")
		}
		prof := models.Normalize(fresh, owner(ident), p.now())
		return p.store(ident, &prof, nil)

	default:
		logger.Error().Err(err).Msg("❌ Failed to read profile")
		p.observe("error")
		return p.store(ident, nil, fmt.Errorf("read profile: %w", err))
	}
}

// store publishes the outcome of a load unless the identity signed out
// meanwhile
func (p *Provider) store(ident *auth.Identity, prof *models.Profile, err error) State {
	st := State{Identity: ident, Profile: prof, Err: err}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.states[ident.UID]; ok {
		p.states[ident.UID] = &st
	}
	return st
}

func (p *Provider) observe(outcome string) {
	if p.metrics != nil {
		p.metrics.ProfileLoads.WithLabelValues(outcome).Inc()
	}
}

func owner(ident *auth.Identity) models.Owner {
	return models.Owner{
		ID:          ident.UID,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
	}
}
